package poi

import (
	"context"
	"image"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Labels the classifiers are prompted with
const (
	LabelNoPOI     = "no point of interest"
	LabelUpperHalf = "point of interest in the upper half of the image"
	LabelLowerHalf = "point of interest in the lower half of the image"
)

// Normalised labels of an adjudication
const (
	NormNoPOI    = "NPOI"
	NormSidewalk = "POI_SIDEWALK"
)

// MinConfidence is the score a prediction must exceed to count as a POI
const MinConfidence = 0.5

// Disposition is the final call on a violation
type Disposition string

const (
	NoPOIInReality Disposition = "No POI in reality"
	POIOnSidewalk  Disposition = "POI on sidewalk"
	LegitException Disposition = "Legit exception"
)

// Prediction is a zero-shot label with its confidence
type Prediction struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"`
}

// PatchSource produces the two image samples around a violation: one centred on
// the street and one shifted towards the sidewalk, both rotated so the road runs
// horizontally
type PatchSource interface {
	Patches(ctx context.Context, v Violation) (street, sidewalk image.Image, err error)
}

// PatchClassifier scores image patches
type PatchClassifier interface {
	// ClassifyGeneral picks the best POI category, or LabelNoPOI
	ClassifyGeneral(ctx context.Context, img image.Image) (Prediction, error)
	// ClassifyHalf picks which half of the image holds a POI, or LabelNoPOI
	ClassifyHalf(ctx context.Context, img image.Image) (Prediction, error)
}

// Adjudication is the imagery verdict on a violation
type Adjudication struct {
	POIID    int64
	Result   [2]string // normalised street and sidewalk labels
	Action   Disposition
	Street   Prediction
	Sidewalk Prediction
}

// WrongSide reports whether the POI should be moved to the other carriageway side
func (a Adjudication) WrongSide() bool {
	return a.Action == POIOnSidewalk
}

// Adjudicator checks violations against satellite imagery
type Adjudicator struct {
	source     PatchSource
	classifier PatchClassifier
}

// NewAdjudicator creates an adjudicator
func NewAdjudicator(source PatchSource, classifier PatchClassifier) *Adjudicator {
	return &Adjudicator{source: source, classifier: classifier}
}

// Adjudicate samples and classifies the imagery around one violation
func (a *Adjudicator) Adjudicate(ctx context.Context, v Violation) (Adjudication, error) {
	street, sidewalk, err := a.source.Patches(ctx, v)
	if err != nil {
		return Adjudication{}, eris.Wrapf(err, "poi: patches for poi %d", v.POIID)
	}
	sp, err := a.classifier.ClassifyGeneral(ctx, street)
	if err != nil {
		return Adjudication{}, eris.Wrapf(err, "poi: classify street patch for poi %d", v.POIID)
	}
	wp, err := a.classifier.ClassifyHalf(ctx, sidewalk)
	if err != nil {
		return Adjudication{}, eris.Wrapf(err, "poi: classify sidewalk patch for poi %d", v.POIID)
	}

	result, action := Decide(sp, wp)
	return Adjudication{
		POIID:    v.POIID,
		Result:   result,
		Action:   action,
		Street:   sp,
		Sidewalk: wp,
	}, nil
}

// AdjudicateAll adjudicates violations in order. A violation that cannot be
// adjudicated is logged and left out; cancellation stops the batch.
func (a *Adjudicator) AdjudicateAll(ctx context.Context, vs []Violation) ([]Adjudication, error) {
	out := make([]Adjudication, 0, len(vs))
	for _, v := range vs {
		if err := ctx.Err(); err != nil {
			return out, eris.Wrap(err, "poi: adjudicate")
		}
		adj, err := a.Adjudicate(ctx, v)
		if err != nil {
			zap.L().Warn("poi: adjudication failed", zap.Int64("poi_id", v.POIID), zap.Error(err))
			continue
		}
		out = append(out, adj)
	}
	return out, nil
}

// Decide combines the street and sidewalk predictions. A confident street POI
// is a legitimate exception unless the sidewalk sample is more confident.
func Decide(street, sidewalk Prediction) ([2]string, Disposition) {
	onStreet := street.Label != LabelNoPOI && street.Confidence > MinConfidence
	onSidewalk := strings.Contains(sidewalk.Label, "lower half") && sidewalk.Confidence > MinConfidence

	streetNorm := NormNoPOI
	if onStreet {
		streetNorm = strings.ToUpper(street.Label)
	}

	switch {
	case !onStreet && !onSidewalk:
		return [2]string{NormNoPOI, NormNoPOI}, NoPOIInReality
	case !onStreet:
		return [2]string{NormNoPOI, NormSidewalk}, POIOnSidewalk
	case !onSidewalk:
		return [2]string{streetNorm, NormNoPOI}, LegitException
	case street.Confidence >= sidewalk.Confidence:
		return [2]string{streetNorm, NormNoPOI}, LegitException
	default:
		return [2]string{NormNoPOI, NormSidewalk}, POIOnSidewalk
	}
}
