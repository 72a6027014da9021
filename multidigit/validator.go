package multidigit

import (
	"context"
	"runtime"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"kuanb/carriageway-validator/geom"
	"kuanb/carriageway-validator/roadnet"
)

// Config tunes a validation run
type Config struct {
	Workers          int     // concurrent segment evaluations, 0 means GOMAXPROCS
	SampleCap        int     // mismatches kept in the tally
	SiblingThreshold float64 // meters
	LaneWidth        float64 // meters
}

// DefaultConfig returns the reference thresholds
func DefaultConfig() Config {
	return Config{
		Workers:          runtime.GOMAXPROCS(0),
		SampleCap:        DefaultSampleCap,
		SiblingThreshold: DefaultSiblingThreshold,
		LaneWidth:        DefaultLaneWidth,
	}
}

// Validator recomputes the divided-carriageway flag of every segment in a sector
// and tallies it against the recorded flag
type Validator struct {
	cfg       Config
	estimator *DimensionEstimator
}

// NewValidator creates a validator, filling unset config fields with defaults
func NewValidator(cfg Config) *Validator {
	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}
	if cfg.SampleCap <= 0 {
		cfg.SampleCap = DefaultSampleCap
	}
	if cfg.SiblingThreshold <= 0 {
		cfg.SiblingThreshold = DefaultSiblingThreshold
	}
	return &Validator{
		cfg:       cfg,
		estimator: NewDimensionEstimator(cfg.LaneWidth),
	}
}

// Run validates every segment of ds. Segments are evaluated concurrently but
// folded into the tally in dataset order, so the mismatch sample is stable.
// A failing segment is counted and never stops the run; only cancellation does.
func (v *Validator) Run(ctx context.Context, ds *roadnet.SectorDataset) (*Tally, error) {
	order := ds.Order()
	locator := NewSiblingLocator(ds, ds.Projector(), v.cfg.SiblingThreshold)

	outcomes := make([]outcome, len(order))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.cfg.Workers)

	for i, id := range order {
		if gctx.Err() != nil {
			break
		}
		s := ds.Segments[id]
		g.Go(func() error {
			outcomes[i] = v.evaluate(s, locator)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, eris.Wrap(err, "multidigit: validate")
	}
	if err := ctx.Err(); err != nil {
		return nil, eris.Wrapf(err, "multidigit: validate sector %s", ds.Sector)
	}

	tally := NewTally(ds.Sector, v.cfg.SampleCap)
	for _, o := range outcomes {
		if o.kind == outcomeError {
			zap.L().Debug("multidigit: segment failed",
				zap.String("sector", ds.Sector),
				zap.Int64("link_id", o.assessment.LinkID),
				zap.Error(o.err),
			)
		}
		tally.record(o)
	}

	zap.L().Info("multidigit: sector validated",
		zap.String("run_id", tally.RunID),
		zap.String("sector", ds.Sector),
		zap.Int("total", tally.Total),
		zap.Int("matches", tally.Matches()),
		zap.Int("mismatches", tally.MismatchCount()),
		zap.Int("errors", tally.Errors),
		zap.Float64("agreement_rate", tally.AgreementRate()),
	)
	return tally, nil
}

func (v *Validator) evaluate(s *roadnet.RoadSegment, locator *SiblingLocator) outcome {
	if !s.GroundTruth.Valid() {
		return outcome{kind: outcomeSkipped, groundTruth: s.GroundTruth}
	}
	a, err := v.Assess(s, locator)
	if err != nil {
		return outcome{
			kind:        outcomeError,
			groundTruth: s.GroundTruth,
			assessment:  Assessment{LinkID: s.LinkID},
			err:         err,
		}
	}
	return outcome{kind: outcomeAssessed, groundTruth: s.GroundTruth, assessment: a}
}

// Assess computes the separator parameters of one segment and the resulting flag
func (v *Validator) Assess(s *roadnet.RoadSegment, locator *SiblingLocator) (Assessment, error) {
	length, err := geom.PathLength(s.Geometry)
	if err != nil {
		return Assessment{}, eris.Wrapf(err, "multidigit: link %d", s.LinkID)
	}

	a := Assessment{
		LinkID:          s.LinkID,
		SeparatorType:   ClassifySeparator(s),
		SeparatorLength: length,
	}

	var dims Dimensions
	if sib, ok := locator.Find(s); ok {
		dims = v.estimator.WithSibling(s, sib.Segment, sib.Distance)
		a.SiblingID = sib.Segment.LinkID
		a.HasSibling = true
	} else {
		dims = v.estimator.WithoutSibling(s, a.SeparatorType)
	}
	a.SeparatorWidth = dims.SeparatorWidth
	a.RoadbedDistance = dims.RoadbedDistance
	a.Calculated = Evaluate(a.SeparatorType, a.SeparatorWidth, a.SeparatorLength, a.RoadbedDistance)
	return a, nil
}
