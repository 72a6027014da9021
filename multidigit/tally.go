package multidigit

import (
	"github.com/google/uuid"

	"kuanb/carriageway-validator/roadnet"
)

// DefaultSampleCap bounds the mismatch sample kept in a tally
const DefaultSampleCap = 10

// Mismatch directions
const (
	FalseDivided  = "Y->N" // recorded divided, calculated not divided
	MissedDivided = "N->Y" // recorded not divided, calculated divided
)

// Assessment holds the parameters computed for one segment and the resulting decision
type Assessment struct {
	LinkID          int64
	SeparatorType   SeparatorType
	SeparatorWidth  float64
	SeparatorLength float64
	RoadbedDistance float64
	SiblingID       int64 // 0 when no sibling was found
	HasSibling      bool
	Calculated      bool
}

// Mismatch is a segment whose calculated flag disagrees with the recorded one
type Mismatch struct {
	LinkID    int64
	Direction string
	Params    Assessment
}

type outcomeKind int

const (
	outcomeSkipped outcomeKind = iota
	outcomeError
	outcomeAssessed
)

// outcome is the per-segment result folded into a tally
type outcome struct {
	kind        outcomeKind
	groundTruth roadnet.Flag
	assessment  Assessment
	err         error
}

// Tally is the confusion matrix of one validation run
type Tally struct {
	RunID  string
	Sector string

	Total          int
	GroundTruthYes int
	GroundTruthNo  int
	MatchYes       int
	MatchNo        int
	WrongYes       int // recorded Y, calculated N
	WrongNo        int // recorded N, calculated Y
	Skipped        int // ground truth outside Y/N
	Errors         int

	Mismatches []Mismatch
	sampleCap  int
}

// NewTally creates an empty tally; a non-positive cap means DefaultSampleCap
func NewTally(sector string, sampleCap int) *Tally {
	if sampleCap <= 0 {
		sampleCap = DefaultSampleCap
	}
	return &Tally{
		RunID:     uuid.New().String(),
		Sector:    sector,
		sampleCap: sampleCap,
	}
}

func (t *Tally) record(o outcome) {
	t.Total++
	switch o.groundTruth {
	case roadnet.FlagYes:
		t.GroundTruthYes++
	case roadnet.FlagNo:
		t.GroundTruthNo++
	}

	switch o.kind {
	case outcomeSkipped:
		t.Skipped++
		return
	case outcomeError:
		t.Errors++
		return
	}

	a := o.assessment
	switch {
	case o.groundTruth == roadnet.FlagYes && a.Calculated:
		t.MatchYes++
	case o.groundTruth == roadnet.FlagNo && !a.Calculated:
		t.MatchNo++
	case o.groundTruth == roadnet.FlagYes:
		t.WrongYes++
		t.sample(Mismatch{LinkID: a.LinkID, Direction: FalseDivided, Params: a})
	default:
		t.WrongNo++
		t.sample(Mismatch{LinkID: a.LinkID, Direction: MissedDivided, Params: a})
	}
}

func (t *Tally) sample(m Mismatch) {
	if len(t.Mismatches) < t.sampleCap {
		t.Mismatches = append(t.Mismatches, m)
	}
}

// Matches is the number of segments whose calculated flag agrees with the record
func (t *Tally) Matches() int {
	return t.MatchYes + t.MatchNo
}

// MismatchCount is the number of disagreeing segments, sampled or not
func (t *Tally) MismatchCount() int {
	return t.WrongYes + t.WrongNo
}

// AgreementRate is the percentage of all segments whose flag was confirmed
func (t *Tally) AgreementRate() float64 {
	if t.Total == 0 {
		return 0
	}
	return float64(t.Matches()) / float64(t.Total) * 100
}

// Balanced checks that every segment landed in exactly one bucket
func (t *Tally) Balanced() bool {
	return t.MatchYes+t.MatchNo+t.WrongYes+t.WrongNo+t.Skipped+t.Errors == t.Total
}
