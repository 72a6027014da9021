// Package poi finds points of interest that were interpolated between the two
// carriageways of a divided road, and adjudicates them against imagery.
package poi

import (
	"context"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"kuanb/carriageway-validator/geom"
	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/roadnet"
)

// Pair re-check thresholds, in meters
const (
	recheckMinLength     = 40.0
	recheckMinSeparation = 3.0
	recheckMaxSeparation = 80.0
)

// Options tunes a detection run
type Options struct {
	Recheck bool // drop pairs that fail the divided carriageway criteria
	Limit   int  // stop after this many POI rows, 0 means all
}

// Violation is a POI positioned between the two carriageways of its road
type Violation struct {
	POIID      int64
	Name       string
	LinkID     int64
	SiblingID  int64
	StreetName string
	Percent    float64
	Coord      orb.Point
	Heading    float64 // degrees counterclockwise from east, from the link's first two vertices
}

// Result summarises a detection run
type Result struct {
	Sector     string
	Scanned    int // POI rows read
	OnDivided  int // POIs whose link is recorded as divided
	Violations []Violation
}

// Detector locates misplaced POIs in a sector
type Detector struct {
	opts Options
}

// NewDetector creates a detector
func NewDetector(opts Options) *Detector {
	return &Detector{opts: opts}
}

// Detect walks the sector's POIs in load order. POIs that reference unknown
// links, sit on undivided links or have no sibling carriageway are skipped.
func (d *Detector) Detect(ctx context.Context, ds *roadnet.SectorDataset) (*Result, error) {
	res := &Result{Sector: ds.Sector}
	locator := multidigit.NewSiblingLocator(ds, ds.Projector(), multidigit.DefaultSiblingThreshold)

	for i, p := range ds.POIs {
		if d.opts.Limit > 0 && i >= d.opts.Limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, eris.Wrapf(err, "poi: detect sector %s", ds.Sector)
		}
		res.Scanned++

		seg, ok := ds.Segments[p.LinkID]
		if !ok || !seg.Divided() {
			continue
		}
		res.OnDivided++

		v, ok := d.check(ds, locator, p, seg)
		if ok {
			res.Violations = append(res.Violations, v)
		}
	}

	zap.L().Info("poi: sector scanned",
		zap.String("sector", ds.Sector),
		zap.Int("scanned", res.Scanned),
		zap.Int("on_divided", res.OnDivided),
		zap.Int("violations", len(res.Violations)),
	)
	return res, nil
}

func (d *Detector) check(ds *roadnet.SectorDataset, locator *multidigit.SiblingLocator, p roadnet.POIRecord, seg *roadnet.RoadSegment) (Violation, bool) {
	log := zap.L().With(zap.Int64("poi_id", p.ID), zap.Int64("link_id", p.LinkID))

	naming, ok := ds.Naming[p.LinkID]
	if !ok {
		log.Debug("poi: link has no naming record")
		return Violation{}, false
	}
	sibling, sibNaming, ok := FirstNamedSibling(ds, seg.LinkID, naming.StreetName)
	if !ok {
		log.Debug("poi: no sibling carriageway", zap.String("street", naming.StreetName))
		return Violation{}, false
	}
	if d.opts.Recheck && !pairQualifies(locator, seg, sibling) {
		log.Debug("poi: pair fails re-check", zap.Int64("sibling_id", sibling.LinkID))
		return Violation{}, false
	}

	coord, err := geom.InterpolateByPercentage(naming.Geometry, p.Percent)
	if err != nil {
		log.Debug("poi: cannot interpolate", zap.Error(err))
		return Violation{}, false
	}
	if !geom.ContainsPoint(naming.Geometry, sibNaming.Geometry, coord) {
		return Violation{}, false
	}

	heading, _ := geom.Bearing(naming.Geometry)
	return Violation{
		POIID:      p.ID,
		Name:       p.Name,
		LinkID:     p.LinkID,
		SiblingID:  sibling.LinkID,
		StreetName: naming.StreetName,
		Percent:    p.Percent,
		Coord:      coord,
		Heading:    heading,
	}, true
}

// FirstNamedSibling returns the first divided link, in load order, other than
// linkID whose naming record carries the given street name
func FirstNamedSibling(ds *roadnet.SectorDataset, linkID int64, streetName string) (*roadnet.RoadSegment, *roadnet.NamingRecord, bool) {
	if streetName == "" {
		return nil, nil, false
	}
	for _, id := range ds.Order() {
		if id == linkID {
			continue
		}
		s := ds.Segments[id]
		if !s.Divided() {
			continue
		}
		n, ok := ds.Naming[id]
		if !ok || n.StreetName != streetName {
			continue
		}
		return s, n, true
	}
	return nil, nil, false
}

// pairQualifies applies the divided carriageway criteria to both sides of a pair
func pairQualifies(locator *multidigit.SiblingLocator, a, b *roadnet.RoadSegment) bool {
	for _, s := range []*roadnet.RoadSegment{a, b} {
		if s.Ramp || s.Manoeuvre || s.Bidirectional {
			return false
		}
		length, err := geom.PathLength(s.Geometry)
		if err != nil || length <= recheckMinLength {
			return false
		}
	}
	sep := locator.Distance(a, b)
	return sep > recheckMinSeparation && sep <= recheckMaxSeparation
}
