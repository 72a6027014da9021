package report

import (
	"encoding/json"
	"io"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
	"github.com/twpayne/go-polyline"

	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/poi"
	"kuanb/carriageway-validator/roadnet"
)

// Export is the machine-readable outcome of a sector run
type Export struct {
	RunID      string            `json:"run_id,omitempty"`
	Sector     string            `json:"sector"`
	Tally      *TallyRecord      `json:"tally,omitempty"`
	Mismatches []MismatchRecord  `json:"mismatches,omitempty"`
	POI        *POIRecord        `json:"poi,omitempty"`
	Violations []ViolationRecord `json:"violations,omitempty"`
}

// TallyRecord is the confusion matrix of a validation run
type TallyRecord struct {
	Total          int     `json:"total"`
	GroundTruthYes int     `json:"ground_truth_y"`
	GroundTruthNo  int     `json:"ground_truth_n"`
	MatchYes       int     `json:"match_y"`
	MatchNo        int     `json:"match_n"`
	WrongYes       int     `json:"wrong_y"`
	WrongNo        int     `json:"wrong_n"`
	Skipped        int     `json:"skipped"`
	Errors         int     `json:"errors"`
	AgreementRate  float64 `json:"agreement_rate"`
}

// MismatchRecord is one sampled mismatch with its geometry
type MismatchRecord struct {
	LinkID          int64   `json:"link_id"`
	Direction       string  `json:"type"`
	SeparatorType   string  `json:"separator_type"`
	SeparatorWidth  float64 `json:"separator_width"`
	SeparatorLength float64 `json:"separator_length"`
	RoadbedDistance float64 `json:"roadbed_distance"`
	SiblingID       int64   `json:"sibling_id,omitempty"`
	WKT             string  `json:"wkt,omitempty"`
	Polyline        string  `json:"polyline,omitempty"`
}

// POIRecord summarises a detection run
type POIRecord struct {
	Scanned   int `json:"scanned"`
	OnDivided int `json:"on_divided"`
}

// ViolationRecord is one misplaced POI
type ViolationRecord struct {
	POIID      int64      `json:"poi_id"`
	Name       string     `json:"poi_name"`
	LinkID     int64      `json:"link_id"`
	SiblingID  int64      `json:"sibling_id"`
	StreetName string     `json:"street_name"`
	Percent    float64    `json:"percentage"`
	Coord      [2]float64 `json:"coord"`
	WKT        string     `json:"wkt"`
	Result     []string   `json:"result,omitempty"`
	Action     string     `json:"action,omitempty"`
	WrongSide  bool       `json:"wrong_side,omitempty"`
}

// NewExport assembles an export from whichever parts of a run are available
func NewExport(ds *roadnet.SectorDataset, t *multidigit.Tally, res *poi.Result, adjs []poi.Adjudication) (*Export, error) {
	e := &Export{Sector: ds.Sector}

	if t != nil {
		e.RunID = t.RunID
		e.Tally = &TallyRecord{
			Total:          t.Total,
			GroundTruthYes: t.GroundTruthYes,
			GroundTruthNo:  t.GroundTruthNo,
			MatchYes:       t.MatchYes,
			MatchNo:        t.MatchNo,
			WrongYes:       t.WrongYes,
			WrongNo:        t.WrongNo,
			Skipped:        t.Skipped,
			Errors:         t.Errors,
			AgreementRate:  t.AgreementRate(),
		}
		for _, m := range t.Mismatches {
			r := MismatchRecord{
				LinkID:          m.LinkID,
				Direction:       m.Direction,
				SeparatorType:   string(m.Params.SeparatorType),
				SeparatorWidth:  m.Params.SeparatorWidth,
				SeparatorLength: m.Params.SeparatorLength,
				RoadbedDistance: m.Params.RoadbedDistance,
				SiblingID:       m.Params.SiblingID,
			}
			if s, ok := ds.Segments[m.LinkID]; ok && len(s.Geometry) >= 2 {
				w, err := LineStringWKT(s.Geometry)
				if err != nil {
					return nil, err
				}
				r.WKT = w
				r.Polyline = EncodePolyline(s.Geometry)
			}
			e.Mismatches = append(e.Mismatches, r)
		}
	}

	if res != nil {
		e.POI = &POIRecord{Scanned: res.Scanned, OnDivided: res.OnDivided}
		verdicts := adjudicationsByPOI(adjs)
		for _, v := range res.Violations {
			w, err := PointWKT(v.Coord)
			if err != nil {
				return nil, err
			}
			r := ViolationRecord{
				POIID:      v.POIID,
				Name:       v.Name,
				LinkID:     v.LinkID,
				SiblingID:  v.SiblingID,
				StreetName: v.StreetName,
				Percent:    v.Percent,
				Coord:      [2]float64{v.Coord.Lon(), v.Coord.Lat()},
				WKT:        w,
			}
			if a, ok := verdicts[v.POIID]; ok {
				r.Result = a.Result[:]
				r.Action = string(a.Action)
				r.WrongSide = a.WrongSide()
			}
			e.Violations = append(e.Violations, r)
		}
	}
	return e, nil
}

// WriteJSON writes an export as indented JSON
func WriteJSON(w io.Writer, e *Export) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(e); err != nil {
		return eris.Wrapf(err, "report: write json for sector %s", e.Sector)
	}
	return nil
}

// LineStringWKT renders a lon/lat line as WKT
func LineStringWKT(ls orb.LineString) (string, error) {
	flat := make([]float64, 0, 2*len(ls))
	for _, p := range ls {
		flat = append(flat, p.Lon(), p.Lat())
	}
	s, err := wkt.Marshal(geom.NewLineStringFlat(geom.XY, flat))
	if err != nil {
		return "", eris.Wrap(err, "report: linestring wkt")
	}
	return s, nil
}

// PointWKT renders a lon/lat point as WKT
func PointWKT(p orb.Point) (string, error) {
	s, err := wkt.Marshal(geom.NewPointFlat(geom.XY, []float64{p.Lon(), p.Lat()}))
	if err != nil {
		return "", eris.Wrap(err, "report: point wkt")
	}
	return s, nil
}

// EncodePolyline renders a lon/lat line in the encoded polyline format (lat,lon order)
func EncodePolyline(ls orb.LineString) string {
	coords := make([][]float64, len(ls))
	for i, p := range ls {
		coords[i] = []float64{p.Lat(), p.Lon()}
	}
	return string(polyline.EncodeCoords(coords))
}
