package roadnet

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
)

// Column names of the navigation and naming layers
const (
	colLinkID     = "link_id"
	colLinkIDAlt  = "LINK_ID"
	colMultidigit = "MULTIDIGIT"
	colFuncClass  = "FUNC_CLASS"
	colFormOfWay  = "FORM_OF_WAY"
	colStreetName = "ST_NAME"
	colRamp       = "RAMP"
	colManoeuvre  = "MANOEUVRE"
	colDirTravel  = "DIR_TRAVEL"
)

var (
	bridgeColumns = []string{"BRIDGE", "BRIDGE_FG"}
	tunnelColumns = []string{"TUNNEL", "TUNNEL_FG"}
	laneColumns   = []string{"NUM_LANES", "LANE_COUNT", "LANE_COUNT_F", "LANE_COUNT_R"}
)

// attributes is a read view over the columns of one record
type attributes interface {
	Get(key string) (string, bool)
}

type propertyAttributes geojson.Properties

func (p propertyAttributes) Get(key string) (string, bool) {
	v, ok := p[key]
	if !ok {
		return "", false
	}
	return stringify(v), true
}

type fieldAttributes map[string]string

func (f fieldAttributes) Get(key string) (string, bool) {
	v, ok := f[key]
	return v, ok
}

// stringify renders decoded JSON values the way they appear in the source tables;
// whole numbers lose their decimal point so 1.0 matches "1".
func stringify(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		if t {
			return "Y"
		}
		return "N"
	default:
		return strings.TrimSpace(fmt.Sprint(t))
	}
}

// first returns the value of the first column present
func first(a attributes, keys ...string) (string, bool) {
	for _, k := range keys {
		if v, ok := a.Get(k); ok {
			return v, true
		}
	}
	return "", false
}

func parseID(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)
	if id, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return id, nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, eris.Errorf("roadnet: invalid id %q", raw)
	}
	return int64(f), nil
}

func parseInt(raw string) (int, bool) {
	raw = strings.TrimSpace(raw)
	if n, err := strconv.Atoi(raw); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return int(f), true
}

func isYes(v string) bool {
	return strings.ToUpper(strings.TrimSpace(v)) == "Y"
}

func linkIDOf(a attributes) (int64, error) {
	raw, ok := first(a, colLinkID, colLinkIDAlt)
	if !ok {
		return 0, eris.Wrapf(ErrMissingColumn, "roadnet: %s", colLinkID)
	}
	return parseID(raw)
}

func segmentFromAttributes(a attributes, g orb.LineString) (*RoadSegment, error) {
	id, err := linkIDOf(a)
	if err != nil {
		return nil, err
	}

	s := &RoadSegment{
		LinkID:    id,
		Geometry:  g,
		FuncClass: DefaultFuncClass,
	}
	if v, ok := a.Get(colMultidigit); ok {
		s.GroundTruth = normalizeFlag(v)
	}
	if v, ok := a.Get(colFuncClass); ok {
		if fc, ok := parseInt(v); ok {
			s.FuncClass = fc
		}
	}
	s.FormOfWay, _ = a.Get(colFormOfWay)
	s.StreetName, _ = a.Get(colStreetName)

	if v, ok := first(a, bridgeColumns...); ok {
		s.Bridge = isYes(v)
	}
	if v, ok := first(a, tunnelColumns...); ok {
		s.Tunnel = isYes(v)
	}
	if v, ok := a.Get(colRamp); ok {
		s.Ramp = isYes(v)
	}
	if v, ok := a.Get(colManoeuvre); ok {
		s.Manoeuvre = isYes(v)
	}
	if v, ok := a.Get(colDirTravel); ok {
		s.Bidirectional = strings.ToUpper(strings.TrimSpace(v)) == "B"
	}
	if v, ok := first(a, laneColumns...); ok {
		if n, ok := parseInt(v); ok {
			if n < 1 {
				n = 1
			}
			s.Lanes = n
		}
	}
	return s, nil
}

func namingFromAttributes(a attributes, g orb.LineString) (*NamingRecord, error) {
	id, err := linkIDOf(a)
	if err != nil {
		return nil, err
	}
	name, _ := a.Get(colStreetName)
	return &NamingRecord{LinkID: id, Geometry: g, StreetName: name}, nil
}

// lineOf flattens the supported geometry types into one polyline.
// Multi-part lines are joined in order.
func lineOf(g orb.Geometry) orb.LineString {
	switch t := g.(type) {
	case orb.LineString:
		return t
	case orb.MultiLineString:
		var out orb.LineString
		for _, part := range t {
			out = append(out, part...)
		}
		return out
	default:
		return nil
	}
}
