package osm

import (
	"sort"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"kuanb/carriageway-validator/roadnet"
)

type OsmWayId int64

type OsmNodeId int64

type OsmNode struct {
	ID  OsmNodeId
	Lat float64
	Lon float64
}

// OsmWay is a highway way, or one link of it once split at intersections
type OsmWay struct {
	ID       OsmWayId
	Source   OsmWayId // way the link was cut from
	Nodes    []OsmNodeId
	Highway  string
	Tags     map[string]string
	Geometry orb.LineString
}

// OsmNetwork is the routable part of an extract, split into links
type OsmNetwork struct {
	Nodes map[int64]*OsmNode
	Ways  map[int64]*OsmWay
}

// Segment maps the link's tags onto a road segment
func (w *OsmWay) Segment() *roadnet.RoadSegment {
	fc, ramp := functionalClass(w.Highway)
	return &roadnet.RoadSegment{
		LinkID:        int64(w.ID),
		Geometry:      w.Geometry,
		GroundTruth:   dividedFlag(w.Highway, w.Tags),
		FuncClass:     fc,
		FormOfWay:     formOfWay(w.Highway, w.Tags),
		Bridge:        isSet(w.Tags["bridge"]),
		Tunnel:        isSet(w.Tags["tunnel"]),
		Ramp:          ramp,
		Bidirectional: !isOneway(w.Tags),
		Lanes:         lanes(w.Tags),
		StreetName:    w.Tags["name"],
	}
}

// Dataset converts the network into a sector dataset, links in id order.
// Named links also get a naming record over the same geometry.
func (g *OsmNetwork) Dataset(sector string) *roadnet.SectorDataset {
	ids := make([]int64, 0, len(g.Ways))
	for id := range g.Ways {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	ds := roadnet.NewSectorDataset(sector)
	for _, id := range ids {
		w := g.Ways[id]
		s := w.Segment()
		ds.AddSegment(s)
		if s.StreetName != "" {
			ds.AddNaming(&roadnet.NamingRecord{LinkID: s.LinkID, Geometry: w.Geometry, StreetName: s.StreetName})
		}
	}
	return ds
}

// functionalClass ranks highway types on the 1-5 scale; link roads are ramps
func functionalClass(highway string) (int, bool) {
	base, ramp := strings.CutSuffix(highway, "_link")
	switch base {
	case "motorway", "trunk":
		return 1, ramp
	case "primary":
		return 2, ramp
	case "secondary":
		return 3, ramp
	case "tertiary":
		return 4, ramp
	default:
		return roadnet.DefaultFuncClass, ramp
	}
}

func formOfWay(highway string, tags map[string]string) string {
	switch {
	case tags["junction"] == "roundabout":
		return "Roundabout"
	case highway == "motorway":
		return "Motorway"
	case tags["dual_carriageway"] == "yes":
		return "Dual Carriageway"
	default:
		return ""
	}
}

// dividedFlag reads dual_carriageway when tagged. Otherwise a one-way road of
// class 4 or better is taken as one side of a divided road.
func dividedFlag(highway string, tags map[string]string) roadnet.Flag {
	switch tags["dual_carriageway"] {
	case "yes":
		return roadnet.FlagYes
	case "no":
		return roadnet.FlagNo
	}
	fc, ramp := functionalClass(highway)
	if !ramp && fc <= 4 && isOneway(tags) && tags["junction"] != "roundabout" {
		return roadnet.FlagYes
	}
	return roadnet.FlagNo
}

func isOneway(tags map[string]string) bool {
	switch tags["oneway"] {
	case "yes", "true", "1", "-1":
		return true
	}
	return tags["highway"] == "motorway" || tags["junction"] == "roundabout"
}

func isSet(v string) bool {
	return v != "" && v != "no"
}

func lanes(tags map[string]string) int {
	n, err := strconv.Atoi(strings.TrimSpace(tags["lanes"]))
	if err != nil || n < 1 {
		return 0
	}
	return n
}
