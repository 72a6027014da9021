// Package osm reads OpenStreetMap PBF extracts into sector datasets, so the
// validator can run against community data as well as vendor deliveries.
package osm

import (
	"io"
	"os"
	"runtime"
	"sort"

	"github.com/paulmach/orb"
	"github.com/qedus/osmpbf"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var highwayTypesList = []string{
	"motorway",
	"motorway_link",
	"trunk",
	"trunk_link",
	"primary",
	"primary_link",
	"secondary",
	"secondary_link",
	"tertiary",
	"tertiary_link",
	"unclassified",
	"residential",
	"service",
	"living_street",
}

// LoadOsmFile decodes a PBF extract into a network of links
func LoadOsmFile(filePath string) (*OsmNetwork, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, eris.Wrapf(err, "osm: open %s", filePath)
	}
	defer f.Close()

	g, err := Decode(f)
	if err != nil {
		return nil, eris.Wrapf(err, "osm: decode %s", filePath)
	}
	return g, nil
}

// Decode reads nodes and highway ways from a PBF stream
func Decode(r io.Reader) (*OsmNetwork, error) {
	d := osmpbf.NewDecoder(r)

	// use more memory from the start, it is faster
	d.SetBufferSize(osmpbf.MaxBlobSize)

	// start decoding with several goroutines, it is faster
	if err := d.Start(runtime.GOMAXPROCS(-1)); err != nil {
		return nil, eris.Wrap(err, "osm: start decoder")
	}

	var nc, wc, rc uint64
	nodes := make(map[int64]*OsmNode)
	ways := make(map[int64]*OsmWay)

	for {
		if v, err := d.Decode(); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "osm: decode entity")
		} else {
			switch v := v.(type) {
			case *osmpbf.Node:
				nodes[v.ID] = &OsmNode{
					ID:  OsmNodeId(v.ID),
					Lat: v.Lat,
					Lon: v.Lon,
				}
				nc++
			case *osmpbf.Way:
				nodeIDs := make([]OsmNodeId, len(v.NodeIDs))
				for i, id := range v.NodeIDs {
					nodeIDs[i] = OsmNodeId(id)
				}
				ways[v.ID] = &OsmWay{
					ID:      OsmWayId(v.ID),
					Source:  OsmWayId(v.ID),
					Highway: v.Tags["highway"],
					Tags:    v.Tags,
					Nodes:   nodeIDs,
				}
				wc++
			case *osmpbf.Relation:
				// relations carry no carriageway geometry
				rc++
			default:
				return nil, eris.Errorf("osm: unknown entity type %T", v)
			}
		}
	}
	zap.L().Debug("osm: decoded",
		zap.Uint64("nodes", nc), zap.Uint64("ways", wc), zap.Uint64("relations", rc))

	return BuildNetwork(nodes, ways), nil
}

// BuildNetwork keeps highway ways and splits them into links at intersections
// and way ends. Links are numbered in way id order.
func BuildNetwork(nodes map[int64]*OsmNode, ways map[int64]*OsmWay) *OsmNetwork {
	whitelistedHighways := make(map[string]struct{}, len(highwayTypesList))
	for _, hw := range highwayTypesList {
		whitelistedHighways[hw] = struct{}{}
	}

	// Remove ways not whitelisted in highwayTypesList
	filteredWays := make(map[int64]*OsmWay)
	for id, way := range ways {
		if _, ok := whitelistedHighways[way.Highway]; ok {
			filteredWays[id] = way
		}
	}
	zap.L().Debug("osm: filtered ways",
		zap.Int("dropped", len(ways)-len(filteredWays)), zap.Int("kept", len(filteredWays)))
	ways = filteredWays

	// Nodes shared by more than one way, plus every way end, bound a link
	nodeWayCount := make(map[OsmNodeId]int)
	for _, way := range ways {
		for _, nid := range way.Nodes {
			nodeWayCount[nid]++
		}
	}

	wayIDs := make([]int64, 0, len(ways))
	for id := range ways {
		wayIDs = append(wayIDs, id)
	}
	sort.Slice(wayIDs, func(i, j int) bool { return wayIDs[i] < wayIDs[j] })

	resultNodes := make(map[int64]*OsmNode)
	resultWays := make(map[int64]*OsmWay)
	var newWayID int64 = 1
	for _, wid := range wayIDs {
		way := ways[wid]
		segStart := 0
		for i, nid := range way.Nodes {
			if i == 0 {
				continue
			}
			if nodeWayCount[nid] < 2 && i != len(way.Nodes)-1 {
				continue
			}
			segment := way.Nodes[segStart : i+1]
			geometry := buildLineString(segment, nodes)
			if len(geometry) >= 2 {
				resultWays[newWayID] = &OsmWay{
					ID:       OsmWayId(newWayID),
					Source:   way.ID,
					Nodes:    []OsmNodeId{segment[0], nid},
					Highway:  way.Highway,
					Tags:     way.Tags,
					Geometry: geometry,
				}
				newWayID++
				for _, end := range []OsmNodeId{segment[0], nid} {
					if n, ok := nodes[int64(end)]; ok {
						resultNodes[int64(end)] = n
					}
				}
			}
			segStart = i
		}
	}
	zap.L().Info("osm: network built",
		zap.Int("links", len(resultWays)), zap.Int("junctions", len(resultNodes)))

	return &OsmNetwork{
		Nodes: resultNodes,
		Ways:  resultWays,
	}
}

// buildLineString creates a LineString geometry from a slice of node IDs
func buildLineString(nodeIDs []OsmNodeId, nodes map[int64]*OsmNode) orb.LineString {
	geom := make(orb.LineString, 0, len(nodeIDs))
	for _, nid := range nodeIDs {
		if node, ok := nodes[int64(nid)]; ok {
			geom = append(geom, orb.Point{node.Lon, node.Lat})
		}
	}
	return geom
}
