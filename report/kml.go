package report

import (
	"fmt"
	"io"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-kml"

	"kuanb/carriageway-validator/multidigit"
	"kuanb/carriageway-validator/poi"
	"kuanb/carriageway-validator/roadnet"
)

// WriteKML writes mismatched links and misplaced POIs of a sector as a KML document.
// Each violation carries the two carriageways it was found between.
func WriteKML(w io.Writer, ds *roadnet.SectorDataset, t *multidigit.Tally, res *poi.Result, adjs []poi.Adjudication) error {
	doc := []kml.Element{kml.Name("sector " + ds.Sector)}

	if t != nil {
		folder := []kml.Element{kml.Name("mismatches")}
		for _, m := range t.Mismatches {
			s, ok := ds.Segments[m.LinkID]
			if !ok || len(s.Geometry) < 2 {
				continue
			}
			folder = append(folder, kml.Placemark(
				kml.Name(fmt.Sprintf("link %d %s", m.LinkID, m.Direction)),
				kml.Description(fmt.Sprintf("separator=%s width=%.2f length=%.2f roadbed=%.2f",
					m.Params.SeparatorType, m.Params.SeparatorWidth, m.Params.SeparatorLength, m.Params.RoadbedDistance)),
				kml.LineString(kml.Coordinates(coordinates(s.Geometry)...)),
			))
		}
		doc = append(doc, kml.Folder(folder...))
	}

	if res != nil {
		verdicts := adjudicationsByPOI(adjs)
		folder := []kml.Element{kml.Name("misplaced pois")}
		for _, v := range res.Violations {
			desc := fmt.Sprintf("link=%d sibling=%d street=%s percent=%.1f", v.LinkID, v.SiblingID, v.StreetName, v.Percent)
			if a, ok := verdicts[v.POIID]; ok {
				desc += fmt.Sprintf(" action=%s", a.Action)
			}
			folder = append(folder, kml.Placemark(
				kml.Name(fmt.Sprintf("poi %d %s", v.POIID, v.Name)),
				kml.Description(desc),
				kml.Point(kml.Coordinates(kml.Coordinate{Lon: v.Coord.Lon(), Lat: v.Coord.Lat()})),
			))
			for _, id := range []int64{v.LinkID, v.SiblingID} {
				n, ok := ds.Naming[id]
				if !ok || len(n.Geometry) < 2 {
					continue
				}
				folder = append(folder, kml.Placemark(
					kml.Name(fmt.Sprintf("poi %d carriageway %d", v.POIID, id)),
					kml.LineString(kml.Coordinates(coordinates(n.Geometry)...)),
				))
			}
		}
		doc = append(doc, kml.Folder(folder...))
	}

	if err := kml.KML(kml.Document(doc...)).WriteIndent(w, "", "  "); err != nil {
		return eris.Wrapf(err, "report: write kml for sector %s", ds.Sector)
	}
	return nil
}

func coordinates(ls orb.LineString) []kml.Coordinate {
	out := make([]kml.Coordinate, len(ls))
	for i, p := range ls {
		out[i] = kml.Coordinate{Lon: p.Lon(), Lat: p.Lat()}
	}
	return out
}
