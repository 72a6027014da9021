package roadnet

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadNavShapefile reads a STREETS_NAV shapefile
func LoadNavShapefile(path string) ([]*RoadSegment, error) {
	var segments []*RoadSegment
	err := readShapefile(path, [][]string{{colLinkID, colLinkIDAlt}, {colMultidigit}},
		func(a fieldAttributes, g orb.LineString) {
			s, err := segmentFromAttributes(a, g)
			if err != nil {
				return
			}
			segments = append(segments, s)
		})
	return segments, err
}

// LoadNamingShapefile reads a STREETS_NAMING_ADDRESSING shapefile
func LoadNamingShapefile(path string) ([]*NamingRecord, error) {
	var records []*NamingRecord
	err := readShapefile(path, [][]string{{colLinkID, colLinkIDAlt}},
		func(a fieldAttributes, g orb.LineString) {
			n, err := namingFromAttributes(a, g)
			if err != nil {
				return
			}
			records = append(records, n)
		})
	return records, err
}

func readShapefile(path string, required [][]string, emit func(fieldAttributes, orb.LineString)) error {
	// go-shp does not report a missing .dbf
	dbfPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".dbf"
	for _, p := range []string{path, dbfPath} {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return eris.Wrapf(ErrMissingDataset, "roadnet: %s", p)
			}
			return eris.Wrapf(err, "roadnet: stat %s", p)
		}
	}

	reader, err := shp.Open(path)
	if err != nil {
		return eris.Wrapf(err, "roadnet: open shapefile %s", path)
	}
	defer func() { _ = reader.Close() }()

	fields := reader.Fields()
	names := make([]string, len(fields))
	present := make(fieldAttributes, len(fields))
	for i, f := range fields {
		names[i] = strings.TrimRight(f.String(), "\x00")
		present[names[i]] = ""
	}
	for _, group := range required {
		if _, ok := first(present, group...); !ok {
			return eris.Wrapf(ErrMissingColumn, "roadnet: %s column %s", path, group[0])
		}
	}

	var skipped int
	for reader.Next() {
		_, shape := reader.Shape()

		attrs := make(fieldAttributes, len(names))
		for i, name := range names {
			attrs[name] = strings.TrimSpace(strings.TrimRight(reader.Attribute(i), "\x00"))
		}

		line := polyLineToLineString(shape)
		if line == nil {
			skipped++
		}
		emit(attrs, line)
	}

	if skipped > 0 {
		zap.L().Debug("roadnet: shapefile records without polyline geometry",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return nil
}

// polyLineToLineString joins every part of a shapefile PolyLine in order
func polyLineToLineString(shape shp.Shape) orb.LineString {
	pl, ok := shape.(*shp.PolyLine)
	if !ok || pl == nil || len(pl.Points) == 0 {
		return nil
	}
	line := make(orb.LineString, 0, len(pl.Points))
	for _, p := range pl.Points {
		line = append(line, orb.Point{p.X, p.Y})
	}
	return line
}
