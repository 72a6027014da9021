package roadnet

import (
	"os"

	"github.com/paulmach/orb/geojson"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// LoadNavGeoJSON reads a STREETS_NAV feature collection
func LoadNavGeoJSON(path string) ([]*RoadSegment, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(fc, []string{colLinkID, colLinkIDAlt}, []string{colMultidigit}); err != nil {
		return nil, eris.Wrapf(err, "roadnet: %s", path)
	}

	segments := make([]*RoadSegment, 0, len(fc.Features))
	skipped := 0
	for _, f := range fc.Features {
		s, err := segmentFromAttributes(propertyAttributes(f.Properties), lineOf(f.Geometry))
		if err != nil {
			skipped++
			continue
		}
		segments = append(segments, s)
	}
	if skipped > 0 {
		zap.L().Debug("roadnet: skipped nav features without a usable link id",
			zap.String("path", path),
			zap.Int("skipped", skipped),
		)
	}
	return segments, nil
}

// LoadNamingGeoJSON reads a STREETS_NAMING_ADDRESSING feature collection
func LoadNamingGeoJSON(path string) ([]*NamingRecord, error) {
	fc, err := readFeatureCollection(path)
	if err != nil {
		return nil, err
	}
	if err := requireColumns(fc, []string{colLinkID, colLinkIDAlt}); err != nil {
		return nil, eris.Wrapf(err, "roadnet: %s", path)
	}

	records := make([]*NamingRecord, 0, len(fc.Features))
	for _, f := range fc.Features {
		n, err := namingFromAttributes(propertyAttributes(f.Properties), lineOf(f.Geometry))
		if err != nil {
			continue
		}
		records = append(records, n)
	}
	return records, nil
}

func readFeatureCollection(path string) (*geojson.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrMissingDataset, "roadnet: %s", path)
		}
		return nil, eris.Wrapf(err, "roadnet: read %s", path)
	}
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, eris.Wrapf(err, "roadnet: decode %s", path)
	}
	return fc, nil
}

// requireColumns checks that each group has at least one column present on some
// feature. An empty collection has no columns to check.
func requireColumns(fc *geojson.FeatureCollection, groups ...[]string) error {
	if len(fc.Features) == 0 {
		return nil
	}
	for _, group := range groups {
		found := false
		for _, f := range fc.Features {
			if _, ok := first(propertyAttributes(f.Properties), group...); ok {
				found = true
				break
			}
		}
		if !found {
			return eris.Wrapf(ErrMissingColumn, "column %s", group[0])
		}
	}
	return nil
}
