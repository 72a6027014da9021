package roadnet

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Supported network file formats
const (
	FormatGeoJSON   = "geojson"
	FormatShapefile = "shapefile"
)

// Directory and file naming of a sector delivery. Some deliveries misspell
// STREETS as SREETS, so both are tried.
const (
	navDir    = "STREETS_NAV"
	namingDir = "STREETS_NAMING_ADDRESSING"
	poiDir    = "POIs"
)

var streetsPrefixes = []string{"SREETS", "STREETS"}

// SectorSource loads sector datasets from a data directory
type SectorSource struct {
	Dir    string
	Format string
}

// NewSectorSource creates a source rooted at dir. An empty format means GeoJSON.
func NewSectorSource(dir, format string) *SectorSource {
	if format == "" {
		format = FormatGeoJSON
	}
	return &SectorSource{Dir: dir, Format: format}
}

// Load reads the navigation and naming layers of a sector, plus its POI table
// when one is present.
func (s *SectorSource) Load(sector string) (*SectorDataset, error) {
	navPath, err := s.locate(navDir, "NAV", sector)
	if err != nil {
		return nil, err
	}
	namingPath, err := s.locate(namingDir, "NAMING_ADDRESSING", sector)
	if err != nil {
		return nil, err
	}

	var segments []*RoadSegment
	var naming []*NamingRecord
	switch s.Format {
	case FormatShapefile:
		if segments, err = LoadNavShapefile(navPath); err != nil {
			return nil, err
		}
		if naming, err = LoadNamingShapefile(namingPath); err != nil {
			return nil, err
		}
	case FormatGeoJSON:
		if segments, err = LoadNavGeoJSON(navPath); err != nil {
			return nil, err
		}
		if naming, err = LoadNamingGeoJSON(namingPath); err != nil {
			return nil, err
		}
	default:
		return nil, eris.Errorf("roadnet: unsupported format %q", s.Format)
	}

	ds := NewSectorDataset(sector)
	for _, seg := range segments {
		ds.AddSegment(seg)
	}
	for _, n := range naming {
		ds.AddNaming(n)
	}

	pois, err := s.LoadPOIs(sector)
	switch {
	case err == nil:
		for _, p := range pois {
			ds.AddPOI(p)
		}
	case eris.Is(err, ErrMissingDataset):
		zap.L().Debug("roadnet: sector has no POI table", zap.String("sector", sector))
	default:
		return nil, err
	}

	zap.L().Info("roadnet: loaded sector",
		zap.String("sector", sector),
		zap.Int("segments", len(ds.Segments)),
		zap.Int("naming", len(ds.Naming)),
		zap.Int("pois", len(ds.POIs)),
	)
	return ds, nil
}

// LoadPOIs reads POIs/POI_<sector>.csv
func (s *SectorSource) LoadPOIs(sector string) ([]POIRecord, error) {
	return LoadPOICSV(filepath.Join(s.Dir, poiDir, fmt.Sprintf("POI_%s.csv", sector)))
}

func (s *SectorSource) locate(dir, layer, sector string) (string, error) {
	ext := ".geojson"
	if s.Format == FormatShapefile {
		ext = ".shp"
	}
	var tried []string
	for _, prefix := range streetsPrefixes {
		p := filepath.Join(s.Dir, dir, fmt.Sprintf("%s_%s_%s%s", prefix, layer, sector, ext))
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		tried = append(tried, p)
	}
	return "", eris.Wrapf(ErrMissingDataset, "roadnet: no %s file for sector %s (tried %v)", layer, sector, tried)
}
