package roadnet

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jonas-p/go-shp"
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const navFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"link_id": 101, "MULTIDIGIT": "Y", "FUNC_CLASS": 2, "FORM_OF_WAY": 2, "ST_NAME": "AV VALLARTA", "NUM_LANES": 3, "DIR_TRAVEL": "F"},
     "geometry": {"type": "LineString", "coordinates": [[-103.40, 20.67], [-103.399, 20.67]]}},
    {"type": "Feature",
     "properties": {"link_id": "102", "MULTIDIGIT": "N", "FUNC_CLASS": "x", "BRIDGE_FG": "y", "RAMP": "Y", "DIR_TRAVEL": "B", "LANE_COUNT_F": 0},
     "geometry": {"type": "MultiLineString", "coordinates": [[[-103.40, 20.68], [-103.399, 20.68]], [[-103.399, 20.68], [-103.398, 20.681]]]}},
    {"type": "Feature",
     "properties": {"link_id": 103, "MULTIDIGIT": null, "TUNNEL": "N", "TUNNEL_FG": "Y"},
     "geometry": {"type": "LineString", "coordinates": [[-103.40, 20.69]]}},
    {"type": "Feature",
     "properties": {"MULTIDIGIT": "Y"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
  ]
}`

const namingFixture = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature",
     "properties": {"link_id": 101, "ST_NAME": "AV VALLARTA"},
     "geometry": {"type": "LineString", "coordinates": [[-103.40, 20.67], [-103.399, 20.67]]}}
  ]
}`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoadNavGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.geojson")
	writeFile(t, path, navFixture)

	segments, err := LoadNavGeoJSON(path)
	require.NoError(t, err)
	require.Len(t, segments, 3)

	s := segments[0]
	assert.Equal(t, int64(101), s.LinkID)
	assert.Equal(t, FlagYes, s.GroundTruth)
	assert.Equal(t, 2, s.FuncClass)
	assert.Equal(t, "2", s.FormOfWay)
	assert.Equal(t, "AV VALLARTA", s.StreetName)
	assert.Equal(t, 3, s.Lanes)
	assert.False(t, s.Bidirectional)
	assert.Len(t, s.Geometry, 2)

	s = segments[1]
	assert.Equal(t, int64(102), s.LinkID)
	assert.Equal(t, FlagNo, s.GroundTruth)
	assert.Equal(t, DefaultFuncClass, s.FuncClass)
	assert.True(t, s.Bridge)
	assert.True(t, s.Ramp)
	assert.True(t, s.Bidirectional)
	assert.Equal(t, 1, s.Lanes, "a zero lane count is raised to one")
	assert.Len(t, s.Geometry, 4)

	s = segments[2]
	assert.Equal(t, Flag(""), s.GroundTruth)
	assert.False(t, s.GroundTruth.Valid())
	assert.False(t, s.Tunnel, "TUNNEL takes precedence over TUNNEL_FG")
	assert.Equal(t, 0, s.Lanes)
	assert.Len(t, s.Geometry, 1)
}

func TestLoadNavGeoJSONMissingColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.geojson")
	writeFile(t, path, `{"type": "FeatureCollection", "features": [
		{"type": "Feature", "properties": {"link_id": 1}, "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
	]}`)

	_, err := LoadNavGeoJSON(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingColumn))
}

func TestLoadNavGeoJSONMissingFile(t *testing.T) {
	_, err := LoadNavGeoJSON(filepath.Join(t.TempDir(), "absent.geojson"))
	assert.True(t, eris.Is(err, ErrMissingDataset))
}

func TestReadPOIs(t *testing.T) {
	data := "POI_ID, POI_NAME, LINK_ID, PERCFRREF\n" +
		"1244439551, Farmacia Guadalajara , 101, 50\n" +
		"bad, Nowhere, 101, 10\n" +
		"77, , 102, 12.5\n"

	pois, err := ReadPOIs(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, pois, 2)
	assert.Equal(t, POIRecord{ID: 1244439551, Name: "Farmacia Guadalajara", LinkID: 101, Percent: 50}, pois[0])
	assert.Equal(t, POIRecord{ID: 77, LinkID: 102, Percent: 12.5}, pois[1])
}

func TestReadPOIsMissingColumn(t *testing.T) {
	_, err := ReadPOIs(strings.NewReader("POI_ID,LINK_ID\n1,2\n"))
	assert.True(t, eris.Is(err, ErrMissingColumn))
}

func TestSectorSourceLoad(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, navDir, "SREETS_NAV_4815075.geojson"), navFixture)
	writeFile(t, filepath.Join(dir, namingDir, "STREETS_NAMING_ADDRESSING_4815075.geojson"), namingFixture)
	writeFile(t, filepath.Join(dir, poiDir, "POI_4815075.csv"), "POI_ID,LINK_ID,PERCFRREF\n5,101,25\n")

	ds, err := NewSectorSource(dir, "").Load("4815075")
	require.NoError(t, err)
	assert.Equal(t, []int64{101, 102, 103}, ds.Order())
	assert.Len(t, ds.Naming, 1)
	require.Len(t, ds.POIs, 1)

	p, err := ds.POI(5)
	require.NoError(t, err)
	assert.Equal(t, int64(101), p.LinkID)
}

func TestSectorSourceWithoutPOIs(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, navDir, "STREETS_NAV_1.geojson"), navFixture)
	writeFile(t, filepath.Join(dir, namingDir, "SREETS_NAMING_ADDRESSING_1.geojson"), namingFixture)

	ds, err := NewSectorSource(dir, FormatGeoJSON).Load("1")
	require.NoError(t, err)
	assert.Empty(t, ds.POIs)
}

func TestSectorSourceMissingDataset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, navDir, "STREETS_NAV_1.geojson"), navFixture)

	_, err := NewSectorSource(dir, FormatGeoJSON).Load("1")
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingDataset))

	_, err = NewSectorSource(dir, FormatGeoJSON).Load("2")
	assert.True(t, eris.Is(err, ErrMissingDataset))
}

func TestSectorDatasetLookups(t *testing.T) {
	ds := NewSectorDataset("s")
	ds.AddSegment(&RoadSegment{LinkID: 1, Geometry: orb.LineString{{-103.4, 20.6}, {-103.3, 20.8}}})
	ds.AddSegment(&RoadSegment{LinkID: 2})
	ds.AddSegment(&RoadSegment{LinkID: 1, StreetName: "replaced"})
	ds.AddNaming(&NamingRecord{LinkID: 1})
	ds.AddPOI(POIRecord{ID: 9, LinkID: 1})

	assert.Equal(t, []int64{1, 2}, ds.Order())

	s, err := ds.Segment(1)
	require.NoError(t, err)
	assert.Equal(t, "replaced", s.StreetName)

	_, err = ds.Segment(3)
	assert.True(t, eris.Is(err, ErrLinkNotFound))

	_, err = ds.NamingFor(2)
	assert.True(t, eris.Is(err, ErrLinkNotFound))

	_, err = ds.POI(10)
	assert.True(t, eris.Is(err, ErrPoiNotFound))
}

func TestSectorDatasetProjector(t *testing.T) {
	ds := NewSectorDataset("s")
	assert.Nil(t, ds.Projector())

	ds.AddSegment(&RoadSegment{LinkID: 1, Geometry: orb.LineString{{-103.4, 20.6}, {-103.3, 20.8}}})
	p := ds.Projector()
	require.NotNil(t, p)
	assert.InDelta(t, 20.7, p.RefLat, 1e-9)
}

// writeNavShapefile writes a one-record NAV shapefile. go-shp's writer names the
// attribute table <base>dbf, so it is moved to <base>.dbf where readers look.
func writeNavShapefile(t *testing.T, path string) {
	t.Helper()

	w, err := shp.Create(path, shp.POLYLINE)
	require.NoError(t, err)
	require.NoError(t, w.SetFields([]shp.Field{
		shp.NumberField("LINK_ID", 12),
		shp.StringField("MULTIDIGIT", 1),
		shp.StringField("FUNC_CLASS", 1),
		shp.StringField("ST_NAME", 40),
	}))
	w.Write(shp.NewPolyLine([][]shp.Point{{{X: -103.40, Y: 20.67}, {X: -103.399, Y: 20.67}}}))
	require.NoError(t, w.WriteAttribute(0, 0, 555))
	require.NoError(t, w.WriteAttribute(0, 1, "Y"))
	require.NoError(t, w.WriteAttribute(0, 2, "3"))
	require.NoError(t, w.WriteAttribute(0, 3, "CALZADA INDEPENDENCIA"))
	w.Close()

	base := strings.TrimSuffix(path, ".shp")
	require.NoError(t, os.Rename(base+"dbf", base+".dbf"))
}

func TestLoadNavShapefile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.shp")
	writeNavShapefile(t, path)

	segments, err := LoadNavShapefile(path)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, int64(555), segments[0].LinkID)
	assert.Equal(t, FlagYes, segments[0].GroundTruth)
	assert.Equal(t, 3, segments[0].FuncClass)
	assert.Equal(t, "CALZADA INDEPENDENCIA", segments[0].StreetName)
	assert.Equal(t, orb.LineString{{-103.40, 20.67}, {-103.399, 20.67}}, segments[0].Geometry)
}

func TestLoadNavShapefileMissingDBF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nav.shp")
	writeNavShapefile(t, path)
	require.NoError(t, os.Remove(strings.TrimSuffix(path, ".shp")+".dbf"))

	_, err := LoadNavShapefile(path)
	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrMissingDataset))
	assert.False(t, eris.Is(err, ErrMissingColumn))
}
