package classify

import (
	"context"
	"encoding/base64"
	"image"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"kuanb/carriageway-validator/poi"
)

const facilityTypes = `Facility Type,General Category
5800,restaurant
5400,grocery store
7011,hotel
5813,restaurant
9999,
`

func TestReadCategories(t *testing.T) {
	cats, err := ReadCategories(strings.NewReader(facilityTypes))
	require.NoError(t, err)
	assert.Equal(t, []string{"grocery store", "hotel", "restaurant"}, cats)
}

func TestReadCategoriesMissingColumn(t *testing.T) {
	_, err := ReadCategories(strings.NewReader("Facility Type,Category\n1,x\n"))
	require.Error(t, err)
}

func TestLoadCategories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "POI_Facility_Types.csv")
	require.NoError(t, os.WriteFile(path, []byte(facilityTypes), 0o644))

	cats, err := LoadCategories(path)
	require.NoError(t, err)
	assert.Len(t, cats, 3)

	_, err = LoadCategories(filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
}

func TestPrompts(t *testing.T) {
	assert.Equal(t,
		[]string{"no point of interest", "hotel", "restaurant"},
		GeneralPrompts([]string{"hotel", "restaurant"}))
	assert.Equal(t, poi.LabelLowerHalf, HalfPrompts[2])
	assert.Len(t, HalfPrompts, 3)
}

func TestClientClassify(t *testing.T) {
	var gotPrompts []string
	var gotImage bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/classify", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		body, _ := io.ReadAll(r.Body)

		raw, err := base64.StdEncoding.DecodeString(gjson.GetBytes(body, "image").String())
		gotImage = err == nil && len(raw) > 0
		gotPrompts = nil
		for _, p := range gjson.GetBytes(body, "prompts").Array() {
			gotPrompts = append(gotPrompts, p.String())
		}
		best := gotPrompts[len(gotPrompts)-1]
		_, _ = w.Write([]byte(`{"label": "` + best + `", "confidence": 0.73}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", []string{"hotel"}, 0)
	img := image.NewRGBA(image.Rect(0, 0, 8, 8))

	p, err := c.ClassifyGeneral(context.Background(), img)
	require.NoError(t, err)
	assert.True(t, gotImage)
	assert.Equal(t, []string{poi.LabelNoPOI, "hotel"}, gotPrompts)
	assert.Equal(t, poi.Prediction{Label: "hotel", Confidence: 0.73}, p)

	p, err = c.ClassifyHalf(context.Background(), img)
	require.NoError(t, err)
	assert.Equal(t, HalfPrompts, gotPrompts)
	assert.Equal(t, poi.LabelLowerHalf, p.Label)
}

func TestClientBadResponses(t *testing.T) {
	cases := map[string]http.HandlerFunc{
		"status": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		},
		"not json": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte("<html>"))
		},
		"missing confidence": func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"label": "hotel"}`))
		},
	}
	for name, h := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(h)
			defer srv.Close()

			_, err := NewClient(srv.URL, nil, 0).ClassifyGeneral(context.Background(), image.NewRGBA(image.Rect(0, 0, 2, 2)))
			require.Error(t, err)
			assert.True(t, eris.Is(err, ErrBadResponse))
		})
	}
}
