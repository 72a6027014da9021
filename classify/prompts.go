// Package classify scores image patches against zero-shot text prompts served
// by a remote vision model.
package classify

import (
	"encoding/csv"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"

	"kuanb/carriageway-validator/poi"
)

// categoryColumn holds the category name in the facility types table
const categoryColumn = "General Category"

// HalfPrompts locate a POI relative to the road in a rotated patch
var HalfPrompts = []string{
	poi.LabelNoPOI,
	poi.LabelUpperHalf,
	poi.LabelLowerHalf,
}

type facilityType struct {
	Category string `csv:"General Category"`
}

// LoadCategories reads the distinct general categories of a facility types CSV
func LoadCategories(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: open %s", path)
	}
	defer f.Close()

	cats, err := ReadCategories(f)
	if err != nil {
		return nil, eris.Wrapf(err, "classify: read %s", path)
	}
	return cats, nil
}

// ReadCategories returns the sorted distinct general categories of a facility types table
func ReadCategories(r io.Reader) ([]string, error) {
	dec, err := csvutil.NewDecoder(csv.NewReader(r))
	if err != nil {
		return nil, eris.Wrap(err, "classify: read header")
	}
	if !hasColumn(dec.Header(), categoryColumn) {
		return nil, eris.Errorf("classify: missing column %q", categoryColumn)
	}

	seen := make(map[string]struct{})
	for {
		var row facilityType
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "classify: decode row")
		}
		cat := strings.TrimSpace(row.Category)
		if cat == "" {
			continue
		}
		seen[cat] = struct{}{}
	}

	cats := make([]string, 0, len(seen))
	for c := range seen {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	return cats, nil
}

// GeneralPrompts prepends the no-POI prompt to the categories
func GeneralPrompts(categories []string) []string {
	out := make([]string, 0, len(categories)+1)
	out = append(out, poi.LabelNoPOI)
	for _, c := range categories {
		if c != poi.LabelNoPOI {
			out = append(out, c)
		}
	}
	return out
}

func hasColumn(header []string, name string) bool {
	for _, h := range header {
		if strings.TrimSpace(h) == name {
			return true
		}
	}
	return false
}
