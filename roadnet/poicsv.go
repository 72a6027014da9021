package roadnet

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jszwec/csvutil"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// POI CSV columns
const (
	colPOIID   = "POI_ID"
	colPOIName = "POI_NAME"
	colPOILink = "LINK_ID"
	colPercent = "PERCFRREF"
)

type poiRow struct {
	ID      string `csv:"POI_ID"`
	Name    string `csv:"POI_NAME,omitempty"`
	LinkID  string `csv:"LINK_ID"`
	Percent string `csv:"PERCFRREF"`
}

// LoadPOICSV reads a POI table from path
func LoadPOICSV(path string) ([]POIRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, eris.Wrapf(ErrMissingDataset, "roadnet: %s", path)
		}
		return nil, eris.Wrapf(err, "roadnet: open %s", path)
	}
	defer f.Close()

	pois, err := ReadPOIs(f)
	if err != nil {
		return nil, eris.Wrapf(err, "roadnet: %s", path)
	}
	return pois, nil
}

// ReadPOIs decodes POI rows. Header cells are trimmed; rows whose id, link or
// percentage do not parse are skipped.
func ReadPOIs(r io.Reader) ([]POIRecord, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, eris.Wrap(err, "read header")
	}
	present := make(fieldAttributes, len(header))
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
		present[header[i]] = ""
	}
	for _, col := range []string{colPOIID, colPOILink, colPercent} {
		if _, ok := present[col]; !ok {
			return nil, eris.Wrapf(ErrMissingColumn, "column %s", col)
		}
	}

	dec, err := csvutil.NewDecoder(cr, header...)
	if err != nil {
		return nil, eris.Wrap(err, "init decoder")
	}

	var pois []POIRecord
	skipped := 0
	for {
		var row poiRow
		if err := dec.Decode(&row); err == io.EOF {
			break
		} else if err != nil {
			return nil, eris.Wrap(err, "decode row")
		}

		p, ok := row.record()
		if !ok {
			skipped++
			continue
		}
		pois = append(pois, p)
	}
	if skipped > 0 {
		zap.L().Debug("roadnet: skipped unparseable POI rows", zap.Int("skipped", skipped))
	}
	return pois, nil
}

func (r poiRow) record() (POIRecord, bool) {
	id, err := parseID(r.ID)
	if err != nil {
		return POIRecord{}, false
	}
	link, err := parseID(r.LinkID)
	if err != nil {
		return POIRecord{}, false
	}
	pct, err := strconv.ParseFloat(strings.TrimSpace(r.Percent), 64)
	if err != nil {
		return POIRecord{}, false
	}
	return POIRecord{
		ID:      id,
		Name:    strings.TrimSpace(r.Name),
		LinkID:  link,
		Percent: pct,
	}, true
}
