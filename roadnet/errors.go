package roadnet

import "github.com/rotisserie/eris"

var (
	// ErrMissingDataset is returned when a sector file cannot be found
	ErrMissingDataset = eris.New("missing dataset")
	// ErrMissingColumn is returned when a required attribute column is absent
	ErrMissingColumn = eris.New("missing column")
	// ErrLinkNotFound is returned by explicit lookups of an unknown link id
	ErrLinkNotFound = eris.New("link not found")
	// ErrPoiNotFound is returned by explicit lookups of an unknown POI id
	ErrPoiNotFound = eris.New("poi not found")
)
