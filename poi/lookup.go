package poi

import (
	"github.com/rotisserie/eris"

	"kuanb/carriageway-validator/roadnet"
)

// IsOnDividedRoad reports whether the link a POI is placed on is recorded as
// divided. Unknown POIs and links are errors; an unset flag reads as not divided.
func IsOnDividedRoad(ds *roadnet.SectorDataset, poiID int64) (bool, error) {
	p, err := ds.POI(poiID)
	if err != nil {
		return false, eris.Wrap(err, "poi: divided road lookup")
	}
	seg, err := ds.Segment(p.LinkID)
	if err != nil {
		return false, eris.Wrapf(err, "poi: divided road lookup for poi %d", poiID)
	}
	return seg.Divided(), nil
}
