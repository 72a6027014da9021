package roadnet

import (
	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"

	"kuanb/carriageway-validator/geom"
)

// SectorDataset is the read-only snapshot of one sector. Link ids are kept in
// load order, which decides every first-found tie-break downstream.
type SectorDataset struct {
	Sector   string
	Segments map[int64]*RoadSegment
	Naming   map[int64]*NamingRecord
	POIs     []POIRecord

	order []int64
	pois  map[int64]int
}

// NewSectorDataset creates an empty dataset for a sector
func NewSectorDataset(sector string) *SectorDataset {
	return &SectorDataset{
		Sector:   sector,
		Segments: make(map[int64]*RoadSegment),
		Naming:   make(map[int64]*NamingRecord),
		pois:     make(map[int64]int),
	}
}

// AddSegment registers a segment. A repeated link id replaces the earlier record
// but keeps its original position.
func (d *SectorDataset) AddSegment(s *RoadSegment) {
	if _, ok := d.Segments[s.LinkID]; !ok {
		d.order = append(d.order, s.LinkID)
	}
	d.Segments[s.LinkID] = s
}

// AddNaming registers a naming record
func (d *SectorDataset) AddNaming(n *NamingRecord) {
	d.Naming[n.LinkID] = n
}

// AddPOI registers a POI record
func (d *SectorDataset) AddPOI(p POIRecord) {
	if _, ok := d.pois[p.ID]; !ok {
		d.pois[p.ID] = len(d.POIs)
	}
	d.POIs = append(d.POIs, p)
}

// Order returns the link ids in load order
func (d *SectorDataset) Order() []int64 {
	return d.order
}

// Segment looks up a navigation link
func (d *SectorDataset) Segment(linkID int64) (*RoadSegment, error) {
	s, ok := d.Segments[linkID]
	if !ok {
		return nil, eris.Wrapf(ErrLinkNotFound, "roadnet: sector %s link %d", d.Sector, linkID)
	}
	return s, nil
}

// NamingFor looks up the naming record of a link
func (d *SectorDataset) NamingFor(linkID int64) (*NamingRecord, error) {
	n, ok := d.Naming[linkID]
	if !ok {
		return nil, eris.Wrapf(ErrLinkNotFound, "roadnet: sector %s naming for link %d", d.Sector, linkID)
	}
	return n, nil
}

// POI looks up a POI by id, returning the first record with that id
func (d *SectorDataset) POI(id int64) (POIRecord, error) {
	idx, ok := d.pois[id]
	if !ok {
		return POIRecord{}, eris.Wrapf(ErrPoiNotFound, "roadnet: sector %s poi %d", d.Sector, id)
	}
	return d.POIs[idx], nil
}

// Bound returns the bounding box of every segment geometry
func (d *SectorDataset) Bound() (orb.Bound, bool) {
	var b orb.Bound
	found := false
	for _, id := range d.order {
		g := d.Segments[id].Geometry
		if len(g) == 0 {
			continue
		}
		if !found {
			b = g.Bound()
			found = true
			continue
		}
		b = b.Union(g.Bound())
	}
	return b, found
}

// Projector returns a metric projector centred on the sector, or nil when the
// sector has no geometry at all
func (d *SectorDataset) Projector() *geom.Projector {
	b, ok := d.Bound()
	if !ok {
		return nil
	}
	return geom.NewProjector(b.Center()[1])
}
