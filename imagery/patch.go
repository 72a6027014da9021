package imagery

import (
	"context"
	"image"
	"math"

	"github.com/paulmach/orb"
	"github.com/rotisserie/eris"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"kuanb/carriageway-validator/poi"
)

// Patch defaults
const (
	DefaultZoom           = 17
	DefaultPatchSize      = 160
	DefaultSidewalkOffset = 10
)

// TileFetcher downloads one tile
type TileFetcher interface {
	Fetch(ctx context.Context, t TileCoord, size int) (image.Image, error)
}

// PatchConfig sizes the patches cut around a POI
type PatchConfig struct {
	Zoom      int
	PatchSize int // pixels per side
	// SidewalkOffset shifts the sidewalk sample this many pixels below the road
	// in the rotated image; negative values sample above it
	SidewalkOffset int
}

// DefaultPatchConfig returns the standard sampling geometry
func DefaultPatchConfig() PatchConfig {
	return PatchConfig{
		Zoom:           DefaultZoom,
		PatchSize:      DefaultPatchSize,
		SidewalkOffset: DefaultSidewalkOffset,
	}
}

// Patcher cuts street and sidewalk patches from satellite tiles. Patches are
// rotated so the road runs left to right, centred on the POI.
type Patcher struct {
	cfg     PatchConfig
	fetcher TileFetcher
}

// NewPatcher creates a patcher
func NewPatcher(fetcher TileFetcher, cfg PatchConfig) *Patcher {
	if cfg.Zoom <= 0 {
		cfg.Zoom = DefaultZoom
	}
	if cfg.PatchSize <= 0 {
		cfg.PatchSize = DefaultPatchSize
	}
	return &Patcher{cfg: cfg, fetcher: fetcher}
}

// Patches implements poi.PatchSource
func (p *Patcher) Patches(ctx context.Context, v poi.Violation) (image.Image, image.Image, error) {
	return p.PatchesAt(ctx, v.Coord, v.Heading)
}

// PatchesAt cuts both patches around a lon/lat point for a road heading in degrees
func (p *Patcher) PatchesAt(ctx context.Context, pt orb.Point, heading float64) (image.Image, image.Image, error) {
	tile, fx, fy := LatLonToTile(pt.Lat(), pt.Lon(), p.cfg.Zoom)
	src, err := p.fetcher.Fetch(ctx, tile, p.cfg.PatchSize*3)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "imagery: patches at %v", pt)
	}

	b := src.Bounds()
	center := [2]float64{
		float64(b.Min.X) + fx*float64(b.Dx()),
		float64(b.Min.Y) + fy*float64(b.Dy()),
	}
	half := float64(p.cfg.PatchSize) / 2

	street := p.cut(src, center, heading, half, half)
	sidewalk := p.cut(src, center, heading, half, half-float64(p.cfg.SidewalkOffset))
	return street, sidewalk, nil
}

// cut rotates src clockwise by heading about center and places center at (dx, dy)
// of a new patch
func (p *Patcher) cut(src image.Image, center [2]float64, heading, dx, dy float64) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, p.cfg.PatchSize, p.cfg.PatchSize))
	draw.BiLinear.Transform(dst, rotation(center, heading, dx, dy), src, src.Bounds(), draw.Src, nil)
	return dst
}

// rotation maps source pixels to patch pixels
func rotation(center [2]float64, heading, dx, dy float64) f64.Aff3 {
	rad := heading * math.Pi / 180.0
	cos, sin := math.Cos(rad), math.Sin(rad)
	return f64.Aff3{
		cos, -sin, dx - (cos*center[0] - sin*center[1]),
		sin, cos, dy - (sin*center[0] + cos*center[1]),
	}
}
