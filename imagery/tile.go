// Package imagery fetches satellite tiles and cuts oriented patches around POIs.
package imagery

import (
	"math"
	"strconv"
	"strings"
)

// Tile sizes the imagery service accepts
const (
	MinTileSize = 256
	MaxTileSize = 512
)

// DefaultURLTemplate is the HERE raster tile endpoint for satellite imagery
const DefaultURLTemplate = "https://maps.hereapi.com/v3/base/mc/{z}/{x}/{y}/{format}?apiKey={key}&style=satellite.day&tileSize={size}"

// TileCoord addresses a slippy map tile
type TileCoord struct {
	Z, X, Y int
}

// LatLonToTile returns the tile containing a point and the point's fractional
// position inside it, each in [0,1)
func LatLonToTile(lat, lon float64, zoom int) (TileCoord, float64, float64) {
	fx, fy := worldPosition(lat, lon, zoom)
	x, y := math.Floor(fx), math.Floor(fy)
	return TileCoord{Z: zoom, X: int(x), Y: int(y)}, fx - x, fy - y
}

// worldPosition is the point's position in tile units at the given zoom
func worldPosition(lat, lon float64, zoom int) (float64, float64) {
	latRad := lat * math.Pi / 180.0
	n := math.Exp2(float64(zoom))
	x := (lon + 180.0) / 360.0 * n
	y := (1.0 - math.Log(math.Tan(latRad)+1/math.Cos(latRad))/math.Pi) / 2.0 * n
	return x, y
}

// ClampTileSize keeps a requested tile size within what the service serves
func ClampTileSize(size int) int {
	switch {
	case size > MaxTileSize:
		return MaxTileSize
	case size < MinTileSize:
		return MinTileSize
	default:
		return size
	}
}

// TileURL expands a URL template for one tile
func TileURL(template string, t TileCoord, size int, format, key string) string {
	return strings.NewReplacer(
		"{z}", strconv.Itoa(t.Z),
		"{x}", strconv.Itoa(t.X),
		"{y}", strconv.Itoa(t.Y),
		"{size}", strconv.Itoa(size),
		"{format}", format,
		"{key}", key,
	).Replace(template)
}
