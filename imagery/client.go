package imagery

import (
	"bytes"
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// ErrNoAPIKey is returned when tiles are requested without credentials
var ErrNoAPIKey = eris.New("imagery: api key not configured")

// TileConfig configures the tile client
type TileConfig struct {
	APIKey        string
	URLTemplate   string
	Format        string
	RatePerSecond float64
	Retries       int // attempts after the first
	Backoff       time.Duration
	Timeout       time.Duration
}

// DefaultTileConfig returns the HERE satellite defaults
func DefaultTileConfig() TileConfig {
	return TileConfig{
		URLTemplate:   DefaultURLTemplate,
		Format:        "png",
		RatePerSecond: 5,
		Retries:       3,
		Backoff:       500 * time.Millisecond,
		Timeout:       30 * time.Second,
	}
}

// TileClient downloads raster tiles
type TileClient struct {
	cfg     TileConfig
	http    *http.Client
	limiter *rate.Limiter
}

// NewTileClient creates a tile client, filling unset config fields with defaults
func NewTileClient(cfg TileConfig) *TileClient {
	def := DefaultTileConfig()
	if cfg.URLTemplate == "" {
		cfg.URLTemplate = def.URLTemplate
	}
	if cfg.Format == "" {
		cfg.Format = def.Format
	}
	if cfg.RatePerSecond <= 0 {
		cfg.RatePerSecond = def.RatePerSecond
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	if cfg.Backoff <= 0 {
		cfg.Backoff = def.Backoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = def.Timeout
	}
	burst := int(cfg.RatePerSecond)
	if burst < 1 {
		burst = 1
	}
	return &TileClient{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), burst),
	}
}

// Fetch downloads and decodes one tile. size is clamped to what the service serves.
func (c *TileClient) Fetch(ctx context.Context, t TileCoord, size int) (image.Image, error) {
	if c.cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	size = ClampTileSize(size)
	url := TileURL(c.cfg.URLTemplate, t, size, c.cfg.Format, c.cfg.APIKey)

	body, err := withRetry(ctx, c.cfg.Retries+1, c.cfg.Backoff, "tile", func(ctx context.Context) ([]byte, error) {
		return c.get(ctx, url)
	})
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: fetch tile %d/%d/%d", t.Z, t.X, t.Y)
	}

	img, _, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "imagery: decode tile %d/%d/%d", t.Z, t.X, t.Y)
	}
	zap.L().Debug("imagery: tile fetched",
		zap.Int("z", t.Z), zap.Int("x", t.X), zap.Int("y", t.Y),
		zap.Int("size", size), zap.Int("bytes", len(body)),
	)
	return img, nil
}

func (c *TileClient) get(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &statusError{Code: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}
