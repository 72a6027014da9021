package classify

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"kuanb/carriageway-validator/poi"
)

// ErrBadResponse is returned when the model service answers with something unusable
var ErrBadResponse = eris.New("classify: bad response")

// Client sends patches to a zero-shot classification service. The service takes
// {"image": base64 PNG, "prompts": [...]} on POST /classify and answers with the
// best prompt as {"label": ..., "confidence": ...}.
type Client struct {
	BaseURL        string
	GeneralPrompts []string
	HalfPrompts    []string

	http *http.Client
}

// NewClient creates a client for the service at baseURL
func NewClient(baseURL string, categories []string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		BaseURL:        strings.TrimRight(baseURL, "/"),
		GeneralPrompts: GeneralPrompts(categories),
		HalfPrompts:    HalfPrompts,
		http:           &http.Client{Timeout: timeout},
	}
}

// ClassifyGeneral implements poi.PatchClassifier
func (c *Client) ClassifyGeneral(ctx context.Context, img image.Image) (poi.Prediction, error) {
	return c.Classify(ctx, img, c.GeneralPrompts)
}

// ClassifyHalf implements poi.PatchClassifier
func (c *Client) ClassifyHalf(ctx context.Context, img image.Image) (poi.Prediction, error) {
	return c.Classify(ctx, img, c.HalfPrompts)
}

// Classify scores img against prompts and returns the best one
func (c *Client) Classify(ctx context.Context, img image.Image, prompts []string) (poi.Prediction, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: encode patch")
	}

	body, err := sjson.SetBytes(nil, "image", base64.StdEncoding.EncodeToString(buf.Bytes()))
	if err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: build request")
	}
	if body, err = sjson.SetBytes(body, "prompts", prompts); err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: build request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/classify", bytes.NewReader(body))
	if err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: new request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: post")
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return poi.Prediction{}, eris.Wrap(err, "classify: read response")
	}
	if resp.StatusCode != http.StatusOK {
		return poi.Prediction{}, eris.Wrapf(ErrBadResponse, "status %d", resp.StatusCode)
	}
	if !gjson.ValidBytes(raw) {
		return poi.Prediction{}, eris.Wrap(ErrBadResponse, "invalid json")
	}

	label := gjson.GetBytes(raw, "label")
	conf := gjson.GetBytes(raw, "confidence")
	if !label.Exists() || !conf.Exists() {
		return poi.Prediction{}, eris.Wrap(ErrBadResponse, "missing label or confidence")
	}
	return poi.Prediction{Label: label.String(), Confidence: conf.Float()}, nil
}
