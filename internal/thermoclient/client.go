// Package thermoclient talks to a running thermoprops HTTP API.
package thermoclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/Agrid-Dev/thermoprops/internal/bleve"
	"github.com/Agrid-Dev/thermoprops/internal/saturation"
	"github.com/Agrid-Dev/thermoprops/pkg/api"
)

const maxResponseBytes = 4 << 20

// APIError is returned for every non-2xx response.
type APIError struct {
	Status int
	Detail string

	kind error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("thermo api error (%d): %s", e.Status, e.Detail)
}

// Unwrap exposes the saturation error kind for property lookups, so callers
// can use errors.Is with saturation.ErrInvalidPressure and
// saturation.ErrOutsideSaturationRange.
func (e *APIError) Unwrap() error { return e.kind }

type Client struct {
	base string
	http *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("thermoclient: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("thermoclient: base url %q must be absolute http(s)", baseURL)
	}
	c := &Client{
		base: strings.TrimRight(u.String(), "/"),
		http: newHTTPClient(DefaultTransportConfig()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// propertiesWire tolerates servers that omit the internal energies.
type propertiesWire struct {
	api.PropertiesV1
	ULiquid *float64 `json:"u_l"`
	UVapor  *float64 `json:"u_v"`
}

// Properties fetches saturation properties at pressurePa. When the server
// omits u_l or u_v they are derived as h - p/rho.
func (c *Client) Properties(ctx context.Context, pressurePa float64) (saturation.Properties, error) {
	q := url.Values{"pressurePa": {strconv.FormatFloat(pressurePa, 'g', -1, 64)}}

	var w propertiesWire
	if err := c.do(ctx, http.MethodGet, "/thermo/properties?"+q.Encode(), nil, &w); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) {
			switch apiErr.Status {
			case http.StatusBadRequest:
				apiErr.kind = saturation.ErrInvalidPressure
			case http.StatusUnprocessableEntity:
				apiErr.kind = saturation.ErrOutsideSaturationRange
			}
		}
		return saturation.Properties{}, err
	}

	p := w.PropertiesV1.Properties()
	if w.ULiquid != nil {
		p.ULiquid = *w.ULiquid
	} else {
		p.ULiquid = p.HLiquid - p.Pressure/p.RhoLiquid
	}
	if w.UVapor != nil {
		p.UVapor = *w.UVapor
	} else {
		p.UVapor = p.HVapor - p.Pressure/p.RhoVapor
	}
	return p, nil
}

// Bleve runs the burst-energy calculation on the server.
func (c *Client) Bleve(ctx context.Context, in bleve.Inputs) (bleve.Results, error) {
	req := api.BleveRequestV1{
		Volume:         in.Volume,
		LiquidFraction: in.LiquidFraction,
		PressureRel:    in.PressureRel,
		Asb:            in.Asb,
		Thresholds:     in.Thresholds,
	}
	var res api.BleveResultsV1
	if err := c.do(ctx, http.MethodPost, "/bleve", req, &res); err != nil {
		return bleve.Results{}, err
	}
	return res.Results(), nil
}

func (c *Client) Health(ctx context.Context) (string, error) {
	var h api.HealthV1
	if err := c.do(ctx, http.MethodGet, "/healthz", nil, &h); err != nil {
		return "", err
	}
	return h.Status, nil
}

func (c *Client) Version(ctx context.Context) (api.VersionV1, error) {
	var v api.VersionV1
	err := c.do(ctx, http.MethodGet, "/version", nil, &v)
	return v, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("thermoclient: encode request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("thermoclient: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("thermoclient: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("thermoclient: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newAPIError(resp.StatusCode, data)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("thermoclient: decode response: %w", err)
	}
	return nil
}

func newAPIError(status int, body []byte) *APIError {
	var e api.ErrorV1
	if err := json.Unmarshal(body, &e); err == nil && e.Detail != "" {
		return &APIError{Status: status, Detail: e.Detail}
	}
	detail := strings.TrimSpace(string(body))
	if detail == "" {
		detail = http.StatusText(status)
	}
	return &APIError{Status: status, Detail: detail}
}
