package forecast

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/oapi-codegen/runtime"
)

// DefaultTimeout bounds every call when the caller does not supply an http.Client.
const DefaultTimeout = 5 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 1 << 20

// ErrMissingDemand is returned when a prediction response lacks forecastedDemand.
var ErrMissingDemand = errors.New("forecast response missing forecastedDemand")

// Prediction is the body of GET /predict/{productName}.
type Prediction struct {
	ForecastedDemand *float64 `json:"forecastedDemand"`
}

// StatusError reports a non-2xx answer from the forecast service.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("forecast service returned %s", e.Status)
}

// Client talks to the demand forecasting model over HTTP.
type Client struct {
	baseURL *url.URL
	http    *http.Client
}

// NewClient validates the base URL and applies a default http.Client.
func NewClient(baseURL string, httpClient *http.Client) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("forecast base URL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse forecast base URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return nil, fmt.Errorf("forecast base URL %q must be absolute", baseURL)
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	return &Client{baseURL: parsed, http: httpClient}, nil
}

// Predict fetches the forecasted demand for a product. The name is path-escaped.
func (c *Client) Predict(ctx context.Context, productName string) (float64, error) {
	if c == nil || c.http == nil {
		return 0, errors.New("forecast client not configured")
	}
	segment, err := runtime.StyleParamWithLocation("simple", false, "productName", runtime.ParamLocationPath, productName)
	if err != nil {
		return 0, fmt.Errorf("encode product name: %w", err)
	}
	var body Prediction
	if err := c.getJSON(ctx, "/predict/"+segment, &body); err != nil {
		return 0, err
	}
	if body.ForecastedDemand == nil {
		return 0, ErrMissingDemand
	}
	return *body.ForecastedDemand, nil
}

// Report fetches one of the tabular reports the model exposes, e.g. "reorder".
func (c *Client) Report(ctx context.Context, name string) ([]map[string]any, error) {
	if c == nil || c.http == nil {
		return nil, errors.New("forecast client not configured")
	}
	name = strings.Trim(strings.TrimSpace(name), "/")
	if name == "" {
		return nil, errors.New("report name is required")
	}
	var rows []map[string]any
	if err := c.getJSON(ctx, "/"+name, &rows); err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []map[string]any{}
	}
	return rows, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	endpoint := c.baseURL.String() + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build forecast request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("call forecast service: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(out); err != nil {
		return fmt.Errorf("decode forecast response: %w", err)
	}
	return nil
}
