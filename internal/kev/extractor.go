package kev

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the public CISA KEV catalog feed.
const DefaultEndpoint = "https://www.cisa.gov/sites/default/files/feeds/known_exploited_vulnerabilities.json"

const defaultUserAgent = "kevfeed-etl/1.0"

var (
	// ErrTransport covers timeouts, connection failures and non-2xx statuses.
	ErrTransport = errors.New("transport failure")
	// ErrMalformedBody means the response body was not decodable JSON.
	ErrMalformedBody = errors.New("malformed response body")
	// ErrWrongShape means the body decoded but is not a catalog payload.
	ErrWrongShape = errors.New("unexpected response shape")
)

type Extractor struct {
	endpoint  string
	userAgent string
	client    *http.Client
	logger    *zap.Logger
}

type ExtractorOption func(*Extractor)

func WithEndpoint(endpoint string) ExtractorOption {
	return func(e *Extractor) {
		e.endpoint = endpoint
	}
}

func WithTimeout(timeout time.Duration) ExtractorOption {
	return func(e *Extractor) {
		e.client.Timeout = timeout
	}
}

func WithUserAgent(userAgent string) ExtractorOption {
	return func(e *Extractor) {
		e.userAgent = userAgent
	}
}

func WithLogger(logger *zap.Logger) ExtractorOption {
	return func(e *Extractor) {
		e.logger = logger
	}
}

func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		endpoint:  DefaultEndpoint,
		userAgent: defaultUserAgent,
		client:    &http.Client{Timeout: 20 * time.Second},
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Fetch issues a single GET against the catalog endpoint. There are no
// retries; one failed attempt fails the stage.
func (e *Extractor) Fetch(ctx context.Context) (*Catalog, error) {
	e.logger.Info("fetching vulnerability catalog", zap.String("endpoint", e.endpoint))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := e.client.Do(req)
	if err != nil {
		e.logger.Error("catalog fetch failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		e.logger.Error("catalog fetch returned error status", zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: unexpected status %d", ErrTransport, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		e.logger.Error("reading catalog body failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}

	catalog, err := decodeCatalog(body)
	if err != nil {
		e.logger.Error("decoding catalog failed", zap.Error(err))
		return nil, err
	}

	e.logger.Info("catalog fetch succeeded",
		zap.String("catalog_version", catalog.CatalogVersion),
		zap.Int("records", len(catalog.Vulnerabilities)))

	return catalog, nil
}

func decodeCatalog(body []byte) (*Catalog, error) {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(body, &top); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: body is not an object", ErrWrongShape)
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}

	if _, ok := top["vulnerabilities"]; !ok {
		return nil, fmt.Errorf("%w: missing vulnerabilities key", ErrWrongShape)
	}

	var catalog Catalog
	if err := json.Unmarshal(body, &catalog); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWrongShape, err)
	}

	return &catalog, nil
}
