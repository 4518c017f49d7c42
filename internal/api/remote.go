package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Remote is a Shop served over HTTP.
type Remote struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

var _ Shop = (*Remote)(nil)

const (
	defaultUserAgent = "statekit/0.1"
	requestTimeout   = 5 * time.Second
)

// NewRemote builds a Remote for baseURL. A bare host:port is treated as
// plain HTTP.
func NewRemote(baseURL string) (*Remote, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Remote{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
	}, nil
}

// Products fetches the catalog from GET /api/products.
func (r *Remote) Products(ctx context.Context) ([]Product, error) {
	var payload ProductListResponse
	if err := r.do(ctx, http.MethodGet, "/api/products", nil, &payload); err != nil {
		return nil, err
	}
	return payload.Products, nil
}

// Buy posts the cart to /api/checkout. A 402 or 409 response is reported as
// ErrCheckout.
func (r *Remote) Buy(ctx context.Context, items []CartLine) error {
	err := r.do(ctx, http.MethodPost, "/api/checkout", CheckoutRequest{Items: items}, nil)
	var se *statusError
	if errors.As(err, &se) && (se.code == http.StatusPaymentRequired || se.code == http.StatusConflict) {
		return fmt.Errorf("%w: %v", ErrCheckout, se)
	}
	return err
}

type statusError struct {
	path string
	code int
}

func (e *statusError) Error() string {
	return fmt.Sprintf("api %s returned status %d", e.path, e.code)
}

func (r *Remote) do(ctx context.Context, method, path string, body, dest any) error {
	if r == nil {
		return fmt.Errorf("client is nil")
	}
	reqURL := r.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", r.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := r.http.Do(req)
	if err != nil {
		return fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 400 {
		return &statusError{path: path, code: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base_url %q: %w", raw, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
