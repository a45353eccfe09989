package gallery

//go:generate go run go.uber.org/mock/mockgen -source=client.go -destination=mocks/mock.go

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// API defines the image endpoints. It is implemented by *Client and mocked in tests.
type API interface {
	FetchImages(ctx context.Context, after string) (Page, error)
	CreateImage(ctx context.Context, image NewImage) (Item, error)
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the gallery HTTP API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
}

const (
	defaultAPIBind   = "127.0.0.1:3000"
	defaultUserAgent = "gallery/0.1"
	requestTimeout   = 10 * time.Second
	imagesPath       = "/api/images"
)

// NewClient builds a Client using the provided apiBind host:port or URL.
func NewClient(apiBind string) (*Client, error) {
	base, err := parseBaseURL(apiBind)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL: base,
		http: &http.Client{
			Timeout: requestTimeout,
		},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchImages retrieves one page of images. An empty after requests the first page.
func (c *Client) FetchImages(ctx context.Context, after string) (Page, error) {
	if c == nil {
		return Page{}, fmt.Errorf("client is nil")
	}
	values := url.Values{}
	if after != "" {
		values.Set("after", after)
	}
	rel := &url.URL{Path: imagesPath, RawQuery: values.Encode()}
	var payload ImageListResponse
	if err := c.doURL(ctx, http.MethodGet, rel, nil, &payload); err != nil {
		return Page{}, err
	}
	return payload.Page(), nil
}

// CreateImage stores a new image record and returns it as created by the API.
func (c *Client) CreateImage(ctx context.Context, image NewImage) (Item, error) {
	if c == nil {
		return Item{}, fmt.Errorf("client is nil")
	}
	body, err := json.Marshal(image)
	if err != nil {
		return Item{}, fmt.Errorf("encode request: %w", err)
	}
	var created Item
	if err := c.doURL(ctx, http.MethodPost, &url.URL{Path: imagesPath}, body, &created); err != nil {
		return Item{}, err
	}
	return created, nil
}

func (c *Client) doURL(ctx context.Context, method string, rel *url.URL, body []byte, dest any) error {
	reqURL := c.baseURL.ResolveReference(rel)
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &NetworkError{Op: "execute request", Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &ServerError{Method: method, Path: rel.Path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		return nil
	}
	decoder := json.NewDecoder(resp.Body)
	if err := decoder.Decode(dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func parseBaseURL(apiBind string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiBind)
	if trimmed == "" {
		trimmed = defaultAPIBind
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_bind %q: %w", apiBind, err)
	}
	u.Path = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
