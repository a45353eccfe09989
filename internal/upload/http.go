package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const storeTimeout = 30 * time.Second

// HTTPStorer posts files as multipart form data to an imgbb-compatible endpoint.
type HTTPStorer struct {
	endpoint *url.URL
	key      string
	http     *http.Client
}

type storeResponse struct {
	Data struct {
		URL        string `json:"url"`
		DisplayURL string `json:"display_url"`
	} `json:"data"`
}

// NewHTTPStorer builds a storer for endpoint. key, when set, is sent as the
// "key" query parameter.
func NewHTTPStorer(endpoint, key string) (*HTTPStorer, error) {
	trimmed := strings.TrimSpace(endpoint)
	if trimmed == "" {
		return nil, fmt.Errorf("upload endpoint is empty")
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse upload endpoint %q: %w", endpoint, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("upload endpoint %q must be an absolute url", endpoint)
	}
	return &HTTPStorer{
		endpoint: u,
		key:      strings.TrimSpace(key),
		http:     &http.Client{Timeout: storeTimeout},
	}, nil
}

// Store uploads file in the "image" form field and returns the stored URL.
func (s *HTTPStorer) Store(ctx context.Context, file File) (string, error) {
	if file.Open == nil {
		return "", fmt.Errorf("file %q has no content", file.Name)
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = src.Close() }()

	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("image", file.Name)
	if err != nil {
		return "", fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return "", fmt.Errorf("read image: %w", err)
	}
	if err := form.Close(); err != nil {
		return "", fmt.Errorf("close form: %w", err)
	}

	target := *s.endpoint
	if s.key != "" {
		values := target.Query()
		values.Set("key", s.key)
		target.RawQuery = values.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target.String(), &body)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", form.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := s.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("storage %s returned status %d", s.endpoint.Path, resp.StatusCode)
	}
	var payload storeResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	stored := strings.TrimSpace(payload.Data.URL)
	if stored == "" {
		stored = strings.TrimSpace(payload.Data.DisplayURL)
	}
	if stored == "" {
		return "", ErrEmptyURL
	}
	return stored, nil
}
