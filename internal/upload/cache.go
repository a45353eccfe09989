package upload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	lru "github.com/hashicorp/golang-lru/v2"
)

const defaultCacheSize = 64

// CachingStorer remembers the URL for content it already stored, keyed by
// the sha256 of the bytes, so re-submitting the same file skips the upload.
type CachingStorer struct {
	next  Storer
	cache *lru.Cache[string, string]
}

// NewCachingStorer wraps next with an LRU of size entries (size <= 0 uses a default).
func NewCachingStorer(next Storer, size int) (*CachingStorer, error) {
	if size <= 0 {
		size = defaultCacheSize
	}
	cache, err := lru.New[string, string](size)
	if err != nil {
		return nil, fmt.Errorf("create upload cache: %w", err)
	}
	return &CachingStorer{next: next, cache: cache}, nil
}

// Store returns the cached URL for identical content or delegates to the wrapped storer.
func (c *CachingStorer) Store(ctx context.Context, file File) (string, error) {
	sum, err := digest(file)
	if err != nil {
		return "", err
	}
	if stored, ok := c.cache.Get(sum); ok {
		return stored, nil
	}
	stored, err := c.next.Store(ctx, file)
	if err != nil {
		return "", err
	}
	c.cache.Add(sum, stored)
	return stored, nil
}

func digest(file File) (string, error) {
	if file.Open == nil {
		return "", fmt.Errorf("file %q has no content", file.Name)
	}
	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open image: %w", err)
	}
	defer func() { _ = src.Close() }()

	h := sha256.New()
	if _, err := io.Copy(h, src); err != nil {
		return "", fmt.Errorf("hash image: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
