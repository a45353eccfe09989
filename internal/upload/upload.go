// Package upload stores raw image files with an external service and returns
// the URL the image API should record.
package upload

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrEmptyURL is returned when the storage service answers without a URL.
var ErrEmptyURL = errors.New("storage returned no url")

// File is an image picked for upload.
type File struct {
	Name string
	Size int64
	Open func() (io.ReadCloser, error)
}

// Storer saves a file and returns a fetchable URL for it.
type Storer interface {
	Store(ctx context.Context, file File) (string, error)
}

// FromPath describes the file at path without reading it.
func FromPath(path string) (File, error) {
	info, err := os.Stat(path)
	if err != nil {
		return File{}, fmt.Errorf("stat image: %w", err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("stat image: %s is a directory", path)
	}
	return File{
		Name: filepath.Base(path),
		Size: info.Size(),
		Open: func() (io.ReadCloser, error) { return os.Open(path) },
	}, nil
}
