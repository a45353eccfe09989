// Package devserver is an in-memory gallery backend for local development
// and end-to-end tests. It serves the same routes the client talks to.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/five82/gallery/internal/gallery"
)

const (
	defaultPageSize   = 6
	defaultMaxUpload  = 10 << 20
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
)

// Options configure the development backend.
type Options struct {
	Addr string
	// PageSize defaults to 6.
	PageSize int
	// PublicURL prefixes upload URLs; defaults to http://<Addr>.
	PublicURL string
	// MaxUploadBytes caps multipart bodies; defaults to 10 MiB.
	MaxUploadBytes int64
	Logger         *slog.Logger
}

type blob struct {
	contentType string
	data        []byte
}

// Server holds images newest first plus uploaded blobs.
type Server struct {
	opts   Options
	logger *slog.Logger
	engine *gin.Engine

	mu     sync.RWMutex
	images []gallery.Item
	blobs  map[string]blob
}

type createImageRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	URL         string `json:"url" binding:"required"`
}

// New builds the server and its routes.
func New(opts Options) *Server {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = defaultMaxUpload
	}
	if opts.PublicURL == "" && opts.Addr != "" {
		opts.PublicURL = "http://" + hostAddr(opts.Addr)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(cors.Default())

	s := &Server{
		opts:   opts,
		logger: logger,
		engine: engine,
		blobs:  make(map[string]blob),
	}
	s.routes()
	return s
}

// Handler exposes the gin engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Seed inserts items as if they had been created in order.
func (s *Server) Seed(items ...gallery.NewImage) {
	for _, in := range items {
		s.create(in)
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("devserver listening", "addr", s.opts.Addr, "page_size", s.opts.PageSize)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (s *Server) routes() {
	api := s.engine.Group("/api")
	{
		api.GET("/images", s.handleListImages)
		api.POST("/images", s.handleCreateImage)
		api.POST("/upload", s.handleUpload)
	}
	s.engine.GET("/uploads/:id", s.handleBlob)
}

func (s *Server) handleListImages(c *gin.Context) {
	after := c.Query("after")

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := 0
	if after != "" {
		start = s.indexLocked(after)
		if start < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown cursor"})
			return
		}
	}

	end := min(start+s.opts.PageSize, len(s.images))
	resp := gallery.ImageListResponse{Data: append([]gallery.Item{}, s.images[start:end]...)}
	if end < len(s.images) {
		next := s.images[end].ID
		resp.After = &next
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCreateImage(c *gin.Context) {
	var req createImageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	item := s.create(gallery.NewImage{Title: req.Title, Description: req.Description, URL: req.URL})
	s.logger.Info("image created", "id", item.ID, "title", item.Title)
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpload(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.opts.MaxUploadBytes)
	header, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image field required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}

	id := uuid.NewString()
	s.mu.Lock()
	s.blobs[id] = blob{contentType: contentType, data: data}
	s.mu.Unlock()

	url := s.publicURL(c) + "/uploads/" + id
	s.logger.Info("blob stored", "id", id, "bytes", len(data))
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"url": url}})
}

func (s *Server) handleBlob(c *gin.Context) {
	s.mu.RLock()
	b, ok := s.blobs[c.Param("id")]
	s.mu.RUnlock()
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	c.Data(http.StatusOK, b.contentType, b.data)
}

func (s *Server) create(in gallery.NewImage) gallery.Item {
	item := gallery.Item{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Description: in.Description,
		URL:         in.URL,
		TS:          time.Now().UnixMicro(),
	}
	s.mu.Lock()
	s.images = append([]gallery.Item{item}, s.images...)
	s.mu.Unlock()
	return item
}

func (s *Server) indexLocked(id string) int {
	for i, item := range s.images {
		if item.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) publicURL(c *gin.Context) string {
	if s.opts.PublicURL != "" {
		return s.opts.PublicURL
	}
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + c.Request.Host
}

func hostAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "127.0.0.1" + addr
	}
	return addr
}
