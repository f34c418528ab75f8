// Package mockbackend is an in-memory stand-in for the document backend,
// used for local development and tests.
package mockbackend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/iksnae/targus/internal"
)

// CollectionShape selects how GET /collections renders its response
type CollectionShape string

const (
	ShapeArray   CollectionShape = "array"   // [{"name":..., "count":...}]
	ShapeWrapped CollectionShape = "wrapped" // {"collections": [...]}
	ShapeMapping CollectionShape = "mapping" // {"<name>": {"count":...}}
	ShapeNames   CollectionShape = "names"   // ["a", "b"]
)

// Options configures which request shapes the backend accepts
type Options struct {
	// UploadField is the only multipart field accepted by POST /upload
	UploadField string
	// ChatTextKey is the only body field accepted as the chat message
	ChatTextKey string
	// Shape controls the GET /collections response
	Shape CollectionShape
	// Collections are created empty at startup
	Collections []string
}

// Collection is the backend's record of one collection
type Collection struct {
	Name        string
	Description string
	Files       []string
}

// ChatRecord is a chat request the backend accepted
type ChatRecord struct {
	Collection string
	Text       string
}

// Server is the mock backend state and its gin engine
type Server struct {
	opts   Options
	engine *gin.Engine

	mu          sync.Mutex
	collections map[string]*Collection
	chats       []ChatRecord
	healthy     bool
}

// New builds a backend with opts; empty fields take the real backend's
// defaults
func New(opts Options) *Server {
	if opts.UploadField == "" {
		opts.UploadField = "files"
	}
	if opts.ChatTextKey == "" {
		opts.ChatTextKey = "query"
	}
	if opts.Shape == "" {
		opts.Shape = ShapeArray
	}

	s := &Server{
		opts:        opts,
		collections: make(map[string]*Collection),
		healthy:     true,
	}
	for _, name := range opts.Collections {
		s.collections[name] = &Collection{Name: name}
	}

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.UseRawPath = true
	router.Use(gin.Recovery(), requestLogger())
	s.routes(router)
	s.engine = router
	return s
}

func (s *Server) routes(router *gin.Engine) {
	router.POST("/upload", s.handleUpload)
	router.POST("/chat", s.handleChat)
	router.GET("/collections", s.handleListCollections)
	router.DELETE("/collections/:name", s.handleDeleteCollection)
	router.GET("/health", s.handleHealth)
}

// Handler returns the HTTP handler, for httptest and custom servers
func (s *Server) Handler() http.Handler {
	return s.engine
}

// ListenAndServe serves on addr until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// SetHealthy controls what GET /health reports
func (s *Server) SetHealthy(healthy bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.healthy = healthy
}

// Collection returns a copy of the named collection
func (s *Server) Collection(name string) (Collection, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		return Collection{}, false
	}
	out := *c
	out.Files = append([]string(nil), c.Files...)
	return out, true
}

// CollectionNames returns the collection names, sorted
func (s *Server) CollectionNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sortedNamesLocked()
}

// Chats returns the accepted chat requests in arrival order
func (s *Server) Chats() []ChatRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatRecord(nil), s.chats...)
}

func (s *Server) sortedNamesLocked() []string {
	names := make([]string, 0, len(s.collections))
	for name := range s.collections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// missingField renders a FastAPI-style validation failure
func missingField(c *gin.Context, loc, field string) {
	c.JSON(http.StatusUnprocessableEntity, gin.H{
		"detail": []gin.H{{
			"loc":  []string{loc, field},
			"msg":  "field required",
			"type": "value_error.missing",
		}},
	})
}

func (s *Server) handleUpload(c *gin.Context) {
	header, err := c.FormFile(s.opts.UploadField)
	if err != nil {
		missingField(c, "body", s.opts.UploadField)
		return
	}

	f, err := header.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}
	size, err := io.Copy(io.Discard, f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read upload"})
		return
	}

	name := c.PostForm("collection_name")
	if name == "" {
		name = "documents"
	}

	s.mu.Lock()
	col, ok := s.collections[name]
	if !ok {
		col = &Collection{Name: name}
		s.collections[name] = col
	}
	col.Files = append(col.Files, header.Filename)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"message":         "File uploaded successfully",
		"filename":        header.Filename,
		"size":            size,
		"collection_name": name,
	})
}

func (s *Server) handleChat(c *gin.Context) {
	var body map[string]interface{}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid JSON body"})
		return
	}

	text, _ := body[s.opts.ChatTextKey].(string)
	if text == "" {
		missingField(c, "body", s.opts.ChatTextKey)
		return
	}
	collection, _ := body["collection_name"].(string)
	if collection == "" {
		missingField(c, "body", "collection_name")
		return
	}

	s.mu.Lock()
	s.chats = append(s.chats, ChatRecord{Collection: collection, Text: text})
	var files []string
	if col, ok := s.collections[collection]; ok {
		files = append(files, col.Files...)
	}
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"response": fmt.Sprintf("[%s] %s", collection, text),
		"sources":  files,
	})
}

func (s *Server) handleListCollections(c *gin.Context) {
	s.mu.Lock()
	names := s.sortedNamesLocked()
	items := make([]gin.H, 0, len(names))
	mapping := make(gin.H, len(names))
	for _, name := range names {
		col := s.collections[name]
		items = append(items, gin.H{"name": name, "count": len(col.Files), "description": col.Description})
		mapping[name] = gin.H{"count": len(col.Files), "description": col.Description}
	}
	s.mu.Unlock()

	switch s.opts.Shape {
	case ShapeWrapped:
		c.JSON(http.StatusOK, gin.H{"collections": items})
	case ShapeMapping:
		c.JSON(http.StatusOK, mapping)
	case ShapeNames:
		c.JSON(http.StatusOK, names)
	default:
		c.JSON(http.StatusOK, items)
	}
}

func (s *Server) handleDeleteCollection(c *gin.Context) {
	name := c.Param("name")

	s.mu.Lock()
	_, ok := s.collections[name]
	delete(s.collections, name)
	s.mu.Unlock()

	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Collection not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Collection %s deleted", name)})
}

func (s *Server) handleHealth(c *gin.Context) {
	s.mu.Lock()
	healthy := s.healthy
	count := len(s.collections)
	s.mu.Unlock()

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "collections": count})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		internal.LogDebug("mock %s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start).Round(time.Microsecond))
	}
}
