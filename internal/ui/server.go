// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ui is the browser-based UI shell: a gin server on the loopback
// interface rendering the main, picker, confirm, result, viewer, history
// and help screens. Button presses are form posts handled synchronously.
package ui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pdiddy/tetra-pdf/internal/pdfinfo"
	"github.com/pdiddy/tetra-pdf/internal/selection"
	"github.com/pdiddy/tetra-pdf/pkg/types"
)

const shutdownTimeout = 5 * time.Second

// Previewer extracts page text for the viewer screen.
type Previewer interface {
	Preview(ctx context.Context, path string, page int) (pdfinfo.Preview, error)
}

// Merger runs the merge operation.
type Merger interface {
	Merge(ctx context.Context, inputs []string, output string) (types.MergeResult, error)
}

// HistoryStore records and lists merges.
type HistoryStore interface {
	Record(ctx context.Context, r types.MergeResult) error
	Recent(ctx context.Context, limit int) ([]types.MergeResult, error)
}

// Deps are the components the UI shell drives. History may be nil.
type Deps struct {
	Selection *selection.Selection
	Previewer Previewer
	Merger    Merger
	History   HistoryStore
	Config    types.Config
	Logger    *zap.Logger
}

// Server serves the UI.
type Server struct {
	deps   Deps
	logger *zap.Logger
	pages  map[string]*template.Template
	help   template.HTML

	mu    sync.Mutex
	flash *types.Response
}

// New parses the embedded templates and help text and returns a Server.
func New(deps Deps) (*Server, error) {
	if deps.Selection == nil || deps.Previewer == nil || deps.Merger == nil {
		return nil, errors.New("ui: selection, previewer and merger are required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	help, err := renderHelp()
	if err != nil {
		return nil, err
	}
	return &Server{deps: deps, logger: logger, pages: pages, help: help}, nil
}

// Handler returns the gin engine with all routes registered.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(requestLogger(s.logger), gin.Recovery(), sameOriginOnly(), rejectCrossSite(s.logger))

	r.GET("/", s.home)
	r.GET("/healthz", s.health)
	r.GET("/api/selection", s.selectionJSON)

	r.GET("/pick", s.pick)
	r.GET("/pick/cancel", s.cancelPick)
	r.POST("/select", s.selectFiles)

	r.POST("/files/:index/remove", s.removeFile)
	r.POST("/files/:index/move", s.moveFile)
	r.POST("/clear", s.clearFiles)

	r.GET("/merge", s.confirmMerge)
	r.POST("/merge", s.runMerge)

	r.GET("/view/:index", s.view)
	r.GET("/thumb/:file", s.thumb)

	r.GET("/history", s.historyPage)
	r.GET("/help", s.helpPage)
	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
// ready, when non-nil, is called with the base URL once the listener is up.
func (s *Server) Run(ctx context.Context, addr string, ready func(url string)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", addr, err)
	}

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("ui listening", zap.String("addr", ln.Addr().String()))
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	if ready != nil {
		ready(fmt.Sprintf("http://%s/", ln.Addr()))
	}

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("serving ui: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("ui shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func (s *Server) setFlash(r types.Response) {
	s.mu.Lock()
	s.flash = &r
	s.mu.Unlock()
}

func (s *Server) takeFlash() *types.Response {
	s.mu.Lock()
	defer s.mu.Unlock()
	f := s.flash
	s.flash = nil
	return f
}

// requestLogger logs each request through zap in place of gin's default
// stdout logger.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}
