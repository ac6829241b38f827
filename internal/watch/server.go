package watch

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/esbuild-filemap/filemap/internal/analyzer"
	ferrors "github.com/esbuild-filemap/filemap/internal/errors"
	"github.com/esbuild-filemap/filemap/internal/report"
)

//go:embed assets/reload.js
var reloadScript string

// Live-reload endpoints
const (
	ReloadScriptPath = "/__filemap/reload.js"
	WebSocketPath    = "/__filemap/ws"
)

// ServerConfig holds configuration for the report server
type ServerConfig struct {
	Metafile string
	Host     string
	Port     int
	Debounce time.Duration
	Analyzer *analyzer.Analyzer
	Logger   *zap.Logger
}

// Server serves the HTML report of one metafile and re-renders it whenever
// the metafile changes
type Server struct {
	config   ServerConfig
	analyzer *analyzer.Analyzer
	reload   *ReloadServer
	logger   *zap.Logger

	mu      sync.RWMutex
	current *analyzer.Result
	buildID string
	lastErr error
}

// NewServer creates a report server
func NewServer(config ServerConfig) (*Server, error) {
	if config.Metafile == "" {
		return nil, fmt.Errorf("no metafile to serve")
	}
	if config.Host == "" {
		config.Host = "localhost"
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}

	a := config.Analyzer
	if a == nil {
		var err error
		a, err = analyzer.New(analyzer.Options{Logger: config.Logger})
		if err != nil {
			return nil, err
		}
	}

	return &Server{
		config:   config,
		analyzer: a,
		reload:   NewReloadServer(config.Logger),
		logger:   config.Logger,
	}, nil
}

// Addr is the address the server listens on
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
}

// Handler returns the HTTP routes of the server
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(s.logger, WebSocketPath))
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleReport)
	r.Get("/api/stats", s.handleStats)
	r.Get("/api/layers", s.handleLayers)
	r.Get(ReloadScriptPath, s.handleReloadScript)
	r.Get(WebSocketPath, s.reload.HandleWebSocket)

	return r
}

// Reanalyze analyzes the metafile again and notifies browsers of the
// outcome. A failed analysis keeps serving the last good report.
func (s *Server) Reanalyze(ctx context.Context) error {
	start := time.Now()

	result, err := s.analyzer.AnalyzeFile(ctx, s.config.Metafile)
	if err != nil {
		s.mu.Lock()
		s.lastErr = err
		s.mu.Unlock()

		s.logger.Warn("analysis failed", zap.String("metafile", s.config.Metafile), zap.Error(err))
		s.reload.NotifyError(errorInfo(err))
		return err
	}

	s.mu.Lock()
	changed := s.current == nil || s.current.Hash != result.Hash
	s.current = result
	s.lastErr = nil
	if changed {
		s.buildID = uuid.NewString()
	}
	buildID := s.buildID
	s.mu.Unlock()

	duration := time.Since(start)
	s.logger.Info("analysis complete",
		zap.String("build", buildID),
		zap.Int("entries", len(result.Stats.EntryStats)),
		zap.Duration("duration", duration),
	)
	if changed {
		s.reload.NotifyReload(buildID, duration)
	}
	return nil
}

// Start analyzes the metafile, starts watching it and serves HTTP until ctx
// is cancelled
func (s *Server) Start(ctx context.Context) error {
	if err := s.Reanalyze(ctx); err != nil {
		return err
	}

	watcher, err := NewFileWatcher([]string{s.config.Metafile}, s.config.Debounce, s.logger, func(files []string) error {
		s.reload.NotifyAnalyzing(files)
		return s.Reanalyze(ctx)
	})
	if err != nil {
		return err
	}
	if err := watcher.Start(); err != nil {
		return err
	}
	defer watcher.Stop()
	defer s.reload.Close()

	httpServer := &http.Server{
		Addr:              s.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errChan := make(chan error, 1)
	go func() {
		s.logger.Info("serving report", zap.String("addr", "http://"+s.Addr()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
		close(errChan)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return fmt.Errorf("report server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return httpServer.Shutdown(shutdownCtx)
}

// Close stops pushing reload messages
func (s *Server) Close() {
	s.reload.Close()
}

func (s *Server) snapshot() (*analyzer.Result, string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.buildID, s.lastErr
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	result, buildID, lastErr := s.snapshot()
	if result == nil {
		msg := "metafile has not been analyzed yet"
		if lastErr != nil {
			msg = lastErr.Error()
		}
		http.Error(w, msg, http.StatusServiceUnavailable)
		return
	}

	var buf bytes.Buffer
	err := report.Render(&buf, report.Page{
		Title:        s.config.Metafile,
		Metafile:     result.Metafile,
		Stats:        result.Stats,
		Layers:       result.Layers,
		ReloadScript: ReloadScriptPath,
		BuildID:      buildID,
		GeneratedAt:  time.Now(),
	})
	if err != nil {
		s.logger.Error("failed to render report", zap.Error(err))
		http.Error(w, "failed to render report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	result, _, _ := s.snapshot()
	if result == nil {
		http.Error(w, "metafile has not been analyzed yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, result.Stats)
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	result, _, _ := s.snapshot()
	if result == nil {
		http.Error(w, "metafile has not been analyzed yet", http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, result.Layers)
}

func (s *Server) handleReloadScript(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Write([]byte(reloadScript))
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	encoder.Encode(v)
}

func errorInfo(err error) *ErrorInfo {
	info := &ErrorInfo{Message: err.Error()}
	if analysisErr, ok := ferrors.As(err); ok {
		info.Message = analysisErr.Message
		info.Code = string(analysisErr.Code)
		info.File = analysisErr.File
		info.Path = analysisErr.Path
	}
	return info
}
