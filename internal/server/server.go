// Package server exposes the score and ghost repositories over HTTP.
package server

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	ginGzip "github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	cachecontrol "go.eigsys.de/gin-cachecontrol/v2"
	"golang.org/x/time/rate"

	"github.com/saurabhk79/TypeRush/internal/model"
)

// Repository is the storage the server writes to.
type Repository interface {
	InsertScore(ctx context.Context, rec model.ScoreRecord) (string, error)
	ListScores(ctx context.Context, profile string) ([]model.ScoreRecord, error)
	SaveGhost(ctx context.Context, profile string, rec model.GhostRecording) error
	FetchGhost(ctx context.Context, profile string) (model.GhostRecording, error)
}

// TextSource supplies passages for GET /api/text.
type TextSource interface {
	FetchText(ctx context.Context) (string, error)
}

// Config tunes the server.
type Config struct {
	RateRPS   float64
	RateBurst int
	Logger    *log.Logger
}

// Server serves the typing API.
type Server struct {
	repo Repository
	text TextSource
	cfg  Config
	log  *log.Logger
	now  func() time.Time

	limiterMu sync.Mutex
	limiters  map[string]*rate.Limiter
}

// New returns a Server over repo and text.
func New(repo Repository, text TextSource, cfg Config) *Server {
	if cfg.RateRPS <= 0 {
		cfg.RateRPS = 1
	}
	if cfg.RateBurst <= 0 {
		cfg.RateBurst = 1
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		repo:     repo,
		text:     text,
		cfg:      cfg,
		log:      logger,
		now:      time.Now,
		limiters: map[string]*rate.Limiter{},
	}
}

// Router builds the gin engine with all routes and middleware.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.LoggerWithWriter(s.log.Writer()), gin.Recovery())
	router.Use(requestIDMiddleware())
	router.Use(ginGzip.Gzip(ginGzip.DefaultCompression))
	router.Use(cachecontrol.New(cachecontrol.Config{
		NoStore:        true,
		NoCache:        true,
		MustRevalidate: true,
	}))
	if err := router.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		s.logWarn("Failed to set trusted proxies: %v", err)
	}
	s.routes(router)
	return router
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logInfo("Server starting on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logInfo("Shutdown signal received, shutting down server gracefully...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		s.logWarn("HTTP server Shutdown: %v", err)
		return err
	}
	s.logInfo("Server shutdown complete")
	return nil
}

func (s *Server) logInfo(format string, v ...any) {
	s.log.Printf("[INFO] "+format, v...)
}

func (s *Server) logWarn(format string, v ...any) {
	s.log.Printf("[WARN] "+format, v...)
}
