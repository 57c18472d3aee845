// Package server provides the HTTP API for Kotae.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kotae/internal/config"
	"github.com/hyperjump/kotae/internal/extract"
	"github.com/hyperjump/kotae/internal/indexer"
	"github.com/hyperjump/kotae/internal/query"
	"github.com/hyperjump/kotae/internal/scrape"
	"github.com/hyperjump/kotae/internal/storage"
	"github.com/hyperjump/kotae/internal/vectorstore"
	"go.uber.org/zap"
)

// Server is the HTTP server for the Kotae API.
type Server struct {
	indexer      *indexer.Indexer
	orchestrator *query.Orchestrator
	extractor    *extract.Extractor
	scraper      *scrape.Scraper
	registry     storage.Registry
	store        vectorstore.Store
	config       *config.Config
	logger       *zap.Logger
	server       *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(
	idx *indexer.Indexer,
	orchestrator *query.Orchestrator,
	extractor *extract.Extractor,
	scraper *scrape.Scraper,
	registry storage.Registry,
	store vectorstore.Store,
	cfg *config.Config,
	logger *zap.Logger,
) *Server {
	return &Server{
		indexer:      idx,
		orchestrator: orchestrator,
		extractor:    extractor,
		scraper:      scraper,
		registry:     registry,
		store:        store,
		config:       cfg,
		logger:       logger,
	}
}

// Router builds the chi router with all API routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(120 * time.Second))
	r.Use(middleware.Compress(5))

	r.Post("/api/v1/upload", s.handleUploadFile)
	r.Post("/api/v1/upload/text", s.handleUploadText)
	r.Post("/api/v1/upload/website", s.handleUploadWebsite)
	r.Post("/api/v1/query", s.handleQuery)
	r.Get("/api/v1/sources", s.handleListSources)
	r.Delete("/api/v1/sources/{id}", s.handleDeleteSource)
	r.Get("/api/v1/status", s.handleStatus)
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
