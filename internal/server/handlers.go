package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hyperjump/kotae/internal/models"
	"go.uber.org/zap"
)

const maxUploadBytes = 32 << 20

func (s *Server) handleUploadFile(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		s.respondError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		s.respondError(w, http.StatusInternalServerError, "failed to read upload")
		return
	}

	name := filepath.Base(header.Filename)
	ext := strings.ToLower(filepath.Ext(name))
	s.logger.Debug("upload request", zap.String("file", name), zap.Int("bytes", len(content)))

	text, err := s.extractor.ExtractBytes(content, ext)
	if err != nil {
		s.logger.Error("extraction failed", zap.String("file", name), zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, fmt.Sprintf("could not extract text: %v", err))
		return
	}

	s.ingest(w, r, text, name, models.SourceKindFile)
}

func (s *Server) handleUploadText(w http.ResponseWriter, r *http.Request) {
	var req models.IndexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		s.respondError(w, http.StatusBadRequest, "text is required")
		return
	}
	source := req.Source
	if source == "" {
		source = "user-text-" + uuid.NewString()[:8]
	}
	s.ingest(w, r, req.Text, source, models.SourceKindText)
}

func (s *Server) handleUploadWebsite(w http.ResponseWriter, r *http.Request) {
	var req models.WebsiteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		s.respondError(w, http.StatusBadRequest, "url is required")
		return
	}
	s.logger.Debug("website ingestion request", zap.String("url", req.URL))

	text, err := s.scraper.Fetch(r.Context(), req.URL)
	if err != nil {
		s.logger.Error("scrape failed", zap.String("url", req.URL), zap.Error(err))
		s.respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	s.ingest(w, r, text, req.URL, models.SourceKindWebsite)
}

// ingest runs the indexing pipeline and records the source, sharing the
// response shape across the three upload endpoints.
func (s *Server) ingest(w http.ResponseWriter, r *http.Request, text, source, kind string) {
	chunks, err := s.indexer.Index(r.Context(), text, source)
	if err != nil {
		s.logger.Error("indexing failed", zap.String("source", source), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	err = s.registry.Record(r.Context(), &models.Source{
		ID:        source,
		Kind:      kind,
		Chunks:    chunks,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// The vectors are in the index; a registry miss only affects listing.
		s.logger.Warn("failed to record source", zap.String("source", source), zap.Error(err))
	}

	s.respondJSON(w, http.StatusCreated, models.IndexResult{Source: source, Chunks: chunks})
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req models.QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := req.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Debug("query request", zap.String("mode", req.Mode))

	result := s.orchestrator.Answer(r.Context(), req.Question, req.Mode)
	s.respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleListSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error("list sources failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []*models.Source{}
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"sources": sources})
}

func (s *Server) handleDeleteSource(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.logger.Debug("delete source request", zap.String("id", id))

	if err := s.indexer.Remove(r.Context(), id); err != nil {
		s.logger.Error("source deletion failed", zap.String("id", id), zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if err := s.registry.Delete(r.Context(), id); err != nil {
		s.logger.Warn("failed to delete source record", zap.String("id", id), zap.Error(err))
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"id": id, "status": "deleted"})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.store.Stats(r.Context())
	if err != nil {
		s.logger.Error("status: index stats failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	sources, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error("status: list sources failed", zap.Error(err))
		s.respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.respondJSON(w, http.StatusOK, map[string]any{
		"collection_exists": stats.Exists,
		"points":            stats.PointCount,
		"sources":           len(sources),
		"config": map[string]any{
			"embedding_provider": s.config.Embedding.Provider,
			"dimensions":         s.config.Embedding.Dimensions,
			"chunk_size":         s.config.Index.ChunkSize,
			"chunk_overlap":      s.config.Index.ChunkOverlap,
			"top_k":              s.config.Index.TopK,
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
