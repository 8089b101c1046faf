package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/pep299/article-digest/internal/response"
	"github.com/pep299/article-digest/internal/subscription"
)

// SendRequest is the body of a digest send request
type SendRequest struct {
	Audience string `json:"audience"`
}

// healthHandler provides health check endpoint
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteValue(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
		"version":   "v1.0.0",
	})
}

// previewHandler renders today's digest without sending it. Previews are
// cached per day; ?refresh=true renders a fresh one.
func (s *Server) previewHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	day := time.Now().UTC().Format("2006-01-02")
	refresh := r.URL.Query().Get("refresh") == "true"

	if s.cacheManager != nil && !refresh {
		if entry, err := s.cacheManager.GetPreview(ctx, day); err == nil {
			w.Header().Set("X-Cache", "HIT")
			response.WriteHTML(w, http.StatusOK, entry.HTML)
			return
		}
	}

	html, result, err := s.reminder.Preview(ctx)
	if err != nil {
		response.WriteInternalError(w, fmt.Sprintf("Error rendering preview: %v", err))
		return
	}

	if s.cacheManager != nil {
		if err := s.cacheManager.SetPreview(ctx, result.Day, html, result.Articles, result.Skipped); err != nil {
			log.Printf("Error caching preview: %v", err)
		}
	}

	w.Header().Set("X-Cache", "MISS")
	response.WriteHTML(w, http.StatusOK, html)
}

// SendHandler sends the digest to the requested audience
func (s *Server) SendHandler(w http.ResponseWriter, r *http.Request) {
	var req SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteBadRequest(w, "Invalid request body")
		return
	}

	result, err := s.Send(r.Context(), req.Audience)
	if errors.Is(err, ErrUnknownAudience) {
		response.WriteBadRequest(w, err.Error())
		return
	}
	if err != nil {
		response.WriteInternalError(w, err.Error())
		return
	}

	response.WriteSuccess(w, "Digest processed", result)
}

// SubscribeHandler appends a subscription from query or form parameters
func (s *Server) SubscribeHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		response.WriteValue(w, http.StatusBadRequest, subscription.NewResult(0, err))
		return
	}

	params := make(map[string]string, len(r.Form))
	for key, values := range r.Form {
		if len(values) > 0 {
			params[key] = values[0]
		}
	}

	row, err := s.intake.Subscribe(r.Context(), params)
	status := http.StatusOK
	switch {
	case errors.Is(err, subscription.ErrLockTimeout):
		status = http.StatusServiceUnavailable
	case err != nil:
		log.Printf("❌ Subscription failed: %v", err)
		status = http.StatusInternalServerError
	}

	response.WriteValue(w, status, subscription.NewResult(row, err))
}

// cacheStatsHandler returns cache statistics
func (s *Server) cacheStatsHandler(w http.ResponseWriter, r *http.Request) {
	stats, err := s.cacheManager.GetStats(r.Context())
	if err != nil {
		response.WriteInternalError(w, fmt.Sprintf("Error getting cache stats: %v", err))
		return
	}

	response.WriteValue(w, http.StatusOK, stats)
}

// cacheClearHandler clears the preview cache
func (s *Server) cacheClearHandler(w http.ResponseWriter, r *http.Request) {
	if err := s.cacheManager.Clear(r.Context()); err != nil {
		response.WriteInternalError(w, fmt.Sprintf("Error clearing cache: %v", err))
		return
	}

	response.WriteSuccess(w, "Cache cleared", nil)
}

// statusHandler reports uptime, the last sending and whether today's
// preview is cached
func (s *Server) statusHandler(w http.ResponseWriter, r *http.Request) {
	stats, _ := s.cacheManager.GetStats(r.Context())
	day := time.Now().UTC().Format("2006-01-02")
	previewCached, _ := s.cacheManager.HasPreview(r.Context(), day)

	s.mu.Lock()
	lastSend := s.lastSend
	s.mu.Unlock()

	response.WriteValue(w, http.StatusOK, map[string]interface{}{
		"status":         "running",
		"timestamp":      time.Now().Unix(),
		"uptime_seconds": int64(time.Since(s.startedAt).Seconds()),
		"source_backend": s.config.SourceBackend,
		"last_send":      lastSend,
		"cache_stats":    stats,
		"preview_cached": previewCached,
	})
}

// methodNotAllowedHandler answers a known route called with the wrong method
func (s *Server) methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteMethodNotAllowed(w, fmt.Sprintf("Method %s not allowed", r.Method))
}

// configHandler returns the configuration without secrets
func (s *Server) configHandler(w http.ResponseWriter, r *http.Request) {
	response.WriteValue(w, http.StatusOK, s.config)
}
