package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pep299/article-digest/internal/cache"
	"github.com/pep299/article-digest/internal/config"
	"github.com/pep299/article-digest/internal/reminder"
	"github.com/pep299/article-digest/internal/subscription"
)

// Digest audiences
const (
	AudienceOwner       = "owner"
	AudienceSubscribers = "subscribers"
)

// ErrUnknownAudience is returned for an audience other than owner or subscribers
var ErrUnknownAudience = errors.New("audience must be 'owner' or 'subscribers'")

// Server holds the HTTP server and its dependencies
type Server struct {
	config       *config.Config
	reminder     *reminder.Service
	intake       *subscription.Intake
	cacheManager *cache.Manager
	startedAt    time.Time

	mu       sync.Mutex
	lastSend *sendRecord
}

type sendRecord struct {
	Audience string           `json:"audience"`
	At       time.Time        `json:"at"`
	Result   *reminder.Result `json:"result,omitempty"`
	Error    string           `json:"error,omitempty"`
}

// NewServer creates a new HTTP server
func NewServer(cfg *config.Config, reminderService *reminder.Service, intake *subscription.Intake, cacheManager *cache.Manager) *Server {
	return &Server{
		config:       cfg,
		reminder:     reminderService,
		intake:       intake,
		cacheManager: cacheManager,
		startedAt:    time.Now(),
	}
}

// SetupRoutes configures HTTP routes
func (s *Server) SetupRoutes() *mux.Router {
	r := mux.NewRouter()
	r.MethodNotAllowedHandler = http.HandlerFunc(s.methodNotAllowedHandler)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.MethodNotAllowedHandler = r.MethodNotAllowedHandler
	api.Use(s.corsMiddleware)
	api.Use(s.loggingMiddleware)

	// Health check
	api.HandleFunc("/health", s.healthHandler).Methods("GET")

	// Digest operations
	api.HandleFunc("/digest/preview", s.previewHandler).Methods("GET")
	api.HandleFunc("/digest/send", s.SendHandler).Methods("POST")

	// Subscription intake
	api.HandleFunc("/subscriptions", s.SubscribeHandler).Methods("GET", "POST")

	// Cache operations
	api.HandleFunc("/cache/stats", s.cacheStatsHandler).Methods("GET")
	api.HandleFunc("/cache", s.cacheClearHandler).Methods("DELETE")

	// Status and configuration
	api.HandleFunc("/status", s.statusHandler).Methods("GET")
	api.HandleFunc("/config", s.configHandler).Methods("GET")

	return r
}

// Send sends the digest to an audience and records the outcome for the
// status endpoint
func (s *Server) Send(ctx context.Context, audience string) (*reminder.Result, error) {
	var (
		result *reminder.Result
		err    error
	)

	switch audience {
	case AudienceOwner:
		result, err = s.reminder.SendToOwner(ctx)
	case AudienceSubscribers:
		result, err = s.reminder.SendToSubscribers(ctx)
	default:
		return nil, ErrUnknownAudience
	}

	record := &sendRecord{Audience: audience, At: time.Now(), Result: result}
	if err != nil {
		record.Error = err.Error()
		log.Printf("❌ Digest to %s failed: %v", audience, err)
	}

	s.mu.Lock()
	s.lastSend = record
	s.mu.Unlock()

	if result != nil && result.Logged && s.cacheManager != nil {
		if cacheErr := s.cacheManager.InvalidatePreview(ctx, result.Day); cacheErr != nil {
			log.Printf("Error invalidating preview cache: %v", cacheErr)
		}
	}

	if err != nil {
		return result, fmt.Errorf("sending digest to %s: %w", audience, err)
	}
	return result, nil
}

// corsMiddleware adds CORS headers
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		log.Printf("%s %s %d %v", r.Method, r.URL.Path, wrapped.statusCode, time.Since(start))
	})
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
