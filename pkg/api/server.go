// Package api exposes the status, incident, and webhook HTTP surface.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"golang.org/x/time/rate"

	"github.com/statuswatch/statuswatch/pkg/alerts"
	"github.com/statuswatch/statuswatch/pkg/incidents"
	"github.com/statuswatch/statuswatch/pkg/status"
)

const (
	defaultIncidentLimit = 50
	maxIncidentLimit     = 200

	// Global request budget for the whole API. Burst absorbs page loads
	// that fetch status, incidents, and webhooks together.
	requestsPerSecond = 20
	requestBurst      = 40
)

// Server wires the core pipeline to HTTP routes.
type Server struct {
	router      *mux.Router
	monitor     *status.Monitor
	tracker     *incidents.Tracker
	registry    *alerts.Registry
	testLimiter *alerts.TestLimiter
	sender      alerts.AlertSender
	limiter     *rate.Limiter

	siteURL  string
	siteName string
}

// NewServer creates the API server. siteURL and siteName feed the RSS
// channel metadata.
func NewServer(
	monitor *status.Monitor,
	tracker *incidents.Tracker,
	registry *alerts.Registry,
	testLimiter *alerts.TestLimiter,
	sender alerts.AlertSender,
	siteURL, siteName string,
) *Server {
	s := &Server{
		router:      mux.NewRouter(),
		monitor:     monitor,
		tracker:     tracker,
		registry:    registry,
		testLimiter: testLimiter,
		sender:      sender,
		limiter:     rate.NewLimiter(rate.Limit(requestsPerSecond), requestBurst),
		siteURL:     siteURL,
		siteName:    siteName,
	}

	s.setupRoutes()

	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !s.limiter.Allow() {
				writeError(w, http.StatusTooManyRequests, "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	})

	s.router.HandleFunc("/api/status", s.getStatus).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status/rss", s.getStatusRSS).Methods(http.MethodGet)
	s.router.HandleFunc("/api/status/ws", s.statusWS).Methods(http.MethodGet)

	s.router.HandleFunc("/api/incidents", s.getIncidents).Methods(http.MethodGet)
	s.router.HandleFunc("/api/incidents", s.createIncident).Methods(http.MethodPost)
	s.router.HandleFunc("/api/incidents/resolve", s.resolveIncident).Methods(http.MethodPost)

	s.router.HandleFunc("/api/webhooks", s.getWebhooks).Methods(http.MethodGet)
	s.router.HandleFunc("/api/webhooks", s.addWebhook).Methods(http.MethodPost)
	s.router.HandleFunc("/api/webhooks", s.deleteWebhook).Methods(http.MethodDelete)
	s.router.HandleFunc("/api/webhooks/test", s.testWebhook).Methods(http.MethodPost)
}

// Router exposes the configured router, mainly for tests.
func (s *Server) Router() *mux.Router {
	return s.router
}

// Start runs the HTTP server until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		log.Printf("api: HTTP server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("api: failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
