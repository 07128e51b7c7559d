package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/statuswatch/statuswatch/pkg/models"
)

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	// A client disconnect must not abort the check cycle: cancelled probes
	// would classify as major and open incidents for healthy services.
	summary := s.monitor.CheckAll(context.WithoutCancel(r.Context()))

	w.Header().Set("Cache-Control", "public, max-age=120, s-maxage=300")
	writeJSON(w, http.StatusOK, summary)
}

type incidentsResponse struct {
	Incidents   []models.Incident `json:"incidents"`
	Total       int               `json:"total"`
	LastUpdated time.Time         `json:"lastUpdated"`
}

func (s *Server) getIncidents(w http.ResponseWriter, r *http.Request) {
	limit := defaultIncidentLimit

	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	if limit > maxIncidentLimit {
		limit = maxIncidentLimit
	}

	list, err := s.tracker.GetRecent(r.Context(), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load incidents")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=60, s-maxage=60")
	writeJSON(w, http.StatusOK, incidentsResponse{
		Incidents:   list,
		Total:       len(list),
		LastUpdated: time.Now().UTC(),
	})
}
