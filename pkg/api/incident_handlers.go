package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/statuswatch/statuswatch/pkg/incidents"
	"github.com/statuswatch/statuswatch/pkg/models"
)

type createIncidentRequest struct {
	ServiceID   string        `json:"serviceId"`
	ServiceName string        `json:"serviceName"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Impact      models.Impact `json:"impact"`
}

// createIncident records an operator-declared incident that probing did not
// (or cannot) detect.
func (s *Server) createIncident(w http.ResponseWriter, r *http.Request) {
	var req createIncidentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.ServiceID) == "" || strings.TrimSpace(req.Title) == "" {
		writeError(w, http.StatusBadRequest, "serviceId and title are required")
		return
	}

	switch req.Impact {
	case models.ImpactMinor, models.ImpactMajor, models.ImpactCritical:
	default:
		writeError(w, http.StatusBadRequest, "impact must be minor, major, or critical")
		return
	}

	incident, err := s.tracker.AddManual(r.Context(), req.ServiceID, req.ServiceName, req.Title, req.Description, req.Impact)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to record incident")
		return
	}

	writeJSON(w, http.StatusCreated, incident)
}

func (s *Server) resolveIncident(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing incident ID")
		return
	}

	incident, err := s.tracker.Resolve(r.Context(), req.ID)

	switch {
	case errors.Is(err, incidents.ErrIncidentNotFound):
		writeError(w, http.StatusNotFound, "Incident not found")
	case errors.Is(err, incidents.ErrAlreadyResolved):
		writeError(w, http.StatusConflict, "Incident already resolved")
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Failed to resolve incident")
	default:
		writeJSON(w, http.StatusOK, incident)
	}
}
