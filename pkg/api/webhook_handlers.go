package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/statuswatch/statuswatch/pkg/alerts"
	"github.com/statuswatch/statuswatch/pkg/models"
)

// webhookView is the sanitized webhook representation: the target URL is
// never echoed back to clients.
type webhookView struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	CreatedAt       time.Time  `json:"createdAt"`
	LastTestedAt    *time.Time `json:"lastTestedAt,omitempty"`
	LastTestSuccess *bool      `json:"lastTestSuccess,omitempty"`
}

func toView(w models.StoredWebhook) webhookView {
	return webhookView{
		ID:              w.ID,
		Name:            w.Name,
		CreatedAt:       w.CreatedAt,
		LastTestedAt:    w.LastTestedAt,
		LastTestSuccess: w.LastTestSuccess,
	}
}

func (s *Server) getWebhooks(w http.ResponseWriter, r *http.Request) {
	hooks, err := s.registry.ListActive(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load webhooks")
		return
	}

	views := make([]webhookView, 0, len(hooks))
	for _, hook := range hooks {
		views = append(views, toView(hook))
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"webhooks": views,
		"count":    len(views),
		"max":      alerts.MaxWebhooks,
	})
}

func (s *Server) addWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL  string `json:"url"`
		Name string `json:"name"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "Missing webhook URL")
		return
	}

	if strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "Webhook name is required")
		return
	}

	webhook, err := s.registry.Add(r.Context(), req.URL, req.Name)
	if errors.Is(err, alerts.ErrInvalidWebhookURL) {
		writeError(w, http.StatusBadRequest,
			"Invalid Discord webhook URL. Please ensure it's a valid Discord webhook URL (e.g., https://discord.com/api/webhooks/...)")
		return
	}

	if err != nil {
		writeError(w, http.StatusBadRequest, "Failed to add webhook")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"webhook": map[string]interface{}{
			"id":        webhook.ID,
			"name":      webhook.Name,
			"createdAt": webhook.CreatedAt,
		},
	})
}

func (s *Server) deleteWebhook(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "Missing webhook ID")
		return
	}

	err := s.registry.Remove(r.Context(), id)
	if errors.Is(err, alerts.ErrWebhookNotFound) {
		writeError(w, http.StatusNotFound, "Webhook not found")
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to remove webhook")
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) testWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID string `json:"id"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ID == "" {
		writeError(w, http.StatusBadRequest, "Missing webhook ID")
		return
	}

	webhook, err := s.registry.Get(r.Context(), req.ID)
	if errors.Is(err, alerts.ErrWebhookNotFound) {
		writeError(w, http.StatusNotFound, "Webhook not found")
		return
	}

	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load webhook")
		return
	}

	if allowed, retryAfter := s.testLimiter.CanTest(webhook.ID); !allowed {
		retrySeconds := int(math.Ceil(retryAfter.Seconds()))

		writeJSON(w, http.StatusTooManyRequests, map[string]interface{}{
			"error": fmt.Sprintf(
				"Too many test attempts. Please wait %d seconds before testing again.", retrySeconds),
			"retryAfter": retrySeconds,
		})

		return
	}

	payload := alerts.WebhookPayload{
		Embeds: []alerts.DiscordEmbed{alerts.BuildIncidentEmbed(alerts.TestIncident())},
	}

	result := s.sender.Send(r.Context(), webhook.URL, payload)

	if _, err := s.registry.RecordTest(r.Context(), webhook.ID, result.Success); err != nil {
		log.Printf("api: failed to record webhook test result for %s: %v", webhook.ID, err)
	}

	if result.RateLimited {
		writeError(w, http.StatusTooManyRequests, result.Err.Error())
		return
	}

	if !result.Success {
		message := "Failed to send test message to Discord. Check the webhook URL is valid and hasn't expired."
		if result.Err != nil {
			message = result.Err.Error()
		}

		writeError(w, http.StatusInternalServerError, message)

		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Test message sent successfully! Check your Discord server.",
	})
}
