// Package alerts builds Discord alert payloads and delivers incident events
// to every registered webhook.
package alerts

import (
	"strings"
	"time"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// Discord embed colors keyed by incident impact.
const (
	ColorMinor    = 0xfbbf24 // amber
	ColorMajor    = 0xf97316 // orange
	ColorCritical = 0xef4444 // red
	ColorDefault  = 0x6b7280 // gray
)

// EmbedField is one name/value pair inside a Discord embed.
type EmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

// DiscordEmbed is the embed object of a Discord webhook message.
type DiscordEmbed struct {
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Color       int          `json:"color"`
	Fields      []EmbedField `json:"fields,omitempty"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

// WebhookPayload is the top-level Discord webhook message body. Content is a
// pointer so an explicit null is emitted, matching what Discord expects for
// embed-only messages.
type WebhookPayload struct {
	Content  *string        `json:"content"`
	Embeds   []DiscordEmbed `json:"embeds"`
	Username string         `json:"username,omitempty"`
}

var statusEmojis = map[models.ServiceStatus]string{
	models.StatusOperational: "✅",       // check mark
	models.StatusDegraded:    "⚠️", // warning sign
	models.StatusPartial:     "\U0001f534",   // red circle
	models.StatusMajor:       "\U0001f534",   // red circle
	models.StatusUnknown:     "❓",       // question mark
}

func impactColor(impact models.Impact) int {
	switch impact {
	case models.ImpactMinor:
		return ColorMinor
	case models.ImpactMajor:
		return ColorMajor
	case models.ImpactCritical:
		return ColorCritical
	default:
		return ColorDefault
	}
}

const embedTimeLayout = "Jan 2, 2006 15:04 MST"

// BuildIncidentEmbed renders one incident as a Discord embed: emoji-prefixed
// title, impact color, and service/status/impact/timing fields.
func BuildIncidentEmbed(incident *models.Incident) DiscordEmbed {
	description := incident.Description
	if description == "" {
		description = "Service: **" + incident.ServiceName + "**"
	}

	fields := []EmbedField{
		{Name: "Service", Value: incident.ServiceName, Inline: true},
		{Name: "Status", Value: capitalize(string(incident.Status)), Inline: true},
		{Name: "Impact", Value: capitalize(string(incident.Impact)), Inline: true},
		{Name: "Started", Value: incident.StartedAt.Format(embedTimeLayout), Inline: true},
	}

	if incident.Resolved() {
		fields = append(fields, EmbedField{
			Name:   "Resolved",
			Value:  incident.ResolvedAt.Format(embedTimeLayout),
			Inline: true,
		})
	}

	title := incident.Title
	if emoji, ok := statusEmojis[incident.Status]; ok {
		title = emoji + " " + incident.Title
	}

	return DiscordEmbed{
		Title:       title,
		Description: description,
		Color:       impactColor(incident.Impact),
		Fields:      fields,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// TestIncident is the synthetic incident sent by manual webhook tests.
func TestIncident() *models.Incident {
	return &models.Incident{
		ID:             "test",
		ServiceID:      "test-service",
		ServiceName:    "Test Service",
		StartedAt:      time.Now().UTC(),
		PreviousStatus: models.StatusOperational,
		Status:         models.StatusDegraded,
		Impact:         models.ImpactMinor,
		Title:          "Test Incident - StatusWatch",
		Description:    "This is a test message from StatusWatch to verify your webhook is working.",
		AutoDetected:   false,
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}

	return strings.ToUpper(s[:1]) + s[1:]
}
