package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/statuswatch/statuswatch/pkg/checker"
	"github.com/statuswatch/statuswatch/pkg/models"
)

var (
	errNoCategories    = errors.New("at least one category is required")
	errMissingListen   = errors.New("listen_addr is required")
	errDuplicateID     = errors.New("duplicate service id")
	errMissingEndpoint = errors.New("service id, name, and url are required")
)

// Duration wraps time.Duration so config files can say "30s" or "5m".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		// parse numeric as nanoseconds
		*d = Duration(time.Duration(value))
		return nil
	case string:
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}

		*d = Duration(dur)

		return nil
	default:
		return errInvalidDuration
	}
}

// EndpointConfig describes one monitored endpoint in the config file.
type EndpointConfig struct {
	ID             string                   `json:"id"`
	Name           string                   `json:"name"`
	URL            string                   `json:"url"`
	Description    string                   `json:"description,omitempty"`
	Method         string                   `json:"method,omitempty"`
	ExpectedStatus int                      `json:"expected_status,omitempty"`
	AcceptRange    bool                     `json:"accept_range,omitempty"`
	Validator      *checker.ValidatorConfig `json:"validator,omitempty"`
}

// CategoryConfig groups endpoints in the config file.
type CategoryConfig struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Icon     string           `json:"icon,omitempty"`
	Color    string           `json:"color,omitempty"`
	Services []EndpointConfig `json:"services"`
}

// StatusWatchConfig is the full configuration for the statusd binary.
type StatusWatchConfig struct {
	ListenAddr    string           `json:"listen_addr"`             // e.g., :8090
	DBPath        string           `json:"db_path,omitempty"`       // empty means in-memory only
	CheckInterval Duration         `json:"check_interval"`          // background poll cadence
	Concurrency   int              `json:"concurrency,omitempty"`   // probe worker-pool size
	SiteURL       string           `json:"site_url,omitempty"`      // used in the RSS feed
	SiteName      string           `json:"site_name,omitempty"`     // used in embeds and the RSS feed
	Categories    []CategoryConfig `json:"categories"`
}

// Validate implements Validator.
func (c *StatusWatchConfig) Validate() error {
	if c.ListenAddr == "" {
		return errMissingListen
	}

	if len(c.Categories) == 0 {
		return errNoCategories
	}

	seen := make(map[string]struct{})

	for _, cat := range c.Categories {
		for _, svc := range cat.Services {
			if svc.ID == "" || svc.Name == "" || svc.URL == "" {
				return fmt.Errorf("%w (category %q)", errMissingEndpoint, cat.ID)
			}

			if _, dup := seen[svc.ID]; dup {
				return fmt.Errorf("%w: %q", errDuplicateID, svc.ID)
			}

			seen[svc.ID] = struct{}{}

			if svc.Validator != nil {
				if _, err := checker.BuildValidator(*svc.Validator); err != nil {
					return fmt.Errorf("service %q: %w", svc.ID, err)
				}
			}
		}
	}

	return nil
}

// BuildCategories materializes the configured categories into model form,
// building validator strategies along the way. Call Validate first; invalid
// validator configs are skipped here.
func (c *StatusWatchConfig) BuildCategories() []models.ServiceCategory {
	out := make([]models.ServiceCategory, 0, len(c.Categories))

	for _, cat := range c.Categories {
		services := make([]models.ServiceEndpoint, 0, len(cat.Services))

		for _, svc := range cat.Services {
			endpoint := models.ServiceEndpoint{
				ID:             svc.ID,
				Name:           svc.Name,
				URL:            svc.URL,
				Description:    svc.Description,
				Method:         svc.Method,
				ExpectedStatus: svc.ExpectedStatus,
				AcceptRange:    svc.AcceptRange,
			}

			if svc.Validator != nil {
				if v, err := checker.BuildValidator(*svc.Validator); err == nil {
					endpoint.Validator = v
				}
			}

			services = append(services, endpoint)
		}

		out = append(out, models.ServiceCategory{
			ID:       cat.ID,
			Name:     cat.Name,
			Icon:     cat.Icon,
			Color:    cat.Color,
			Services: services,
		})
	}

	return out
}
