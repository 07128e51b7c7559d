// Package status pkg/status/interfaces.go
package status

//go:generate mockgen -destination=mock_status.go -package=status github.com/statuswatch/statuswatch/pkg/status Tracker

import (
	"context"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// Tracker consumes per-service status transitions detected by the monitor.
type Tracker interface {
	Track(ctx context.Context, serviceID, serviceName string, previous, current models.ServiceStatus) (*models.Incident, error)
}
