// Package checker pkg/checker/interfaces.go
package checker

//go:generate mockgen -destination=mock_checker.go -package=checker github.com/statuswatch/statuswatch/pkg/checker Checker

import (
	"context"

	"github.com/statuswatch/statuswatch/pkg/models"
)

// Checker probes a single endpoint and classifies the outcome. It never
// returns an error to the caller; all failures are encoded in the result.
type Checker interface {
	Check(ctx context.Context, endpoint models.ServiceEndpoint) models.ServiceResult
}
