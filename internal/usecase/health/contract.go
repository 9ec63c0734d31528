package health

import "context"

// Checker verifies availability of one upstream collaborator.
type Checker interface {
	HealthCheck(ctx context.Context) error
}
