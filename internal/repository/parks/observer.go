package parks

import (
	"go.uber.org/zap"

	"github.com/ecoquerai/quer/internal/metrics"
)

// LogObserver reports per-park embedding failures as structured log events and
// a Prometheus counter.
type LogObserver struct {
	logger *zap.Logger
}

// NewLogObserver creates the default failure observer.
func NewLogObserver(logger *zap.Logger) *LogObserver {
	return &LogObserver{logger: logger}
}

// EmbeddingFailed implements FailureObserver.
func (o *LogObserver) EmbeddingFailed(parkID string, err error) {
	metrics.CatalogEmbeddingFailures.Inc()
	o.logger.Warn("Failed to embed park",
		zap.String("park_id", parkID),
		zap.Error(err),
	)
}
