// Package events publishes consensus decisions to downstream consumers
// over Redis pub/sub. Delivery is best-effort: publish failures are logged
// and never surfaced to the caller or allowed to fail the core transaction.
package events

import (
	"context"
	"time"

	"github.com/bytedance/sonic"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"
)

// Channels subscribed to by the notification and heatmap layers.
const (
	ChannelStatusChanged  = "report-status-changed"
	ChannelReportVerified = "report-verified"
)

const publishTimeout = 5 * time.Second

// StatusChanged is raised whenever a report settles into a terminal status.
type StatusChanged struct {
	ReportID       uuid.UUID         `json:"reportId"`
	Status         enum.ReportStatus `json:"status"`
	ConsensusScore float64           `json:"consensusScore"`
}

// ReportVerified is raised only on the first transition into verified,
// carrying the spatial key the heatmap aggregator buckets by.
type ReportVerified struct {
	ReportID   uuid.UUID `json:"reportId"`
	SpatialKey string    `json:"spatialKey"`
}

// Emitter publishes engine events asynchronously through a bounded
// goroutine pool so emission never blocks the vote path.
type Emitter struct {
	client rueidis.Client
	pool   *pool.Pool
	logger *zap.Logger
}

// NewEmitter creates an emitter publishing through the given Redis client.
// maxPublishers bounds the number of in-flight publishes; values below 1
// fall back to a single publisher.
func NewEmitter(client rueidis.Client, maxPublishers int, logger *zap.Logger) *Emitter {
	if maxPublishers < 1 {
		maxPublishers = 1
	}

	return &Emitter{
		client: client,
		pool:   pool.New().WithMaxGoroutines(maxPublishers),
		logger: logger.Named("events"),
	}
}

// StatusChanged publishes a report-status-changed event.
func (e *Emitter) StatusChanged(event *StatusChanged) {
	e.publish(ChannelStatusChanged, event)
}

// ReportVerified publishes a report-verified event.
func (e *Emitter) ReportVerified(event *ReportVerified) {
	e.publish(ChannelReportVerified, event)
}

// publish serializes the payload and fires it at the channel from the
// pool. A fresh context is used so a finished request cannot cancel an
// in-flight publish.
func (e *Emitter) publish(channel string, payload any) {
	e.pool.Go(func() {
		data, err := sonic.Marshal(payload)
		if err != nil {
			e.logger.Error("Failed to encode event",
				zap.String("channel", channel),
				zap.Error(err))
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		cmd := e.client.B().Publish().Channel(channel).Message(string(data)).Build()
		if err := e.client.Do(ctx, cmd).Error(); err != nil {
			e.logger.Warn("Failed to publish event",
				zap.String("channel", channel),
				zap.Error(err))
		}
	})
}

// Close waits for in-flight publishes to drain.
func (e *Emitter) Close() {
	e.pool.Wait()
}
