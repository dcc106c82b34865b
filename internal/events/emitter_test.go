package events_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/bytedance/sonic"
	"github.com/crowdsift/crowdsift/internal/database/types/enum"
	"github.com/crowdsift/crowdsift/internal/events"
	"github.com/google/uuid"
	"github.com/redis/rueidis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupTest(t *testing.T) (*events.Emitter, rueidis.Client, func()) {
	t.Helper()

	// Start miniredis server
	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Publishing client
	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	// Subscribing client
	sub, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	emitter := events.NewEmitter(client, 2, logger)

	cleanup := func() {
		emitter.Close()
		sub.Close()
		client.Close()
		mr.Close()
	}

	return emitter, sub, cleanup
}

func subscribe(t *testing.T, sub rueidis.Client, channel string) (<-chan string, context.CancelFunc) {
	t.Helper()

	msgCh := make(chan string, 1)
	ctx, cancel := context.WithCancel(context.Background())

	go func() {
		_ = sub.Receive(ctx, sub.B().Subscribe().Channel(channel).Build(),
			func(msg rueidis.PubSubMessage) {
				msgCh <- msg.Message
			})
	}()

	// Give the subscription a moment to register before publishing.
	time.Sleep(100 * time.Millisecond)

	return msgCh, cancel
}

func TestStatusChangedRoundTrip(t *testing.T) {
	t.Parallel()

	emitter, sub, cleanup := setupTest(t)
	defer cleanup()

	msgCh, cancel := subscribe(t, sub, events.ChannelStatusChanged)
	defer cancel()

	sent := &events.StatusChanged{
		ReportID:       uuid.New(),
		Status:         enum.ReportStatusVerified,
		ConsensusScore: 0.87,
	}
	emitter.StatusChanged(sent)

	select {
	case raw := <-msgCh:
		var got events.StatusChanged
		require.NoError(t, sonic.Unmarshal([]byte(raw), &got))
		assert.Equal(t, sent.ReportID, got.ReportID)
		assert.Equal(t, enum.ReportStatusVerified, got.Status)
		assert.InDelta(t, 0.87, got.ConsensusScore, 1e-9)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for status-changed event")
	}
}

func TestReportVerifiedRoundTrip(t *testing.T) {
	t.Parallel()

	emitter, sub, cleanup := setupTest(t)
	defer cleanup()

	msgCh, cancel := subscribe(t, sub, events.ChannelReportVerified)
	defer cancel()

	sent := &events.ReportVerified{
		ReportID:   uuid.New(),
		SpatialKey: "u4pruyd",
	}
	emitter.ReportVerified(sent)

	select {
	case raw := <-msgCh:
		var got events.ReportVerified
		require.NoError(t, sonic.Unmarshal([]byte(raw), &got))
		assert.Equal(t, sent.ReportID, got.ReportID)
		assert.Equal(t, "u4pruyd", got.SpatialKey)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for report-verified event")
	}
}

func TestPublishFailureDoesNotPropagate(t *testing.T) {
	t.Parallel()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  []string{mr.Addr()},
		DisableCache: true,
	})
	require.NoError(t, err)
	defer client.Close()

	logger, err := zap.NewDevelopment()
	require.NoError(t, err)

	emitter := events.NewEmitter(client, 1, logger)

	// Kill the server before publishing; the failure must stay internal.
	mr.Close()

	emitter.StatusChanged(&events.StatusChanged{
		ReportID: uuid.New(),
		Status:   enum.ReportStatusRejected,
	})
	emitter.Close()
}
