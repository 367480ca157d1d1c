package messaging

import (
	"context"
	"sync"
	"testing"
	"time"

	eventsv1 "docketdesk/contracts/gen/events/v1"

	natsserver "github.com/nats-io/nats-server/v2/server"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envelope(t *testing.T, id string, jobID string) eventsv1.Envelope {
	t.Helper()
	env, err := eventsv1.NewEnvelope(id, eventsv1.TopicExportRequested, "export-service", "t1", time.Now(), eventsv1.ExportRequested{
		TenantID: "t1",
		JobID:    jobID,
		Type:     "tabular",
	})
	require.NoError(t, err)
	return env
}

type collector struct {
	mu     sync.Mutex
	events []eventsv1.Envelope
}

func (c *collector) handle(_ context.Context, event eventsv1.Envelope) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, event)
	return nil
}

func (c *collector) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events)
}

func TestMemoryBusDeliversOncePerGroup(t *testing.T) {
	bus := NewMemory(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	workerA, workerB, audit := &collector{}, &collector{}, &collector{}
	require.NoError(t, bus.Subscribe(ctx, eventsv1.TopicExportRequested, "export-workers", workerA.handle))
	require.NoError(t, bus.Subscribe(ctx, eventsv1.TopicExportRequested, "export-workers", workerB.handle))
	require.NoError(t, bus.Subscribe(ctx, eventsv1.TopicExportRequested, "audit", audit.handle))

	for i, id := range []string{"e1", "e2", "e3", "e4"} {
		require.NoError(t, bus.Publish(ctx, eventsv1.TopicExportRequested, envelope(t, id, string(rune('a'+i)))))
	}

	require.Eventually(t, func() bool {
		return workerA.count()+workerB.count() == 4 && audit.count() == 4
	}, 2*time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, workerA.count())
	assert.Equal(t, 2, workerB.count())
}

func TestMemoryBusStopsOnCancel(t *testing.T) {
	bus := NewMemory(nil)
	ctx, cancel := context.WithCancel(context.Background())
	sink := &collector{}
	require.NoError(t, bus.Subscribe(ctx, eventsv1.TopicExportFinished, "g", sink.handle))
	cancel()
	require.Eventually(t, func() bool {
		bus.mu.RLock()
		defer bus.mu.RUnlock()
		return len(bus.subscribers[eventsv1.TopicExportFinished]) == 0
	}, time.Second, 5*time.Millisecond)
}

func runNATSServer(t *testing.T) string {
	t.Helper()
	server, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	require.NoError(t, err)
	go server.Start()
	t.Cleanup(server.Shutdown)
	require.True(t, server.ReadyForConnections(5*time.Second), "nats server not ready")
	return server.ClientURL()
}

func TestNATSBusRoundTrip(t *testing.T) {
	url := runNATSServer(t)
	publisher, err := NewNATS(url, "api", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = publisher.Close() })
	consumer, err := NewNATS(url, "worker", nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = consumer.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	first, second := &collector{}, &collector{}
	require.NoError(t, consumer.Subscribe(ctx, eventsv1.TopicExportRequested, "export-workers", first.handle))
	require.NoError(t, consumer.Subscribe(ctx, eventsv1.TopicExportRequested, "export-workers", second.handle))

	sent := envelope(t, "evt-1", "job-1")
	require.NoError(t, publisher.Publish(ctx, eventsv1.TopicExportRequested, sent))

	require.Eventually(t, func() bool { return first.count()+second.count() == 1 }, 5*time.Second, 10*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, 1, first.count()+second.count(), "queue group must deliver once")

	var got eventsv1.Envelope
	if first.count() == 1 {
		got = first.events[0]
	} else {
		got = second.events[0]
	}
	assert.Equal(t, "evt-1", got.EventID)
	var payload eventsv1.ExportRequested
	require.NoError(t, got.Decode(&payload))
	assert.Equal(t, "job-1", payload.JobID)
}

type recordingObserver struct {
	topics []string
}

func (r *recordingObserver) EventPublished(topic string, _ error) {
	r.topics = append(r.topics, topic)
}

func TestObservedBusReportsPublishes(t *testing.T) {
	observer := &recordingObserver{}
	bus := Observed{Bus: NewMemory(nil), Observer: observer}
	require.NoError(t, bus.Publish(context.Background(), eventsv1.TopicCommentSubmitted, envelope(t, "e", "j")))
	assert.Equal(t, []string{eventsv1.TopicCommentSubmitted}, observer.topics)
}
