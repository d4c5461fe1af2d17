package worker

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/barber-api/internal/model"
	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/messaging"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

type memOutbox struct {
	mu       sync.Mutex
	events   []*model.OutboxEvent
	deleted  time.Time
	rows     int64
	listErr  error
	statuses map[uuid.UUID]model.OutboxStatus
}

func (m *memOutbox) ProcessPending(_ context.Context, limit int, fn func(*model.OutboxEvent) error) (int, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return 0, 0, m.listErr
	}
	if m.statuses == nil {
		m.statuses = map[uuid.UUID]model.OutboxStatus{}
	}

	processed, failed := 0, 0
	for _, evt := range m.events {
		if processed+failed == limit {
			break
		}
		if _, done := m.statuses[evt.ID]; done {
			continue
		}
		if err := fn(evt); err != nil {
			m.statuses[evt.ID] = model.OutboxStatusFailed
			failed++
			continue
		}
		m.statuses[evt.ID] = model.OutboxStatusProcessed
		processed++
	}
	return processed, failed, nil
}

func (m *memOutbox) DeleteProcessedBefore(_ context.Context, before time.Time) (int64, error) {
	m.deleted = before
	return m.rows, nil
}

type published struct {
	channel string
	change  messaging.Change
}

type recordingBroker struct {
	mu        sync.Mutex
	failFirst int
	calls     int
	messages  []published
}

func (b *recordingBroker) Publish(_ context.Context, channel string, message interface{}) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls++
	if b.calls <= b.failFirst {
		return errors.New("connection refused")
	}
	b.messages = append(b.messages, published{channel: channel, change: message.(messaging.Change)})
	return nil
}

func (b *recordingBroker) Subscribe(context.Context, string) (<-chan []byte, error) {
	return nil, errors.New("not supported")
}

func (b *recordingBroker) Close() error { return nil }

func event(eventType string) *model.OutboxEvent {
	return &model.OutboxEvent{
		ID:        uuid.New(),
		EventType: eventType,
		Payload:   json.RawMessage(`{"id":"x"}`),
		Status:    model.OutboxStatusPending,
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func newProcessor(t *testing.T, repo *memOutbox, broker *recordingBroker, attempts int) (*OutboxProcessor, *metrics.Metrics) {
	t.Helper()
	m := metrics.New(prometheus.NewRegistry(), "test")
	p, err := NewOutboxProcessor(repo, broker, OutboxProcessorConfig{
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: attempts,
		RetryDelay:    time.Millisecond,
	}, logger.Nop(), m)
	require.NoError(t, err)
	return p, m
}

func TestNewOutboxProcessorValidatesConfig(t *testing.T) {
	_, err := NewOutboxProcessor(&memOutbox{}, &recordingBroker{}, OutboxProcessorConfig{}, logger.Nop(), nil)
	assert.Error(t, err)
}

func TestProcessBatchPublishesChanges(t *testing.T) {
	repo := &memOutbox{events: []*model.OutboxEvent{event("companies.INSERT"), event("appointments.update")}}
	broker := &recordingBroker{}
	p, m := newProcessor(t, repo, broker, 1)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	require.Len(t, broker.messages, 2)
	assert.Equal(t, "changes:companies:INSERT", broker.messages[0].channel)
	assert.Equal(t, "companies", broker.messages[0].change.Table)
	assert.Equal(t, messaging.KindInsert, broker.messages[0].change.Kind)
	assert.JSONEq(t, `{"id":"x"}`, string(broker.messages[0].change.Payload))
	assert.Equal(t, "changes:appointments:UPDATE", broker.messages[1].channel)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxEventsProcessed))

	n, err = p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestProcessBatchRetriesThenSucceeds(t *testing.T) {
	repo := &memOutbox{events: []*model.OutboxEvent{event("companies.INSERT")}}
	broker := &recordingBroker{failFirst: 2}
	p, m := newProcessor(t, repo, broker, 3)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, 3, broker.calls)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxRetries.WithLabelValues("companies.INSERT")))
}

func TestProcessBatchMarksFailures(t *testing.T) {
	bad := event("garbage")
	unreachable := event("companies.INSERT")
	repo := &memOutbox{events: []*model.OutboxEvent{bad, unreachable}}
	broker := &recordingBroker{failFirst: 100}
	p, m := newProcessor(t, repo, broker, 2)

	n, err := p.ProcessBatch(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[bad.ID])
	assert.Equal(t, model.OutboxStatusFailed, repo.statuses[unreachable.ID])
	// malformed events are never published
	assert.Equal(t, 2, broker.calls)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.OutboxEventsFailed))
}

func TestProcessBatchRepositoryError(t *testing.T) {
	p, _ := newProcessor(t, &memOutbox{listErr: errors.New("db down")}, &recordingBroker{}, 1)

	_, err := p.ProcessBatch(context.Background())
	assert.ErrorContains(t, err, "db down")
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := retry(ctx, 5, time.Hour, func(int) error {
		calls++
		cancel()
		return errors.New("fail")
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestCleanup(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	repo := &memOutbox{rows: 4}
	m := metrics.New(prometheus.NewRegistry(), "test")
	w := NewOutboxCleanupWorker(repo, 7*24*time.Hour, time.Hour, logger.Nop(), m)
	w.now = func() time.Time { return now }

	rows, err := w.Cleanup(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), rows)
	assert.Equal(t, now.AddDate(0, 0, -7), repo.deleted)
	assert.Equal(t, float64(4), testutil.ToFloat64(m.OutboxEventsCleaned))
}
