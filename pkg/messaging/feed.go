package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jwalitptl/barber-api/pkg/logger"
	"github.com/jwalitptl/barber-api/pkg/metrics"
)

const (
	KindInsert = "INSERT"
	KindUpdate = "UPDATE"
	KindDelete = "DELETE"
)

// Change is one row-level event on the feed.
type Change struct {
	Table      string          `json:"table"`
	Kind       string          `json:"kind"`
	Payload    json.RawMessage `json:"payload"`
	OccurredAt time.Time       `json:"occurred_at"`
}

type ChangeHandler func(ctx context.Context, change Change) error

// Unsubscribe stops a subscription and waits for its delivery goroutine to exit.
// Calling it more than once is a no-op.
type Unsubscribe func()

// ChangeFeed is a subscription primitive keyed by table name and event kind.
type ChangeFeed interface {
	Subscribe(ctx context.Context, table, kind string, handler ChangeHandler) (Unsubscribe, error)
}

// ChangeChannel is the broker channel carrying changes of kind on table.
func ChangeChannel(table, kind string) string {
	return fmt.Sprintf("changes:%s:%s", table, strings.ToUpper(kind))
}

// EventType builds the outbox event type for a change.
func EventType(table, kind string) string {
	return table + "." + strings.ToUpper(kind)
}

// ParseEventType splits an outbox event type of the form "<table>.<KIND>".
func ParseEventType(eventType string) (table, kind string, err error) {
	i := strings.LastIndex(eventType, ".")
	if i <= 0 || i == len(eventType)-1 {
		return "", "", fmt.Errorf("malformed event type %q", eventType)
	}
	return eventType[:i], strings.ToUpper(eventType[i+1:]), nil
}

// BrokerFeed implements ChangeFeed on top of a pub/sub Broker.
type BrokerFeed struct {
	broker  Broker
	logger  *logger.Logger
	metrics *metrics.Metrics
}

func NewBrokerFeed(broker Broker, logger *logger.Logger, m *metrics.Metrics) *BrokerFeed {
	return &BrokerFeed{broker: broker, logger: logger, metrics: m}
}

func (f *BrokerFeed) Subscribe(ctx context.Context, table, kind string, handler ChangeHandler) (Unsubscribe, error) {
	channel := ChangeChannel(table, kind)
	subCtx, cancel := context.WithCancel(ctx)

	msgs, err := f.broker.Subscribe(subCtx, channel)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", channel, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			var change Change
			if err := json.Unmarshal(msg, &change); err != nil {
				f.logger.Error(err, "Dropping malformed change", "channel", channel)
				f.observe(channel, "malformed")
				continue
			}
			if err := handler(subCtx, change); err != nil {
				f.logger.Error(err, "Change handler failed", "channel", channel)
				f.observe(channel, "error")
				continue
			}
			f.observe(channel, "ok")
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}, nil
}

func (f *BrokerFeed) observe(channel, result string) {
	if f.metrics != nil {
		f.metrics.FeedDeliveries.WithLabelValues(channel, result).Inc()
	}
}
