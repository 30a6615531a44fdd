package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/paymanager/internal/service"
)

// fakeReader отдаёт сообщения по очереди, затем ждёт отмены ctx
type fakeReader struct {
	mu        sync.Mutex
	queue     []kafka.Message
	committed []int64
	drained   chan struct{}
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	return &fakeReader{queue: msgs, drained: make(chan struct{})}
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	r.mu.Lock()
	if len(r.queue) > 0 {
		m := r.queue[0]
		r.queue = r.queue[1:]
		r.mu.Unlock()
		return m, nil
	}
	r.mu.Unlock()

	select {
	case <-r.drained:
	default:
		close(r.drained)
	}
	<-ctx.Done()
	return kafka.Message{}, ctx.Err()
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func (r *fakeReader) Committed() []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int64(nil), r.committed...)
}

func eventMessage(t *testing.T, offset int64, event service.PurchaseEvent) kafka.Message {
	t.Helper()
	raw, err := json.Marshal(event)
	require.NoError(t, err)
	return kafka.Message{Offset: offset, Value: raw}
}

func runConsumer(t *testing.T, reader *fakeReader, handler PurchaseEventHandler) {
	t.Helper()
	consumer := NewPurchaseEventConsumer(zap.NewNop(), reader, handler)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()

	select {
	case <-reader.drained:
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not drain messages")
	}
	cancel()
	require.NoError(t, <-done)
}

func TestPurchaseEventConsumer_HandlesAndCommits(t *testing.T) {
	reader := newFakeReader(
		eventMessage(t, 1, service.PurchaseEvent{EventID: "e1", EventType: service.EventPurchasePaid, TransactionID: 7, Amount: 3000}),
		eventMessage(t, 2, service.PurchaseEvent{EventID: "e2", EventType: service.EventPurchaseRefunded, TransactionID: 7}),
	)

	var got []string
	runConsumer(t, reader, func(_ context.Context, e service.PurchaseEvent) error {
		got = append(got, e.EventType)
		return nil
	})

	assert.Equal(t, []string{service.EventPurchasePaid, service.EventPurchaseRefunded}, got)
	assert.Equal(t, []int64{1, 2}, reader.Committed())
}

func TestPurchaseEventConsumer_SkipsMalformed(t *testing.T) {
	reader := newFakeReader(
		kafka.Message{Offset: 1, Value: []byte("{not json")},
		eventMessage(t, 2, service.PurchaseEvent{EventID: "e2", EventType: "order.paid", TransactionID: 1}),
		eventMessage(t, 3, service.PurchaseEvent{EventID: "e3", EventType: service.EventPurchasePaid}),
	)

	calls := 0
	runConsumer(t, reader, func(context.Context, service.PurchaseEvent) error {
		calls++
		return nil
	})

	assert.Zero(t, calls)
	assert.Equal(t, []int64{1, 2, 3}, reader.Committed())
}

func TestPurchaseEventConsumer_HandlerErrorNotCommitted(t *testing.T) {
	reader := newFakeReader(
		eventMessage(t, 1, service.PurchaseEvent{EventID: "e1", EventType: service.EventPurchasePaid, TransactionID: 1}),
	)

	runConsumer(t, reader, func(context.Context, service.PurchaseEvent) error {
		return errors.New("downstream unavailable")
	})

	assert.Empty(t, reader.Committed())
}
