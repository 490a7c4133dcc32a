package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/compliance/internal/domain/models"
	"github.com/turtacn/compliance/pkg/constants"
	"github.com/turtacn/compliance/pkg/logger"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestKafkaPublisher_Publish(t *testing.T) {
	w := &fakeWriter{}
	p := newKafkaPublisher(w, logger.NewNoopLogger())

	ev := &models.DomainEvent{
		ID:         "e1",
		Type:       constants.EventAlertRaised,
		TenantID:   "t1",
		OccurredAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Payload:    map[string]interface{}{"alert_id": "a1"},
	}
	require.NoError(t, p.Publish(context.Background(), ev))
	require.Len(t, w.msgs, 1)

	msg := w.msgs[0]
	assert.Equal(t, []byte("t1"), msg.Key)
	assert.Equal(t, "event_type", msg.Headers[0].Key)
	assert.Equal(t, string(constants.EventAlertRaised), string(msg.Headers[0].Value))

	var decoded models.DomainEvent
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, "e1", decoded.ID)
	assert.Equal(t, constants.EventAlertRaised, decoded.Type)
}

func TestKafkaPublisher_WriteError(t *testing.T) {
	w := &fakeWriter{err: errors.New("broker down")}
	p := newKafkaPublisher(w, logger.NewNoopLogger())
	err := p.Publish(context.Background(), &models.DomainEvent{ID: "e1", Type: constants.EventScoreCalculated})
	assert.EqualError(t, err, "broker down")
}

type fakeReader struct {
	msgs      []kafka.Message
	committed []int64
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.msgs[0]
	r.msgs = r.msgs[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed = append(r.committed, m.Offset)
	}
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_Run(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	good, _ := json.Marshal(models.DomainEvent{ID: "ok", Type: constants.EventAlertResolved})
	failing, _ := json.Marshal(models.DomainEvent{ID: "fail", Type: constants.EventAlertResolved})
	r := &fakeReader{
		cancel: cancel,
		msgs: []kafka.Message{
			{Offset: 1, Value: good},
			{Offset: 2, Value: []byte("garbage")},
			{Offset: 3, Value: failing},
		},
	}

	var seen []string
	c := newConsumer(r, logger.NewNoopLogger())
	err := c.Run(ctx, func(_ context.Context, ev *models.DomainEvent) error {
		seen = append(seen, ev.ID)
		if ev.ID == "fail" {
			return errors.New("handler failed")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"ok", "fail"}, seen)
	assert.Equal(t, []int64{1, 2}, r.committed)
}
