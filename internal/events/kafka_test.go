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
	"go.uber.org/zap"
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

func TestKafkaPublisherEncodesEvents(t *testing.T) {
	w := &fakeWriter{}
	pub := &KafkaPublisher{writer: w, log: zap.NewNop()}

	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	err := pub.Publish(context.Background(),
		Event{Type: TypeContractorPending, ContractorID: "acme-x1y2z", OccurredAt: at},
		Event{Type: TypeBranchAdded, ContractorID: "acme-x1y2z", BranchID: "bogota", OccurredAt: at},
	)
	require.NoError(t, err)
	require.Len(t, w.msgs, 2)

	assert.Equal(t, []byte("acme-x1y2z"), w.msgs[0].Key)
	assert.Equal(t, "type", w.msgs[1].Headers[0].Key)
	assert.Equal(t, []byte(TypeBranchAdded), w.msgs[1].Headers[0].Value)

	var decoded Event
	require.NoError(t, json.Unmarshal(w.msgs[1].Value, &decoded))
	assert.Equal(t, "bogota", decoded.BranchID)
}

func TestKafkaPublisherPropagatesErrors(t *testing.T) {
	boom := errors.New("broker down")
	pub := &KafkaPublisher{writer: &fakeWriter{err: boom}, log: zap.NewNop()}
	err := pub.Publish(context.Background(), Event{Type: TypeContractorAssigned, ContractorID: "c"})
	assert.ErrorIs(t, err, boom)
	assert.NoError(t, pub.Publish(context.Background()))
}
