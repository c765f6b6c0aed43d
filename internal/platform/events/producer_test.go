package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type MockKafkaWriter struct {
	mock.Mock
}

func (m *MockKafkaWriter) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	args := m.Called(ctx, msgs)
	return args.Error(0)
}

func (m *MockKafkaWriter) Close() error {
	args := m.Called()
	return args.Error(0)
}

func TestProducerPublishDeliversOnClose(t *testing.T) {
	writer := new(MockKafkaWriter)
	writer.On("WriteMessages", mock.Anything, mock.Anything).Return(nil)
	writer.On("Close").Return(nil)

	producer := newProducer(writer, zaptest.NewLogger(t), 10)
	producer.Publish(context.Background(), "employee.updated", "e1", map[string]string{"firstName": "Asha"})
	producer.Close()

	writer.AssertNumberOfCalls(t, "WriteMessages", 1)
	msgs := writer.Calls[0].Arguments.Get(1).([]kafka.Message)
	require.Len(t, msgs, 1)
	assert.Equal(t, "e1", string(msgs[0].Key))

	var event Event
	require.NoError(t, json.Unmarshal(msgs[0].Value, &event))
	assert.Equal(t, "employee.updated", event.Type)
	assert.Equal(t, "e1", event.EntityID)
	writer.AssertCalled(t, "Close")
}

func TestProducerDropsWhenQueueFull(t *testing.T) {
	core, recorded := observer.New(zap.WarnLevel)
	producer := &Producer{
		events: make(chan Event, 1),
		logger: zap.New(core),
	}

	producer.Publish(context.Background(), "payment.created", "p1", nil)
	producer.Publish(context.Background(), "payment.created", "p2", nil)

	assert.Equal(t, 1, recorded.FilterMessage("Kafka producer queue full, dropping event").Len())
	assert.Equal(t, 1, recorded.FilterField(zap.String("entity_id", "p2")).Len())
}

func TestProducerSendEventErrors(t *testing.T) {
	t.Run("serialization error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		producer := &Producer{writer: new(MockKafkaWriter), logger: zap.New(core)}

		oldMarshal := jsonMarshal
		jsonMarshal = func(_ any) ([]byte, error) {
			return nil, errors.New("mock marshal error")
		}
		defer func() { jsonMarshal = oldMarshal }()

		producer.sendEvent(context.Background(), Event{Type: "employee.created", EntityID: "e1"})
		assert.Equal(t, 1, recorded.FilterMessage("Failed to serialize event").Len())
	})

	t.Run("write error", func(t *testing.T) {
		core, recorded := observer.New(zap.ErrorLevel)
		writer := new(MockKafkaWriter)
		writer.On("WriteMessages", mock.Anything, mock.Anything).Return(errors.New("broker down"))
		producer := &Producer{writer: writer, logger: zap.New(core)}

		producer.sendEvent(context.Background(), Event{Type: "employee.created", EntityID: "e1"})
		assert.Equal(t, 1, recorded.FilterMessage("Failed to produce event").Len())
	})
}
