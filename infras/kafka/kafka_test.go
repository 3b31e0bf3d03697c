package kafka_test

import (
	"context"
	"testing"

	"stagehand/config"
	"stagehand/infras/kafka"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type changed struct {
	ID     string `json:"id"`
	Action string `json:"action"`
}

func TestMessage_ToKafkaMessage(t *testing.T) {
	msg := kafka.Message{Key: "perf-1", Value: changed{ID: "perf-1", Action: "updated"}}

	encoded, err := msg.ToKafkaMessage()
	require.NoError(t, err)
	assert.Equal(t, []byte("perf-1"), encoded.Key)
	assert.JSONEq(t, `{"id":"perf-1","action":"updated"}`, string(encoded.Value))

	decoded, err := kafka.Decode[changed](encoded)
	require.NoError(t, err)
	assert.Equal(t, changed{ID: "perf-1", Action: "updated"}, decoded)
}

func TestDecode_Malformed(t *testing.T) {
	_, err := kafka.Decode[changed](kafkaGo.Message{Key: []byte("perf-1"), Value: []byte("{")})
	assert.ErrorContains(t, err, "perf-1")
}

func TestMessage_ToKafkaMessage_Unmarshalable(t *testing.T) {
	msg := kafka.Message{Key: "bad", Value: make(chan int)}

	_, err := msg.ToKafkaMessage()
	assert.Error(t, err)
}

func TestClient_SendMessages_NoBrokers(t *testing.T) {
	client := kafka.New(&config.Config{})

	err := client.SendMessages(context.Background(), "stagehand.performance.changed", kafka.Message{Key: "k", Value: "v"})
	assert.NoError(t, err)
}

func TestClient_Consume_NoBrokers(t *testing.T) {
	client := kafka.New(&config.Config{})

	err := client.Consume(context.Background(), "", "stagehand.rehearsal.reminder", func(context.Context, kafkaGo.Message) error {
		return nil
	})
	assert.ErrorIs(t, err, kafka.ErrNoBrokers)
}
