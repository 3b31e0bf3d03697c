package cli_test

import (
	"context"
	"testing"

	"stagehand/infras/kafka"
	kafkaMocks "stagehand/infras/kafka/mocks"
	"stagehand/internal/jobs/reminder"

	kafkaGo "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func encode(t *testing.T, r reminder.Reminder) kafkaGo.Message {
	t.Helper()

	msg := kafka.Message{Key: r.ID, Value: r}

	encoded, err := msg.ToKafkaMessage()
	require.NoError(t, err)

	return encoded
}

func TestRemindersTail(t *testing.T) {
	t.Run("prints until the limit", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))

		messages := []kafkaGo.Message{
			encode(t, reminder.Reminder{
				Kind:     reminder.KindRehearsal,
				ID:       "reh-1",
				Location: "Studio B",
				DateKey:  "2024-06-16",
				Display:  "Jun 16, 2024, 6:30 PM ET",
			}),
			encode(t, reminder.Reminder{
				Kind:     reminder.KindPerformance,
				ID:       "perf-2",
				Title:    "Summer Showcase",
				Location: "Town Hall",
				DateKey:  "2024-06-16",
				Display:  "Jun 16, 2024, 7:00 PM EDT",
				CallTime: "6:00 PM",
			}),
			encode(t, reminder.Reminder{Kind: reminder.KindRehearsal, ID: "reh-9"}),
		}

		client.EXPECT().Consume(gomock.Any(), "ops", "stagehand.rehearsal.reminder", gomock.Any()).DoAndReturn(
			func(ctx context.Context, _, _ string, handler kafka.Handler) error {
				for _, msg := range messages {
					if ctx.Err() != nil {
						return nil
					}

					require.NoError(t, handler(ctx, msg))
				}

				return nil
			})

		out, err := runWith(t, client, "reminders", "tail", "--group", "ops", "--limit", "2")

		require.NoError(t, err)
		assert.Equal(t,
			"2024-06-16\trehearsal\tJun 16, 2024, 6:30 PM ET @ Studio B\n"+
				"2024-06-16\tperformance\tJun 16, 2024, 7:00 PM EDT\tSummer Showcase @ Town Hall (call 6:00 PM)\n",
			out)
	})

	t.Run("malformed payload is rejected", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))

		client.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
			func(ctx context.Context, _, _ string, handler kafka.Handler) error {
				assert.Error(t, handler(ctx, kafkaGo.Message{Key: []byte("bad"), Value: []byte("{")}))

				return nil
			})

		_, err := runWith(t, client, "reminders", "tail")
		require.NoError(t, err)
	})

	t.Run("consumer error", func(t *testing.T) {
		client := kafkaMocks.NewMockClient(gomock.NewController(t))

		client.EXPECT().Consume(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(kafka.ErrNoBrokers)

		_, err := runWith(t, client, "reminders", "tail")
		assert.ErrorIs(t, err, kafka.ErrNoBrokers)
	})
}
