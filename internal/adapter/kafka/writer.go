package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/couchcryptid/ndbc-met-etl/internal/domain"
)

// Writer publishes station outcomes to a Kafka topic, one message per
// station. It implements pipeline.OutcomePublisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// outcomeMessage is the JSON payload of an outcome message.
type outcomeMessage struct {
	Station    string    `json:"station"`
	Status     string    `json:"status"`
	Path       string    `json:"path,omitempty"`
	Rows       int       `json:"rows"`
	Skipped    int       `json:"skipped_lines"`
	Error      string    `json:"error,omitempty"`
	FinishedAt time.Time `json:"finished_at"`
}

// NewWriter creates a Kafka producer for the outcome topic.
func NewWriter(brokers []string, topic string, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// Publish serializes and publishes outcomes in a single WriteMessages call.
// Messages are keyed by station so repeated runs land on the same partition.
func (w *Writer) Publish(ctx context.Context, outcomes []domain.Outcome) error {
	if len(outcomes) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(outcomes))
	for i := range outcomes {
		msg, err := serializeToMessage(outcomes[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publish outcomes: %w", err)
	}
	w.logger.Info("published station outcomes", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Outcome into a Kafka message.
func serializeToMessage(o domain.Outcome) (kafkago.Message, error) {
	payload := outcomeMessage{
		Station:    o.Station,
		Status:     o.Status(),
		Path:       o.Path,
		Rows:       o.Rows,
		Skipped:    o.Skipped,
		FinishedAt: o.FinishedAt.UTC(),
	}
	if o.Err != nil {
		payload.Error = o.Err.Error()
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize outcome: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(o.Station),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "outcome", Value: []byte(payload.Status)},
			{Key: "finished_at", Value: []byte(payload.FinishedAt.Format(time.RFC3339))},
		},
	}, nil
}
