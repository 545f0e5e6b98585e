package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/khoahotran/folio/internal/config"
	"github.com/khoahotran/folio/internal/domain/content"
	"github.com/khoahotran/folio/pkg/apperror"
	"github.com/khoahotran/folio/pkg/logger"
)

const TopicContentEvents = "content.events"

// writeBatchTimeout caps how long an admin write waits for its event to be
// flushed.
const writeBatchTimeout = 10 * time.Millisecond

// messageWriter is the subset of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	ContentEventsWriter messageWriter
	logger              logger.Logger
}

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	contentWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicContentEvents,
		Balancer:               &kafka.Hash{},
		BatchTimeout:           writeBatchTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.")
	return &KafkaProducerClient{ContentEventsWriter: contentWriter, logger: log}, nil
}

// Publish appends the event to the content log. Events of one row share a
// key so they stay ordered within a partition.
func (c *KafkaProducerClient) Publish(ctx context.Context, e content.ChangeEvent) error {
	value, err := json.Marshal(e)
	if err != nil {
		return apperror.NewInternal("failed to encode content event", err)
	}
	msg := kafka.Message{
		Key:   []byte(e.Table + ":" + strconv.FormatInt(e.ID, 10)),
		Value: value,
	}
	if err := c.ContentEventsWriter.WriteMessages(ctx, msg); err != nil {
		return apperror.NewInternal("failed to write content event", err)
	}
	return nil
}

func (c *KafkaProducerClient) Close() {
	if c.ContentEventsWriter != nil {
		if err := c.ContentEventsWriter.Close(); err != nil {
			c.logger.Error("Failed to close Kafka producer", err)
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// DecodeContentEvent parses a message written by Publish.
func DecodeContentEvent(msg kafka.Message) (content.ChangeEvent, error) {
	var e content.ChangeEvent
	if err := json.Unmarshal(msg.Value, &e); err != nil {
		return e, fmt.Errorf("decode content event %q: %w", string(msg.Key), err)
	}
	return e, nil
}
