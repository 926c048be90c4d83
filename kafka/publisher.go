package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"newsradar/logging"
	"newsradar/types"

	"github.com/IBM/sarama"
	"go.uber.org/zap"
)

// Publisher sends each run result to the result topic keyed by run id
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	logger   *zap.Logger
}

// NewPublisher connects a synchronous producer to the brokers
func NewPublisher(brokers []string, topic string, logger *zap.Logger) (*Publisher, error) {
	cfg := newSaramaConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("create producer: %w", err)
	}
	return newPublisher(producer, topic, logger), nil
}

func newPublisher(producer sarama.SyncProducer, topic string, logger *zap.Logger) *Publisher {
	return &Publisher{
		producer: producer,
		topic:    topic,
		logger:   logging.OrNop(logger).Named("kafka"),
	}
}

// Notify implements pipeline.Notifier
func (p *Publisher) Notify(_ context.Context, result *types.RunResult) error {
	body, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode run result: %w", err)
	}

	partition, offset, err := p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(result.RunID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("publish run result: %w", err)
	}
	p.logger.Debug("run result published",
		zap.String("run_id", result.RunID),
		zap.Int32("partition", partition),
		zap.Int64("offset", offset))
	return nil
}

// Close flushes and closes the producer
func (p *Publisher) Close() error {
	return p.producer.Close()
}
