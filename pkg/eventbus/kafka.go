// Package eventbus mirrors audit entries onto a Kafka topic for
// downstream consumers. Mirroring is optional and best-effort: the
// gateway never blocks or fails a request on bus trouble.
package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

type kafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Config struct {
	Brokers []string
	Topic   string
}

// Publisher writes JSON-encoded events keyed by client identifier so a
// partitioned topic keeps per-client ordering.
type Publisher struct {
	writer  kafkaWriter
	timeout time.Duration
}

func NewPublisher(cfg Config) (*Publisher, error) {
	brokers := make([]string, 0, len(cfg.Brokers))
	for _, b := range cfg.Brokers {
		if trimmed := strings.TrimSpace(b); trimmed != "" {
			brokers = append(brokers, trimmed)
		}
	}
	if len(brokers) == 0 {
		return nil, fmt.Errorf("kafka brokers required")
	}
	if strings.TrimSpace(cfg.Topic) == "" {
		return nil, fmt.Errorf("kafka topic required")
	}
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: w, timeout: 5 * time.Second}, nil
}

// Publish marshals v and writes it under key. Failures are logged, not
// returned: the audit trail of record is the database, the bus is a
// mirror.
func (p *Publisher) Publish(key string, v any) {
	if p == nil || p.writer == nil {
		return
	}
	payload, err := json.Marshal(v)
	if err != nil {
		log.Printf("eventbus: marshal failed: %v", err)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(key), Value: payload}); err != nil {
		log.Printf("eventbus: publish failed: %v", err)
	}
}

func (p *Publisher) Close() error {
	if p == nil || p.writer == nil {
		return nil
	}
	return p.writer.Close()
}
