package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Astemirdum/library-catalog/pkg/circuit_breaker"
	"github.com/IBM/sarama"
)

const CatalogTopic = "catalog-events"

type Config struct {
	Enable bool     `envconfig:"KAFKA_ENABLE" default:"false"`
	Addrs  []string `envconfig:"KAFKA_ADDRS" default:"localhost:9092"`
	Topic  string   `envconfig:"KAFKA_TOPIC" default:"catalog-events"`
	CB     circuit_breaker.Config
}

type EventType string

const (
	AuthorCreated EventType = "author.created"
	AuthorUpdated EventType = "author.updated"
	AuthorDeleted EventType = "author.deleted"
	BookCreated   EventType = "book.created"
	BookUpdated   EventType = "book.updated"
	BookDeleted   EventType = "book.deleted"
)

type CatalogEvent struct {
	Type      EventType `json:"type"`
	EntityID  string    `json:"entityId"`
	AuthorID  string    `json:"authorId,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func NewProducer(cfg Config) (sarama.SyncProducer, error) {
	defaultCfg := sarama.NewConfig()

	defaultCfg.Producer.RequiredAcks = sarama.WaitForAll
	defaultCfg.Producer.Return.Successes = true
	defaultCfg.Producer.Retry.Max = 3

	return sarama.NewSyncProducer(cfg.Addrs, defaultCfg)
}

// Publisher writes catalog events keyed by entity id, so every change of one record lands in one partition.
type Publisher struct {
	producer sarama.SyncProducer
	topic    string
	cb       circuit_breaker.CircuitBreaker
}

func NewPublisher(producer sarama.SyncProducer, topic string, cb circuit_breaker.CircuitBreaker) *Publisher {
	if topic == "" {
		topic = CatalogTopic
	}
	return &Publisher{
		producer: producer,
		topic:    topic,
		cb:       cb,
	}
}

func (p *Publisher) Publish(ctx context.Context, event CatalogEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(event.EntityID),
		Value: sarama.ByteEncoder(data),
	}
	return p.cb.Call(func() error {
		_, _, err := p.producer.SendMessage(msg)
		return err
	})
}

func (p *Publisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when the broker is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, CatalogEvent) error { return nil }

func (NopPublisher) Close() error { return nil }
