// Package kafka publishes reservation lifecycle events to a Kafka topic.
package kafka

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"
)

// ErrProducerClosed is returned by Publish after Close.
var ErrProducerClosed = errors.New("kafka: producer closed")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in memory and writes them from one goroutine.
type Producer struct {
	w       messageWriter
	logger  *slog.Logger
	inbox   chan kafka.Message
	stop    chan struct{}
	closeCh chan struct{}
	once    sync.Once
}

// NewProducer builds a producer writing to topic on brokers. Messages with
// the same key land on the same partition.
func NewProducer(brokers []string, topic string, buf int, logger *slog.Logger) *Producer {
	return newProducer(&kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 10 * time.Millisecond,
	}, buf, logger)
}

func newProducer(w messageWriter, buf int, logger *slog.Logger) *Producer {
	if logger == nil {
		logger = slog.Default()
	}
	if buf <= 0 {
		buf = 1
	}
	return &Producer{
		w:       w,
		logger:  logger.With("component", "kafka_producer"),
		inbox:   make(chan kafka.Message, buf),
		stop:    make(chan struct{}),
		closeCh: make(chan struct{}),
	}
}

// Start runs the write loop until ctx is done or Close is called. Either way
// the producer stops accepting messages, and buffered messages are flushed
// before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case m := <-p.inbox:
				p.write(m)
			case <-ctx.Done():
				p.Close()
				p.shutdown()
				return
			case <-p.stop:
				p.shutdown()
				return
			}
		}
	}()
}

func (p *Producer) shutdown() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.logger.Warn("failed to close kafka writer", "error", err)
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := p.w.WriteMessages(ctx, m); err != nil {
		p.logger.Error("failed to write kafka message", "key", string(m.Key), "error", err)
	}
}

// Publish queues a message. It blocks while the buffer is full.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	m := kafka.Message{
		Key:     key,
		Value:   value,
		Time:    time.Now(),
		Headers: headers,
	}
	select {
	case <-p.stop:
		return ErrProducerClosed
	default:
	}
	select {
	case p.inbox <- m:
		return nil
	case <-p.stop:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages and asks the loop to flush and exit.
func (p *Producer) Close() {
	p.once.Do(func() { close(p.stop) })
}

// WaitClosed blocks until the write loop has exited.
func (p *Producer) WaitClosed() { <-p.closeCh }
