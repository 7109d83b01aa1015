// Package kafka adapts kafka-go readers and writers to the server's broker
// contract. Each queue maps to one topic; frame properties ride as message
// headers.
package kafka

import (
	"context"
	"sync"
	"time"

	"main/internal/server"
	"main/pkg/exception"

	segmentio "github.com/segmentio/kafka-go"
	"github.com/yanun0323/errors"
	"github.com/yanun0323/logs"
)

const (
	headerAppID         = "app-id"
	headerCorrelationID = "correlation-id"
	headerReplyTo       = "reply-to"
)

// Config locates the cluster.
type Config struct {
	Brokers []string
	GroupID string
}

// Broker implements server.Broker over a Kafka cluster.
type Broker struct {
	cfg Config

	mu      sync.Mutex
	writers map[string]*segmentio.Writer
	readers []*segmentio.Reader
	closed  bool
}

var _ server.Broker = (*Broker)(nil)

func New(cfg Config) (*Broker, error) {
	if len(cfg.Brokers) == 0 {
		return nil, exception.ErrMQMissingBrokers
	}
	if cfg.GroupID == "" {
		cfg.GroupID = "oes"
	}
	return &Broker{
		cfg:     cfg,
		writers: make(map[string]*segmentio.Writer),
	}, nil
}

// Consume starts one reader goroutine for the topic and feeds every message
// to the handler. Read errors are logged and retried until the context ends.
func (b *Broker) Consume(ctx context.Context, topic string, handler func(server.Frame)) error {
	if handler == nil {
		return errors.Wrap(exception.ErrMQNilHandler, topic)
	}

	reader := segmentio.NewReader(segmentio.ReaderConfig{
		Brokers:        b.cfg.Brokers,
		Topic:          topic,
		GroupID:        b.cfg.GroupID,
		MinBytes:       1,
		MaxBytes:       10e6,
		CommitInterval: time.Second,
	})

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		_ = reader.Close()
		return exception.ErrMQClosed
	}
	b.readers = append(b.readers, reader)
	b.mu.Unlock()

	go func() {
		for {
			msg, err := reader.ReadMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				logs.Errorf("kafka: read %q: %+v", topic, err)
				time.Sleep(time.Second)
				continue
			}
			handler(toFrame(msg))
		}
	}()
	return nil
}

func (b *Broker) Publish(ctx context.Context, topic string, f server.Frame) error {
	w, err := b.writer(topic)
	if err != nil {
		return err
	}
	msg := segmentio.Message{
		Key:   []byte(f.AppID),
		Value: f.Body,
		Headers: []segmentio.Header{
			{Key: headerAppID, Value: []byte(f.AppID)},
			{Key: headerCorrelationID, Value: []byte(f.CorrelationID)},
			{Key: headerReplyTo, Value: []byte(f.ReplyTo)},
		},
	}
	if err := w.WriteMessages(ctx, msg); err != nil {
		return errors.Wrap(err, "kafka: write "+topic)
	}
	return nil
}

func (b *Broker) writer(topic string) (*segmentio.Writer, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, exception.ErrMQClosed
	}
	if w, ok := b.writers[topic]; ok {
		return w, nil
	}
	w := &segmentio.Writer{
		Addr:         segmentio.TCP(b.cfg.Brokers...),
		Topic:        topic,
		Balancer:     &segmentio.Hash{},
		BatchTimeout: 5 * time.Millisecond,
		RequiredAcks: segmentio.RequireOne,
	}
	b.writers[topic] = w
	return w, nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	var firstErr error
	for topic, w := range b.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "kafka: close writer "+topic)
		}
	}
	for _, r := range b.readers {
		if err := r.Close(); err != nil && firstErr == nil {
			firstErr = errors.Wrap(err, "kafka: close reader")
		}
	}
	return firstErr
}

func toFrame(msg segmentio.Message) server.Frame {
	f := server.Frame{Body: msg.Value}
	for _, h := range msg.Headers {
		switch h.Key {
		case headerAppID:
			f.AppID = string(h.Value)
		case headerCorrelationID:
			f.CorrelationID = string(h.Value)
		case headerReplyTo:
			f.ReplyTo = string(h.Value)
		}
	}
	if f.AppID == "" {
		f.AppID = string(msg.Key)
	}
	return f
}
