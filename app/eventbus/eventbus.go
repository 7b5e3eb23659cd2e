package eventbus

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Black-And-White-Club/elo-tracker/internal/handlerwrapper"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	nc "github.com/nats-io/nats.go"
)

// EventBus is the publisher and subscriber shared by the gateway and the
// tracking router.
type EventBus interface {
	message.Publisher
	message.Subscriber
}

// Config selects the transport. An empty NATSURL keeps everything in process.
// Subscribers is the number of NATS queue subscriptions per topic and AckWait
// bounds how long the NATS subscriber holds a delivered message.
type Config struct {
	NATSURL     string
	QueueGroup  string
	Subscribers int
	AckWait     time.Duration
}

const (
	defaultQueueGroup  = "elo-tracker"
	defaultSubscribers = 4
	minAckWait         = 30 * time.Second
)

// eventBus implements EventBus. Messages carrying a "topic" metadata entry
// are published there instead of on the topic passed to Publish.
type eventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
	// detach hands NATS deliveries on without waiting for their ack.
	detach bool
}

// NewEventBus creates an EventBus over NATS core subjects, or over an
// in-memory go channel when no NATS URL is configured.
func NewEventBus(ctx context.Context, cfg Config, logger *slog.Logger) (EventBus, error) {
	watermillLogger := watermill.NewSlogLogger(logger)

	if cfg.NATSURL == "" {
		pubSub := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 256}, watermillLogger)
		logger.InfoContext(ctx, "Using in-process event bus")
		return &eventBus{publisher: pubSub, subscriber: pubSub, logger: logger}, nil
	}

	queueGroup := cfg.QueueGroup
	if queueGroup == "" {
		queueGroup = defaultQueueGroup
	}
	subscribers := cfg.Subscribers
	if subscribers <= 0 {
		subscribers = defaultSubscribers
	}
	ackWait := max(cfg.AckWait, minAckWait)

	marshaler := &nats.NATSMarshaler{}
	natsOptions := []nc.Option{
		nc.RetryOnFailedConnect(true),
		nc.Name("elo-tracker"),
	}

	publisher, err := nats.NewPublisher(
		nats.PublisherConfig{
			URL:         cfg.NATSURL,
			Marshaler:   marshaler,
			NatsOptions: natsOptions,
			JetStream:   nats.JetStreamConfig{Disabled: true},
		},
		watermillLogger,
	)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to create Watermill publisher", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill publisher: %w", err)
	}

	subscriber, err := nats.NewSubscriber(
		nats.SubscriberConfig{
			URL:              cfg.NATSURL,
			QueueGroupPrefix: queueGroup,
			SubscribersCount: subscribers,
			AckWaitTimeout:   ackWait,
			Unmarshaler:      marshaler,
			NatsOptions:      natsOptions,
			JetStream:        nats.JetStreamConfig{Disabled: true},
		},
		watermillLogger,
	)
	if err != nil {
		publisher.Close()
		logger.ErrorContext(ctx, "Failed to create Watermill subscriber", slog.Any("error", err))
		return nil, fmt.Errorf("failed to create Watermill subscriber: %w", err)
	}

	logger.InfoContext(ctx, "Connected event bus to NATS",
		slog.String("queue_group", queueGroup),
		slog.Int("subscribers", subscribers),
	)
	return &eventBus{publisher: publisher, subscriber: subscriber, logger: logger, detach: true}, nil
}

// Publish sends msgs, honouring each message's topic metadata.
func (eb *eventBus) Publish(topic string, msgs ...*message.Message) error {
	for _, msg := range msgs {
		if msg.UUID == "" {
			msg.UUID = watermill.NewUUID()
		}

		dest := msg.Metadata.Get(handlerwrapper.MetadataTopic)
		if dest == "" {
			dest = topic
		}
		if dest == "" {
			return fmt.Errorf("message %s has no destination topic", msg.UUID)
		}

		eb.logger.Debug("Publishing message",
			slog.String("topic", dest),
			slog.String("message_id", msg.UUID),
		)

		if err := eb.publisher.Publish(dest, msg); err != nil {
			eb.logger.Error("Failed to publish message",
				slog.String("topic", dest),
				slog.Any("error", err),
			)
			return fmt.Errorf("failed to publish to %s: %w", dest, err)
		}
	}
	return nil
}

// Subscribe returns the message channel for topic.
func (eb *eventBus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	messages, err := eb.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe to %s: %w", topic, err)
	}
	eb.logger.Info("Subscription started", slog.String("topic", topic))
	if eb.detach {
		return detachAcks(ctx, messages), nil
	}
	return messages, nil
}

// detachAcks re-emits every message from in as an independent copy and acks
// the original once the copy is handed over. The NATS subscriber delivers the
// next message only after the previous ack; core NATS never redelivers.
func detachAcks(ctx context.Context, in <-chan *message.Message) <-chan *message.Message {
	out := make(chan *message.Message)
	go func() {
		defer close(out)
		for {
			var msg *message.Message
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				msg = m
			}

			detached := msg.Copy()
			detached.SetContext(ctx)

			select {
			case out <- detached:
				msg.Ack()
			case <-ctx.Done():
				msg.Nack()
				return
			}
		}
	}()
	return out
}

// Close closes the publisher and subscriber. With the in-process transport
// they are the same object and are closed once.
func (eb *eventBus) Close() error {
	var firstErr error
	if eb.publisher != nil {
		if err := eb.publisher.Close(); err != nil {
			eb.logger.Error("Error closing publisher", "error", err)
			firstErr = err
		}
	}
	if eb.subscriber != nil && any(eb.subscriber) != any(eb.publisher) {
		if err := eb.subscriber.Close(); err != nil {
			eb.logger.Error("Error closing subscriber", "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
