package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/storefront/services/shared/logging"
)

// Handler processes one event. A non-nil error leaves the message pending so
// it is delivered again.
type Handler func(ctx context.Context, event Event) error

// errMalformed marks messages that can never be handled.
var errMalformed = errors.New("malformed event message")

const (
	defaultBatchSize = 10
	defaultBlock     = 5 * time.Second
	retryBackoff     = time.Second

	// stream ids understood by XREADGROUP
	newMessages     = ">"
	pendingMessages = "0"
)

// SubscriberConfig describes one consumer in a consumer group.
type SubscriberConfig struct {
	Group         string
	Consumer      string
	Stream        string
	Handler       Handler
	BatchSize     int64
	BlockDuration time.Duration
}

// Subscriber reads a stream as part of a consumer group.
type Subscriber struct {
	client *redis.Client
	log    logging.Logger
	cfg    SubscriberConfig
}

func NewSubscriber(client *redis.Client, log logging.Logger, cfg SubscriberConfig) *Subscriber {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = defaultBatchSize
	}
	if cfg.BlockDuration <= 0 {
		cfg.BlockDuration = defaultBlock
	}
	return &Subscriber{
		client: client,
		log:    log.With("stream", cfg.Stream, "group", cfg.Group, "consumer", cfg.Consumer),
		cfg:    cfg,
	}
}

// Start joins the group and handles messages until ctx is cancelled. Messages
// left pending by an earlier run or a failed handler are replayed before new
// ones are read.
func (s *Subscriber) Start(ctx context.Context) error {
	err := s.client.XGroupCreateMkStream(ctx, s.cfg.Stream, s.cfg.Group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	s.log.Info(ctx, "subscriber started")

	from := pendingMessages
	for ctx.Err() == nil {
		n, failed, err := s.poll(ctx, from)
		switch {
		case err != nil && ctx.Err() == nil:
			s.log.Error(ctx, "stream read failed", "error", err)
			s.wait(ctx, retryBackoff)
		case failed > 0:
			from = pendingMessages
			s.wait(ctx, retryBackoff)
		case from == pendingMessages && n == 0:
			// backlog drained
			from = newMessages
		}
	}

	s.log.Info(context.Background(), "subscriber stopped")
	return ctx.Err()
}

// poll reads one batch starting at from and returns how many messages it saw
// and how many handlers failed.
func (s *Subscriber) poll(ctx context.Context, from string) (int, int, error) {
	args := &redis.XReadGroupArgs{
		Group:    s.cfg.Group,
		Consumer: s.cfg.Consumer,
		Streams:  []string{s.cfg.Stream, from},
		Count:    s.cfg.BatchSize,
		Block:    -1, // no BLOCK argument
	}
	if from == newMessages {
		args.Block = s.cfg.BlockDuration
	}

	streams, err := s.client.XReadGroup(ctx, args).Result()
	if errors.Is(err, redis.Nil) {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("failed to read from stream: %w", err)
	}

	var seen, failed int
	for _, stream := range streams {
		for _, msg := range stream.Messages {
			seen++
			err := s.handle(ctx, msg)
			if err != nil && !errors.Is(err, errMalformed) {
				failed++
				s.log.Warn(ctx, "event handler failed", "id", msg.ID, "error", err)
				continue
			}
			if err != nil {
				s.log.Warn(ctx, "dropping malformed message", "id", msg.ID, "error", err)
			}
			if err := s.client.XAck(ctx, s.cfg.Stream, s.cfg.Group, msg.ID).Err(); err != nil {
				s.log.Warn(ctx, "failed to ack message", "id", msg.ID, "error", err)
			}
		}
	}
	return seen, failed, nil
}

func (s *Subscriber) handle(ctx context.Context, msg redis.XMessage) error {
	raw, ok := msg.Values["event"].(string)
	if !ok {
		return fmt.Errorf("%w: no event field", errMalformed)
	}
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return fmt.Errorf("%w: %v", errMalformed, err)
	}
	return s.cfg.Handler(ctx, event)
}

func (s *Subscriber) wait(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
