package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"
)

const (
	ChannelPrefix = "pos:events:"
	ChannelAll    = "pos:events:all"

	OrderCreated         = "order.created"
	OrderStatusChanged   = "order.status_changed"
	PaymentStatusChanged = "payment.status_changed"
	POSSaleCreated       = "pos.sale_created"
)

// Event is the envelope published for other consumers (kitchen display, bots).
type Event struct {
	Type       string      `json:"type"`
	Payload    interface{} `json:"payload"`
	OccurredAt time.Time   `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
	Close() error
}

type redisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher connects to Redis and verifies the connection with PING.
func NewRedisPublisher(ctx context.Context, addr, password string, db int) (Publisher, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 2,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, errors.Wrapf(err, "connect redis %s", addr)
	}
	return &redisPublisher{rdb: rdb}, nil
}

// Publish sends the event on its own channel and on the catch-all channel.
func (p *redisPublisher) Publish(ctx context.Context, eventType string, payload interface{}) error {
	data, err := json.Marshal(Event{Type: eventType, Payload: payload, OccurredAt: time.Now()})
	if err != nil {
		return errors.Wrap(err, "marshal event")
	}
	if err := p.rdb.Publish(ctx, ChannelPrefix+eventType, data).Err(); err != nil {
		return errors.Wrapf(err, "publish %s", eventType)
	}
	if err := p.rdb.Publish(ctx, ChannelAll, data).Err(); err != nil {
		return errors.Wrap(err, fmt.Sprintf("publish %s to %s", eventType, ChannelAll))
	}
	return nil
}

func (p *redisPublisher) Close() error {
	return p.rdb.Close()
}

// Nop discards every event; used when Redis is not configured.
type Nop struct{}

func (Nop) Publish(ctx context.Context, eventType string, payload interface{}) error { return nil }
func (Nop) Close() error                                                          { return nil }
