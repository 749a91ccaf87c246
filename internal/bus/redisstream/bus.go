// Package redisstream mirrors the chat transcript onto a Redis stream and reads it back.
package redisstream

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const publishTimeout = 2 * time.Second

type Bus struct {
	cli    *redis.Client
	stream string
}

// Message is one transcript line as stored in the stream.
type Message struct {
	Type string    `json:"type"`
	When time.Time `json:"when"`
	Text string    `json:"text,omitempty"`
}

func New(addr string, db int, stream string) *Bus {
	cli := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	return &Bus{cli: cli, stream: stream}
}

func (b *Bus) Stream() string { return b.stream }

func (b *Bus) Ping(ctx context.Context) error { return b.cli.Ping(ctx).Err() }

func (b *Bus) Close() error { return b.cli.Close() }

func (b *Bus) Publish(ctx context.Context, m *Message) error {
	payload, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return b.cli.XAdd(ctx, &redis.XAddArgs{Stream: b.stream, Values: map[string]any{"data": payload}}).Err()
}

// Mirror publishes a transcript line; it satisfies chatlog.Mirror.
func (b *Bus) Mirror(when time.Time, line string) error {
	ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
	defer cancel()
	return b.Publish(ctx, &Message{Type: "transcript", When: when, Text: line})
}

type Handler func(ctx context.Context, m *Message) error

// Tail blocks delivering entries newer than from ("$" for only new ones, "0" for all)
// until ctx is cancelled.
func (b *Bus) Tail(ctx context.Context, from string, handler Handler) error {
	last := from
	for {
		res, err := b.cli.XRead(ctx, &redis.XReadArgs{
			Streams: []string{b.stream, last},
			Count:   100,
			Block:   5 * time.Second,
		}).Result()
		if errors.Is(err, redis.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// transient errors: back off and retry
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Second):
			}
			continue
		}
		for _, str := range res {
			for _, xmsg := range str.Messages {
				last = xmsg.ID
				m, ok := decode(xmsg.Values)
				if !ok {
					continue
				}
				if err := handler(ctx, m); err != nil {
					return err
				}
			}
		}
	}
}

func decode(values map[string]any) (*Message, bool) {
	raw, _ := values["data"].(string)
	if raw == "" {
		return nil, false
	}
	var m Message
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, false
	}
	return &m, true
}
