package redisstore

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/trezcool/timeac/core"
)

// Notifier fans notifications out through Redis pub/sub.
type Notifier struct {
	rdb    *redis.Client
	prefix string
	log    core.Logger
}

var _ core.Notifier = (*Notifier)(nil)

func NewNotifier(rdb *redis.Client, prefix string, log core.Logger) *Notifier {
	return &Notifier{rdb: rdb, prefix: prefix, log: log}
}

func (n *Notifier) Publish(ctx context.Context, topic, payload string) error {
	return errors.Wrapf(n.rdb.Publish(ctx, key(n.prefix, topic), payload).Err(), "publishing %s", topic)
}

// Subscribe starts a goroutine calling fn for every message on topic, until unsubscribe is called.
func (n *Notifier) Subscribe(topic string, fn func(payload string)) (func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	pubsub := n.rdb.Subscribe(ctx, key(n.prefix, topic))
	// wait for the subscription to be confirmed
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		return nil, errors.Wrapf(err, "subscribing to %s", topic)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range pubsub.Channel() {
			fn(msg.Payload)
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			if err := pubsub.Close(); err != nil {
				n.log.Warn("closing subscription", err, map[string]interface{}{"topic": topic})
			}
			<-done
		})
	}, nil
}
