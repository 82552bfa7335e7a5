// Package pubsub is the pluggable fanout on which internal/cmd's status
// publisher broadcasts the site's periodic call-state snapshot: an
// in-memory implementation standalone, Redis pub/sub when the control
// station runs clustered.
package pubsub

import (
	"context"

	"github.com/keystone-rf/p25ctrl/internal/config"
)

type PubSub interface {
	Publish(topic string, message []byte) error
	Subscribe(topic string) Subscription
	Close() error
}

type Subscription interface {
	Close() error
	Channel() <-chan []byte
}

func MakePubSub(ctx context.Context, cfg *config.Config) (PubSub, error) {
	if cfg.Redis.Enabled {
		return makePubSubFromRedis(ctx, cfg)
	}
	return makeInMemoryPubSub(cfg)
}
