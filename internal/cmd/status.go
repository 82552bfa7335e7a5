package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/kv"
	"github.com/keystone-rf/p25ctrl/internal/logging"
	"github.com/keystone-rf/p25ctrl/internal/p25/control"
	"github.com/keystone-rf/p25ctrl/internal/pubsub"
)

const (
	statusPublishInterval = 5 * time.Second
	statusTopic           = "p25ctrl.status"
	statusTTL             = 30 * time.Second
)

// siteStatus is the periodic snapshot published to pubsub and mirrored
// into the KV store, so a second replica (or an operator dashboard) can
// observe this site's call state without querying the Engine directly.
type siteStatus struct {
	SiteID       uint8 `json:"site_id"`
	RFState      int   `json:"rf_state"`
	NetState     int   `json:"net_state"`
	ActiveGrants int   `json:"active_grants"`
}

// runStatusPublisher periodically snapshots the engine's call state onto
// the status topic and into the KV store under a TTL'd key, so a
// clustered deployment's other processes can see this site's state, per
// internal/kv's doc comment on standing in for cross-process state when
// the control station runs clustered.
func runStatusPublisher(ctx context.Context, siteID uint8, engine *control.Engine, ps pubsub.PubSub, store kv.KV) error {
	ticker := time.NewTicker(statusPublishInterval)
	defer ticker.Stop()
	key := fmt.Sprintf("site:%d:status", siteID)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			snap := siteStatus{
				SiteID:       siteID,
				RFState:      int(engine.RFState),
				NetState:     int(engine.NetState),
				ActiveGrants: engine.Grants.Count(),
			}
			body, err := json.Marshal(snap)
			if err != nil {
				logging.Warnf("status: marshal: %s", err)
				continue
			}
			if err := ps.Publish(statusTopic, body); err != nil {
				logging.Warnf("status: publish: %s", err)
			}
			if err := store.Set(ctx, key, body); err != nil {
				logging.Warnf("status: kv set: %s", err)
				continue
			}
			if err := store.Expire(ctx, key, statusTTL); err != nil {
				logging.Warnf("status: kv expire: %s", err)
			}
		}
	}
}
