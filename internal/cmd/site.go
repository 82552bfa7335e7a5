package cmd

import (
	"github.com/keystone-rf/p25ctrl/internal/config"
	"github.com/keystone-rf/p25ctrl/internal/p25/site"
)

// buildSiteData projects the configured Site block into the engine's
// immutable per-site identity.
func buildSiteData(cfg config.Site) site.Data {
	return site.Data{
		NetworkID: cfg.NetworkID,
		SystemID:  cfg.SystemID,
		RFSSID:    cfg.RFSSID,
		SiteID:    cfg.SiteID,
		ChannelID: cfg.ChannelID,
		ChannelNo: cfg.ChannelNo,
		Callsign:  cfg.Callsign,
	}
}

// buildIdentityTable projects the configured channel identities into the
// engine's read-only identity lookup.
func buildIdentityTable(cfg config.Channels) *site.IdentityTable {
	entries := make([]site.IdentityEntry, 0, len(cfg.Identities))
	for _, id := range cfg.Identities {
		entries = append(entries, site.IdentityEntry{
			ChannelID:      id.ChannelID,
			BaseFrequency:  id.BaseFrequencyHz,
			ChannelSpacing: id.ChannelSpacingHz / 1000,
			Bandwidth:      id.BandwidthHz / 1000,
			TxOffset:       id.TxOffsetHz / 1000000,
		})
	}
	return site.NewIdentityTable(entries)
}

// channelPool derives the engine's grantable voice-channel numbers: the
// first PoolSize channel numbers counting up from 1, skipping the control
// channel's own number, which is never itself grant-eligible.
func channelPool(cfg config.Config) []uint16 {
	pool := make([]uint16, 0, cfg.Channels.PoolSize)
	for n := uint16(1); int(n) <= cfg.Channels.PoolSize+1 && len(pool) < cfg.Channels.PoolSize; n++ {
		if n == cfg.Site.ChannelNo {
			continue
		}
		pool = append(pool, n)
	}
	return pool
}
