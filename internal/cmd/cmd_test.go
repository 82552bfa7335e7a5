package cmd

import (
	"errors"
	"testing"

	"github.com/keystone-rf/p25ctrl/internal/config"
)

func TestChannelPoolSkipsControlChannel(t *testing.T) {
	cfg := config.Config{}
	cfg.Site.ChannelNo = 3
	cfg.Channels.PoolSize = 4

	pool := channelPool(cfg)
	if len(pool) != 4 {
		t.Fatalf("expected 4 channels, got %d: %v", len(pool), pool)
	}
	for _, n := range pool {
		if n == cfg.Site.ChannelNo {
			t.Fatalf("expected control channel %d excluded from pool %v", cfg.Site.ChannelNo, pool)
		}
	}
}

func TestBuildSiteData(t *testing.T) {
	cfg := config.Site{
		NetworkID: 1, SystemID: 2, RFSSID: 3, SiteID: 4,
		ChannelID: 5, ChannelNo: 6, Callsign: "KEYSTONE",
	}
	got := buildSiteData(cfg)
	if got.NetworkID != 1 || got.SystemID != 2 || got.RFSSID != 3 || got.SiteID != 4 ||
		got.ChannelID != 5 || got.ChannelNo != 6 || got.Callsign != "KEYSTONE" {
		t.Fatalf("unexpected projection: %+v", got)
	}
}

func TestBuildIdentityTable(t *testing.T) {
	cfg := config.Channels{
		Identities: []config.ChannelIdentity{
			{ChannelID: 1, BaseFrequencyHz: 851000000, ChannelSpacingHz: 12500, BandwidthHz: 12500, TxOffsetHz: -45000000},
		},
	}
	table := buildIdentityTable(cfg)
	entry, ok := table.Get(1)
	if !ok {
		t.Fatalf("expected channel ID 1 present")
	}
	if entry.BaseFrequency != 851000000 || entry.TxOffset != -45 {
		t.Fatalf("unexpected identity entry: %+v", entry)
	}
}

func TestBuildModemTransportNone(t *testing.T) {
	transport, err := buildModemTransport(config.Modem{Transport: config.ModemTransportNone})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if transport != nil {
		t.Fatalf("expected nil transport for none, got %v", transport)
	}
}

func TestBuildModemTransportSerialNotImplemented(t *testing.T) {
	_, err := buildModemTransport(config.Modem{Transport: config.ModemTransportSerial})
	if !errors.Is(err, ErrModemTransportNotImplemented) {
		t.Fatalf("expected ErrModemTransportNotImplemented, got %v", err)
	}
}

func TestBuildModemTransportUnknown(t *testing.T) {
	_, err := buildModemTransport(config.Modem{Transport: config.ModemTransport("bogus")})
	if err == nil {
		t.Fatalf("expected error for unknown transport")
	}
}
