package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/keystone-rf/p25ctrl/internal/config"
)

func makeValidConfig() config.Config {
	c := config.DefaultConfig()
	c.Site = config.Site{NetworkID: 0xBEE00, SystemID: 0x1A2, RFSSID: 1, SiteID: 1, ControlChannel: true}
	return c
}

// --- Redis Validation ---

func TestRedisValidateDisabled(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: false}
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil error for disabled Redis, got %v", err)
	}
}

func TestRedisValidateEmptyHost(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "", Port: 6379}
	if !errors.Is(r.Validate(), config.ErrInvalidRedisHost) {
		t.Errorf("expected ErrInvalidRedisHost, got %v", r.Validate())
	}
}

func TestRedisValidateInvalidPort(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		port int
	}{
		{"zero", 0},
		{"negative", -1},
		{"too high", 70000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := config.Redis{Enabled: true, Host: "localhost", Port: tt.port}
			if !errors.Is(r.Validate(), config.ErrInvalidRedisPort) {
				t.Errorf("expected ErrInvalidRedisPort for port %d, got %v", tt.port, r.Validate())
			}
		})
	}
}

func TestRedisValidateValid(t *testing.T) {
	t.Parallel()
	r := config.Redis{Enabled: true, Host: "localhost", Port: 6379}
	if err := r.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Site validation ---

func TestSiteValidateMissingNetworkID(t *testing.T) {
	t.Parallel()
	s := config.Site{SystemID: 1}
	if !errors.Is(s.Validate(), config.ErrInvalidSiteNetworkID) {
		t.Errorf("expected ErrInvalidSiteNetworkID, got %v", s.Validate())
	}
}

func TestSiteValidateMissingSystemID(t *testing.T) {
	t.Parallel()
	s := config.Site{NetworkID: 1}
	if !errors.Is(s.Validate(), config.ErrInvalidSiteSystemID) {
		t.Errorf("expected ErrInvalidSiteSystemID, got %v", s.Validate())
	}
}

func TestSiteValidateValid(t *testing.T) {
	t.Parallel()
	s := config.Site{NetworkID: 1, SystemID: 1}
	if err := s.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Channels validation ---

func TestChannelsValidateNonPositivePool(t *testing.T) {
	t.Parallel()
	c := config.Channels{PoolSize: 0}
	if !errors.Is(c.Validate(), config.ErrInvalidChannelPoolSize) {
		t.Errorf("expected ErrInvalidChannelPoolSize, got %v", c.Validate())
	}
}

func TestChannelsValidateDuplicateIdentity(t *testing.T) {
	t.Parallel()
	c := config.Channels{
		PoolSize: 2,
		Identities: []config.ChannelIdentity{
			{ChannelID: 1, BaseFrequencyHz: 851000000},
			{ChannelID: 1, BaseFrequencyHz: 852000000},
		},
	}
	if !errors.Is(c.Validate(), config.ErrDuplicateChannelIdentity) {
		t.Errorf("expected ErrDuplicateChannelIdentity, got %v", c.Validate())
	}
}

func TestChannelsValidateValid(t *testing.T) {
	t.Parallel()
	c := config.Channels{
		PoolSize: 2,
		Identities: []config.ChannelIdentity{
			{ChannelID: 1, BaseFrequencyHz: 851000000},
			{ChannelID: 2, BaseFrequencyHz: 852000000},
		},
	}
	if err := c.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Timers validation ---

func TestTimersValidateNonPositiveTick(t *testing.T) {
	t.Parallel()
	tm := config.Timers{Tick: 0, GrantDuration: time.Second}
	if !errors.Is(tm.Validate(), config.ErrInvalidTickInterval) {
		t.Errorf("expected ErrInvalidTickInterval, got %v", tm.Validate())
	}
}

func TestTimersValidateNonPositiveGrantDuration(t *testing.T) {
	t.Parallel()
	tm := config.Timers{Tick: time.Second, GrantDuration: 0}
	if !errors.Is(tm.Validate(), config.ErrInvalidGrantDuration) {
		t.Errorf("expected ErrInvalidGrantDuration, got %v", tm.Validate())
	}
}

func TestTimersValidateNegativeHangTime(t *testing.T) {
	t.Parallel()
	tm := config.Timers{Tick: time.Second, GrantDuration: time.Second, HangTime: -1}
	if !errors.Is(tm.Validate(), config.ErrInvalidHangTime) {
		t.Errorf("expected ErrInvalidHangTime, got %v", tm.Validate())
	}
}

// --- Peer validation ---

func TestPeerValidateDisabled(t *testing.T) {
	t.Parallel()
	p := config.Peer{Enabled: false}
	if err := p.Validate(); err != nil {
		t.Errorf("expected nil error for disabled peer, got %v", err)
	}
}

func TestPeerValidateMissingFields(t *testing.T) {
	t.Parallel()
	p := config.Peer{Enabled: true}
	if !errors.Is(p.Validate(), config.ErrInvalidPeerMasterHost) {
		t.Errorf("expected ErrInvalidPeerMasterHost, got %v", p.Validate())
	}
}

func TestPeerValidateValid(t *testing.T) {
	t.Parallel()
	p := config.Peer{Enabled: true, MasterHost: "fne.example.com", MasterPort: 62031, PeerID: 9001, Password: "secret"}
	if err := p.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Modem validation ---

func TestModemValidateNone(t *testing.T) {
	t.Parallel()
	m := config.Modem{Transport: config.ModemTransportNone}
	if err := m.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestModemValidateSerialMissingDevice(t *testing.T) {
	t.Parallel()
	m := config.Modem{Transport: config.ModemTransportSerial}
	if !errors.Is(m.Validate(), config.ErrInvalidModemDevice) {
		t.Errorf("expected ErrInvalidModemDevice, got %v", m.Validate())
	}
}

func TestModemValidateUnknownTransport(t *testing.T) {
	t.Parallel()
	m := config.Modem{Transport: "bogus"}
	if !errors.Is(m.Validate(), config.ErrInvalidModemTransport) {
		t.Errorf("expected ErrInvalidModemTransport, got %v", m.Validate())
	}
}

// --- Metrics / PProf validation ---

func TestMetricsValidateDisabled(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: false}
	if err := m.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestMetricsValidateValid(t *testing.T) {
	t.Parallel()
	m := config.Metrics{Enabled: true, Bind: "0.0.0.0", Port: 9100}
	if err := m.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestPProfValidateDisabled(t *testing.T) {
	t.Parallel()
	p := config.PProf{Enabled: false}
	if err := p.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestPProfValidateValid(t *testing.T) {
	t.Parallel()
	p := config.PProf{Enabled: true, Bind: "127.0.0.1", Port: 6060}
	if err := p.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

// --- Full Config validation ---

func TestConfigValidateInvalidLogLevel(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.LogLevel = "invalid"
	if !errors.Is(c.Validate(), config.ErrInvalidLogLevel) {
		t.Errorf("expected ErrInvalidLogLevel, got %v", c.Validate())
	}
}

func TestConfigValidateValid(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	if err := c.Validate(); err != nil {
		t.Errorf("expected nil error, got %v", err)
	}
}

func TestConfigValidateAllLogLevels(t *testing.T) {
	t.Parallel()
	levels := []config.LogLevel{config.LogLevelDebug, config.LogLevelInfo, config.LogLevelWarn, config.LogLevelError}
	for _, level := range levels {
		t.Run(string(level), func(t *testing.T) {
			t.Parallel()
			c := makeValidConfig()
			c.LogLevel = level
			if err := c.Validate(); err != nil {
				t.Errorf("expected nil error for log level %s, got %v", level, err)
			}
		})
	}
}

func TestConfigValidatePropagatesSiteError(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.Site.NetworkID = 0
	if !errors.Is(c.Validate(), config.ErrInvalidSiteNetworkID) {
		t.Errorf("expected ErrInvalidSiteNetworkID, got %v", c.Validate())
	}
}

func TestConfigValidatePropagatesPeerError(t *testing.T) {
	t.Parallel()
	c := makeValidConfig()
	c.Peer.Enabled = true
	if !errors.Is(c.Validate(), config.ErrInvalidPeerMasterHost) {
		t.Errorf("expected ErrInvalidPeerMasterHost, got %v", c.Validate())
	}
}

func TestDefaultConfigIsValidOnceSited(t *testing.T) {
	t.Parallel()
	c := config.DefaultConfig()
	c.Site = config.Site{NetworkID: 1, SystemID: 1}
	if err := c.Validate(); err != nil {
		t.Errorf("expected default config plus a site to validate cleanly, got %v", err)
	}
}
