// Package config loads and validates the control station's runtime
// configuration: site identity, the channel pool, the admission/hang
// timers, the FNE peer link, the modem transport, and the ambient
// Redis/metrics/pprof servers. Grounded on the teacher's configulator
// pattern.
package config

import (
	"time"
)

// Site identifies this control station on the P25 system.
type Site struct {
	NetworkID      uint32 `yaml:"network_id" env:"SITE_NETWORK_ID"`
	SystemID       uint16 `yaml:"system_id" env:"SITE_SYSTEM_ID"`
	RFSSID         uint8  `yaml:"rfss_id" env:"SITE_RFSS_ID"`
	SiteID         uint8  `yaml:"site_id" env:"SITE_SITE_ID"`
	ChannelID      uint8  `yaml:"channel_id" env:"SITE_CHANNEL_ID"`
	ChannelNo      uint16 `yaml:"channel_no" env:"SITE_CHANNEL_NO"`
	Callsign       string `yaml:"callsign" env:"SITE_CALLSIGN"`
	ControlChannel bool   `yaml:"control_channel" env:"SITE_CONTROL_CHANNEL" default:"true"`
}

// ChannelIdentity is one row of the identity table broadcast in IDEN_UP
// TSBKs: base frequency, spacing, bandwidth, and transmit offset for a
// channel ID.
type ChannelIdentity struct {
	ChannelID        uint8  `yaml:"channel_id"`
	BaseFrequencyHz  uint64 `yaml:"base_frequency_hz"`
	ChannelSpacingHz uint32 `yaml:"channel_spacing_hz"`
	BandwidthHz      uint32 `yaml:"bandwidth_hz"`
	TxOffsetHz       int32  `yaml:"tx_offset_hz"`
}

// Channels is the identity table plus the traffic-channel pool size used
// to size internal/p25/trunk's Grants table.
type Channels struct {
	Identities []ChannelIdentity `yaml:"identities"`
	PoolSize   int               `yaml:"pool_size" env:"CHANNEL_POOL_SIZE" default:"8"`
}

// Timers holds the admission/hang/SNDCP durations spec.md §4.3/§4.5 leave
// site-configurable.
type Timers struct {
	Tick                time.Duration `yaml:"tick" env:"TIMER_TICK" default:"180ms"`
	GrantDuration       time.Duration `yaml:"grant_duration" env:"TIMER_GRANT_DURATION" default:"1s"`
	HangTime            time.Duration `yaml:"hang_time" env:"TIMER_HANG_TIME" default:"3s"`
	SNDCPReadyTimeout   time.Duration `yaml:"sndcp_ready_timeout" env:"TIMER_SNDCP_READY_TIMEOUT" default:"30s"`
	SNDCPStandbyTimeout time.Duration `yaml:"sndcp_standby_timeout" env:"TIMER_SNDCP_STANDBY_TIMEOUT" default:"5m"`
}

// Peer configures this station's FNE uplink: the master it dials, its
// credentials, and its keepalive cadence.
type Peer struct {
	Enabled      bool          `yaml:"enabled" env:"PEER_ENABLED"`
	MasterHost   string        `yaml:"master_host" env:"PEER_MASTER_HOST"`
	MasterPort   int           `yaml:"master_port" env:"PEER_MASTER_PORT" default:"62031"`
	PeerID       uint32        `yaml:"peer_id" env:"PEER_ID"`
	Password     string        `yaml:"password" env:"PEER_PASSWORD"`
	PingInterval time.Duration `yaml:"ping_interval" env:"PEER_PING_INTERVAL" default:"5s"`
}

// Modem configures the out-of-scope modem transport collaborator.
type Modem struct {
	Transport ModemTransport `yaml:"transport" env:"MODEM_TRANSPORT" default:"none"`
	Device    string         `yaml:"device" env:"MODEM_DEVICE"`
}

// Redis backs the kv/pubsub packages when running clustered. Their only
// user is internal/cmd's status publisher, which shares this site's
// periodic call-state snapshot with other processes.
type Redis struct {
	Enabled  bool   `yaml:"enabled" env:"REDIS_ENABLED"`
	Host     string `yaml:"host" env:"REDIS_HOST" default:"localhost"`
	Port     int    `yaml:"port" env:"REDIS_PORT" default:"6379"`
	Password string `yaml:"password" env:"REDIS_PASSWORD"`
}

// Metrics configures the Prometheus exposition server.
type Metrics struct {
	Enabled bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Bind    string `yaml:"bind" env:"METRICS_BIND" default:"0.0.0.0"`
	Port    int    `yaml:"port" env:"METRICS_PORT" default:"9100"`
}

// PProf holds pprof debug-server settings. internal/cmd does not start a
// pprof server.
type PProf struct {
	Enabled bool   `yaml:"enabled" env:"PPROF_ENABLED"`
	Bind    string `yaml:"bind" env:"PPROF_BIND" default:"127.0.0.1"`
	Port    int    `yaml:"port" env:"PPROF_PORT" default:"6060"`
}

// Config stores the full control-station configuration, loaded by
// configulator from flags/env/file in internal/cmd.
type Config struct {
	LogLevel LogLevel `yaml:"log_level" env:"LOG_LEVEL" default:"info"`
	Debug    bool     `yaml:"debug" env:"DEBUG"`
	Secret   string   `yaml:"secret" env:"SECRET"`

	Site     Site     `yaml:"site"`
	Channels Channels `yaml:"channels"`
	Timers   Timers   `yaml:"timers"`
	Peer     Peer     `yaml:"peer"`
	Modem    Modem    `yaml:"modem"`
	Redis    Redis    `yaml:"redis"`
	Metrics  Metrics  `yaml:"metrics"`
	PProf    PProf    `yaml:"pprof"`
}

// DefaultConfig returns a Config populated with the same defaults
// configulator would apply, for use by tests.
func DefaultConfig() Config {
	return Config{
		LogLevel: LogLevelInfo,
		Site: Site{
			ControlChannel: true,
		},
		Channels: Channels{PoolSize: 8},
		Timers: Timers{
			Tick:                180 * time.Millisecond,
			GrantDuration:       time.Second,
			HangTime:            3 * time.Second,
			SNDCPReadyTimeout:   30 * time.Second,
			SNDCPStandbyTimeout: 5 * time.Minute,
		},
		Peer: Peer{
			MasterPort:   62031,
			PingInterval: 5 * time.Second,
		},
		Modem: Modem{Transport: ModemTransportNone},
		Redis: Redis{Host: "localhost", Port: 6379},
		Metrics: Metrics{
			Bind: "0.0.0.0",
			Port: 9100,
		},
		PProf: PProf{
			Bind: "127.0.0.1",
			Port: 6060,
		},
	}
}
