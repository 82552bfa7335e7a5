package config

import "errors"

var (
	// ErrInvalidLogLevel indicates that the provided log level is not valid.
	ErrInvalidLogLevel = errors.New("invalid log level provided")
	// ErrInvalidSiteNetworkID indicates the site's WACN/network ID is unset.
	ErrInvalidSiteNetworkID = errors.New("site network ID is required")
	// ErrInvalidSiteSystemID indicates the site's system ID is unset.
	ErrInvalidSiteSystemID = errors.New("site system ID is required")
	// ErrInvalidChannelPoolSize indicates the traffic-channel pool size is non-positive.
	ErrInvalidChannelPoolSize = errors.New("channel pool size must be positive")
	// ErrDuplicateChannelIdentity indicates two identity-table rows share a channel ID.
	ErrDuplicateChannelIdentity = errors.New("duplicate channel identity ID")
	// ErrInvalidTickInterval indicates the tick interval is non-positive.
	ErrInvalidTickInterval = errors.New("tick interval must be positive")
	// ErrInvalidGrantDuration indicates the grant duration is non-positive.
	ErrInvalidGrantDuration = errors.New("grant duration must be positive")
	// ErrInvalidHangTime indicates the hang time is negative.
	ErrInvalidHangTime = errors.New("hang time must not be negative")
	// ErrInvalidPeerMasterHost indicates the peer is enabled with no master host.
	ErrInvalidPeerMasterHost = errors.New("peer master host is required when the peer link is enabled")
	// ErrInvalidPeerMasterPort indicates the peer's master port is out of range.
	ErrInvalidPeerMasterPort = errors.New("invalid peer master port provided")
	// ErrInvalidPeerID indicates the peer ID is unset while the peer link is enabled.
	ErrInvalidPeerID = errors.New("peer ID is required when the peer link is enabled")
	// ErrInvalidPeerPassword indicates the peer link is enabled with no password.
	ErrInvalidPeerPassword = errors.New("peer password is required when the peer link is enabled")
	// ErrInvalidModemDevice indicates a modem transport is selected with no device.
	ErrInvalidModemDevice = errors.New("modem device is required unless modem transport is \"none\"")
	// ErrInvalidModemTransport indicates the modem transport is not one of the known kinds.
	ErrInvalidModemTransport = errors.New("invalid modem transport provided")
	// ErrInvalidRedisHost indicates that the provided Redis host is not valid.
	ErrInvalidRedisHost = errors.New("invalid Redis host provided")
	// ErrInvalidRedisPort indicates that the provided Redis port is not valid.
	ErrInvalidRedisPort = errors.New("invalid Redis port provided")
	// ErrInvalidMetricsBindAddress indicates that the provided metrics server bind address is not valid.
	ErrInvalidMetricsBindAddress = errors.New("invalid metrics server bind address provided")
	// ErrInvalidMetricsPort indicates that the provided metrics server port is not valid.
	ErrInvalidMetricsPort = errors.New("invalid metrics server port provided")
	// ErrInvalidPProfBindAddress indicates that the provided PProf server bind address is not valid.
	ErrInvalidPProfBindAddress = errors.New("invalid PProf server bind address provided")
	// ErrInvalidPProfPort indicates that the provided PProf server port is not valid.
	ErrInvalidPProfPort = errors.New("invalid PProf server port provided")
)

// Validate validates the Redis configuration.
func (r Redis) Validate() error {
	if !r.Enabled {
		return nil
	}
	if r.Host == "" {
		return ErrInvalidRedisHost
	}
	if r.Port <= 0 || r.Port > 65535 {
		return ErrInvalidRedisPort
	}
	return nil
}

// Validate validates the site identity.
func (s Site) Validate() error {
	if s.NetworkID == 0 {
		return ErrInvalidSiteNetworkID
	}
	if s.SystemID == 0 {
		return ErrInvalidSiteSystemID
	}
	return nil
}

// Validate validates the channel pool and identity table.
func (c Channels) Validate() error {
	if c.PoolSize <= 0 {
		return ErrInvalidChannelPoolSize
	}
	seen := make(map[uint8]struct{}, len(c.Identities))
	for _, id := range c.Identities {
		if _, dup := seen[id.ChannelID]; dup {
			return ErrDuplicateChannelIdentity
		}
		seen[id.ChannelID] = struct{}{}
	}
	return nil
}

// Validate validates the admission/hang/SNDCP timers.
func (t Timers) Validate() error {
	if t.Tick <= 0 {
		return ErrInvalidTickInterval
	}
	if t.GrantDuration <= 0 {
		return ErrInvalidGrantDuration
	}
	if t.HangTime < 0 {
		return ErrInvalidHangTime
	}
	return nil
}

// Validate validates the FNE peer link configuration.
func (p Peer) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.MasterHost == "" {
		return ErrInvalidPeerMasterHost
	}
	if p.MasterPort <= 0 || p.MasterPort > 65535 {
		return ErrInvalidPeerMasterPort
	}
	if p.PeerID == 0 {
		return ErrInvalidPeerID
	}
	if p.Password == "" {
		return ErrInvalidPeerPassword
	}
	return nil
}

// Validate validates the modem transport configuration.
func (m Modem) Validate() error {
	switch m.Transport {
	case ModemTransportNone:
		return nil
	case ModemTransportSerial, ModemTransportUDP:
		if m.Device == "" {
			return ErrInvalidModemDevice
		}
		return nil
	default:
		return ErrInvalidModemTransport
	}
}

// Validate validates the Metrics configuration.
func (m Metrics) Validate() error {
	if !m.Enabled {
		return nil
	}
	if m.Bind == "" {
		return ErrInvalidMetricsBindAddress
	}
	if m.Port <= 0 || m.Port > 65535 {
		return ErrInvalidMetricsPort
	}
	return nil
}

// Validate validates the PProf configuration.
func (p PProf) Validate() error {
	if !p.Enabled {
		return nil
	}
	if p.Bind == "" {
		return ErrInvalidPProfBindAddress
	}
	if p.Port <= 0 || p.Port > 65535 {
		return ErrInvalidPProfPort
	}
	return nil
}

// Validate validates the full Config, returning the first error found.
func (c Config) Validate() error {
	if c.LogLevel != LogLevelDebug &&
		c.LogLevel != LogLevelInfo &&
		c.LogLevel != LogLevelWarn &&
		c.LogLevel != LogLevelError {
		return ErrInvalidLogLevel
	}
	if err := c.Site.Validate(); err != nil {
		return err
	}
	if err := c.Channels.Validate(); err != nil {
		return err
	}
	if err := c.Timers.Validate(); err != nil {
		return err
	}
	if err := c.Peer.Validate(); err != nil {
		return err
	}
	if err := c.Modem.Validate(); err != nil {
		return err
	}
	if err := c.Redis.Validate(); err != nil {
		return err
	}
	if err := c.Metrics.Validate(); err != nil {
		return err
	}
	if err := c.PProf.Validate(); err != nil {
		return err
	}
	return nil
}
