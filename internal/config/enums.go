package config

// LogLevel represents the logging level for the application.
type LogLevel string

const (
	// LogLevelDebug is the debug logging level, providing detailed information.
	LogLevelDebug LogLevel = "debug"
	// LogLevelInfo is the informational logging level, providing general information.
	LogLevelInfo LogLevel = "info"
	// LogLevelWarn is the warning logging level, indicating potential issues.
	LogLevelWarn LogLevel = "warn"
	// LogLevelError is the error logging level, indicating serious issues.
	LogLevelError LogLevel = "error"
)

// ModemTransport names the wire-level carrier used for internal/modem's
// Transport collaborator.
type ModemTransport string

const (
	// ModemTransportSerial talks to the DSP over a local serial/PTY device.
	ModemTransportSerial ModemTransport = "serial"
	// ModemTransportUDP talks to the DSP over a UDP socket.
	ModemTransportUDP ModemTransport = "udp"
	// ModemTransportNone disables the modem leaf entirely (network-linking-only).
	ModemTransportNone ModemTransport = "none"
)
