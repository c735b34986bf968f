package common

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// --------------------------------------------------------------------------
// Defaults
// --------------------------------------------------------------------------

const (
	// DefaultSessionTimeoutMs is the session timeout requested in the handshake
	DefaultSessionTimeoutMs uint32 = 10000
	// DefaultTimeoutSecond bounds connecting and waiting for a single reply
	DefaultTimeoutSecond = 10
)

// --------------------------------------------------------------------------
// Client configuration structs
// --------------------------------------------------------------------------

// SocketConf holds socket buffer sizes in bytes, 0 keeps the OS default
type SocketConf struct {
	WriteBufferSize int
	ReadBufferSize  int
}

// TCPConf holds TCP specific socket options
type TCPConf struct {
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
}

// ClientTransportConfig configures how the transport reaches the servers
type ClientTransportConfig struct {
	// Endpoints are tried in order until one accepts the connection
	Endpoints []string
	// RetryCount is the number of passes over all endpoints
	RetryCount int
	SocketConf SocketConf
	TCPConf    TCPConf
}

// ClientConfig holds all configuration parameters of the client
type ClientConfig struct {
	// TimeoutSecond bounds dialing, writing and waiting for a reply
	TimeoutSecond int
	// SessionTimeoutMs is the session timeout sent in the connect request
	SessionTimeoutMs uint32
	// ReadOnly allows the session to be served by a read-only server
	ReadOnly bool
	// LogLevel is one of debug, info, warn, error
	LogLevel string

	Transport ClientTransportConfig
}

// Timeout returns TimeoutSecond as a duration, 0 means no timeout
func (c *ClientConfig) Timeout() time.Duration {
	if c.TimeoutSecond <= 0 {
		return 0
	}
	return time.Duration(c.TimeoutSecond) * time.Second
}

// Validate checks the configuration for values the client cannot work with
func (c *ClientConfig) Validate() error {
	if len(c.Transport.Endpoints) == 0 {
		return fmt.Errorf("no endpoints provided")
	}
	for i, endpoint := range c.Transport.Endpoints {
		if strings.TrimSpace(endpoint) == "" {
			return fmt.Errorf("endpoint %d is empty", i)
		}
	}
	if c.SessionTimeoutMs == 0 {
		return fmt.Errorf("session timeout must be greater than 0")
	}
	if c.SessionTimeoutMs > math.MaxInt32 {
		return fmt.Errorf("session timeout %d ms exceeds the protocol limit", c.SessionTimeoutMs)
	}
	return nil
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	var sb strings.Builder

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Session Timeout", fmt.Sprintf("%d ms", c.SessionTimeoutMs))
	addField("Read Only", strconv.FormatBool(c.ReadOnly))
	addField("Log Level", c.LogLevel)

	addSection("Transport")
	addField("Retry Count", strconv.Itoa(int(math.Max(1, float64(c.Transport.RetryCount)))))
	addField("Write Buffer", fmt.Sprintf("%d bytes", c.Transport.SocketConf.WriteBufferSize))
	addField("Read Buffer", fmt.Sprintf("%d bytes", c.Transport.SocketConf.ReadBufferSize))
	addField("TCP NoDelay", strconv.FormatBool(c.Transport.TCPConf.TCPNoDelay))
	addField("TCP KeepAlive", fmt.Sprintf("%d sec", c.Transport.TCPConf.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPConf.TCPLingerSec))

	addSection("Endpoints")
	for i, endpoint := range c.Transport.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}
