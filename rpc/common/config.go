package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// RPC server configuration struct
// --------------------------------------------------------------------------

// ServerTransportConfig holds the socket and worker settings of the
// tcp and unix transports
type ServerTransportConfig struct {
	// maximum number of requests processed concurrently per connection
	WorkersPerConn int
	// size of the pooled read buffers in bytes
	BufferSize int

	// TCP only
	TCPNoDelay      bool
	TCPKeepAliveSec int
	TCPLingerSec    int
	WriteBufferSize int
	ReadBufferSize  int
}

// ServerConfig holds all configuration parameters of the RPC server
type ServerConfig struct {
	// address (tcp, http) or socket path (unix) to listen on
	Endpoint string

	// read and write deadline of a connection, 0 disables deadlines
	TimeoutSecond int64

	// Logging configuration
	LogLevel string

	// number of shards of the memtable, 0 selects the default
	MemtableShards int

	Transport ServerTransportConfig
}

// DefaultServerConfig returns the configuration used when no flags are given
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Endpoint:      ":8080",
		TimeoutSecond: 5,
		LogLevel:      "info",
		Transport: ServerTransportConfig{
			WorkersPerConn:  100,
			BufferSize:      512 * 1024,
			TCPNoDelay:      true,
			TCPKeepAliveSec: 30,
			TCPLingerSec:    0,
		},
	}
}

// String returns a formatted string representation of the configuration
func (c *ServerConfig) String() string {
	sb, addSection, addField := newConfigWriter()

	// RPC settings
	addSection("RPC Server")
	addField("Endpoint", c.Endpoint)
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))

	// Storage
	addSection("Storage")
	shards := "default"
	if c.MemtableShards > 0 {
		shards = strconv.Itoa(c.MemtableShards)
	}
	addField("Memtable Shards", shards)

	// Transport
	addSection("Transport")
	addField("Workers Per Conn", strconv.Itoa(c.Transport.WorkersPerConn))
	addField("Buffer Size", fmt.Sprintf("%d KB", c.Transport.BufferSize/1024))
	addField("TCP No Delay", strconv.FormatBool(c.Transport.TCPNoDelay))
	addField("TCP Keep Alive", fmt.Sprintf("%d sec", c.Transport.TCPKeepAliveSec))
	addField("TCP Linger", fmt.Sprintf("%d sec", c.Transport.TCPLingerSec))

	// Logging configuration
	addSection("Logging")
	addField("Log Level", c.LogLevel)

	return sb.String()
}

// --------------------------------------------------------------------------
// RPC client configuration struct
// --------------------------------------------------------------------------

type ClientConfig struct {
	Endpoints              []string
	TimeoutSecond          int
	RetryCount             int
	ConnectionsPerEndpoint int

	// TCP only
	TCPNoDelay      bool
	TCPKeepAliveSec int
}

// String returns a formatted string representation of the client configuration
func (c *ClientConfig) String() string {
	sb, addSection, addField := newConfigWriter()

	// General Client Settings
	addSection("Client Configuration")
	addField("Timeout", fmt.Sprintf("%d sec", c.TimeoutSecond))
	addField("Retry Count", strconv.Itoa(c.RetryCount))
	addField("Connections Per Endpoint", strconv.Itoa(max(1, c.ConnectionsPerEndpoint)))
	addField("TCP No Delay", strconv.FormatBool(c.TCPNoDelay))

	// Endpoints
	addSection("Endpoints")
	for i, endpoint := range c.Endpoints {
		addField(strconv.Itoa(i), endpoint)
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// newConfigWriter returns a builder plus helper functions for consistent formatting
func newConfigWriter() (*strings.Builder, func(title string), func(name, value string)) {
	sb := &strings.Builder{}

	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-24s: %s\n", name, value))
	}

	return sb, addSection, addField
}
