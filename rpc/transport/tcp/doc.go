// Package tcp implements the TCP socket transport of hKV. It provides the
// TCP specific connectors for the base package and applies socket options
// (no delay, keep alive, linger, socket buffer sizes) from the configuration.
//
// See the base package documentation for the frame format, connection pooling
// and worker model shared by all stream transports.
package tcp
