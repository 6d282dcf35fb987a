// Package common provides the configuration structures and the logging setup
// shared by the hKV server, client and command line interface.
//
// Key Components:
//
//   - ServerConfig: Configuration of the RPC server, including the endpoint,
//     timeouts, memtable sharding and the socket options of the transports.
//
//   - ClientConfig: Configuration for client components, controlling endpoints,
//     connection parameters, timeouts, and retry behavior.
//
//   - Logger: Custom logging implementation that plugs into Dragonboat's
//     logger package, so every package can obtain a named logger with
//     logger.GetLogger(name) while sharing one consistent output format.
package common
