// Package cmd implements the command-line interface of hKV. It provides a
// hierarchical command structure for running the server and interacting with
// it as a client.
//
// The package is organized into several subpackages:
//
//   - serve: Starts and configures the hKV server
//   - kv: Hash table commands (hget, hset, hmget, ...) and the perf tool
//   - util: Shared helpers for flags, configuration and transport selection (internal use)
//
// Every flag can also be set through the environment as HKV_<FLAG>, with dashes
// replaced by underscores (e.g. HKV_LOG_LEVEL=debug). Variables are also read
// from .env and .env.local in the working directory.
//
// See hkv --help for a list of all commands.
package cmd
