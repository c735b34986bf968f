// Package cmd implements the command-line interface of zkwire. It provides a
// hierarchical command structure for talking to a server and for working with
// request frames offline.
//
// The package is organized into several subpackages:
//
//   - zk: Live operations against a server (create, get, set, ls, watch, perf, ...)
//   - encode: Prints the frame of a request as hex without connecting
//   - decode: Parses a hex frame back into header and payload
//   - util: Shared utilities for flags, configuration and argument parsing (internal use)
//
// See zkwire -help for a list of all commands.
package cmd
