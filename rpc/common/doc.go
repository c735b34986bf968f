// Package common provides the configuration and logging shared by the
// transport, the client and the command-line interface.
//
// Key Components:
//
//   - ClientConfig: Endpoints, timeouts, the session timeout requested in the
//     handshake and the socket options of the transport. String() renders a
//     report for the CLI.
//
//   - Logger: Custom formatting for dragonboat's logger facade, which all
//     packages outside lib/ use through logger.GetLogger(name).
package common
