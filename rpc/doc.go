// Package rpc connects the protocol encoding in lib/ to a server. It acts as
// the communication layer between the command-line interface (or any other
// caller) and the network.
//
// The package is organized into several subpackages:
//
//   - common: Client configuration and the logger setup shared by all packages.
//
//   - transport: The packet transport contract and its implementations (TCP,
//     Unix sockets). A transport writes requests in queue order, stops at the
//     death packet and correlates replies by xid.
//
//   - client: The request pipeline. It performs the handshake, assigns xids,
//     builds the payload of every operation and decodes the replies.
package rpc
