// Package transport defines the contract between the request pipeline and
// the network. A transport owns one connection, a queue of outgoing packets
// and the goroutines that write requests and read replies.
//
// Key Components:
//
//   - IPacketTransport: Connect, Send, Unsolicited and Close. Send enqueues an
//     encoded proto.Request and returns a channel for its reply. Close enqueues
//     the death packet instead of interrupting the writer, so every request
//     sent before Close is still written and nothing sent after it is.
//
//   - Reply: A frame read from the server, split into the reply header and
//     the remaining body.
//
//   - ErrClosed: Returned for requests that were rejected or abandoned
//     because the transport shut down.
//
// The implementations live in the sub packages: base contains the medium
// independent logic, tcp and unix provide the connectors.
package transport
