// Package base implements the packet transport independent of the network
// medium. Protocol specific parts (dialing and socket options) are injected
// through IClientConnector.
//
// Pipeline:
//
//   - Send registers a reply channel (by xid, or as the handshake waiter) and
//     pushes the request onto a lock-free MPSC queue (lib/queue). Producers
//     never block each other and the order of each producer is preserved.
//
//   - A single writer goroutine drains the queue. Requests are written as one
//     frame: a 4 byte length, the 8 byte request header (absent for the
//     handshake) and the payload, combined with net.Buffers to avoid copying
//     the payload. The death packet ends the loop; packets behind it are
//     failed with transport.ErrClosed and never written.
//
//   - A reader goroutine reads length prefixed frames. The first frame after
//     a handshake is the connect response. Every other frame starts with a
//     reply header whose xid selects the waiting request; frames without a
//     waiter (watch events, pings sent elsewhere) go to the unsolicited channel.
//
// Metrics:
//
//	Counters are registered with VictoriaMetrics under zkwire_transport_*
//	and labelled with the connector name.
//
// Thread Safety:
//
//	All public methods are thread-safe. Send and Close are ordered by a
//	read-write lock, so no request can be enqueued behind the death packet.
package base
