package transport

import (
	"errors"

	"github.com/ValentinKolb/zkwire/lib/proto"
	"github.com/ValentinKolb/zkwire/rpc/common"
)

// ErrClosed is returned for requests that cannot be written or answered
// because the transport was shut down or lost its connection
var ErrClosed = errors.New("transport closed")

// --------------------------------------------------------------------------
// Reply
// --------------------------------------------------------------------------

// Reply is a frame read from the server. For the handshake Header is nil and
// Body holds the complete connect response. For all other frames Header is
// the decoded reply header and Body the bytes following it. Err is set if the
// request failed before a reply arrived.
type Reply struct {
	Header *proto.ReplyHeader
	Body   []byte
	Err    error
}

// --------------------------------------------------------------------------
// Client Transport
// --------------------------------------------------------------------------

// IPacketTransport is the interface for the packet transport of the client
type IPacketTransport interface {
	// Connect dials the first reachable endpoint and starts the writer and
	// reader goroutines
	Connect(config common.ClientConfig) error
	// Send enqueues the request. The returned channel receives exactly one
	// reply, matched by xid (or the next frame for a handshake).
	Send(req *proto.Request) (<-chan Reply, error)
	// Cancel stops waiting for the reply to xid, e.g. after a timeout. A reply
	// arriving later is treated as unsolicited.
	Cancel(xid int32)
	// Unsolicited returns replies that match no pending request, such as watch
	// events. The channel is closed after Close.
	Unsolicited() <-chan Reply
	// Close enqueues the death packet, waits until every request enqueued
	// before it is written and closes the connection
	Close() error
}
