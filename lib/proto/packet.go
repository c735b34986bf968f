package proto

import (
	"encoding/binary"
	"fmt"

	"github.com/ValentinKolb/zkwire/lib/jute"
)

// Packet types as seen by the component draining the outgoing queue
const (
	RequestPacketType int8 = 0
	// DeathPacketType marks the shutdown signal, it is never written to the network
	DeathPacketType int8 = -1
)

// Packet is an element of the outgoing request queue. It is either a
// *Request that has to be written or the Shutdown signal that terminates the
// writer. There is no packet that is partially valid.
type Packet interface {
	// Type returns RequestPacketType or DeathPacketType
	Type() int8

	isPacket()
}

// --------------------------------------------------------------------------
// Request
// --------------------------------------------------------------------------

// Request is an encoded request ready to be written as one frame. Header is
// nil only for the connect handshake. Payload is empty for requests that
// consist of the header only (ping, close).
type Request struct {
	Header  *RequestHeader
	Payload []byte
}

func (*Request) Type() int8 { return RequestPacketType }
func (*Request) isPacket()  {}

// NewHandshake wraps the connect request, which is sent without a header
func NewHandshake(req *ConnectRequest) *Request {
	return &Request{Payload: jute.Marshal(req)}
}

// NewRequest encodes body and prepends a header with the given xid and op code
func NewRequest(xid int32, op OpCode, body jute.Encoder) *Request {
	return &Request{
		Header:  &RequestHeader{Xid: xid, OpCode: op},
		Payload: jute.Marshal(body),
	}
}

// NewHeaderOnlyRequest creates a request without payload
func NewHeaderOnlyRequest(xid int32, op OpCode) *Request {
	return &Request{Header: &RequestHeader{Xid: xid, OpCode: op}}
}

// IsHandshake reports whether the request is the header-less connect handshake
func (r *Request) IsHandshake() bool {
	return r.Header == nil
}

// FrameLen returns the value of the outer length prefix
func (r *Request) FrameLen() int {
	n := len(r.Payload)
	if r.Header != nil {
		n += requestHeaderLen
	}
	return n
}

// AppendFramePrefix appends the outer 4-byte length and the header (if any)
func (r *Request) AppendFramePrefix(dst []byte) []byte {
	dst = binary.BigEndian.AppendUint32(dst, uint32(r.FrameLen()))
	if r.Header != nil {
		w := jute.NewWriterFrom(dst)
		r.Header.Encode(w)
		dst = w.Bytes()
	}
	return dst
}

// AppendFrame appends the complete frame: length, header and payload
func (r *Request) AppendFrame(dst []byte) []byte {
	return append(r.AppendFramePrefix(dst), r.Payload...)
}

// String implements fmt.Stringer
func (r *Request) String() string {
	if r.Header == nil {
		return fmt.Sprintf("handshake(%d bytes)", len(r.Payload))
	}
	return fmt.Sprintf("%s(xid=%d, %d bytes)", r.Header.OpCode, r.Header.Xid, len(r.Payload))
}

// --------------------------------------------------------------------------
// Shutdown
// --------------------------------------------------------------------------

// Shutdown tells the queue consumer to stop. It travels through the same
// queue as the requests, so every request enqueued before it is still written.
type Shutdown struct{}

func (Shutdown) Type() int8 { return DeathPacketType }
func (Shutdown) isPacket()  {}

// DeathPacket returns the shutdown signal
func DeathPacket() Packet {
	return Shutdown{}
}

// IsDeathPacket reports whether p is the shutdown signal
func IsDeathPacket(p Packet) bool {
	return p != nil && p.Type() == DeathPacketType
}
