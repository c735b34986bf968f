package proto

import "github.com/ValentinKolb/zkwire/lib/jute"

// requestHeaderLen is the encoded size of a RequestHeader
const requestHeaderLen = 8

// RequestHeader precedes the payload of every request except the connect
// handshake. The session layer owns the xid and the op code.
type RequestHeader struct {
	Xid    int32
	OpCode OpCode
}

func (h RequestHeader) Encode(w *jute.Writer) {
	w.WriteInt32(h.Xid)
	w.WriteInt32(int32(h.OpCode))
}

func (h *RequestHeader) Decode(r *jute.Reader) error {
	xid, err := r.ReadInt32()
	if err != nil {
		return err
	}
	op, err := r.ReadInt32()
	if err != nil {
		return err
	}
	h.Xid, h.OpCode = xid, OpCode(op)
	return nil
}

// ReplyHeader precedes every reply except the connect response
type ReplyHeader struct {
	Xid  int32
	Zxid int64
	Err  ErrCode
}

func (h ReplyHeader) Encode(w *jute.Writer) {
	w.WriteInt32(h.Xid)
	w.WriteInt64(h.Zxid)
	w.WriteInt32(int32(h.Err))
}

func (h *ReplyHeader) Decode(r *jute.Reader) (err error) {
	if h.Xid, err = r.ReadInt32(); err != nil {
		return err
	}
	if h.Zxid, err = r.ReadInt64(); err != nil {
		return err
	}
	code, err := r.ReadInt32()
	h.Err = ErrCode(code)
	return err
}
