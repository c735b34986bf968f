package proto

import "github.com/ValentinKolb/zkwire/lib/jute"

// RequestForOp returns an empty payload record for the given op code, used to
// decode captured request frames. Header-only requests (ping, close) and op
// codes without a known payload return false.
func RequestForOp(op OpCode) (jute.Decoder, bool) {
	switch op {
	case OpCreate, OpCreate2, OpCreateContainer:
		return &CreateRequest{}, true
	case OpDelete:
		return &DeleteRequest{}, true
	case OpExists, OpGetData, OpGetChildren, OpGetChildren2:
		return &PathAndWatchRequest{}, true
	case OpSetData:
		return &SetDataRequest{}, true
	case OpGetACL, OpSync, OpDeleteContainer:
		return &PathRequest{}, true
	case OpSetACL:
		return &SetACLRequest{}, true
	case OpCheck:
		return &CheckVersionRequest{}, true
	case OpSetWatches:
		return &SetWatchesRequest{}, true
	case OpSetAuth:
		return &AuthRequest{}, true
	}
	return nil, false
}

// DecodeFrame splits a captured request frame (without the outer length
// prefix) into header and payload. Set handshake for the first frame of a
// connection, which has no header.
func DecodeFrame(frame []byte, handshake bool) (*RequestHeader, jute.Decoder, error) {
	if handshake {
		req := &ConnectRequest{}
		if err := jute.Unmarshal(frame, req); err != nil {
			return nil, nil, err
		}
		return nil, req, nil
	}

	r := jute.NewReader(frame)
	header := &RequestHeader{}
	if err := header.Decode(r); err != nil {
		return nil, nil, err
	}

	body, ok := RequestForOp(header.OpCode)
	if !ok {
		return header, nil, nil
	}
	if err := jute.Unmarshal(frame[r.Offset():], body); err != nil {
		return header, nil, err
	}
	return header, body, nil
}
