package base

import (
	"encoding/binary"
	"fmt"
	"io"
	"net"

	"github.com/ValentinKolb/zkwire/lib/proto"
)

// maxFrameLen limits the length prefix accepted from the server (4 MiB)
const maxFrameLen = 4 << 20

// writeFrame writes a request as a single frame with the format:
// - 4 bytes: frame length (int32, big endian)
// - 8 bytes: request header (omitted for the handshake)
// - N bytes: payload
//
// prefix is reused as scratch space for the length and header. The grown
// slice is returned together with the number of bytes written.
func writeFrame(conn net.Conn, prefix []byte, req *proto.Request) ([]byte, int64, error) {
	prefix = req.AppendFramePrefix(prefix[:0])

	b := net.Buffers{prefix, req.Payload}
	n, err := b.WriteTo(conn)
	return prefix, n, err
}

// readFrame reads one length-prefixed reply frame. The returned slice is
// freshly allocated and owned by the caller.
func readFrame(r io.Reader, lenBuf []byte) ([]byte, error) {
	if _, err := io.ReadFull(r, lenBuf[:4]); err != nil {
		return nil, err
	}

	length := int32(binary.BigEndian.Uint32(lenBuf[:4]))
	if length < 0 || length > maxFrameLen {
		return nil, fmt.Errorf("invalid frame length %d", length)
	}

	frame := make([]byte, length)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}
	return frame, nil
}
