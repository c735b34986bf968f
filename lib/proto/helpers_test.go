package proto

import (
	"encoding/binary"
	"testing"

	"github.com/ValentinKolb/zkwire/lib/jute"
	"github.com/stretchr/testify/require"
)

// wire builds expected byte sequences piece by piece
type wire []byte

func (b wire) i32(v int32) wire {
	return binary.BigEndian.AppendUint32(b, uint32(v))
}

func (b wire) u32(v uint32) wire {
	return binary.BigEndian.AppendUint32(b, v)
}

func (b wire) i64(v int64) wire {
	return binary.BigEndian.AppendUint64(b, uint64(v))
}

func (b wire) boolean(v bool) wire {
	if v {
		return append(b, 1)
	}
	return append(b, 0)
}

func (b wire) str(s string) wire {
	return append(b.i32(int32(len(s))), s...)
}

func (b wire) raw(p []byte) wire {
	return append(b, p...)
}

// roundTrip encodes in and decodes the bytes into out
func roundTrip(t *testing.T, in jute.Encoder, out jute.Decoder) {
	t.Helper()
	require.NoError(t, jute.Unmarshal(jute.Marshal(in), out))
}
