// Package jute implements the primitive encoding layer of the ZooKeeper wire
// protocol (the "jute" record format). It appends fixed-width big-endian
// integers, booleans, length-prefixed strings and byte buffers, and counted
// vectors to a growable buffer owned by the caller.
//
// The package focuses on:
//   - Bit-exact encoding of every primitive the request records are made of
//   - Keeping the null-vs-empty distinction of byte buffers explicit
//   - A mirror-image Reader so encoded records can be verified and inspected
//
// Key Components:
//
//   - Writer: Appends primitives to a buffer. Writing never fails for values in
//     range; a length that does not fit into an int32 is a programming error
//     and panics.
//
//   - OptBytes: An optional byte buffer. Absent buffers are written as the
//     length -1 with no data, present buffers (including empty ones) as their
//     length followed by the data. Required buffers use Writer.WriteBuffer and
//     can never produce the -1 sentinel.
//
//   - Encoder / Decoder: Implemented by every record type of the protocol.
//
//   - Reader: Decodes the same primitives. Truncated input is reported with
//     ErrShortBuffer, malformed lengths with ErrInvalidLength.
//
// Wire format (big-endian throughout):
//
//	int32, int64, uint32, uint8   fixed width
//	bool                          1 byte, 0 = false
//	string                        int32 length + UTF-8 bytes
//	optional buffer               int32 length (-1 = absent) + bytes
//	buffer                        int32 length + bytes
//	vector<T>                     int32 count + encoded elements
//
// Thread Safety:
//
//	A Writer or Reader must not be shared between goroutines. Records that are
//	only read during encoding may be encoded concurrently into separate writers.
package jute
