package jute

import (
	"encoding/binary"
	"fmt"
	"math"
)

// nullLength is the length written for an absent optional buffer
const nullLength int32 = -1

// Encoder is implemented by every record that can be written to the wire
type Encoder interface {
	// Encode appends the record to the writer. Encoding never fails.
	Encode(w *Writer)
}

// --------------------------------------------------------------------------
// Optional Buffers
// --------------------------------------------------------------------------

// OptBytes is a byte buffer that may be absent. The zero value is absent.
type OptBytes struct {
	Data  []byte
	Valid bool
}

// SomeBytes returns a present buffer. An empty or nil slice is still present
// and is encoded with length 0.
func SomeBytes(b []byte) OptBytes {
	return OptBytes{Data: b, Valid: true}
}

// NoBytes returns an absent buffer, encoded as the null sentinel
func NoBytes() OptBytes {
	return OptBytes{}
}

// String implements fmt.Stringer
func (o OptBytes) String() string {
	if !o.Valid {
		return "<null>"
	}
	return fmt.Sprintf("%q", o.Data)
}

// --------------------------------------------------------------------------
// Writer
// --------------------------------------------------------------------------

// Writer appends jute primitives to a growable buffer
type Writer struct {
	buf []byte
}

// NewWriter creates a writer with the given initial capacity
func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

// NewWriterFrom creates a writer that appends to dst
func NewWriterFrom(dst []byte) *Writer {
	return &Writer{buf: dst}
}

// Bytes returns the encoded bytes. The slice aliases the writer's buffer.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of encoded bytes
func (w *Writer) Len() int {
	return len(w.buf)
}

// Reset discards all encoded bytes but keeps the allocated capacity
func (w *Writer) Reset() {
	w.buf = w.buf[:0]
}

func (w *Writer) WriteInt32(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

func (w *Writer) WriteInt64(v int64) {
	w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(v))
}

func (w *Writer) WriteUint32(v uint32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, v)
}

func (w *Writer) WriteUint8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteBool writes a single byte, 1 for true and 0 for false
func (w *Writer) WriteBool(v bool) {
	if v {
		w.buf = append(w.buf, 1)
	} else {
		w.buf = append(w.buf, 0)
	}
}

// WriteString writes the byte length of s followed by its UTF-8 bytes
func (w *Writer) WriteString(s string) {
	w.WriteInt32(checkedLen(len(s)))
	w.buf = append(w.buf, s...)
}

// WriteBuffer writes a required buffer. The length is never -1, a nil slice
// is written as an empty buffer.
func (w *Writer) WriteBuffer(b []byte) {
	w.WriteInt32(checkedLen(len(b)))
	w.buf = append(w.buf, b...)
}

// WriteOptBuffer writes an optional buffer. Absent buffers are written as
// the length -1 without data.
func (w *Writer) WriteOptBuffer(b OptBytes) {
	if !b.Valid {
		w.WriteInt32(nullLength)
		return
	}
	w.WriteBuffer(b.Data)
}

// WriteRaw appends already encoded bytes without a length prefix
func (w *Writer) WriteRaw(b []byte) {
	w.buf = append(w.buf, b...)
}

// WriteStrings writes a vector of strings
func (w *Writer) WriteStrings(items []string) {
	w.WriteInt32(checkedLen(len(items)))
	for _, s := range items {
		w.WriteString(s)
	}
}

// WriteVector writes the element count followed by each element in order
func WriteVector[T Encoder](w *Writer, items []T) {
	w.WriteInt32(checkedLen(len(items)))
	for _, item := range items {
		item.Encode(w)
	}
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// Marshal encodes a single record into a new buffer
func Marshal(e Encoder) []byte {
	w := NewWriter(64)
	e.Encode(w)
	return w.Bytes()
}

// checkedLen converts a length to its wire representation. Lengths that
// exceed the int32 range cannot be represented and must be rejected by the
// caller before a record is built.
func checkedLen(n int) int32 {
	if n > math.MaxInt32 {
		panic(fmt.Sprintf("jute: length %d exceeds the int32 range", n))
	}
	return int32(n)
}
