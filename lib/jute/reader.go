package jute

import (
	"encoding/binary"
	"errors"
	"fmt"
)

var (
	// ErrShortBuffer is returned when the input ends before a value is complete
	ErrShortBuffer = errors.New("jute: short buffer")
	// ErrInvalidLength is returned for negative lengths where none are allowed
	ErrInvalidLength = errors.New("jute: invalid length")
)

// Decoder is implemented by every record that can be read from the wire
type Decoder interface {
	Decode(r *Reader) error
}

// Reader decodes jute primitives from a byte slice
type Reader struct {
	buf []byte
	pos int
}

// NewReader creates a reader over b. The reader does not copy b.
func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

// Offset returns the number of bytes consumed so far
func (r *Reader) Offset() int {
	return r.pos
}

// Remaining returns the number of unread bytes
func (r *Reader) Remaining() int {
	return len(r.buf) - r.pos
}

// next consumes n bytes
func (r *Reader) next(n int, what string) ([]byte, error) {
	if r.Remaining() < n {
		return nil, fmt.Errorf("reading %s at offset %d: %w", what, r.pos, ErrShortBuffer)
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

func (r *Reader) ReadInt32() (int32, error) {
	b, err := r.next(4, "int32")
	if err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(b)), nil
}

func (r *Reader) ReadInt64() (int64, error) {
	b, err := r.next(8, "int64")
	if err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(b)), nil
}

func (r *Reader) ReadUint32() (uint32, error) {
	b, err := r.next(4, "uint32")
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *Reader) ReadUint8() (uint8, error) {
	b, err := r.next(1, "uint8")
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadBool reads a single byte, any nonzero value is true
func (r *Reader) ReadBool() (bool, error) {
	v, err := r.ReadUint8()
	return v != 0, err
}

// readLength reads a length prefix, allowNull permits the -1 sentinel
func (r *Reader) readLength(what string, allowNull bool) (int32, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n == nullLength && allowNull {
		return n, nil
	}
	if n < 0 {
		return 0, fmt.Errorf("reading %s length %d at offset %d: %w", what, n, r.pos-4, ErrInvalidLength)
	}
	return n, nil
}

func (r *Reader) ReadString() (string, error) {
	n, err := r.readLength("string", false)
	if err != nil {
		return "", err
	}
	b, err := r.next(int(n), "string")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ReadBuffer reads a required buffer. The returned slice is a copy.
func (r *Reader) ReadBuffer() ([]byte, error) {
	n, err := r.readLength("buffer", false)
	if err != nil {
		return nil, err
	}
	b, err := r.next(int(n), "buffer")
	if err != nil {
		return nil, err
	}
	return append([]byte{}, b...), nil
}

// ReadOptBuffer reads an optional buffer, the -1 sentinel yields an absent value
func (r *Reader) ReadOptBuffer() (OptBytes, error) {
	n, err := r.readLength("buffer", true)
	if err != nil {
		return OptBytes{}, err
	}
	if n == nullLength {
		return NoBytes(), nil
	}
	b, err := r.next(int(n), "buffer")
	if err != nil {
		return OptBytes{}, err
	}
	return SomeBytes(append([]byte{}, b...)), nil
}

func (r *Reader) ReadStrings() ([]string, error) {
	return ReadVector(r, func(r *Reader) (string, error) {
		return r.ReadString()
	})
}

// ReadVector reads an element count followed by the elements. A -1 count is
// accepted as an empty vector.
func ReadVector[T any](r *Reader, decode func(r *Reader) (T, error)) ([]T, error) {
	n, err := r.readLength("vector", true)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []T{}, nil
	}
	// every element takes at least one byte
	if int(n) > r.Remaining() {
		return nil, fmt.Errorf("reading vector of %d elements: %w", n, ErrShortBuffer)
	}
	items := make([]T, 0, n)
	for i := int32(0); i < n; i++ {
		item, err := decode(r)
		if err != nil {
			return nil, fmt.Errorf("reading vector element %d: %w", i, err)
		}
		items = append(items, item)
	}
	return items, nil
}

// Unmarshal decodes a single record and requires the input to be fully consumed
func Unmarshal(b []byte, d Decoder) error {
	r := NewReader(b)
	if err := d.Decode(r); err != nil {
		return err
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("jute: %d trailing bytes after record", r.Remaining())
	}
	return nil
}
