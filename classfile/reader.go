package classfile

import (
	"encoding/binary"
	"math"

	"github.com/pkg/errors"
)

// Reader is an advancing big-endian cursor over a class file buffer.
//
// Grounded on gvm/vm/vm.go's uint32FromBytes/int32FromBytes/float32FromBytes
// helpers - this is the same "fixed-width value from a byte slice" idea,
// generalized to an advancing cursor instead of a fixed stack-pointer offset,
// and to big-endian (the class file container's byte order) instead of the
// VM's little-endian stack.
type Reader struct {
	buf []byte
	pos int
}

// NewReader wraps buf for sequential reads starting at offset 0.
func NewReader(buf []byte) *Reader {
	return &Reader{buf: buf}
}

// Pos returns the current cursor offset.
func (r *Reader) Pos() int { return r.pos }

// Len returns the number of unread bytes remaining.
func (r *Reader) Len() int { return len(r.buf) - r.pos }

func (r *Reader) need(n int) error {
	if r.pos+n > len(r.buf) {
		return errors.Wrapf(ErrUnexpectedEOF, "at offset %d need %d bytes, have %d", r.pos, n, len(r.buf)-r.pos)
	}
	return nil
}

// U8 reads one unsigned byte.
func (r *Reader) U8() (byte, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.buf[r.pos]
	r.pos++
	return v, nil
}

// U16 reads a big-endian unsigned 16-bit value.
func (r *Reader) U16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(r.buf[r.pos:])
	r.pos += 2
	return v, nil
}

// U32 reads a big-endian unsigned 32-bit value.
func (r *Reader) U32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(r.buf[r.pos:])
	r.pos += 4
	return v, nil
}

// I32 reads a big-endian signed 32-bit value.
func (r *Reader) I32() (int32, error) {
	v, err := r.U32()
	return int32(v), err
}

// I64 reads a big-endian signed 64-bit value (used by the Long constant pool tag).
func (r *Reader) I64() (int64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return int64(v), nil
}

// F32 reads a big-endian IEEE-754 single-precision float.
func (r *Reader) F32() (float32, error) {
	v, err := r.U32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// F64 reads a big-endian IEEE-754 double-precision float.
func (r *Reader) F64() (float64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint64(r.buf[r.pos:])
	r.pos += 8
	return math.Float64frombits(v), nil
}

// Bytes reads n raw bytes and advances the cursor past them.
func (r *Reader) Bytes(n int) ([]byte, error) {
	if n < 0 {
		return nil, errors.Errorf("negative byte count %d at offset %d", n, r.pos)
	}
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.buf[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

// Skip advances the cursor by n bytes without returning them.
func (r *Reader) Skip(n int) error {
	_, err := r.Bytes(n)
	return err
}
