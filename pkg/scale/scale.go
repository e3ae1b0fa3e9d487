// Package scale implements the subset of the SCALE codec used by the coretime
// chain's storage values: fixed-width little-endian integers, raw byte arrays
// and options.
package scale

import (
	"encoding/binary"
	"errors"
)

var (
	ErrShortInput    = errors.New("scale: input too short")
	ErrTrailingBytes = errors.New("scale: trailing bytes")
	ErrBadOption     = errors.New("scale: invalid option tag")
	ErrU128Overflow  = errors.New("scale: u128 does not fit in 64 bits")
)

// Encoder appends SCALE-encoded values to a buffer.
type Encoder struct {
	buf []byte
}

func NewEncoder(capacity int) *Encoder {
	return &Encoder{buf: make([]byte, 0, capacity)}
}

func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) U8(v uint8) *Encoder {
	e.buf = append(e.buf, v)
	return e
}

func (e *Encoder) U16(v uint16) *Encoder {
	e.buf = binary.LittleEndian.AppendUint16(e.buf, v)
	return e
}

func (e *Encoder) U32(v uint32) *Encoder {
	e.buf = binary.LittleEndian.AppendUint32(e.buf, v)
	return e
}

func (e *Encoder) U64(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	return e
}

// U128 writes a u128 whose high 64 bits are zero.
func (e *Encoder) U128(v uint64) *Encoder {
	e.buf = binary.LittleEndian.AppendUint64(e.buf, v)
	e.buf = binary.LittleEndian.AppendUint64(e.buf, 0)
	return e
}

// Raw appends bytes without a length prefix (fixed-size arrays).
func (e *Encoder) Raw(b []byte) *Encoder {
	e.buf = append(e.buf, b...)
	return e
}

// OptionU128 writes Option<u128>.
func (e *Encoder) OptionU128(v *uint64) *Encoder {
	if v == nil {
		return e.U8(0)
	}
	return e.U8(1).U128(*v)
}

// Decoder reads SCALE-encoded values from a byte slice.
type Decoder struct {
	b   []byte
	off int
}

func NewDecoder(b []byte) *Decoder {
	return &Decoder{b: b}
}

func (d *Decoder) take(n int) ([]byte, error) {
	if len(d.b)-d.off < n {
		return nil, ErrShortInput
	}
	out := d.b[d.off : d.off+n]
	d.off += n
	return out, nil
}

func (d *Decoder) U8() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

func (d *Decoder) U16() (uint16, error) {
	b, err := d.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

func (d *Decoder) U32() (uint32, error) {
	b, err := d.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

func (d *Decoder) U64() (uint64, error) {
	b, err := d.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// U128 reads a u128 and rejects values above 64 bits.
func (d *Decoder) U128() (uint64, error) {
	b, err := d.take(16)
	if err != nil {
		return 0, err
	}
	if binary.LittleEndian.Uint64(b[8:]) != 0 {
		return 0, ErrU128Overflow
	}
	return binary.LittleEndian.Uint64(b[:8]), nil
}

// Raw reads n bytes.
func (d *Decoder) Raw(n int) ([]byte, error) {
	return d.take(n)
}

func (d *Decoder) OptionU128() (*uint64, error) {
	tag, err := d.U8()
	if err != nil {
		return nil, err
	}
	switch tag {
	case 0:
		return nil, nil
	case 1:
		v, err := d.U128()
		if err != nil {
			return nil, err
		}
		return &v, nil
	default:
		return nil, ErrBadOption
	}
}

// Finish fails when unread bytes remain.
func (d *Decoder) Finish() error {
	if d.off != len(d.b) {
		return ErrTrailingBytes
	}
	return nil
}
