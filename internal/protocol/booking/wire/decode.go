package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"
)

// ErrMalformed tags every decode failure. The dispatcher maps anything
// wrapping it to a CodeMalformed wire error.
var ErrMalformed = errors.New("malformed message")

// Decoder walks a single datagram. Every read checks that the field fits
// inside the datagram; a length prefix that overruns the buffer, invalid
// UTF-8, or an out-of-range time field fails the whole decode.
type Decoder struct {
	data   []byte
	offset int
}

// NewDecoder creates a decoder positioned at the start of data.
func NewDecoder(data []byte) *Decoder {
	return &Decoder{data: data}
}

// Remaining returns the number of unread bytes.
func (d *Decoder) Remaining() int {
	return len(d.data) - d.offset
}

func (d *Decoder) need(n int, what string) error {
	if d.Remaining() < n {
		return fmt.Errorf("%w: truncated %s (need %d bytes, have %d)", ErrMalformed, what, n, d.Remaining())
	}
	return nil
}

// Uint8 decodes a single byte.
func (d *Decoder) Uint8() (uint8, error) {
	if err := d.need(1, "u8"); err != nil {
		return 0, err
	}
	v := d.data[d.offset]
	d.offset++
	return v, nil
}

// Uint32 decodes a big-endian 32-bit unsigned integer.
func (d *Decoder) Uint32() (uint32, error) {
	if err := d.need(4, "u32"); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(d.data[d.offset:])
	d.offset += 4
	return v, nil
}

// Int32 decodes a big-endian 32-bit signed integer.
func (d *Decoder) Int32() (int32, error) {
	v, err := d.Uint32()
	return int32(v), err
}

// String decodes a u32 length prefix followed by that many UTF-8 bytes.
func (d *Decoder) String() (string, error) {
	length, err := d.Uint32()
	if err != nil {
		return "", err
	}
	if uint32(d.Remaining()) < length {
		return "", fmt.Errorf("%w: string length %d overruns datagram (%d bytes left)", ErrMalformed, length, d.Remaining())
	}
	raw := d.data[d.offset : d.offset+int(length)]
	d.offset += int(length)
	if !utf8.Valid(raw) {
		return "", fmt.Errorf("%w: string is not valid UTF-8", ErrMalformed)
	}
	return string(raw), nil
}

// TimeTriple decodes 3 bytes (day, hour, minute) and validates the range.
func (d *Decoder) TimeTriple() (TimeTriple, error) {
	if err := d.need(3, "time triple"); err != nil {
		return TimeTriple{}, err
	}
	t := TimeTriple{
		Day:    d.data[d.offset],
		Hour:   d.data[d.offset+1],
		Minute: d.data[d.offset+2],
	}
	d.offset += 3
	if !t.Valid() {
		return TimeTriple{}, fmt.Errorf("%w: time %d:%d:%d out of range", ErrMalformed, t.Day, t.Hour, t.Minute)
	}
	return t, nil
}

// ByteList decodes a u32 count followed by count bytes.
func (d *Decoder) ByteList() ([]uint8, error) {
	count, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	if uint32(d.Remaining()) < count {
		return nil, fmt.Errorf("%w: list count %d overruns datagram (%d bytes left)", ErrMalformed, count, d.Remaining())
	}
	vs := make([]uint8, count)
	copy(vs, d.data[d.offset:])
	d.offset += int(count)
	return vs, nil
}

// IntervalList decodes a u32 count followed by count (start, end) pairs.
func (d *Decoder) IntervalList() ([]Interval, error) {
	count, err := d.Uint32()
	if err != nil {
		return nil, err
	}
	// 6 bytes per interval; reject the count before allocating.
	if count > MaxDatagramSize/6 || uint32(d.Remaining()) < count*6 {
		return nil, fmt.Errorf("%w: interval count %d overruns datagram (%d bytes left)", ErrMalformed, count, d.Remaining())
	}
	ivs := make([]Interval, count)
	for i := range ivs {
		start, err := d.TimeTriple()
		if err != nil {
			return nil, err
		}
		end, err := d.TimeTriple()
		if err != nil {
			return nil, err
		}
		ivs[i] = Interval{Start: start, End: end}
	}
	return ivs, nil
}
