package wire

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// Encoding helpers: Go types to wire format. All integers are big-endian.
// Unlike XDR there is no 4-byte alignment padding; fields are packed.

// WriteUint8 encodes a single byte.
func WriteUint8(buf *bytes.Buffer, v uint8) {
	buf.WriteByte(v)
}

// WriteUint32 encodes a 32-bit unsigned integer in big-endian byte order.
func WriteUint32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

// WriteInt32 encodes a 32-bit signed integer (two's complement, big-endian).
func WriteInt32(buf *bytes.Buffer, v int32) {
	WriteUint32(buf, uint32(v))
}

// WriteString encodes a string as a u32 byte length followed by the UTF-8
// bytes, with no padding.
func WriteString(buf *bytes.Buffer, s string) {
	WriteUint32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// WriteTimeTriple encodes a time triple as 3 bytes: day, hour, minute.
func WriteTimeTriple(buf *bytes.Buffer, t TimeTriple) {
	buf.WriteByte(t.Day)
	buf.WriteByte(t.Hour)
	buf.WriteByte(t.Minute)
}

// WriteByteList encodes a list of u8 values: u32 count then one byte each.
func WriteByteList(buf *bytes.Buffer, vs []uint8) {
	WriteUint32(buf, uint32(len(vs)))
	buf.Write(vs)
}

// WriteIntervalList encodes a list of (start, end) time-triple pairs:
// u32 count then 6 bytes per interval.
func WriteIntervalList(buf *bytes.Buffer, ivs []Interval) {
	WriteUint32(buf, uint32(len(ivs)))
	for _, iv := range ivs {
		WriteTimeTriple(buf, iv.Start)
		WriteTimeTriple(buf, iv.End)
	}
}

// checkSize guards against building a message that cannot travel in one
// datagram.
func checkSize(buf *bytes.Buffer) ([]byte, error) {
	if buf.Len() > MaxDatagramSize {
		return nil, fmt.Errorf("message size %d exceeds datagram limit %d", buf.Len(), MaxDatagramSize)
	}
	return buf.Bytes(), nil
}
