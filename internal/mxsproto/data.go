package mxsproto

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// DataLen is the fixed payload size of a Data packet in this system: three
// little-endian signed 16-bit fields.
const DataLen = 6

// ErrBadDataLength is returned by ParseData when the payload isn't exactly
// DataLen bytes. The frame itself has already been consumed from the
// stream by the decoder by the time this is reported.
var ErrBadDataLength = errors.New("mxsproto: data payload must be 6 bytes")

// Record is the (x, y, z) triple carried by a Data packet.
type Record struct {
	X, Y, Z int16
}

func (r Record) String() string {
	return fmt.Sprintf("(%d, %d, %d)", r.X, r.Y, r.Z)
}

// ParseData decodes a 6-byte payload into a Record, failing with
// ErrBadDataLength if and only if len(buf) != DataLen.
func ParseData(buf []byte) (Record, error) {
	if len(buf) != DataLen {
		return Record{}, ErrBadDataLength
	}
	return Record{
		X: int16(binary.LittleEndian.Uint16(buf[0:2])),
		Y: int16(binary.LittleEndian.Uint16(buf[2:4])),
		Z: int16(binary.LittleEndian.Uint16(buf[4:6])),
	}, nil
}

// Encode is the inverse of ParseData: it writes the three fields back out
// in the same field order, little-endian. Encode(r) always round-trips
// through ParseData to r.
func (r Record) Encode() [DataLen]byte {
	var buf [DataLen]byte
	binary.LittleEndian.PutUint16(buf[0:2], uint16(r.X))
	binary.LittleEndian.PutUint16(buf[2:4], uint16(r.Y))
	binary.LittleEndian.PutUint16(buf[4:6], uint16(r.Z))
	return buf
}
