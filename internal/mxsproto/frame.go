// Package mxsproto implements the MXS (MiXed Stream) wire protocol: a
// zero-copy decoder that separates free-form text from framed binary
// packets inside a single rolling byte buffer, and the fixed 6-byte data
// record payload carried by Data packets.
//
// Packet layout: MARKER(2) | TYPE(1) | LEN(1) | PAYLOAD(LEN). There is no
// checksum and no escape mechanism; a marker byte pair occurring inside a
// payload is not mistaken for a frame start while that frame is being
// consumed, but it is not protected against once the decoder has lost
// sync (see FilterBuffer).
package mxsproto

import (
	"errors"
	"fmt"
)

// Marker is the two-byte synchronization pattern that opens every frame.
var Marker = [2]byte{0xAA, 0x55}

const (
	MarkerLen = 2
	TypeLen   = 1
	SizeLen   = 1

	// MaxDataLen is the largest payload an 8-bit length byte can address.
	MaxDataLen = (1 << (SizeLen * 8)) - 1

	// MinPacketSize is the size of a frame with an empty payload.
	MinPacketSize = MarkerLen + TypeLen + SizeLen

	// MaxPacketSize is the size of a frame with a maximal payload.
	MaxPacketSize = MinPacketSize + MaxDataLen
)

// PacketType is the closed set of frame kinds a TYPE byte can name.
type PacketType uint8

const (
	Start     PacketType = 1
	End       PacketType = 2
	Heartbeat PacketType = 3
	Data      PacketType = 4
	Error     PacketType = 5
)

func (t PacketType) String() string {
	switch t {
	case Start:
		return "Start"
	case End:
		return "End"
	case Heartbeat:
		return "Heartbeat"
	case Data:
		return "Data"
	case Error:
		return "Error"
	default:
		return fmt.Sprintf("PacketType(%d)", uint8(t))
	}
}

// ErrUnknownPacketType is returned by ParsePacketType for any byte outside
// the closed set above. The decoder uses this to drive its resync policy.
var ErrUnknownPacketType = errors.New("mxsproto: unknown packet type")

// ParsePacketType converts a wire type byte into a PacketType, failing with
// ErrUnknownPacketType for any value outside the closed set.
func ParsePacketType(b byte) (PacketType, error) {
	switch PacketType(b) {
	case Start, End, Heartbeat, Data, Error:
		return PacketType(b), nil
	default:
		return 0, ErrUnknownPacketType
	}
}
