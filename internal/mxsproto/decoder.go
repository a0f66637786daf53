package mxsproto

import "bytes"

// Packet is a decoded frame view. Data is a sub-slice of the buffer
// FilterBuffer was called with: it stays valid only until that buffer is
// next mutated, which is why callers must finish consuming Packets before
// draining TrimIndex bytes off the head of the rolling buffer.
type Packet struct {
	Type PacketType
	Data []byte
}

// FilterResult is the outcome of one decoder pass over a rolling buffer.
type FilterResult struct {
	// SkippedData is the prefix of the input that precedes the first
	// accepted frame start and must be treated as free-form text.
	SkippedData []byte
	// TrimIndex is how many bytes the caller must drain off the head of
	// the buffer before the next read is appended and filtered again.
	TrimIndex int
	// Packets is the ordered list of frames found on this pass.
	Packets []Packet
}

// decoderState is the cursor/skip-position state machine that
// FilterBuffer drives to exhaustion. It is a direct transliteration of the
// reference MxsDecoder: cursor tracks how far a complete scan has
// progressed, skipPos latches the first byte offset that must survive as
// (or become) skipped text.
type decoderState struct {
	data    []byte
	cursor  int
	skipPos int
	hasSkip bool
}

// FilterBuffer scans data for MXS frames with no allocation beyond the
// returned packet slice; every Packet.Data borrows from data. The scan is
// pure with respect to data — calling it twice on the same slice yields
// the same result.
func FilterBuffer(data []byte) FilterResult {
	st := &decoderState{data: data}

	var packets []Packet
	for {
		pkt, ok := st.extractPacket()
		if !ok {
			break
		}
		packets = append(packets, pkt)
	}

	firstPos := 0
	if st.hasSkip {
		firstPos = st.skipPos
	}

	trimIndex := firstPos
	if len(packets) > 0 {
		trimIndex = st.cursor
	}

	return FilterResult{
		SkippedData: data[:firstPos],
		TrimIndex:   trimIndex,
		Packets:     packets,
	}
}

func (st *decoderState) markSkip(pos int) {
	if !st.hasSkip {
		st.hasSkip = true
		st.skipPos = pos
	}
}

// extractPacket tries to pull exactly one packet starting at or after
// st.cursor, advancing st.cursor as it goes. It returns ok=false once the
// remaining buffer can't yield another complete frame right now, and also
// right after stepping past a false marker, which ends this pass; the next
// FilterBuffer call on the trimmed buffer resumes the scan from there.
func (st *decoderState) extractPacket() (Packet, bool) {
	if st.cursor+MarkerLen > len(st.data) {
		return Packet{}, false
	}

	relFound := bytes.Index(st.data[st.cursor:], Marker[:])
	if relFound < 0 {
		// No marker anywhere in the remainder: keep the last MarkerLen-1
		// bytes unskipped in case a marker is split across the next read.
		st.markSkip(len(st.data) - (MarkerLen - 1))
		return Packet{}, false
	}

	start := st.cursor + relFound

	if start+MinPacketSize > len(st.data) {
		// Header incomplete: retry this exact header on the next call.
		st.markSkip(start)
		return Packet{}, false
	}

	typePos := start + MarkerLen
	packetType, err := ParsePacketType(st.data[typePos])
	if err != nil {
		// False marker: resync just past it, not further.
		skipPos := start + MarkerLen
		st.markSkip(skipPos)
		st.cursor = skipPos
		return Packet{}, false
	}

	sizePos := typePos + TypeLen
	dataLen := int(st.data[sizePos])

	dataStart := sizePos + SizeLen
	dataEnd := dataStart + dataLen

	if dataEnd > len(st.data) {
		// Declared payload doesn't fit yet: leave the header in place.
		st.cursor = start
		st.markSkip(start)
		return Packet{}, false
	}

	payload := st.data[dataStart:dataEnd]
	st.cursor = dataEnd
	st.markSkip(start)

	return Packet{Type: packetType, Data: payload}, true
}
