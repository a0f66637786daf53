package mxsproto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParsePacketType(t *testing.T) {
	cases := []struct {
		b    byte
		want PacketType
	}{
		{1, Start},
		{2, End},
		{3, Heartbeat},
		{4, Data},
		{5, Error},
	}
	for _, c := range cases {
		got, err := ParsePacketType(c.b)
		require.NoError(t, err)
		require.Equal(t, c.want, got)
	}
}

func TestParsePacketTypeUnknown(t *testing.T) {
	for _, b := range []byte{0, 6, 9, 255} {
		_, err := ParsePacketType(b)
		require.True(t, errors.Is(err, ErrUnknownPacketType))
	}
}

func TestPacketTypeString(t *testing.T) {
	require.Equal(t, "Data", Data.String())
	require.Equal(t, "End", End.String())
	require.Contains(t, PacketType(9).String(), "9")
}

func TestSizeConstants(t *testing.T) {
	require.Equal(t, 4, MinPacketSize)
	require.Equal(t, 259, MaxPacketSize)
	require.Equal(t, 255, MaxDataLen)
}
