package mxsproto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDataRoundTrip(t *testing.T) {
	cases := []Record{
		{0, 0, 0},
		{1, 2, 3},
		{-1, -2, -3},
		{32767, -32768, 12345},
	}
	for _, want := range cases {
		enc := want.Encode()
		got, err := ParseData(enc[:])
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
}

func TestParseDataBadLength(t *testing.T) {
	for _, n := range []int{0, 1, 5, 7, 255} {
		_, err := ParseData(make([]byte, n))
		require.True(t, errors.Is(err, ErrBadDataLength), "len=%d", n)
	}
}

func TestParseDataExactLengthSucceeds(t *testing.T) {
	_, err := ParseData(make([]byte, DataLen))
	require.NoError(t, err)
}

func TestRecordString(t *testing.T) {
	require.Equal(t, "(1, 2, 3)", Record{1, 2, 3}.String())
}
