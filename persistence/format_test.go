package persistence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeader_Layout(t *testing.T) {
	l, err := Header{NumVertices: 3, NumEdges: 4}.Layout()
	require.NoError(t, err)
	assert.Equal(t, Layout{OffsetsStart: 16, NeighborsStart: 40, Size: 72}, l)

	l, err = Header{}.Layout()
	require.NoError(t, err)
	assert.Equal(t, HeaderSize, l.Size)

	_, err = Header{NumVertices: math.MaxUint64}.Layout()
	assert.ErrorIs(t, err, ErrCorrupt)

	_, err = Header{NumVertices: 1, NumEdges: math.MaxUint64 / 8}.Layout()
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestParseHeader(t *testing.T) {
	buf := make([]byte, HeaderSize)
	Header{NumVertices: 7, NumEdges: 11}.Encode(buf)

	h, err := ParseHeader(buf)
	require.NoError(t, err)
	assert.Equal(t, Header{NumVertices: 7, NumEdges: 11}, h)

	_, err = ParseHeader(buf[:15])
	assert.ErrorIs(t, err, ErrTruncated)
}

func TestPlatformInfo(t *testing.T) {
	assert.NoError(t, validatePlatform())
	assert.Contains(t, PlatformInfo(), "little-endian")
}
