package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorFixedWidthReads(t *testing.T) {
	data := []byte{
		0x01,                   // u8
		0x34, 0x12,             // u16 LE -> 0x1234
		0x78, 0x56, 0x34, 0x12, // u32 LE -> 0x12345678
	}
	c := NewCursor(data)

	u8, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x01), u8)

	u16, err := c.ReadU16()
	require.NoError(t, err)
	assert.Equal(t, uint16(0x1234), u16)

	u32, err := c.ReadU32()
	require.NoError(t, err)
	assert.Equal(t, uint32(0x12345678), u32)

	assert.Equal(t, uint64(len(data)), c.Position())
}

func TestCursorUnexpectedEOF(t *testing.T) {
	c := NewCursor([]byte{0x01})
	_, err := c.ReadU32()
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReadVarStringEmptyLength(t *testing.T) {
	c := NewCursor([]byte{0x00})
	s, err := c.ReadVarString()
	require.NoError(t, err)
	assert.Equal(t, "", s)
}

func TestReadVarStringRoundTrip(t *testing.T) {
	tests := []struct {
		name   string
		length uint32
	}{
		{"zero", 0},
		{"one byte length", 127},
		{"two byte length", 300},
		{"three byte length", 1 << 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := make([]byte, tt.length)
			for i := range payload {
				payload[i] = 'a'
			}

			var encoded []byte
			n := tt.length
			for {
				b := byte(n & 0x7f)
				n >>= 7
				if n != 0 {
					b |= 0x80
				}
				encoded = append(encoded, b)
				if n == 0 {
					break
				}
			}
			encoded = append(encoded, payload...)

			c := NewCursor(encoded)
			s, err := c.ReadVarString()
			require.NoError(t, err)
			assert.Equal(t, string(payload), s)
		})
	}
}

func TestReadVarStringTooManyContinuationBytes(t *testing.T) {
	// 5 bytes all with the continuation bit set exceeds the 35-bit cap.
	c := NewCursor([]byte{0xff, 0xff, 0xff, 0xff, 0xff})
	_, err := c.ReadVarString()
	assert.ErrorIs(t, err, ErrInvalidVarInt)
}

func TestPeekDoesNotAdvance(t *testing.T) {
	c := NewCursor([]byte{0x42, 0x43})
	b, err := c.Peek()
	require.NoError(t, err)
	assert.Equal(t, uint8(0x42), b)
	assert.Equal(t, uint64(0), c.Position())

	b2, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, b, b2)
}

func TestSeekWithinBounds(t *testing.T) {
	c := NewCursor([]byte{1, 2, 3, 4})
	require.NoError(t, c.Seek(2))
	b, err := c.ReadU8()
	require.NoError(t, err)
	assert.Equal(t, uint8(3), b)

	require.NoError(t, c.Seek(4))
	assert.True(t, c.AtEnd())

	err = c.Seek(5)
	assert.ErrorIs(t, err, ErrUnexpectedEOF)
}

func TestReadF32LittleEndian(t *testing.T) {
	// 1.5f in IEEE-754 single precision, little-endian.
	c := NewCursor([]byte{0x00, 0x00, 0xC0, 0x3F})
	f, err := c.ReadF32()
	require.NoError(t, err)
	assert.Equal(t, float32(1.5), f)
}
