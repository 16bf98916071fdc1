package viewstate

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
)

type encoder struct{ buf []byte }

func (e *encoder) u8(v uint8) { e.buf = append(e.buf, v) }
func (e *encoder) i32(v int32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], uint32(v))
	e.buf = append(e.buf, b[:]...)
}
func (e *encoder) varString(s string) {
	n := uint32(len(s))
	for {
		b := byte(n & 0x7f)
		n >>= 7
		if n != 0 {
			b |= 0x80
		}
		e.buf = append(e.buf, b)
		if n == 0 {
			break
		}
	}
	e.buf = append(e.buf, s...)
}

func (e *encoder) header(rootID int32) {
	e.u8(uint8(nrbf.TagSerializationHeader))
	e.i32(rootID)
	e.i32(-1)
	e.i32(1)
	e.i32(0)
}

func (e *encoder) end() { e.u8(uint8(nrbf.TagMessageEnd)) }

func TestDecodeHeaderAndEmptyMessage(t *testing.T) {
	var e encoder
	e.header(1)
	e.end()

	doc, err := NewDecoder().Decode(e.buf)
	require.NoError(t, err)
	assert.Equal(t, int32(1), doc.RootID)
	assert.Empty(t, doc.Root.Members)
}

func TestDecodeMissingHeaderIsFatal(t *testing.T) {
	var e encoder
	e.end()

	_, err := NewDecoder().Decode(e.buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, nrbf.ErrMissingHeader)
}

func TestDecodeSystemClassUnderRoot(t *testing.T) {
	var e encoder
	e.header(1)
	e.u8(uint8(nrbf.TagSystemClassWithMembersAndTypes))
	e.i32(1)
	e.varString("Pair")
	e.i32(2)
	e.varString("a")
	e.varString("b")
	e.u8(uint8(nrbf.BinaryTypePrimitive))
	e.u8(uint8(nrbf.BinaryTypePrimitive))
	e.u8(uint8(nrbf.PrimitiveInt32))
	e.u8(uint8(nrbf.PrimitiveInt32))
	e.i32(7)
	e.i32(42)
	e.end()

	doc, err := NewDecoder().Decode(e.buf)
	require.NoError(t, err)
	require.Len(t, doc.Root.Members, 1)
	require.Len(t, doc.SystemClasses, 1)

	cls := doc.Root.Members[0]
	assert.Equal(t, "Pair", cls.Type)
	require.Len(t, cls.Members, 2)
	assert.Equal(t, "a", cls.Members[0].Name)
	assert.Equal(t, int64(7), cls.Members[0].Value.Int)
	assert.Equal(t, "b", cls.Members[1].Name)
	assert.Equal(t, int64(42), cls.Members[1].Value.Int)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf, 0))
	rendered := buf.String()
	assert.Contains(t, rendered, `"Name": "a"`)
	assert.Contains(t, rendered, `"Value": 7`)
	assert.Contains(t, rendered, `"Name": "b"`)
	assert.Contains(t, rendered, `"Value": 42`)
}

func TestDecodeRenderJSONShape(t *testing.T) {
	var e encoder
	e.header(1)
	e.end()

	doc, err := NewDecoder().Decode(e.buf)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, doc.WriteJSON(&buf, 0))
	assert.Contains(t, buf.String(), `"RootId": 1`)
	assert.Contains(t, buf.String(), `"Graph"`)
}

func TestDecodeNestedBlob(t *testing.T) {
	var inner encoder
	inner.header(5)
	inner.end()

	var e encoder
	e.header(1)
	e.u8(uint8(nrbf.TagArraySinglePrimitive))
	e.i32(4)                      // objectId
	e.i32(int32(len(inner.buf))) // length
	e.u8(uint8(nrbf.PrimitiveByte))
	e.buf = append(e.buf, inner.buf...)
	e.end()

	doc, err := NewDecoder().Decode(e.buf)
	require.NoError(t, err)
	require.Len(t, doc.Nested, 1)
	assert.Equal(t, int32(5), doc.Nested[0].RootID)
}

func TestDecodeNonBlobByteArrayDoesNotProbe(t *testing.T) {
	var e encoder
	e.header(1)
	e.u8(uint8(nrbf.TagArraySinglePrimitive))
	e.i32(4)
	e.i32(20)
	e.u8(uint8(nrbf.PrimitiveByte))
	payload := make([]byte, 20)
	for i := range payload {
		payload[i] = 0xAB // does not start with 0x00
	}
	e.buf = append(e.buf, payload...)
	e.end()

	doc, err := NewDecoder().Decode(e.buf)
	require.NoError(t, err)
	assert.Empty(t, doc.Nested)
}
