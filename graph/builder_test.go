package graph

import (
	"bytes"
	"encoding/binary"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
	"github.com/zeroed-tech/viewstate-decoder/internal/stream"
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

func dispatchAll(t *testing.T, data []byte) []nrbf.Record {
	t.Helper()
	c := stream.NewCursor(data)
	reg := nrbf.NewClassLayoutRegistry()
	d := nrbf.NewDispatcher(reg)

	var records []nrbf.Record
	for {
		rec, err := d.Next(c)
		require.NoError(t, err)
		records = append(records, rec)
		if _, ok := rec.(*nrbf.MessageEndRecord); ok {
			return records
		}
	}
}

// feedTopLevel offers every record except SerializationHeader and
// MessageEnd to the builder, mirroring how the decode loop in the
// viewstate package will drive it.
func feedTopLevel(t *testing.T, b *Builder, records []nrbf.Record) {
	t.Helper()
	for _, rec := range records {
		switch r := rec.(type) {
		case *nrbf.SerializationHeaderRecord:
			b.HandleHeader(r)
		case *nrbf.MessageEndRecord:
			// terminator only
		case *nrbf.BinaryLibraryRecord:
			require.NoError(t, b.HandleLibrary(r))
		default:
			_, err := b.HandleTopLevel(rec)
			require.NoError(t, err)
		}
	}
}

func TestBuilderLibraryClassAndBackReference(t *testing.T) {
	var e encoder
	e.u8(uint8(nrbf.TagSerializationHeader))
	e.i32(2)
	e.i32(-1)
	e.i32(1)
	e.i32(0)

	e.u8(uint8(nrbf.TagBinaryLibrary))
	e.i32(5)
	e.varString("Lib")

	e.u8(uint8(nrbf.TagClassWithMembersAndTypes))
	e.i32(2)
	e.varString("C")
	e.i32(1)
	e.varString("x")
	e.u8(uint8(nrbf.BinaryTypeString))
	e.i32(5)

	e.u8(uint8(nrbf.TagMemberReference))
	e.i32(3)

	e.u8(uint8(nrbf.TagBinaryObjectString))
	e.i32(3)
	e.varString("hi")

	e.u8(uint8(nrbf.TagMessageEnd))

	records := dispatchAll(t, e.buf)

	b := NewBuilder()
	feedTopLevel(t, b, records)

	assert.Equal(t, int32(2), b.RootID())

	require.Len(t, b.Root.Members, 1)
	lib := b.Root.Members[0]
	assert.Equal(t, "Lib", lib.Type)
	require.Len(t, lib.Members, 1)

	cls := lib.Members[0]
	assert.Equal(t, "C", cls.Type)
	require.Len(t, cls.Members, 1)

	member := cls.Members[0]
	assert.Equal(t, "x", member.Name)
	assert.Equal(t, "String", member.Type)
	require.NotNil(t, member.Value)
	assert.Equal(t, "hi", member.Value.Str)

	// Referential identity: the member resolved via MemberReference must
	// be the very same node that BinaryObjectString(3) later populates.
	assert.Same(t, b.nodeFor(3), member)
}

func TestBuilderDuplicateLibraryIsFatal(t *testing.T) {
	b := NewBuilder()
	require.NoError(t, b.HandleLibrary(&nrbf.BinaryLibraryRecord{LibraryID: 1, LibraryName: "A"}))
	err := b.HandleLibrary(&nrbf.BinaryLibraryRecord{LibraryID: 1, LibraryName: "B"})
	assert.ErrorIs(t, err, nrbf.ErrDuplicateLibrary)
}

func TestBuilderUnknownLibraryIsFatal(t *testing.T) {
	b := NewBuilder()
	rec := &nrbf.ClassWithMembersAndTypesRecord{
		Info:      nrbf.ClassInfo{ObjectID: 1, Name: "C"},
		LibraryID: 99,
	}
	_, err := b.HandleTopLevel(rec)
	assert.ErrorIs(t, err, nrbf.ErrUnknownLibrary)
}

func TestBuilderObjectNullMultiple256Expansion(t *testing.T) {
	var e encoder
	e.u8(uint8(nrbf.TagArraySingleObject))
	e.i32(4)
	e.i32(5)

	e.u8(uint8(nrbf.TagObjectNull))
	e.u8(uint8(nrbf.TagObjectNullMultiple256))
	e.u8(3)
	e.u8(uint8(nrbf.TagBinaryObjectString))
	e.i32(7)
	e.varString("x")

	records := dispatchAll(t, append(e.buf, uint8(nrbf.TagMessageEnd)))

	b := NewBuilder()
	feedTopLevel(t, b, records)

	require.Len(t, b.Root.Members, 1)
	arr := b.Root.Members[0]
	assert.Equal(t, "Object[]", arr.Type)
	require.Len(t, arr.Members, 5)
	for i := 0; i < 4; i++ {
		assert.Equal(t, "Null", arr.Members[i].Type)
	}
	assert.Equal(t, "String", arr.Members[4].Type)
}

func TestRenderJSONOmitsEmptyFields(t *testing.T) {
	n := &ObjectNode{ID: 1, Type: "Int32", resolved: true}
	v := nrbf.Value{Kind: nrbf.ValueInt32, Int: 42}
	n.Value = &v

	var buf bytes.Buffer
	require.NoError(t, n.WriteJSON(&buf, 0))
	out := buf.String()
	assert.Contains(t, out, `"Id": 1`)
	assert.Contains(t, out, `"Type": "Int32"`)
	assert.NotContains(t, out, `"Name"`)
	assert.NotContains(t, out, `"Members"`)
}

func TestRenderDetectsCycles(t *testing.T) {
	a := &ObjectNode{ID: 1, Type: "A", resolved: true}
	b := &ObjectNode{ID: 2, Type: "B", resolved: true}
	a.Members = []*ObjectNode{b}
	b.Members = []*ObjectNode{a}

	var buf bytes.Buffer
	require.NoError(t, a.WriteIndented(&buf, 0))
	out := buf.String()
	assert.True(t, strings.Contains(out, "$ref(1)"))
}

func TestRenderMaxDepthTruncates(t *testing.T) {
	leaf := &ObjectNode{ID: 3, Type: "Leaf", resolved: true}
	mid := &ObjectNode{ID: 2, Type: "Mid", resolved: true, Members: []*ObjectNode{leaf}}
	root := &ObjectNode{ID: 1, Type: "Root", resolved: true, Members: []*ObjectNode{mid}}

	var buf bytes.Buffer
	require.NoError(t, root.WriteIndented(&buf, 1))
	out := buf.String()
	assert.True(t, strings.Contains(out, "Mid"))
	assert.True(t, strings.Contains(out, "$ref(3)"))
}
