// Package nrbf implements the record-level grammar of the .NET Remoting
// Binary Format (MS-NRBF): the closed wire enumerations, the per-record
// parsers, and the class-layout registry that lets later ClassWithId
// records reuse an earlier class's member layout.
package nrbf

import "fmt"

// PrimitiveKind is the closed set of primitive wire types.
type PrimitiveKind uint8

// Primitive wire codes. Exact values are normative.
const (
	PrimitiveBoolean  PrimitiveKind = 1
	PrimitiveByte     PrimitiveKind = 2
	PrimitiveChar     PrimitiveKind = 3
	PrimitiveDecimal  PrimitiveKind = 5
	PrimitiveDouble   PrimitiveKind = 6
	PrimitiveInt16    PrimitiveKind = 7
	PrimitiveInt32    PrimitiveKind = 8
	PrimitiveInt64    PrimitiveKind = 9
	PrimitiveSByte    PrimitiveKind = 10
	PrimitiveSingle   PrimitiveKind = 11
	PrimitiveTimeSpan PrimitiveKind = 12
	PrimitiveDateTime PrimitiveKind = 13
	PrimitiveUInt16   PrimitiveKind = 14
	PrimitiveUInt32   PrimitiveKind = 15
	PrimitiveUInt64   PrimitiveKind = 16
	PrimitiveNull     PrimitiveKind = 17
	PrimitiveString   PrimitiveKind = 18
)

// String renders the CLR type name for a primitive kind, used as an
// ObjectNode.Type when a value has no other class association.
func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveBoolean:
		return "Boolean"
	case PrimitiveByte:
		return "Byte"
	case PrimitiveChar:
		return "Char"
	case PrimitiveDecimal:
		return "Decimal"
	case PrimitiveDouble:
		return "Double"
	case PrimitiveInt16:
		return "Int16"
	case PrimitiveInt32:
		return "Int32"
	case PrimitiveInt64:
		return "Int64"
	case PrimitiveSByte:
		return "SByte"
	case PrimitiveSingle:
		return "Single"
	case PrimitiveTimeSpan:
		return "TimeSpan"
	case PrimitiveDateTime:
		return "DateTime"
	case PrimitiveUInt16:
		return "UInt16"
	case PrimitiveUInt32:
		return "UInt32"
	case PrimitiveUInt64:
		return "UInt64"
	case PrimitiveNull:
		return "Null"
	case PrimitiveString:
		return "String"
	default:
		return fmt.Sprintf("PrimitiveKind(%d)", uint8(k))
	}
}

// BinaryTypeKind classifies a member or array element type.
type BinaryTypeKind uint8

const (
	BinaryTypePrimitive      BinaryTypeKind = 0
	BinaryTypeString         BinaryTypeKind = 1
	BinaryTypeObject         BinaryTypeKind = 2
	BinaryTypeSystemClass    BinaryTypeKind = 3
	BinaryTypeClass          BinaryTypeKind = 4
	BinaryTypeObjectArray    BinaryTypeKind = 5
	BinaryTypeStringArray    BinaryTypeKind = 6
	BinaryTypePrimitiveArray BinaryTypeKind = 7
)

func (k BinaryTypeKind) String() string {
	switch k {
	case BinaryTypePrimitive:
		return "Primitive"
	case BinaryTypeString:
		return "String"
	case BinaryTypeObject:
		return "Object"
	case BinaryTypeSystemClass:
		return "SystemClass"
	case BinaryTypeClass:
		return "Class"
	case BinaryTypeObjectArray:
		return "ObjectArray"
	case BinaryTypeStringArray:
		return "StringArray"
	case BinaryTypePrimitiveArray:
		return "PrimitiveArray"
	default:
		return fmt.Sprintf("BinaryTypeKind(%d)", uint8(k))
	}
}

// BinaryArrayShape describes a BinaryArray record's rank/offset shape.
type BinaryArrayShape uint8

const (
	ArrayShapeSingle            BinaryArrayShape = 0
	ArrayShapeJagged            BinaryArrayShape = 1
	ArrayShapeRectangular       BinaryArrayShape = 2
	ArrayShapeSingleOffset      BinaryArrayShape = 3
	ArrayShapeJaggedOffset      BinaryArrayShape = 4
	ArrayShapeRectangularOffset BinaryArrayShape = 5
)

func (s BinaryArrayShape) String() string {
	switch s {
	case ArrayShapeSingle:
		return "Single"
	case ArrayShapeJagged:
		return "Jagged"
	case ArrayShapeRectangular:
		return "Rectangular"
	case ArrayShapeSingleOffset:
		return "SingleOffset"
	case ArrayShapeJaggedOffset:
		return "JaggedOffset"
	case ArrayShapeRectangularOffset:
		return "RectangularOffset"
	default:
		return fmt.Sprintf("BinaryArrayShape(%d)", uint8(s))
	}
}

// HasLowerBounds reports whether the shape carries a per-rank lower-bound
// array in addition to lengths.
func (s BinaryArrayShape) HasLowerBounds() bool {
	switch s {
	case ArrayShapeSingleOffset, ArrayShapeJaggedOffset, ArrayShapeRectangularOffset:
		return true
	default:
		return false
	}
}

// RecordTag is the one-byte tag that opens every NRBF record.
type RecordTag uint8

// Record wire tags. Exact values are normative.
const (
	TagSerializationHeader               RecordTag = 0
	TagClassWithId                       RecordTag = 1
	TagSystemClassWithMembers            RecordTag = 2
	TagSystemClassWithMembersAndTypes    RecordTag = 4
	TagClassWithMembersAndTypes          RecordTag = 5
	TagBinaryObjectString                RecordTag = 6
	TagBinaryArray                       RecordTag = 7
	TagMemberPrimitiveTyped              RecordTag = 8
	TagMemberReference                   RecordTag = 9
	TagObjectNull                        RecordTag = 10
	TagMessageEnd                        RecordTag = 11
	TagBinaryLibrary                     RecordTag = 12
	TagObjectNullMultiple256             RecordTag = 13
	TagArraySinglePrimitive              RecordTag = 15
	TagArraySingleObject                 RecordTag = 16
	TagArraySingleString                 RecordTag = 17
)

func (t RecordTag) String() string {
	switch t {
	case TagSerializationHeader:
		return "SerializationHeader"
	case TagClassWithId:
		return "ClassWithId"
	case TagSystemClassWithMembers:
		return "SystemClassWithMembers"
	case TagSystemClassWithMembersAndTypes:
		return "SystemClassWithMembersAndTypes"
	case TagClassWithMembersAndTypes:
		return "ClassWithMembersAndTypes"
	case TagBinaryObjectString:
		return "BinaryObjectString"
	case TagBinaryArray:
		return "BinaryArray"
	case TagMemberPrimitiveTyped:
		return "MemberPrimitiveTyped"
	case TagMemberReference:
		return "MemberReference"
	case TagObjectNull:
		return "ObjectNull"
	case TagMessageEnd:
		return "MessageEnd"
	case TagBinaryLibrary:
		return "BinaryLibrary"
	case TagObjectNullMultiple256:
		return "ObjectNullMultiple256"
	case TagArraySinglePrimitive:
		return "ArraySinglePrimitive"
	case TagArraySingleObject:
		return "ArraySingleObject"
	case TagArraySingleString:
		return "ArraySingleString"
	default:
		return fmt.Sprintf("RecordTag(%d)", uint8(t))
	}
}

// knownTags enumerates every tag the dispatcher accepts; anything else is
// UnknownRecord.
var knownTags = map[RecordTag]bool{
	TagSerializationHeader:            true,
	TagClassWithId:                    true,
	TagSystemClassWithMembers:         true,
	TagSystemClassWithMembersAndTypes: true,
	TagClassWithMembersAndTypes:       true,
	TagBinaryObjectString:             true,
	TagBinaryArray:                    true,
	TagMemberPrimitiveTyped:           true,
	TagMemberReference:                true,
	TagObjectNull:                     true,
	TagMessageEnd:                     true,
	TagBinaryLibrary:                  true,
	TagObjectNullMultiple256:          true,
	TagArraySinglePrimitive:           true,
	TagArraySingleObject:              true,
	TagArraySingleString:              true,
}
