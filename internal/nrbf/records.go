package nrbf

// Record is the sum type over every NRBF record variant. Each concrete
// type retains its parsed payload verbatim for later graph assembly.
type Record interface {
	Tag() RecordTag
}

// MemberValueKind discriminates how a single class or array member value
// was read.
type MemberValueKind int

const (
	// MemberValueIsRecord: the value was read as a nested record via the
	// dispatcher (String, Object, StringArray, SystemClass, ObjectArray,
	// PrimitiveArray member types).
	MemberValueIsRecord MemberValueKind = iota
	// MemberValueIsClassType: the value was a ClassTypeInfo read inline
	// (Class member type)
	MemberValueIsClassType
	// MemberValueIsPrimitive: the value was a single primitive read
	// inline using the additional-info PrimitiveKind.
	MemberValueIsPrimitive
)

// MemberValue is one slot of a class's or array's member values.
type MemberValue struct {
	Kind      MemberValueKind
	Record    Record
	ClassType ClassTypeInfo
	Primitive Value
}

// SerializationHeaderRecord (tag 0) must be the first record of a stream;
// it carries no graph effect beyond naming the logical root id.
type SerializationHeaderRecord struct {
	RootID       int32
	HeaderID     int32
	MajorVersion int32
	MinorVersion int32
}

func (r *SerializationHeaderRecord) Tag() RecordTag { return TagSerializationHeader }

// ClassWithIdRecord (tag 1) reuses a previously registered class layout.
type ClassWithIdRecord struct {
	ObjectID   int32
	MetadataID int32
	Layout     *Layout
	Values     []MemberValue
}

func (r *ClassWithIdRecord) Tag() RecordTag { return TagClassWithId }

// SystemClassWithMembersRecord (tag 2) carries class metadata with no
// type information and no member values.
type SystemClassWithMembersRecord struct {
	Info ClassInfo
}

func (r *SystemClassWithMembersRecord) Tag() RecordTag { return TagSystemClassWithMembers }

// SystemClassWithMembersAndTypesRecord (tag 4) defines and registers a
// framework (System.*) class layout and its member values.
type SystemClassWithMembersAndTypesRecord struct {
	Info   ClassInfo
	Types  MemberTypeInfo
	Values []MemberValue
}

func (r *SystemClassWithMembersAndTypesRecord) Tag() RecordTag {
	return TagSystemClassWithMembersAndTypes
}

// ClassWithMembersAndTypesRecord (tag 5) defines and registers a
// library-owned class layout and its member values.
type ClassWithMembersAndTypesRecord struct {
	Info      ClassInfo
	Types     MemberTypeInfo
	LibraryID int32
	Values    []MemberValue
}

func (r *ClassWithMembersAndTypesRecord) Tag() RecordTag { return TagClassWithMembersAndTypes }

// BinaryObjectStringRecord (tag 6) is a length-prefixed UTF-8 string
// object.
type BinaryObjectStringRecord struct {
	ObjectID int32
	Value    string
}

func (r *BinaryObjectStringRecord) Tag() RecordTag { return TagBinaryObjectString }

// BinaryArrayRecord (tag 7) is a general-shape array of any element type.
type BinaryArrayRecord struct {
	ObjectID       int32
	Shape          BinaryArrayShape
	Rank           int32
	Lengths        []int32
	LowerBounds    []int32 // only set when Shape.HasLowerBounds()
	ElementType    BinaryTypeKind
	AdditionalInfo any // see readAdditionalInfo
	Values         []MemberValue
}

func (r *BinaryArrayRecord) Tag() RecordTag { return TagBinaryArray }

// ElementCount returns the product of Lengths across rank. A sum of the
// lengths would miscount multi-dimensional arrays (2x3 sums to 5, not 6).
func (r *BinaryArrayRecord) ElementCount() int64 {
	count := int64(1)
	for _, l := range r.Lengths {
		count *= int64(l)
	}
	return count
}

// MemberPrimitiveTypedRecord (tag 8) is a single typed primitive value.
type MemberPrimitiveTypedRecord struct {
	Kind  PrimitiveKind
	Value Value
}

func (r *MemberPrimitiveTypedRecord) Tag() RecordTag { return TagMemberPrimitiveTyped }

// MemberReferenceRecord (tag 9) points at another object by id.
type MemberReferenceRecord struct {
	IDRef int32
}

func (r *MemberReferenceRecord) Tag() RecordTag { return TagMemberReference }

// ObjectNullRecord (tag 10) is a single null placeholder.
type ObjectNullRecord struct{}

func (r *ObjectNullRecord) Tag() RecordTag { return TagObjectNull }

// MessageEndRecord (tag 11) terminates stream processing.
type MessageEndRecord struct{}

func (r *MessageEndRecord) Tag() RecordTag { return TagMessageEnd }

// BinaryLibraryRecord (tag 12) names a library referenced by later
// ClassWithMembersAndTypes records.
type BinaryLibraryRecord struct {
	LibraryID   int32
	LibraryName string
}

func (r *BinaryLibraryRecord) Tag() RecordTag { return TagBinaryLibrary }

// ObjectNullMultiple256Record (tag 13) stands for NullCount consecutive
// nulls when encountered inside an array.
type ObjectNullMultiple256Record struct {
	NullCount uint8
}

func (r *ObjectNullMultiple256Record) Tag() RecordTag { return TagObjectNullMultiple256 }

// ArraySinglePrimitiveRecord (tag 15) is a homogeneous array of one
// primitive kind, packed contiguously.
type ArraySinglePrimitiveRecord struct {
	Info     ArrayInfo
	Kind     PrimitiveKind
	Elements []Value
}

// Bytes returns the packed byte contents when Kind is PrimitiveByte, for
// nested-blob probing.
func (r *ArraySinglePrimitiveRecord) Bytes() []byte {
	if r.Kind != PrimitiveByte {
		return nil
	}
	out := make([]byte, len(r.Elements))
	for i, v := range r.Elements {
		out[i] = byte(v.Uint)
	}
	return out
}

func (r *ArraySinglePrimitiveRecord) Tag() RecordTag { return TagArraySinglePrimitive }

// ArraySingleObjectRecord (tag 16) is an array of object references or
// nested object records; ObjectNullMultiple256 entries are expanded
// in-place into NullCount separate ObjectNullRecord slots.
type ArraySingleObjectRecord struct {
	Info     ArrayInfo
	Elements []Record
}

func (r *ArraySingleObjectRecord) Tag() RecordTag { return TagArraySingleObject }

// ArraySingleStringRecord (tag 17) reads Length element records the same
// way ArraySingleObject does.
type ArraySingleStringRecord struct {
	Info     ArrayInfo
	Elements []Record
}

func (r *ArraySingleStringRecord) Tag() RecordTag { return TagArraySingleString }
