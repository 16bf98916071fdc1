package nrbf

import "github.com/zeroed-tech/viewstate-decoder/internal/stream"

// Dispatcher inspects the next tag byte and constructs the record variant
// to parse, recursively invoking itself for nested member records.
// It holds the ClassLayoutRegistry for the parse it belongs to; callers
// construct a fresh Dispatcher (and registry) per top-level or nested
// parse rather than sharing state across parses.
type Dispatcher struct {
	Registry *ClassLayoutRegistry
}

// NewDispatcher creates a Dispatcher backed by registry.
func NewDispatcher(registry *ClassLayoutRegistry) *Dispatcher {
	return &Dispatcher{Registry: registry}
}

// Next peeks one byte, dispatches to the matching record parser, and
// returns the parsed record. It never consumes the tag byte itself; the
// chosen parser re-reads and validates it.
func (d *Dispatcher) Next(c *stream.Cursor) (Record, error) {
	raw, err := c.Peek()
	if err != nil {
		return nil, err
	}
	tag := RecordTag(raw)
	if !knownTags[tag] {
		return nil, &ErrUnknownRecord{Tag: tag}
	}

	switch tag {
	case TagSerializationHeader:
		return d.parseSerializationHeader(c)
	case TagClassWithId:
		return d.parseClassWithId(c)
	case TagSystemClassWithMembers:
		return d.parseSystemClassWithMembers(c)
	case TagSystemClassWithMembersAndTypes:
		return d.parseSystemClassWithMembersAndTypes(c)
	case TagClassWithMembersAndTypes:
		return d.parseClassWithMembersAndTypes(c)
	case TagBinaryObjectString:
		return d.parseBinaryObjectString(c)
	case TagBinaryArray:
		return d.parseBinaryArray(c)
	case TagMemberPrimitiveTyped:
		return d.parseMemberPrimitiveTyped(c)
	case TagMemberReference:
		return d.parseMemberReference(c)
	case TagObjectNull:
		return d.parseObjectNull(c)
	case TagMessageEnd:
		return d.parseMessageEnd(c)
	case TagBinaryLibrary:
		return d.parseBinaryLibrary(c)
	case TagObjectNullMultiple256:
		return d.parseObjectNullMultiple256(c)
	case TagArraySinglePrimitive:
		return d.parseArraySinglePrimitive(c)
	case TagArraySingleObject:
		return d.parseArraySingleObject(c)
	case TagArraySingleString:
		return d.parseArraySingleString(c)
	default:
		return nil, &ErrUnknownRecord{Tag: tag}
	}
}

// expectTag reads the tag byte and asserts it matches expected.
func expectTag(c *stream.Cursor, expected RecordTag) error {
	raw, err := c.ReadU8()
	if err != nil {
		return err
	}
	got := RecordTag(raw)
	if got != expected {
		return &ErrRecordTagMismatch{Expected: expected, Got: got}
	}
	return nil
}

func (d *Dispatcher) parseSerializationHeader(c *stream.Cursor) (*SerializationHeaderRecord, error) {
	if err := expectTag(c, TagSerializationHeader); err != nil {
		return nil, err
	}
	var r SerializationHeaderRecord
	var err error
	if r.RootID, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if r.HeaderID, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if r.MajorVersion, err = c.ReadI32(); err != nil {
		return nil, err
	}
	if r.MinorVersion, err = c.ReadI32(); err != nil {
		return nil, err
	}
	return &r, nil
}

func (d *Dispatcher) parseClassWithId(c *stream.Cursor) (*ClassWithIdRecord, error) {
	if err := expectTag(c, TagClassWithId); err != nil {
		return nil, err
	}
	objectID, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	metadataID, err := c.ReadI32()
	if err != nil {
		return nil, err
	}

	layout, err := d.Registry.Lookup(metadataID)
	if err != nil {
		return nil, err
	}

	values, err := d.readMemberValues(c, layout.MemberTypeInfo)
	if err != nil {
		return nil, err
	}

	return &ClassWithIdRecord{
		ObjectID:   objectID,
		MetadataID: metadataID,
		Layout:     layout,
		Values:     values,
	}, nil
}

func (d *Dispatcher) parseSystemClassWithMembers(c *stream.Cursor) (*SystemClassWithMembersRecord, error) {
	if err := expectTag(c, TagSystemClassWithMembers); err != nil {
		return nil, err
	}
	info, err := readClassInfo(c)
	if err != nil {
		return nil, err
	}
	return &SystemClassWithMembersRecord{Info: info}, nil
}

func (d *Dispatcher) parseSystemClassWithMembersAndTypes(c *stream.Cursor) (*SystemClassWithMembersAndTypesRecord, error) {
	if err := expectTag(c, TagSystemClassWithMembersAndTypes); err != nil {
		return nil, err
	}
	info, err := readClassInfo(c)
	if err != nil {
		return nil, err
	}
	types, err := readMemberTypeInfo(c, info.MemberCount)
	if err != nil {
		return nil, err
	}
	values, err := d.readMemberValues(c, types)
	if err != nil {
		return nil, err
	}

	if err := d.Registry.Register(info.ObjectID, &Layout{ClassInfo: info, MemberTypeInfo: types}); err != nil {
		return nil, err
	}

	return &SystemClassWithMembersAndTypesRecord{Info: info, Types: types, Values: values}, nil
}

func (d *Dispatcher) parseClassWithMembersAndTypes(c *stream.Cursor) (*ClassWithMembersAndTypesRecord, error) {
	if err := expectTag(c, TagClassWithMembersAndTypes); err != nil {
		return nil, err
	}
	info, err := readClassInfo(c)
	if err != nil {
		return nil, err
	}
	types, err := readMemberTypeInfo(c, info.MemberCount)
	if err != nil {
		return nil, err
	}
	libraryID, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	values, err := d.readMemberValues(c, types)
	if err != nil {
		return nil, err
	}

	if err := d.Registry.Register(info.ObjectID, &Layout{ClassInfo: info, MemberTypeInfo: types}); err != nil {
		return nil, err
	}

	return &ClassWithMembersAndTypesRecord{
		Info:      info,
		Types:     types,
		LibraryID: libraryID,
		Values:    values,
	}, nil
}

func (d *Dispatcher) parseBinaryObjectString(c *stream.Cursor) (*BinaryObjectStringRecord, error) {
	if err := expectTag(c, TagBinaryObjectString); err != nil {
		return nil, err
	}
	objectID, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	value, err := c.ReadVarString()
	if err != nil {
		return nil, err
	}
	return &BinaryObjectStringRecord{ObjectID: objectID, Value: value}, nil
}

func (d *Dispatcher) parseBinaryArray(c *stream.Cursor) (*BinaryArrayRecord, error) {
	if err := expectTag(c, TagBinaryArray); err != nil {
		return nil, err
	}
	var r BinaryArrayRecord
	var err error

	if r.ObjectID, err = c.ReadI32(); err != nil {
		return nil, err
	}

	shapeByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	r.Shape = BinaryArrayShape(shapeByte)

	if r.Rank, err = c.ReadI32(); err != nil {
		return nil, err
	}

	r.Lengths = make([]int32, r.Rank)
	for i := int32(0); i < r.Rank; i++ {
		if r.Lengths[i], err = c.ReadI32(); err != nil {
			return nil, err
		}
	}

	if r.Shape.HasLowerBounds() {
		r.LowerBounds = make([]int32, r.Rank)
		for i := int32(0); i < r.Rank; i++ {
			if r.LowerBounds[i], err = c.ReadI32(); err != nil {
				return nil, err
			}
		}
	}

	typeByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	r.ElementType = BinaryTypeKind(typeByte)

	r.AdditionalInfo, err = readAdditionalInfo(c, r.ElementType)
	if err != nil {
		return nil, err
	}

	count := r.ElementCount()
	values := make([]MemberValue, 0, count)
	for i := int64(0); i < count; i++ {
		v, err := d.readSingleMemberValue(c, r.ElementType, r.AdditionalInfo)
		if err != nil {
			return nil, err
		}
		values = append(values, v)
	}
	r.Values = values

	return &r, nil
}

func (d *Dispatcher) parseMemberPrimitiveTyped(c *stream.Cursor) (*MemberPrimitiveTypedRecord, error) {
	if err := expectTag(c, TagMemberPrimitiveTyped); err != nil {
		return nil, err
	}
	kindByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	kind := PrimitiveKind(kindByte)
	value, err := ReadPrimitive(c, kind)
	if err != nil {
		return nil, err
	}
	return &MemberPrimitiveTypedRecord{Kind: kind, Value: value}, nil
}

func (d *Dispatcher) parseMemberReference(c *stream.Cursor) (*MemberReferenceRecord, error) {
	if err := expectTag(c, TagMemberReference); err != nil {
		return nil, err
	}
	idRef, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	return &MemberReferenceRecord{IDRef: idRef}, nil
}

func (d *Dispatcher) parseObjectNull(c *stream.Cursor) (*ObjectNullRecord, error) {
	if err := expectTag(c, TagObjectNull); err != nil {
		return nil, err
	}
	return &ObjectNullRecord{}, nil
}

func (d *Dispatcher) parseMessageEnd(c *stream.Cursor) (*MessageEndRecord, error) {
	if err := expectTag(c, TagMessageEnd); err != nil {
		return nil, err
	}
	return &MessageEndRecord{}, nil
}

func (d *Dispatcher) parseBinaryLibrary(c *stream.Cursor) (*BinaryLibraryRecord, error) {
	if err := expectTag(c, TagBinaryLibrary); err != nil {
		return nil, err
	}
	libraryID, err := c.ReadI32()
	if err != nil {
		return nil, err
	}
	name, err := c.ReadVarString()
	if err != nil {
		return nil, err
	}
	return &BinaryLibraryRecord{LibraryID: libraryID, LibraryName: name}, nil
}

func (d *Dispatcher) parseObjectNullMultiple256(c *stream.Cursor) (*ObjectNullMultiple256Record, error) {
	if err := expectTag(c, TagObjectNullMultiple256); err != nil {
		return nil, err
	}
	count, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	return &ObjectNullMultiple256Record{NullCount: count}, nil
}

func (d *Dispatcher) parseArraySinglePrimitive(c *stream.Cursor) (*ArraySinglePrimitiveRecord, error) {
	if err := expectTag(c, TagArraySinglePrimitive); err != nil {
		return nil, err
	}
	info, err := readArrayInfo(c)
	if err != nil {
		return nil, err
	}
	kindByte, err := c.ReadU8()
	if err != nil {
		return nil, err
	}
	kind := PrimitiveKind(kindByte)

	if info.Length < 0 {
		return nil, &ParseError{Offset: c.Position(), Message: "negative array length"}
	}

	elements := make([]Value, info.Length)
	for i := int32(0); i < info.Length; i++ {
		v, err := ReadPrimitive(c, kind)
		if err != nil {
			return nil, err
		}
		elements[i] = v
	}

	return &ArraySinglePrimitiveRecord{Info: info, Kind: kind, Elements: elements}, nil
}

func (d *Dispatcher) parseArraySingleObject(c *stream.Cursor) (*ArraySingleObjectRecord, error) {
	if err := expectTag(c, TagArraySingleObject); err != nil {
		return nil, err
	}
	info, err := readArrayInfo(c)
	if err != nil {
		return nil, err
	}
	elements, err := d.readArrayElements(c, info.Length)
	if err != nil {
		return nil, err
	}
	return &ArraySingleObjectRecord{Info: info, Elements: elements}, nil
}

func (d *Dispatcher) parseArraySingleString(c *stream.Cursor) (*ArraySingleStringRecord, error) {
	if err := expectTag(c, TagArraySingleString); err != nil {
		return nil, err
	}
	info, err := readArrayInfo(c)
	if err != nil {
		return nil, err
	}
	elements, err := d.readArrayElements(c, info.Length)
	if err != nil {
		return nil, err
	}
	return &ArraySingleStringRecord{Info: info, Elements: elements}, nil
}

// readArrayElements reads exactly length logical slots of an object/string
// array, expanding each ObjectNullMultiple256 record into NullCount
// individual ObjectNullRecord slots.
func (d *Dispatcher) readArrayElements(c *stream.Cursor, length int32) ([]Record, error) {
	if length < 0 {
		return nil, &ParseError{Offset: c.Position(), Message: "negative array length"}
	}

	elements := make([]Record, 0, length)
	remaining := length
	for remaining > 0 {
		rec, err := d.Next(c)
		if err != nil {
			return nil, err
		}
		if multi, ok := rec.(*ObjectNullMultiple256Record); ok {
			n := int32(multi.NullCount)
			if n > remaining {
				n = remaining
			}
			for i := int32(0); i < n; i++ {
				elements = append(elements, &ObjectNullRecord{})
			}
			remaining -= n
			continue
		}
		elements = append(elements, rec)
		remaining--
	}
	return elements, nil
}

// readMemberValues reads one value per entry of types.
func (d *Dispatcher) readMemberValues(c *stream.Cursor, types MemberTypeInfo) ([]MemberValue, error) {
	values := make([]MemberValue, len(types.BinTypes))
	for i, kind := range types.BinTypes {
		v, err := d.readSingleMemberValue(c, kind, types.AdditionalInfo[i])
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// readSingleMemberValue reads one value of the given BinaryTypeKind,
// shared by class member-value reading and BinaryArray element reading.
func (d *Dispatcher) readSingleMemberValue(c *stream.Cursor, kind BinaryTypeKind, additionalInfo any) (MemberValue, error) {
	switch kind {
	case BinaryTypeString, BinaryTypeObject, BinaryTypeStringArray,
		BinaryTypeSystemClass, BinaryTypeObjectArray, BinaryTypePrimitiveArray:
		rec, err := d.Next(c)
		if err != nil {
			return MemberValue{}, err
		}
		return MemberValue{Kind: MemberValueIsRecord, Record: rec}, nil

	case BinaryTypeClass:
		cti, err := readClassTypeInfo(c)
		if err != nil {
			return MemberValue{}, err
		}
		return MemberValue{Kind: MemberValueIsClassType, ClassType: cti}, nil

	case BinaryTypePrimitive:
		primKind, _ := additionalInfo.(PrimitiveKind)
		v, err := ReadPrimitive(c, primKind)
		if err != nil {
			return MemberValue{}, err
		}
		return MemberValue{Kind: MemberValueIsPrimitive, Primitive: v}, nil

	default:
		return MemberValue{}, &ErrBadBinaryTypeKind{Kind: kind}
	}
}

// ErrBadBinaryTypeKind reports a BinaryTypeKind outside the closed
// enumeration.
type ErrBadBinaryTypeKind struct {
	Kind BinaryTypeKind
}

func (e *ErrBadBinaryTypeKind) Error() string {
	return ErrUnsupportedFeature.Error() + ": binary type kind " + e.Kind.String()
}

func (e *ErrBadBinaryTypeKind) Unwrap() error { return ErrUnsupportedFeature }
