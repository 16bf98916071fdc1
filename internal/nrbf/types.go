package nrbf

import "github.com/zeroed-tech/viewstate-decoder/internal/stream"

// ClassInfo names a class and its member layout.
type ClassInfo struct {
	ObjectID    int32
	Name        string
	MemberCount int32
	MemberNames []string
}

func readClassInfo(c *stream.Cursor) (ClassInfo, error) {
	var info ClassInfo
	var err error

	id, err := c.ReadI32()
	if err != nil {
		return info, err
	}
	info.ObjectID = id

	info.Name, err = c.ReadVarString()
	if err != nil {
		return info, err
	}

	count, err := c.ReadI32()
	if err != nil {
		return info, err
	}
	info.MemberCount = count

	info.MemberNames = make([]string, count)
	for i := int32(0); i < count; i++ {
		info.MemberNames[i], err = c.ReadVarString()
		if err != nil {
			return info, err
		}
	}

	return info, nil
}

// ClassTypeInfo names the library that owns a Class-typed member.
type ClassTypeInfo struct {
	LibraryName string
	LibraryID   int32
}

func readClassTypeInfo(c *stream.Cursor) (ClassTypeInfo, error) {
	var info ClassTypeInfo
	var err error

	info.LibraryName, err = c.ReadVarString()
	if err != nil {
		return info, err
	}

	info.LibraryID, err = c.ReadI32()
	if err != nil {
		return info, err
	}

	return info, nil
}

// MemberTypeInfo holds, for each of a class's (or array's) members, the
// BinaryTypeKind and the kind-dependent additional info: a string for
// SystemClass, a ClassTypeInfo for Class, a PrimitiveKind for
// Primitive/PrimitiveArray, and nothing otherwise.
type MemberTypeInfo struct {
	BinTypes       []BinaryTypeKind
	AdditionalInfo []any
}

func readMemberTypeInfo(c *stream.Cursor, count int32) (MemberTypeInfo, error) {
	info := MemberTypeInfo{
		BinTypes:       make([]BinaryTypeKind, count),
		AdditionalInfo: make([]any, count),
	}

	for i := int32(0); i < count; i++ {
		raw, err := c.ReadU8()
		if err != nil {
			return info, err
		}
		info.BinTypes[i] = BinaryTypeKind(raw)
	}

	for i := int32(0); i < count; i++ {
		ai, err := readAdditionalInfo(c, info.BinTypes[i])
		if err != nil {
			return info, err
		}
		info.AdditionalInfo[i] = ai
	}

	return info, nil
}

// readAdditionalInfo reads the kind-dependent additional-info field shared
// by MemberTypeInfo and BinaryArray's element type.
func readAdditionalInfo(c *stream.Cursor, kind BinaryTypeKind) (any, error) {
	switch kind {
	case BinaryTypeSystemClass:
		name, err := c.ReadVarString()
		if err != nil {
			return nil, err
		}
		return name, nil

	case BinaryTypeClass:
		cti, err := readClassTypeInfo(c)
		if err != nil {
			return nil, err
		}
		return cti, nil

	case BinaryTypePrimitive, BinaryTypePrimitiveArray:
		raw, err := c.ReadU8()
		if err != nil {
			return nil, err
		}
		return PrimitiveKind(raw), nil

	default:
		return nil, nil
	}
}

// ArrayInfo is the common id+length header shared by every array record.
// Length must be non-negative.
type ArrayInfo struct {
	ObjectID int32
	Length   int32
}

func readArrayInfo(c *stream.Cursor) (ArrayInfo, error) {
	var info ArrayInfo
	var err error

	info.ObjectID, err = c.ReadI32()
	if err != nil {
		return info, err
	}

	info.Length, err = c.ReadI32()
	if err != nil {
		return info, err
	}

	return info, nil
}

// Layout is a reusable (ClassInfo, MemberTypeInfo) pair keyed by object id
// in the ClassLayoutRegistry, so a later ClassWithId can replay it.
type Layout struct {
	ClassInfo      ClassInfo
	MemberTypeInfo MemberTypeInfo
}
