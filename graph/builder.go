package graph

import (
	"fmt"
	"strconv"

	"github.com/zeroed-tech/viewstate-decoder/internal/nrbf"
)

// rootNodeID is the synthetic id of the graph's ROOT node; it never
// collides with a real NRBF object id, which are always >= 0 for
// producer-assigned objects (negative ids only appear as the default
// "no id" marker on freshly materialized value nodes).
const rootNodeID = -1

// Builder maps each record to a node in a graph rooted at a synthetic
// ROOT node. It resolves id references, tracks libraries and the
// classes they own, and is scoped to a single parse: a nested blob gets
// its own fresh Builder, never sharing ids with the outer one.
type Builder struct {
	Root *ObjectNode

	nodes         map[int32]*ObjectNode
	libraries     map[int32]*ObjectNode
	libOrder      []int32
	systemClasses []*ObjectNode
	rootID        int32
}

// NewBuilder creates an empty graph rooted at a synthetic ROOT node.
func NewBuilder() *Builder {
	return &Builder{
		Root:      &ObjectNode{ID: rootNodeID, Type: "ROOT", resolved: true},
		nodes:     make(map[int32]*ObjectNode),
		libraries: make(map[int32]*ObjectNode),
	}
}

// RootID returns the logical payload root id carried by the
// SerializationHeader, once seen.
func (b *Builder) RootID() int32 { return b.rootID }

// Libraries returns the BinaryLibrary nodes attached under ROOT, in the
// order their records were parsed.
func (b *Builder) Libraries() []*ObjectNode {
	libs := make([]*ObjectNode, len(b.libOrder))
	for i, id := range b.libOrder {
		libs[i] = b.libraries[id]
	}
	return libs
}

// SystemClasses returns the top-level SystemClassWithMembers(AndTypes)
// nodes attached directly under ROOT, in parse order.
func (b *Builder) SystemClasses() []*ObjectNode {
	return append([]*ObjectNode(nil), b.systemClasses...)
}

// nodeFor returns the existing node for id, or creates and indexes an
// unresolved placeholder.
func (b *Builder) nodeFor(id int32) *ObjectNode {
	if n, ok := b.nodes[id]; ok {
		return n
	}
	n := newUnresolvedNode(id)
	b.nodes[id] = n
	return n
}

// nameIfUnset names a shared, id-indexed node the first time it is used
// as a member slot. A node already named (by an earlier member slot, or
// by its own defining declaration) keeps that name: with one ObjectNode
// per id shared across every reference to it, the first context to
// supply a name wins rather than later references clobbering it.
func nameIfUnset(n *ObjectNode, name string) {
	if n.Name == "" {
		n.Name = name
	}
}

// HandleHeader records the RootID named by a SerializationHeader record.
// SerializationHeader has no other graph effect.
func (b *Builder) HandleHeader(h *nrbf.SerializationHeaderRecord) {
	b.rootID = h.RootID
}

// HandleLibrary adds a BinaryLibrary node under ROOT, indexed by id for
// later class attachment. A duplicate library id is fatal.
func (b *Builder) HandleLibrary(lib *nrbf.BinaryLibraryRecord) error {
	if _, exists := b.libraries[lib.LibraryID]; exists {
		return &ErrDuplicateLibraryID{ID: lib.LibraryID}
	}
	n := &ObjectNode{ID: lib.LibraryID, Type: lib.LibraryName, resolved: true}
	b.libraries[lib.LibraryID] = n
	b.libOrder = append(b.libOrder, lib.LibraryID)
	b.Root.Members = append(b.Root.Members, n)
	return nil
}

// HandleTopLevel offers a top-level (directly dispatched, not nested)
// record to the graph. SerializationHeader, BinaryLibrary, and
// MessageEnd are handled by dedicated methods/the caller and must not be
// passed here.
func (b *Builder) HandleTopLevel(rec nrbf.Record) (*ObjectNode, error) {
	n, err := b.nodeForRecord(rec, true)
	if err != nil {
		return nil, err
	}
	switch rec.(type) {
	case *nrbf.SystemClassWithMembersAndTypesRecord, *nrbf.SystemClassWithMembersRecord,
		*nrbf.ClassWithMembersAndTypesRecord:
		// already attached to ROOT/library inside nodeForRecord.
	default:
		// A node that an earlier member slot already reached (and so
		// named) stays reachable through that member; only top-level
		// objects nothing has referenced yet are attached under ROOT.
		if n.Name == "" {
			b.Root.Members = append(b.Root.Members, n)
		}
	}
	return n, nil
}

// nodeForRecord resolves or builds the ObjectNode for any record,
// recursing into nested member/array values. topLevel controls whether a
// SystemClassWithMembersAndTypes gets attached under ROOT ("all
// top-level SystemClassWithMembersAndTypes instances") — nested
// occurrences of the same record type are only ever a member's child.
func (b *Builder) nodeForRecord(rec nrbf.Record, topLevel bool) (*ObjectNode, error) {
	switch r := rec.(type) {
	case *nrbf.MemberReferenceRecord:
		return b.nodeFor(r.IDRef), nil

	case *nrbf.BinaryObjectStringRecord:
		n := b.nodeFor(r.ObjectID)
		n.Type = "String"
		v := nrbf.Value{Kind: nrbf.ValueString, Str: r.Value}
		n.Value = &v
		n.resolved = true
		return n, nil

	case *nrbf.ObjectNullRecord:
		v := nrbf.Value{Kind: nrbf.ValueNull}
		return &ObjectNode{ID: -1, Type: "Null", Value: &v, resolved: true}, nil

	case *nrbf.ObjectNullMultiple256Record:
		// Outside an array this is legal but vacuous; render one
		// null node rather than NullCount of them.
		v := nrbf.Value{Kind: nrbf.ValueNull}
		return &ObjectNode{ID: -1, Type: "Null", Value: &v, resolved: true}, nil

	case *nrbf.MemberPrimitiveTypedRecord:
		v := r.Value
		return &ObjectNode{ID: -1, Type: r.Kind.String(), Value: &v, resolved: true}, nil

	case *nrbf.ClassWithIdRecord:
		n := b.nodeFor(r.ObjectID)
		n.Type = r.Layout.ClassInfo.Name
		n.resolved = true
		members, err := b.materializeMembers(r.Layout.ClassInfo.MemberNames, r.Values)
		if err != nil {
			return nil, err
		}
		n.Members = members
		return n, nil

	case *nrbf.SystemClassWithMembersRecord:
		n := b.nodeFor(r.Info.ObjectID)
		n.Type = r.Info.Name
		n.resolved = true
		if topLevel {
			b.Root.Members = append(b.Root.Members, n)
			b.systemClasses = append(b.systemClasses, n)
		}
		return n, nil

	case *nrbf.SystemClassWithMembersAndTypesRecord:
		n := b.nodeFor(r.Info.ObjectID)
		n.Type = r.Info.Name
		n.resolved = true
		members, err := b.materializeMembers(r.Info.MemberNames, r.Values)
		if err != nil {
			return nil, err
		}
		n.Members = members
		if topLevel {
			b.Root.Members = append(b.Root.Members, n)
			b.systemClasses = append(b.systemClasses, n)
		}
		return n, nil

	case *nrbf.ClassWithMembersAndTypesRecord:
		n := b.nodeFor(r.Info.ObjectID)
		n.Type = r.Info.Name
		n.resolved = true
		members, err := b.materializeMembers(r.Info.MemberNames, r.Values)
		if err != nil {
			return nil, err
		}
		n.Members = members

		lib, ok := b.libraries[r.LibraryID]
		if !ok {
			return nil, &ErrUnknownLibraryID{ID: r.LibraryID}
		}
		lib.Members = append(lib.Members, n)
		return n, nil

	case *nrbf.BinaryArrayRecord:
		return b.nodeForBinaryArray(r)

	case *nrbf.ArraySinglePrimitiveRecord:
		return b.nodeForArraySinglePrimitive(r)

	case *nrbf.ArraySingleObjectRecord:
		return b.nodeForArraySingleObject(r.Info.ObjectID, "Object[]", r.Elements)

	case *nrbf.ArraySingleStringRecord:
		return b.nodeForArraySingleObject(r.Info.ObjectID, "String[]", r.Elements)

	default:
		return nil, fmt.Errorf("%w: record type %T has no graph representation", nrbf.ErrUnsupportedFeature, rec)
	}
}

// materializeMembers builds one child ObjectNode per (name, value) pair.
func (b *Builder) materializeMembers(names []string, values []nrbf.MemberValue) ([]*ObjectNode, error) {
	members := make([]*ObjectNode, len(values))
	for i, v := range values {
		child, err := b.nodeForMemberValue(v)
		if err != nil {
			return nil, err
		}
		name := ""
		if i < len(names) {
			name = names[i]
		}
		nameIfUnset(child, name)
		members[i] = child
	}
	return members, nil
}

func (b *Builder) nodeForMemberValue(v nrbf.MemberValue) (*ObjectNode, error) {
	switch v.Kind {
	case nrbf.MemberValueIsPrimitive:
		val := v.Primitive
		return &ObjectNode{ID: -1, Type: primitiveValueType(val), Value: &val, resolved: true}, nil

	case nrbf.MemberValueIsClassType:
		val := nrbf.Value{Kind: nrbf.ValueString, Str: fmt.Sprintf("%s#%d", v.ClassType.LibraryName, v.ClassType.LibraryID)}
		return &ObjectNode{ID: -1, Type: "ClassTypeInfo", Value: &val, resolved: true}, nil

	case nrbf.MemberValueIsRecord:
		return b.nodeForRecord(v.Record, false)

	default:
		return nil, fmt.Errorf("%w: unknown member value kind", nrbf.ErrUnsupportedFeature)
	}
}

// primitiveValueType names the CLR-ish type to report for a value read
// inline as a class/array member, using the Value's own kind since the
// originating PrimitiveKind is not retained past ReadPrimitive.
func primitiveValueType(v nrbf.Value) string {
	switch v.Kind {
	case nrbf.ValueNull:
		return "Null"
	case nrbf.ValueBool:
		return "Boolean"
	case nrbf.ValueInt8:
		return "SByte"
	case nrbf.ValueUint8:
		return "Byte"
	case nrbf.ValueInt16:
		return "Int16"
	case nrbf.ValueUint16:
		return "UInt16"
	case nrbf.ValueInt32:
		return "Int32"
	case nrbf.ValueUint32:
		return "UInt32"
	case nrbf.ValueInt64:
		return "Int64"
	case nrbf.ValueUint64:
		return "UInt64"
	case nrbf.ValueFloat32:
		return "Single"
	case nrbf.ValueFloat64:
		return "Double"
	case nrbf.ValueString:
		return "String"
	case nrbf.ValueBytes:
		return "Byte[]"
	case nrbf.ValueOpaque:
		return "DateTime"
	default:
		return "Unknown"
	}
}

func (b *Builder) nodeForBinaryArray(r *nrbf.BinaryArrayRecord) (*ObjectNode, error) {
	n := b.nodeFor(r.ObjectID)
	n.Type = fmt.Sprintf("%s[]", r.ElementType)
	n.resolved = true

	members := make([]*ObjectNode, len(r.Values))
	for i, v := range r.Values {
		child, err := b.nodeForMemberValue(v)
		if err != nil {
			return nil, err
		}
		nameIfUnset(child, strconv.Itoa(i))
		members[i] = child
	}
	n.Members = members
	return n, nil
}

func (b *Builder) nodeForArraySinglePrimitive(r *nrbf.ArraySinglePrimitiveRecord) (*ObjectNode, error) {
	n := b.nodeFor(r.Info.ObjectID)
	n.Type = fmt.Sprintf("%s[]", r.Kind)
	n.resolved = true

	if r.Kind == nrbf.PrimitiveByte {
		v := nrbf.Value{Kind: nrbf.ValueBytes, Bytes: r.Bytes()}
		n.Value = &v
		return n, nil
	}

	members := make([]*ObjectNode, len(r.Elements))
	for i, v := range r.Elements {
		val := v
		members[i] = &ObjectNode{ID: -1, Name: strconv.Itoa(i), Type: primitiveValueType(val), Value: &val, resolved: true}
	}
	n.Members = members
	return n, nil
}

func (b *Builder) nodeForArraySingleObject(objectID int32, typeName string, elements []nrbf.Record) (*ObjectNode, error) {
	n := b.nodeFor(objectID)
	n.Type = typeName
	n.resolved = true

	members := make([]*ObjectNode, len(elements))
	for i, elem := range elements {
		child, err := b.nodeForRecord(elem, false)
		if err != nil {
			return nil, err
		}
		members[i] = child
		if child.Name == "" {
			child.Name = strconv.Itoa(i)
		}
	}
	n.Members = members
	return n, nil
}

// ErrUnknownLibraryID reports a ClassWithMembersAndTypes declaring a
// libraryId that no BinaryLibrary record has introduced.
type ErrUnknownLibraryID struct {
	ID int32
}

func (e *ErrUnknownLibraryID) Error() string {
	return nrbf.ErrUnknownLibrary.Error() + ": " + strconv.Itoa(int(e.ID))
}

func (e *ErrUnknownLibraryID) Unwrap() error { return nrbf.ErrUnknownLibrary }

// ErrDuplicateLibraryID reports a second BinaryLibrary record declaring
// an id already registered, treated as a producer bug.
type ErrDuplicateLibraryID struct {
	ID int32
}

func (e *ErrDuplicateLibraryID) Error() string {
	return nrbf.ErrDuplicateLibrary.Error() + ": " + strconv.Itoa(int(e.ID))
}

func (e *ErrDuplicateLibraryID) Unwrap() error { return nrbf.ErrDuplicateLibrary }
