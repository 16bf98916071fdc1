package nrbf

import "github.com/zeroed-tech/viewstate-decoder/internal/stream"

// ValueKind discriminates the Value union.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt8
	ValueUint8
	ValueInt16
	ValueUint16
	ValueInt32
	ValueUint32
	ValueInt64
	ValueUint64
	ValueFloat32
	ValueFloat64
	ValueString
	ValueBytes
	ValueOpaque
)

// Value is a decoded primitive value. Exactly one field is meaningful,
// selected by Kind.
type Value struct {
	Kind    ValueKind
	Bool    bool
	Int     int64
	Uint    uint64
	Float32 float32
	Float64 float64
	Str     string
	Bytes   []byte
}

// ReadPrimitive reads a single value of the given PrimitiveKind from c,
// using the wire width and endianness that kind carries.
func ReadPrimitive(c *stream.Cursor, kind PrimitiveKind) (Value, error) {
	switch kind {
	case PrimitiveBoolean:
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueBool, Bool: b != 0}, nil

	case PrimitiveByte:
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueUint8, Uint: uint64(b)}, nil

	case PrimitiveChar:
		// Treated as a raw byte for this decoder
		b, err := c.ReadU8()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueUint8, Uint: uint64(b)}, nil

	case PrimitiveSByte:
		b, err := c.ReadI8()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt8, Int: int64(b)}, nil

	case PrimitiveInt16:
		v, err := c.ReadI16()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt16, Int: int64(v)}, nil

	case PrimitiveUInt16:
		v, err := c.ReadU16()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueUint16, Uint: uint64(v)}, nil

	case PrimitiveInt32:
		v, err := c.ReadI32()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt32, Int: int64(v)}, nil

	case PrimitiveUInt32:
		v, err := c.ReadU32()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueUint32, Uint: uint64(v)}, nil

	case PrimitiveInt64:
		v, err := c.ReadI64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt64, Int: v}, nil

	case PrimitiveUInt64:
		v, err := c.ReadU64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueUint64, Uint: v}, nil

	case PrimitiveTimeSpan:
		// 8 raw bytes, numeric (100ns ticks); stored as a signed 64.
		v, err := c.ReadI64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueInt64, Int: v}, nil

	case PrimitiveDouble:
		v, err := c.ReadF64()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueFloat64, Float64: v}, nil

	case PrimitiveSingle:
		v, err := c.ReadF32()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueFloat32, Float32: v}, nil

	case PrimitiveDecimal:
		// Textual decimal, length-prefixed like any other NRBF string.
		s, err := c.ReadVarString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueString, Str: s}, nil

	case PrimitiveDateTime:
		// 8 raw bytes (64 bits), explicitly not interpreted.
		b, err := c.ReadBytes(8)
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueOpaque, Bytes: b}, nil

	case PrimitiveString:
		s, err := c.ReadVarString()
		if err != nil {
			return Value{}, err
		}
		return Value{Kind: ValueString, Str: s}, nil

	case PrimitiveNull:
		return Value{Kind: ValueNull}, nil

	default:
		return Value{}, &ErrBadPrimitiveKind{Kind: kind}
	}
}

// ErrBadPrimitiveKind reports an unrecognized PrimitiveKind wire value.
type ErrBadPrimitiveKind struct {
	Kind PrimitiveKind
}

func (e *ErrBadPrimitiveKind) Error() string {
	return ErrBadPrimitive.Error() + ": " + e.Kind.String()
}

func (e *ErrBadPrimitiveKind) Unwrap() error { return ErrBadPrimitive }
