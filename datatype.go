package mpi

// DatatypeKind distinguishes the arithmetic family a Datatype belongs to,
// used by the reduction kernel table to pick the right code path.
type DatatypeKind int

const (
	kindInt8 DatatypeKind = iota
	kindUint8
	kindInt16
	kindUint16
	kindInt32
	kindUint32
	kindInt64
	kindUint64
	kindFloat32
	kindFloat64
	kindLongDouble
	kindByte
	kindPacked
	kindBool
	kindComplexFloat
	kindComplexDouble
	kindComplexLongDouble
)

// Datatype is an opaque, value-like descriptor carrying an element size in
// bytes and a kind tag used by reduction kernels. Datatypes are immutable
// and cheap to copy by value.
type Datatype struct {
	kind DatatypeKind
	size int
}

// Size returns the element size in bytes.
func (d Datatype) Size() int { return d.size }

// Predefined datatypes.
var (
	Int8              = Datatype{kindInt8, 1}
	Uint8             = Datatype{kindUint8, 1}
	Int16             = Datatype{kindInt16, 2}
	Uint16            = Datatype{kindUint16, 2}
	Int32             = Datatype{kindInt32, 4}
	Uint32            = Datatype{kindUint32, 4}
	Int64             = Datatype{kindInt64, 8}
	Uint64            = Datatype{kindUint64, 8}
	Float32           = Datatype{kindFloat32, 4}
	Float64           = Datatype{kindFloat64, 8}
	LongDouble        = Datatype{kindLongDouble, 16}
	Byte              = Datatype{kindByte, 1}
	Packed            = Datatype{kindPacked, 1}
	Bool              = Datatype{kindBool, 1}
	ComplexFloat      = Datatype{kindComplexFloat, 8}
	ComplexDouble     = Datatype{kindComplexDouble, 16}
	ComplexLongDouble = Datatype{kindComplexLongDouble, 32}
)
