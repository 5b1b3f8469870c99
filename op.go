package mpi

import (
	"encoding/binary"
	"math"
)

// OpKind identifies a commutative-associative reduction kernel.
type OpKind int

const (
	OpMax OpKind = iota
	OpMin
	OpSum
	OpProduct
	OpLogicalAnd
	OpLogicalOr
	OpLogicalXor
	OpBitwiseAnd
	OpBitwiseOr
	OpBitwiseXor
	OpMinLoc
	OpMaxLoc
)

func (k OpKind) String() string {
	switch k {
	case OpMax:
		return "max"
	case OpMin:
		return "min"
	case OpSum:
		return "sum"
	case OpProduct:
		return "product"
	case OpLogicalAnd:
		return "logical-and"
	case OpLogicalOr:
		return "logical-or"
	case OpLogicalXor:
		return "logical-xor"
	case OpBitwiseAnd:
		return "bitwise-and"
	case OpBitwiseOr:
		return "bitwise-or"
	case OpBitwiseXor:
		return "bitwise-xor"
	case OpMinLoc:
		return "minloc"
	case OpMaxLoc:
		return "maxloc"
	default:
		return "unknown-op"
	}
}

// Op is an opaque descriptor for a reduction operation.
type Op struct {
	kind OpKind
}

var (
	Max        = Op{OpMax}
	Min        = Op{OpMin}
	Sum        = Op{OpSum}
	Product    = Op{OpProduct}
	LogicalAnd = Op{OpLogicalAnd}
	LogicalOr  = Op{OpLogicalOr}
	LogicalXor = Op{OpLogicalXor}
	BitwiseAnd = Op{OpBitwiseAnd}
	BitwiseOr  = Op{OpBitwiseOr}
	BitwiseXor = Op{OpBitwiseXor}
	MinLoc     = Op{OpMinLoc}
	MaxLoc     = Op{OpMaxLoc}
)

// kernel folds src into dst in place, both interpreted as count elements of
// the given datatype. It returns an error (invalid-datatype) when the
// (op, datatype) pairing is unsupported.
type kernel func(dst, src []byte, count int) error

var kernelTable = map[OpKind]map[DatatypeKind]kernel{
	OpSum: {
		kindInt32:   elementwiseInt32(func(a, b int32) int32 { return a + b }),
		kindUint32:  elementwiseUint32(func(a, b uint32) uint32 { return a + b }),
		kindInt64:   elementwiseInt64(func(a, b int64) int64 { return a + b }),
		kindUint64:  elementwiseUint64(func(a, b uint64) uint64 { return a + b }),
		kindFloat32: elementwiseFloat32(func(a, b float32) float32 { return a + b }),
		kindFloat64: elementwiseFloat64(func(a, b float64) float64 { return a + b }),
	},
	OpProduct: {
		kindInt32:   elementwiseInt32(func(a, b int32) int32 { return a * b }),
		kindUint32:  elementwiseUint32(func(a, b uint32) uint32 { return a * b }),
		kindInt64:   elementwiseInt64(func(a, b int64) int64 { return a * b }),
		kindUint64:  elementwiseUint64(func(a, b uint64) uint64 { return a * b }),
		kindFloat32: elementwiseFloat32(func(a, b float32) float32 { return a * b }),
		kindFloat64: elementwiseFloat64(func(a, b float64) float64 { return a * b }),
	},
	OpMax: {
		kindInt32:   elementwiseInt32(func(a, b int32) int32 { return maxT(a, b) }),
		kindUint32:  elementwiseUint32(func(a, b uint32) uint32 { return maxT(a, b) }),
		kindInt64:   elementwiseInt64(func(a, b int64) int64 { return maxT(a, b) }),
		kindUint64:  elementwiseUint64(func(a, b uint64) uint64 { return maxT(a, b) }),
		kindFloat32: elementwiseFloat32(func(a, b float32) float32 { return maxT(a, b) }),
		kindFloat64: elementwiseFloat64(func(a, b float64) float64 { return maxT(a, b) }),
	},
	OpMin: {
		kindInt32:   elementwiseInt32(func(a, b int32) int32 { return minT(a, b) }),
		kindUint32:  elementwiseUint32(func(a, b uint32) uint32 { return minT(a, b) }),
		kindInt64:   elementwiseInt64(func(a, b int64) int64 { return minT(a, b) }),
		kindUint64:  elementwiseUint64(func(a, b uint64) uint64 { return minT(a, b) }),
		kindFloat32: elementwiseFloat32(func(a, b float32) float32 { return minT(a, b) }),
		kindFloat64: elementwiseFloat64(func(a, b float64) float64 { return minT(a, b) }),
	},
	OpBitwiseAnd: {
		kindInt32:  elementwiseInt32(func(a, b int32) int32 { return a & b }),
		kindUint32: elementwiseUint32(func(a, b uint32) uint32 { return a & b }),
		kindInt64:  elementwiseInt64(func(a, b int64) int64 { return a & b }),
		kindUint64: elementwiseUint64(func(a, b uint64) uint64 { return a & b }),
		kindBool:   elementwiseBool(func(a, b bool) bool { return a && b }),
	},
	OpBitwiseOr: {
		kindInt32:  elementwiseInt32(func(a, b int32) int32 { return a | b }),
		kindUint32: elementwiseUint32(func(a, b uint32) uint32 { return a | b }),
		kindInt64:  elementwiseInt64(func(a, b int64) int64 { return a | b }),
		kindUint64: elementwiseUint64(func(a, b uint64) uint64 { return a | b }),
		kindBool:   elementwiseBool(func(a, b bool) bool { return a || b }),
	},
	OpBitwiseXor: {
		kindInt32:  elementwiseInt32(func(a, b int32) int32 { return a ^ b }),
		kindUint32: elementwiseUint32(func(a, b uint32) uint32 { return a ^ b }),
		kindInt64:  elementwiseInt64(func(a, b int64) int64 { return a ^ b }),
		kindUint64: elementwiseUint64(func(a, b uint64) uint64 { return a ^ b }),
		kindBool:   elementwiseBool(func(a, b bool) bool { return a != b }),
	},
	OpLogicalAnd: {
		kindBool: elementwiseBool(func(a, b bool) bool { return a && b }),
	},
	OpLogicalOr: {
		kindBool: elementwiseBool(func(a, b bool) bool { return a || b }),
	},
	OpLogicalXor: {
		kindBool: elementwiseBool(func(a, b bool) bool { return a != b }),
	},
	OpMinLoc: {
		kindInt32:   minlocInt32,
		kindFloat64: minlocFloat64,
	},
	OpMaxLoc: {
		kindInt32:   maxlocInt32,
		kindFloat64: maxlocFloat64,
	},
}

// reduceInto folds src into dst, both holding count elements of dtype,
// using op. It fails with KindInvalidDatatype when the pairing is
// unsupported.
func reduceInto(op Op, dtype Datatype, dst, src []byte, count int) error {
	byKind, ok := kernelTable[op.kind]
	if !ok {
		return newError(KindInvalidDatatype, "reduce", op.kind.String()+" has no kernels", nil)
	}
	fn, ok := byKind[dtype.kind]
	if !ok {
		return newError(KindInvalidDatatype, "reduce", op.kind.String()+" unsupported for this datatype", nil)
	}
	return fn(dst, src, count)
}

// Identity returns the identity element of op for one element of dtype:
// the value e for which reduceInto(op, dtype, x, e, 1) leaves x
// unchanged. Exscan uses it to give rank 0 a defined result instead of
// leaving its recvbuf untouched. It fails with KindInvalidDatatype for
// (op, datatype) pairings with no kernel (see reduceInto) or no
// well-defined identity (MinLoc/MaxLoc: there is no index that is
// identity-like across every rank's contribution).
func Identity(op Op, dtype Datatype) ([]byte, error) {
	buf := make([]byte, dtype.Size())
	switch op.kind {
	case OpSum, OpBitwiseOr, OpBitwiseXor, OpLogicalOr, OpLogicalXor:
		if _, err := zeroIdentityCheck(op, dtype); err != nil {
			return nil, err
		}
		return buf, nil // the zero value of every supported kind
	case OpProduct:
		return oneIdentity(dtype)
	case OpBitwiseAnd:
		return allOnesIdentity(dtype)
	case OpLogicalAnd:
		if dtype.kind != kindBool {
			return nil, newError(KindInvalidDatatype, "Identity", "logical-and identity requires Bool", nil)
		}
		buf[0] = 1
		return buf, nil
	case OpMax:
		return extremeIdentity(dtype, true)
	case OpMin:
		return extremeIdentity(dtype, false)
	default:
		return nil, newError(KindInvalidDatatype, "Identity", op.kind.String()+" has no identity element", nil)
	}
}

// identityBuffer tiles op's identity element count times, for seeding an
// accumulator of count elements in one allocation.
func identityBuffer(op Op, dtype Datatype, count int) ([]byte, error) {
	elem, err := Identity(op, dtype)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, count*dtype.Size())
	for i := 0; i < count; i++ {
		copy(buf[i*dtype.Size():], elem)
	}
	return buf, nil
}

func zeroIdentityCheck(op Op, dtype Datatype) ([]byte, error) {
	if _, ok := kernelTable[op.kind][dtype.kind]; !ok {
		return nil, newError(KindInvalidDatatype, "Identity", op.kind.String()+" unsupported for this datatype", nil)
	}
	return nil, nil
}

func oneIdentity(dtype Datatype) ([]byte, error) {
	buf := make([]byte, dtype.Size())
	switch dtype.kind {
	case kindInt32:
		binary.LittleEndian.PutUint32(buf, uint32(int32(1)))
	case kindUint32:
		binary.LittleEndian.PutUint32(buf, 1)
	case kindInt64:
		binary.LittleEndian.PutUint64(buf, uint64(int64(1)))
	case kindUint64:
		binary.LittleEndian.PutUint64(buf, 1)
	case kindFloat32:
		binary.LittleEndian.PutUint32(buf, math.Float32bits(1))
	case kindFloat64:
		binary.LittleEndian.PutUint64(buf, math.Float64bits(1))
	default:
		return nil, newError(KindInvalidDatatype, "Identity", "product unsupported for this datatype", nil)
	}
	return buf, nil
}

func allOnesIdentity(dtype Datatype) ([]byte, error) {
	buf := make([]byte, dtype.Size())
	switch dtype.kind {
	case kindInt32, kindUint32:
		binary.LittleEndian.PutUint32(buf, 0xFFFFFFFF)
	case kindInt64, kindUint64:
		binary.LittleEndian.PutUint64(buf, 0xFFFFFFFFFFFFFFFF)
	case kindBool:
		buf[0] = 1
	default:
		return nil, newError(KindInvalidDatatype, "Identity", "bitwise-and unsupported for this datatype", nil)
	}
	return buf, nil
}

// extremeIdentity returns the identity for Max (wantMin=true: the
// smallest representable value, so any contribution wins) or Min
// (wantMin=false: the largest representable value).
func extremeIdentity(dtype Datatype, wantMin bool) ([]byte, error) {
	buf := make([]byte, dtype.Size())
	switch dtype.kind {
	case kindInt32:
		v := int32(math.MaxInt32)
		if wantMin {
			v = math.MinInt32
		}
		binary.LittleEndian.PutUint32(buf, uint32(v))
	case kindUint32:
		v := uint32(math.MaxUint32)
		if wantMin {
			v = 0
		}
		binary.LittleEndian.PutUint32(buf, v)
	case kindInt64:
		v := int64(math.MaxInt64)
		if wantMin {
			v = math.MinInt64
		}
		binary.LittleEndian.PutUint64(buf, uint64(v))
	case kindUint64:
		v := uint64(math.MaxUint64)
		if wantMin {
			v = 0
		}
		binary.LittleEndian.PutUint64(buf, v)
	case kindFloat32:
		v := math.Inf(-1)
		if !wantMin {
			v = math.Inf(1)
		}
		binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(v)))
	case kindFloat64:
		v := math.Inf(-1)
		if !wantMin {
			v = math.Inf(1)
		}
		binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
	default:
		return nil, newError(KindInvalidDatatype, "Identity", "max/min unsupported for this datatype", nil)
	}
	return buf, nil
}

func maxT[T int32 | uint32 | int64 | uint64 | float32 | float64](a, b T) T {
	if a > b {
		return a
	}
	return b
}

func minT[T int32 | uint32 | int64 | uint64 | float32 | float64](a, b T) T {
	if a < b {
		return a
	}
	return b
}

func elementwiseInt32(f func(a, b int32) int32) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 4
			a := int32(binary.LittleEndian.Uint32(dst[off:]))
			b := int32(binary.LittleEndian.Uint32(src[off:]))
			binary.LittleEndian.PutUint32(dst[off:], uint32(f(a, b)))
		}
		return nil
	}
}

func elementwiseUint32(f func(a, b uint32) uint32) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 4
			a := binary.LittleEndian.Uint32(dst[off:])
			b := binary.LittleEndian.Uint32(src[off:])
			binary.LittleEndian.PutUint32(dst[off:], f(a, b))
		}
		return nil
	}
}

func elementwiseInt64(f func(a, b int64) int64) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 8
			a := int64(binary.LittleEndian.Uint64(dst[off:]))
			b := int64(binary.LittleEndian.Uint64(src[off:]))
			binary.LittleEndian.PutUint64(dst[off:], uint64(f(a, b)))
		}
		return nil
	}
}

func elementwiseUint64(f func(a, b uint64) uint64) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 8
			a := binary.LittleEndian.Uint64(dst[off:])
			b := binary.LittleEndian.Uint64(src[off:])
			binary.LittleEndian.PutUint64(dst[off:], f(a, b))
		}
		return nil
	}
}

func elementwiseFloat32(f func(a, b float32) float32) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 4
			a := math.Float32frombits(binary.LittleEndian.Uint32(dst[off:]))
			b := math.Float32frombits(binary.LittleEndian.Uint32(src[off:]))
			binary.LittleEndian.PutUint32(dst[off:], math.Float32bits(f(a, b)))
		}
		return nil
	}
}

func elementwiseFloat64(f func(a, b float64) float64) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			off := i * 8
			a := math.Float64frombits(binary.LittleEndian.Uint64(dst[off:]))
			b := math.Float64frombits(binary.LittleEndian.Uint64(src[off:]))
			binary.LittleEndian.PutUint64(dst[off:], math.Float64bits(f(a, b)))
		}
		return nil
	}
}

func elementwiseBool(f func(a, b bool) bool) kernel {
	return func(dst, src []byte, count int) error {
		for i := 0; i < count; i++ {
			a := dst[i] != 0
			b := src[i] != 0
			if f(a, b) {
				dst[i] = 1
			} else {
				dst[i] = 0
			}
		}
		return nil
	}
}

// minloc/maxloc operate on pairs (value, index int32); each element is
// valueSize+4 bytes wide, count is the number of pairs.
func minlocInt32(dst, src []byte, count int) error { return locReduce(dst, src, count, 4, true, false) }
func maxlocInt32(dst, src []byte, count int) error { return locReduce(dst, src, count, 4, false, false) }
func minlocFloat64(dst, src []byte, count int) error {
	return locReduce(dst, src, count, 8, true, true)
}
func maxlocFloat64(dst, src []byte, count int) error {
	return locReduce(dst, src, count, 8, false, true)
}

func locReduce(dst, src []byte, count, valSize int, wantMin, isFloat bool) error {
	stride := valSize + 4
	for i := 0; i < count; i++ {
		off := i * stride
		var better bool
		if isFloat {
			dv := math.Float64frombits(binary.LittleEndian.Uint64(dst[off:]))
			sv := math.Float64frombits(binary.LittleEndian.Uint64(src[off:]))
			better = sv < dv
			if !wantMin {
				better = sv > dv
			}
		} else {
			dv := int32(binary.LittleEndian.Uint32(dst[off:]))
			sv := int32(binary.LittleEndian.Uint32(src[off:]))
			better = sv < dv
			if !wantMin {
				better = sv > dv
			}
		}
		if better {
			copy(dst[off:off+stride], src[off:off+stride])
		}
	}
	return nil
}
