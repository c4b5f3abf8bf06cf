package types

import "github.com/redgush/flycatcher/report"

// Layout computes the size and alignment in bytes of a descriptor on a target
// whose word size is wordSize bytes (4 or 8).
func Layout(typ Type, wordSize int) (size int, align int) {
	switch v := typ.(type) {
	case *PrimitiveType:
		switch v.Kind {
		case PrimVoid:
			return 0, 1
		case PrimBool:
			return 1, 1
		case PrimString:
			// pointer and length
			return 2 * wordSize, wordSize
		default:
			size = v.BitWidth(wordSize) / 8
			return size, size
		}
	case *StructType:
		return structLayout(v, wordSize)
	case *FuncType:
		return wordSize, wordSize
	case *DynType:
		// 64 bit shape tag followed by a pointer to the boxed value
		return roundUp(8+wordSize, 8), 8
	}

	report.ICE("layout of unknown descriptor `%s`", typ.Repr())
	return
}

// FieldOffsets returns the byte offset of each field of a struct in canonical
// field order.
func FieldOffsets(st *StructType, wordSize int) []int {
	offsets := make([]int, len(st.Fields))

	offset := 0
	for i, field := range st.Fields {
		fsize, falign := Layout(field.Type, wordSize)
		offset = roundUp(offset, falign)
		offsets[i] = offset
		offset += fsize
	}

	return offsets
}

func structLayout(st *StructType, wordSize int) (int, int) {
	size, align := 0, 1

	for _, field := range st.Fields {
		fsize, falign := Layout(field.Type, wordSize)
		size = roundUp(size, falign) + fsize

		if falign > align {
			align = falign
		}
	}

	return roundUp(size, align), align
}

func roundUp(n, align int) int {
	if align <= 1 {
		return n
	}

	return (n + align - 1) / align * align
}
