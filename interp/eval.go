package interp

import (
	"github.com/pkg/errors"

	"github.com/nickng/ivsr/ir"
)

// Eval applies a binary operation to x and y as integers of the given width.
// Comparisons return 1 or 0.
func Eval(op ir.Op, bits int, x, y int64) (int64, error) {
	var r int64
	switch op {
	case ir.OpAdd:
		r = x + y
	case ir.OpSub:
		r = x - y
	case ir.OpMul:
		r = x * y
	case ir.OpDiv, ir.OpRem:
		if y == 0 {
			return 0, ErrDivByZero
		}
		if op == ir.OpDiv {
			r = x / y
		} else {
			r = x % y
		}
	case ir.OpShl:
		if uint64(y) >= uint64(bits) {
			r = 0
		} else {
			r = x << uint(y)
		}
	case ir.OpShr:
		if uint64(y) >= uint64(bits) {
			y = int64(bits - 1)
		}
		r = x >> uint(y)
	case ir.OpUShr:
		if uint64(y) >= uint64(bits) {
			r = 0
		} else {
			r = int64(unsigned(bits, x) >> uint(y))
		}
	case ir.OpAnd:
		r = x & y
	case ir.OpOr:
		r = x | y
	case ir.OpXor:
		r = x ^ y
	case ir.OpEq:
		return b2i(x == y), nil
	case ir.OpNe:
		return b2i(x != y), nil
	case ir.OpLt:
		return b2i(x < y), nil
	case ir.OpLe:
		return b2i(x <= y), nil
	case ir.OpGt:
		return b2i(x > y), nil
	case ir.OpGe:
		return b2i(x >= y), nil
	default:
		return 0, errors.Errorf("%s is not a binary operation", op)
	}
	return ir.Truncate(bits, r), nil
}

// unsigned returns the bits of x as an unsigned integer of the given width.
func unsigned(bits int, x int64) uint64 {
	if bits >= 64 || bits <= 0 {
		return uint64(x)
	}
	return uint64(x) & (1<<uint(bits) - 1)
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
