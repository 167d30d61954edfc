package ir

import "fmt"

// Op is the operation performed by a Value.
type Op int

const (
	OpInvalid Op = iota

	OpConst  // Integer literal in AuxInt.
	OpParam  // Function parameter, index in AuxInt.
	OpPhi    // Merge node, Args[i] flows in from Edges[i].
	OpOpaque // Value the frontend could not model.

	// Binary arithmetic.
	OpAdd
	OpSub
	OpMul
	OpDiv // Signed, truncated towards zero.
	OpRem // Signed, sign of the dividend.
	OpShl
	OpShr  // Arithmetic shift right.
	OpUShr // Logical shift right.
	OpAnd
	OpOr
	OpXor

	// Comparisons produce a 1-bit 0/1.
	OpEq
	OpNe
	OpLt
	OpLe
	OpGt
	OpGe

	OpCall // Side effect, callee name in Aux.

	// Terminators.
	OpJump   // goto Succs[0]
	OpIf     // if Args[0] goto Succs[0] else Succs[1]
	OpReturn // return Args...
)

var opNames = [...]string{
	OpInvalid: "invalid",
	OpConst:   "const",
	OpParam:   "param",
	OpPhi:     "phi",
	OpOpaque:  "opaque",
	OpAdd:     "add",
	OpSub:     "sub",
	OpMul:     "mul",
	OpDiv:     "div",
	OpRem:     "rem",
	OpShl:     "shl",
	OpShr:     "shr",
	OpUShr:    "ushr",
	OpAnd:     "and",
	OpOr:      "or",
	OpXor:     "xor",
	OpEq:      "eq",
	OpNe:      "ne",
	OpLt:      "lt",
	OpLe:      "le",
	OpGt:      "gt",
	OpGe:      "ge",
	OpCall:    "call",
	OpJump:    "jump",
	OpIf:      "if",
	OpReturn:  "return",
}

func (op Op) String() string {
	if op >= 0 && int(op) < len(opNames) {
		return opNames[op]
	}
	return fmt.Sprintf("op(%d)", int(op))
}

// IsBinary returns true if op takes exactly two operands and produces a value.
func (op Op) IsBinary() bool {
	return op >= OpAdd && op <= OpGe
}

// IsArith returns true for the binary operations producing an integer
// of the operand width (i.e. not a comparison).
func (op Op) IsArith() bool {
	return op >= OpAdd && op <= OpXor
}

// IsCompare returns true for comparisons.
func (op Op) IsCompare() bool {
	return op >= OpEq && op <= OpGe
}

// IsCommutative returns true if the operands of op can be swapped.
func (op Op) IsCommutative() bool {
	switch op {
	case OpAdd, OpMul, OpAnd, OpOr, OpXor, OpEq, OpNe:
		return true
	}
	return false
}

// IsTerminator returns true if op ends a block.
func (op Op) IsTerminator() bool {
	return op == OpJump || op == OpIf || op == OpReturn
}

// HasSideEffects returns true if a Value of op must be kept even when its
// result is never used.
func (op Op) HasSideEffects() bool {
	switch op {
	case OpCall, OpJump, OpIf, OpReturn, OpParam:
		return true
	}
	return false
}
