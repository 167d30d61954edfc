// Package lower translates Go SSA functions (golang.org/x/tools/go/ssa) into
// the integer ir.
//
// Signed integer and boolean values are modelled exactly. Everything else
// (memory, strings, unsigned arithmetic, conversions between widths) becomes
// an opaque value of the right width so that loops surrounding it can still
// be analysed. Calls keep their integer arguments and the callee name.
//
// Parameters of a non-integer type are dropped from the ir parameter list.
package lower

import (
	"fmt"
	"go/constant"
	"go/token"
	"go/types"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"golang.org/x/tools/go/ssa"

	"github.com/nickng/ivsr/instr"
	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
)

const module = "lower"

// UnsupportedError is returned for functions that cannot be lowered at all.
type UnsupportedError struct {
	Func   string
	Pos    token.Position
	Reason string
}

func (e UnsupportedError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s: %s: %s", e.Pos, e.Func, e.Reason)
	}
	return fmt.Sprintf("%s: %s", e.Func, e.Reason)
}

// Lowerer lowers functions, logging the instructions it cannot model.
type Lowerer struct {
	*logger.Logger
}

// New returns a Lowerer that does not log.
func New() *Lowerer {
	return &Lowerer{Logger: logger.Nop().WithModule(module, color.MagentaString)}
}

// SetLogger sets logger for Lowerer.
func (l *Lowerer) SetLogger(lg *logger.Logger) {
	l.Logger = lg.WithModule(module, color.MagentaString)
}

// Function lowers fn with a Lowerer that does not log.
func Function(fn *ssa.Function) (*ir.Func, error) {
	return New().Function(fn)
}

// Function lowers fn. The result is verified before it is returned.
func (l *Lowerer) Function(fn *ssa.Function) (*ir.Func, error) {
	if fn.Blocks == nil {
		return nil, unsupported(fn, "function has no body")
	}
	if fn.TypeParams().Len() > 0 {
		return nil, unsupported(fn, "generic function")
	}
	fl := &funcLowerer{
		Logger: l.Logger,
		fn:     fn,
		b:      ir.NewBuilder(fn.Name()),
		values: make(map[ssa.Value]ir.ValueID),
	}
	fl.EnterFunc(fn)
	for _, blk := range order(fn) {
		fl.b.SetBlock(fl.blocks[blk.Index])
		for _, i := range blk.Instrs {
			instr.Visit(fl, i)
		}
	}
	if err := fl.ExitFunc(fn); err != nil {
		return nil, err
	}
	f := fl.b.Func()
	if err := ir.Verify(f); err != nil {
		return nil, errors.Wrapf(err, "lower %s", fn)
	}
	return f, nil
}

func unsupported(fn *ssa.Function, reason string) UnsupportedError {
	e := UnsupportedError{Func: fn.String(), Reason: reason}
	if prog := fn.Prog; prog != nil && prog.Fset != nil && fn.Pos().IsValid() {
		e.Pos = prog.Fset.Position(fn.Pos())
	}
	return e
}

// order returns the blocks of fn so that every block comes after its
// immediate dominator. Blocks the dominator tree does not cover go last.
func order(fn *ssa.Function) []*ssa.BasicBlock {
	seen := make([]bool, len(fn.Blocks))
	var blocks []*ssa.BasicBlock
	for _, blk := range fn.DomPreorder() {
		seen[blk.Index] = true
		blocks = append(blocks, blk)
	}
	for _, blk := range fn.Blocks {
		if !seen[blk.Index] {
			blocks = append(blocks, blk)
		}
	}
	return blocks
}

// intBits returns the width of t if it is a signed integer or boolean type.
func intBits(t types.Type) (int, bool) {
	basic, ok := t.Underlying().(*types.Basic)
	if !ok {
		return 0, false
	}
	switch basic.Kind() {
	case types.Bool, types.UntypedBool:
		return 1, true
	case types.Int8:
		return 8, true
	case types.Int16:
		return 16, true
	case types.Int32, types.UntypedRune:
		return 32, true
	case types.Int, types.Int64, types.UntypedInt:
		return 64, true
	}
	return 0, false
}

// anyIntBits is intBits extended to unsigned types; used for shift counts.
func anyIntBits(t types.Type) (int, bool) {
	if bits, ok := intBits(t); ok {
		return bits, true
	}
	basic, ok := t.Underlying().(*types.Basic)
	if !ok || basic.Info()&types.IsInteger == 0 {
		return 0, false
	}
	switch basic.Kind() {
	case types.Uint8:
		return 8, true
	case types.Uint16:
		return 16, true
	case types.Uint32:
		return 32, true
	}
	return 64, true
}

func constInt(c *ssa.Const) int64 {
	if c.Value == nil {
		return 0
	}
	if c.Value.Kind() == constant.Bool {
		if constant.BoolVal(c.Value) {
			return 1
		}
		return 0
	}
	k, _ := constant.Int64Val(constant.ToInt(c.Value))
	return k
}
