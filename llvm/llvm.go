// Package llvm translates LLVM IR modules, as parsed by github.com/llir/llvm,
// into the integer ir.
//
// The input is expected in SSA form with phis, for example the output of
//
//	clang -O1 -Xclang -disable-llvm-passes -S -emit-llvm x.c
//	opt -passes=mem2reg -S x.ll
//
// Integer arithmetic with signed semantics, icmp with signed predicates, phi,
// call, br and ret are translated. Other instructions producing a value
// become opaque values; instructions without a result are dropped.
package llvm

import (
	"fmt"
	"strings"

	"github.com/llir/llvm/asm"
	llir "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/nickng/ivsr/ir"
)

// UnsupportedError is returned for functions that cannot be translated.
type UnsupportedError struct {
	Func   string
	Reason string
}

func (e UnsupportedError) Error() string {
	return fmt.Sprintf("@%s: %s", e.Func, e.Reason)
}

// ParseFile parses the LLVM IR assembly file at path and translates it.
func ParseFile(path string) ([]*ir.Func, error) {
	m, err := asm.ParseFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse %s", path)
	}
	return Module(m)
}

// Module translates the function definitions of m. Declarations are skipped.
// Functions that fail to translate are left out of the result and their
// errors are combined.
func Module(m *llir.Module) ([]*ir.Func, error) {
	var (
		funcs []*ir.Func
		err   error
	)
	for _, f := range m.Funcs {
		if len(f.Blocks) == 0 {
			continue
		}
		fn, ferr := Func(f)
		if ferr != nil {
			err = multierr.Append(err, ferr)
			continue
		}
		funcs = append(funcs, fn)
	}
	return funcs, err
}

// Func translates a single function definition. The result is verified.
func Func(f *llir.Func) (*ir.Func, error) {
	t := &translator{
		f:      f,
		b:      ir.NewBuilder(f.Name()),
		blocks: make(map[*llir.Block]*ir.Block),
		values: make(map[value.Value]ir.ValueID),
	}
	if err := t.translate(); err != nil {
		return nil, err
	}
	fn := t.b.Func()
	if err := ir.Verify(fn); err != nil {
		return nil, errors.Wrapf(err, "translate @%s", f.Name())
	}
	return fn, nil
}

// intBits returns the width of t if it is an integer type the ir can hold.
func intBits(t types.Type) (int, bool) {
	it, ok := t.(*types.IntType)
	if !ok {
		return 0, false
	}
	switch it.BitSize {
	case 1, 8, 16, 32, 64:
		return int(it.BitSize), true
	}
	return 0, false
}

// block returns v as a basic block. Branch targets and phi predecessors are
// typed as values by the parser.
func block(v interface{}) *llir.Block {
	b, _ := v.(*llir.Block)
	return b
}

// succs returns the successors of blk in branch order.
func succs(blk *llir.Block) []*llir.Block {
	switch term := blk.Term.(type) {
	case *llir.TermBr:
		return []*llir.Block{block(term.Target)}
	case *llir.TermCondBr:
		return []*llir.Block{block(term.TargetTrue), block(term.TargetFalse)}
	}
	return nil
}

// reversePostorder returns the blocks of f reachable from the entry in
// reverse postorder, so that definitions come before their uses outside of
// phis.
func reversePostorder(f *llir.Func) []*llir.Block {
	visited := make(map[*llir.Block]bool)
	var post []*llir.Block
	var visit func(b *llir.Block)
	visit = func(b *llir.Block) {
		visited[b] = true
		for _, s := range succs(b) {
			if s != nil && !visited[s] {
				visit(s)
			}
		}
		post = append(post, b)
	}
	visit(f.Blocks[0])
	rpo := make([]*llir.Block, len(post))
	for i, b := range post {
		rpo[len(post)-1-i] = b
	}
	return rpo
}

func calleeName(v value.Value) string {
	if f, ok := v.(*llir.Func); ok {
		return f.Name()
	}
	return strings.TrimPrefix(v.Ident(), "@")
}

var icmpOps = map[enum.IPred]ir.Op{
	enum.IPredEQ:  ir.OpEq,
	enum.IPredNE:  ir.OpNe,
	enum.IPredSLT: ir.OpLt,
	enum.IPredSLE: ir.OpLe,
	enum.IPredSGT: ir.OpGt,
	enum.IPredSGE: ir.OpGe,
}

func constInt(c constant.Constant) (int64, bool) {
	switch c := c.(type) {
	case *constant.Int:
		if c.X.IsInt64() {
			return c.X.Int64(), true
		}
		if c.X.IsUint64() {
			return int64(c.X.Uint64()), true
		}
	case *constant.Undef:
		return 0, true
	}
	return 0, false
}
