// Package interp executes ir functions.
//
// Integer arithmetic wraps at the width of each value, with Go semantics for
// division, remainder and shifts. Calls are not executed: each call is
// recorded in the Trace with its arguments, and its result is unknown.
package interp

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/nickng/ivsr/block"
	"github.com/nickng/ivsr/ir"
)

var (
	ErrStepLimit = errors.New("interp: step limit exceeded")
	ErrOpaque    = errors.New("interp: value is opaque")
	ErrDivByZero = errors.New("interp: integer divide by zero")
)

// DefaultMaxSteps bounds the number of instructions executed by Run.
const DefaultMaxSteps = 1 << 20

// Call is a call executed by the function.
type Call struct {
	Callee string
	Args   []int64
}

func (c Call) String() string {
	return fmt.Sprintf("%s%v", c.Callee, c.Args)
}

// Trace is the observable behaviour of one execution.
type Trace struct {
	Calls   []Call
	Return  []int64
	Watched map[ir.ValueID][]int64 // Values of watched instructions, in execution order.
	Steps   int
}

// Option configures Run.
type Option func(*machine)

// MaxSteps sets the maximum number of instructions executed.
func MaxSteps(n int) Option {
	return func(m *machine) { m.maxSteps = n }
}

// Watch records the value of each given instruction every time it executes.
func Watch(ids ...ir.ValueID) Option {
	return func(m *machine) {
		for _, id := range ids {
			m.watch[id] = true
		}
	}
}

// machine is a block.Analyser that evaluates the blocks it enters.
type machine struct {
	fn       *ir.Func
	vals     map[ir.ValueID]int64
	watch    map[ir.ValueID]bool
	maxSteps int
	trace    *Trace

	curr, prev *ir.Block
	err        error
}

var _ block.Analyser = (*machine)(nil)

// Run executes fn with the given arguments.
func Run(fn *ir.Func, args []int64, opts ...Option) (*Trace, error) {
	if len(args) != len(fn.Params) {
		return nil, errors.Errorf("interp: %s takes %d arguments, got %d", fn.Name, len(fn.Params), len(args))
	}
	m := &machine{
		fn:       fn,
		vals:     make(map[ir.ValueID]int64),
		watch:    make(map[ir.ValueID]bool),
		maxSteps: DefaultMaxSteps,
		trace:    &Trace{Watched: make(map[ir.ValueID][]int64)},
	}
	for _, opt := range opts {
		opt(m)
	}
	for i, p := range fn.Params {
		m.vals[p] = ir.Truncate(fn.Value(p).Bits, args[i])
	}
	if fn.Entry() == nil {
		return m.trace, nil
	}
	m.EnterBlk(fn.Entry())
	if m.err != nil {
		return m.trace, errors.Wrap(m.err, fn.Name)
	}
	return m.trace, nil
}

func (m *machine) CurrBlk() *ir.Block { return m.curr }

func (m *machine) PrevBlk() *ir.Block { return m.prev }

// EnterBlk executes blk and the blocks it transfers control to.
func (m *machine) EnterBlk(blk *ir.Block) {
	m.curr = blk
	for next := m.exec(blk); next != nil && m.err == nil; next = m.exec(next) {
		m.JumpBlk(m.curr, next)
		if m.err != nil {
			return
		}
	}
	if m.err == nil {
		m.ExitBlk(m.curr)
	}
}

// JumpBlk moves along the edge curr → next, assigning the phis of next
// simultaneously.
func (m *machine) JumpBlk(curr, next *ir.Block) {
	phis := m.fn.Phis(next)
	in := make([]int64, len(phis))
	for i, phi := range phis {
		arg, ok := m.fn.IncomingFrom(phi, curr.ID)
		if !ok {
			m.err = errors.Errorf("phi v%d has no edge from b%d", phi, curr.ID)
			return
		}
		if in[i], m.err = m.get(arg); m.err != nil {
			return
		}
	}
	for i, phi := range phis {
		m.set(m.fn.Value(phi), in[i])
	}
	m.prev, m.curr = curr, next
}

// ExitBlk marks the end of execution in blk.
func (m *machine) ExitBlk(blk *ir.Block) {
	m.prev, m.curr = blk, nil
}

// exec runs the non-phi instructions of blk and returns the next block, or
// nil after a return.
func (m *machine) exec(blk *ir.Block) *ir.Block {
	for _, id := range blk.Instrs {
		v := m.fn.Value(id)
		if v.Op == ir.OpPhi {
			continue
		}
		if m.trace.Steps++; m.trace.Steps > m.maxSteps {
			m.err = ErrStepLimit
			return nil
		}
		switch v.Op {
		case ir.OpJump:
			return m.fn.Block(blk.Succs[0])
		case ir.OpIf:
			c, err := m.get(v.Args[0])
			if err != nil {
				m.err = err
				return nil
			}
			if c != 0 {
				return m.fn.Block(blk.Succs[0])
			}
			return m.fn.Block(blk.Succs[1])
		case ir.OpReturn:
			ret := make([]int64, len(v.Args))
			for i, a := range v.Args {
				if ret[i], m.err = m.get(a); m.err != nil {
					return nil
				}
			}
			m.trace.Return = ret
			return nil
		case ir.OpCall:
			args := make([]int64, len(v.Args))
			for i, a := range v.Args {
				if args[i], m.err = m.get(a); m.err != nil {
					return nil
				}
			}
			m.trace.Calls = append(m.trace.Calls, Call{Callee: v.Aux, Args: args})
		case ir.OpOpaque:
		default:
			if !v.Op.IsBinary() {
				m.err = errors.Errorf("v%d: cannot execute %s", v.ID, v.Op)
				return nil
			}
			x, err := m.get(v.Args[0])
			if err != nil {
				m.err = err
				return nil
			}
			y, err := m.get(v.Args[1])
			if err != nil {
				m.err = err
				return nil
			}
			r, err := Eval(v.Op, v.Bits, x, y)
			if err != nil {
				m.err = errors.Wrapf(err, "v%d", v.ID)
				return nil
			}
			m.set(v, r)
		}
	}
	m.err = errors.Errorf("b%d has no terminator", blk.ID)
	return nil
}

func (m *machine) set(v *ir.Value, x int64) {
	m.vals[v.ID] = x
	if m.watch[v.ID] {
		m.trace.Watched[v.ID] = append(m.trace.Watched[v.ID], x)
	}
}

func (m *machine) get(id ir.ValueID) (int64, error) {
	if k, ok := m.fn.IntConst(id); ok {
		return k, nil
	}
	if x, ok := m.vals[id]; ok {
		return x, nil
	}
	if v := m.fn.Value(id); v != nil && (v.Op == ir.OpOpaque || v.Op == ir.OpCall) {
		return 0, errors.Wrapf(ErrOpaque, "v%d", id)
	}
	return 0, errors.Errorf("v%d used before it is defined", id)
}
