// Package opt provides the clean-up passes run after strength reduction.
package opt

import (
	"github.com/nickng/ivsr/interp"
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/pass"
)

func init() {
	pass.Register("fold", "constant folding", func(pass.Config) (pass.Pass, error) {
		return Fold{}, nil
	})
	pass.Register("dce", "dead code elimination", func(pass.Config) (pass.Pass, error) {
		return DCE{}, nil
	})
}

// Fold replaces binary instructions on two constants with their result.
type Fold struct{}

func (Fold) Name() string { return "fold" }

func (Fold) Run(fn *ir.Func) (bool, error) {
	return FoldConstants(fn) > 0, nil
}

// FoldConstants folds until nothing changes and returns the number of
// instructions folded. Folded instructions are left without uses. Division
// by zero is not folded.
func FoldConstants(fn *ir.Func) int {
	total := 0
	for {
		n := 0
		for _, b := range fn.Blocks {
			for _, id := range b.Instrs {
				v := fn.Value(id)
				if !v.Op.IsBinary() || len(fn.Uses(id)) == 0 {
					continue
				}
				x, okx := fn.IntConst(v.Args[0])
				y, oky := fn.IntConst(v.Args[1])
				if !okx || !oky {
					continue
				}
				r, err := interp.Eval(v.Op, v.Bits, x, y)
				if err != nil {
					continue
				}
				fn.ReplaceAllUsesWith(id, fn.Const(v.Bits, r))
				n++
			}
		}
		if n == 0 {
			return total
		}
		total += n
	}
}

// DCE removes instructions whose results are never needed.
type DCE struct{}

func (DCE) Name() string { return "dce" }

func (DCE) Run(fn *ir.Func) (bool, error) {
	return EliminateDeadCode(fn) > 0, nil
}

// EliminateDeadCode removes every instruction that neither has side effects
// nor feeds one, including dead cycles through phis. It returns the number of
// instructions removed.
func EliminateDeadCode(fn *ir.Func) int {
	live := make(map[ir.ValueID]bool)
	var work []ir.ValueID
	for _, b := range fn.Blocks {
		for _, id := range b.Instrs {
			if fn.Value(id).Op.HasSideEffects() {
				live[id] = true
				work = append(work, id)
			}
		}
	}
	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		for _, a := range fn.Value(id).Args {
			if !live[a] {
				live[a] = true
				work = append(work, a)
			}
		}
	}
	var dead []ir.ValueID
	for _, b := range fn.Blocks {
		for _, id := range b.Instrs {
			if !live[id] {
				dead = append(dead, id)
			}
		}
	}
	for _, id := range dead {
		fn.RemoveValue(id)
	}
	return len(dead)
}
