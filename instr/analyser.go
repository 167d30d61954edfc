// Package instr provides the Analyser interface for instructions and a
// dispatcher that routes each instruction to its handler.
package instr

import "golang.org/x/tools/go/ssa"

// Analyser is an interface for Instruction analysis. Instructions without a
// dedicated handler go to VisitInstr.
type Analyser interface {
	VisitInstr(instr ssa.Instruction)
	VisitBinOp(instr *ssa.BinOp)
	VisitCall(instr *ssa.Call)
	VisitConvert(instr *ssa.Convert)
	VisitDebugRef(instr *ssa.DebugRef)
	VisitDefer(instr *ssa.Defer)
	VisitGo(instr *ssa.Go)
	VisitIf(instr *ssa.If)
	VisitJump(instr *ssa.Jump)
	VisitPanic(instr *ssa.Panic)
	VisitPhi(instr *ssa.Phi)
	VisitReturn(instr *ssa.Return)
	VisitUnOp(instr *ssa.UnOp)
}

// Visit calls the handler of v for instr.
func Visit(v Analyser, instr ssa.Instruction) {
	switch instr := instr.(type) {
	case *ssa.BinOp:
		v.VisitBinOp(instr)

	case *ssa.Call:
		v.VisitCall(instr)

	case *ssa.Convert:
		v.VisitConvert(instr)

	case *ssa.DebugRef:
		v.VisitDebugRef(instr)

	case *ssa.Defer:
		v.VisitDefer(instr)

	case *ssa.Go:
		v.VisitGo(instr)

	case *ssa.If:
		v.VisitIf(instr)

	case *ssa.Jump:
		v.VisitJump(instr)

	case *ssa.Panic:
		v.VisitPanic(instr)

	case *ssa.Phi:
		v.VisitPhi(instr)

	case *ssa.Return:
		v.VisitReturn(instr)

	case *ssa.UnOp:
		v.VisitUnOp(instr)

	default:
		v.VisitInstr(instr)
	}
}
