// Package block provides the Analyser interface for blocks and supporting
// utilities for walking the control flow graph of an ir.Func.
package block

import "github.com/nickng/ivsr/ir"

// Analyser is an interface for block-by-block analysis, and handles block
// transitions within a function.
type Analyser interface {
	// EnterBlk analyses a block where there is no predecessor, e.g. the
	// entry block of a function.
	EnterBlk(blk *ir.Block)

	// JumpBlk analyses a block where the predecessor is specified
	// explicitly. Phis of next are resolved against the edge curr → next.
	JumpBlk(curr, next *ir.Block)

	// ExitBlk analyses a terminating block where there are no successors.
	ExitBlk(blk *ir.Block)

	// CurrBlk returns the current block (last block entered).
	CurrBlk() *ir.Block

	// PrevBlk returns the previous block (last block exited).
	PrevBlk() *ir.Block
}
