package loop

import (
	"bytes"
	"fmt"

	"github.com/nickng/ivsr/ir"
)

// Info is a data structure to hold loop information: the header, the
// latches (sources of the back edges) and the blocks of a natural loop.
type Info struct {
	fn        *ir.Func
	header    *ir.Block
	preheader *ir.Block   // nil if there is no unique preheader.
	latches   []*ir.Block // In ID order.
	blocks    []*ir.Block // In ID order, header included.
	members   map[ir.BlockID]bool

	parent *Info
	depth  int
}

func newInfo(fn *ir.Func, header *ir.Block) *Info {
	return &Info{
		fn:      fn,
		header:  header,
		members: map[ir.BlockID]bool{header.ID: true},
		depth:   1,
	}
}

// Func returns the function the loop belongs to.
func (i *Info) Func() *ir.Func { return i.fn }

// Header returns the loop header, the target of every back edge.
func (i *Info) Header() *ir.Block { return i.header }

// Preheader returns the unique block outside the loop that branches
// unconditionally to the header, or nil if there is none.
func (i *Info) Preheader() *ir.Block { return i.preheader }

// Latches returns the blocks with a back edge to the header.
func (i *Info) Latches() []*ir.Block { return i.latches }

// Latch returns the single latch of the loop, or nil if the loop has more
// than one back edge.
func (i *Info) Latch() *ir.Block {
	if len(i.latches) != 1 {
		return nil
	}
	return i.latches[0]
}

// Blocks returns the blocks of the loop in ID order.
func (i *Info) Blocks() []*ir.Block { return i.blocks }

// Contains returns true if b is part of the loop, including nested loops.
func (i *Info) Contains(b ir.BlockID) bool { return i.members[b] }

// Parent returns the innermost loop enclosing this one.
func (i *Info) Parent() *Info { return i.parent }

// Depth returns the nesting depth; outermost loops have depth 1.
func (i *Info) Depth() int { return i.depth }

// Exits returns the blocks outside the loop with a predecessor inside it, in
// ID order.
func (i *Info) Exits() []*ir.Block {
	seen := make(map[ir.BlockID]bool)
	for _, b := range i.blocks {
		for _, s := range b.Succs {
			if !i.members[s] {
				seen[s] = true
			}
		}
	}
	var exits []*ir.Block
	for _, b := range i.fn.Blocks {
		if seen[b.ID] {
			exits = append(exits, b)
		}
	}
	return exits
}

// findPreheader sets the preheader if the header has exactly one predecessor
// outside the loop and that predecessor has the header as its only
// successor.
func (i *Info) findPreheader() {
	var outside []ir.BlockID
	for _, p := range i.header.Preds {
		if !i.members[p] {
			outside = append(outside, p)
		}
	}
	if len(outside) != 1 {
		return
	}
	if p := i.fn.Block(outside[0]); len(p.Succs) == 1 {
		i.preheader = p
	}
}

func (i *Info) String() string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "loop b%d", i.header.ID)
	if i.preheader != nil {
		fmt.Fprintf(&buf, " preheader:b%d", i.preheader.ID)
	}
	buf.WriteString(" latches:")
	for n, b := range i.latches {
		if n > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, "b%d", b.ID)
	}
	buf.WriteString(" blocks:")
	for n, b := range i.blocks {
		if n > 0 {
			buf.WriteString(",")
		}
		fmt.Fprintf(&buf, "b%d", b.ID)
	}
	fmt.Fprintf(&buf, " depth:%d", i.depth)
	return buf.String()
}
