package indvar

import (
	"fmt"

	"github.com/nickng/ivsr/ir"
)

// Kind classifies why a loop or a value was left alone.
type Kind int

const (
	NoPreheader      Kind = iota + 1 // Loop has no unique preheader.
	MultipleLatches                  // Loop has more than one back edge.
	BothDerived                      // Both operands are induction variables.
	BothConstant                     // Both operands are constants.
	Unsupported                      // Operation other than mul or add on a derived value.
	Filtered                         // Descriptor not eligible for rewriting.
	MissingIncrement                 // Step of the basic counter is unknown.
)

var kindNames = [...]string{
	NoPreheader:      "no-preheader",
	MultipleLatches:  "multiple-latches",
	BothDerived:      "both-derived",
	BothConstant:     "both-constant",
	Unsupported:      "unsupported",
	Filtered:         "filtered",
	MissingIncrement: "missing-increment",
}

func (k Kind) String() string {
	if k > 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Diagnostic is a report of something the pass skipped.
type Diagnostic struct {
	Kind   Kind
	Loop   ir.BlockID // Loop header.
	Value  ir.ValueID // NoValue for diagnostics about the whole loop.
	Detail string
}

func (d Diagnostic) String() string {
	if d.Value == ir.NoValue {
		return fmt.Sprintf("loop b%d: %s: %s", d.Loop, d.Kind, d.Detail)
	}
	return fmt.Sprintf("loop b%d: v%d: %s: %s", d.Loop, d.Value, d.Kind, d.Detail)
}
