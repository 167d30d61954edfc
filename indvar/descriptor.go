package indvar

import (
	"bytes"
	"fmt"

	"github.com/nickng/ivsr/ir"
)

// Descriptor describes a value v of the loop as Base×Mul + Add.
type Descriptor struct {
	Base  ir.ValueID // Basic counter (a header phi).
	Mul   int64
	Add   int64
	Basic bool // Only the descriptor of Base itself.

	Init  ir.ValueID // Value of Base entering from the preheader.
	Latch ir.BlockID // Block supplying Base on the back edge.
}

func (d Descriptor) String() string {
	return fmt.Sprintf("v%d×%d%+d", d.Base, d.Mul, d.Add)
}

// Table maps values to their descriptors. Keys are unique and iteration
// follows insertion order.
type Table struct {
	keys []ir.ValueID
	desc map[ir.ValueID]Descriptor
}

// NewTable returns an empty Table.
func NewTable() *Table {
	return &Table{desc: make(map[ir.ValueID]Descriptor)}
}

// Lookup returns the descriptor of v.
func (t *Table) Lookup(v ir.ValueID) (Descriptor, bool) {
	d, ok := t.desc[v]
	return d, ok
}

// Insert records d for v. It returns false if v already has a descriptor, in
// which case the table is unchanged.
func (t *Table) Insert(v ir.ValueID, d Descriptor) bool {
	if _, ok := t.desc[v]; ok {
		return false
	}
	t.keys = append(t.keys, v)
	t.desc[v] = d
	return true
}

// Len returns the number of values with a descriptor.
func (t *Table) Len() int { return len(t.keys) }

// Keys returns the values with a descriptor in insertion order.
func (t *Table) Keys() []ir.ValueID {
	return append([]ir.ValueID(nil), t.keys...)
}

func (t *Table) String() string {
	var buf bytes.Buffer
	for _, k := range t.keys {
		d := t.desc[k]
		fmt.Fprintf(&buf, "v%d: %s", k, d)
		if d.Basic {
			buf.WriteString(" (basic)")
		}
		buf.WriteString("\n")
	}
	return buf.String()
}
