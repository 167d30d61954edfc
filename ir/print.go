package ir

import (
	"bytes"
	"fmt"
	"io"
	"strings"
)

// Format returns the textual form of a single instruction.
func (f *Func) Format(id ValueID) string {
	v := f.Value(id)
	if v == nil {
		return fmt.Sprintf("<dead v%d>", id)
	}
	var buf bytes.Buffer
	switch v.Op {
	case OpJump:
		fmt.Fprintf(&buf, "jump %s", f.succName(v, 0))
	case OpIf:
		fmt.Fprintf(&buf, "if %s goto %s else %s", f.Ref(v.Args[0]), f.succName(v, 0), f.succName(v, 1))
	case OpReturn:
		buf.WriteString("return")
		if len(v.Args) > 0 {
			buf.WriteString(" " + f.refs(v.Args))
		}
	case OpPhi:
		edges := make([]string, len(v.Args))
		for i := range v.Args {
			edges[i] = fmt.Sprintf("b%d: %s", v.Edges[i], f.Ref(v.Args[i]))
		}
		fmt.Fprintf(&buf, "v%d = phi %s [%s]", v.ID, TypeString(v.Bits), strings.Join(edges, ", "))
	case OpCall:
		fmt.Fprintf(&buf, "v%d = call %s(%s)", v.ID, v.Aux, f.refs(v.Args))
	case OpConst:
		fmt.Fprintf(&buf, "v%d = const %s %d", v.ID, TypeString(v.Bits), v.AuxInt)
	case OpParam:
		fmt.Fprintf(&buf, "v%d = param %s #%d", v.ID, TypeString(v.Bits), v.AuxInt)
	case OpOpaque:
		fmt.Fprintf(&buf, "v%d = opaque %s", v.ID, TypeString(v.Bits))
	default:
		fmt.Fprintf(&buf, "v%d = %s %s %s", v.ID, v.Op, TypeString(v.Bits), f.refs(v.Args))
	}
	if v.Name != "" {
		fmt.Fprintf(&buf, " ; %s", v.Name)
	}
	return buf.String()
}

func (f *Func) refs(ids []ValueID) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = f.Ref(id)
	}
	return strings.Join(s, ", ")
}

func (f *Func) succName(term *Value, i int) string {
	b := f.Block(term.Block)
	if b == nil || i >= len(b.Succs) {
		return "?"
	}
	return fmt.Sprintf("b%d", b.Succs[i])
}

// WriteTo writes the function in human readable form to w.
func (f *Func) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		params[i] = fmt.Sprintf("v%d %s", p, TypeString(f.values[p].Bits))
	}
	fmt.Fprintf(&buf, "func %s(%s):\n", f.Name, strings.Join(params, ", "))
	for _, b := range f.Blocks {
		fmt.Fprintf(&buf, "b%d:", b.ID)
		if b.Comment != "" {
			fmt.Fprintf(&buf, " %s", b.Comment)
		}
		fmt.Fprintf(&buf, " P:%d S:%d\n", len(b.Preds), len(b.Succs))
		for _, id := range b.Instrs {
			fmt.Fprintf(&buf, "\t%s\n", f.Format(id))
		}
	}
	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func (f *Func) String() string {
	var buf bytes.Buffer
	f.WriteTo(&buf)
	return buf.String()
}
