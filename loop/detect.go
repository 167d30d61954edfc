package loop

import (
	"io"
	"io/ioutil"
	"log"
	"sort"

	"github.com/nickng/ivsr/block"
	"github.com/nickng/ivsr/ir"
)

// Detector finds the natural loops of a function.
type Detector struct {
	logger *log.Logger
}

func NewDetector() *Detector {
	return &Detector{
		logger: log.New(ioutil.Discard, "loopdetect: ", 0),
	}
}

func (d *Detector) SetLog(w io.Writer) {
	d.logger.SetOutput(w)
}

// Detect returns the natural loops of fn, innermost first. Loops at the same
// depth are ordered by header. Unreachable blocks and irreducible cycles are
// never part of a loop.
func (d *Detector) Detect(fn *ir.Func) []*Info {
	dom := newDomTree(fn)

	loops := make(map[ir.BlockID]*Info)
	block.TraverseEdges(fn, func(from, to *ir.Block) {
		if from == nil {
			return
		}
		d.logger.Printf("Detect: #%d → #%d", from.ID, to.ID)
		if !dom.dominates(to.ID, from.ID) {
			return
		}
		d.logger.Printf("Back edge #%d → #%d", from.ID, to.ID)
		l, ok := loops[to.ID]
		if !ok {
			l = newInfo(fn, to)
			loops[to.ID] = l
		}
		l.latches = append(l.latches, from)
	})

	var infos []*Info
	for _, l := range loops {
		sort.Slice(l.latches, func(i, j int) bool { return l.latches[i].ID < l.latches[j].ID })
		d.collectBody(l, dom)
		l.findPreheader()
		infos = append(infos, l)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].header.ID < infos[j].header.ID })

	for _, l := range infos {
		for _, outer := range infos {
			if outer == l || !outer.members[l.header.ID] {
				continue
			}
			if l.parent == nil || len(outer.blocks) < len(l.parent.blocks) {
				l.parent = outer
			}
		}
	}
	for _, l := range infos {
		l.depth = 1
		for p := l.parent; p != nil; p = p.parent {
			l.depth++
		}
	}
	sort.SliceStable(infos, func(i, j int) bool { return infos[i].depth > infos[j].depth })
	for _, l := range infos {
		d.logger.Printf("Found %s", l)
	}
	return infos
}

// collectBody walks backwards from the latches to the header.
func (d *Detector) collectBody(l *Info, dom *domTree) {
	work := NewStack()
	for _, latch := range l.latches {
		if !l.members[latch.ID] {
			l.members[latch.ID] = true
			work.Push(latch)
		}
	}
	for !work.IsEmpty() {
		b, _ := work.Pop()
		for _, p := range b.Preds {
			if !l.members[p] && dom.reachable(p) {
				l.members[p] = true
				work.Push(l.fn.Block(p))
			}
		}
	}
	for _, b := range l.fn.Blocks {
		if l.members[b.ID] {
			l.blocks = append(l.blocks, b)
		}
	}
}
