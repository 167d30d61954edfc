package pass

import (
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/pkg/errors"

	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
)

// Manager runs a sequence of passes over functions.
type Manager struct {
	cfg    Config
	passes []Pass
	log    *logger.Logger
}

// NewManager returns a Manager with the passes named in cfg.Passes.
func NewManager(cfg Config) (*Manager, error) {
	l := cfg.Logger
	if l == nil {
		l = logger.Nop()
	}
	m := &Manager{cfg: cfg, log: l.WithModule("pass", color.CyanString)}
	for _, name := range cfg.Passes {
		p, err := New(name, cfg)
		if err != nil {
			return nil, err
		}
		m.Add(p)
	}
	return m, nil
}

// Add appends p to the pipeline.
func (m *Manager) Add(p Pass) {
	if s, ok := p.(logger.LogSetter); ok && m.cfg.Logger != nil {
		s.SetLogger(m.cfg.Logger)
	}
	m.passes = append(m.passes, p)
}

// Passes returns the pipeline.
func (m *Manager) Passes() []Pass { return m.passes }

// Run runs the pipeline over each function in turn. It stops at the first
// error; the summary covers the passes run so far.
func (m *Manager) Run(fns []*ir.Func) (*Summary, error) {
	sum := new(Summary)
	for _, fn := range fns {
		fs := FuncSummary{Func: fn.Name}
		for _, p := range m.passes {
			if m.cfg.PrintBefore && m.cfg.Out != nil {
				fmt.Fprintf(m.cfg.Out, "; before %s\n", p.Name())
				fn.WriteTo(m.cfg.Out)
			}
			start := time.Now()
			modified, err := p.Run(fn)
			res := Result{Pass: p.Name(), Modified: modified, Duration: time.Since(start)}
			fs.Results = append(fs.Results, res)
			if err != nil {
				sum.Funcs = append(sum.Funcs, fs)
				return sum, errors.Wrapf(err, "%s: pass %s", fn.Name, p.Name())
			}
			m.log.Debugf("%s %s: %s modified=%t in %s",
				m.log.Module(), fn.Name, p.Name(), modified, res.Duration)
			if m.cfg.Verify {
				if err := ir.Verify(fn); err != nil {
					sum.Funcs = append(sum.Funcs, fs)
					return sum, errors.Wrapf(err, "%s: invalid after %s", fn.Name, p.Name())
				}
			}
		}
		sum.Funcs = append(sum.Funcs, fs)
	}
	return sum, nil
}

// Result is the outcome of one pass over one function.
type Result struct {
	Pass     string
	Modified bool
	Duration time.Duration
}

// FuncSummary lists the results of the pipeline for one function.
type FuncSummary struct {
	Func    string
	Results []Result
}

// Modified returns true if any pass modified the function.
func (s FuncSummary) Modified() bool {
	for _, r := range s.Results {
		if r.Modified {
			return true
		}
	}
	return false
}

// Summary is the outcome of Manager.Run.
type Summary struct {
	Funcs []FuncSummary
}

// WriteTo writes one line per function and pass.
func (s *Summary) WriteTo(w io.Writer) (int64, error) {
	var n int64
	for _, f := range s.Funcs {
		for _, r := range f.Results {
			c, err := fmt.Fprintf(w, "%s\t%s\tmodified=%t\n", f.Func, r.Pass, r.Modified)
			n += int64(c)
			if err != nil {
				return n, err
			}
		}
	}
	return n, nil
}
