package indvar

import (
	"github.com/fatih/color"

	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/loop"
	"github.com/nickng/ivsr/pass"
)

// Name is the name of the pass in the pass registry.
const Name = "iv-sr"

func init() {
	pass.Register(Name, "strength reduction of induction variables", func(cfg pass.Config) (pass.Pass, error) {
		f, err := ParseFilter(cfg.Filter)
		if err != nil {
			return nil, err
		}
		return reducePass{New(Options{Filter: f})}, nil
	})
}

// Options configures a Reducer.
type Options struct {
	Filter Filter
}

// Result is the outcome of running the Reducer over a function.
type Result struct {
	Modified    bool // At least one value was rewritten.
	Rewrites    []Rewrite
	Diagnostics []Diagnostic
}

// Reducer runs strength reduction over every loop of a function.
type Reducer struct {
	*logger.Logger
	opts     Options
	detector *loop.Detector
}

// New returns a Reducer.
func New(opts Options) *Reducer {
	return &Reducer{
		Logger:   logger.Nop().WithModule(Name, color.GreenString),
		opts:     opts,
		detector: loop.NewDetector(),
	}
}

// SetLogger sets logger for Reducer.
func (r *Reducer) SetLogger(l *logger.Logger) {
	r.Logger = l.WithModule(Name, color.GreenString)
}

// Run processes the loops of fn innermost first. Each loop is seeded, closed
// and rewritten with its own Table before the next loop is looked at.
func (r *Reducer) Run(fn *ir.Func) (*Result, error) {
	res := new(Result)
	for _, l := range r.detector.Detect(fn) {
		rewrites, diags := r.reduceLoop(fn, l)
		res.Rewrites = append(res.Rewrites, rewrites...)
		res.Diagnostics = append(res.Diagnostics, diags...)
	}
	res.Modified = len(res.Rewrites) > 0
	for _, d := range res.Diagnostics {
		r.Debugf("%s %s: %s", r.Module(), fn.Name, d)
	}
	for _, rw := range res.Rewrites {
		r.Infof("%s %s: %s", r.Module(), fn.Name, rw)
	}
	return res, nil
}

func (r *Reducer) reduceLoop(fn *ir.Func, l *loop.Info) ([]Rewrite, []Diagnostic) {
	header := l.Header().ID
	if l.Preheader() == nil {
		return nil, []Diagnostic{{Kind: NoPreheader, Loop: header, Value: ir.NoValue, Detail: l.String()}}
	}
	if l.Latch() == nil {
		return nil, []Diagnostic{{Kind: MultipleLatches, Loop: header, Value: ir.NoValue, Detail: l.String()}}
	}
	t := NewTable()
	Seed(fn, l, t)
	diags := Close(fn, l, t)
	r.Debugf("%s %s: loop b%d descriptors:\n%s", r.Module(), fn.Name, header, t)
	cands, skipped := Plan(fn, l, t, r.opts.Filter)
	diags = append(diags, skipped...)
	return Apply(fn, l, cands), diags
}

// reducePass adapts Reducer to pass.Pass.
type reducePass struct {
	*Reducer
}

func (reducePass) Name() string { return Name }

func (p reducePass) Run(fn *ir.Func) (bool, error) {
	res, err := p.Reducer.Run(fn)
	if err != nil {
		return false, err
	}
	return res.Modified, nil
}
