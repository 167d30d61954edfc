// Package pass defines the interface of function transformations and runs
// them in sequence.
//
// Passes register themselves under a name from an init function:
//
//	func init() {
//		pass.Register("dce", "dead code elimination", func(pass.Config) (pass.Pass, error) {
//			return DCE{}, nil
//		})
//	}
//
// and are looked up by that name when building a Manager.
package pass

import (
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/nickng/ivsr/ir"
)

var ErrUnknownPass = errors.New("unknown pass")

// Pass is a transformation of a single function. Run returns true if the
// function was modified.
type Pass interface {
	Name() string
	Run(fn *ir.Func) (bool, error)
}

// Factory creates a configured instance of a pass.
type Factory func(cfg Config) (Pass, error)

// Registration is an entry of the pass registry.
type Registration struct {
	Name string
	Desc string
	New  Factory
}

var (
	mu       sync.Mutex
	registry = make(map[string]Registration)
)

// Register adds a pass to the registry. It panics if name is taken.
func Register(name, desc string, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, dup := registry[name]; dup {
		panic("pass: Register called twice for " + name)
	}
	registry[name] = Registration{Name: name, Desc: desc, New: f}
}

// Lookup returns the registration of the pass called name.
func Lookup(name string) (Registration, bool) {
	mu.Lock()
	defer mu.Unlock()
	r, ok := registry[name]
	return r, ok
}

// Registered returns all registered passes sorted by name.
func Registered() []Registration {
	mu.Lock()
	defer mu.Unlock()
	regs := make([]Registration, 0, len(registry))
	for _, r := range registry {
		regs = append(regs, r)
	}
	sort.Slice(regs, func(i, j int) bool { return regs[i].Name < regs[j].Name })
	return regs
}

// New creates the pass called name.
func New(name string, cfg Config) (Pass, error) {
	r, ok := Lookup(name)
	if !ok {
		return nil, errors.Wrap(ErrUnknownPass, name)
	}
	p, err := r.New(cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot create pass %s", name)
	}
	return p, nil
}
