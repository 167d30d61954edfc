// Command ivsr runs strength reduction of induction variables over the loops
// of Go source files or LLVM IR assembly files.
//
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	gossa "golang.org/x/tools/go/ssa"

	"github.com/nickng/ivsr/internal/logger"
	"github.com/nickng/ivsr/ir"
	"github.com/nickng/ivsr/llvm"
	"github.com/nickng/ivsr/lower"
	"github.com/nickng/ivsr/pass"
	"github.com/nickng/ivsr/ssa"
	"github.com/nickng/ivsr/ssa/build"

	_ "github.com/nickng/ivsr/indvar"
	_ "github.com/nickng/ivsr/opt"
	_ "github.com/nickng/ivsr/pow2"
)

const (
	Usage = `ivsr is a tool for strength reduction of induction variables.

Usage:

  ivsr [options] file.go [files.go...]
  ivsr [options] file.ll [files.ll...]

Options:

`
)

var (
	defaults = pass.FromEnv()

	passList    string
	viewFunc    string
	reachable   string
	cgPath      string
	filter      string
	logPath     string
	outPath     string
	verify      bool
	printBefore bool
	listPasses  bool

	out io.Writer
)

func init() {
	flag.StringVar(&passList, "passes", strings.Join(defaults.Passes, ","), "Comma separated list of passes to run (see -list)")
	flag.StringVar(&viewFunc, "func", "", "Only process the function with this name")
	flag.StringVar(&reachable, "reachable", "", "Only process Go functions reachable from main (static, cha or rta)")
	flag.StringVar(&cgPath, "callgraph", "", "Write the Go callgraph in dot format to file, filling the functions modified by a pass")
	flag.StringVar(&filter, "filter", defaults.Filter, "Values rewritten by iv-sr (complete or any)")
	flag.StringVar(&logPath, "log", "", "Specify log file (use '-' for stderr)")
	flag.StringVar(&outPath, "out", "", "Specify output file (default: stdout)")
	flag.BoolVar(&verify, "verify", defaults.Verify, "Verify the IR after every pass")
	flag.BoolVar(&printBefore, "print-before", defaults.PrintBefore, "Print the IR before every pass")
	flag.BoolVar(&listPasses, "list", false, "List the available passes and exit")
}

func main() {
	flag.Parse()
	if listPasses {
		for _, r := range pass.Registered() {
			fmt.Printf("%-8s %s\n", r.Name, r.Desc)
		}
		return
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, Usage)
		flag.PrintDefaults()
		os.Exit(0)
	}

	var (
		lg     *logger.Logger
		bldLog io.Writer
	)
	switch logPath {
	case "":
	case "-":
		lg = newLogger()
		bldLog = os.Stderr
	default:
		f, err := os.Create(logPath)
		if err != nil {
			log.Fatalf("Cannot create log %s: %v", logPath, err)
		}
		f.Close()
		lg = newLogger(logPath)
	}

	switch outPath {
	case "":
		out = os.Stdout
	default:
		f, err := os.Create(outPath)
		if err != nil {
			log.Fatalf("Cannot create output file %s: %v", outPath, err)
		}
		defer f.Close()
		out = f
	}

	funcs, src, err := load(flag.Args(), lg, bldLog)
	if err != nil {
		log.Fatal("Cannot load functions: ", err)
	}
	if viewFunc != "" {
		funcs = selectFunc(funcs, viewFunc)
		if len(funcs) == 0 {
			log.Fatalf("Cannot find function %s", viewFunc)
		}
	}

	cfg := defaults
	cfg.Passes = pass.SplitPasses(passList)
	cfg.Verify = verify
	cfg.Filter = filter
	cfg.PrintBefore = printBefore
	cfg.Out = out
	cfg.Logger = lg
	m, err := pass.NewManager(cfg)
	if err != nil {
		log.Fatal("Cannot create pipeline: ", err)
	}
	sum, err := m.Run(funcs)
	if err != nil {
		log.Fatal("Pipeline failed: ", err)
	}
	for _, f := range funcs {
		if _, err := f.WriteTo(out); err != nil {
			log.Fatal("Cannot write IR: ", err)
		}
	}
	sum.WriteTo(os.Stderr)
	if cgPath != "" {
		if err := writeCallGraph(cgPath, src, funcs, sum); err != nil {
			log.Fatal("Cannot write callgraph: ", err)
		}
	}
}

func newLogger(files ...string) *logger.Logger {
	if defaults.Debug {
		return logger.Development(files...)
	}
	return logger.NewFile(files...)
}

// goSource records where the lowered Go functions came from.
type goSource struct {
	info   *ssa.Info
	cg     *ssa.CallGraph // Only built with -reachable or -callgraph.
	origin map[*ir.Func]*gossa.Function
}

// load lowers the Go files and translates the LLVM IR files among paths.
func load(paths []string, lg *logger.Logger, bldLog io.Writer) ([]*ir.Func, *goSource, error) {
	var goFiles, llFiles []string
	for _, p := range paths {
		switch filepath.Ext(p) {
		case ".go":
			goFiles = append(goFiles, p)
		case ".ll":
			llFiles = append(llFiles, p)
		default:
			return nil, nil, errors.Errorf("unknown file type: %s", p)
		}
	}
	var (
		funcs []*ir.Func
		src   *goSource
	)
	if len(goFiles) > 0 {
		var err error
		if src, err = loadGo(goFiles, lg, bldLog); err != nil {
			return nil, nil, err
		}
		funcs = append(funcs, src.funcs()...)
	}
	for _, p := range llFiles {
		fs, err := llvm.ParseFile(p)
		for _, e := range multierr.Errors(err) {
			if _, ok := e.(llvm.UnsupportedError); !ok {
				return nil, nil, err
			}
			log.Printf("Skip: %v", e)
		}
		funcs = append(funcs, fs...)
	}
	return funcs, src, nil
}

func loadGo(files []string, lg *logger.Logger, bldLog io.Writer) (*goSource, error) {
	conf := build.FromFiles(files).Default()
	if bldLog != nil {
		conf = conf.WithBuildLog(bldLog, log.LstdFlags)
	}
	info, err := conf.Build()
	if err != nil {
		return nil, err
	}
	src := &goSource{info: info, origin: make(map[*ir.Func]*gossa.Function)}
	if reachable != "" || cgPath != "" {
		algo := reachable
		if algo == "" {
			algo = "static"
		}
		if src.cg, err = info.BuildCallGraph(algo, false); err != nil {
			return nil, err
		}
	}
	fns := info.SourceFuncs()
	if reachable != "" {
		used, err := src.cg.Reachable()
		if err != nil {
			return nil, err
		}
		isUsed := make(map[*gossa.Function]bool)
		for _, fn := range used {
			isUsed[fn] = true
		}
		var kept []*gossa.Function
		for _, fn := range fns {
			if isUsed[fn] {
				kept = append(kept, fn)
			}
		}
		fns = kept
	}
	l := lower.New()
	if lg != nil {
		l.SetLogger(lg)
	}
	for _, fn := range fns {
		f, err := l.Function(fn)
		if err != nil {
			if _, ok := err.(lower.UnsupportedError); ok {
				log.Printf("Skip: %v", err)
				continue
			}
			return nil, err
		}
		src.origin[f] = fn
	}
	return src, nil
}

// funcs returns the lowered functions in source order.
func (s *goSource) funcs() []*ir.Func {
	byFn := make(map[*gossa.Function]*ir.Func, len(s.origin))
	for f, fn := range s.origin {
		byFn[fn] = f
	}
	var funcs []*ir.Func
	for _, fn := range s.info.SourceFuncs() {
		if f, ok := byFn[fn]; ok {
			funcs = append(funcs, f)
		}
	}
	return funcs
}

// writeCallGraph writes the callgraph of the Go sources to path. Source
// functions are drawn, and those modified by a pass are filled.
func writeCallGraph(path string, src *goSource, funcs []*ir.Func, sum *pass.Summary) error {
	if src == nil || src.cg == nil {
		return errors.New("no Go sources")
	}
	modified := make(map[*gossa.Function]bool)
	for i, fs := range sum.Funcs {
		if fs.Modified() {
			modified[src.origin[funcs[i]]] = true
		}
	}
	isSrc := make(map[*gossa.Function]bool)
	for _, fn := range src.info.SourceFuncs() {
		isSrc[fn] = true
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return src.cg.WriteDot(f,
		func(fn *gossa.Function) bool { return isSrc[fn] },
		func(fn *gossa.Function) bool { return modified[fn] })
}

func selectFunc(funcs []*ir.Func, name string) []*ir.Func {
	var sel []*ir.Func
	for _, f := range funcs {
		if f.Name == name {
			sel = append(sel, f)
		}
	}
	return sel
}
