package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/nickng/ivsr/pass"
)

const cgProg = `package main

func main() {
	foo(10)
}

func foo(n int) {
	for i := 0; i < n; i++ {
		sink(3*i + 1)
	}
}

func sink(int) {}
`

func TestWriteCallGraph(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "main.go")
	if err := os.WriteFile(file, []byte(cgProg), 0644); err != nil {
		t.Fatal(err)
	}
	cgPath = filepath.Join(dir, "cg.dot")
	defer func() { cgPath = "" }()

	funcs, src, err := load([]string{file}, nil, nil)
	if err != nil {
		t.Fatalf("cannot load: %v", err)
	}
	var names []string
	for _, f := range funcs {
		names = append(names, f.Name)
	}
	if want, got := "main foo sink", strings.Join(names, " "); want != got {
		t.Errorf("want functions %q, got %q", want, got)
	}
	m, err := pass.NewManager(pass.Config{Passes: []string{"iv-sr"}})
	if err != nil {
		t.Fatalf("cannot create pipeline: %v", err)
	}
	sum, err := m.Run(funcs)
	if err != nil {
		t.Fatalf("pipeline failed: %v", err)
	}
	if err := writeCallGraph(cgPath, src, funcs, sum); err != nil {
		t.Fatalf("cannot write callgraph: %v", err)
	}
	b, err := os.ReadFile(cgPath)
	if err != nil {
		t.Fatal(err)
	}
	dot := string(b)
	for _, want := range []string{
		"  \"command-line-arguments.foo\" [style=filled]\n",
		"  \"command-line-arguments.main\"\n",
		"  \"command-line-arguments.sink\"\n",
		"  \"command-line-arguments.main\" -> \"command-line-arguments.foo\"\n",
		"  \"command-line-arguments.foo\" -> \"command-line-arguments.sink\"\n",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("want %q in:\n%s", want, dot)
		}
	}
}

func TestLoadUnknownFileType(t *testing.T) {
	if _, _, err := load([]string{"prog.c"}, nil, nil); err == nil || !strings.Contains(err.Error(), "unknown file type: prog.c") {
		t.Errorf("want unknown file type error, got %v", err)
	}
}
