package indvar

import (
	"testing"

	"github.com/nickng/ivsr/ir"
)

func TestTableInsertionOrder(t *testing.T) {
	tab := NewTable()
	for _, v := range []ir.ValueID{7, 3, 5} {
		if !tab.Insert(v, Descriptor{Base: 3, Mul: int64(v), Add: 1}) {
			t.Fatalf("insert of new key v%d should succeed", v)
		}
	}
	if tab.Insert(3, Descriptor{Base: 3, Mul: 100}) {
		t.Errorf("insert of existing key should fail")
	}
	if d, _ := tab.Lookup(3); d.Mul != 3 {
		t.Errorf("existing descriptor should be kept, got %s", d)
	}
	want := []ir.ValueID{7, 3, 5}
	got := tab.Keys()
	if len(want) != len(got) {
		t.Fatalf("want keys %v, got %v", want, got)
	}
	for i := range want {
		if want[i] != got[i] {
			t.Errorf("key %d: want v%d, got v%d", i, want[i], got[i])
		}
	}
	if want, got := "v3×7+1\nv3×3+1\nv3×5+1\n", tab.String(); want != got {
		t.Errorf("want table\n%s\ngot\n%s", want, got)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		d        Descriptor
		complete bool
		affine   bool
	}{
		{Descriptor{Mul: 1, Add: 0, Basic: true}, false, false},
		{Descriptor{Mul: 1, Add: 0}, false, false},
		{Descriptor{Mul: 2, Add: 0}, false, true},
		{Descriptor{Mul: 1, Add: 5}, false, true},
		{Descriptor{Mul: 2, Add: 3}, true, true},
		{Descriptor{Mul: -1, Add: -1}, true, true},
	}
	for _, test := range tests {
		if got := Complete.Eligible(test.d); got != test.complete {
			t.Errorf("complete filter on %s (basic=%t): want %t, got %t", test.d, test.d.Basic, test.complete, got)
		}
		if got := Affine.Eligible(test.d); got != test.affine {
			t.Errorf("any filter on %s (basic=%t): want %t, got %t", test.d, test.d.Basic, test.affine, got)
		}
	}
}

func TestParseFilter(t *testing.T) {
	for name, want := range map[string]Filter{"": Complete, "complete": Complete, "any": Affine} {
		got, err := ParseFilter(name)
		if err != nil || got != want {
			t.Errorf("ParseFilter(%q): want %s, got %s (%v)", name, want, got, err)
		}
	}
	if _, err := ParseFilter("some"); err == nil {
		t.Errorf("unknown filter should be an error")
	}
}
