package compiler

import "testing"

// TestMangledPrefix exercises the sanitization rules of spec §4.1 rules 3-4
// directly on the pure helper, without needing a live LLVM context.
func TestMangledPrefix(t *testing.T) {
	tests := []struct {
		name string
		root string
		file string
		want string
	}{
		{"simple relative path", "/proj", "/proj/src/vectors.fin", "src_vectors"},
		{"nested dots and dashes", "/proj", "/proj/a.b-c/math.fin", "a_b_c_math"},
		{"trailing underscore trimmed", "/proj", "/proj/weird-.fin", "weird"},
		{"outside root falls back to basename", "/proj", "/other/lib.fin", "lib"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := mangledPrefix(tc.root, tc.file); got != tc.want {
				t.Errorf("mangledPrefix(%q, %q) = %q, want %q", tc.root, tc.file, got, tc.want)
			}
		})
	}
}

// TestMangleMainUnmangled verifies spec §4.1 rule 1: "If the name is `main`,
// return `main` unchanged", independent of the defining file.
func TestMangleMainUnmangled(t *testing.T) {
	c := &Compiler{Root: "/proj", externs: map[string]struct{}{}}
	if got := c.Mangle("/proj/src/main.fin", "main"); got != "main" {
		t.Errorf("Mangle(main) = %q, want main", got)
	}
}

// TestMangleExternUnmangled verifies spec §4.1 rule 2: a name registered via
// `define` bypasses mangling.
func TestMangleExternUnmangled(t *testing.T) {
	c := &Compiler{Root: "/proj", externs: map[string]struct{}{"puts": {}}}
	if got := c.Mangle("/proj/src/io.fin", "puts"); got != "puts" {
		t.Errorf("Mangle(extern puts) = %q, want puts", got)
	}
}

// TestMangleCollisionAcrossFiles verifies the spec §8 invariant: "For every
// two distinct top-level declarations in different files named foo, their
// mangled names differ."
func TestMangleCollisionAcrossFiles(t *testing.T) {
	c := &Compiler{Root: "/proj", externs: map[string]struct{}{}}
	a := c.Mangle("/proj/a.fin", "foo")
	b := c.Mangle("/proj/b.fin", "foo")
	if a == b {
		t.Fatalf("expected mangled names for foo in a.fin and b.fin to differ, both were %q", a)
	}
	if a != "a__foo" || b != "b__foo" {
		t.Errorf("got a=%q b=%q, want a=\"a__foo\" b=\"b__foo\"", a, b)
	}
}

// TestMangleStable verifies mangling is a pure function of (root, file,
// name): calling it twice with identical inputs must return identical
// output (spec §4.1 rationale: "stable across runs").
func TestMangleStable(t *testing.T) {
	c := &Compiler{Root: "/proj", externs: map[string]struct{}{}}
	first := c.Mangle("/proj/src/vectors.fin", "Vector")
	second := c.Mangle("/proj/src/vectors.fin", "Vector")
	if first != second {
		t.Errorf("Mangle is not stable: %q != %q", first, second)
	}
}
