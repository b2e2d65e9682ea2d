package compiler

import (
	"testing"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/types"
)

// TestScopeShadowing verifies spec §4.3: "Symbol lookup walks up the chain;
// definition writes only to the topmost frame" and child parameters shadow
// same-named outer bindings.
func TestScopeShadowing(t *testing.T) {
	outer := NewGlobalScope()
	outer.Define("x", llvm.Value{}, types.NewPrimitive(types.Int))

	inner := NewScope(outer)
	inner.Define("x", llvm.Value{}, types.NewPrimitive(types.Long))

	_, ft, ok := inner.Resolve("x")
	if !ok {
		t.Fatalf("expected x to resolve in inner scope")
	}
	if ft.Primitive != types.Long {
		t.Errorf("inner x should shadow outer binding, got primitive %q", ft.Primitive)
	}

	_, outerFt, ok := outer.Resolve("x")
	if !ok || outerFt.Primitive != types.Int {
		t.Errorf("outer scope's own binding must be unaffected by child shadowing")
	}

	if _, _, ok := outer.Resolve("undefined_name"); ok {
		t.Errorf("resolving an undefined name must report ok=false")
	}
}

// TestTypeParameterShadowing checks that a child frame's type parameter of
// the same name shadows an outer one, and that constraints travel with it
// (spec §4.3 "shadows any outer parameter of the same name").
func TestTypeParameterShadowing(t *testing.T) {
	outer := NewGlobalScope()
	outer.DefineTypeParameter("T", "Castable")

	inner := NewScope(outer)
	if !inner.IsTypeParameter("T") {
		t.Fatalf("expected T to be visible from child frame")
	}
	if c := inner.TypeConstraint("T"); c != "Castable" {
		t.Errorf("TypeConstraint(T) = %q, want Castable", c)
	}

	inner.DefineTypeParameter("T", "")
	if c := inner.TypeConstraint("T"); c != "" {
		t.Errorf("inner redefinition of T should shadow outer constraint, got %q", c)
	}
	if c := outer.TypeConstraint("T"); c != "Castable" {
		t.Errorf("outer T constraint must be unaffected by inner shadowing, got %q", c)
	}
}

// TestTypeAliasResolution checks import-installed type aliases resolve
// through the parent chain, falling back to the bare name (spec §4.4 rule 5).
func TestTypeAliasResolution(t *testing.T) {
	global := NewGlobalScope()
	moduleScope := NewScope(global)
	moduleScope.DefineTypeAlias("Vector", "vectors__Vector")

	inner := NewScope(moduleScope)
	if got := inner.ResolveType("Vector"); got != "vectors__Vector" {
		t.Errorf("ResolveType(Vector) = %q, want vectors__Vector", got)
	}
	if got := inner.ResolveType("Unaliased"); got != "Unaliased" {
		t.Errorf("unaliased name should resolve to itself, got %q", got)
	}
}

// TestFindLoopScope verifies break/continue target resolution walks up to
// the nearest enclosing loop frame (spec §4.3's find_loop_scope helper).
func TestFindLoopScope(t *testing.T) {
	global := NewGlobalScope()
	if global.FindLoopScope() != nil {
		t.Fatalf("global scope has no enclosing loop")
	}

	loop := NewScope(global)
	loop.IsLoop = true
	body := NewScope(loop)
	nested := NewScope(body)

	found := nested.FindLoopScope()
	if found != loop {
		t.Errorf("FindLoopScope should return the nearest IsLoop frame")
	}
}

// TestIsErasureConstraint spot-checks the erasure-marker names spec §4.2/§9
// call out as triggering type-erasure classification.
func TestIsErasureConstraint(t *testing.T) {
	for _, marker := range []string{"Castable", "Any", "Object", "VoidPointer"} {
		if !IsErasureConstraint(marker) {
			t.Errorf("expected %q to be recognized as an erasure marker", marker)
		}
	}
	if IsErasureConstraint("Shape") {
		t.Errorf("a plain interface name must not be treated as an erasure marker")
	}
}
