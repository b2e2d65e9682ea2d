package ast

import "testing"

// TestSubstituteNamedType verifies the core MONO substitution rule of spec
// §4.5: "substitutes T -> concrete through the whole subtree", here at the
// simplest possible site: a bare type reference.
func TestSubstituteNamedType(t *testing.T) {
	tParam := NewNamedTypeExpr("T", Position{})
	bindings := map[string]TypeExpr{"T": NewNamedTypeExpr("int", Position{})}

	got := Substitute(tParam, bindings).(TypeExpr)
	named, ok := got.(*NamedTypeExpr)
	if !ok {
		t.Fatalf("expected *NamedTypeExpr, got %T", got)
	}
	if named.Name != "int" {
		t.Errorf("Substitute(T -> int) = %q, want int", named.Name)
	}

	// The template's own node must be untouched: a second instantiation with
	// a different binding must not see the first substitution (spec §5
	// "callers ... should look it up again after recursion" / templates are
	// reusable for any number of instantiations).
	if tParam.Name != "T" {
		t.Errorf("original template node was mutated in place: Name = %q", tParam.Name)
	}
}

// TestSubstituteNested walks a pointer-to-generic-instance type to confirm
// substitution recurses through composite type nodes, not just leaves.
func TestSubstituteNested(t *testing.T) {
	// *Box<T>
	inner := NewGenericInstanceTypeExpr(
		NewNamedTypeExpr("Box", Position{}),
		[]TypeExpr{NewNamedTypeExpr("T", Position{})},
		Position{},
	)
	ptr := NewPointerTypeExpr(inner, Position{})

	bindings := map[string]TypeExpr{"T": NewNamedTypeExpr("long", Position{})}
	got := Substitute(ptr, bindings).(TypeExpr)

	gotPtr, ok := got.(*PointerTypeExpr)
	if !ok {
		t.Fatalf("expected *PointerTypeExpr, got %T", got)
	}
	gotInst, ok := gotPtr.Elem.(*GenericInstanceTypeExpr)
	if !ok {
		t.Fatalf("expected *GenericInstanceTypeExpr, got %T", gotPtr.Elem)
	}
	argNamed, ok := gotInst.Args[0].(*NamedTypeExpr)
	if !ok || argNamed.Name != "long" {
		t.Errorf("expected substituted arg to be 'long', got %#v", gotInst.Args[0])
	}

	// Substituting again from the same template with a different binding
	// must not be affected by the first call's output (template reuse for
	// repeated MONO instantiation, spec §4.5).
	bindings2 := map[string]TypeExpr{"T": NewNamedTypeExpr("bool", Position{})}
	got2 := Substitute(ptr, bindings2).(*PointerTypeExpr)
	arg2 := got2.Elem.(*GenericInstanceTypeExpr).Args[0].(*NamedTypeExpr)
	if arg2.Name != "bool" {
		t.Errorf("second instantiation got %q, want bool", arg2.Name)
	}
	if argNamed.Name != "long" {
		t.Errorf("first instantiation's result node was mutated by the second call")
	}
}

// TestSubstituteUnrelatedNameUntouched checks that a named type not present
// in the bindings map passes through as an equivalent (but freshly cloned)
// node, per the deep-clone discipline in spec §9 Design Notes.
func TestSubstituteUnrelatedNameUntouched(t *testing.T) {
	other := NewNamedTypeExpr("Vector", Position{})
	bindings := map[string]TypeExpr{"T": NewNamedTypeExpr("int", Position{})}
	got := Substitute(other, bindings).(*NamedTypeExpr)
	if got.Name != "Vector" {
		t.Errorf("unrelated type name should pass through unchanged, got %q", got.Name)
	}
}
