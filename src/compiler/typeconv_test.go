package compiler

import (
	"testing"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// TestClassifyMode exercises spec §4.5's classify_mode over its three
// outcomes: no generics -> STANDARD, an erasure-marker constraint -> ERASED,
// any other generic constraint (or none) -> MONO.
func TestClassifyMode(t *testing.T) {
	noGenerics := &ast.StructDecl{Name: "Point"}
	if got := classifyMode(noGenerics); got != ModeStandard {
		t.Errorf("no type params: got %v, want STANDARD", got)
	}

	erased := &ast.StructDecl{
		Name: "Holder",
		TypeParams: []*ast.GenericParam{
			ast.NewGenericParam("T", ast.NewNamedTypeExpr(ast.MarkerCastable, ast.Position{}), ast.Position{}),
		},
	}
	if got := classifyMode(erased); got != ModeErased {
		t.Errorf("Castable-constrained T: got %v, want ERASED", got)
	}

	mono := &ast.StructDecl{
		Name: "Box",
		TypeParams: []*ast.GenericParam{
			ast.NewGenericParam("T", nil, ast.Position{}),
		},
	}
	if got := classifyMode(mono); got != ModeMono {
		t.Errorf("unconstrained T: got %v, want MONO", got)
	}

	monoFunc := &ast.FuncDecl{
		Name: "identity",
		TypeParams: []*ast.GenericParam{
			ast.NewGenericParam("T", ast.NewNamedTypeExpr("Comparable", ast.Position{}), ast.Position{}),
		},
	}
	if got := classifyMode(monoFunc); got != ModeMono {
		t.Errorf("non-erasure-marker interface constraint: got %v, want MONO", got)
	}
}

// TestSanitizeSignature checks the FinType-signature-to-identifier mapping
// used to build monomorphized type names (<Base>_<arg-signatures>, spec §4.5).
func TestSanitizeSignature(t *testing.T) {
	tests := []struct{ in, want string }{
		{"int", "int"},
		{"*int", "pint"},
		{"p_box__Box<int>", "p_box__Box_int_"},
	}
	for _, tc := range tests {
		if got := sanitizeSignature(tc.in); got != tc.want {
			t.Errorf("sanitizeSignature(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

// TestMatchGenericTypesBasic checks pattern unification and the consistency
// rule of spec §4.2: "if T was previously bound to int, a later binding to
// float fails the match".
func TestMatchGenericTypesBasic(t *testing.T) {
	bindings := map[string]types.FinType{}
	pattern := types.NewGenericParam("T")
	if !MatchGenericTypes(types.NewPrimitive(types.Int), pattern, bindings) {
		t.Fatalf("first binding of T should succeed")
	}
	if bindings["T"].Primitive != types.Int {
		t.Fatalf("expected T bound to int, got %v", bindings["T"])
	}

	// Consistent re-binding succeeds.
	if !MatchGenericTypes(types.NewPrimitive(types.Int), pattern, bindings) {
		t.Errorf("re-matching T against the same concrete type should succeed")
	}

	// Inconsistent re-binding fails.
	if MatchGenericTypes(types.NewPrimitive(types.Float), pattern, bindings) {
		t.Errorf("re-matching T against a different concrete type must fail")
	}
}

// TestMatchGenericTypesNested checks unification through pointer and struct
// wrappers, e.g. matching Box<T> against a concrete Box<int>.
func TestMatchGenericTypesNested(t *testing.T) {
	bindings := map[string]types.FinType{}
	concrete := types.NewStruct("p_box__Box", []types.FinType{types.NewPrimitive(types.Int)})
	pattern := types.NewStruct("p_box__Box", []types.FinType{types.NewGenericParam("T")})
	if !MatchGenericTypes(concrete, pattern, bindings) {
		t.Fatalf("expected Box<T> to unify against Box<int>")
	}
	if bindings["T"].Primitive != types.Int {
		t.Errorf("expected T bound to int, got %v", bindings["T"])
	}

	wrongShape := types.NewStruct("p_vec__Vector", []types.FinType{types.NewPrimitive(types.Int)})
	if MatchGenericTypes(wrongShape, pattern, map[string]types.FinType{}) {
		t.Errorf("a struct of a different base name must not unify")
	}
}

// TestLastSegment checks the mangled-name suffix extraction used when
// comparing struct base names across modules (two modules can both mangle a
// struct named Vector to different prefixes).
func TestLastSegment(t *testing.T) {
	if got := lastSegment("vectors_math__Vector", "__"); got != "Vector" {
		t.Errorf("lastSegment = %q, want Vector", got)
	}
	if got := lastSegment("Vector", "__"); got != "Vector" {
		t.Errorf("lastSegment with no separator should return input unchanged, got %q", got)
	}
}

// TestParseIntLit checks the literal-text-to-int64 helper used for static
// array sizes and explicit enum member values.
func TestParseIntLit(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"42", 42},
		{"1000", 1000},
	}
	for _, tc := range tests {
		if got := parseIntLit(tc.in); got != tc.want {
			t.Errorf("parseIntLit(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

// TestOpSuffix checks the operator-symbol-to-mangled-suffix table (spec
// §4.5 "one function per supported symbol, mangled <Struct>__op_<suffix>").
func TestOpSuffix(t *testing.T) {
	tests := map[string]string{
		"+": "add", "-": "sub", "*": "mul", "/": "div", "%": "mod",
		"==": "eq", "!=": "neq", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
		"[]": "index",
	}
	for sym, want := range tests {
		if got := opSuffix(sym); got != want {
			t.Errorf("opSuffix(%q) = %q, want %q", sym, got, want)
		}
	}
	if got := opSuffix("??"); got != "op" {
		t.Errorf("unknown operator symbol should fall back to 'op', got %q", got)
	}
}
