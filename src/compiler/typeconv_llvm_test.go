package compiler

import (
	"testing"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/util"
)

// newTestCompiler builds a throwaway Compiler over an empty LLVM context,
// for tests that exercise real type lowering rather than pure helpers.
func newTestCompiler(t *testing.T) *Compiler {
	t.Helper()
	c := New(util.Options{Src: "test.fin", Root: "."})
	t.Cleanup(c.Dispose)
	return c
}

// TestConvertTypePrimitives checks the direct AST-to-LLVM primitive mapping
// table of spec §3 "LLVM type mapping": int=i32, long=i64, float=float,
// double=double, bool=i1, char=i8, string=i8*, void=void.
func TestConvertTypePrimitives(t *testing.T) {
	c := newTestCompiler(t)
	tests := []struct {
		name      string
		wantWidth int
	}{
		{"int", 32},
		{"long", 64},
		{"bool", 1},
		{"char", 8},
	}
	for _, tc := range tests {
		llt, err := c.ConvertType(ast.NewNamedTypeExpr(tc.name, ast.Position{}))
		if err != nil {
			t.Fatalf("ConvertType(%s): %v", tc.name, err)
		}
		if got := llt.IntTypeWidth(); got != tc.wantWidth {
			t.Errorf("%s width = %d, want %d", tc.name, got, tc.wantWidth)
		}
	}

	strType, err := c.ConvertType(ast.NewNamedTypeExpr("string", ast.Position{}))
	if err != nil {
		t.Fatalf("ConvertType(string): %v", err)
	}
	if strType.TypeKind() != llvm.PointerTypeKind {
		t.Errorf("string should lower to a pointer type, got kind %v", strType.TypeKind())
	}
}

// TestConvertTypeUnknownStruct verifies an undeclared struct name is a
// resolution error rather than a silent fallback (spec §7 "unknown struct").
func TestConvertTypeUnknownStruct(t *testing.T) {
	c := newTestCompiler(t)
	_, err := c.ConvertType(ast.NewNamedTypeExpr("NoSuchStruct", ast.Position{}))
	if err == nil {
		t.Fatalf("expected an error resolving an undeclared struct name")
	}
}
