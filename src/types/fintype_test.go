package types

import "testing"

// TestSignature verifies the canonical signature strings for each FinType
// variant, per spec §3/§8: "every FinType produces a stable string signature".
func TestSignature(t *testing.T) {
	tests := []struct {
		name string
		typ  FinType
		want string
	}{
		{"primitive int", NewPrimitive(Int), "int"},
		{"primitive string", NewPrimitive(String), "string"},
		{"pointer to int", NewPointer(NewPrimitive(Int)), "*int"},
		{"struct no args", NewStruct("p_vec__Vector", nil), "p_vec__Vector"},
		{
			"struct with args",
			NewStruct("p_box__Box", []FinType{NewPrimitive(Int)}),
			"p_box__Box<int>",
		},
		{"generic param", NewGenericParam("T"), "$T"},
		{"any", Any, "any"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.typ.Signature(); got != tc.want {
				t.Errorf("Signature() = %q, want %q", got, tc.want)
			}
		})
	}
}

// TestTypeIDDeterministic verifies spec §8: "t.type_id equals FNV-1a-64 of
// t.signature; for any two equal-by-structure FinTypes, their IDs are equal".
func TestTypeIDDeterministic(t *testing.T) {
	a := NewStruct("p_box__Box", []FinType{NewPrimitive(Int)})
	b := NewStruct("p_box__Box", []FinType{NewPrimitive(Int)})
	if a.TypeID() != b.TypeID() {
		t.Fatalf("equal-by-structure FinTypes produced different type IDs: %d vs %d", a.TypeID(), b.TypeID())
	}

	c := NewStruct("p_box__Box", []FinType{NewPrimitive(Long)})
	if a.TypeID() == c.TypeID() {
		t.Fatalf("distinct FinTypes produced the same type ID")
	}

	// The scenario in spec §8.6: typeof(int) is the FNV-1a-64 hash of "int".
	wantIntID := fnv1a64("int")
	if got := NewPrimitive(Int).TypeID(); got != wantIntID {
		t.Errorf("TypeID for int = %d, want %d", got, wantIntID)
	}
}

// TestEqual checks structural equality independent of pointer identity.
func TestEqual(t *testing.T) {
	a := NewPointer(NewPrimitive(Int))
	b := NewPointer(NewPrimitive(Int))
	if !a.Equal(b) {
		t.Errorf("expected structurally identical pointer FinTypes to be Equal")
	}
	c := NewPointer(NewPrimitive(Long))
	if a.Equal(c) {
		t.Errorf("expected pointer-to-int and pointer-to-long to differ")
	}
}

// TestIsValueType checks the box-by-malloc vs box-by-bitcast classification
// (spec §4.7 "For value types ... For strings ... For pointers: bitcast").
func TestIsValueType(t *testing.T) {
	if !NewPrimitive(Int).IsValueType() {
		t.Errorf("int should be a value type")
	}
	if NewPrimitive(String).IsValueType() {
		t.Errorf("string should not be a value type (already a pointer)")
	}
	if !NewStruct("S", nil).IsValueType() {
		t.Errorf("struct should be a value type (spec §4.7 lists structs and collections among malloc+store types)")
	}
	if !NewPointer(NewPrimitive(Int)).Equal(NewPointer(NewPrimitive(Int))) {
		t.Errorf("sanity check: pointer signatures should compare equal")
	}
	if NewPointer(NewPrimitive(Int)).IsValueType() {
		t.Errorf("a plain pointer should not be a value type (already pointer-shaped)")
	}
}

// fnv1a64 is a reference FNV-1a implementation independent of the package
// under test, used only to cross-check TypeID.
func fnv1a64(s string) uint64 {
	const offset = 14695981039346656037
	const prime = 1099511628211
	h := uint64(offset)
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= prime
	}
	return h
}
