// Package types implements FinType, the compiler's semantic type
// representation: independent of both the AST's source-level type nodes and
// LLVM's lowered types, carrying a deterministic 64-bit type ID derived from
// a canonical string signature (spec §3, §4.2).
package types

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Kind discriminates the FinType sum type.
type Kind int

const (
	KindPrimitive Kind = iota
	KindPointer
	KindStruct
	KindGenericParam
	KindAny
)

// Primitive names and bit widths, per spec §3.
const (
	Int    = "int"
	Long   = "long"
	Float  = "float"
	Double = "double"
	Bool   = "bool"
	Char   = "char"
	String = "string"
	Void   = "void"
)

// BitWidth returns the bit width of a primitive name, or 0 if unknown.
func BitWidth(name string) int {
	switch name {
	case Int:
		return 32
	case Long:
		return 64
	case Float:
		return 32
	case Double:
		return 64
	case Bool:
		return 1
	case Char:
		return 8
	case String:
		return 64 // pointer-to-char width on a 64-bit target
	case Void:
		return 0
	}
	return 0
}

// FinType is the sum type described in spec §3. Exactly the fields relevant
// to Kind are populated; the zero value of irrelevant fields is ignored.
type FinType struct {
	Kind Kind

	// KindPrimitive
	Primitive string

	// KindPointer
	Pointee *FinType

	// KindStruct — also represents interfaces and Collection<T>.
	StructName string // mangled name
	Args       []FinType

	// KindGenericParam
	ParamName string
}

// NewPrimitive constructs a primitive FinType.
func NewPrimitive(name string) FinType { return FinType{Kind: KindPrimitive, Primitive: name} }

// NewPointer constructs a pointer-to-pointee FinType.
func NewPointer(pointee FinType) FinType { return FinType{Kind: KindPointer, Pointee: &pointee} }

// NewStruct constructs a struct/interface/collection FinType keyed by its
// mangled name and generic argument list (empty for non-generic structs).
func NewStruct(mangledName string, args []FinType) FinType {
	return FinType{Kind: KindStruct, StructName: mangledName, Args: args}
}

// NewGenericParam constructs an unresolved type-parameter FinType.
func NewGenericParam(name string) FinType { return FinType{Kind: KindGenericParam, ParamName: name} }

// Any is the runtime-tagged erased value type.
var Any = FinType{Kind: KindAny}

// Signature returns the canonical string signature used to derive TypeID.
// Two FinTypes that are structurally equal always produce the same
// signature (spec §8 invariant).
func (t FinType) Signature() string {
	switch t.Kind {
	case KindPrimitive:
		return t.Primitive
	case KindPointer:
		return "*" + t.Pointee.Signature()
	case KindStruct:
		if len(t.Args) == 0 {
			return t.StructName
		}
		sigs := make([]string, len(t.Args))
		for i, a := range t.Args {
			sigs[i] = a.Signature()
		}
		return fmt.Sprintf("%s<%s>", t.StructName, strings.Join(sigs, ","))
	case KindGenericParam:
		return "$" + t.ParamName
	case KindAny:
		return "any"
	default:
		return "?"
	}
}

// TypeID is the 64-bit FNV-1a hash of Signature(), injected into compiled
// code so `typeof` can return a runtime-queryable integer (spec §3, §8).
func (t FinType) TypeID() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(t.Signature()))
	return h.Sum64()
}

// Equal reports structural equality: two FinTypes are equal iff their
// signatures match.
func (t FinType) Equal(other FinType) bool {
	return t.Signature() == other.Signature()
}

// IsValueType reports whether t is boxed by malloc+store rather than by a
// plain bitcast, per the boxing protocol in spec §4.7: "primitives other
// than string, structs, collections" are malloc'd and stored through;
// strings and plain pointers are already byte-pointer-shaped and need only a
// bitcast. KindStruct also covers interfaces and Collection<T> (spec §3), so
// a fat pointer or slice value boxed into an erased slot takes the same
// malloc+store path as any other aggregate.
func (t FinType) IsValueType() bool {
	if t.Kind == KindPrimitive {
		return t.Primitive != String
	}
	return t.Kind == KindStruct
}

// String implements fmt.Stringer for diagnostics.
func (t FinType) String() string { return t.Signature() }
