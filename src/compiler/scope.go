package compiler

import (
	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// symbolInfo pairs a value's storage location with its semantic type, the
// unit of name resolution carried by a Scope (spec §4.3, grounded on the
// prototype's SymbolInfo).
type symbolInfo struct {
	value llvm.Value
	typ   types.FinType
}

// Scope is one frame of the linked scope stack. Each function body, block,
// and loop pushes a child frame; resolution walks up the parent chain.
type Scope struct {
	parent *Scope

	symbols map[string]symbolInfo

	typeParams      map[string]bool   // names bound as generic type parameters in this frame
	typeConstraints map[string]string // type-parameter name -> constraint name

	typeAliases map[string]string // local alias -> mangled target name, from imports

	IsLoop   bool
	LoopCond llvm.BasicBlock
	LoopEnd  llvm.BasicBlock
}

// NewScope creates a child frame of parent.
func NewScope(parent *Scope) *Scope {
	return &Scope{
		parent:          parent,
		symbols:         make(map[string]symbolInfo),
		typeParams:      make(map[string]bool),
		typeConstraints: make(map[string]string),
		typeAliases:     make(map[string]string),
	}
}

// NewGlobalScope creates the root frame with no parent.
func NewGlobalScope() *Scope { return NewScope(nil) }

// Define binds name to (value, typ) in this frame, shadowing any outer
// binding of the same name.
func (s *Scope) Define(name string, value llvm.Value, typ types.FinType) {
	s.symbols[name] = symbolInfo{value: value, typ: typ}
}

// Resolve walks the parent chain looking for name, returning ok=false if
// unbound anywhere (spec §7 ErrUnresolvedSymbol territory).
func (s *Scope) Resolve(name string) (llvm.Value, types.FinType, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if info, ok := cur.symbols[name]; ok {
			return info.value, info.typ, true
		}
	}
	return llvm.Value{}, types.FinType{}, false
}

// ResolveType resolves name through the alias chain: a local alias set up by
// an `import ... for X as Y` maps Y to the mangled name X actually compiled
// to, so type lookups must follow the alias before falling through to a
// direct name.
func (s *Scope) ResolveType(name string) string {
	for cur := s; cur != nil; cur = cur.parent {
		if target, ok := cur.typeAliases[name]; ok {
			return target
		}
	}
	return name
}

// DefineTypeAlias registers a local alias introduced by a module import.
func (s *Scope) DefineTypeAlias(alias, target string) {
	s.typeAliases[alias] = target
}

// DefineTypeParameter binds name as a generic type parameter visible in this
// frame and its children, with an optional constraint name (an interface or
// erasure-marker name; empty means unconstrained).
func (s *Scope) DefineTypeParameter(name, constraint string) {
	s.typeParams[name] = true
	if constraint != "" {
		s.typeConstraints[name] = constraint
	}
}

// IsTypeParameter reports whether name is bound as a generic type parameter
// anywhere up the parent chain.
func (s *Scope) IsTypeParameter(name string) bool {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.typeParams[name] {
			return true
		}
	}
	return false
}

// TypeConstraint returns the constraint bound to generic parameter name, or
// "" if name carries no constraint (or isn't a type parameter at all).
func (s *Scope) TypeConstraint(name string) string {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.typeParams[name] {
			if c, ok := cur.typeConstraints[name]; ok {
				return c
			}
			return ""
		}
	}
	return ""
}

// FindLoopScope walks up to the nearest enclosing loop frame, for break and
// continue statements (spec §4.3, §4.7).
func (s *Scope) FindLoopScope() *Scope {
	for cur := s; cur != nil; cur = cur.parent {
		if cur.IsLoop {
			return cur
		}
	}
	return nil
}

// IsErasureConstraint reports whether a type-parameter constraint name is
// one of the reflective erasure markers (spec §4.2, §9), which drives the
// ERASED/MONO/STANDARD classification in struct and function lowering.
func IsErasureConstraint(constraint string) bool {
	return ast.IsErasureMarker(constraint)
}
