// Package ast defines Fin's typed abstract syntax tree: one concrete struct
// per grammar production instead of a single untyped node-with-payload type.
package ast

// Position locates a node in its defining source file.
type Position struct {
	File string
	Line int
	Col  int
}

// Node is implemented by every AST node.
type Node interface {
	Pos() Position
}

// Decl is a top-level or struct-member declaration.
type Decl interface {
	Node
	declNode()
}

// Expr is an expression node.
type Expr interface {
	Node
	exprNode()
}

// Stmt is a statement node.
type Stmt interface {
	Node
	stmtNode()
}

// TypeExpr is a type annotation as written in source.
type TypeExpr interface {
	Node
	typeNode()
}

// Attribute is a `name="value"` annotation on a declaration, e.g.
// llvm_name="puts" or linkage="weak".
type Attribute struct {
	Name  string
	Value string
}

// Program is the root node: an ordered list of top-level statements from a
// single source file.
type Program struct {
	Path  string // source file path, used as the mangling root-relative path.
	Decls []Decl
	pos   Position
}

func NewProgram(path string, decls []Decl, pos Position) *Program {
	return &Program{Path: path, Decls: decls, pos: pos}
}

func (p *Program) Pos() Position { return p.pos }

// Param is a function or method parameter.
type Param struct {
	Name string
	Type TypeExpr
	pos  Position
}

func NewParam(name string, typ TypeExpr, pos Position) *Param {
	return &Param{Name: name, Type: typ, pos: pos}
}

func (p *Param) Pos() Position { return p.pos }

// GenericParam is a type parameter declared on a struct, interface or
// function, with an optional constraint. The constraint may name a concrete
// struct/interface bound, or one of the erasure markers (Castable, Any,
// Object, VoidPointer) that forces the ERASED compilation mode.
type GenericParam struct {
	Name       string
	Constraint TypeExpr // nil if unconstrained
	pos        Position
}

func NewGenericParam(name string, constraint TypeExpr, pos Position) *GenericParam {
	return &GenericParam{Name: name, Constraint: constraint, pos: pos}
}

func (g *GenericParam) Pos() Position { return g.pos }

// Erasure marker constraint names, per spec §4.5 classify_mode.
const (
	MarkerCastable    = "Castable"
	MarkerAny         = "Any"
	MarkerObject      = "Object"
	MarkerVoidPointer = "VoidPointer"
)

// IsErasureMarker reports whether a constraint name forces ERASED mode.
func IsErasureMarker(name string) bool {
	switch name {
	case MarkerCastable, MarkerAny, MarkerObject, MarkerVoidPointer:
		return true
	}
	return false
}

// Visibility of a declaration.
type Visibility int

const (
	Private Visibility = iota
	Public
)
