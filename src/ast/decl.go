package ast

// VarDecl is a `let name <Type> = value;` local or global variable
// declaration.
type VarDecl struct {
	Vis   Visibility
	Name  string
	Type  TypeExpr // nil if inferred from Value
	Value Expr
	pos   Position
}

func NewVarDecl(vis Visibility, name string, typ TypeExpr, value Expr, pos Position) *VarDecl {
	return &VarDecl{Vis: vis, Name: name, Type: typ, Value: value, pos: pos}
}
func (d *VarDecl) Pos() Position { return d.pos }
func (*VarDecl) declNode()       {}

// FuncDecl is a `fun name(params) <ReturnType> { body }` declaration. A nil
// Body marks a static-method-only prototype is never produced by the parser;
// FuncDecl is always a full definition (see DefineDecl for externs).
type FuncDecl struct {
	Vis        Visibility
	Name       string
	TypeParams []*GenericParam
	Params     []*Param
	ReturnType TypeExpr // nil means void
	Body       *BlockStmt
	IsStatic   bool // static methods omit the implicit `self` parameter
	Attrs      []Attribute
	pos        Position
}

func NewFuncDecl(vis Visibility, name string, typeParams []*GenericParam, params []*Param, ret TypeExpr, body *BlockStmt, isStatic bool, attrs []Attribute, pos Position) *FuncDecl {
	return &FuncDecl{
		Vis: vis, Name: name, TypeParams: typeParams, Params: params,
		ReturnType: ret, Body: body, IsStatic: isStatic, Attrs: attrs, pos: pos,
	}
}
func (d *FuncDecl) Pos() Position { return d.pos }
func (*FuncDecl) declNode()       {}

// Field is a struct member field, with an optional default-value expression
// evaluated by the generated constructor when no initializer argument is
// supplied at the call site.
type Field struct {
	Vis     Visibility
	Name    string
	Type    TypeExpr
	Default Expr // nil if no default
	pos     Position
}

func NewField(vis Visibility, name string, typ TypeExpr, def Expr, pos Position) *Field {
	return &Field{Vis: vis, Name: name, Type: typ, Default: def, pos: pos}
}
func (f *Field) Pos() Position { return f.pos }

// StructDecl is a `struct Name<T>: Parent1, Parent2 { ... }` declaration.
// Parents may name either a concrete struct (field flattening) or an
// interface (implementation-must-satisfy check).
type StructDecl struct {
	Vis          Visibility
	Name         string
	TypeParams   []*GenericParam
	Parents      []TypeExpr
	Fields       []*Field
	Constructors []*ConstructorDecl
	Destructor   *DestructorDecl // nil if absent
	Operators    []*OperatorDecl
	Methods      []*FuncDecl
	Attrs        []Attribute
	pos          Position
}

func NewStructDecl(vis Visibility, name string, typeParams []*GenericParam, parents []TypeExpr, fields []*Field, ctors []*ConstructorDecl, dtor *DestructorDecl, ops []*OperatorDecl, methods []*FuncDecl, attrs []Attribute, pos Position) *StructDecl {
	return &StructDecl{
		Vis: vis, Name: name, TypeParams: typeParams, Parents: parents,
		Fields: fields, Constructors: ctors, Destructor: dtor, Operators: ops,
		Methods: methods, Attrs: attrs, pos: pos,
	}
}
func (d *StructDecl) Pos() Position { return d.pos }
func (*StructDecl) declNode()       {}

// InterfaceMethod declares a method signature required of implementers; it
// carries no body, only the name and signature used to build vtable layout.
type InterfaceMethod struct {
	Name       string
	Params     []*Param
	ReturnType TypeExpr
	pos        Position
}

func NewInterfaceMethod(name string, params []*Param, ret TypeExpr, pos Position) *InterfaceMethod {
	return &InterfaceMethod{Name: name, Params: params, ReturnType: ret, pos: pos}
}
func (m *InterfaceMethod) Pos() Position { return m.pos }

// InterfaceDecl is an `interface Name { method<Ret>; ... }` declaration.
type InterfaceDecl struct {
	Vis     Visibility
	Name    string
	Methods []*InterfaceMethod
	pos     Position
}

func NewInterfaceDecl(vis Visibility, name string, methods []*InterfaceMethod, pos Position) *InterfaceDecl {
	return &InterfaceDecl{Vis: vis, Name: name, Methods: methods, pos: pos}
}
func (d *InterfaceDecl) Pos() Position { return d.pos }
func (*InterfaceDecl) declNode()       {}

// EnumMember is a single `Name` or `Name = value` enum variant.
type EnumMember struct {
	Name  string
	Value Expr // nil if auto-incremented from the previous member
	pos   Position
}

func NewEnumMember(name string, value Expr, pos Position) *EnumMember {
	return &EnumMember{Name: name, Value: value, pos: pos}
}
func (m *EnumMember) Pos() Position { return m.pos }

// EnumDecl is an `enum Name { A, B = 4, C }` declaration, backed by i32.
type EnumDecl struct {
	Vis     Visibility
	Name    string
	Members []*EnumMember
	pos     Position
}

func NewEnumDecl(vis Visibility, name string, members []*EnumMember, pos Position) *EnumDecl {
	return &EnumDecl{Vis: vis, Name: name, Members: members, pos: pos}
}
func (d *EnumDecl) Pos() Position { return d.pos }
func (*EnumDecl) declNode()       {}

// ConstructorDecl declares one overload of a struct's constructor, lowered
// into `<Struct>__init`.
type ConstructorDecl struct {
	Params []*Param
	Body   *BlockStmt
	pos    Position
}

func NewConstructorDecl(params []*Param, body *BlockStmt, pos Position) *ConstructorDecl {
	return &ConstructorDecl{Params: params, Body: body, pos: pos}
}
func (d *ConstructorDecl) Pos() Position { return d.pos }
func (*ConstructorDecl) declNode()       {}

// OperatorDecl overloads a binary operator symbol on the enclosing struct,
// lowered into `<Struct>__op_<suffix>`.
type OperatorDecl struct {
	Symbol string // e.g. "+", "==", "[]"
	RHS    *Param
	Return TypeExpr
	Body   *BlockStmt
	pos    Position
}

func NewOperatorDecl(symbol string, rhs *Param, ret TypeExpr, body *BlockStmt, pos Position) *OperatorDecl {
	return &OperatorDecl{Symbol: symbol, RHS: rhs, Return: ret, Body: body, pos: pos}
}
func (d *OperatorDecl) Pos() Position { return d.pos }
func (*OperatorDecl) declNode()       {}

// DestructorDecl is a struct's `~Name() { body }`, lowered into
// `<Struct>__del`. Never invoked automatically; only `delete` calls it.
type DestructorDecl struct {
	Body *BlockStmt
	pos  Position
}

func NewDestructorDecl(body *BlockStmt, pos Position) *DestructorDecl {
	return &DestructorDecl{Body: body, pos: pos}
}
func (d *DestructorDecl) Pos() Position { return d.pos }
func (*DestructorDecl) declNode()       {}

// MacroDecl is a macro: a parameter list and an AST body compiled inline at
// each call site with each parameter bound to its compiled argument value.
// The body is not rewritten; arguments are evaluated once, not substituted.
type MacroDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	pos    Position
}

func NewMacroDecl(name string, params []string, body []Stmt, pos Position) *MacroDecl {
	return &MacroDecl{Name: name, Params: params, Body: body, pos: pos}
}
func (d *MacroDecl) Pos() Position { return d.pos }
func (*MacroDecl) declNode()       {}

// SpecialDecl registers a named compile-time function (a `special`) whose
// body executes at the call site and produces either a compile-time value
// or emitted IR, e.g. @hasattr, @name, @unsafe_unbox.
type SpecialDecl struct {
	Name   string
	Params []string
	Body   []Stmt
	pos    Position
}

func NewSpecialDecl(name string, params []string, body []Stmt, pos Position) *SpecialDecl {
	return &SpecialDecl{Name: name, Params: params, Body: body, pos: pos}
}
func (d *SpecialDecl) Pos() Position { return d.pos }
func (*SpecialDecl) declNode()       {}

// ImportTarget names a single imported symbol and its optional local alias,
// e.g. `import { Vector as Vec } from "lib/math";`.
type ImportTarget struct {
	Name  string
	Alias string // empty if not aliased
}

// ImportDecl loads another module. If Targets is empty and Alias is set, the
// whole module is imported under a qualified alias (`alias.Symbol`). If
// Targets is non-empty, each target is pulled into scope directly (values)
// or installed as a type alias (structs/interfaces), per spec §4.4 strict
// mode.
type ImportDecl struct {
	Path     string
	Package  bool // true if Path names a package (multi-file) import
	Targets  []ImportTarget
	Alias    string
	pos      Position
}

func NewImportDecl(path string, isPackage bool, targets []ImportTarget, alias string, pos Position) *ImportDecl {
	return &ImportDecl{Path: path, Package: isPackage, Targets: targets, Alias: alias, pos: pos}
}
func (d *ImportDecl) Pos() Position { return d.pos }
func (*ImportDecl) declNode()       {}

// DefineDecl is an extern-like `define name(params) <Ret>;` foreign function
// declaration. The mangler is bypassed for these symbols.
type DefineDecl struct {
	Name       string
	Params     []*Param
	ReturnType TypeExpr
	Variadic   bool
	Attrs      []Attribute
	pos        Position
}

func NewDefineDecl(name string, params []*Param, ret TypeExpr, variadic bool, attrs []Attribute, pos Position) *DefineDecl {
	return &DefineDecl{Name: name, Params: params, ReturnType: ret, Variadic: variadic, Attrs: attrs, pos: pos}
}
func (d *DefineDecl) Pos() Position { return d.pos }
func (*DefineDecl) declNode()       {}
