package ast

// NamedTypeExpr references a primitive or declared type by its source-level
// name (`int`, `Vector`, `T`).
type NamedTypeExpr struct {
	Name string
	pos  Position
}

func NewNamedTypeExpr(name string, pos Position) *NamedTypeExpr { return &NamedTypeExpr{Name: name, pos: pos} }
func (t *NamedTypeExpr) Pos() Position { return t.pos }
func (*NamedTypeExpr) typeNode()       {}

// GenericInstanceTypeExpr is `Base<Arg1, Arg2>`.
type GenericInstanceTypeExpr struct {
	Base TypeExpr
	Args []TypeExpr
	pos  Position
}

func NewGenericInstanceTypeExpr(base TypeExpr, args []TypeExpr, pos Position) *GenericInstanceTypeExpr {
	return &GenericInstanceTypeExpr{Base: base, Args: args, pos: pos}
}
func (t *GenericInstanceTypeExpr) Pos() Position { return t.pos }
func (*GenericInstanceTypeExpr) typeNode()       {}

// PointerTypeExpr is `*T`.
type PointerTypeExpr struct {
	Elem TypeExpr
	pos  Position
}

func NewPointerTypeExpr(elem TypeExpr, pos Position) *PointerTypeExpr {
	return &PointerTypeExpr{Elem: elem, pos: pos}
}
func (t *PointerTypeExpr) Pos() Position { return t.pos }
func (*PointerTypeExpr) typeNode()       {}

// ArrayTypeExpr is `[T; N]` (static array) or `[T]` (Collection<T>) when
// Size is nil.
type ArrayTypeExpr struct {
	Elem TypeExpr
	Size Expr // nil for a dynamic Collection<T>
	pos  Position
}

func NewArrayTypeExpr(elem TypeExpr, size Expr, pos Position) *ArrayTypeExpr {
	return &ArrayTypeExpr{Elem: elem, Size: size, pos: pos}
}
func (t *ArrayTypeExpr) Pos() Position { return t.pos }
func (*ArrayTypeExpr) typeNode()       {}

// FunctionTypeExpr is `fn(Params) <Ret>`.
type FunctionTypeExpr struct {
	Params []TypeExpr
	Return TypeExpr
	pos    Position
}

func NewFunctionTypeExpr(params []TypeExpr, ret TypeExpr, pos Position) *FunctionTypeExpr {
	return &FunctionTypeExpr{Params: params, Return: ret, pos: pos}
}
func (t *FunctionTypeExpr) Pos() Position { return t.pos }
func (*FunctionTypeExpr) typeNode()       {}

// ModuleQualifiedTypeExpr is `alias.Name`, a type reference through a module
// alias established by `import ... as alias`.
type ModuleQualifiedTypeExpr struct {
	Alias string
	Name  string
	pos   Position
}

func NewModuleQualifiedTypeExpr(alias, name string, pos Position) *ModuleQualifiedTypeExpr {
	return &ModuleQualifiedTypeExpr{Alias: alias, Name: name, pos: pos}
}
func (t *ModuleQualifiedTypeExpr) Pos() Position { return t.pos }
func (*ModuleQualifiedTypeExpr) typeNode()       {}
