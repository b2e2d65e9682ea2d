package ast

// IntLit is an integer literal; Text preserves the original digits (so a
// suffix like `10L` can select `long` at lowering time).
type IntLit struct {
	Text string
	Long bool
	pos  Position
}

func NewIntLit(text string, isLong bool, pos Position) *IntLit { return &IntLit{Text: text, Long: isLong, pos: pos} }
func (l *IntLit) Pos() Position { return l.pos }
func (*IntLit) exprNode()       {}

// FloatLit is a floating-point literal.
type FloatLit struct {
	Text   string
	Double bool
	pos    Position
}

func NewFloatLit(text string, isDouble bool, pos Position) *FloatLit {
	return &FloatLit{Text: text, Double: isDouble, pos: pos}
}
func (l *FloatLit) Pos() Position { return l.pos }
func (*FloatLit) exprNode()       {}

// StringLit is a string literal.
type StringLit struct {
	Value string
	pos   Position
}

func NewStringLit(value string, pos Position) *StringLit { return &StringLit{Value: value, pos: pos} }
func (l *StringLit) Pos() Position { return l.pos }
func (*StringLit) exprNode()       {}

// CharLit is a single character literal.
type CharLit struct {
	Value byte
	pos   Position
}

func NewCharLit(value byte, pos Position) *CharLit { return &CharLit{Value: value, pos: pos} }
func (l *CharLit) Pos() Position { return l.pos }
func (*CharLit) exprNode()       {}

// BoolLit is a boolean literal.
type BoolLit struct {
	Value bool
	pos   Position
}

func NewBoolLit(value bool, pos Position) *BoolLit { return &BoolLit{Value: value, pos: pos} }
func (l *BoolLit) Pos() Position { return l.pos }
func (*BoolLit) exprNode()       {}

// Ident references a named value, type parameter, or (when followed by a
// call) a function/constructor.
type Ident struct {
	Name string
	pos  Position
}

func NewIdent(name string, pos Position) *Ident { return &Ident{Name: name, pos: pos} }
func (i *Ident) Pos() Position { return i.pos }
func (*Ident) exprNode()       {}

// BinaryExpr is a binary operator application, including overloadable
// operators resolved against a struct's OperatorDecl registry at lowering
// time.
type BinaryExpr struct {
	Op    string
	Left  Expr
	Right Expr
	pos   Position
}

func NewBinaryExpr(op string, left, right Expr, pos Position) *BinaryExpr {
	return &BinaryExpr{Op: op, Left: left, Right: right, pos: pos}
}
func (e *BinaryExpr) Pos() Position { return e.pos }
func (*BinaryExpr) exprNode()       {}

// UnaryExpr is a prefix unary operator application (`-x`, `!x`, `~x`).
type UnaryExpr struct {
	Op      string
	Operand Expr
	pos     Position
}

func NewUnaryExpr(op string, operand Expr, pos Position) *UnaryExpr {
	return &UnaryExpr{Op: op, Operand: operand, pos: pos}
}
func (e *UnaryExpr) Pos() Position { return e.pos }
func (*UnaryExpr) exprNode()       {}

// PostfixExpr is a postfix operator application (`x++`, `x--`).
type PostfixExpr struct {
	Op      string
	Operand Expr
	pos     Position
}

func NewPostfixExpr(op string, operand Expr, pos Position) *PostfixExpr {
	return &PostfixExpr{Op: op, Operand: operand, pos: pos}
}
func (e *PostfixExpr) Pos() Position { return e.pos }
func (*PostfixExpr) exprNode()       {}

// CallExpr is a function, method, or constructor call. Callee is usually an
// *Ident or *MemberExpr; TypeArgs carries explicit generic arguments from a
// call written `name<int>(...)`.
type CallExpr struct {
	Callee   Expr
	TypeArgs []TypeExpr
	Args     []Expr
	pos      Position
}

func NewCallExpr(callee Expr, typeArgs []TypeExpr, args []Expr, pos Position) *CallExpr {
	return &CallExpr{Callee: callee, TypeArgs: typeArgs, Args: args, pos: pos}
}
func (e *CallExpr) Pos() Position { return e.pos }
func (*CallExpr) exprNode()       {}

// SpecialCallExpr is an `@name(...)` compile-time construct: @hasattr,
// @name, @unsafe_unbox, or a user SpecialDecl.
type SpecialCallExpr struct {
	Name string
	Args []Expr
	pos  Position
}

func NewSpecialCallExpr(name string, args []Expr, pos Position) *SpecialCallExpr {
	return &SpecialCallExpr{Name: name, Args: args, pos: pos}
}
func (e *SpecialCallExpr) Pos() Position { return e.pos }
func (*SpecialCallExpr) exprNode()       {}

// MemberExpr is a `target.field` or `target.method` access, including
// `super.member` (Target is an *Ident named "super").
type MemberExpr struct {
	Target Expr
	Member string
	pos    Position
}

func NewMemberExpr(target Expr, member string, pos Position) *MemberExpr {
	return &MemberExpr{Target: target, Member: member, pos: pos}
}
func (e *MemberExpr) Pos() Position { return e.pos }
func (*MemberExpr) exprNode()       {}

// ModuleMemberExpr is an `alias.Symbol` qualified access into an aliased
// module import.
type ModuleMemberExpr struct {
	Alias  string
	Member string
	pos    Position
}

func NewModuleMemberExpr(alias, member string, pos Position) *ModuleMemberExpr {
	return &ModuleMemberExpr{Alias: alias, Member: member, pos: pos}
}
func (e *ModuleMemberExpr) Pos() Position { return e.pos }
func (*ModuleMemberExpr) exprNode()       {}

// IndexExpr is an array/collection index operation.
type IndexExpr struct {
	Target Expr
	Index  Expr
	pos    Position
}

func NewIndexExpr(target, index Expr, pos Position) *IndexExpr {
	return &IndexExpr{Target: target, Index: index, pos: pos}
}
func (e *IndexExpr) Pos() Position { return e.pos }
func (*IndexExpr) exprNode()       {}

// ArrayLiteralExpr is an `[e1, e2, ...]` array literal.
type ArrayLiteralExpr struct {
	ElemType TypeExpr // optional explicit element type
	Elements []Expr
	pos      Position
}

func NewArrayLiteralExpr(elemType TypeExpr, elements []Expr, pos Position) *ArrayLiteralExpr {
	return &ArrayLiteralExpr{ElemType: elemType, Elements: elements, pos: pos}
}
func (e *ArrayLiteralExpr) Pos() Position { return e.pos }
func (*ArrayLiteralExpr) exprNode()       {}

// FieldInit is a single `name: value` pair within a struct instantiation.
type FieldInit struct {
	Name  string
	Value Expr
	pos   Position
}

func NewFieldInit(name string, value Expr, pos Position) *FieldInit {
	return &FieldInit{Name: name, Value: value, pos: pos}
}
func (f *FieldInit) Pos() Position { return f.pos }

// StructLiteralExpr is a `Name<T>{field: value, ...}` struct instantiation,
// dispatching to `<Struct>__init` at lowering time.
type StructLiteralExpr struct {
	StructName string
	TypeArgs   []TypeExpr
	Fields     []*FieldInit
	pos        Position
}

func NewStructLiteralExpr(name string, typeArgs []TypeExpr, fields []*FieldInit, pos Position) *StructLiteralExpr {
	return &StructLiteralExpr{StructName: name, TypeArgs: typeArgs, Fields: fields, pos: pos}
}
func (e *StructLiteralExpr) Pos() Position { return e.pos }
func (*StructLiteralExpr) exprNode()       {}

// AddressOfExpr is `&expr`.
type AddressOfExpr struct {
	Operand Expr
	pos     Position
}

func NewAddressOfExpr(operand Expr, pos Position) *AddressOfExpr {
	return &AddressOfExpr{Operand: operand, pos: pos}
}
func (e *AddressOfExpr) Pos() Position { return e.pos }
func (*AddressOfExpr) exprNode()       {}

// DerefExpr is `*expr`.
type DerefExpr struct {
	Operand Expr
	pos     Position
}

func NewDerefExpr(operand Expr, pos Position) *DerefExpr {
	return &DerefExpr{Operand: operand, pos: pos}
}
func (e *DerefExpr) Pos() Position { return e.pos }
func (*DerefExpr) exprNode()       {}

// TypeConversionExpr is `std_conv<Target>(expr)`.
type TypeConversionExpr struct {
	Target  TypeExpr
	Operand Expr
	pos     Position
}

func NewTypeConversionExpr(target TypeExpr, operand Expr, pos Position) *TypeConversionExpr {
	return &TypeConversionExpr{Target: target, Operand: operand, pos: pos}
}
func (e *TypeConversionExpr) Pos() Position { return e.pos }
func (*TypeConversionExpr) exprNode()       {}

// TypeofExpr is `typeof(expr)`.
type TypeofExpr struct {
	Operand Expr
	pos     Position
}

func NewTypeofExpr(operand Expr, pos Position) *TypeofExpr { return &TypeofExpr{Operand: operand, pos: pos} }
func (e *TypeofExpr) Pos() Position { return e.pos }
func (*TypeofExpr) exprNode()       {}

// SizeofExpr is `sizeof(Type)` or `sizeof(expr)`.
type SizeofExpr struct {
	Type    TypeExpr // set if sizeof(Type)
	Operand Expr     // set if sizeof(expr)
	pos     Position
}

func NewSizeofTypeExpr(typ TypeExpr, pos Position) *SizeofExpr { return &SizeofExpr{Type: typ, pos: pos} }
func NewSizeofExprExpr(operand Expr, pos Position) *SizeofExpr {
	return &SizeofExpr{Operand: operand, pos: pos}
}
func (e *SizeofExpr) Pos() Position { return e.pos }
func (*SizeofExpr) exprNode()       {}

// NewExpr is `new Type(args)`, a heap allocation owned by user code.
type NewExpr struct {
	Type TypeExpr
	Args []Expr
	pos  Position
}

func NewNewExpr(typ TypeExpr, args []Expr, pos Position) *NewExpr {
	return &NewExpr{Type: typ, Args: args, pos: pos}
}
func (e *NewExpr) Pos() Position { return e.pos }
func (*NewExpr) exprNode()       {}

// DeleteExpr is `delete expr`, invoking the destructor then freeing.
type DeleteExpr struct {
	Operand Expr
	pos     Position
}

func NewDeleteExpr(operand Expr, pos Position) *DeleteExpr { return &DeleteExpr{Operand: operand, pos: pos} }
func (e *DeleteExpr) Pos() Position { return e.pos }
func (*DeleteExpr) exprNode()       {}

// LambdaExpr is a stateless, non-capturing function literal, lowered to a
// fresh top-level function.
type LambdaExpr struct {
	Params     []*Param
	ReturnType TypeExpr
	Body       *BlockStmt
	pos        Position
}

func NewLambdaExpr(params []*Param, ret TypeExpr, body *BlockStmt, pos Position) *LambdaExpr {
	return &LambdaExpr{Params: params, ReturnType: ret, Body: body, pos: pos}
}
func (e *LambdaExpr) Pos() Position { return e.pos }
func (*LambdaExpr) exprNode()       {}
