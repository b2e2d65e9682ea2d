package ast

// Substitute deep-clones node, replacing every NamedTypeExpr whose Name is a
// key of bindings with the bound concrete TypeExpr. This is the template
// instantiation primitive for MONO generics (spec §4.5): the whole subtree
// is rebuilt by variant rather than mutated in place, so a template may be
// instantiated any number of times from the same cached AST.
func Substitute(node Node, bindings map[string]TypeExpr) Node {
	switch n := node.(type) {
	case nil:
		return nil
	case Decl:
		return substDecl(n, bindings)
	case Expr:
		return substExpr(n, bindings)
	case Stmt:
		return substStmt(n, bindings)
	case TypeExpr:
		return substType(n, bindings)
	case *Param:
		return substParam(n, bindings)
	case *Field:
		return substField(n, bindings)
	default:
		return node
	}
}

func substType(t TypeExpr, b map[string]TypeExpr) TypeExpr {
	if t == nil {
		return nil
	}
	switch n := t.(type) {
	case *NamedTypeExpr:
		if concrete, ok := b[n.Name]; ok {
			return concrete
		}
		cp := *n
		return &cp
	case *GenericInstanceTypeExpr:
		return &GenericInstanceTypeExpr{
			Base: substType(n.Base, b),
			Args: substTypes(n.Args, b),
			pos:  n.pos,
		}
	case *PointerTypeExpr:
		return &PointerTypeExpr{Elem: substType(n.Elem, b), pos: n.pos}
	case *ArrayTypeExpr:
		return &ArrayTypeExpr{Elem: substType(n.Elem, b), Size: substExpr(n.Size, b), pos: n.pos}
	case *FunctionTypeExpr:
		return &FunctionTypeExpr{Params: substTypes(n.Params, b), Return: substType(n.Return, b), pos: n.pos}
	case *ModuleQualifiedTypeExpr:
		cp := *n
		return &cp
	default:
		return t
	}
}

func substTypes(ts []TypeExpr, b map[string]TypeExpr) []TypeExpr {
	if ts == nil {
		return nil
	}
	out := make([]TypeExpr, len(ts))
	for i, t := range ts {
		out[i] = substType(t, b)
	}
	return out
}

func substExpr(e Expr, b map[string]TypeExpr) Expr {
	if e == nil {
		return nil
	}
	switch n := e.(type) {
	case *IntLit, *FloatLit, *StringLit, *CharLit, *BoolLit, *Ident, *ModuleMemberExpr:
		return e // leaves, no substitutable subtree
	case *BinaryExpr:
		return &BinaryExpr{Op: n.Op, Left: substExpr(n.Left, b), Right: substExpr(n.Right, b), pos: n.pos}
	case *UnaryExpr:
		return &UnaryExpr{Op: n.Op, Operand: substExpr(n.Operand, b), pos: n.pos}
	case *PostfixExpr:
		return &PostfixExpr{Op: n.Op, Operand: substExpr(n.Operand, b), pos: n.pos}
	case *CallExpr:
		return &CallExpr{
			Callee:   substExpr(n.Callee, b),
			TypeArgs: substTypes(n.TypeArgs, b),
			Args:     substExprs(n.Args, b),
			pos:      n.pos,
		}
	case *SpecialCallExpr:
		return &SpecialCallExpr{Name: n.Name, Args: substExprs(n.Args, b), pos: n.pos}
	case *MemberExpr:
		return &MemberExpr{Target: substExpr(n.Target, b), Member: n.Member, pos: n.pos}
	case *IndexExpr:
		return &IndexExpr{Target: substExpr(n.Target, b), Index: substExpr(n.Index, b), pos: n.pos}
	case *ArrayLiteralExpr:
		return &ArrayLiteralExpr{ElemType: substType(n.ElemType, b), Elements: substExprs(n.Elements, b), pos: n.pos}
	case *StructLiteralExpr:
		fields := make([]*FieldInit, len(n.Fields))
		for i, f := range n.Fields {
			fields[i] = &FieldInit{Name: f.Name, Value: substExpr(f.Value, b), pos: f.pos}
		}
		return &StructLiteralExpr{StructName: n.StructName, TypeArgs: substTypes(n.TypeArgs, b), Fields: fields, pos: n.pos}
	case *AddressOfExpr:
		return &AddressOfExpr{Operand: substExpr(n.Operand, b), pos: n.pos}
	case *DerefExpr:
		return &DerefExpr{Operand: substExpr(n.Operand, b), pos: n.pos}
	case *TypeConversionExpr:
		return &TypeConversionExpr{Target: substType(n.Target, b), Operand: substExpr(n.Operand, b), pos: n.pos}
	case *TypeofExpr:
		return &TypeofExpr{Operand: substExpr(n.Operand, b), pos: n.pos}
	case *SizeofExpr:
		return &SizeofExpr{Type: substType(n.Type, b), Operand: substExpr(n.Operand, b), pos: n.pos}
	case *NewExpr:
		return &NewExpr{Type: substType(n.Type, b), Args: substExprs(n.Args, b), pos: n.pos}
	case *DeleteExpr:
		return &DeleteExpr{Operand: substExpr(n.Operand, b), pos: n.pos}
	case *LambdaExpr:
		return &LambdaExpr{
			Params:     substParams(n.Params, b),
			ReturnType: substType(n.ReturnType, b),
			Body:       substStmt(n.Body, b).(*BlockStmt),
			pos:        n.pos,
		}
	default:
		return e
	}
}

func substExprs(es []Expr, b map[string]TypeExpr) []Expr {
	if es == nil {
		return nil
	}
	out := make([]Expr, len(es))
	for i, e := range es {
		out[i] = substExpr(e, b)
	}
	return out
}

func substStmt(s Stmt, b map[string]TypeExpr) Stmt {
	if s == nil {
		return nil
	}
	switch n := s.(type) {
	case *BlockStmt:
		stmts := make([]Stmt, len(n.Stmts))
		for i, st := range n.Stmts {
			stmts[i] = substStmt(st, b)
		}
		return &BlockStmt{Stmts: stmts, pos: n.pos}
	case *ExprStmt:
		return &ExprStmt{Expr: substExpr(n.Expr, b), pos: n.pos}
	case *DeclStmt:
		return &DeclStmt{Decl: substDecl(n.Decl, b), pos: n.pos}
	case *AssignStmt:
		return &AssignStmt{Target: substExpr(n.Target, b), Value: substExpr(n.Value, b), pos: n.pos}
	case *ReturnStmt:
		return &ReturnStmt{Value: substExpr(n.Value, b), pos: n.pos}
	case *IfStmt:
		clauses := make([]*IfClause, len(n.Clauses))
		for i, c := range n.Clauses {
			clauses[i] = &IfClause{Condition: substExpr(c.Condition, b), Body: substStmt(c.Body, b).(*BlockStmt), pos: c.pos}
		}
		var elseBlock *BlockStmt
		if n.Else != nil {
			elseBlock = substStmt(n.Else, b).(*BlockStmt)
		}
		return &IfStmt{Clauses: clauses, Else: elseBlock, pos: n.pos}
	case *WhileStmt:
		return &WhileStmt{Condition: substExpr(n.Condition, b), Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos}
	case *ForStmt:
		var init *DeclStmt
		if n.Init != nil {
			init = substStmt(n.Init, b).(*DeclStmt)
		}
		var step Stmt
		if n.Step != nil {
			step = substStmt(n.Step, b)
		}
		return &ForStmt{Init: init, Cond: substExpr(n.Cond, b), Step: step, Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos}
	case *ForeachStmt:
		return &ForeachStmt{
			VarName: n.VarName, VarType: substType(n.VarType, b),
			Iterable: substExpr(n.Iterable, b), Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos,
		}
	case *BreakStmt:
		cp := *n
		return &cp
	case *ContinueStmt:
		cp := *n
		return &cp
	case *TryStmt:
		var catch *BlockStmt
		if n.Catch != nil {
			catch = substStmt(n.Catch, b).(*BlockStmt)
		}
		return &TryStmt{Try: substStmt(n.Try, b).(*BlockStmt), CatchName: n.CatchName, Catch: catch, pos: n.pos}
	case *BlameStmt:
		return &BlameStmt{Value: substExpr(n.Value, b), pos: n.pos}
	default:
		return s
	}
}

func substParam(p *Param, b map[string]TypeExpr) *Param {
	if p == nil {
		return nil
	}
	return &Param{Name: p.Name, Type: substType(p.Type, b), pos: p.pos}
}

func substParams(ps []*Param, b map[string]TypeExpr) []*Param {
	if ps == nil {
		return nil
	}
	out := make([]*Param, len(ps))
	for i, p := range ps {
		out[i] = substParam(p, b)
	}
	return out
}

func substField(f *Field, b map[string]TypeExpr) *Field {
	if f == nil {
		return nil
	}
	return &Field{Vis: f.Vis, Name: f.Name, Type: substType(f.Type, b), Default: substExpr(f.Default, b), pos: f.pos}
}

func substFields(fs []*Field, b map[string]TypeExpr) []*Field {
	if fs == nil {
		return nil
	}
	out := make([]*Field, len(fs))
	for i, f := range fs {
		out[i] = substField(f, b)
	}
	return out
}

func substDecl(d Decl, b map[string]TypeExpr) Decl {
	if d == nil {
		return nil
	}
	switch n := d.(type) {
	case *VarDecl:
		return &VarDecl{Vis: n.Vis, Name: n.Name, Type: substType(n.Type, b), Value: substExpr(n.Value, b), pos: n.pos}
	case *FuncDecl:
		var body *BlockStmt
		if n.Body != nil {
			body = substStmt(n.Body, b).(*BlockStmt)
		}
		return &FuncDecl{
			Vis: n.Vis, Name: n.Name, TypeParams: n.TypeParams,
			Params: substParams(n.Params, b), ReturnType: substType(n.ReturnType, b),
			Body: body, IsStatic: n.IsStatic, Attrs: n.Attrs, pos: n.pos,
		}
	case *StructDecl:
		ctors := make([]*ConstructorDecl, len(n.Constructors))
		for i, c := range n.Constructors {
			ctors[i] = substDecl(c, b).(*ConstructorDecl)
		}
		ops := make([]*OperatorDecl, len(n.Operators))
		for i, o := range n.Operators {
			ops[i] = substDecl(o, b).(*OperatorDecl)
		}
		methods := make([]*FuncDecl, len(n.Methods))
		for i, m := range n.Methods {
			methods[i] = substDecl(m, b).(*FuncDecl)
		}
		var dtor *DestructorDecl
		if n.Destructor != nil {
			dtor = substDecl(n.Destructor, b).(*DestructorDecl)
		}
		return &StructDecl{
			Vis: n.Vis, Name: n.Name, TypeParams: n.TypeParams,
			Parents: substTypes(n.Parents, b), Fields: substFields(n.Fields, b),
			Constructors: ctors, Destructor: dtor, Operators: ops, Methods: methods,
			Attrs: n.Attrs, pos: n.pos,
		}
	case *ConstructorDecl:
		return &ConstructorDecl{Params: substParams(n.Params, b), Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos}
	case *OperatorDecl:
		return &OperatorDecl{
			Symbol: n.Symbol, RHS: substParam(n.RHS, b), Return: substType(n.Return, b),
			Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos,
		}
	case *DestructorDecl:
		return &DestructorDecl{Body: substStmt(n.Body, b).(*BlockStmt), pos: n.pos}
	default:
		// InterfaceDecl, EnumDecl, ImportDecl, DefineDecl, MacroDecl, SpecialDecl
		// carry no generic-parameter subtree worth substituting for template
		// instantiation; templates are only ever StructDecl or FuncDecl.
		return d
	}
}
