package ast

// Walk traverses node depth-first, calling fn for every node reached. If fn
// returns false for a node, that node's children are not visited.
func Walk(node Node, fn func(Node) bool) {
	if node == nil || !fn(node) {
		return
	}

	switch n := node.(type) {
	case *Program:
		for _, d := range n.Decls {
			Walk(d, fn)
		}

	case *VarDecl:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *FuncDecl:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *StructDecl:
		for _, p := range n.Parents {
			Walk(p, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}
		for _, c := range n.Constructors {
			Walk(c, fn)
		}
		if n.Destructor != nil {
			Walk(n.Destructor, fn)
		}
		for _, o := range n.Operators {
			Walk(o, fn)
		}
		for _, m := range n.Methods {
			Walk(m, fn)
		}

	case *InterfaceDecl:
		for _, m := range n.Methods {
			Walk(m, fn)
		}

	case *EnumDecl:
		for _, m := range n.Members {
			Walk(m, fn)
		}

	case *ConstructorDecl:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *OperatorDecl:
		if n.RHS != nil {
			Walk(n.RHS, fn)
		}
		if n.Return != nil {
			Walk(n.Return, fn)
		}
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *DestructorDecl:
		if n.Body != nil {
			Walk(n.Body, fn)
		}

	case *DefineDecl:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}

	case *Param:
		if n.Type != nil {
			Walk(n.Type, fn)
		}

	case *Field:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Default != nil {
			Walk(n.Default, fn)
		}

	case *InterfaceMethod:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}

	case *EnumMember:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *BlockStmt:
		for _, s := range n.Stmts {
			Walk(s, fn)
		}

	case *ExprStmt:
		Walk(n.Expr, fn)

	case *DeclStmt:
		Walk(n.Decl, fn)

	case *AssignStmt:
		Walk(n.Target, fn)
		Walk(n.Value, fn)

	case *ReturnStmt:
		if n.Value != nil {
			Walk(n.Value, fn)
		}

	case *IfStmt:
		for _, c := range n.Clauses {
			Walk(c, fn)
		}
		if n.Else != nil {
			Walk(n.Else, fn)
		}

	case *IfClause:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)

	case *WhileStmt:
		Walk(n.Condition, fn)
		Walk(n.Body, fn)

	case *ForStmt:
		if n.Init != nil {
			Walk(n.Init, fn)
		}
		if n.Cond != nil {
			Walk(n.Cond, fn)
		}
		if n.Step != nil {
			Walk(n.Step, fn)
		}
		Walk(n.Body, fn)

	case *ForeachStmt:
		if n.VarType != nil {
			Walk(n.VarType, fn)
		}
		Walk(n.Iterable, fn)
		Walk(n.Body, fn)

	case *TryStmt:
		Walk(n.Try, fn)
		if n.Catch != nil {
			Walk(n.Catch, fn)
		}

	case *BlameStmt:
		Walk(n.Value, fn)

	case *BinaryExpr:
		Walk(n.Left, fn)
		Walk(n.Right, fn)

	case *UnaryExpr:
		Walk(n.Operand, fn)

	case *PostfixExpr:
		Walk(n.Operand, fn)

	case *CallExpr:
		Walk(n.Callee, fn)
		for _, t := range n.TypeArgs {
			Walk(t, fn)
		}
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *SpecialCallExpr:
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *MemberExpr:
		Walk(n.Target, fn)

	case *IndexExpr:
		Walk(n.Target, fn)
		Walk(n.Index, fn)

	case *ArrayLiteralExpr:
		if n.ElemType != nil {
			Walk(n.ElemType, fn)
		}
		for _, e := range n.Elements {
			Walk(e, fn)
		}

	case *StructLiteralExpr:
		for _, t := range n.TypeArgs {
			Walk(t, fn)
		}
		for _, f := range n.Fields {
			Walk(f, fn)
		}

	case *FieldInit:
		Walk(n.Value, fn)

	case *AddressOfExpr:
		Walk(n.Operand, fn)

	case *DerefExpr:
		Walk(n.Operand, fn)

	case *TypeConversionExpr:
		Walk(n.Target, fn)
		Walk(n.Operand, fn)

	case *TypeofExpr:
		Walk(n.Operand, fn)

	case *SizeofExpr:
		if n.Type != nil {
			Walk(n.Type, fn)
		}
		if n.Operand != nil {
			Walk(n.Operand, fn)
		}

	case *NewExpr:
		Walk(n.Type, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *DeleteExpr:
		Walk(n.Operand, fn)

	case *LambdaExpr:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.ReturnType != nil {
			Walk(n.ReturnType, fn)
		}
		Walk(n.Body, fn)

	case *GenericInstanceTypeExpr:
		Walk(n.Base, fn)
		for _, a := range n.Args {
			Walk(a, fn)
		}

	case *PointerTypeExpr:
		Walk(n.Elem, fn)

	case *ArrayTypeExpr:
		Walk(n.Elem, fn)
		if n.Size != nil {
			Walk(n.Size, fn)
		}

	case *FunctionTypeExpr:
		for _, p := range n.Params {
			Walk(p, fn)
		}
		if n.Return != nil {
			Walk(n.Return, fn)
		}

	case *GenericParam:
		if n.Constraint != nil {
			Walk(n.Constraint, fn)
		}

	// Leaf nodes: nothing further to traverse.
	case *Ident, *IntLit, *FloatLit, *StringLit, *CharLit, *BoolLit,
		*ModuleMemberExpr, *NamedTypeExpr, *ModuleQualifiedTypeExpr:
	}
}
