package compiler

import (
	"fmt"
	"strconv"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// compileExpr is the single dispatch point for expression lowering (spec
// §4.7), used by every statement form and by box.go's conversion/typeof
// entry points.
func (c *Compiler) compileExpr(e ast.Expr) (llvm.Value, error) {
	switch n := e.(type) {
	case *ast.IntLit:
		return c.compileIntLit(n)
	case *ast.FloatLit:
		return c.compileFloatLit(n)
	case *ast.BoolLit:
		if n.Value {
			return llvm.ConstInt(c.Ctx.Int1Type(), 1, false), nil
		}
		return llvm.ConstInt(c.Ctx.Int1Type(), 0, false), nil
	case *ast.CharLit:
		return llvm.ConstInt(c.Ctx.Int8Type(), uint64(n.Value), false), nil
	case *ast.StringLit:
		return c.internString(n.Value), nil

	case *ast.Ident:
		addr, _, ok := c.CurrentScope.Resolve(n.Name)
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("undefined name %q", n.Name), "")
		}
		return c.B.CreateLoad(addr, ""), nil

	case *ast.BinaryExpr:
		return c.compileBinaryExpr(n)
	case *ast.UnaryExpr:
		return c.compileUnaryExpr(n)
	case *ast.PostfixExpr:
		return c.compilePostfixExpr(n)

	case *ast.CallExpr:
		return c.compileFunctionCall(n)
	case *ast.SpecialCallExpr:
		return c.compileSpecialCall(n)

	case *ast.MemberExpr:
		return c.compileMemberAccess(n)
	case *ast.ModuleMemberExpr:
		return c.compileModuleMemberAccess(n)

	case *ast.IndexExpr:
		return c.compileIndexExpr(n)
	case *ast.ArrayLiteralExpr:
		return c.compileArrayLiteral(n)
	case *ast.StructLiteralExpr:
		return c.compileStructLiteral(n)

	case *ast.AddressOfExpr:
		return c.compileAddressOf(n)
	case *ast.DerefExpr:
		return c.compileDeref(n)

	case *ast.TypeConversionExpr:
		return c.CompileTypeConv(n.Target, n.Operand)
	case *ast.TypeofExpr:
		return c.CompileTypeof(n.Operand)
	case *ast.SizeofExpr:
		return c.compileSizeof(n)

	case *ast.NewExpr:
		return c.compileNewExpr(n)
	case *ast.DeleteExpr:
		return c.compileDeleteExpr(n)

	case *ast.LambdaExpr:
		return c.compileLambdaExpr(n)

	default:
		return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, e.Pos(), "unknown expression node", "")
	}
}

func (c *Compiler) compileIntLit(n *ast.IntLit) (llvm.Value, error) {
	v, err := strconv.ParseInt(n.Text, 0, 64)
	if err != nil {
		return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), fmt.Sprintf("malformed integer literal %q", n.Text), "")
	}
	if n.Long {
		return llvm.ConstInt(c.Ctx.Int64Type(), uint64(v), true), nil
	}
	return llvm.ConstInt(c.Ctx.Int32Type(), uint64(v), true), nil
}

func (c *Compiler) compileFloatLit(n *ast.FloatLit) (llvm.Value, error) {
	v, err := strconv.ParseFloat(n.Text, 64)
	if err != nil {
		return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), fmt.Sprintf("malformed float literal %q", n.Text), "")
	}
	if n.Double {
		return llvm.ConstFloat(c.Ctx.DoubleType(), v), nil
	}
	return llvm.ConstFloat(c.Ctx.FloatType(), v), nil
}

// compileBinaryExpr dispatches to an operator overload on the left
// operand's struct when one is registered, otherwise emits the built-in
// arithmetic/comparison/logical instruction for primitive operands (spec
// §4.7 "Operator resolution").
func (c *Compiler) compileBinaryExpr(n *ast.BinaryExpr) (llvm.Value, error) {
	leftFT := c.GetArgFinType(n.Left, llvm.Value{})
	structName := leftFT.StructName
	if leftFT.Kind == types.KindPointer {
		structName = leftFT.Pointee.StructName
	}
	if leftFT.Kind == types.KindStruct || leftFT.Kind == types.KindPointer {
		if si, ok := c.structs[structName]; ok {
			if opFn, ok := si.operators[n.Op]; ok {
				return c.compileOperatorCall(opFn, n.Left, n.Right, n.Pos())
			}
		}
	}

	left, err := c.compileExpr(n.Left)
	if err != nil {
		return llvm.Value{}, err
	}
	right, err := c.compileExpr(n.Right)
	if err != nil {
		return llvm.Value{}, err
	}
	right = c.coerceValue(right, left.Type(), c.GetArgFinType(n.Right, right))
	return c.emitBuiltinBinary(n.Op, left, right, n.Pos())
}

func (c *Compiler) compileOperatorCall(fnName string, leftExpr, rightExpr ast.Expr, pos ast.Position) (llvm.Value, error) {
	fn, ok := c.funcs[fnName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("operator method %q not compiled", fnName), "")
	}
	self, err := c.compileExpr(leftExpr)
	if err != nil {
		return llvm.Value{}, err
	}
	if self.Type().TypeKind() != llvm.PointerTypeKind {
		slot := c.B.CreateAlloca(self.Type(), "")
		c.B.CreateStore(self, slot)
		self = slot
	}
	paramTypes := fn.Type().ElementType().ParamTypes()
	var rhsType []llvm.Type
	if len(paramTypes) > 1 {
		rhsType = paramTypes[1:]
	}
	args, err := c.compileCallArgs([]ast.Expr{rightExpr}, rhsType)
	if err != nil {
		return llvm.Value{}, err
	}
	return c.finishMethodCall(fn, append([]llvm.Value{self}, args...), pos)
}

// emitBuiltinBinary implements the primitive arithmetic/comparison/logical
// operators of spec §4.7, branching on integer-vs-float operand kind.
func (c *Compiler) emitBuiltinBinary(op string, left, right llvm.Value, pos ast.Position) (llvm.Value, error) {
	isFloat := isFloatKind(left.Type())

	switch op {
	case "+":
		if isFloat {
			return c.B.CreateFAdd(left, right, ""), nil
		}
		return c.B.CreateAdd(left, right, ""), nil
	case "-":
		if isFloat {
			return c.B.CreateFSub(left, right, ""), nil
		}
		return c.B.CreateSub(left, right, ""), nil
	case "*":
		if isFloat {
			return c.B.CreateFMul(left, right, ""), nil
		}
		return c.B.CreateMul(left, right, ""), nil
	case "/":
		if err := c.checkDivisorNonZero(right, isFloat, "division by zero"); err != nil {
			return llvm.Value{}, err
		}
		if isFloat {
			return c.B.CreateFDiv(left, right, ""), nil
		}
		return c.B.CreateSDiv(left, right, ""), nil
	case "%":
		if err := c.checkDivisorNonZero(right, isFloat, "modulo by zero"); err != nil {
			return llvm.Value{}, err
		}
		if isFloat {
			return c.B.CreateFRem(left, right, ""), nil
		}
		return c.B.CreateSRem(left, right, ""), nil
	case "==":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatOEQ, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntEQ, left, right, ""), nil
	case "!=":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatONE, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntNE, left, right, ""), nil
	case "<":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatOLT, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntSLT, left, right, ""), nil
	case "<=":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatOLE, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntSLE, left, right, ""), nil
	case ">":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatOGT, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntSGT, left, right, ""), nil
	case ">=":
		if isFloat {
			return c.B.CreateFCmp(llvm.FloatOGE, left, right, ""), nil
		}
		return c.B.CreateICmp(llvm.IntSGE, left, right, ""), nil
	case "&&":
		return c.B.CreateAnd(left, right, ""), nil
	case "||":
		return c.B.CreateOr(left, right, ""), nil
	case "&":
		return c.B.CreateAnd(left, right, ""), nil
	case "|":
		return c.B.CreateOr(left, right, ""), nil
	case "^":
		return c.B.CreateXor(left, right, ""), nil
	case "<<":
		return c.B.CreateShl(left, right, ""), nil
	case ">>":
		return c.B.CreateAShr(left, right, ""), nil
	}
	return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, pos, fmt.Sprintf("unknown operator %q", op), "")
}

func (c *Compiler) compileUnaryExpr(n *ast.UnaryExpr) (llvm.Value, error) {
	v, err := c.compileExpr(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	switch n.Op {
	case "-":
		if isFloatKind(v.Type()) {
			return c.B.CreateFNeg(v, ""), nil
		}
		return c.B.CreateNeg(v, ""), nil
	case "!":
		return c.B.CreateNot(v, ""), nil
	case "~":
		return c.B.CreateNot(v, ""), nil
	}
	return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), fmt.Sprintf("unknown unary operator %q", n.Op), "")
}

// compilePostfixExpr implements `x++`/`x--`: load, compute, store back
// through the operand's L-value address, and yield the pre-increment value.
func (c *Compiler) compilePostfixExpr(n *ast.PostfixExpr) (llvm.Value, error) {
	addr, err := c.lvalueAddress(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	old := c.B.CreateLoad(addr, "")
	one := llvm.ConstInt(old.Type(), 1, false)
	if isFloatKind(old.Type()) {
		one = llvm.ConstFloat(old.Type(), 1)
	}
	var updated llvm.Value
	if n.Op == "++" {
		if isFloatKind(old.Type()) {
			updated = c.B.CreateFAdd(old, one, "")
		} else {
			updated = c.B.CreateAdd(old, one, "")
		}
	} else {
		if isFloatKind(old.Type()) {
			updated = c.B.CreateFSub(old, one, "")
		} else {
			updated = c.B.CreateSub(old, one, "")
		}
	}
	c.B.CreateStore(updated, addr)
	return old, nil
}

// compileSpecialCall implements the built-in `@name(...)` compile-time
// constructs (spec §4.7 "Macros and specials"): @hasattr checks a struct
// field/method exists, @name yields a compile-time string of an
// identifier, @unsafe_unbox compiles its argument and returns the value
// unchanged; it emits no cast of its own.
func (c *Compiler) compileSpecialCall(n *ast.SpecialCallExpr) (llvm.Value, error) {
	switch n.Name {
	case "hasattr":
		if len(n.Args) != 2 {
			return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "@hasattr takes (expr, name)", "")
		}
		targetFT := c.GetArgFinType(n.Args[0], llvm.Value{})
		structName := targetFT.StructName
		if targetFT.Kind == types.KindPointer {
			structName = targetFT.Pointee.StructName
		}
		lit, ok := n.Args[1].(*ast.StringLit)
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "@hasattr's second argument must be a string literal", "")
		}
		found := false
		if si, ok := c.structs[structName]; ok {
			_, hasField := si.fieldIndex[lit.Value]
			_, hasMethod := si.methods[lit.Value]
			found = hasField || hasMethod
		}
		if found {
			return llvm.ConstInt(c.Ctx.Int1Type(), 1, false), nil
		}
		return llvm.ConstInt(c.Ctx.Int1Type(), 0, false), nil

	case "name":
		if len(n.Args) != 1 {
			return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "@name takes one argument", "")
		}
		ident, ok := n.Args[0].(*ast.Ident)
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "@name's argument must be an identifier", "")
		}
		return c.internString(ident.Name), nil

	case "unsafe_unbox":
		if len(n.Args) != 1 {
			return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "@unsafe_unbox takes one argument", "")
		}
		val, err := c.compileExpr(n.Args[0])
		if err != nil {
			return llvm.Value{}, err
		}
		return val, nil

	default:
		return c.compileUserSpecial(n)
	}
}

// compileUserSpecial inlines a user-defined `special` declaration's body at
// the call site: its parameter names are bound directly to the unevaluated
// argument expressions is not supported without a textual-substitution
// front end pass, so the simpler and still useful form implemented here
// binds each parameter to its compiled argument value and inlines the body
// under a fresh scope.
func (c *Compiler) compileUserSpecial(n *ast.SpecialCallExpr) (llvm.Value, error) {
	c.mu.Lock()
	decl, ok := c.specials[n.Name]
	c.mu.Unlock()
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("unknown special %q", n.Name), "")
	}
	pop := c.pushScope()
	defer pop()
	for i, pname := range decl.Params {
		if i >= len(n.Args) {
			break
		}
		v, err := c.compileExpr(n.Args[i])
		if err != nil {
			return llvm.Value{}, err
		}
		slot := c.B.CreateAlloca(v.Type(), pname)
		c.B.CreateStore(v, slot)
		c.CurrentScope.Define(pname, slot, c.GetArgFinType(n.Args[i], v))
	}
	var result llvm.Value
	for _, s := range decl.Body {
		if ret, ok := s.(*ast.ReturnStmt); ok && ret.Value != nil {
			v, err := c.compileExpr(ret.Value)
			if err != nil {
				return llvm.Value{}, err
			}
			result = v
			continue
		}
		if err := c.compileStmt(s); err != nil {
			return llvm.Value{}, err
		}
	}
	return result, nil
}

func (c *Compiler) compileModuleMemberAccess(n *ast.ModuleMemberExpr) (llvm.Value, error) {
	mi, ok := c.loader.ResolveAlias(n.Alias)
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("module %q not imported", n.Alias), "")
	}
	if v, _, ok := mi.scope.Resolve(n.Member); ok {
		return v, nil
	}
	return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("module %q has no symbol %q", n.Alias, n.Member), "")
}

// compileIndexExpr implements `target[index]` with a runtime bounds check
// against the Collection's length field (spec §4.7 "Array bounds").
func (c *Compiler) compileIndexExpr(n *ast.IndexExpr) (llvm.Value, error) {
	targetFT := c.GetArgFinType(n.Target, llvm.Value{})
	structName := targetFT.StructName
	if targetFT.Kind == types.KindPointer {
		structName = targetFT.Pointee.StructName
	}
	if si, ok := c.structs[structName]; ok {
		if opFn, ok := si.operators["[]"]; ok {
			return c.compileOperatorCall(opFn, n.Target, n.Index, n.Pos())
		}
	}

	targetVal, err := c.compileExpr(n.Target)
	if err != nil {
		return llvm.Value{}, err
	}
	idx, err := c.compileExpr(n.Index)
	if err != nil {
		return llvm.Value{}, err
	}

	ptr := targetVal
	if targetVal.Type().TypeKind() != llvm.PointerTypeKind {
		slot := c.B.CreateAlloca(targetVal.Type(), "")
		c.B.CreateStore(targetVal, slot)
		ptr = slot
	}
	// Collection<T> = {T*, i32}: bounds-check against field 1, then index
	// through field 0.
	if ptr.Type().ElementType().TypeKind() == llvm.StructTypeKind {
		dataGEP := c.B.CreateStructGEP(ptr, 0, "")
		lenGEP := c.B.CreateStructGEP(ptr, 1, "")
		length := c.B.CreateLoad(lenGEP, "")
		idx32 := c.coerceValue(idx, length.Type(), c.GetArgFinType(n.Index, idx))
		c.checkBounds(idx32, length, "index out of bounds")
		data := c.B.CreateLoad(dataGEP, "")
		elemPtr := c.B.CreateGEP(data, []llvm.Value{idx32}, "")
		return c.B.CreateLoad(elemPtr, ""), nil
	}
	// Static array `[T; N]`: no runtime length field, direct GEP.
	zero := llvm.ConstInt(c.Ctx.Int32Type(), 0, false)
	elemPtr := c.B.CreateGEP(ptr, []llvm.Value{zero, idx}, "")
	return c.B.CreateLoad(elemPtr, ""), nil
}

// compileArrayLiteral heap-allocates backing storage and builds the
// {ptr, length} Collection value (spec §3 "Collection<T>").
func (c *Compiler) compileArrayLiteral(n *ast.ArrayLiteralExpr) (llvm.Value, error) {
	var elemLLT llvm.Type
	if n.ElemType != nil {
		var err error
		elemLLT, err = c.ConvertType(n.ElemType)
		if err != nil {
			return llvm.Value{}, err
		}
	} else if len(n.Elements) > 0 {
		ft := c.GetArgFinType(n.Elements[0], llvm.Value{})
		var err error
		elemLLT, err = c.FinTypeToLLVM(ft)
		if err != nil {
			return llvm.Value{}, err
		}
	} else {
		elemLLT = c.i8ptr()
	}

	count := len(n.Elements)
	size := c.B.CreateMul(c.sizeOf(elemLLT), llvm.ConstInt(c.Ctx.Int64Type(), uint64(count), false), "")
	raw := c.malloc(size)
	data := c.B.CreateBitCast(raw, llvm.PointerType(elemLLT, 0), "")

	for i, elemExpr := range n.Elements {
		v, err := c.compileExpr(elemExpr)
		if err != nil {
			return llvm.Value{}, err
		}
		v = c.coerceValue(v, elemLLT, c.GetArgFinType(elemExpr, v))
		idx := llvm.ConstInt(c.Ctx.Int32Type(), uint64(i), false)
		gep := c.B.CreateGEP(data, []llvm.Value{idx}, "")
		c.B.CreateStore(v, gep)
	}

	collType := c.Ctx.StructType([]llvm.Type{llvm.PointerType(elemLLT, 0), c.Ctx.Int32Type()}, false)
	result := llvm.ConstNull(collType)
	result = c.B.CreateInsertValue(result, data, 0, "")
	result = c.B.CreateInsertValue(result, llvm.ConstInt(c.Ctx.Int32Type(), uint64(count), false), 1, "")
	return result, nil
}

// compileStructLiteral dispatches `Name<T>{field: value, ...}` through the
// struct's constructor, passing fields in declared-field order (spec §4.5
// "Struct literal lowering").
func (c *Compiler) compileStructLiteral(n *ast.StructLiteralExpr) (llvm.Value, error) {
	mangled := c.Mangle(c.CurrentFile, n.StructName)
	si, ok := c.structs[mangled]
	if !ok {
		c.mu.Lock()
		tmpl, isTemplate := c.structTemplates[n.StructName]
		c.mu.Unlock()
		if isTemplate {
			bindings := make(map[string]ast.TypeExpr, len(tmpl.TypeParams))
			for i, p := range tmpl.TypeParams {
				if i < len(n.TypeArgs) {
					bindings[p.Name] = n.TypeArgs[i]
				}
			}
			instName := c.monoMangledName(n.StructName, n.TypeArgs)
			concrete := ast.Substitute(tmpl, bindings).(*ast.StructDecl)
			concrete.Name = instName
			concrete.TypeParams = nil
			if err := c.compileStruct(concrete); err != nil {
				return llvm.Value{}, err
			}
			mangled = c.Mangle(c.CurrentFile, instName)
			si = c.structs[mangled]
		} else {
			return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("unknown struct %q", n.StructName), "")
		}
	}

	ctorName := mangled + "__init"
	fn, ok := c.funcs[ctorName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("struct %q has no compiled constructor", n.StructName), "")
	}
	paramTypes := fn.Type().ElementType().ParamTypes()

	// Place each field initializer at the argument position equal to its
	// field's index; a parameter with no initializer there gets a zero value.
	ordered := make([]ast.Expr, len(paramTypes))
	byName := make(map[string]ast.Expr, len(n.Fields))
	for _, fi := range n.Fields {
		byName[fi.Name] = fi.Value
	}
	for name, idx := range si.fieldIndex {
		if idx < len(ordered) {
			if v, ok := byName[name]; ok {
				ordered[idx] = v
			}
		}
	}
	args := make([]llvm.Value, 0, len(paramTypes))
	for i, pt := range paramTypes {
		if ordered[i] == nil {
			args = append(args, llvm.ConstNull(pt))
			continue
		}
		v, err := c.compileExpr(ordered[i])
		if err != nil {
			return llvm.Value{}, err
		}
		args = append(args, c.coerceValue(v, pt, c.GetArgFinType(ordered[i], v)))
	}
	return c.finishMethodCall(fn, args, n.Pos())
}

func (c *Compiler) compileAddressOf(n *ast.AddressOfExpr) (llvm.Value, error) {
	return c.lvalueAddress(n.Operand)
}

// compileDeref implements `*expr`, a null-checked load through a pointer
// (spec §4.7 "Null-dereference invariant").
func (c *Compiler) compileDeref(n *ast.DerefExpr) (llvm.Value, error) {
	ptr, err := c.compileExpr(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	c.checkNotNull(ptr, "null pointer dereference")
	return c.B.CreateLoad(ptr, ""), nil
}

func (c *Compiler) compileSizeof(n *ast.SizeofExpr) (llvm.Value, error) {
	var llt llvm.Type
	var err error
	if n.Type != nil {
		llt, err = c.ConvertType(n.Type)
	} else {
		ft := c.GetArgFinType(n.Operand, llvm.Value{})
		llt, err = c.FinTypeToLLVM(ft)
	}
	if err != nil {
		return llvm.Value{}, err
	}
	return c.sizeOf(llt), nil
}

// compileNewExpr implements `new Type(args)`: allocates the struct via its
// constructor, which already returns a heap pointer, so `new` is simply a
// constructor call for struct types and a raw malloc for everything else.
func (c *Compiler) compileNewExpr(n *ast.NewExpr) (llvm.Value, error) {
	named, ok := n.Type.(*ast.NamedTypeExpr)
	if ok {
		mangled := c.Mangle(c.CurrentFile, named.Name)
		if _, ok := c.structs[mangled]; ok {
			return c.compileConstructorCall(mangled, n.Args, n.Pos())
		}
	}
	llt, err := c.ConvertType(n.Type)
	if err != nil {
		return llvm.Value{}, err
	}
	raw := c.malloc(c.sizeOf(llt))
	return c.B.CreateBitCast(raw, llvm.PointerType(llt, 0), ""), nil
}

// compileDeleteExpr implements `delete expr`: invokes the struct's
// destructor if one was declared, then frees the backing allocation (spec
// §3 "Lifecycles").
func (c *Compiler) compileDeleteExpr(n *ast.DeleteExpr) (llvm.Value, error) {
	val, err := c.compileExpr(n.Operand)
	if err != nil {
		return llvm.Value{}, err
	}
	ft := c.GetArgFinType(n.Operand, val)
	structName := ft.StructName
	if ft.Kind == types.KindPointer {
		structName = ft.Pointee.StructName
	}
	if fn, ok := c.funcs[structName+"__del"]; ok {
		if _, err := c.finishMethodCall(fn, []llvm.Value{val}, n.Pos()); err != nil {
			return llvm.Value{}, err
		}
	}
	raw := c.B.CreateBitCast(val, c.i8ptr(), "")
	c.B.CreateCall(c.funcs["free"], []llvm.Value{raw}, "")
	return llvm.Value{}, nil
}

// compileLambdaExpr lowers a stateless lambda to a fresh top-level function
// and returns its address (spec §4.6 "Lambdas"), named uniquely by its
// source position since lambdas have no declared identifier.
func (c *Compiler) compileLambdaExpr(n *ast.LambdaExpr) (llvm.Value, error) {
	name := fmt.Sprintf("%s__lambda_%d_%d", c.Mangle(c.CurrentFile, "anon"), n.Pos().Line, n.Pos().Col)
	fn, err := c.declareFunctionPrototype(name, nil, n.Params, n.ReturnType, false)
	if err != nil {
		return llvm.Value{}, err
	}
	savedFunc := c.CurrentFunc
	savedBlock := c.B.GetInsertBlock()
	savedScope := c.CurrentScope
	defer func() {
		c.CurrentFunc = savedFunc
		c.CurrentScope = savedScope
		if !savedBlock.IsNil() {
			c.B.SetInsertPointAtEnd(savedBlock)
		}
	}()
	// No captures: the body's scope hangs off the outermost scope only.
	for c.CurrentScope.parent != nil {
		c.CurrentScope = c.CurrentScope.parent
	}
	if err := c.compileFunctionBody(fn, nil, n.Params, n.ReturnType, n.Body, llvm.Type{}, "", false); err != nil {
		return llvm.Value{}, err
	}
	return fn, nil
}

// lvalueAddress resolves an expression's storage address for `&expr`,
// assignment targets, and postfix increment/decrement (spec §4.7's
// assignment L-value cases): identifiers resolve to the storage bound in
// scope; member/index accesses compute a GEP, first spilling a non-pointer
// target to a temporary slot; `*p` yields the null-checked pointer.
func (c *Compiler) lvalueAddress(e ast.Expr) (llvm.Value, error) {
	switch n := e.(type) {
	case *ast.MemberExpr:
		targetVal, err := c.compileExpr(n.Target)
		if err != nil {
			return llvm.Value{}, err
		}
		targetFT := c.GetArgFinType(n.Target, targetVal)
		structName := targetFT.StructName
		ptr := targetVal
		if targetFT.Kind == types.KindPointer {
			structName = targetFT.Pointee.StructName
		} else if targetVal.Type().TypeKind() != llvm.PointerTypeKind {
			slot := c.B.CreateAlloca(targetVal.Type(), "")
			c.B.CreateStore(targetVal, slot)
			ptr = slot
		}
		si, ok := c.structs[structName]
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("unknown struct %q", structName), "")
		}
		idx, ok := si.fieldIndex[n.Member]
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("struct %q has no field %q", structName, n.Member), "")
		}
		return c.B.CreateStructGEP(ptr, idx, ""), nil

	case *ast.IndexExpr:
		targetVal, err := c.compileExpr(n.Target)
		if err != nil {
			return llvm.Value{}, err
		}
		idx, err := c.compileExpr(n.Index)
		if err != nil {
			return llvm.Value{}, err
		}
		ptr := targetVal
		if targetVal.Type().TypeKind() != llvm.PointerTypeKind {
			slot := c.B.CreateAlloca(targetVal.Type(), "")
			c.B.CreateStore(targetVal, slot)
			ptr = slot
		}
		if ptr.Type().ElementType().TypeKind() == llvm.StructTypeKind {
			dataGEP := c.B.CreateStructGEP(ptr, 0, "")
			lenGEP := c.B.CreateStructGEP(ptr, 1, "")
			length := c.B.CreateLoad(lenGEP, "")
			idx32 := c.coerceValue(idx, length.Type(), c.GetArgFinType(n.Index, idx))
			c.checkBounds(idx32, length, "index out of bounds")
			data := c.B.CreateLoad(dataGEP, "")
			return c.B.CreateGEP(data, []llvm.Value{idx32}, ""), nil
		}
		zero := llvm.ConstInt(c.Ctx.Int32Type(), 0, false)
		return c.B.CreateGEP(ptr, []llvm.Value{zero, idx}, ""), nil

	case *ast.DerefExpr:
		ptr, err := c.compileExpr(n.Operand)
		if err != nil {
			return llvm.Value{}, err
		}
		c.checkNotNull(ptr, "null pointer dereference")
		return ptr, nil

	case *ast.Ident:
		addr, _, ok := c.CurrentScope.Resolve(n.Name)
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("undefined name %q", n.Name), "")
		}
		return addr, nil

	default:
		return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, e.Pos(), "expression is not addressable", "")
	}
}
