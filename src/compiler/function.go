package compiler

import (
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// declarePass is Pass 0 (spec §4.6): forward-declare every struct, interface,
// enum, function prototype, and extern so mutual recursion and forward
// references resolve before any body is compiled.
func (c *Compiler) declarePass(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.StructDecl:
		mode := classifyMode(n)
		if mode == ModeMono {
			c.mu.Lock()
			c.structTemplates[n.Name] = n
			c.mu.Unlock()
			return nil
		}
		mangled := c.Mangle(c.CurrentFile, n.Name)
		_, err := c.compileStructShape(n, mangled, mode)
		return err

	case *ast.InterfaceDecl:
		return c.declareInterface(n)

	case *ast.EnumDecl:
		return c.declareEnum(n)

	case *ast.FuncDecl:
		mode := classifyMode(n)
		if mode == ModeMono {
			c.mu.Lock()
			c.functionTemplates[n.Name] = n
			c.mu.Unlock()
			return nil
		}
		name := c.functionLinkName(n)
		_, err := c.declareFunctionPrototype(name, n.TypeParams, n.Params, n.ReturnType, false)
		return err

	case *ast.DefineDecl:
		return c.declareExtern(n)

	case *ast.ImportDecl:
		return c.declareImport(n)

	case *ast.VarDecl:
		return c.declareGlobalVar(n)

	case *ast.MacroDecl:
		c.mu.Lock()
		c.macros[n.Name] = n
		c.mu.Unlock()
		return nil

	case *ast.SpecialDecl:
		c.mu.Lock()
		c.specials[n.Name] = n
		c.mu.Unlock()
		return nil

	default:
		return nil
	}
}

// definePass is Pass 1 (spec §4.6): compile bodies against the prototypes
// declarePass already installed.
func (c *Compiler) definePass(d ast.Decl) error {
	switch n := d.(type) {
	case *ast.StructDecl:
		mode := classifyMode(n)
		if mode == ModeMono {
			return nil
		}
		mangled := c.Mangle(c.CurrentFile, n.Name)
		return c.compileStructBehavior(n, mangled)

	case *ast.InterfaceDecl:
		return nil // metadata only, no behavior pass.

	case *ast.EnumDecl:
		return nil // fully realized in declarePass.

	case *ast.FuncDecl:
		mode := classifyMode(n)
		if mode == ModeMono {
			return nil
		}
		name := c.functionLinkName(n)
		fn, ok := c.funcs[name]
		if !ok {
			return c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("function %q was not forward-declared", n.Name), "")
		}
		return c.compileFunctionBody(fn, n.TypeParams, n.Params, n.ReturnType, n.Body, llvm.Type{}, "", n.Name == "main")

	case *ast.DefineDecl, *ast.ImportDecl, *ast.MacroDecl, *ast.SpecialDecl:
		return nil

	case *ast.VarDecl:
		return c.defineGlobalVar(n)

	default:
		return nil
	}
}

// functionLinkName is the mangled (or llvm_name-overridden) symbol a
// FuncDecl links under.
func (c *Compiler) functionLinkName(n *ast.FuncDecl) string {
	if override := attrValue(n.Attrs, "llvm_name"); override != "" {
		return override
	}
	return c.Mangle(c.CurrentFile, n.Name)
}

func attrValue(attrs []ast.Attribute, name string) string {
	for _, a := range attrs {
		if a.Name == name {
			return a.Value
		}
	}
	return ""
}

// declareFunctionPrototype builds and registers the LLVM function value for
// a signature, under a transient scope carrying the declaration's type
// parameters so erased-generic parameter/return types resolve.
func (c *Compiler) declareFunctionPrototype(name string, typeParams []*ast.GenericParam, params []*ast.Param, ret ast.TypeExpr, variadic bool) (llvm.Value, error) {
	pop := c.pushScope()
	defer pop()
	registerTypeParams(c.CurrentScope, typeParams)

	paramTypes := make([]llvm.Type, len(params))
	for i, p := range params {
		pt, err := c.ConvertType(p.Type)
		if err != nil {
			return llvm.Value{}, err
		}
		paramTypes[i] = pt
	}
	retType, err := c.ConvertType(ret)
	if err != nil {
		return llvm.Value{}, err
	}
	fnType := llvm.FunctionType(retType, paramTypes, variadic)

	fn := c.Mod.NamedFunction(name)
	if fn.IsNil() {
		fn = llvm.AddFunction(c.Mod, name, fnType)
	}
	c.mu.Lock()
	c.funcs[name] = fn
	c.mu.Unlock()
	return fn, nil
}

// registerTypeParams binds each generic parameter of a declaration as an
// erased type parameter in scope, per spec §4.2/§4.5.
func registerTypeParams(scope *Scope, typeParams []*ast.GenericParam) {
	for _, tp := range typeParams {
		constraint := ""
		if named, ok := tp.Constraint.(*ast.NamedTypeExpr); ok {
			constraint = named.Name
		}
		scope.DefineTypeParameter(tp.Name, constraint)
	}
}

// compileFunctionBody emits the entry block, binds self (if selfType is
// non-nil) and parameters, compiles the body, and applies the implicit
// return policy of spec §4.6: void returns ret_void, `main` returning int
// returns 0, a fluent self-returning method falls through to `ret self`,
// anything else falling through is a fatal "missing return statement".
func (c *Compiler) compileFunctionBody(fn llvm.Value, typeParams []*ast.GenericParam, params []*ast.Param, retType ast.TypeExpr, body *ast.BlockStmt, selfType llvm.Type, structMangled string, isMain bool) error {
	savedFunc := c.CurrentFunc
	savedBlock := c.B.GetInsertBlock()
	savedStruct := c.currentStructName
	defer func() {
		c.CurrentFunc = savedFunc
		if !savedBlock.IsNil() {
			c.B.SetInsertPointAtEnd(savedBlock)
		}
		c.currentStructName = savedStruct
	}()

	entry := llvm.AddBasicBlock(fn, "entry")
	c.CurrentFunc = fn
	c.B.SetInsertPointAtEnd(entry)
	if structMangled != "" {
		c.currentStructName = structMangled
	}

	pop := c.pushScope()
	defer pop()
	registerTypeParams(c.CurrentScope, typeParams)

	argIdx := 0
	hasSelf := !selfType.IsNil()
	if hasSelf {
		param := fn.Param(0)
		alloca := c.B.CreateAlloca(selfType, "self")
		c.B.CreateStore(param, alloca)
		c.CurrentScope.Define("self", alloca, types.NewPointer(types.NewStruct(structMangled, nil)))
		argIdx = 1
	}
	for i, p := range params {
		param := fn.Param(argIdx + i)
		pft, err := c.AstToFinType(p.Type)
		if err != nil {
			return err
		}
		alloca := c.B.CreateAlloca(param.Type(), p.Name)
		c.B.CreateStore(param, alloca)
		c.CurrentScope.Define(p.Name, alloca, pft)
	}

	if body != nil {
		if err := c.compileBlock(body); err != nil {
			return err
		}
	}

	if c.terminated() {
		return nil
	}
	if retType == nil {
		c.B.CreateRetVoid()
		return nil
	}
	if isMain {
		c.B.CreateRet(llvm.ConstInt(c.Ctx.Int32Type(), 0, false))
		return nil
	}
	if structMangled != "" && isSelfReturn(retType, structMangled) {
		selfAddr, _, _ := c.CurrentScope.Resolve("self")
		c.B.CreateRet(c.B.CreateLoad(selfAddr, ""))
		return nil
	}
	pos := ast.Position{File: c.CurrentFile}
	if body != nil {
		pos = body.Pos()
	}
	return c.Diags.Err(ErrMissingReturn, pos, "missing return statement", "every non-void path must return a value")
}

// isSelfReturn reports whether retType is `*Self` or a pointer to the
// current struct's own name (spec §4.5's fluent-interface implicit return).
func isSelfReturn(retType ast.TypeExpr, structMangled string) bool {
	ptr, ok := retType.(*ast.PointerTypeExpr)
	if !ok {
		return false
	}
	named, ok := ptr.Elem.(*ast.NamedTypeExpr)
	if !ok {
		return false
	}
	if named.Name == "Self" {
		return true
	}
	return lastSegment(structMangled, "__") == named.Name
}

// declareExtern handles `define name(...) <Ret>;` (spec §4.1 rule 2, §6
// "External declarations"): the mangler is bypassed, and redeclaration with
// a mismatched signature is fatal.
func (c *Compiler) declareExtern(n *ast.DefineDecl) error {
	name := n.Name
	if override := attrValue(n.Attrs, "llvm_name"); override != "" {
		name = override
	}
	c.mu.Lock()
	c.externs[n.Name] = struct{}{}
	c.externs[name] = struct{}{}
	c.mu.Unlock()

	paramTypes := make([]llvm.Type, len(n.Params))
	for i, p := range n.Params {
		pt, err := c.ConvertType(p.Type)
		if err != nil {
			return err
		}
		paramTypes[i] = pt
	}
	retType, err := c.ConvertType(n.ReturnType)
	if err != nil {
		return err
	}
	fnType := llvm.FunctionType(retType, paramTypes, n.Variadic)

	existing := c.Mod.NamedFunction(name)
	if !existing.IsNil() {
		if existing.Type().ElementType().String() != fnType.String() {
			return c.Diags.Err(ErrDuplicateDecl, n.Pos(),
				fmt.Sprintf("extern %q redeclared with a different signature", name), "")
		}
		c.mu.Lock()
		c.funcs[name] = existing
		c.mu.Unlock()
		return nil
	}
	fn := llvm.AddFunction(c.Mod, name, fnType)
	c.mu.Lock()
	c.funcs[name] = fn
	c.mu.Unlock()
	return nil
}

// declareImport resolves, loads, and merges one `import` declaration, per
// spec §4.4.
func (c *Compiler) declareImport(n *ast.ImportDecl) error {
	if c.ParseFile == nil {
		return c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("cannot import %q: no front end wired to ParseFile", n.Path), "")
	}
	mi, err := c.loader.Load(c.CurrentFile, n.Path, c.ParseFile)
	if err != nil {
		return err
	}
	return c.loader.Merge(c.CurrentScope, mi, n.Targets, n.Alias)
}

// declareGlobalVar compiles a top-level `let`/global variable (spec §3
// "Lifecycles"; grounded on the prototype's _compile_global_variable): the
// initializer must be a compile-time constant.
func (c *Compiler) declareGlobalVar(n *ast.VarDecl) error {
	name := c.Mangle(c.CurrentFile, n.Name)
	var llt llvm.Type
	var err error
	if n.Type != nil {
		llt, err = c.ConvertType(n.Type)
		if err != nil {
			return err
		}
	} else if n.Value != nil {
		ft := c.GetArgFinType(n.Value, llvm.Value{})
		llt, err = c.FinTypeToLLVM(ft)
		if err != nil {
			return err
		}
	} else {
		return c.Diags.Err(ErrTypeMismatch, n.Pos(), fmt.Sprintf("global %q needs an explicit type or initializer", n.Name), "")
	}
	g := llvm.AddGlobal(c.Mod, llt, name)
	g.SetInitializer(llvm.ConstNull(llt))
	c.CurrentScope.Define(n.Name, g, c.globalFinType(n, llt))
	return nil
}

func (c *Compiler) globalFinType(n *ast.VarDecl, llt llvm.Type) types.FinType {
	if n.Type != nil {
		if ft, err := c.AstToFinType(n.Type); err == nil {
			return ft
		}
	}
	return c.inferFinTypeFromLLVM(llt)
}

// defineGlobalVar compiles the constant initializer once the module scope is
// stable, per the prototype's global-variable pass ordering.
func (c *Compiler) defineGlobalVar(n *ast.VarDecl) error {
	if n.Value == nil {
		return nil
	}
	name := c.Mangle(c.CurrentFile, n.Name)
	g := c.Mod.NamedGlobal(name)
	if g.IsNil() {
		return c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("global %q missing its declaration", n.Name), "")
	}
	val, err := c.compileConstExpr(n.Value)
	if err != nil {
		return err
	}
	g.SetInitializer(val)
	return nil
}

// compileConstExpr compiles an expression expected to fold to an LLVM
// constant (scalar and string literals; anything else goes through
// compileExpr); global initializers
// have no builder block to emit into.
func (c *Compiler) compileConstExpr(e ast.Expr) (llvm.Value, error) {
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
	default:
		return c.compileExpr(e)
	}
}

// declareEnum implements enum declaration lowering (spec §3 "enum_types",
// grounded on the prototype's compile_enum_declaration): members are i32
// constants, auto-incrementing from the previous member unless given an
// explicit literal value.
func (c *Compiler) declareEnum(n *ast.EnumDecl) error {
	mangled := c.Mangle(c.CurrentFile, n.Name)
	members := make(map[string]int64, len(n.Members))
	var next int64
	for _, m := range n.Members {
		if m.Value != nil {
			lit, ok := m.Value.(*ast.IntLit)
			if !ok {
				return c.Diags.Err(ErrTypeMismatch, m.Pos(), fmt.Sprintf("enum member %q requires a constant integer value", m.Name), "")
			}
			next = parseIntLit(lit.Text)
		}
		members[m.Name] = next
		next++
	}
	ei := &enumInfo{members: members}
	c.mu.Lock()
	c.enums[mangled] = ei
	c.enums[n.Name] = ei
	c.mu.Unlock()
	return nil
}

// compileEnumAccess resolves `Enum.Member` to its i32 constant, per the
// prototype's compile_enum_access_ast.
func (c *Compiler) compileEnumAccess(enumName, member string, pos ast.Position) (llvm.Value, error) {
	ei, ok := c.enums[enumName]
	if !ok {
		ei, ok = c.enums[c.Mangle(c.CurrentFile, enumName)]
	}
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("unknown enum %q", enumName), "")
	}
	v, ok := ei.members[member]
	if !ok {
		names := make([]string, 0, len(ei.members))
		for k := range ei.members {
			names = append(names, k)
		}
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("enum %q has no member %q", enumName, member),
			"available members: "+strings.Join(names, ", "))
	}
	return llvm.ConstInt(c.Ctx.Int32Type(), uint64(v), false), nil
}

// compileFunctionCall is compile_function_call (spec §4.6): resolves the
// callee, instantiates MONO templates on demand, coerces arguments, and
// emits the call.
func (c *Compiler) compileFunctionCall(call *ast.CallExpr) (llvm.Value, error) {
	switch callee := call.Callee.(type) {
	case *ast.Ident:
		if callee.Name == "super" {
			return c.compileSuperCall(call)
		}
		return c.compileIdentCall(callee.Name, call)

	case *ast.MemberExpr:
		return c.compileMethodCallExpr(callee, call.Args)

	case *ast.ModuleMemberExpr:
		return c.compileModuleCall(callee, call)

	default:
		return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, call.Pos(), "callee is not callable", "")
	}
}

func (c *Compiler) compileIdentCall(name string, call *ast.CallExpr) (llvm.Value, error) {
	// 0. Macros: inline expansion with arguments bound as values, never a real call.
	c.mu.Lock()
	macro, isMacro := c.macros[name]
	c.mu.Unlock()
	if isMacro {
		return c.expandMacro(macro, call)
	}

	// 1. Locals: a lambda/function-pointer value bound in scope.
	if addr, _, ok := c.CurrentScope.Resolve(name); ok {
		v := c.B.CreateLoad(addr, "")
		if v.Type().TypeKind() == llvm.PointerTypeKind && v.Type().ElementType().TypeKind() == llvm.FunctionTypeKind {
			args, err := c.compileCallArgs(call.Args, v.Type().ElementType().ParamTypes())
			if err != nil {
				return llvm.Value{}, err
			}
			return c.B.CreateCall(v, args, ""), nil
		}
	}

	// 2. Struct constructor shorthand: `Name(args)` dispatches to __init.
	mangled := c.Mangle(c.CurrentFile, name)
	if si, ok := c.structs[mangled]; ok && !si.isInterface {
		return c.compileConstructorCall(mangled, call.Args, call.Pos())
	}

	// 3. MONO function templates: infer type arguments, instantiate, memoize.
	c.mu.Lock()
	tmpl, isTemplate := c.functionTemplates[name]
	c.mu.Unlock()
	if isTemplate {
		return c.compileMonoFunctionCall(name, tmpl, call)
	}

	// 4. Already-compiled mangled function.
	if fn, ok := c.funcs[mangled]; ok {
		return c.compileDirectCall(fn, call.Args, call.Pos())
	}

	// 5. Extern / unmangled name (define declarations, or aliased imports).
	if fn, ok := c.funcs[name]; ok {
		return c.compileDirectCall(fn, call.Args, call.Pos())
	}

	return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, call.Pos(), fmt.Sprintf("undefined function %q", name), "")
}

// expandMacro inlines a MacroDecl's body at the call site: each parameter
// name is bound to its compiled argument under a fresh scope, and the body
// statements compile directly into the caller's current block (spec §4.7
// "Macros", grounded on the prototype's inline macro-expansion pattern).
func (c *Compiler) expandMacro(macro *ast.MacroDecl, call *ast.CallExpr) (llvm.Value, error) {
	pop := c.pushScope()
	defer pop()
	for i, pname := range macro.Params {
		if i >= len(call.Args) {
			break
		}
		v, err := c.compileExpr(call.Args[i])
		if err != nil {
			return llvm.Value{}, err
		}
		slot := c.B.CreateAlloca(v.Type(), pname)
		c.B.CreateStore(v, slot)
		c.CurrentScope.Define(pname, slot, c.GetArgFinType(call.Args[i], v))
	}
	var result llvm.Value
	for _, s := range macro.Body {
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

func (c *Compiler) compileDirectCall(fn llvm.Value, argExprs []ast.Expr, pos ast.Position) (llvm.Value, error) {
	paramTypes := fn.Type().ElementType().ParamTypes()
	args, err := c.compileCallArgs(argExprs, paramTypes)
	if err != nil {
		return llvm.Value{}, err
	}
	name := ""
	if fn.Type().ElementType().ReturnType().TypeKind() != llvm.VoidTypeKind {
		name = "call"
	}
	return c.B.CreateCall(fn, args, name), nil
}

// compileCallArgs compiles each argument and coerces it to the matching
// parameter type: integer widen/narrow, int<->float, pointer bitcast,
// boxing into erased (ptr-to-byte) slots, float->double variadic promotion.
func (c *Compiler) compileCallArgs(argExprs []ast.Expr, paramTypes []llvm.Type) ([]llvm.Value, error) {
	args := make([]llvm.Value, len(argExprs))
	for i, ae := range argExprs {
		v, err := c.compileExpr(ae)
		if err != nil {
			return nil, err
		}
		if i < len(paramTypes) {
			v = c.coerceValue(v, paramTypes[i], c.GetArgFinType(ae, v))
		} else {
			// Variadic tail: promote float to double per the C ABI.
			if v.Type().TypeKind() == llvm.FloatTypeKind {
				v = c.B.CreateFPExt(v, c.Ctx.DoubleType(), "")
			}
		}
		args[i] = v
	}
	return args, nil
}

// coerceValue applies the call-site/assignment coercion rules of spec
// §4.6 step 3 and §4.7 compile_assignment: matching types pass through;
// otherwise numeric widening/narrowing, pointer bitcasts, and boxing into
// ptr-to-byte slots.
func (c *Compiler) coerceValue(v llvm.Value, target llvm.Type, vft types.FinType) llvm.Value {
	src := v.Type()
	if typesEqual(src, target) {
		return v
	}
	if target.TypeKind() == llvm.PointerTypeKind && target.ElementType().TypeKind() == llvm.IntegerTypeKind &&
		target.ElementType().IntTypeWidth() == 8 && src.TypeKind() != llvm.PointerTypeKind {
		return c.boxValue(v, vft)
	}
	if isFloatKind(target) && src.TypeKind() == llvm.IntegerTypeKind {
		return c.B.CreateSIToFP(v, target, "")
	}
	if target.TypeKind() == llvm.IntegerTypeKind && isFloatKind(src) {
		return c.B.CreateFPToSI(v, target, "")
	}
	if target.TypeKind() == llvm.PointerTypeKind && src.TypeKind() == llvm.PointerTypeKind {
		return c.B.CreateBitCast(v, target, "")
	}
	if target.TypeKind() == llvm.IntegerTypeKind && src.TypeKind() == llvm.IntegerTypeKind {
		if target.IntTypeWidth() > src.IntTypeWidth() {
			return c.B.CreateSExt(v, target, "")
		}
		if target.IntTypeWidth() < src.IntTypeWidth() {
			return c.B.CreateTrunc(v, target, "")
		}
	}
	if src.TypeKind() == llvm.IntegerTypeKind && target.TypeKind() == llvm.PointerTypeKind && v.IsConstant() && v.SExtValue() == 0 {
		return llvm.ConstNull(target)
	}
	return v
}

// compileMonoFunctionCall infers T from the call's arguments, instantiates
// the template on first use, and calls the (possibly cached) instance.
func (c *Compiler) compileMonoFunctionCall(name string, tmpl *ast.FuncDecl, call *ast.CallExpr) (llvm.Value, error) {
	bindings := make(map[string]types.FinType)
	for i, p := range tmpl.Params {
		if i >= len(call.Args) {
			break
		}
		pattern, err := c.AstToFinType(p.Type)
		if err != nil {
			continue
		}
		argFT := c.GetArgFinType(call.Args[i], llvm.Value{})
		MatchGenericTypes(argFT, pattern, bindings)
	}
	for i, ta := range call.TypeArgs {
		if i < len(tmpl.TypeParams) {
			if ft, err := c.AstToFinType(ta); err == nil {
				bindings[tmpl.TypeParams[i].Name] = ft
			}
		}
	}

	sigParts := make([]string, len(tmpl.TypeParams))
	astBindings := make(map[string]ast.TypeExpr, len(bindings))
	for i, tp := range tmpl.TypeParams {
		ft, ok := bindings[tp.Name]
		if !ok {
			return llvm.Value{}, c.Diags.Err(ErrInvalidConstraint, call.Pos(),
				fmt.Sprintf("could not infer type argument %q for %q", tp.Name, name), "")
		}
		sigParts[i] = sanitizeSignature(ft.Signature())
		astBindings[tp.Name] = finTypeToASTType(ft)
	}
	instName := name + "__" + strings.Join(sigParts, "_")

	c.mu.Lock()
	fn, cached := c.monoFunctionCache[instName]
	c.mu.Unlock()
	if !cached {
		concrete := ast.Substitute(tmpl, astBindings).(*ast.FuncDecl)
		concrete.Name = instName
		concrete.TypeParams = nil
		var err error
		fn, err = c.declareFunctionPrototype(instName, nil, concrete.Params, concrete.ReturnType, false)
		if err != nil {
			return llvm.Value{}, err
		}
		c.mu.Lock()
		c.monoFunctionCache[instName] = fn
		c.mu.Unlock()
		if err := c.compileFunctionBody(fn, nil, concrete.Params, concrete.ReturnType, concrete.Body, llvm.Type{}, "", false); err != nil {
			return llvm.Value{}, err
		}
	}
	return c.compileDirectCall(fn, call.Args, call.Pos())
}

// finTypeToASTType builds a minimal TypeExpr standing in for a resolved
// FinType, sufficient for ast.Substitute to rewrite a template body: named
// types for primitives/structs, pointer types recursed.
func finTypeToASTType(ft types.FinType) ast.TypeExpr {
	switch ft.Kind {
	case types.KindPointer:
		return ast.NewPointerTypeExpr(finTypeToASTType(*ft.Pointee), ast.Position{})
	case types.KindStruct:
		return ast.NewNamedTypeExpr(ft.StructName, ast.Position{})
	case types.KindPrimitive:
		return ast.NewNamedTypeExpr(ft.Primitive, ast.Position{})
	default:
		return ast.NewNamedTypeExpr(ft.Signature(), ast.Position{})
	}
}

// compileModuleCall dispatches `alias.Symbol(args)` through the loader's
// registered module alias.
func (c *Compiler) compileModuleCall(callee *ast.ModuleMemberExpr, call *ast.CallExpr) (llvm.Value, error) {
	mi, ok := c.loader.ResolveAlias(callee.Alias)
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, call.Pos(), fmt.Sprintf("module %q not imported", callee.Alias), "")
	}
	if v, _, ok := mi.scope.Resolve(callee.Member); ok {
		return c.compileDirectCall(v, call.Args, call.Pos())
	}
	mangled := mi.path + "::" + callee.Member
	if fn, ok := c.funcs[mangled]; ok {
		return c.compileDirectCall(fn, call.Args, call.Pos())
	}
	return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, call.Pos(),
		fmt.Sprintf("module %q has no symbol %q", callee.Alias, callee.Member), "")
}

// compileSuperCall handles `super(args)` inside a constructor/method body:
// it calls the parent's constructor, then copies the resulting value into
// the parent-typed prefix of self (spec §4.6 "super call").
func (c *Compiler) compileSuperCall(call *ast.CallExpr) (llvm.Value, error) {
	si, ok := c.structs[c.currentStructName]
	if !ok || len(si.parents) == 0 {
		return llvm.Value{}, c.Diags.Err(ErrInvalidConstraint, call.Pos(), "super() used in a struct without parents", "")
	}
	parent := si.parents[0]
	parentVal, err := c.compileConstructorCall(parent, call.Args, call.Pos())
	if err != nil {
		return llvm.Value{}, err
	}
	selfAddr, _, ok := c.CurrentScope.Resolve("self")
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrInvalidConstraint, call.Pos(), "super() used outside a method", "")
	}
	selfVal := c.B.CreateLoad(selfAddr, "")
	parentPtr := c.B.CreateBitCast(selfVal, llvm.PointerType(c.structs[parent].llvmType, 0), "")
	c.B.CreateStore(c.B.CreateLoad(parentVal, ""), parentPtr)
	return selfVal, nil
}

// compileConstructorCall emits a call to `<Struct>__init` and returns the
// heap pointer the constructor returns.
func (c *Compiler) compileConstructorCall(structMangled string, argExprs []ast.Expr, pos ast.Position) (llvm.Value, error) {
	ctorName := structMangled + "__init"
	fn, ok := c.funcs[ctorName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("struct %q has no compiled constructor", structMangled), "")
	}
	return c.compileDirectCall(fn, argExprs, pos)
}
