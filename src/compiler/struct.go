package compiler

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// compileStruct is the one-shot entry point used for MONO struct template
// instantiation (spec §4.5): shape, then behavior, in one call since a
// freshly-substituted concrete struct has no separate declare/define split
// visible to its caller.
func (c *Compiler) compileStruct(decl *ast.StructDecl) error {
	mangled := c.Mangle(c.CurrentFile, decl.Name)
	if _, ok := c.structs[mangled]; ok {
		return nil // already instantiated with this signature
	}
	if _, err := c.compileStructShape(decl, mangled, ModeStandard); err != nil {
		return err
	}
	return c.compileStructBehavior(decl, mangled)
}

// compileStructShape is Pass 1 of struct lowering (spec §4.5): create the
// opaque identified struct type, flatten concrete parents' fields ahead of
// the struct's own, verify interface parents are satisfied, and set the
// final body. Registered before any method body compiles so self-referencing
// and mutually-recursive structs resolve.
func (c *Compiler) compileStructShape(decl *ast.StructDecl, mangled string, mode Mode) (*structInfo, error) {
	if si, ok := c.structs[mangled]; ok {
		return si, nil
	}

	llt := c.Ctx.StructCreateNamed(mangled)
	si := &structInfo{
		llvmType:     llt,
		fieldIndex:   make(map[string]int),
		fieldDefault: make(map[string]ast.Expr),
		fieldVis:     make(map[string]ast.Visibility),
		fieldType:    make(map[string]ast.TypeExpr),
		operators:    make(map[string]string),
		methods:      make(map[string]*ast.FuncDecl),
		mode:         mode,
		decl:         decl,
	}
	for _, p := range decl.TypeParams {
		si.genericParams = append(si.genericParams, p.Name)
	}
	c.mu.Lock()
	c.structs[mangled] = si
	c.mu.Unlock()

	pop := c.pushScope()
	defer pop()
	registerTypeParams(c.CurrentScope, decl.TypeParams)

	var fieldTypes []llvm.Type
	idx := 0

	for _, parent := range decl.Parents {
		named, ok := parent.(*ast.NamedTypeExpr)
		if !ok {
			return nil, c.Diags.Err(ErrShape, parent.Pos(), "struct parent must be a named type", "")
		}
		parentMangled := c.Mangle(c.CurrentFile, named.Name)
		parentSi, ok := c.structs[parentMangled]
		if !ok {
			// Allow the parent to be forward-declared first: this struct's own
			// declarePass entry should not be reached before its parent's, but
			// the loader processes declarations in source order within a file.
			return nil, c.Diags.Err(ErrUnresolvedSymbol, parent.Pos(),
				fmt.Sprintf("struct %q extends %q before it is declared", decl.Name, named.Name), "")
		}
		if parentSi.isInterface {
			if err := c.verifyInterfaceSatisfied(decl, parentSi, named.Name); err != nil {
				return nil, err
			}
			si.parents = append(si.parents, parentMangled)
			continue
		}
		// Concrete parent: flatten its fields into this struct's prefix and
		// inherit its registered methods/operators unless overridden.
		for name, i := range parentSi.fieldIndex {
			si.fieldIndex[name] = idx + i
			si.fieldType[name] = parentSi.fieldType[name]
			si.fieldVis[name] = parentSi.fieldVis[name]
			si.fieldDefault[name] = parentSi.fieldDefault[name]
		}
		parentElems := parentSi.llvmType.StructElementTypes()
		fieldTypes = append(fieldTypes, parentElems...)
		idx += len(parentElems)
		for name, m := range parentSi.methods {
			si.methods[name] = m
		}
		for sym, fn := range parentSi.operators {
			si.operators[sym] = fn
		}
		si.parents = append(si.parents, parentMangled)
	}

	for _, f := range decl.Fields {
		ft, err := c.ConvertType(f.Type)
		if err != nil {
			return nil, err
		}
		si.fieldIndex[f.Name] = idx
		si.fieldType[f.Name] = f.Type
		si.fieldVis[f.Name] = f.Vis
		si.fieldDefault[f.Name] = f.Default
		fieldTypes = append(fieldTypes, ft)
		idx++
	}

	llt.StructSetBody(fieldTypes, false)
	for _, m := range decl.Methods {
		si.methods[m.Name] = m
	}
	return si, nil
}

// verifyInterfaceSatisfied checks that decl declares a method matching every
// signature interfaceSi.interfaceOf requires (spec §4.5 "Interface
// conformance"), by name and arity; a missing method is a shape error.
func (c *Compiler) verifyInterfaceSatisfied(decl *ast.StructDecl, interfaceSi *structInfo, interfaceName string) error {
	for _, req := range interfaceSi.interfaceOf {
		found := false
		for _, m := range decl.Methods {
			if m.Name == req.Name && len(m.Params) == len(req.Params) {
				found = true
				break
			}
		}
		if !found {
			return c.Diags.Err(ErrShape, decl.Pos(),
				fmt.Sprintf("struct %q does not implement %q.%s required by interface %q", decl.Name, interfaceName, req.Name, interfaceName),
				"add a matching method or remove the interface from the parent list")
		}
	}
	return nil
}

// compileStructBehavior is Pass 2 of struct lowering (spec §4.5): compile
// operator overloads, constructor overloads, the destructor, and every own
// method body. Inherited methods already live in si.methods from shape and
// need no recompilation; only methods declared directly on decl get a
// fresh mangled symbol here.
func (c *Compiler) compileStructBehavior(decl *ast.StructDecl, mangled string) error {
	si := c.structs[mangled]
	llt := si.llvmType

	for _, op := range decl.Operators {
		if err := c.compileOperator(decl, si, mangled, llt, op); err != nil {
			return err
		}
	}
	for _, ctor := range decl.Constructors {
		if err := c.compileConstructor(decl, si, mangled, llt, ctor); err != nil {
			return err
		}
	}
	if len(decl.Constructors) == 0 {
		if err := c.compileDefaultConstructor(decl, si, mangled, llt); err != nil {
			return err
		}
	}
	if decl.Destructor != nil {
		if err := c.compileDestructor(si, mangled, llt, decl.Destructor); err != nil {
			return err
		}
	}
	for _, m := range decl.Methods {
		if err := c.compileMethod(si, mangled, llt, m); err != nil {
			return err
		}
	}
	return nil
}

// opSuffix maps an operator symbol to the identifier-safe suffix used in its
// mangled method name, per spec §4.1.
func opSuffix(symbol string) string {
	switch symbol {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "%":
		return "mod"
	case "==":
		return "eq"
	case "!=":
		return "neq"
	case "<":
		return "lt"
	case "<=":
		return "le"
	case ">":
		return "gt"
	case ">=":
		return "ge"
	case "[]":
		return "index"
	default:
		return "op"
	}
}

func (c *Compiler) compileOperator(decl *ast.StructDecl, si *structInfo, mangled string, llt llvm.Type, op *ast.OperatorDecl) error {
	name := mangled + "__op_" + opSuffix(op.Symbol)
	selfPtr := llvm.PointerType(llt, 0)
	params := []*ast.Param{op.RHS}
	fn, err := c.declareMethodPrototype(name, selfPtr, decl.TypeParams, params, op.Return)
	if err != nil {
		return err
	}
	si.operators[op.Symbol] = name
	return c.compileFunctionBody(fn, decl.TypeParams, params, op.Return, op.Body, selfPtr, mangled, false)
}

func (c *Compiler) compileConstructor(decl *ast.StructDecl, si *structInfo, mangled string, llt llvm.Type, ctor *ast.ConstructorDecl) error {
	canonical := mangled + "__init"
	name := canonical
	if _, ok := c.funcs[canonical]; ok {
		// A second constructor overload: pick a disambiguated name by arity so
		// both remain callable; the first declared ctor keeps the canonical
		// zero-suffix name that compileConstructorCall dispatches to.
		name = fmt.Sprintf("%s_%d", canonical, len(ctor.Params))
	}
	retPtr := ast.NewPointerTypeExpr(ast.NewNamedTypeExpr(decl.Name, decl.Pos()), decl.Pos())
	fn, err := c.declareFunctionPrototype(name, decl.TypeParams, ctor.Params, retPtr, false)
	if err != nil {
		return err
	}
	return c.compileConstructorBody(fn, decl.TypeParams, ctor.Params, ctor.Body, llt, mangled, si)
}

// compileDefaultConstructor synthesizes `<Struct>__init()` when the
// declaration supplies none, initializing every field to its declared
// default expression or the type's zero value (spec §4.5 "Implicit
// constructor").
func (c *Compiler) compileDefaultConstructor(decl *ast.StructDecl, si *structInfo, mangled string, llt llvm.Type) error {
	name := mangled + "__init"
	retPtr := ast.NewPointerTypeExpr(ast.NewNamedTypeExpr(decl.Name, decl.Pos()), decl.Pos())
	fn, err := c.declareFunctionPrototype(name, decl.TypeParams, nil, retPtr, false)
	if err != nil {
		return err
	}
	return c.compileConstructorBody(fn, decl.TypeParams, nil, nil, llt, mangled, si)
}

// compileConstructorBody emits `self = malloc(sizeof(Struct))`, stores each
// field's default expression (or zero), runs an explicit body if present,
// and returns self.
func (c *Compiler) compileConstructorBody(fn llvm.Value, typeParams []*ast.GenericParam, params []*ast.Param, body *ast.BlockStmt, llt llvm.Type, mangled string, si *structInfo) error {
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
	c.currentStructName = mangled
	c.B.SetInsertPointAtEnd(entry)

	pop := c.pushScope()
	defer pop()
	registerTypeParams(c.CurrentScope, typeParams)

	raw := c.malloc(c.sizeOf(llt))
	self := c.B.CreateBitCast(raw, llvm.PointerType(llt, 0), "")
	selfSlot := c.B.CreateAlloca(self.Type(), "self")
	c.B.CreateStore(self, selfSlot)
	c.CurrentScope.Define("self", selfSlot, types.NewPointer(types.NewStruct(mangled, nil)))

	for name, idx := range si.fieldIndex {
		fieldLLT := llt.StructElementTypes()[idx]
		var val llvm.Value
		if def := si.fieldDefault[name]; def != nil {
			v, err := c.compileExpr(def)
			if err != nil {
				return err
			}
			val = c.coerceValue(v, fieldLLT, c.GetArgFinType(def, v))
		} else {
			val = llvm.ConstNull(fieldLLT)
		}
		gep := c.B.CreateStructGEP(self, idx, "")
		c.B.CreateStore(val, gep)
	}

	for i, p := range params {
		param := fn.Param(i)
		if idx, ok := si.fieldIndex[p.Name]; ok {
			gep := c.B.CreateStructGEP(self, idx, "")
			c.B.CreateStore(param, gep)
		}
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
	if !c.terminated() {
		c.B.CreateRet(self)
	}
	return nil
}

func (c *Compiler) compileDestructor(si *structInfo, mangled string, llt llvm.Type, d *ast.DestructorDecl) error {
	name := mangled + "__del"
	selfPtr := llvm.PointerType(llt, 0)
	fn, err := c.declareMethodPrototype(name, selfPtr, nil, nil, nil)
	if err != nil {
		return err
	}
	c.funcs[name] = fn
	return c.compileFunctionBody(fn, nil, nil, nil, d.Body, selfPtr, mangled, false)
}

func (c *Compiler) compileMethod(si *structInfo, mangled string, llt llvm.Type, m *ast.FuncDecl) error {
	name := mangled + "__" + m.Name
	var selfPtr llvm.Type
	if !m.IsStatic {
		selfPtr = llvm.PointerType(llt, 0)
	}
	fn, err := c.declareMethodPrototype(name, selfPtr, m.TypeParams, m.Params, m.ReturnType)
	if err != nil {
		return err
	}
	c.funcs[name] = fn
	return c.compileFunctionBody(fn, m.TypeParams, m.Params, m.ReturnType, m.Body, selfPtr, mangled, false)
}

// declareMethodPrototype builds and registers the LLVM function for a
// struct-bound method/operator/destructor, prefixing `self` onto the
// parameter list when selfType is non-nil.
func (c *Compiler) declareMethodPrototype(name string, selfType llvm.Type, typeParams []*ast.GenericParam, params []*ast.Param, ret ast.TypeExpr) (llvm.Value, error) {
	pop := c.pushScope()
	defer pop()
	registerTypeParams(c.CurrentScope, typeParams)

	var llvmParams []llvm.Type
	if !selfType.IsNil() {
		llvmParams = append(llvmParams, selfType)
	}
	for _, p := range params {
		pt, err := c.ConvertType(p.Type)
		if err != nil {
			return llvm.Value{}, err
		}
		llvmParams = append(llvmParams, pt)
	}
	retType, err := c.ConvertType(ret)
	if err != nil {
		return llvm.Value{}, err
	}
	fnType := llvm.FunctionType(retType, llvmParams, false)
	fn := c.Mod.NamedFunction(name)
	if fn.IsNil() {
		fn = llvm.AddFunction(c.Mod, name, fnType)
	}
	c.mu.Lock()
	c.funcs[name] = fn
	c.mu.Unlock()
	return fn, nil
}

// declareInterface registers an interface's method list for later
// conformance checks and vtable construction (spec §4.5 "Interface
// declarations"); interfaces carry no LLVM struct body of their own beyond
// the universal fat-pointer layout used wherever one is referenced as a
// type.
func (c *Compiler) declareInterface(decl *ast.InterfaceDecl) error {
	mangled := c.Mangle(c.CurrentFile, decl.Name)
	si := &structInfo{
		llvmType:    c.Ctx.StructType([]llvm.Type{c.i8ptr(), c.i8ptr()}, false),
		isInterface: true,
		interfaceOf: decl.Methods,
		fieldIndex:  make(map[string]int),
		operators:   make(map[string]string),
		methods:     make(map[string]*ast.FuncDecl),
	}
	c.mu.Lock()
	c.structs[mangled] = si
	c.mu.Unlock()
	return nil
}

// buildVtable constructs (and memoizes) the global constant array of
// bitcast-to-i8* method pointers for concreteMangled's implementation of
// interfaceMangled, in the interface's declared method order (spec §4.5
// "vtable construction").
func (c *Compiler) buildVtable(concreteMangled, interfaceMangled string) llvm.Value {
	key := concreteMangled + "$" + interfaceMangled
	if vt, ok := c.vtables[key]; ok {
		return vt
	}

	ifaceSi, ok := c.structs[interfaceMangled]
	if !ok || !ifaceSi.isInterface {
		return llvm.ConstNull(llvm.PointerType(c.i8ptr(), 0))
	}

	entries := make([]llvm.Value, 0, len(ifaceSi.interfaceOf))
	for _, req := range ifaceSi.interfaceOf {
		fnName := concreteMangled + "__" + req.Name
		fn, ok := c.funcs[fnName]
		if !ok {
			entries = append(entries, llvm.ConstNull(c.i8ptr()))
			continue
		}
		entries = append(entries, llvm.ConstBitCast(fn, c.i8ptr()))
	}
	arrType := llvm.ArrayType(c.i8ptr(), len(entries))
	arr := llvm.ConstArray(c.i8ptr(), entries)

	g := llvm.AddGlobal(c.Mod, arrType, concreteMangled+"__vtbl__"+lastSegment(interfaceMangled, "__"))
	g.SetInitializer(arr)
	g.SetGlobalConstant(true)
	g.SetLinkage(llvm.PrivateLinkage)

	c.mu.Lock()
	c.vtables[key] = g
	c.mu.Unlock()
	return g
}

// compileMethodCallExpr resolves `target.method(args)` (spec §4.5 "Dispatch
// rules"): static dispatch through the concrete struct's mangled method
// symbol, or dynamic dispatch through a vtable slot when target's static
// type is an interface fat pointer.
func (c *Compiler) compileMethodCallExpr(member *ast.MemberExpr, argExprs []ast.Expr) (llvm.Value, error) {
	if ident, ok := member.Target.(*ast.Ident); ok && ident.Name == "super" {
		return c.compileSuperMethodCall(member.Member, argExprs, member.Pos())
	}

	targetFT := c.GetArgFinType(member.Target, llvm.Value{})
	structName := targetFT.StructName
	if targetFT.Kind == types.KindPointer {
		structName = targetFT.Pointee.StructName
	}
	si, ok := c.structs[structName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, member.Pos(), fmt.Sprintf("unknown type for member access %q", member.Member), "")
	}

	targetVal, err := c.compileExpr(member.Target)
	if err != nil {
		return llvm.Value{}, err
	}

	if si.isInterface {
		return c.compileDynamicDispatch(targetVal, si, member.Member, argExprs, member.Pos())
	}

	fnName := structName + "__" + member.Member
	fn, ok := c.funcs[fnName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, member.Pos(), fmt.Sprintf("%q has no method %q", structName, member.Member), "")
	}
	paramTypes := fn.Type().ElementType().ParamTypes()
	var rest []llvm.Type
	if len(paramTypes) > 0 {
		rest = paramTypes[1:]
	}
	compiledArgs, err := c.compileCallArgs(argExprs, rest)
	if err != nil {
		return llvm.Value{}, err
	}
	args := append([]llvm.Value{targetVal}, compiledArgs...)
	return c.finishMethodCall(fn, args, member.Pos())
}

// compileDynamicDispatch loads the vtable slot matching member's declared
// position in the interface and calls through it.
func (c *Compiler) compileDynamicDispatch(fatPtr llvm.Value, ifaceSi *structInfo, member string, argExprs []ast.Expr, pos ast.Position) (llvm.Value, error) {
	slot := -1
	for i, m := range ifaceSi.interfaceOf {
		if m.Name == member {
			slot = i
			break
		}
	}
	if slot < 0 {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("interface has no method %q", member), "")
	}
	data := c.B.CreateExtractValue(fatPtr, 0, "")
	vtblPtr := c.B.CreateExtractValue(fatPtr, 1, "")
	req := ifaceSi.interfaceOf[slot]

	paramTypes := make([]llvm.Type, 0, len(req.Params)+1)
	paramTypes = append(paramTypes, c.i8ptr())
	for _, p := range req.Params {
		pt, err := c.ConvertType(p.Type)
		if err != nil {
			return llvm.Value{}, err
		}
		paramTypes = append(paramTypes, pt)
	}
	retType, err := c.ConvertType(req.ReturnType)
	if err != nil {
		return llvm.Value{}, err
	}
	fnType := llvm.FunctionType(retType, paramTypes, false)
	fnPtrType := llvm.PointerType(fnType, 0)

	arrType := llvm.ArrayType(c.i8ptr(), len(ifaceSi.interfaceOf))
	typedVtbl := c.B.CreateBitCast(vtblPtr, llvm.PointerType(arrType, 0), "")
	zero := llvm.ConstInt(c.Ctx.Int32Type(), 0, false)
	idx := llvm.ConstInt(c.Ctx.Int32Type(), uint64(slot), false)
	slotPtr := c.B.CreateGEP(typedVtbl, []llvm.Value{zero, idx}, "")
	rawFn := c.B.CreateLoad(slotPtr, "")
	fnPtr := c.B.CreateBitCast(rawFn, fnPtrType, "")

	args, err := c.compileCallArgs(argExprs, paramTypes[1:])
	if err != nil {
		return llvm.Value{}, err
	}
	args = append([]llvm.Value{data}, args...)
	name := ""
	if retType.TypeKind() != llvm.VoidTypeKind {
		name = "call"
	}
	return c.B.CreateCall(fnPtr, args, name), nil
}

// compileSuperMethodCall resolves `super.method(args)` to the first parent's
// mangled method symbol, called against the current `self`.
func (c *Compiler) compileSuperMethodCall(member string, argExprs []ast.Expr, pos ast.Position) (llvm.Value, error) {
	si, ok := c.structs[c.currentStructName]
	if !ok || len(si.parents) == 0 {
		return llvm.Value{}, c.Diags.Err(ErrInvalidConstraint, pos, "super used in a struct without parents", "")
	}
	parent := si.parents[0]
	fnName := parent + "__" + member
	fn, ok := c.funcs[fnName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, pos, fmt.Sprintf("parent %q has no method %q", parent, member), "")
	}
	selfAddr, _, ok := c.CurrentScope.Resolve("self")
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrInvalidConstraint, pos, "super used outside a method", "")
	}
	self := c.B.CreateLoad(selfAddr, "")
	selfParent := c.B.CreateBitCast(self, llvm.PointerType(c.structs[parent].llvmType, 0), "")
	paramTypes := fn.Type().ElementType().ParamTypes()
	var rest []llvm.Type
	if len(paramTypes) > 0 {
		rest = paramTypes[1:]
	}
	compiledArgs, err := c.compileCallArgs(argExprs, rest)
	if err != nil {
		return llvm.Value{}, err
	}
	args := append([]llvm.Value{selfParent}, compiledArgs...)
	return c.finishMethodCall(fn, args, pos)
}

func (c *Compiler) finishMethodCall(fn llvm.Value, args []llvm.Value, pos ast.Position) (llvm.Value, error) {
	name := ""
	if fn.Type().ElementType().ReturnType().TypeKind() != llvm.VoidTypeKind {
		name = "call"
	}
	return c.B.CreateCall(fn, args, name), nil
}

// compileMemberAccess implements compile_member_access (spec §4.5): resolves
// `target.member` to a loaded value, handling `.length` on collections,
// generic-constrained field unboxing, and ordinary field loads with implicit
// pointer auto-deref.
func (c *Compiler) compileMemberAccess(member *ast.MemberExpr) (llvm.Value, error) {
	if modAccess, ok := member.Target.(*ast.Ident); ok {
		_, _, isVal := c.CurrentScope.Resolve(modAccess.Name)
		_, isEnum := c.enums[modAccess.Name]
		_, isMangledEnum := c.enums[c.Mangle(c.CurrentFile, modAccess.Name)]
		if !isVal && (isEnum || isMangledEnum) {
			return c.compileEnumAccess(modAccess.Name, member.Member, member.Pos())
		}
	}

	targetVal, err := c.compileExpr(member.Target)
	if err != nil {
		return llvm.Value{}, err
	}
	targetFT := c.GetArgFinType(member.Target, targetVal)

	ptr := targetVal
	structFT := targetFT
	if targetFT.Kind == types.KindPointer {
		structFT = *targetFT.Pointee
	} else if targetVal.Type().TypeKind() != llvm.PointerTypeKind {
		// A bare struct value: spill to a slot so field access can GEP it.
		slot := c.B.CreateAlloca(targetVal.Type(), "")
		c.B.CreateStore(targetVal, slot)
		ptr = slot
	}

	if structFT.Kind == types.KindStruct && structFT.StructName == "Collection" && member.Member == "length" {
		gep := c.B.CreateStructGEP(ptr, 1, "")
		return c.B.CreateLoad(gep, ""), nil
	}

	si, ok := c.structs[structFT.StructName]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, member.Pos(),
			fmt.Sprintf("no struct %q for member %q", structFT.StructName, member.Member), "")
	}
	idx, ok := si.fieldIndex[member.Member]
	if !ok {
		return llvm.Value{}, c.Diags.Err(ErrUnresolvedSymbol, member.Pos(),
			fmt.Sprintf("struct %q has no field %q", structFT.StructName, member.Member), "")
	}
	gep := c.B.CreateStructGEP(ptr, idx, "")
	loaded := c.B.CreateLoad(gep, "")

	// Generic-constrained field: the stored slot is an erased ptr-to-byte and
	// the constraint identifies the bound on the concrete element type, so
	// unbox back to the struct's bound type argument when one is recorded.
	fieldTypeAST := si.fieldType[member.Member]
	if named, ok := fieldTypeAST.(*ast.NamedTypeExpr); ok {
		for i, pname := range si.genericParams {
			if pname == named.Name && i < len(structFT.Args) {
				unboxed, uerr := c.unboxValue(loaded, structFT.Args[i])
				if uerr == nil {
					return unboxed, nil
				}
			}
		}
	}
	return loaded, nil
}
