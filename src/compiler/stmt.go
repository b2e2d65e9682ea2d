package compiler

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// compileBlock pushes a fresh scope frame and compiles every statement in
// sequence, stopping early once a terminator has been emitted (spec §4.3
// "Block scoping").
func (c *Compiler) compileBlock(b *ast.BlockStmt) error {
	pop := c.pushScope()
	defer pop()
	for _, s := range b.Stmts {
		if c.terminated() {
			break
		}
		if err := c.compileStmt(s); err != nil {
			return err
		}
	}
	return nil
}

// compileStmt is the single dispatch point for statement lowering.
func (c *Compiler) compileStmt(s ast.Stmt) error {
	switch n := s.(type) {
	case *ast.BlockStmt:
		return c.compileBlock(n)
	case *ast.ExprStmt:
		_, err := c.compileExpr(n.Expr)
		return err
	case *ast.DeclStmt:
		return c.compileDeclStmt(n)
	case *ast.AssignStmt:
		return c.compileAssignStmt(n)
	case *ast.ReturnStmt:
		return c.compileReturnStmt(n)
	case *ast.IfStmt:
		return c.compileIfStmt(n)
	case *ast.WhileStmt:
		return c.compileWhileStmt(n)
	case *ast.ForStmt:
		return c.compileForStmt(n)
	case *ast.ForeachStmt:
		return c.compileForeachStmt(n)
	case *ast.BreakStmt:
		return c.compileBreakStmt(n)
	case *ast.ContinueStmt:
		return c.compileContinueStmt(n)
	case *ast.TryStmt:
		return c.compileTryStmt(n)
	case *ast.BlameStmt:
		return c.compileBlameStmt(n)
	default:
		return c.Diags.Err(ErrTypeMismatch, s.Pos(), "unknown statement node", "")
	}
}

// compileDeclStmt handles a local `let name <Type> = value;` (spec §3
// "Lifecycles", grounded on the prototype's create_variable_mut): the
// initializer is compiled, coerced to the declared or inferred LLVM type,
// spilled to a fresh alloca, and the alloca (not the loaded value) is bound
// in scope so later assignment/address-of/postfix can locate it.
func (c *Compiler) compileDeclStmt(s *ast.DeclStmt) error {
	vd, ok := s.Decl.(*ast.VarDecl)
	if !ok {
		return c.declarePass(s.Decl)
	}

	var llt llvm.Type
	var ft types.FinType
	var err error
	if vd.Type != nil {
		llt, err = c.ConvertType(vd.Type)
		if err != nil {
			return err
		}
		ft, err = c.AstToFinType(vd.Type)
		if err != nil {
			return err
		}
	}

	var val llvm.Value
	if vd.Value != nil {
		val, err = c.compileExpr(vd.Value)
		if err != nil {
			return err
		}
		if vd.Type == nil {
			llt = val.Type()
			ft = c.GetArgFinType(vd.Value, val)
		} else {
			val = c.coerceValue(val, llt, c.GetArgFinType(vd.Value, val))
		}
	} else if vd.Type != nil {
		val = llvm.ConstNull(llt)
	} else {
		return c.Diags.Err(ErrTypeMismatch, vd.Pos(), fmt.Sprintf("local %q needs an explicit type or initializer", vd.Name), "")
	}

	slot := c.B.CreateAlloca(llt, vd.Name)
	c.B.CreateStore(val, slot)
	c.CurrentScope.Define(vd.Name, slot, ft)
	return nil
}

// compileAssignStmt implements `target = value;` (spec §4.7 "Assignment
// L-values", grounded on the prototype's compile_assignment): resolves the
// target's storage address, coerces the value to the slot's element type
// (boxing into Any/erased/interface slots as needed), and stores.
func (c *Compiler) compileAssignStmt(s *ast.AssignStmt) error {
	addr, err := c.lvalueAddress(s.Target)
	if err != nil {
		return err
	}
	val, err := c.compileExpr(s.Value)
	if err != nil {
		return err
	}
	slotType := addr.Type().ElementType()
	valFT := c.GetArgFinType(s.Value, val)

	if c.isAnyShaped(slotType) && !c.isAnyShaped(val.Type()) {
		val = c.packAny(val, valFT)
	} else if c.isInterfaceShaped(slotType) && !c.isInterfaceShaped(val.Type()) {
		concreteName := valFT.StructName
		if valFT.Kind == types.KindPointer {
			concreteName = valFT.Pointee.StructName
		}
		interfaceName := c.interfaceNameForSlot(s.Target)
		val = c.packInterface(val, concreteName, interfaceName)
	} else {
		val = c.coerceValue(val, slotType, valFT)
	}
	c.B.CreateStore(val, addr)
	return nil
}

// interfaceNameForSlot recovers the mangled interface name a fat-pointer
// assignment target was declared with, by looking up the target's static
// FinType through scope/field metadata.
func (c *Compiler) interfaceNameForSlot(target ast.Expr) string {
	ft := c.GetArgFinType(target, llvm.Value{})
	if ft.Kind == types.KindStruct {
		return ft.StructName
	}
	return ""
}

// compileReturnStmt implements `return expr;`/`return;`, coercing the value
// to the function's declared return type with coerceValue; a struct pointer
// returned where a struct value is declared is not loaded (spec §4.6,
// grounded on the prototype's compile_return).
func (c *Compiler) compileReturnStmt(s *ast.ReturnStmt) error {
	if s.Value == nil {
		c.B.CreateRetVoid()
		return nil
	}
	val, err := c.compileExpr(s.Value)
	if err != nil {
		return err
	}
	retType := c.CurrentFunc.Type().ElementType().ReturnType()
	if retType.TypeKind() == llvm.VoidTypeKind {
		c.B.CreateRetVoid()
		return nil
	}
	val = c.coerceValue(val, retType, c.GetArgFinType(s.Value, val))
	c.B.CreateRet(val)
	return nil
}

// compileIfStmt lowers an if/elif*/else chain to a cascade of conditional
// branches, each clause getting its own scoped block.
func (c *Compiler) compileIfStmt(s *ast.IfStmt) error {
	fn := c.CurrentFunc
	endBlk := llvm.AddBasicBlock(fn, "if.end")
	anyTerminated := true

	for _, clause := range s.Clauses {
		cond, err := c.compileExpr(clause.Condition)
		if err != nil {
			return err
		}
		thenBlk := llvm.AddBasicBlock(fn, "if.then")
		nextBlk := llvm.AddBasicBlock(fn, "if.next")
		c.B.CreateCondBr(cond, thenBlk, nextBlk)

		c.B.SetInsertPointAtEnd(thenBlk)
		if err := c.compileBlock(clause.Body); err != nil {
			return err
		}
		if !c.terminated() {
			c.B.CreateBr(endBlk)
			anyTerminated = false
		}

		c.B.SetInsertPointAtEnd(nextBlk)
	}

	if s.Else != nil {
		if err := c.compileBlock(s.Else); err != nil {
			return err
		}
		if !c.terminated() {
			c.B.CreateBr(endBlk)
			anyTerminated = false
		}
	} else {
		c.B.CreateBr(endBlk)
		anyTerminated = false
	}

	if anyTerminated {
		endBlk.EraseFromParent()
		return nil
	}
	c.B.SetInsertPointAtEnd(endBlk)
	return nil
}

func (c *Compiler) compileWhileStmt(s *ast.WhileStmt) error {
	fn := c.CurrentFunc
	condBlk := llvm.AddBasicBlock(fn, "while.cond")
	bodyBlk := llvm.AddBasicBlock(fn, "while.body")
	endBlk := llvm.AddBasicBlock(fn, "while.end")

	c.B.CreateBr(condBlk)
	c.B.SetInsertPointAtEnd(condBlk)
	cond, err := c.compileExpr(s.Condition)
	if err != nil {
		return err
	}
	c.B.CreateCondBr(cond, bodyBlk, endBlk)

	c.B.SetInsertPointAtEnd(bodyBlk)
	pop := c.pushLoopScope(condBlk, endBlk)
	err = c.compileBlock(s.Body)
	pop()
	if err != nil {
		return err
	}
	if !c.terminated() {
		c.B.CreateBr(condBlk)
	}

	c.B.SetInsertPointAtEnd(endBlk)
	return nil
}

func (c *Compiler) compileForStmt(s *ast.ForStmt) error {
	pop := c.pushScope()
	defer pop()

	if s.Init != nil {
		if err := c.compileDeclStmt(s.Init); err != nil {
			return err
		}
	}

	fn := c.CurrentFunc
	condBlk := llvm.AddBasicBlock(fn, "for.cond")
	bodyBlk := llvm.AddBasicBlock(fn, "for.body")
	stepBlk := llvm.AddBasicBlock(fn, "for.step")
	endBlk := llvm.AddBasicBlock(fn, "for.end")

	c.B.CreateBr(condBlk)
	c.B.SetInsertPointAtEnd(condBlk)
	if s.Cond != nil {
		cond, err := c.compileExpr(s.Cond)
		if err != nil {
			return err
		}
		c.B.CreateCondBr(cond, bodyBlk, endBlk)
	} else {
		c.B.CreateBr(bodyBlk)
	}

	c.B.SetInsertPointAtEnd(bodyBlk)
	popLoop := c.pushLoopScope(stepBlk, endBlk)
	err := c.compileBlock(s.Body)
	popLoop()
	if err != nil {
		return err
	}
	if !c.terminated() {
		c.B.CreateBr(stepBlk)
	}

	c.B.SetInsertPointAtEnd(stepBlk)
	if s.Step != nil {
		if err := c.compileStmt(s.Step); err != nil {
			return err
		}
	}
	if !c.terminated() {
		c.B.CreateBr(condBlk)
	}

	c.B.SetInsertPointAtEnd(endBlk)
	return nil
}

// compileForeachStmt lowers `foreach x <T> in coll { body }` to a counted
// loop over a hidden index variable bounded by `coll.length` (spec §4.3
// "Foreach desugaring", grounded on the prototype's compile_foreach).
func (c *Compiler) compileForeachStmt(s *ast.ForeachStmt) error {
	pop := c.pushScope()
	defer pop()

	collVal, err := c.compileExpr(s.Iterable)
	if err != nil {
		return err
	}
	collPtr := collVal
	if collVal.Type().TypeKind() != llvm.PointerTypeKind {
		slot := c.B.CreateAlloca(collVal.Type(), "")
		c.B.CreateStore(collVal, slot)
		collPtr = slot
	}
	dataGEP := c.B.CreateStructGEP(collPtr, 0, "")
	lenGEP := c.B.CreateStructGEP(collPtr, 1, "")
	data := c.B.CreateLoad(dataGEP, "")
	length := c.B.CreateLoad(lenGEP, "")

	i32 := c.Ctx.Int32Type()
	idxSlot := c.B.CreateAlloca(i32, "foreach.i")
	c.B.CreateStore(llvm.ConstInt(i32, 0, false), idxSlot)

	fn := c.CurrentFunc
	condBlk := llvm.AddBasicBlock(fn, "foreach.cond")
	bodyBlk := llvm.AddBasicBlock(fn, "foreach.body")
	stepBlk := llvm.AddBasicBlock(fn, "foreach.step")
	endBlk := llvm.AddBasicBlock(fn, "foreach.end")

	c.B.CreateBr(condBlk)
	c.B.SetInsertPointAtEnd(condBlk)
	idx := c.B.CreateLoad(idxSlot, "")
	cond := c.B.CreateICmp(llvm.IntULT, idx, length, "")
	c.B.CreateCondBr(cond, bodyBlk, endBlk)

	c.B.SetInsertPointAtEnd(bodyBlk)
	elemPtr := c.B.CreateGEP(data, []llvm.Value{idx}, "")
	elemVal := c.B.CreateLoad(elemPtr, "")
	elemFT := c.elementFinType(s)
	elemSlot := c.B.CreateAlloca(elemVal.Type(), s.VarName)
	c.B.CreateStore(elemVal, elemSlot)

	bodyPop := c.pushLoopScope(stepBlk, endBlk)
	c.CurrentScope.Define(s.VarName, elemSlot, elemFT)
	berr := c.compileBlock(s.Body)
	bodyPop()
	if berr != nil {
		return berr
	}
	if !c.terminated() {
		c.B.CreateBr(stepBlk)
	}

	c.B.SetInsertPointAtEnd(stepBlk)
	next := c.B.CreateAdd(c.B.CreateLoad(idxSlot, ""), llvm.ConstInt(i32, 1, false), "")
	c.B.CreateStore(next, idxSlot)
	c.B.CreateBr(condBlk)

	c.B.SetInsertPointAtEnd(endBlk)
	return nil
}

func (c *Compiler) elementFinType(s *ast.ForeachStmt) types.FinType {
	if s.VarType != nil {
		if ft, err := c.AstToFinType(s.VarType); err == nil {
			return ft
		}
	}
	collFT := c.GetArgFinType(s.Iterable, llvm.Value{})
	if collFT.Kind == types.KindStruct && len(collFT.Args) > 0 {
		return collFT.Args[0]
	}
	return types.NewPrimitive(types.Void)
}

// compileBreakStmt and compileContinueStmt branch to the nearest enclosing
// loop frame's end/cond block (spec §4.3).
func (c *Compiler) compileBreakStmt(s *ast.BreakStmt) error {
	loop := c.CurrentScope.FindLoopScope()
	if loop == nil {
		return c.Diags.Err(ErrTypeMismatch, s.Pos(), "break used outside a loop", "")
	}
	c.B.CreateBr(loop.LoopEnd)
	return nil
}

func (c *Compiler) compileContinueStmt(s *ast.ContinueStmt) error {
	loop := c.CurrentScope.FindLoopScope()
	if loop == nil {
		return c.Diags.Err(ErrTypeMismatch, s.Pos(), "continue used outside a loop", "")
	}
	c.B.CreateBr(loop.LoopCond)
	return nil
}

// compileTryStmt compiles the try body inline and never branches into the
// catch block: the runtime has no unwind/landing-pad support, so the catch
// clause exists for source compatibility and is compiled as unreachable
// dead code purely to catch its own internal errors (spec §9 open question,
// grounded on the prototype's compile_try_catch).
func (c *Compiler) compileTryStmt(s *ast.TryStmt) error {
	if err := c.compileBlock(s.Try); err != nil {
		return err
	}
	if s.Catch == nil {
		return nil
	}
	fn := c.CurrentFunc
	deadBlk := llvm.AddBasicBlock(fn, "catch.dead")
	savedBlock := c.B.GetInsertBlock()
	wasTerminated := c.terminated()

	c.B.SetInsertPointAtEnd(deadBlk)
	pop := c.pushScope()
	if s.CatchName != "" {
		i8ptr := c.i8ptr()
		slot := c.B.CreateAlloca(i8ptr, s.CatchName)
		c.CurrentScope.Define(s.CatchName, slot, types.NewPointer(types.NewPrimitive(types.Char)))
	}
	err := c.compileBlock(s.Catch)
	pop()
	if err != nil {
		return err
	}
	if !c.terminated() {
		c.B.CreateUnreachable()
	}

	if !wasTerminated {
		c.B.SetInsertPointAtEnd(savedBlock)
	}
	deadBlk.EraseFromParent()
	return nil
}

// compileBlameStmt implements `blame expr;`: evaluates expr, extracts an
// `error_msg` string field when the value carries one, and panics (spec §3
// "blame", grounded on the prototype's compile_blame).
func (c *Compiler) compileBlameStmt(s *ast.BlameStmt) error {
	val, err := c.compileExpr(s.Value)
	if err != nil {
		return err
	}
	ft := c.GetArgFinType(s.Value, val)
	structName := ft.StructName
	if ft.Kind == types.KindPointer {
		structName = ft.Pointee.StructName
	}
	if si, ok := c.structs[structName]; ok {
		if idx, ok := si.fieldIndex["error_msg"]; ok {
			ptr := val
			if val.Type().TypeKind() != llvm.PointerTypeKind {
				slot := c.B.CreateAlloca(val.Type(), "")
				c.B.CreateStore(val, slot)
				ptr = slot
			}
			gep := c.B.CreateStructGEP(ptr, idx, "")
			msg := c.B.CreateLoad(gep, "")
			c.B.CreateCall(c.funcs["__panic"], []llvm.Value{msg}, "")
			c.B.CreateUnreachable()
			return nil
		}
	}
	if ft.Kind == types.KindPrimitive && ft.Primitive == types.String {
		c.B.CreateCall(c.funcs["__panic"], []llvm.Value{val}, "")
		c.B.CreateUnreachable()
		return nil
	}
	c.emitPanic("blamed value carries no error_msg")
	return nil
}
