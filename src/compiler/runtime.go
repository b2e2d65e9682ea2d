package compiler

import (
	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
)

// declareRuntime forward-declares the small set of C runtime functions every
// compiled module links against: allocation for boxing/`new`, and the panic
// path for the safety checks in spec §4.7.
func (c *Compiler) declareRuntime() {
	voidPtr := c.i8ptr()
	i64 := c.Ctx.Int64Type()

	mallocTy := llvm.FunctionType(voidPtr, []llvm.Type{i64}, false)
	mallocFn := llvm.AddFunction(c.Mod, "malloc", mallocTy)
	c.funcs["malloc"] = mallocFn
	c.externs["malloc"] = struct{}{}

	freeTy := llvm.FunctionType(c.Ctx.VoidType(), []llvm.Type{voidPtr}, false)
	freeFn := llvm.AddFunction(c.Mod, "free", freeTy)
	c.funcs["free"] = freeFn
	c.externs["free"] = struct{}{}

	panicTy := llvm.FunctionType(c.Ctx.VoidType(), []llvm.Type{voidPtr}, false)
	panicFn := llvm.AddFunction(c.Mod, "__panic", panicTy)
	c.funcs["__panic"] = panicFn
	c.externs["__panic"] = struct{}{}

	exitTy := llvm.FunctionType(c.Ctx.VoidType(), []llvm.Type{c.Ctx.Int32Type()}, false)
	exitFn := llvm.AddFunction(c.Mod, "exit", exitTy)
	c.funcs["exit"] = exitFn
	c.externs["exit"] = struct{}{}
}

// malloc emits a call to the runtime allocator for n bytes.
func (c *Compiler) malloc(n llvm.Value) llvm.Value {
	return c.B.CreateCall(c.funcs["malloc"], []llvm.Value{n}, "")
}

// internString interns a string literal as a global constant and returns a
// pointer to its first byte, memoized by literal text.
func (c *Compiler) internString(s string) llvm.Value {
	if v, ok := c.strings[s]; ok {
		return v
	}
	g := llvm.AddGlobal(c.Mod, llvm.ArrayType(c.Ctx.Int8Type(), len(s)+1), ".str")
	g.SetInitializer(c.Ctx.ConstString(s, true))
	g.SetLinkage(llvm.PrivateLinkage)
	g.SetGlobalConstant(true)
	zero := llvm.ConstInt(c.Ctx.Int32Type(), 0, false)
	ptr := c.B.CreateGEP(g, []llvm.Value{zero, zero}, "")
	c.strings[s] = ptr
	return ptr
}

// emitPanic calls __panic(message) and terminates the block with
// unreachable, per spec §4.7's runtime-safety checks and `blame`.
func (c *Compiler) emitPanic(message string) {
	msgPtr := c.internString(message)
	c.B.CreateCall(c.funcs["__panic"], []llvm.Value{msgPtr}, "")
	c.B.CreateUnreachable()
}

// checkDivisorNonZero emits the division/modulo zero-check of spec §4.7: a
// static check when divisor is a compile-time constant, otherwise a runtime
// branch into a panic block.
func (c *Compiler) checkDivisorNonZero(divisor llvm.Value, isFloat bool, message string) error {
	if divisor.IsConstant() {
		var isZero bool
		if isFloat {
			isZero = divisor.ConstFloatDouble() == 0
		} else {
			isZero = divisor.SExtValue() == 0
		}
		if isZero {
			return c.Diags.Err(ErrTypeMismatch, ast.Position{}, message, "divisor is a constant zero")
		}
		return nil
	}

	fn := c.CurrentFunc
	panicBlk := llvm.AddBasicBlock(fn, "div.panic")
	contBlk := llvm.AddBasicBlock(fn, "div.cont")

	var isZero llvm.Value
	if isFloat {
		zero := llvm.ConstFloat(divisor.Type(), 0)
		isZero = c.B.CreateFCmp(llvm.FloatOEQ, divisor, zero, "")
	} else {
		zero := llvm.ConstInt(divisor.Type(), 0, false)
		isZero = c.B.CreateICmp(llvm.IntEQ, divisor, zero, "")
	}
	c.B.CreateCondBr(isZero, panicBlk, contBlk)

	c.B.SetInsertPointAtEnd(panicBlk)
	c.emitPanic(message)

	c.B.SetInsertPointAtEnd(contBlk)
	return nil
}

// checkNotNull emits a compare-to-null guard before a pointer dereference,
// per spec §4.7's null-dereference invariant.
func (c *Compiler) checkNotNull(ptr llvm.Value, message string) {
	fn := c.CurrentFunc
	nullBlk := llvm.AddBasicBlock(fn, "null.panic")
	contBlk := llvm.AddBasicBlock(fn, "null.cont")

	isNull := c.B.CreateIsNull(ptr, "")
	c.B.CreateCondBr(isNull, nullBlk, contBlk)

	c.B.SetInsertPointAtEnd(nullBlk)
	c.emitPanic(message)

	c.B.SetInsertPointAtEnd(contBlk)
}

// checkBounds emits `index < length` (unsigned) with a panic on failure, per
// spec §4.7's array-bounds invariant for collections.
func (c *Compiler) checkBounds(index, length llvm.Value, message string) {
	fn := c.CurrentFunc
	okBlk := llvm.AddBasicBlock(fn, "bounds.ok")
	panicBlk := llvm.AddBasicBlock(fn, "bounds.panic")

	inBounds := c.B.CreateICmp(llvm.IntULT, index, length, "")
	c.B.CreateCondBr(inBounds, okBlk, panicBlk)

	c.B.SetInsertPointAtEnd(panicBlk)
	c.emitPanic(message)

	c.B.SetInsertPointAtEnd(okBlk)
}
