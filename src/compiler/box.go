package compiler

import (
	"fmt"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// sizeOf computes sizeof(t) via the standard gep-of-null idiom: index one
// past a null pointer of the type and ptrtoint the result, per spec §4.7's
// boxing-size note ("computed from the ABI layout object when available,
// otherwise via the standard gep-of-null idiom" — go-llvm exposes no ABI
// size query, so this is always the path taken here).
func (c *Compiler) sizeOf(t llvm.Type) llvm.Value {
	null := llvm.ConstNull(llvm.PointerType(t, 0))
	one := llvm.ConstInt(c.Ctx.Int32Type(), 1, false)
	gep := llvm.ConstGEP(null, []llvm.Value{one})
	return llvm.ConstPtrToInt(gep, c.Ctx.Int64Type())
}

// boxValue converts a concrete value to ptr-to-byte per spec §4.7's boxing
// protocol: value types (primitives other than string, plus structs and
// collections) are heap-allocated and stored through; strings and pointers
// are already byte-pointer-shaped and only need a bitcast.
func (c *Compiler) boxValue(val llvm.Value, ft types.FinType) llvm.Value {
	if !ft.IsValueType() {
		return c.B.CreateBitCast(val, c.i8ptr(), "")
	}
	llt := val.Type()
	raw := c.malloc(c.sizeOf(llt))
	typed := c.B.CreateBitCast(raw, llvm.PointerType(llt, 0), "")
	c.B.CreateStore(val, typed)
	return raw
}

// unboxValue is the dual of boxValue: for value types, bitcast then load;
// for references, a plain bitcast.
func (c *Compiler) unboxValue(ptr llvm.Value, ft types.FinType) (llvm.Value, error) {
	llt, err := c.FinTypeToLLVM(ft)
	if err != nil {
		return llvm.Value{}, err
	}
	if !ft.IsValueType() {
		return c.B.CreateBitCast(ptr, llt, ""), nil
	}
	typed := c.B.CreateBitCast(ptr, llvm.PointerType(llt, 0), "")
	return c.B.CreateLoad(typed, ""), nil
}

// packAny builds the two-field {data, type_id} Any struct (spec §4.7 "The
// Any type"): box the value, attach its static FinType's type ID.
func (c *Compiler) packAny(val llvm.Value, ft types.FinType) llvm.Value {
	boxed := c.boxValue(val, ft)
	tid := llvm.ConstInt(c.Ctx.Int64Type(), ft.TypeID(), false)
	result := llvm.ConstNull(c.anyStructType())
	result = c.B.CreateInsertValue(result, boxed, 0, "")
	result = c.B.CreateInsertValue(result, tid, 1, "")
	return result
}

// unpackAnyData extracts the boxed data pointer (field 0) from a compiled
// Any struct value.
func (c *Compiler) unpackAnyData(anyVal llvm.Value) llvm.Value {
	return c.B.CreateExtractValue(anyVal, 0, "")
}

// unpackAnyTypeID extracts the runtime type_id field (field 1) from a
// compiled Any struct value.
func (c *Compiler) unpackAnyTypeID(anyVal llvm.Value) llvm.Value {
	return c.B.CreateExtractValue(anyVal, 1, "")
}

// isAnyShaped reports whether t is structurally {i8*, i64}, the Any layout.
func (c *Compiler) isAnyShaped(t llvm.Type) bool {
	if t.TypeKind() != llvm.StructTypeKind {
		return false
	}
	elems := t.StructElementTypes()
	if len(elems) != 2 {
		return false
	}
	return elems[0].TypeKind() == llvm.PointerTypeKind && elems[1].TypeKind() == llvm.IntegerTypeKind && elems[1].IntTypeWidth() == 64
}

// isInterfaceShaped reports whether t is structurally {i8*, i8*}, the
// interface fat-pointer layout.
func (c *Compiler) isInterfaceShaped(t llvm.Type) bool {
	if t.TypeKind() != llvm.StructTypeKind {
		return false
	}
	elems := t.StructElementTypes()
	if len(elems) != 2 {
		return false
	}
	return elems[0].TypeKind() == llvm.PointerTypeKind && elems[1].TypeKind() == llvm.PointerTypeKind
}

// packInterface builds the fat pointer {data, vtable} for passing a
// concrete struct value where interfaceName is expected (spec §4.5
// "Interface packing"). val may be a struct value or a pointer to one; a
// bare value is spilled to a fresh stack slot to obtain an address.
func (c *Compiler) packInterface(val llvm.Value, concreteName, interfaceName string) llvm.Value {
	ptr := val
	if val.Type().TypeKind() != llvm.PointerTypeKind {
		slot := c.B.CreateAlloca(val.Type(), "")
		c.B.CreateStore(val, slot)
		ptr = slot
	}
	data := c.B.CreateBitCast(ptr, c.i8ptr(), "")
	vt := c.buildVtable(concreteName, interfaceName)
	vtPtr := c.B.CreateBitCast(vt, c.i8ptr(), "")

	result := llvm.ConstNull(c.Ctx.StructType([]llvm.Type{c.i8ptr(), c.i8ptr()}, false))
	result = c.B.CreateInsertValue(result, data, 0, "")
	result = c.B.CreateInsertValue(result, vtPtr, 1, "")
	return result
}

// isParentOf reports whether parentMangled appears anywhere in the
// (possibly transitive) parent chain of childMangled, by unmangled short
// name comparison: spec §4.7's std_conv upcast rule compares struct names
// "where the target is a declared parent in the inheritance registry".
func (c *Compiler) isParentOf(childMangled, parentMangled string) bool {
	si, ok := c.structs[childMangled]
	if !ok {
		return false
	}
	parentShort := lastSegment(parentMangled, "__")
	for _, p := range si.parents {
		if lastSegment(p, "__") == parentShort {
			return true
		}
		if c.isParentOf(p, parentMangled) {
			return true
		}
	}
	return false
}

// CompileTypeConv is std_conv<Target>(expr) (spec §4.7's conversion
// matrix). It operates on already-compiled llvm.Values, unlike ConvertType
// which works purely at the type level.
func (c *Compiler) CompileTypeConv(target ast.TypeExpr, operand ast.Expr) (llvm.Value, error) {
	val, err := c.compileExpr(operand)
	if err != nil {
		return llvm.Value{}, err
	}
	targetLLVM, err := c.ConvertType(target)
	if err != nil {
		return llvm.Value{}, err
	}
	srcFT := c.GetArgFinType(operand, val)
	srcLLVM := val.Type()

	// Identical types: identity.
	if typesEqual(srcLLVM, targetLLVM) {
		return val, nil
	}

	// ptr-to-byte -> anything: unbox.
	if srcLLVM.TypeKind() == llvm.PointerTypeKind && srcLLVM.ElementType().TypeKind() == llvm.IntegerTypeKind &&
		srcLLVM.ElementType().IntTypeWidth() == 8 && targetLLVM.TypeKind() != llvm.IntegerTypeKind {
		targetFT, ferr := c.AstToFinType(target)
		if ferr == nil {
			if unboxed, uerr := c.unboxValue(val, targetFT); uerr == nil {
				return unboxed, nil
			}
		}
		return c.B.CreateBitCast(val, targetLLVM, ""), nil
	}

	// anything -> ptr-to-byte: box.
	if targetLLVM.TypeKind() == llvm.PointerTypeKind && targetLLVM.ElementType().TypeKind() == llvm.IntegerTypeKind &&
		targetLLVM.ElementType().IntTypeWidth() == 8 {
		if srcFT.Kind == types.KindPrimitive && srcFT.Primitive == "" {
			srcFT = c.inferFinTypeFromLLVM(srcLLVM)
		}
		return c.boxValue(val, srcFT), nil
	}

	// struct pointer -> struct pointer, target is a declared parent: upcast.
	if srcLLVM.TypeKind() == llvm.PointerTypeKind && targetLLVM.TypeKind() == llvm.PointerTypeKind {
		if srcFT.Kind == types.KindStruct || (srcFT.Kind == types.KindPointer && srcFT.Pointee.Kind == types.KindStruct) {
			childName := srcFT.StructName
			if srcFT.Kind == types.KindPointer {
				childName = srcFT.Pointee.StructName
			}
			if targetFT, ferr := c.AstToFinType(target); ferr == nil {
				parentName := targetFT.StructName
				if targetFT.Kind == types.KindPointer {
					parentName = targetFT.Pointee.StructName
				}
				if c.isParentOf(childName, parentName) {
					return c.B.CreateBitCast(val, targetLLVM, ""), nil
				}
			}
		}
	}

	// pointer -> collection-shaped literal struct: build {ptr, 0}.
	if targetLLVM.TypeKind() == llvm.StructTypeKind && srcLLVM.TypeKind() == llvm.PointerTypeKind {
		elems := targetLLVM.StructElementTypes()
		if len(elems) == 2 && elems[0].TypeKind() == llvm.PointerTypeKind && elems[1].TypeKind() == llvm.IntegerTypeKind {
			dataPtr := c.B.CreateBitCast(val, elems[0], "")
			result := llvm.ConstNull(targetLLVM)
			result = c.B.CreateInsertValue(result, dataPtr, 0, "")
			result = c.B.CreateInsertValue(result, llvm.ConstInt(elems[1], 0, false), 1, "")
			return result, nil
		}
	}

	// integer <-> integer.
	if srcLLVM.TypeKind() == llvm.IntegerTypeKind && targetLLVM.TypeKind() == llvm.IntegerTypeKind {
		if targetLLVM.IntTypeWidth() > srcLLVM.IntTypeWidth() {
			return c.B.CreateSExt(val, targetLLVM, ""), nil
		}
		if targetLLVM.IntTypeWidth() < srcLLVM.IntTypeWidth() {
			return c.B.CreateTrunc(val, targetLLVM, ""), nil
		}
		return val, nil
	}

	// integer <-> float.
	if srcLLVM.TypeKind() == llvm.IntegerTypeKind && isFloatKind(targetLLVM) {
		return c.B.CreateSIToFP(val, targetLLVM, ""), nil
	}
	if isFloatKind(srcLLVM) && targetLLVM.TypeKind() == llvm.IntegerTypeKind {
		return c.B.CreateFPToSI(val, targetLLVM, ""), nil
	}

	// float <-> float.
	if isFloatKind(srcLLVM) && isFloatKind(targetLLVM) {
		if targetLLVM.TypeKind() == llvm.DoubleTypeKind && srcLLVM.TypeKind() == llvm.FloatTypeKind {
			return c.B.CreateFPExt(val, targetLLVM, ""), nil
		}
		if targetLLVM.TypeKind() == llvm.FloatTypeKind && srcLLVM.TypeKind() == llvm.DoubleTypeKind {
			return c.B.CreateFPTrunc(val, targetLLVM, ""), nil
		}
		return val, nil
	}

	// integer <-> pointer.
	if srcLLVM.TypeKind() == llvm.IntegerTypeKind && targetLLVM.TypeKind() == llvm.PointerTypeKind {
		return c.B.CreateIntToPtr(val, targetLLVM, ""), nil
	}
	if srcLLVM.TypeKind() == llvm.PointerTypeKind && targetLLVM.TypeKind() == llvm.IntegerTypeKind {
		return c.B.CreatePtrToInt(val, targetLLVM, ""), nil
	}

	// pointer <-> pointer fallback.
	if srcLLVM.TypeKind() == llvm.PointerTypeKind && targetLLVM.TypeKind() == llvm.PointerTypeKind {
		return c.B.CreateBitCast(val, targetLLVM, ""), nil
	}

	return llvm.Value{}, c.Diags.Err(ErrTypeMismatch, operand.Pos(),
		fmt.Sprintf("no std_conv path from %s to %s", srcLLVM.String(), targetLLVM.String()), "")
}

// CompileTypeof is typeof(expr) (spec §4.7 "The Any type"). On an `any`
// variable, it loads the runtime type_id field; on any other expression, it
// returns the compile-time type ID of the inferred FinType.
func (c *Compiler) CompileTypeof(operand ast.Expr) (llvm.Value, error) {
	i64 := c.Ctx.Int64Type()

	if ident, ok := operand.(*ast.Ident); ok {
		if v, ft, ok := c.CurrentScope.Resolve(ident.Name); ok {
			if ft.Kind == types.KindAny {
				loaded := v
				if v.Type().TypeKind() == llvm.PointerTypeKind && v.Type().ElementType().TypeKind() == llvm.StructTypeKind {
					loaded = c.B.CreateLoad(v, "")
				}
				return c.unpackAnyTypeID(loaded), nil
			}
			return llvm.ConstInt(i64, ft.TypeID(), false), nil
		}
	}

	val, err := c.compileExpr(operand)
	if err != nil {
		return llvm.Value{}, err
	}
	ft := c.GetArgFinType(operand, val)
	if c.isAnyShaped(val.Type()) {
		return c.unpackAnyTypeID(val), nil
	}
	return llvm.ConstInt(i64, ft.TypeID(), false), nil
}

func typesEqual(a, b llvm.Type) bool { return a.String() == b.String() }

func isFloatKind(t llvm.Type) bool {
	return t.TypeKind() == llvm.FloatTypeKind || t.TypeKind() == llvm.DoubleTypeKind
}
