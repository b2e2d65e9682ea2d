package compiler

import (
	"fmt"
	"strings"

	"tinygo.org/x/go-llvm"

	"github.com/M1778/fin/src/ast"
	"github.com/M1778/fin/src/types"
)

// i8ptr is the erased-generic / raw-byte-pointer type used throughout
// boxing, erasure, and the fallback conversion paths.
func (c *Compiler) i8ptr() llvm.Type { return llvm.PointerType(c.Ctx.Int8Type(), 0) }

// anyStructType returns the two-field runtime-tagged box {i8*, i64}
// (spec §4.7 "The Any type").
func (c *Compiler) anyStructType() llvm.Type {
	return c.Ctx.StructType([]llvm.Type{c.i8ptr(), c.Ctx.Int64Type()}, false)
}

// primitiveLLVM maps a primitive FinType name directly to its LLVM type.
func (c *Compiler) primitiveLLVM(name string) (llvm.Type, bool) {
	switch name {
	case types.Int:
		return c.Ctx.Int32Type(), true
	case types.Long:
		return c.Ctx.Int64Type(), true
	case types.Float:
		return c.Ctx.FloatType(), true
	case types.Double:
		return c.Ctx.DoubleType(), true
	case types.Bool:
		return c.Ctx.Int1Type(), true
	case types.Char:
		return c.Ctx.Int8Type(), true
	case types.String:
		return c.i8ptr(), true
	case types.Void:
		return c.Ctx.VoidType(), true
	}
	return llvm.Type{}, false
}

// ConvertType is convert_type (spec §4.2): the AST-type-node to LLVM-type
// entry point used wherever an instruction needs a concrete LLVM type.
func (c *Compiler) ConvertType(t ast.TypeExpr) (llvm.Type, error) {
	switch n := t.(type) {
	case nil:
		return c.Ctx.VoidType(), nil

	case *ast.NamedTypeExpr:
		return c.convertNamedType(n)

	case *ast.GenericInstanceTypeExpr:
		return c.convertGenericInstance(n)

	case *ast.PointerTypeExpr:
		elem, err := c.ConvertType(n.Elem)
		if err != nil {
			return llvm.Type{}, err
		}
		return llvm.PointerType(elem, 0), nil

	case *ast.ArrayTypeExpr:
		elem, err := c.ConvertType(n.Elem)
		if err != nil {
			return llvm.Type{}, err
		}
		if n.Size != nil {
			lit, ok := n.Size.(*ast.IntLit)
			if !ok {
				return llvm.Type{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "array size must be a constant integer literal", "")
			}
			size := parseIntLit(lit.Text)
			return llvm.ArrayType(elem, int(size)), nil
		}
		// Dynamic Collection<T>: { T*, i32 } slice.
		return c.Ctx.StructType([]llvm.Type{llvm.PointerType(elem, 0), c.Ctx.Int32Type()}, false), nil

	case *ast.FunctionTypeExpr:
		ret, err := c.ConvertType(n.Return)
		if err != nil {
			return llvm.Type{}, err
		}
		params := make([]llvm.Type, len(n.Params))
		for i, p := range n.Params {
			pt, err := c.ConvertType(p)
			if err != nil {
				return llvm.Type{}, err
			}
			params[i] = pt
		}
		return llvm.PointerType(llvm.FunctionType(ret, params, false), 0), nil

	case *ast.ModuleQualifiedTypeExpr:
		mi, ok := c.loader.ResolveAlias(n.Alias)
		if !ok {
			return llvm.Type{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("module %q not imported", n.Alias), "")
		}
		mangled := n.Alias + "$" + n.Name
		if si, ok := c.structs[mi.path+"::"+n.Name]; ok {
			return si.llvmType, nil
		}
		_ = mangled
		return llvm.Type{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("module %q has no type %q", n.Alias, n.Name), "")

	default:
		return llvm.Type{}, c.Diags.Err(ErrTypeMismatch, t.Pos(), "unknown type node", "")
	}
}

func (c *Compiler) convertNamedType(n *ast.NamedTypeExpr) (llvm.Type, error) {
	name := n.Name

	// 1. Generic parameters (type erasure), per the current scope.
	if c.CurrentScope.IsTypeParameter(name) {
		constraint := c.CurrentScope.TypeConstraint(name)
		if constraint == ast.MarkerAny {
			return c.anyStructType(), nil
		}
		return c.i8ptr(), nil
	}

	// 2. Primitives.
	if llt, ok := c.primitiveLLVM(name); ok {
		return llt, nil
	}

	// 3. Self inside a method body.
	if name == "Self" {
		if c.currentStructName != "" {
			if si, ok := c.structs[c.currentStructName]; ok {
				return si.llvmType, nil
			}
		}
		return llvm.Type{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "'Self' used outside a struct definition", "")
	}

	// 4. Any, by convention the builtin fat box.
	if name = resolveAnyAlias(name); name == "any" {
		return c.anyStructType(), nil
	}

	// 5. Enums.
	if _, ok := c.enums[name]; ok {
		return c.Ctx.Int32Type(), nil
	}
	mangledEnum := c.Mangle(c.CurrentFile, name)
	if _, ok := c.enums[mangledEnum]; ok {
		return c.Ctx.Int32Type(), nil
	}

	// 6. Type aliases from imports.
	if target := c.CurrentScope.ResolveType(name); target != name {
		if si, ok := c.structs[target]; ok {
			return si.llvmType, nil
		}
	}

	// 7. Local mangled name.
	mangled := c.Mangle(c.CurrentFile, name)
	if si, ok := c.structs[mangled]; ok {
		return si.llvmType, nil
	}

	// 8. Global/unmangled fallback.
	if si, ok := c.structs[name]; ok {
		return si.llvmType, nil
	}

	// 9. Un-instantiated template: a usage error, needs type arguments.
	if _, ok := c.structTemplates[name]; ok {
		return llvm.Type{}, c.Diags.Err(ErrTypeMismatch, n.Pos(),
			fmt.Sprintf("generic struct %q requires type arguments", name),
			fmt.Sprintf("write %s<...>", name))
	}

	return llvm.Type{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("unknown type %q", name), "")
}

func resolveAnyAlias(name string) string {
	if name == "Any" {
		return "any"
	}
	return name
}

// convertGenericInstance handles `Base<Args>` (spec §4.5 MONO/ERASED split).
func (c *Compiler) convertGenericInstance(n *ast.GenericInstanceTypeExpr) (llvm.Type, error) {
	base, ok := n.Base.(*ast.NamedTypeExpr)
	if !ok {
		return llvm.Type{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "generic base must be a named type", "")
	}
	baseName := base.Name

	if alias := c.CurrentScope.ResolveType(baseName); alias != baseName {
		if si, ok := c.structs[alias]; ok {
			return si.llvmType, nil
		}
	}

	c.mu.Lock()
	tmpl, isTemplate := c.structTemplates[baseName]
	c.mu.Unlock()

	if !isTemplate {
		mangled := c.Mangle(c.CurrentFile, baseName)
		if si, ok := c.structs[mangled]; ok {
			return si.llvmType, nil
		}
		return llvm.Type{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("struct %q not defined", baseName), "")
	}

	mode := classifyMode(tmpl)
	if mode == ModeErased {
		mangled := c.Mangle(c.CurrentFile, baseName)
		if si, ok := c.structs[mangled]; ok {
			return si.llvmType, nil
		}
		return llvm.Type{}, c.Diags.Err(ErrUnresolvedSymbol, n.Pos(), fmt.Sprintf("erased struct %q not compiled", baseName), "")
	}

	// MONO: clone the template, substitute, compile, memoize.
	instName := c.monoMangledName(baseName, n.Args)
	c.mu.Lock()
	if cached, ok := c.monoStructCache[instName]; ok {
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	bindings := make(map[string]ast.TypeExpr, len(tmpl.TypeParams))
	for i, p := range tmpl.TypeParams {
		if i < len(n.Args) {
			bindings[p.Name] = n.Args[i]
		}
	}
	concrete := ast.Substitute(tmpl, bindings).(*ast.StructDecl)
	concrete.Name = instName
	concrete.TypeParams = nil

	if err := c.compileStruct(concrete); err != nil {
		return llvm.Type{}, err
	}
	mangledInst := c.Mangle(c.CurrentFile, instName)
	si := c.structs[mangledInst]
	c.mu.Lock()
	c.monoStructCache[instName] = si.llvmType
	c.mu.Unlock()
	return si.llvmType, nil
}

// monoMangledName builds "<Base>_<arg-sig>_<arg-sig>" for a MONO
// instantiation key, per spec §4.5.
func (c *Compiler) monoMangledName(base string, args []ast.TypeExpr) string {
	parts := make([]string, len(args))
	for i, a := range args {
		ft, err := c.AstToFinType(a)
		if err != nil {
			parts[i] = "unknown"
			continue
		}
		parts[i] = sanitizeSignature(ft.Signature())
	}
	return base + "_" + strings.Join(parts, "_")
}

func sanitizeSignature(sig string) string {
	r := strings.NewReplacer("*", "p", "<", "_", ">", "_", ",", "_", " ", "")
	return r.Replace(sig)
}

// classifyMode implements classify_mode (spec §4.5/§4.6).
func classifyMode(decl interface{}) Mode {
	var typeParams []*ast.GenericParam
	switch n := decl.(type) {
	case *ast.StructDecl:
		typeParams = n.TypeParams
	case *ast.FuncDecl:
		typeParams = n.TypeParams
	}
	if len(typeParams) == 0 {
		return ModeStandard
	}
	for _, p := range typeParams {
		if named, ok := p.Constraint.(*ast.NamedTypeExpr); ok && ast.IsErasureMarker(named.Name) {
			return ModeErased
		}
	}
	return ModeMono
}

// AstToFinType is ast_to_fin_type (spec §4.2): AST type node to semantic
// FinType, preserving generic arguments symbolically and preferring mangled
// names so equality holds across modules.
func (c *Compiler) AstToFinType(t ast.TypeExpr) (types.FinType, error) {
	switch n := t.(type) {
	case nil:
		return types.NewPrimitive(types.Void), nil

	case *ast.NamedTypeExpr:
		name := n.Name
		if c.CurrentScope.IsTypeParameter(name) {
			return types.NewGenericParam(name), nil
		}
		if _, ok := c.primitiveLLVM(name); ok {
			return types.NewPrimitive(name), nil
		}
		if name == "Self" {
			return types.NewStruct(c.currentStructName, nil), nil
		}
		if alias := c.CurrentScope.ResolveType(name); alias != name {
			return types.NewStruct(alias, nil), nil
		}
		mangled := c.Mangle(c.CurrentFile, name)
		if _, ok := c.structs[mangled]; ok {
			return types.NewStruct(mangled, nil), nil
		}
		return types.NewStruct(name, nil), nil

	case *ast.GenericInstanceTypeExpr:
		base, ok := n.Base.(*ast.NamedTypeExpr)
		if !ok {
			return types.FinType{}, c.Diags.Err(ErrTypeMismatch, n.Pos(), "generic base must be named", "")
		}
		real := base.Name
		if alias := c.CurrentScope.ResolveType(real); alias != real {
			real = alias
		} else if mangled := c.Mangle(c.CurrentFile, real); func() bool { _, ok := c.structs[mangled]; return ok }() {
			real = c.Mangle(c.CurrentFile, real)
		}
		args := make([]types.FinType, len(n.Args))
		for i, a := range n.Args {
			ft, err := c.AstToFinType(a)
			if err != nil {
				return types.FinType{}, err
			}
			args[i] = ft
		}
		return types.NewStruct(real, args), nil

	case *ast.PointerTypeExpr:
		pointee, err := c.AstToFinType(n.Elem)
		if err != nil {
			return types.FinType{}, err
		}
		return types.NewPointer(pointee), nil

	case *ast.ArrayTypeExpr:
		elem, err := c.AstToFinType(n.Elem)
		if err != nil {
			return types.FinType{}, err
		}
		if n.Size != nil {
			return types.NewStruct("StaticArray", []types.FinType{elem}), nil
		}
		return types.NewStruct("Collection", []types.FinType{elem}), nil

	case *ast.ModuleQualifiedTypeExpr:
		return types.NewStruct(n.Alias+"."+n.Name, nil), nil

	default:
		return types.FinType{}, c.Diags.Err(ErrTypeMismatch, t.Pos(), "unknown type node", "")
	}
}

// FinTypeToLLVM is fin_type_to_llvm (spec §4.2): inverse conversion used
// when semantic types must be re-lowered (inferred function signatures,
// boxing size computation).
func (c *Compiler) FinTypeToLLVM(ft types.FinType) (llvm.Type, error) {
	switch ft.Kind {
	case types.KindPrimitive:
		if llt, ok := c.primitiveLLVM(ft.Primitive); ok {
			return llt, nil
		}
		return llvm.Type{}, fmt.Errorf("unknown primitive %q", ft.Primitive)

	case types.KindPointer:
		pointee, err := c.FinTypeToLLVM(*ft.Pointee)
		if err != nil {
			return llvm.Type{}, err
		}
		return llvm.PointerType(pointee, 0), nil

	case types.KindAny:
		return c.anyStructType(), nil

	case types.KindGenericParam:
		return c.i8ptr(), nil

	case types.KindStruct:
		if ft.StructName == "Collection" {
			var elem llvm.Type
			if len(ft.Args) == 0 {
				elem = c.i8ptr()
			} else if ft.Args[0].Kind == types.KindGenericParam {
				elem = c.i8ptr()
			} else {
				var err error
				elem, err = c.FinTypeToLLVM(ft.Args[0])
				if err != nil {
					return llvm.Type{}, err
				}
			}
			return c.Ctx.StructType([]llvm.Type{llvm.PointerType(elem, 0), c.Ctx.Int32Type()}, false), nil
		}
		if si, ok := c.structs[ft.StructName]; ok {
			return si.llvmType, nil
		}
		mangled := c.Mangle(c.CurrentFile, ft.StructName)
		if si, ok := c.structs[mangled]; ok {
			return si.llvmType, nil
		}
		if alias := c.CurrentScope.ResolveType(ft.StructName); alias != ft.StructName {
			if si, ok := c.structs[alias]; ok {
				return si.llvmType, nil
			}
		}
		if _, ok := c.enums[ft.StructName]; ok {
			return c.Ctx.Int32Type(), nil
		}
		return llvm.Type{}, fmt.Errorf("struct or interface %q not found during LLVM conversion", ft.StructName)
	}
	return llvm.Type{}, fmt.Errorf("unknown FinType kind %v", ft.Kind)
}

// MatchGenericTypes is match_generic_types (spec §4.2): unifies a concrete
// FinType against a generic pattern, filling bindings with consistency
// checking.
func MatchGenericTypes(concrete, pattern types.FinType, bindings map[string]types.FinType) bool {
	if pattern.Kind == types.KindGenericParam {
		if existing, ok := bindings[pattern.ParamName]; ok {
			return existing.Equal(concrete)
		}
		bindings[pattern.ParamName] = concrete
		return true
	}
	if concrete.Kind == types.KindPointer && pattern.Kind == types.KindPointer {
		return MatchGenericTypes(*concrete.Pointee, *pattern.Pointee, bindings)
	}
	if concrete.Kind == types.KindStruct && pattern.Kind == types.KindStruct {
		cClean := lastSegment(concrete.StructName, "__")
		gClean := lastSegment(pattern.StructName, "__")
		if cClean != gClean {
			return false
		}
		if len(concrete.Args) != len(pattern.Args) {
			return false
		}
		for i := range concrete.Args {
			if !MatchGenericTypes(concrete.Args[i], pattern.Args[i], bindings) {
				return false
			}
		}
		return true
	}
	if concrete.Kind == types.KindPrimitive && pattern.Kind == types.KindPrimitive {
		return concrete.Primitive == pattern.Primitive
	}
	return false
}

func lastSegment(s, sep string) string {
	idx := strings.LastIndex(s, sep)
	if idx < 0 {
		return s
	}
	return s[idx+len(sep):]
}

// GetArgFinType is get_arg_fin_type (spec §4.2): infers the best FinType for
// a call argument expression, for template type-argument inference.
func (c *Compiler) GetArgFinType(e ast.Expr, compiled llvm.Value) types.FinType {
	switch n := e.(type) {
	case *ast.Ident:
		if _, ft, ok := c.CurrentScope.Resolve(n.Name); ok {
			return ft
		}

	case *ast.AddressOfExpr:
		inner := c.GetArgFinType(n.Operand, llvm.Value{})
		return types.NewPointer(inner)

	case *ast.MemberExpr:
		objType := c.GetArgFinType(n.Target, llvm.Value{})
		if objType.Kind == types.KindPointer {
			objType = *objType.Pointee
		}
		if objType.Kind == types.KindStruct {
			if si, ok := c.structs[objType.StructName]; ok {
				if fieldTypeAST, ok := si.fieldType[n.Member]; ok {
					fieldFT, err := c.AstToFinType(fieldTypeAST)
					if err == nil {
						if fieldFT.Kind == types.KindGenericParam {
							for i, pname := range si.genericParams {
								if pname == fieldFT.ParamName && i < len(objType.Args) {
									return objType.Args[i]
								}
							}
						}
						return fieldFT
					}
				}
			}
		}

	case *ast.IndexExpr:
		arrType := c.GetArgFinType(n.Target, llvm.Value{})
		if arrType.Kind == types.KindPointer {
			arrType = *arrType.Pointee
		}
		if arrType.Kind == types.KindStruct && arrType.StructName == "Collection" && len(arrType.Args) > 0 {
			return arrType.Args[0]
		}

	case *ast.IntLit:
		if n.Long {
			return types.NewPrimitive(types.Long)
		}
		return types.NewPrimitive(types.Int)
	case *ast.FloatLit:
		if n.Double {
			return types.NewPrimitive(types.Double)
		}
		return types.NewPrimitive(types.Float)
	case *ast.BoolLit:
		return types.NewPrimitive(types.Bool)
	case *ast.StringLit:
		return types.NewPrimitive(types.String)
	case *ast.CharLit:
		return types.NewPrimitive(types.Char)

	case *ast.ArrayLiteralExpr:
		if len(n.Elements) > 0 {
			elem := c.GetArgFinType(n.Elements[0], llvm.Value{})
			return types.NewStruct("Collection", []types.FinType{elem})
		}
		return types.NewStruct("Collection", []types.FinType{types.NewPrimitive(types.Void)})

	case *ast.StructLiteralExpr:
		mangled := c.Mangle(c.CurrentFile, n.StructName)
		return types.NewStruct(mangled, nil)
	}

	if !compiled.IsNil() {
		return c.inferFinTypeFromLLVM(compiled.Type())
	}
	return types.NewPrimitive(types.Void)
}

// inferFinTypeFromLLVM guesses a FinType from a raw LLVM type when no AST
// context is available (e.g. a call's return value).
func (c *Compiler) inferFinTypeFromLLVM(t llvm.Type) types.FinType {
	switch t.TypeKind() {
	case llvm.IntegerTypeKind:
		switch t.IntTypeWidth() {
		case 1:
			return types.NewPrimitive(types.Bool)
		case 8:
			return types.NewPrimitive(types.Char)
		case 64:
			return types.NewPrimitive(types.Long)
		default:
			return types.NewPrimitive(types.Int)
		}
	case llvm.FloatTypeKind:
		return types.NewPrimitive(types.Float)
	case llvm.DoubleTypeKind:
		return types.NewPrimitive(types.Double)
	case llvm.PointerTypeKind:
		return types.NewPointer(types.NewPrimitive(types.Void))
	case llvm.StructTypeKind:
		return types.NewStruct("Collection", []types.FinType{types.NewPrimitive(types.Void)})
	}
	return types.NewPrimitive(types.Void)
}

func parseIntLit(text string) int64 {
	var v int64
	for _, r := range text {
		if r < '0' || r > '9' {
			break
		}
		v = v*10 + int64(r-'0')
	}
	return v
}
