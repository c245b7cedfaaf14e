package codegen

import (
	"lattec/internal/ast"
	"lattec/internal/diagnostics"
	"lattec/internal/ir"
)

// addr is a computed lvalue address together with the type stored there.
type addr struct {
	Ptr ir.Value
	Typ ir.Type
}

// lowerAddr lowers the address-yielding expression forms — array element,
// object field and the `a.length` pseudo-field — to a pointer value plus the
// type of what it points to (spec.md §4.4, "lvalue lowering"). e.Kind must
// be EArrayElem or EObjField; ELitVar has no address, it is a direct
// environment binding, and is handled by the statement driver instead.
func (b *FunctionBuilder) lowerAddr(block ir.Label, e *ast.Expr) (ir.Label, addr) {
	switch e.Kind {
	case ast.EArrayElem:
		arrVal, block2 := b.lowerExpr(block, e.ArrayExpr)
		idxVal, block3 := b.lowerExpr(block2, e.IndexExpr)
		elemType := *arrVal.GetType().Elem
		reg := b.freshReg()
		b.emit(block3, ir.GetElementPtr(reg, elemType, []ir.Value{arrVal, idxVal}))
		return block3, addr{Ptr: ir.Register(reg, ir.Ptr(elemType)), Typ: elemType}

	case ast.EObjField:
		if e.IsArrayLength {
			return b.lowerArrayLengthAddr(block, e.ObjExpr)
		}
		objVal, block2 := b.lowerExpr(block, e.ObjExpr)
		class := objVal.GetType().Elem.Class
		idx, fieldType, err := b.classes.FieldIndexAndType(class, e.FieldName)
		if err != nil {
			diagnostics.Bug("codegen: %v", err)
		}
		reg := b.freshReg()
		b.emit(block2, ir.GetElementPtr(reg, ir.ClassType(class), []ir.Value{objVal, ir.LitInt(0), ir.LitInt(int32(idx))}))
		return block2, addr{Ptr: ir.Register(reg, ir.Ptr(fieldType)), Typ: fieldType}

	default:
		diagnostics.Bug("codegen: %d is not an lvalue expression kind", e.Kind)
		panic("unreachable")
	}
}

// lowerArrayLengthAddr computes the address of the hidden length cell that
// precedes every array's data (spec.md §4.1/§4.4: "`a.length` reads
// base[-1]"). When the element type is already Int the array pointer can be
// reused directly as the i32* address; any other element type is first
// bitcast to i32* since the length cell's own type never depends on the
// array's element type.
func (b *FunctionBuilder) lowerArrayLengthAddr(block ir.Label, arrExpr *ast.Expr) (ir.Label, addr) {
	arrVal, block2 := b.lowerExpr(block, arrExpr)
	return b.arrayLengthAddrOf(block2, arrVal)
}

// arrayLengthAddrOf is lowerArrayLengthAddr's value-already-lowered half,
// split out so for-each desugaring (which needs the array's length without
// re-lowering — and so re-evaluating — the array expression) can share it.
func (b *FunctionBuilder) arrayLengthAddrOf(block ir.Label, arrVal ir.Value) (ir.Label, addr) {
	lenBase := arrVal
	if !arrVal.GetType().Elem.Equal(ir.Int()) {
		castReg := b.freshReg()
		b.emit(block, ir.CastPtr(castReg, ir.Ptr(ir.Int()), arrVal))
		lenBase = ir.Register(castReg, ir.Ptr(ir.Int()))
	}

	reg := b.freshReg()
	b.emit(block, ir.GetElementPtr(reg, ir.Int(), []ir.Value{lenBase, ir.LitInt(-1)}))
	return block, addr{Ptr: ir.Register(reg, ir.Ptr(ir.Int())), Typ: ir.Int()}
}
