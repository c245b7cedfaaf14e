package codegen

import (
	"lattec/internal/ast"
	"lattec/internal/classlayout"
	"lattec/internal/diagnostics"
	"lattec/internal/ir"
	"lattec/internal/semantics"
)

// isStringType reports whether t is the Ptr(Char) shape strings use.
func isStringType(t ir.Type) bool {
	return t.Kind == ir.TPtr && t.Elem.Kind == ir.TChar
}

// lowerExpr lowers a single expression to its runtime value, returning the
// current block the caller should continue emitting into — lowering a
// short-circuit boolean sub-expression as a value may itself grow the CFG
// with new blocks (spec.md §4.4, "rvalue lowering").
func (b *FunctionBuilder) lowerExpr(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	switch e.Kind {
	case ast.ELitVar:
		return b.env.lookup(block, e.VarName), block

	case ast.ELitInt:
		return ir.LitInt(e.IntVal), block

	case ast.ELitBool:
		return ir.LitBool(e.BoolVal), block

	case ast.ELitStr:
		sym := b.strings.Intern(e.StrVal)
		reg := b.freshReg()
		b.emit(block, ir.CastGlobalString(reg, len(e.StrVal)+1, sym))
		return ir.Register(reg, ir.StringType()), block

	case ast.ELitNull:
		return ir.LitNullPtrUnresolved(), block

	case ast.ECast:
		return b.lowerCast(block, e)

	case ast.EFunCall:
		return b.lowerFunCall(block, e)

	case ast.EBinary:
		return b.lowerBinary(block, e)

	case ast.EUnary:
		return b.lowerUnary(block, e)

	case ast.ENewArray:
		return b.lowerNewArray(block, e)

	case ast.ENewObject:
		return b.lowerNewObject(block, e)

	case ast.EArrayElem, ast.EObjField:
		block2, a := b.lowerAddr(block, e)
		reg := b.freshReg()
		b.emit(block2, ir.Load(reg, a.Ptr))
		return ir.Register(reg, a.Typ), block2

	case ast.EObjMethodCall:
		return b.lowerMethodCall(block, e)

	default:
		diagnostics.Bug("codegen: unhandled expression kind %d", e.Kind)
		panic("unreachable")
	}
}

// resolveNull gives an unresolved `null` literal a concrete pointer type
// once the context it appears in (an assignment, a cast, an argument slot)
// makes one known; every other value passes through unchanged.
func resolveNull(v ir.Value, want ir.Type) ir.Value {
	if v.IsUnresolvedNull() {
		return ir.LitNullPtrOf(want)
	}
	return v
}

func (b *FunctionBuilder) lowerCast(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	operand, block2 := b.lowerExpr(block, e.CastOperand)
	target := ir.FromSourceType(e.CastType)
	operand = resolveNull(operand, target)
	if operand.GetType().Equal(target) {
		return operand, block2
	}
	reg := b.freshReg()
	b.emit(block2, ir.CastPtr(reg, target, operand))
	return ir.Register(reg, target), block2
}

func (b *FunctionBuilder) lowerFunCall(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	desc, ok := b.gctx.FunctionDescription(e.FuncName)
	if !ok {
		diagnostics.Bug("codegen: call to undeclared function %q", e.FuncName)
	}

	args := make([]ir.Value, len(e.CallArgs))
	cur := block
	for i, a := range e.CallArgs {
		var v ir.Value
		v, cur = b.lowerExpr(cur, a)
		if i < len(desc.ArgTypes) {
			v = resolveNull(v, ir.FromSourceType(desc.ArgTypes[i]))
		}
		args[i] = v
	}

	retType := ir.FromSourceType(desc.RetType)
	callee := ir.GlobalRegister(e.FuncName, ir.FunctionPointerOf(desc.RetType, desc.ArgTypes))

	if retType.Kind == ir.TVoid {
		b.emit(cur, ir.FunctionCall(nil, retType, callee, args))
		return ir.Value{}, cur
	}
	reg := b.freshReg()
	b.emit(cur, ir.FunctionCall(&reg, retType, callee, args))
	return ir.Register(reg, retType), cur
}

func (b *FunctionBuilder) lowerBinary(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	switch e.Op {
	case ast.OpAnd, ast.OpOr:
		return b.lowerBoolValue(block, e)
	}

	lhs, block2 := b.lowerExpr(block, e.Lhs)
	rhs, block3 := b.lowerExpr(block2, e.Rhs)

	switch e.Op {
	case ast.OpAdd:
		if isStringType(lhs.GetType()) {
			reg := b.freshReg()
			callee := ir.GlobalRegister(semantics.RuntimeStringConcat,
				ir.Ptr(ir.FuncType(ir.StringType(), []ir.Type{ir.StringType(), ir.StringType()})))
			b.emit(block3, ir.FunctionCall(&reg, ir.StringType(), callee, []ir.Value{lhs, rhs}))
			return ir.Register(reg, ir.StringType()), block3
		}
		return b.arith(block3, ir.Add, lhs, rhs)
	case ast.OpSub:
		return b.arith(block3, ir.Sub, lhs, rhs)
	case ast.OpMul:
		return b.arith(block3, ir.Mul, lhs, rhs)
	case ast.OpDiv:
		return b.arith(block3, ir.Div, lhs, rhs)
	case ast.OpMod:
		return b.arith(block3, ir.Mod, lhs, rhs)
	case ast.OpLT:
		return b.compare(block3, ir.LT, lhs, rhs)
	case ast.OpLE:
		return b.compare(block3, ir.LE, lhs, rhs)
	case ast.OpGT:
		return b.compare(block3, ir.GT, lhs, rhs)
	case ast.OpGE:
		return b.compare(block3, ir.GE, lhs, rhs)
	case ast.OpEQ:
		return b.equality(block3, ir.EQ, semantics.RuntimeStringEq, lhs, rhs)
	case ast.OpNE:
		return b.equality(block3, ir.NE, semantics.RuntimeStringNe, lhs, rhs)
	default:
		diagnostics.Bug("codegen: unhandled binary operator %d", e.Op)
		panic("unreachable")
	}
}

func (b *FunctionBuilder) arith(block ir.Label, op ir.ArithOp, lhs, rhs ir.Value) (ir.Value, ir.Label) {
	reg := b.freshReg()
	b.emit(block, ir.Arithmetic(reg, op, lhs, rhs))
	return ir.Register(reg, ir.Int()), block
}

func (b *FunctionBuilder) compare(block ir.Label, op ir.CmpOp, lhs, rhs ir.Value) (ir.Value, ir.Label) {
	reg := b.freshReg()
	b.emit(block, ir.Compare(reg, op, lhs, rhs))
	return ir.Register(reg, ir.Bool()), block
}

// equality handles EQ/NE, which unlike the ordered comparisons are defined
// over strings (by content, through a runtime helper) and over object/array
// pointers (by identity, through Compare) as well as over Int/Bool.
func (b *FunctionBuilder) equality(block ir.Label, op ir.CmpOp, stringHelper string, lhs, rhs ir.Value) (ir.Value, ir.Label) {
	t := lhs.GetType()
	if lhs.IsUnresolvedNull() {
		t = rhs.GetType()
	}
	lhs, rhs = resolveNull(lhs, t), resolveNull(rhs, t)

	if isStringType(t) {
		reg := b.freshReg()
		callee := ir.GlobalRegister(stringHelper, ir.Ptr(ir.FuncType(ir.Bool(), []ir.Type{ir.StringType(), ir.StringType()})))
		b.emit(block, ir.FunctionCall(&reg, ir.Bool(), callee, []ir.Value{lhs, rhs}))
		return ir.Register(reg, ir.Bool()), block
	}
	return b.compare(block, op, lhs, rhs)
}

func (b *FunctionBuilder) lowerUnary(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	operand, block2 := b.lowerExpr(block, e.UnaryOperand)
	switch e.UnaryOperator {
	case ast.OpIntNeg:
		return b.arith(block2, ir.Sub, ir.LitInt(0), operand)
	case ast.OpBoolNeg:
		reg := b.freshReg()
		b.emit(block2, ir.Arithmetic(reg, ir.Sub, ir.LitBool(true), operand))
		return ir.Register(reg, ir.Bool()), block2
	default:
		diagnostics.Bug("codegen: unhandled unary operator %d", e.UnaryOperator)
		panic("unreachable")
	}
}

// lowerBoolValue materializes a short-circuit boolean expression as a value
// (as opposed to lowerCond, which only branches): it evaluates e purely for
// control flow into dedicated true/false blocks, then joins with a phi that
// picks the constant matching whichever side was reached.
func (b *FunctionBuilder) lowerBoolValue(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	trueL := b.allocateBlock(block)
	falseL := b.allocateBlock(block)
	b.lowerCond(block, e, trueL, falseL)

	joinL := b.allocateBlock(trueL)
	b.addBranch1(trueL, joinL)
	b.addBranch1(falseL, joinL)

	reg := b.freshReg()
	b.block(joinL).Phis = append(b.block(joinL).Phis, ir.PhiEntry{
		Result: reg,
		Typ:    ir.Bool(),
		Incoming: []ir.PhiIncoming{
			{Value: ir.LitBool(true), Pred: trueL},
			{Value: ir.LitBool(false), Pred: falseL},
		},
	})
	return ir.Register(reg, ir.Bool()), joinL
}

// lowerCond lowers e purely for control flow (spec.md §4.4, "short-circuit
// boolean lowering"): it never produces a value, only branches — reaching
// trueL means e is true, reaching falseL means e is false. `&&`/`||` recurse
// without ever evaluating their right operand when the left one already
// decides the outcome; `!` swaps its targets; a constant condition folds to
// a single unconditional branch instead of a Branch2 no one needs; anything
// else falls back to evaluating a value and branching on it.
func (b *FunctionBuilder) lowerCond(block ir.Label, e *ast.Expr, trueL, falseL ir.Label) {
	switch {
	case e.Kind == ast.EUnary && e.UnaryOperator == ast.OpBoolNeg:
		b.lowerCond(block, e.UnaryOperand, falseL, trueL)
		return

	case e.Kind == ast.EBinary && e.Op == ast.OpAnd:
		rhsBlock := b.allocateBlock(block)
		b.lowerCond(block, e.Lhs, rhsBlock, falseL)
		b.lowerCond(rhsBlock, e.Rhs, trueL, falseL)
		return

	case e.Kind == ast.EBinary && e.Op == ast.OpOr:
		rhsBlock := b.allocateBlock(block)
		b.lowerCond(block, e.Lhs, trueL, rhsBlock)
		b.lowerCond(rhsBlock, e.Rhs, trueL, falseL)
		return

	case e.Kind == ast.ELitBool:
		if e.BoolVal {
			b.addBranch1(block, trueL)
		} else {
			b.addBranch1(block, falseL)
		}
		return

	default:
		v, block2 := b.lowerExpr(block, e)
		b.addBranch2(block2, v, trueL, falseL)
	}
}

func (b *FunctionBuilder) lowerNewArray(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	count, block2 := b.lowerExpr(block, e.ElemCnt)
	elemType := ir.FromSourceType(e.ElemType)
	elemSize := classlayout.GetSizeOfPrimitive(elemType)

	raw := b.freshReg()
	callee := ir.GlobalRegister(semantics.RuntimeAllocArray, ir.Ptr(ir.FuncType(ir.StringType(), []ir.Type{ir.Int(), ir.Int()})))
	b.emit(block2, ir.FunctionCall(&raw, ir.StringType(), callee, []ir.Value{count, ir.LitInt(elemSize)}))

	arrType := ir.Ptr(elemType)
	cast := b.freshReg()
	b.emit(block2, ir.CastPtr(cast, arrType, ir.Register(raw, ir.StringType())))
	return ir.Register(cast, arrType), block2
}

// lowerNewObject allocates a class instance: its size is derived with the
// classic null-pointer-plus-one trick (a GEP one struct past a null pointer,
// ptrtoint'd to an integer), then the freshly malloc'd storage is bitcast to
// the class pointer type and has its vtable slot initialized.
func (b *FunctionBuilder) lowerNewObject(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	class := e.ClassName
	classPtrType := ir.PtrClass(class)

	sizeAddrReg := b.freshReg()
	nullPtr := ir.LitNullPtrOf(classPtrType)
	b.emit(block, ir.GetElementPtr(sizeAddrReg, ir.ClassType(class), []ir.Value{nullPtr, ir.LitInt(1)}))

	sizeReg := b.freshReg()
	b.emit(block, ir.CastPtrToInt(sizeReg, ir.Register(sizeAddrReg, classPtrType)))

	rawReg := b.freshReg()
	callee := ir.GlobalRegister(semantics.RuntimeMalloc, ir.Ptr(ir.FuncType(ir.StringType(), []ir.Type{ir.Int()})))
	b.emit(block, ir.FunctionCall(&rawReg, ir.StringType(), callee, []ir.Value{ir.Register(sizeReg, ir.Int())}))

	objReg := b.freshReg()
	b.emit(block, ir.CastPtr(objReg, classPtrType, ir.Register(rawReg, ir.StringType())))
	objVal := ir.Register(objReg, classPtrType)

	vtableAddrReg := b.freshReg()
	vtablePtrType := ir.Ptr(ir.VtableType(class))
	b.emit(block, ir.GetElementPtr(vtableAddrReg, ir.ClassType(class), []ir.Value{objVal, ir.LitInt(0), ir.LitInt(0)}))
	b.emit(block, ir.Store(
		ir.GlobalRegister(ir.FormatClassVtableData(class), ir.VtableType(class)),
		ir.Register(vtableAddrReg, vtablePtrType),
	))

	return objVal, block
}

// lowerMethodCall performs dynamic dispatch through the callee's vtable
// (spec.md §4.4): the vtable pointer and the method slot are both loaded at
// runtime, and `this` is cast up to whichever ancestor class originally
// declared the slot before the indirect call, since that is the type the
// slot's function-pointer signature was fixed at.
func (b *FunctionBuilder) lowerMethodCall(block ir.Label, e *ast.Expr) (ir.Value, ir.Label) {
	objVal, block2 := b.lowerExpr(block, e.MethodObj)
	class := objVal.GetType().Elem.Class

	idx, methodType, err := b.classes.MethodIndexAndType(class, e.MethodName)
	if err != nil {
		diagnostics.Bug("codegen: %v", err)
	}

	vtableAddrReg := b.freshReg()
	b.emit(block2, ir.GetElementPtr(vtableAddrReg, ir.ClassType(class), []ir.Value{objVal, ir.LitInt(0), ir.LitInt(0)}))
	vtablePtrType := ir.Ptr(ir.VtableType(class))

	vtableValReg := b.freshReg()
	b.emit(block2, ir.Load(vtableValReg, ir.Register(vtableAddrReg, vtablePtrType)))

	slotAddrReg := b.freshReg()
	b.emit(block2, ir.GetElementPtr(slotAddrReg, ir.ClassType(ir.VtableTypeName(class)),
		[]ir.Value{ir.Register(vtableValReg, ir.VtableType(class)), ir.LitInt(0), ir.LitInt(int32(idx))}))

	methodPtrReg := b.freshReg()
	b.emit(block2, ir.Load(methodPtrReg, ir.Register(slotAddrReg, ir.Ptr(methodType))))

	thisOwnerType := methodType.Elem.Args[0]
	thisVal := objVal
	if !thisOwnerType.Equal(objVal.GetType()) {
		castReg := b.freshReg()
		b.emit(block2, ir.CastPtr(castReg, thisOwnerType, objVal))
		thisVal = ir.Register(castReg, thisOwnerType)
	}

	declaredArgs := methodType.Elem.Args[1:]
	args := make([]ir.Value, 0, len(e.MethodArgs)+1)
	args = append(args, thisVal)
	cur := block2
	for i, a := range e.MethodArgs {
		var v ir.Value
		v, cur = b.lowerExpr(cur, a)
		if i < len(declaredArgs) {
			v = resolveNull(v, declaredArgs[i])
		}
		args = append(args, v)
	}

	retType := *methodType.Elem.Ret
	methodPtrVal := ir.Register(methodPtrReg, methodType)
	if retType.Kind == ir.TVoid {
		b.emit(cur, ir.FunctionCall(nil, retType, methodPtrVal, args))
		return ir.Value{}, cur
	}
	reg := b.freshReg()
	b.emit(cur, ir.FunctionCall(&reg, retType, methodPtrVal, args))
	return ir.Register(reg, retType), cur
}
