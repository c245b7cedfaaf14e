package codegen

import (
	"lattec/internal/ast"
	"lattec/internal/diagnostics"
	"lattec/internal/ir"
)

// processBlock lowers every statement of blk in order, threading the
// current block label through. cur == unreachableLabel communicates that an
// earlier statement already terminated the enclosing block (a return, or a
// branch with no fall-through); any statements still following it in source
// are dead and are skipped rather than lowered into garbage operations after
// a terminator.
func (b *FunctionBuilder) processBlock(blk ast.Block, cur ir.Label) ir.Label {
	for i := range blk.Stmts {
		if cur == unreachableLabel {
			break
		}
		cur = b.processStmt(&blk.Stmts[i], cur)
	}
	return cur
}

func (b *FunctionBuilder) processStmt(st *ast.Stmt, cur ir.Label) ir.Label {
	switch st.Kind {
	case ast.SEmpty:
		return cur

	case ast.SBlock:
		next := b.allocateBlock(cur)
		b.addBranch1(cur, next)
		return b.processBlock(*st.Block, next)

	case ast.SDecl:
		return b.processDecl(st, cur)

	case ast.SAssign:
		return b.processAssign(st, cur)

	case ast.SIncr, ast.SDecr:
		return b.processIncrDecr(st, cur)

	case ast.SRet:
		return b.processReturn(st, cur)

	case ast.SCond:
		return b.processCond(st, cur)

	case ast.SWhile:
		return b.processWhile(st, cur)

	case ast.SForEach:
		return b.processForEach(st, cur)

	case ast.SExpr:
		_, cur2 := b.lowerExpr(cur, st.Expr)
		return cur2

	default:
		diagnostics.Bug("codegen: unhandled statement kind %d", st.Kind)
		panic("unreachable")
	}
}

func (b *FunctionBuilder) processDecl(st *ast.Stmt, cur ir.Label) ir.Label {
	declType := ir.FromSourceType(st.DeclType)
	for _, item := range st.DeclItems {
		var v ir.Value
		if item.Init != nil {
			v, cur = b.lowerExpr(cur, item.Init)
			v = resolveNull(v, declType)
		} else {
			v = defaultValue(declType)
		}
		b.env.declare(cur, item.Name, v)
	}
	return cur
}

// defaultValue is the zero value a declaration with no initializer binds
// (spec.md §4.5: Int -> 0, Bool -> false, every pointer shape -> null).
func defaultValue(t ir.Type) ir.Value {
	switch t.Kind {
	case ir.TInt:
		return ir.LitInt(0)
	case ir.TBool:
		return ir.LitBool(false)
	case ir.TPtr:
		return ir.LitNullPtrOf(t)
	default:
		diagnostics.Bug("codegen: no default value for type %s", t)
		panic("unreachable")
	}
}

func (b *FunctionBuilder) processAssign(st *ast.Stmt, cur ir.Label) ir.Label {
	switch st.Lhs.Kind {
	case ast.ELitVar:
		v, cur2 := b.lowerExpr(cur, st.Rhs)
		existing := b.env.lookup(cur2, st.Lhs.VarName)
		v = resolveNull(v, existing.GetType())
		b.env.update(cur2, st.Lhs.VarName, v)
		return cur2

	case ast.EArrayElem, ast.EObjField:
		cur2, a := b.lowerAddr(cur, st.Lhs)
		v, cur3 := b.lowerExpr(cur2, st.Rhs)
		v = resolveNull(v, a.Typ)
		b.emit(cur3, ir.Store(v, a.Ptr))
		return cur3

	default:
		diagnostics.Bug("codegen: %d is not an assignable lvalue kind", st.Lhs.Kind)
		panic("unreachable")
	}
}

func (b *FunctionBuilder) processIncrDecr(st *ast.Stmt, cur ir.Label) ir.Label {
	delta := int32(1)
	if st.Kind == ast.SDecr {
		delta = -1
	}

	switch st.Lhs.Kind {
	case ast.ELitVar:
		v := b.env.lookup(cur, st.Lhs.VarName)
		reg := b.freshReg()
		b.emit(cur, ir.Arithmetic(reg, ir.Add, v, ir.LitInt(delta)))
		b.env.update(cur, st.Lhs.VarName, ir.Register(reg, ir.Int()))
		return cur

	case ast.EArrayElem, ast.EObjField:
		cur2, a := b.lowerAddr(cur, st.Lhs)
		loadReg := b.freshReg()
		b.emit(cur2, ir.Load(loadReg, a.Ptr))
		addReg := b.freshReg()
		b.emit(cur2, ir.Arithmetic(addReg, ir.Add, ir.Register(loadReg, a.Typ), ir.LitInt(delta)))
		b.emit(cur2, ir.Store(ir.Register(addReg, a.Typ), a.Ptr))
		return cur2

	default:
		diagnostics.Bug("codegen: %d is not an incr/decr-able lvalue kind", st.Lhs.Kind)
		panic("unreachable")
	}
}

func (b *FunctionBuilder) processReturn(st *ast.Stmt, cur ir.Label) ir.Label {
	if st.RetValue == nil {
		b.emit(cur, ir.Return(nil))
		return unreachableLabel
	}
	v, cur2 := b.lowerExpr(cur, st.RetValue)
	b.emit(cur2, ir.Return(&v))
	return unreachableLabel
}

// processCond lowers if/if-else (spec.md §4.6). A literal condition folds
// away entirely — no branch, no join, just whichever arm is statically
// live — since there is never more than one predecessor to merge. The
// general case isolates each arm's bindings behind its own proxy of the
// pre-branch environment (so one arm's assignments to an outer variable
// never leak into the other, which would happen if both arms simply
// inherited the same live frame) and then computes the join's phi set from
// however each arm actually left every name that was visible beforehand.
func (b *FunctionBuilder) processCond(st *ast.Stmt, cur ir.Label) ir.Label {
	if st.Cond.Kind == ast.ELitBool {
		if st.Cond.BoolVal {
			return b.processBlock(*st.TrueBranch, cur)
		}
		if st.FalseBranch != nil {
			return b.processBlock(*st.FalseBranch, cur)
		}
		return cur
	}

	trueProxy := b.env.snapshotIntoProxy(cur)
	falseProxy := b.env.snapshotIntoProxy(cur)

	trueL := b.allocateBlock(trueProxy)
	falseL := b.allocateBlock(falseProxy)
	b.lowerCond(cur, st.Cond, trueL, falseL)

	trueEnd := b.processBlock(*st.TrueBranch, trueL)
	falseEnd := falseL
	if st.FalseBranch != nil {
		falseEnd = b.processBlock(*st.FalseBranch, falseL)
	}

	switch {
	case trueEnd == unreachableLabel && falseEnd == unreachableLabel:
		return unreachableLabel
	case trueEnd == unreachableLabel:
		return falseEnd
	case falseEnd == unreachableLabel:
		return trueEnd
	}

	joinL := b.allocateBlock(cur)
	b.addBranch1(trueEnd, joinL)
	b.addBranch1(falseEnd, joinL)
	b.calculateIfPhiSet(cur, trueEnd, falseEnd, trueEnd, falseEnd, joinL)
	return joinL
}

// processWhile lowers while loops (spec.md §4.6). A literal-false condition
// never executes and is dropped entirely; everything else goes through the
// general phi-stubbed loop shape: the condition block's loop-carried names
// are pre-allocated fresh ids before either the condition or the body is
// lowered (prepareLoopCondPhiStub), so that both read the loop-carried
// register rather than the pre-loop value, and are finalized into real phi
// nodes once the body's actual exit values are known. The body is lowered
// behind a snapshot proxy, so its assignments never overwrite the stubs the
// code after the loop reads. A literal-true condition branches straight
// into the body and gets no continuation block at all.
func (b *FunctionBuilder) processWhile(st *ast.Stmt, cur ir.Label) ir.Label {
	if st.WhileCond.Kind == ast.ELitBool && !st.WhileCond.BoolVal {
		return cur
	}

	condL := b.allocateBlock(cur)
	stubs := b.prepareLoopCondPhiStub(cur, condL)
	b.addBranch1(cur, condL)

	bodyL := b.allocateBlock(condL)
	afterL := unreachableLabel
	if st.WhileCond.Kind != ast.ELitBool {
		afterL = b.allocateBlock(condL)
	}
	b.lowerCond(condL, st.WhileCond, bodyL, afterL)

	b.env.snapshotIntoProxy(bodyL)
	bodyEnd := b.processBlock(*st.WhileBody, bodyL)

	bodyEndProxy := cur
	if bodyEnd != unreachableLabel {
		b.addBranch1(bodyEnd, condL)
		bodyEndProxy = bodyEnd
	}
	b.finalizeLoopCondPhiStub(stubs, cur, bodyEndProxy, condL)

	if afterL == unreachableLabel || len(b.block(afterL).Predecessors) == 0 {
		return unreachableLabel
	}
	return afterL
}

// processForEach desugars `for (T x : arr) body` into a pointer walk over
// the array's data (spec.md §4.6): a loop-carried cursor starts at the
// array's base address, is compared against one-past-the-end each
// iteration, and advances by one element on every pass through the body.
// The cursor is itself an ordinary phi-stubbed loop-carried name (under a
// synthetic binding no source identifier can spell); the element variable
// is not loop-carried at all — it is loaded fresh from the cursor into its
// own scope on every entry to the body, behind a dedicated proxy frame so
// it never leaks past the loop.
func (b *FunctionBuilder) processForEach(st *ast.Stmt, cur ir.Label) ir.Label {
	const cursorVar = "$iter"

	arrVal, cur2 := b.lowerExpr(cur, st.Array)
	elemType := *arrVal.GetType().Elem

	_, lenAddr := b.arrayLengthAddrOf(cur2, arrVal)
	lenReg := b.freshReg()
	b.emit(cur2, ir.Load(lenReg, lenAddr.Ptr))

	endReg := b.freshReg()
	b.emit(cur2, ir.GetElementPtr(endReg, elemType, []ir.Value{arrVal, ir.Register(lenReg, ir.Int())}))
	endVal := ir.Register(endReg, ir.Ptr(elemType))

	b.env.declare(cur2, cursorVar, arrVal)

	condL := b.allocateBlock(cur2)
	stubs := b.prepareLoopCondPhiStub(cur2, condL)
	b.addBranch1(cur2, condL)

	bodyL := b.allocateBlock(condL)
	afterL := b.allocateBlock(condL)

	cursorVal := b.env.lookup(condL, cursorVar)
	cmpReg := b.freshReg()
	b.emit(condL, ir.Compare(cmpReg, ir.LT, cursorVal, endVal))
	b.addBranch2(condL, ir.Register(cmpReg, ir.Bool()), bodyL, afterL)

	b.env.snapshotIntoProxy(bodyL)
	elemProxy := b.env.insertProxyFrame(bodyL)
	elemReg := b.freshReg()
	b.emit(bodyL, ir.Load(elemReg, cursorVal))
	b.env.declare(elemProxy, st.IterName, ir.Register(elemReg, elemType))

	bodyEnd := b.processBlock(*st.ForBody, bodyL)

	bodyEndProxy := cur2
	if bodyEnd != unreachableLabel {
		nextReg := b.freshReg()
		b.emit(bodyEnd, ir.GetElementPtr(nextReg, elemType, []ir.Value{cursorVal, ir.LitInt(1)}))
		b.env.update(bodyEnd, cursorVar, ir.Register(nextReg, ir.Ptr(elemType)))
		b.addBranch1(bodyEnd, condL)
		bodyEndProxy = bodyEnd
	}
	b.finalizeLoopCondPhiStub(stubs, cur2, bodyEndProxy, condL)

	if len(b.block(afterL).Predecessors) == 0 {
		return unreachableLabel
	}
	return afterL
}
