// Package emitllvm is the textual-serialization backend spec.md leaves
// external (§1, "Out of scope: IR textual serialization"): it translates a
// lowered ir.Program into a real github.com/llir/llvm module and prints it,
// giving the generator's SSA form a concrete, independently-parseable
// surface instead of the internal String() renderer's ad hoc text.
package emitllvm

import (
	"fmt"

	"lattec/internal/ir"

	llvm "github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

// Emit translates prog into an *llvm.Module and returns its textual IR.
func Emit(prog *ir.Program) string {
	m := llvm.NewModule()

	e := &emitter{
		module:    m,
		classes:   map[string]*types.StructType{},
		vtables:   map[string]*types.StructType{},
		globals:   map[ir.GlobalStrNum]*llvm.Global{},
		functions: map[string]*llvm.Func{},
	}
	e.declareBuiltins()
	e.declareGlobalStrings(prog.GlobalStrings)
	e.declareClassTypes(prog.Classes)
	e.declareClassVtableData(prog.Classes)
	e.declareFunctionSignatures(prog.Functions)
	for _, fn := range prog.Functions {
		e.emitFunctionBody(fn)
	}

	return m.String()
}

type emitter struct {
	module *llvm.Module

	classes map[string]*types.StructType
	vtables map[string]*types.StructType
	globals map[ir.GlobalStrNum]*llvm.Global

	functions map[string]*llvm.Func
}

func (e *emitter) declareBuiltins() {
	e.functions = map[string]*llvm.Func{}
	newFn := func(name string, ret types.Type, params ...*llvm.Param) *llvm.Func {
		f := e.module.NewFunc(name, ret, params...)
		e.functions[name] = f
		return f
	}
	newFn("printInt", types.Void, llvm.NewParam("", types.I32))
	newFn("printString", types.Void, llvm.NewParam("", types.I8Ptr))
	newFn("error", types.Void)
	newFn("readInt", types.I32)
	newFn("readString", types.I8Ptr)
	newFn("_bltn_string_concat", types.I8Ptr, llvm.NewParam("", types.I8Ptr), llvm.NewParam("", types.I8Ptr))
	newFn("_bltn_string_eq", types.I1, llvm.NewParam("", types.I8Ptr), llvm.NewParam("", types.I8Ptr))
	newFn("_bltn_string_ne", types.I1, llvm.NewParam("", types.I8Ptr), llvm.NewParam("", types.I8Ptr))
	newFn("_bltn_malloc", types.I8Ptr, llvm.NewParam("", types.I32))
	newFn("_bltn_alloc_array", types.I8Ptr, llvm.NewParam("", types.I32), llvm.NewParam("", types.I32))
}

func (e *emitter) declareGlobalStrings(strs map[string]ir.GlobalStrNum) {
	for s, n := range strs {
		data := append([]byte(s), 0)
		g := e.module.NewGlobalDef(ir.FormatGlobalString(n), constant.NewCharArrayFromString(string(data)))
		g.Immutable = true
		e.globals[n] = g
	}
}

func (e *emitter) llType(t ir.Type) types.Type {
	switch t.Kind {
	case ir.TVoid:
		return types.Void
	case ir.TInt:
		return types.I32
	case ir.TBool:
		return types.I1
	case ir.TChar:
		return types.I8
	case ir.TPtr:
		return types.NewPointer(e.llType(*t.Elem))
	case ir.TClass:
		if st, ok := e.classes[t.Class]; ok {
			return st
		}
		if st, ok := e.vtables[t.Class]; ok {
			return st
		}
		panic(fmt.Sprintf("emitllvm: reference to undeclared class %q", t.Class))
	case ir.TFunc:
		params := make([]types.Type, len(t.Args))
		for i, a := range t.Args {
			params[i] = e.llType(a)
		}
		return types.NewPointer(types.NewFunc(e.llType(*t.Ret), params...))
	default:
		panic(fmt.Sprintf("emitllvm: invalid type kind %d", t.Kind))
	}
}

// declareClassTypes declares every class and vtable struct as a named type
// before resolving any field, so that a field referencing another class
// (directly, or through a mutual reference) resolves to the very struct
// object that class is declared as rather than a throwaway stand-in.
func (e *emitter) declareClassTypes(classes []ir.Class) {
	for _, cl := range classes {
		st := types.NewStruct()
		st.TypeName = ir.FormatClassName(cl.Name)
		e.classes[cl.Name] = st
		e.module.NewTypeDef(st.TypeName, st)

		vt := types.NewStruct()
		vt.TypeName = ir.FormatClassVtableType(cl.Name)
		e.vtables[cl.Name] = vt
		e.module.NewTypeDef(vt.TypeName, vt)
	}
	for _, cl := range classes {
		st := e.classes[cl.Name]
		for _, f := range cl.Fields {
			st.Fields = append(st.Fields, e.llType(f))
		}
		vt := e.vtables[cl.Name]
		for _, slot := range cl.Vtable {
			vt.Fields = append(vt.Fields, e.llType(slot.Typ))
		}
	}
}

func (e *emitter) declareClassVtableData(classes []ir.Class) {
	for _, cl := range classes {
		vt := e.vtables[cl.Name]
		fields := make([]constant.Constant, len(cl.Vtable))
		for i, slot := range cl.Vtable {
			fn, ok := e.functions[slot.Name]
			if !ok {
				fn = e.declareFunctionSignature(slot.Name, slot.Typ)
			}
			fields[i] = constant.NewBitCast(fn, e.llType(slot.Typ))
		}
		g := e.module.NewGlobalDef(ir.FormatClassVtableData(cl.Name), constant.NewStruct(vt, fields...))
		g.Immutable = true
	}
}

func (e *emitter) declareFunctionSignatures(fns []ir.Function) {
	for _, fn := range fns {
		params := make([]*llvm.Param, len(fn.Args))
		for i, a := range fn.Args {
			params[i] = llvm.NewParam(fmt.Sprintf(".r%d", a.Reg), e.llType(a.Typ))
		}
		f := e.module.NewFunc(fn.Name, e.llType(fn.RetType), params...)
		e.functions[fn.Name] = f
	}
}

// declareFunctionSignature declares an external reference to a function
// emitted elsewhere in the program (used when a vtable is assembled before
// its target methods have been declared).
func (e *emitter) declareFunctionSignature(name string, ptrType ir.Type) *llvm.Func {
	funcType := *ptrType.Elem
	params := make([]*llvm.Param, len(funcType.Args))
	for i, a := range funcType.Args {
		params[i] = llvm.NewParam("", e.llType(a))
	}
	f := e.module.NewFunc(name, e.llType(*funcType.Ret), params...)
	e.functions[name] = f
	return f
}

// funcBuild holds the per-function translation state: llir blocks keyed by
// our Label, and SSA registers keyed by our RegNum.
type funcBuild struct {
	e      *emitter
	blocks map[ir.Label]*llvm.Block
	values map[ir.RegNum]value.Value
}

func (e *emitter) emitFunctionBody(fn ir.Function) {
	f := e.functions[fn.Name]
	fb := &funcBuild{e: e, blocks: map[ir.Label]*llvm.Block{}, values: map[ir.RegNum]value.Value{}}

	for i, a := range fn.Args {
		fb.values[a.Reg] = f.Params[i]
	}
	for _, bl := range fn.Blocks {
		fb.blocks[bl.Label] = f.NewBlock(fmt.Sprintf(".L%d", bl.Label))
	}
	for _, bl := range fn.Blocks {
		fb.emitBlock(bl)
	}
}

func (fb *funcBuild) val(v ir.Value) value.Value {
	switch v.Kind {
	case ir.VLitInt:
		return constant.NewInt(types.I32, int64(v.Int))
	case ir.VLitBool:
		return constant.NewBool(v.Bool)
	case ir.VLitNullPtr:
		return constant.NewNull(fb.e.llType(v.GetType()).(*types.PointerType))
	case ir.VRegister:
		return fb.values[v.Reg]
	case ir.VGlobalRegister:
		if g, ok := fb.e.globals[parseGlobalStrNum(v.Name)]; ok {
			return g
		}
		if f, ok := fb.e.functions[v.Name]; ok {
			return f
		}
		panic(fmt.Sprintf("emitllvm: unresolved global %q", v.Name))
	default:
		panic(fmt.Sprintf("emitllvm: invalid value kind %d", v.Kind))
	}
}

// parseGlobalStrNum recovers the numeric id FormatGlobalString encoded, the
// inverse mapping needed since Value only carries the rendered symbol name.
func parseGlobalStrNum(name string) ir.GlobalStrNum {
	var n uint32
	fmt.Sscanf(name, ".str.%d", &n)
	return ir.GlobalStrNum(n)
}

func (fb *funcBuild) emitBlock(bl ir.Block) {
	b := fb.blocks[bl.Label]

	for _, ph := range bl.Phis {
		p := b.NewPhi()
		fb.values[ph.Result] = p
	}

	for i, op := range bl.Body {
		fb.emitOp(b, op, i)
	}

	for _, ph := range bl.Phis {
		p := fb.values[ph.Result].(*llvm.InstPhi)
		for _, inc := range ph.Incoming {
			p.Incs = append(p.Incs, llvm.NewIncoming(fb.val(inc.Value), fb.blocks[inc.Pred]))
		}
	}
}

func (fb *funcBuild) emitOp(b *llvm.Block, op ir.Operation, idx int) {
	e := fb.e
	switch op.Kind {
	case ir.OpReturn:
		if op.HasResultValue {
			b.NewRet(fb.val(op.ResultValue))
		} else {
			b.NewRet(nil)
		}
	case ir.OpFunctionCall:
		args := make([]value.Value, len(op.Args))
		for i, a := range op.Args {
			args[i] = fb.val(a)
		}
		call := b.NewCall(fb.val(op.Callee), args...)
		if op.HasResult {
			fb.values[op.Result] = call
		}
	case ir.OpArithmetic:
		lhs, rhs := fb.val(op.Lhs), fb.val(op.Rhs)
		var inst value.Value
		switch op.ArithOp {
		case ir.Add:
			inst = b.NewAdd(lhs, rhs)
		case ir.Sub:
			inst = b.NewSub(lhs, rhs)
		case ir.Mul:
			inst = b.NewMul(lhs, rhs)
		case ir.Div:
			inst = b.NewSDiv(lhs, rhs)
		case ir.Mod:
			inst = b.NewSRem(lhs, rhs)
		}
		fb.values[op.Dst] = inst
	case ir.OpCompare:
		fb.values[op.Dst] = b.NewICmp(cmpPred(op.CmpOp), fb.val(op.Lhs), fb.val(op.Rhs))
	case ir.OpGetElementPtr:
		indices := make([]value.Value, len(op.Indices))
		for i, v := range op.Indices {
			indices[i] = fb.val(v)
		}
		base, rest := indices[0], indices[1:]
		fb.values[op.Dst] = b.NewGetElementPtr(e.llType(op.ElemType), base, rest...)
	case ir.OpLoad:
		fb.values[op.Dst] = b.NewLoad(e.llType(*op.Addr.GetType().Elem), fb.val(op.Addr))
	case ir.OpStore:
		b.NewStore(fb.val(op.Store), fb.val(op.Addr))
	case ir.OpCastPtr:
		fb.values[op.DstReg] = b.NewBitCast(fb.val(op.Src), e.llType(op.DstType))
	case ir.OpCastPtrToInt:
		fb.values[op.DstReg] = b.NewPtrToInt(fb.val(op.Src), types.I32)
	case ir.OpCastGlobalString:
		zero := constant.NewInt(types.I32, 0)
		fb.values[op.DstReg] = b.NewGetElementPtr(types.NewArray(uint64(op.StrByteLen), types.I8), fb.val(op.Src), zero, zero)
	case ir.OpBranch1:
		b.NewBr(fb.blocks[op.Target])
	case ir.OpBranch2:
		b.NewCondBr(fb.val(op.Cond), fb.blocks[op.TrueL], fb.blocks[op.FalseL])
	}
}

func cmpPred(op ir.CmpOp) enum.IPred {
	switch op {
	case ir.LT:
		return enum.IPredSLT
	case ir.LE:
		return enum.IPredSLE
	case ir.GT:
		return enum.IPredSGT
	case ir.GE:
		return enum.IPredSGE
	case ir.EQ:
		return enum.IPredEQ
	case ir.NE:
		return enum.IPredNE
	default:
		panic(fmt.Sprintf("emitllvm: invalid compare op %d", op))
	}
}
