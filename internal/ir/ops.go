package ir

import (
	"fmt"
	"strings"
)

// ArithOp is the operator of an Arithmetic operation.
type ArithOp int

const (
	Add ArithOp = iota
	Sub
	Mul
	Div
	Mod
)

func (o ArithOp) String() string {
	switch o {
	case Add:
		return "add"
	case Sub:
		return "sub"
	case Mul:
		return "mul"
	case Div:
		return "sdiv"
	case Mod:
		return "srem"
	default:
		return "<invalid-arith-op>"
	}
}

// CmpOp is the operator of a Compare operation.
type CmpOp int

const (
	LT CmpOp = iota
	LE
	GT
	GE
	EQ
	NE
)

func (o CmpOp) String() string {
	switch o {
	case LT:
		return "slt"
	case LE:
		return "sle"
	case GT:
		return "sgt"
	case GE:
		return "sge"
	case EQ:
		return "eq"
	case NE:
		return "ne"
	default:
		return "<invalid-cmp-op>"
	}
}

// OpKind tags the variant of an Operation.
type OpKind int

const (
	OpReturn OpKind = iota
	OpFunctionCall
	OpArithmetic
	OpCompare
	OpGetElementPtr
	OpLoad
	OpStore
	OpCastPtr
	OpCastPtrToInt
	OpCastGlobalString
	OpBranch1
	OpBranch2
)

// Operation is a single almost-quadruple instruction, read left-to-right.
// The last operation of every non-terminal block must be Branch1 or
// Branch2; a block may instead terminate with Return.
type Operation struct {
	Kind OpKind

	// Return
	HasResultValue bool
	ResultValue    Value

	// FunctionCall
	HasResult  bool
	Result     RegNum
	RetType    Type
	Callee     Value
	Args       []Value

	// Arithmetic / Compare
	Dst      RegNum
	ArithOp  ArithOp
	CmpOp    CmpOp
	Lhs      Value
	Rhs      Value

	// GetElementPtr
	ElemType Type
	Indices  []Value

	// Load / Store
	Addr  Value
	Store Value

	// CastPtr / CastPtrToInt / CastGlobalString
	DstReg     RegNum
	DstType    Type
	Src        Value
	StrByteLen int

	// Branch1 / Branch2
	Target Label
	Cond   Value
	TrueL  Label
	FalseL Label
}

func Return(v *Value) Operation {
	if v == nil {
		return Operation{Kind: OpReturn}
	}
	return Operation{Kind: OpReturn, HasResultValue: true, ResultValue: *v}
}

func FunctionCall(result *RegNum, retType Type, callee Value, args []Value) Operation {
	op := Operation{Kind: OpFunctionCall, RetType: retType, Callee: callee, Args: args}
	if result != nil {
		op.HasResult = true
		op.Result = *result
	}
	return op
}

func Arithmetic(dst RegNum, op ArithOp, lhs, rhs Value) Operation {
	return Operation{Kind: OpArithmetic, Dst: dst, ArithOp: op, Lhs: lhs, Rhs: rhs}
}

func Compare(dst RegNum, op CmpOp, lhs, rhs Value) Operation {
	return Operation{Kind: OpCompare, Dst: dst, CmpOp: op, Lhs: lhs, Rhs: rhs}
}

func GetElementPtr(dst RegNum, elemType Type, indices []Value) Operation {
	return Operation{Kind: OpGetElementPtr, Dst: dst, ElemType: elemType, Indices: indices}
}

func Load(dst RegNum, addr Value) Operation {
	return Operation{Kind: OpLoad, Dst: dst, Addr: addr}
}

func Store(value, addr Value) Operation {
	return Operation{Kind: OpStore, Store: value, Addr: addr}
}

func CastPtr(dst RegNum, dstType Type, src Value) Operation {
	return Operation{Kind: OpCastPtr, DstReg: dst, DstType: dstType, Src: src}
}

func CastPtrToInt(dst RegNum, src Value) Operation {
	return Operation{Kind: OpCastPtrToInt, DstReg: dst, Src: src}
}

func CastGlobalString(dst RegNum, byteLen int, global Value) Operation {
	return Operation{Kind: OpCastGlobalString, DstReg: dst, StrByteLen: byteLen, Src: global}
}

func Branch1(target Label) Operation {
	return Operation{Kind: OpBranch1, Target: target}
}

func Branch2(cond Value, t, f Label) Operation {
	return Operation{Kind: OpBranch2, Cond: cond, TrueL: t, FalseL: f}
}

// IsTerminator reports whether op may be the last operation of a block.
func (op Operation) IsTerminator() bool {
	switch op.Kind {
	case OpReturn, OpBranch1, OpBranch2:
		return true
	default:
		return false
	}
}

func (op Operation) String() string {
	switch op.Kind {
	case OpReturn:
		if op.HasResultValue {
			return fmt.Sprintf("ret %s %s", op.ResultValue.GetType(), op.ResultValue)
		}
		return "ret void"
	case OpFunctionCall:
		var b strings.Builder
		if op.HasResult {
			fmt.Fprintf(&b, "%%.r%d = ", op.Result)
		}
		fmt.Fprintf(&b, "call %s %s(", op.RetType, op.Callee)
		for i, a := range op.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s %s", a.GetType(), a)
		}
		b.WriteString(")")
		return b.String()
	case OpArithmetic:
		return fmt.Sprintf("%%.r%d = %s %s %s, %s", op.Dst, op.ArithOp, op.Lhs.GetType(), op.Lhs, op.Rhs)
	case OpCompare:
		cmpType := op.Lhs.GetType()
		if op.Lhs.Kind == VLitNullPtr {
			cmpType = op.Rhs.GetType()
		}
		return fmt.Sprintf("%%.r%d = icmp %s %s %s, %s", op.Dst, op.CmpOp, cmpType, op.Lhs, op.Rhs)
	case OpGetElementPtr:
		var b strings.Builder
		fmt.Fprintf(&b, "%%.r%d = getelementptr %s", op.Dst, op.ElemType)
		for _, v := range op.Indices {
			fmt.Fprintf(&b, ", %s %s", v.GetType(), v)
		}
		return b.String()
	case OpLoad:
		return fmt.Sprintf("%%.r%d = load %s, %s %s", op.Dst, pointeeOf(op.Addr), op.Addr.GetType(), op.Addr)
	case OpStore:
		return fmt.Sprintf("store %s %s, %s %s", op.Store.GetType(), op.Store, op.Addr.GetType(), op.Addr)
	case OpCastPtr:
		return fmt.Sprintf("%%.r%d = bitcast %s %s to %s", op.DstReg, op.Src.GetType(), op.Src, op.DstType)
	case OpCastPtrToInt:
		return fmt.Sprintf("%%.r%d = ptrtoint %s %s to i32", op.DstReg, op.Src.GetType(), op.Src)
	case OpCastGlobalString:
		return fmt.Sprintf("%%.r%d = getelementptr [%d x i8], [%d x i8]* %s, i32 0, i32 0",
			op.DstReg, op.StrByteLen, op.StrByteLen, op.Src)
	case OpBranch1:
		return fmt.Sprintf("br label %%.L%d", op.Target)
	case OpBranch2:
		return fmt.Sprintf("br i1 %s, label %%.L%d, label %%.L%d", op.Cond, op.TrueL, op.FalseL)
	default:
		return "<invalid-operation>"
	}
}

func pointeeOf(addr Value) Type {
	t := addr.GetType()
	if t.Kind == TPtr {
		return *t.Elem
	}
	return t
}
