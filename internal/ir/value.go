package ir

import "fmt"

// Label identifies a basic block; it is a dense integer over the owning
// function. Proxy-frame labels (see package codegen) are drawn from a
// disjoint, descending range and never appear as a Block.Label.
type Label uint32

// RegNum is a function-local SSA value identifier.
type RegNum uint32

// GlobalStrNum indexes a string interned into the program's global-string
// table.
type GlobalStrNum uint32

// ValueKind tags the variant of a Value.
type ValueKind int

const (
	VLitInt ValueKind = iota
	VLitBool
	VLitNullPtr
	VRegister
	VGlobalRegister
)

// Value is one of: LitInt, LitBool, LitNullPtr(optional resolved type),
// Register (function-local SSA id) or GlobalRegister (linker-visible
// symbol). GetType is total over all five variants.
type Value struct {
	Kind ValueKind

	Int  int32
	Bool bool

	// NullType is the resolved pointer type of a LitNullPtr, or nil if the
	// null is not yet resolved by an enclosing assignment or cast.
	NullType *Type

	Reg  RegNum
	Name string // GlobalRegister symbol name

	// Typ is the static type of Register/GlobalRegister values.
	Typ Type
}

func LitInt(n int32) Value { return Value{Kind: VLitInt, Int: n} }
func LitBool(b bool) Value { return Value{Kind: VLitBool, Bool: b} }

// LitNullPtrUnresolved is `null` before its type is known from context.
func LitNullPtrUnresolved() Value { return Value{Kind: VLitNullPtr} }

func LitNullPtrOf(t Type) Value { return Value{Kind: VLitNullPtr, NullType: &t} }

func Register(reg RegNum, t Type) Value { return Value{Kind: VRegister, Reg: reg, Typ: t} }

func GlobalRegister(name string, t Type) Value {
	return Value{Kind: VGlobalRegister, Name: name, Typ: t}
}

// GetType is total: an unresolved LitNullPtr reports Ptr(Char), matching the
// original implementation's note that "void* is illegal" as a standalone
// type — the true type is only known to the caller driving resolution.
func (v Value) GetType() Type {
	switch v.Kind {
	case VLitInt:
		return Int()
	case VLitBool:
		return Bool()
	case VLitNullPtr:
		if v.NullType != nil {
			return *v.NullType
		}
		return StringType()
	case VRegister, VGlobalRegister:
		return v.Typ
	default:
		panic(fmt.Sprintf("ir: invalid value kind %d", v.Kind))
	}
}

// IsUnresolvedNull reports whether v is `null` with no type resolved yet —
// the "undefined outside a cast/assignment" case flagged by spec.md's Open
// Questions. Callers that would otherwise leak this value past a cast or
// assignment boundary should reject it defensively.
func (v Value) IsUnresolvedNull() bool {
	return v.Kind == VLitNullPtr && v.NullType == nil
}

func (v Value) String() string {
	switch v.Kind {
	case VLitInt:
		return fmt.Sprintf("%d", v.Int)
	case VLitBool:
		if v.Bool {
			return "1"
		}
		return "0"
	case VLitNullPtr:
		return "null"
	case VRegister:
		return fmt.Sprintf("%%.r%d", v.Reg)
	case VGlobalRegister:
		return "@" + v.Name
	default:
		return "<invalid-value>"
	}
}
