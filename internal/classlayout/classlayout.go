// Package classlayout is the class-layout registry the generator queries
// for field and vtable slot indices (spec.md §1, "class-layout registry
// that computes field/method offsets and vtable shape"). Slot 0 of every
// object is the vtable pointer; field indices start at 1 (spec.md §6,
// "Class-layout contract").
package classlayout

import (
	"lattec/internal/ir"
	"lattec/internal/semantics"

	"github.com/pkg/errors"
)

// Layout is one class's resolved slot assignment.
type Layout struct {
	Name   string
	Fields []fieldSlot   // index 0 corresponds to field number 1
	Vtable []methodSlot  // vtable slot order; Vtable[i] is vtable slot i, starting at 0
}

type fieldSlot struct {
	Name string
	Typ  ir.Type
}

type methodSlot struct {
	Name       string // method name as declared
	OwnerClass string // class whose implementation fills the slot (linked as OwnerClass.Name)
	Typ        ir.Type
}

// Registry computes and caches Layout for every class reachable from a
// GlobalContext, in parent-before-child order so subclass vtables extend
// their parent's prefix (a prerequisite for the covariant `this`-cast
// dispatch of spec.md §4.4).
type Registry struct {
	gctx    *semantics.GlobalContext
	layouts map[string]*Layout
}

// NewRegistry builds layouts for every class in classNames, resolving
// parents through gctx. classNames must list every class exactly once;
// order does not matter, dependencies are resolved recursively.
func NewRegistry(gctx *semantics.GlobalContext, classNames []string) (*Registry, error) {
	r := &Registry{gctx: gctx, layouts: map[string]*Layout{}}
	for _, name := range classNames {
		if _, err := r.layoutFor(name); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) layoutFor(name string) (*Layout, error) {
	if l, ok := r.layouts[name]; ok {
		return l, nil
	}

	desc, ok := r.gctx.ClassDescription(name)
	if !ok {
		return nil, errors.Wrapf(errUnknownClass, "class %q", name)
	}

	var parentLayout *Layout
	if desc.Parent != nil {
		var err error
		parentLayout, err = r.layoutFor(desc.Parent.Name)
		if err != nil {
			return nil, err
		}
	}

	l := &Layout{Name: name}
	if parentLayout != nil {
		l.Fields = append(l.Fields, parentLayout.Fields...)
		l.Vtable = append(l.Vtable, parentLayout.Vtable...)
	}

	byMethodName := map[string]int{}
	for i, m := range l.Vtable {
		byMethodName[m.Name] = i
	}

	for _, f := range desc.Fields {
		l.Fields = append(l.Fields, fieldSlot{Name: f.Name, Typ: ir.FromSourceType(f.Type)})
	}
	for _, m := range desc.Methods {
		methodType := methodPointerType(name, m)
		if idx, overridden := byMethodName[m.Name]; overridden {
			// override: same slot, narrower/overridden signature, but the
			// slot's declared `this` type stays the one from the class
			// that first introduced the slot so ancestor-typed vtables
			// keep a uniform element type.
			l.Vtable[idx] = methodSlot{Name: m.Name, OwnerClass: name, Typ: l.Vtable[idx].Typ}
			_ = methodType
			continue
		}
		byMethodName[m.Name] = len(l.Vtable)
		l.Vtable = append(l.Vtable, methodSlot{Name: m.Name, OwnerClass: name, Typ: methodType})
	}

	r.layouts[name] = l
	return l, nil
}

var errUnknownClass = errors.New("classlayout: unknown class")

// FieldIndexAndType returns a field's 1-based slot index and IR type.
func (r *Registry) FieldIndexAndType(class, field string) (int, ir.Type, error) {
	l, ok := r.layouts[class]
	if !ok {
		return 0, ir.Type{}, errors.Wrapf(errUnknownClass, "class %q", class)
	}
	for i, f := range l.Fields {
		if f.Name == field {
			return i + 1, f.Typ, nil
		}
	}
	return 0, ir.Type{}, errors.Wrapf(errUnknownField, "%s.%s", class, field)
}

var errUnknownField = errors.New("classlayout: unknown field")

// MethodIndexAndType returns a method's 0-based vtable slot index and its
// Ptr(Func(ret, [this, args...])) type, with `this` typed to whichever
// ancestor class first declared the slot (the covariant-dispatch base
// type spec.md §4.4 casts `this` to when calling through an older slot).
func (r *Registry) MethodIndexAndType(class, method string) (int, ir.Type, error) {
	l, ok := r.layouts[class]
	if !ok {
		return 0, ir.Type{}, errors.Wrapf(errUnknownClass, "class %q", class)
	}
	for i, m := range l.Vtable {
		if m.Name == method {
			return i, m.Typ, nil
		}
	}
	return 0, ir.Type{}, errors.Wrapf(errUnknownMethod, "%s.%s", class, method)
}

var errUnknownMethod = errors.New("classlayout: unknown method")

// VtableSlots returns the vtable entries for a class in slot order, for
// assembling ir.Class.Vtable.
func (r *Registry) VtableSlots(class string) ([]ir.VtableSlot, error) {
	l, ok := r.layouts[class]
	if !ok {
		return nil, errors.Wrapf(errUnknownClass, "class %q", class)
	}
	out := make([]ir.VtableSlot, len(l.Vtable))
	for i, m := range l.Vtable {
		out[i] = ir.VtableSlot{Typ: m.Typ, Name: ir.FormatMethodName(m.OwnerClass, m.Name)}
	}
	return out, nil
}

// FieldTypes returns field types in slot order (slot 1..N), for assembling
// ir.Class.Fields (slot 0, the vtable pointer, is prepended by the caller).
func (r *Registry) FieldTypes(class string) ([]ir.Type, error) {
	l, ok := r.layouts[class]
	if !ok {
		return nil, errors.Wrapf(errUnknownClass, "class %q", class)
	}
	out := make([]ir.Type, len(l.Fields))
	for i, f := range l.Fields {
		out[i] = f.Typ
	}
	return out, nil
}

func methodPointerType(definingClass string, m semantics.FunDesc) ir.Type {
	return ir.MethodPointerOf(definingClass, m.RetType, m.ArgTypes)
}

// GetSizeOfPrimitive returns the byte size llvm-style sizeof would report
// for an IR element type, used by `new T[n]`'s element-size argument to
// _bltn_alloc_array. Class and function-pointer element types are the
// platform pointer width.
func GetSizeOfPrimitive(t ir.Type) int32 {
	switch t.Kind {
	case ir.TInt:
		return 4
	case ir.TBool, ir.TChar:
		return 1
	default:
		return 8
	}
}
