package classlayout

import (
	"testing"

	"lattec/internal/ast"
	"lattec/internal/ir"
	"lattec/internal/semantics"
)

func shapeCircleProgram() ast.Program {
	return ast.Program{
		Classes: []ast.ClassDef{
			{
				Name:   "Shape",
				Fields: []ast.FieldDef{{Type: ast.Int(), Name: "id"}},
				Methods: []ast.FunDef{
					{Name: "area", RetType: ast.Int()},
					{Name: "name", RetType: ast.String()},
				},
			},
			{
				Name:   "Circle",
				Parent: "Shape",
				Fields: []ast.FieldDef{{Type: ast.Int(), Name: "radius"}},
				Methods: []ast.FunDef{
					{Name: "area", RetType: ast.Int()},
				},
			},
		},
	}
}

func newRegistry(t *testing.T) *Registry {
	t.Helper()
	prog := shapeCircleProgram()
	gctx, err := semantics.NewGlobalContext(prog)
	if err != nil {
		t.Fatalf("NewGlobalContext: %v", err)
	}
	reg, err := NewRegistry(gctx, []string{"Shape", "Circle"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestFieldIndexAndTypeInheritsParentFieldsFirst(t *testing.T) {
	reg := newRegistry(t)

	idx, typ, err := reg.FieldIndexAndType("Shape", "id")
	if err != nil {
		t.Fatalf("FieldIndexAndType(Shape, id): %v", err)
	}
	if idx != 1 {
		t.Errorf("Shape.id slot = %d, want 1 (slot 0 is always the vtable pointer)", idx)
	}
	_ = typ

	idx, _, err = reg.FieldIndexAndType("Circle", "radius")
	if err != nil {
		t.Fatalf("FieldIndexAndType(Circle, radius): %v", err)
	}
	if idx != 2 {
		t.Errorf("Circle.radius slot = %d, want 2 (1 is Shape's inherited id)", idx)
	}

	idx, _, err = reg.FieldIndexAndType("Circle", "id")
	if err != nil {
		t.Fatalf("Circle should inherit Shape's id field: %v", err)
	}
	if idx != 1 {
		t.Errorf("Circle.id (inherited) slot = %d, want 1", idx)
	}
}

func TestMethodIndexAndTypeOverrideKeepsSlotAndOwner(t *testing.T) {
	reg := newRegistry(t)

	shapeIdx, shapeType, err := reg.MethodIndexAndType("Shape", "area")
	if err != nil {
		t.Fatalf("MethodIndexAndType(Shape, area): %v", err)
	}

	circleIdx, circleType, err := reg.MethodIndexAndType("Circle", "area")
	if err != nil {
		t.Fatalf("MethodIndexAndType(Circle, area): %v", err)
	}

	if circleIdx != shapeIdx {
		t.Errorf("Circle.area overrides Shape.area, so it should keep the same slot: got %d, want %d", circleIdx, shapeIdx)
	}
	if !circleType.Equal(shapeType) {
		t.Errorf("an override's slot type must stay the ancestor's signature so the vtable element type is uniform: got %v, want %v", circleType, shapeType)
	}

	nameIdx, _, err := reg.MethodIndexAndType("Circle", "name")
	if err != nil {
		t.Fatalf("Circle should inherit Shape's name method: %v", err)
	}
	if nameIdx == circleIdx {
		t.Errorf("name and area must not share a slot")
	}
}

func TestVtableSlotsNameOverrideByDeclaringClass(t *testing.T) {
	reg := newRegistry(t)

	slots, err := reg.VtableSlots("Circle")
	if err != nil {
		t.Fatalf("VtableSlots(Circle): %v", err)
	}

	found := false
	for _, s := range slots {
		if s.Name == "Circle.area" {
			found = true
		}
		if s.Name == "Shape.area" {
			t.Errorf("Circle overrides area, its vtable should link to Circle.area, not Shape.area")
		}
	}
	if !found {
		t.Errorf("expected a Circle.area slot in Circle's vtable, got %+v", slots)
	}
}

func TestVtableSlotsUnoverriddenMethodKeepsOwner(t *testing.T) {
	reg := newRegistry(t)

	slots, err := reg.VtableSlots("Circle")
	if err != nil {
		t.Fatalf("VtableSlots(Circle): %v", err)
	}
	found := false
	for _, s := range slots {
		if s.Name == "Shape.name" {
			found = true
		}
	}
	if !found {
		t.Errorf("Circle never overrides name, its vtable slot should still link to Shape.name, got %+v", slots)
	}
}

func TestFieldTypesOrderMatchesSlotIndices(t *testing.T) {
	reg := newRegistry(t)
	fields, err := reg.FieldTypes("Circle")
	if err != nil {
		t.Fatalf("FieldTypes(Circle): %v", err)
	}
	if len(fields) != 2 {
		t.Fatalf("Circle should have 2 fields total (inherited id + own radius), got %d", len(fields))
	}
}

func TestUnknownClassAndMemberErrors(t *testing.T) {
	reg := newRegistry(t)

	if _, _, err := reg.FieldIndexAndType("Triangle", "x"); err == nil {
		t.Error("expected an error looking up a field on an unknown class")
	}
	if _, _, err := reg.FieldIndexAndType("Shape", "nonexistent"); err == nil {
		t.Error("expected an error looking up an unknown field")
	}
	if _, _, err := reg.MethodIndexAndType("Shape", "nonexistent"); err == nil {
		t.Error("expected an error looking up an unknown method")
	}
}

func TestGetSizeOfPrimitive(t *testing.T) {
	tests := []struct {
		name string
		typ  ast.Type
		want int32
	}{
		{"int", ast.Int(), 4},
		{"bool", ast.Bool(), 1},
		{"class pointer", ast.ClassT("Shape"), 8},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetSizeOfPrimitive(ir.FromSourceType(tt.typ))
			if got != tt.want {
				t.Errorf("GetSizeOfPrimitive(%v) = %d, want %d", tt.typ, got, tt.want)
			}
		})
	}
}
