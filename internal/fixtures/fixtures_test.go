package fixtures

import "testing"

func TestAllListsEveryScenarioOnce(t *testing.T) {
	want := []string{"S1", "S2", "S3", "S4", "S5", "S6"}
	all := All()
	if len(all) != len(want) {
		t.Fatalf("All() returned %d scenarios, want %d", len(all), len(want))
	}
	for i, sc := range all {
		if sc.Name != want[i] {
			t.Errorf("All()[%d].Name = %q, want %q", i, sc.Name, want[i])
		}
	}
}

func TestS6DeclaresCircleExtendingShape(t *testing.T) {
	prog := S6()
	if len(prog.Classes) != 2 {
		t.Fatalf("S6 should declare exactly 2 classes, got %d", len(prog.Classes))
	}
	found := false
	for _, cl := range prog.Classes {
		if cl.Name == "Circle" {
			found = true
			if cl.Parent != "Shape" {
				t.Errorf("Circle.Parent = %q, want %q", cl.Parent, "Shape")
			}
		}
	}
	if !found {
		t.Error("S6 should declare a Circle class")
	}
}

func TestS3DeclaresLoopCarriedLocals(t *testing.T) {
	prog := S3()
	fn := prog.Functions[0]
	if len(fn.Body.Stmts) != 4 {
		t.Fatalf("S3's body should have 4 statements (decl s, decl i, while, return), got %d", len(fn.Body.Stmts))
	}
}
