package stats

import (
	"strings"
	"testing"

	"lattec/internal/ir"
)

// straightLineFunc is a two-block function with one argument and no phis,
// small enough that its exact counts are easy to check by hand.
func straightLineFunc() ir.Function {
	v := ir.LitInt(1)
	return ir.Function{
		Name:    "f",
		RetType: ir.Int(),
		Args:    []ir.Param{{Reg: 0, Typ: ir.Int()}},
		Blocks: []ir.Block{
			{
				Label: 0,
				Body: []ir.Operation{
					ir.Arithmetic(1, ir.Add, ir.Register(0, ir.Int()), v),
					ir.Branch1(1),
				},
			},
			{
				Label:        1,
				Predecessors: []ir.Label{0},
				Body: []ir.Operation{
					ir.Return(&v),
				},
			},
		},
	}
}

func TestSummarizeCountsBlocksAndInstructions(t *testing.T) {
	s := Summarize(straightLineFunc())

	if s.Blocks != 2 {
		t.Errorf("Blocks = %d, want 2", s.Blocks)
	}
	if s.Instructions != 3 {
		t.Errorf("Instructions = %d, want 3 (1 arithmetic + 1 branch + 1 return)", s.Instructions)
	}
	if s.Phis != 0 {
		t.Errorf("Phis = %d, want 0", s.Phis)
	}
	if s.MaxPredecessors != 1 {
		t.Errorf("MaxPredecessors = %d, want 1", s.MaxPredecessors)
	}
}

func TestSummarizeCountsRegistersByHighWaterMark(t *testing.T) {
	s := Summarize(straightLineFunc())
	if s.Registers != 2 {
		t.Errorf("Registers = %d, want 2 (arg r0, arithmetic result r1)", s.Registers)
	}
}

func TestSummarizeCountsPhis(t *testing.T) {
	fn := ir.Function{
		Name: "g",
		Blocks: []ir.Block{
			{
				Label: 0,
				Phis: []ir.PhiEntry{
					{Result: 0, Typ: ir.Int(), Incoming: []ir.PhiIncoming{
						{Value: ir.LitInt(1), Pred: 1},
						{Value: ir.LitInt(2), Pred: 2},
					}},
				},
				Body: []ir.Operation{ir.Return(nil)},
			},
		},
	}
	s := Summarize(fn)
	if s.Phis != 1 {
		t.Errorf("Phis = %d, want 1", s.Phis)
	}
	if s.Registers != 1 {
		t.Errorf("Registers = %d, want 1 (the phi result r0)", s.Registers)
	}
}

func TestStringIncludesEveryField(t *testing.T) {
	s := Stats{Name: "f", Blocks: 2, Instructions: 3, Phis: 1, Registers: 4}
	out := s.String()
	for _, want := range []string{"f", "2", "3", "1", "4"} {
		if !strings.Contains(out, want) {
			t.Errorf("String() = %q, missing %q", out, want)
		}
	}
}

func TestTotalsSumsAcrossFunctions(t *testing.T) {
	all := []Stats{
		{Name: "f", Blocks: 2, Instructions: 3, Phis: 0, Registers: 2, MaxPredecessors: 1},
		{Name: "g", Blocks: 1, Instructions: 1, Phis: 1, Registers: 1, MaxPredecessors: 2},
	}
	total := Totals(all)
	if total.Name != "program" {
		t.Errorf("Totals().Name = %q, want %q", total.Name, "program")
	}
	if total.Blocks != 3 || total.Instructions != 4 || total.Phis != 1 || total.Registers != 3 {
		t.Errorf("Totals() = %+v, want blocks=3 instructions=4 phis=1 registers=3", total)
	}
	if total.MaxPredecessors != 2 {
		t.Errorf("Totals().MaxPredecessors = %d, want 2 (the max across functions, not the sum)", total.MaxPredecessors)
	}
}
