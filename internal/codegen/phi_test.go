package codegen

import (
	"testing"

	"lattec/internal/ir"
)

func TestSameValueByKind(t *testing.T) {
	tests := []struct {
		name string
		a, b ir.Value
		want bool
	}{
		{"equal ints", ir.LitInt(1), ir.LitInt(1), true},
		{"different ints", ir.LitInt(1), ir.LitInt(2), false},
		{"equal registers", ir.Register(3, ir.Int()), ir.Register(3, ir.Int()), true},
		{"different registers", ir.Register(3, ir.Int()), ir.Register(4, ir.Int()), false},
		{"different kinds", ir.LitInt(1), ir.LitBool(true), false},
		{"both nulls always equal", ir.LitNullPtrUnresolved(), ir.LitNullPtrOf(ir.Int()), true},
		{"equal globals", ir.GlobalRegister("f", ir.Int()), ir.GlobalRegister("f", ir.Int()), true},
		{"different globals", ir.GlobalRegister("f", ir.Int()), ir.GlobalRegister("g", ir.Int()), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := sameValue(tt.a, tt.b); got != tt.want {
				t.Errorf("sameValue(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

// TestCalculateIfPhiSetForwardsIdenticalBindingWithoutPhi checks the
// optimization where a name left identically bound on both arms (e.g. never
// assigned by either) is forwarded by identity instead of wrapped in a
// needless phi.
func TestCalculateIfPhiSetForwardsIdenticalBindingWithoutPhi(t *testing.T) {
	b, entry := newEntryBuilder()
	b.env.declare(entry, "untouched", ir.LitInt(7))

	trueProxy := b.env.snapshotIntoProxy(entry)
	falseProxy := b.env.snapshotIntoProxy(entry)
	trueL := b.allocateBlock(trueProxy)
	falseL := b.allocateBlock(falseProxy)
	joinL := b.allocateBlock(entry)

	b.calculateIfPhiSet(entry, trueProxy, falseProxy, trueL, falseL, joinL)

	if len(b.block(joinL).Phis) != 0 {
		t.Fatalf("an untouched name should not generate a phi, got %d phis", len(b.block(joinL).Phis))
	}
	if got := b.env.lookup(joinL, "untouched"); got.Int != 7 {
		t.Errorf("untouched should forward straight through to the join, got %v", got)
	}
}

// TestCalculateIfPhiSetGeneratesPhiForDivergentBinding checks the general
// case: a name bound differently by each arm needs a real join-point phi
// with both arms' exact values and block labels.
func TestCalculateIfPhiSetGeneratesPhiForDivergentBinding(t *testing.T) {
	b, entry := newEntryBuilder()
	b.env.declare(entry, "x", ir.LitInt(0))

	trueProxy := b.env.snapshotIntoProxy(entry)
	falseProxy := b.env.snapshotIntoProxy(entry)
	trueL := b.allocateBlock(trueProxy)
	falseL := b.allocateBlock(falseProxy)
	b.env.update(trueProxy, "x", ir.LitInt(1))
	b.env.update(falseProxy, "x", ir.LitInt(2))
	joinL := b.allocateBlock(entry)

	b.calculateIfPhiSet(entry, trueProxy, falseProxy, trueL, falseL, joinL)

	phis := b.block(joinL).Phis
	if len(phis) != 1 {
		t.Fatalf("x diverges between arms, expected exactly one phi, got %d", len(phis))
	}
	ph := phis[0]
	if len(ph.Incoming) != 2 {
		t.Fatalf("expected 2 incoming arms, got %d", len(ph.Incoming))
	}
	byPred := map[ir.Label]ir.Value{}
	for _, inc := range ph.Incoming {
		byPred[inc.Pred] = inc.Value
	}
	if byPred[trueL].Int != 1 {
		t.Errorf("true arm's incoming value = %v, want LitInt(1)", byPred[trueL])
	}
	if byPred[falseL].Int != 2 {
		t.Errorf("false arm's incoming value = %v, want LitInt(2)", byPred[falseL])
	}
}

// TestLoopCondPhiStubRoundTrip exercises prepare/finalize together: the
// stub's pre-header and backedge arms must land on the condition block's
// own first and last recorded predecessors, in that order.
func TestLoopCondPhiStubRoundTrip(t *testing.T) {
	b, entry := newEntryBuilder()
	b.env.declare(entry, "i", ir.LitInt(0))

	condL := b.allocateBlock(entry)
	stubs := b.prepareLoopCondPhiStub(entry, condL)
	b.addBranch1(entry, condL)

	bodyL := b.allocateBlock(condL)
	b.env.update(bodyL, "i", ir.LitInt(99))
	b.addBranch1(bodyL, condL)

	b.finalizeLoopCondPhiStub(stubs, entry, bodyL, condL)

	phis := b.block(condL).Phis
	if len(phis) != 1 {
		t.Fatalf("expected 1 stubbed phi for i, got %d", len(phis))
	}
	ph := phis[0]
	if ph.Result != stubs["i"] {
		t.Errorf("the finalized phi should reuse the id prepareLoopCondPhiStub allocated, got %d want %d", ph.Result, stubs["i"])
	}
	byPred := map[ir.Label]ir.Value{}
	for _, inc := range ph.Incoming {
		byPred[inc.Pred] = inc.Value
	}
	if byPred[entry].Int != 0 {
		t.Errorf("pre-header arm should carry the pre-loop value 0, got %v", byPred[entry])
	}
	if byPred[bodyL].Int != 99 {
		t.Errorf("backedge arm should carry the body's exit value 99, got %v", byPred[bodyL])
	}
}
