package codegen

import "lattec/internal/ir"

// sameValue reports whether two values carry the same SSA identity — the
// test calculateIfPhiSet and the loop phi finalizer use to decide whether an
// incoming pair of edges needs a real join or can share one binding.
func sameValue(a, b ir.Value) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case ir.VLitInt:
		return a.Int == b.Int
	case ir.VLitBool:
		return a.Bool == b.Bool
	case ir.VLitNullPtr:
		return true
	case ir.VRegister:
		return a.Reg == b.Reg
	case ir.VGlobalRegister:
		return a.Name == b.Name
	default:
		return false
	}
}

// calculateIfPhiSet computes the join-point phi set for an if/if-else
// (spec.md §4.6). baselineFrame is the environment frame active just before
// the branch, whose visible names are the candidate phi set; trueProxy and
// falseProxy are the frames each arm's final bindings are read from —
// processCond passes the block each arm ended in, whose chain runs through
// the snapshot proxy taken for that arm before it was lowered (with no else
// arm that is the untouched false block, which still reads the pre-branch
// bindings). trueEndLabel/falseEndLabel are the actual block labels the
// join's two incoming edges originate from. The result — identity-forwarded
// or freshly phi'd — is declared into joinFrame for every candidate name.
func (b *FunctionBuilder) calculateIfPhiSet(baselineFrame, trueProxy, falseProxy, trueEndLabel, falseEndLabel, joinFrame ir.Label) {
	names := b.env.visibleNames(baselineFrame)
	join := b.block(joinFrame)
	for _, name := range names {
		vTrue := b.env.lookup(trueProxy, name)
		vFalse := b.env.lookup(falseProxy, name)
		if sameValue(vTrue, vFalse) {
			b.env.declare(joinFrame, name, vTrue)
			continue
		}
		typ := vTrue.GetType()
		reg := b.freshReg()
		join.Phis = append(join.Phis, ir.PhiEntry{
			Result: reg,
			Typ:    typ,
			Incoming: []ir.PhiIncoming{
				{Value: vTrue, Pred: trueEndLabel},
				{Value: vFalse, Pred: falseEndLabel},
			},
		})
		b.env.declare(joinFrame, name, ir.Register(reg, typ))
	}
}

// prepareLoopCondPhiStub pre-allocates a fresh SSA id for every name visible
// before a loop and shadows it into condFrame, one step ahead of lowering
// the condition or body, so references inside the loop already see the
// loop-carried register instead of the pre-loop value (spec.md §4.6,
// "phi-stubbing for loops"). The returned map records, per name, the id to
// finalize once the body's actual value is known.
func (b *FunctionBuilder) prepareLoopCondPhiStub(preHeaderFrame, condFrame ir.Label) map[string]ir.RegNum {
	stubs := map[string]ir.RegNum{}
	for _, name := range b.env.visibleNames(preHeaderFrame) {
		typ := b.env.lookup(preHeaderFrame, name).GetType()
		reg := b.freshReg()
		stubs[name] = reg
		b.env.declare(condFrame, name, ir.Register(reg, typ))
	}
	return stubs
}

// finalizeLoopCondPhiStub completes the phi nodes prepareLoopCondPhiStub
// stubbed out, once the loop body has been fully lowered. bodyEndProxy is
// the frame the backedge values are read from: the block the body ended in,
// whose chain runs through the snapshot proxy the body was lowered behind.
// The backedge's actual source block is not necessarily the block the body
// lowering started in — the body may itself branch internally — so it is
// recovered from condLabel's own predecessor list: the condition block
// gains one or two incoming edges over the lifetime of the loop, the
// pre-header's (added first, by the initial jump into the condition) and,
// unless the body always terminates, the backedge's (added last, whatever
// block the body lowering actually ended on). With only the pre-header edge,
// each phi gets that single arm.
func (b *FunctionBuilder) finalizeLoopCondPhiStub(stubs map[string]ir.RegNum, preHeaderFrame, bodyEndProxy, condLabel ir.Label) {
	cond := b.block(condLabel)
	preds := cond.Predecessors
	preHeaderLabel := preds[0]
	bodyEndLabel := preds[len(preds)-1]

	for name, reg := range stubs {
		vPre := b.env.lookup(preHeaderFrame, name)
		incoming := []ir.PhiIncoming{{Value: vPre, Pred: preHeaderLabel}}
		if len(preds) > 1 {
			vPost := b.env.lookup(bodyEndProxy, name)
			incoming = append(incoming, ir.PhiIncoming{Value: vPost, Pred: bodyEndLabel})
		}
		cond.Phis = append(cond.Phis, ir.PhiEntry{
			Result:   reg,
			Typ:      vPre.GetType(),
			Incoming: incoming,
		})
	}
}
