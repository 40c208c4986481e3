package sendcheck

import (
	"fmt"
	"sort"

	"regionck/internal/diag"
	"regionck/internal/lir"
	"regionck/internal/regions"
)

// defaultRequirementsPerSend bounds how many racy access sites get reported
// per send: past a handful, more sites stop being informative.
const defaultRequirementsPerSend = 5

type argSend struct {
	op  regions.Op
	elt regions.Elt
}

// diagnose replays every reached block's ops against its solved entry
// partition with failure hooks armed, then emits the accumulated findings.
func (c *checker) diagnose() {
	rt := newRaceTracer(c)
	var argSends []argSend
	seenArg := make(map[regions.Op]struct{})

	for i := range c.states {
		st := &c.states[i]
		if !st.reached {
			continue
		}
		bid := lir.BlockID(i)
		p := st.entry.Clone()
		for idx, op := range c.blockOps(bid) {
			hooks := &regions.Hooks{
				Failure: func(op regions.Op, x regions.Elt) {
					rt.traceUse(bid, idx, op, x)
				},
				ConsumeNonConsumable: func(op regions.Op, x regions.Elt) {
					if _, ok := seenArg[op]; ok {
						return
					}
					seenArg[op] = struct{}{}
					argSends = append(argSends, argSend{op: op, elt: x})
				},
				NonConsumable: c.reg.isArg,
			}
			p.Apply(op, hooks)
		}
	}

	c.emitArgSends(argSends)
	c.emitRaces(rt.acc)
}

// opLess orders ops by source location, then by position in the function.
func (c *checker) opLess(a, b regions.Op) bool {
	sa, sb := c.fn.SpanAt(a.Origin), c.fn.SpanAt(b.Origin)
	if sa != sb {
		return sa.Before(sb)
	}
	if a.Origin.Block != b.Origin.Block {
		return a.Origin.Block < b.Origin.Block
	}
	if a.Origin.Index != b.Origin.Index {
		return a.Origin.Index < b.Origin.Index
	}
	if a.Kind != b.Kind {
		return a.Kind < b.Kind
	}
	if a.A != b.A {
		return a.A < b.A
	}
	return a.B < b.B
}

// eltName names an element for diagnostics, preferring the declared source
// name over the value number.
func (c *checker) eltName(e regions.Elt) string {
	v := c.reg.value(e)
	if val := c.fn.Value(v); val != nil && val.Name != "" {
		return val.Name
	}
	return fmt.Sprintf("v%d", v)
}

func (c *checker) emitArgSends(sends []argSend) {
	sort.SliceStable(sends, func(i, j int) bool {
		return c.opLess(sends[i].op, sends[j].op)
	})
	for _, s := range sends {
		msg := fmt.Sprintf(
			"call sends '%s' across an isolation boundary, but it belongs to this function's argument region",
			c.eltName(s.elt))
		diag.ReportError(c.reporter, diag.RaceSendIsolatedRegion, c.fn.SpanAt(s.op.Origin), msg).Emit()
	}
}

func (c *checker) emitRaces(acc *accumulator) {
	limit := c.opts.RequirementsPerSend
	if limit <= 0 {
		limit = defaultRequirementsPerSend
	}

	sends := make([]regions.Op, 0, len(acc.reqs))
	for op := range acc.reqs {
		sends = append(sends, op)
	}
	sort.Slice(sends, func(i, j int) bool { return c.opLess(sends[i], sends[j]) })

	for _, send := range sends {
		type reqAt struct {
			op   regions.Op
			dist int
		}
		reqs := make([]reqAt, 0, len(acc.reqs[send]))
		for op, d := range acc.reqs[send] {
			reqs = append(reqs, reqAt{op: op, dist: d})
		}
		sort.Slice(reqs, func(i, j int) bool {
			if reqs[i].dist != reqs[j].dist {
				return reqs[i].dist < reqs[j].dist
			}
			return c.opLess(reqs[i].op, reqs[j].op)
		})

		shown := len(reqs)
		if shown > limit {
			shown = limit
		}
		hidden := len(reqs) - shown

		accessWord := "access"
		if shown != 1 {
			accessWord = "accesses"
		}
		msg := fmt.Sprintf("sending '%s' across an isolation boundary risks a data race with %d later %s",
			c.eltName(send.A), shown, accessWord)
		if hidden > 0 {
			msg += fmt.Sprintf(" (%d more not shown)", hidden)
		}

		diag.ReportError(c.reporter, diag.RaceSendYieldsRace, c.fn.SpanAt(send.Origin), msg).Emit()

		for _, r := range reqs[:shown] {
			useMsg := fmt.Sprintf("access to '%s' here may race: its region was sent by the earlier call",
				c.eltName(r.op.A))
			diag.ReportWarning(c.reporter, diag.RacePossibleRacyAccess, c.fn.SpanAt(r.op.Origin), useMsg).Emit()
		}
	}
}
