package sendcheck

import (
	"regionck/internal/diag"
	"regionck/internal/lir"
	"regionck/internal/regions"
	"regionck/internal/trace"
	"regionck/internal/types"
)

// Options configures a check.
type Options struct {
	// Tracer receives unhandled-instruction and debug events; nil disables.
	Tracer trace.Tracer
	// RequirementsPerSend caps the racy access sites reported per send.
	// Zero means the default of 5.
	RequirementsPerSend int
}

// checker carries the per-function analysis state. Checkers are single-use
// and never mutate the function; independent functions may be checked from
// different goroutines with separate checkers.
type checker struct {
	fn       *lir.Func
	types    *types.Interner
	reporter diag.Reporter
	tracer   trace.Tracer
	opts     Options

	preds [][]lir.BlockID

	canon    map[lir.ValueID]lir.ValueID
	captured map[lir.ValueID]struct{}
	reg      *registry

	states []blockState

	// entryHook, when set, observes every entry partition rewrite during
	// solve. Tests use it to assert entries only move up the lattice.
	entryHook func(bid lir.BlockID, prev, next *regions.Partition)
}

func newChecker(fn *lir.Func, tin *types.Interner, rep diag.Reporter, opts Options) *checker {
	return &checker{
		fn:       fn,
		types:    tin,
		reporter: rep,
		tracer:   opts.Tracer,
		opts:     opts,
		preds:    fn.Preds(),
		canon:    make(map[lir.ValueID]lir.ValueID),
		captured: make(map[lir.ValueID]struct{}),
		reg:      newRegistry(),
		states:   make([]blockState, len(fn.Blocks)),
	}
}

// CheckFunc runs the region analysis over one function and reports findings
// to rep. The function must have passed lir.Validate.
func CheckFunc(fn *lir.Func, tin *types.Interner, rep diag.Reporter, opts Options) {
	if len(fn.Blocks) == 0 {
		return
	}
	c := newChecker(fn, tin, rep, opts)
	c.markCaptured()
	c.solve()
	c.dumpStates()
	c.diagnose()
}

// Enabled reports whether a module opted into region checking: both the
// deferred thread-safety mode and the marker protocol must be present.
func Enabled(m *lir.Module) bool {
	return m.Features.DeferredThreadSafety && m.Features.MarkerProtocol
}

// CheckModule checks every function of the module in declaration order.
// Callers wanting parallelism run CheckFunc per function themselves.
func CheckModule(m *lir.Module, tin *types.Interner, rep diag.Reporter, opts Options) {
	if !Enabled(m) {
		return
	}
	for _, fn := range m.Funcs {
		CheckFunc(fn, tin, rep, opts)
	}
}
