// Package runtime implements the embeddable library surface of spec.md
// §6: startup/shutdown/evaluate/rescue/release/bind/variadic_eval, backed
// by the boot/eval/context/gcguard/datastack machinery built underneath.
package runtime

import (
	"github.com/r3n/ren-c-sub001/internal/boot"
	"github.com/r3n/ren-c-sub001/internal/context"
	"github.com/r3n/ren-c-sub001/internal/eval"
	"github.com/r3n/ren-c-sub001/internal/feed"
	"github.com/r3n/ren-c-sub001/internal/gcguard"
	"github.com/r3n/ren-c-sub001/internal/rlog"
	"github.com/r3n/ren-c-sub001/internal/scanner"
	"github.com/r3n/ren-c-sub001/internal/throwtrap"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// Options configures Startup (SPEC_FULL.md §2's "embeddable library's
// startup() takes a runtime.Options struct").
type Options struct {
	BootBlobPath    string // empty uses the embedded DefaultBlob
	MaxCallDepth    int
	SignalCheckEach int // ballast units between GC signal checks
	RecycleBallast  int
}

// DefaultOptions mirrors the teacher's package-level defaults convention
// (cmd/sentra/main.go's VERSION/BuildDate constants).
func DefaultOptions() Options {
	return Options{MaxCallDepth: 100_000, SignalCheckEach: 1 << 16, RecycleBallast: 1 << 20}
}

// Runtime is one "task" (spec.md §5: "all live on a single conceptual
// task that is initialized at startup and torn down at shutdown").
type Runtime struct {
	opts    Options
	boot    *boot.Runtime
	guards  *gcguard.Guards
	roots   *gcguard.Roots
	ballast *gcguard.Ballast
	tbl     *value.SymbolTable
	ev      *eval.Evaluator
	handles map[int]*value.Cell
	nextID  int
}

// Startup boots the blob named by opts (or the embedded default) and
// returns a live Runtime. It is the one "process-wide state" constructor
// spec.md §5 describes.
func Startup(opts Options) (*Runtime, error) {
	rlog.Infof("boot", "starting runtime (max-call-depth=%d)", opts.MaxCallDepth)

	blob, err := boot.DefaultBlob()
	if err != nil {
		return nil, err
	}
	bootRT, err := boot.Boot(blob)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{
		opts:    opts,
		boot:    bootRT,
		guards:  gcguard.NewGuards(),
		roots:   gcguard.NewRoots(),
		ballast: gcguard.NewBallast(int64(opts.RecycleBallast)),
		tbl:     value.NewSymbolTable(),
		ev:      eval.New(),
		handles: make(map[int]*value.Cell),
	}
	rlog.Infof("boot", "runtime ready, phase=%s", bootRT.Phase)
	return rt, nil
}

// Shutdown tears a Runtime down. spec.md §4.B: "Unbalanced guard on
// shutdown raises a debug assertion; in release, leak is acceptable to
// exit path."
func (rt *Runtime) Shutdown() error {
	if rt.guards.Depth() != 0 {
		return throwtrap.NewFail(throwtrap.NoCatch, "no-catch: unbalanced guard stack at shutdown")
	}
	rlog.Infof("boot", "runtime shutdown, handles outstanding=%d", len(rt.handles))
	return nil
}

// Evaluate scans and runs text against the global anchor context,
// returning the value of the last expression.
func (rt *Runtime) Evaluate(text string) (value.Cell, error) {
	s := scanner.New(text, "evaluate", rt.tbl)
	cells, err := s.ScanToEnd()
	if err != nil {
		return value.Cell{}, err
	}
	arr := value.NewArray(value.FlavorArray, len(cells))
	for _, c := range cells {
		arr.Push(c)
	}
	return rt.ev.DoArray(arr, &eval.Env{Ctx: rt.boot.Globals})
}

// Rescue runs thunk, converting a panic carrying a *throwtrap.Panic (true
// internal-consistency violations per spec.md §7) into an error rather
// than letting it escape, and surfacing an ordinary Fail/Throw error
// unchanged -- the embeddable API's one blanket safety net.
func (rt *Runtime) Rescue(thunk func() (value.Cell, error)) (result value.Cell, err error) {
	defer func() {
		if r := recover(); r != nil {
			if p, ok := r.(*throwtrap.Panic); ok {
				err = throwtrap.NewFail(throwtrap.NoCatch, "no-catch: "+p.String())
				return
			}
			panic(r)
		}
	}()
	return thunk()
}

// Release forgets a previously-bound API handle, the host-visible
// counterpart of internal/gcguard's managed/unmanaged transition: once a
// handle is released, the GC is free to collect it when unreachable.
func (rt *Runtime) Release(handle int) {
	delete(rt.handles, handle)
}

// Bind assigns value v to name in the global anchor context, appending it
// if the name is not already bound. Returns a reusable handle id.
func (rt *Runtime) Bind(name string, v value.Cell) int {
	sym := rt.tbl.Intern(name)
	rt.boot.Globals.Set(sym, v, true)
	rt.nextID++
	rt.handles[rt.nextID] = &v
	return rt.nextID
}

// Fragment is one piece of a variadic evaluation: either already-made
// value handles or raw UTF-8 text to be scanned lazily, interleaved in
// call order (spec.md §6: "accepts interleaved UTF-8 strings and
// already-made value handles").
type Fragment struct {
	Text string
	Made *value.Cell
}

// VariadicEval runs an interleaved sequence of fragments as one
// expression stream, per spec.md §4.G's Source abstraction. Each text
// fragment is scanned eagerly here (rather than through feed's lazy
// ScanFunc hook) since every fragment is already in hand at the call
// site; feed.NewVariadicSource's on-demand scanning exists for the
// C-variadic-call case this library wrapper doesn't need.
func (rt *Runtime) VariadicEval(fragments ...Fragment) (value.Cell, error) {
	splices := make([]feed.SplicedFragment, 0, len(fragments))
	for _, frag := range fragments {
		if frag.Made != nil {
			splices = append(splices, feed.SplicedFragment{Made: true, Cell: *frag.Made})
			continue
		}
		s := scanner.New(frag.Text, "variadic", rt.tbl)
		cells, err := s.ScanToEnd()
		if err != nil {
			return value.Cell{}, err
		}
		for _, c := range cells {
			splices = append(splices, feed.SplicedFragment{Made: true, Cell: c})
		}
	}

	noScan := func(string) feed.Source { return nil }
	src := feed.NewVariadicSource(splices, noScan, nil)
	f := feed.New(src)
	var out value.Cell
	value.InitVoid(&out, false)
	for !f.AtEnd() {
		arr := value.NewArray(value.FlavorArray, 1)
		arr.Push(*f.Current())
		f.FetchNext()
		result, err := rt.ev.DoArray(arr, &eval.Env{Ctx: rt.boot.Globals})
		if err != nil {
			return value.Cell{}, err
		}
		out = result
	}
	return out, nil
}

// Context exposes the global anchor context for hosts that want direct
// access (e.g. to pre-populate bindings before Evaluate calls).
func (rt *Runtime) Context() *context.Context { return rt.boot.Globals }
