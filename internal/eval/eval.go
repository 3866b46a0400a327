// Package eval implements the evaluator core of spec.md §4.H: the
// expression-step state machine, the argument-fulfillment sub-machine, and
// definitional RETURN. It is the one package that imports value, context,
// action, feed, callstack and throwtrap together, since only here do all
// of those concerns meet.
package eval

import (
	"github.com/r3n/ren-c-sub001/internal/action"
	"github.com/r3n/ren-c-sub001/internal/callstack"
	"github.com/r3n/ren-c-sub001/internal/context"
	"github.com/r3n/ren-c-sub001/internal/feed"
	"github.com/r3n/ren-c-sub001/internal/throwtrap"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// Env is the word-resolution chain a step consults: LET patches first,
// then the anchor context (spec.md §4.E).
type Env struct {
	Ctx     *context.Context
	Patches *context.Patch
}

func (e *Env) lookup(sym *value.Symbol) (*value.Cell, bool) {
	return context.Chain(e.Patches, e.Ctx, sym)
}

// Bind prepends a LET patch in front of this env's chain, returning a new
// Env (the outer env is untouched, matching spec.md §4.E's "binding never
// mutates the structure of live arrays").
func (e *Env) Bind(sym *value.Symbol, v value.Cell) *Env {
	return &Env{Ctx: e.Ctx, Patches: context.NewPatch(sym, v, e.Patches)}
}

// Evaluator runs expression steps against one call-stack chain.
type Evaluator struct {
	root *callstack.Frame
}

// New creates an Evaluator with a fresh root (boot sentinel) frame.
func New() *Evaluator { return &Evaluator{root: callstack.Root()} }

// DoArray evaluates every expression in arr in sequence, in env, and
// returns the value of the last one (spec.md §4.H's entry contract run to
// exhaustion, the shape evalPrefix's GROUP case and a top-level program
// both need).
func (ev *Evaluator) DoArray(arr *value.Series, env *Env) (value.Cell, error) {
	f := feed.New(feed.NewArraySource(arr, 0, nil))
	var out value.Cell
	value.InitVoid(&out, false)
	for !f.AtEnd() {
		stale, thrown, err := ev.step(f, env, &out)
		if err != nil {
			return value.Cell{}, err
		}
		if thrown != nil {
			return value.Cell{}, thrown
		}
		_ = stale
	}
	return out, nil
}

// Step runs one expression step, exported for callers outside this package
// that need to walk a feed element-by-element with invisible-result
// tracking instead of going through DoArray's "keep only the last value"
// contract (e.g. internal/boot's REDUCE, which collects every non-stale
// result).
func (ev *Evaluator) Step(f *feed.Feed, env *Env, out *value.Cell) (stale bool, thrown *throwtrap.Throw, err error) {
	return ev.step(f, env, out)
}

// step executes one expression step per spec.md §4.H.1, then chases any
// immediately following enfix (infix) action word left-to-right before
// returning, so "1 + 2 * 3" reads as a single step yielding 9 rather than
// three independent steps (spec.md §4.H.2's enfix dispatch). thrown is
// non-nil if the step's dispatcher threw and nothing at this level caught
// it. stale reports whether out was left untouched by an invisible result
// (spec.md §4.H.2), which callers that accumulate results (REDUCE) use to
// skip a step instead of collecting a stray unchanged value.
func (ev *Evaluator) step(f *feed.Feed, env *Env, out *value.Cell) (stale bool, thrown *throwtrap.Throw, err error) {
	stale, thrown, err = ev.evalPrefix(f, env, out)
	if err != nil || thrown != nil {
		return stale, thrown, err
	}
	return ev.evalInfixChain(f, env, out, stale)
}

// evalInfixChain repeatedly applies a following enfix action to out, the
// way real Ren-C's lookahead loop folds "WORD op WORD op WORD..." into one
// expression instead of precedence climbing (spec.md §1: plain left-to-
// right infix, no precedence table).
func (ev *Evaluator) evalInfixChain(f *feed.Feed, env *Env, out *value.Cell, stale bool) (bool, *throwtrap.Throw, error) {
	for {
		if f.AtEnd() {
			return stale, nil, nil
		}
		cur := f.Current()
		if cur.Kind() != value.KindWord {
			return stale, nil, nil
		}
		sym := cur.Word().Symbol
		slot, ok := env.lookup(sym)
		if !ok || slot.Kind() != value.KindAction {
			return stale, nil, nil
		}
		act := actionOf(slot)
		if !act.Flags.Has(action.Enfixed) {
			return stale, nil, nil
		}
		f.FetchNext()
		left := *out
		var d bool
		var th *throwtrap.Throw
		var derr error
		d, th, derr = ev.dispatch(f, env, act, sym.String(), out, &left)
		if derr != nil || th != nil {
			return d, th, derr
		}
		stale = d
	}
}

// evalPrefix is the original single-step switch: it handles one leading
// value/word/subexpression and writes the result into out, without any
// trailing-enfix lookahead (step layers that on afterward).
func (ev *Evaluator) evalPrefix(f *feed.Feed, env *Env, out *value.Cell) (stale bool, thrown *throwtrap.Throw, err error) {
	cur := f.Current()

	switch {
	case value.QuoteLevel(cur) > 0:
		tmp := *cur
		value.Dequotify(&tmp)
		value.CopyCell(out, &tmp)
		f.FetchNext()
		return false, nil, nil

	case cur.Kind() == value.KindNull || cur.Kind() == value.KindVoid:
		return false, nil, throwtrap.NewFail(throwtrap.VoidEvaluation, "void-evaluation: evaluator may not see NULL/VOID directly")

	case cur.Kind().Inert():
		value.Derelativize(out, cur, specifierOf(env))
		out.ClearFlag(value.Unevaluated)
		f.FetchNext()
		return false, nil, nil

	case cur.Kind() == value.KindWord:
		sym := cur.Word().Symbol
		slot, ok := env.lookup(sym)
		if !ok {
			return false, nil, throwtrap.NewFail(throwtrap.NoValue, "no-value: "+sym.String()+" is not bound")
		}
		f.FetchNext()
		if slot.Kind() == value.KindAction {
			act := actionOf(slot)
			return ev.dispatch(f, env, act, sym.String(), out, nil)
		}
		value.CopyCell(out, slot)
		return false, nil, nil

	case cur.Kind() == value.KindGetWord:
		sym := cur.Word().Symbol
		slot, ok := env.lookup(sym)
		if !ok {
			return false, nil, throwtrap.NewFail(throwtrap.NoValue, "no-value: "+sym.String()+" is not bound")
		}
		if slot.Kind() == value.KindVoid {
			return false, nil, throwtrap.NewFail(throwtrap.NeedNonVoid, "need-non-void: "+sym.String())
		}
		value.CopyCell(out, slot)
		f.FetchNext()
		return false, nil, nil

	case cur.Kind() == value.KindSetWord:
		sym := cur.Word().Symbol
		f.FetchNext()
		if f.AtEnd() {
			return false, nil, throwtrap.NewFail(throwtrap.NoArg, "no-arg: "+sym.String()+": needs a value")
		}
		if _, th, err := ev.step(f, env, out); err != nil || th != nil {
			return false, th, err
		}
		if !trySet(env, sym, out) {
			return false, nil, throwtrap.NewFail(throwtrap.NoValue, "no-value: cannot set "+sym.String())
		}
		return false, nil, nil

	case cur.Kind() == value.KindGroup:
		series := cur.SeriesPayload()
		f.FetchNext()
		if series == nil || series.Len() == 0 {
			value.InitVoid(out, false)
			return true, nil, nil
		}
		result, err := ev.DoArray(series, env)
		if err != nil {
			if th, ok := err.(*throwtrap.Throw); ok {
				return false, th, nil
			}
			return false, nil, err
		}
		value.CopyCell(out, &result)
		return false, nil, nil

	case cur.Kind() == value.KindAction:
		act := actionOf(cur)
		f.FetchNext()
		return ev.dispatch(f, env, act, "", out, nil)

	default:
		value.Derelativize(out, cur, specifierOf(env))
		f.FetchNext()
		return false, nil, nil
	}
}

func specifierOf(env *Env) value.Specifier {
	if env == nil {
		return nil
	}
	return nil
}

// actionOf recovers the *action.Action an ACTION! cell carries.
func actionOf(c *value.Cell) *action.Action {
	a, _ := c.ActionPayload().(*action.Action)
	return a
}

// isSoftEvaluated reports whether c is one of the forms spec.md §4.F's
// SOFT class evaluates instead of capturing literally: a GROUP! (the
// parenthesised override) or a GET-WORD!/GET-PATH! (the get-form override).
func isSoftEvaluated(c *value.Cell) bool {
	switch c.Kind() {
	case value.KindGroup, value.KindGetWord, value.KindGetPath:
		return true
	default:
		return false
	}
}

// fulfillLiteral captures f's current cell into arg without evaluating it,
// advancing the feed -- the HARD/MEDIUM/SOFT-literal-branch fulfillment
// shape. If p is ENDABLE and either the feed is exhausted or the next
// value's kind doesn't satisfy p's declared type set, arg is left NULL and
// the feed is NOT advanced, so a later parameter (e.g. a following BLOCK!
// body) still sees that value -- this is what lets a call like
// "catch [...]" skip its optional leading NAME argument instead of
// capturing the body block into it (spec.md §4.F ENDABLE).
func fulfillLiteral(f *feed.Feed, p *action.Param, arg *value.Cell) bool {
	endable := p.Tags.Has(action.TagEndable)
	if f.AtEnd() || (endable && !p.Types.Accepts(f.Current().Kind())) {
		if endable {
			value.InitNull(arg)
			return true
		}
		return false
	}
	value.Derelativize(arg, f.Current(), f.CurrentSpecifier())
	f.FetchNext()
	return true
}

// dispatch pushes a frame for act, fulfills its arguments from f/env, and
// runs its dispatcher (spec.md §4.H.3). left, if non-nil, is an
// already-computed value fed to the first parameter -- the enfix case,
// driven by evalInfixChain for any action flagged action.Enfixed.
func (ev *Evaluator) dispatch(f *feed.Feed, env *Env, act *action.Action, label string, out *value.Cell, left *value.Cell) (bool, *throwtrap.Throw, error) {
	fr := callstack.Push(ev.root, act, f, label)
	fr.Env = env

	refinementsUsed := make(map[*value.Symbol]bool)

	for i := range act.Params {
		p := &act.Params[i]

		if p.Class == action.ClassLocal {
			value.InitVoid(fr.Arg(i), false)
			continue
		}
		if p.Class == action.ClassReturn {
			// Not read through Arg(i): a dispatcher exits via
			// eval.ReturnThrow(fr, v), which closes over fr directly.
			value.InitVoid(fr.Arg(i), false)
			continue
		}
		if p.IsRefinement() {
			if i < len(act.Exemplar) && act.Exemplar[i] != nil {
				value.CopyCell(fr.Arg(i), act.Exemplar[i])
				refinementsUsed[p.Symbol] = true
			} else {
				value.InitLogic(fr.Arg(i), false, false)
			}
			continue
		}
		if p.Refinement != nil && !refinementsUsed[p.Refinement] {
			// Companion argument of a refinement this call didn't use
			// (spec.md §4.F): nothing to fetch, the dispatcher must not
			// read this slot.
			value.InitBlank(fr.Arg(i), false)
			continue
		}

		if i == 0 && left != nil {
			value.CopyCell(fr.Arg(i), left)
			continue
		}

		switch p.Class {
		case action.ClassHard, action.ClassMedium:
			if !fulfillLiteral(f, p, fr.Arg(i)) {
				fr.Drop()
				return false, nil, throwtrap.NewFail(throwtrap.NoArg, "no-arg: "+label)
			}

		case action.ClassSoft:
			if !f.AtEnd() && isSoftEvaluated(f.Current()) {
				if _, th, err := ev.step(f, env, fr.Arg(i)); err != nil || th != nil {
					fr.Drop()
					return false, th, err
				}
			} else if !fulfillLiteral(f, p, fr.Arg(i)) {
				fr.Drop()
				return false, nil, throwtrap.NewFail(throwtrap.NoArg, "no-arg: "+label)
			}

		case action.ClassModal:
			// A bare MODAL param captures literally like HARD; a caller
			// that writes the SYM-WORD! (@) form instead cues evaluation
			// and marks this param's own refinement companion (a
			// same-named refinement elsewhere in the paramlist, if any)
			// as used (spec.md §4.H.3's "record modal-on, cue the
			// adjacent refinement").
			if !f.AtEnd() && f.Current().Kind() == value.KindSymWord {
				f.FetchNext()
				if _, th, err := ev.step(f, env, fr.Arg(i)); err != nil || th != nil {
					fr.Drop()
					return false, th, err
				}
				refinementsUsed[p.Symbol] = true
			} else if !fulfillLiteral(f, p, fr.Arg(i)) {
				fr.Drop()
				return false, nil, throwtrap.NewFail(throwtrap.NoArg, "no-arg: "+label)
			}

		case action.ClassOutput:
			// A multi-return sink: evaluated like NORMAL, but the
			// resulting cell names the slot the dispatcher writes a
			// secondary result through rather than a value it reads.
			fallthrough

		default: // ClassNormal
			if f.AtEnd() {
				if p.Tags.Has(action.TagEndable) {
					value.InitNull(fr.Arg(i))
					continue
				}
				fr.Drop()
				return false, nil, throwtrap.NewFail(throwtrap.NoArg, "no-arg: "+label)
			}
			// An enfix action's own trailing arguments must not eat a
			// further infix word themselves -- that word belongs to the
			// outer chain evalInfixChain is already running (spec.md
			// §1's "(c) deferred enfix lookahead": "1 + 2 * 3" folds as
			// (1 + 2) then * 3, not 1 + (2 * 3)). This is scoped to
			// exactly this one fulfillment by calling evalPrefix alone
			// rather than the full step: a shared Feed-level flag would
			// instead get consumed by whichever evalInfixChain runs
			// first, which for a nested prefix call (an argument that is
			// itself a call, like "f n - 1") is the callee's own argument
			// fulfillment rather than this one -- silently disabling the
			// suppression where it was meant to apply and leaving it to
			// wrongly fire one level up instead.
			var th *throwtrap.Throw
			var ferr error
			if act.Flags.Has(action.Enfixed) && i > 0 {
				_, th, ferr = ev.evalPrefix(f, env, fr.Arg(i))
			} else {
				_, th, ferr = ev.step(f, env, fr.Arg(i))
			}
			if ferr != nil || th != nil {
				fr.Drop()
				return false, th, ferr
			}
		}

		if !(p.Tags.Has(action.TagEndable) && fr.Arg(i).Kind() == value.KindNull) && !p.Types.Accepts(fr.Arg(i).Kind()) {
			fr.Drop()
			return false, nil, throwtrap.NewFail(throwtrap.ArgType, "arg-type: "+label+" does not accept "+fr.Arg(i).Kind().String())
		}
	}

	if act.Dispatcher == nil {
		fr.Drop()
		return false, nil, throwtrap.NewFail(throwtrap.NoValue, "no-value: "+label+" has no dispatcher")
	}

	outcome, err := act.Dispatcher(fr)
	if err != nil {
		if th, ok := err.(*throwtrap.Throw); ok {
			if rb, ok := th.Label.(returnLabel); ok && rb.frame == fr {
				value.CopyCell(out, &th.Value)
				fr.Drop()
				return false, nil, nil
			}
			fr.Drop()
			return false, th, nil
		}
		if fe, ok := err.(*throwtrap.Fail); ok {
			fr.Drop()
			return false, nil, fe.AddFrame(label, throwtrap.Near{})
		}
		fr.Drop()
		return false, nil, err
	}

	stale := false
	switch outcome {
	case action.OutcomeNull:
		value.InitNull(out)
	case action.OutcomeInvisible:
		// preserve whatever OUT already held (spec.md §4.H.2 invisibles)
		stale = true
	default:
		value.CopyCell(out, fr.Out())
	}
	fr.Drop()
	return stale, nil, nil
}

// returnLabel is the throw label a definitional RETURN native uses
// (spec.md §4.H.4): binding this throw to a specific frame lets the
// dispatching evaluator catch only its own RETURN, not an outer one's.
type returnLabel struct {
	frame *callstack.Frame
}

// ReturnThrow builds the Throw a RETURN-class native raises to exit fr with
// value v. internal/boot's RETURN dispatcher calls this.
func ReturnThrow(fr *callstack.Frame, v value.Cell) *throwtrap.Throw {
	return &throwtrap.Throw{Label: returnLabel{frame: fr}, Value: v}
}

// trySet writes v into sym's slot, walking the env's patch chain first and
// falling back to appending into the anchor context (spec.md §4.E
// "mid-stream binding").
func trySet(env *Env, sym *value.Symbol, v *value.Cell) bool {
	if slot, ok := env.lookup(sym); ok {
		value.CopyCell(slot, v)
		return true
	}
	if env.Ctx == nil {
		return false
	}
	return env.Ctx.Set(sym, *v, true)
}
