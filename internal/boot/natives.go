package boot

import (
	"github.com/r3n/ren-c-sub001/internal/action"
	"github.com/r3n/ren-c-sub001/internal/callstack"
	"github.com/r3n/ren-c-sub001/internal/dispatch"
	"github.com/r3n/ren-c-sub001/internal/eval"
	"github.com/r3n/ren-c-sub001/internal/feed"
	"github.com/r3n/ren-c-sub001/internal/scanner"
	"github.com/r3n/ren-c-sub001/internal/throwtrap"
	"github.com/r3n/ren-c-sub001/internal/value"
)

// nativeSpec is one entry of the bootstrap native table: a name, a flat
// parameter-spec source (the same shape MakeParamlist takes directly, no
// enclosing block needed), and the dispatcher it drives.
type nativeSpec struct {
	name  string
	spec  string
	fn    action.Dispatcher
	flags action.Flags
}

// registerNatives builds the control-flow, arithmetic, and non-local-exit
// natives SPEC_FULL.md's supplemented-features section names (if, either,
// catch, throw, the arithmetic/comparison infix set, then/else/also, func,
// reduce, comment) and binds each into rt.Globals, the minimal mezzanine
// stand-in alongside DefaultBase's plain word assignments. A dispatcher
// that runs a nested block of code recovers the calling frame's own Env
// via callerEnv rather than always reaching for rt.Globals, so a branch
// evaluated inside a user FUNC call still sees that call's bound
// parameters and its definitional RETURN (documented in DESIGN.md).
func (rt *Runtime) registerNatives() error {
	natives := []nativeSpec{
		{"if", "condition branch [block!]", rt.ifDispatcher, action.IsNative},
		{"either", "condition true-branch [block!] false-branch [block!]", rt.eitherDispatcher, action.IsNative},
		{"catch", "@name [word!] <end> body [block!]", rt.catchDispatcher, action.IsNative},
		{"throw", "@name [word!] <end> value", rt.throwDispatcher, action.IsNative},
		{"trap", "body [block!]", rt.trapDispatcher, action.IsNative},

		{"+", "left [integer!] right [integer!]", rt.addDispatcher, action.IsNative | action.Enfixed},
		{"-", "left [integer!] right [integer!]", rt.subtractDispatcher, action.IsNative | action.Enfixed},
		{"*", "left [integer!] right [integer!]", rt.multiplyDispatcher, action.IsNative | action.Enfixed},
		{"/", "left [integer!] right [integer!]", rt.divideDispatcher, action.IsNative | action.Enfixed},

		{"then", "left 'branch [block!]", rt.thenDispatcher, action.IsNative | action.Enfixed},
		{"else", "left 'branch [block!]", rt.elseDispatcher, action.IsNative | action.Enfixed},
		{"also", "left 'branch [block!]", rt.alsoDispatcher, action.IsNative | action.Enfixed},

		{"=", "left right", rt.equalDispatcher, action.IsNative | action.Enfixed},

		{"func", "spec [block!] body [block!]", rt.funcDispatcher, action.IsNative},
		{"reduce", "values [block!]", rt.reduceDispatcher, action.IsNative},
		{"comment", "@value", rt.commentDispatcher, action.IsNative | action.IsInvisible},
	}

	for _, n := range natives {
		specCells, err := scanner.New(n.spec, "native-spec", rt.tbl).ScanToEnd()
		if err != nil {
			return err
		}
		act, err := action.MakeParamlist(specCells, n.fn, n.flags)
		if err != nil {
			return err
		}
		var cell value.Cell
		value.InitAction(&cell, act, false)
		rt.Globals.Set(rt.tbl.Intern(n.name), cell, true)
	}
	return nil
}

// callerEnv recovers the *eval.Env the calling frame fulfilled its
// arguments against, so a native that runs a nested block of code (IF's
// branch, CATCH/TRAP's body) sees the same LET patches and FUNC-bound
// locals its caller did, instead of always falling back to the flat
// global anchor. act is a *callstack.Frame for every real call (natives
// are dispatched the same way user actions are), so the type assertion
// only fails to find an Env in synthetic/test call shapes, where the
// global anchor is the correct fallback anyway.
func (rt *Runtime) callerEnv(act action.Activation) *eval.Env {
	if fr, ok := act.(*callstack.Frame); ok {
		if env, ok := fr.Env.(*eval.Env); ok {
			return env
		}
	}
	return &eval.Env{Ctx: rt.Globals}
}

// runBlock evaluates branch's BLOCK! payload against env, the way
// IF/EITHER/THEN/ELSE/ALSO run their chosen branch in the caller's own
// lexical environment rather than always the global one.
func (rt *Runtime) runBlock(out *value.Cell, branch *value.Cell, env *eval.Env) error {
	arr := branch.SeriesPayload()
	if arr == nil || arr.Len() == 0 {
		value.InitVoid(out, false)
		return nil
	}
	result, err := rt.ev.DoArray(arr, env)
	if err != nil {
		return err
	}
	value.CopyCell(out, &result)
	return nil
}

// ifDispatcher runs branch when condition is truthy, otherwise yields
// NULL (spec.md's supplemented-features IF, grounded on the same
// truthy/falsy rule EITHER and the evaluator's own condition checks use).
func (rt *Runtime) ifDispatcher(act action.Activation) (action.Outcome, error) {
	if !value.Truthy(act.Arg(0)) {
		return action.OutcomeNull, nil
	}
	if err := rt.runBlock(act.Out(), act.Arg(1), rt.callerEnv(act)); err != nil {
		return action.OutcomeNormal, err
	}
	return action.OutcomeNormal, nil
}

func (rt *Runtime) eitherDispatcher(act action.Activation) (action.Outcome, error) {
	branch := act.Arg(2)
	if value.Truthy(act.Arg(0)) {
		branch = act.Arg(1)
	}
	if err := rt.runBlock(act.Out(), branch, rt.callerEnv(act)); err != nil {
		return action.OutcomeNormal, err
	}
	return action.OutcomeNormal, nil
}

// catchDispatcher runs body and intercepts a throw whose label is the
// WORD! symbol name names, converting it back into a plain result
// (spec.md §7's CATCH/NAME). Any other throw, or a Fail, propagates
// unchanged. name is declared SYM-WORD! (@name) in its own parameter
// spec so internal/action.MakeParamlist classifies it MEDIUM -- taken
// literally rather than evaluated -- for an actual call like
// "catch stop [...]". name is also ENDABLE, so the bare call
// "catch [...]" leaves it NULL instead of swallowing the body block,
// and matches only an equally bare "throw value" (both unnamed).
func (rt *Runtime) catchDispatcher(act action.Activation) (action.Outcome, error) {
	name := act.Arg(0)
	arr := act.Arg(1).SeriesPayload()
	if arr == nil {
		value.InitVoid(act.Out(), false)
		return action.OutcomeNormal, nil
	}
	result, err := rt.ev.DoArray(arr, rt.callerEnv(act))
	if err != nil {
		if th, ok := err.(*throwtrap.Throw); ok {
			sym, isWordLabel := th.Label.(*value.Symbol)
			w := name.Word()
			matches := isWordLabel && ((w == nil && sym == nil) || (w != nil && sym != nil && w.Symbol == sym))
			if matches {
				value.CopyCell(act.Out(), &th.Value)
				return action.OutcomeNormal, nil
			}
		}
		return action.OutcomeNormal, err
	}
	value.CopyCell(act.Out(), &result)
	return action.OutcomeNormal, nil
}

// throwDispatcher raises a labelled Throw (spec.md §7 tier 2) carrying
// value, caught only by a CATCH naming the same word.
func (rt *Runtime) throwDispatcher(act action.Activation) (action.Outcome, error) {
	var sym *value.Symbol
	if w := act.Arg(0).Word(); w != nil {
		sym = w.Symbol
	}
	return action.OutcomeThrown, &throwtrap.Throw{Label: sym, Value: *act.Arg(1)}
}

// trapDispatcher runs body and converts a recoverable Fail reaching this
// boundary into an ERROR! result rather than letting it keep unwinding
// (spec.md §7: "TRAP [ ... ] yields the error or the value"). A Throw is
// not a Fail and is left to propagate to its own CATCH/NAME boundary.
func (rt *Runtime) trapDispatcher(act action.Activation) (action.Outcome, error) {
	arr := act.Arg(0).SeriesPayload()
	if arr == nil {
		value.InitVoid(act.Out(), false)
		return action.OutcomeNormal, nil
	}
	result, err := rt.ev.DoArray(arr, rt.callerEnv(act))
	if err != nil {
		if fe, ok := err.(*throwtrap.Fail); ok {
			value.InitError(act.Out(), fe, false)
			return action.OutcomeNormal, nil
		}
		return action.OutcomeNormal, err
	}
	value.CopyCell(act.Out(), &result)
	return action.OutcomeNormal, nil
}

// arith runs one of internal/dispatch's KindInteger generics against an
// enfix call's two already-fulfilled operands (spec.md §1's "1 + 2 * 3"
// scenario). A divide-by-zero Fail from the generic propagates unchanged.
func (rt *Runtime) arith(act action.Activation, name string) (action.Outcome, error) {
	result, err := dispatch.Dispatch(name, []*value.Cell{act.Arg(0), act.Arg(1)})
	if err != nil {
		return action.OutcomeNormal, err
	}
	value.CopyCell(act.Out(), &result)
	return action.OutcomeNormal, nil
}

func (rt *Runtime) addDispatcher(act action.Activation) (action.Outcome, error) {
	return rt.arith(act, "add")
}

func (rt *Runtime) subtractDispatcher(act action.Activation) (action.Outcome, error) {
	return rt.arith(act, "subtract")
}

func (rt *Runtime) multiplyDispatcher(act action.Activation) (action.Outcome, error) {
	return rt.arith(act, "multiply")
}

func (rt *Runtime) divideDispatcher(act action.Activation) (action.Outcome, error) {
	return rt.arith(act, "divide")
}

// equalDispatcher runs internal/dispatch's per-kind Compare hook against
// an enfix call's two already-fulfilled operands (spec.md §8 scenario 5's
// "n = 0"). A kind with no Compare hook (e.g. comparing across mismatched
// kinds) surfaces dispatch.ErrNoCompare unchanged, the same "cannot
// compare" taxonomy code as elsewhere.
func (rt *Runtime) equalDispatcher(act action.Activation) (action.Outcome, error) {
	ord, err := dispatch.Compare(act.Arg(0), act.Arg(1), false)
	if err != nil {
		return action.OutcomeNormal, err
	}
	value.InitLogic(act.Out(), ord == 0, false)
	return action.OutcomeNormal, nil
}

// thenDispatcher runs branch only when left is truthy-present (not NULL),
// the enfix chain partner to ELSE (spec.md §4.H.2's "then/else/also
// deferral"). branch is declared 'branch (HARD-quoted) so it is captured
// as a literal BLOCK! rather than evaluated before THEN sees it.
func (rt *Runtime) thenDispatcher(act action.Activation) (action.Outcome, error) {
	left := act.Arg(0)
	if left.Kind() == value.KindNull {
		value.CopyCell(act.Out(), left)
		return action.OutcomeNormal, nil
	}
	if err := rt.runBlock(act.Out(), act.Arg(1), rt.callerEnv(act)); err != nil {
		return action.OutcomeNormal, err
	}
	return action.OutcomeNormal, nil
}

// elseDispatcher runs branch only when left is NULL, passing left through
// unchanged otherwise.
func (rt *Runtime) elseDispatcher(act action.Activation) (action.Outcome, error) {
	left := act.Arg(0)
	if left.Kind() != value.KindNull {
		value.CopyCell(act.Out(), left)
		return action.OutcomeNormal, nil
	}
	if err := rt.runBlock(act.Out(), act.Arg(1), rt.callerEnv(act)); err != nil {
		return action.OutcomeNormal, err
	}
	return action.OutcomeNormal, nil
}

// alsoDispatcher runs branch for its side effect when left is not NULL,
// but always yields left itself (the branch's own result is discarded).
func (rt *Runtime) alsoDispatcher(act action.Activation) (action.Outcome, error) {
	left := act.Arg(0)
	if left.Kind() == value.KindNull {
		value.CopyCell(act.Out(), left)
		return action.OutcomeNormal, nil
	}
	var discard value.Cell
	if err := rt.runBlock(&discard, act.Arg(1), rt.callerEnv(act)); err != nil {
		return action.OutcomeNormal, err
	}
	value.CopyCell(act.Out(), left)
	return action.OutcomeNormal, nil
}

// funcDispatcher builds a new user-defined ACTION! from a spec block and a
// body block (spec.md §4.F/§4.H.4's FUNC), the way the teacher's own
// function-literal construction hands a freshly built callable back as an
// ordinary value. The resulting action's dispatcher is userFuncDispatcher,
// closed over this particular spec/body pair.
func (rt *Runtime) funcDispatcher(act action.Activation) (action.Outcome, error) {
	specArr := act.Arg(0).SeriesPayload()
	bodyArr := act.Arg(1).SeriesPayload()
	var specCells []value.Cell
	if specArr != nil {
		specCells = specArr.Cells()
	}
	userAct, err := action.MakeParamlist(specCells, nil, action.HasReturn)
	if err != nil {
		return action.OutcomeNormal, err
	}
	userAct.Dispatcher = rt.userFuncDispatcher(userAct, bodyArr)
	value.InitAction(act.Out(), userAct, false)
	return action.OutcomeNormal, nil
}

// userFuncDispatcher runs one call of a FUNC-built action: it binds each
// declared parameter's fulfilled argument into a fresh LET-chained Env,
// installs a definitional RETURN bound to this call's own frame, and runs
// the body to exhaustion. internal/eval's dispatch already catches a
// RETURN throw labelled with this same frame (see eval.ReturnThrow and
// the returnLabel check in Evaluator.dispatch), so nothing special needs
// to happen here beyond letting that error propagate unmodified.
func (rt *Runtime) userFuncDispatcher(userAct *action.Action, body *value.Series) action.Dispatcher {
	return func(act action.Activation) (action.Outcome, error) {
		env := &eval.Env{Ctx: rt.Globals}
		for i, p := range userAct.Params {
			if p.Symbol == nil {
				continue
			}
			env = env.Bind(p.Symbol, *act.Arg(i))
		}

		if fr, ok := act.(*callstack.Frame); ok {
			retSym := rt.tbl.Intern("return")
			retAct := &action.Action{
				Params: []action.Param{{Symbol: retSym, Class: action.ClassNormal}},
				Dispatcher: func(ract action.Activation) (action.Outcome, error) {
					return action.OutcomeThrown, eval.ReturnThrow(fr, *ract.Arg(0))
				},
			}
			var retCell value.Cell
			value.InitAction(&retCell, retAct, false)
			env = env.Bind(retSym, retCell)
		}

		if body == nil || body.Len() == 0 {
			return action.OutcomeNull, nil
		}
		result, err := rt.ev.DoArray(body, env)
		if err != nil {
			return action.OutcomeNormal, err
		}
		value.CopyCell(act.Out(), &result)
		return action.OutcomeNormal, nil
	}
}

// reduceDispatcher walks values one step at a time via the evaluator's
// exported Step, collecting each non-stale result into a new BLOCK!
// (spec.md §4.H.2's "reduce [1 comment \"x\" 2]" scenario, where COMMENT's
// invisible result must be skipped rather than collected as a stray
// value).
func (rt *Runtime) reduceDispatcher(act action.Activation) (action.Outcome, error) {
	arr := act.Arg(0).SeriesPayload()
	out := value.NewArray(value.FlavorArray, 0)
	if arr != nil && arr.Len() > 0 {
		f := feed.New(feed.NewArraySource(arr, 0, nil))
		env := rt.callerEnv(act)
		for !f.AtEnd() {
			var v value.Cell
			stale, thrown, err := rt.ev.Step(f, env, &v)
			if err != nil {
				return action.OutcomeNormal, err
			}
			if thrown != nil {
				return action.OutcomeThrown, thrown
			}
			if !stale {
				out.Push(v)
			}
		}
	}
	value.InitBlock(act.Out(), out, 0, false)
	return action.OutcomeNormal, nil
}

// commentDispatcher discards its literal argument and leaves OUT
// untouched, relying on OutcomeInvisible to thread the caller's existing
// value through unchanged (spec.md §4.H.2's invisibles).
func (rt *Runtime) commentDispatcher(act action.Activation) (action.Outcome, error) {
	return action.OutcomeInvisible, nil
}
