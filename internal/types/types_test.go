package types

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterningIsPointerIdentity(t *testing.T) {
	ctx := NewContext()

	a := ctx.GetBuiltin(Int)
	b := ctx.GetBuiltin(Int)
	assert.Same(t, a, b, "two constructions of the same builtin must share identity")

	f1 := ctx.GetFunction(nil, []Param{{Type: QualifiedType{Bare: a, Quals: QualifierSet(0).With(Cst)}}}, QualifiedType{Bare: a})
	f2 := ctx.GetFunction(nil, []Param{{Type: QualifiedType{Bare: a, Quals: QualifierSet(0).With(Cst)}}}, QualifiedType{Bare: a})
	assert.Same(t, f1, f2, "structurally equal function types must be interned to one pointer")

	other := ctx.GetBuiltin(Bool)
	f3 := ctx.GetFunction(nil, []Param{{Type: QualifiedType{Bare: other}}}, QualifiedType{Bare: a})
	assert.NotSame(t, f1, f3)
}

func TestBoundGenericNeverNests(t *testing.T) {
	ctx := NewContext()
	declT := new(int)
	declU := new(int)
	base := ctx.GetStruct(new(int), "Box")
	ph1 := ctx.GetPlaceholder(declT, "T").(*Placeholder)
	ph2 := ctx.GetPlaceholder(declU, "U").(*Placeholder)
	intT := ctx.GetBuiltin(Int)
	boolT := ctx.GetBuiltin(Bool)

	inner := ctx.GetBoundGeneric(base, []Binding{{Placeholder: ph1, Type: intT}})
	outer := ctx.GetBoundGeneric(inner, []Binding{{Placeholder: ph2, Type: boolT}})

	bg, ok := outer.(*BoundGeneric)
	require.True(t, ok)
	assert.Same(t, base, bg.Base, "merging bindings must never leave a BoundGeneric as another's base")
	assert.Len(t, bg.Bindings, 2)
}

func TestOpenIdentityOnNonGeneric(t *testing.T) {
	ctx := NewContext()
	intT := ctx.GetBuiltin(Int)
	fn := ctx.GetFunction(nil, []Param{{Type: QualifiedType{Bare: intT}}}, QualifiedType{Bare: intT})

	opened := Open(ctx, fn)
	assert.Same(t, fn, opened, "opening a type with no placeholders must be the identity")
}

func TestOpenFreshensEachUseSite(t *testing.T) {
	ctx := NewContext()
	decl := new(int)
	ph := ctx.GetPlaceholder(decl, "T").(*Placeholder)
	generic := ctx.GetFunction([]*Placeholder{ph}, []Param{{Type: QualifiedType{Bare: ph}}}, QualifiedType{Bare: ph})

	use1 := Open(ctx, generic)
	use2 := Open(ctx, generic)
	assert.NotSame(t, use1, use2, "each use site must get independently fresh variables")

	f1 := use1.(*FuncType)
	f2 := use2.(*FuncType)
	assert.Equal(t, f1.Domain[0].Type.Bare, f1.Codomain.Bare, "within one opening, the same placeholder maps to the same variable")
	assert.NotEqual(t, f1.Domain[0].Type.Bare, f2.Domain[0].Type.Bare)
}

func TestReifyEmptySubstitutionIsIdentity(t *testing.T) {
	ctx := NewContext()
	intT := ctx.GetBuiltin(Int)
	out, ok := Reify(ctx, intT, Substitution{})
	require.True(t, ok)
	assert.Same(t, intT, out)
}

func TestReifyIsIdempotent(t *testing.T) {
	ctx := NewContext()
	intT := ctx.GetBuiltin(Int)
	v := ctx.GetTypeVar().(*TypeVar)
	sub := Substitution{v.ID: intT}

	once, ok := Reify(ctx, v, sub)
	require.True(t, ok)
	twice, ok := Reify(ctx, once, sub)
	require.True(t, ok)
	assert.Same(t, once, twice)
}

func TestReifyFailsOnUnboundVariable(t *testing.T) {
	ctx := NewContext()
	v := ctx.GetTypeVar()
	_, ok := Reify(ctx, v, Substitution{})
	assert.False(t, ok)
}

// paramShape is a cmp-friendly, identity-independent projection of a
// FuncType's domain (QualifiedType.Bare is an interned *FuncType carrying an
// unexported cache field, which plain cmp.Diff can't walk, and fresh
// variables get different IDs on every Open() call so their text can't be
// compared directly either). SharesCodomain records the one structural fact
// that should hold regardless of which concrete variables a given opening
// picked: whether this parameter was bound to the same placeholder as the
// codomain.
type paramShape struct {
	Label          string
	SharesCodomain bool
}

func shapeOf(fn *FuncType) []paramShape {
	out := make([]paramShape, len(fn.Domain))
	for i, p := range fn.Domain {
		out[i] = paramShape{Label: p.Label, SharesCodomain: p.Type.Bare == fn.Codomain.Bare}
	}
	return out
}

// TestOpenProducesStructurallyIdenticalDomainsAcrossUses diffs the domain
// shape of two independent Open() calls on the same generic function: each
// use gets its own fresh variables (different identity, asserted
// elsewhere), but the structural relationships between them — here, that
// every parameter shares its placeholder with the codomain — must survive
// identically into every opening.
func TestOpenProducesStructurallyIdenticalDomainsAcrossUses(t *testing.T) {
	ctx := NewContext()
	decl := new(int)
	ph := ctx.GetPlaceholder(decl, "T").(*Placeholder)
	generic := ctx.GetFunction([]*Placeholder{ph},
		[]Param{{Label: "x", Type: QualifiedType{Bare: ph}}, {Label: "y", Type: QualifiedType{Bare: ph}}},
		QualifiedType{Bare: ph})

	use1 := Open(ctx, generic).(*FuncType)
	use2 := Open(ctx, generic).(*FuncType)

	if diff := cmp.Diff(shapeOf(use1), shapeOf(use2)); diff != "" {
		t.Fatalf("domain shape diverged across independent openings (-use1 +use2):\n%s", diff)
	}
}
