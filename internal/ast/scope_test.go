package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/diag"
	"github.com/anzenlang/anzenc/internal/source"
)

func declAt(name string) *PropertyDecl {
	return &PropertyDecl{NodeBase: NodeBase{Rng: source.Range{}}, Name: name}
}

func TestScopeDefineRejectsDuplicateNonOverloadable(t *testing.T) {
	issues := diag.NewSet()
	scope := NewScope(nil)

	a := &Symbol{Name: "x", Decl: declAt("x")}
	b := &Symbol{Name: "x", Decl: declAt("x")}

	scope.Define(a, issues)
	scope.Define(b, issues)

	assert.True(t, issues.HasErrors())
	require.Len(t, scope.Lookup("x"), 1)
	assert.Same(t, a, scope.Lookup("x")[0])
}

func TestScopeDefineAllowsOverloadSet(t *testing.T) {
	issues := diag.NewSet()
	scope := NewScope(nil)

	a := &Symbol{Name: "f", Decl: declAt("f"), Attrs: Overloadable}
	b := &Symbol{Name: "f", Decl: declAt("f"), Attrs: Overloadable}

	scope.Define(a, issues)
	scope.Define(b, issues)

	assert.False(t, issues.HasErrors())
	assert.Len(t, scope.Lookup("f"), 2)
}

func TestScopeLookupWalksParentChain(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	sym := &Symbol{Name: "y", Decl: declAt("y")}
	parent.Define(sym, nil)

	found := child.Lookup("y")
	require.Len(t, found, 1)
	assert.Same(t, sym, found[0])
	assert.Nil(t, child.Lookup("nope"))
}

func TestScopeLookupPrefersInnermostScope(t *testing.T) {
	parent := NewScope(nil)
	child := NewScope(parent)

	outer := &Symbol{Name: "x", Decl: declAt("x")}
	inner := &Symbol{Name: "x", Decl: declAt("x")}
	parent.Define(outer, nil)
	child.Define(inner, nil)

	found := child.Lookup("x")
	require.Len(t, found, 1)
	assert.Same(t, inner, found[0])
}

func TestDeclContextIsEnclosedIn(t *testing.T) {
	root := NewDeclContext(nil)
	mid := NewDeclContext(root)
	leaf := NewDeclContext(mid)

	assert.True(t, leaf.IsEnclosedIn(root))
	assert.True(t, leaf.IsEnclosedIn(mid))
	assert.True(t, leaf.IsEnclosedIn(leaf))
	assert.False(t, root.IsEnclosedIn(leaf))
}

func TestCompilerContextMemberTableInvalidatedByGeneration(t *testing.T) {
	cc := NewCompilerContext()
	nominal := cc.Types.GetStruct("decl-identity", "Widget")

	calls := 0
	build := func(mt *MemberTable) {
		calls++
		mt.Members["field"] = []*Symbol{{Name: "field"}}
	}

	first := cc.MemberTableFor(nominal, build)
	second := cc.MemberTableFor(nominal, build)
	assert.Same(t, first, second)
	assert.Equal(t, 1, calls)

	cc.BumpGeneration()
	third := cc.MemberTableFor(nominal, build)
	assert.NotSame(t, first, third)
	assert.Equal(t, 2, calls)
}

func TestModuleAddDeclSetsOwner(t *testing.T) {
	m := NewModule("test.anzen")
	d := declAt("x")
	m.AddDecl(d)

	require.Len(t, m.Decls, 1)
	assert.Same(t, m, d.Module())
}
