package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/ast"
)

func TestClassifyModuleIDRecognizesDistinguishedNames(t *testing.T) {
	assert.Equal(t, KindBuiltin, ClassifyModuleID("Builtin"))
	assert.Equal(t, KindStdlib, ClassifyModuleID("Anzen"))
	assert.Equal(t, KindLocalPath, ClassifyModuleID("util/math"))
}

func TestCanonicalModuleIDStripsExtensionAndLeadingDot(t *testing.T) {
	assert.Equal(t, "util/math", CanonicalModuleID("./util/math.anzen"))
	assert.Equal(t, "Builtin", CanonicalModuleID("Builtin"))
}

func TestNormalizeSourceAppliesNFC(t *testing.T) {
	// "e" + combining acute (NFD) should normalize to the precomposed "é" (NFC).
	decomposed := "é"
	got := NormalizeSource(decomposed)
	assert.Equal(t, "é", got)
}

func TestLoadDistinguishedModuleReturnsEmptyModule(t *testing.T) {
	cc := ast.NewCompilerContext()
	l := New(cc, ".", nil)

	m, err := l.Load(BuiltinModule)
	require.NoError(t, err)
	assert.Empty(t, m.Decls)
	assert.Same(t, m, cc.Modules[BuiltinModule])
}

func TestLoadCachesByCanonicalID(t *testing.T) {
	cc := ast.NewCompilerContext()
	l := New(cc, ".", nil)

	a, err := l.Load("Anzen")
	require.NoError(t, err)
	b, err := l.Load("Anzen")
	require.NoError(t, err)
	assert.Same(t, a, b)
}

func TestLoadReadsLocalPathSource(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.anzen"), []byte("let x = 1"), 0o644))

	var gotText string
	parse := func(buffer, text string) ([]ast.Decl, *ast.MainCodeDecl, error) {
		gotText = text
		return nil, nil, nil
	}

	cc := ast.NewCompilerContext()
	l := New(cc, dir, parse)
	m, err := l.Load("greet")
	require.NoError(t, err)
	assert.Equal(t, "let x = 1", gotText)
	assert.Equal(t, "greet", m.Buffer)
}

func TestLoadTextAttachesParseFailureAsIssue(t *testing.T) {
	parse := func(buffer, text string) ([]ast.Decl, *ast.MainCodeDecl, error) {
		return nil, nil, assert.AnError
	}

	cc := ast.NewCompilerContext()
	l := New(cc, ".", parse)
	m, err := l.LoadText("bad", "not real source")
	require.NoError(t, err)
	assert.True(t, m.Issues.HasErrors())
}

func TestLoadAllWalksImportsOnce(t *testing.T) {
	cc := ast.NewCompilerContext()
	l := New(cc, ".", nil)

	out, err := l.LoadAll([]string{"Builtin", "Anzen"})
	require.NoError(t, err)
	assert.Len(t, out, 2)
}
