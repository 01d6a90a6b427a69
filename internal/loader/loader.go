// Package loader resolves module identifiers to source text, normalizes it,
// and populates a module's declaration list by handing normalized text to a
// pluggable Parser. It plays the role the teacher's internal/loader plays
// (caching, path resolution, dependency walking) adapted to this core's
// external-interfaces contract: load(module, from_path|from_text, context).
package loader

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/source"
)

// Distinguished module identifiers the loader must recognize before
// treating a name as a local-path import.
const (
	BuiltinModule = "Builtin"
	StdlibModule  = "Anzen"
)

// Kind classifies a module identifier.
type Kind int

const (
	KindBuiltin Kind = iota
	KindStdlib
	KindLocalPath
)

// ClassifyModuleID reports which of the three structured forms an
// identifier takes.
func ClassifyModuleID(id string) Kind {
	switch id {
	case BuiltinModule:
		return KindBuiltin
	case StdlibModule:
		return KindStdlib
	}
	return KindLocalPath
}

// Parser turns normalized source text into a module's declarations. No
// concrete parser ships with this core (parsing is pre-core per the
// external-interfaces contract); callers inject one, or use ParseNone for
// modules whose Decls are populated by hand (tests, the REPL's one-off
// fragments).
type Parser func(buffer, text string) ([]ast.Decl, *ast.MainCodeDecl, error)

// ParseNone is the zero Parser: it yields no declarations, used for
// distinguished modules (Builtin, Anzen) this core does not ship source
// for, and by callers that build a Module's Decls directly.
func ParseNone(buffer, text string) ([]ast.Decl, *ast.MainCodeDecl, error) {
	return nil, nil, nil
}

// Loader resolves, reads, and caches modules by canonical ID.
type Loader struct {
	cc       *ast.CompilerContext
	cache    map[string]*ast.Module
	basePath string
	parse    Parser
}

// New creates a Loader rooted at basePath (the directory local-path
// imports resolve against) using parse to turn source text into decls.
func New(cc *ast.CompilerContext, basePath string, parse Parser) *Loader {
	if parse == nil {
		parse = ParseNone
	}
	return &Loader{cc: cc, cache: make(map[string]*ast.Module), basePath: basePath, parse: parse}
}

// CanonicalModuleID normalizes a local-path identifier to its canonical
// repo-relative, extension-free, forward-slash form.
func CanonicalModuleID(id string) string {
	if ClassifyModuleID(id) != KindLocalPath {
		return id
	}
	p := filepath.Clean(id)
	p = strings.TrimSuffix(p, ".anzen")
	p = strings.ReplaceAll(p, "\\", "/")
	p = strings.TrimPrefix(p, "./")
	p = strings.TrimPrefix(p, "/")
	return p
}

// NormalizeSource applies Unicode NFC normalization to source text before
// it reaches a parser, the same concern the teacher's lexer normalization
// step served.
func NormalizeSource(text string) string {
	return norm.NFC.String(text)
}

// Load resolves id to a *ast.Module, reading and parsing it if not already
// cached. Parse failures are attached to the returned module as issues
// rather than returned as a Go error — per the loader contract, loading
// populates the module and records failures on it.
func (l *Loader) Load(id string) (*ast.Module, error) {
	canonical := CanonicalModuleID(id)
	if m, ok := l.cache[canonical]; ok {
		return m, nil
	}

	m := ast.NewModule(canonical)
	l.cache[canonical] = m
	l.cc.Modules[canonical] = m

	switch ClassifyModuleID(id) {
	case KindBuiltin, KindStdlib:
		// No source to read: these are recognized but carry no decls of
		// their own here, the same way the teacher's std/ modules resolve
		// to files this core does not ship.
		return m, nil
	}

	text, err := l.readSource(canonical)
	if err != nil {
		return nil, fmt.Errorf("loader: failed to read module %s: %w", id, err)
	}

	return l.LoadText(canonical, text)
}

// LoadText populates a module's declarations directly from in-memory
// source text (the `from_text` half of the contract), bypassing the
// filesystem — used by the REPL and by tests.
func (l *Loader) LoadText(buffer, text string) (*ast.Module, error) {
	m, ok := l.cache[buffer]
	if !ok {
		m = ast.NewModule(buffer)
		l.cache[buffer] = m
		l.cc.Modules[buffer] = m
	}

	normalized := NormalizeSource(text)
	decls, main, err := l.parse(buffer, normalized)
	if err != nil {
		m.Issues.Errorf(source.Range{}, nil, "%v", err)
		return m, nil
	}
	m.Decls = decls
	m.Main = main
	return m, nil
}

func (l *Loader) readSource(canonical string) (string, error) {
	content, err := ioutil.ReadFile(l.resolvePath(canonical))
	if err != nil {
		return "", err
	}
	return string(content), nil
}

func (l *Loader) resolvePath(canonical string) string {
	if filepath.IsAbs(canonical) {
		return canonical + ".anzen"
	}
	return filepath.Join(l.basePath, canonical) + ".anzen"
}

// LoadAll walks roots and every module they transitively import (depth
// first, each module visited once) and returns every module reached,
// keyed by canonical ID.
func (l *Loader) LoadAll(roots []string) (map[string]*ast.Module, error) {
	out := make(map[string]*ast.Module)
	visited := make(map[string]bool)

	var visit func(id string) error
	visit = func(id string) error {
		canonical := CanonicalModuleID(id)
		if visited[canonical] {
			return nil
		}
		visited[canonical] = true

		m, err := l.Load(id)
		if err != nil {
			return err
		}
		out[canonical] = m
		for _, dep := range m.Imports {
			if err := visit(dep); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range roots {
		if err := visit(root); err != nil {
			return nil, err
		}
	}
	return out, nil
}
