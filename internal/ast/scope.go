package ast

import (
	"github.com/anzenlang/anzenc/internal/diag"
	"github.com/anzenlang/anzenc/internal/types"
)

// SymbolAttr is a bitset of properties attached to a Symbol.
type SymbolAttr uint8

const (
	// Overloadable means a second declaration of the same name in the same
	// scope is allowed (and recorded as a sibling candidate) rather than
	// rejected as a duplicate — functions are overloadable, properties and
	// types are not.
	Overloadable SymbolAttr = 1 << iota
	Reassignable
	Static
	Method
)

func (a SymbolAttr) Has(f SymbolAttr) bool { return a&f != 0 }

// Symbol is an entry in a Scope: a declared name together with the
// declaration that introduced it and the attributes governing how lookup
// and reassignment treat it. Symbol equality is reference identity.
type Symbol struct {
	Name  string
	Scope *Scope
	Decl  Decl
	Attrs SymbolAttr
	Type  types.QualifiedType
}

// Scope is one level of the declaration-context tree: a flat name -> []Symbol
// table plus a non-owning link to its parent. Multiple symbols may share a
// name only when every one of them is overloadable.
type Scope struct {
	Parent  *Scope
	entries map[string][]*Symbol
}

func NewScope(parent *Scope) *Scope {
	return &Scope{Parent: parent, entries: make(map[string][]*Symbol)}
}

// Define inserts sym into the scope. If the name is already bound and any
// existing entry is not overloadable (or sym itself is not), the insertion
// is rejected: a duplicate-declaration issue is recorded against sym's
// declaration and the later entry is dropped, matching the "first wins"
// resolution rule for non-overloadable redeclarations.
func (s *Scope) Define(sym *Symbol, issues *diag.Set) {
	existing := s.entries[sym.Name]
	if len(existing) > 0 {
		allOverloadable := sym.Attrs.Has(Overloadable)
		for _, e := range existing {
			if !e.Attrs.Has(Overloadable) {
				allOverloadable = false
				break
			}
		}
		if !allOverloadable {
			if issues != nil {
				issues.Errorf(sym.Decl.Range(), sym.Decl, "'%s' is already declared in this scope", sym.Name)
			}
			return
		}
	}
	sym.Scope = s
	s.entries[sym.Name] = append(existing, sym)
}

// Lookup returns every symbol bound to name visible from s: first the
// symbols (possibly several, for an overload set) defined directly in s,
// otherwise the result of looking in the parent scope. An empty result
// means the name is unbound anywhere in the chain.
func (s *Scope) Lookup(name string) []*Symbol {
	for cur := s; cur != nil; cur = cur.Parent {
		if syms, ok := cur.entries[name]; ok {
			return syms
		}
	}
	return nil
}

// IsEnclosedIn reports whether s is o or nested (transitively) inside o.
func (s *Scope) IsEnclosedIn(o *Scope) bool {
	for cur := s; cur != nil; cur = cur.Parent {
		if cur == o {
			return true
		}
	}
	return false
}

// DeclContext attaches a Scope to a structural position in the tree
// (module, struct/union/interface body, function body, block). It is a
// thin non-owning wrapper: several nodes (Module, StructDecl, BraceStmt,
// ...) each hold one.
type DeclContext struct {
	Parent *DeclContext
	Scope  *Scope
}

// NewDeclContext creates a context chained under parent (nil for a
// module's own, root context).
func NewDeclContext(parent *DeclContext) *DeclContext {
	var parentScope *Scope
	if parent != nil {
		parentScope = parent.Scope
	}
	return &DeclContext{Parent: parent, Scope: NewScope(parentScope)}
}

// IsEnclosedIn reports whether c is o or nested inside o.
func (c *DeclContext) IsEnclosedIn(o *DeclContext) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == o {
			return true
		}
	}
	return false
}

// MemberTable caches the resolved members of a nominal type: a name ->
// []*Symbol map rebuilt whenever the owning CompilerContext's generation
// counter advances past the generation this table was built at (type
// extensions bump the counter, invalidating every cached table).
type MemberTable struct {
	Generation uint64
	Members    map[string][]*Symbol
}

func newMemberTable(gen uint64) *MemberTable {
	return &MemberTable{Generation: gen, Members: make(map[string][]*Symbol)}
}

// CompilerContext owns everything process-wide: the interned type
// universe, the set of loaded modules, the member-table cache, and the
// generation counter that invalidates that cache when a type extension is
// added.
type CompilerContext struct {
	Types      *types.Context
	Modules    map[string]*Module
	generation uint64
	members    map[types.Type]*MemberTable
}

func NewCompilerContext() *CompilerContext {
	return &CompilerContext{
		Types:   types.NewContext(),
		Modules: make(map[string]*Module),
		members: make(map[types.Type]*MemberTable),
	}
}

// BumpGeneration advances the generation counter, invalidating every
// cached member table on next lookup. Called whenever a TypeExtensionDecl
// is bound.
func (c *CompilerContext) BumpGeneration() { c.generation++ }

// Generation returns the current generation counter value.
func (c *CompilerContext) Generation() uint64 { return c.generation }

// MemberTableFor returns the (possibly freshly rebuilt) member table for a
// nominal type. build is invoked to repopulate the table when none exists
// yet or the cached one predates the current generation.
func (c *CompilerContext) MemberTableFor(nominal types.Type, build func(*MemberTable)) *MemberTable {
	if t, ok := c.members[nominal]; ok && t.Generation == c.generation {
		return t
	}
	t := newMemberTable(c.generation)
	build(t)
	c.members[nominal] = t
	return t
}

// Module is a single compiled unit: the root of its own declaration
// context (with no parent), its top-level declarations, an optional
// top-level executable entry point, and the issues raised while
// processing it.
type Module struct {
	NodeBase
	Buffer  string
	Imports []string
	Decls   []Decl
	Main    *MainCodeDecl
	Context *DeclContext
	Issues  *diag.Set
}

// NewModule creates an empty module rooted at a fresh, parentless
// declaration context.
func NewModule(buffer string) *Module {
	m := &Module{
		Buffer:  buffer,
		Context: NewDeclContext(nil),
		Issues:  diag.NewSet(),
	}
	m.owner = m
	return m
}

func (m *Module) Children() []Node {
	out := childrenOf(m.Decls)
	return appendNonNil(out, m.Main)
}
func (m *Module) Accept(v Visitor)          { Walk(v, m) }
func (m *Module) AcceptT(t Transformer) Node { return t.Transform(m) }

func (m *Module) traverseT(t Transformer) Node {
	out := *m
	out.Decls = acceptAll(t, m.Decls, "Module.Decls")
	if m.Main != nil {
		out.Main = mustAs[*MainCodeDecl](m.Main.AcceptT(t), "Module.Main")
	}
	return &out
}

// AddDecl appends d to the module's top level and sets its owning module.
func (m *Module) AddDecl(d Decl) {
	setModuleRecursive(d, m)
	m.Decls = append(m.Decls, d)
}

func setModuleRecursive(n Node, m *Module) {
	if n == nil || isNilNode(n) {
		return
	}
	n.setModule(m)
	for _, c := range n.Children() {
		setModuleRecursive(c, m)
	}
}
