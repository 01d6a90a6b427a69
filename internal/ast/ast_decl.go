package ast

import "github.com/anzenlang/anzenc/internal/types"

// Decl is implemented by every declaration node variant.
type Decl interface {
	Node
	declNode()
}

// AssignOp names the three assignment flavors the surface language
// supports: copy duplicates the value, move transfers ownership, alias
// (&-) binds a reference to the source.
type AssignOp int

const (
	OpCopy AssignOp = iota
	OpMove
	OpAlias
)

func (op AssignOp) String() string {
	switch op {
	case OpCopy:
		return "="
	case OpMove:
		return "<-"
	case OpAlias:
		return "&-"
	}
	return "?="
}

// PropertyDecl declares a named value: a struct/union member or a local
// `let`/`var` binding hoisted out of a binding statement.
type PropertyDecl struct {
	NodeBase
	Name       string
	TypeAnn    TypeSig // may be nil; inferred from Init if absent
	Init       Expr    // may be nil for abstract/interface requirements
	Op         AssignOp
	Modifiers  []Modifier
	Attributes []Attribute

	Symbol *Symbol
	Type   types.QualifiedType
}

func (*PropertyDecl) declNode() {}

func (n *PropertyDecl) Children() []Node {
	var out []Node
	if n.TypeAnn != nil {
		out = appendNonNil(out, n.TypeAnn)
	}
	if n.Init != nil {
		out = appendNonNil(out, n.Init)
	}
	return out
}

func (n *PropertyDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *PropertyDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *PropertyDecl) traverseT(t Transformer) Node {
	out := *n
	if n.TypeAnn != nil {
		out.TypeAnn = mustAs[TypeSig](n.TypeAnn.AcceptT(t), "PropertyDecl.TypeAnn")
	}
	if n.Init != nil {
		out.Init = mustAs[Expr](n.Init.AcceptT(t), "PropertyDecl.Init")
	}
	return &out
}

// FuncDecl declares a (possibly generic, possibly overloaded) function.
type FuncDecl struct {
	NodeBase
	Name       string
	Generics   []*GenericParamDecl
	Params     []*ParamDecl
	ReturnType TypeSig
	Body       *BraceStmt // nil for interface requirements / builtins
	Modifiers  []Modifier
	Attributes []Attribute

	Symbol *Symbol
	Type   types.Type // the interned FuncType once solved
}

func (*FuncDecl) declNode() {}

func (n *FuncDecl) IsMutating() bool { return hasModifier(n.Modifiers, ModMutating) }
func (n *FuncDecl) IsStatic() bool   { return hasModifier(n.Modifiers, ModStatic) }

func (n *FuncDecl) Children() []Node {
	var out []Node
	for _, g := range n.Generics {
		out = appendNonNil(out, g)
	}
	for _, p := range n.Params {
		out = appendNonNil(out, p)
	}
	if n.ReturnType != nil {
		out = appendNonNil(out, n.ReturnType)
	}
	if n.Body != nil {
		out = appendNonNil(out, n.Body)
	}
	return out
}

func (n *FuncDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *FuncDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *FuncDecl) traverseT(t Transformer) Node {
	out := *n
	out.Generics = acceptAll(t, n.Generics, "FuncDecl.Generics")
	out.Params = acceptAll(t, n.Params, "FuncDecl.Params")
	if n.ReturnType != nil {
		out.ReturnType = mustAs[TypeSig](n.ReturnType.AcceptT(t), "FuncDecl.ReturnType")
	}
	if n.Body != nil {
		out.Body = mustAs[*BraceStmt](n.Body.AcceptT(t), "FuncDecl.Body")
	}
	return &out
}

// ParamDecl is one parameter of a function or lambda.
type ParamDecl struct {
	NodeBase
	Label   string // external call-site label; "" means positional
	Name    string
	TypeAnn TypeSig
	Default Expr // nil if no default value

	Symbol *Symbol
}

func (*ParamDecl) declNode() {}

func (n *ParamDecl) Children() []Node {
	var out []Node
	if n.TypeAnn != nil {
		out = appendNonNil(out, n.TypeAnn)
	}
	if n.Default != nil {
		out = appendNonNil(out, n.Default)
	}
	return out
}

func (n *ParamDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *ParamDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *ParamDecl) traverseT(t Transformer) Node {
	out := *n
	if n.TypeAnn != nil {
		out.TypeAnn = mustAs[TypeSig](n.TypeAnn.AcceptT(t), "ParamDecl.TypeAnn")
	}
	if n.Default != nil {
		out.Default = mustAs[Expr](n.Default.AcceptT(t), "ParamDecl.Default")
	}
	return &out
}

// GenericParamDecl introduces a type placeholder, optionally constrained
// to conform to one or more interfaces.
type GenericParamDecl struct {
	NodeBase
	Name        string
	Constraints []TypeSig

	Symbol      *Symbol
	Placeholder types.Type // the interned Placeholder, created on first use
}

func (*GenericParamDecl) declNode() {}

func (n *GenericParamDecl) Children() []Node {
	return childrenOf(n.Constraints)
}

func (n *GenericParamDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *GenericParamDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *GenericParamDecl) traverseT(t Transformer) Node {
	out := *n
	out.Constraints = acceptAll(t, n.Constraints, "GenericParamDecl.Constraints")
	return &out
}

// StructDecl declares a struct (product) type.
type StructDecl struct {
	NodeBase
	Name         string
	Generics     []*GenericParamDecl
	Conformances []TypeSig
	Members      []Decl // PropertyDecl / FuncDecl
	Attributes   []Attribute

	Context *DeclContext
	Symbol  *Symbol
	Type    types.Type
}

func (*StructDecl) declNode() {}

func (n *StructDecl) Children() []Node {
	var out []Node
	for _, g := range n.Generics {
		out = appendNonNil(out, g)
	}
	out = append(out, childrenOf(n.Conformances)...)
	out = append(out, childrenOf(n.Members)...)
	return out
}

func (n *StructDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *StructDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *StructDecl) traverseT(t Transformer) Node {
	out := *n
	out.Generics = acceptAll(t, n.Generics, "StructDecl.Generics")
	out.Conformances = acceptAll(t, n.Conformances, "StructDecl.Conformances")
	out.Members = acceptAll(t, n.Members, "StructDecl.Members")
	return &out
}

// UnionDecl declares a sum type: a set of cases plus optional extension
// members shared by every case.
type UnionDecl struct {
	NodeBase
	Name         string
	Generics     []*GenericParamDecl
	Conformances []TypeSig
	Cases        []Decl // UnionTypeCaseDecl / UnionAliasCaseDecl
	Members      []Decl
	Attributes   []Attribute

	Context *DeclContext
	Symbol  *Symbol
	Type    types.Type
}

func (*UnionDecl) declNode() {}

func (n *UnionDecl) Children() []Node {
	var out []Node
	for _, g := range n.Generics {
		out = appendNonNil(out, g)
	}
	out = append(out, childrenOf(n.Conformances)...)
	out = append(out, childrenOf(n.Cases)...)
	out = append(out, childrenOf(n.Members)...)
	return out
}

func (n *UnionDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *UnionDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *UnionDecl) traverseT(t Transformer) Node {
	out := *n
	out.Generics = acceptAll(t, n.Generics, "UnionDecl.Generics")
	out.Conformances = acceptAll(t, n.Conformances, "UnionDecl.Conformances")
	out.Cases = acceptAll(t, n.Cases, "UnionDecl.Cases")
	out.Members = acceptAll(t, n.Members, "UnionDecl.Members")
	return &out
}

// InterfaceDecl declares a protocol: a set of member requirements other
// nominal types may conform to.
type InterfaceDecl struct {
	NodeBase
	Name         string
	Generics     []*GenericParamDecl
	Conformances []TypeSig // interfaces this one refines
	Requirements []Decl    // FuncDecl/PropertyDecl with no bodies

	Context *DeclContext
	Symbol  *Symbol
	Type    types.Type
}

func (*InterfaceDecl) declNode() {}

func (n *InterfaceDecl) Children() []Node {
	var out []Node
	for _, g := range n.Generics {
		out = appendNonNil(out, g)
	}
	out = append(out, childrenOf(n.Conformances)...)
	out = append(out, childrenOf(n.Requirements)...)
	return out
}

func (n *InterfaceDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *InterfaceDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *InterfaceDecl) traverseT(t Transformer) Node {
	out := *n
	out.Generics = acceptAll(t, n.Generics, "InterfaceDecl.Generics")
	out.Conformances = acceptAll(t, n.Conformances, "InterfaceDecl.Conformances")
	out.Requirements = acceptAll(t, n.Requirements, "InterfaceDecl.Requirements")
	return &out
}

// UnionTypeCaseDecl is a union case carrying a payload, e.g. `case some(T)`.
type UnionTypeCaseDecl struct {
	NodeBase
	Name   string
	Params []*ParamDecl

	Symbol *Symbol
}

func (*UnionTypeCaseDecl) declNode() {}

func (n *UnionTypeCaseDecl) Children() []Node { return childrenOf(n.Params) }
func (n *UnionTypeCaseDecl) Accept(v Visitor)  { Walk(v, n) }
func (n *UnionTypeCaseDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *UnionTypeCaseDecl) traverseT(t Transformer) Node {
	out := *n
	out.Params = acceptAll(t, n.Params, "UnionTypeCaseDecl.Params")
	return &out
}

// UnionAliasCaseDecl is a union case that reuses another type's shape,
// e.g. `case wraps(SomeStruct)` without introducing fresh fields.
type UnionAliasCaseDecl struct {
	NodeBase
	Name    string
	Aliased TypeSig

	Symbol *Symbol
}

func (*UnionAliasCaseDecl) declNode() {}

func (n *UnionAliasCaseDecl) Children() []Node {
	return appendNonNil(nil, n.Aliased)
}
func (n *UnionAliasCaseDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *UnionAliasCaseDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *UnionAliasCaseDecl) traverseT(t Transformer) Node {
	out := *n
	if n.Aliased != nil {
		out.Aliased = mustAs[TypeSig](n.Aliased.AcceptT(t), "UnionAliasCaseDecl.Aliased")
	}
	return &out
}

// TypeExtensionDecl adds members and/or conformances to an existing
// nominal type, possibly conditioned on its generic arguments.
type TypeExtensionDecl struct {
	NodeBase
	Extended     TypeSig
	Generics     []*GenericParamDecl
	Conformances []TypeSig
	Members      []Decl

	Context *DeclContext
}

func (*TypeExtensionDecl) declNode() {}

func (n *TypeExtensionDecl) Children() []Node {
	var out []Node
	out = appendNonNil(out, n.Extended)
	for _, g := range n.Generics {
		out = appendNonNil(out, g)
	}
	out = append(out, childrenOf(n.Conformances)...)
	out = append(out, childrenOf(n.Members)...)
	return out
}

func (n *TypeExtensionDecl) Accept(v Visitor)          { Walk(v, n) }
func (n *TypeExtensionDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *TypeExtensionDecl) traverseT(t Transformer) Node {
	out := *n
	if n.Extended != nil {
		out.Extended = mustAs[TypeSig](n.Extended.AcceptT(t), "TypeExtensionDecl.Extended")
	}
	out.Generics = acceptAll(t, n.Generics, "TypeExtensionDecl.Generics")
	out.Conformances = acceptAll(t, n.Conformances, "TypeExtensionDecl.Conformances")
	out.Members = acceptAll(t, n.Members, "TypeExtensionDecl.Members")
	return &out
}

// BuiltinTypeDecl declares a name as referring to a compiler built-in
// type (Int, Bool, ...), giving the loader's "Builtin" module a body.
type BuiltinTypeDecl struct {
	NodeBase
	Name string

	Symbol *Symbol
	Type   types.Type
}

func (*BuiltinTypeDecl) declNode()         {}
func (n *BuiltinTypeDecl) Children() []Node { return nil }
func (n *BuiltinTypeDecl) Accept(v Visitor) { Walk(v, n) }
func (n *BuiltinTypeDecl) AcceptT(t Transformer) Node { return t.Transform(n) }
func (n *BuiltinTypeDecl) traverseT(Transformer) Node { out := *n; return &out }

// MainCodeDecl wraps a module's top-level executable statements.
type MainCodeDecl struct {
	NodeBase
	Body *BraceStmt
}

func (*MainCodeDecl) declNode() {}
func (n *MainCodeDecl) Children() []Node { return appendNonNil(nil, n.Body) }
func (n *MainCodeDecl) Accept(v Visitor) { Walk(v, n) }
func (n *MainCodeDecl) AcceptT(t Transformer) Node { return t.Transform(n) }

func (n *MainCodeDecl) traverseT(t Transformer) Node {
	out := *n
	if n.Body != nil {
		out.Body = mustAs[*BraceStmt](n.Body.AcceptT(t), "MainCodeDecl.Body")
	}
	return &out
}
