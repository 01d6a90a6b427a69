// Package ast is the typed Abstract Syntax Tree and its associated data
// model: declaration/statement/signature/expression node variants, the
// declaration-context scope tree, symbol tables, and the visitor and
// transformer traversal protocols every later pass consumes.
//
// Node identity is reference identity, never structural — two nodes are
// equal only if they are the same pointer. Cross-links between nodes
// (declaration <-> referring identifier, placeholder <-> declaration,
// symbol <-> scope) are non-owning, matching the "arena + index" design in
// the project notes: a Module owns its nodes, children hold pointers into
// that arena, and back-links (Owner, Parent) do not participate in
// ownership. This mirrors the teacher's ast.File/ast.Node split but
// replaces its class-per-surface-construct hierarchy with the closed
// tagged-variant families the specification names.
package ast

import "github.com/anzenlang/anzenc/internal/source"

// Node is the base interface implemented by every AST node.
type Node interface {
	Range() source.Range
	Module() *Module
	setModule(m *Module)
	// Children returns this node's structural children in the fixed
	// traversal order: declarations, then signatures, then statements,
	// then expressions, left to right.
	Children() []Node
	// Accept runs Walk(visitor, self): visitor.Visit(self), the visitor's
	// fan-in hook, then descent into the children with the visitor it returns.
	Accept(v Visitor)
	// AcceptT calls transformer.Transform(self), returning the (possibly
	// different) node the parent should keep in this position.
	AcceptT(t Transformer) Node
}

// NodeBase is embedded by every concrete node; it supplies the identity
// bookkeeping (source range, owning module) common to all variants.
type NodeBase struct {
	Rng   source.Range
	owner *Module
}

func (b *NodeBase) Range() source.Range { return b.Rng }
func (b *NodeBase) Module() *Module     { return b.owner }
func (b *NodeBase) setModule(m *Module) { b.owner = m }

// Visitor is the fan-in hook every node's Accept calls. Visit returns the
// Visitor to continue descent with (commonly itself) or nil to stop. The
// default traversal behavior — "do nothing but keep walking" — is
// achieved by a Visit that always returns itself; Walk performs the
// depth-first pre-order descent into Children in the documented order.
// This mirrors go/ast's Visitor/Walk idiom.
type Visitor interface {
	Visit(n Node) (w Visitor)
}

// Walk performs the default depth-first, pre-order traversal: it calls
// v.Visit(n), and if the result is non-nil, recurses into n's children
// with that visitor. n.Accept(v) is the same call.
func Walk(v Visitor, n Node) {
	if n == nil || v == nil {
		return
	}
	if w := v.Visit(n); w != nil {
		Traverse(w, n)
	}
}

// Traverse calls Walk on every structural child of n, in fixed order.
func Traverse(v Visitor, n Node) {
	for _, c := range n.Children() {
		Walk(v, c)
	}
}

// inspectorFunc adapts a plain function to a Visitor, matching go/ast's
// Inspect helper.
type inspectorFunc func(Node) bool

func (f inspectorFunc) Visit(n Node) Visitor {
	if f(n) {
		return f
	}
	return nil
}

// Inspect walks n, calling fn for every node; fn returns false to skip
// that node's children.
func Inspect(n Node, fn func(Node) bool) {
	Walk(inspectorFunc(fn), n)
}

// Transformer rewrites nodes. Transform may return a different node
// variant for a child than the one it replaces only if the parent accepts
// that variant in that field (e.g. a signature where a signature was
// expected) — otherwise Default's traversal panics with an internal error, since
// that indicates a bug in an earlier pass rather than a user error.
type Transformer interface {
	Transform(n Node) Node
}

// Default performs the structural (child-rewriting) traversal for n under
// transformer t: every child is transformed via c.AcceptT(t) and the
// parent is rebuilt with the results. Transformers call this for any node
// variant they do not want to special-case themselves, mirroring the
// "default visit behavior is to traverse" rule for Visitor.
func Default(t Transformer, n Node) Node {
	switch v := n.(type) {
	case *PropertyDecl:
		return v.traverseT(t)
	case *FuncDecl:
		return v.traverseT(t)
	case *ParamDecl:
		return v.traverseT(t)
	case *GenericParamDecl:
		return v.traverseT(t)
	case *StructDecl:
		return v.traverseT(t)
	case *UnionDecl:
		return v.traverseT(t)
	case *InterfaceDecl:
		return v.traverseT(t)
	case *UnionTypeCaseDecl:
		return v.traverseT(t)
	case *UnionAliasCaseDecl:
		return v.traverseT(t)
	case *TypeExtensionDecl:
		return v.traverseT(t)
	case *BuiltinTypeDecl:
		return v.traverseT(t)
	case *MainCodeDecl:
		return v.traverseT(t)
	case *Module:
		return v.traverseT(t)

	case *QualifiedTypeSig:
		return v.traverseT(t)
	case *IdentifierTypeSig:
		return v.traverseT(t)
	case *NestedTypeSig:
		return v.traverseT(t)
	case *ImplicitNestedTypeSig:
		return v.traverseT(t)
	case *FunctionTypeSig:
		return v.traverseT(t)
	case *ParameterTypeSig:
		return v.traverseT(t)
	case *InvalidTypeSig:
		return v.traverseT(t)

	case *BraceStmt:
		return v.traverseT(t)
	case *IfStmt:
		return v.traverseT(t)
	case *WhileStmt:
		return v.traverseT(t)
	case *BindingStmt:
		return v.traverseT(t)
	case *ReturnStmt:
		return v.traverseT(t)
	case *InvalidStmt:
		return v.traverseT(t)

	case *NullExpr:
		return v.traverseT(t)
	case *LambdaExpr:
		return v.traverseT(t)
	case *UnsafeCastExpr:
		return v.traverseT(t)
	case *InfixExpr:
		return v.traverseT(t)
	case *PrefixExpr:
		return v.traverseT(t)
	case *CallExpr:
		return v.traverseT(t)
	case *CallArgumentExpr:
		return v.traverseT(t)
	case *IdentifierExpr:
		return v.traverseT(t)
	case *SelectExpr:
		return v.traverseT(t)
	case *ImplicitSelectExpr:
		return v.traverseT(t)
	case *ArrayLiteralExpr:
		return v.traverseT(t)
	case *SetLiteralExpr:
		return v.traverseT(t)
	case *MapLiteralExpr:
		return v.traverseT(t)
	case *BoolLiteralExpr:
		return v.traverseT(t)
	case *IntLiteralExpr:
		return v.traverseT(t)
	case *FloatLiteralExpr:
		return v.traverseT(t)
	case *StringLiteralExpr:
		return v.traverseT(t)
	case *ParenExpr:
		return v.traverseT(t)
	case *InvalidExpr:
		return v.traverseT(t)
	}
	panic("ast: Default given an unknown node variant")
}

// mustAs type-asserts a transformed child back to T. A mismatch means a
// transformer handed the parent a node variant it cannot accept in that
// slot — per the traversal contract this is a fatal internal error, not a
// recoverable one.
func mustAs[T Node](n Node, field string) T {
	v, ok := n.(T)
	if !ok {
		panic("ast: transformer returned an unacceptable node variant for " + field)
	}
	return v
}

func acceptAll[T Node](t Transformer, nodes []T, field string) []T {
	if nodes == nil {
		return nil
	}
	out := make([]T, len(nodes))
	for i, n := range nodes {
		out[i] = mustAs[T](n.AcceptT(t), field)
	}
	return out
}

func childrenOf[T Node](nodes []T) []Node {
	out := make([]Node, len(nodes))
	for i, n := range nodes {
		out[i] = n
	}
	return out
}

func appendNonNil(dst []Node, n Node) []Node {
	if n == nil || isNilNode(n) {
		return dst
	}
	return append(dst, n)
}

// isNilNode guards against a typed-nil interface (a nil *FooExpr boxed
// into the Node interface, which is != nil under ==).
func isNilNode(n Node) bool {
	switch v := n.(type) {
	case *PropertyDecl:
		return v == nil
	case *FuncDecl:
		return v == nil
	case *IfStmt:
		return v == nil
	case *BraceStmt:
		return v == nil
	case *MainCodeDecl:
		return v == nil
	}
	return false
}
