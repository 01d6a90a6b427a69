package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingVisitor struct {
	kinds []string
}

func (c *countingVisitor) Visit(n Node) Visitor {
	switch n.(type) {
	case *BindingStmt:
		c.kinds = append(c.kinds, "binding")
	case *IntLiteralExpr:
		c.kinds = append(c.kinds, "int")
	case *IdentifierExpr:
		c.kinds = append(c.kinds, "ident")
	}
	return c
}

func TestWalkVisitsEveryNodeExactlyOnce(t *testing.T) {
	stmt := &BindingStmt{
		Target: &IdentifierExpr{Name: "x"},
		Op:     OpCopy,
		Value:  &IntLiteralExpr{Value: 42},
		IsDecl: true,
	}

	v := &countingVisitor{}
	Walk(v, stmt)

	assert.Equal(t, []string{"binding", "ident", "int"}, v.kinds)
}

func TestInspectCanStopDescent(t *testing.T) {
	stmt := &BraceStmt{Stmts: []Stmt{
		&ReturnStmt{Value: &IntLiteralExpr{Value: 1}},
	}}

	var seen []Node
	Inspect(stmt, func(n Node) bool {
		seen = append(seen, n)
		_, isReturn := n.(*ReturnStmt)
		return !isReturn // stop before descending into the return's value
	})

	require.Len(t, seen, 2) // BraceStmt, ReturnStmt — IntLiteralExpr skipped
}

// renameTransformer rewrites every IdentifierExpr named "old" to "new".
type renameTransformer struct{}

func (renameTransformer) Transform(n Node) Node {
	if id, ok := n.(*IdentifierExpr); ok && id.Name == "old" {
		out := *id
		out.Name = "new"
		return &out
	}
	return Default(renameTransformer{}, n)
}

func TestTransformRewritesNestedChild(t *testing.T) {
	call := &CallExpr{
		Callee: &IdentifierExpr{Name: "old"},
		Args: []*CallArgumentExpr{
			{Value: &IdentifierExpr{Name: "old"}},
		},
	}

	out := mustAs[*CallExpr](call.AcceptT(renameTransformer{}), "test")

	assert.Equal(t, "new", out.Callee.(*IdentifierExpr).Name)
	assert.Equal(t, "new", out.Args[0].Value.(*IdentifierExpr).Name)
	// original untouched
	assert.Equal(t, "old", call.Callee.(*IdentifierExpr).Name)
}

func TestDefaultPanicsOnUnknownVariant(t *testing.T) {
	defer func() {
		r := recover()
		assert.NotNil(t, r)
	}()
	Default(renameTransformer{}, &unknownNode{})
}

// unknownNode satisfies Node but is not in Default's switch, simulating a
// node variant a transformer was never taught about.
type unknownNode struct{ NodeBase }

func (*unknownNode) Children() []Node          { return nil }
func (*unknownNode) Accept(v Visitor)          {}
func (*unknownNode) AcceptT(t Transformer) Node { return nil }
