package lowir

import (
	"fmt"

	"github.com/anzenlang/anzenc/internal/ast"
	"github.com/anzenlang/anzenc/internal/types"
)

// Lower walks a module whose expressions have already had their solved
// types recorded (via ast.SetExprType, see internal/constraint's Apply) and
// produces its IR unit: one Function per FuncDecl plus one for the
// top-level main code, if present.
func Lower(cc *ast.CompilerContext, m *ast.Module) (*Unit, error) {
	u := newUnit()
	l := &moduleLowerer{cc: cc, unit: u}
	for _, d := range m.Decls {
		if err := l.topDecl(d, nil); err != nil {
			return nil, err
		}
	}
	if m.Main != nil && m.Main.Body != nil {
		fn := &types.FuncType{Domain: nil, Codomain: types.QualifiedType{Bare: cc.Types.GetBuiltin(types.Nothing)}}
		fl := newFuncLowerer(cc, "main", fn)
		fl.stmts(m.Main.Body.Stmts)
		fl.finish()
		u.add(fl.fn)
		for _, lf := range fl.lifted {
			u.add(lf)
		}
	}
	return u, nil
}

type moduleLowerer struct {
	cc   *ast.CompilerContext
	unit *Unit
}

func (l *moduleLowerer) topDecl(d ast.Decl, scope []string) error {
	switch n := d.(type) {
	case *ast.FuncDecl:
		return l.lowerFunc(n, scope)
	case *ast.StructDecl:
		for _, m := range n.Members {
			if err := l.topDecl(m, append(scope, n.Name)); err != nil {
				return err
			}
		}
	case *ast.UnionDecl:
		for _, m := range n.Members {
			if err := l.topDecl(m, append(scope, n.Name)); err != nil {
				return err
			}
		}
	case *ast.TypeExtensionDecl:
		for _, m := range n.Members {
			if err := l.topDecl(m, scope); err != nil {
				return err
			}
		}
	}
	return nil
}

func (l *moduleLowerer) lowerFunc(n *ast.FuncDecl, scope []string) error {
	if n.Body == nil {
		return nil
	}
	fnType, ok := n.Type.(*types.FuncType)
	if !ok {
		return fmt.Errorf("lowir: function %s has no resolved type", n.Name)
	}
	name := MangleSymbol(append(append([]string{}, scope...), n.Name), fnType)
	fl := newFuncLowerer(l.cc, name, fnType)
	for _, p := range n.Params {
		reg := fl.freshReg()
		fl.fn.Params = append(fl.fn.Params, reg)
		if p.Symbol != nil {
			fl.env[p.Symbol] = reg
		}
	}
	fl.stmts(n.Body.Stmts)
	fl.finish()
	l.unit.add(fl.fn)
	for _, lf := range fl.lifted {
		l.unit.add(lf)
	}
	return nil
}

// funcLowerer carries the state threaded through lowering one function
// body: the current block being appended to, the register environment
// mapping bound symbols to the register holding their reference cell (or,
// for parameters, their direct value), and the running register counter.
type funcLowerer struct {
	cc     *ast.CompilerContext
	fn     *Function
	cur    *Block
	env    map[*ast.Symbol]Reg
	regs   int
	lifted []*Function // lambdas lowered out of this function body
}

func newFuncLowerer(cc *ast.CompilerContext, name string, t *types.FuncType) *funcLowerer {
	fn := newFunction(name, t)
	fl := &funcLowerer{cc: cc, fn: fn, env: make(map[*ast.Symbol]Reg)}
	fl.cur = fn.addBlock("entry")
	return fl
}

func (fl *funcLowerer) finish() {
	if !fl.cur.terminated() {
		fl.cur.Instrs = append(fl.cur.Instrs, Instr{Op: OpReturn})
	}
}

func (fl *funcLowerer) freshReg() Reg {
	fl.regs++
	return Reg(fmt.Sprintf("%%%d", fl.regs))
}

func (fl *funcLowerer) emit(i Instr) { fl.cur.Instrs = append(fl.cur.Instrs, i) }

func (fl *funcLowerer) stmts(list []ast.Stmt) {
	for _, s := range list {
		fl.stmt(s)
	}
}

func (fl *funcLowerer) stmt(s ast.Stmt) {
	switch n := s.(type) {
	case *ast.BraceStmt:
		fl.stmts(n.Stmts)

	case *ast.IfStmt:
		fl.ifStmt(n)

	case *ast.WhileStmt:
		fl.whileStmt(n)

	case *ast.BindingStmt:
		fl.binding(n)

	case *ast.ReturnStmt:
		if n.Value == nil {
			fl.emit(Instr{Op: OpReturn})
			return
		}
		v := fl.expr(n.Value)
		fl.emit(Instr{Op: OpReturn, Src: v, HasValue: true})
	}
}

func (fl *funcLowerer) binding(n *ast.BindingStmt) {
	var val Reg
	if n.Value != nil {
		val = fl.expr(n.Value)
	}
	if n.IsDecl {
		if n.Symbol == nil {
			return
		}
		cellType := n.Symbol.Type.Bare
		dst := fl.freshReg()
		fl.emit(Instr{Op: OpMakeRef, Dst: dst, Type: cellType})
		fl.env[n.Symbol] = dst
		fl.writeInto(dst, val, n.Op)
		return
	}
	if id, ok := n.Target.(*ast.IdentifierExpr); ok && len(id.Candidates) == 1 {
		if dst, ok := fl.env[id.Candidates[0]]; ok {
			fl.writeInto(dst, val, n.Op)
		}
	}
}

func (fl *funcLowerer) writeInto(dst, val Reg, op ast.AssignOp) {
	switch op {
	case ast.OpMove:
		fl.emit(Instr{Op: OpMove, Src: val, Dst: dst})
	case ast.OpAlias:
		fl.emit(Instr{Op: OpBind, Src: val, Dst: dst})
	default:
		fl.emit(Instr{Op: OpCopy, Src: val, Dst: dst})
	}
}

// ifStmt lowers to exactly three blocks (then/else/after) entered by one
// branch; each arm that does not already end in a terminator (e.g. a
// return) gets a jump to after, so there are two jumps at most.
func (fl *funcLowerer) ifStmt(n *ast.IfStmt) {
	cond := fl.expr(n.Cond)
	thenB := fl.fn.addBlock(fmt.Sprintf("if.then.%d", len(fl.fn.Order)))
	elseB := fl.fn.addBlock(fmt.Sprintf("if.else.%d", len(fl.fn.Order)))
	afterB := fl.fn.addBlock(fmt.Sprintf("if.after.%d", len(fl.fn.Order)))

	fl.emit(Instr{Op: OpBranch, Cond: cond, Then: thenB.Label, Else: elseB.Label})

	fl.cur = thenB
	if n.Then != nil {
		fl.stmts(n.Then.Stmts)
	}
	if !fl.cur.terminated() {
		fl.emit(Instr{Op: OpJump, Target: afterB.Label})
	}

	fl.cur = elseB
	if n.Else != nil {
		fl.stmt(n.Else)
	}
	if !fl.cur.terminated() {
		fl.emit(Instr{Op: OpJump, Target: afterB.Label})
	}

	fl.cur = afterB
}

func (fl *funcLowerer) whileStmt(n *ast.WhileStmt) {
	headB := fl.fn.addBlock(fmt.Sprintf("while.head.%d", len(fl.fn.Order)))
	bodyB := fl.fn.addBlock(fmt.Sprintf("while.body.%d", len(fl.fn.Order)))
	afterB := fl.fn.addBlock(fmt.Sprintf("while.after.%d", len(fl.fn.Order)))

	if !fl.cur.terminated() {
		fl.emit(Instr{Op: OpJump, Target: headB.Label})
	}

	fl.cur = headB
	cond := fl.expr(n.Cond)
	fl.emit(Instr{Op: OpBranch, Cond: cond, Then: bodyB.Label, Else: afterB.Label})

	fl.cur = bodyB
	if n.Body != nil {
		fl.stmts(n.Body.Stmts)
	}
	if !fl.cur.terminated() {
		fl.emit(Instr{Op: OpJump, Target: headB.Label})
	}

	fl.cur = afterB
}
