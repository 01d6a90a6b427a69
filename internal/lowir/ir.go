// Package lowir is the typed intermediate representation lowering targets:
// a small register-based instruction set over named blocks, plus the
// lowering pass that walks a solved module and produces one Unit per
// compiled module.
package lowir

import (
	"fmt"
	"strings"

	"github.com/anzenlang/anzenc/internal/types"
)

// Opcode names one IR instruction kind.
type Opcode string

const (
	OpAlloc        Opcode = "alloc"
	OpMakeRef      Opcode = "make_ref"
	OpCopy         Opcode = "copy"
	OpMove         Opcode = "move"
	OpBind         Opcode = "bind"
	OpApply        Opcode = "apply"
	OpPartialApply Opcode = "partial_apply"
	OpExtract      Opcode = "extract"
	OpDrop         Opcode = "drop"
	OpBranch       Opcode = "branch"
	OpJump         Opcode = "jump"
	OpReturn       Opcode = "return"
)

// Reg is a register operand: a virtual register name ("%n"), an immediate
// literal ("<int-1>", "<bool-true>", "<string-\"...\">", "<null>"), or a
// reference to a global function ("@mangledName").
type Reg string

// Instr is one IR instruction. Only the fields relevant to Op are set.
type Instr struct {
	Op Opcode

	Dst  Reg
	Type types.Type // alloc/make_ref: the cell's element type

	Src Reg // copy/move/bind/drop source, or extract's base

	Index int // extract: field index

	Callee Reg   // apply/partial_apply
	Args   []Reg // apply/partial_apply

	Cond Reg    // branch
	Then string // branch: block label taken when Cond is true
	Else string // branch: block label taken otherwise

	Target string // jump: block label

	HasValue bool // return: whether Src carries a value
}

func (i Instr) String() string {
	switch i.Op {
	case OpAlloc:
		return fmt.Sprintf("%s = alloc %s", i.Dst, i.Type)
	case OpMakeRef:
		return fmt.Sprintf("%s = make_ref %s", i.Dst, i.Type)
	case OpCopy:
		return fmt.Sprintf("copy %s -> %s", i.Src, i.Dst)
	case OpMove:
		return fmt.Sprintf("move %s -> %s", i.Src, i.Dst)
	case OpBind:
		return fmt.Sprintf("bind %s -> %s", i.Src, i.Dst)
	case OpApply:
		return fmt.Sprintf("%s = apply %s(%s)", i.Dst, i.Callee, joinRegs(i.Args))
	case OpPartialApply:
		return fmt.Sprintf("%s = partial_apply %s(%s)", i.Dst, i.Callee, joinRegs(i.Args))
	case OpExtract:
		return fmt.Sprintf("%s = extract %s.%d", i.Dst, i.Src, i.Index)
	case OpDrop:
		return fmt.Sprintf("drop %s", i.Src)
	case OpBranch:
		return fmt.Sprintf("branch %s ? %s : %s", i.Cond, i.Then, i.Else)
	case OpJump:
		return fmt.Sprintf("jump %s", i.Target)
	case OpReturn:
		if i.HasValue {
			return fmt.Sprintf("return %s", i.Src)
		}
		return "return"
	}
	return string(i.Op)
}

func joinRegs(rs []Reg) string {
	parts := make([]string, len(rs))
	for i, r := range rs {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

// Block is one straight-line run of instructions ending in a terminator
// (branch/jump/return).
type Block struct {
	Label  string
	Instrs []Instr
}

func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s:\n", b.Label)
	for _, in := range b.Instrs {
		fmt.Fprintf(&sb, "  %s\n", in)
	}
	return sb.String()
}

func (b *Block) terminated() bool {
	if len(b.Instrs) == 0 {
		return false
	}
	switch b.Instrs[len(b.Instrs)-1].Op {
	case OpBranch, OpJump, OpReturn:
		return true
	}
	return false
}

// Function is one lowered function: its parameter registers (in domain
// order, captured-closure types prepended for lowered lambdas) and its
// blocks, kept both in a lookup map and an emission Order.
type Function struct {
	Name   string
	Type   *types.FuncType
	Params []Reg
	Order  []string
	Blocks map[string]*Block
}

func newFunction(name string, t *types.FuncType) *Function {
	return &Function{Name: name, Type: t, Blocks: make(map[string]*Block)}
}

func (f *Function) addBlock(label string) *Block {
	b := &Block{Label: label}
	f.Blocks[label] = b
	f.Order = append(f.Order, label)
	return b
}

func (f *Function) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "fn %s(%s):\n", f.Name, joinRegs(f.Params))
	for _, label := range f.Order {
		sb.WriteString(f.Blocks[label].String())
	}
	return sb.String()
}

// Unit is one module's worth of lowered functions.
type Unit struct {
	Functions map[string]*Function
	Order     []string
}

func newUnit() *Unit {
	return &Unit{Functions: make(map[string]*Function)}
}

func (u *Unit) add(f *Function) {
	u.Functions[f.Name] = f
	u.Order = append(u.Order, f.Name)
}

func (u *Unit) String() string {
	var sb strings.Builder
	for _, name := range u.Order {
		sb.WriteString(u.Functions[name].String())
		sb.WriteString("\n")
	}
	return sb.String()
}
