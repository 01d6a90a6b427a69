// Package interp implements a tree-walking interpreter over the lowered
// IR: a stack of frames, each a cursor into one block plus a register file,
// executing instructions until a return unwinds the stack.
package interp

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/anzenlang/anzenc/internal/builtins"
	"github.com/anzenlang/anzenc/internal/lowir"
)

// Ref is an explicit reference cell: the register a let/var binding
// resolves to, as opposed to a parameter's directly-stored value.
type Ref struct{ Value any }

// Closure pairs a lowered function name with the values captured at its
// partial_apply site.
type Closure struct {
	Fn       string
	Captured []any
}

// Frame is one activation record: the function being executed, a cursor
// (current block label + instruction index), and its register file.
type Frame struct {
	Fn        *lowir.Function
	Block     string
	IP        int
	Regs      map[lowir.Reg]any
	ReturnReg lowir.Reg // register in the caller's frame this call's result is written to
}

func newFrame(fn *lowir.Function) *Frame {
	return &Frame{Fn: fn, Block: "entry", Regs: make(map[lowir.Reg]any)}
}

// RuntimeError is a fatal interpreter error: the five kinds named by the
// interpreter's error taxonomy (uninitialized register, memory error,
// unimplemented built-in, invalid rvalue, unreachable instruction).
type RuntimeError struct {
	Kind string
	Msg  string
}

func (e *RuntimeError) Error() string { return fmt.Sprintf("%s: %s", e.Kind, e.Msg) }

func fail(kind, format string, args ...any) error {
	return &RuntimeError{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Interpreter executes one lowered Unit.
type Interpreter struct {
	Unit     *lowir.Unit
	Builtins *builtins.Registry
	frames   []*Frame
}

func New(u *lowir.Unit) *Interpreter {
	return &Interpreter{Unit: u, Builtins: builtins.NewRegistry()}
}

// Run executes entry (a mangled function name in the unit) with args as its
// initial parameter values and returns its result.
func (in *Interpreter) Run(entry string, args []any) (any, error) {
	fn, ok := in.Unit.Functions[entry]
	if !ok {
		return nil, fail("memory error", "no such function %q", entry)
	}
	frame := newFrame(fn)
	for i, p := range fn.Params {
		if i < len(args) {
			frame.Regs[p] = args[i]
		}
	}
	in.frames = append(in.frames, frame)
	return in.loop()
}

func (in *Interpreter) current() *Frame { return in.frames[len(in.frames)-1] }

func (in *Interpreter) loop() (any, error) {
	for len(in.frames) > 0 {
		f := in.current()
		block, ok := f.Fn.Blocks[f.Block]
		if !ok {
			return nil, fail("unreachable instruction", "block %q does not exist in %s", f.Block, f.Fn.Name)
		}
		if f.IP >= len(block.Instrs) {
			return nil, fail("unreachable instruction", "fell off the end of block %q in %s", f.Block, f.Fn.Name)
		}
		instr := block.Instrs[f.IP]
		f.IP++

		_, done, val, err := in.step(f, instr)
		if err != nil {
			return nil, err
		}
		if done {
			return val, nil
		}
	}
	return nil, nil
}

// step executes one instruction in frame f. When it returns done=true the
// whole Run call is finished (the outermost frame returned), with val as
// its result.
func (in *Interpreter) step(f *Frame, instr lowir.Instr) (rv any, done bool, val any, err error) {
	switch instr.Op {
	case lowir.OpAlloc:
		f.Regs[instr.Dst] = nil
		return nil, false, nil, nil

	case lowir.OpMakeRef:
		f.Regs[instr.Dst] = &Ref{}
		return nil, false, nil, nil

	case lowir.OpCopy, lowir.OpMove, lowir.OpBind:
		v, err := in.read(f, instr.Src)
		if err != nil {
			return nil, false, nil, err
		}
		if err := in.store(f, instr.Dst, v); err != nil {
			return nil, false, nil, err
		}
		return nil, false, nil, nil

	case lowir.OpExtract:
		v, err := in.read(f, instr.Src)
		if err != nil {
			return nil, false, nil, err
		}
		rec, ok := v.([]any)
		if !ok || instr.Index >= len(rec) {
			return nil, false, nil, fail("invalid rvalue", "extract from a non-record or out-of-range index %d", instr.Index)
		}
		f.Regs[instr.Dst] = rec[instr.Index]
		return nil, false, nil, nil

	case lowir.OpDrop:
		delete(f.Regs, instr.Src)
		return nil, false, nil, nil

	case lowir.OpBranch:
		v, err := in.read(f, instr.Cond)
		if err != nil {
			return nil, false, nil, err
		}
		b, ok := v.(bool)
		if !ok {
			return nil, false, nil, fail("invalid rvalue", "branch condition is not a Bool")
		}
		if b {
			f.Block, f.IP = instr.Then, 0
		} else {
			f.Block, f.IP = instr.Else, 0
		}
		return nil, false, nil, nil

	case lowir.OpJump:
		f.Block, f.IP = instr.Target, 0
		return nil, false, nil, nil

	case lowir.OpApply:
		return in.apply(f, instr)

	case lowir.OpPartialApply:
		return in.partialApply(f, instr)

	case lowir.OpReturn:
		return in.doReturn(f, instr)
	}
	return nil, false, nil, fail("unreachable instruction", "unknown opcode %q", instr.Op)
}

func (in *Interpreter) doReturn(f *Frame, instr lowir.Instr) (any, bool, any, error) {
	var result any
	if instr.HasValue {
		v, err := in.read(f, instr.Src)
		if err != nil {
			return nil, false, nil, err
		}
		result = v
	}
	returning := f
	in.frames = in.frames[:len(in.frames)-1]
	if len(in.frames) == 0 {
		return nil, true, result, nil
	}
	caller := in.current()
	caller.Regs[returning.ReturnReg] = result
	return nil, false, nil, nil
}

func (in *Interpreter) apply(f *Frame, instr lowir.Instr) (any, bool, any, error) {
	callee, err := in.resolveCallee(f, instr.Callee)
	if err != nil {
		return nil, false, nil, err
	}
	args := make([]any, len(instr.Args))
	for i, a := range instr.Args {
		v, err := in.read(f, a)
		if err != nil {
			return nil, false, nil, err
		}
		args[i] = v
	}
	return in.invoke(f, instr.Dst, callee, args)
}

func (in *Interpreter) invoke(f *Frame, dst lowir.Reg, callee any, args []any) (any, bool, any, error) {
	switch c := callee.(type) {
	case string:
		if in.Builtins.Has(c) {
			v, err := in.Builtins.Call(c, args)
			if err != nil {
				return nil, false, nil, fail("unimplemented built-in", "%v", err)
			}
			f.Regs[dst] = v
			return nil, false, nil, nil
		}
		fn, ok := in.Unit.Functions[c]
		if !ok {
			return nil, false, nil, fail("memory error", "no such function %q", c)
		}
		callFrame := newFrame(fn)
		for i, p := range fn.Params {
			if i < len(args) {
				callFrame.Regs[p] = args[i]
			}
		}
		callFrame.ReturnReg = dst
		in.frames = append(in.frames, callFrame)
		return nil, false, nil, nil
	case *Closure:
		return in.invoke(f, dst, c.Fn, append(append([]any{}, c.Captured...), args...))
	default:
		return nil, false, nil, fail("invalid rvalue", "apply target is not callable")
	}
}

func (in *Interpreter) partialApply(f *Frame, instr lowir.Instr) (any, bool, any, error) {
	callee, err := in.resolveCallee(f, instr.Callee)
	if err != nil {
		return nil, false, nil, err
	}
	name, ok := callee.(string)
	if !ok {
		return nil, false, nil, fail("invalid rvalue", "partial_apply target is not a function reference")
	}
	captured := make([]any, len(instr.Args))
	for i, a := range instr.Args {
		v, err := in.read(f, a)
		if err != nil {
			return nil, false, nil, err
		}
		captured[i] = v
	}
	f.Regs[instr.Dst] = &Closure{Fn: name, Captured: captured}
	return nil, false, nil, nil
}

func (in *Interpreter) resolveCallee(f *Frame, reg lowir.Reg) (any, error) {
	if strings.HasPrefix(string(reg), "@") {
		return strings.TrimPrefix(string(reg), "@"), nil
	}
	return in.read(f, reg)
}

// read resolves a register operand to a value: an immediate literal, a
// global function reference, or a live register (dereferencing through a
// *Ref cell when present). Reading a register no instruction has written
// yet is the "uninitialized register" fatal error.
func (in *Interpreter) read(f *Frame, reg lowir.Reg) (any, error) {
	s := string(reg)
	if v, ok := parseImmediate(s); ok {
		return v, nil
	}
	if strings.HasPrefix(s, "@") {
		return strings.TrimPrefix(s, "@"), nil
	}
	v, ok := f.Regs[reg]
	if !ok {
		return nil, fail("uninitialized register", "register %s was never written", reg)
	}
	if ref, ok := v.(*Ref); ok {
		return ref.Value, nil
	}
	return v, nil
}

func (in *Interpreter) store(f *Frame, reg lowir.Reg, v any) error {
	existing, ok := f.Regs[reg]
	if ref, isRef := existing.(*Ref); ok && isRef {
		ref.Value = v
		return nil
	}
	f.Regs[reg] = v
	return nil
}

func parseImmediate(s string) (any, bool) {
	if !strings.HasPrefix(s, "<") || !strings.HasSuffix(s, ">") {
		return nil, false
	}
	body := s[1 : len(s)-1]
	switch {
	case body == "null":
		return nil, true
	case strings.HasPrefix(body, "bool-"):
		return body == "bool-true", true
	case strings.HasPrefix(body, "int-"):
		n, err := strconv.ParseInt(strings.TrimPrefix(body, "int-"), 10, 64)
		if err != nil {
			return int64(0), true
		}
		return n, true
	case strings.HasPrefix(body, "float-"):
		n, err := strconv.ParseFloat(strings.TrimPrefix(body, "float-"), 64)
		if err != nil {
			return float64(0), true
		}
		return n, true
	case strings.HasPrefix(body, "string-"):
		raw := strings.TrimPrefix(body, "string-")
		if unq, err := strconv.Unquote(raw); err == nil {
			return unq, true
		}
		return raw, true
	}
	return nil, false
}
