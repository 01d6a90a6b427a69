package interp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenlang/anzenc/internal/lowir"
)

func unitWith(fns ...*lowir.Function) *lowir.Unit {
	u := &lowir.Unit{Functions: make(map[string]*lowir.Function)}
	for _, f := range fns {
		u.Functions[f.Name] = f
		u.Order = append(u.Order, f.Name)
	}
	return u
}

func block(label string, instrs ...lowir.Instr) *lowir.Block {
	return &lowir.Block{Label: label, Instrs: instrs}
}

// TestRunReturnsImmediateLiteral covers scenario 1's end state: a function
// that just returns an immediate int literal.
func TestRunReturnsImmediateLiteral(t *testing.T) {
	fn := &lowir.Function{
		Name:   "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry", lowir.Instr{Op: lowir.OpReturn, Src: "<int-1>", HasValue: true})},
	}
	in := New(unitWith(fn))
	v, err := in.Run("main", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
}

// TestApplyBuiltinArithmetic covers a single apply of the __builtin_add
// built-in on two immediate operands (1 + 2) and returns its result.
func TestApplyBuiltinArithmetic(t *testing.T) {
	fn := &lowir.Function{
		Name: "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpApply, Dst: "%1", Callee: "@__builtin_add", Args: []lowir.Reg{"<int-1>", "<int-2>"}},
			lowir.Instr{Op: lowir.OpReturn, Src: "%1", HasValue: true},
		)},
	}
	in := New(unitWith(fn))
	v, err := in.Run("main", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)
}

// TestCallUserFunctionWritesResultIntoCallerRegister exercises a two-frame
// call: main calls @add1(x) which returns x+1, and the result lands in
// main's destination register.
func TestCallUserFunctionWritesResultIntoCallerRegister(t *testing.T) {
	add1 := &lowir.Function{
		Name:   "add1",
		Params: []lowir.Reg{"%1"},
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpApply, Dst: "%2", Callee: "@__builtin_add", Args: []lowir.Reg{"%1", "<int-1>"}},
			lowir.Instr{Op: lowir.OpReturn, Src: "%2", HasValue: true},
		)},
	}
	main := &lowir.Function{
		Name: "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpApply, Dst: "%1", Callee: "@add1", Args: []lowir.Reg{"<int-41>"}},
			lowir.Instr{Op: lowir.OpReturn, Src: "%1", HasValue: true},
		)},
	}
	in := New(unitWith(main, add1))
	v, err := in.Run("main", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), v)
}

// TestPartialApplyProducesInvokableClosure covers scenario 6: a
// partial_apply builds a closure whose captured argument is prepended when
// later applied.
func TestPartialApplyProducesInvokableClosure(t *testing.T) {
	adder := &lowir.Function{
		Name:   "adder",
		Params: []lowir.Reg{"%1", "%2"}, // captured x, then y
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpApply, Dst: "%3", Callee: "@__builtin_add", Args: []lowir.Reg{"%1", "%2"}},
			lowir.Instr{Op: lowir.OpReturn, Src: "%3", HasValue: true},
		)},
	}
	main := &lowir.Function{
		Name: "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpPartialApply, Dst: "%1", Callee: "@adder", Args: []lowir.Reg{"<int-10>"}},
			lowir.Instr{Op: lowir.OpApply, Dst: "%2", Callee: "%1", Args: []lowir.Reg{"<int-5>"}},
			lowir.Instr{Op: lowir.OpReturn, Src: "%2", HasValue: true},
		)},
	}
	in := New(unitWith(main, adder))
	v, err := in.Run("main", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(15), v)
}

// TestUninitializedRegisterReadFails covers the "uninitialized register"
// error kind.
func TestUninitializedRegisterReadFails(t *testing.T) {
	fn := &lowir.Function{
		Name:   "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry", lowir.Instr{Op: lowir.OpReturn, Src: "%9", HasValue: true})},
	}
	in := New(unitWith(fn))
	_, err := in.Run("main", nil)
	require.Error(t, err)
	rerr, ok := err.(*RuntimeError)
	require.True(t, ok)
	assert.Equal(t, "uninitialized register", rerr.Kind)
}

// TestMakeRefAndCopyRoundTrip covers let-binding semantics: a make_ref cell
// written via copy and read back through the same register.
func TestMakeRefAndCopyRoundTrip(t *testing.T) {
	fn := &lowir.Function{
		Name: "main",
		Blocks: map[string]*lowir.Block{"entry": block("entry",
			lowir.Instr{Op: lowir.OpMakeRef, Dst: "%1"},
			lowir.Instr{Op: lowir.OpCopy, Src: "<int-7>", Dst: "%1"},
			lowir.Instr{Op: lowir.OpReturn, Src: "%1", HasValue: true},
		)},
	}
	in := New(unitWith(fn))
	v, err := in.Run("main", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(7), v)
}
