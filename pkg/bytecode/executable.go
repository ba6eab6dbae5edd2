package bytecode

import (
	"encoding/binary"
	"fmt"
	"strings"

	"ecmacore/pkg/value"
)

// BinaryOperator selects the concrete operation OpApplyBinary performs;
// it rides as the op's single 16-bit operand rather than a pool index,
// since the operator set is small, fixed, and never needs deduplication
// machinery the way constants or names do.
type BinaryOperator uint16

const (
	BinAdd BinaryOperator = iota
	BinSubtract
	BinMultiply
	BinDivide
	BinRemainder
	BinExponent
	BinBitwiseAnd
	BinBitwiseOr
	BinBitwiseXor
	BinShiftLeft
	BinShiftRight
	BinUnsignedShiftRight
	BinStringConcat
)

// FunctionDescriptor is a function-expression or arrow-function pool
// entry: the AST range the compiler still needs to lower lazily (or, in
// this implementation, the already-compiled sub-Executable — see
// SPEC_FULL.md 6.6's "AST ranges + strict-mode flag"; this engine
// compiles function bodies eagerly at enclosing-function compile time
// rather than lazily at first call, so the descriptor holds the result
// rather than a range into source) plus the flags MakeClosure and
// InstantiateOrdinaryFunctionExpression/InstantiateArrowFunctionExpression
// need to build the right kind of function record.
type FunctionDescriptor struct {
	Name           string
	ParameterCount int
	IsStrict       bool
	IsArrow        bool
	IsGenerator    bool
	IsAsync        bool
	Executable     *Executable
}

// Executable is the compiler's output for one script, module, function
// body, or class field initializer: a flat instruction stream plus the
// parallel pools SPEC_FULL.md 6.6 names. Grounded format-wise on the
// teacher's pkg/vm.Chunk (instruction bytes + constant pool + per-
// instruction line table + exception table), generalized with the
// function-expression/arrow-function/class-initializer pools the
// teacher's single-pass register compiler didn't need since it resolved
// closures inline rather than through a separate descriptor pool.
type Executable struct {
	Code      []byte
	Lines     []int
	Constants []value.Value

	FunctionExpressions []FunctionDescriptor
	ArrowFunctions      []FunctionDescriptor
	ClassInitializers   []*Executable

	// ParameterNames lists this function body's formal parameter names in
	// declaration order, empty for a script/module-top-level Executable.
	// The VM's ECMAScriptFunctionRecord call path binds args[i] to
	// ParameterNames[i] (undefined past the end of args) in the fresh
	// call environment before running Code from pc 0.
	ParameterNames []string
	IsArrow        bool
	IsStrict       bool

	Exceptions []ExceptionHandler

	// StackSlots is the maximum depth the value stack reaches while
	// executing this Executable, computed by the compiler so the VM can
	// preallocate a frame's stack storage instead of growing it
	// instruction by instruction. This implementation routes every named
	// binding through an environment record (see heap.EnvironmentRecord)
	// rather than a stack slot, so unlike the teacher's register
	// allocator this count has nothing to do with variable count — it is
	// pure evaluation-stack bookkeeping (OpLoad/binary operands/call
	// argument staging).
	StackSlots int
	Source     string // display name for disassembly/stack traces
}

// ExceptionHandler mirrors PushExceptionJumpTarget's recorded state: the
// stack depths to truncate to and the instruction to resume at, scoped
// to [TryStart, TryEnd) in the instruction stream it guards.
type ExceptionHandler struct {
	TryStart   int
	TryEnd     int
	HandlerPC  int
	ValueDepth int
	RefDepth   int
	CatchSlot  int // -1 if the handler has no catch binding (finally-only)
}

func New(source string) *Executable {
	return &Executable{Source: source}
}

func (e *Executable) WriteOp(op Op, line int) int {
	pc := len(e.Code)
	e.Code = append(e.Code, byte(op))
	e.Lines = append(e.Lines, line)
	return pc
}

func (e *Executable) WriteUint16(v uint16) {
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], v)
	e.Code = append(e.Code, b[:]...)
}

func (e *Executable) ReadUint16(offset int) uint16 {
	return binary.BigEndian.Uint16(e.Code[offset : offset+2])
}

// PatchUint16 overwrites the operand at offset, used to back-patch a
// forward jump once its target is known.
func (e *Executable) PatchUint16(offset int, v uint16) {
	binary.BigEndian.PutUint16(e.Code[offset:offset+2], v)
}

// AddConstant interns v into the constant pool, deduplicating identical
// heap-resident entries by index equality (safe: string/number/bigint
// interning already collapses equal content to one heap slot, so two
// Values with the same index really are the same constant) and inline
// entries by raw equality.
func (e *Executable) AddConstant(v value.Value) uint16 {
	for i, existing := range e.Constants {
		if existing == v {
			return uint16(i)
		}
	}
	e.Constants = append(e.Constants, v)
	idx := len(e.Constants) - 1
	if idx > 0xFFFF {
		panic("bytecode: too many constants in one Executable")
	}
	return uint16(idx)
}

func (e *Executable) AddFunctionExpression(d FunctionDescriptor) uint16 {
	e.FunctionExpressions = append(e.FunctionExpressions, d)
	return uint16(len(e.FunctionExpressions) - 1)
}

func (e *Executable) AddArrowFunction(d FunctionDescriptor) uint16 {
	e.ArrowFunctions = append(e.ArrowFunctions, d)
	return uint16(len(e.ArrowFunctions) - 1)
}

func (e *Executable) GetLine(pc int) int {
	if pc < 0 || pc >= len(e.Lines) {
		return 0
	}
	return e.Lines[pc]
}

// Disassemble renders the instruction stream for debugging, in the
// teacher's "%04d opcode operands" style.
func (e *Executable) Disassemble() string {
	var b strings.Builder
	fmt.Fprintf(&b, "== %s ==\n", e.Source)
	pc := 0
	for pc < len(e.Code) {
		pc = e.disassembleOne(&b, pc)
	}
	return b.String()
}

func (e *Executable) disassembleOne(b *strings.Builder, pc int) int {
	op := Op(e.Code[pc])
	fmt.Fprintf(b, "%04d %s", pc, op)
	next := pc + 1
	switch op.operandCount() {
	case 1:
		arg := e.ReadUint16(next)
		fmt.Fprintf(b, " %d", arg)
		next += 2
	case 2:
		a := e.ReadUint16(next)
		c := e.ReadUint16(next + 2)
		fmt.Fprintf(b, " %d %d", a, c)
		next += 4
	}
	b.WriteByte('\n')
	return next
}
