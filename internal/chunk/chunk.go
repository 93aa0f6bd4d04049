// Package chunk defines the bytecode container the compiler emits into
// and the VM executes: a flat byte array of instructions, a parallel
// line table for diagnostics, and a constant pool.
//
// Bytecode format:
//
//	Source: 1 + 2 * 3;
//
//	Code:
//	  OP_CONSTANT 0   ; constants[0] = 1
//	  OP_CONSTANT 1   ; constants[1] = 2
//	  OP_CONSTANT 2   ; constants[2] = 3
//	  OP_MULTIPLY
//	  OP_ADD
//	  OP_POP
//	  OP_NIL
//	  OP_RETURN
//
// Every instruction is a one-byte opcode optionally followed by 0-2
// operand bytes; jump offsets are encoded as 16-bit big-endian so a
// single JUMP/JUMP_IF_FALSE/LOOP can span up to 65535 bytes of code.
package chunk

import "github.com/kristofer/loxvm/internal/value"

// OpCode identifies a bytecode instruction. Opcodes are a single byte,
// with 0-2 trailing operand bytes depending on the instruction.
type OpCode byte

const (
	// Stack operations.
	OpConstant OpCode = iota
	OpNil
	OpTrue
	OpFalse
	OpPop
	OpPopN // operand: count of values to pop (batched scope-exit pop)

	// Arithmetic / logic.
	OpAdd
	OpSubtract
	OpMultiply
	OpDivide
	OpNegate
	OpNot
	OpEqual
	OpGreater
	OpLess

	// Variables.
	OpDefineGlobal
	OpGetGlobal
	OpSetGlobal
	OpGetLocal
	OpSetLocal
	OpGetUpvalue
	OpSetUpvalue
	OpCloseUpvalue

	// Control flow.
	OpJump
	OpJumpIfFalse
	OpLoop
	OpCall
	OpReturn

	// Closures.
	OpClosure

	// Arrays.
	OpCreateArray
	OpGetArray
	OpSetArray

	// Classes.
	OpClass
	OpMethod
	OpInherit
	OpGetProperty
	OpSetProperty
	OpInvoke
	OpGetSuper
	OpSuperInvoke

	OpPrint
)

var opcodeNames = [...]string{
	OpConstant:      "OP_CONSTANT",
	OpNil:           "OP_NIL",
	OpTrue:          "OP_TRUE",
	OpFalse:         "OP_FALSE",
	OpPop:           "OP_POP",
	OpPopN:          "OP_POP_N",
	OpAdd:           "OP_ADD",
	OpSubtract:      "OP_SUBTRACT",
	OpMultiply:      "OP_MULTIPLY",
	OpDivide:        "OP_DIVIDE",
	OpNegate:        "OP_NEGATE",
	OpNot:           "OP_NOT",
	OpEqual:         "OP_EQUAL",
	OpGreater:       "OP_GREATER",
	OpLess:          "OP_LESS",
	OpDefineGlobal:  "OP_DEFINE_GLOBAL",
	OpGetGlobal:     "OP_GET_GLOBAL",
	OpSetGlobal:     "OP_SET_GLOBAL",
	OpGetLocal:      "OP_GET_LOCAL",
	OpSetLocal:      "OP_SET_LOCAL",
	OpGetUpvalue:    "OP_GET_UPVALUE",
	OpSetUpvalue:    "OP_SET_UPVALUE",
	OpCloseUpvalue:  "OP_CLOSE_UPVALUE",
	OpJump:          "OP_JUMP",
	OpJumpIfFalse:   "OP_JUMP_IF_FALSE",
	OpLoop:          "OP_LOOP",
	OpCall:          "OP_CALL",
	OpReturn:        "OP_RETURN",
	OpClosure:       "OP_CLOSURE",
	OpCreateArray:   "OP_CREATE_ARRAY",
	OpGetArray:      "OP_GET_ARRAY",
	OpSetArray:      "OP_SET_ARRAY",
	OpClass:         "OP_CLASS",
	OpMethod:        "OP_METHOD",
	OpInherit:       "OP_INHERIT",
	OpGetProperty:   "OP_GET_PROPERTY",
	OpSetProperty:   "OP_SET_PROPERTY",
	OpInvoke:        "OP_INVOKE",
	OpGetSuper:      "OP_GET_SUPER",
	OpSuperInvoke:   "OP_SUPER_INVOKE",
	OpPrint:         "OP_PRINT",
}

// String returns the opcode's mnemonic, used by the disassembler and by
// error messages reporting bytecode corruption.
func (op OpCode) String() string {
	if int(op) < len(opcodeNames) && opcodeNames[op] != "" {
		return opcodeNames[op]
	}
	return "OP_UNKNOWN"
}

// MaxConstants is the largest number of constants a single chunk may
// hold: constant indices are encoded in one byte.
const MaxConstants = 256

// Chunk is a compiled unit of bytecode: one per function (the top-level
// script compiles to the chunk of an implicit top-level function).
//
// Invariant: len(Lines) == len(Code) always; Lines[i] is the source line
// that produced Code[i], letting the VM report a line number for any
// instruction purely from its offset.
type Chunk struct {
	Code      []byte
	Lines     []int
	Constants []value.Value
}

// New returns an empty chunk.
func New() *Chunk {
	return &Chunk{}
}

// Write appends a raw byte to the code array, recording the source line
// it came from.
func (c *Chunk) Write(b byte, line int) {
	c.Code = append(c.Code, b)
	c.Lines = append(c.Lines, line)
}

// WriteOp appends an opcode byte.
func (c *Chunk) WriteOp(op OpCode, line int) {
	c.Write(byte(op), line)
}

// WriteUint16 appends a 16-bit big-endian operand, used for jump
// offsets.
func (c *Chunk) WriteUint16(v uint16, line int) {
	c.Write(byte(v>>8), line)
	c.Write(byte(v), line)
}

// AddConstant appends v to the constant pool and returns its index. It
// returns ok=false if the chunk already holds MaxConstants entries,
// since constant operands are single bytes.
func (c *Chunk) AddConstant(v value.Value) (index int, ok bool) {
	if len(c.Constants) >= MaxConstants {
		return 0, false
	}
	c.Constants = append(c.Constants, v)
	return len(c.Constants) - 1, true
}

// ReadUint16 decodes the big-endian 16-bit operand at offset.
func (c *Chunk) ReadUint16(offset int) uint16 {
	return uint16(c.Code[offset])<<8 | uint16(c.Code[offset+1])
}
