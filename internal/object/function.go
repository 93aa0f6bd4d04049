package object

import (
	"fmt"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/value"
)

// ObjFunction is a compiled function body: its arity, how many upvalues
// it closes over, and the chunk of bytecode the compiler emitted for it.
// A bare ObjFunction is never called directly — OP_CALL always operates
// on the ObjClosure wrapping it, even for functions that capture
// nothing, so the VM has exactly one calling convention.
type ObjFunction struct {
	value.ObjHeader
	Arity        int
	upvalueCount int
	Chunk        *chunk.Chunk
	Name         *ObjString // nil for the implicit top-level script function
}

// NewFunction returns an empty function ready for the compiler to emit
// into via Chunk.
func NewFunction() *ObjFunction {
	return &ObjFunction{
		ObjHeader: value.ObjHeader{Kind: value.ObjFunction},
		Chunk:     chunk.New(),
	}
}

// UpvalueCount reports how many upvalues this function's OP_CLOSURE
// instruction captures. Package chunk's disassembler calls this
// structurally (via its local hasUpvalueCount interface) to know how
// many (is_local, index) operand pairs follow OP_CLOSURE, without
// chunk needing to import object.
func (f *ObjFunction) UpvalueCount() int { return f.upvalueCount }

// SetUpvalueCount is called once by the compiler after it finishes
// compiling f's body and knows how many upvalues it closes over.
func (f *ObjFunction) SetUpvalueCount(n int) { f.upvalueCount = n }

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.Chars)
}
