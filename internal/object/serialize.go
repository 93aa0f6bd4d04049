package object

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/kristofer/loxvm/internal/chunk"
	"github.com/kristofer/loxvm/internal/value"
)

// Binary Format Layout (".loxc" files, one per top-level script function):
//
//	[Header]
//	  Magic (4 bytes): "LOXC"
//	  Version (1 byte): currently 1
//
//	[Function] (recursive: a function's constant pool may hold nested functions)
//	  Arity (1 byte)
//	  UpvalueCount (1 byte)
//	  HasName (1 byte), Name (4-byte length + UTF-8 bytes) if HasName
//	  [Chunk]
//	    CodeLen (4 bytes), Code bytes
//	    Lines: CodeLen x (4-byte int)
//	    ConstantCount (4 bytes)
//	    For each constant:
//	      Tag (1 byte): 0=nil 1=bool 2=number 3=string 4=function
//	      Data (variable, per tag)
//
// The header, length-prefixed constant pool, and tagged constant encoding
// mirror a flat bytecode serialization format, extended here to recurse
// into nested function constants so closures round-trip.
const (
	loxcMagic   = "LOXC"
	loxcVersion = 1
)

const (
	constTagNil byte = iota
	constTagBool
	constTagNumber
	constTagString
	constTagFunction
)

// Allocator is the minimal heap surface Deserialize needs to reconstruct
// interned strings and tracked functions. *heap.Heap satisfies it
// structurally, the same way package table's StringKey keeps package
// table from importing package object — here it keeps package object
// from importing package heap, which imports object.
type Allocator interface {
	InternString(chars string) *ObjString
	NewFunction() *ObjFunction
}

// SerializeFunction writes fn and everything it recursively references
// (its chunk's nested function constants) to w in the .loxc format.
func SerializeFunction(fn *ObjFunction, w io.Writer) error {
	if _, err := io.WriteString(w, loxcMagic); err != nil {
		return err
	}
	if err := writeByte(w, loxcVersion); err != nil {
		return err
	}
	return writeFunction(w, fn)
}

// DeserializeFunction reads a .loxc stream produced by SerializeFunction,
// allocating every string and function it encounters through alloc.
func DeserializeFunction(r io.Reader, alloc Allocator) (*ObjFunction, error) {
	magic := make([]byte, len(loxcMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return nil, fmt.Errorf("reading magic: %w", err)
	}
	if string(magic) != loxcMagic {
		return nil, fmt.Errorf("not a .loxc file (bad magic %q)", magic)
	}
	version, err := readByte(r)
	if err != nil {
		return nil, fmt.Errorf("reading version: %w", err)
	}
	if version != loxcVersion {
		return nil, fmt.Errorf("unsupported .loxc version %d (expected %d)", version, loxcVersion)
	}
	return readFunction(r, alloc)
}

func writeFunction(w io.Writer, fn *ObjFunction) error {
	if err := writeByte(w, byte(fn.Arity)); err != nil {
		return err
	}
	if err := writeByte(w, byte(fn.UpvalueCount())); err != nil {
		return err
	}
	if fn.Name == nil {
		if err := writeByte(w, 0); err != nil {
			return err
		}
	} else {
		if err := writeByte(w, 1); err != nil {
			return err
		}
		if err := writeString(w, fn.Name.Chars); err != nil {
			return err
		}
	}
	return writeChunk(w, fn.Chunk)
}

func readFunction(r io.Reader, alloc Allocator) (*ObjFunction, error) {
	arity, err := readByte(r)
	if err != nil {
		return nil, err
	}
	upvalueCount, err := readByte(r)
	if err != nil {
		return nil, err
	}
	hasName, err := readByte(r)
	if err != nil {
		return nil, err
	}
	var name *ObjString
	if hasName != 0 {
		s, err := readString(r)
		if err != nil {
			return nil, err
		}
		name = alloc.InternString(s)
	}

	fn := alloc.NewFunction()
	fn.Arity = int(arity)
	fn.SetUpvalueCount(int(upvalueCount))
	fn.Name = name

	c, err := readChunk(r, alloc)
	if err != nil {
		return nil, err
	}
	fn.Chunk = c
	return fn, nil
}

func writeChunk(w io.Writer, c *chunk.Chunk) error {
	if err := writeUint32(w, uint32(len(c.Code))); err != nil {
		return err
	}
	if _, err := w.Write(c.Code); err != nil {
		return err
	}
	for _, line := range c.Lines {
		if err := writeUint32(w, uint32(line)); err != nil {
			return err
		}
	}
	if err := writeUint32(w, uint32(len(c.Constants))); err != nil {
		return err
	}
	for _, v := range c.Constants {
		if err := writeValue(w, v); err != nil {
			return err
		}
	}
	return nil
}

func readChunk(r io.Reader, alloc Allocator) (*chunk.Chunk, error) {
	codeLen, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	code := make([]byte, codeLen)
	if _, err := io.ReadFull(r, code); err != nil {
		return nil, err
	}
	lines := make([]int, codeLen)
	for i := range lines {
		ln, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		lines[i] = int(ln)
	}
	constCount, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	constants := make([]value.Value, constCount)
	for i := range constants {
		v, err := readValue(r, alloc)
		if err != nil {
			return nil, err
		}
		constants[i] = v
	}
	return &chunk.Chunk{Code: code, Lines: lines, Constants: constants}, nil
}

func writeValue(w io.Writer, v value.Value) error {
	switch {
	case v.IsNil():
		return writeByte(w, constTagNil)
	case v.IsBool():
		if err := writeByte(w, constTagBool); err != nil {
			return err
		}
		if v.AsBool() {
			return writeByte(w, 1)
		}
		return writeByte(w, 0)
	case v.IsNumber():
		if err := writeByte(w, constTagNumber); err != nil {
			return err
		}
		return binary.Write(w, binary.BigEndian, math.Float64bits(v.AsNumber()))
	case v.ObjIs(value.ObjString):
		if err := writeByte(w, constTagString); err != nil {
			return err
		}
		return writeString(w, v.AsObj().(*ObjString).Chars)
	case v.ObjIs(value.ObjFunction):
		if err := writeByte(w, constTagFunction); err != nil {
			return err
		}
		return writeFunction(w, v.AsObj().(*ObjFunction))
	default:
		return fmt.Errorf("loxc: constant of kind %s cannot be serialized", v.AsObj().Header().Kind)
	}
}

func readValue(r io.Reader, alloc Allocator) (value.Value, error) {
	tag, err := readByte(r)
	if err != nil {
		return value.Nil, err
	}
	switch tag {
	case constTagNil:
		return value.Nil, nil
	case constTagBool:
		b, err := readByte(r)
		if err != nil {
			return value.Nil, err
		}
		return value.Bool(b != 0), nil
	case constTagNumber:
		var bits uint64
		if err := binary.Read(r, binary.BigEndian, &bits); err != nil {
			return value.Nil, err
		}
		return value.Number(math.Float64frombits(bits)), nil
	case constTagString:
		s, err := readString(r)
		if err != nil {
			return value.Nil, err
		}
		return value.FromObj(alloc.InternString(s)), nil
	case constTagFunction:
		fn, err := readFunction(r, alloc)
		if err != nil {
			return value.Nil, err
		}
		return value.FromObj(fn), nil
	default:
		return value.Nil, fmt.Errorf("loxc: unknown constant tag %d", tag)
	}
}

func writeByte(w io.Writer, b byte) error {
	_, err := w.Write([]byte{b})
	return err
}

func readByte(r io.Reader) (byte, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return buf[0], nil
}

func writeUint32(w io.Writer, v uint32) error {
	return binary.Write(w, binary.BigEndian, v)
}

func readUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.BigEndian, &v)
	return v, err
}

func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}
