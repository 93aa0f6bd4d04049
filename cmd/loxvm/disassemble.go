package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/kristofer/loxvm/internal/compiler"
	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/object"
)

var disassembleCmd = &cobra.Command{
	Use:   "disassemble <file>",
	Short: "print the bytecode of a .lox source file or a compiled .loxc file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return disassembleFile(args[0])
	},
}

func disassembleFile(path string) error {
	h := heap.New(newLogger())

	var fn *object.ObjFunction
	if strings.HasSuffix(path, ".loxc") {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		fn, err = object.DeserializeFunction(f, h)
		if err != nil {
			return err
		}
	} else {
		source, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		fn, err = compiler.Compile(string(source), h)
		if err != nil {
			return err
		}
	}

	printDisassembly(fn)
	return nil
}

// printDisassembly walks fn and every function nested in its constant
// pool, printing each one's chunk under a heading naming it — the
// top-level script's own nested functions are exactly the OP_CLOSURE
// constants its chunk.Disassemble call can't recurse into on its own.
func printDisassembly(fn *object.ObjFunction) {
	color.New(color.FgYellow, color.Bold).Println(fn.String())
	fmt.Print(fn.Chunk.Disassemble(fn.String()))
	fmt.Println()

	for _, c := range fn.Chunk.Constants {
		if nested, ok := c.AsObj().(*object.ObjFunction); ok {
			printDisassembly(nested)
		}
	}
}
