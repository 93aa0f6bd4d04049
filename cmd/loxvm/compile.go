package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kristofer/loxvm/internal/compiler"
	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/object"
)

var compileCmd = &cobra.Command{
	Use:   "compile <source.lox> [output.loxc]",
	Short: "compile a Lox source file to a .loxc bytecode file",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		input := args[0]
		output := input
		if strings.HasSuffix(output, ".lox") {
			output = strings.TrimSuffix(output, ".lox")
		}
		output += ".loxc"
		if len(args) == 2 {
			output = args[1]
		}
		return compileFile(input, output)
	},
}

func compileFile(input, output string) error {
	source, err := os.ReadFile(input)
	if err != nil {
		return err
	}

	h := heap.New(newLogger())
	fn, err := compiler.Compile(string(source), h)
	if err != nil {
		return err
	}

	out, err := os.Create(output)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := object.SerializeFunction(fn, out); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}
	fmt.Printf("compiled %s -> %s\n", input, output)
	return nil
}
