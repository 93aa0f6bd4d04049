package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"

	"github.com/kristofer/loxvm/internal/compiler"
	"github.com/kristofer/loxvm/internal/heap"
	"github.com/kristofer/loxvm/internal/object"
	"github.com/kristofer/loxvm/internal/vm"
)

// Conventional Lox exit codes: 65 for a compile error (EX_DATAERR), 70
// for a runtime error (EX_SOFTWARE), 0 on success.
const (
	exitDataErr  = 65
	exitSoftware = 70
)

func newVM() (*vm.VM, *heap.Heap) {
	log := newLogger()
	h := heap.New(log)
	h.SetStressGC(stressGCFlag)
	if heapMinFlag > 0 {
		h.SetNextGC(heapMinFlag)
	}
	machine := vm.New(h, os.Stdout, log)
	machine.Trace = traceFlag
	machine.TraceGC = traceGCFlag
	return machine, h
}

// runFile runs the program at path, exiting the process with the
// conventional exit code for whatever failure mode it hits. A .loxc
// extension is loaded as pre-compiled bytecode; anything else is
// compiled from source. On success it returns normally; on any failure
// it exits the process instead of returning.
func runFile(path string) {
	machine, h := newVM()

	var runErr error
	if strings.HasSuffix(path, ".loxc") {
		f, err := os.Open(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
			os.Exit(exitSoftware)
		}
		defer f.Close()
		fn, err := object.DeserializeFunction(f, h)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
			os.Exit(exitDataErr)
		}
		runErr = machine.InterpretFunction(fn)
	} else {
		source, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "loxvm: %v\n", err)
			os.Exit(exitSoftware)
		}
		runErr = machine.Interpret(string(source))
	}

	if runErr != nil {
		reportError(runErr)
		switch runErr.(type) {
		case *compiler.CompileError:
			os.Exit(exitDataErr)
		case *vm.RuntimeError:
			os.Exit(exitSoftware)
		default:
			os.Exit(exitSoftware)
		}
	}
}

func reportError(err error) {
	color.New(color.FgRed).Fprintln(os.Stderr, err.Error())
}
