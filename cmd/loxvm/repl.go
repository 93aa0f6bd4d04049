package main

import (
	"fmt"
	"io"
	"os"

	"github.com/chzyer/readline"
	"github.com/fatih/color"
)

const version = "0.1.0"

// runREPL reads one line at a time and feeds each to the same long-lived
// VM. Globals declared on one line stay visible to the next, but every
// line gets a fresh stack and call-frame chain (vm.Interpret resets
// those itself). The REPL never exits on a runtime error, only on EOF;
// the process exit codes are reserved for running a file with
// `loxvm <file>`.
func runREPL() error {
	fmt.Printf("loxvm %s — a bytecode Lox interpreter\n", version)
	fmt.Println("Ctrl-D to exit.")

	machine, _ := newVM()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          color.CyanString("lox> "),
		HistoryFile:     historyFilePath(),
		InterruptPrompt: "^C",
		EOFPrompt:       "",
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if line == "" {
			continue
		}

		if runErr := machine.Interpret(line); runErr != nil {
			reportError(runErr)
		}
	}
}

// historyFilePath returns a best-effort path for persisting REPL line
// history across sessions; an empty string (in-memory only) is fine if
// the home directory can't be resolved.
func historyFilePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home + "/.loxvm_history"
}
