// Command loxvm runs Lox programs: a file given as an argument, or an
// interactive REPL when none is given. Subcommands compile source to the
// .loxc bytecode format and disassemble it back to readable text.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
