package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	traceFlag    bool
	traceGCFlag  bool
	stressGCFlag bool
	heapMinFlag  int64
)

var rootCmd = &cobra.Command{
	Use:   "loxvm [script]",
	Short: "loxvm is a bytecode-compiled interpreter for the Lox language",
	Long: `loxvm compiles Lox source directly to bytecode, single pass, and
runs it on a stack-based VM with a tracing mark-sweep collector.

Run a script file:

  loxvm program.lox

Or drop into an interactive session with no arguments:

  loxvm`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return runREPL()
		}
		runFile(args[0])
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&traceFlag, "trace", false, "log every instruction the VM executes")
	rootCmd.PersistentFlags().BoolVar(&traceGCFlag, "trace-gc", false, "log garbage collector activity")
	rootCmd.PersistentFlags().BoolVar(&stressGCFlag, "stress-gc", false, "collect before every single allocation (for GC correctness testing)")
	rootCmd.PersistentFlags().Int64Var(&heapMinFlag, "heap-min", 0, "bytes to allocate before the first collection (0 uses the default)")

	rootCmd.AddCommand(compileCmd, disassembleCmd)
}

// newLogger builds the zerolog.Logger the VM, compiler, and heap share,
// raised to Debug only when one of the trace flags asks for it.
func newLogger() zerolog.Logger {
	level := zerolog.Disabled
	if traceFlag || traceGCFlag {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		Level(level).
		With().Timestamp().Logger()
}
