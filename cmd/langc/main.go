// Command langc is a developer-facing debug CLI over the three compiler
// driver entry points. It is not the CLI collaborator spec.md's scope
// excludes (that one sits in front of a grading service); this one simply
// drives internal/compiler directly for local inspection of a source file.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tuslang/langc/internal/compiler"
)

// Exit code constants, the same differentiated-by-failure-kind idiom
// cmd/devcmd-parser/main.go's plain os.Exit(ExitIOError)/os.Exit(ExitParseError)
// uses; here the codes travel inside an exitError instead, since cobra's
// RunE returns an error rather than calling os.Exit directly.
const (
	exitSuccess = 0
	exitUsage   = 1
	exitIOError = 2
	exitCompile = 3
)

// exitError pairs an error with the process exit code it should produce,
// letting a cobra RunE report which kind of failure occurred (file I/O vs.
// a lex/parse/emit error) without calling os.Exit itself.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

func ioError(err error) error      { return &exitError{code: exitIOError, err: err} }
func compileError(err error) error { return &exitError{code: exitCompile, err: err} }

func main() {
	os.Exit(run())
}

func run() int {
	var outputFile string

	rootCmd := &cobra.Command{
		Use:   "langc",
		Short: "Compile and inspect programs written in the toy language",
	}

	tokensCmd := &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token sequence of a source file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return ioError(fmt.Errorf("reading file: %w", err))
			}
			for _, tok := range compiler.Tokenize(string(source)) {
				fmt.Fprintln(cmd.OutOrStdout(), tok.String())
			}
			return nil
		},
	}

	astCmd := &cobra.Command{
		Use:   "ast <file>",
		Short: "Parse a source file and print its AST",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return ioError(fmt.Errorf("reading file: %w", err))
			}
			prog, err := compiler.Parse(string(source))
			if err != nil {
				return compileError(err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%+v\n", prog)
			return nil
		},
	}

	compileCmd := &cobra.Command{
		Use:   "compile <file>",
		Short: "Compile a source file to a WebAssembly component binary",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := os.ReadFile(args[0])
			if err != nil {
				return ioError(fmt.Errorf("reading file: %w", err))
			}
			bin, err := compiler.Compile(string(source))
			if err != nil {
				return compileError(err)
			}
			out := outputFile
			if out == "" {
				out = deriveOutputName(args[0])
			}
			if err := os.WriteFile(out, bin, 0o644); err != nil {
				return ioError(fmt.Errorf("writing %s: %w", out, err))
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
			return nil
		},
	}
	compileCmd.Flags().StringVarP(&outputFile, "output", "o", "", "output path for the component binary (default: <file> with .wasm extension)")

	rootCmd.AddCommand(tokensCmd, astCmd, compileCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ee *exitError
		if errors.As(err, &ee) {
			return ee.code
		}
		// cobra's own argument-count/unknown-command/unknown-flag errors
		// never pass through ioError/compileError, so they land here.
		return exitUsage
	}
	return exitSuccess
}

func deriveOutputName(sourcePath string) string {
	for i := len(sourcePath) - 1; i >= 0 && sourcePath[i] != '/'; i-- {
		if sourcePath[i] == '.' {
			return sourcePath[:i] + ".wasm"
		}
	}
	return sourcePath + ".wasm"
}
