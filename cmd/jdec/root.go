package main

import (
	"fmt"
	"os"

	"jdec/decompiler"
	"jdec/emit"
	"jdec/internal/jlog"

	"github.com/spf13/cobra"
)

// exitCode mirrors §6's CLI surface: 0 success, 2 bad usage, 3 malformed
// input, 4 internal error.
const (
	exitSuccess = 0
	exitUsage   = 2
	exitInput   = 3
	exitInternal = 4
)

// malformedInputError tags an error that should exit 3 rather than 4 -
// the file was readable but not a well-formed class (ReadClass's
// container-level abort), as opposed to an unexpected internal failure.
type malformedInputError struct{ err error }

func (e malformedInputError) Error() string { return e.err.Error() }
func (e malformedInputError) Unwrap() error { return e.err }

type cliOptions struct {
	outDir     string
	format     string
	noOptimize bool
	braceStyle string
	indent     int
	tabs       bool
	verbose    bool
}

func newRootCmd(opts *cliOptions, exitCodeOut *int) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "jdec <classfile>",
		Short:        "Decompile a JVM class file into readable source",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompile(cmd, args[0], opts, exitCodeOut)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.outDir, "out", "o", ".", "output directory for the decompiled source")
	flags.StringVar(&opts.format, "format", "java", "output format: java|pseudocode|json-ast")
	flags.BoolVar(&opts.noOptimize, "no-optimize", false, "skip the AST optimizer passes")
	flags.StringVar(&opts.braceStyle, "brace-style", "same-line", "brace placement: same-line|next-line")
	flags.IntVar(&opts.indent, "indent", 4, "indent width in spaces (ignored with --tabs)")
	flags.BoolVar(&opts.tabs, "tabs", false, "indent with tabs instead of spaces")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug-level logging")
	return cmd
}

func runDecompile(cmd *cobra.Command, inputPath string, opts *cliOptions, exitCodeOut *int) error {
	data, err := os.ReadFile(inputPath)
	if err != nil {
		*exitCodeOut = exitUsage
		return err
	}

	log := jlog.New(cmd.ErrOrStderr(), opts.verbose)

	decOpts, err := toDecompilerOptions(opts)
	if err != nil {
		*exitCodeOut = exitUsage
		return err
	}

	d := decompiler.New(log, decOpts)
	result, err := d.DecompileClass(data)
	if err != nil {
		*exitCodeOut = exitInput
		return malformedInputError{err}
	}

	if err := writeOutput(opts.outDir, inputPath, result.Source, opts); err != nil {
		*exitCodeOut = exitInternal
		return err
	}

	printReport(cmd.OutOrStdout(), result)
	*exitCodeOut = exitSuccess
	return nil
}

func toDecompilerOptions(opts *cliOptions) (decompiler.Options, error) {
	out := decompiler.DefaultOptions()
	out.NoOptimize = opts.noOptimize
	out.CodeGen.IndentSize = opts.indent
	out.CodeGen.UseTabs = opts.tabs

	switch opts.format {
	case "java":
		out.Format = decompiler.Java
	case "pseudocode":
		out.Format = decompiler.Pseudocode
	case "json-ast":
		out.Format = decompiler.JSONAST
	default:
		return out, fmt.Errorf("unrecognized --format %q (want java|pseudocode|json-ast)", opts.format)
	}

	switch opts.braceStyle {
	case "same-line":
		out.CodeGen.BraceStyle = emit.SameLine
	case "next-line":
		out.CodeGen.BraceStyle = emit.NextLine
	default:
		return out, fmt.Errorf("unrecognized --brace-style %q (want same-line|next-line)", opts.braceStyle)
	}
	return out, nil
}

// run builds and executes the root command against args, translating the
// outcome into a process exit code. Kept separate from main() so tests can
// drive it without forking a process.
func run(args []string) int {
	opts := &cliOptions{}
	exitCode := exitSuccess
	cmd := newRootCmd(opts, &exitCode)
	cmd.SetArgs(args)

	if err := cmd.Execute(); err != nil {
		if exitCode == exitSuccess {
			// cobra's own argument/flag validation failed before RunE ran.
			exitCode = exitUsage
		}
		fmt.Fprintln(cmd.ErrOrStderr(), err)
		return exitCode
	}
	return exitCode
}
