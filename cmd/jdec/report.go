package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"jdec/decompiler"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
)

// extensionFor maps an output format to the file extension its rendered
// source is written with.
func extensionFor(opts *cliOptions) string {
	switch opts.format {
	case "json-ast":
		return ".json"
	case "pseudocode":
		return ".pseudo"
	default:
		return ".java"
	}
}

// writeOutput places the rendered source next to a name derived from the
// input class file, inside outDir, creating it if necessary.
func writeOutput(outDir, inputPath, source string, opts *cliOptions) error {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+extensionFor(opts))
	if err := os.WriteFile(outPath, []byte(source), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", outPath, err)
	}
	return nil
}

// printReport writes a short diagnostic + counter summary to w, colored by
// severity the way a build tool's console report is, per §6's CLI surface.
func printReport(w io.Writer, result *decompiler.Result) {
	warn := color.New(color.FgYellow)
	fail := color.New(color.FgRed)
	info := color.New(color.FgCyan)

	for _, diag := range result.Diagnostics {
		switch diag.Level {
		case decompiler.Error:
			fail.Fprintln(w, diag.String())
		case decompiler.Warn:
			warn.Fprintln(w, diag.String())
		default:
			info.Fprintln(w, diag.String())
		}
	}

	s := result.Stats
	fmt.Fprintf(w, "methods: %s processed, %s succeeded, %s failed, %s skipped\n",
		humanize.Comma(int64(s.MethodsProcessed)),
		humanize.Comma(int64(s.MethodsSucceeded)),
		humanize.Comma(int64(s.MethodsFailed)),
		humanize.Comma(int64(s.MethodsSkipped)))
	fmt.Fprintf(w, "instructions: %s, structures: %s, expressions: %s, optimizer rounds: %s\n",
		humanize.Comma(int64(s.InstructionsProcessed)),
		humanize.Comma(int64(s.StructuresIdentified)),
		humanize.Comma(int64(s.ExpressionsRebuilt)),
		humanize.Comma(int64(s.OptimizationsApplied)))
	fmt.Fprintf(w, "wall time: %s\n", s.WallTime)
}
