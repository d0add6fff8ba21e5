package main

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/shapestone/xmlindent/pkg/xmlfmt"
)

// fileResult is what one worker reports back over the results channel for
// a single discovered file.
type fileResult struct {
	path     string
	changed  bool
	err      error
	duration time.Duration
}

func runFormat(cmd *cobra.Command, args []string, flags cliOptions) error {
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("xmlindent: build logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	id := runID()
	logger = logger.With(zap.String("run_id", id))

	opts := toFormatOptions(flags)

	switch len(args) {
	case 0:
		return runDirectory(cmd, ".", opts, flags, logger)
	case 1:
		return dispatch(cmd, args[0], flags.output, opts, flags, logger)
	default:
		return dispatch(cmd, args[0], args[1], opts, flags, logger)
	}
}

func dispatch(cmd *cobra.Command, input, output string, opts xmlfmt.Options, flags cliOptions, logger *zap.Logger) error {
	fi, err := os.Stat(input)
	if err != nil {
		return fmt.Errorf("xmlindent: stat %s: %w", input, err)
	}
	if fi.IsDir() {
		return runDirectory(cmd, input, opts, flags, logger)
	}
	return runSingleFile(cmd, input, output, opts, flags, logger)
}

// runSingleFile formats one explicitly named file, honoring -o/--output
// and --check.
func runSingleFile(cmd *cobra.Command, input, output string, opts xmlfmt.Options, flags cliOptions, logger *zap.Logger) error {
	start := time.Now()
	src, err := os.ReadFile(input)
	if err != nil {
		return fmt.Errorf("xmlindent: read %s: %w", input, err)
	}

	formatted, err := xmlfmt.Format(src, opts)
	if err != nil {
		return fmt.Errorf("xmlindent: format %s: %w", input, err)
	}
	formatted = ensureTrailingEOL(formatted, opts)

	changed := !bytes.Equal(src, formatted)

	if flags.check {
		reportCheck(cmd, input, changed)
		if changed {
			return fmt.Errorf("xmlindent: %s is not formatted", input)
		}
		return nil
	}

	dest := input
	if output != "" {
		dest = output
	}
	if err := os.WriteFile(dest, formatted, info(input)); err != nil {
		return fmt.Errorf("xmlindent: write %s: %w", dest, err)
	}

	logger.Info("formatted file",
		zap.String("path", dest),
		zap.Int("bytes", len(formatted)),
		zap.Duration("elapsed", time.Since(start)),
		zap.Bool("changed", changed),
	)
	reportSuccess(cmd, dest, changed)
	return nil
}

// info returns the existing file's permissions, or a sane default if the
// stat fails (it already succeeded once in dispatch, so this should not).
func info(path string) os.FileMode {
	if fi, err := os.Stat(path); err == nil {
		return fi.Mode()
	}
	return 0o644
}

// runDirectory fans a worker pool across every discovered *.xml/*.xsd
// file under root, one xmlfmt.Format call (its own Tokenizer+Formatter
// pair) per worker goroutine, collecting results over a channel
// (SPEC_FULL.md §5).
func runDirectory(cmd *cobra.Command, root string, opts xmlfmt.Options, flags cliOptions, logger *zap.Logger) error {
	paths, err := discoverFiles(root)
	if err != nil {
		return fmt.Errorf("xmlindent: walk %s: %w", root, err)
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(paths) && len(paths) > 0 {
		workers = len(paths)
	}

	jobs := make(chan string)
	results := make(chan fileResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- formatOneFile(path, opts, flags)
			}
		}()
	}
	go func() {
		defer close(jobs)
		for _, p := range paths {
			jobs <- p
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var failures []fileResult
	changedCount := 0
	for res := range results {
		if res.err != nil {
			failures = append(failures, res)
			logger.Error("format failed", zap.String("path", res.path), zap.Error(res.err))
			continue
		}
		if res.changed {
			changedCount++
		}
		logger.Info("formatted file",
			zap.String("path", res.path),
			zap.Duration("elapsed", res.duration),
			zap.Bool("changed", res.changed),
		)
		reportSuccess(cmd, res.path, res.changed)
	}

	for _, f := range failures {
		reportFailure(cmd, f.path, f.err)
	}
	if flags.check && changedCount > 0 {
		return fmt.Errorf("xmlindent: %d file(s) not formatted", changedCount)
	}
	if len(failures) > 0 {
		return fmt.Errorf("xmlindent: %d file(s) failed to format", len(failures))
	}
	return nil
}

// formatOneFile is the unit of work each worker goroutine runs; it owns
// its own buffers end to end and shares no state with any other worker.
func formatOneFile(path string, opts xmlfmt.Options, flags cliOptions) fileResult {
	start := time.Now()
	src, err := os.ReadFile(path)
	if err != nil {
		return fileResult{path: path, err: fmt.Errorf("read: %w", err)}
	}
	formatted, err := xmlfmt.Format(src, opts)
	if err != nil {
		return fileResult{path: path, err: fmt.Errorf("format: %w", err)}
	}
	formatted = ensureTrailingEOL(formatted, opts)
	changed := !bytes.Equal(src, formatted)

	if flags.check {
		return fileResult{path: path, changed: changed, duration: time.Since(start)}
	}
	if changed {
		mode := info(path)
		if err := os.WriteFile(path, formatted, mode); err != nil {
			return fileResult{path: path, err: fmt.Errorf("write: %w", err)}
		}
	}
	return fileResult{path: path, changed: changed, duration: time.Since(start)}
}

// discoverFiles walks root recursively, collecting every *.xml and *.xsd
// file (spec.md §6's zero-argument mode).
func discoverFiles(root string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".xml", ".xsd":
			paths = append(paths, path)
		}
		return nil
	})
	return paths, err
}

// ensureTrailingEOL appends one line ending after the final tag when the
// pipeline's output doesn't already end in one: spec.md §8's scenario
// vectors show a trailing "\r\n" on formatted output, a file convention
// the CLI applies rather than a core formatting concern (pkg/xmlfmt
// leaves the decision to its caller). Skipped in indent_only mode, where
// inserting a byte not already a line ending would violate the "line
// count is preserved, only leading whitespace differs" property.
func ensureTrailingEOL(out []byte, opts xmlfmt.Options) []byte {
	if opts.IndentOnly {
		return out
	}
	if bytes.HasSuffix(out, []byte("\r\n")) {
		return out
	}
	return append(out, '\r', '\n')
}

func reportSuccess(cmd *cobra.Command, path string, changed bool) {
	label := "unchanged"
	c := color.New(color.FgHiBlack)
	if changed {
		label = "formatted"
		c = color.New(color.FgGreen)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorize(c, label), path)
}

func reportCheck(cmd *cobra.Command, path string, changed bool) {
	if !changed {
		return
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", colorize(color.New(color.FgYellow), "would reformat"), path)
}

func reportFailure(cmd *cobra.Command, path string, err error) {
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %s: %v\n", colorize(color.New(color.FgRed), "error"), path, err)
}
