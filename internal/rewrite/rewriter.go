package rewrite

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/alucardeht/mcp-proxy-devtools/internal/logger"
)

type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

type Report struct {
	Scanned int
	Fixed   []string
	Failed  []*FileError
}

func (r *Report) FixedCount() int {
	return len(r.Fixed)
}

// Rewriter applies Rules to every file under Root whose name ends in Suffix.
// Exclude holds doublestar patterns matched against slash-separated paths
// relative to Root.
type Rewriter struct {
	Root      string
	Suffix    string
	Exclude   []string
	Rules     RuleSet
	Formatter Formatter

	// Out receives the per-file console report. Nil discards it.
	Out io.Writer
}

func (r *Rewriter) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}

// Matches reports whether path is a file the rewriter would process.
func (r *Rewriter) Matches(path string) bool {
	if !strings.HasSuffix(filepath.Base(path), r.Suffix) {
		return false
	}

	rel, err := filepath.Rel(r.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false
	}
	rel = filepath.ToSlash(rel)

	for _, pattern := range r.Exclude {
		if match, _ := doublestar.Match(pattern, rel); match {
			return false
		}
	}

	return true
}

// RewriteFile applies the rule set to one file. The file is rewritten, and
// reported as fixed, only when the resulting text differs from what was read.
func (r *Rewriter) RewriteFile(path string) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}

	text, enc, err := Decode(data)
	if err != nil {
		return false, err
	}

	updated := r.Rules.Apply(text)
	if updated == text {
		return false, nil
	}

	out, err := Encode(updated, enc)
	if err != nil {
		return false, err
	}

	if err := os.WriteFile(path, out, 0644); err != nil {
		return false, fmt.Errorf("failed to write file: %w", err)
	}

	return true, nil
}

// process runs RewriteFile and records the outcome. Errors stop at the file.
func (r *Rewriter) process(path string, report *Report) {
	log := logger.ForComponent("rewrite")
	report.Scanned++

	fixed, err := r.RewriteFile(path)
	if err != nil {
		log.Warn("failed to process file", "path", path, "error", err)
		fmt.Fprintf(r.out(), "Error processing %s: %v\n", path, err)
		report.Failed = append(report.Failed, &FileError{Path: path, Err: err})
		return
	}

	if fixed {
		log.Debug("file fixed", "path", path)
		fmt.Fprintf(r.out(), "Fixed: %s\n", path)
		report.Fixed = append(report.Fixed, path)
	}
}

// Run rewrites every matching file under Root, then runs the formatter.
// Only an unreadable root or ctx cancellation makes Run return an error.
func (r *Rewriter) Run(ctx context.Context) (*Report, error) {
	log := logger.ForComponent("rewrite")

	info, err := os.Stat(r.Root)
	if err != nil {
		return nil, fmt.Errorf("failed to open scan root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan root %s is not a directory", r.Root)
	}

	log.Info("scanning", "root", r.Root, "suffix", r.Suffix, "rules", r.Rules.Len())

	report := &Report{}
	err = filepath.WalkDir(r.Root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if walkErr != nil {
			if path == r.Root {
				return walkErr
			}
			log.Warn("failed to read directory", "path", path, "error", walkErr)
			fmt.Fprintf(r.out(), "Error processing %s: %v\n", path, walkErr)
			report.Failed = append(report.Failed, &FileError{Path: path, Err: walkErr})
			return nil
		}

		if d.IsDir() || !r.Matches(path) {
			return nil
		}

		r.process(path, report)
		return nil
	})
	if err != nil {
		return report, fmt.Errorf("scan aborted: %w", err)
	}

	fmt.Fprintf(r.out(), "\nFixed %d files\n", report.FixedCount())
	log.Info("scan complete", "scanned", report.Scanned, "fixed", report.FixedCount(), "failed", len(report.Failed))

	r.format(ctx)

	return report, nil
}

// RewriteFiles handles an explicit batch of paths, as delivered by the
// watcher, and runs the formatter when anything changed.
func (r *Rewriter) RewriteFiles(ctx context.Context, paths []string) *Report {
	report := &Report{}
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if !r.Matches(path) {
			continue
		}
		r.process(path, report)
	}

	if report.FixedCount() > 0 {
		fmt.Fprintf(r.out(), "\nFixed %d files\n", report.FixedCount())
		r.format(ctx)
	}

	return report
}

func (r *Rewriter) format(ctx context.Context) {
	if r.Formatter == nil {
		return
	}

	fmt.Fprintf(r.out(), "Running %s...\n", r.Formatter)
	if err := r.Formatter.Format(ctx); err != nil {
		logger.ForComponent("rewrite").Warn("formatter failed", "command", r.Formatter.String(), "error", err)
	}
}
