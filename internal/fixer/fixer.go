package fixer

import (
	"context"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"

	"github.com/fatih/color"

	"github.com/gnolang/effectlint/internal/tsx"
	tt "github.com/gnolang/effectlint/internal/types"
)

var (
	removedStyle = color.New(color.FgRed)
	addedStyle   = color.New(color.FgGreen)
	fileStyle    = color.New(color.FgCyan, color.Bold)
)

// identifier matches the text a rename edit is allowed to replace.
var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

type Fixer struct {
	DryRun        bool
	MinConfidence float64 // threshold for fixing issues

	parser *tsx.Parser
	out    io.Writer
}

func New(dryRun bool, threshold float64) *Fixer {
	return &Fixer{
		DryRun:        dryRun,
		MinConfidence: threshold,
		parser:        tsx.New(tsx.WithMaxFileSize(0)),
		out:           os.Stdout,
	}
}

// SetOutput redirects progress messages, os.Stdout by default.
func (f *Fixer) SetOutput(w io.Writer) {
	f.out = w
}

// Result describes what Apply did with each edit.
type Result struct {
	Applied []tt.Issue
	Skipped []tt.Issue
}

// Fix applies the fixes of issues that belong to filename and rewrites the
// file. Issues without a fix, below the confidence threshold, or whose
// edit no longer matches the file are left alone.
func (f *Fixer) Fix(filename string, issues []tt.Issue) (Result, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read file: %w", err)
	}

	var candidates []tt.Issue
	for _, issue := range issues {
		if issue.Filename != filename || issue.Fix == nil {
			continue
		}
		if issue.Confidence < f.MinConfidence {
			continue
		}
		candidates = append(candidates, issue)
	}
	if len(candidates) == 0 {
		return Result{}, nil
	}

	fixed, result := Apply(content, candidates)

	if f.DryRun {
		for _, issue := range result.Applied {
			f.printRename(filename, content, issue)
		}
		return result, nil
	}
	if len(result.Applied) == 0 {
		return result, nil
	}

	if err := f.verify(filename, content, fixed); err != nil {
		return Result{Skipped: candidates}, err
	}

	info, err := os.Stat(filename)
	if err != nil {
		return Result{}, fmt.Errorf("failed to stat file: %w", err)
	}
	if err := os.WriteFile(filename, fixed, info.Mode().Perm()); err != nil {
		return Result{}, fmt.Errorf("failed to write file: %w", err)
	}

	fmt.Fprintf(f.out, "Fixed %d issue(s) in %s\n", len(result.Applied), filename)
	return result, nil
}

// Apply rewrites src with the fixes of issues, from the end of the file
// backwards so that earlier offsets stay valid. An edit is skipped when
// its range is out of bounds, overlaps an edit already applied, or does
// not cover an identifier.
func Apply(src []byte, issues []tt.Issue) ([]byte, Result) {
	sorted := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if issue.Fix != nil {
			sorted = append(sorted, issue)
		}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Fix.Range.Start.Offset > sorted[j].Fix.Range.Start.Offset
	})

	var result Result
	out := append([]byte(nil), src...)
	limit := len(src)
	for _, issue := range sorted {
		start, end := issue.Fix.Range.Start.Offset, issue.Fix.Range.End.Offset
		if start < 0 || start > end || end > limit || !identifier.Match(src[start:end]) {
			result.Skipped = append(result.Skipped, issue)
			continue
		}

		out = append(out[:start:start], append([]byte(issue.Fix.NewText), out[end:]...)...)
		limit = start
		result.Applied = append(result.Applied, issue)
	}
	return out, result
}

// verify refuses rewrites that turn a clean file into one with syntax errors.
func (f *Fixer) verify(filename string, before, after []byte) error {
	ctx := context.Background()
	orig, err := f.parser.Parse(ctx, filename, before)
	if err != nil {
		return fmt.Errorf("failed to parse file: %w", err)
	}
	if orig.HasErrors {
		return nil
	}

	fixed, err := f.parser.Parse(ctx, filename, after)
	if err != nil {
		return fmt.Errorf("failed to parse fixed file: %w", err)
	}
	if fixed.HasErrors {
		return fmt.Errorf("fix would introduce syntax errors in %s", filename)
	}
	return nil
}

func (f *Fixer) printRename(filename string, src []byte, issue tt.Issue) {
	edit := issue.Fix
	fmt.Fprintf(f.out, "Would fix issue in %s at line %d: %s\n",
		fileStyle.Sprint(filename), edit.Range.Start.Line, issue.Message)
	fmt.Fprintf(f.out, "  %s\n", removedStyle.Sprintf("- %s", src[edit.Range.Start.Offset:edit.Range.End.Offset]))
	fmt.Fprintf(f.out, "  %s\n", addedStyle.Sprintf("+ %s", edit.NewText))
}
