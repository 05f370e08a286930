package lints

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/gnolang/effectlint/internal/syntax"
	tt "github.com/gnolang/effectlint/internal/types"
)

const (
	EffectComponentRule = "effect-components"
	DefaultEffectSuffix = "Effect"

	// message identifiers
	MissingSuffix  = "MISSING_SUFFIX"
	SpuriousSuffix = "SPURIOUS_SUFFIX"
)

var ErrInvalidSuffix = errors.New("suffix must match ^[A-Z][A-Za-z]*$")

var pascalCase = regexp.MustCompile(`^[A-Z][A-Za-z]*$`)

// fragmentTags are element tags that render their children and nothing else.
var fragmentTags = map[string]bool{
	"React.Fragment": true,
	"Fragment":       true,
}

var messageTemplates = map[string]string{
	MissingSuffix:  "Effect component %s should end with the %s suffix",
	SpuriousSuffix: "Component %s shouldn't end with the %s suffix because it doesn't return a JSX fragment or null",
}

// Diagnostic is a single naming-convention finding.
type Diagnostic struct {
	MessageID string
	Message   string
	Name      string
	Range     syntax.Range
	Edit      *tt.TextEdit // nil when no safe rename exists
}

// Classification is the result of inspecting one declaration.
type Classification struct {
	Candidate bool // name is PascalCase
	HasSuffix bool
	NoRender  bool
}

// EffectChecker enforces that components rendering nothing carry the
// effect suffix, and that only such components carry it.
// It holds no state besides the suffix and is safe for concurrent use.
type EffectChecker struct {
	suffix string
}

// NewEffectChecker returns a checker for suffix. An empty suffix selects
// DefaultEffectSuffix.
func NewEffectChecker(suffix string) (*EffectChecker, error) {
	if suffix == "" {
		suffix = DefaultEffectSuffix
	}
	if !pascalCase.MatchString(suffix) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSuffix, suffix)
	}
	return &EffectChecker{suffix: suffix}, nil
}

func (c *EffectChecker) Suffix() string {
	return c.suffix
}

// IsPascalCase reports whether name is a component-shaped identifier.
func IsPascalCase(name string) bool {
	return pascalCase.MatchString(name)
}

// Classify inspects d without reporting anything.
func (c *EffectChecker) Classify(d *syntax.Decl) Classification {
	if d == nil || d.Name == nil || !IsPascalCase(d.Name.Name) {
		return Classification{}
	}
	return Classification{
		Candidate: true,
		HasSuffix: strings.HasSuffix(d.Name.Name, c.suffix),
		NoRender:  IsNoRender(d.Body),
	}
}

// Check returns the diagnostic for d, or nil when d complies or is not
// a candidate.
func (c *EffectChecker) Check(d *syntax.Decl) *Diagnostic {
	cl := c.Classify(d)
	if !cl.Candidate {
		return nil
	}

	name := d.Name.Name
	switch {
	case !cl.HasSuffix && cl.NoRender:
		return c.diagnostic(d, MissingSuffix, name+c.suffix)
	case cl.HasSuffix && !cl.NoRender:
		return c.diagnostic(d, SpuriousSuffix, c.trimSuffix(name))
	default:
		return nil
	}
}

// trimSuffix removes every trailing copy of the suffix, so that the
// renamed component is not flagged again.
func (c *EffectChecker) trimSuffix(name string) string {
	for strings.HasSuffix(name, c.suffix) {
		name = strings.TrimSuffix(name, c.suffix)
	}
	return name
}

func (c *EffectChecker) diagnostic(d *syntax.Decl, id, rename string) *Diagnostic {
	diag := &Diagnostic{
		MessageID: id,
		Message:   fmt.Sprintf(messageTemplates[id], d.Name.Name, c.suffix),
		Name:      d.Name.Name,
		Range:     d.Range,
	}
	// "Effect" or "EffectEffect" have nothing left to rename to.
	if rename != "" {
		diag.Edit = &tt.TextEdit{Range: d.Name.Range, NewText: rename}
	}
	return diag
}

// Visitors returns the per-kind callbacks for syntax.Walk. Every
// diagnostic is passed to report.
func (c *EffectChecker) Visitors(report func(*Diagnostic)) map[syntax.DeclKind]syntax.Visitor {
	visit := func(d *syntax.Decl) {
		if diag := c.Check(d); diag != nil {
			report(diag)
		}
	}
	visitors := make(map[syntax.DeclKind]syntax.Visitor, len(syntax.DeclKinds))
	for _, kind := range syntax.DeclKinds {
		visitors[kind] = visit
	}
	return visitors
}

// IsNoRender reports whether a function body provably renders nothing.
//
// An expression body must be an empty fragment or null. A block body
// needs at least one top-level return of an empty fragment, an empty
// React.Fragment element, or null. Returns nested in branches or inner
// blocks are not considered.
func IsNoRender(body syntax.Node) bool {
	switch b := body.(type) {
	case *syntax.Fragment:
		return len(b.Children) == 0
	case *syntax.Null:
		return true
	case *syntax.Block:
		for _, stmt := range b.Stmts {
			if ret, ok := stmt.(*syntax.Return); ok && isEmptyRender(ret.Arg) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func isEmptyRender(n syntax.Node) bool {
	switch v := n.(type) {
	case *syntax.Fragment:
		return len(v.Children) == 0
	case *syntax.Element:
		return fragmentTags[v.Tag] && len(v.Children) == 0
	case *syntax.Null:
		return true
	default:
		return false
	}
}

// DetectEffectComponents runs the checker over every declaration of file.
func DetectEffectComponents(file *syntax.File, checker *EffectChecker) ([]tt.Issue, error) {
	if checker == nil {
		return nil, errors.New("nil effect checker")
	}

	var issues []tt.Issue
	syntax.Walk(file, checker.Visitors(func(d *Diagnostic) {
		issues = append(issues, newEffectIssue(file, checker.Suffix(), d))
	}))
	return issues, nil
}

func newEffectIssue(file *syntax.File, suffix string, d *Diagnostic) tt.Issue {
	issue := tt.Issue{
		Rule:      EffectComponentRule,
		Category:  "style",
		Filename:  file.Path,
		MessageID: d.MessageID,
		Message:   d.Message,
		Start:     tt.Position(file.Path, d.Range.Start),
		End:       tt.Position(file.Path, d.Range.End),
		Fix:       d.Edit,
	}

	switch d.MessageID {
	case MissingSuffix:
		issue.Note = fmt.Sprintf("%s renders nothing: it returns an empty fragment or null", d.Name)
	case SpuriousSuffix:
		issue.Note = fmt.Sprintf("only components returning an empty fragment or null are %s components", suffix)
	}

	if d.Edit != nil {
		issue.Confidence = 1.0
		issue.Suggestion = renamedLine(file.Source, d.Edit)
	}
	return issue
}

// renamedLine returns the source line holding the edit with the edit applied.
func renamedLine(src []byte, edit *tt.TextEdit) string {
	start, end := edit.Range.Start.Offset, edit.Range.End.Offset
	if start < 0 || end > len(src) || start > end {
		return ""
	}

	lineStart := strings.LastIndexByte(string(src[:start]), '\n') + 1
	lineEnd := len(src)
	if i := strings.IndexByte(string(src[end:]), '\n'); i >= 0 {
		lineEnd = end + i
	}
	return string(src[lineStart:start]) + edit.NewText + string(src[end:lineEnd])
}
