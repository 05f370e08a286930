package nolint

import (
	"bytes"
	"fmt"
	"go/token"
	"strings"

	"github.com/gnolang/effectlint/internal/syntax"
)

const (
	nolintPrefix       = "nolint"
	disableNextLine    = "eslint-disable-next-line"
	disableCurrentLine = "eslint-disable-line"
)

// Manager manages nolint scopes and checks if a position is nolinted.
type Manager struct {
	// scopes maps filename to a slice of nolint scopes.
	scopes map[string][]nolintScope
}

// nolintScope represents a line range in the code where nolint applies.
type nolintScope struct {
	rules     map[string]struct{}
	startLine int
	endLine   int
}

type directive int

const (
	directiveNolint directive = iota
	directiveNextLine
	directiveCurrentLine
)

// ParseComments collects the nolint comments of f and returns a Manager.
//
// Supported forms:
//
//	// nolint                         all rules
//	// nolint:rule-a,rule-b           listed rules
//	// eslint-disable-next-line rule  the next line
//	// eslint-disable-line rule       the comment's own line
//
// A nolint comment that precedes every line of code applies to the whole
// file. An inline nolint comment applies to its own line. A standalone
// nolint comment applies to the next line, and to the whole declaration
// starting there if any.
func ParseComments(f *syntax.File) *Manager {
	manager := Manager{
		scopes: make(map[string][]nolintScope),
	}
	if f == nil {
		return &manager
	}

	lastLine := bytes.Count(f.Source, []byte("\n")) + 1
	for i, c := range f.Comments {
		ns, err := parseComment(f, i, c, lastLine)
		if err != nil {
			// ignore non-nolint comments
			continue
		}
		manager.scopes[f.Path] = append(manager.scopes[f.Path], ns)
	}
	return &manager
}

func parseComment(f *syntax.File, index int, c syntax.Comment, lastLine int) (nolintScope, error) {
	var ns nolintScope

	kind, rest, err := parseDirective(c.Text)
	if err != nil {
		return ns, err
	}
	ns.rules = parseIgnoreRuleNames(rest)
	line := c.Range.Start.Line

	switch kind {
	case directiveCurrentLine:
		ns.startLine, ns.endLine = line, line
		return ns, nil
	case directiveNextLine:
		ns.startLine, ns.endLine = line+1, line+1
		return ns, nil
	}

	if isBeforeCode(f, index) {
		ns.startLine, ns.endLine = 1, lastLine
		return ns, nil
	}

	if isInlineComment(f.Source, c) {
		ns.startLine, ns.endLine = line, line
		return ns, nil
	}

	ns.startLine, ns.endLine = line, line+1
	if d := findDeclOnLine(f, line+1); d != nil {
		ns.endLine = d.Range.End.Line
	}
	return ns, nil
}

// parseDirective strips the comment delimiters and splits the directive
// from its rule list.
func parseDirective(text string) (directive, string, error) {
	body := strings.TrimSpace(stripDelimiters(text))

	switch {
	case strings.HasPrefix(body, disableNextLine):
		return directiveNextLine, strings.TrimSpace(body[len(disableNextLine):]), nil
	case strings.HasPrefix(body, disableCurrentLine):
		return directiveCurrentLine, strings.TrimSpace(body[len(disableCurrentLine):]), nil
	case !strings.HasPrefix(body, nolintPrefix):
		return 0, "", fmt.Errorf("invalid nolint comment")
	}

	rest := body[len(nolintPrefix):]

	// A nolint comment can either have a list of rules after a colon (:)
	// or if no rules are specified, it applies to all rules
	if len(rest) > 0 && rest[0] != ':' {
		return 0, "", fmt.Errorf("invalid nolint comment format")
	}
	if len(rest) > 0 {
		rest = strings.TrimSpace(rest[1:])
		if rest == "" {
			return 0, "", fmt.Errorf("invalid nolint comment: no rules specified after colon")
		}
	}
	return directiveNolint, rest, nil
}

func stripDelimiters(text string) string {
	if strings.HasPrefix(text, "//") {
		return text[2:]
	}
	text = strings.TrimPrefix(text, "/*")
	return strings.TrimSuffix(text, "*/")
}

// parseIgnoreRuleNames parses the rule list from the nolint comment.
func parseIgnoreRuleNames(text string) map[string]struct{} {
	rulesMap := make(map[string]struct{})
	if text == "" {
		return rulesMap
	}
	// eslint separates rules with commas, nolint too; a trailing
	// "-- reason" is eslint's description syntax.
	if i := strings.Index(text, "--"); i >= 0 {
		text = text[:i]
	}
	for _, rule := range strings.Split(text, ",") {
		rule = strings.TrimSpace(rule)
		if rule != "" {
			rulesMap[rule] = struct{}{}
		}
	}
	return rulesMap
}

// isBeforeCode reports whether only whitespace and comments precede
// the comment at index.
func isBeforeCode(f *syntax.File, index int) bool {
	pos := 0
	for i := 0; i <= index; i++ {
		c := f.Comments[i]
		if c.Range.Start.Offset < pos || c.Range.Start.Offset > len(f.Source) {
			return false
		}
		if len(bytes.TrimSpace(f.Source[pos:c.Range.Start.Offset])) > 0 {
			return false
		}
		pos = c.Range.End.Offset
	}
	return true
}

// isInlineComment reports whether code precedes the comment on its line.
func isInlineComment(src []byte, c syntax.Comment) bool {
	start := c.Range.Start.Offset
	if start > len(src) {
		return false
	}
	lineStart := bytes.LastIndexByte(src[:start], '\n') + 1
	return len(bytes.TrimSpace(src[lineStart:start])) > 0
}

// findDeclOnLine returns the outermost declaration starting on line.
func findDeclOnLine(f *syntax.File, line int) *syntax.Decl {
	for _, d := range f.Decls {
		if d.Range.Start.Line == line {
			return d
		}
	}
	return nil
}

// IsNolint checks if a given position and rule are nolinted.
func (m *Manager) IsNolint(pos token.Position, ruleName string) bool {
	scopes, exists := m.scopes[pos.Filename]
	if !exists {
		return false
	}
	for _, ns := range scopes {
		if pos.Line < ns.startLine || pos.Line > ns.endLine {
			continue
		}
		// If the rules list is empty, nolint applies to all rules
		if len(ns.rules) == 0 {
			return true
		}
		if _, exists := ns.rules[ruleName]; exists {
			return true
		}
	}
	return false
}
