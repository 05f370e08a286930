package internal

import (
	"fmt"

	"github.com/gnolang/effectlint/internal/lints"
	"github.com/gnolang/effectlint/internal/syntax"
	tt "github.com/gnolang/effectlint/internal/types"
)

/*
* Implement each lint rule as a separate struct
 */

// LintRule defines the interface for all lint rules.
type LintRule interface {
	// Check runs the lint rule on the given file and returns a slice of Issues.
	Check(file *syntax.File) ([]tt.Issue, error)

	// Name returns the name of the lint rule.
	Name() string

	Severity() tt.Severity
	SetSeverity(tt.Severity)
}

// EffectComponentRule enforces the effect suffix on components that
// render nothing.
type EffectComponentRule struct {
	checker  *lints.EffectChecker
	severity tt.Severity
}

// NewEffectComponentRule builds the rule from its configuration data.
// The only recognised key is "suffix".
func NewEffectComponentRule(data map[string]any) (LintRule, error) {
	var suffix string
	if v, ok := data["suffix"]; ok {
		s, ok := v.(string)
		if !ok {
			return nil, fmt.Errorf("%s: suffix must be a string, got %T", lints.EffectComponentRule, v)
		}
		suffix = s
	}

	checker, err := lints.NewEffectChecker(suffix)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", lints.EffectComponentRule, err)
	}
	return &EffectComponentRule{
		checker:  checker,
		severity: tt.SeverityError,
	}, nil
}

func (r *EffectComponentRule) Check(file *syntax.File) ([]tt.Issue, error) {
	return lints.DetectEffectComponents(file, r.checker)
}

func (r *EffectComponentRule) Name() string {
	return lints.EffectComponentRule
}

func (r *EffectComponentRule) Severity() tt.Severity {
	return r.severity
}

func (r *EffectComponentRule) SetSeverity(severity tt.Severity) {
	r.severity = severity
}
