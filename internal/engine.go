package internal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/gnolang/effectlint/internal/lints"
	"github.com/gnolang/effectlint/internal/nolint"
	"github.com/gnolang/effectlint/internal/tsx"
	tt "github.com/gnolang/effectlint/internal/types"
)

// Engine manages the linting process.
type Engine struct {
	rootDir      string
	ignoredRules map[string]bool
	ignoredPaths []string
	rules        map[string]LintRule
	parser       *tsx.Parser
	cache        *Cache
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithCache reuses the issues of unchanged files.
func WithCache(c *Cache) EngineOption {
	return func(e *Engine) {
		e.cache = c
	}
}

// WithParser replaces the default source parser.
func WithParser(p *tsx.Parser) EngineOption {
	return func(e *Engine) {
		e.parser = p
	}
}

// NewEngine creates a new lint engine.
func NewEngine(rootDir string, rules map[string]tt.ConfigRule, opts ...EngineOption) (*Engine, error) {
	engine := &Engine{
		rootDir: rootDir,
		parser:  tsx.New(),
	}
	for _, opt := range opts {
		opt(engine)
	}
	if err := engine.applyRules(rules); err != nil {
		return nil, err
	}

	return engine, nil
}

// ruleConstructor builds a rule from the "data" section of its configuration.
type ruleConstructor func(data map[string]any) (LintRule, error)

type ruleMap map[string]ruleConstructor

// allRuleConstructors maps rule names to their constructors.
var allRuleConstructors = ruleMap{
	lints.EffectComponentRule: NewEffectComponentRule,
}

// RuleNames returns the names of every known rule, sorted.
func RuleNames() []string {
	names := make([]string, 0, len(allRuleConstructors))
	for name := range allRuleConstructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (e *Engine) applyRules(rules map[string]tt.ConfigRule) error {
	e.rules = make(map[string]LintRule)
	if err := e.registerDefaultRules(rules); err != nil {
		return err
	}

	// Iterate over the rules and apply severity
	for key, rule := range rules {
		r := e.findRule(key)
		if r == nil {
			// Unknown rule, continue to the next one
			continue
		}
		if rule.Severity == tt.SeverityOff {
			e.IgnoreRule(key)
		}
		r.SetSeverity(rule.Severity)
	}
	return nil
}

func (e *Engine) registerDefaultRules(rules map[string]tt.ConfigRule) error {
	for key, newRuleCstr := range allRuleConstructors {
		newRule, err := newRuleCstr(rules[key].Data)
		if err != nil {
			return fmt.Errorf("error configuring rule: %w", err)
		}
		e.rules[key] = newRule
	}
	return nil
}

func (e *Engine) findRule(name string) LintRule {
	if rule, ok := e.rules[name]; ok {
		return rule
	}
	return nil
}

// Run applies all lint rules to the given file and returns a slice of Issues.
func (e *Engine) Run(filename string) ([]tt.Issue, error) {
	if e.isIgnoredPath(filename) {
		return nil, nil
	}

	// the cache holds the issues of every rule, --ignore is applied on top
	if e.cache != nil {
		if issues, ok := e.cache.Get(filename); ok {
			return e.filterIgnoredRules(issues), nil
		}
	}

	source, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	if e.cache == nil {
		return e.run(filename, source, e.ignoredRules)
	}

	issues, err := e.run(filename, source, nil)
	if err != nil {
		return nil, err
	}
	if err := e.cache.Set(filename, issues); err != nil {
		return nil, fmt.Errorf("error caching issues: %w", err)
	}
	return e.filterIgnoredRules(issues), nil
}

// RunSource applies all lint rules to the given source and returns a slice of Issues.
func (e *Engine) RunSource(source []byte) ([]tt.Issue, error) {
	return e.run("", source, e.ignoredRules)
}

// run checks source with every rule not in skip.
func (e *Engine) run(filename string, source []byte, skip map[string]bool) ([]tt.Issue, error) {
	file, err := e.parser.Parse(context.Background(), filename, source)
	if err != nil {
		return nil, fmt.Errorf("error parsing file: %w", err)
	}

	nolintMgr := nolint.ParseComments(file)

	var wg sync.WaitGroup
	var mu sync.Mutex

	var allIssues []tt.Issue
	var errs []error
	for _, rule := range e.rules {
		if skip[rule.Name()] {
			continue
		}
		wg.Add(1)
		go func(r LintRule) {
			defer wg.Done()
			issues, err := r.Check(file)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", r.Name(), err))
				return
			}
			for i := range issues {
				issues[i].Severity = r.Severity()
			}
			allIssues = append(allIssues, filterNolintIssues(nolintMgr, issues)...)
		}(rule)
	}
	wg.Wait()

	if len(errs) > 0 {
		return nil, errs[0]
	}

	sortIssues(allIssues)
	return allIssues, nil
}

func (e *Engine) IgnoreRule(rule string) {
	if e.ignoredRules == nil {
		e.ignoredRules = make(map[string]bool)
	}
	e.ignoredRules[rule] = true
}

// IgnorePath skips files matching pattern. Patterns are matched with
// filepath.Match against the path relative to the root directory and
// against the base name; a plain directory path ignores everything below it.
func (e *Engine) IgnorePath(pattern string) {
	pattern = filepath.Clean(pattern)
	if pattern == "." {
		return
	}
	e.ignoredPaths = append(e.ignoredPaths, pattern)
}

func (e *Engine) isIgnoredPath(filename string) bool {
	if len(e.ignoredPaths) == 0 {
		return false
	}

	rel := filepath.Clean(filename)
	if e.rootDir != "" {
		if r, err := filepath.Rel(e.rootDir, filename); err == nil && !strings.HasPrefix(r, "..") {
			rel = r
		}
	}
	base := filepath.Base(filename)

	for _, pattern := range e.ignoredPaths {
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if strings.HasPrefix(rel, pattern+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (e *Engine) filterIgnoredRules(issues []tt.Issue) []tt.Issue {
	if len(e.ignoredRules) == 0 {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !e.ignoredRules[issue.Rule] {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

// filterNolintIssues filters issues based on nolint comments.
func filterNolintIssues(mgr *nolint.Manager, issues []tt.Issue) []tt.Issue {
	if mgr == nil {
		return issues
	}
	filtered := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if !mgr.IsNolint(issue.Start, issue.Rule) {
			filtered = append(filtered, issue)
		}
	}
	return filtered
}

func sortIssues(issues []tt.Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Filename != issues[j].Filename {
			return issues[i].Filename < issues[j].Filename
		}
		if issues[i].Start.Offset != issues[j].Start.Offset {
			return issues[i].Start.Offset < issues[j].Start.Offset
		}
		return issues[i].Rule < issues[j].Rule
	})
}

// SourceCode stores the content of a source code file.
type SourceCode struct {
	Lines []string
}

// ReadSourceCode reads the content of a file and returns it as a `SourceCode` struct.
func ReadSourceCode(filename string) (*SourceCode, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return NewSourceCode(content), nil
}

// NewSourceCode splits content into lines.
func NewSourceCode(content []byte) *SourceCode {
	lines := strings.Split(string(content), "\n")
	return &SourceCode{Lines: lines}
}

// SupportedFile reports whether the engine can lint filename.
func SupportedFile(filename string) bool {
	return tsx.Supported(filename)
}
