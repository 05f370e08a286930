// Package internal provides the lint engine for TypeScript and JavaScript
// React sources.
//
// Key components:
//
// Engine: parses a file with the tree-sitter based parser of package tsx,
// runs every enabled rule over the resulting declarations concurrently,
// drops issues silenced by nolint comments and returns them sorted by position.
//
// LintRule: the contract of a rule. The only rule shipped is
// effect-components, which keeps the Effect suffix reserved for components
// that render nothing.
//
// Cache: optional on-disk cache of issues keyed by file content, invalidated
// when the configuration file changes.
//
// Watch: re-lints files under a set of directories as they are written.
//
// SourceCode: the lines of a source file, used to print code snippets.
//
// Usage:
//
//	engine, err := internal.NewEngine("path/to/root/dir", nil)
//	if err != nil {
//	    // handle error
//	}
//
//	issues, err := engine.Run("path/to/Loader.tsx")
//	if err != nil {
//	    // handle error
//	}
//
//	for _, issue := range issues {
//	    fmt.Printf("Found issue: %s at %s\n", issue.Message, issue.Start)
//	}
//
// This package is intended for internal use within the linting tool and should not be
// imported by external packages.
package internal
