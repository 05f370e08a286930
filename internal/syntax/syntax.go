// Package syntax defines the read-only tree the lint rules work on.
//
// The tree is deliberately small: it keeps only the shapes the rules
// match against and folds everything else into OtherStmt / OtherExpr.
// Nodes are produced by a host parser (see internal/tsx) and are never
// mutated after construction.
package syntax

import "fmt"

// Position is a location in a source file. Offset is a byte offset,
// Line and Column are 1-based (Column counts bytes).
type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

// Range is a half-open byte range [Start, End).
type Range struct {
	Start Position
	End   Position
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End.Offset - r.Start.Offset
}

// Contains reports whether the offset lies inside r.
func (r Range) Contains(offset int) bool {
	return r.Start.Offset <= offset && offset < r.End.Offset
}

// Overlaps reports whether r and o share at least one byte.
func (r Range) Overlaps(o Range) bool {
	return r.Start.Offset < o.End.Offset && o.Start.Offset < r.End.Offset
}

// DeclKind is the kind of a function-like declaration.
type DeclKind int

const (
	FunctionDeclaration DeclKind = iota
	ArrowFunction
	FunctionExpression
)

// DeclKinds lists every declaration kind, in dispatch order.
var DeclKinds = []DeclKind{FunctionDeclaration, ArrowFunction, FunctionExpression}

func (k DeclKind) String() string {
	switch k {
	case FunctionDeclaration:
		return "FunctionDeclaration"
	case ArrowFunction:
		return "ArrowFunctionExpression"
	case FunctionExpression:
		return "FunctionExpression"
	default:
		return fmt.Sprintf("DeclKind(%d)", int(k))
	}
}

// Ident is a named identifier and its location.
type Ident struct {
	Name  string
	Range Range
}

// Decl is a function-like declaration.
// Name is nil for anonymous functions. Body is nil when the parser
// could not make sense of it.
type Decl struct {
	Kind  DeclKind
	Name  *Ident
	Body  Node
	Range Range
}

// Comment is a source comment, including its delimiters.
type Comment struct {
	Text  string
	Range Range
}

// File is a parsed source file.
type File struct {
	Path     string
	Source   []byte
	Decls    []*Decl
	Comments []Comment

	// HasErrors is set when the parser had to recover from syntax errors.
	HasErrors bool
}

// Text returns the source text covered by r, or "" when r is out of bounds.
func (f *File) Text(r Range) string {
	if r.Start.Offset < 0 || r.End.Offset > len(f.Source) || r.Start.Offset > r.End.Offset {
		return ""
	}
	return string(f.Source[r.Start.Offset:r.End.Offset])
}
