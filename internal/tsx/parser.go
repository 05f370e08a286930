// Package tsx builds syntax.File values from TypeScript and JavaScript
// sources using tree-sitter.
package tsx

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	tsxgrammar "github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/gnolang/effectlint/internal/syntax"
)

var ErrFileTooLarge = errors.New("file too large")

// Extensions lists the file extensions Parse understands.
var Extensions = []string{".tsx", ".jsx", ".ts", ".js", ".mjs", ".cjs"}

// Options configures a Parser.
type Options struct {
	// MaxFileSize is the largest source, in bytes, Parse accepts.
	// Zero disables the limit.
	MaxFileSize int
}

// DefaultOptions returns the default parser options.
func DefaultOptions() Options {
	return Options{
		MaxFileSize: 10 * 1024 * 1024, // 10MB
	}
}

type Option func(*Options)

// WithMaxFileSize sets the maximum file size for parsing.
func WithMaxFileSize(size int) Option {
	return func(o *Options) {
		o.MaxFileSize = size
	}
}

// Parser turns source files into syntax trees.
// It is safe for concurrent use; every Parse call owns its tree-sitter parser.
type Parser struct {
	options Options
}

func New(opts ...Option) *Parser {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}
	return &Parser{options: options}
}

// Supported reports whether filename has an extension Parse understands.
func Supported(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// languageFor picks the grammar for filename. Unknown extensions, including
// in-memory sources without a name, are parsed as TSX.
func languageFor(filename string) *sitter.Language {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".ts":
		return typescript.GetLanguage()
	case ".js", ".jsx", ".mjs", ".cjs":
		return javascript.GetLanguage()
	default:
		return tsxgrammar.GetLanguage()
	}
}

// Parse parses src and collects every function-like declaration in
// source pre-order. Syntax errors do not fail the parse; they set
// File.HasErrors and the recovered tree is used as is.
func (p *Parser) Parse(ctx context.Context, filename string, src []byte) (*syntax.File, error) {
	if p.options.MaxFileSize > 0 && len(src) > p.options.MaxFileSize {
		return nil, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, filename, len(src))
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(languageFor(filename))

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("error parsing %s: %w", filename, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	b := &builder{
		src: src,
		file: &syntax.File{
			Path:      filename,
			Source:    src,
			HasErrors: root.HasError(),
		},
	}
	b.walk(root)
	return b.file, nil
}

type builder struct {
	src  []byte
	file *syntax.File
}

func (b *builder) walk(n *sitter.Node) {
	if n == nil {
		return
	}

	switch n.Type() {
	case "comment":
		b.file.Comments = append(b.file.Comments, syntax.Comment{
			Text:  n.Content(b.src),
			Range: span(n),
		})
		return
	case "function_declaration":
		b.addDecl(n, syntax.FunctionDeclaration)
	case "arrow_function":
		b.addDecl(n, syntax.ArrowFunction)
	case "function_expression", "function":
		// older grammars name function expressions "function"
		b.addDecl(n, syntax.FunctionExpression)
	}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		b.walk(n.NamedChild(i))
	}
}

func (b *builder) addDecl(n *sitter.Node, kind syntax.DeclKind) {
	b.file.Decls = append(b.file.Decls, &syntax.Decl{
		Kind:  kind,
		Name:  b.declName(n, kind),
		Body:  b.body(n),
		Range: span(n),
	})
}

// declName resolves the identifier a declaration is known by. Function
// declarations and named function expressions use their own name; arrow
// functions and anonymous function expressions take the name of the
// variable they initialise.
func (b *builder) declName(n *sitter.Node, kind syntax.DeclKind) *syntax.Ident {
	if kind != syntax.ArrowFunction {
		if name := n.ChildByFieldName("name"); name != nil {
			return b.ident(name)
		}
	}
	if kind == syntax.FunctionDeclaration {
		return nil
	}

	parent := n.Parent()
	for parent != nil && parent.Type() == "parenthesized_expression" {
		parent = parent.Parent()
	}
	if parent == nil || parent.Type() != "variable_declarator" {
		return nil
	}
	name := parent.ChildByFieldName("name")
	if name == nil || name.Type() != "identifier" {
		// destructuring patterns
		return nil
	}
	return b.ident(name)
}

func (b *builder) ident(n *sitter.Node) *syntax.Ident {
	return &syntax.Ident{Name: n.Content(b.src), Range: span(n)}
}

func (b *builder) body(n *sitter.Node) syntax.Node {
	body := n.ChildByFieldName("body")
	if body == nil {
		return nil
	}
	if body.Type() == "statement_block" {
		return b.block(body)
	}
	return b.expr(body)
}

func (b *builder) block(n *sitter.Node) *syntax.Block {
	blk := &syntax.Block{Range: span(n)}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil || child.Type() == "comment" {
			continue
		}
		blk.Stmts = append(blk.Stmts, b.stmt(child))
	}
	return blk
}

func (b *builder) stmt(n *sitter.Node) syntax.Node {
	switch n.Type() {
	case "return_statement":
		ret := &syntax.Return{Range: span(n)}
		if arg := firstNamedChild(n); arg != nil {
			ret.Arg = b.expr(arg)
		}
		return ret
	case "statement_block":
		return b.block(n)
	default:
		return &syntax.OtherStmt{Kind: n.Type(), Range: span(n)}
	}
}

func (b *builder) expr(n *sitter.Node) syntax.Node {
	switch n.Type() {
	case "parenthesized_expression":
		if inner := firstNamedChild(n); inner != nil {
			return b.expr(inner)
		}
	case "null":
		return &syntax.Null{Range: span(n)}
	case "jsx_element":
		return b.jsxElement(n)
	case "jsx_self_closing_element":
		return &syntax.Element{
			Tag:         b.tagName(n),
			SelfClosing: true,
			Range:       span(n),
		}
	case "jsx_text":
		return &syntax.Text{Value: n.Content(b.src), Range: span(n)}
	}
	return &syntax.OtherExpr{Kind: n.Type(), Range: span(n)}
}

// jsxElement converts an element or, when the opening tag has no name,
// a fragment.
func (b *builder) jsxElement(n *sitter.Node) syntax.Node {
	var (
		open     *sitter.Node
		children []syntax.Node
	)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child == nil {
			continue
		}
		switch child.Type() {
		case "jsx_opening_element":
			open = child
		case "jsx_closing_element", "comment":
		case "jsx_text":
			if isTrimmedJSXText(child.Content(b.src)) {
				continue
			}
			children = append(children, b.expr(child))
		default:
			children = append(children, b.expr(child))
		}
	}

	if open == nil || open.ChildByFieldName("name") == nil {
		return &syntax.Fragment{Children: children, Range: span(n)}
	}
	return &syntax.Element{
		Tag:      b.tagName(open),
		Children: children,
		Range:    span(n),
	}
}

func (b *builder) tagName(n *sitter.Node) string {
	name := n.ChildByFieldName("name")
	if name == nil {
		return ""
	}
	return name.Content(b.src)
}

// isTrimmedJSXText reports whether JSX drops text entirely: whitespace
// that spans a line break produces no child at runtime.
func isTrimmedJSXText(s string) bool {
	return strings.TrimSpace(s) == "" && strings.ContainsAny(s, "\r\n")
}

func firstNamedChild(n *sitter.Node) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child != nil && child.Type() != "comment" {
			return child
		}
	}
	return nil
}

func span(n *sitter.Node) syntax.Range {
	return syntax.Range{
		Start: position(n.StartByte(), n.StartPoint()),
		End:   position(n.EndByte(), n.EndPoint()),
	}
}

func position(offset uint32, p sitter.Point) syntax.Position {
	return syntax.Position{
		Offset: int(offset),
		Line:   int(p.Row) + 1,
		Column: int(p.Column) + 1,
	}
}
