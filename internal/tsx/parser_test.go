package tsx

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnolang/effectlint/internal/syntax"
)

// describe renders a node as a compact shape string.
func describe(n syntax.Node) string {
	switch v := n.(type) {
	case nil:
		return "<nil>"
	case *syntax.Block:
		parts := make([]string, 0, len(v.Stmts))
		for _, s := range v.Stmts {
			parts = append(parts, describe(s))
		}
		return "{" + strings.Join(parts, "; ") + "}"
	case *syntax.Return:
		if v.Arg == nil {
			return "return"
		}
		return "return " + describe(v.Arg)
	case *syntax.OtherStmt:
		return v.Kind
	case *syntax.Fragment:
		return "<>" + describeChildren(v.Children) + "</>"
	case *syntax.Element:
		if v.SelfClosing {
			return "<" + v.Tag + "/>"
		}
		return "<" + v.Tag + ">" + describeChildren(v.Children) + "</" + v.Tag + ">"
	case *syntax.Null:
		return "null"
	case *syntax.Text:
		return "text"
	case *syntax.OtherExpr:
		return v.Kind
	default:
		return fmt.Sprintf("%T", n)
	}
}

func describeChildren(children []syntax.Node) string {
	parts := make([]string, 0, len(children))
	for _, c := range children {
		parts = append(parts, describe(c))
	}
	return strings.Join(parts, ",")
}

func describeDecl(d *syntax.Decl) string {
	name := "-"
	if d.Name != nil {
		name = d.Name.Name
	}
	return fmt.Sprintf("%s %s %s", d.Kind, name, describe(d.Body))
}

func parse(t *testing.T, filename, src string) *syntax.File {
	t.Helper()
	f, err := New().Parse(context.Background(), filename, []byte(src))
	require.NoError(t, err)
	return f
}

func TestParseDeclarations(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		code     string
		expected []string
	}{
		{
			name:     "arrow with empty fragment",
			filename: "loader.tsx",
			code:     `const Loader = () => <></>;`,
			expected: []string{"ArrowFunctionExpression Loader <></>"},
		},
		{
			name:     "arrow returning null",
			filename: "user.ts",
			code:     `const fetchUser = () => null;`,
			expected: []string{"ArrowFunctionExpression fetchUser null"},
		},
		{
			name:     "function declaration with markup",
			filename: "gate.tsx",
			code:     `function GateEffect() { doSideEffect(); return <div>hi</div>; }`,
			expected: []string{"FunctionDeclaration GateEffect {expression_statement; return <div>text</div>}"},
		},
		{
			name:     "parenthesized multi-line fragment",
			filename: "page.tsx",
			code: `export const PageEffect = () => {
  useEffect(() => {}, []);
  return (
    <>
    </>
  );
};`,
			expected: []string{
				"ArrowFunctionExpression PageEffect {expression_statement; return <></>}",
				"ArrowFunctionExpression - {}",
			},
		},
		{
			name:     "named fragment element",
			filename: "sync.tsx",
			code:     `export function SyncEffect() { return <React.Fragment></React.Fragment>; }`,
			expected: []string{"FunctionDeclaration SyncEffect {return <React.Fragment></React.Fragment>}"},
		},
		{
			name:     "no-render return nested in a branch",
			filename: "banner.tsx",
			code: `export default function Banner({ hidden }) {
  if (hidden) {
    return null;
  }
  return <p />;
}`,
			expected: []string{"FunctionDeclaration Banner {if_statement; return <p/>}"},
		},
		{
			name:     "function expressions",
			filename: "expr.jsx",
			code: `const Wrapped = function Inner() { return null; };
const Anon = function () { return null; };`,
			expected: []string{
				"FunctionExpression Inner {return null}",
				"FunctionExpression Anon {return null}",
			},
		},
		{
			name:     "render prop callbacks stay anonymous",
			filename: "list.tsx",
			code:     `const List = ({ items }) => <ul>{items.map((item) => <Row key={item.id} />)}</ul>;`,
			expected: []string{
				"ArrowFunctionExpression List <ul>jsx_expression</ul>",
				"ArrowFunctionExpression - <Row/>",
			},
		},
		{
			name:     "nested declarations in pre-order",
			filename: "page.tsx",
			code:     `const Page = () => { const cb = () => null; return <div />; };`,
			expected: []string{
				"ArrowFunctionExpression Page {lexical_declaration; return <div/>}",
				"ArrowFunctionExpression cb null",
			},
		},
		{
			name:     "bare return",
			filename: "noop.js",
			code:     `function Noop() { return; }`,
			expected: []string{"FunctionDeclaration Noop {return}"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := parse(t, tt.filename, tt.code)
			assert.False(t, f.HasErrors)

			got := make([]string, 0, len(f.Decls))
			for _, d := range f.Decls {
				got = append(got, describeDecl(d))
			}
			if diff := cmp.Diff(tt.expected, got); diff != "" {
				t.Errorf("declarations mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseIdentifierRange(t *testing.T) {
	t.Parallel()

	src := "import React from 'react';\n\nexport const Loader = () => <></>;\n"
	f := parse(t, "loader.tsx", src)
	require.Len(t, f.Decls, 1)

	d := f.Decls[0]
	require.NotNil(t, d.Name)
	assert.Equal(t, "Loader", f.Text(d.Name.Range))
	assert.Equal(t, 3, d.Name.Range.Start.Line)
	assert.Equal(t, 14, d.Name.Range.Start.Column)
	assert.Equal(t, "() => <></>", f.Text(d.Range))
}

func TestParseComments(t *testing.T) {
	t.Parallel()

	src := `// nolint:effect-components
const Loader = () => null; // trailing
/* block */`
	f := parse(t, "a.tsx", src)

	texts := make([]string, 0, len(f.Comments))
	for _, c := range f.Comments {
		texts = append(texts, c.Text)
	}
	assert.Equal(t, []string{"// nolint:effect-components", "// trailing", "/* block */"}, texts)
	assert.Equal(t, 2, f.Comments[1].Range.Start.Line)
}

func TestParseRecoversFromErrors(t *testing.T) {
	t.Parallel()

	f := parse(t, "broken.tsx", "const Loader = () => <></>;\nconst = ;\n")
	assert.True(t, f.HasErrors)
	require.NotEmpty(t, f.Decls)
	assert.Equal(t, "Loader", f.Decls[0].Name.Name)
}

func TestParseFileTooLarge(t *testing.T) {
	t.Parallel()

	_, err := New(WithMaxFileSize(4)).Parse(context.Background(), "a.tsx", []byte("const A = () => null;"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSupported(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"a.tsx", "b.JSX", "c.ts", "d.js", "e.mjs", "f.cjs"} {
		assert.True(t, Supported(name), name)
	}
	for _, name := range []string{"a.go", "b.css", "README"} {
		assert.False(t, Supported(name), name)
	}
}
