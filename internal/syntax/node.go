package syntax

// Node is a statement or expression in a function body.
// The set of implementations is closed; switch over the concrete types.
type Node interface {
	Span() Range
	node()
}

// Block is a `{ ... }` statement list.
type Block struct {
	Stmts []Node
	Range Range
}

// Return is a return statement. Arg is nil for a bare `return`.
type Return struct {
	Arg   Node
	Range Range
}

// OtherStmt is any statement the rules do not look into (if, for,
// expression statements, declarations, ...).
type OtherStmt struct {
	Kind  string
	Range Range
}

// Fragment is a JSX fragment, `<>...</>`.
type Fragment struct {
	Children []Node
	Range    Range
}

// Element is a JSX element. Tag is the opening tag name as written,
// e.g. "div" or "React.Fragment".
type Element struct {
	Tag         string
	Children    []Node
	SelfClosing bool
	Range       Range
}

// Null is the `null` literal.
type Null struct {
	Range Range
}

// Text is JSX text between tags.
type Text struct {
	Value string
	Range Range
}

// OtherExpr is any expression the rules do not look into.
type OtherExpr struct {
	Kind  string
	Range Range
}

func (n *Block) Span() Range     { return n.Range }
func (n *Return) Span() Range    { return n.Range }
func (n *OtherStmt) Span() Range { return n.Range }
func (n *Fragment) Span() Range  { return n.Range }
func (n *Element) Span() Range   { return n.Range }
func (n *Null) Span() Range      { return n.Range }
func (n *Text) Span() Range      { return n.Range }
func (n *OtherExpr) Span() Range { return n.Range }

func (*Block) node()     {}
func (*Return) node()    {}
func (*OtherStmt) node() {}
func (*Fragment) node()  {}
func (*Element) node()   {}
func (*Null) node()      {}
func (*Text) node()      {}
func (*OtherExpr) node() {}
