// Package cst implements the concrete syntax tree produced by the parser:
// productions create nodes named after the grammar symbol they realize,
// and every terminal consumed (punctuation, keywords, operators included)
// survives as a child. The expression, equality, term and factor
// productions do not get nodes of their own: an operand with no operator
// is returned as its primary's node, an equality operator yields a
// BooleanExpression node and a '+' yields an Expression node. This is
// deliberately more literal than the AST lowering stage's tree.
package cst

import (
	"strings"

	"github.com/alanpp/alanppc/internal/token"
)

// Node names, one per grammar production plus a Terminal leaf kind. Names
// follow the capitalization the AST-lowering stage matches against.
const (
	Program              = "Program"
	Block                = "Block"
	StatementList        = "StatementList"
	VariableDeclaration  = "VariableDeclaration"
	AssignmentStatement  = "AssignmentStatement"
	PrintStatement       = "PrintStatement"
	IfStatement          = "IfStatement"
	WhileStatement       = "WhileStatement"
	ElseKeyword          = "ElseKeyword"
	BooleanExpression    = "BooleanExpression"
	Expression           = "Expression"
	StringExpression     = "StringExpression"
	Type                 = "Type"
	Identifier           = "Identifier"
	Terminal             = "terminal"
)

// Node is a single CST node: Name identifies the grammar symbol (or
// "terminal" for a leaf), Token is set only for terminals, and Children
// holds the ordered sequence of consumed terminals and sub-productions.
type Node struct {
	Name     string
	Token    *token.Token
	Children []*Node
}

// NewNonTerminal returns an empty node for the given production name.
func NewNonTerminal(name string) *Node {
	return &Node{Name: name}
}

// NewTerminal returns a leaf node wrapping a consumed token.
func NewTerminal(tok token.Token) *Node {
	t := tok
	return &Node{Name: Terminal, Token: &t}
}

// Add appends a child and returns the receiver, for fluent construction.
func (n *Node) Add(child *Node) *Node {
	if child != nil {
		n.Children = append(n.Children, child)
	}
	return n
}

// FirstToken returns the token of the leftmost terminal reachable from n,
// used to recover a position for nodes that don't carry one directly.
func FirstToken(n *Node) *token.Token {
	if n == nil {
		return nil
	}
	if n.Token != nil {
		return n.Token
	}
	for _, c := range n.Children {
		if t := FirstToken(c); t != nil {
			return t
		}
	}
	return nil
}

// Pretty renders the tree as an indented outline, one line per node: the
// node's name for non-terminals, and "<token kind>: <lexeme>" for terminals.
func Pretty(n *Node) string {
	var b strings.Builder
	pretty(n, 0, &b)
	return strings.TrimRight(b.String(), "\n")
}

func pretty(n *Node, depth int, b *strings.Builder) {
	if n == nil {
		return
	}
	b.WriteString(strings.Repeat("  ", depth))
	if n.Name == Terminal && n.Token != nil {
		b.WriteString(n.Token.Kind.String())
		b.WriteString(": ")
		b.WriteString(n.Token.Lexeme)
	} else {
		b.WriteString(n.Name)
	}
	b.WriteString("\n")
	for _, c := range n.Children {
		pretty(c, depth+1, b)
	}
}
