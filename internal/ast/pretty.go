package ast

import (
	"strconv"
	"strings"
)

// Pretty renders an AST in the stylized angle-bracket form used by the
// semantic-analysis output sink: "< NODE >" for each node, with "--[ field
// ]" lines underneath for its leaf attributes, indented one level deeper
// per nesting level.
func Pretty(n Node) string {
	var b strings.Builder
	pretty(n, 0, &b)
	return strings.TrimRight(b.String(), "\n")
}

func indent(b *strings.Builder, depth int) {
	b.WriteString(strings.Repeat("  ", depth))
}

func pretty(n Node, depth int, b *strings.Builder) {
	if n == nil {
		return
	}
	switch v := n.(type) {
	case *Program:
		indent(b, depth)
		b.WriteString("< PROGRAM >\n")
		pretty(v.Body, depth+1, b)

	case *Block:
		indent(b, depth)
		b.WriteString("< BLOCK >\n")
		for _, s := range v.Statements {
			pretty(s, depth+1, b)
		}

	case *VarDeclaration:
		indent(b, depth)
		b.WriteString("< Variable Declaration >\n")
		indent(b, depth+1)
		b.WriteString("--[ " + v.VarType.String() + " ]\n")
		indent(b, depth+1)
		b.WriteString("--[ " + v.VarName + " ]\n")
		if v.Init != nil {
			pretty(v.Init, depth+1, b)
		}

	case *AssignmentStatement:
		indent(b, depth)
		b.WriteString("< Assignment >\n")
		if v.Identifier != nil {
			pretty(v.Identifier, depth+1, b)
		}
		pretty(v.Expression, depth+1, b)

	case *PrintStatement:
		indent(b, depth)
		b.WriteString("< Print >\n")
		pretty(v.Expression, depth+1, b)

	case *IfStatement:
		indent(b, depth)
		b.WriteString("< If >\n")
		pretty(v.Condition, depth+1, b)
		pretty(v.ThenBranch, depth+1, b)
		if v.ElseBranch != nil {
			pretty(v.ElseBranch, depth+1, b)
		}

	case *WhileStatement:
		indent(b, depth)
		b.WriteString("< While >\n")
		pretty(v.Condition, depth+1, b)
		pretty(v.Body, depth+1, b)

	case *BinaryExpression:
		indent(b, depth)
		b.WriteString("< Binary " + v.Operator.String() + " >\n")
		pretty(v.Left, depth+1, b)
		pretty(v.Right, depth+1, b)

	case *Identifier:
		indent(b, depth)
		b.WriteString("--[ " + v.Name + " ]\n")

	case *IntegerLiteral:
		indent(b, depth)
		b.WriteString("--[ " + strconv.Itoa(v.Value) + " ]\n")

	case *StringLiteral:
		indent(b, depth)
		b.WriteString("--[ \"" + v.Value + "\" ]\n")

	case *BooleanLiteral:
		indent(b, depth)
		b.WriteString("--[ " + boolLexeme(v.Value) + " ]\n")
	}
}

func boolLexeme(v bool) string {
	if v {
		return "true"
	}
	return "false"
}
