package ast

import (
	"strconv"
	"strings"

	"github.com/alanpp/alanppc/internal/cst"
	"github.com/alanpp/alanppc/internal/token"
)

// Lower translates a CST into an AST, collapsing concrete nodes
// (parentheses, braces, keywords, list-wrappers) and flattening
// single-alternative productions. A nil CST yields a nil AST.
func Lower(root *cst.Node) *Program {
	if root == nil {
		return nil
	}
	blockNode := childByName(root, cst.Block)
	body := lowerBlock(blockNode)
	return &Program{base: posFrom(root), Body: body}
}

func childByName(n *cst.Node, name string) *cst.Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func posFrom(n *cst.Node) base {
	tok := cst.FirstToken(n)
	if tok == nil {
		return base{}
	}
	return base{Line: tok.Position.Line, Column: tok.Position.Column}
}

func posFromTok(tok token.Token) base {
	return base{Line: tok.Position.Line, Column: tok.Position.Column}
}

// lowerBlock collapses the StatementList wrapper (a list production) into
// Block's direct statement children, per spec.
func lowerBlock(n *cst.Node) *Block {
	if n == nil {
		return &Block{}
	}
	blk := &Block{base: posFrom(n)}
	list := childByName(n, cst.StatementList)
	if list == nil {
		return blk
	}
	for _, c := range list.Children {
		if s := lowerStatement(c); s != nil {
			blk.Statements = append(blk.Statements, s)
		}
	}
	return blk
}

func lowerStatement(n *cst.Node) Statement {
	switch n.Name {
	case cst.VariableDeclaration:
		return lowerVarDecl(n)
	case cst.AssignmentStatement:
		return lowerAssignment(n)
	case cst.PrintStatement:
		return lowerPrint(n)
	case cst.IfStatement:
		return lowerIf(n)
	case cst.WhileStatement:
		return lowerWhile(n)
	case cst.Block:
		return lowerBlock(n)
	default:
		return nil
	}
}

// lowerVarDecl derives varType from the Type child ({IntType->int,
// StringType->string, BooleanType->boolean, otherwise unknown}) and varName
// from the Identifier child's token.
func lowerVarDecl(n *cst.Node) *VarDeclaration {
	decl := &VarDeclaration{base: posFrom(n)}

	if typeNode := childByName(n, cst.Type); typeNode != nil && len(typeNode.Children) > 0 && typeNode.Children[0].Token != nil {
		switch typeNode.Children[0].Token.Kind {
		case token.INT:
			decl.VarType = Int
		case token.STRING:
			decl.VarType = String
		case token.BOOLEAN:
			decl.VarType = Boolean
		default:
			decl.VarType = Unknown
		}
	}

	if idNode := childByName(n, cst.Identifier); idNode != nil && len(idNode.Children) > 0 && idNode.Children[0].Token != nil {
		decl.VarName = idNode.Children[0].Token.Lexeme
	}

	sawAssign := false
	for _, c := range n.Children {
		if sawAssign {
			decl.Init = lowerExpr(c)
			break
		}
		if c.Token != nil && c.Token.Kind == token.ASSIGN {
			sawAssign = true
		}
	}
	return decl
}

// lowerAssignment builds an AssignmentStatement from the Identifier and
// expression subtrees.
func lowerAssignment(n *cst.Node) *AssignmentStatement {
	assign := &AssignmentStatement{base: posFrom(n)}

	idNode := childByName(n, cst.Identifier)
	if idNode != nil && len(idNode.Children) > 0 && idNode.Children[0].Token != nil {
		tok := *idNode.Children[0].Token
		assign.Identifier = &Identifier{base: posFromTok(tok), Name: tok.Lexeme}
	}

	var exprNode *cst.Node
	for _, c := range n.Children {
		if c.Token != nil || c.Name == cst.Identifier {
			continue
		}
		exprNode = c
	}
	assign.Expression = lowerExpr(exprNode)
	return assign
}

// lowerPrint defaults to an empty-string literal when the expression is
// absent (e.g. after error recovery left no operand).
func lowerPrint(n *cst.Node) *PrintStatement {
	p := &PrintStatement{base: posFrom(n)}

	var content *cst.Node
	for _, c := range n.Children {
		if c.Token == nil {
			content = c
		}
	}
	if content != nil {
		p.Expression = lowerExpr(content)
	}
	if p.Expression == nil {
		p.Expression = &StringLiteral{base: posFrom(n), Value: ""}
	}
	return p
}

// lowerIf takes the first Block child as the then branch and the second
// Block child, which the parser emits only after an ElseKeyword node, as
// the else branch.
func lowerIf(n *cst.Node) *IfStatement {
	stmt := &IfStatement{base: posFrom(n)}

	var condNode *cst.Node
	var blocks []*cst.Node
	for _, c := range n.Children {
		switch {
		case c.Token != nil:
			continue
		case c.Name == cst.Block:
			blocks = append(blocks, c)
		case c.Name == cst.ElseKeyword:
			continue
		default:
			condNode = c
		}
	}

	stmt.Condition = lowerExpr(condNode)
	if len(blocks) > 0 {
		stmt.ThenBranch = lowerBlock(blocks[0])
	}
	if len(blocks) > 1 {
		stmt.ElseBranch = lowerBlock(blocks[1])
	}
	return stmt
}

func lowerWhile(n *cst.Node) *WhileStatement {
	stmt := &WhileStatement{base: posFrom(n)}

	var condNode, bodyNode *cst.Node
	for _, c := range n.Children {
		switch {
		case c.Token != nil:
			continue
		case c.Name == cst.Block:
			bodyNode = c
		default:
			condNode = c
		}
	}

	stmt.Condition = lowerExpr(condNode)
	stmt.Body = lowerBlock(bodyNode)
	return stmt
}

// lowerExpr lowers an Expression, BooleanExpression or StringExpression CST
// node into its AST counterpart, per the rule: numeric -> IntegerLiteral,
// true/false -> BooleanLiteral, otherwise Identifier; operator nodes
// (BooleanExpression, or an Expression wrapping a '+' chain) lower to
// BinaryExpression.
func lowerExpr(n *cst.Node) Expression {
	if n == nil {
		return nil
	}

	switch n.Name {
	case cst.StringExpression:
		var sb strings.Builder
		for _, c := range n.Children {
			if c.Token != nil && c.Token.Kind == token.CHAR {
				sb.WriteString(c.Token.Lexeme)
			}
		}
		return &StringLiteral{base: posFrom(n), Value: sb.String()}

	case cst.BooleanExpression:
		return lowerBinary(n)

	case cst.Expression:
		meaningful := meaningfulChildren(n)
		switch len(meaningful) {
		case 0:
			return nil
		case 1:
			c := meaningful[0]
			if c.Token != nil {
				return leafFromToken(*c.Token)
			}
			return lowerExpr(c)
		default:
			return lowerBinary(n)
		}
	}
	return nil
}

// meaningfulChildren strips the parenthesis terminals a parenthesized
// primary retains for CST concreteness; every other terminal (an operator)
// is kept so lowerBinary can find it.
func meaningfulChildren(n *cst.Node) []*cst.Node {
	out := make([]*cst.Node, 0, len(n.Children))
	for _, c := range n.Children {
		if c.Token != nil && (c.Token.Kind == token.LPAREN || c.Token.Kind == token.RPAREN) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// lowerBinary expects the canonical [left, operator, right] shape built by
// the parser's left-associative chaining.
func lowerBinary(n *cst.Node) Expression {
	meaningful := meaningfulChildren(n)
	if len(meaningful) != 3 {
		for _, c := range meaningful {
			if c.Token == nil {
				return lowerExpr(c)
			}
		}
		return nil
	}

	left, opNode, right := meaningful[0], meaningful[1], meaningful[2]
	op := OpAdd
	if opNode.Token != nil {
		switch opNode.Token.Kind {
		case token.PLUS:
			op = OpAdd
		case token.EQUALS:
			op = OpEquals
		case token.NOTEQ:
			op = OpNotEquals
		}
	}

	return &BinaryExpression{
		base:     posFrom(n),
		Operator: op,
		Left:     lowerOperand(left),
		Right:    lowerOperand(right),
	}
}

func lowerOperand(c *cst.Node) Expression {
	if c.Token != nil {
		return leafFromToken(*c.Token)
	}
	return lowerExpr(c)
}

func leafFromToken(tok token.Token) Expression {
	switch tok.Kind {
	case token.DIGIT:
		v, _ := strconv.Atoi(tok.Lexeme)
		return &IntegerLiteral{base: posFromTok(tok), Value: v}
	case token.TRUE:
		return &BooleanLiteral{base: posFromTok(tok), Value: true}
	case token.FALSE:
		return &BooleanLiteral{base: posFromTok(tok), Value: false}
	case token.IDENTIFIER:
		return &Identifier{base: posFromTok(tok), Name: tok.Lexeme}
	default:
		return nil
	}
}
