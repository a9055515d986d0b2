// Package parser implements Alan++'s LL(1) recursive-descent parser. On a
// syntax error it logs an ERROR carrying the offending token's position and
// recovers by synchronizing to the next statement boundary, bounded by
// end-of-input — the same match/record-error/continue discipline as the
// teacher compiler's Parser (cpq/parser.go), generalized to build a fully
// concrete syntax tree (every terminal retained) instead of discarding
// punctuation.
package parser

import (
	"github.com/alanpp/alanppc/internal/cst"
	"github.com/alanpp/alanppc/internal/diag"
	"github.com/alanpp/alanppc/internal/token"
)

// Parser consumes a fixed token slice (already produced by the lexer) and
// builds a CST plus a diagnostic log.
type Parser struct {
	tokens []token.Token
	pos    int
	log    diag.Log
}

// Parse runs the parser over tokens and returns the CST root (rooted at
// Program) together with its diagnostic log.
func Parse(tokens []token.Token) (*cst.Node, *diag.Log) {
	p := &Parser{tokens: tokens}
	root := p.parseProgram()
	return root, &p.log
}

func (p *Parser) lookahead() token.Token {
	return p.tokens[p.pos]
}

func (p *Parser) advance() {
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
}

func (p *Parser) match(kinds ...token.Kind) (token.Token, bool) {
	cur := p.lookahead()
	for _, k := range kinds {
		if cur.Kind == k {
			p.advance()
			return cur, true
		}
	}
	return cur, false
}

func terminal(tok token.Token) *cst.Node {
	return cst.NewTerminal(tok)
}

// expect consumes kind or records a syntax error and synchronizes.
func (p *Parser) expect(kind token.Kind) (token.Token, bool) {
	if tok, ok := p.match(kind); ok {
		return tok, true
	}
	tok := p.lookahead()
	p.log.Add(diag.ERROR, tok.Position.Line, tok.Position.Column,
		"expected %s, found %s", kind, tok.Kind)
	p.synchronize()
	return tok, false
}

// synchronize advances until the previously consumed token was '}' or the
// next token can begin a statement, bounded by end-of-input.
func (p *Parser) synchronize() {
	for {
		cur := p.lookahead()
		if cur.Kind == token.EOF || cur.Kind == token.EOP {
			return
		}
		if cur.Kind.StartsStatement() {
			return
		}
		if p.pos > 0 && p.tokens[p.pos-1].Kind == token.RBRACE {
			return
		}
		p.advance()
	}
}

// parseProgram implements: program := block EOP
func (p *Parser) parseProgram() *cst.Node {
	node := cst.NewNonTerminal(cst.Program)
	node.Add(p.parseBlock())
	if eop, ok := p.expect(token.EOP); ok {
		node.Add(terminal(eop))
	}
	return node
}

// parseBlock implements: block := '{' statement* '}'
func (p *Parser) parseBlock() *cst.Node {
	node := cst.NewNonTerminal(cst.Block)
	if lb, ok := p.match(token.LBRACE); ok {
		node.Add(terminal(lb))
	} else {
		tok := p.lookahead()
		p.log.Add(diag.ERROR, tok.Position.Line, tok.Position.Column,
			"expected %s, found %s", token.LBRACE, tok.Kind)
		p.synchronize()
	}

	list := cst.NewNonTerminal(cst.StatementList)
	for {
		stmt := p.parseStatement()
		if stmt == nil {
			break
		}
		list.Add(stmt)
	}
	node.Add(list)

	if rb, ok := p.match(token.RBRACE); ok {
		node.Add(terminal(rb))
	} else {
		tok := p.lookahead()
		p.log.Add(diag.ERROR, tok.Position.Line, tok.Position.Column,
			"expected %s, found %s", token.RBRACE, tok.Kind)
	}
	return node
}

// parseStatement implements:
//
//	statement := print | while | if | varDecl | assignment | block
//
// (a bare nested block is accepted as a statement, widening the grammar
// box in spec.md to account for the standalone-scope boundary case it
// tests.) Returns nil when the lookahead cannot begin a statement.
func (p *Parser) parseStatement() *cst.Node {
	switch p.lookahead().Kind {
	case token.PRINT:
		return p.parsePrint()
	case token.WHILE:
		return p.parseWhile()
	case token.IF:
		return p.parseIf()
	case token.INT, token.STRING, token.BOOLEAN:
		return p.parseVarDecl()
	case token.IDENTIFIER:
		return p.parseAssignment()
	case token.LBRACE:
		return p.parseBlock()
	case token.RBRACE, token.EOF, token.EOP:
		return nil
	default:
		tok := p.lookahead()
		p.log.Add(diag.ERROR, tok.Position.Line, tok.Position.Column,
			"unexpected token %s at statement boundary", tok.Kind)
		p.advance()
		p.synchronize()
		if p.lookahead().Kind == token.RBRACE || p.lookahead().Kind == token.EOF || p.lookahead().Kind == token.EOP {
			return nil
		}
		return p.parseStatement()
	}
}

// parsePrint implements: print := 'print' '(' (stringLit | expression) ')'
func (p *Parser) parsePrint() *cst.Node {
	node := cst.NewNonTerminal(cst.PrintStatement)
	kw, _ := p.match(token.PRINT)
	node.Add(terminal(kw))

	if lp, ok := p.expect(token.LPAREN); ok {
		node.Add(terminal(lp))
	}

	if p.lookahead().Kind == token.QUOTE {
		node.Add(p.parseStringLit())
	} else {
		node.Add(p.parseExpression())
	}

	if rp, ok := p.expect(token.RPAREN); ok {
		node.Add(terminal(rp))
	}
	return node
}

// parseWhile implements: while := 'while' '(' expression ')' block
func (p *Parser) parseWhile() *cst.Node {
	node := cst.NewNonTerminal(cst.WhileStatement)
	kw, _ := p.match(token.WHILE)
	node.Add(terminal(kw))

	if lp, ok := p.expect(token.LPAREN); ok {
		node.Add(terminal(lp))
	}
	node.Add(p.parseExpression())
	if rp, ok := p.expect(token.RPAREN); ok {
		node.Add(terminal(rp))
	}
	node.Add(p.parseBlock())
	return node
}

// parseIf implements: if := 'if' '(' expression ')' block ('else' block)?
func (p *Parser) parseIf() *cst.Node {
	node := cst.NewNonTerminal(cst.IfStatement)
	kw, _ := p.match(token.IF)
	node.Add(terminal(kw))

	if lp, ok := p.expect(token.LPAREN); ok {
		node.Add(terminal(lp))
	}
	node.Add(p.parseExpression())
	if rp, ok := p.expect(token.RPAREN); ok {
		node.Add(terminal(rp))
	}
	node.Add(p.parseBlock())

	if p.lookahead().Kind == token.ELSE {
		elseKw, _ := p.match(token.ELSE)
		node.Add(cst.NewNonTerminal(cst.ElseKeyword).Add(terminal(elseKw)))
		node.Add(p.parseBlock())
	}
	return node
}

// parseVarDecl implements: varDecl := type IDENT ('=' expression)?
func (p *Parser) parseVarDecl() *cst.Node {
	node := cst.NewNonTerminal(cst.VariableDeclaration)
	typeTok, _ := p.match(token.INT, token.STRING, token.BOOLEAN)
	node.Add(cst.NewNonTerminal(cst.Type).Add(terminal(typeTok)))

	if idTok, ok := p.expect(token.IDENTIFIER); ok {
		node.Add(cst.NewNonTerminal(cst.Identifier).Add(terminal(idTok)))
	}

	if p.lookahead().Kind == token.ASSIGN {
		eq, _ := p.match(token.ASSIGN)
		node.Add(terminal(eq))
		node.Add(p.parseExpression())
	}
	return node
}

// parseAssignment implements the assignment statement implied by the AST
// model (spec.md §3/§4.3): IDENT '=' expression.
func (p *Parser) parseAssignment() *cst.Node {
	node := cst.NewNonTerminal(cst.AssignmentStatement)
	idTok, _ := p.match(token.IDENTIFIER)
	node.Add(cst.NewNonTerminal(cst.Identifier).Add(terminal(idTok)))

	if eq, ok := p.expect(token.ASSIGN); ok {
		node.Add(terminal(eq))
	}
	node.Add(p.parseExpression())
	return node
}

// parseExpression implements: expression := equality
func (p *Parser) parseExpression() *cst.Node {
	return p.parseEquality()
}

// parseEquality implements: equality := term ( ('==' | '!=') term )*
// Chained comparisons fold left-associatively, same shape as parseTerm.
func (p *Parser) parseEquality() *cst.Node {
	left := p.parseTerm()
	for p.lookahead().Kind == token.EQUALS || p.lookahead().Kind == token.NOTEQ {
		op, _ := p.match(token.EQUALS, token.NOTEQ)
		right := p.parseTerm()
		left = cst.NewNonTerminal(cst.BooleanExpression).Add(left).Add(terminal(op)).Add(right)
	}
	return left
}

// parseTerm implements: term := factor ( '+' factor )*
func (p *Parser) parseTerm() *cst.Node {
	left := p.parseFactor()
	for p.lookahead().Kind == token.PLUS {
		op, _ := p.match(token.PLUS)
		right := p.parseFactor()
		left = cst.NewNonTerminal(cst.Expression).Add(left).Add(terminal(op)).Add(right)
	}
	return left
}

// parseFactor implements: factor := primary (trivial single alternative).
func (p *Parser) parseFactor() *cst.Node {
	return p.parsePrimary()
}

// parsePrimary implements:
//
//	primary := DIGIT | stringLit | boolLit | IDENT | '(' expression ')'
func (p *Parser) parsePrimary() *cst.Node {
	switch p.lookahead().Kind {
	case token.DIGIT:
		tok, _ := p.match(token.DIGIT)
		return cst.NewNonTerminal(cst.Expression).Add(terminal(tok))

	case token.TRUE, token.FALSE:
		tok, _ := p.match(token.TRUE, token.FALSE)
		return cst.NewNonTerminal(cst.Expression).Add(terminal(tok))

	case token.IDENTIFIER:
		tok, _ := p.match(token.IDENTIFIER)
		return cst.NewNonTerminal(cst.Expression).Add(terminal(tok))

	case token.QUOTE:
		return p.parseStringLit()

	case token.LPAREN:
		lp, _ := p.match(token.LPAREN)
		inner := p.parseExpression()
		inner.Children = append([]*cst.Node{terminal(lp)}, inner.Children...)
		if rp, ok := p.expect(token.RPAREN); ok {
			inner.Children = append(inner.Children, terminal(rp))
		}
		return inner

	default:
		tok := p.lookahead()
		p.log.Add(diag.ERROR, tok.Position.Line, tok.Position.Column,
			"expected an expression, found %s", tok.Kind)
		p.synchronize()
		return cst.NewNonTerminal(cst.Expression)
	}
}

// parseStringLit implements: stringLit := '"' CHAR* '"'
func (p *Parser) parseStringLit() *cst.Node {
	node := cst.NewNonTerminal(cst.StringExpression)
	openTok, _ := p.match(token.QUOTE)
	node.Add(terminal(openTok))

	for p.lookahead().Kind == token.CHAR {
		ch, _ := p.match(token.CHAR)
		node.Add(terminal(ch))
	}

	if closeTok, ok := p.expect(token.QUOTE); ok {
		node.Add(terminal(closeTok))
	}
	return node
}
