package ast

import (
	"testing"

	"github.com/alanpp/alanppc/internal/lexer"
	"github.com/alanpp/alanppc/internal/parser"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lower(t *testing.T, src string) *Program {
	t.Helper()
	tokens, lexLog := lexer.Scan(src)
	require.False(t, lexLog.HasErrors())
	root, parseLog := parser.Parse(tokens)
	require.False(t, parseLog.HasErrors())
	return Lower(root)
}

func TestLowerEmptyBlockYieldsZeroStatements(t *testing.T) {
	program := lower(t, "{}$")
	require.NotNil(t, program.Body)
	assert.Empty(t, program.Body.Statements)
}

func TestLowerNilCSTYieldsNilAST(t *testing.T) {
	assert.Nil(t, Lower(nil))
}

func TestLowerVarDeclarationWithInitializer(t *testing.T) {
	program := lower(t, "{ int a = 3 }$")
	decl := program.Body.Statements[0].(*VarDeclaration)
	assert.Equal(t, Int, decl.VarType)
	assert.Equal(t, "a", decl.VarName)
	require.NotNil(t, decl.Init)
	lit := decl.Init.(*IntegerLiteral)
	assert.Equal(t, 3, lit.Value)
}

func TestLowerAssignmentAndArithmetic(t *testing.T) {
	program := lower(t, "{ int a a = 1 + 2 }$")
	assign := program.Body.Statements[1].(*AssignmentStatement)
	assert.Equal(t, "a", assign.Identifier.Name)
	bin := assign.Expression.(*BinaryExpression)
	assert.Equal(t, OpAdd, bin.Operator)
}

func TestLowerIfElseDetectsElseBranch(t *testing.T) {
	program := lower(t, `{ if (1 == 1) { print(1) } else { print(2) } }$`)
	ifStmt := program.Body.Statements[0].(*IfStatement)
	require.NotNil(t, ifStmt.ThenBranch)
	require.NotNil(t, ifStmt.ElseBranch)
	cond := ifStmt.Condition.(*BinaryExpression)
	assert.Equal(t, OpEquals, cond.Operator)
}

func TestLowerIfWithoutElse(t *testing.T) {
	program := lower(t, `{ if (1 == 1) { print(1) } }$`)
	ifStmt := program.Body.Statements[0].(*IfStatement)
	assert.Nil(t, ifStmt.ElseBranch)
}

func TestLowerStringLiteralReconstructsText(t *testing.T) {
	program := lower(t, `{ print("hi") }$`)
	printStmt := program.Body.Statements[0].(*PrintStatement)
	lit := printStmt.Expression.(*StringLiteral)
	assert.Equal(t, "hi", lit.Value)
}

func TestLowerBooleanLiteral(t *testing.T) {
	program := lower(t, `{ boolean b b = true }$`)
	assign := program.Body.Statements[1].(*AssignmentStatement)
	lit := assign.Expression.(*BooleanLiteral)
	assert.True(t, lit.Value)
}

func TestLowerParenthesizedExpressionUnwraps(t *testing.T) {
	program := lower(t, `{ int a a = (1 + 2) }$`)
	assign := program.Body.Statements[1].(*AssignmentStatement)
	bin, ok := assign.Expression.(*BinaryExpression)
	require.True(t, ok)
	assert.Equal(t, OpAdd, bin.Operator)
}

func TestLowerNestedBlockAsStatement(t *testing.T) {
	program := lower(t, "{ int a { int a } }$")
	require.Len(t, program.Body.Statements, 2)
	_, isDecl := program.Body.Statements[0].(*VarDeclaration)
	_, isBlock := program.Body.Statements[1].(*Block)
	assert.True(t, isDecl)
	assert.True(t, isBlock)
}
