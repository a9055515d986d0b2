package sema

import (
	"github.com/alanpp/alanppc/internal/ast"
	"github.com/alanpp/alanppc/internal/diag"
)

// scopeNone is the sentinel scope value used before any block has been
// entered; the root Program node does not open a scope, only the top-level
// Block does (spec's scope-base-at-0, push-on-block-entry resolution).
const scopeNone = 0

// analyzer walks an AST, building a symbol table and a diagnostic log.
type analyzer struct {
	table     *SymbolTable
	stack     []int
	nextScope int
	log       diag.Log
	errorName map[string]bool // names with at least one ERROR already recorded
}

// Analyze type-checks program and builds its symbol table. The returned
// table is nil if any ERROR was recorded, per spec's "symbol table is
// suppressed if any ERROR was recorded" contract.
func Analyze(program *ast.Program) (*SymbolTable, *diag.Log) {
	a := &analyzer{
		table:     newSymbolTable(),
		errorName: make(map[string]bool),
	}

	if program == nil {
		a.log.Error(0, 0, "missing AST for sub-program")
		return nil, &a.log
	}

	a.walkBlock(program.Body)

	if a.log.HasErrors() {
		a.log.Info(0, 0, "Semantic Analysis completed with errors")
		return nil, &a.log
	}
	a.log.Info(0, 0, "Semantic Analysis completed without errors")
	return a.table, &a.log
}

func (a *analyzer) enterScope() int {
	a.nextScope++
	scope := a.nextScope
	a.stack = append(a.stack, scope)
	return scope
}

func (a *analyzer) exitScope(scope int) {
	for _, sym := range a.table.scopeEntries(scope) {
		if a.errorName[sym.Name] {
			continue
		}
		if !sym.Used {
			a.log.Warning(sym.Line, sym.Column, "Variable '%s' declared but never used", sym.Name)
			if sym.Initialized {
				a.log.Warning(sym.Line, sym.Column, "Variable '%s' initialized but never used", sym.Name)
			}
		}
	}
	a.stack = a.stack[:len(a.stack)-1]
}

func (a *analyzer) currentScope() int {
	if len(a.stack) == 0 {
		return scopeNone
	}
	return a.stack[len(a.stack)-1]
}

func (a *analyzer) walkBlock(b *ast.Block) {
	if b == nil {
		return
	}
	scope := a.enterScope()
	for _, stmt := range b.Statements {
		a.walkStatement(stmt)
	}
	a.exitScope(scope)
}

func (a *analyzer) walkStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		a.walkBlock(s)
	case *ast.VarDeclaration:
		a.walkVarDecl(s)
	case *ast.AssignmentStatement:
		a.walkAssignment(s)
	case *ast.PrintStatement:
		a.walkExpr(s.Expression)
	case *ast.IfStatement:
		a.walkIf(s)
	case *ast.WhileStatement:
		a.walkWhile(s)
	}
}

func (a *analyzer) walkVarDecl(decl *ast.VarDeclaration) {
	scope := a.currentScope()
	sym := &Symbol{
		Name:   decl.VarName,
		Type:   decl.VarType,
		Scope:  scope,
		Line:   decl.Line,
		Column: decl.Column,
	}
	if !a.table.declare(scope, sym) {
		a.log.Error(decl.Line, decl.Column, "Redeclaration of '%s' in the same scope", decl.VarName)
		a.errorName[decl.VarName] = true
		return
	}
	if decl.Init != nil {
		rhsType := a.walkExpr(decl.Init)
		sym.Initialized = true
		if rhsType != ast.Unknown && rhsType != decl.VarType {
			a.log.Error(decl.Line, decl.Column, "Type mismatch in assignment: Cannot assign %s to %s", rhsType, decl.VarType)
			a.errorName[decl.VarName] = true
		}
	}
}

func (a *analyzer) walkAssignment(assign *ast.AssignmentStatement) {
	name := ""
	if assign.Identifier != nil {
		name = assign.Identifier.Name
	}
	sym := a.table.lookup(name, a.stack)
	if sym == nil {
		a.log.Error(assign.Line, assign.Column, "Assignment to undeclared variable '%s'", name)
		rhsType := a.walkExpr(assign.Expression)
		_ = rhsType
		return
	}

	rhsType := a.walkExpr(assign.Expression)
	sym.Initialized = true
	if rhsType != ast.Unknown && rhsType != sym.Type {
		a.log.Error(assign.Line, assign.Column, "Type mismatch in assignment: Cannot assign %s to %s", rhsType, sym.Type)
		a.errorName[name] = true
	}
}

func (a *analyzer) walkIf(stmt *ast.IfStatement) {
	a.requireBoolean(stmt.Condition, "If")
	a.walkBlock(stmt.ThenBranch)
	if stmt.ElseBranch != nil {
		a.walkBlock(stmt.ElseBranch)
	}
}

func (a *analyzer) walkWhile(stmt *ast.WhileStatement) {
	a.requireBoolean(stmt.Condition, "While")
	a.walkBlock(stmt.Body)
}

func (a *analyzer) requireBoolean(cond ast.Expression, kind string) {
	t := a.walkExpr(cond)
	if t != ast.Unknown && t != ast.Boolean {
		line, col := 0, 0
		if cond != nil {
			pos := cond.Pos()
			line, col = pos.Line, pos.Column
		}
		a.log.Error(line, col, "%s condition must be boolean, got %s", kind, t)
	}
}

// walkExpr evaluates the type of expr, recording diagnostics for any
// undeclared reference or operand-type mismatch it finds along the way.
func (a *analyzer) walkExpr(expr ast.Expression) ast.DataType {
	switch e := expr.(type) {
	case nil:
		return ast.Unknown
	case *ast.IntegerLiteral:
		return ast.Int
	case *ast.StringLiteral:
		return ast.String
	case *ast.BooleanLiteral:
		return ast.Boolean
	case *ast.Identifier:
		sym := a.table.lookup(e.Name, a.stack)
		if sym == nil {
			a.log.Error(e.Line, e.Column, "Undefined variable '%s'", e.Name)
			return ast.Unknown
		}
		sym.Used = true
		return sym.Type
	case *ast.BinaryExpression:
		return a.walkBinary(e)
	default:
		return ast.Unknown
	}
}

func (a *analyzer) walkBinary(bin *ast.BinaryExpression) ast.DataType {
	left := a.walkExpr(bin.Left)
	right := a.walkExpr(bin.Right)

	switch bin.Operator {
	case ast.OpAdd:
		switch {
		case left == ast.Int && right == ast.Int:
			return ast.Int
		case left == ast.String && right == ast.String:
			return ast.String
		case left == ast.Unknown || right == ast.Unknown:
			return ast.Unknown
		default:
			a.log.Error(bin.Line, bin.Column, "Invalid operand types for '+': %s and %s", left, right)
			return left
		}
	case ast.OpEquals, ast.OpNotEquals:
		if left != ast.Unknown && right != ast.Unknown && left != right {
			a.log.Error(bin.Line, bin.Column, "Cannot compare %s with %s", left, right)
		}
		return ast.Boolean
	default:
		return ast.Unknown
	}
}
