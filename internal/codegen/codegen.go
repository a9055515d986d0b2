// Package codegen emits a fixed 256-byte 6502-family machine-code image
// from a semantically-valid Alan++ AST, with directly assigned static
// addresses, back-patched branch distances and a heap-resident string pool.
//
// The per-node-kind dispatch and accumulated-errors discipline is grounded
// on the teacher's CodeGenerator (temp/label counters, Variables map,
// per-node Codegen* methods, Errors []Error), generalized from
// human-readable quad-IR emission to byte-level image emission, with a
// branch-offset back-patch standing in for the teacher's textual
// RemoveLabels pass.
package codegen

import (
	"fmt"

	"github.com/alanpp/alanppc/internal/ast"
)

// Fixed op-codes, per the 6502-family subset this target supports.
const (
	opLDAImm = 0xA9
	opLDA    = 0xAD
	opSTA    = 0x8D
	opADC    = 0x6D
	opLDXImm = 0xA2
	opLDX    = 0xAE
	opLDYImm = 0xA0
	opLDY    = 0xAC
	opNOP    = 0xEA
	opBRK    = 0x00
	opCPX    = 0xEC
	opBNE    = 0xD0
	opINC    = 0xEE
	opSYS    = 0xFF
)

const (
	sysPrintInt = 1
	sysPrintStr = 2
)

// staticStart and heapStart partition the 256-byte image: code occupies
// [0, staticStart); static variables occupy [staticStart, heapStart), one
// byte each; the string pool occupies [heapStart, 0x100).
//
// Resolves spec's staticStart ambiguity (0x001F vs 0x003C) to a round
// boundary.
const (
	staticStart = 0x0020
	heapStart   = 0x00E0
	imageSize   = 0x0100
)

// tempAddr is the scratch zero-page address used by the arithmetic and
// comparison sequences. It is the image's first byte (the opcode of the
// LDA #0 prelude, which has already run by the time it is overwritten).
const tempAddr = 0x0000

// cmpAddr is the fixed zero-page alias the comparison sequence's CPX
// compares against.
const cmpAddr = 0x0000

// Reserved boolean/string-pool addresses. Booleans are represented at
// runtime by the address of their display string, unifying what spec
// documents as two disagreeing encodings (boolean byte 0xF5/0xF0 vs.
// string-pool address 0xF5/0xFA for "true"/"false") — see DESIGN.md.
const (
	addrTrue  = 0xF5
	addrFalse = 0xFA
)

// StaticEntry is one emitted static-variable slot.
type StaticEntry struct {
	Name    string
	Scope   int
	Address uint16
}

// StringEntry is one emitted string-pool slot.
type StringEntry struct {
	Literal string
	Address uint16
}

// Result is a code generator's complete output for one sub-program.
type Result struct {
	Code     [imageSize]byte
	Statics  []StaticEntry
	Strings  []StringEntry
	Errors   []string
}

type varKey struct {
	name  string
	scope int
}

type generator struct {
	code []byte

	staticAddr  map[varKey]uint16
	staticType  map[varKey]ast.DataType
	staticOrder []varKey

	stringAddr  map[string]uint16
	stringOrder []string
	nextHeap    uint16

	nextStatic uint16

	scopeStack []int
	nextScope  int

	errs []string
}

// Generate walks program and emits its 256-byte image. program must already
// be semantically valid; Generate does not re-check types.
func Generate(program *ast.Program) Result {
	g := &generator{
		staticAddr: make(map[varKey]uint16),
		staticType: make(map[varKey]ast.DataType),
		stringAddr: make(map[string]uint16),
		nextStatic: staticStart,
		nextHeap:   heapStart,
	}
	g.stringAddr["true"] = addrTrue
	g.stringAddr["false"] = addrFalse

	g.emit1(opLDAImm)
	g.emit1(0)

	if program != nil {
		g.genBlock(program.Body)
	}

	g.emit1(opBRK)

	if len(g.errs) > 0 {
		return g.abort()
	}
	return g.finish()
}

func (g *generator) abort() Result {
	var r Result
	r.Code[0] = opBRK
	r.Errors = g.errs
	return r
}

func (g *generator) finish() Result {
	var r Result
	copy(r.Code[:], g.code)
	if len(g.code) > staticStart {
		g.errs = append(g.errs, "emitted code ran into the static-variable region")
		return g.abort()
	}

	for _, key := range g.staticOrder {
		r.Statics = append(r.Statics, StaticEntry{Name: key.name, Scope: key.scope, Address: g.staticAddr[key]})
	}
	for _, lit := range g.stringOrder {
		r.Strings = append(r.Strings, StringEntry{Literal: lit, Address: g.stringAddr[lit]})
	}
	r.Strings = append(r.Strings,
		StringEntry{Literal: "true", Address: addrTrue},
		StringEntry{Literal: "false", Address: addrFalse},
	)

	for _, s := range r.Strings {
		addr := int(s.Address)
		for i := 0; i < len(s.Literal); i++ {
			r.Code[addr+i] = s.Literal[i]
		}
		r.Code[addr+len(s.Literal)] = 0
	}
	r.Errors = g.errs
	return r
}

func (g *generator) fail(format string, args ...any) {
	g.errs = append(g.errs, fmt.Sprintf(format, args...))
}

func (g *generator) emit1(b byte) int {
	g.code = append(g.code, b)
	return len(g.code) - 1
}

func (g *generator) emitOpImm(op byte, val byte) {
	g.emit1(op)
	g.emit1(val)
}

func (g *generator) emitOpAddr(op byte, addr uint16) {
	g.emit1(op)
	g.emit1(byte(addr & 0xFF))
	g.emit1(byte(addr >> 8))
}

// emitBranchPlaceholder emits BNE plus a one-byte placeholder operand,
// returning the operand's offset for later back-patching.
func (g *generator) emitBranchPlaceholder() int {
	g.emit1(opBNE)
	return g.emit1(0)
}

func (g *generator) patchBranch(offset int, distance int) {
	g.code[offset] = byte(uint8(distance))
}

func (g *generator) enterScope() int {
	g.nextScope++
	g.scopeStack = append(g.scopeStack, g.nextScope)
	return g.nextScope
}

func (g *generator) exitScope() {
	g.scopeStack = g.scopeStack[:len(g.scopeStack)-1]
}

func (g *generator) currentScope() int {
	if len(g.scopeStack) == 0 {
		return 0
	}
	return g.scopeStack[len(g.scopeStack)-1]
}

// lookup resolves name against the visible scope stack, innermost first —
// mirrors the analyzer's lexical lookup exactly so addresses line up with
// the symbol table the analyzer already validated.
func (g *generator) lookup(name string) (varKey, bool) {
	for i := len(g.scopeStack) - 1; i >= 0; i-- {
		key := varKey{name: name, scope: g.scopeStack[i]}
		if _, ok := g.staticAddr[key]; ok {
			return key, true
		}
	}
	return varKey{}, false
}

func (g *generator) genBlock(b *ast.Block) {
	if b == nil {
		g.emit1(opNOP)
		return
	}
	g.enterScope()
	if len(b.Statements) == 0 {
		g.emit1(opNOP)
	}
	for _, stmt := range b.Statements {
		g.genStatement(stmt)
	}
	g.exitScope()
}

func (g *generator) genStatement(stmt ast.Statement) {
	switch s := stmt.(type) {
	case *ast.Block:
		g.genBlock(s)
	case *ast.VarDeclaration:
		g.genVarDecl(s)
	case *ast.AssignmentStatement:
		g.genAssignment(s)
	case *ast.PrintStatement:
		g.genPrint(s)
	case *ast.IfStatement:
		g.genIf(s)
	case *ast.WhileStatement:
		g.genWhile(s)
	}
}

func (g *generator) genVarDecl(decl *ast.VarDeclaration) {
	scope := g.currentScope()
	key := varKey{name: decl.VarName, scope: scope}
	addr := g.nextStatic
	g.nextStatic++
	g.staticAddr[key] = addr
	g.staticType[key] = decl.VarType
	g.staticOrder = append(g.staticOrder, key)

	if decl.Init != nil {
		g.loadIntoA(decl.Init)
		g.emitOpAddr(opSTA, addr)
	}
}

func (g *generator) genAssignment(assign *ast.AssignmentStatement) {
	name := ""
	if assign.Identifier != nil {
		name = assign.Identifier.Name
	}
	key, ok := g.lookup(name)
	if !ok {
		g.fail("undefined variable '%s'", name)
		return
	}
	g.loadIntoA(assign.Expression)
	g.emitOpAddr(opSTA, g.staticAddr[key])
}

func (g *generator) genPrint(p *ast.PrintStatement) {
	t := g.typeOf(p.Expression)
	switch t {
	case ast.Int:
		g.loadIntoY(p.Expression)
		g.emitOpImm(opLDXImm, sysPrintInt)
		g.emit1(opSYS)
	default:
		g.loadIntoY(p.Expression)
		g.emitOpImm(opLDXImm, sysPrintStr)
		g.emit1(opSYS)
	}
}

func (g *generator) genIf(stmt *ast.IfStatement) {
	g.genComparisonLike(stmt.Condition)
	g.emitOpAddr(opSTA, tempAddr)
	g.emitOpAddr(opLDX, tempAddr)
	g.emitOpAddr(opCPX, tempAddr)

	skipThen := g.emitBranchPlaceholder()
	thenStart := len(g.code)
	g.genBlock(stmt.ThenBranch)
	thenLen := len(g.code) - thenStart

	if stmt.ElseBranch != nil {
		g.emitOpImm(opLDAImm, 1)
		skipElse := g.emitBranchPlaceholder()
		elseStart := len(g.code)
		g.genBlock(stmt.ElseBranch)
		elseLen := len(g.code) - elseStart
		g.patchBranch(skipElse, elseLen)
		g.patchBranch(skipThen, thenLen+4)
	} else {
		g.patchBranch(skipThen, thenLen)
	}
}

func (g *generator) genWhile(stmt *ast.WhileStatement) {
	loopStart := len(g.code)
	g.genComparisonLike(stmt.Condition)
	g.emitOpAddr(opSTA, tempAddr)
	g.emitOpAddr(opLDX, tempAddr)
	g.emitOpAddr(opCPX, tempAddr)

	forward := g.emitBranchPlaceholder()
	bodyStart := len(g.code)
	g.genBlock(stmt.Body)
	bodyLen := len(g.code) - bodyStart

	backAt := len(g.code)
	distance := backAt - loopStart + 2
	g.emit1(opBNE)
	g.emit1(byte(int8(-distance)))

	g.patchBranch(forward, bodyLen+2)
}

// genComparisonLike evaluates cond into A following the canonical
// equality/inequality sequence (spec's Comparison algorithm); a bare
// boolean literal or identifier loads directly instead of comparing.
func (g *generator) genComparisonLike(cond ast.Expression) {
	if bin, ok := cond.(*ast.BinaryExpression); ok && (bin.Operator == ast.OpEquals || bin.Operator == ast.OpNotEquals) {
		g.genComparison(bin)
		return
	}
	g.loadIntoA(cond)
}

// genComparison implements spec's literal comparison sequence: LDX left,
// LDA right, CPX against a fixed zero-page alias, default A=0, then a
// fixed +2 branch that either falls into LDA#1 (==) or LDA#0 (!=).
func (g *generator) genComparison(bin *ast.BinaryExpression) {
	g.loadIntoX(bin.Left)
	g.loadIntoA(bin.Right)
	g.emitOpAddr(opCPX, cmpAddr)
	g.emitOpImm(opLDAImm, 0)
	g.emit1(opBNE)
	g.emit1(2)
	if bin.Operator == ast.OpEquals {
		g.emitOpImm(opLDAImm, 1)
	} else {
		g.emitOpImm(opLDAImm, 0)
	}
}

// loadIntoA evaluates expr and leaves its value in the accumulator.
func (g *generator) loadIntoA(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		g.emitOpImm(opLDAImm, byte(e.Value))
	case *ast.BooleanLiteral:
		if e.Value {
			g.emitOpImm(opLDAImm, addrTrue)
		} else {
			g.emitOpImm(opLDAImm, addrFalse)
		}
	case *ast.StringLiteral:
		addr := g.intern(e.Value)
		g.emitOpImm(opLDAImm, byte(addr))
	case *ast.Identifier:
		key, ok := g.lookup(e.Name)
		if !ok {
			g.fail("undefined variable '%s'", e.Name)
			return
		}
		g.emitOpAddr(opLDA, g.staticAddr[key])
	case *ast.BinaryExpression:
		g.genBinary(e)
	default:
		g.emitOpImm(opLDAImm, 0)
	}
}

func (g *generator) loadIntoX(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		g.emitOpImm(opLDXImm, byte(e.Value))
	case *ast.BooleanLiteral:
		if e.Value {
			g.emitOpImm(opLDXImm, addrTrue)
		} else {
			g.emitOpImm(opLDXImm, addrFalse)
		}
	case *ast.StringLiteral:
		addr := g.intern(e.Value)
		g.emitOpImm(opLDXImm, byte(addr))
	case *ast.Identifier:
		key, ok := g.lookup(e.Name)
		if !ok {
			g.fail("undefined variable '%s'", e.Name)
			return
		}
		g.emitOpAddr(opLDX, g.staticAddr[key])
	default:
		g.emitOpImm(opLDXImm, 0)
	}
}

func (g *generator) loadIntoY(expr ast.Expression) {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		g.emitOpImm(opLDYImm, byte(e.Value))
	case *ast.BooleanLiteral:
		if e.Value {
			g.emitOpImm(opLDYImm, addrTrue)
		} else {
			g.emitOpImm(opLDYImm, addrFalse)
		}
	case *ast.StringLiteral:
		addr := g.intern(e.Value)
		g.emitOpImm(opLDYImm, byte(addr))
	case *ast.Identifier:
		key, ok := g.lookup(e.Name)
		if !ok {
			g.fail("undefined variable '%s'", e.Name)
			return
		}
		g.emitOpAddr(opLDY, g.staticAddr[key])
	case *ast.BinaryExpression:
		g.genBinary(e)
		g.emitOpAddr(opSTA, tempAddr)
		g.emitOpAddr(opLDY, tempAddr)
	default:
		g.emitOpImm(opLDYImm, 0)
	}
}

func (g *generator) genBinary(bin *ast.BinaryExpression) {
	switch bin.Operator {
	case ast.OpEquals, ast.OpNotEquals:
		g.genComparison(bin)
	case ast.OpAdd:
		if g.typeOf(bin) == ast.String {
			g.genStringConcat(bin)
			return
		}
		g.genArithmetic(bin)
	}
}

// genArithmetic implements spec's right-to-left ADC chain over a flattened
// left-associative '+' tree.
func (g *generator) genArithmetic(bin *ast.BinaryExpression) {
	operands := flattenAdd(bin)
	last := operands[len(operands)-1]
	g.loadIntoA(last)
	g.emitOpAddr(opSTA, tempAddr)
	for i := len(operands) - 2; i >= 0; i-- {
		g.loadIntoA(operands[i])
		g.emitOpAddr(opADC, tempAddr)
		g.emitOpAddr(opSTA, tempAddr)
	}
	g.emitOpAddr(opLDA, tempAddr)
}

func flattenAdd(expr ast.Expression) []ast.Expression {
	if bin, ok := expr.(*ast.BinaryExpression); ok && bin.Operator == ast.OpAdd {
		return append(flattenAdd(bin.Left), flattenAdd(bin.Right)...)
	}
	return []ast.Expression{expr}
}

// genStringConcat constant-folds literal + literal string concatenation
// into a new pool entry. Concatenation involving a non-literal operand
// can't be expressed in this target's instruction set (no string-builder
// opcode exists) and aborts the sub-program's code generation.
func (g *generator) genStringConcat(bin *ast.BinaryExpression) {
	left, ok1 := literalText(bin.Left)
	right, ok2 := literalText(bin.Right)
	if !ok1 || !ok2 {
		g.fail("string concatenation of a non-constant operand is not supported by this target")
		return
	}
	addr := g.intern(left + right)
	g.emitOpImm(opLDAImm, byte(addr))
}

func literalText(expr ast.Expression) (string, bool) {
	switch e := expr.(type) {
	case *ast.StringLiteral:
		return e.Value, true
	case *ast.BooleanLiteral:
		if e.Value {
			return "true", true
		}
		return "false", true
	default:
		return "", false
	}
}

func (g *generator) intern(lit string) uint16 {
	if addr, ok := g.stringAddr[lit]; ok {
		return addr
	}
	addr := g.nextHeap
	g.nextHeap += uint16(len(lit)) + 1
	g.stringAddr[lit] = addr
	g.stringOrder = append(g.stringOrder, lit)
	return addr
}

// typeOf infers an expression's static type by construction; program is
// assumed semantically valid so this never needs to report an error.
func (g *generator) typeOf(expr ast.Expression) ast.DataType {
	switch e := expr.(type) {
	case *ast.IntegerLiteral:
		return ast.Int
	case *ast.StringLiteral:
		return ast.String
	case *ast.BooleanLiteral:
		return ast.Boolean
	case *ast.Identifier:
		if key, ok := g.lookup(e.Name); ok {
			return g.staticType[key]
		}
		return ast.Unknown
	case *ast.BinaryExpression:
		if e.Operator == ast.OpEquals || e.Operator == ast.OpNotEquals {
			return ast.Boolean
		}
		return g.typeOf(e.Left)
	default:
		return ast.Unknown
	}
}
