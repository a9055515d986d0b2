package driver

import (
	"fmt"
	"sort"
	"strings"

	"github.com/alanpp/alanppc/internal/ast"
	"github.com/alanpp/alanppc/internal/cst"
	"github.com/alanpp/alanppc/internal/diag"
)

// LexerSink renders sub-program n's lexer-log text sink.
func (sp SubProgram) LexerSink(color bool) string {
	return diag.RenderAll(sp.LexerLog, color)
}

// ParserSink renders the parser-log-plus-CST-dump text sink.
func (sp SubProgram) ParserSink(color bool) string {
	var b strings.Builder
	b.WriteString(diag.RenderAll(sp.ParserLog, color))
	b.WriteString("\n\n")
	b.WriteString(cst.Pretty(sp.CST))
	return b.String()
}

// SemanticSink renders the semantic-log-plus-AST-dump-plus-symbol-table
// text sink.
func (sp SubProgram) SemanticSink(color bool) string {
	var b strings.Builder
	b.WriteString(diag.RenderAll(sp.SemanticLog, color))
	b.WriteString("\n\n")
	if sp.AST != nil {
		b.WriteString(ast.Pretty(sp.AST))
		b.WriteString("\n\n")
	}
	b.WriteString(sp.Symbols.Dump())
	return b.String()
}

// CodeSink renders the machine-code-plus-memory-map text sink: 256
// space-separated upper-case hex byte pairs, followed by the memory map.
func (sp SubProgram) CodeSink() string {
	var b strings.Builder
	for i, by := range sp.Codegen.Code {
		if i > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%02X", by)
	}
	b.WriteString("\n\n")

	type row struct {
		name string
		addr uint16
	}
	var rows []row
	for _, s := range sp.Codegen.Statics {
		rows = append(rows, row{name: s.Name, addr: s.Address})
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].addr < rows[j].addr })
	for _, r := range rows {
		fmt.Fprintf(&b, "%s: 0x%04X\n", r.name, r.addr)
	}

	type strRow struct {
		lit  string
		addr uint16
	}
	var strs []strRow
	for _, s := range sp.Codegen.Strings {
		strs = append(strs, strRow{lit: s.Literal, addr: s.Address})
	}
	sort.Slice(strs, func(i, j int) bool { return strs[i].addr < strs[j].addr })
	for _, s := range strs {
		fmt.Fprintf(&b, "%q: 0x%04X\n", s.lit, s.addr)
	}
	return b.String()
}
