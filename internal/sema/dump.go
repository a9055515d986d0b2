package sema

import "fmt"

// Dump renders the symbol table as the {Name, Type, Init, Used, Scope,
// Line} table the semantic-analysis sink appends after the AST dump,
// sorted by (scope, line).
func (t *SymbolTable) Dump() string {
	if t == nil {
		return ""
	}
	out := "Name\tType\tInit\tUsed\tScope\tLine\n"
	for _, sym := range t.All() {
		out += fmt.Sprintf("%s\t%s\t%t\t%t\t%d\t%d\n", sym.Name, sym.Type, sym.Initialized, sym.Used, sym.Scope, sym.Line)
	}
	return out
}
