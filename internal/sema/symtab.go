// Package sema implements Alan++'s semantic analyzer: a lexically-scoped
// symbol table with shadowing, type checking on every node kind, and an
// unused-variable sweep on scope exit.
//
// The scope-stack push/pop discipline is grounded on the teacher pack's
// symtable.go scope-entry/scope-exit idea, adapted from function-local
// frame offsets to Alan++'s monotonically increasing scope-ID scheme
// (spec.md's "Scope counter monotonicity" design note): leaving and
// re-entering a sibling scope must assign a fresh ID, not reuse the old one.
package sema

import "github.com/alanpp/alanppc/internal/ast"

// Symbol is one symbol-table entry: one per declaration, per scope.
type Symbol struct {
	Name        string
	Type        ast.DataType
	Scope       int
	Line        int
	Column      int
	Initialized bool
	Used        bool
}

// SymbolTable maps a name to every declaration of that name across all
// scopes seen during one analysis pass, in declaration order.
type SymbolTable struct {
	entries map[string][]*Symbol
}

func newSymbolTable() *SymbolTable {
	return &SymbolTable{entries: make(map[string][]*Symbol)}
}

// All returns every entry across every name, ordered by (scope, line) as
// required for the symbol-table dump sink.
func (t *SymbolTable) All() []*Symbol {
	var out []*Symbol
	for _, list := range t.entries {
		out = append(out, list...)
	}
	// insertion sort by (scope, line); table sizes are small.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && less(out[j], out[j-1]); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

func less(a, b *Symbol) bool {
	if a.Scope != b.Scope {
		return a.Scope < b.Scope
	}
	return a.Line < b.Line
}

func (t *SymbolTable) declare(scope int, sym *Symbol) bool {
	for _, existing := range t.entries[sym.Name] {
		if existing.Scope == scope {
			return false
		}
	}
	t.entries[sym.Name] = append(t.entries[sym.Name], sym)
	return true
}

// lookup walks stack top-down (innermost scope first) and returns the first
// entry whose Scope is on the stack, i.e. is a currently-visible scope.
func (t *SymbolTable) lookup(name string, stack []int) *Symbol {
	for i := len(stack) - 1; i >= 0; i-- {
		scope := stack[i]
		for _, sym := range t.entries[name] {
			if sym.Scope == scope {
				return sym
			}
		}
	}
	return nil
}

// scopeEntries returns every symbol declared directly in scope, declaration
// order within that scope.
func (t *SymbolTable) scopeEntries(scope int) []*Symbol {
	var out []*Symbol
	for _, list := range t.entries {
		for _, sym := range list {
			if sym.Scope == scope {
				out = append(out, sym)
			}
		}
	}
	// insertion sort by source position, which is declaration order.
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && (out[j].Line < out[j-1].Line ||
			(out[j].Line == out[j-1].Line && out[j].Column < out[j-1].Column)); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}
