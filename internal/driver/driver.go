// Package driver splits Alan++ source into independent sub-programs and
// runs each through the lex -> parse -> lower/analyze -> codegen pipeline,
// gating each stage on the previous one's success and collating every
// stage's diagnostics.
//
// The split-run-collate shape, and resetting all per-stage state between
// sub-programs, is grounded on the teacher's main/main_cpq1.go driver loop,
// generalized from "one program per invocation" to "N sub-programs per
// source string, independently compiled".
package driver

import (
	"regexp"
	"strings"

	"github.com/alanpp/alanppc/internal/ast"
	"github.com/alanpp/alanppc/internal/cst"
	"github.com/alanpp/alanppc/internal/codegen"
	"github.com/alanpp/alanppc/internal/diag"
	"github.com/alanpp/alanppc/internal/lexer"
	"github.com/alanpp/alanppc/internal/parser"
	"github.com/alanpp/alanppc/internal/sema"
)

var delimRun = regexp.MustCompile(`\$+`)

// SubProgram is the complete pipeline output for one '$'-delimited segment
// of the source.
type SubProgram struct {
	Source string

	LexerLog *diag.Log

	ParserLog *diag.Log
	CST       *cst.Node

	SemanticLog *diag.Log
	AST         *ast.Program
	Symbols     *sema.SymbolTable

	Codegen    codegen.Result
	CodeRan    bool
}

// Split breaks src into its sub-program segments: one-or-more consecutive
// '$' characters delimit, and empty segments are discarded. Each returned
// segment has its trailing '$' restored, so the lexer sees a proper EOP.
func Split(src string) []string {
	parts := delimRun.Split(src, -1)
	var out []string
	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}
		out = append(out, p+"$")
	}
	return out
}

// Run compiles every sub-program in src independently.
func Run(src string) []SubProgram {
	var results []SubProgram
	for _, segment := range Split(src) {
		results = append(results, runOne(segment))
	}
	return results
}

func runOne(segment string) SubProgram {
	sp := SubProgram{Source: segment}

	tokens, lexLog := lexer.Scan(segment)
	sp.LexerLog = lexLog
	if len(tokens) == 0 {
		return sp
	}

	cstRoot, parseLog := parser.Parse(tokens)
	sp.ParserLog = parseLog
	sp.CST = cstRoot
	parseLog.Info(0, 0, "Parsing completed with %d error(s)", parseLog.ErrorCount())

	if parseLog.HasErrors() {
		return sp
	}

	program := ast.Lower(cstRoot)
	sp.AST = program

	symbols, semLog := sema.Analyze(program)
	sp.SemanticLog = semLog
	sp.Symbols = symbols

	if semLog.HasErrors() {
		return sp
	}

	sp.CodeRan = true
	sp.Codegen = codegen.Generate(program)
	if len(sp.Codegen.Errors) > 0 {
		semLog.Info(0, 0, "Code Generation aborted: %s", strings.Join(sp.Codegen.Errors, "; "))
	} else {
		semLog.Info(0, 0, "Code Generation complete")
	}
	return sp
}

// CollateLogs appends every sub-program's stage logs, in pipeline order,
// onto one combined log — the shape the driver owns per spec.md §5.
func CollateLogs(results []SubProgram) *diag.Log {
	combined := &diag.Log{}
	for _, sp := range results {
		if sp.LexerLog != nil {
			combined.Append(sp.LexerLog)
		}
		if sp.ParserLog != nil {
			combined.Append(sp.ParserLog)
		}
		if sp.SemanticLog != nil {
			combined.Append(sp.SemanticLog)
		}
	}
	return combined
}
