package driver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDiscardsEmptySegmentsAndRestoresDelimiter(t *testing.T) {
	segments := Split("{}$$$  $ { int a }$")
	require.Len(t, segments, 2)
	assert.Equal(t, "{}$", segments[0])
	assert.Equal(t, " { int a }$", segments[1])
}

func TestRunIndependentSubPrograms(t *testing.T) {
	results := Run("{ int a }$ { int a a = 3 print(a) }$")
	require.Len(t, results, 2)

	assert.True(t, results[0].CodeRan)
	assert.True(t, results[1].CodeRan)
	assert.Len(t, results[1].Codegen.Statics, 1)
}

func TestRunGatesParserOnLexerFailureNone(t *testing.T) {
	// a clean sub-program runs every stage.
	results := Run("{}$")
	require.Len(t, results, 1)
	sp := results[0]
	assert.NotNil(t, sp.LexerLog)
	assert.NotNil(t, sp.ParserLog)
	assert.NotNil(t, sp.SemanticLog)
	assert.True(t, sp.CodeRan)
}

func TestRunGatesCodegenOnSemanticError(t *testing.T) {
	results := Run("{ int a boolean b b = true a = b }$")
	require.Len(t, results, 1)
	assert.False(t, results[0].CodeRan)
}

func TestSubProgramsDoNotShareState(t *testing.T) {
	// the same name declared in two independent sub-programs is fine in both.
	results := Run("{ int x }$ { int x }$")
	require.Len(t, results, 2)
	for _, sp := range results {
		assert.False(t, sp.SemanticLog.HasErrors())
	}
}

func TestCodeSinkRendersFullHexImage(t *testing.T) {
	results := Run("{}$")
	sink := results[0].CodeSink()
	assert.Contains(t, sink, "A9 00 EA 00")
}

func TestSinksDoNotPanicOnSyntaxError(t *testing.T) {
	// a missing closing brace stops the pipeline at the parser, so
	// SemanticLog (and AST, Symbols, Codegen) are never set. The sinks
	// must still render rather than panic on the nil SemanticLog.
	results := Run("{ int a $")
	require.Len(t, results, 1)
	sp := results[0]

	assert.False(t, sp.CodeRan)
	assert.Nil(t, sp.SemanticLog)

	assert.NotPanics(t, func() {
		sp.ParserSink(false)
		sp.SemanticSink(false)
	})
}
