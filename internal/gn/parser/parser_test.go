package parser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/parser"
	"github.com/gnlang/gnls/internal/gn/token"
)

func TestParse_SimpleAssignment(t *testing.T) {
	block := parser.Parse(`foo = "bar"`)
	require.Len(t, block.Statements, 1)
	asgn, ok := block.Statements[0].(*ast.Assignment)
	require.True(t, ok)
	ident, ok := asgn.LValue.(*ast.Identifier)
	require.True(t, ok)
	assert.Equal(t, "foo", ident.Name)
	str, ok := asgn.RValue.(*ast.StringLiteral)
	require.True(t, ok)
	assert.Equal(t, "bar", str.Value)
}

func TestParse_CompoundAssignmentOperators(t *testing.T) {
	block := parser.Parse(`sources += [ "a.cc" ]`)
	require.Len(t, block.Statements, 1)
	asgn := block.Statements[0].(*ast.Assignment)
	assert.Equal(t, token.PLUS_ASSIGN, asgn.Op)
	list, ok := asgn.RValue.(*ast.ListExpr)
	require.True(t, ok)
	assert.Len(t, list.Elements, 1)
}

func TestParse_TargetDeclarationWithBody(t *testing.T) {
	src := `executable("foo") {
  sources = [ "main.cc" ]
  deps = [ ":bar" ]
}`
	block := parser.Parse(src)
	require.Len(t, block.Statements, 1)
	call, ok := block.Statements[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "executable", call.Function.Name)
	require.Len(t, call.Args, 1)
	require.NotNil(t, call.Body)
	assert.Len(t, call.Body.Statements, 2)
}

func TestParse_ConditionBothArmsKept(t *testing.T) {
	src := `if (is_mac) {
  x = 1
} else if (is_win) {
  x = 2
} else {
  x = 3
}`
	block := parser.Parse(src)
	require.Len(t, block.Statements, 1)
	cond, ok := block.Statements[0].(*ast.Condition)
	require.True(t, ok)
	require.Len(t, cond.Then.Statements, 1)
	elseCond, ok := cond.Else.(*ast.Condition)
	require.True(t, ok)
	require.Len(t, elseCond.Then.Statements, 1)
	elseBlock, ok := elseCond.Else.(*ast.Block)
	require.True(t, ok)
	require.Len(t, elseBlock.Statements, 1)
}

func TestParse_ForeachCall(t *testing.T) {
	src := `foreach(f, sources) {
  print(f)
}`
	block := parser.Parse(src)
	require.Len(t, block.Statements, 1)
	call, ok := block.Statements[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "foreach", call.Function.Name)
	require.Len(t, call.Args, 2)
	require.NotNil(t, call.Body)
}

func TestParse_ScopeAndArrayAccess(t *testing.T) {
	block := parser.Parse(`x = invoker.sources[0]`)
	asgn := block.Statements[0].(*ast.Assignment)
	arr, ok := asgn.RValue.(*ast.ArrayAccess)
	require.True(t, ok)
	scope, ok := arr.Array.(*ast.ScopeAccess)
	require.True(t, ok)
	assert.Equal(t, "sources", scope.Member.Name)
}

func TestParse_BinaryPrecedence(t *testing.T) {
	// is_mac || is_win && is_debug should bind && tighter than ||.
	block := parser.Parse(`x = is_mac || is_win && is_debug`)
	asgn := block.Statements[0].(*ast.Assignment)
	bin, ok := asgn.RValue.(*ast.BinaryExpr)
	require.True(t, ok)
	_, rightIsBinary := bin.Right.(*ast.BinaryExpr)
	assert.True(t, rightIsBinary, "&& should nest under the right side of ||")
}

func TestParse_MalformedStatementProducesErrorNodeAndRecovers(t *testing.T) {
	src := `@@@
foo = 1`
	block := parser.Parse(src)
	require.Len(t, block.Statements, 2)
	_, isErr := block.Statements[0].(*ast.ErrorStatement)
	assert.True(t, isErr)
	asgn, ok := block.Statements[1].(*ast.Assignment)
	require.True(t, ok)
	ident := asgn.LValue.(*ast.Identifier)
	assert.Equal(t, "foo", ident.Name)
}

func TestParse_ImportCall(t *testing.T) {
	block := parser.Parse(`import("//build/config.gni")`)
	call, ok := block.Statements[0].(*ast.Call)
	require.True(t, ok)
	assert.Equal(t, "import", call.Function.Name)
	str := call.Args[0].(*ast.StringLiteral)
	assert.Equal(t, "//build/config.gni", str.Value)
}

func TestParse_StringInterpolationLeftLiteral(t *testing.T) {
	block := parser.Parse(`x = "$foo-suffix"`)
	asgn := block.Statements[0].(*ast.Assignment)
	str := asgn.RValue.(*ast.StringLiteral)
	assert.Equal(t, "$foo-suffix", str.Value)
	assert.False(t, str.IsSimple())
}

func TestParse_UnterminatedBraceFallsBackToEOF(t *testing.T) {
	src := `executable("foo") {
  sources = [ "a.cc" ]`
	block := parser.Parse(src)
	require.Len(t, block.Statements, 1)
	call := block.Statements[0].(*ast.Call)
	require.NotNil(t, call.Body)
	assert.Len(t, call.Body.Statements, 1)
}
