package surfparse

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cpst/internal/surfast"
	"github.com/cwbudde/cpst/internal/surftoken"
)

func TestParseFunctionDefWithIfElse(t *testing.T) {
	src := "def cps_abs(k, x):\n    if x < 0:\n        return -x\n    else:\n        return x\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())
	require.Len(t, mod.Body, 1)

	fn, ok := mod.Body[0].(*surfast.FunctionDef)
	require.True(t, ok)
	assert.Equal(t, "cps_abs", fn.Name)
	assert.Equal(t, []string{"k", "x"}, fn.Formals)
	require.Len(t, fn.Body, 1)

	ifStmt, ok := fn.Body[0].(*surfast.If)
	require.True(t, ok)
	assert.Len(t, ifStmt.Body, 1)
	assert.Len(t, ifStmt.Orelse, 1)
}

func TestParseElifDesugarsToNestedIf(t *testing.T) {
	src := "if a:\n    pass\nelif b:\n    pass\nelse:\n    pass\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	outer, ok := mod.Body[0].(*surfast.If)
	require.True(t, ok)
	require.Len(t, outer.Orelse, 1)
	inner, ok := outer.Orelse[0].(*surfast.If)
	require.True(t, ok)
	assert.Len(t, inner.Orelse, 1)
}

func TestParseWhileWithElse(t *testing.T) {
	src := "while x:\n    x = x - 1\nelse:\n    print(x)\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	w, ok := mod.Body[0].(*surfast.While)
	require.True(t, ok)
	assert.Len(t, w.Body, 1)
	assert.Len(t, w.Orelse, 1)
}

func TestParseAssignment(t *testing.T) {
	src := "x = 1 + 2 * 3\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	assign, ok := mod.Body[0].(*surfast.Assign)
	require.True(t, ok)
	name, ok := assign.Target.(*surfast.Name)
	require.True(t, ok)
	assert.Equal(t, "x", name.Id)

	bin, ok := assign.Value.(*surfast.BinOp)
	require.True(t, ok)
	assert.Equal(t, surftoken.PLUS, bin.Op)
}

func TestOperatorPrecedence(t *testing.T) {
	// 1 + 2 * 3 parses as 1 + (2 * 3): the outer node is PLUS.
	src := "y = 1 + 2 * 3\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	assign := mod.Body[0].(*surfast.Assign)
	bin := assign.Value.(*surfast.BinOp)
	assert.Equal(t, surftoken.PLUS, bin.Op)
	_, leftIsNum := bin.Left.(*surfast.Num)
	assert.True(t, leftIsNum)
	rightBin, ok := bin.Right.(*surfast.BinOp)
	require.True(t, ok)
	assert.Equal(t, surftoken.STAR, rightBin.Op)
}

func TestParseCallChain(t *testing.T) {
	src := "cps_f(cps_g(x), y)\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	stmt, ok := mod.Body[0].(*surfast.ExprStmt)
	require.True(t, ok)
	call, ok := stmt.Value.(*surfast.Call)
	require.True(t, ok)
	fun, ok := call.Fun.(*surfast.Name)
	require.True(t, ok)
	assert.Equal(t, "cps_f", fun.Id)
	require.Len(t, call.Args, 2)
	_, ok = call.Args[0].(*surfast.Call)
	assert.True(t, ok)
}

func TestParseAttributeCall(t *testing.T) {
	src := "obj.cps_method(x)\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	stmt := mod.Body[0].(*surfast.ExprStmt)
	call := stmt.Value.(*surfast.Call)
	attr, ok := call.Fun.(*surfast.Attribute)
	require.True(t, ok)
	assert.Equal(t, "cps_method", attr.Name)
}

func TestParseCompareChain(t *testing.T) {
	src := "z = a < b <= c\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	assign := mod.Body[0].(*surfast.Assign)
	cmp, ok := assign.Value.(*surfast.Compare)
	require.True(t, ok)
	assert.Equal(t, []surftoken.Kind{surftoken.LT, surftoken.LTE}, cmp.Ops)
	assert.Len(t, cmp.Operands, 3)
}

func TestParseTupleAssignIsVerbatimNode(t *testing.T) {
	src := "a, b = 1, 2\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	_, ok := mod.Body[0].(*surfast.TupleAssign)
	assert.True(t, ok)
}

func TestParseInvalidAssignTargetRecordsError(t *testing.T) {
	src := "1 + 1 = x\n"
	p := New("t.src", src)
	p.ParseModule()
	require.NotEmpty(t, p.Errors())
}

func TestParseErrorRecoveryContinuesToNextStatement(t *testing.T) {
	src := "x = \ny = 2\n"
	p := New("t.src", src)
	mod := p.ParseModule()
	// the malformed first assignment still records an error, but
	// parsing continues and the module still has two statements.
	require.NotEmpty(t, p.Errors())
	assert.Len(t, mod.Body, 2)
}
