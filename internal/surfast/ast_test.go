package surfast

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwbudde/cpst/internal/surftoken"
)

var zeroPos surftoken.Position

func TestKindStringKnownAndUnknown(t *testing.T) {
	assert.Equal(t, "FunctionDef", KindFunctionDef.String())
	assert.Equal(t, "TupleAssign", KindTupleAssign.String())
	assert.Equal(t, "Unknown", Kind(999).String())
}

func TestFunctionDefHasDecorator(t *testing.T) {
	f := NewFunctionDef(zeroPos, "cps_f", []string{"x"}, []Decorator{{Name: "cps_manual"}}, nil)
	assert.True(t, f.HasDecorator("cps_manual"))
	assert.False(t, f.HasDecorator("other"))
}

func TestBinOpString(t *testing.T) {
	b := NewBinOp(zeroPos, NewName(zeroPos, "x"), NewNum(zeroPos, "1"), surftoken.PLUS)
	assert.Equal(t, "x + 1", b.String())
}

func TestCompareStringChains(t *testing.T) {
	c := NewCompare(zeroPos,
		[]Expr{NewName(zeroPos, "a"), NewName(zeroPos, "b"), NewName(zeroPos, "c")},
		[]surftoken.Kind{surftoken.LT, surftoken.LTE})
	assert.Equal(t, "a < b <= c", c.String())
}

func TestCallString(t *testing.T) {
	c := NewCall(zeroPos, NewName(zeroPos, "cps_f"), []Expr{NewName(zeroPos, "x"), NewNum(zeroPos, "2")})
	assert.Equal(t, "cps_f(x, 2)", c.String())
}

func TestAttributeString(t *testing.T) {
	a := NewAttribute(zeroPos, NewName(zeroPos, "obj"), "field")
	assert.Equal(t, "obj.field", a.String())
}

func TestModuleStringJoinsStatements(t *testing.T) {
	m := NewModule([]Stmt{NewPass(zeroPos), NewPass(zeroPos)})
	assert.Equal(t, "pass\npass\n", m.String())
}

func TestNodeKindsAreDistinct(t *testing.T) {
	assert.Equal(t, KindName, NewName(zeroPos, "x").Kind())
	assert.Equal(t, KindNum, NewNum(zeroPos, "1").Kind())
	assert.Equal(t, KindStr, NewStr(zeroPos, "s").Kind())
	assert.Equal(t, KindAssign, NewAssign(zeroPos, NewName(zeroPos, "x"), NewNum(zeroPos, "1")).Kind())
}
