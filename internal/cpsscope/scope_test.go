package cpsscope

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwbudde/cpst/internal/cpsir"
)

func TestAnalyzeRecordsAssignedOnEnclosingRealFunction(t *testing.T) {
	gBody := cpsir.NewName("x", cpsir.NullCont)
	g := cpsir.NewFunctionDef("g", true, nil, nil, gBody, cpsir.NullCont)

	assign := cpsir.NewAssign("v0", []string{"x"}, &cpsir.Cont{Name: "_", Exp: g})
	f := cpsir.NewFunctionDef("f", false, nil, nil, assign, cpsir.NullCont)

	Analyze(f)

	assert.True(t, f.Assigned["x"])
	assert.Empty(t, g.Assigned)
}

func TestAnalyzeCapturesReadInNestedKFunOnly(t *testing.T) {
	gBody := cpsir.NewName("x", cpsir.NullCont)
	g := cpsir.NewFunctionDef("g", true, nil, nil, gBody, cpsir.NullCont)

	assign := cpsir.NewAssign("v0", []string{"x"}, &cpsir.Cont{Name: "_", Exp: g})
	f := cpsir.NewFunctionDef("f", false, nil, nil, assign, cpsir.NullCont)

	Analyze(f)

	assert.True(t, g.Captured["x"])
	assert.Empty(t, f.Captured)
}

func TestFindLocalsTreatsKFunBodyAsOuterFunctionScope(t *testing.T) {
	innerAssign := cpsir.NewAssign("v0", []string{"y"}, &cpsir.Cont{Name: "_", Exp: cpsir.NewExpr(cpsir.NullCont)})
	g := cpsir.NewFunctionDef("g", true, nil, nil, innerAssign, cpsir.NullCont)
	f := cpsir.NewFunctionDef("f", false, nil, nil, g, cpsir.NullCont)

	Analyze(f)

	assert.True(t, f.Assigned["y"])
	assert.Empty(t, g.Assigned)
}

func TestAssignedSomewhereAboveWalksEnclosingFrames(t *testing.T) {
	outer := cpsir.NewFunctionDef("f", false, nil, nil, nil, cpsir.NullCont)
	outer.Assigned["x"] = true
	inner := cpsir.NewFunctionDef("g", true, nil, nil, nil, cpsir.NullCont)

	env := &frame{fn: inner, next: &frame{fn: outer, next: nil}}
	assert.True(t, assignedSomewhereAbove("x", env))
	assert.False(t, assignedSomewhereAbove("z", env))
}
