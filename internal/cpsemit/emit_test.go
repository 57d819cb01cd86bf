package cpsemit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwbudde/cpst/internal/cpsir"
)

func TestEmitFlatChain(t *testing.T) {
	// v0 = 1 + 2
	// k(v0)
	ret := cpsir.NewCall("k", []string{"v0"}, cpsir.NullCont)
	bin := cpsir.NewBinOp("1", "2", "+", &cpsir.Cont{Name: "v0", Exp: ret})
	m := &cpsir.Module{Body: bin, K: cpsir.NullCont}

	got := Emit(m)
	assert.Equal(t, "v0 = 1 + 2\nk(v0)\n", got)
}

func TestEmitIfIndentsBothArms(t *testing.T) {
	ifNode := cpsir.NewIf("t0",
		cpsir.NewCall("kf0", nil, cpsir.NullCont),
		cpsir.NewCall("kf1", nil, cpsir.NullCont),
	)
	m := &cpsir.Module{Body: ifNode, K: cpsir.NullCont}

	got := Emit(m)
	assert.Equal(t, "if t0:\n    kf0()\nelse:\n    kf1()\n", got)
}

func TestEmitFunctionDefWithCapture(t *testing.T) {
	fn := cpsir.NewFunctionDef("kf0", true, []string{"v0"}, nil,
		cpsir.NewCall("k", []string{"v0"}, cpsir.NullCont), cpsir.NullCont)
	fn.Captured["acc"] = true

	m := &cpsir.Module{Body: fn, K: cpsir.NullCont}
	got := Emit(m)
	assert.Equal(t, "def kf0(v0):\n    captured acc\n    k(v0)\n", got)
}

func TestEmitFunctionDefNilTailBodyEmitsPass(t *testing.T) {
	fn := cpsir.NewFunctionDef("kf0", true, nil, nil, nil, cpsir.NullCont)
	m := &cpsir.Module{Body: fn, K: cpsir.NullCont}

	got := Emit(m)
	assert.Equal(t, "def kf0():\n    pass\n", got)
}

func TestEmitExprStatementIsPass(t *testing.T) {
	m := &cpsir.Module{Body: cpsir.NewExpr(cpsir.NullCont), K: cpsir.NullCont}
	assert.Equal(t, "pass\n", Emit(m))
}

func TestWriterIndentDedent(t *testing.T) {
	w := New()
	w.Line("a")
	w.Indent()
	w.Line("b")
	w.Dedent()
	w.Line("c")
	assert.Equal(t, "a\n    b\nc\n", w.String())
}
