package surfprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwbudde/cpst/internal/surfast"
	"github.com/cwbudde/cpst/internal/surfparse"
)

func TestPrintModuleRoundTripsFunctionDef(t *testing.T) {
	src := "def helper(x, y):\n    if x:\n        return x\n    else:\n        return y\n"
	p := surfparse.New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	out := New().PrintModule(mod)
	assert.Equal(t, src, out)
}

func TestPrintModuleEmptyBodyIsPass(t *testing.T) {
	m := surfast.NewModule(nil)
	out := New().PrintModule(m)
	assert.Equal(t, "pass\n", out)
}

func TestPrintStmtRendersImportVerbatim(t *testing.T) {
	src := "import os\n"
	p := surfparse.New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	out := New().PrintStmt(mod.Body[0])
	assert.Equal(t, "import os\n", out)
}

func TestPrintStmtWhileWithElse(t *testing.T) {
	src := "while x:\n    x = x - 1\nelse:\n    print(x)\n"
	p := surfparse.New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	out := New().PrintStmt(mod.Body[0])
	assert.Equal(t, src, out)
}

func TestPrintStmtTryWithHandlerAndFinally(t *testing.T) {
	src := "try:\n    pass\nexcept ValueError as e:\n    pass\nfinally:\n    pass\n"
	p := surfparse.New("t.src", src)
	mod := p.ParseModule()
	require.Empty(t, p.Errors())

	out := New().PrintStmt(mod.Body[0])
	assert.Equal(t, src, out)
}
