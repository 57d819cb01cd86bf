package driver

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDiscoverSortsNaturallyAndDedupes(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "b2.cpst", "pass\n")
	writeFile(t, dir, "b10.cpst", "pass\n")
	writeFile(t, dir, "b1.cpst", "pass\n")

	files, err := Discover([]string{dir}, []string{"*.cpst"})
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, filepath.Join(dir, "b1.cpst"), files[0])
	assert.Equal(t, filepath.Join(dir, "b2.cpst"), files[1])
	assert.Equal(t, filepath.Join(dir, "b10.cpst"), files[2])
}

func TestDiscoverExplicitFileAndDirDedup(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "a.cpst", "pass\n")

	files, err := Discover([]string{f, dir}, []string{"*.cpst"})
	require.NoError(t, err)
	assert.Equal(t, []string{f}, files)
}

func TestDiscoverGlobPattern(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x.cpst", "pass\n")
	writeFile(t, dir, "y.txt", "pass\n")

	files, err := Discover([]string{filepath.Join(dir, "*.cpst")}, nil)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, filepath.Join(dir, "x.cpst"), files[0])
}

func TestDiscoverNoMatchIsError(t *testing.T) {
	_, err := Discover([]string{"/no/such/path/*.cpst"}, nil)
	assert.Error(t, err)
}

func TestOutputPathInsertsSuffixBeforeExtension(t *testing.T) {
	assert.Equal(t, "foo.cps.cpst", OutputPath("foo.cpst", "cps"))
	assert.Equal(t, "dir/foo.cps.cpst", OutputPath("dir/foo.cpst", "cps"))
}

func TestTransformProducesOutputForValidFile(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f.cpst", "def cps_f(x):\n    return x\n")

	res := Transform(f, Options{Prefix: "cps_"})
	require.True(t, res.OK())
	assert.Contains(t, res.Output, "def cps_f(k, x):")
}

func TestTransformReportsParseDiagnostics(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "bad.cpst", "def cps_f(x)\n    return x\n")

	res := Transform(f, Options{})
	assert.False(t, res.OK())
	assert.NotEmpty(t, res.Diags)
}

func TestTransformReportsIOErrorForMissingFile(t *testing.T) {
	res := Transform("/no/such/file.cpst", Options{})
	assert.False(t, res.OK())
	require.Len(t, res.Diags, 1)
}

func TestCheckStopsBeforeEmission(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f.cpst", "def cps_f(x):\n    return x\n")

	res := Check(f, Options{})
	require.True(t, res.OK())
	assert.Empty(t, res.Output)
}

func TestTransformWithTrampolineWrapsOutput(t *testing.T) {
	dir := t.TempDir()
	f := writeFile(t, dir, "f.cpst", "def cps_f(x):\n    return x\n")

	res := Transform(f, Options{Prefix: "cps_", Trampoline: true})
	require.True(t, res.OK())
	assert.Contains(t, res.Output, "from scheduler import schedule, run")
	assert.Contains(t, res.Output, "run()")
}
