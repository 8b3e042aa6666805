package cmd

import (
	"bytes"
	"context"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"treeterm/internal/document"
	"treeterm/internal/observability"
)

func setupTest(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	chdir(t, dir)
	color.NoColor = true
	observability.ResetForTest()
	t.Cleanup(observability.ResetForTest)
	return dir
}

func execute(t *testing.T, args ...string) (code int, stdout, stderr string) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	code = run(context.Background(), root, args, &errOut)
	return code, out.String(), errOut.String()
}

func writeDiagram(t *testing.T, dir string) string {
	t.Helper()
	doc := document.New(80, 24)
	a, err := doc.CreateNode("goal", 1, 1)
	require.NoError(t, err)
	b, err := doc.CreateNode("goal", 25, 1)
	require.NoError(t, err)
	_, err = doc.CreateRelationship(a, b, "drives")
	require.NoError(t, err)
	doc.PanView(50, 50)

	path := filepath.Join(dir, "tree.toml")
	require.NoError(t, doc.Save(path))
	return path
}

func TestVersion(t *testing.T) {
	setupTest(t)
	code, out, _ := execute(t, "--version")
	assert.Equal(t, 0, code)
	assert.Equal(t, Version+"\n", out)
}

func TestExportText(t *testing.T) {
	dir := setupTest(t)
	src := writeDiagram(t, dir)

	code, out, stderr := execute(t, "export", src, "--format", "txt")
	require.Equal(t, 0, code, stderr)
	want := filepath.Join(dir, "tree.txt")
	assert.Contains(t, out, "exported "+want)

	data, err := os.ReadFile(want)
	require.NoError(t, err)
	lines := strings.Split(string(data), "\n")
	require.GreaterOrEqual(t, len(lines), 4)
	assert.Equal(t, " +----------+   drives   +----------+", lines[1], "the saved pan does not matter")
	assert.Equal(t, " |   goal   |------------>   goal   |", lines[2])
}

func TestExportPNG(t *testing.T) {
	dir := setupTest(t)
	src := writeDiagram(t, dir)
	out := filepath.Join(dir, "out", "tree.png")
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0o755))

	code, _, stderr := execute(t, "export", src, "-o", out)
	require.Equal(t, 0, code, stderr)

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	require.NoError(t, err)
	assert.Equal(t, 36*10+2*20, cfg.Width, "defaults come from the export config")
}

func TestExportErrors(t *testing.T) {
	dir := setupTest(t)
	src := writeDiagram(t, dir)

	code, _, stderr := execute(t, "export", src, "--format", "svg")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, `unknown format "svg"`)

	code, _, stderr = execute(t, "export", filepath.Join(dir, "missing.toml"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Error: ")

	empty := filepath.Join(dir, "empty.toml")
	require.NoError(t, document.New(10, 10).Save(empty))
	code, _, stderr = execute(t, "export", empty, "-f", "txt")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, document.ErrEmptyDocument.Error())

	code, _, _ = execute(t, "export")
	assert.Equal(t, 1, code, "a file argument is required")
}

func TestConfigCmd(t *testing.T) {
	setupTest(t)
	code, out, stderr := execute(t, "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "config file: (none")
	assert.Contains(t, out, "editor.connect_key = c")
	assert.Contains(t, out, "autopan.frame_interval = 16ms")
}

func TestConfigFlag(t *testing.T) {
	dir := setupTest(t)
	path := filepath.Join(dir, "custom.toml")
	require.NoError(t, os.WriteFile(path, []byte("[editor]\nzoom_step = 2.0\n"), 0o644))

	code, out, stderr := execute(t, "--config", path, "config")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "config file: "+path)
	assert.Contains(t, out, "editor.zoom_step = 2")

	code, _, stderr = execute(t, "--config", filepath.Join(dir, "nope.toml"), "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "error reading config file")
}

func TestInvalidConfigIsReported(t *testing.T) {
	dir := setupTest(t)
	path := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(path, []byte("[autopan]\nmax_speed = -1\n"), 0o644))

	code, _, stderr := execute(t, "--config", path, "config")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "autopan.max_speed must be positive")
}

func TestOpenDocument(t *testing.T) {
	dir := setupTest(t)

	doc, err := openDocument("")
	require.NoError(t, err)
	assert.Empty(t, doc.Nodes())

	doc, err = openDocument(filepath.Join(dir, "new.toml"))
	require.NoError(t, err, "a missing file starts a new document")
	assert.Empty(t, doc.Nodes())

	doc, err = openDocument(writeDiagram(t, dir))
	require.NoError(t, err)
	assert.Len(t, doc.Nodes(), 2)
	assert.Equal(t, 50.0, doc.View().OriginX, "the editor restores the saved view")

	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("not = [toml"), 0o644))
	_, err = openDocument(bad)
	assert.Error(t, err)
}

// chdir changes the working directory for the test and restores it on
// cleanup, like testing.T.Chdir (Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(wd); err != nil {
			t.Fatal(err)
		}
	})
}
