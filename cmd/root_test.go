package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dotcommander/modcycle/internal/baseline"
)

// setupProject creates a project in a temp dir, switches into it and resets
// command state. files maps relative paths to contents.
func setupProject(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, contents := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	}

	oldWd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		_ = os.Chdir(oldWd)
	})

	viper.Reset()
	bindFlags(rootCmd.PersistentFlags())
	rootPath = ""
	staged, diff = false, false
	useBaseline, createBaseline = false, false
	baselinePath = baseline.DefaultFileName
	return dir
}

var cyclicProject = map[string]string{
	"package.json":     "{}",
	"src/a.ts":         "import { b } from './b';\nexport const a = 1;\n",
	"src/b.ts":         "import { a } from './a';\nexport const b = 2;\n",
	"src/c.ts":         "export const c = 3;\n",
	".modcyclerc.json": `{"format": "json", "output": "report.json", "quiet": true}`,
}

func readReport(t *testing.T, dir string) map[string]any {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var report map[string]any
	require.NoError(t, json.Unmarshal(data, &report))
	return report
}

func TestRootFlagsRegistered(t *testing.T) {
	for flag := range flagKeys {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), "missing persistent flag %s", flag)
	}
	for _, flag := range []string{"staged", "diff", "baseline", "baseline-create", "baseline-path"} {
		assert.NotNil(t, rootCmd.Flags().Lookup(flag), "missing flag %s", flag)
	}
}

func TestRunLintFindsCycle(t *testing.T) {
	dir := setupProject(t, cyclicProject)

	failed, err := runLint(nil)
	require.NoError(t, err)
	assert.True(t, failed)

	report := readReport(t, dir)
	summary := report["summary"].(map[string]any)
	assert.EqualValues(t, 3, summary["files_analyzed"])
	cycles := report["cycles"].([]any)
	require.Len(t, cycles, 1)
	first := cycles[0].(map[string]any)
	assert.Equal(t, "src/a.ts -> src/b.ts -> src/a.ts", first["chain"])
}

func TestRunLintExplicitAcyclicPath(t *testing.T) {
	dir := setupProject(t, cyclicProject)

	failed, err := runLint([]string{filepath.Join("src", "c.ts")})
	require.NoError(t, err)
	assert.False(t, failed)
	assert.Empty(t, readReport(t, dir)["cycles"])
}

func TestRunLintFailOnNeverFromEnv(t *testing.T) {
	setupProject(t, cyclicProject)
	t.Setenv("MODCYCLE_FAILON", "never")

	failed, err := runLint(nil)
	require.NoError(t, err)
	assert.False(t, failed)
}

func TestRunLintBaseline(t *testing.T) {
	dir := setupProject(t, cyclicProject)

	createBaseline = true
	failed, err := runLint(nil)
	require.NoError(t, err)
	assert.False(t, failed)
	assert.FileExists(t, filepath.Join(dir, baseline.DefaultFileName))

	createBaseline = false
	useBaseline = true
	failed, err = runLint(nil)
	require.NoError(t, err)
	assert.False(t, failed)
	assert.EqualValues(t, 1, readReport(t, dir)["summary"].(map[string]any)["baselined"])
}

func TestRunLintInvalidConfig(t *testing.T) {
	files := map[string]string{
		"src/a.ts":         "export {};\n",
		".modcyclerc.json": `{"strategy": "rewrite"}`,
	}
	setupProject(t, files)

	_, err := runLint(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error loading configuration")
}

func TestVersionCommand(t *testing.T) {
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"version"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "modcycle "+Version+"\n", buf.String())
}

func TestRunInit(t *testing.T) {
	dir := setupProject(t, map[string]string{"package.json": "{}"})

	path, err := runInit(false)
	require.NoError(t, err)
	assert.Equal(t, ".modcyclerc.json", path)

	data, err := os.ReadFile(filepath.Join(dir, path))
	require.NoError(t, err)
	var saved map[string]any
	require.NoError(t, json.Unmarshal(data, &saved))
	assert.NotContains(t, saved, "root")
	assert.Equal(t, "auto", saved["strategy"])
	assert.EqualValues(t, 10, saved["maxDepth"])

	_, err = runInit(false)
	assert.Error(t, err, "existing file is kept without --force")

	viper.Reset()
	bindFlags(rootCmd.PersistentFlags())
	_, err = runInit(true)
	assert.NoError(t, err)
}
