package analyzer_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/store"
)

func newAnalyzer(t *testing.T, files map[string]string) *analyzer.Analyzer {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	return analyzer.New(store.New(fs), nil)
}

func TestAnalyzeFile_ParsesAndExportsSimpleTarget(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/w/BUILD.gn": `executable("foo") {
  sources = [ "a.cc" ]
}`,
	})
	f, err := an.AnalyzeFile("/w/BUILD.gn", time.Time{})
	require.NoError(t, err)

	_, ok := f.Exports.Targets["foo"]
	assert.True(t, ok)
	assert.Len(t, f.Outline, 1)
}

func TestAnalyzeFile_CachesUntilDocumentChanges(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/w/BUILD.gn": `x = 1`,
	})
	first, err := an.AnalyzeFile("/w/BUILD.gn", time.Unix(0, 0))
	require.NoError(t, err)

	second, err := an.AnalyzeFile("/w/BUILD.gn", time.Unix(1, 0))
	require.NoError(t, err)
	assert.Same(t, first, second, "an unchanged document must reuse the cached File")
}

func TestAnalyzeFile_RebuildsAfterInMemoryEdit(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/BUILD.gn", []byte(`x = 1`), 0o644))
	st := store.New(fs)
	an := analyzer.New(st, nil)

	first, err := an.AnalyzeFile("/w/BUILD.gn", time.Unix(0, 0))
	require.NoError(t, err)

	st.LoadToMemory("/w/BUILD.gn", []byte(`x = 2`), 1)

	second, err := an.AnalyzeFile("/w/BUILD.gn", time.Unix(1, 0))
	require.NoError(t, err)
	assert.NotSame(t, first, second)
}

func TestAnalyzeFile_NoDotGNUsesOwnDirectoryAsWorkspaceRoot(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/w/sub/BUILD.gn": `x = 1`,
	})
	f, err := an.AnalyzeFile("/w/sub/BUILD.gn", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "/w/sub", f.WorkspaceRoot)
}

func TestAnalyzeFile_DotGNEstablishesSharedWorkspaceRoot(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/w/.gn":          `buildconfig = "//BUILDCONFIG.gn"`,
		"/w/BUILDCONFIG.gn": `is_debug = true`,
		"/w/sub/BUILD.gn": `x = 1`,
	})
	f, err := an.AnalyzeFile("/w/sub/BUILD.gn", time.Time{})
	require.NoError(t, err)
	assert.Equal(t, "/w", f.WorkspaceRoot)
}

func TestAnalyzeAt_MergesBuildConfigImportsAndLocals(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/w/.gn":            `buildconfig = "//BUILDCONFIG.gn"`,
		"/w/BUILDCONFIG.gn": `from_config = true`,
		"/w/config.gni":     `from_import = true`,
		"/w/BUILD.gn": `import("//config.gni")
local_var = 1
`,
	})
	f, err := an.AnalyzeFile("/w/BUILD.gn", time.Time{})
	require.NoError(t, err)

	env, err := an.AnalyzeAt("/w/BUILD.gn", len(f.Document.Text), time.Time{})
	require.NoError(t, err)

	_, hasConfig := env.Variables["from_config"]
	_, hasImport := env.Variables["from_import"]
	_, hasLocal := env.Variables["local_var"]
	assert.True(t, hasConfig)
	assert.True(t, hasImport)
	assert.True(t, hasLocal)
}

func TestWorkspaces_ReportsEveryDiscoveredRoot(t *testing.T) {
	an := newAnalyzer(t, map[string]string{
		"/a/BUILD.gn": `x = 1`,
		"/b/BUILD.gn": `y = 1`,
	})
	_, err := an.AnalyzeFile("/a/BUILD.gn", time.Time{})
	require.NoError(t, err)
	_, err = an.AnalyzeFile("/b/BUILD.gn", time.Time{})
	require.NoError(t, err)

	assert.Len(t, an.Workspaces(), 2)
}

func TestCacheKey_VerifyMemoizesPerRequestTime(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/BUILD.gn", []byte(`x = 1`), 0o644))
	st := store.New(fs)
	an := analyzer.New(st, nil)

	now := time.Unix(0, 0)
	f, err := an.AnalyzeFile("/w/BUILD.gn", now)
	require.NoError(t, err)

	st.LoadToMemory("/w/BUILD.gn", []byte(`x = 2`), 1)

	assert.True(t, f.Key.Verify(now, st), "the same request_time must keep returning the memoized answer")
}
