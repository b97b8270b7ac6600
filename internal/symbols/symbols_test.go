package symbols_test

import (
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/store"
	"github.com/gnlang/gnls/internal/symbols"
)

func setup(t *testing.T, files map[string]string) (*analyzer.Analyzer, *analyzer.WorkspaceAnalyzer) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
	}
	an := analyzer.New(store.New(fs), nil)
	for path := range files {
		_, err := an.AnalyzeFile(path, time.Time{})
		require.NoError(t, err)
	}
	ws, err := an.WorkspaceFor(anyPath(files))
	require.NoError(t, err)
	return an, ws
}

func anyPath(files map[string]string) string {
	for p := range files {
		return p
	}
	return ""
}

func TestWorkspaceSymbols_SubstringMatchIsCaseInsensitive(t *testing.T) {
	_, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("unit_tests") {
}
executable("app") {
}`,
	})

	results := symbols.WorkspaceSymbols(ws, "TEST")
	require.Len(t, results, 1)
	assert.Equal(t, "unit_tests", results[0].Name)
}

func TestWorkspaceSymbols_EmptyQueryMatchesEverything(t *testing.T) {
	_, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("a") {
}
template("my_tmpl") {
}`,
	})

	results := symbols.WorkspaceSymbols(ws, "")
	assert.Len(t, results, 2)
}

func TestWorkspaceSymbols_SortedByNameThenURI(t *testing.T) {
	_, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("zeta") {
}
executable("alpha") {
}`,
	})

	results := symbols.WorkspaceSymbols(ws, "")
	require.Len(t, results, 2)
	assert.Equal(t, "alpha", results[0].Name)
	assert.Equal(t, "zeta", results[1].Name)
}

func TestTargetReferences_FindsExplicitLabelReference(t *testing.T) {
	an, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("foo") {
}
executable("bar") {
  deps = [ ":foo" ]
}`,
	})

	defining, err := an.AnalyzeFile("/w/BUILD.gn", time.Time{})
	require.NoError(t, err)

	refs := symbols.TargetReferences(ws, defining, "foo")
	require.Len(t, refs, 1)
}

func TestTargetReferences_CrossFileReference(t *testing.T) {
	an, ws := setup(t, map[string]string{
		"/w/.gn":          `buildconfig = "//BUILDCONFIG.gn"`,
		"/w/lib/BUILD.gn": `source_set("lib") {
}`,
		"/w/app/BUILD.gn": `executable("app") {
  deps = [ "//lib:lib" ]
}`,
	})

	defining, err := an.AnalyzeFile("/w/lib/BUILD.gn", time.Time{})
	require.NoError(t, err)

	refs := symbols.TargetReferences(ws, defining, "lib")
	require.Len(t, refs, 1)
}

func TestTargetReferences_DoesNotLoseMatchesToALongerSiblingName(t *testing.T) {
	an, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("foo") {
}
executable("foo_tests") {
}
executable("bar") {
  deps = [ ":foo", ":foo_tests" ]
}`,
	})

	defining, err := an.AnalyzeFile("/w/BUILD.gn", time.Time{})
	require.NoError(t, err)

	refs := symbols.TargetReferences(ws, defining, "foo")
	require.Len(t, refs, 1, "the :foo reference must survive the presence of a foo_tests sibling")

	testRefs := symbols.TargetReferences(ws, defining, "foo_tests")
	require.Len(t, testRefs, 1)
}

func TestTargetReferences_NoMatchReturnsEmpty(t *testing.T) {
	an, ws := setup(t, map[string]string{
		"/w/BUILD.gn": `executable("foo") {
}`,
	})

	defining, err := an.AnalyzeFile("/w/BUILD.gn", time.Time{})
	require.NoError(t, err)

	refs := symbols.TargetReferences(ws, defining, "nonexistent")
	assert.Empty(t, refs)
}
