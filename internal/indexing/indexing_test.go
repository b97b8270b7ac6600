package indexing_test

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/indexing"
	"github.com/gnlang/gnls/internal/store"
)

func TestBarrier_CheckReflectsCloseState(t *testing.T) {
	b := indexing.NewBarrier()
	assert.False(t, b.Check())
	b.Close()
	assert.True(t, b.Check())
}

func TestBarrier_CloseIsIdempotent(t *testing.T) {
	b := indexing.NewBarrier()
	b.Close()
	b.Close()
	assert.True(t, b.Check())
}

func TestBarrier_WaitBlocksUntilClosed(t *testing.T) {
	b := indexing.NewBarrier()
	done := make(chan struct{})
	go func() {
		_ = b.Wait(context.Background())
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("Wait returned before Close")
	case <-time.After(20 * time.Millisecond):
	}

	b.Close()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after Close")
	}
}

func TestBarrier_WaitRespectsContextCancellation(t *testing.T) {
	b := indexing.NewBarrier()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := b.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuild_IndexesEveryScannableFileAndClosesBarrier(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/.gn", []byte(`buildconfig = "//BUILDCONFIG.gn"`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/BUILD.gn", []byte(`executable("foo") {}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/sub/BUILD.gn", []byte(`executable("bar") {}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/config.gni", []byte(`x = 1`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/readme.txt", []byte(`not gn`), 0o644))

	st := store.New(fs)
	an := analyzer.New(st, nil)
	ws, err := an.WorkspaceFor("/w/BUILD.gn")
	require.NoError(t, err)

	barrier := indexing.Build(context.Background(), fs, ws, true, nil)
	require.NoError(t, barrier.Wait(context.Background()))

	files := ws.CachedFilesForSymbols()
	paths := make(map[string]bool)
	for _, f := range files {
		paths[f.Path] = true
	}
	assert.True(t, paths["/w/BUILD.gn"])
	assert.True(t, paths["/w/sub/BUILD.gn"])
	assert.True(t, paths["/w/config.gni"])
	assert.False(t, paths["/w/readme.txt"])
}

func TestBuild_PrunesDotDirectoriesAndBuildOutputDirs(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/.gn", []byte(`buildconfig = "//BUILDCONFIG.gn"`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/BUILD.gn", []byte(`executable("foo") {}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/.git/BUILD.gn", []byte(`executable("ignored") {}`), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/out/args.gn", []byte(``), 0o644))
	require.NoError(t, afero.WriteFile(fs, "/w/out/BUILD.gn", []byte(`executable("also_ignored") {}`), 0o644))

	st := store.New(fs)
	an := analyzer.New(st, nil)
	ws, err := an.WorkspaceFor("/w/BUILD.gn")
	require.NoError(t, err)

	barrier := indexing.Build(context.Background(), fs, ws, false, nil)
	require.NoError(t, barrier.Wait(context.Background()))

	files := ws.CachedFilesForSymbols()
	paths := make(map[string]bool)
	for _, f := range files {
		paths[f.Path] = true
	}
	assert.True(t, paths["/w/BUILD.gn"])
	assert.False(t, paths["/w/.git/BUILD.gn"])
	assert.False(t, paths["/w/out/BUILD.gn"])
}
