package server

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/store"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	return New(store.New(afero.NewMemMapFs()))
}

func TestNew_AppliesDefaultConfig(t *testing.T) {
	s := newTestServer(t)
	assert.True(t, s.cfg.BackgroundIndexing)
	assert.True(t, s.cfg.ErrorReporting)
}

func TestDidOpen_LoadsDocumentIntoStore(t *testing.T) {
	s := newTestServer(t)
	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///w/BUILD.gn", Text: "x = 1", Version: 1},
	})

	doc, err := s.st.Read("/w/BUILD.gn")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(doc.Text))
}

func TestDidOpen_StartsBackgroundIndexingOnce(t *testing.T) {
	s := newTestServer(t)
	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///w/BUILD.gn", Text: "x = 1", Version: 1},
	})

	s.mu.Lock()
	n := len(s.barriers)
	s.mu.Unlock()
	require.Equal(t, 1, n)

	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///w/BUILD.gn", Text: "x = 2", Version: 2},
	})
	s.mu.Lock()
	n = len(s.barriers)
	s.mu.Unlock()
	assert.Equal(t, 1, n, "a second DidOpen for the same workspace must not start a second indexing pass")
}

func TestDidChange_UpdatesStoreWithLastContentChange(t *testing.T) {
	s := newTestServer(t)
	uriStr := "file:///w/BUILD.gn"
	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uriStr, Text: "x = 1", Version: 1},
	})
	s.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{URI: uriStr, Version: 2},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: "stale"},
			{Text: "x = 2"},
		},
	})

	doc, err := s.st.Read("/w/BUILD.gn")
	require.NoError(t, err)
	assert.Equal(t, "x = 2", string(doc.Text))
}

func TestDidChange_NoContentChangesIsNoop(t *testing.T) {
	s := newTestServer(t)
	uriStr := "file:///w/BUILD.gn"
	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uriStr, Text: "x = 1", Version: 1},
	})
	s.DidChange(context.Background(), &protocol.DidChangeTextDocumentParams{
		TextDocument:   protocol.VersionedTextDocumentIdentifier{URI: uriStr, Version: 2},
		ContentChanges: nil,
	})

	doc, err := s.st.Read("/w/BUILD.gn")
	require.NoError(t, err)
	assert.Equal(t, "x = 1", string(doc.Text))
}

func TestDidClose_UnloadsFromMemoryFallingBackToDisk(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/w/BUILD.gn", []byte("on_disk = 1"), 0o644))
	s := New(store.New(fs))

	uriStr := "file:///w/BUILD.gn"
	s.DidOpen(context.Background(), &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: uriStr, Text: "in_memory = 1", Version: 1},
	})
	s.DidClose(context.Background(), &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: uriStr},
	})

	doc, err := s.st.Read("/w/BUILD.gn")
	require.NoError(t, err)
	assert.Equal(t, "on_disk = 1", string(doc.Text))
}

func TestDidChangeConfiguration_MergesTopLevelSettings(t *testing.T) {
	s := newTestServer(t)
	s.DidChangeConfiguration(context.Background(), &protocol.DidChangeConfigurationParams{
		Settings: map[string]any{"backgroundIndexing": false},
	})
	assert.False(t, s.cfg.BackgroundIndexing)
}

func TestDidChangeConfiguration_UnwrapsNestedGNKey(t *testing.T) {
	s := newTestServer(t)
	s.DidChangeConfiguration(context.Background(), &protocol.DidChangeConfigurationParams{
		Settings: map[string]any{
			"gn": map[string]any{"targetLens": false},
		},
	})
	assert.False(t, s.cfg.TargetLens)
}

func TestDidChangeConfiguration_IgnoresNonObjectSettings(t *testing.T) {
	s := newTestServer(t)
	s.DidChangeConfiguration(context.Background(), &protocol.DidChangeConfigurationParams{Settings: "not an object"})
	assert.True(t, s.cfg.BackgroundIndexing, "unparseable settings must leave the config untouched")
}

func TestPublishFor_NoopsWithoutAnAttachedConnection(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, afero.WriteFile(s.st.Fs(), "/w/BUILD.gn", []byte("x = undefined_var"), 0o644))

	// No conn was ever attached (Initialize never ran), so publishFor must
	// return without panicking on a nil conn.
	s.publishFor(context.Background(), "/w/BUILD.gn")
}

func TestEnsureIndexed_SkipsWhenBackgroundIndexingDisabled(t *testing.T) {
	s := newTestServer(t)
	s.mu.Lock()
	s.cfg.BackgroundIndexing = false
	s.mu.Unlock()
	require.NoError(t, afero.WriteFile(s.st.Fs(), "/w/BUILD.gn", []byte("x = 1"), 0o644))

	s.ensureIndexed("/w/BUILD.gn")
	s.mu.Lock()
	n := len(s.barriers)
	s.mu.Unlock()
	assert.Zero(t, n)
}

func TestWaitIndexed_ReturnsImmediatelyWhenNoBarrierStarted(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, afero.WriteFile(s.st.Fs(), "/w/BUILD.gn", []byte("x = 1"), 0o644))

	done := make(chan struct{})
	go func() {
		s.waitIndexed(context.Background(), "/w/BUILD.gn")
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("waitIndexed blocked with no barrier registered")
	}
}

func TestCountLines(t *testing.T) {
	assert.Equal(t, 1, countLines([]byte("no newline")))
	assert.Equal(t, 2, countLines([]byte("one\ntwo")))
	assert.Equal(t, 3, countLines([]byte("one\ntwo\n")))
}
