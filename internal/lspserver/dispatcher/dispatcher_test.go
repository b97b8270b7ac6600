package dispatcher_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/sourcegraph/jsonrpc2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gnlang/gnls/internal/lspserver/dispatcher"
	"github.com/gnlang/gnls/internal/protocol"
)

// fakeServer records every call it receives so tests can assert Dispatch
// routed a request to the right method with the right decoded params.
type fakeServer struct {
	calls []string

	lastDidOpenURI  string
	lastDidChangeID int
	lastHoverPos    protocol.Position
}

func (f *fakeServer) Initialize(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.InitializeParams) {
	f.calls = append(f.calls, "initialize")
}
func (f *fakeServer) Initialized(ctx context.Context) { f.calls = append(f.calls, "initialized") }
func (f *fakeServer) Shutdown(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID) {
	f.calls = append(f.calls, "shutdown")
}
func (f *fakeServer) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) {
	f.calls = append(f.calls, "didChangeConfiguration")
}
func (f *fakeServer) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) {
	f.calls = append(f.calls, "didOpen")
	f.lastDidOpenURI = params.TextDocument.URI
}
func (f *fakeServer) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) {
	f.calls = append(f.calls, "didChange")
	f.lastDidChangeID = params.TextDocument.Version
}
func (f *fakeServer) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) {
	f.calls = append(f.calls, "didClose")
}
func (f *fakeServer) Definition(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams) {
	f.calls = append(f.calls, "definition")
}
func (f *fakeServer) Hover(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams) {
	f.calls = append(f.calls, "hover")
	f.lastHoverPos = params.Position
}
func (f *fakeServer) DocumentLink(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentLinkParams) {
	f.calls = append(f.calls, "documentLink")
}
func (f *fakeServer) DocumentLinkResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, link *protocol.DocumentLink) {
	f.calls = append(f.calls, "documentLinkResolve")
}
func (f *fakeServer) DocumentSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentSymbolParams) {
	f.calls = append(f.calls, "documentSymbol")
}
func (f *fakeServer) Completion(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CompletionParams) {
	f.calls = append(f.calls, "completion")
}
func (f *fakeServer) References(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.ReferenceParams) {
	f.calls = append(f.calls, "references")
}
func (f *fakeServer) Formatting(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentFormattingParams) {
	f.calls = append(f.calls, "formatting")
}
func (f *fakeServer) WorkspaceSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.WorkspaceSymbolParams) {
	f.calls = append(f.calls, "workspaceSymbol")
}
func (f *fakeServer) CodeLens(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeLensParams) {
	f.calls = append(f.calls, "codeLens")
}
func (f *fakeServer) CodeLensResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, lens *protocol.CodeLens) {
	f.calls = append(f.calls, "codeLensResolve")
}
func (f *fakeServer) CodeAction(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeActionParams) {
	f.calls = append(f.calls, "codeAction")
}

func request(t *testing.T, method string, params any) *jsonrpc2.Request {
	t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(t, err)
	rawMsg := json.RawMessage(raw)
	return &jsonrpc2.Request{Method: method, Params: &rawMsg}
}

func TestDispatch_RoutesNotificationsWithoutConnOrID(t *testing.T) {
	d := dispatcher.New()
	f := &fakeServer{}

	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/didOpen", protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{URI: "file:///w/BUILD.gn"},
	}))
	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/didChange", protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{Version: 7},
	}))
	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/didClose", protocol.DidCloseTextDocumentParams{}))
	d.Dispatch(context.Background(), f, nil, request(t, "workspace/didChangeConfiguration", protocol.DidChangeConfigurationParams{}))

	assert.Equal(t, []string{"didOpen", "didChange", "didClose", "didChangeConfiguration"}, f.calls)
	assert.Equal(t, "file:///w/BUILD.gn", f.lastDidOpenURI)
	assert.Equal(t, 7, f.lastDidChangeID)
}

func TestDispatch_RoutesRequestsAndDecodesParams(t *testing.T) {
	d := dispatcher.New()
	f := &fakeServer{}

	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/hover", protocol.TextDocumentPositionParams{
		Position: protocol.Position{Line: 3, Character: 9},
	}))
	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/definition", protocol.TextDocumentPositionParams{}))
	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/codeAction", protocol.CodeActionParams{}))

	assert.Equal(t, []string{"hover", "definition", "codeAction"}, f.calls)
	assert.Equal(t, protocol.Position{Line: 3, Character: 9}, f.lastHoverPos)
}

func TestDispatch_MalformedParamsAreDroppedNotPanicked(t *testing.T) {
	d := dispatcher.New()
	f := &fakeServer{}

	raw := json.RawMessage(`"not an object"`)
	assert.NotPanics(t, func() {
		d.Dispatch(context.Background(), f, nil, &jsonrpc2.Request{Method: "textDocument/didOpen", Params: &raw})
	})
	assert.Empty(t, f.calls)
}

func TestDispatch_UnknownMethodIsIgnored(t *testing.T) {
	d := dispatcher.New()
	f := &fakeServer{}
	d.Dispatch(context.Background(), f, nil, request(t, "textDocument/unknownMethod", map[string]any{}))
	assert.Empty(t, f.calls)
}

func TestDispatch_ExitReturnsWithoutCallingAnything(t *testing.T) {
	d := dispatcher.New()
	f := &fakeServer{}
	d.Dispatch(context.Background(), f, nil, &jsonrpc2.Request{Method: "exit"})
	assert.Empty(t, f.calls)
}
