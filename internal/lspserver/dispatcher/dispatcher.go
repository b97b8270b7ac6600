// Package dispatcher routes decoded JSON-RPC requests to the matching
// Server method. Grounded directly on the embedded YAML language
// server's internal/xpls/dispatcher package: a Server interface naming
// every supported method, a Dispatcher holding only a logger, and one big
// method-name switch in Dispatch that unmarshals params and calls
// through — generalized here from that server's small
// did-change/did-open/did-save/watched-files surface to the full set of
// methods this server answers.
package dispatcher

import (
	"context"
	"encoding/json"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/gnlang/gnls/internal/protocol"
)

const (
	errParseParameters = "failed to parse request parameters"
)

// Server defines every LSP method this language server answers.
type Server interface {
	Initialize(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.InitializeParams)
	Initialized(ctx context.Context)
	Shutdown(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID)

	DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams)
	DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams)
	DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams)
	DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams)

	Definition(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams)
	Hover(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams)
	DocumentLink(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentLinkParams)
	DocumentLinkResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, link *protocol.DocumentLink)
	DocumentSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentSymbolParams)
	Completion(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CompletionParams)
	References(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.ReferenceParams)
	Formatting(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentFormattingParams)
	WorkspaceSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.WorkspaceSymbolParams)
	CodeLens(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeLensParams)
	CodeLensResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, lens *protocol.CodeLens)
	CodeAction(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeActionParams)
}

// Dispatcher routes a decoded request to the Server method that answers it.
type Dispatcher struct {
	log logging.Logger
}

// New returns a new Dispatcher.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{log: logging.NewNopLogger()}
	for _, o := range opts {
		o(d)
	}
	return d
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger overrides the Dispatcher's logger.
func WithLogger(l logging.Logger) Option {
	return func(d *Dispatcher) { d.log = l }
}

// Dispatch decodes r.Params for r.Method and calls the matching server
// method. Malformed params are logged and dropped rather than panicking,
// except for initialize: a server that can't understand its own
// initialization parameters cannot usefully continue.
func (d *Dispatcher) Dispatch(ctx context.Context, server Server, conn *jsonrpc2.Conn, r *jsonrpc2.Request) { // nolint:gocyclo
	switch r.Method {
	case "initialize":
		var params protocol.InitializeParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			panic(err)
		}
		server.Initialize(ctx, conn, r.ID, &params)
	case "initialized":
		server.Initialized(ctx)
	case "shutdown":
		server.Shutdown(ctx, conn, r.ID)
	case "exit":
		return

	case "workspace/didChangeConfiguration":
		var params protocol.DidChangeConfigurationParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DidChangeConfiguration(ctx, &params)
	case "textDocument/didOpen":
		var params protocol.DidOpenTextDocumentParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DidOpen(ctx, &params)
	case "textDocument/didChange":
		var params protocol.DidChangeTextDocumentParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DidChange(ctx, &params)
	case "textDocument/didClose":
		var params protocol.DidCloseTextDocumentParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DidClose(ctx, &params)

	case "textDocument/definition":
		var params protocol.TextDocumentPositionParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.Definition(ctx, conn, r.ID, &params)
	case "textDocument/hover":
		var params protocol.TextDocumentPositionParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.Hover(ctx, conn, r.ID, &params)
	case "textDocument/documentLink":
		var params protocol.DocumentLinkParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DocumentLink(ctx, conn, r.ID, &params)
	case "documentLink/resolve":
		var link protocol.DocumentLink
		if err := json.Unmarshal(*r.Params, &link); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DocumentLinkResolve(ctx, conn, r.ID, &link)
	case "textDocument/documentSymbol":
		var params protocol.DocumentSymbolParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.DocumentSymbol(ctx, conn, r.ID, &params)
	case "textDocument/completion":
		var params protocol.CompletionParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.Completion(ctx, conn, r.ID, &params)
	case "textDocument/references":
		var params protocol.ReferenceParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.References(ctx, conn, r.ID, &params)
	case "textDocument/formatting":
		var params protocol.DocumentFormattingParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.Formatting(ctx, conn, r.ID, &params)
	case "workspace/symbol":
		var params protocol.WorkspaceSymbolParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.WorkspaceSymbol(ctx, conn, r.ID, &params)
	case "textDocument/codeLens":
		var params protocol.CodeLensParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.CodeLens(ctx, conn, r.ID, &params)
	case "codeLens/resolve":
		var lens protocol.CodeLens
		if err := json.Unmarshal(*r.Params, &lens); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.CodeLensResolve(ctx, conn, r.ID, &lens)
	case "textDocument/codeAction":
		var params protocol.CodeActionParams
		if err := json.Unmarshal(*r.Params, &params); err != nil {
			d.log.Debug(errParseParameters, "method", r.Method)
			return
		}
		server.CodeAction(ctx, conn, r.ID, &params)
	}
}
