// Package server implements the LSP method handlers: the glue between a
// decoded request and the analyzer/diagnostics/completion/symbols/
// codeaction packages that do the actual work.
//
// Grounded on the Server type of the embedded YAML language server's
// internal/xpls/server package — the conn *jsonrpc2.Conn + logging.Logger + functional-options
// New(opts...) shape, and the publishDiagnostics notification helper — now
// generalized from "validate a Crossplane package" to "analyze a GN
// workspace" and expanded with the request/response methods (hover,
// completion, references, ...) that embedded server never needed.
package server

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sort"
	"sync"
	"time"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/sourcegraph/jsonrpc2"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/codeaction"
	"github.com/gnlang/gnls/internal/completion"
	"github.com/gnlang/gnls/internal/config"
	"github.com/gnlang/gnls/internal/diagnostics"
	"github.com/gnlang/gnls/internal/indexing"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/store"
	"github.com/gnlang/gnls/internal/symbols"
	"github.com/gnlang/gnls/internal/uri"
)

const (
	errPublishDiagnostics = "failed to publish diagnostics"
)

// Server holds the per-connection state: the conn used to reply/notify,
// the document store every request reads through, the analyzer registry,
// and the live configuration an editor can update at any time.
type Server struct {
	conn *jsonrpc2.Conn
	log  logging.Logger

	st  *store.Store
	an  *analyzer.Analyzer
	cfg *config.Config

	mu       sync.Mutex
	barriers map[string]*indexing.Barrier
}

// New returns a new Server backed by st.
func New(st *store.Store, opts ...Option) *Server {
	s := &Server{
		log:      logging.NewNopLogger(),
		st:       st,
		cfg:      config.Default(),
		barriers: make(map[string]*indexing.Barrier),
	}
	for _, o := range opts {
		o(s)
	}
	s.an = analyzer.New(st, s.log)
	return s
}

// Option configures a Server.
type Option func(*Server)

// WithLogger overrides the Server's logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Server) { s.log = l }
}

// Initialize handles the initialize request. It does not pin the server to
// a single workspace root, since this engine derives a workspace root per
// file from its nearest ancestor .gn; the reply only needs to advertise
// the capabilities this server supports.
func (s *Server) Initialize(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.InitializeParams) {
	s.conn = conn

	result := &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync:           1, // full-document sync
			HoverProvider:              true,
			DefinitionProvider:         true,
			ReferencesProvider:         true,
			DocumentSymbolProvider:     true,
			WorkspaceSymbolProvider:    true,
			DocumentLinkProvider:       &protocol.DocumentLinkOptions{ResolveProvider: true},
			CodeLensProvider:           &protocol.CodeLensOptions{ResolveProvider: true},
			CodeActionProvider:         true,
			DocumentFormattingProvider: true,
			CompletionProvider:         &protocol.CompletionOptions{},
		},
	}
	if err := conn.Reply(ctx, id, result); err != nil {
		s.log.Info("failed to reply to initialize", "error", err)
	}
}

// Initialized handles the initialized notification. Nothing to do: this
// server has no client-registered-capability handshake to perform.
func (s *Server) Initialized(ctx context.Context) {}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID) {
	if err := conn.Reply(ctx, id, nil); err != nil {
		s.log.Info("failed to reply to shutdown", "error", err)
	}
}

// DidChangeConfiguration merges incoming settings into the live Config.
func (s *Server) DidChangeConfiguration(ctx context.Context, params *protocol.DidChangeConfigurationParams) {
	raw, ok := params.Settings.(map[string]any)
	if !ok {
		return
	}
	if nested, ok := raw["gn"].(map[string]any); ok {
		raw = nested
	}
	s.mu.Lock()
	config.ApplyJSON(s.cfg, raw)
	s.mu.Unlock()
}

func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) {
	path := uri.Path(params.TextDocument.URI)
	s.st.LoadToMemory(path, []byte(params.TextDocument.Text), params.TextDocument.Version)
	s.ensureIndexed(path)
	s.publishFor(ctx, path)
}

func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) {
	path := uri.Path(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return
	}
	// Text-sync FULL: the last change event carries the complete document.
	text := params.ContentChanges[len(params.ContentChanges)-1].Text
	s.st.LoadToMemory(path, []byte(text), params.TextDocument.Version)
	s.publishFor(ctx, path)
}

func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) {
	s.st.UnloadFromMemory(uri.Path(params.TextDocument.URI))
}

func (s *Server) ensureIndexed(path string) {
	ws, err := s.an.WorkspaceFor(path)
	if err != nil {
		return
	}
	root := ws.Context().Root

	s.mu.Lock()
	_, started := s.barriers[root]
	cfg := *s.cfg
	s.mu.Unlock()
	if started || !cfg.BackgroundIndexing {
		return
	}

	barrier := indexing.Build(context.Background(), s.st.Fs(), ws, cfg.ParallelIndexing, s.log)
	s.mu.Lock()
	s.barriers[root] = barrier
	s.mu.Unlock()
}

func (s *Server) waitIndexed(ctx context.Context, path string) {
	ws, err := s.an.WorkspaceFor(path)
	if err != nil {
		return
	}
	s.mu.Lock()
	barrier, ok := s.barriers[ws.Context().Root]
	s.mu.Unlock()
	if ok {
		_ = barrier.Wait(ctx)
	}
}

func (s *Server) publishFor(ctx context.Context, path string) {
	now := time.Now()
	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.log.Debug("failed to analyze file", "path", path, "error", err)
		return
	}

	s.mu.Lock()
	reportErrors := s.cfg.ErrorReporting
	s.mu.Unlock()
	if !reportErrors {
		return
	}

	diags := diagnostics.CollectUndefined(file, s.an, now)
	s.publishDiagnostics(ctx, path, diags)
}

func (s *Server) publishDiagnostics(ctx context.Context, path string, diags []protocol.Diagnostic) {
	if s.conn == nil {
		return
	}
	params := &protocol.PublishDiagnosticsParams{URI: uri.FromPath(path), Diagnostics: diags}
	if err := s.conn.Notify(ctx, "textDocument/publishDiagnostics", params); err != nil {
		s.log.Debug(errPublishDiagnostics, "error", err)
	}
}

// Hover handles textDocument/hover.
func (s *Server) Hover(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams) {
	path := uri.Path(params.TextDocument.URI)
	now := time.Now()

	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.reply(ctx, conn, id, nil)
		return
	}
	offset := file.LineIndex.Offset(params.Position)

	env, err := s.an.AnalyzeAt(path, offset, now)
	if err != nil {
		s.reply(ctx, conn, id, nil)
		return
	}
	hover, ok := completion.Hover(file.AST, env, offset)
	if !ok {
		s.reply(ctx, conn, id, nil)
		return
	}
	s.reply(ctx, conn, id, hover)
}

// Definition handles textDocument/definition.
func (s *Server) Definition(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.TextDocumentPositionParams) {
	path := uri.Path(params.TextDocument.URI)
	now := time.Now()

	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}
	offset := file.LineIndex.Offset(params.Position)

	ident := completion.IdentifierAt(file.AST, offset)
	if ident == nil {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}

	env, err := s.an.AnalyzeAt(path, offset, now)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}

	var locs []protocol.Location
	if v, ok := env.Variables[ident.Name]; ok {
		for _, a := range v.Assignments {
			locs = append(locs, protocol.Location{
				URI:   uri.FromPath(path),
				Range: protocol.Range{Start: file.LineIndex.Position(a.NameSpan.Start), End: file.LineIndex.Position(a.NameSpan.End)},
			})
		}
	}
	if t, ok := env.Templates[ident.Name]; ok {
		sp := t.Node.Span()
		locs = append(locs, protocol.Location{
			URI:   uri.FromPath(path),
			Range: protocol.Range{Start: file.LineIndex.Position(sp.Start), End: file.LineIndex.Position(sp.End)},
		})
	}
	s.reply(ctx, conn, id, locs)
}

// DocumentSymbol handles textDocument/documentSymbol.
func (s *Server) DocumentSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentSymbolParams) {
	path := uri.Path(params.TextDocument.URI)
	file, err := s.an.AnalyzeFile(path, time.Now())
	if err != nil {
		s.reply(ctx, conn, id, []protocol.DocumentSymbol{})
		return
	}
	s.reply(ctx, conn, id, file.Outline)
}

// WorkspaceSymbol handles workspace/symbol.
func (s *Server) WorkspaceSymbol(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.WorkspaceSymbolParams) {
	var out []protocol.SymbolInformation
	for _, ws := range s.an.Workspaces() {
		out = append(out, symbols.WorkspaceSymbols(ws, params.Query)...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	s.reply(ctx, conn, id, out)
}

// Completion handles textDocument/completion.
func (s *Server) Completion(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CompletionParams) {
	path := uri.Path(params.TextDocument.URI)
	now := time.Now()

	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.reply(ctx, conn, id, &protocol.CompletionList{})
		return
	}
	offset := file.LineIndex.Offset(params.Position)

	env, err := s.an.AnalyzeAt(path, offset, now)
	if err != nil {
		s.reply(ctx, conn, id, &protocol.CompletionList{})
		return
	}
	s.reply(ctx, conn, id, &protocol.CompletionList{Items: completion.Items(env)})
}

// References handles textDocument/references: the only reference kind this
// server resolves is a target declaration's back-references.
func (s *Server) References(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.ReferenceParams) {
	path := uri.Path(params.TextDocument.URI)
	now := time.Now()

	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}
	ws, err := s.an.WorkspaceFor(path)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}
	s.waitIndexed(ctx, path)

	offset := file.LineIndex.Offset(params.Position)
	var name string
	for _, t := range file.Analyzed.Targets() {
		if t.Node.Span().ContainsInclusive(offset) {
			name, _ = t.SimpleName()
			break
		}
	}
	if name == "" {
		s.reply(ctx, conn, id, []protocol.Location{})
		return
	}

	locs := symbols.TargetReferences(ws, file, name)
	if params.Context.IncludeDeclaration {
		for _, t := range file.Analyzed.Targets() {
			if n, _ := t.SimpleName(); n == name {
				sp := t.Node.Span()
				locs = append(locs, protocol.Location{
					URI:   uri.FromPath(path),
					Range: protocol.Range{Start: file.LineIndex.Position(sp.Start), End: file.LineIndex.Position(sp.End)},
				})
			}
		}
	}
	s.reply(ctx, conn, id, locs)
}

// DocumentLink handles textDocument/documentLink: every outgoing link in
// this file becomes an unresolved link carrying the data documentLink/resolve
// needs to compute its precise target.
func (s *Server) DocumentLink(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentLinkParams) {
	path := uri.Path(params.TextDocument.URI)
	file, err := s.an.AnalyzeFile(path, time.Now())
	if err != nil {
		s.reply(ctx, conn, id, []protocol.DocumentLink{})
		return
	}

	var out []protocol.DocumentLink
	for destPath, links := range file.Links {
		for _, link := range links {
			out = append(out, protocol.DocumentLink{
				Range: protocol.Range{Start: file.LineIndex.Position(link.Span.Start), End: file.LineIndex.Position(link.Span.End)},
				Data:  linkData{Path: destPath, Name: link.Name},
			})
		}
	}
	s.reply(ctx, conn, id, out)
}

type linkData struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// DocumentLinkResolve handles documentLink/resolve: it analyzes the link's
// destination file to find the exact span a Target link points at (a File
// link has no finer destination than the file itself).
func (s *Server) DocumentLinkResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, link *protocol.DocumentLink) {
	data, ok := link.Data.(map[string]any)
	if !ok {
		s.reply(ctx, conn, id, link)
		return
	}
	destPath, _ := data["path"].(string)
	name, _ := data["name"].(string)

	target := uri.FromPath(destPath)
	if name != "" {
		if destFile, err := s.an.AnalyzeFile(destPath, time.Now()); err == nil {
			for _, t := range destFile.Analyzed.Targets() {
				if n, _ := t.SimpleName(); n == name {
					sp := t.Node.Span()
					start := destFile.LineIndex.Position(sp.Start)
					target = fmt.Sprintf("%s#L%d,%d", target, start.Line+1, start.Character+1)
					break
				}
			}
		}
	}
	link.Target = &target
	s.reply(ctx, conn, id, link)
}

// CodeAction handles textDocument/codeAction.
func (s *Server) CodeAction(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeActionParams) {
	path := uri.Path(params.TextDocument.URI)
	now := time.Now()

	file, err := s.an.AnalyzeFile(path, now)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.CodeAction{})
		return
	}
	ws, err := s.an.WorkspaceFor(path)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.CodeAction{})
		return
	}

	var out []protocol.CodeAction
	for _, diag := range params.Context.Diagnostics {
		out = append(out, codeaction.QuickFixesForUndefined(ws, file, diag)...)
	}
	s.reply(ctx, conn, id, out)
}

// CodeLens handles textDocument/codeLens: one lens per target declaration,
// showing its back-reference count and carrying the arguments
// gn.showTargetReferences needs to list them.
func (s *Server) CodeLens(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.CodeLensParams) {
	s.mu.Lock()
	enabled := s.cfg.TargetLens
	s.mu.Unlock()
	if !enabled {
		s.reply(ctx, conn, id, []protocol.CodeLens{})
		return
	}

	path := uri.Path(params.TextDocument.URI)
	file, err := s.an.AnalyzeFile(path, time.Now())
	if err != nil {
		s.reply(ctx, conn, id, []protocol.CodeLens{})
		return
	}

	var out []protocol.CodeLens
	for _, t := range file.Analyzed.Targets() {
		name, ok := t.SimpleName()
		if !ok {
			continue
		}
		sp := t.Node.Span()
		out = append(out, protocol.CodeLens{
			Range: protocol.Range{Start: file.LineIndex.Position(sp.Start), End: file.LineIndex.Position(sp.Start)},
			Data:  codeLensData{Path: path, Name: name},
		})
	}
	s.reply(ctx, conn, id, out)
}

type codeLensData struct {
	Path string `json:"path"`
	Name string `json:"name"`
}

// CodeLensResolve handles codeLens/resolve: it counts the target's
// back-references (requiring the workspace indexing barrier to have
// opened, since this is a whole-workspace query) and fills in the lens's
// title and gn.showTargetReferences command.
func (s *Server) CodeLensResolve(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, lens *protocol.CodeLens) {
	data, ok := lens.Data.(map[string]any)
	if !ok {
		s.reply(ctx, conn, id, lens)
		return
	}
	path, _ := data["path"].(string)
	name, _ := data["name"].(string)

	file, err := s.an.AnalyzeFile(path, time.Now())
	if err != nil {
		s.reply(ctx, conn, id, lens)
		return
	}
	ws, err := s.an.WorkspaceFor(path)
	if err != nil {
		s.reply(ctx, conn, id, lens)
		return
	}
	s.waitIndexed(ctx, path)

	locs := symbols.TargetReferences(ws, file, name)
	args := []any{lens.Range.Start, locs}
	lens.Command = &protocol.Command{
		Title:     fmt.Sprintf("%d references", len(locs)),
		Command:   "gn.showTargetReferences",
		Arguments: args,
	}
	s.reply(ctx, conn, id, lens)
}

// Formatting handles textDocument/formatting by shelling out to the
// configured external formatter binary — this engine's core analysis
// layer has no GN pretty-printer of its own, deferring to a configured
// external binaryPath instead.
func (s *Server) Formatting(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, params *protocol.DocumentFormattingParams) {
	s.mu.Lock()
	binary := s.cfg.BinaryPath
	s.mu.Unlock()
	if binary == "" {
		s.reply(ctx, conn, id, []protocol.TextEdit{})
		return
	}

	path := uri.Path(params.TextDocument.URI)
	doc, err := s.st.Read(path)
	if err != nil {
		s.reply(ctx, conn, id, []protocol.TextEdit{})
		return
	}

	cmd := exec.CommandContext(ctx, binary, "format", "--stdin", "--stdin-name", path)
	cmd.Stdin = bytes.NewReader(doc.Text)
	out, err := cmd.Output()
	if err != nil {
		s.log.Debug("external formatter failed", "binary", binary, "error", err)
		s.reply(ctx, conn, id, []protocol.TextEdit{})
		return
	}

	lines := countLines(doc.Text)
	edit := protocol.TextEdit{
		Range:   protocol.Range{Start: protocol.Position{Line: 0, Character: 0}, End: protocol.Position{Line: lines, Character: 0}},
		NewText: string(out),
	}
	s.reply(ctx, conn, id, []protocol.TextEdit{edit})
}

func countLines(text []byte) int {
	n := 0
	for _, b := range text {
		if b == '\n' {
			n++
		}
	}
	return n + 1
}

func (s *Server) reply(ctx context.Context, conn *jsonrpc2.Conn, id jsonrpc2.ID, result any) {
	if err := conn.Reply(ctx, id, result); err != nil {
		s.log.Info("failed to reply", "error", err)
	}
}
