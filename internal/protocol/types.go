// Package protocol defines the subset of the Language Server Protocol 3.17
// wire types this server's handlers speak. sourcegraph/go-lsp (the type
// package the retrieval pack's embedded Crossplane language server builds on)
// predates CodeAction/CodeLens/DocumentLink/WorkspaceEdit, so rather than
// bolt those onto a stale dependency this package hand-writes the needed
// surface as plain structs with json tags — the same shape that carrion-lsp's
// internal/protocol/lsp_types.go uses for the same reason. Wire framing and
// dispatch still come from github.com/sourcegraph/jsonrpc2; only the
// payload shapes live here.
package protocol

// Position is a zero-based line/character pair, UTF-16 code units per the
// LSP spec (this server stores document text as UTF-8 bytes internally and
// converts at the boundary; see internal/lineindex).
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

type Location struct {
	URI   string `json:"uri"`
	Range Range  `json:"range"`
}

type TextEdit struct {
	Range   Range  `json:"range"`
	NewText string `json:"newText"`
}

type TextDocumentIdentifier struct {
	URI string `json:"uri"`
}

type VersionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type TextDocumentEdit struct {
	TextDocument VersionedTextDocumentIdentifier `json:"textDocument"`
	Edits        []TextEdit                      `json:"edits"`
}

type WorkspaceEdit struct {
	Changes map[string][]TextEdit `json:"changes,omitempty"`
}

type DiagnosticSeverity int

const (
	SeverityError       DiagnosticSeverity = 1
	SeverityWarning     DiagnosticSeverity = 2
	SeverityInformation DiagnosticSeverity = 3
	SeverityHint        DiagnosticSeverity = 4
)

type Diagnostic struct {
	Range    Range              `json:"range"`
	Severity DiagnosticSeverity `json:"severity,omitempty"`
	Code     string             `json:"code,omitempty"`
	Source   string             `json:"source,omitempty"`
	Message  string             `json:"message"`
	Data     any                `json:"data,omitempty"`
}

type PublishDiagnosticsParams struct {
	URI         string       `json:"uri"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type TextDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type DidOpenTextDocumentParams struct {
	TextDocument TextDocumentItem `json:"textDocument"`
}

type TextDocumentContentChangeEvent struct {
	Range *Range `json:"range,omitempty"`
	Text  string `json:"text"`
}

type DidChangeTextDocumentParams struct {
	TextDocument   VersionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []TextDocumentContentChangeEvent `json:"contentChanges"`
}

type DidCloseTextDocumentParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type TextDocumentPositionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Position     Position               `json:"position"`
}

type ReferenceContext struct {
	IncludeDeclaration bool `json:"includeDeclaration"`
}

type ReferenceParams struct {
	TextDocumentPositionParams
	Context ReferenceContext `json:"context"`
}

type DocumentSymbolParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type SymbolKind int

const (
	SymbolKindVariable SymbolKind = 13
	SymbolKindFunction SymbolKind = 12
	SymbolKindModule   SymbolKind = 2
	SymbolKindClass    SymbolKind = 5
)

// DocumentSymbol is the hierarchical outline shape; a file's outline is a
// flat list of these (targets and templates do not nest into each other in
// GN, so one level suffices).
type DocumentSymbol struct {
	Name           string           `json:"name"`
	Detail         string           `json:"detail,omitempty"`
	Kind           SymbolKind       `json:"kind"`
	Range          Range            `json:"range"`
	SelectionRange Range            `json:"selectionRange"`
	Children       []DocumentSymbol `json:"children,omitempty"`
}

type SymbolInformation struct {
	Name     string     `json:"name"`
	Kind     SymbolKind `json:"kind"`
	Location Location   `json:"location"`
}

type WorkspaceSymbolParams struct {
	Query string `json:"query"`
}

type MarkupContent struct {
	Kind  string `json:"kind"` // "plaintext" or "markdown"
	Value string `json:"value"`
}

type Hover struct {
	Contents MarkupContent `json:"contents"`
	Range    *Range        `json:"range,omitempty"`
}

type CompletionItemKind int

const (
	CompletionItemKindVariable CompletionItemKind = 6
	CompletionItemKindFunction CompletionItemKind = 3
	CompletionItemKindKeyword  CompletionItemKind = 14
	CompletionItemKindModule   CompletionItemKind = 9
)

type CompletionItem struct {
	Label         string             `json:"label"`
	Kind          CompletionItemKind `json:"kind,omitempty"`
	Detail        string             `json:"detail,omitempty"`
	Documentation *MarkupContent     `json:"documentation,omitempty"`
	InsertText    string             `json:"insertText,omitempty"`
}

type CompletionList struct {
	IsIncomplete bool             `json:"isIncomplete"`
	Items        []CompletionItem `json:"items"`
}

type CompletionParams struct {
	TextDocumentPositionParams
}

type DocumentLink struct {
	Range  Range   `json:"range"`
	Target *string `json:"target,omitempty"`
	Data   any     `json:"data,omitempty"`
}

type DocumentLinkParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type CodeLens struct {
	Range   Range    `json:"range"`
	Command *Command `json:"command,omitempty"`
	Data    any      `json:"data,omitempty"`
}

type CodeLensParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type Command struct {
	Title     string `json:"title"`
	Command   string `json:"command"`
	Arguments []any  `json:"arguments,omitempty"`
}

type CodeActionKind string

const (
	CodeActionQuickFix CodeActionKind = "quickfix"
)

type CodeActionContext struct {
	Diagnostics []Diagnostic `json:"diagnostics"`
}

type CodeActionParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
	Range        Range                  `json:"range"`
	Context      CodeActionContext      `json:"context"`
}

type CodeAction struct {
	Title       string          `json:"title"`
	Kind        CodeActionKind  `json:"kind,omitempty"`
	Diagnostics []Diagnostic    `json:"diagnostics,omitempty"`
	Edit        *WorkspaceEdit  `json:"edit,omitempty"`
	Command     *Command        `json:"command,omitempty"`
	IsPreferred bool            `json:"isPreferred,omitempty"`
}

type DocumentFormattingParams struct {
	TextDocument TextDocumentIdentifier `json:"textDocument"`
}

type DidChangeConfigurationParams struct {
	Settings any `json:"settings"`
}

type InitializeParams struct {
	RootURI      *string `json:"rootUri,omitempty"`
	RootPath     *string `json:"rootPath,omitempty"`
	Capabilities any     `json:"capabilities"`
}

type ServerCapabilities struct {
	TextDocumentSync           int                  `json:"textDocumentSync"`
	HoverProvider              bool                 `json:"hoverProvider"`
	DefinitionProvider         bool                 `json:"definitionProvider"`
	ReferencesProvider         bool                 `json:"referencesProvider"`
	DocumentSymbolProvider     bool                 `json:"documentSymbolProvider"`
	WorkspaceSymbolProvider    bool                 `json:"workspaceSymbolProvider"`
	DocumentLinkProvider       *DocumentLinkOptions `json:"documentLinkProvider,omitempty"`
	CodeLensProvider           *CodeLensOptions     `json:"codeLensProvider,omitempty"`
	CodeActionProvider         bool                 `json:"codeActionProvider"`
	DocumentFormattingProvider bool                 `json:"documentFormattingProvider"`
	CompletionProvider         *CompletionOptions   `json:"completionProvider,omitempty"`
}

type DocumentLinkOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

type CodeLensOptions struct {
	ResolveProvider bool `json:"resolveProvider"`
}

type CompletionOptions struct {
	TriggerCharacters []string `json:"triggerCharacters,omitempty"`
}

type InitializeResult struct {
	Capabilities ServerCapabilities `json:"capabilities"`
}
