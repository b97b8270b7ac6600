// Package symbols answers the workspace-wide queries that need every
// cached file rather than just one: workspace/symbol search and
// textDocument/references for a target declaration.
//
// Grounded on original_source/src/symbols/ (workspace_symbols.rs and
// references.rs were both filtered from the retrieval pack, so this
// package follows the operational description recorded in DESIGN.md) and
// on the LinkIndex structure built in internal/analyzer/links.go, which
// supplies the "who points at this path" side of both queries.
package symbols

import (
	"sort"
	"strings"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/uri"
)

// WorkspaceSymbols returns every target and template declared in a
// non-external cached file whose name contains query as a case-insensitive
// substring (an empty query matches everything).
func WorkspaceSymbols(ws *analyzer.WorkspaceAnalyzer, query string) []protocol.SymbolInformation {
	query = strings.ToLower(query)
	var out []protocol.SymbolInformation

	for _, f := range ws.CachedFilesForSymbols() {
		for _, t := range f.Analyzed.Targets() {
			name, _ := t.SimpleName()
			if !strings.Contains(strings.ToLower(name), query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name: name,
				Kind: protocol.SymbolKindClass,
				Location: protocol.Location{
					URI:   uri.FromPath(f.Path),
					Range: spanRange(f, t.Node.Span()),
				},
			})
		}
		for name, tmpl := range f.Exports.Templates {
			if !strings.Contains(strings.ToLower(name), query) {
				continue
			}
			out = append(out, protocol.SymbolInformation{
				Name: name,
				Kind: protocol.SymbolKindFunction,
				Location: protocol.Location{
					URI:   uri.FromPath(f.Path),
					Range: spanRange(f, tmpl.Node.Span()),
				},
			})
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Location.URI < out[j].Location.URI
	})
	return out
}

// TargetReferences finds every reference to the target named name declared
// in definingFile: every cached file's LinkIndex entries pointing at
// definingFile, filtered to Target links whose name exactly matches (so a
// reference to "foo_tests" is never reported as also referencing "foo").
func TargetReferences(ws *analyzer.WorkspaceAnalyzer, definingFile *analyzer.File, name string) []protocol.Location {
	var out []protocol.Location
	for _, f := range ws.CachedFilesForReferences() {
		for _, link := range f.Links[definingFile.Path] {
			if link.Kind != analyzer.LinkTarget || link.Name != name {
				continue
			}
			out = append(out, protocol.Location{
				URI:   uri.FromPath(f.Path),
				Range: spanRange(f, link.Span),
			})
		}
	}
	return out
}

func spanRange(f *analyzer.File, sp ast.Span) protocol.Range {
	return protocol.Range{Start: f.LineIndex.Position(sp.Start), End: f.LineIndex.Position(sp.End)}
}

