package analyzer

import (
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/lineindex"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/semantic"
)

// buildOutline renders a file's top-level (flattened) targets, templates,
// and variable assignments as a documentSymbol/textDocument-symbol outline.
// GN targets and templates don't nest into each other, so a flat list
// (rather than DocumentSymbol's Children) already matches the language's
// shape.
func buildOutline(block *semantic.Block, idx *lineindex.Index) []protocol.DocumentSymbol {
	var out []protocol.DocumentSymbol
	seen := make(map[string]bool) // dedupe repeated top-level assignments to the same variable

	for _, stmt := range block.TopLevelStatements() {
		switch stmt.Kind {
		case semantic.KindTarget:
			name, ok := stmt.Target.SimpleName()
			if !ok {
				continue
			}
			out = append(out, symbolFor(name, stmt.Target.Node.Function.Name, protocol.SymbolKindModule, stmt.Target.Node.Span(), idx))
		case semantic.KindTemplate:
			name, ok := stmt.Template.SimpleName()
			if !ok {
				continue
			}
			out = append(out, symbolFor(name, "template", protocol.SymbolKindFunction, stmt.Template.Node.Span(), idx))
		case semantic.KindAssignment:
			a := stmt.Assignment
			if a.PrimaryVariable == nil || seen[a.PrimaryVariable.Name] {
				continue
			}
			seen[a.PrimaryVariable.Name] = true
			out = append(out, symbolFor(a.PrimaryVariable.Name, "variable", protocol.SymbolKindVariable, a.Node.Span(), idx))
		}
	}
	return out
}

func symbolFor(name, detail string, kind protocol.SymbolKind, span ast.Span, idx *lineindex.Index) protocol.DocumentSymbol {
	r := protocol.Range{Start: idx.Position(span.Start), End: idx.Position(span.End)}
	return protocol.DocumentSymbol{
		Name:           name,
		Detail:         detail,
		Kind:           kind,
		Range:          r,
		SelectionRange: r,
	}
}
