// Package completion assembles completion items and hover content from the
// same Environment the diagnostics pass computes from, plus the static
// builtin tables.
//
// Grounded on original_source/src/providers/completion.rs: variable items
// carry a snippet of their first assignment, template items carry their
// doc comments, and the builtin/keyword tails are static. Filename
// completion (the `prefix` branch of the original, offered inside string
// literals) is out of scope here — it depends on editor-relative
// filesystem listing that this engine's core analysis layer has no
// business doing; the completion surface this package offers stays to
// scope-sensitive identifier completion.
package completion

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/builtins"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/semantic"
)

var keywords = []string{"true", "false", "if", "else"}

// Items builds the completion list visible at env, the Environment already
// assembled (via analyzer.WorkspaceAnalyzer.AnalyzeAt) for the cursor
// position this completion request targets.
func Items(env *analyzer.Environment) []protocol.CompletionItem {
	var items []protocol.CompletionItem

	varNames := make([]string, 0, len(env.Variables))
	for name := range env.Variables {
		varNames = append(varNames, name)
	}
	sort.Strings(varNames)
	for _, name := range varNames {
		items = append(items, variableItem(name, env.Variables[name]))
	}

	tmplNames := make([]string, 0, len(env.Templates))
	for name := range env.Templates {
		tmplNames = append(tmplNames, name)
	}
	sort.Strings(tmplNames)
	for _, name := range tmplNames {
		items = append(items, templateItem(name, env.Templates[name]))
	}

	for _, name := range builtins.Functions {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindFunction})
	}
	for _, name := range builtins.TargetTypes {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindFunction})
	}
	for _, name := range builtins.PredefinedVariables {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindVariable})
	}
	for _, name := range builtins.TargetVariables {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindVariable})
	}
	for _, name := range keywords {
		items = append(items, protocol.CompletionItem{Label: name, Kind: protocol.CompletionItemKindKeyword})
	}

	return items
}

func variableItem(name string, v *semantic.Variable) protocol.CompletionItem {
	snippet := variableSnippet(name, v)
	return protocol.CompletionItem{
		Label: name,
		Kind:  protocol.CompletionItemKindVariable,
		Documentation: &protocol.MarkupContent{
			Kind:  "markdown",
			Value: fmt.Sprintf("```gn\n%s\n```\n", snippet),
		},
	}
}

// variableSnippet renders a variable's first assignment as a one-line
// preview, or "name = ..." when more than one site assigns it (mirroring
// the original's single_assignment branch).
func variableSnippet(name string, v *semantic.Variable) string {
	if len(v.Assignments) == 0 {
		return name
	}
	if len(v.Assignments) > 1 {
		return fmt.Sprintf("%s = ...", name)
	}
	a := v.Assignments[0]
	if a.Assignment != nil {
		return assignmentSummary(a.Assignment)
	}
	return name
}

func assignmentSummary(a *ast.Assignment) string {
	return fmt.Sprintf("%s %s ...", lvalueName(a.LValue), a.Op)
}

func lvalueName(lv ast.LValue) string {
	if id := ast.PrimaryIdentifier(lv); id != nil {
		return id.Name
	}
	return ""
}

func templateItem(name string, t *semantic.Template) protocol.CompletionItem {
	doc := fmt.Sprintf("```gn\ntemplate(\"%s\") { ... }\n```\n", name)
	if len(t.Comments) > 0 {
		doc += fmt.Sprintf("```text\n%s\n```\n", strings.Join(t.Comments, "\n"))
	}
	return protocol.CompletionItem{
		Label: name,
		Kind:  protocol.CompletionItemKindFunction,
		Documentation: &protocol.MarkupContent{
			Kind:  "markdown",
			Value: doc,
		},
	}
}
