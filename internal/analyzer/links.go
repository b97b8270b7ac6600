package analyzer

import (
	"path"
	"strings"

	"github.com/gnlang/gnls/internal/gn/ast"
)

// LinkKind discriminates what an AnalyzedLink points at.
type LinkKind int

const (
	LinkFile LinkKind = iota
	LinkTarget
)

// Link is one reference from this file to another file, or to a target
// declared in another (or the same) file.
type Link struct {
	Kind LinkKind
	Path string // the file the link resolves to
	Name string // target name; empty for LinkFile
	Span ast.Span
}

// LinkIndex groups every outgoing link in a file by the path it points to,
// so "who references this file/target" queries are a single map lookup
// away instead of a full-workspace scan.
type LinkIndex map[string][]Link

// collectLinks walks the raw parsed tree — every statement's expressions,
// recursing into every nested block regardless of how the semantic builder
// classified its container — looking for two shapes: import("...") calls,
// and string literals that look like GN labels ("//dir:name", ":name",
// "//dir"). The link_index.rs source for this pass was not part of the
// retrieved reference material, so this heuristic is grounded directly on
// the label-resolution rules section 9's GLOSSARY spells out for "Label",
// not ported line-for-line from an original file (see DESIGN.md).
func collectLinks(root *ast.Block, workspaceRoot, currentFileDir string) LinkIndex {
	idx := make(LinkIndex)
	add := func(l Link) { idx[l.Path] = append(idx[l.Path], l) }
	walkBlockForLinks(root, workspaceRoot, currentFileDir, add)
	return idx
}

func walkBlockForLinks(b *ast.Block, workspaceRoot, dir string, add func(Link)) {
	for _, stmt := range b.Statements {
		walkStatementForLinks(stmt, workspaceRoot, dir, add)
	}
}

func walkStatementForLinks(stmt ast.Statement, workspaceRoot, dir string, add func(Link)) {
	switch v := stmt.(type) {
	case *ast.Assignment:
		walkExprForLinks(v.RValue, workspaceRoot, dir, add)
		if access, ok := v.LValue.(*ast.ArrayAccess); ok {
			walkExprForLinks(access.Index, workspaceRoot, dir, add)
		}
	case *ast.Call:
		if v.Function.Name == "import" && len(v.Args) == 1 {
			if str, ok := v.Args[0].(*ast.StringLiteral); ok && str.IsSimple() {
				add(Link{Kind: LinkFile, Path: resolveImportPath(workspaceRoot, dir, str.Value), Span: str.Span()})
			}
		}
		for _, a := range v.Args {
			walkExprForLinks(a, workspaceRoot, dir, add)
		}
		if v.Body != nil {
			walkBlockForLinks(v.Body, workspaceRoot, dir, add)
		}
	case *ast.Condition:
		walkExprForLinks(v.Cond, workspaceRoot, dir, add)
		walkBlockForLinks(v.Then, workspaceRoot, dir, add)
		switch e := v.Else.(type) {
		case *ast.Condition:
			walkStatementForLinks(e, workspaceRoot, dir, add)
		case *ast.Block:
			walkBlockForLinks(e, workspaceRoot, dir, add)
		}
	}
}

func walkExprForLinks(e ast.Expr, workspaceRoot, dir string, add func(Link)) {
	switch v := e.(type) {
	case *ast.StringLiteral:
		if v.IsSimple() && looksLikeLabel(v.Value) {
			labelDir, name := splitLabel(v.Value)
			targetDir := dir
			if labelDir != "" {
				targetDir = path.Join(workspaceRoot, labelDir)
			}
			add(Link{Kind: LinkTarget, Path: targetDir + "/BUILD.gn", Name: name, Span: v.Span()})
		}
	case *ast.ListExpr:
		for _, el := range v.Elements {
			walkExprForLinks(el, workspaceRoot, dir, add)
		}
	case *ast.ParenExpr:
		walkExprForLinks(v.Inner, workspaceRoot, dir, add)
	case *ast.UnaryExpr:
		walkExprForLinks(v.Operand, workspaceRoot, dir, add)
	case *ast.BinaryExpr:
		walkExprForLinks(v.Left, workspaceRoot, dir, add)
		walkExprForLinks(v.Right, workspaceRoot, dir, add)
	case *ast.Call:
		for _, a := range v.Args {
			walkExprForLinks(a, workspaceRoot, dir, add)
		}
		if v.Body != nil {
			walkBlockForLinks(v.Body, workspaceRoot, dir, add)
		}
	case *ast.Block:
		walkBlockForLinks(v, workspaceRoot, dir, add)
	}
}

// looksLikeLabel is a conservative filter: only strings that contain GN's
// label syntax are worth indexing, so ordinary flags and filenames never
// produce a bogus link.
func looksLikeLabel(s string) bool {
	return strings.HasPrefix(s, "//") || strings.HasPrefix(s, ":")
}

// splitLabel splits "//dir/path:name" into ("dir/path", "name"). A bare
// ":name" yields ("", "name") — same directory as the referencing file. A
// label with no ':' names a target implicitly: the last path segment.
func splitLabel(label string) (dir, name string) {
	body := strings.TrimPrefix(label, "//")
	if idx := strings.IndexByte(body, ':'); idx >= 0 {
		dir, name = body[:idx], body[idx+1:]
	} else {
		dir = body
		name = path.Base(body)
	}
	return dir, name
}

// resolveImportPath resolves a raw import() argument: "//"-prefixed paths
// are relative to the workspace root, everything else is relative to the
// importing file's own directory.
func resolveImportPath(workspaceRoot, currentFileDir, raw string) string {
	if strings.HasPrefix(raw, "//") {
		return path.Join(workspaceRoot, strings.TrimPrefix(raw, "//"))
	}
	return path.Join(currentFileDir, raw)
}
