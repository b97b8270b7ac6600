package analyzer

import (
	"path"
	"strings"

	"github.com/crossplane/crossplane-runtime/pkg/errors"

	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/parser"
)

const errNoBuildConfig = "workspace .gn file has no buildconfig assignment"

// evaluateDotGN parses a workspace's .gn file — itself a tiny GN scope —
// and resolves the path its `buildconfig = "//..."` assignment points to.
// Every other variable a .gn file may set (secondary_source, script_executable,
// exec_script_whitelist, and so on) is outside this analyzer's scope: it
// only needs the one path that supplies every file's base environment.
func evaluateDotGN(workspaceRoot string, text []byte) (string, error) {
	block := parser.Parse(string(text))
	for _, stmt := range block.Statements {
		a, ok := stmt.(*ast.Assignment)
		if !ok {
			continue
		}
		ident, ok := a.LValue.(*ast.Identifier)
		if !ok || ident.Name != "buildconfig" {
			continue
		}
		lit, ok := a.RValue.(*ast.StringLiteral)
		if !ok || !lit.IsSimple() {
			continue
		}
		return resolveImportPath(workspaceRoot, workspaceRoot, lit.Value), nil
	}
	return "", errors.New(errNoBuildConfig)
}

// findWorkspaceRoot walks up from dir looking for the nearest ancestor that
// contains a ".gn" file, per the workspace-layout rule every path
// resolution in this package depends on.
func findWorkspaceRoot(dir string, exists func(path string) bool) (string, bool) {
	for {
		if exists(path.Join(dir, ".gn")) {
			return dir, true
		}
		parent := path.Dir(dir)
		if parent == dir || !strings.HasPrefix(dir, "/") {
			return "", false
		}
		dir = parent
	}
}
