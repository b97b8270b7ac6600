package analyzer

import (
	"strings"

	"github.com/gnlang/gnls/internal/semantic"
)

// FileExports is the subset of a file's semantic tree visible to an
// importer: its exported variables, templates, target declarations, and
// the paths of every file it imports (followed transitively when
// assembling an Environment).
type FileExports struct {
	Variables map[string]*semantic.Variable
	Templates map[string]*semantic.Template
	Targets   map[string]*semantic.Target
	Children  []string
}

func newFileExports() *FileExports {
	return &FileExports{
		Variables: make(map[string]*semantic.Variable),
		Templates: make(map[string]*semantic.Template),
		Targets:   make(map[string]*semantic.Target),
	}
}

// isExported reports whether name is visible outside its defining file.
// GN's convention: a leading underscore marks a private variable/template.
func isExported(name string) bool {
	return !strings.HasPrefix(name, "_")
}

// computeExports walks a file's already-classified top-level statements
// (flattened the same way locals-at-position is, sharing the same
// transparent/opaque boundary) and records the subset an importer can see.
// It operates
// on the semantic tree rather than re-flattening the raw parsed tree,
// since the two are equivalent here and building the semantic tree is
// unconditional work this analyzer always does anyway.
func computeExports(block *semantic.Block) *FileExports {
	exports := newFileExports()
	var declareArgsStack []*semantic.DeclareArgs

	for _, stmt := range block.TopLevelStatements() {
		for len(declareArgsStack) > 0 {
			top := declareArgsStack[len(declareArgsStack)-1]
			if stmt.Span().Start <= top.Node.Span().End {
				break
			}
			declareArgsStack = declareArgsStack[:len(declareArgsStack)-1]
		}

		switch stmt.Kind {
		case semantic.KindAssignment:
			a := stmt.Assignment
			if a.PrimaryVariable == nil || !isExported(a.PrimaryVariable.Name) {
				continue
			}
			v := exportVariable(exports, a.PrimaryVariable.Name, len(declareArgsStack) > 0)
			v.Assignments = append(v.Assignments, semantic.VariableAssignment{
				Assignment: a.Node,
				NameSpan:   a.PrimaryVariable.Span(),
				Comments:   a.Node.Comments,
			})

		case semantic.KindForwardVariablesFrom:
			for _, fwd := range semantic.ForwardedIncludes(stmt.ForwardVariablesFrom) {
				if !isExported(fwd.Name) {
					continue
				}
				v := exportVariable(exports, fwd.Name, len(declareArgsStack) > 0)
				v.Assignments = append(v.Assignments, semantic.VariableAssignment{
					Call:     stmt.ForwardVariablesFrom.Node,
					NameSpan: fwd.Span,
				})
			}

		case semantic.KindImport:
			exports.Children = append(exports.Children, stmt.Import.Path)

		case semantic.KindTemplate:
			if name, ok := stmt.Template.SimpleName(); ok && isExported(name) {
				exports.Templates[name] = stmt.Template
			}

		case semantic.KindDeclareArgs:
			declareArgsStack = append(declareArgsStack, stmt.DeclareArgs)

		case semantic.KindTarget:
			if name, ok := stmt.Target.SimpleName(); ok {
				exports.Targets[name] = stmt.Target
			}

		case semantic.KindForeach, semantic.KindBuiltinCall, semantic.KindCondition, semantic.KindError:
			// Foreach loop variables, opaque builtin calls, condition guards,
			// and parse errors never contribute exports.
		}
	}

	return exports
}

func exportVariable(exports *FileExports, name string, isArgs bool) *semantic.Variable {
	v, ok := exports.Variables[name]
	if !ok {
		v = &semantic.Variable{Name: name, IsArgs: isArgs}
		exports.Variables[name] = v
	}
	return v
}
