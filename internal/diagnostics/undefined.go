// Package diagnostics implements the language server's one diagnostic
// pass: flagging identifiers that are read before anything in scope could
// have defined them.
//
// Grounded on original_source/src/diagnostics/undefined.rs, which this
// package follows statement-shape for statement-shape and
// expression-shape for expression-shape — the EnvironmentTracker clone
// on subscope recursion, the post-recursion variable updates, and the
// defined()-call special case are all ported behaviors, not reinventions.
package diagnostics

import (
	"fmt"
	"time"

	"github.com/gnlang/gnls/internal/analyzer"
	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/builtins"
	"github.com/gnlang/gnls/internal/lineindex"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/semantic"
)

// CodeUndefined is the diagnostic code attached to every undefined-identifier
// diagnostic, matched by the code-action package when offering an import fix.
const CodeUndefined = "undefined"

// DataUndefined is a diagnostic's machine-readable payload: the name that
// was not defined, so a code action can offer to import it without
// re-parsing the diagnostic message.
type DataUndefined struct {
	Name string `json:"name"`
}

// environment is a clonable view of "every name that might be in scope so
// far": either a concrete set, or Untrackable once a forward_variables_from
// call's includes list could not be statically enumerated, at which point
// this pass stops flagging anything (a false negative is preferable to the
// constant false positives an un-trackable scope would otherwise produce).
type environment struct {
	names       map[string]struct{}
	untrackable bool
}

func newEnvironment() *environment {
	env := &environment{names: make(map[string]struct{})}
	for _, kw := range []string{"true", "false"} {
		env.names[kw] = struct{}{}
	}
	for _, name := range builtins.All() {
		env.names[name] = struct{}{}
	}
	return env
}

func (e *environment) clone() *environment {
	if e.untrackable {
		return &environment{untrackable: true}
	}
	names := make(map[string]struct{}, len(e.names))
	for n := range e.names {
		names[n] = struct{}{}
	}
	return &environment{names: names}
}

func (e *environment) mayContain(name string) bool {
	if e.untrackable {
		return true
	}
	_, ok := e.names[name]
	return ok
}

func (e *environment) insert(name string) {
	if !e.untrackable {
		e.names[name] = struct{}{}
	}
}

func (e *environment) setUntrackable() { e.untrackable = true; e.names = nil }

func (e *environment) extend(names map[string]*semantic.Variable) {
	if e.untrackable {
		return
	}
	for n := range names {
		e.names[n] = struct{}{}
	}
}

type collector struct {
	idx   *lineindex.Index
	diags []protocol.Diagnostic
}

func (c *collector) reportIdentifier(ident *ast.Identifier, env *environment) {
	if env.mayContain(ident.Name) {
		return
	}
	c.diags = append(c.diags, protocol.Diagnostic{
		Range:    protocol.Range{Start: c.idx.Position(ident.Sp.Start), End: c.idx.Position(ident.Sp.End)},
		Severity: protocol.SeverityError,
		Code:     CodeUndefined,
		Source:   "gnls",
		Message:  fmt.Sprintf("%s not defined", ident.Name),
		Data:     DataUndefined{Name: ident.Name},
	})
}

// walkExpr mirrors Expr/PrimaryExpr::collect_undefined_identifiers: every
// expression shape recurses into its children except a call to defined(),
// whose argument is a scope probe rather than a read and must not be
// flagged.
func (c *collector) walkExpr(e ast.Expr, env *environment) {
	switch v := e.(type) {
	case *ast.Identifier:
		c.reportIdentifier(v, env)
	case *ast.Call:
		c.reportIdentifier(v.Function, env)
		if v.Function.Name != "defined" {
			for _, arg := range v.Args {
				c.walkExpr(arg, env)
			}
		}
	case *ast.ArrayAccess:
		if root := ast.PrimaryIdentifier(v.Array); root != nil {
			c.reportIdentifier(root, env)
		}
		c.walkExpr(v.Index, env)
	case *ast.ScopeAccess:
		if root := ast.PrimaryIdentifier(v.Scope); root != nil {
			c.reportIdentifier(root, env)
		}
	case *ast.ParenExpr:
		c.walkExpr(v.Inner, env)
	case *ast.UnaryExpr:
		c.walkExpr(v.Operand, env)
	case *ast.BinaryExpr:
		c.walkExpr(v.Left, env)
		c.walkExpr(v.Right, env)
	case *ast.ListExpr:
		for _, el := range v.Elements {
			c.walkExpr(el, env)
		}
	case *ast.IntegerLiteral, *ast.StringLiteral, *ast.Block, *ast.ErrorStatement:
		// literals, block literals, and parse errors never read a name.
	}
}

// walkBlock mirrors AnalyzedBlock::collect_undefined_identifiers: for each
// flattened top-level statement, first check the statement's own
// expressions against env, then recurse into its subscopes with a cloned
// (sibling-isolated) env, and only after both steps update env itself —
// so a variable a statement assigns is visible to statements after it, but
// never to the expressions of the statement doing the assigning, nor to a
// sibling subscope that ran before the update.
func (c *collector) walkBlock(block *semantic.Block, ws *analyzer.WorkspaceAnalyzer, now time.Time, env *environment) {
	for _, stmt := range block.TopLevelStatements() {
		switch stmt.Kind {
		case semantic.KindAssignment:
			a := stmt.Assignment
			if arr, ok := a.Node.LValue.(*ast.ArrayAccess); ok {
				c.walkExpr(arr.Index, env)
			}
			c.walkExpr(a.Node.RValue, env)

		case semantic.KindCondition:
			cur := stmt.Condition
			for {
				c.walkExpr(cur.Node.Cond, env)
				if cur.ElseCondition != nil {
					cur = cur.ElseCondition
					continue
				}
				break
			}

		case semantic.KindForeach:
			c.walkExpr(stmt.Foreach.LoopItems, env)

		case semantic.KindForwardVariablesFrom:
			for _, arg := range stmt.ForwardVariablesFrom.Node.Args {
				c.walkExpr(arg, env)
			}

		case semantic.KindTarget:
			for _, arg := range stmt.Target.Node.Args {
				c.walkExpr(arg, env)
			}

		case semantic.KindTemplate:
			for _, arg := range stmt.Template.Node.Args {
				c.walkExpr(arg, env)
			}

		case semantic.KindBuiltinCall:
			c.reportIdentifier(stmt.BuiltinCall.Node.Function, env)
			for _, arg := range stmt.BuiltinCall.Node.Args {
				c.walkExpr(arg, env)
			}

		case semantic.KindDeclareArgs, semantic.KindImport, semantic.KindError:
			// declare_args/import carry no expressions of their own here
			// (their bodies/targets are reached through subscopes below);
			// a parse error has nothing to check.
		}

		for _, sub := range stmt.Subscopes() {
			c.walkBlock(sub, ws, now, env.clone())
		}

		switch stmt.Kind {
		case semantic.KindAssignment:
			if ident, ok := stmt.Assignment.Node.LValue.(*ast.Identifier); ok {
				env.insert(ident.Name)
			}
		case semantic.KindForeach:
			env.insert(stmt.Foreach.LoopVariable.Name)
		case semantic.KindForwardVariablesFrom:
			includes, ok := simpleStringList(stmt.ForwardVariablesFrom.Includes)
			if !ok {
				env.setUntrackable()
				break
			}
			for _, name := range includes {
				env.insert(name)
			}
		case semantic.KindImport:
			imported, err := ws.AnalyzeFiles(stmt.Import.Path, now)
			if err == nil {
				env.extend(imported.Variables)
			}
		}
	}
}

func simpleStringList(e ast.Expr) ([]string, bool) {
	list, ok := e.(*ast.ListExpr)
	if !ok {
		return nil, false
	}
	out := make([]string, 0, len(list.Elements))
	for _, el := range list.Elements {
		str, ok := el.(*ast.StringLiteral)
		if !ok || !str.IsSimple() {
			return nil, false
		}
		out = append(out, str.Value)
	}
	return out, true
}

// CollectUndefined runs the undefined-identifier pass over file's analyzed
// tree, seeding the tracker from BUILDCONFIG.gn's environment the same way
// every file's base scope is seeded.
func CollectUndefined(file *analyzer.File, an *analyzer.Analyzer, now time.Time) []protocol.Diagnostic {
	ws, err := an.WorkspaceFor(file.Path)
	if err != nil {
		return nil
	}

	env := newEnvironment()
	if bc := ws.Context().BuildConfigPath; bc != "" {
		if buildConfigEnv, err := ws.AnalyzeFiles(bc, now); err == nil {
			env.extend(buildConfigEnv.Variables)
		}
	}

	c := &collector{idx: file.LineIndex}
	c.walkBlock(file.Analyzed, ws, now, env)
	return c.diags
}
