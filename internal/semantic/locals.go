package semantic

import "github.com/gnlang/gnls/internal/gn/ast"

// VariableAssignment is one site that writes to a Variable: a plain
// assignment, a foreach loop variable binding, or a synthetic binding
// produced by forward_variables_from.
type VariableAssignment struct {
	Assignment *ast.Assignment // set when this came from a plain Assignment
	Call       *ast.Call       // set when this came from foreach/forward_variables_from
	NameSpan   ast.Span        // span of just the variable name, for hover/goto
	Comments   []string
}

// Variable is a name in scope together with every site that assigns it.
// IsArgs marks a variable bound inside a declare_args block, which drives
// how hover renders it (a build argument vs. an ordinary local).
type Variable struct {
	Name        string
	Assignments []VariableAssignment
	IsArgs      bool
}

func upsert(vars map[string]*Variable, name string, isArgs bool) *Variable {
	v, ok := vars[name]
	if !ok {
		v = &Variable{Name: name, IsArgs: isArgs}
		vars[name] = v
	}
	return v
}

// LocalVariablesAt computes every variable visible at byte offset pos
// within this block, per the two-pass algorithm: first collect every
// variable this block's (flattened) top-level statements assign — a
// declare_args stack marks which of those came from a still-open
// declare_args block — then recurse into whichever subscope's span
// contains pos, merging its own locals over these (inner shadows outer on
// name collision, since the second pass runs after the first and map
// insertion is last-write-wins via explicit overwrite below).
func (b *Block) LocalVariablesAt(pos int) map[string]*Variable {
	vars := make(map[string]*Variable)

	var declareArgsStack []*DeclareArgs
	for _, stmt := range b.TopLevelStatements() {
		for len(declareArgsStack) > 0 {
			top := declareArgsStack[len(declareArgsStack)-1]
			if stmt.Span().Start <= top.Node.Span().End {
				break
			}
			declareArgsStack = declareArgsStack[:len(declareArgsStack)-1]
		}

		switch stmt.Kind {
		case KindAssignment:
			a := stmt.Assignment
			if a.PrimaryVariable == nil {
				continue
			}
			v := upsert(vars, a.PrimaryVariable.Name, len(declareArgsStack) > 0)
			v.Assignments = append(v.Assignments, VariableAssignment{
				Assignment: a.Node,
				NameSpan:   a.PrimaryVariable.Span(),
				Comments:   a.Node.Comments,
			})
		case KindForeach:
			f := stmt.Foreach
			v := upsert(vars, f.LoopVariable.Name, len(declareArgsStack) > 0)
			v.Assignments = append(v.Assignments, VariableAssignment{
				Call:     f.Node,
				NameSpan: f.LoopVariable.Span(),
			})
		case KindForwardVariablesFrom:
			for _, fwd := range ForwardedIncludes(stmt.ForwardVariablesFrom) {
				v := upsert(vars, fwd.Name, len(declareArgsStack) > 0)
				v.Assignments = append(v.Assignments, VariableAssignment{
					Call:     stmt.ForwardVariablesFrom.Node,
					NameSpan: fwd.Span,
				})
			}
		case KindDeclareArgs:
			declareArgsStack = append(declareArgsStack, stmt.DeclareArgs)
		}
	}

	for _, stmt := range b.TopLevelStatements() {
		for _, scope := range stmt.Subscopes() {
			if scope.Span.Contains(pos) {
				for name, v := range scope.LocalVariablesAt(pos) {
					vars[name] = v
				}
			}
		}
	}

	return vars
}

// LocalTemplatesAt computes every template visible at pos, by the same
// two-pass shape as LocalVariablesAt (templates are never shadowed by a
// declare_args stack, so the first pass has no stack to track).
func (b *Block) LocalTemplatesAt(pos int) map[string]*Template {
	templates := make(map[string]*Template)

	for _, stmt := range b.TopLevelStatements() {
		if stmt.Kind != KindTemplate {
			continue
		}
		if name, ok := stmt.Template.SimpleName(); ok {
			templates[name] = stmt.Template
		}
	}

	for _, stmt := range b.TopLevelStatements() {
		for _, scope := range stmt.Subscopes() {
			if scope.Span.Contains(pos) {
				for name, t := range scope.LocalTemplatesAt(pos) {
					templates[name] = t
				}
			}
		}
	}

	return templates
}

// ForwardedName is one plain-string entry of a forward_variables_from's
// includes list.
type ForwardedName struct {
	Name string
	Span ast.Span
}

// ForwardedIncludes extracts the plain-string entries of a
// forward_variables_from's includes list — a non-literal list (e.g. a bare
// identifier naming a variable that holds a list) contributes nothing,
// since there is no static name to bind. Excludes are not subtracted here;
// they only affect the set semantics at evaluation time, not which names
// the language server considers "assigned".
func ForwardedIncludes(fv *ForwardVariablesFrom) []ForwardedName {
	list, ok := fv.Includes.(*ast.ListExpr)
	if !ok {
		return nil
	}
	var out []ForwardedName
	for _, el := range list.Elements {
		str, ok := el.(*ast.StringLiteral)
		if !ok || !str.IsSimple() {
			continue
		}
		out = append(out, ForwardedName{Name: str.Value, Span: str.Span()})
	}
	return out
}
