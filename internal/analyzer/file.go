package analyzer

import (
	"path"

	"github.com/gnlang/gnls/internal/gn/ast"
	"github.com/gnlang/gnls/internal/gn/parser"
	"github.com/gnlang/gnls/internal/lineindex"
	"github.com/gnlang/gnls/internal/protocol"
	"github.com/gnlang/gnls/internal/semantic"
	"github.com/gnlang/gnls/internal/store"
)

// File is the per-file analysis unit: the parsed tree, the semantic tree
// built over it, its exports, its outgoing links, its outline, and the
// cache key that tells a later request whether it can still be reused.
type File struct {
	Path          string
	WorkspaceRoot string
	Document      *store.Document
	AST           *ast.Block
	Analyzed      *semantic.Block
	Exports       *FileExports
	Links         LinkIndex
	Outline       []protocol.DocumentSymbol
	LineIndex     *lineindex.Index
	External      bool
	Key           *CacheKey
}

// buildFile parses and fully analyzes path's current contents. It does not
// consult or populate any workspace cache — callers do that.
//
// The cache key it produces binds every path that can invalidate this
// analysis: the file itself, the workspace's BUILDCONFIG, and every file
// transitively reachable through import() — matching the exact set
// Verify checks against the current document store.
func buildFile(st *store.Store, path_, workspaceRoot, buildConfigPath string, resolve semantic.Resolver) (*File, error) {
	doc, err := st.Read(path_)
	if err != nil {
		return nil, err
	}

	tree := parser.Parse(string(doc.Text))
	dir := path.Dir(path_)
	analyzed := semantic.Build(tree, dir, resolve)
	exports := computeExports(analyzed)
	links := collectLinks(tree, workspaceRoot, dir)
	idx := lineindex.New(string(doc.Text))
	outline := buildOutline(analyzed, idx)

	versions := map[string]store.Version{path_: doc.Version}
	if buildConfigPath != "" && buildConfigPath != path_ {
		collectTransitiveVersions(st, workspaceRoot, buildConfigPath, resolve, versions)
	}
	for _, child := range exports.Children {
		collectTransitiveVersions(st, workspaceRoot, child, resolve, versions)
	}

	return &File{
		Path:          path_,
		WorkspaceRoot: workspaceRoot,
		Document:      doc,
		AST:           tree,
		Analyzed:      analyzed,
		Exports:       exports,
		Links:         links,
		Outline:       outline,
		LineIndex:     idx,
		External:      !isWithin(workspaceRoot, path_),
		Key:           NewCacheKey(versions),
	}, nil
}

// collectTransitiveVersions walks path's own import children (re-parsing
// each, but not building a full File for it — that's the cache's job, not
// this bookkeeping pass's) recording every visited path's version into
// versions. A path already present in versions is treated as visited,
// which both dedupes and breaks import cycles.
func collectTransitiveVersions(st *store.Store, workspaceRoot, path_ string, resolve semantic.Resolver, versions map[string]store.Version) {
	if _, seen := versions[path_]; seen {
		return
	}
	v, err := st.ReadVersion(path_)
	if err != nil {
		return
	}
	versions[path_] = v

	doc, err := st.Read(path_)
	if err != nil {
		return
	}
	tree := parser.Parse(string(doc.Text))
	analyzed := semantic.Build(tree, path.Dir(path_), resolve)
	for _, child := range computeExports(analyzed).Children {
		collectTransitiveVersions(st, workspaceRoot, child, resolve, versions)
	}
}

func isWithin(root, p string) bool {
	rel := path.Clean(p)
	root = path.Clean(root)
	if rel == root {
		return true
	}
	return len(rel) > len(root) && rel[:len(root)] == root && rel[len(root)] == '/'
}

// LocalVariablesAt and LocalTemplatesAt expose the file's own in-scope
// names at pos, delegating to the semantic tree.
func (f *File) LocalVariablesAt(pos int) map[string]*semantic.Variable {
	return f.Analyzed.LocalVariablesAt(pos)
}

func (f *File) LocalTemplatesAt(pos int) map[string]*semantic.Template {
	return f.Analyzed.LocalTemplatesAt(pos)
}
