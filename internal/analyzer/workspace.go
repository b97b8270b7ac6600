package analyzer

import (
	"path"
	"sync"
	"time"

	"github.com/gnlang/gnls/internal/semantic"
	"github.com/gnlang/gnls/internal/store"
)

// WorkspaceContext is the slowly-changing configuration every file in one
// workspace is analyzed against: its root directory, the version of the
// .gn file that configuration was read from (a change invalidates the
// whole cache below), and the resolved path of the BUILDCONFIG file every
// file inherits its base environment from.
type WorkspaceContext struct {
	Root            string
	DotGNVersion    store.Version
	BuildConfigPath string
}

// Environment is a merged, read-only view of every variable and template
// visible from some point in the workspace: a starting file's own locals
// overlaid on its imports' exports, overlaid on BUILDCONFIG's exports.
type Environment struct {
	Variables map[string]*semantic.Variable
	Templates map[string]*semantic.Template
}

func newEnvironment() *Environment {
	return &Environment{Variables: make(map[string]*semantic.Variable), Templates: make(map[string]*semantic.Template)}
}

func (e *Environment) mergeExports(exp *FileExports) {
	for k, v := range exp.Variables {
		e.Variables[k] = v
	}
	for k, v := range exp.Templates {
		e.Templates[k] = v
	}
}

func (e *Environment) mergeLocals(vars map[string]*semantic.Variable, templates map[string]*semantic.Template) {
	for k, v := range vars {
		e.Variables[k] = v
	}
	for k, t := range templates {
		e.Templates[k] = t
	}
}

// WorkspaceAnalyzer owns the per-file cache for one workspace and performs
// three operations: analyze_file (a single file's AnalyzedFile, cached),
// analyze_files (the merged Environment of a file and everything it
// imports), and analyze_at (that same Environment, overlaid with a cursor
// position's local scope).
type WorkspaceAnalyzer struct {
	ctx WorkspaceContext
	st  *store.Store

	mu    sync.Mutex
	cache map[string]*File
}

// NewWorkspaceAnalyzer constructs an analyzer for ctx, backed by st.
func NewWorkspaceAnalyzer(ctx WorkspaceContext, st *store.Store) *WorkspaceAnalyzer {
	return &WorkspaceAnalyzer{ctx: ctx, st: st, cache: make(map[string]*File)}
}

func (w *WorkspaceAnalyzer) Context() WorkspaceContext { return w.ctx }

// CachedFilesForSymbols returns every non-external cached file, the set
// workspace/symbol search and the import-candidate search for code actions
// consider.
func (w *WorkspaceAnalyzer) CachedFilesForSymbols() []*File {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*File, 0, len(w.cache))
	for _, f := range w.cache {
		if !f.External {
			out = append(out, f)
		}
	}
	return out
}

// CachedFilesForReferences returns every cached file, external included —
// a reference can legitimately live in a file outside the workspace root
// (e.g. a symlinked checkout) and references must not miss it.
func (w *WorkspaceAnalyzer) CachedFilesForReferences() []*File {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]*File, 0, len(w.cache))
	for _, f := range w.cache {
		out = append(out, f)
	}
	return out
}

func (w *WorkspaceAnalyzer) resolver() semantic.Resolver {
	root := w.ctx.Root
	return func(name, currentDir string) string {
		return resolveImportPath(root, currentDir, name)
	}
}

// AnalyzeFile returns path's AnalyzedFile, reusing the cached entry when
// its cache key still verifies against now.
func (w *WorkspaceAnalyzer) AnalyzeFile(path_ string, now time.Time) (*File, error) {
	w.mu.Lock()
	if cached, ok := w.cache[path_]; ok {
		w.mu.Unlock()
		if cached.Key.Verify(now, w.st) {
			return cached, nil
		}
	} else {
		w.mu.Unlock()
	}

	f, err := buildFile(w.st, path_, w.ctx.Root, w.ctx.BuildConfigPath, w.resolver())
	if err != nil {
		return nil, err
	}
	// The versions in f.Key were read for this request, so a Verify at the
	// same request time answers from memory instead of re-reading them.
	f.Key.lastRequest = now
	f.Key.haveLastRequest = true
	f.Key.lastResult = true

	w.mu.Lock()
	w.cache[path_] = f
	w.mu.Unlock()
	return f, nil
}

// AnalyzeFiles returns the merged Environment of path and every file it
// transitively imports — used both to materialize BUILDCONFIG's
// environment and to resolve an imported file's own exports.
func (w *WorkspaceAnalyzer) AnalyzeFiles(path_ string, now time.Time) (*Environment, error) {
	var files []*File
	if err := w.collectImports(path_, now, &files, make(map[string]bool)); err != nil {
		return nil, err
	}
	env := newEnvironment()
	for i := len(files) - 1; i >= 0; i-- {
		env.mergeExports(files[i].Exports)
	}
	return env, nil
}

// AnalyzeAt returns the Environment visible at byte offset pos in file:
// BUILDCONFIG's exports, then file's imports' exports, then file's own
// local scope at pos — each layer overlaying the last. A workspace without
// a BUILDCONFIG contributes only the latter two layers.
func (w *WorkspaceAnalyzer) AnalyzeAt(file *File, pos int, now time.Time) (*Environment, error) {
	visited := map[string]bool{file.Path: true}
	var files []*File

	for _, child := range file.Exports.Children {
		if err := w.collectImports(child, now, &files, visited); err != nil {
			return nil, err
		}
	}
	if bc := w.ctx.BuildConfigPath; bc != "" {
		if err := w.collectImports(bc, now, &files, visited); err != nil {
			return nil, err
		}
	}

	env := newEnvironment()
	for i := len(files) - 1; i >= 0; i-- {
		env.mergeExports(files[i].Exports)
	}
	env.mergeLocals(file.LocalVariablesAt(pos), file.LocalTemplatesAt(pos))
	return env, nil
}

func (w *WorkspaceAnalyzer) collectImports(path_ string, now time.Time, files *[]*File, visited map[string]bool) error {
	if visited[path_] {
		return nil
	}
	visited[path_] = true

	f, err := w.AnalyzeFile(path_, now)
	if err != nil {
		return err
	}
	*files = append(*files, f)
	for _, child := range f.Exports.Children {
		if err := w.collectImports(child, now, files, visited); err != nil {
			return err
		}
	}
	return nil
}

// resolveWorkspaceDir joins a workspace root and a "//"-relative directory,
// used by callers assembling paths outside the resolver closures above.
func resolveWorkspaceDir(root, rel string) string {
	return path.Join(root, rel)
}
