package analyzer

import (
	"path"
	"sync"
	"time"

	"github.com/crossplane/crossplane-runtime/pkg/logging"

	"github.com/gnlang/gnls/internal/store"
)

// Analyzer is the entrypoint every LSP handler calls through: it maps a
// file path to the WorkspaceAnalyzer that owns it, lazily constructing or
// rebuilding that workspace's state when its .gn file changes.
//
// Grounded on the original's top-level Analyzer (original_source/src/analyzer/mod.rs),
// which keeps exactly this registry: workspace root -> WorkspaceAnalyzer,
// keyed and rebuilt on .gn version change rather than on every request.
type Analyzer struct {
	st  *store.Store
	log logging.Logger

	mu          sync.Mutex
	workspaces  map[string]*WorkspaceAnalyzer
	rootForPath map[string]string
}

// New constructs an Analyzer backed by st.
func New(st *store.Store, log logging.Logger) *Analyzer {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Analyzer{
		st:          st,
		log:         log,
		workspaces:  make(map[string]*WorkspaceAnalyzer),
		rootForPath: make(map[string]string),
	}
}

// workspaceFor returns the WorkspaceAnalyzer that should own path, finding
// (or re-finding, if path was never seen before) its workspace root and
// lazily (re)constructing the WorkspaceAnalyzer whenever the root's .gn
// file's version has moved on since the last time this was called —
// a changed .gn can repoint buildconfig, which invalidates every file's
// base environment, so the whole per-workspace cache is discarded rather
// than patched.
func (a *Analyzer) workspaceFor(path_ string) (*WorkspaceAnalyzer, error) {
	a.mu.Lock()
	root, known := a.rootForPath[path_]
	a.mu.Unlock()

	if !known {
		found, ok := findWorkspaceRoot(path.Dir(path_), a.st.Exists)
		if !ok {
			found = path.Dir(path_)
		}
		root = found
		a.mu.Lock()
		a.rootForPath[path_] = root
		a.mu.Unlock()
	}

	dotGNPath := path.Join(root, ".gn")
	version, err := a.st.ReadVersion(dotGNPath)
	if err != nil {
		// No .gn file at all: treat path's own directory as a single-file
		// workspace with no BUILDCONFIG.
		a.mu.Lock()
		defer a.mu.Unlock()
		if ws, ok := a.workspaces[root]; ok {
			return ws, nil
		}
		ws := NewWorkspaceAnalyzer(WorkspaceContext{Root: root}, a.st)
		a.workspaces[root] = ws
		return ws, nil
	}

	a.mu.Lock()
	ws, ok := a.workspaces[root]
	a.mu.Unlock()
	if ok && ws.Context().DotGNVersion.Equal(version) {
		return ws, nil
	}

	dotGNDoc, err := a.st.Read(dotGNPath)
	if err != nil {
		return nil, err
	}
	buildConfigPath, err := evaluateDotGN(root, dotGNDoc.Text)
	if err != nil {
		a.log.Debug("workspace has no resolvable buildconfig", "root", root, "error", err)
		buildConfigPath = ""
	}

	ws = NewWorkspaceAnalyzer(WorkspaceContext{
		Root:            root,
		DotGNVersion:    version,
		BuildConfigPath: buildConfigPath,
	}, a.st)

	a.mu.Lock()
	a.workspaces[root] = ws
	a.mu.Unlock()
	return ws, nil
}

// AnalyzeFile returns path's AnalyzedFile, rebuilding it if its cache key no
// longer verifies.
func (a *Analyzer) AnalyzeFile(path_ string, now time.Time) (*File, error) {
	ws, err := a.workspaceFor(path_)
	if err != nil {
		return nil, err
	}
	return ws.AnalyzeFile(path_, now)
}

// AnalyzeAt returns the Environment visible at byte offset pos in path.
func (a *Analyzer) AnalyzeAt(path_ string, pos int, now time.Time) (*Environment, error) {
	ws, err := a.workspaceFor(path_)
	if err != nil {
		return nil, err
	}
	f, err := ws.AnalyzeFile(path_, now)
	if err != nil {
		return nil, err
	}
	return ws.AnalyzeAt(f, pos, now)
}

// WorkspaceFor exposes the owning WorkspaceAnalyzer for callers (workspace
// symbol search, references, background indexing) that operate across a
// whole workspace rather than one file.
func (a *Analyzer) WorkspaceFor(path_ string) (*WorkspaceAnalyzer, error) {
	return a.workspaceFor(path_)
}

// Workspaces returns every workspace this Analyzer currently knows about.
func (a *Analyzer) Workspaces() []*WorkspaceAnalyzer {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*WorkspaceAnalyzer, 0, len(a.workspaces))
	for _, ws := range a.workspaces {
		out = append(out, ws)
	}
	return out
}
