// Package store implements the Document Store: an
// in-memory-overlaid view of workspace files, each stamped with a
// monotonically-advancing version token drawn from one of two origins —
// on-disk modification time, or an editor-supplied in-memory revision.
//
// Grounded on the DocumentManager of carrion-lsp's internal/server/document.go
// (a mutex-guarded path->Document map with Open/Change/Close operations),
// generalized to track version provenance explicitly and to read through
// to the filesystem — via afero.Fs, the way xpkg/workspace.Workspace
// does — when a path has no in-memory copy.
package store

import (
	"sync"
	"time"

	"github.com/crossplane/crossplane-runtime/pkg/errors"
	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/spf13/afero"
)

const (
	errReadFile = "failed to read file"
	errStatFile = "failed to stat file"
)

// Origin distinguishes where a Version came from.
type Origin int

const (
	// OnDisk versions are derived from the filesystem's modification time.
	OnDisk Origin = iota
	// InMemory versions are supplied by the editor client (didOpen/didChange).
	InMemory
)

// Version is a tagged union over a document's provenance: OnDisk{mtime} or
// InMemory{revision}.
type Version struct {
	Origin   Origin
	ModTime  time.Time
	Revision int
}

// Equal reports whether two versions represent the same content generation.
func (v Version) Equal(o Version) bool {
	if v.Origin != o.Origin {
		return false
	}
	if v.Origin == InMemory {
		return v.Revision == o.Revision
	}
	return v.ModTime.Equal(o.ModTime)
}

// Document is an immutable (path, bytes, version) triple. A new
// load_to_memory call never mutates an existing Document; it produces a new
// value and the Store swaps its pointer for path.
type Document struct {
	Path    string
	Text    []byte
	Version Version
}

// Store is the Document Store: path -> either an in-memory override or a
// pass-through to disk. All operations are safe for concurrent use, guarded
// by a single mutex.
type Store struct {
	fs  afero.Fs
	log logging.Logger

	mu       sync.Mutex
	memory   map[string]*Document
	revision map[string]int
}

// New constructs a Store backed by fs (use afero.NewOsFs() in production,
// afero.NewMemMapFs() in tests).
func New(fs afero.Fs, opts ...Option) *Store {
	s := &Store{
		fs:       fs,
		log:      logging.NewNopLogger(),
		memory:   make(map[string]*Document),
		revision: make(map[string]int),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Option configures a Store.
type Option func(*Store)

// WithLogger overrides the Store's logger.
func WithLogger(l logging.Logger) Option {
	return func(s *Store) { s.log = l }
}

// Read returns the in-memory copy of path if one is loaded, otherwise reads
// it from disk and stamps it with the file's modification time. Read
// failures are returned as explicit errors; callers must not substitute
// empty bytes on error.
func (s *Store) Read(path string) (*Document, error) {
	s.mu.Lock()
	if doc, ok := s.memory[path]; ok {
		s.mu.Unlock()
		return doc, nil
	}
	s.mu.Unlock()
	return s.readDisk(path)
}

// ReadVersion returns just the Version a Read(path) would currently observe,
// without paying for the file content copy.
func (s *Store) ReadVersion(path string) (Version, error) {
	s.mu.Lock()
	if doc, ok := s.memory[path]; ok {
		v := doc.Version
		s.mu.Unlock()
		return v, nil
	}
	s.mu.Unlock()

	info, err := s.fs.Stat(path)
	if err != nil {
		return Version{}, errors.Wrap(err, errStatFile)
	}
	return Version{Origin: OnDisk, ModTime: info.ModTime()}, nil
}

// Fs exposes the underlying filesystem for callers (background indexing)
// that need to walk a directory tree rather than read one path.
func (s *Store) Fs() afero.Fs { return s.fs }

// Exists reports whether path is present in memory or on disk.
func (s *Store) Exists(path string) bool {
	s.mu.Lock()
	if _, ok := s.memory[path]; ok {
		s.mu.Unlock()
		return true
	}
	s.mu.Unlock()
	ok, err := afero.Exists(s.fs, path)
	return err == nil && ok
}

func (s *Store) readDisk(path string) (*Document, error) {
	b, err := afero.ReadFile(s.fs, path)
	if err != nil {
		return nil, errors.Wrap(err, errReadFile)
	}
	info, err := s.fs.Stat(path)
	if err != nil {
		return nil, errors.Wrap(err, errStatFile)
	}
	return &Document{
		Path:    path,
		Text:    b,
		Version: Version{Origin: OnDisk, ModTime: info.ModTime()},
	}, nil
}

// LoadToMemory records path as editor-open with the given bytes, producing
// a new Document value. revision must be monotonically increasing per
// path; a non-increasing revision is accepted but logged, since a racing
// client notification is a protocol violation this engine recovers from
// rather than rejects.
func (s *Store) LoadToMemory(path string, text []byte, revision int) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.revision[path]; ok && revision <= last {
		s.log.Debug("received non-monotonic document revision", "path", path, "last", last, "got", revision)
	}
	s.revision[path] = revision

	doc := &Document{
		Path:    path,
		Text:    text,
		Version: Version{Origin: InMemory, Revision: revision},
	}
	s.memory[path] = doc
	return doc
}

// UnloadFromMemory drops the in-memory override for path; subsequent Reads
// fall through to disk.
func (s *Store) UnloadFromMemory(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.memory, path)
}
