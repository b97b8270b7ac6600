// Package indexing implements background workspace indexing: walking a
// workspace tree for GN source files and warming the WorkspaceAnalyzer's
// cache for each one, spawned once per workspace on first observation, so
// workspace-wide queries (workspace/symbol, references) have something to
// search as soon as the one-shot barrier opens.
//
// Grounded on original_source/src/analyzer/indexing.rs (build_index) and
// src/common/utils.rs (walk_source_dirs/is_good_for_scan), adapted from
// that WalkDir + tokio::spawn/join_all shape to afero.Walk +
// golang.org/x/sync/errgroup, the concurrency-bounding primitive this
// codebase's build graph construction uses for the same "bounded parallel
// fan-out, wait for all" pattern.
package indexing

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/crossplane/crossplane-runtime/pkg/logging"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/gnlang/gnls/internal/analyzer"
)

// isGoodForScan mirrors is_good_for_scan: only these three basenames are
// worth parsing during a background sweep.
func isGoodForScan(path string) bool {
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".gni") || name == "BUILD.gn" || name == "BUILDCONFIG.gn"
}

// skipEntry mirrors filter_source_entry: dot-directories and any directory
// that looks like a build output (contains args.gn) are pruned entirely,
// not just excluded from the result — their contents are never walked.
func skipEntry(fs afero.Fs, path string, info os.FileInfo) bool {
	if strings.HasPrefix(info.Name(), ".") {
		return true
	}
	if info.IsDir() {
		if ok, err := afero.Exists(fs, filepath.Join(path, "args.gn")); err == nil && ok {
			return true
		}
	}
	return false
}

// Barrier is a one-shot false->true gate: Close closes exactly once, and
// both Check (non-blocking) and Wait (blocking) observe the same
// transition.
type Barrier struct {
	once sync.Once
	ch   chan struct{}
}

// NewBarrier returns an unclosed Barrier.
func NewBarrier() *Barrier {
	return &Barrier{ch: make(chan struct{})}
}

// Close opens the barrier. Safe to call more than once; only the first
// call has any effect.
func (b *Barrier) Close() { b.once.Do(func() { close(b.ch) }) }

// Check reports whether the barrier is already open, without blocking.
func (b *Barrier) Check() bool {
	select {
	case <-b.ch:
		return true
	default:
		return false
	}
}

// Wait blocks until the barrier opens or ctx is done.
func (b *Barrier) Wait(ctx context.Context) error {
	select {
	case <-b.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Build walks ws's workspace root for scannable GN files and analyzes each
// one, warming the cache. parallel selects bounded concurrent analysis
// (capped at runtime.NumCPU(), since errgroup itself applies no limit
// unless told to) versus strictly sequential, matching the
// parallelIndexing configuration flag. The returned Barrier closes once
// every discovered file has been analyzed (or failed to analyze — a parse
// error still counts as processed).
func Build(ctx context.Context, fs afero.Fs, ws *analyzer.WorkspaceAnalyzer, parallel bool, log logging.Logger) *Barrier {
	barrier := NewBarrier()
	if log == nil {
		log = logging.NewNopLogger()
	}

	go func() {
		defer barrier.Close()

		root := ws.Context().Root
		start := time.Now()
		log.Debug("indexing workspace in the background", "root", root)

		var paths []string
		err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return nil
			}
			if path != root && skipEntry(fs, path, info) {
				if info.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !info.IsDir() && isGoodForScan(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			log.Info("workspace scan failed", "root", root, "error", err)
			return
		}

		g, gctx := errgroup.WithContext(ctx)
		if parallel {
			g.SetLimit(runtime.NumCPU())
		} else {
			g.SetLimit(1)
		}
		for _, p := range paths {
			p := p
			g.Go(func() error {
				if gctx.Err() != nil {
					return nil
				}
				if _, err := ws.AnalyzeFile(p, start); err != nil {
					log.Debug("indexing failed to analyze file", "path", p, "error", err)
				}
				return nil
			})
		}
		_ = g.Wait()

		log.Info("finished indexing workspace", "root", root, "files", len(paths), "elapsed", time.Since(start))
	}()

	return barrier
}
