package analyzer

import (
	"sync"
	"time"

	"github.com/gnlang/gnls/internal/store"
)

// CacheKey binds an AnalyzedFile to the set of document versions it was
// built from: itself, every file it transitively imports, and the
// workspace's BUILDCONFIG.gn. Verify re-checks all of them against the
// Store's current state.
//
// request_time — the moment the triggering LSP request arrived — is
// remembered across calls: a second Verify for the same request_time
// returns the first call's answer without touching the filesystem again,
// so one user request never re-stats the same file twice.
type CacheKey struct {
	versions map[string]store.Version

	mu              sync.Mutex
	haveLastRequest bool
	lastRequest     time.Time
	lastResult      bool
}

// NewCacheKey captures the versions of every path recorded in versions
// (path -> the version observed while building the file this key guards).
func NewCacheKey(versions map[string]store.Version) *CacheKey {
	return &CacheKey{versions: versions}
}

// Verify reports whether every path recorded in this key still has the
// same version in st as when the key was built.
func (k *CacheKey) Verify(now time.Time, st *store.Store) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	if k.haveLastRequest && k.lastRequest.Equal(now) {
		return k.lastResult
	}

	ok := true
	for p, want := range k.versions {
		got, err := st.ReadVersion(p)
		if err != nil || !got.Equal(want) {
			ok = false
			break
		}
	}

	k.lastRequest = now
	k.haveLastRequest = true
	k.lastResult = ok
	return ok
}
