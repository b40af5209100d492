package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"

	"github.com/sieve/sieve/internal/types"
)

// Version is bumped whenever scoring changes so stale entries are dropped.
const Version = 1

// Entry is the cached outcome of scanning one file.
type Entry struct {
	Hash     string          `json:"hash"`
	Findings []types.Finding `json:"findings,omitempty"`
}

// DB is the incremental scan cache: path relative to the scan root ->
// content hash and the findings produced for that content.
type DB struct {
	Version int              `json:"version"`
	Entries map[string]Entry `json:"entries"`
}

// New returns an empty cache at the current Version.
func New() DB {
	return DB{Version: Version, Entries: map[string]Entry{}}
}

// FileName is the incremental cache outside a repository. Inside one it is
// kept at .git/sievecache.json so it cannot be committed.
const FileName = ".sievecache.json"

func defaultPath(root string) string {
	gitDir := filepath.Join(root, ".git")
	if st, err := os.Stat(gitDir); err == nil && st.IsDir() {
		return filepath.Join(gitDir, "sievecache.json")
	}
	return filepath.Join(root, FileName)
}

// HashContent returns the xxhash64 of b as fixed-width hex.
func HashContent(b []byte) string {
	return fmt.Sprintf("%016x", xxhash.Sum64(b))
}

// Load reads the cache for root. A missing cache is not an error; a corrupt
// or outdated one is discarded and reported.
func Load(root string) (DB, error) {
	p := defaultPath(root)
	f, err := os.ReadFile(p)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return New(), nil
		}
		return New(), err
	}
	var db DB
	if err := json.Unmarshal(f, &db); err != nil {
		return New(), fmt.Errorf("corrupt cache %s: %w", p, err)
	}
	if db.Version != Version {
		return New(), nil
	}
	if db.Entries == nil {
		db.Entries = map[string]Entry{}
	}
	return db, nil
}

func Save(root string, db DB) error {
	if db.Entries == nil {
		return errors.New("empty cache")
	}
	db.Version = Version
	b, err := json.Marshal(db)
	if err != nil {
		return err
	}
	return os.WriteFile(defaultPath(root), b, 0o644)
}

// Lookup returns the cached findings for rel when its content hash is
// unchanged.
func (db DB) Lookup(rel, hash string) ([]types.Finding, bool) {
	e, ok := db.Entries[rel]
	if !ok || e.Hash != hash {
		return nil, false
	}
	return e.Findings, true
}

// Store records the findings for rel at hash.
func (db DB) Store(rel, hash string, findings []types.Finding) {
	db.Entries[rel] = Entry{Hash: hash, Findings: findings}
}

// Prune drops entries for paths not present in keep and returns how many
// were removed.
func (db DB) Prune(keep map[string]bool) int {
	n := 0
	for p := range db.Entries {
		if !keep[p] {
			delete(db.Entries, p)
			n++
		}
	}
	return n
}
