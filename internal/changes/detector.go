package changes

import (
	"os"
	"path/filepath"
	"time"

	"github.com/fulmenhq/docneat/internal/cache"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// Classification partitions a scan against the cache.
type Classification struct {
	New       []string
	Modified  []string
	Unchanged []string
	// Deleted holds cache keys that no longer appear in the scan.
	Deleted []string
}

// ToProcess returns new then modified paths.
func (c Classification) ToProcess() []string {
	out := make([]string, 0, len(c.New)+len(c.Modified))
	out = append(out, c.New...)
	return append(out, c.Modified...)
}

// Counts is the size of each class.
type Counts struct {
	New       int `json:"new"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
	Deleted   int `json:"deleted"`
}

// Total is the number of scanned documents.
func (c Counts) Total() int { return c.New + c.Modified + c.Unchanged }

func (c Classification) Counts() Counts {
	return Counts{
		New:       len(c.New),
		Modified:  len(c.Modified),
		Unchanged: len(c.Unchanged),
		Deleted:   len(c.Deleted),
	}
}

// Detector classifies documents under root. Cache keys are slash paths
// relative to root.
type Detector struct {
	store *cache.Store
	root  string
	log   *logger.Logger
	now   func() time.Time
}

func NewDetector(store *cache.Store, root string, log *logger.Logger) *Detector {
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	return &Detector{store: store, root: root, log: log.With("changes"), now: time.Now}
}

// Key maps a document path to its cache key.
func (d *Detector) Key(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.ToSlash(path)
	}
	rel, err := filepath.Rel(d.root, abs)
	if err != nil {
		return filepath.ToSlash(abs)
	}
	return filepath.ToSlash(rel)
}

// Classify compares paths against the cache. With force every scanned path
// is modified. Cached entries missing from paths are reported deleted and
// purged from the cache.
func (d *Detector) Classify(paths []string, force bool) (Classification, error) {
	var c Classification
	seen := make(map[string]bool, len(paths))

	for _, p := range paths {
		key := d.Key(p)
		seen[key] = true
		if force {
			c.Modified = append(c.Modified, p)
			continue
		}
		entry, ok := d.store.Get(key)
		if !ok {
			c.New = append(c.New, p)
			continue
		}
		hash, err := cache.Fingerprint(p)
		if err != nil {
			d.log.Warn("fingerprint failed, treating as modified",
				logger.String("path", p), logger.Err(err))
			c.Modified = append(c.Modified, p)
			continue
		}
		if hash != entry.Hash {
			c.Modified = append(c.Modified, p)
		} else {
			c.Unchanged = append(c.Unchanged, p)
		}
	}

	for _, key := range d.store.Keys() {
		if !seen[key] {
			c.Deleted = append(c.Deleted, key)
		}
	}
	if len(c.Deleted) > 0 {
		d.log.Debug("purging deleted documents", logger.Int("count", len(c.Deleted)))
		if err := d.store.Delete(c.Deleted...); err != nil {
			return c, err
		}
	}

	counts := c.Counts()
	d.log.Debug("classified documents",
		logger.Int("new", counts.New),
		logger.Int("modified", counts.Modified),
		logger.Int("unchanged", counts.Unchanged),
		logger.Int("deleted", counts.Deleted))
	return c, nil
}

// RecordOutcome stores a fresh fingerprint and the validation outcome for
// path and saves the cache.
func (d *Detector) RecordOutcome(path, status string, errs, warns int) error {
	hash, err := cache.Fingerprint(path)
	if err != nil {
		return &cache.Error{Op: "fingerprint", Path: path, Err: err}
	}
	var mtime time.Time
	if info, err := os.Stat(path); err == nil {
		mtime = info.ModTime().UTC()
	}
	return d.store.Put(d.Key(path), cache.Entry{
		Hash:             hash,
		LastProcessed:    d.now().UTC(),
		LastModified:     mtime,
		ValidationStatus: status,
		ErrorCount:       errs,
		WarningCount:     warns,
	})
}
