package intensity

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"marquee/internal/dataset"
	"marquee/internal/logging"
)

// Entry is a cache key with its stored analysis.
type Entry struct {
	Key      string   `json:"key"`
	Analysis Analysis `json:"analysis"`
}

// Cache is the on-disk intensity cache: one JSON object mapping "id_<id>" or
// a normalized title to a stored Analysis.
//
// Entries are loaded once and served from memory. Writes take the in-process
// mutex and a file lock on "<path>.lock", re-read the file so updates made by
// other processes are kept, apply the change, and replace the file atomically.
type Cache struct {
	path    string
	logger  *slog.Logger
	lock    *flock.Flock
	mu      sync.RWMutex
	entries map[string]Analysis
	modTime time.Time
}

// errCorruptCache marks a cache file that is not a JSON object.
var errCorruptCache = errors.New("corrupt intensity cache")

// cacheFile is the decoded file. undecoded holds entries whose payload no
// longer fits Analysis; they never hit but are written back unchanged.
type cacheFile struct {
	entries   map[string]Analysis
	undecoded map[string]json.RawMessage
}

func newCacheFile() cacheFile {
	return cacheFile{entries: make(map[string]Analysis), undecoded: make(map[string]json.RawMessage)}
}

func (f cacheFile) has(key string) bool {
	if _, ok := f.entries[key]; ok {
		return true
	}
	_, ok := f.undecoded[key]
	return ok
}

func (f cacheFile) remove(key string) {
	delete(f.entries, key)
	delete(f.undecoded, key)
}

// NewCache opens the cache at path. An empty path yields a cache that never
// hits and discards writes. A corrupt file is logged and treated as empty.
func NewCache(path string, logger *slog.Logger) *Cache {
	logger = logging.NewComponentLogger(logger, "intensity_cache")
	c := &Cache{
		path:    strings.TrimSpace(path),
		logger:  logger,
		entries: make(map[string]Analysis),
	}
	if c.path == "" {
		return c
	}
	c.lock = flock.New(c.path + ".lock")
	if err := c.load(); err != nil {
		logging.WarnWithContext(logger, "failed to load intensity cache", "intensity_cache_load_failed",
			logging.Error(err),
			logging.String("path", c.path),
			logging.String(logging.FieldErrorHint, "delete or repair the cache file"),
			logging.String(logging.FieldImpact, "cached analyses are recomputed"),
		)
	}
	return c
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Lookup finds a stored analysis. When id > 0 the "id_<id>" entry is tried
// first; then the normalized title is tried as a key, then every entry's
// stored title is compared in sorted key order. Only successful entries hit.
// Hits are annotated cached and successful.
func (c *Cache) Lookup(title string, id int64) (Analysis, bool) {
	if c.path == "" {
		return Analysis{}, false
	}
	c.refreshIfChanged()

	c.mu.RLock()
	defer c.mu.RUnlock()

	if id > 0 {
		if hit, ok := c.hit(IDKey(id)); ok {
			return hit, true
		}
	}
	normalized := dataset.NormalizeTitle(title)
	if normalized == "" {
		return Analysis{}, false
	}
	if hit, ok := c.hit(normalized); ok {
		return hit, true
	}
	keys := make([]string, 0, len(c.entries))
	for key := range c.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if dataset.NormalizeTitle(c.entries[key].MovieTitle) != normalized {
			continue
		}
		if hit, ok := c.hit(key); ok {
			return hit, true
		}
	}
	return Analysis{}, false
}

// LookupID finds the entry stored under "id_<id>".
func (c *Cache) LookupID(id int64) (Analysis, bool) {
	if id <= 0 {
		return Analysis{}, false
	}
	return c.Lookup("", id)
}

func (c *Cache) hit(key string) (Analysis, bool) {
	stored, ok := c.entries[key]
	if !ok || !stored.Success {
		return Analysis{}, false
	}
	stored.Success = true
	stored.Cached = true
	stored.CacheKey = key
	return stored, true
}

// Key returns the key an analysis is stored under: "id_<id>" when the movie
// id is known, otherwise the normalized title.
func Key(analysis Analysis) string {
	if id := analysis.ID(); id > 0 {
		return IDKey(id)
	}
	return dataset.NormalizeTitle(analysis.MovieTitle)
}

// Store persists a successful analysis and returns the key used. Failed and
// placeholder analyses are rejected.
func (c *Cache) Store(analysis Analysis) (string, error) {
	if !analysis.Success || analysis.Placeholder {
		return "", errors.New("only successful analyses are cached")
	}
	key := Key(analysis)
	if key == "" {
		return "", errors.New("analysis has no movie id or title")
	}
	if c.path == "" {
		return key, nil
	}
	analysis.Cached = false
	analysis.CacheKey = ""
	analysis.Error = ""
	analysis.ErrorKind = ""

	err := c.update(func(file cacheFile) error {
		file.remove(key)
		file.entries[key] = analysis
		return nil
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("cached intensity analysis",
		logging.String("key", key),
		logging.String(logging.FieldTitle, analysis.MovieTitle),
	)
	return key, nil
}

// SetChartPath records a regenerated chart on an existing entry.
func (c *Cache) SetChartPath(key, chartPath string) error {
	if c.path == "" {
		return nil
	}
	return c.update(func(file cacheFile) error {
		stored, ok := file.entries[key]
		if !ok {
			return fmt.Errorf("cache key %q not found", key)
		}
		stored.ChartPath = chartPath
		file.entries[key] = stored
		return nil
	})
}

// Remove deletes one entry. ref may be a stored key ("id_42") or a title.
// It returns the key that was removed.
func (c *Cache) Remove(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return "", errors.New("cache key cannot be empty")
	}
	if c.path == "" {
		return "", fmt.Errorf("cache key %q not found", ref)
	}
	var removed string
	err := c.update(func(file cacheFile) error {
		for _, candidate := range []string{ref, dataset.NormalizeTitle(ref)} {
			if file.has(candidate) {
				removed = candidate
				break
			}
		}
		if removed == "" {
			normalized := dataset.NormalizeTitle(ref)
			for _, entry := range sortedEntries(file.entries) {
				if dataset.NormalizeTitle(entry.Analysis.MovieTitle) == normalized {
					removed = entry.Key
					break
				}
			}
		}
		if removed == "" {
			return fmt.Errorf("cache key %q not found", ref)
		}
		file.remove(removed)
		return nil
	})
	if err != nil {
		return "", err
	}
	c.logger.Debug("removed intensity analysis", logging.String("key", removed))
	return removed, nil
}

// Clear removes every entry and persists the empty cache.
func (c *Cache) Clear() error {
	if c.path == "" {
		return nil
	}
	return c.update(func(file cacheFile) error {
		clear(file.entries)
		clear(file.undecoded)
		return nil
	})
}

// List returns every entry, including legacy failed ones, sorted by key.
func (c *Cache) List() []Entry {
	if c.path == "" {
		return []Entry{}
	}
	c.refreshIfChanged()

	c.mu.RLock()
	defer c.mu.RUnlock()
	return sortedEntries(c.entries)
}

// Count returns the number of stored entries.
func (c *Cache) Count() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func sortedEntries(entries map[string]Analysis) []Entry {
	out := make([]Entry, 0, len(entries))
	for key, analysis := range entries {
		out = append(out, Entry{Key: key, Analysis: analysis})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// update runs a read-modify-write cycle under both locks. A corrupt file is
// moved aside to "<path>.corrupt" and the cycle starts from an empty cache.
func (c *Cache) update(mutate func(cacheFile) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("create cache directory: %w", err)
	}
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("lock cache file: %w", err)
	}
	defer func() {
		if err := c.lock.Unlock(); err != nil {
			c.logger.Warn("failed to release cache lock", logging.Error(err))
		}
	}()

	current, _, err := readEntries(c.path)
	if err != nil {
		if !errors.Is(err, errCorruptCache) {
			return err
		}
		c.quarantine(err)
		current = newCacheFile()
	}
	if err := mutate(current); err != nil {
		return err
	}
	if err := writeEntries(c.path, current); err != nil {
		return fmt.Errorf("persist cache: %w", err)
	}
	c.entries = current.entries
	if info, statErr := os.Stat(c.path); statErr == nil {
		c.modTime = info.ModTime()
	}
	return nil
}

func (c *Cache) quarantine(cause error) {
	backup := c.path + ".corrupt"
	attrs := []logging.Attr{
		logging.Error(cause),
		logging.String("path", c.path),
		logging.String(logging.FieldImpact, "previous cached analyses are recomputed"),
	}
	if err := os.Rename(c.path, backup); err != nil {
		attrs = append(attrs,
			logging.String("rename_error", err.Error()),
			logging.String(logging.FieldErrorHint, "the corrupt file is overwritten by the next write"),
		)
	} else {
		attrs = append(attrs,
			logging.String("backup_path", backup),
			logging.String(logging.FieldErrorHint, "inspect the backup file to recover entries by hand"),
		)
	}
	logging.WarnWithContext(c.logger, "replacing corrupt intensity cache", "intensity_cache_corrupt", attrs...)
}

func (c *Cache) load() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	file, modTime, err := readEntries(c.path)
	c.modTime = modTime
	if err != nil {
		return err
	}
	c.entries = file.entries
	if len(file.undecoded) > 0 {
		logging.WarnWithContext(c.logger, "intensity cache has unreadable entries", "intensity_cache_entries_skipped",
			logging.Int("count", len(file.undecoded)),
			logging.String("path", c.path),
			logging.String(logging.FieldErrorHint, "remove the entries with marquee cache remove"),
			logging.String(logging.FieldImpact, "those entries never hit but are kept on disk"),
		)
	}
	c.logger.Debug("loaded intensity cache",
		logging.Int("entry_count", len(file.entries)),
		logging.String("path", c.path),
	)
	return nil
}

// refreshIfChanged reloads the file when another process replaced it.
func (c *Cache) refreshIfChanged() {
	info, err := os.Stat(c.path)
	if err != nil {
		return
	}
	c.mu.RLock()
	unchanged := info.ModTime().Equal(c.modTime)
	c.mu.RUnlock()
	if unchanged {
		return
	}
	if err := c.load(); err != nil {
		c.logger.Debug("intensity cache reload failed", logging.Error(err))
	}
}

// readEntries parses the cache file. Entries without a success flag come
// from older files that only stored successful analyses; entries with an
// explicit false flag, or an error and no flag, are kept but never hit.
// A file that is not a JSON object yields errCorruptCache.
func readEntries(path string) (cacheFile, time.Time, error) {
	file := newCacheFile()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return file, time.Time{}, nil
		}
		return file, time.Time{}, fmt.Errorf("read cache file: %w", err)
	}
	var modTime time.Time
	if info, statErr := os.Stat(path); statErr == nil {
		modTime = info.ModTime()
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return file, modTime, nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return file, modTime, fmt.Errorf("%w: %v", errCorruptCache, err)
	}
	for key, payload := range raw {
		var analysis Analysis
		if err := json.Unmarshal(payload, &analysis); err != nil {
			file.undecoded[key] = payload
			continue
		}
		var flags struct {
			Success *bool `json:"success"`
		}
		_ = json.Unmarshal(payload, &flags)
		switch {
		case flags.Success != nil:
			analysis.Success = *flags.Success
		default:
			analysis.Success = strings.TrimSpace(analysis.Error) == ""
		}
		analysis.Cached = false
		analysis.CacheKey = ""
		file.entries[key] = analysis
	}
	return file, modTime, nil
}

func writeEntries(path string, file cacheFile) error {
	out := make(map[string]json.RawMessage, len(file.entries)+len(file.undecoded))
	for key, payload := range file.undecoded {
		out[key] = payload
	}
	for key, analysis := range file.entries {
		payload, err := json.Marshal(analysis)
		if err != nil {
			return fmt.Errorf("marshal cache entry %q: %w", key, err)
		}
		out[key] = payload
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}
	return nil
}
