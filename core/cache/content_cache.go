package cache

import (
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/errors"
	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/logger"
)

// ContentEntry tracks the last observed state of one file.
type ContentEntry struct {
	FilePath    string
	ContentHash uint64
	ModTime     time.Time
	Size        int64
}

type Stats struct {
	TotalFiles  int
	CacheHits   int64
	CacheMisses int64
	HitRate     float64
}

// ContentCache answers "did this file's content change since I last looked".
// Size and modtime are checked first; the hash is only computed when either
// differs.
type ContentCache struct {
	fs      afero.Fs
	entries map[string]*ContentEntry
	mutex   sync.RWMutex
	stats   struct {
		hits   int64
		misses int64
	}
}

func NewContentCache(fs afero.Fs) *ContentCache {
	return &ContentCache{
		fs:      fs,
		entries: make(map[string]*ContentEntry),
	}
}

// UpdateContent records the current state of filePath and reports whether it
// differs from the previous one. A file seen for the first time counts as
// changed, as does a cached file that has been removed.
func (cc *ContentCache) UpdateContent(filePath string) (bool, error) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()

	stat, err := cc.fs.Stat(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			if _, exists := cc.entries[filePath]; exists {
				logger.Debug("ContentCache: File deleted: %s", filePath)
				delete(cc.entries, filePath)
				return true, nil
			}
			return false, nil
		}
		return false, errors.Wrapf(err, "failed to stat file %s", filePath)
	}

	existing, exists := cc.entries[filePath]
	if exists && stat.Size() == existing.Size && stat.ModTime().Equal(existing.ModTime) {
		cc.stats.hits++
		return false, nil
	}

	hash, err := cc.hash(filePath)
	if err != nil {
		return false, err
	}

	if !exists {
		logger.Debug("ContentCache: New file detected: %s", filePath)
		cc.stats.misses++
		cc.entries[filePath] = &ContentEntry{FilePath: filePath, ContentHash: hash, ModTime: stat.ModTime(), Size: stat.Size()}
		return true, nil
	}

	if hash != existing.ContentHash {
		logger.Debug("ContentCache: Content changed for %s (%016x -> %016x)", filePath, existing.ContentHash, hash)
		cc.stats.misses++
		cc.entries[filePath] = &ContentEntry{FilePath: filePath, ContentHash: hash, ModTime: stat.ModTime(), Size: stat.Size()}
		return true, nil
	}

	// editor touched the file without changing it
	existing.ModTime = stat.ModTime()
	existing.Size = stat.Size()
	cc.stats.hits++
	return false, nil
}

func (cc *ContentCache) GetContent(filePath string) (*ContentEntry, bool) {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()
	entry, exists := cc.entries[filePath]
	return entry, exists
}

func (cc *ContentCache) RemoveContent(filePath string) {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	delete(cc.entries, filePath)
}

func (cc *ContentCache) GetStats() Stats {
	cc.mutex.RLock()
	defer cc.mutex.RUnlock()

	total := cc.stats.hits + cc.stats.misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(cc.stats.hits) / float64(total) * 100
	}
	return Stats{
		TotalFiles:  len(cc.entries),
		CacheHits:   cc.stats.hits,
		CacheMisses: cc.stats.misses,
		HitRate:     hitRate,
	}
}

func (cc *ContentCache) LogStats() {
	s := cc.GetStats()
	logger.Debug("ContentCache: %d files, %d hits, %d misses (%.1f%% hit rate)",
		s.TotalFiles, s.CacheHits, s.CacheMisses, s.HitRate)
}

func (cc *ContentCache) Clear() {
	cc.mutex.Lock()
	defer cc.mutex.Unlock()
	cc.entries = make(map[string]*ContentEntry)
	cc.stats.hits = 0
	cc.stats.misses = 0
}

func (cc *ContentCache) hash(filePath string) (uint64, error) {
	content, err := afero.ReadFile(cc.fs, filePath)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to read %s", filePath)
	}
	return xxhash.Sum64(content), nil
}
