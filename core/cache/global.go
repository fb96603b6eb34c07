package cache

import (
	"sync"

	"github.com/spf13/afero"
	"github.com/tristendillon/tsmock/core/logger"
)

var (
	globalCache *ContentCache
	cacheOnce   sync.Once
)

// GetCache returns the process-wide cache backed by the OS filesystem.
func GetCache() *ContentCache {
	cacheOnce.Do(func() {
		globalCache = NewContentCache(afero.NewOsFs())
		logger.Debug("Initialized global content cache")
	})
	return globalCache
}
