package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/tsmock/core/cache"
	"github.com/tristendillon/tsmock/core/logger"
	"github.com/tristendillon/tsmock/core/models"
)

type FileWatcher interface {
	Watch(ctx context.Context) error
	Close() error
}

// FileWatcherImpl debounces events per path and hands settled source modules
// to OnChange one at a time, from the Watch goroutine.
type FileWatcherImpl struct {
	FileWatcher *models.FileWatcher
	Extensions  []string
	Cache       *cache.ContentCache
	ready       chan string
}

func NewFileWatcher(rootDir string, excludePaths, extensions []string, debounce time.Duration) (*FileWatcherImpl, error) {
	fw, err := models.NewFileWatcher(rootDir, excludePaths, debounce)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}
	return &FileWatcherImpl{
		FileWatcher: fw,
		Extensions:  extensions,
		Cache:       cache.GetCache(),
		ready:       make(chan string, 64),
	}, nil
}

// Watch blocks until ctx is done or the underlying watcher fails.
func (fw *FileWatcherImpl) Watch(ctx context.Context) error {
	if err := fw.addWatchersRecursively(fw.FileWatcher.RootDir); err != nil {
		return errors.Wrap(err, "failed to add watchers")
	}

	if err := fw.FileWatcher.OnStart(); err != nil {
		logger.Error("Watcher.OnStart failed: %v", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case path := <-fw.ready:
			fw.process(path)

		case event, ok := <-fw.FileWatcher.Watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			fw.handle(event)

		case err, ok := <-fw.FileWatcher.Watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			logger.Error("Watcher error: %v", err)
		}
	}
}

func (fw *FileWatcherImpl) handle(event fsnotify.Event) {
	if fw.shouldExcludePath(event.Name) {
		return
	}
	logger.Debug("File event: %s %s", event.Op, event.Name)

	if event.Has(fsnotify.Create) {
		if stat, err := os.Stat(event.Name); err == nil && stat.IsDir() {
			logger.Debug("Adding watcher for new directory: %s", event.Name)
			if err := fw.addWatchersRecursively(event.Name); err != nil {
				logger.Warn("Could not watch %s: %v", event.Name, err)
			}
			return
		}
	}

	if event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
		fw.Cache.RemoveContent(event.Name)
		return
	}

	if !models.IsSourceModule(event.Name, fw.Extensions) {
		return
	}
	if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
		fw.debounce(event.Name)
	}
}

// debounce restarts the timer for path; only the last event in a burst
// reaches OnChange.
func (fw *FileWatcherImpl) debounce(path string) {
	w := fw.FileWatcher
	w.Mutex.Lock()
	defer w.Mutex.Unlock()

	if timer, ok := w.Pending[path]; ok {
		timer.Stop()
	}
	w.Pending[path] = time.AfterFunc(w.Debounce, func() {
		w.Mutex.Lock()
		delete(w.Pending, path)
		w.Mutex.Unlock()
		fw.ready <- path
	})
}

func (fw *FileWatcherImpl) process(path string) {
	changed, err := fw.Cache.UpdateContent(path)
	if err != nil {
		logger.Error("Could not fingerprint %s: %v", path, err)
		return
	}
	if !changed {
		logger.Debug("Content of %s unchanged, skipping", path)
		return
	}
	if err := fw.FileWatcher.OnChange(path); err != nil {
		logger.Error("Watcher.OnChange failed for %s: %v", path, err)
	}
}

func (fw *FileWatcherImpl) Close() error {
	w := fw.FileWatcher
	w.Mutex.Lock()
	for path, timer := range w.Pending {
		timer.Stop()
		delete(w.Pending, path)
	}
	w.Mutex.Unlock()

	if err := w.OnClose(); err != nil {
		logger.Error("Watcher.OnClose failed: %v", err)
	}
	fw.Cache.LogStats()
	return w.Watcher.Close()
}

func (fw *FileWatcherImpl) shouldExcludePath(path string) bool {
	relPath, err := filepath.Rel(fw.FileWatcher.RootDir, path)
	if err != nil {
		return false
	}
	relPath = filepath.Clean(relPath)

	for _, excludePath := range fw.FileWatcher.ExcludePaths {
		excludePath = filepath.Clean(excludePath)
		if relPath == excludePath || strings.HasPrefix(relPath, excludePath+string(filepath.Separator)) {
			return true
		}
		// bare names like node_modules match at any depth
		if !strings.ContainsRune(excludePath, filepath.Separator) {
			for _, part := range strings.Split(relPath, string(filepath.Separator)) {
				if part == excludePath {
					return true
				}
			}
		}
	}
	return false
}

func (fw *FileWatcherImpl) addWatchersRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if fw.shouldExcludePath(path) {
			logger.Debug("Excluding directory: %s", path)
			return filepath.SkipDir
		}

		logger.Debug("Adding watcher for: %s", path)
		if err := fw.FileWatcher.Watcher.Add(path); err != nil {
			return errors.Wrapf(err, "failed to add watcher for %s", path)
		}
		return nil
	})
}
