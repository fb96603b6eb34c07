package models

import (
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/fsnotify/fsnotify"
	"github.com/tristendillon/tsmock/core/logger"
)

type FileWatcher struct {
	Watcher      *fsnotify.Watcher
	RootDir      string
	ExcludePaths []string
	Debounce     time.Duration
	Pending      map[string]*time.Timer
	Mutex        sync.Mutex
	OnStart      func() error
	OnChange     func(path string) error
	OnClose      func() error
}

func NewFileWatcher(rootDir string, excludePaths []string, debounce time.Duration) (*FileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.Wrap(err, "failed to create file watcher")
	}

	fw := &FileWatcher{
		Watcher:      watcher,
		RootDir:      rootDir,
		ExcludePaths: append([]string{".git"}, excludePaths...),
		Debounce:     debounce,
		Pending:      make(map[string]*time.Timer),
		OnStart:      func() error { return nil },
		OnChange:     func(string) error { return errors.New("OnChange not set") },
		OnClose:      func() error { return nil },
	}
	logger.Debug("Excluding paths: %v", fw.ExcludePaths)

	return fw, nil
}

func (fw *FileWatcher) AddOnStartFunc(onStart func() error) {
	fw.OnStart = onStart
}

func (fw *FileWatcher) AddOnChangeFunc(onChange func(path string) error) {
	fw.OnChange = onChange
}

func (fw *FileWatcher) AddOnCloseFunc(onClose func() error) {
	fw.OnClose = onClose
}
