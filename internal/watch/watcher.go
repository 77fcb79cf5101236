// Package watch recompiles services when their documents change and pushes
// build events to websocket clients.
package watch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrNoHandler is returned by NewFileWatcher when no change handler is given.
var ErrNoHandler = errors.New("file watcher requires a change handler")

// DefaultDelay is the debounce window used when none is given.
const DefaultDelay = 200 * time.Millisecond

// FileWatcher monitors a data directory, plus individual extra files, and
// reports debounced batches of changed paths.
type FileWatcher struct {
	watcher   *fsnotify.Watcher
	debouncer *Debouncer
	root      string
	extra     map[string]bool
	log       *zap.Logger
	stopChan  chan struct{}
	wg        sync.WaitGroup
}

// NewFileWatcher creates a watcher over root. Extra files (such as the
// overrides file) are watched through their parent directory. onChange
// receives the sorted set of changed paths.
func NewFileWatcher(root string, extra []string, delay time.Duration, log *zap.Logger, onChange func([]string) error) (*FileWatcher, error) {
	if onChange == nil {
		return nil, ErrNoHandler
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if delay <= 0 {
		delay = DefaultDelay
	}
	if log == nil {
		log = zap.NewNop()
	}

	fw := &FileWatcher{
		watcher:   watcher,
		debouncer: NewDebouncer(delay),
		root:      filepath.Clean(root),
		extra:     make(map[string]bool, len(extra)),
		log:       log,
		stopChan:  make(chan struct{}),
	}
	for _, f := range extra {
		if f != "" {
			fw.extra[filepath.Clean(f)] = true
		}
	}

	fw.debouncer.SetCallback(func(files []string) {
		if err := onChange(files); err != nil {
			fw.log.Error("failed to handle changes", zap.Strings("files", files), zap.Error(err))
		}
	})

	return fw, nil
}

// Start adds watches for every directory under the root and begins the
// event loop.
func (fw *FileWatcher) Start() error {
	err := filepath.WalkDir(fw.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && !isHidden(path) {
			return fw.add(path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to watch %s: %w", fw.root, err)
	}

	for f := range fw.extra {
		if err := fw.add(filepath.Dir(f)); err != nil {
			return err
		}
	}

	fw.wg.Add(1)
	go fw.watch()
	return nil
}

func (fw *FileWatcher) add(dir string) error {
	if err := fw.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}
	fw.log.Debug("watching directory", zap.String("dir", dir))
	return nil
}

// Stop stops the file watcher
func (fw *FileWatcher) Stop() error {
	select {
	case <-fw.stopChan:
		return nil
	default:
		close(fw.stopChan)
	}

	fw.wg.Wait()
	fw.debouncer.Stop()
	return fw.watcher.Close()
}

func (fw *FileWatcher) watch() {
	defer fw.wg.Done()

	for {
		select {
		case event, ok := <-fw.watcher.Events:
			if !ok {
				return
			}
			fw.handle(event)

		case err, ok := <-fw.watcher.Errors:
			if !ok {
				return
			}
			fw.log.Warn("watch error", zap.Error(err))

		case <-fw.stopChan:
			return
		}
	}
}

func (fw *FileWatcher) handle(event fsnotify.Event) {
	path := filepath.Clean(event.Name)

	// New service or version directories must be watched too.
	if event.Has(fsnotify.Create) && fw.inRoot(path) && isDir(path) {
		if err := fw.add(path); err != nil {
			fw.log.Warn("failed to watch new directory", zap.Error(err))
		}
		return
	}

	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if !fw.Relevant(path) {
		return
	}

	fw.log.Debug("file changed", zap.String("file", path), zap.String("op", event.Op.String()))
	fw.debouncer.Add(path)
}

// Relevant reports whether a change to path should trigger a rebuild: a
// JSON document under the root or one of the extra files.
func (fw *FileWatcher) Relevant(path string) bool {
	path = filepath.Clean(path)
	if fw.extra[path] {
		return true
	}
	if !fw.inRoot(path) || isHidden(path) {
		return false
	}
	return strings.EqualFold(filepath.Ext(path), ".json")
}

func (fw *FileWatcher) inRoot(path string) bool {
	rel, err := filepath.Rel(fw.root, path)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

// ServicesFor maps changed paths to the services they belong to: the first
// path element below root. all is true when a path lies outside root, such
// as the overrides file, and every service must be rebuilt.
func ServicesFor(root string, files []string) (services []string, all bool) {
	seen := make(map[string]bool)
	for _, f := range files {
		rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(f))
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			all = true
			continue
		}
		parts := strings.SplitN(filepath.ToSlash(rel), "/", 2)
		if len(parts) < 2 {
			// A document directly under root belongs to no service.
			continue
		}
		if !seen[parts[0]] {
			seen[parts[0]] = true
			services = append(services, parts[0])
		}
	}
	sort.Strings(services)
	return services, all
}

func isHidden(path string) bool {
	base := filepath.Base(path)
	return len(base) > 1 && strings.HasPrefix(base, ".")
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Debouncer collects file changes and triggers callbacks after a delay
type Debouncer struct {
	duration time.Duration
	timer    *time.Timer
	files    map[string]struct{}
	mutex    sync.Mutex
	callback func([]string)
	stopped  bool
}

// NewDebouncer creates a new debouncer instance
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{
		duration: duration,
		files:    make(map[string]struct{}),
	}
}

// Add records a file and restarts the delay.
func (d *Debouncer) Add(file string) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.stopped {
		return
	}
	d.files[file] = struct{}{}

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, d.flush)
}

// flush triggers the callback with accumulated files, outside the lock so
// the callback may take its time.
func (d *Debouncer) flush() {
	d.mutex.Lock()
	if len(d.files) == 0 || d.stopped {
		d.mutex.Unlock()
		return
	}
	files := make([]string, 0, len(d.files))
	for file := range d.files {
		files = append(files, file)
	}
	d.files = make(map[string]struct{})
	callback := d.callback
	d.mutex.Unlock()

	sort.Strings(files)
	if callback != nil {
		callback(files)
	}
}

// SetCallback sets the callback function
func (d *Debouncer) SetCallback(callback func([]string)) {
	d.mutex.Lock()
	defer d.mutex.Unlock()
	d.callback = callback
}

// Stop cancels any pending flush.
func (d *Debouncer) Stop() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.stopped = true
}
