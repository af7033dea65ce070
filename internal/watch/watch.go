// Package watch re-extracts source files as they change on disk. Events
// are debounced, batched, and deduplicated by content fingerprint so a
// save that does not change bytes does no work.
package watch

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/maypok86/otter"

	"github.com/declscan/declscan/internal/extract"
	"github.com/declscan/declscan/internal/lang"
	"github.com/declscan/declscan/internal/model"
	"github.com/declscan/declscan/internal/source"
)

// DefaultDebounce is the quiet period after the last event before a
// batch is processed.
const DefaultDebounce = 500 * time.Millisecond

// cacheCapacity bounds the model cache; evicted files are simply
// re-extracted on their next change.
const cacheCapacity = 10_000

// Op says what happened to a file.
type Op string

const (
	OpUpdated Op = "updated"
	OpRemoved Op = "removed"
)

// Change is one processed file event. Model is set for OpUpdated, Err
// for files that failed to load or extract.
type Change struct {
	Op    Op
	Path  string
	Model *model.Model
	Err   error
}

// cached pairs the last extracted model with a fingerprint of the bytes
// it was extracted from.
type cached struct {
	fingerprint uint64
	model       *model.Model
}

// Watcher monitors a directory tree and re-extracts changed files.
type Watcher struct {
	root     string
	watcher  *fsnotify.Watcher
	cache    otter.Cache[string, cached]
	debounce time.Duration
	callback func(changes []Change)

	ctx    context.Context
	cancel context.CancelFunc

	pending   map[string]bool
	pendingMu sync.Mutex

	timer   *time.Timer
	timerMu sync.Mutex

	stopOnce sync.Once
	doneCh   chan struct{}
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce overrides the debounce period. Non-positive keeps the
// default.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// New creates a Watcher over root. Every directory under root is watched
// recursively; only files with a registered language are processed.
func New(root string, opts ...Option) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	cache, err := otter.MustBuilder[string, cached](cacheCapacity).Build()
	if err != nil {
		fsw.Close()
		return nil, err
	}

	w := &Watcher{
		root:     root,
		watcher:  fsw,
		cache:    cache,
		debounce: DefaultDebounce,
		pending:  make(map[string]bool),
		doneCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}

	if err := w.addDirsRecursively(root); err != nil {
		fsw.Close()
		cache.Close()
		return nil, err
	}
	return w, nil
}

// Prime seeds the fingerprint cache from an initial scan so the first
// watch cycle only re-extracts files that changed after the scan.
func (w *Watcher) Prime(files []*source.File, results []extract.Result) {
	for i, f := range files {
		if i >= len(results) || results[i].Err != nil {
			continue
		}
		w.cache.Set(f.Path, cached{
			fingerprint: xxhash.Sum64(f.Content),
			model:       results[i].Model,
		})
	}
}

// Start begins delivering change batches to callback. The callback runs
// on the watch goroutine; keep it quick or hand off.
func (w *Watcher) Start(ctx context.Context, callback func(changes []Change)) error {
	if callback == nil {
		return nil
	}
	w.callback = callback
	w.ctx, w.cancel = context.WithCancel(ctx)

	go w.run()
	return nil
}

// Stop shuts the watcher down and waits for the event loop to exit.
// Idempotent.
func (w *Watcher) Stop() error {
	var err error
	w.stopOnce.Do(func() {
		if w.cancel != nil {
			w.cancel()
			<-w.doneCh
		} else {
			close(w.doneCh)
		}
		err = w.watcher.Close()
		w.cache.Close()
	})
	return err
}

func (w *Watcher) run() {
	defer close(w.doneCh)

	flushCh := make(chan struct{}, 1)

	for {
		select {
		case <-w.ctx.Done():
			w.stopTimer()
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			// New directories join the watch set.
			if event.Op&fsnotify.Create != 0 {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := w.addDirsRecursively(event.Name); err != nil {
						log.Printf("watch: failed to add directory %s: %v", event.Name, err)
					}
				}
			}
			if !w.relevant(event) {
				continue
			}
			w.pendingMu.Lock()
			w.pending[event.Name] = true
			w.pendingMu.Unlock()
			w.resetTimer(flushCh)

		case <-flushCh:
			w.flush()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("watch: %v", err)
		}
	}
}

// flush processes the accumulated paths and fires the callback.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	changes := make([]Change, 0, len(paths))
	for _, path := range paths {
		if change, ok := w.process(path); ok {
			changes = append(changes, change)
		}
	}
	if len(changes) > 0 {
		w.callback(changes)
	}
}

// process turns one changed path into a Change. Returns false when the
// file's content fingerprint is unchanged.
func (w *Watcher) process(path string) (Change, bool) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			w.cache.Delete(path)
			return Change{Op: OpRemoved, Path: path}, true
		}
		return Change{Op: OpUpdated, Path: path, Err: err}, true
	}
	if source.IsBinary(content) || int64(len(content)) > source.DefaultMaxFileSize {
		return Change{}, false
	}

	fingerprint := xxhash.Sum64(content)
	if prev, ok := w.cache.Get(path); ok && prev.fingerprint == fingerprint {
		return Change{}, false
	}

	f, err := source.NewFromPath(path, content)
	if err != nil {
		return Change{Op: OpUpdated, Path: path, Err: err}, true
	}
	m, err := extract.Extract(f)
	if err != nil {
		return Change{Op: OpUpdated, Path: path, Err: err}, true
	}

	w.cache.Set(path, cached{fingerprint: fingerprint, model: m})
	return Change{Op: OpUpdated, Path: path, Model: m}, true
}

func (w *Watcher) resetTimer(flushCh chan struct{}) {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()

	if w.timer != nil {
		if !w.timer.Stop() {
			select {
			case <-w.timer.C:
			default:
			}
		}
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		select {
		case flushCh <- struct{}{}:
		default:
		}
	})
}

func (w *Watcher) stopTimer() {
	w.timerMu.Lock()
	defer w.timerMu.Unlock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
}

// relevant filters events down to write/create/remove of known source
// files.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	_, ok := lang.ByPath(event.Name)
	return ok
}

func (w *Watcher) addDirsRecursively(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			if path == root {
				return err
			}
			log.Printf("watch: cannot access %s: %v", path, err)
			return nil
		}
		if !info.IsDir() {
			return nil
		}
		if name := info.Name(); name != filepath.Base(root) && len(name) > 1 && name[0] == '.' {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			log.Printf("watch: cannot watch %s: %v", path, err)
		}
		return nil
	})
}
