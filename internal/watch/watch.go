// Package watch monitors a directory for freshly-written candidate
// subtitle files and debounces them before triggering an analysis, per
// spec §6's "watch mode" CLI surface. Grounded on the teacher's
// internal/core/watcher package.
package watch

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors a directory for new or rewritten candidate subtitle
// files and debounces them before invoking OnCandidate.
type Watcher struct {
	watcher     *fsnotify.Watcher
	watchPath   string
	lang        string
	debounce    time.Duration
	mu          sync.Mutex
	timers      map[string]*time.Timer
	OnCandidate func(path string)
	OnError     func(error)
	done        chan struct{}
}

// New creates a watcher rooted at watchPath. Only files matching
// "*.<lang>.srt" (case-insensitive) are eligible candidates.
func New(watchPath, lang string) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:   fw,
		watchPath: watchPath,
		lang:      strings.ToLower(lang),
		debounce:  3 * time.Second,
		timers:    make(map[string]*time.Timer),
		done:      make(chan struct{}),
	}, nil
}

// Start begins monitoring the directory in a background goroutine.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.watchPath); err != nil {
		return err
	}
	go w.loop()
	return nil
}

// Stop halts monitoring and releases the underlying inotify handle.
func (w *Watcher) Stop() {
	close(w.done)
	w.watcher.Close()
}

func (w *Watcher) loop() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			if w.OnError != nil {
				w.OnError(err)
			}
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&fsnotify.Create != fsnotify.Create && event.Op&fsnotify.Write != fsnotify.Write {
		return
	}
	if !w.isCandidate(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if t, exists := w.timers[event.Name]; exists {
		t.Stop()
	}
	w.timers[event.Name] = time.AfterFunc(w.debounce, func() {
		w.fire(event.Name)
	})
}

func (w *Watcher) isCandidate(name string) bool {
	lower := strings.ToLower(name)
	if !strings.HasSuffix(lower, ".srt") {
		return false
	}
	return strings.HasSuffix(lower, "."+w.lang+".srt")
}

func (w *Watcher) fire(path string) {
	w.mu.Lock()
	delete(w.timers, path)
	w.mu.Unlock()

	if !stableSize(path) {
		time.AfterFunc(time.Second, func() { w.fire(path) })
		return
	}
	if w.OnCandidate != nil {
		w.OnCandidate(path)
	}
}

// stableSize reports whether a file's size has stopped changing,
// meaning the writer has likely finished flushing it to disk.
func stableSize(path string) bool {
	info1, err := os.Stat(path)
	if err != nil || info1.Size() == 0 {
		return false
	}
	time.Sleep(300 * time.Millisecond)
	info2, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info1.Size() == info2.Size()
}

// Directory is a convenience constructor mirroring the teacher's
// WatchDirectory helper: create, wire the callback, and start in one
// call.
func Directory(path, lang string, onCandidate func(string)) (*Watcher, error) {
	w, err := New(path, lang)
	if err != nil {
		return nil, err
	}
	w.OnCandidate = onCandidate
	if err := w.Start(); err != nil {
		return nil, err
	}
	return w, nil
}
