package status

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const (
	// DefaultDebounceInterval is how long to wait after the last flag change
	// in a sample directory before notifying.
	DefaultDebounceInterval = 100 * time.Millisecond
)

// ChangeFunc is called when a sample's flags change.
type ChangeFunc func(sampleName string)

// LogFunc is called to log messages.
type LogFunc func(format string, args ...interface{})

// Watcher monitors a results directory for flag file changes.
type Watcher struct {
	resultsDir       string
	changeFn         ChangeFunc
	logFn            LogFunc
	debounceInterval time.Duration

	watcher   *fsnotify.Watcher
	stopChan  chan struct{}
	doneChan  chan struct{}
	closeOnce sync.Once
	started   bool

	// debounce state per sample
	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewWatcher creates a watcher for resultsDir. logFn may be nil.
func NewWatcher(resultsDir string, changeFn ChangeFunc, logFn LogFunc) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if logFn == nil {
		logFn = func(format string, args ...interface{}) {}
	}

	return &Watcher{
		resultsDir:       resultsDir,
		changeFn:         changeFn,
		logFn:            logFn,
		debounceInterval: DefaultDebounceInterval,
		watcher:          fsWatcher,
		stopChan:         make(chan struct{}),
		doneChan:         make(chan struct{}),
		pending:          make(map[string]*time.Timer),
	}, nil
}

// SetDebounceInterval overrides the debounce interval. Call before Start.
func (w *Watcher) SetDebounceInterval(d time.Duration) {
	w.debounceInterval = d
}

// Start begins watching. The results directory is created if missing so
// that samples started later are picked up.
func (w *Watcher) Start() error {
	if err := os.MkdirAll(w.resultsDir, 0755); err != nil {
		return err
	}
	if err := w.watcher.Add(w.resultsDir); err != nil {
		return err
	}

	entries, err := os.ReadDir(w.resultsDir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() {
			w.addSampleDir(filepath.Join(w.resultsDir, entry.Name()))
		}
	}

	w.started = true
	go w.processEvents()
	return nil
}

// Close stops the watcher and cancels pending notifications.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.stopChan)
		w.watcher.Close()

		w.mu.Lock()
		for _, timer := range w.pending {
			timer.Stop()
		}
		w.pending = nil
		w.mu.Unlock()

		if w.started {
			<-w.doneChan
		}
	})
}

func (w *Watcher) addSampleDir(dir string) {
	if err := w.watcher.Add(dir); err != nil {
		w.logFn("could not watch sample directory %s: %v", dir, err)
		return
	}
	w.logFn("watching sample directory: %s", dir)
}

func (w *Watcher) processEvents() {
	defer close(w.doneChan)

	for {
		select {
		case <-w.stopChan:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logFn("watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	parentDir := filepath.Dir(path)

	// A new sample directory appeared
	if event.Has(fsnotify.Create) && parentDir == w.resultsDir {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			w.addSampleDir(path)
			w.schedule(filepath.Base(path))
			return
		}
	}

	if !IsFlagFile(filepath.Base(path)) {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	sample := w.sampleName(path)
	if sample == "" {
		return
	}
	w.schedule(sample)
}

// sampleName extracts the sample from resultsDir/<sample>/<flag file>.
func (w *Watcher) sampleName(path string) string {
	rel, err := filepath.Rel(w.resultsDir, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(rel, string(filepath.Separator))
	if len(parts) != 2 || parts[0] == ".." {
		return ""
	}
	return parts[0]
}

func (w *Watcher) schedule(sample string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.pending == nil {
		return
	}
	if timer, ok := w.pending[sample]; ok {
		timer.Stop()
	}
	w.pending[sample] = time.AfterFunc(w.debounceInterval, func() {
		w.fire(sample)
	})
}

func (w *Watcher) fire(sample string) {
	w.mu.Lock()
	if w.pending == nil {
		w.mu.Unlock()
		return
	}
	delete(w.pending, sample)
	w.mu.Unlock()

	w.logFn("flags changed for sample: %s", sample)
	w.changeFn(sample)
}
