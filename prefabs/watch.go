package prefabs

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ReloadKind says which live-reload path an edited prefab feeds.
type ReloadKind int

const (
	// ReloadSettings is an edit to the perception presets; the game swaps
	// the active difficulty values without restarting.
	ReloadSettings ReloadKind = iota
	// ReloadSpec is an edit to an archetype or level yaml; those are read
	// at spawn time, so the game only logs that a restart picks it up.
	ReloadSpec
	// ReloadScript is an edit to a tengo behavior script; scripted enemies
	// recompile their machines.
	ReloadScript
)

// ReloadEvent is one debounced prefab edit, already classified.
type ReloadEvent struct {
	Kind ReloadKind
	Path string
}

// Watcher reports prefab edits so the game can hot-reload perception
// settings and behavior scripts while running.
type Watcher struct {
	watcher *fsnotify.Watcher
	Events  chan ReloadEvent
	Errors  chan error
	closeCh chan struct{}
	once    sync.Once
}

func NewWatcher(dirs ...string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	for _, dir := range dirs {
		if err := w.Add(dir); err != nil {
			_ = w.Close()
			return nil, err
		}
	}

	watcher := &Watcher{
		watcher: w,
		Events:  make(chan ReloadEvent, 16),
		Errors:  make(chan error, 1),
		closeCh: make(chan struct{}),
	}
	go watcher.run()
	return watcher, nil
}

func (w *Watcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.closeCh)
		err = w.watcher.Close()
		close(w.Events)
		close(w.Errors)
	})
	return err
}

func (w *Watcher) run() {
	last := make(map[string]time.Time)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			kind, ok := classify(event.Name)
			if !ok {
				continue
			}
			now := time.Now()
			if t, ok := last[event.Name]; ok && now.Sub(t) < 100*time.Millisecond {
				continue
			}
			last[event.Name] = now
			w.Events <- ReloadEvent{Kind: kind, Path: event.Name}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.Errors <- err
		case <-w.closeCh:
			return
		}
	}
}

// classify maps an edited file to its reload path. Editor droppings and
// anything else that is neither a spec nor a script are ignored.
func classify(path string) (ReloadKind, bool) {
	base := filepath.Base(path)
	switch strings.ToLower(filepath.Ext(base)) {
	case ".tengo":
		return ReloadScript, true
	case ".yaml", ".yml":
		if strings.EqualFold(base, "settings.yaml") {
			return ReloadSettings, true
		}
		return ReloadSpec, true
	default:
		return 0, false
	}
}
