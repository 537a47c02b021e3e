package banner

import (
	"os"
	"time"
)

// Watcher polls banner files for modification-time changes and triggers a
// callback so the registry can be reloaded. Polling keeps it dependency-free
// and works on every filesystem.
type Watcher struct {
	loader   *Loader
	interval time.Duration
	onChange func(path string)

	stopCh    chan struct{}
	lastMTime map[string]time.Time
}

func NewWatcher(loader *Loader, interval time.Duration, onChange func(string)) *Watcher {
	return &Watcher{
		loader:    loader,
		interval:  interval,
		onChange:  onChange,
		stopCh:    make(chan struct{}),
		lastMTime: make(map[string]time.Time),
	}
}

// Start begins polling in a goroutine.
func (w *Watcher) Start() {
	ticker := time.NewTicker(w.interval)
	go func() {
		defer ticker.Stop()
		w.scan(true)
		for {
			select {
			case <-ticker.C:
				w.scan(false)
			case <-w.stopCh:
				return
			}
		}
	}()
}

// Stop terminates the watcher.
func (w *Watcher) Stop() {
	close(w.stopCh)
}

// scan compares mtimes against the previous pass. prime seeds the cache
// without firing callbacks.
func (w *Watcher) scan(prime bool) {
	paths, err := w.loader.Paths()
	if err != nil {
		return
	}
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			continue // file may be missing (e.g. optional defaults.yaml)
		}
		mt := fi.ModTime()
		last, seen := w.lastMTime[p]
		if !seen {
			w.lastMTime[p] = mt
			if !prime && w.onChange != nil {
				// a brand-new banner file counts as a change
				w.loader.Invalidate()
				w.onChange(p)
			}
			continue
		}
		if mt.After(last) {
			w.lastMTime[p] = mt
			if !prime && w.onChange != nil {
				w.loader.Invalidate()
				w.onChange(p)
			}
		}
	}
}
