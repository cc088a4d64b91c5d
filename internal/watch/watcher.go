// Package watch runs job files when they appear or change in watched directories.
package watch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// DefaultExtensions are the job file extensions picked up by default.
var DefaultExtensions = []string{".yaml", ".yml"}

// Config holds the watcher configuration.
type Config struct {
	Directories []string `json:"directories"`
	Extensions  []string `json:"extensions"`
	Recursive   bool     `json:"recursive"`
	Debounce    int      `json:"debounceMs"` // milliseconds to wait before running
}

// Event is a file event that was detected and handled.
type Event struct {
	Time      time.Time     `json:"time"`
	Path      string        `json:"path"`
	Operation string        `json:"operation"`
	Status    string        `json:"status"` // "processed" or "error"
	Error     string        `json:"error,omitempty"`
	Elapsed   time.Duration `json:"elapsed"`
}

// Handler runs a job file. Calls never overlap.
type Handler func(ctx context.Context, path string) error

// Status is a snapshot of the watcher.
type Status struct {
	Running     bool     `json:"running"`
	Directories []string `json:"directories"`
	EventCount  int      `json:"eventCount"`
	StartedAt   string   `json:"startedAt,omitempty"`
}

// Watcher monitors directories for job files.
type Watcher struct {
	Config  Config
	Handler Handler

	mu       sync.Mutex
	run      sync.Mutex
	jobs     sync.WaitGroup
	stopped  bool
	events   []Event
	started  time.Time
	watcher  *fsnotify.Watcher
	debounce map[string]*time.Timer
}

// New creates a Watcher with the given configuration.
func New(cfg Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}

	if cfg.Debounce <= 0 {
		cfg.Debounce = 500
	}
	if len(cfg.Extensions) == 0 {
		cfg.Extensions = DefaultExtensions
	}

	return &Watcher{
		Config:   cfg,
		watcher:  fsw,
		debounce: make(map[string]*time.Timer),
	}, nil
}

// Start watches the configured directories and blocks until ctx is cancelled.
// It returns only after a job that is already running has finished.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.Config.Directories {
		absDir, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("could not resolve %s: %w", dir, err)
		}

		if w.Config.Recursive {
			if err := w.addRecursive(absDir); err != nil {
				return err
			}
		} else if err := w.watcher.Add(absDir); err != nil {
			return fmt.Errorf("could not watch %s: %w", absDir, err)
		}
	}

	w.mu.Lock()
	w.started = time.Now()
	w.mu.Unlock()

	log.Info().Strs("directories", w.Config.Directories).Strs("extensions", w.Config.Extensions).Msg("watching for job files")

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("stopping watcher")
			return w.stop()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.stop()
			}
			w.handleEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.stop()
			}
			log.Error().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) addRecursive(dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if strings.HasPrefix(filepath.Base(path), ".") && path != dir {
				return filepath.SkipDir
			}
			return w.watcher.Add(path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	path := event.Name
	if !w.Matches(path) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(time.Duration(w.Config.Debounce)*time.Millisecond, func() {
		w.mu.Lock()
		if w.stopped {
			w.mu.Unlock()
			return
		}
		w.jobs.Add(1)
		w.mu.Unlock()
		defer w.jobs.Done()

		w.process(ctx, path, event.Op.String())
	})
}

// stop cancels pending timers, waits for a running job and closes the
// underlying watcher.
func (w *Watcher) stop() error {
	w.mu.Lock()
	w.stopped = true
	for path, timer := range w.debounce {
		timer.Stop()
		delete(w.debounce, path)
	}
	w.mu.Unlock()

	w.jobs.Wait()
	return w.watcher.Close()
}

func (w *Watcher) process(ctx context.Context, path, operation string) {
	if ctx.Err() != nil {
		return
	}

	// One job at a time.
	w.run.Lock()
	defer w.run.Unlock()

	evt := Event{Time: time.Now(), Path: path, Operation: operation, Status: "processed"}
	if w.Handler != nil {
		if err := w.Handler(ctx, path); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			log.Error().Err(err).Str("job", path).Msg("job failed")
		} else {
			log.Info().Str("job", path).Msg("job finished")
		}
	}
	evt.Elapsed = time.Since(evt.Time)

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// Matches reports whether path looks like a job file this watcher handles.
// Editor temp and hidden files never match.
func (w *Watcher) Matches(path string) bool {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~") || strings.HasSuffix(base, "~") {
		return false
	}

	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range w.Config.Extensions {
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		if strings.ToLower(e) == ext {
			return true
		}
	}
	return false
}

// GetStatus returns the current watcher status.
func (w *Watcher) GetStatus() Status {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := Status{
		Running:     !w.started.IsZero(),
		Directories: w.Config.Directories,
		EventCount:  len(w.events),
	}
	if !w.started.IsZero() {
		s.StartedAt = w.started.Format(time.RFC3339)
	}
	return s
}

// GetEvents returns all recorded events.
func (w *Watcher) GetEvents() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
