// Package watch re-triggers test runs when a project's sources change.
package watch

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	log "github.com/chmouel/apollo/internal/log"
	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is used when New is given a non-positive debounce.
const DefaultDebounce = 750 * time.Millisecond

const manifestFile = "Cargo.toml"

// sourceDirs are watched recursively below a project root.
var sourceDirs = []string{"src", "tests", "benches", "examples"}

// Watcher reports project ids whose sources changed, at most once per
// debounce window.
type Watcher struct {
	debounce time.Duration
	fsw      *fsnotify.Watcher

	mu      sync.Mutex
	roots   map[uint32]string
	paths   map[string]uint32
	pending map[uint32]*time.Timer
	closed  bool

	events chan uint32
	done   chan struct{}
}

// New starts a watcher with no projects.
func New(debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	w := &Watcher{
		debounce: debounce,
		fsw:      fsw,
		roots:    make(map[uint32]string),
		paths:    make(map[string]uint32),
		pending:  make(map[uint32]*time.Timer),
		events:   make(chan uint32, 16),
		done:     make(chan struct{}),
	}
	go w.run()
	return w, nil
}

// Events delivers the ids of changed projects.
func (w *Watcher) Events() <-chan uint32 {
	return w.events
}

// Add starts watching the project rooted at dir.
func (w *Watcher) Add(projectID uint32, dir string) error {
	dir = filepath.Clean(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &fs.PathError{Op: "watch", Path: dir, Err: fs.ErrInvalid}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return fs.ErrClosed
	}
	if _, ok := w.roots[projectID]; ok {
		w.removeLocked(projectID)
	}
	w.roots[projectID] = dir
	w.addDirLocked(projectID, dir)
	for _, sub := range sourceDirs {
		w.addTreeLocked(projectID, filepath.Join(dir, sub))
	}
	return nil
}

// Remove stops watching projectID.
func (w *Watcher) Remove(projectID uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.removeLocked(projectID)
}

// Watching reports whether projectID is watched.
func (w *Watcher) Watching(projectID uint32) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.roots[projectID]
	return ok
}

// Close stops the watcher. Events is not closed.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for id, t := range w.pending {
		t.Stop()
		delete(w.pending, id)
	}
	w.mu.Unlock()
	close(w.done)
	return w.fsw.Close()
}

func (w *Watcher) removeLocked(projectID uint32) {
	for path, id := range w.paths {
		if id == projectID {
			_ = w.fsw.Remove(path)
			delete(w.paths, path)
		}
	}
	if t, ok := w.pending[projectID]; ok {
		t.Stop()
		delete(w.pending, projectID)
	}
	delete(w.roots, projectID)
}

func (w *Watcher) run() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.handle(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			log.Printf("watch: error: %v", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	w.mu.Lock()
	defer w.mu.Unlock()

	id, root, ok := w.ownerLocked(event.Name)
	if !ok || !relevant(root, event.Name) {
		return
	}
	if event.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			w.addTreeLocked(id, event.Name)
		}
	}
	if t, ok := w.pending[id]; ok {
		t.Reset(w.debounce)
		return
	}
	w.pending[id] = time.AfterFunc(w.debounce, func() { w.fire(id) })
}

func (w *Watcher) fire(projectID uint32) {
	w.mu.Lock()
	delete(w.pending, projectID)
	_, watched := w.roots[projectID]
	closed := w.closed
	w.mu.Unlock()
	if closed || !watched {
		return
	}
	select {
	case w.events <- projectID:
	default:
		log.Printf("watch: event queue full, dropping change for project %d", projectID)
	}
}

// ownerLocked finds the project whose root holds path, preferring the
// deepest root when projects are nested.
func (w *Watcher) ownerLocked(path string) (uint32, string, bool) {
	var (
		bestID   uint32
		bestRoot string
	)
	for id, root := range w.roots {
		if isWithin(root, path) && len(root) > len(bestRoot) {
			bestID, bestRoot = id, root
		}
	}
	return bestID, bestRoot, bestRoot != ""
}

// relevant filters out build output and editor scratch files.
func relevant(root, path string) bool {
	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." {
		return false
	}
	rel = filepath.ToSlash(rel)
	if rel == manifestFile {
		return true
	}
	first, _, _ := strings.Cut(rel, "/")
	isSource := false
	for _, dir := range sourceDirs {
		if first == dir {
			isSource = true
			break
		}
	}
	if !isSource {
		return false
	}
	base := filepath.Base(path)
	switch {
	case strings.HasPrefix(base, ".#"), strings.HasSuffix(base, "~"),
		strings.HasSuffix(base, ".swp"), strings.HasSuffix(base, ".swx"):
		return false
	}
	return true
}

func isWithin(root, path string) bool {
	return path == root || strings.HasPrefix(path, root+string(filepath.Separator))
}

func (w *Watcher) addDirLocked(projectID uint32, path string) {
	if _, ok := w.paths[path]; ok {
		return
	}
	if err := w.fsw.Add(path); err != nil {
		log.Printf("watch: add failed for %s: %v", path, err)
		return
	}
	w.paths[path] = projectID
}

func (w *Watcher) addTreeLocked(projectID uint32, root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil
		}
		w.addDirLocked(projectID, path)
		return nil
	})
}
