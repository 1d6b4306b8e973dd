// Package watcher ingests documents dropped into a hot folder. Files are
// laid out as <root>/<department>/<category>/<name>.<ext>; the path
// supplies the metadata, the content supplies the language.
package watcher

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/maarif-labs/maarif/internal/core/domain"
	"github.com/maarif-labs/maarif/internal/core/ports/driving"
	"github.com/maarif-labs/maarif/internal/lang"
	"github.com/maarif-labs/maarif/internal/logger"
)

// DefaultSettleDelay is how long a file must stay quiet before it is
// ingested, so partially written files are not picked up.
const DefaultSettleDelay = 2 * time.Second

// Watcher watches a drop directory and mirrors it into the knowledge
// base: new and changed files are ingested, removed files are deleted.
type Watcher struct {
	content         driving.ContentService
	root            string
	settle          time.Duration
	defaultLanguage domain.Language

	mu      sync.Mutex
	pending map[string]*time.Timer
	byPath  map[string]string // absolute path -> document ID
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettleDelay overrides the quiet period before ingestion.
func WithSettleDelay(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.settle = d
		}
	}
}

// WithDefaultLanguage sets the fallback when content detection is
// inconclusive.
func WithDefaultLanguage(l domain.Language) Option {
	return func(w *Watcher) { w.defaultLanguage = l }
}

// New creates a watcher over the given drop directory.
func New(content driving.ContentService, root string, opts ...Option) (*Watcher, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("watch root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: watch root %s is not a directory", domain.ErrValidation, root)
	}

	w := &Watcher{
		content:         content,
		root:            root,
		settle:          DefaultSettleDelay,
		defaultLanguage: domain.LanguageArabic,
		pending:         make(map[string]*time.Timer),
		byPath:          make(map[string]string),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Run ingests the files already present, then blocks processing
// filesystem events until the context is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("starting watcher: %w", err)
	}
	defer fw.Close()

	if err := w.addRecursive(fw, w.root); err != nil {
		return err
	}
	w.syncExisting(ctx)

	logger.Info("Watching %s (settle %s)", w.root, w.settle)
	for {
		select {
		case <-ctx.Done():
			w.cancelPending()
			return ctx.Err()
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handleEvent(ctx, fw, event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error: %v", err)
		}
	}
}

// addRecursive registers the directory and all subdirectories.
func (w *Watcher) addRecursive(fw *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if isHidden(path) && path != dir {
			return filepath.SkipDir
		}
		return fw.Add(path)
	})
}

// syncExisting ingests files already in the drop directory at startup.
func (w *Watcher) syncExisting(ctx context.Context) {
	_ = filepath.WalkDir(w.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || ctx.Err() != nil {
			return err
		}
		if d.IsDir() {
			if isHidden(path) && path != w.root {
				return filepath.SkipDir
			}
			return nil
		}
		if !isHidden(path) {
			w.ingest(ctx, path)
		}
		return nil
	})
}

func (w *Watcher) handleEvent(ctx context.Context, fw *fsnotify.Watcher, event fsnotify.Event) {
	path := event.Name
	if isHidden(path) {
		return
	}

	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addRecursive(fw, path); err != nil {
				logger.Warn("watching new directory %s: %v", path, err)
			}
			return
		}
		w.schedule(ctx, path)
	case event.Op.Has(fsnotify.Write):
		w.schedule(ctx, path)
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.remove(ctx, path)
	}
}

// schedule (re)arms the settle timer for a path. Each write resets the
// timer; the file is ingested only after a full quiet period.
func (w *Watcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Stop()
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.ingest(ctx, path)
	})
}

func (w *Watcher) cancelPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
}

// ingest creates or updates the document backing a file.
func (w *Watcher) ingest(ctx context.Context, path string) {
	meta, format, ok := w.metaFromPath(path)
	if !ok {
		return
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("reading %s: %v", path, err)
		return
	}
	if len(raw) == 0 {
		return
	}
	meta.Language = lang.Detect(string(raw), w.defaultLanguage)

	w.mu.Lock()
	id, known := w.byPath[path]
	w.mu.Unlock()

	var doc *domain.Document
	if known {
		doc, err = w.content.Update(ctx, id, raw, format, meta, "")
		if errors.Is(err, domain.ErrNotFound) {
			known = false
		}
	}
	if !known {
		doc, err = w.content.Create(ctx, raw, format, meta)
	}
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			logger.Debug("Skipping %s: %v", path, err)
		} else {
			logger.Warn("ingesting %s: %v", path, err)
		}
		return
	}

	w.mu.Lock()
	w.byPath[path] = doc.ID
	w.mu.Unlock()
	logger.Info("Ingested %s as document %s (version %s)", path, doc.ID, doc.Version)
}

// remove deletes the document backing a removed file, if one is known.
func (w *Watcher) remove(ctx context.Context, path string) {
	w.mu.Lock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
	id, known := w.byPath[path]
	delete(w.byPath, path)
	w.mu.Unlock()

	if !known {
		return
	}
	if err := w.content.Delete(ctx, id); err != nil {
		logger.Warn("deleting document %s for removed file %s: %v", id, path, err)
		return
	}
	logger.Info("Deleted document %s for removed file %s", id, path)
}

// metaFromPath derives metadata from the drop-folder convention
// <department>/<category>/<name>.<ext>. Files outside the convention
// are skipped with a warning.
func (w *Watcher) metaFromPath(path string) (domain.DocumentMeta, string, bool) {
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return domain.DocumentMeta{}, "", false
	}

	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 3 {
		logger.Warn("Skipping %s: expected <department>/<category>/<file> under %s", path, w.root)
		return domain.DocumentMeta{}, "", false
	}

	department, ok := parseDepartment(parts[0])
	if !ok {
		logger.Warn("Skipping %s: unknown department %q", path, parts[0])
		return domain.DocumentMeta{}, "", false
	}

	category := strings.ToLower(parts[1])
	if !domain.IsValidCategory(category) {
		category = "other"
	}

	filename := parts[len(parts)-1]
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")

	return domain.DocumentMeta{
		Title:      titleFromFilename(filename),
		Department: department,
		Category:   category,
	}, ext, true
}

// parseDepartment matches a path segment to a known department,
// case-insensitively.
func parseDepartment(segment string) (domain.Department, bool) {
	departments := []domain.Department{
		domain.DepartmentHR,
		domain.DepartmentIT,
		domain.DepartmentAdmin,
		domain.DepartmentFinance,
		domain.DepartmentOperations,
	}
	for _, d := range departments {
		if strings.EqualFold(segment, string(d)) {
			return d, true
		}
	}
	return "", false
}

// titleFromFilename turns "annual_leave-policy.txt" into
// "annual leave policy".
func titleFromFilename(filename string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)
	return strings.Join(strings.Fields(base), " ")
}

// isHidden reports whether any path element starts with a dot.
func isHidden(path string) bool {
	for _, part := range strings.Split(filepath.ToSlash(path), "/") {
		if part == "." || part == ".." || part == "" {
			continue
		}
		if strings.HasPrefix(part, ".") {
			return true
		}
	}
	return false
}
