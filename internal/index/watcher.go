package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mkarlsen/planvault/internal/catalog"
)

// EventCallback is called after a watcher-driven index change.
// kind is one of "created", "updated", "deleted".
type EventCallback func(kind string, name string)

// Watch starts an fsnotify watcher on the managed directory and processes
// file change events until ctx is cancelled. It calls cb (if non-nil) after
// each successful index mutation.
//
// The managed directory is flat, so only the root is watched. Rename events
// trigger a debounced reconciliation pass that re-syncs the index against
// the directory.
func Watch(ctx context.Context, db *DB, mgr *catalog.Manager, logger *slog.Logger, cb EventCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := mgr.EnsureDirectory(); err != nil {
		return err
	}
	if err := w.Add(mgr.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", mgr.Root()))

	// reconcileTimer debounces rename reconciliation.
	var reconcileTimer *time.Timer
	var reconcileCh <-chan time.Time

	scheduleReconcile := func() {
		if reconcileTimer == nil {
			reconcileTimer = time.NewTimer(200 * time.Millisecond)
			reconcileCh = reconcileTimer.C
		} else {
			reconcileTimer.Reset(200 * time.Millisecond)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if reconcileTimer != nil {
				reconcileTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-reconcileCh:
			if err := Sync(db, mgr, logger); err != nil {
				logger.Warn("watcher: reconcile failed", slog.String("error", err.Error()))
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}

			name := filepath.Base(ev.Name)
			if !strings.HasSuffix(name, ".md") {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				// Backup files never carry the .md suffix, so everything
				// arriving here is a candidate document.
				content, readErr := mgr.Read(name)
				if readErr != nil {
					logger.Warn("watcher: read failed", slog.String("name", name), slog.String("error", readErr.Error()))
					continue
				}
				if idxErr := IndexDocument(db, name, content); idxErr != nil {
					logger.Warn("watcher: index failed", slog.String("name", name), slog.String("error", idxErr.Error()))
					continue
				}
				kind := "updated"
				if ev.Op&fsnotify.Create != 0 {
					kind = "created"
				}
				logger.Debug("watcher: indexed", slog.String("name", name), slog.String("op", kind))
				if cb != nil {
					cb(kind, name)
				}

			case ev.Op&fsnotify.Remove != 0:
				if delErr := db.DeleteDocument(name); delErr != nil {
					logger.Warn("watcher: delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
					continue
				}
				logger.Debug("watcher: deleted", slog.String("name", name))
				if cb != nil {
					cb("deleted", name)
				}

			case ev.Op&fsnotify.Rename != 0:
				// fsnotify fires Rename on the OLD path only. The new path
				// arrives as a separate Create event. Delete the old entry
				// immediately and schedule a reconciliation pass to catch
				// any stragglers.
				if delErr := db.DeleteDocument(name); delErr != nil {
					logger.Warn("watcher: rename delete failed", slog.String("name", name), slog.String("error", delErr.Error()))
				} else {
					logger.Debug("watcher: rename old deleted", slog.String("name", name))
					if cb != nil {
						cb("deleted", name)
					}
				}
				scheduleReconcile()
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
