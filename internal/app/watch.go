package app

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/argcegar/internal/cegar"
	"github.com/specialistvlad/argcegar/internal/ctxlog"
)

const programExt = ".hcl"

// watch verifies once and then again after every burst of changes to
// program files, until ctx is done. Failed runs are logged and do not stop
// the watch.
func (a *App) watch(ctx context.Context) (*cegar.Result, error) {
	logger := ctxlog.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	defer w.Close()

	dirs, err := watchDirs(a.config.Paths)
	if err != nil {
		return nil, err
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return nil, err
		}
	}
	logger.Info("Watching for program changes.", "directories", len(dirs))

	var last *cegar.Result
	rerun := func() {
		res, err := a.verify(ctx)
		switch {
		case ctx.Err() != nil:
		case err != nil:
			logger.Error("Verification failed.", "error", err)
		default:
			last = res
		}
	}
	rerun()

	debounce := time.NewTimer(a.config.WatchDebounce)
	debounce.Stop()
	for {
		select {
		case <-ctx.Done():
			return last, nil
		case ev, ok := <-w.Events:
			if !ok {
				return last, nil
			}
			watchCreatedDir(ctx, w, ev)
			if !relevant(ev) {
				continue
			}
			logger.Debug("Program file changed.", "path", ev.Name, "op", ev.Op.String())
			debounce.Reset(a.config.WatchDebounce)
		case err, ok := <-w.Errors:
			if !ok {
				return last, nil
			}
			logger.Warn("File watcher error.", "error", err)
		case <-debounce.C:
			rerun()
		}
	}
}

func relevant(ev fsnotify.Event) bool {
	if filepath.Ext(ev.Name) != programExt {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

// watchCreatedDir adds a directory created below a watched one, so files
// placed in it later are seen too.
func watchCreatedDir(ctx context.Context, w *fsnotify.Watcher, ev fsnotify.Event) {
	if !ev.Has(fsnotify.Create) {
		return
	}
	info, err := os.Stat(ev.Name)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.Add(ev.Name); err != nil {
		ctxlog.FromContext(ctx).Warn("Could not watch new directory.", "path", ev.Name, "error", err)
	}
}

// watchDirs returns every directory that can hold a file named by paths: a
// file's directory, a directory and all below it, or the static prefix of a
// glob pattern and all below it.
func watchDirs(paths []string) ([]string, error) {
	seen := make(map[string]struct{})
	addTree := func(root string) error {
		return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				seen[filepath.Clean(p)] = struct{}{}
			}
			return nil
		})
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		switch {
		case err == nil && info.IsDir():
			if err := addTree(p); err != nil {
				return nil, err
			}
		case err == nil:
			seen[filepath.Dir(filepath.Clean(p))] = struct{}{}
		case errors.Is(err, fs.ErrNotExist):
			base, _ := doublestar.SplitPattern(filepath.ToSlash(p))
			if err := addTree(filepath.FromSlash(base)); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return nil, err
			}
		default:
			return nil, err
		}
	}

	out := make([]string, 0, len(seen))
	for d := range seen {
		out = append(out, d)
	}
	sort.Strings(out)
	return out, nil
}
