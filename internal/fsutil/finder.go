// Package fsutil provides file system utility functions.
package fsutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"
)

// FindFilesByExtension recursively searches the given root path for all files ending
// with the specified extension. It returns a slice of their full paths, sorted.
func FindFilesByExtension(rootPath string, extension string) ([]string, error) {
	if extension == "" {
		panic("extension must not be empty")
	}

	matches, err := doublestar.Glob(os.DirFS(rootPath), "**/*"+extension, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(matches))
	for _, m := range matches {
		files = append(files, filepath.Join(rootPath, filepath.FromSlash(m)))
	}
	sort.Strings(files)
	return files, nil
}

// Resolve expands each argument into the files it names: a plain file is kept
// as is, a directory contributes every file with the extension below it, and
// anything containing glob metacharacters is matched with `**` support.
// Missing plain paths are skipped. The result has no duplicates and keeps the
// order of the arguments.
func Resolve(args []string, extension string) ([]string, error) {
	var out []string
	seen := make(map[string]struct{})
	add := func(p string) {
		p = filepath.Clean(p)
		if _, ok := seen[p]; ok {
			return
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		switch {
		case err == nil && info.IsDir():
			files, err := FindFilesByExtension(arg, extension)
			if err != nil {
				return nil, fmt.Errorf("error walking %s: %w", arg, err)
			}
			for _, f := range files {
				add(f)
			}
		case err == nil:
			add(arg)
		case errors.Is(err, fs.ErrNotExist):
			if !doublestar.ValidatePathPattern(arg) {
				return nil, fmt.Errorf("invalid pattern %q", arg)
			}
			matches, err := doublestar.FilepathGlob(arg, doublestar.WithFilesOnly())
			if err != nil {
				return nil, fmt.Errorf("error matching %s: %w", arg, err)
			}
			sort.Strings(matches)
			for _, m := range matches {
				add(m)
			}
		default:
			return nil, fmt.Errorf("error accessing path %s: %w", arg, err)
		}
	}
	return out, nil
}
