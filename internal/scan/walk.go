package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	ignore "github.com/sabhiram/go-gitignore"
)

var ErrInvalidPattern = errors.New("invalid exclude pattern")

// PathError reports a named path that is neither a file nor a directory.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("'%s' does not exist", e.Path)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Kind is the error kind printed by the command line.
func (e *PathError) Kind() string {
	return "FileNotFound"
}

// filter decides which directory-discovered files are scanned. Explicitly
// named files bypass it.
type filter struct {
	suffixes  []string
	excludes  []glob.Glob
	gitignore bool
}

func newFilter(opts Options) (filter, error) {
	f := filter{gitignore: opts.RespectGitignore}
	for _, suffix := range opts.Suffixes {
		if suffix = strings.TrimSpace(suffix); suffix != "" {
			f.suffixes = append(f.suffixes, suffix)
		}
	}
	for _, pattern := range opts.Exclude {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return filter{}, fmt.Errorf("%w %q: %v", ErrInvalidPattern, pattern, err)
		}
		f.excludes = append(f.excludes, g)
	}
	return f, nil
}

// excluded matches the slash-separated path relative to the walked root, and
// the base name, against the exclude globs.
func (f filter) excluded(rel string) bool {
	base := rel
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		base = rel[i+1:]
	}
	for _, g := range f.excludes {
		if g.Match(rel) || g.Match(base) {
			return true
		}
	}
	return false
}

func (f filter) suffixAllowed(name string) bool {
	if len(f.suffixes) == 0 {
		return true
	}
	for _, suffix := range f.suffixes {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// collect expands paths into the ordered list of files to scan. Directories
// are walked depth-first in lexical order.
func (s *Scanner) collect(ctx context.Context, paths []string) ([]string, error) {
	files := make([]string, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		info, err := os.Stat(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &PathError{Path: path, Err: err}
			}
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		switch {
		case info.Mode().IsRegular():
			files = append(files, path)
		case info.IsDir():
			found, err := s.walkDir(ctx, path)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		default:
			return nil, &PathError{Path: path, Err: fs.ErrNotExist}
		}
	}
	return files, nil
}

type dirWalker struct {
	ctx    context.Context
	root   string
	filter filter
	ignore *ignore.GitIgnore
	files  []string
}

func (s *Scanner) walkDir(ctx context.Context, root string) ([]string, error) {
	w := &dirWalker{ctx: ctx, root: root, filter: s.filter}
	if s.filter.gitignore {
		w.ignore = s.loadGitignore(root)
	}
	if err := filepath.WalkDir(root, w.handle); err != nil {
		return nil, err
	}
	s.logger.Debug("walked directory", "root", root, "files", len(w.files))
	return w.files, nil
}

func (s *Scanner) loadGitignore(root string) *ignore.GitIgnore {
	path := filepath.Join(root, ".gitignore")
	gi, err := ignore.CompileIgnoreFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("ignoring unreadable .gitignore", "path", path, "error", err)
		}
		return nil
	}
	return gi
}

func (w *dirWalker) handle(path string, entry fs.DirEntry, walkErr error) error {
	if walkErr != nil {
		return walkErr
	}
	if err := w.ctx.Err(); err != nil {
		return err
	}
	if path == w.root {
		return nil
	}
	rel, err := filepath.Rel(w.root, path)
	if err != nil {
		return err
	}
	rel = filepath.ToSlash(rel)

	if entry.IsDir() {
		if w.filter.excluded(rel) || w.ignored(rel+"/") {
			return filepath.SkipDir
		}
		return nil
	}
	if !isRegularFile(path, entry) {
		return nil
	}
	if w.filter.excluded(rel) || w.ignored(rel) || !w.filter.suffixAllowed(entry.Name()) {
		return nil
	}
	w.files = append(w.files, path)
	return nil
}

func (w *dirWalker) ignored(rel string) bool {
	return w.ignore != nil && w.ignore.MatchesPath(rel)
}

// isRegularFile accepts regular files and symlinks that resolve to one.
func isRegularFile(path string, entry fs.DirEntry) bool {
	if entry.Type().IsRegular() {
		return true
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
