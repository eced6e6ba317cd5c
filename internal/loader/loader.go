// Package loader reads documents from disk. Each path is loaded on its own so
// that one unreadable file never holds up the rest.
package loader

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"
)

var (
	ErrNotText  = errors.New("not a text file")
	ErrTooLarge = errors.New("file too large")
	ErrIsDir    = errors.New("is a directory")
)

// File is a loaded document.
type File struct {
	Name string
	Path string
	Text string
}

// NotFoundError reports a missing file with the closest existing name in the
// same directory, if any is close enough.
type NotFoundError struct {
	Path       string
	Suggestion string
}

func (e *NotFoundError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s: no such file (did you mean %s?)", e.Path, e.Suggestion)
	}
	return fmt.Sprintf("%s: no such file", e.Path)
}

func (e *NotFoundError) Unwrap() error { return fs.ErrNotExist }

// Loader reads text files. MaxBytes of zero means no limit.
type Loader struct {
	MaxBytes int64
}

// Load reads path and returns its base name and text.
func (l Loader) Load(ctx context.Context, path string) (File, error) {
	if err := ctx.Err(); err != nil {
		return File{}, err
	}
	abs, err := filepath.Abs(expandHome(path))
	if err != nil {
		return File{}, fmt.Errorf("resolve %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return File{}, &NotFoundError{Path: path, Suggestion: Suggest(abs)}
		}
		return File{}, fmt.Errorf("stat %s: %w", path, err)
	}
	if info.IsDir() {
		return File{}, fmt.Errorf("%s: %w", path, ErrIsDir)
	}
	if l.MaxBytes > 0 && info.Size() > l.MaxBytes {
		return File{}, fmt.Errorf("%s is %d bytes, limit %d: %w", path, info.Size(), l.MaxBytes, ErrTooLarge)
	}
	f, err := os.Open(abs)
	if err != nil {
		return File{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	var r io.Reader = f
	if l.MaxBytes > 0 {
		r = io.LimitReader(f, l.MaxBytes+1)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return File{}, fmt.Errorf("read %s: %w", path, err)
	}
	if l.MaxBytes > 0 && int64(len(data)) > l.MaxBytes {
		return File{}, fmt.Errorf("%s grew past %d bytes: %w", path, l.MaxBytes, ErrTooLarge)
	}
	if !IsText(data) {
		return File{}, fmt.Errorf("%s: %w", path, ErrNotText)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	return File{Name: filepath.Base(abs), Path: abs, Text: string(data)}, nil
}

// IsText reports whether data is valid UTF-8 without NUL bytes.
func IsText(data []byte) bool {
	return utf8.Valid(data) && bytes.IndexByte(data, 0) < 0
}

// Suggest returns the entry in path's directory whose name is closest to
// path's base name, or "" when nothing is within a third of its length.
func Suggest(path string) string {
	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return ""
	}
	limit := max(1, len(base)/3)
	best, bestDist := "", limit+1
	want := strings.ToLower(base)
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		d := levenshtein.ComputeDistance(want, strings.ToLower(e.Name()))
		if d < bestDist {
			best, bestDist = e.Name(), d
		}
	}
	if best == "" {
		return ""
	}
	return filepath.Join(dir, best)
}

// Expand resolves glob patterns in args. Arguments without glob characters
// are passed through so that Load can report them precisely.
func Expand(args []string) ([]string, []error) {
	var paths []string
	var errs []error
	seen := map[string]bool{}
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	for _, arg := range args {
		arg = expandHome(strings.TrimSpace(arg))
		if arg == "" {
			continue
		}
		if !strings.ContainsAny(arg, "*?[") {
			add(arg)
			continue
		}
		matches, err := filepath.Glob(arg)
		if err != nil {
			errs = append(errs, fmt.Errorf("pattern %s: %w", arg, err))
			continue
		}
		if len(matches) == 0 {
			errs = append(errs, fmt.Errorf("pattern %s: no matches", arg))
			continue
		}
		for _, m := range matches {
			add(m)
		}
	}
	return paths, errs
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
