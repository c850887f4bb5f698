// Package images serves READ_IMAGE: it enumerates the image files below a
// directory in a stable order and reads one of them by index.
package images

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"modelpipe/internal/common/fsutil"
)

// DefaultExtensions are the file suffixes treated as images when none are
// configured.
var DefaultExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".webp"}

type notFoundError struct{ dir string }

func (e notFoundError) Error() string { return "path not found: " + e.dir }

// IsNotFound reports whether err names a missing image directory.
func IsNotFound(err error) bool {
	var e notFoundError
	return errors.As(err, &e)
}

type indexError struct {
	index, count int
}

func (e indexError) Error() string {
	return fmt.Sprintf("index out of range: %d (directory holds %d images)", e.index, e.count)
}

// IsIndexOutOfRange reports whether err is a bad image index.
func IsIndexOutOfRange(err error) bool {
	var e indexError
	return errors.As(err, &e)
}

// Scanner lists image files by extension.
type Scanner struct {
	exts map[string]struct{}
}

// NewScanner builds a scanner matching exts case-insensitively. Entries may
// be given with or without the leading dot. Empty exts selects
// DefaultExtensions.
func NewScanner(exts []string) *Scanner {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	s := &Scanner{exts: make(map[string]struct{}, len(exts))}
	for _, e := range exts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		s.exts[e] = struct{}{}
	}
	return s
}

// List walks dir recursively and returns the slash-separated paths of
// matching files relative to dir, sorted lexically.
func (s *Scanner) List(dir string) ([]string, error) {
	root, err := fsutil.Resolve(dir)
	if err != nil {
		return nil, err
	}
	ok, isDir, err := fsutil.StatKind(root)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !ok || !isDir {
		return nil, notFoundError{dir: dir}
	}
	var names []string
	err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, ok := s.exts[strings.ToLower(filepath.Ext(p))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", dir, err)
	}
	sort.Strings(names)
	return names, nil
}

// Read returns the bytes and relative name of the index-th image in dir.
func (s *Scanner) Read(dir string, index int) ([]byte, string, error) {
	names, err := s.List(dir)
	if err != nil {
		return nil, "", err
	}
	if index < 0 || index >= len(names) {
		return nil, "", indexError{index: index, count: len(names)}
	}
	root, err := fsutil.Resolve(dir)
	if err != nil {
		return nil, "", err
	}
	name := names[index]
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(name)))
	if err != nil {
		return nil, "", fmt.Errorf("read image %s: %w", name, err)
	}
	return data, name, nil
}
