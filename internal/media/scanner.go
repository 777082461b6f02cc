// Package media finds the files of a library that take part
// in a battle and answers questions about them.
package media

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/ezBadminton/gobattle/core"
)

var (
	ErrNotADirectory = errors.New("library root is not a directory")
)

// A Library is a directory whose files are the items of
// a battle. Items are slash separated paths relative to
// the root.
type Library struct {
	root string
}

func NewLibrary(root string) *Library {
	return &Library{root: root}
}

func (l *Library) Root() string {
	return l.root
}

// Returns the path of the item on disk
func (l *Library) Path(item core.Item) string {
	return filepath.Join(l.root, filepath.FromSlash(string(item)))
}

// Reports whether the file of the item still exists
func (l *Library) Exists(item core.Item) bool {
	info, err := os.Stat(l.Path(item))
	return err == nil && info.Mode().IsRegular()
}

// Returns the modification time of the file
func (l *Library) Time(item core.Item) (time.Time, bool) {
	info, err := os.Stat(l.Path(item))
	if err != nil {
		return time.Time{}, false
	}
	return info.ModTime(), true
}

// A Scanner walks a Library and collects the files
// of the wanted media kinds
type Scanner struct {
	library *Library
	kinds   []string
	log     zerolog.Logger
}

// Creates a Scanner for the kinds, e.g. "image" or "video".
// A kind matches the top-level part of the detected MIME type.
func NewScanner(library *Library, kinds []string, logger zerolog.Logger) *Scanner {
	return &Scanner{
		library: library,
		kinds:   kinds,
		log:     logger,
	}
}

// Returns the items of the library sorted by path.
// Hidden files and directories are skipped.
func (s *Scanner) Scan(ctx context.Context) ([]core.Item, error) {
	root := s.library.Root()
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, root)
	}

	items := make([]core.Item, 0)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if path != root && strings.HasPrefix(d.Name(), ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		ok, err := s.matches(path)
		if err != nil {
			s.log.Warn().Err(err).Str("path", path).Msg("skipping unreadable file")
			return nil
		}
		if !ok {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		items = append(items, core.Item(filepath.ToSlash(rel)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	slices.Sort(items)

	s.log.Debug().Str("root", root).Int("items", len(items)).Msg("library scanned")

	return items, nil
}

func (s *Scanner) matches(path string) (bool, error) {
	mtype, err := mimetype.DetectFile(path)
	if err != nil {
		return false, err
	}
	kind, _, _ := strings.Cut(mtype.String(), "/")
	return slices.Contains(s.kinds, kind), nil
}
