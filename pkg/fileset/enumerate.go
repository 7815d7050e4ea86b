package fileset

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/logging"
)

// RecursiveMarker is the pattern suffix that expands to a whole subtree.
const RecursiveMarker = "**"

// Enumerator lists files of a source tree and expands patterns against it.
type Enumerator struct {
	fs           filesystem.FS
	detectCycles bool
	logger       zerolog.Logger
}

// Option configures an Enumerator.
type Option func(*Enumerator)

// WithFS replaces the OS filesystem used for traversal.
func WithFS(fsys filesystem.FS) Option {
	return func(e *Enumerator) {
		e.fs = fsys
	}
}

// WithCycleDetection toggles the directory cycle guard. When disabled, a
// symlinked directory cycle makes traversal run forever.
func WithCycleDetection(enabled bool) Option {
	return func(e *Enumerator) {
		e.detectCycles = enabled
	}
}

// NewEnumerator creates an enumerator over the OS filesystem with cycle
// detection enabled.
func NewEnumerator(opts ...Option) *Enumerator {
	e := &Enumerator{
		fs:           filesystem.NewOS(),
		detectCycles: true,
		logger:       logging.GetLogger("fileset.enumerator"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EnumerateTree returns every non-directory entry under dir at any depth.
// Symlinked directories are descended into; the returned paths keep the
// symlinked names rather than their resolved locations. A missing dir, or one
// that is not a directory, yields an empty set. Unreadable directories are
// skipped with a warning.
func (e *Enumerator) EnumerateTree(dir string) Set {
	files := New()
	dir = filepath.Clean(dir)

	info, err := e.fs.Stat(dir)
	if err != nil || !info.IsDir() {
		return files
	}

	e.walk(dir, info, make(map[fileID]struct{}), files)

	e.logger.Trace().
		Str("dir", dir).
		Int("files", files.Len()).
		Msg("Enumerated tree")
	return files
}

func (e *Enumerator) walk(dir string, info fs.FileInfo, ancestors map[fileID]struct{}, files Set) {
	if e.detectCycles {
		if id, ok := identify(info); ok {
			if _, seen := ancestors[id]; seen {
				e.logger.Warn().Str("dir", dir).Msg("Directory cycle detected, not descending")
				return
			}
			ancestors[id] = struct{}{}
			defer delete(ancestors, id)
		}
	}

	entries, err := e.fs.ReadDir(dir)
	if err != nil {
		e.logger.Warn().Err(err).Str("dir", dir).Msg("Skipping unreadable directory")
		return
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		switch {
		case entry.IsDir():
			sub, err := e.fs.Stat(path)
			if err != nil {
				e.logger.Warn().Err(err).Str("dir", path).Msg("Skipping unreadable directory")
				continue
			}
			e.walk(path, sub, ancestors, files)
			continue
		case entry.Type()&fs.ModeSymlink != 0:
			// Links to directories are walked, links to files and dangling
			// links are files.
			if target, err := e.fs.Stat(path); err == nil && target.IsDir() {
				e.walk(path, target, ancestors, files)
				continue
			}
		}

		files.Add(path)
	}
}

// Exists reports whether path exists, without following a final symlink.
func (e *Enumerator) Exists(path string) bool {
	_, err := e.fs.Lstat(path)
	return err == nil
}

// ExpandPattern expands one absolute pattern. A pattern ending in the
// recursive marker enumerates the subtree named by the remaining prefix; any
// other pattern is a single-level wildcard that never descends into
// subdirectories.
func (e *Enumerator) ExpandPattern(pattern string) (Set, error) {
	if strings.HasSuffix(pattern, RecursiveMarker) {
		prefix := strings.TrimSuffix(pattern, RecursiveMarker)
		if strings.Contains(prefix, RecursiveMarker) {
			return nil, errors.Newf(errors.ErrRuleInvalid,
				"recursive marker is only allowed at the end of a pattern: %s", pattern)
		}
		return e.EnumerateTree(prefix), nil
	}

	if strings.Contains(pattern, RecursiveMarker) {
		return nil, errors.Newf(errors.ErrRuleInvalid,
			"recursive marker is only allowed at the end of a pattern: %s", pattern)
	}

	if !filepath.IsAbs(pattern) {
		return nil, errors.Newf(errors.ErrRuleInvalid, "pattern must be absolute: %s", pattern)
	}

	// Globbing runs over e.fs through io/fs, rooted at "/".
	rel := strings.TrimPrefix(filepath.ToSlash(pattern), "/")
	matches, err := doublestar.Glob(filesystem.IOFS(e.fs), rel)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrRuleInvalid, "invalid pattern %s", pattern)
	}

	out := New()
	for _, m := range matches {
		if hiddenByWildcard(rel, m) {
			continue
		}
		out.Add(filepath.Clean(filepath.FromSlash("/" + m)))
	}
	return out, nil
}

// hiddenByWildcard reports whether match has a dot-prefixed component that
// the pattern matched with a wildcard. As in the shell, only a segment that
// itself starts with a dot matches such names.
func hiddenByWildcard(pattern, match string) bool {
	ps := strings.Split(pattern, "/")
	ms := strings.Split(match, "/")
	if len(ps) != len(ms) {
		return false
	}
	for i, name := range ms {
		if strings.HasPrefix(name, ".") && !strings.HasPrefix(ps[i], ".") {
			return true
		}
	}
	return false
}

// ResolvePatterns joins base with each pattern, expands it and returns the
// union of all expansions.
func (e *Enumerator) ResolvePatterns(base string, patterns []string) (Set, error) {
	out := New()
	for _, pattern := range patterns {
		expanded, err := e.ExpandPattern(JoinPattern(base, pattern))
		if err != nil {
			return nil, err
		}
		out.Merge(expanded)
	}
	return out, nil
}

// JoinPattern joins base and pattern without cleaning away a trailing
// recursive marker.
func JoinPattern(base, pattern string) string {
	if filepath.IsAbs(pattern) {
		return pattern
	}
	return strings.TrimSuffix(base, string(filepath.Separator)) + string(filepath.Separator) + pattern
}
