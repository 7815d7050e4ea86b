package copier

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
	"github.com/arthur-debert/kegpack/pkg/logging"
)

// Copier copies a file set between two trees
type Copier struct {
	fs     filesystem.FS
	logger zerolog.Logger
}

// Option configures a Copier
type Option func(*Copier)

// WithFS replaces the OS filesystem
func WithFS(fsys filesystem.FS) Option {
	return func(c *Copier) {
		c.fs = fsys
	}
}

// New creates a copier over the OS filesystem
func New(opts ...Option) *Copier {
	c := &Copier{
		fs:     filesystem.NewOS(),
		logger: logging.GetLogger("copier"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy reproduces files, all located under srcBase, below dstBase. The
// returned result is non-nil even when err is not, and describes what was
// written before the failure.
func (c *Copier) Copy(srcBase, dstBase string, files fileset.Set) (*Result, error) {
	result := newResult()

	// physical maps a canonical target to its one physical copy
	physical := make(map[string]string)
	// danglingSrc maps the destination of a dangling link to its source
	danglingSrc := make(map[string]string)
	var extra []linkRequest

	for _, path := range files.Sorted() {
		canonical, dangling, err := c.resolve(path)
		if err != nil {
			return result, copyFailure(err, "failed to resolve %s", path).WithDetail("path", path)
		}

		dst, err := rebase(path, srcBase, dstBase)
		if err != nil {
			return result, err
		}

		if dangling {
			// Recreated like any other link; link() reports it as dangling.
			c.logger.Debug().Str("path", path).Str("target", canonical).Msg("Source link is dangling")
			result.Groups.Add(canonical, dst)
			danglingSrc[dst] = path
			continue
		}

		// The directory part is resolved, the leaf name is kept: this tells
		// whether the leaf itself is a link rather than one of its parents.
		leaf := filepath.Join(filepath.Dir(canonical), filepath.Base(path))

		info, err := c.fs.Lstat(leaf)
		if err != nil {
			return result, copyFailure(err, "failed to inspect %s (for %s)", leaf, path)
		}

		if info.Mode()&fs.ModeSymlink != 0 {
			result.Groups.Add(canonical, dst)
			continue
		}

		if first, ok := physical[canonical]; ok {
			// Already copied elsewhere; link to it instead of a second copy.
			extra = append(extra, linkRequest{link: dst, target: first})
			continue
		}

		meta, err := c.CopyFile(leaf, dst, true)
		if err != nil {
			return result, err
		}
		physical[canonical] = dst
		result.Copied = append(result.Copied, dst)
		result.Metadata[dst] = meta

		c.logger.Trace().Str("src", leaf).Str("dst", dst).Msg("Copied file")
	}

	for _, canonical := range result.Groups.Targets() {
		links := result.Groups[canonical]
		sort.Strings(links)
		for _, dst := range links {
			target := filepath.Join(filepath.Dir(dst), filepath.Base(canonical))
			if first, ok := physical[canonical]; ok && first != target {
				target = first
			}
			if src, ok := danglingSrc[dst]; ok && target == dst {
				// A sibling link would point at itself.
				if err := c.keepLink(result, src, dst); err != nil {
					return result, err
				}
				continue
			}
			if err := c.link(result, target, dst); err != nil {
				return result, err
			}
		}
	}

	for _, req := range extra {
		if err := c.link(result, req.target, req.link); err != nil {
			return result, err
		}
	}

	c.logger.Info().
		Int("copied", len(result.Copied)).
		Int("linked", len(result.Linked)).
		Int("dangling", len(result.Dangling)).
		Msg("Copy completed")

	return result, nil
}

// maxLinkHops bounds the link chain followed for a dangling path
const maxLinkHops = 255

// resolve returns the canonical target of path. When the chain of links
// ends at a missing file, the last target is returned with dangling set:
// its directory part resolved, its final name kept as written.
func (c *Copier) resolve(path string) (string, bool, error) {
	canonical, err := c.fs.EvalSymlinks(path)
	if err == nil {
		return canonical, false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return "", false, err
	}

	current := path
	for hops := 0; hops < maxLinkHops; hops++ {
		// A missing path or parent is only dangling past the first hop.
		dir, err := c.fs.EvalSymlinks(filepath.Dir(current))
		if err != nil {
			if hops > 0 && errors.Is(err, fs.ErrNotExist) {
				return filepath.Clean(current), true, nil
			}
			return "", false, err
		}
		current = filepath.Join(dir, filepath.Base(current))

		info, err := c.fs.Lstat(current)
		if err != nil {
			if hops > 0 && errors.Is(err, fs.ErrNotExist) {
				return current, true, nil
			}
			return "", false, err
		}
		if info.Mode()&fs.ModeSymlink == 0 {
			canonical, err := c.fs.EvalSymlinks(current)
			if err != nil {
				return "", false, err
			}
			return canonical, false, nil
		}

		text, err := c.fs.Readlink(current)
		if err != nil {
			return "", false, err
		}
		if !filepath.IsAbs(text) {
			text = filepath.Join(filepath.Dir(current), text)
		}
		current = text
	}
	return "", false, fmt.Errorf("too many links resolving %s", path)
}

type linkRequest struct {
	link   string
	target string
}

func (c *Copier) link(result *Result, target, link string) error {
	if err := c.fs.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create directory for %s", link).
			WithDetail("path", link).
			WithStack()
	}

	text, err := RelativeSymlink(c.fs, target, link)
	if err != nil {
		return err
	}
	result.Linked[link] = text

	if info, err := c.fs.Stat(link); err != nil || !info.Mode().IsRegular() {
		c.logger.Warn().Str("link", link).Str("target", text).Msg("Link does not resolve to a regular file")
		result.Dangling = append(result.Dangling, link)
	}
	return nil
}

// keepLink recreates the source link src at dst with its original text
func (c *Copier) keepLink(result *Result, src, dst string) error {
	text, err := c.fs.Readlink(src)
	if err != nil {
		return copyFailure(err, "failed to read link %s", src).WithDetail("path", src)
	}
	if err := c.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create directory for %s", dst).
			WithDetail("path", dst).
			WithStack()
	}
	if err := c.fs.Symlink(text, dst); err != nil {
		return errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s -> %s", dst, text).
			WithDetail("path", dst).
			WithStack()
	}

	c.logger.Warn().Str("link", dst).Str("target", text).Msg("Link does not resolve to a regular file")
	result.Linked[dst] = text
	result.Dangling = append(result.Dangling, dst)
	return nil
}

// RelativeSymlink creates link as a symlink to target, both absolute, using
// the shortest relative link text. The working directory is not used.
func RelativeSymlink(fsys filesystem.FS, target, link string) (string, error) {
	text, err := filepath.Rel(filepath.Dir(link), target)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrSymlinkCreate, "cannot link %s to %s", link, target).
			WithDetail("path", link)
	}

	if err := fsys.Symlink(text, link); err != nil {
		return "", errors.Wrapf(err, errors.ErrSymlinkCreate, "failed to create symlink %s -> %s", link, text).
			WithDetail("path", link).
			WithStack()
	}
	return text, nil
}

// rebase maps path from below srcBase to the same location below dstBase
func rebase(path, srcBase, dstBase string) (string, error) {
	rel, err := filepath.Rel(srcBase, path)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", errors.Newf(errors.ErrCopyFailed, "%s is outside of %s", path, srcBase).
			WithDetail("path", path)
	}
	return filepath.Join(dstBase, rel), nil
}

func copyFailure(err error, format string, args ...interface{}) *errors.KegError {
	msg := fmt.Sprintf(format, args...)
	return errors.Wrap(err, errors.ErrCopyFailed, msg).WithStack()
}
