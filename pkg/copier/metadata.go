package copier

import (
	"io"
	"io/fs"
	"path/filepath"

	"github.com/arthur-debert/kegpack/pkg/errors"
)

const permBits = fs.ModePerm | fs.ModeSetuid | fs.ModeSetgid | fs.ModeSticky

// CopyFile copies the contents of src to dst, following src if it is a
// link, and carries over its metadata. Mode and timestamps must apply;
// ownership and extended attributes are best-effort.
func (c *Copier) CopyFile(src, dst string, makeDirs bool) (MetadataResult, error) {
	info, err := c.fs.Stat(src)
	if err != nil {
		return MetadataResult{}, copyFailure(err, "failed to stat %s", src)
	}
	if !info.Mode().IsRegular() {
		return MetadataResult{}, errors.Newf(errors.ErrCopyFailed, "%s is not a regular file", src).
			WithDetail("path", src).
			WithStack()
	}

	if makeDirs {
		if err := c.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
			return MetadataResult{}, copyFailure(err, "failed to create directory for %s", dst)
		}
	}

	if err := c.copyContents(src, dst, info.Mode().Perm()); err != nil {
		return MetadataResult{}, err
	}

	if err := c.fs.Chmod(dst, info.Mode()&permBits); err != nil {
		return MetadataResult{}, copyFailure(err, "failed to set mode on %s", dst)
	}
	if err := c.fs.Chtimes(dst, accessTime(info), info.ModTime()); err != nil {
		return MetadataResult{}, copyFailure(err, "failed to set times on %s", dst)
	}

	meta := MetadataResult{Applied: true}
	if uid, gid, ok := ownerOf(info); ok {
		if err := c.fs.Lchown(dst, uid, gid); err != nil {
			meta.warn("owner not preserved: " + err.Error())
		}
	}
	for _, w := range copyXattrs(src, dst) {
		meta.warn(w)
	}

	if len(meta.Warnings) > 0 {
		c.logger.Debug().Str("path", dst).Strs("warnings", meta.Warnings).Msg("Metadata partially copied")
	}
	return meta, nil
}

func (c *Copier) copyContents(src, dst string, perm fs.FileMode) (err error) {
	in, err := c.fs.Open(src)
	if err != nil {
		return copyFailure(err, "failed to open %s", src)
	}
	defer func() { _ = in.Close() }()

	out, err := c.fs.Create(dst, perm)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create %s", dst).
			WithDetail("path", dst).
			WithStack()
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrFileWrite, "failed to close %s", dst).
				WithDetail("path", dst).
				WithStack()
		}
	}()

	if _, err := io.Copy(out, in); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to write %s", dst).
			WithDetail("path", dst).
			WithStack()
	}
	return nil
}
