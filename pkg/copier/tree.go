package copier

import (
	"path/filepath"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/fileset"
)

// CopyTree overlays the tree at src onto dst. Links in src are followed,
// existing files in dst are overwritten and missing directories created.
func (c *Copier) CopyTree(src, dst string) (*Result, error) {
	info, err := c.fs.Stat(src)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrPayloadNotFound, "%s is not a directory", src).
			WithDetail("path", src)
	}

	result := newResult()
	if err := c.fs.MkdirAll(dst, 0755); err != nil {
		return result, copyFailure(err, "failed to create %s", dst)
	}

	enum := fileset.NewEnumerator(fileset.WithFS(c.fs))
	for _, rel := range enum.EnumerateTree(src).Relative(src) {
		target := filepath.Join(dst, rel)
		meta, err := c.CopyFile(filepath.Join(src, rel), target, true)
		if err != nil {
			return result, err
		}
		result.Copied = append(result.Copied, target)
		result.Metadata[target] = meta
	}

	c.logger.Debug().Str("src", src).Str("dst", dst).Int("files", len(result.Copied)).Msg("Overlaid tree")
	return result, nil
}
