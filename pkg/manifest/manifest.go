// Package manifest describes a directory tree as a sorted list of entries
// with content digests. Two trees with equal manifests hold the same files,
// the same modes and the same symlink targets.
package manifest

import (
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/arthur-debert/kegpack/pkg/errors"
	"github.com/arthur-debert/kegpack/pkg/filesystem"
)

// Kind is the type of a manifest entry
type Kind string

const (
	KindFile    Kind = "file"
	KindDir     Kind = "dir"
	KindSymlink Kind = "symlink"
	KindOther   Kind = "other"
)

// Entry is one path of the tree
type Entry struct {
	Path   string `yaml:"path"`
	Kind   Kind   `yaml:"kind"`
	Mode   string `yaml:"mode"`
	Size   int64  `yaml:"size,omitempty"`
	Target string `yaml:"target,omitempty"`
	Digest string `yaml:"digest,omitempty"`
}

// Manifest is the description of a tree
type Manifest struct {
	Root    string  `yaml:"root"`
	Digest  string  `yaml:"digest"`
	Entries []Entry `yaml:"entries"`
}

// Build walks root without following symlinks
func Build(fsys filesystem.FS, root string) (*Manifest, error) {
	info, err := fsys.Stat(root)
	if err != nil || !info.IsDir() {
		return nil, errors.Newf(errors.ErrSourceNotFound, "%s is not a directory", root).
			WithDetail("path", root)
	}

	m := &Manifest{Root: root}
	if err := m.walk(fsys, root, ""); err != nil {
		return nil, err
	}
	sort.Slice(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
	m.Digest = m.computeDigest()
	return m, nil
}

func (m *Manifest) walk(fsys filesystem.FS, root, rel string) error {
	entries, err := fsys.ReadDir(filepath.Join(root, rel))
	if err != nil {
		return errors.Wrapf(err, errors.ErrEnumerate, "failed to read %s", filepath.Join(root, rel))
	}

	for _, de := range entries {
		childRel := filepath.Join(rel, de.Name())
		entry, err := describe(fsys, filepath.Join(root, childRel), childRel)
		if err != nil {
			return err
		}
		m.Entries = append(m.Entries, entry)

		if entry.Kind == KindDir {
			if err := m.walk(fsys, root, childRel); err != nil {
				return err
			}
		}
	}
	return nil
}

func describe(fsys filesystem.FS, path, rel string) (Entry, error) {
	info, err := fsys.Lstat(path)
	if err != nil {
		return Entry{}, errors.Wrapf(err, errors.ErrEnumerate, "failed to stat %s", path)
	}

	entry := Entry{Path: filepath.ToSlash(rel), Mode: info.Mode().Perm().String()}
	switch {
	case info.Mode()&fs.ModeSymlink != 0:
		entry.Kind = KindSymlink
		if entry.Target, err = fsys.Readlink(path); err != nil {
			return Entry{}, errors.Wrapf(err, errors.ErrEnumerate, "failed to read link %s", path)
		}
	case info.IsDir():
		entry.Kind = KindDir
	case info.Mode().IsRegular():
		entry.Kind = KindFile
		entry.Size = info.Size()
		if entry.Digest, err = digestFile(fsys, path); err != nil {
			return Entry{}, err
		}
	default:
		entry.Kind = KindOther
	}
	return entry, nil
}

func digestFile(fsys filesystem.FS, path string) (string, error) {
	f, err := fsys.Open(path)
	if err != nil {
		return "", errors.Wrapf(err, errors.ErrEnumerate, "failed to open %s", path)
	}
	defer func() { _ = f.Close() }()

	h := xxhash.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", errors.Wrapf(err, errors.ErrEnumerate, "failed to read %s", path)
	}
	return hexSum(h.Sum64()), nil
}

// computeDigest hashes the entries in order. The root path is not part of
// the digest so trees at different locations compare equal.
func (m *Manifest) computeDigest() string {
	h := xxhash.New()
	var size [8]byte
	for _, e := range m.Entries {
		for _, field := range []string{e.Path, string(e.Kind), e.Mode, e.Target, e.Digest} {
			_, _ = h.WriteString(field)
			_, _ = h.Write([]byte{0})
		}
		binary.BigEndian.PutUint64(size[:], uint64(e.Size))
		_, _ = h.Write(size[:])
	}
	return hexSum(h.Sum64())
}

// Equal reports whether two manifests describe the same tree content
func (m *Manifest) Equal(other *Manifest) bool {
	return other != nil && m.Digest == other.Digest
}

// Files returns the paths of regular files
func (m *Manifest) Files() []string {
	return m.pathsOf(KindFile)
}

// Symlinks returns the symlink paths mapped to their targets
func (m *Manifest) Symlinks() map[string]string {
	out := make(map[string]string)
	for _, e := range m.Entries {
		if e.Kind == KindSymlink {
			out[e.Path] = e.Target
		}
	}
	return out
}

func (m *Manifest) pathsOf(kind Kind) []string {
	var out []string
	for _, e := range m.Entries {
		if e.Kind == kind {
			out = append(out, e.Path)
		}
	}
	return out
}

// Encode writes the manifest as YAML
func (m *Manifest) Encode(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return errors.Wrap(err, errors.ErrFileWrite, "failed to encode manifest")
	}
	return enc.Close()
}

// Decode reads a manifest written by Encode
func Decode(r io.Reader) (*Manifest, error) {
	var m Manifest
	if err := yaml.NewDecoder(r).Decode(&m); err != nil {
		return nil, errors.Wrap(err, errors.ErrInvalidInput, "failed to decode manifest")
	}
	return &m, nil
}

// Write encodes the manifest into the file at path
func (m *Manifest) Write(fsys filesystem.FS, path string) (err error) {
	w, err := fsys.Create(path, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "failed to create manifest %s", path).
			WithDetail("path", path)
	}
	defer func() {
		if cerr := w.Close(); cerr != nil && err == nil {
			err = errors.Wrapf(cerr, errors.ErrFileWrite, "failed to write manifest %s", path)
		}
	}()
	return m.Encode(w)
}

func hexSum(sum uint64) string {
	return fmt.Sprintf("%016x", sum)
}
