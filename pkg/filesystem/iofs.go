package filesystem

import (
	"io"
	"io/fs"
	"path"
)

// IOFS exposes fsys as an io/fs.FS rooted at "/". Names are the absolute
// path without its leading slash.
func IOFS(fsys FS) fs.FS {
	return &ioFS{fsys: fsys}
}

type ioFS struct {
	fsys FS
}

var (
	_ fs.StatFS    = (*ioFS)(nil)
	_ fs.ReadDirFS = (*ioFS)(nil)
)

func (f *ioFS) abs(op, name string) (string, error) {
	if !fs.ValidPath(name) {
		return "", &fs.PathError{Op: op, Path: name, Err: fs.ErrInvalid}
	}
	return path.Join("/", name), nil
}

func (f *ioFS) Open(name string) (fs.File, error) {
	p, err := f.abs("open", name)
	if err != nil {
		return nil, err
	}
	info, err := f.fsys.Stat(p)
	if err != nil {
		return nil, err
	}
	if info.IsDir() {
		return &ioFile{info: info}, nil
	}
	rc, err := f.fsys.Open(p)
	if err != nil {
		return nil, err
	}
	return &ioFile{info: info, rc: rc}, nil
}

func (f *ioFS) Stat(name string) (fs.FileInfo, error) {
	p, err := f.abs("stat", name)
	if err != nil {
		return nil, err
	}
	return f.fsys.Stat(p)
}

func (f *ioFS) ReadDir(name string) ([]fs.DirEntry, error) {
	p, err := f.abs("readdir", name)
	if err != nil {
		return nil, err
	}
	return f.fsys.ReadDir(p)
}

// ioFile is an opened file; directories are read through ReadDir only
type ioFile struct {
	info fs.FileInfo
	rc   io.ReadCloser
}

func (f *ioFile) Stat() (fs.FileInfo, error) { return f.info, nil }

func (f *ioFile) Read(b []byte) (int, error) {
	if f.rc == nil {
		return 0, &fs.PathError{Op: "read", Path: f.info.Name(), Err: fs.ErrInvalid}
	}
	return f.rc.Read(b)
}

func (f *ioFile) Close() error {
	if f.rc == nil {
		return nil
	}
	return f.rc.Close()
}
