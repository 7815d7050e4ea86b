package testutil

import (
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/arthur-debert/kegpack/pkg/filesystem"
)

// FailingFS wraps an FS and fails selected operations. FailOn receives the
// operation name ("Create", "Symlink", "Lchown", ...) and the path; a non-nil
// return is returned in place of calling the wrapped FS.
type FailingFS struct {
	filesystem.FS
	FailOn func(op, path string) error
	Calls  []string
}

// NewFailingFS wraps the OS filesystem
func NewFailingFS(failOn func(op, path string) error) *FailingFS {
	return &FailingFS{FS: filesystem.NewOS(), FailOn: failOn}
}

// FailOp returns a FailOn func failing every call of op
func FailOp(op string) func(string, string) error {
	return func(gotOp, path string) error {
		if gotOp == op {
			return fmt.Errorf("injected %s failure: %s", op, path)
		}
		return nil
	}
}

func (f *FailingFS) check(op, path string) error {
	f.Calls = append(f.Calls, op+" "+path)
	if f.FailOn == nil {
		return nil
	}
	return f.FailOn(op, path)
}

func (f *FailingFS) ReadDir(name string) ([]fs.DirEntry, error) {
	if err := f.check("ReadDir", name); err != nil {
		return nil, err
	}
	return f.FS.ReadDir(name)
}

func (f *FailingFS) Open(name string) (io.ReadCloser, error) {
	if err := f.check("Open", name); err != nil {
		return nil, err
	}
	return f.FS.Open(name)
}

func (f *FailingFS) Create(name string, perm fs.FileMode) (io.WriteCloser, error) {
	if err := f.check("Create", name); err != nil {
		return nil, err
	}
	return f.FS.Create(name, perm)
}

func (f *FailingFS) WriteFile(name string, data []byte, perm fs.FileMode) error {
	if err := f.check("WriteFile", name); err != nil {
		return err
	}
	return f.FS.WriteFile(name, data, perm)
}

func (f *FailingFS) MkdirAll(path string, perm fs.FileMode) error {
	if err := f.check("MkdirAll", path); err != nil {
		return err
	}
	return f.FS.MkdirAll(path, perm)
}

func (f *FailingFS) RemoveAll(path string) error {
	if err := f.check("RemoveAll", path); err != nil {
		return err
	}
	return f.FS.RemoveAll(path)
}

func (f *FailingFS) Symlink(oldname, newname string) error {
	if err := f.check("Symlink", newname); err != nil {
		return err
	}
	return f.FS.Symlink(oldname, newname)
}

func (f *FailingFS) Chmod(name string, mode fs.FileMode) error {
	if err := f.check("Chmod", name); err != nil {
		return err
	}
	return f.FS.Chmod(name, mode)
}

func (f *FailingFS) Chtimes(name string, atime, mtime time.Time) error {
	if err := f.check("Chtimes", name); err != nil {
		return err
	}
	return f.FS.Chtimes(name, atime, mtime)
}

func (f *FailingFS) Lchown(name string, uid, gid int) error {
	if err := f.check("Lchown", name); err != nil {
		return err
	}
	return f.FS.Lchown(name, uid, gid)
}
