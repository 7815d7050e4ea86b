//go:build unix

package fileset

import (
	"io/fs"
	"syscall"
)

type fileID struct {
	dev uint64
	ino uint64
}

// identify returns the device and inode of info when the platform exposes
// them.
func identify(info fs.FileInfo) (fileID, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return fileID{}, false
	}
	return fileID{dev: uint64(st.Dev), ino: uint64(st.Ino)}, true
}
