//go:build linux || darwin || freebsd || netbsd

package copier

import (
	"bytes"
	"io/fs"
	"syscall"

	"golang.org/x/sys/unix"
)

func ownerOf(info fs.FileInfo) (int, int, bool) {
	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return 0, 0, false
	}
	return int(st.Uid), int(st.Gid), true
}

// copyXattrs copies extended attributes and returns one warning per
// attribute that could not be carried over
func copyXattrs(src, dst string) []string {
	names, err := listXattrs(src)
	if err != nil {
		if err == unix.ENOTSUP || err == unix.EOPNOTSUPP {
			return nil
		}
		return []string{"extended attributes not read: " + err.Error()}
	}

	var warnings []string
	for _, name := range names {
		value, err := getXattr(src, name)
		if err != nil {
			warnings = append(warnings, "xattr "+name+" not read: "+err.Error())
			continue
		}
		if err := unix.Setxattr(dst, name, value, 0); err != nil {
			warnings = append(warnings, "xattr "+name+" not preserved: "+err.Error())
		}
	}
	return warnings
}

func listXattrs(path string) ([]string, error) {
	size, err := unix.Listxattr(path, nil)
	if err != nil || size == 0 {
		return nil, err
	}
	buf := make([]byte, size)
	size, err = unix.Listxattr(path, buf)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, raw := range bytes.Split(buf[:size], []byte{0}) {
		if len(raw) > 0 {
			names = append(names, string(raw))
		}
	}
	return names, nil
}

func getXattr(path, name string) ([]byte, error) {
	size, err := unix.Getxattr(path, name, nil)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, size)
	size, err = unix.Getxattr(path, name, buf)
	if err != nil {
		return nil, err
	}
	return buf[:size], nil
}
