// Package filesystem provides the filesystem seam used by kegpack.
//
// The enumerator and the copier perform all of their I/O through the FS
// interface, so tests can wrap the OS implementation to inject failures
// part way through a copy.
package filesystem
