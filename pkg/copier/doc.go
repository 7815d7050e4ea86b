// Package copier reproduces a selected set of source files in a destination
// tree while keeping the source's symlink topology.
//
// Every path of the copy set is resolved to its canonical target. If the
// leaf name of the path, looked up next to the canonical target, is a real
// file, the file is copied. If it is a symlink, the destination path is
// recorded and later recreated as a relative symlink to the canonical
// target's base name in the same destination directory. Each canonical
// target is physically copied at most once; further physical references
// become relative links to that one copy.
//
// A dangling source link resolves to the last missing target of its chain
// and is recreated like any other link, then listed in Result.Dangling.
//
// Permissions and timestamps are always preserved. Ownership and extended
// attributes are copied on a best-effort basis and failures are reported as
// warnings in MetadataResult, never as errors.
//
// The first copy or link failure aborts the copy. Nothing already written is
// removed.
package copier
