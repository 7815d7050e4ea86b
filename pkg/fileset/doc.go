// Package fileset holds the unordered path sets kegpack computes its
// selection with, and the enumerator that fills them from a source tree.
//
// Paths are always absolute and cleaned, so sets built from different
// patterns over the same tree can be combined with plain set arithmetic.
//
// Traversal follows symlinked directories as if they were real ones. A
// symlink to a file, or a dangling symlink, is reported as a file. Patterns
// ending in the recursive marker ("**") expand to a whole subtree; any other
// pattern is a single-level shell wildcard. As in the shell, a wildcard
// segment only matches dot-prefixed names if it starts with a dot itself.
package fileset
