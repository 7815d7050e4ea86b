// Package assembler drives a packing run: it checks the source and
// destination, computes the copy set from the selection rules, copies it
// with the symlink-aware copier, writes the version marker and overlays the
// payload tree.
//
// Every precondition is checked before the destination is touched. Once
// copying starts, the first failure aborts the run and the partial
// destination is left in place.
package assembler
