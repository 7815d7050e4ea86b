// Package testutil provides helpers for tests that work on real directory
// trees.
//
// TestTree creates files, executables and symlinks under a temp dir and
// asserts on what a copy produced. FailingFS wraps the OS filesystem and
// fails selected operations to exercise abort paths.
package testutil
