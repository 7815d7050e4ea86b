package copier

import (
	"sort"
)

// MetadataResult reports how much of a file's metadata could be carried over
type MetadataResult struct {
	Applied  bool
	Warnings []string
}

func (m *MetadataResult) warn(msg string) {
	m.Warnings = append(m.Warnings, msg)
	m.Applied = false
}

// SymlinkGroups maps a canonical target to the destination paths that must
// become links to it
type SymlinkGroups map[string][]string

// Add registers dst as a link to canonical
func (g SymlinkGroups) Add(canonical, dst string) {
	g[canonical] = append(g[canonical], dst)
}

// Targets returns the canonical targets in lexical order
func (g SymlinkGroups) Targets() []string {
	out := make([]string, 0, len(g))
	for target := range g {
		out = append(out, target)
	}
	sort.Strings(out)
	return out
}

// Result describes what a copy wrote
type Result struct {
	// Copied lists the destination paths of physical copies in copy order
	Copied []string
	// Linked maps each created symlink to its link text
	Linked map[string]string
	// Groups is the deferred link table the links were created from
	Groups SymlinkGroups
	// Dangling lists created links that do not resolve to a regular file
	Dangling []string
	// Metadata holds the metadata outcome of every physical copy
	Metadata map[string]MetadataResult
}

func newResult() *Result {
	return &Result{
		Linked:   make(map[string]string),
		Groups:   make(SymlinkGroups),
		Metadata: make(map[string]MetadataResult),
	}
}

// Warnings returns all metadata warnings, ordered by destination path
func (r *Result) Warnings() []string {
	paths := make([]string, 0, len(r.Metadata))
	for p := range r.Metadata {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var out []string
	for _, p := range paths {
		for _, w := range r.Metadata[p].Warnings {
			out = append(out, p+": "+w)
		}
	}
	return out
}
