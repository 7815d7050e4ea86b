package output

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/disiqueira/gotree/v3"
)

// RenderTree draws relative paths as a directory tree under a root label
func RenderTree(root string, paths []string) string {
	tree := gotree.New(root)
	nodes := map[string]gotree.Tree{"": tree}

	sorted := append([]string(nil), paths...)
	sort.Strings(sorted)

	for _, p := range sorted {
		parts := strings.Split(filepath.ToSlash(p), "/")
		parent := ""
		for i, part := range parts {
			key := strings.Join(parts[:i+1], "/")
			node, ok := nodes[key]
			if !ok {
				node = nodes[parent].Add(part)
				nodes[key] = node
			}
			parent = key
		}
	}
	return tree.Print()
}
