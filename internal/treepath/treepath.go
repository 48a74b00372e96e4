// Package treepath encodes an entry's full ancestry as a materialized
// path string: UUID-derived segments joined by ".". Prefix matching on
// the stored path answers ancestor/descendant queries without
// recursive joins; the trade-off is an O(subtree) rewrite on move.
package treepath

import (
	"strings"

	"github.com/google/uuid"
)

// Separator joins path segments. It must never occur inside a segment
// or descendant matching breaks silently, which is why Segment maps
// the UUID hyphens to underscores.
const Separator = "."

// Segment converts an id into a path-legal segment.
func Segment(id uuid.UUID) string {
	return strings.ReplaceAll(id.String(), "-", "_")
}

// Build appends the node's segment to its parent path. A root node
// (empty parentPath) gets the bare segment.
func Build(parentPath string, id uuid.UUID) string {
	seg := Segment(id)
	if parentPath == "" {
		return seg
	}
	return parentPath + Separator + seg
}

// Parent strips the last segment. The second return is false for a
// root path, which has no parent.
func Parent(path string) (string, bool) {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return "", false
	}
	return path[:idx], true
}

// Depth is the number of segments minus one; roots sit at depth 0.
func Depth(path string) int {
	if path == "" {
		return 0
	}
	return strings.Count(path, Separator)
}

// IsDescendantOf reports whether path sits strictly below ancestorPath.
// A path is never its own descendant.
func IsDescendantOf(path, ancestorPath string) bool {
	return strings.HasPrefix(path, ancestorPath+Separator)
}

// IsRoot reports whether the path has a single segment.
func IsRoot(path string) bool {
	return !strings.Contains(path, Separator)
}

// Root returns the first segment of the path.
func Root(path string) string {
	if idx := strings.Index(path, Separator); idx >= 0 {
		return path[:idx]
	}
	return path
}

// Rebase rewrites a descendant path after its ancestor moved from
// oldPrefix to newPrefix, preserving the relative suffix.
func Rebase(path, oldPrefix, newPrefix string) string {
	if !IsDescendantOf(path, oldPrefix) {
		return path
	}
	return newPrefix + path[len(oldPrefix):]
}
