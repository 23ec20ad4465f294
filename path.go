package reactor

import "strings"

// splitPath splits a "/"-delimited path into its non-empty segments. Repeated slashes collapse
// (empty segments are discarded) and the empty path yields a nil slice, denoting the root.
func splitPath(p string) []string {
	if p == "" {
		return nil
	}
	raw := strings.Split(p, "/")
	segs := make([]string, 0, len(raw))
	for _, s := range raw {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return segs
}

// joinPath combines segments into a single "/"-delimited path.
func joinPath(segs []string) string {
	return strings.Join(segs, "/")
}

// parentPath returns the path one level up from p, and whether p had a parent at all (the root
// has none).
func parentPath(segs []string) ([]string, bool) {
	if len(segs) == 0 {
		return nil, false
	}
	return segs[:len(segs)-1], true
}

// lastSegment returns the final segment of segs and whether segs was non-empty.
func lastSegment(segs []string) (string, bool) {
	if len(segs) == 0 {
		return "", false
	}
	return segs[len(segs)-1], true
}
