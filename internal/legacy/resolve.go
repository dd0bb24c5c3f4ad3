package legacy

import "strings"

// DenyEntry blocks one category name from being reattached directly to
// the main key by the prefix walk.
type DenyEntry struct {
	Match  string
	Reason string
}

// DenyList guards the prefix walk against known deep orphans. Matching is
// by exact Swedish name.
type DenyList []DenyEntry

// Denies reports whether a category with the given Swedish name may not
// be attached to the main key, and why.
func (d DenyList) Denies(nameSV string) (string, bool) {
	for _, entry := range d {
		if entry.Match == nameSV {
			return entry.Reason, true
		}
	}
	return "", false
}

// DefaultDenyList covers subassembly groups that exist once per parent
// assembly. Attaching them to the catalog root would merge unrelated
// drawings into one listing.
var DefaultDenyList = DenyList{
	{Match: "Monteringsdetaljer", Reason: "mounting-part groups repeat under every assembly"},
}

// ResolveParentByPrefix walks a hyphenated key toward the root, dropping
// one trailing segment at a time, and returns the first known key.
// Returns "" when no ancestor exists.
func ResolveParentByPrefix(key string, exists func(string) bool) string {
	parts := strings.Split(key, "-")
	for len(parts) > 1 {
		parts = parts[:len(parts)-1]
		candidate := strings.Join(parts, "-")
		if exists(candidate) {
			return candidate
		}
	}
	return ""
}

// ParentUpdate is one reattachment produced by FixParents.
type ParentUpdate struct {
	Key       string
	ParentKey string
}

// SkippedOrphan records a category the deny-list kept off the root.
type SkippedOrphan struct {
	Key    string
	Name   string
	Reason string
}

// FixParents finds categories under a main key whose stored parent is
// missing and reattaches them by prefix. Orphans that would land directly
// on the main key are checked against the deny-list first.
func FixParents(categories []CategoryRow, mainKey string, deny DenyList) ([]ParentUpdate, []SkippedOrphan) {
	known := make(map[string]bool, len(categories))
	for _, c := range categories {
		known[c.Key] = true
	}

	var updates []ParentUpdate
	var skipped []SkippedOrphan
	for _, c := range categories {
		if c.IsMain || (c.ParentKey != "" && known[c.ParentKey]) {
			continue
		}
		parent := ResolveParentByPrefix(c.Key, func(k string) bool { return known[k] })
		if parent == "" {
			continue
		}
		if parent == mainKey {
			if reason, denied := deny.Denies(c.NameSV); denied {
				skipped = append(skipped, SkippedOrphan{Key: c.Key, Name: c.NameSV, Reason: reason})
				continue
			}
		}
		updates = append(updates, ParentUpdate{Key: c.Key, ParentKey: parent})
	}
	return updates, skipped
}

// CategoryRow is the minimal category shape FixParents works on.
type CategoryRow struct {
	Key       string
	ParentKey string
	NameSV    string
	IsMain    bool
}
