package tables

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// Group tags the subsystem an obsolete table belongs to. It has no effect on
// matching and is kept for reporting only.
type Group string

const (
	GroupCoreDocument Group = "core_document"
	GroupHybrid       Group = "hybrid"
	GroupAggregate    Group = "aggregate"
	GroupDIMP         Group = "dimp"
	GroupHistory      Group = "history"
	GroupCustom       Group = "custom"
)

// Entry maps one obsolete table to its replacement.
type Entry struct {
	Obsolete    string `json:"obsolete" yaml:"obsolete"`
	Replacement string `json:"replacement" yaml:"replacement"`
	Group       Group  `json:"group" yaml:"group"`
}

var identifierRe = regexp.MustCompile(`^[A-Z0-9_]+$`)

// KnowledgeBase is an immutable obsolete -> replacement lookup.
// It is safe for concurrent use.
type KnowledgeBase struct {
	entries map[string]Entry
	names   []string
}

// New validates entries and freezes them into a KnowledgeBase.
// Keys are upper-cased; duplicates (after upper-casing) are rejected.
func New(entries []Entry) (*KnowledgeBase, error) {
	kb := &KnowledgeBase{entries: make(map[string]Entry, len(entries))}

	for _, e := range entries {
		key := strings.ToUpper(strings.TrimSpace(e.Obsolete))
		if key == "" {
			return nil, fmt.Errorf("empty obsolete table name")
		}
		if !identifierRe.MatchString(key) {
			return nil, fmt.Errorf("invalid table name %q", e.Obsolete)
		}
		replacement := strings.TrimSpace(e.Replacement)
		if replacement == "" {
			return nil, fmt.Errorf("table %s: empty replacement", key)
		}
		if _, dup := kb.entries[key]; dup {
			return nil, fmt.Errorf("duplicate table %s", key)
		}
		if e.Group == "" {
			e.Group = GroupCustom
		}
		e.Obsolete = key
		e.Replacement = replacement
		kb.entries[key] = e
		kb.names = append(kb.names, key)
	}

	// Longest first so a name never shadows a longer one sharing its prefix.
	sort.Slice(kb.names, func(i, j int) bool {
		a, b := kb.names[i], kb.names[j]
		if len(a) != len(b) {
			return len(a) > len(b)
		}
		return a < b
	})
	return kb, nil
}

// MustNew is New for static data; it panics on invalid entries.
func MustNew(entries []Entry) *KnowledgeBase {
	kb, err := New(entries)
	if err != nil {
		panic(err)
	}
	return kb
}

// Lookup returns the replacement for name, case-insensitively.
func (kb *KnowledgeBase) Lookup(name string) (string, bool) {
	e, ok := kb.entries[strings.ToUpper(name)]
	if !ok {
		return "", false
	}
	return e.Replacement, true
}

// Entry returns the full entry for name, case-insensitively.
func (kb *KnowledgeBase) Entry(name string) (Entry, bool) {
	e, ok := kb.entries[strings.ToUpper(name)]
	return e, ok
}

// Names returns all obsolete table names ordered by descending length,
// ties in lexical order.
func (kb *KnowledgeBase) Names() []string {
	return append([]string(nil), kb.names...)
}

// Entries returns all entries in Names order.
func (kb *KnowledgeBase) Entries() []Entry {
	out := make([]Entry, 0, len(kb.names))
	for _, n := range kb.names {
		out = append(out, kb.entries[n])
	}
	return out
}

// Groups returns the entries keyed by group, each group sorted by name.
func (kb *KnowledgeBase) Groups() map[Group][]Entry {
	out := make(map[Group][]Entry)
	for _, n := range kb.names {
		e := kb.entries[n]
		out[e.Group] = append(out[e.Group], e)
	}
	for g := range out {
		sort.Slice(out[g], func(i, j int) bool { return out[g][i].Obsolete < out[g][j].Obsolete })
	}
	return out
}

// Len returns the number of obsolete tables.
func (kb *KnowledgeBase) Len() int {
	return len(kb.names)
}

// Merge returns a new KnowledgeBase with other's entries layered over kb's.
func (kb *KnowledgeBase) Merge(other *KnowledgeBase) *KnowledgeBase {
	merged := make(map[string]Entry, kb.Len()+other.Len())
	for k, e := range kb.entries {
		merged[k] = e
	}
	for k, e := range other.entries {
		merged[k] = e
	}
	entries := make([]Entry, 0, len(merged))
	for _, e := range merged {
		entries = append(entries, e)
	}
	// Both inputs were validated already.
	return MustNew(entries)
}
