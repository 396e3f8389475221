package solver

import "hexmind/game"

// Bound kinds for transposition entries, standard alpha-beta flavors.
type Bound uint8

const (
	BoundExact Bound = iota
	BoundLower
	BoundUpper
)

type ttEntry struct {
	depth   int
	score   int
	move    game.Move
	hasMove bool
	bound   Bound
}

// Table is a process-local, purely advisory transposition table. It is
// bounded by an entry ceiling and safe to evict at any time; dropping
// it changes search time, never the result.
type Table struct {
	entries    map[uint64]ttEntry
	maxEntries int
	hits       int
	probes     int
}

// NewTable creates a table holding at most maxEntries positions. A
// non-positive ceiling disables storage entirely.
func NewTable(maxEntries int) *Table {
	return &Table{
		entries:    make(map[uint64]ttEntry, 1024),
		maxEntries: maxEntries,
	}
}

// Get returns the stored entry when its depth satisfies the request.
// Shallower stored results are ignored rather than trusted.
func (t *Table) Get(key uint64, depth int) (ttEntry, bool) {
	t.probes++
	e, ok := t.entries[key]
	if !ok || e.depth < depth {
		return ttEntry{}, false
	}
	t.hits++
	return e, true
}

// Put stores an entry, preferring deeper results over shallower ones
// for the same key. When the ceiling is hit an arbitrary entry is
// evicted; the table is advisory, so any victim is fine.
func (t *Table) Put(key uint64, e ttEntry) {
	if t.maxEntries <= 0 {
		return
	}
	if old, ok := t.entries[key]; ok {
		if old.depth > e.depth {
			return
		}
	} else if len(t.entries) >= t.maxEntries {
		for k := range t.entries {
			delete(t.entries, k)
			break
		}
	}
	t.entries[key] = e
}

// Reset drops every entry. Called between independent top-level
// searches; no solver state may persist across player turns.
func (t *Table) Reset() {
	t.entries = make(map[uint64]ttEntry, 1024)
	t.hits = 0
	t.probes = 0
}

// Stats reports probe/hit counters for diagnostics.
func (t *Table) Stats() (probes, hits int) {
	return t.probes, t.hits
}

func (t *Table) len() int {
	return len(t.entries)
}
