package heap

import "ecmacore/pkg/value"

// StringTable is the heap's string subspace plus the content-keyed
// interning index described in spec 4.2: allocating a heap string for
// byte content already present returns the existing index rather than a
// fresh one, so two independently constructed strings of equal content
// are guaranteed to compare heap-index-equal, not merely byte-equal.
// Strings short enough to fit inline (<= value.MaxInlineStringBytes)
// never reach this table at all — SmallString values carry their bytes
// directly and have no heap index.
type StringTable struct {
	sub    *Subspace[string]
	intern map[string]uint32
}

func NewStringTable() *StringTable {
	return &StringTable{
		sub:    NewSubspace[string](),
		intern: make(map[string]uint32),
	}
}

// Intern returns the Value for s, inlining it when short enough and
// otherwise allocating (or reusing) a heap slot.
func (t *StringTable) Intern(s string) value.Value {
	if len(s) <= value.MaxInlineStringBytes {
		return value.SmallString(s)
	}
	if idx, ok := t.intern[s]; ok {
		return value.HeapString(idx)
	}
	idx := t.sub.Alloc(s)
	t.intern[s] = idx
	return value.HeapString(idx)
}

// StringAt implements value.StringReader.
func (t *StringTable) StringAt(index uint32) string { return t.sub.Get(index) }

// Mark marks index as live for this GC cycle.
func (t *StringTable) Mark(index uint32) bool { return t.sub.Mark(index) }

// Sweep compacts the subspace and rebuilds the intern index against the
// post-compaction indices.
func (t *StringTable) Sweep() ShiftTable {
	shift := t.sub.Sweep()
	rebuilt := make(map[string]uint32, len(t.intern))
	for s, oldIdx := range t.intern {
		newIdx := Remap(shift, oldIdx)
		if newIdx != 0 || oldIdx == 0 {
			rebuilt[s] = newIdx
		}
	}
	// Drop entries whose backing slot didn't survive sweep (newIdx==0
	// and oldIdx!=0 means collected, since index 0 is never a real
	// string's own index).
	for s, idx := range rebuilt {
		if idx == 0 {
			delete(rebuilt, s)
		}
	}
	t.intern = rebuilt
	return shift
}

func (t *StringTable) Len() int { return t.sub.Len() }
