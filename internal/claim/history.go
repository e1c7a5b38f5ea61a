package claim

// HistorySize is the number of entries kept in a session's history
const HistorySize = 10

// History holds the most recent submission outcomes, newest first.
// It is not safe for concurrent use; Session guards access to it.
type History struct {
	entries []HistoryEntry
}

// NewHistory creates an empty History
func NewHistory() *History {
	return &History{entries: make([]HistoryEntry, 0, HistorySize+1)}
}

// Record inserts an entry at the front and drops anything past HistorySize
func (h *History) Record(entry HistoryEntry) {
	h.entries = append(h.entries, HistoryEntry{})
	copy(h.entries[1:], h.entries)
	h.entries[0] = entry
	if len(h.entries) > HistorySize {
		h.entries = h.entries[:HistorySize]
	}
}

// List returns a copy of the entries, most recent first
func (h *History) List() []HistoryEntry {
	out := make([]HistoryEntry, len(h.entries))
	copy(out, h.entries)
	return out
}

// Clear removes every entry
func (h *History) Clear() {
	h.entries = h.entries[:0]
}

// Len returns the number of entries
func (h *History) Len() int {
	return len(h.entries)
}
