package recommend

// Entry is one category preference under a composite key.
type Entry struct {
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Table maps composite keys to their category entries. A Table handed out by
// a Provider must be treated as read-only.
type Table map[string][]Entry

func (t Table) Len() int {
	return len(t)
}

func (t Table) Lookup(key string) ([]Entry, bool) {
	entries, ok := t[key]
	return entries, ok
}
