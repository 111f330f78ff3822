package movie

// List is an ordered, newest-first sequence of movies.
type List []Movie

// Prepend returns a new list with m at position 0.
func (l List) Prepend(m Movie) List {
	out := make(List, 0, len(l)+1)
	out = append(out, m)
	return append(out, l...)
}

// Copy returns an independent copy of the list. Movies are shared.
func (l List) Copy() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	copy(out, l)
	return out
}

// Titles returns the titles in list order.
func (l List) Titles() []string {
	titles := make([]string, len(l))
	for i, m := range l {
		titles[i] = m.Title()
	}
	return titles
}

// Dedupe removes later occurrences of a movie with the same Identity,
// so the newest copy wins.
func (l List) Dedupe() List {
	seen := make(map[string]bool, len(l))
	out := make(List, 0, len(l))
	for _, m := range l {
		id := m.Identity()
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, m)
	}
	return out
}
