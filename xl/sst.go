package xl

// SharedStringTable interns text cell values. Indices are 0-based and
// assigned in first-seen order.
type SharedStringTable struct {
	strings []string
	index   map[string]int
	refs    int
}

func NewSharedStringTable() *SharedStringTable {
	return &SharedStringTable{index: map[string]int{}}
}

// Intern returns the index of s, adding it to the table on first use. Strings
// are stored raw; escaping happens when the table is rendered.
func (t *SharedStringTable) Intern(s string) int {
	t.refs++
	if i, ok := t.index[s]; ok {
		return i
	}
	i := len(t.strings)
	t.strings = append(t.strings, s)
	t.index[s] = i
	return i
}

// Lookup returns the index of an interned string without counting a
// reference.
func (t *SharedStringTable) Lookup(s string) (int, bool) {
	i, ok := t.index[s]
	return i, ok
}

// Len returns the number of unique strings.
func (t *SharedStringTable) Len() int { return len(t.strings) }

// Count returns the number of Intern calls, i.e. the number of cells that
// reference the table.
func (t *SharedStringTable) Count() int { return t.refs }

func (t *SharedStringTable) At(i int) string { return t.strings[i] }

// Strings returns the table in index order. The slice must not be modified.
func (t *SharedStringTable) Strings() []string { return t.strings }
