package core

// Group is the set of rows sharing one key value.
type Group struct {
	Key   string
	Table *Table
}

// Partitioned is the output of Partition.
type Partitioned struct {
	// Consolidated is the input table, including rows with a missing key.
	Consolidated *Table

	// Groups are ordered by the first appearance of each key.
	Groups []Group
}

// MissingKeyRows returns how many consolidated rows belong to no group.
func (p *Partitioned) MissingKeyRows() int {
	grouped := 0
	for _, g := range p.Groups {
		grouped += g.Table.Len()
	}
	return p.Consolidated.Len() - grouped
}

// Keys returns the group keys in order.
func (p *Partitioned) Keys() []string {
	keys := make([]string, len(p.Groups))
	for i, g := range p.Groups {
		keys[i] = g.Key
	}
	return keys
}

// Partition splits t by the value of keyColumn.
//
// The key column must exist; otherwise a *SchemaMismatchError is returned
// before any grouping happens. Rows whose key is missing or blank are left
// out of every group. Groups share row storage with t; cells are never
// copied or modified.
func Partition(t *Table, keyColumn string) (*Partitioned, error) {
	idx := t.ColumnIndex(keyColumn)
	if idx < 0 {
		return nil, &SchemaMismatchError{
			Column:    keyColumn,
			Available: append([]string(nil), t.Columns...),
		}
	}

	var groups []Group
	pos := make(map[string]int)

	for _, row := range t.Rows {
		// Keyed by display text: number 1 and text "1" share a document name.
		key := row[idx].String()
		if row[idx].IsMissing() || key == "" {
			continue
		}

		i, ok := pos[key]
		if !ok {
			i = len(groups)
			pos[key] = i
			groups = append(groups, Group{
				Key:   key,
				Table: &Table{Columns: t.Columns},
			})
		}
		groups[i].Table.Rows = append(groups[i].Table.Rows, row)
	}

	return &Partitioned{Consolidated: t, Groups: groups}, nil
}
