package linkage

import (
	"github.com/rosterlink/rosterlink/pkg/normalize"
	"github.com/rosterlink/rosterlink/pkg/roster"
)

// Index holds the three lookup structures over the master roster:
// by normalized email, by normalized (last, first) name key, and by
// normalized last name alone. Candidate lists preserve master insertion
// order, and the set of last-name keys is kept in first-seen order so
// the fuzzy pass iterates deterministically regardless of map layout.
//
// The index represents the total identity surface of the master set;
// unmatched-only filtering belongs to the matcher, not here. Indexes
// are run-scoped derived data: build fresh per invocation, never cache.
type Index struct {
	byEmail map[string][]*roster.Record
	byName  map[string][]*roster.Record
	byLast  map[string][]*roster.Record

	lastKeys []string
}

// BuildIndex constructs the three lookups from the full master set.
func BuildIndex(master *roster.Table) *Index {
	idx := &Index{
		byEmail: make(map[string][]*roster.Record),
		byName:  make(map[string][]*roster.Record),
		byLast:  make(map[string][]*roster.Record),
	}

	for _, rec := range master.Rows {
		first := rec.Trimmed(roster.MasterFirst)
		last := rec.Trimmed(roster.MasterLast)
		email := rec.Trimmed(roster.MasterEmail)

		if key := normalize.String(email); key != "" {
			idx.byEmail[key] = append(idx.byEmail[key], rec)
		}
		if key := normalize.NameKey(first, last); normalize.HasKey(key) {
			idx.byName[key] = append(idx.byName[key], rec)
		}
		if key := normalize.LastName(last); key != "" {
			if _, seen := idx.byLast[key]; !seen {
				idx.lastKeys = append(idx.lastKeys, key)
			}
			idx.byLast[key] = append(idx.byLast[key], rec)
		}
	}

	return idx
}

// Email returns the master candidates registered under a normalized email.
func (idx *Index) Email(key string) []*roster.Record {
	return idx.byEmail[key]
}

// Name returns the master candidates registered under a name key.
func (idx *Index) Name(key string) []*roster.Record {
	return idx.byName[key]
}

// Last returns the master candidates sharing a normalized last name.
func (idx *Index) Last(key string) []*roster.Record {
	return idx.byLast[key]
}

// LastKeys returns the distinct normalized last names in master
// insertion order.
func (idx *Index) LastKeys() []string {
	return idx.lastKeys
}
