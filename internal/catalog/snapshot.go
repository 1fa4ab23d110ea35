package catalog

import (
	"sort"
	"time"
)

// Snapshot is an immutable view of every known project. It is safe to share
// between goroutines; nothing mutates it after NewSnapshot returns.
type Snapshot struct {
	generation uint64
	builtAt    time.Time
	byID       map[ID]*Record
	ordered    []*Record // sorted by ID
	byProduct  map[string][]*Record
}

// NewSnapshot indexes records. A record whose id recurs replaces the earlier
// one, so the most recently parsed entry wins.
func NewSnapshot(generation uint64, records []Record) *Snapshot {
	s := &Snapshot{
		generation: generation,
		builtAt:    time.Now().UTC(),
		byID:       make(map[ID]*Record, len(records)),
		byProduct:  make(map[string][]*Record),
	}
	for i := range records {
		rec := records[i]
		s.byID[rec.ID()] = &rec
	}

	s.ordered = make([]*Record, 0, len(s.byID))
	for _, rec := range s.byID {
		s.ordered = append(s.ordered, rec)
	}
	sort.Slice(s.ordered, func(i, j int) bool {
		return s.ordered[i].ID().Less(s.ordered[j].ID())
	})
	for _, rec := range s.ordered {
		s.byProduct[rec.Product] = append(s.byProduct[rec.Product], rec)
	}
	return s
}

// Generation counts published snapshots; zero is the empty startup snapshot.
func (s *Snapshot) Generation() uint64 { return s.generation }

// BuiltAt is when the snapshot was assembled.
func (s *Snapshot) BuiltAt() time.Time { return s.builtAt }

// Len reports the number of records.
func (s *Snapshot) Len() int { return len(s.ordered) }

// Get looks up a record by id.
func (s *Snapshot) Get(id ID) (*Record, bool) {
	rec, ok := s.byID[id]
	return rec, ok
}

// Records returns all records ordered by id. The slice is shared; callers
// must not modify it.
func (s *Snapshot) Records() []*Record { return s.ordered }

// Product returns the records of one product ordered by path.
func (s *Snapshot) Product(id string) []*Record { return s.byProduct[id] }

// Counts reports records per product.
func (s *Snapshot) Counts() map[string]int {
	out := make(map[string]int, len(s.byProduct))
	for p, recs := range s.byProduct {
		out[p] = len(recs)
	}
	return out
}
