// Package match ranks catalog records against search terms.
//
// A record matches when every term is a substring of its lowercased display
// name, or when every term is a substring of its lowercased path. Terms are
// never split across the two fields. Name matches rank above path-only
// matches; within a tier, records whose terms occur further right in the
// path rank higher. Remaining ties fall back to product id, then path.
//
// The position is relative to the whole path length, not to path segments,
// so a term deep inside a long ancestor directory can outscore the same term
// in the last segment of a short path.
package match

import (
	"sort"
	"strings"

	"github.com/gurisko/jbsearch/internal/catalog"
)

// Terms normalizes raw caller input: trims and lowercases each term and
// drops empty ones.
func Terms(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, t := range raw {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// Score is how well one record matched.
type Score struct {
	Name   bool    // all terms occur in the display name
	InPath bool    // all terms occur in the path
	Path   float64 // sum of rightmost relative match positions, 0 unless InPath
}

// Matched reports whether the record matched at all.
func (s Score) Matched() bool { return s.Name || s.InPath }

// better orders scores, highest first.
func (s Score) better(o Score) bool {
	if s.Name != o.Name {
		return s.Name
	}
	return s.Path > o.Path
}

// Rate scores one record. Terms must already be normalized.
func Rate(rec *catalog.Record, terms []string) Score {
	var s Score
	if len(terms) == 0 {
		return s
	}

	name := strings.ToLower(rec.Name)
	s.Name = true
	for _, t := range terms {
		if !strings.Contains(name, t) {
			s.Name = false
			break
		}
	}

	path := strings.ToLower(rec.Path)
	s.InPath = true
	for _, t := range terms {
		idx := strings.LastIndex(path, t)
		if idx < 0 {
			s.InPath = false
			s.Path = 0
			break
		}
		s.Path += float64(idx) / float64(len(path))
	}
	return s
}

type scored struct {
	id    catalog.ID
	score Score
}

// Match returns the ids of all records matching terms, best first. Terms must
// already be normalized; no terms yields no results.
func Match(records []*catalog.Record, terms []string) []catalog.ID {
	if len(terms) == 0 {
		return nil
	}

	hits := make([]scored, 0, len(records))
	for _, rec := range records {
		s := Rate(rec, terms)
		if s.Matched() {
			hits = append(hits, scored{id: rec.ID(), score: s})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i], hits[j]
		if a.score.better(b.score) {
			return true
		}
		if b.score.better(a.score) {
			return false
		}
		return a.id.Less(b.id)
	})

	ids := make([]catalog.ID, len(hits))
	for i, h := range hits {
		ids[i] = h.id
	}
	return ids
}

// Snapshot runs Match over every record of snap.
func Snapshot(snap *catalog.Snapshot, terms []string) []catalog.ID {
	return Match(snap.Records(), terms)
}
