package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurisko/jbsearch/internal/catalog"
)

func rec(product, name, path string) catalog.Record {
	return catalog.Record{Product: product, Name: name, Path: path}
}

func ids(t *testing.T, got []catalog.ID) []string {
	t.Helper()
	out := make([]string, len(got))
	for i, id := range got {
		out[i] = id.Path
	}
	return out
}

func run(records []catalog.Record, raw ...string) []catalog.ID {
	return Snapshot(catalog.NewSnapshot(1, records), Terms(raw))
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"foo", "bar"}, Terms([]string{" Foo", "", "  ", "BAR "}))
	assert.Empty(t, Terms(nil))
}

func TestMatch(t *testing.T) {
	tests := []struct {
		name    string
		records []catalog.Record
		terms   []string
		want    []string
	}{
		{
			name:    "matches something",
			records: []catalog.Record{rec("idea", "mdcat", "/home/foo/dev/mdcat")},
			terms:   []string{"mdcat"},
			want:    []string{"/home/foo/dev/mdcat"},
		},
		{
			name: "does not find undesired projects",
			records: []catalog.Record{
				rec("idea", "ui-pattern-library", "/home/foo/dev/something/ui-pattern-library"),
				rec("idea", "dauntless-builder", "/home/foo/dev/dauntless-builder"),
				rec("idea", "typo3-ssr", "/home/foo/dev/something/typo3-ssr"),
			},
			terms: []string{"flutter_test_app"},
			want:  []string{},
		},
		{
			name:    "ignores case of name",
			records: []catalog.Record{rec("idea", "mdCat", "/home/foo/dev/foo")},
			terms:   []string{"Mdcat"},
			want:    []string{"/home/foo/dev/foo"},
		},
		{
			name:    "ignores case of path",
			records: []catalog.Record{rec("idea", "bar", "/home/foo/dev/mdcaT")},
			terms:   []string{"Mdcat"},
			want:    []string{"/home/foo/dev/mdcaT"},
		},
		{
			name: "name matches rank higher",
			records: []catalog.Record{
				rec("idea", "bar", "/home/foo/dev/bar"),
				rec("idea", "foo", "/home/foo/dev/foo"),
			},
			terms: []string{"foo"},
			want:  []string{"/home/foo/dev/foo", "/home/foo/dev/bar"},
		},
		{
			name: "name match beats path-only match",
			records: []catalog.Record{
				rec("idea", "something", "/home/u/barfoo"),
				rec("idea", "FooBar", "/srv/x"),
			},
			terms: []string{"foo"},
			want:  []string{"/srv/x", "/home/u/barfoo"},
		},
		{
			name: "matches at end of path rank higher",
			records: []catalog.Record{
				rec("idea", "p1", "/home/foo/dev/bar"),
				rec("idea", "p1", "/home/foo/dev/foo"),
			},
			terms: []string{"foo"},
			want:  []string{"/home/foo/dev/foo", "/home/foo/dev/bar"},
		},
		{
			name: "all terms required",
			records: []catalog.Record{
				rec("idea", "alpha", "/p/alpha"),
				rec("idea", "alpha-beta", "/p/alpha-beta"),
			},
			terms: []string{"alpha", "beta"},
			want:  []string{"/p/alpha-beta"},
		},
		{
			name: "terms are not split across name and path",
			records: []catalog.Record{
				rec("idea", "alpha", "/p/beta"),
			},
			terms: []string{"alpha", "beta"},
			want:  []string{},
		},
		{
			name:    "no terms, no results",
			records: []catalog.Record{rec("idea", "a", "/a")},
			terms:   []string{"  "},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(t, run(tt.records, tt.terms...)))
		})
	}
}

func TestTiesBreakByProductThenPath(t *testing.T) {
	records := []catalog.Record{
		rec("pycharm", "demo", "/b/demo"),
		rec("idea", "demo", "/b/demo"),
		rec("idea", "demo", "/a/demo"),
	}
	got := run(records, "demo")
	require.Len(t, got, 3)
	// equal scores throughout
	assert.Equal(t, catalog.ID{Product: "idea", Path: "/a/demo"}, got[0])
	assert.Equal(t, catalog.ID{Product: "idea", Path: "/b/demo"}, got[1])
	assert.Equal(t, catalog.ID{Product: "pycharm", Path: "/b/demo"}, got[2])
}

func TestMatchIsDeterministic(t *testing.T) {
	var records []catalog.Record
	for _, p := range []string{"idea", "goland", "clion"} {
		for _, d := range []string{"/x/app", "/y/app", "/x/app-two", "/z/lib/app"} {
			records = append(records, rec(p, "app", d))
		}
	}
	snap := catalog.NewSnapshot(1, records)
	first := Snapshot(snap, Terms([]string{"app"}))
	require.Len(t, first, len(records))
	for i := 0; i < 50; i++ {
		assert.Equal(t, first, Snapshot(snap, Terms([]string{"app"})))
	}
}

func TestNameTierAlwaysFirst(t *testing.T) {
	records := []catalog.Record{
		rec("idea", "zzz", "/deep/path/to/widget"),
		rec("idea", "widget-app", "/a"),
		rec("idea", "other", "/widget"),
		rec("idea", "my widget", "/q/r/s"),
	}
	snap := catalog.NewSnapshot(1, records)
	got := Snapshot(snap, Terms([]string{"widget"}))
	require.Len(t, got, 4)

	seenPathOnly := false
	for _, id := range got {
		r, ok := snap.Get(id)
		require.True(t, ok)
		s := Rate(r, []string{"widget"})
		if !s.Name {
			seenPathOnly = true
			continue
		}
		assert.False(t, seenPathOnly, "name match %s ranked after a path-only match", id)
	}
}

func TestPathScoreIsRelativeToWholePath(t *testing.T) {
	// "foo" sits at 4/7 of the short path and 15/21 of the long one
	got := run([]catalog.Record{
		rec("idea", "x", "/zz/foo"),
		rec("idea", "y", "/aaaaaaaaaaaaaa/foo/b"),
	}, "foo")
	assert.Equal(t, []string{"/aaaaaaaaaaaaaa/foo/b", "/zz/foo"}, ids(t, got))
}
