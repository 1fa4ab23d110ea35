package catalog

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gurisko/jbsearch/internal/logging"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("idea:/home/u/proj:with:colons")
	require.NoError(t, err)
	assert.Equal(t, ID{Product: "idea", Path: "/home/u/proj:with:colons"}, id)
	assert.Equal(t, "idea:/home/u/proj:with:colons", id.String())

	for _, bad := range []string{"", "idea", ":/x", "idea:", "idea:relative/path"} {
		_, err := ParseID(bad)
		assert.ErrorIs(t, err, ErrInvalidID, "input %q", bad)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "Pretty", DisplayName("  Pretty ", "/a/b"))
	assert.Equal(t, "b", DisplayName("", "/a/b/"))
}

func TestSnapshotLaterRecordWins(t *testing.T) {
	snap := NewSnapshot(1, []Record{
		{Product: "idea", Path: "/p/a", Name: "old"},
		{Product: "goland", Path: "/p/a", Name: "go"},
		{Product: "idea", Path: "/p/a", Name: "new"},
	})

	require.Equal(t, 2, snap.Len())
	rec, ok := snap.Get(ID{Product: "idea", Path: "/p/a"})
	require.True(t, ok)
	assert.Equal(t, "new", rec.Name)

	// ordered by product then path
	assert.Equal(t, "goland", snap.Records()[0].Product)
	assert.Equal(t, map[string]int{"goland": 1, "idea": 1}, snap.Counts())
	assert.Len(t, snap.Product("idea"), 1)
	assert.Empty(t, snap.Product("clion"))
}

func TestCatalogStartsEmpty(t *testing.T) {
	c := New(SourceFunc(func(context.Context) []Record { return nil }), logging.Nop())
	snap := c.Current()
	require.NotNil(t, snap)
	assert.Zero(t, snap.Len())
	assert.Zero(t, snap.Generation())
}

func TestRefreshPublishesNewSnapshot(t *testing.T) {
	var calls atomic.Int32
	src := SourceFunc(func(context.Context) []Record {
		n := calls.Add(1)
		recs := []Record{{Product: "idea", Path: "/p/a", Name: "a"}}
		if n > 1 {
			recs = append(recs, Record{Product: "idea", Path: "/p/b", Name: "b"})
		}
		return recs
	})
	c := New(src, logging.Nop())

	first, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, first.Len())

	second, err := c.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, second.Len())
	assert.Same(t, second, c.Current())

	// a reader holding the first snapshot still sees it unchanged
	assert.Equal(t, 1, first.Len())
	assert.Equal(t, uint64(1), first.Generation())
	assert.Equal(t, uint64(2), second.Generation())
}

func TestRefreshCanceledKeepsPrevious(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	src := SourceFunc(func(context.Context) []Record {
		cancel()
		return []Record{{Product: "idea", Path: "/p/a"}}
	})
	c := New(src, logging.Nop())
	before := c.Current()

	_, err := c.Refresh(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Same(t, before, c.Current())
}

func TestReadersNeverSeePartialSnapshot(t *testing.T) {
	// every published snapshot holds either 0 records (startup) or exactly 100
	src := SourceFunc(func(context.Context) []Record {
		recs := make([]Record, 100)
		for i := range recs {
			recs[i] = Record{Product: "idea", Path: "/p/" + string(rune('a'+i%26)) + string(rune('a'+i/26))}
		}
		return recs
	})
	c := New(src, logging.Nop())

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				n := c.Current().Len()
				if n != 0 && n != 100 {
					t.Errorf("observed partial snapshot with %d records", n)
					return
				}
			}
		}()
	}

	for i := 0; i < 20; i++ {
		_, err := c.Refresh(context.Background())
		require.NoError(t, err)
	}
	close(stop)
	wg.Wait()
	assert.Equal(t, uint64(20), c.Current().Generation())
}
