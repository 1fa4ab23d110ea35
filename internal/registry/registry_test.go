package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default()
	require.Greater(t, r.Len(), 10)

	idea, err := r.Get("idea")
	require.NoError(t, err)
	assert.Equal(t, FormatClassic, idea.Format)
	assert.Equal(t, "recentProjects.xml", idea.File)

	rider, err := r.Get("rider")
	require.NoError(t, err)
	assert.Equal(t, "recentSolutions.xml", rider.File)

	tb, err := r.Get("toolbox-idea")
	require.NoError(t, err)
	assert.Equal(t, FormatToolbox, tb.Format)
	assert.Equal(t, []string{"IU"}, tb.Codes)

	list := r.List()
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].ID, list[i].ID, "list must be sorted by id")
	}
}

func TestParseRejectsInvalidDescriptors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want error
	}{
		{
			name: "unknown format",
			doc:  "products:\n  - {id: x, format: vscode, config_roots: [a]}\n",
			want: ErrUnknownFormat,
		},
		{
			name: "duplicate",
			doc: "products:\n" +
				"  - {id: x, format: classic, file: r.xml, config_roots: [a]}\n" +
				"  - {id: x, format: classic, file: r.xml, config_roots: [b]}\n",
			want: ErrDuplicateProduct,
		},
		{
			name: "bad id",
			doc:  "products:\n  - {id: 'Has:Colon', format: classic, file: r.xml, config_roots: [a]}\n",
			want: ErrInvalidProduct,
		},
		{
			name: "classic without file",
			doc:  "products:\n  - {id: x, format: classic, config_roots: [a]}\n",
			want: ErrInvalidProduct,
		},
		{
			name: "toolbox without codes",
			doc:  "products:\n  - {id: x, format: toolbox, config_roots: [a]}\n",
			want: ErrInvalidProduct,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWithout(t *testing.T) {
	r := Default()
	n := r.Len()

	trimmed := r.Without("idea", "does-not-exist")
	assert.Equal(t, n-1, trimmed.Len())
	_, err := trimmed.Get("idea")
	assert.ErrorIs(t, err, ErrProductNotFound)

	// the original is untouched
	_, err = r.Get("idea")
	assert.NoError(t, err)
}
