package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

func table(t *testing.T, v any) *dataset.Table {
	t.Helper()
	tbl, err := dataset.New([]string{"v"}, [][]any{{v}})
	require.NoError(t, err)
	return tbl
}

func TestStore_PutGet(t *testing.T) {
	s := New()

	_, ok := s.Get("a")
	assert.False(t, ok)

	a := table(t, 1)
	s.Put("a", a)

	got, ok := s.Get("a")
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestStore_PutOverwrites(t *testing.T) {
	s := New()
	s.Put("a", table(t, 1))
	second := table(t, 2)
	s.Put("a", second)

	got, _ := s.Get("a")
	assert.Same(t, second, got)
	assert.Equal(t, 1, s.Len())
}

func TestStore_SnapshotIsDetached(t *testing.T) {
	s := New()
	s.Put("a", table(t, 1))

	snap := s.Snapshot()
	snap["b"] = table(t, 2)
	delete(snap, "a")

	assert.Equal(t, []string{"a"}, s.Names())
}

func TestStore_Names(t *testing.T) {
	s := New()
	s.Put("zeta", table(t, 1))
	s.Put("alpha", table(t, 1))

	assert.Equal(t, []string{"alpha", "zeta"}, s.Names())
}

func TestNamer_Sequence(t *testing.T) {
	var n Namer

	assert.Equal(t, "df_1", n.Next())
	assert.Equal(t, "df_2", n.Next())
	assert.Equal(t, "df_3", n.Next())
	assert.Equal(t, 3, n.Count())
}
