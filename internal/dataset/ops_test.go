package dataset

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cities(t *testing.T, tbl *Table) []any {
	t.Helper()
	col, err := tbl.Column("city")
	require.NoError(t, err)
	return col
}

func TestHeadTail(t *testing.T) {
	tbl := sample(t)

	tests := []struct {
		name string
		got  *Table
		want []any
	}{
		{"head 2", tbl.Head(2), []any{"Oslo", "Rome"}},
		{"head beyond length", tbl.Head(10), []any{"Oslo", "Rome", "Bergen", "Naples"}},
		{"head negative", tbl.Head(-3), []any{"Oslo"}},
		{"head zero", tbl.Head(0), []any{}},
		{"tail 1", tbl.Tail(1), []any{"Naples"}},
		{"tail negative", tbl.Tail(-3), []any{"Naples"}},
		{"slice", tbl.Slice(1, 3), []any{"Rome", "Bergen"}},
		{"slice negative", tbl.Slice(-2, 100), []any{"Bergen", "Naples"}},
		{"slice inverted", tbl.Slice(3, 1), []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cities(t, tt.got))
		})
	}
}

func TestOperationsLeaveReceiverUnchanged(t *testing.T) {
	tbl := sample(t)
	before := sample(t)

	_ = tbl.Head(1)
	_, _ = tbl.SortBy("pop", true)
	_, _ = tbl.WithColumn("pop", func(map[string]any) (any, error) { return 0, nil })
	_, _ = tbl.Rename("city", "town")
	_ = tbl.DropNA()

	assert.True(t, before.Equal(tbl))
}

func TestSelect(t *testing.T) {
	got, err := sample(t).Select("region", "city")
	require.NoError(t, err)
	assert.Equal(t, []string{"region", "city"}, got.Columns())

	_, err = sample(t).Select("nope")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestFilter(t *testing.T) {
	got, err := sample(t).Filter(func(row map[string]any) (bool, error) {
		return row["region"] == "north", nil
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"Oslo", "Bergen"}, cities(t, got))

	boom := errors.New("boom")
	_, err = sample(t).Filter(func(map[string]any) (bool, error) { return false, boom })
	assert.ErrorIs(t, err, boom)
}

func TestSortBy(t *testing.T) {
	asc, err := sample(t).SortBy("pop", false)
	require.NoError(t, err)
	assert.Equal(t, []any{"Bergen", "Oslo", "Rome", "Naples"}, cities(t, asc))

	desc, err := sample(t).SortBy("pop", true)
	require.NoError(t, err)
	assert.Equal(t, []any{"Rome", "Oslo", "Bergen", "Naples"}, cities(t, desc))

	byName, err := sample(t).SortBy("city", false)
	require.NoError(t, err)
	assert.Equal(t, []any{"Bergen", "Naples", "Oslo", "Rome"}, cities(t, byName))
}

func TestWithColumn(t *testing.T) {
	got, err := sample(t).WithColumn("big", func(row map[string]any) (any, error) {
		f, ok := Float(row["pop"])
		return ok && f > 500, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "pop", "region", "big"}, got.Columns())

	big, err := got.Column("big")
	require.NoError(t, err)
	assert.Equal(t, []any{true, true, false, false}, big)

	replaced, err := sample(t).WithColumn("pop", func(map[string]any) (any, error) { return 1, nil })
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "pop", "region"}, replaced.Columns())
}

func TestRename(t *testing.T) {
	got, err := sample(t).Rename("city", "town")
	require.NoError(t, err)
	assert.Equal(t, []string{"town", "pop", "region"}, got.Columns())
	assert.True(t, got.HasColumn("town"))

	_, err = sample(t).Rename("city", "pop")
	assert.Error(t, err)
}

func TestDropNA(t *testing.T) {
	assert.Equal(t, 3, sample(t).DropNA().Len())
}

func TestUnique(t *testing.T) {
	got, err := sample(t).Unique("region")
	require.NoError(t, err)
	assert.Equal(t, []any{"north", "south"}, got)
}

func TestValueCounts(t *testing.T) {
	tbl, err := New([]string{"k"}, [][]any{{"a"}, {"b"}, {"b"}, {"c"}, {"a"}, {"b"}})
	require.NoError(t, err)

	got, err := tbl.ValueCounts("k")
	require.NoError(t, err)
	assert.Equal(t, []string{"k", "count"}, got.Columns())
	assert.Equal(t, []map[string]any{
		{"k": "b", "count": 3.0},
		{"k": "a", "count": 2.0},
		{"k": "c", "count": 1.0},
	}, got.Records())
}

func TestGroupBy(t *testing.T) {
	tests := []struct {
		agg  string
		want []any
	}{
		{AggSum, []any{985.0, 2800.0}},
		{AggMean, []any{492.5, 2800.0}},
		{AggCount, []any{2.0, 1.0}},
		{AggMax, []any{700.0, 2800.0}},
	}

	for _, tt := range tests {
		t.Run(tt.agg, func(t *testing.T) {
			got, err := sample(t).GroupBy("region", "pop", tt.agg)
			require.NoError(t, err)
			keys, err := got.Column("region")
			require.NoError(t, err)
			assert.Equal(t, []any{"north", "south"}, keys)
			vals, err := got.Column("pop")
			require.NoError(t, err)
			assert.Equal(t, tt.want, vals)
		})
	}

	_, err := sample(t).GroupBy("region", "pop", "mode")
	assert.Error(t, err)
}

func TestDescribe(t *testing.T) {
	got := sample(t).Describe()
	assert.Equal(t, []string{"stat", "pop"}, got.Columns())

	byStat := make(map[string]float64)
	for _, rec := range got.Records() {
		byStat[rec["stat"].(string)] = rec["pop"].(float64)
	}
	assert.Equal(t, 3.0, byStat["count"])
	assert.InDelta(t, 1261.6667, byStat["mean"], 1e-3)
	assert.Equal(t, 285.0, byStat["min"])
	assert.Equal(t, 492.5, byStat["25%"])
	assert.Equal(t, 700.0, byStat["50%"])
	assert.Equal(t, 1750.0, byStat["75%"])
	assert.Equal(t, 2800.0, byStat["max"])
}

func TestConcat(t *testing.T) {
	a, err := New([]string{"x", "y"}, [][]any{{1, 2}})
	require.NoError(t, err)
	b, err := New([]string{"y", "z"}, [][]any{{3, 4}})
	require.NoError(t, err)

	got := Concat(a, b)
	assert.Equal(t, []string{"x", "y", "z"}, got.Columns())
	assert.Equal(t, []map[string]any{
		{"x": 1.0, "y": 2.0, "z": nil},
		{"x": nil, "y": 3.0, "z": 4.0},
	}, got.Records())
}

func TestMerge(t *testing.T) {
	left := sample(t)
	right, err := New([]string{"region", "pop"}, [][]any{
		{"north", "cold"},
		{"east", "dry"},
	})
	require.NoError(t, err)

	inner, err := left.Merge(right, "region", JoinInner)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "pop", "region", "pop_right"}, inner.Columns())
	assert.Equal(t, []any{"Oslo", "Bergen"}, cities(t, inner))

	outer, err := left.Merge(right, "region", JoinLeft)
	require.NoError(t, err)
	assert.Equal(t, 4, outer.Len())
	rec, err := outer.Row(1)
	require.NoError(t, err)
	assert.Nil(t, rec["pop_right"])

	_, err = left.Merge(right, "region", "cross")
	assert.Error(t, err)
	_, err = left.Merge(right, "city", JoinInner)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestStats(t *testing.T) {
	xs := []float64{4, 1, 3, 2}

	assert.Equal(t, 10.0, Sum(xs))
	assert.Equal(t, 2.5, Mean(xs))
	assert.Equal(t, 2.5, Median(xs))
	assert.Equal(t, 1.0, Min(xs))
	assert.Equal(t, 4.0, Max(xs))
	assert.InDelta(t, 1.6667, Variance(xs), 1e-3)
	assert.InDelta(t, 1.2910, StdDev(xs), 1e-3)

	q, err := Quantile(xs, 0.25)
	require.NoError(t, err)
	assert.Equal(t, 1.75, q)

	_, err = Quantile(xs, 2)
	assert.Error(t, err)

	r, err := Correlation([]float64{1, 2, 3}, []float64{2, 4, 6})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, r, 1e-9)

	assert.True(t, math.IsNaN(Mean(nil)))
	assert.True(t, math.IsNaN(StdDev([]float64{1})))
}
