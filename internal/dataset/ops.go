package dataset

import (
	"fmt"
	"sort"
)

// Merge strategies.
const (
	JoinInner = "inner"
	JoinLeft  = "left"
)

// Head returns the first n rows. A negative n returns all rows except the
// last -n.
func (t *Table) Head(n int) *Table {
	if n < 0 {
		n = max(len(t.rows)+n, 0)
	}
	return t.Slice(0, min(n, len(t.rows)))
}

// Tail returns the last n rows. A negative n returns all rows except the
// first -n.
func (t *Table) Tail(n int) *Table {
	if n < 0 {
		return t.Slice(min(-n, len(t.rows)), len(t.rows))
	}
	return t.Slice(max(len(t.rows)-n, 0), len(t.rows))
}

// Slice returns rows [start, end). Negative bounds count from the end and
// out-of-range bounds are clamped.
func (t *Table) Slice(start, end int) *Table {
	n := len(t.rows)
	clamp := func(i int) int {
		if i < 0 {
			i += n
		}
		return min(max(i, 0), n)
	}
	start, end = clamp(start), clamp(end)
	if end < start {
		end = start
	}
	rows := make([][]any, 0, end-start)
	rows = append(rows, t.rows[start:end]...)
	return build(t.Columns(), rows)
}

// Select returns a table with only the named columns, in the given order.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	for i, name := range names {
		j, err := t.col(name)
		if err != nil {
			return nil, err
		}
		idx[i] = j
	}
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		out := make([]any, len(idx))
		for k, j := range idx {
			out[k] = row[j]
		}
		rows[i] = out
	}
	return New(names, rows)
}

// Filter keeps the rows for which keep returns true. An error from keep
// aborts the filter.
func (t *Table) Filter(keep func(row map[string]any) (bool, error)) (*Table, error) {
	var rows [][]any
	for i, row := range t.rows {
		ok, err := keep(t.record(i))
		if err != nil {
			return nil, err
		}
		if ok {
			rows = append(rows, row)
		}
	}
	return build(t.Columns(), rows), nil
}

// SortBy returns the rows stably ordered by the named column. Numbers sort
// before bools before strings; missing cells always sort last.
func (t *Table) SortBy(name string, descending bool) (*Table, error) {
	j, err := t.col(name)
	if err != nil {
		return nil, err
	}
	rows := append([][]any(nil), t.rows...)
	sort.SliceStable(rows, func(a, b int) bool {
		x, y := rows[a][j], rows[b][j]
		if x == nil || y == nil {
			return x != nil
		}
		c := compareCells(x, y)
		if descending {
			return c > 0
		}
		return c < 0
	})
	return build(t.Columns(), rows), nil
}

// WithColumn computes a column from each row. An existing column of the same
// name is replaced in place; otherwise the column is appended.
func (t *Table) WithColumn(name string, compute func(row map[string]any) (any, error)) (*Table, error) {
	cols := t.Columns()
	j, exists := t.index[name]
	if !exists {
		j = len(cols)
		cols = append(cols, name)
	}
	rows := make([][]any, len(t.rows))
	for i, row := range t.rows {
		v, err := compute(t.record(i))
		if err != nil {
			return nil, err
		}
		out := make([]any, len(cols))
		copy(out, row)
		out[j] = Normalize(v)
		rows[i] = out
	}
	return build(cols, rows), nil
}

// Rename returns the table with column from renamed to to.
func (t *Table) Rename(from, to string) (*Table, error) {
	j, err := t.col(from)
	if err != nil {
		return nil, err
	}
	if from != to && t.HasColumn(to) {
		return nil, fmt.Errorf("column %q already exists", to)
	}
	cols := t.Columns()
	cols[j] = to
	return build(cols, t.rows), nil
}

// DropNA removes rows with any missing cell.
func (t *Table) DropNA() *Table {
	var rows [][]any
	for _, row := range t.rows {
		complete := true
		for _, v := range row {
			if v == nil {
				complete = false
				break
			}
		}
		if complete {
			rows = append(rows, row)
		}
	}
	return build(t.Columns(), rows)
}

// Unique returns the distinct values of a column in first-seen order.
func (t *Table) Unique(name string) ([]any, error) {
	j, err := t.col(name)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var out []any
	for _, row := range t.rows {
		k := cellKey(row[j])
		if !seen[k] {
			seen[k] = true
			out = append(out, row[j])
		}
	}
	return out, nil
}

// ValueCounts returns a two-column table (name, count) with the frequency of
// each distinct value, most frequent first. Ties keep first-seen order.
func (t *Table) ValueCounts(name string) (*Table, error) {
	j, err := t.col(name)
	if err != nil {
		return nil, err
	}
	counts := make(map[string]int)
	var order []any
	for _, row := range t.rows {
		k := cellKey(row[j])
		if counts[k] == 0 {
			order = append(order, row[j])
		}
		counts[k]++
	}
	sort.SliceStable(order, func(a, b int) bool {
		return counts[cellKey(order[a])] > counts[cellKey(order[b])]
	})

	countCol := "count"
	if name == countCol {
		countCol = "count_2"
	}
	rows := make([][]any, len(order))
	for i, v := range order {
		rows[i] = []any{v, float64(counts[cellKey(v)])}
	}
	return build([]string{name, countCol}, rows), nil
}

// GroupBy aggregates the value column for each distinct key, producing a
// two-column table (key, value). Groups keep first-seen order.
func (t *Table) GroupBy(key, value, agg string) (*Table, error) {
	kj, err := t.col(key)
	if err != nil {
		return nil, err
	}
	vj, err := t.col(value)
	if err != nil {
		return nil, err
	}

	groups := make(map[string][]any)
	var keys []any
	for _, row := range t.rows {
		k := cellKey(row[kj])
		if _, ok := groups[k]; !ok {
			keys = append(keys, row[kj])
			groups[k] = []any{}
		}
		groups[k] = append(groups[k], row[vj])
	}

	cols := []string{key, value}
	if key == value {
		cols[1] = value + "_" + agg
	}
	rows := make([][]any, len(keys))
	for i, k := range keys {
		v, err := Aggregate(agg, groups[cellKey(k)])
		if err != nil {
			return nil, err
		}
		rows[i] = []any{k, v}
	}
	return build(cols, rows), nil
}

// Describe summarizes every numeric column: count, mean, std, min, 25%,
// 50%, 75% and max, one statistic per row under a leading "stat" column
// ("statistic" if the table already has a "stat" column). Columns with no
// numeric cells are left out.
func (t *Table) Describe() *Table {
	stats := []string{"count", "mean", "std", "min", "25%", "50%", "75%", "max"}

	cols := []string{"stat"}
	var series [][]float64
	for j, c := range t.columns {
		xs := make([]float64, 0, len(t.rows))
		for _, row := range t.rows {
			if f, ok := Float(row[j]); ok {
				xs = append(xs, f)
			}
		}
		if len(xs) == 0 {
			continue
		}
		cols = append(cols, c)
		series = append(series, xs)
	}
	if t.HasColumn("stat") {
		cols[0] = "statistic"
	}

	rows := make([][]any, len(stats))
	for i, s := range stats {
		row := make([]any, len(cols))
		row[0] = s
		for k, xs := range series {
			row[k+1] = summarize(s, xs)
		}
		rows[i] = row
	}
	return build(cols, rows)
}

func summarize(stat string, xs []float64) float64 {
	q := func(p float64) float64 {
		v, _ := Quantile(xs, p)
		return v
	}
	switch stat {
	case "count":
		return float64(len(xs))
	case "mean":
		return Mean(xs)
	case "std":
		return StdDev(xs)
	case "min":
		return Min(xs)
	case "25%":
		return q(0.25)
	case "50%":
		return q(0.5)
	case "75%":
		return q(0.75)
	default:
		return Max(xs)
	}
}

// Concat stacks tables vertically. The result has the union of columns in
// first-seen order; cells missing from a source table are nil.
func Concat(tables ...*Table) *Table {
	var cols []string
	seen := make(map[string]int)
	for _, t := range tables {
		for _, c := range t.columns {
			if _, ok := seen[c]; !ok {
				seen[c] = len(cols)
				cols = append(cols, c)
			}
		}
	}
	var rows [][]any
	for _, t := range tables {
		for _, row := range t.rows {
			out := make([]any, len(cols))
			for j, c := range t.columns {
				out[seen[c]] = row[j]
			}
			rows = append(rows, out)
		}
	}
	return build(cols, rows)
}

// Merge joins t with right on a shared key column. how is JoinInner or
// JoinLeft. Right-hand columns that clash with left-hand names get a
// "_right" suffix. Row order follows the left table, then right matches in
// their own order.
func (t *Table) Merge(right *Table, on, how string) (*Table, error) {
	if how == "" {
		how = JoinInner
	}
	if how != JoinInner && how != JoinLeft {
		return nil, fmt.Errorf("unknown join %q", how)
	}
	lj, err := t.col(on)
	if err != nil {
		return nil, err
	}
	rj, err := right.col(on)
	if err != nil {
		return nil, fmt.Errorf("right table: %w", err)
	}

	cols := t.Columns()
	var rightIdx []int
	for j, c := range right.columns {
		if j == rj {
			continue
		}
		name := c
		if t.HasColumn(name) {
			name += "_right"
		}
		cols = append(cols, name)
		rightIdx = append(rightIdx, j)
	}

	matches := make(map[string][]int)
	for i, row := range right.rows {
		k := cellKey(row[rj])
		matches[k] = append(matches[k], i)
	}

	var rows [][]any
	for _, row := range t.rows {
		hits := matches[cellKey(row[lj])]
		if len(hits) == 0 {
			if how == JoinLeft {
				out := make([]any, len(cols))
				copy(out, row)
				rows = append(rows, out)
			}
			continue
		}
		for _, ri := range hits {
			out := make([]any, 0, len(cols))
			out = append(out, row...)
			for _, j := range rightIdx {
				out = append(out, right.rows[ri][j])
			}
			rows = append(rows, out)
		}
	}
	return New(cols, rows)
}
