package dataset

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Aggregations understood by GroupBy and Aggregate.
const (
	AggCount  = "count"
	AggSum    = "sum"
	AggMean   = "mean"
	AggMedian = "median"
	AggMin    = "min"
	AggMax    = "max"
	AggStd    = "std"
)

// Sum returns the sum of xs, or 0 for an empty slice.
func Sum(xs []float64) float64 {
	return floats.Sum(xs)
}

// Mean returns the arithmetic mean of xs, or NaN for an empty slice.
func Mean(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(xs, nil)
}

// Min returns the smallest value of xs, or NaN for an empty slice.
func Min(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return floats.Min(xs)
}

// Max returns the largest value of xs, or NaN for an empty slice.
func Max(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	return floats.Max(xs)
}

// Variance returns the sample variance of xs, or NaN with fewer than two
// values.
func Variance(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.Variance(xs, nil)
}

// StdDev returns the sample standard deviation of xs, or NaN with fewer
// than two values.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return math.NaN()
	}
	return stat.StdDev(xs, nil)
}

// Correlation returns the Pearson correlation of paired samples.
func Correlation(xs, ys []float64) (float64, error) {
	if len(xs) != len(ys) {
		return 0, fmt.Errorf("correlation needs equal lengths, got %d and %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return math.NaN(), nil
	}
	return stat.Correlation(xs, ys, nil), nil
}

// Quantile returns the q-th quantile of xs using linear interpolation
// between closest ranks, so Quantile(xs, 0.5) is the usual median.
func Quantile(xs []float64, q float64) (float64, error) {
	if q < 0 || q > 1 || math.IsNaN(q) {
		return 0, fmt.Errorf("quantile %v outside [0, 1]", q)
	}
	if len(xs) == 0 {
		return math.NaN(), nil
	}
	sorted := append([]float64(nil), xs...)
	sort.Float64s(sorted)

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo], nil
	}
	frac := pos - float64(lo)
	return sorted[lo] + (sorted[hi]-sorted[lo])*frac, nil
}

// Median returns the 0.5 quantile of xs.
func Median(xs []float64) float64 {
	m, _ := Quantile(xs, 0.5)
	return m
}

// Aggregate applies the named aggregation to values. Non-numeric values are
// ignored by every aggregation except count, which counts non-nil values.
func Aggregate(agg string, values []any) (any, error) {
	if agg == AggCount {
		n := 0
		for _, v := range values {
			if v != nil {
				n++
			}
		}
		return float64(n), nil
	}

	xs := Floats(values)
	switch agg {
	case AggSum:
		return Sum(xs), nil
	case AggMean:
		return Mean(xs), nil
	case AggMedian:
		return Median(xs), nil
	case AggMin:
		return Min(xs), nil
	case AggMax:
		return Max(xs), nil
	case AggStd:
		return StdDev(xs), nil
	default:
		return nil, fmt.Errorf("unknown aggregation %q", agg)
	}
}
