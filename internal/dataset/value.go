package dataset

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
)

// Normalize converts a Go value into a cell value: nil, float64, string or
// bool. Integer and float types become float64; anything else is formatted
// with fmt.Sprint.
func Normalize(v any) any {
	switch x := v.(type) {
	case nil:
		return nil
	case float64:
		return x
	case string, bool:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int8:
		return float64(x)
	case int16:
		return float64(x)
	case int32:
		return float64(x)
	case int64:
		return float64(x)
	case uint:
		return float64(x)
	case uint8:
		return float64(x)
	case uint16:
		return float64(x)
	case uint32:
		return float64(x)
	case uint64:
		return float64(x)
	default:
		return fmt.Sprint(x)
	}
}

// Float returns the numeric value of a cell.
func Float(v any) (float64, bool) {
	f, ok := v.(float64)
	if !ok || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Floats returns the numeric cells of vs, skipping everything else.
func Floats(vs []any) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if f, ok := Float(Normalize(v)); ok {
			out = append(out, f)
		}
	}
	return out
}

// FormatCell renders a cell for display.
func FormatCell(v any) string {
	switch x := v.(type) {
	case nil:
		return "null"
	case float64:
		return formatFloat(x)
	case bool:
		return strconv.FormatBool(x)
	case string:
		return x
	default:
		return fmt.Sprint(x)
	}
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Inf"
	case math.IsInf(f, -1):
		return "-Inf"
	case f == math.Trunc(f) && math.Abs(f) < 1e15:
		return strconv.FormatInt(int64(f), 10)
	default:
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
}

// cellKey returns a string that is equal for equal cells, used for grouping
// and joins.
func cellKey(v any) string {
	switch x := v.(type) {
	case nil:
		return "n:"
	case float64:
		return "f:" + strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return "b:" + strconv.FormatBool(x)
	case string:
		return "s:" + x
	default:
		return "o:" + fmt.Sprint(x)
	}
}

func cellEqual(a, b any) bool {
	fa, aok := a.(float64)
	fb, bok := b.(float64)
	if aok && bok && math.IsNaN(fa) && math.IsNaN(fb) {
		return true
	}
	return cellKey(a) == cellKey(b)
}

// compareCells orders cells: numbers before bools before strings, nil last.
func compareCells(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case float64:
		y := b.(float64)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	case bool:
		y := b.(bool)
		switch {
		case !x && y:
			return -1
		case x && !y:
			return 1
		}
	case string:
		return strings.Compare(x, b.(string))
	}
	return 0
}

func rank(v any) int {
	switch v.(type) {
	case float64:
		return 0
	case bool:
		return 1
	case string:
		return 2
	default:
		return 3
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
