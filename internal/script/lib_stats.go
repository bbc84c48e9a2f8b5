package script

import (
	"github.com/dop251/goja"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// statsLibrary builds the stats object. Every function takes an array and
// ignores non-numeric elements. Most return NaN for an empty input.
func (n *namespace) statsLibrary() (*goja.Object, error) {
	lib := n.vm.NewObject()

	unary := map[string]func([]float64) float64{
		"sum":      dataset.Sum,
		"mean":     dataset.Mean,
		"median":   dataset.Median,
		"min":      dataset.Min,
		"max":      dataset.Max,
		"variance": dataset.Variance,
		"stddev":   dataset.StdDev,
		"std":      dataset.StdDev,
	}
	for name, fn := range unary {
		f := fn
		if err := lib.Set(name, func(call goja.FunctionCall) goja.Value {
			return n.number(f(n.floats(call.Argument(0))))
		}); err != nil {
			return nil, err
		}
	}

	// stats.count(values) -> number of numeric elements
	if err := lib.Set("count", func(call goja.FunctionCall) goja.Value {
		return n.vm.ToValue(len(n.floats(call.Argument(0))))
	}); err != nil {
		return nil, err
	}

	// stats.quantile(values, q) -> linear interpolation between order statistics
	if err := lib.Set("quantile", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("stats.quantile requires values and q")
		}
		q, err := dataset.Quantile(n.floats(call.Argument(0)), call.Argument(1).ToFloat())
		if err != nil {
			n.throw(err)
		}
		return n.number(q)
	}); err != nil {
		return nil, err
	}

	// stats.correlation(xs, ys) -> Pearson coefficient
	if err := lib.Set("correlation", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("stats.correlation requires two arrays")
		}
		r, err := dataset.Correlation(n.floats(call.Argument(0)), n.floats(call.Argument(1)))
		if err != nil {
			n.throw(err)
		}
		return n.number(r)
	}); err != nil {
		return nil, err
	}

	return lib, nil
}
