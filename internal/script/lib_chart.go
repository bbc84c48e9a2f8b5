package script

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"math"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
)

//go:embed templates/chart.html.tmpl
var chartFS embed.FS

var chartTemplate = template.Must(template.ParseFS(chartFS, "templates/chart.html.tmpl"))

// Chart kinds.
const (
	ChartBar       = "bar"
	ChartLine      = "line"
	ChartScatter   = "scatter"
	ChartHistogram = "histogram"
)

// chartSpec is the decoded first argument of a chart function.
type chartSpec struct {
	Title  string
	XLabel string
	YLabel string
	X      []any
	Y      []any
	Bins   int
}

type chartPage struct {
	Title  string
	Traces []map[string]any
	Layout map[string]any
}

// chartLibrary builds the chart object. Each function takes a spec and an
// output path, writes a self-contained HTML page and returns its absolute
// path.
//
// The spec is {x, y, title, xlabel, ylabel, bins, table}. With table set, x
// and y name its columns; otherwise they are arrays.
func (n *namespace) chartLibrary() (*goja.Object, error) {
	lib := n.vm.NewObject()
	for _, kind := range []string{ChartBar, ChartLine, ChartScatter, ChartHistogram} {
		if err := lib.Set(kind, func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 2 {
				n.typeError(fmt.Sprintf("chart.%s requires a spec and an output path", kind))
			}
			spec, err := n.chartSpec(call.Argument(0), kind)
			if err != nil {
				n.throw(err)
			}
			path, err := n.writeChart(kind, spec, call.Argument(1).String())
			if err != nil {
				n.throw(err)
			}
			return n.vm.ToValue(path)
		}); err != nil {
			return nil, err
		}
	}
	return lib, nil
}

func (n *namespace) chartSpec(v goja.Value, kind string) (*chartSpec, error) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, fmt.Errorf("chart.%s: spec must be an object", kind)
	}
	spec := &chartSpec{
		Title:  optString(obj, "title"),
		XLabel: optString(obj, "xlabel"),
		YLabel: optString(obj, "ylabel"),
	}
	if b := obj.Get("bins"); b != nil && !goja.IsUndefined(b) {
		spec.Bins = int(b.ToInteger())
	}

	series := func(key string) ([]any, error) {
		val := obj.Get(key)
		if val == nil || goja.IsUndefined(val) {
			return nil, nil
		}
		if src := obj.Get("table"); src != nil && !goja.IsUndefined(src) {
			t, err := n.table(src)
			if err != nil {
				return nil, fmt.Errorf("chart.%s: %w", kind, err)
			}
			if spec.XLabel == "" && key == "x" {
				spec.XLabel = val.String()
			}
			if spec.YLabel == "" && key == "y" {
				spec.YLabel = val.String()
			}
			return t.Column(val.String())
		}
		return n.list(val)
	}

	var err error
	if spec.X, err = series("x"); err != nil {
		return nil, err
	}
	if spec.Y, err = series("y"); err != nil {
		return nil, err
	}
	if len(spec.X) == 0 {
		return nil, fmt.Errorf("chart.%s: x is required", kind)
	}
	if kind != ChartHistogram && len(spec.Y) != len(spec.X) {
		return nil, fmt.Errorf("chart.%s: x and y must have the same length, got %d and %d", kind, len(spec.X), len(spec.Y))
	}
	return spec, nil
}

// writeChart renders spec and writes it under the chart directory.
func (n *namespace) writeChart(kind string, spec *chartSpec, path string) (string, error) {
	trace := map[string]any{"x": plotValues(spec.X)}
	switch kind {
	case ChartBar:
		trace["type"] = "bar"
		trace["y"] = plotValues(spec.Y)
	case ChartLine:
		trace["type"] = "scatter"
		trace["mode"] = "lines"
		trace["y"] = plotValues(spec.Y)
	case ChartScatter:
		trace["type"] = "scatter"
		trace["mode"] = "markers"
		trace["y"] = plotValues(spec.Y)
	case ChartHistogram:
		trace["type"] = "histogram"
		if spec.Bins > 0 {
			trace["nbinsx"] = spec.Bins
		}
	}

	page := chartPage{
		Title:  spec.Title,
		Traces: []map[string]any{trace},
		Layout: map[string]any{
			"title": map[string]any{"text": spec.Title},
			"xaxis": map[string]any{"title": map[string]any{"text": spec.XLabel}},
			"yaxis": map[string]any{"title": map[string]any{"text": spec.YLabel}},
		},
	}
	if page.Title == "" {
		page.Title = kind + " chart"
	}

	var buf bytes.Buffer
	if err := chartTemplate.Execute(&buf, page); err != nil {
		return "", fmt.Errorf("failed to render chart: %w", err)
	}

	dir := n.config.ChartDir
	if dir == "" {
		dir = n.config.WorkDir
	}
	resolved, err := resolvePath(dir, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(resolved), 0755); err != nil {
		return "", fmt.Errorf("failed to create chart directory: %w", err)
	}
	if err := os.WriteFile(resolved, buf.Bytes(), 0644); err != nil {
		return "", fmt.Errorf("failed to write chart: %w", err)
	}
	return resolved, nil
}

// plotValues replaces values JSON cannot carry with nil.
func plotValues(vs []any) []any {
	out := make([]any, len(vs))
	for i, v := range vs {
		if f, ok := v.(float64); ok && (math.IsNaN(f) || math.IsInf(f, 0)) {
			continue
		}
		out[i] = v
	}
	return out
}

func optString(obj *goja.Object, key string) string {
	v := obj.Get(key)
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return ""
	}
	return v.String()
}
