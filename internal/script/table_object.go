package script

import (
	"fmt"

	"github.com/dop251/goja"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// tableObject wraps t in a script object and registers it so the table can
// be recovered from the object later. The object is read-only from the
// script's point of view: every method returns a new table object.
func (n *namespace) tableObject(t *dataset.Table) *goja.Object {
	obj := n.vm.NewObject()
	n.tables[obj] = t

	readOnly := func(name string, v any) {
		_ = obj.DefineDataProperty(name, n.vm.ToValue(v), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_TRUE)
	}
	cols := t.Columns()
	colValues := make([]any, len(cols))
	for i, c := range cols {
		colValues[i] = c
	}
	readOnly("columns", n.freeze(n.vm.NewArray(colValues...)))
	readOnly("length", t.Len())
	readOnly("shape", n.freeze(n.vm.NewArray(t.Len(), t.Width())))

	method := func(name string, fn func(goja.FunctionCall) goja.Value) {
		_ = obj.DefineDataProperty(name, n.vm.ToValue(fn), goja.FLAG_FALSE, goja.FLAG_FALSE, goja.FLAG_FALSE)
	}

	// wrap returns the new table, or throws err
	wrap := func(out *dataset.Table, err error) goja.Value {
		if err != nil {
			n.throw(err)
		}
		return n.tableObject(out)
	}

	method("head", func(call goja.FunctionCall) goja.Value {
		return n.tableObject(t.Head(intArg(call, 0, 5)))
	})
	method("tail", func(call goja.FunctionCall) goja.Value {
		return n.tableObject(t.Tail(intArg(call, 0, 5)))
	})
	method("slice", func(call goja.FunctionCall) goja.Value {
		return n.tableObject(t.Slice(intArg(call, 0, 0), intArg(call, 1, t.Len())))
	})
	method("select", func(call goja.FunctionCall) goja.Value {
		return wrap(t.Select(n.strings(call.Arguments)...))
	})
	method("filter", func(call goja.FunctionCall) goja.Value {
		fn := n.callback(call.Argument(0), "filter")
		return wrap(t.Filter(func(row map[string]any) (bool, error) {
			v, err := fn(goja.Undefined(), n.record(cols, row))
			if err != nil {
				return false, err
			}
			return v.ToBoolean(), nil
		}))
	})
	method("sortBy", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 1 {
			n.typeError("sortBy requires a column name")
		}
		return wrap(t.SortBy(call.Argument(0).String(), call.Argument(1).ToBoolean()))
	})
	method("withColumn", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("withColumn requires a name and a function")
		}
		fn := n.callback(call.Argument(1), "withColumn")
		return wrap(t.WithColumn(call.Argument(0).String(), func(row map[string]any) (any, error) {
			v, err := fn(goja.Undefined(), n.record(cols, row))
			if err != nil {
				return nil, err
			}
			return n.cell(v), nil
		}))
	})
	method("rename", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("rename requires the old and new column names")
		}
		return wrap(t.Rename(call.Argument(0).String(), call.Argument(1).String()))
	})
	method("dropNA", func(goja.FunctionCall) goja.Value {
		return n.tableObject(t.DropNA())
	})
	method("valueCounts", func(call goja.FunctionCall) goja.Value {
		return wrap(t.ValueCounts(n.column(call, "valueCounts")))
	})
	method("groupBy", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("groupBy requires a key column and a value column")
		}
		return wrap(t.GroupBy(call.Argument(0).String(), call.Argument(1).String(), stringArg(call, 2, dataset.AggSum)))
	})
	method("describe", func(goja.FunctionCall) goja.Value {
		return n.tableObject(t.Describe())
	})
	method("merge", func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 2 {
			n.typeError("merge requires a table and a key column")
		}
		right, err := n.table(call.Argument(0))
		if err != nil {
			n.throw(err)
		}
		return wrap(t.Merge(right, call.Argument(1).String(), stringArg(call, 2, dataset.JoinInner)))
	})
	method("column", func(call goja.FunctionCall) goja.Value {
		vs, err := t.Column(n.column(call, "column"))
		if err != nil {
			n.throw(err)
		}
		return n.array(vs)
	})
	method("unique", func(call goja.FunctionCall) goja.Value {
		vs, err := t.Unique(n.column(call, "unique"))
		if err != nil {
			n.throw(err)
		}
		return n.array(vs)
	})
	method("row", func(call goja.FunctionCall) goja.Value {
		row, err := t.Row(intArg(call, 0, 0))
		if err != nil {
			n.throw(err)
		}
		return n.record(cols, row)
	})
	method("rows", func(goja.FunctionCall) goja.Value {
		records := t.Records()
		items := make([]any, len(records))
		for i, rec := range records {
			items[i] = n.record(cols, rec)
		}
		return n.vm.NewArray(items...)
	})
	method("toString", func(goja.FunctionCall) goja.Value {
		return n.vm.ToValue(t.String())
	})
	method("toCSV", func(goja.FunctionCall) goja.Value {
		s, err := t.CSV()
		if err != nil {
			n.throw(err)
		}
		return n.vm.ToValue(s)
	})
	method("toJSON", func(goja.FunctionCall) goja.Value {
		records := t.Records()
		items := make([]any, len(records))
		for i, rec := range records {
			items[i] = n.record(cols, rec)
		}
		return n.vm.NewArray(items...)
	})

	return obj
}

// freeze applies Object.freeze to obj.
func (n *namespace) freeze(obj *goja.Object) *goja.Object {
	if fn, ok := goja.AssertFunction(n.vm.Get("Object").ToObject(n.vm).Get("freeze")); ok {
		_, _ = fn(goja.Undefined(), obj)
	}
	return obj
}

// callback asserts that v is a function.
func (n *namespace) callback(v goja.Value, method string) goja.Callable {
	fn, ok := goja.AssertFunction(v)
	if !ok {
		n.typeError(fmt.Sprintf("%s requires a function", method))
	}
	return fn
}

// column returns the required column-name argument of method.
func (n *namespace) column(call goja.FunctionCall, method string) string {
	if len(call.Arguments) < 1 {
		n.typeError(fmt.Sprintf("%s requires a column name", method))
	}
	return call.Argument(0).String()
}
