package script

import (
	"github.com/dop251/goja"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

// tablesLibrary builds the tables object: constructors and combinators.
func (n *namespace) tablesLibrary() (*goja.Object, error) {
	lib := n.vm.NewObject()

	// tables.fromRecords([{...}, ...]) -> table
	fromRecords := func(call goja.FunctionCall) goja.Value {
		arr, ok := call.Argument(0).(*goja.Object)
		if !ok || arr.ClassName() != "Array" {
			n.typeError("tables.fromRecords requires an array of objects")
		}
		records, order, err := n.records(arr)
		if err != nil {
			n.throw(err)
		}
		t, err := dataset.FromRecords(records, order...)
		if err != nil {
			n.throw(err)
		}
		return n.tableObject(t)
	}
	if err := lib.Set("fromRecords", fromRecords); err != nil {
		return nil, err
	}

	// tables.fromColumns({name: [...], ...}) -> table
	fromColumns := func(call goja.FunctionCall) goja.Value {
		obj, ok := call.Argument(0).(*goja.Object)
		if !ok || obj.ClassName() != "Object" {
			n.typeError("tables.fromColumns requires an object of arrays")
		}
		keys := obj.Keys()
		data := make(map[string][]any, len(keys))
		for _, k := range keys {
			vs, err := n.list(obj.Get(k))
			if err != nil {
				n.typeError("tables.fromColumns: column " + k + " is not an array")
			}
			data[k] = vs
		}
		t, err := dataset.FromColumns(data, keys...)
		if err != nil {
			n.throw(err)
		}
		return n.tableObject(t)
	}
	if err := lib.Set("fromColumns", fromColumns); err != nil {
		return nil, err
	}

	// tables.concat(t1, t2, ...) -> table
	concat := func(call goja.FunctionCall) goja.Value {
		parts := make([]*dataset.Table, 0, len(call.Arguments))
		for _, arg := range call.Arguments {
			t, err := n.table(arg)
			if err != nil {
				n.throw(err)
			}
			parts = append(parts, t)
		}
		return n.tableObject(dataset.Concat(parts...))
	}
	if err := lib.Set("concat", concat); err != nil {
		return nil, err
	}

	// tables.merge(left, right, on, how) -> table
	merge := func(call goja.FunctionCall) goja.Value {
		if len(call.Arguments) < 3 {
			n.typeError("tables.merge requires two tables and a key column")
		}
		left, err := n.table(call.Argument(0))
		if err != nil {
			n.throw(err)
		}
		right, err := n.table(call.Argument(1))
		if err != nil {
			n.throw(err)
		}
		out, err := left.Merge(right, call.Argument(2).String(), stringArg(call, 3, dataset.JoinInner))
		if err != nil {
			n.throw(err)
		}
		return n.tableObject(out)
	}
	if err := lib.Set("merge", merge); err != nil {
		return nil, err
	}

	// tables.isTable(v) -> boolean
	isTable := func(call goja.FunctionCall) goja.Value {
		_, err := n.table(call.Argument(0))
		return n.vm.ToValue(err == nil)
	}
	if err := lib.Set("isTable", isTable); err != nil {
		return nil, err
	}

	return lib, nil
}
