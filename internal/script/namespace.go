package script

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"github.com/itsmostafa/dataexplore/internal/dataset"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// namespace builds and reads the bindings of one runtime.
type namespace struct {
	vm     *goja.Runtime
	out    *capture
	config Config

	// tables maps every table object handed to the script back to its
	// table, so results can be recognized after execution.
	tables map[*goja.Object]*dataset.Table
}

func newNamespace(vm *goja.Runtime, out *capture, config Config) *namespace {
	return &namespace{
		vm:     vm,
		out:    out,
		config: config,
		tables: make(map[*goja.Object]*dataset.Table),
	}
}

// bindTables binds every table under its own name and returns the names it
// could not bind, sorted. A library name is never bound to a table, and
// neither is a read-only global such as undefined, NaN or Infinity. Those
// tables stay stored but are unreachable from scripts.
func (n *namespace) bindTables(tables map[string]*dataset.Table) []string {
	reserved := Libraries()
	var skipped []string
	for name, t := range tables {
		if slices.Contains(reserved, name) {
			skipped = append(skipped, name)
			continue
		}
		if err := n.vm.Set(name, n.tableObject(t)); err != nil {
			skipped = append(skipped, name)
		}
	}
	sort.Strings(skipped)
	return skipped
}

// bindLibraries binds print, console and the supporting libraries.
func (n *namespace) bindLibraries() error {
	printFunc := func(call goja.FunctionCall) goja.Value {
		args := make([]string, len(call.Arguments))
		for i, arg := range call.Arguments {
			args[i] = n.format(arg)
		}
		n.out.WriteString(strings.Join(args, " "))
		n.out.WriteString("\n")
		return goja.Undefined()
	}
	if err := n.vm.Set(BindPrint, printFunc); err != nil {
		return fmt.Errorf("failed to set print: %w", err)
	}

	console := n.vm.NewObject()
	for _, level := range []string{"log", "info", "warn", "error", "debug"} {
		if err := console.Set(level, printFunc); err != nil {
			return fmt.Errorf("failed to set console.%s: %w", level, err)
		}
	}
	if err := n.vm.Set(BindConsole, console); err != nil {
		return fmt.Errorf("failed to set console: %w", err)
	}

	libraries := []struct {
		name  string
		build func() (*goja.Object, error)
	}{
		{BindTables, n.tablesLibrary},
		{BindStats, n.statsLibrary},
		{BindChart, n.chartLibrary},
		{BindFS, n.fsLibrary},
	}
	for _, lib := range libraries {
		obj, err := lib.build()
		if err != nil {
			return fmt.Errorf("failed to build %s: %w", lib.name, err)
		}
		if err := n.vm.Set(lib.name, obj); err != nil {
			return fmt.Errorf("failed to set %s: %w", lib.name, err)
		}
	}
	return nil
}

// lookup resolves name in the post-execution namespace, including
// top-level let and const bindings. Undeclared or undefined names report
// false. An interrupt delivered during the lookup is returned as an error.
func (n *namespace) lookup(name string) (goja.Value, bool, error) {
	if !identifierPattern.MatchString(name) {
		return nil, false, nil
	}
	v, err := n.vm.RunString("typeof " + name + " === 'undefined' ? undefined : " + name)
	if err != nil {
		var interrupted *goja.InterruptedError
		if errors.As(err, &interrupted) {
			return nil, false, err
		}
		return nil, false, nil
	}
	if v == nil || goja.IsUndefined(v) {
		return nil, false, nil
	}
	return v, true, nil
}

// asTable converts a namespace value to a table. Table objects map back to
// their table; arrays of plain objects are converted row by row.
func (n *namespace) asTable(v goja.Value) (*dataset.Table, bool) {
	obj, ok := v.(*goja.Object)
	if !ok {
		return nil, false
	}
	if t, ok := n.tables[obj]; ok {
		return t, true
	}
	if obj.ClassName() != "Array" {
		return nil, false
	}
	records, order, err := n.records(obj)
	if err != nil {
		return nil, false
	}
	t, err := dataset.FromRecords(records, order...)
	if err != nil {
		return nil, false
	}
	return t, true
}

// records reads an array of plain objects. Column order follows the keys
// of the objects as they are first seen.
func (n *namespace) records(arr *goja.Object) ([]map[string]any, []string, error) {
	length := int(arr.Get("length").ToInteger())
	records := make([]map[string]any, 0, length)
	var order []string
	seen := make(map[string]bool)

	for i := range length {
		item, ok := arr.Get(strconv.Itoa(i)).(*goja.Object)
		if !ok || item.ClassName() != "Object" {
			return nil, nil, fmt.Errorf("element %d is not an object", i)
		}
		rec := make(map[string]any)
		for _, k := range item.Keys() {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
			rec[k] = n.cell(item.Get(k))
		}
		records = append(records, rec)
	}
	return records, order, nil
}

// cell converts a script value into a table cell.
func (n *namespace) cell(v goja.Value) any {
	if v == nil || goja.IsUndefined(v) || goja.IsNull(v) {
		return nil
	}
	switch x := v.Export().(type) {
	case int64, float64, string, bool:
		return dataset.Normalize(x)
	default:
		return v.String()
	}
}

// value converts a table cell into a script value.
func (n *namespace) value(v any) goja.Value {
	if v == nil {
		return goja.Null()
	}
	return n.vm.ToValue(v)
}

// array converts cells into a script array.
func (n *namespace) array(vs []any) *goja.Object {
	items := make([]any, len(vs))
	for i, v := range vs {
		items[i] = n.value(v)
	}
	return n.vm.NewArray(items...)
}

// record converts a row into a script object with keys in column order.
func (n *namespace) record(columns []string, row map[string]any) *goja.Object {
	obj := n.vm.NewObject()
	for _, c := range columns {
		_ = obj.Set(c, n.value(row[c]))
	}
	return obj
}

// list reads an array argument into cells.
func (n *namespace) list(v goja.Value) ([]any, error) {
	obj, ok := v.(*goja.Object)
	if !ok || obj.ClassName() != "Array" {
		return nil, errors.New("expected an array")
	}
	length := int(obj.Get("length").ToInteger())
	out := make([]any, length)
	for i := range length {
		out[i] = n.cell(obj.Get(strconv.Itoa(i)))
	}
	return out, nil
}

// strings flattens string arguments and arrays of strings.
func (n *namespace) strings(args []goja.Value) []string {
	var out []string
	for _, arg := range args {
		if obj, ok := arg.(*goja.Object); ok && obj.ClassName() == "Array" {
			length := int(obj.Get("length").ToInteger())
			for i := range length {
				out = append(out, obj.Get(strconv.Itoa(i)).String())
			}
			continue
		}
		out = append(out, arg.String())
	}
	return out
}

// table returns the table behind a table object argument.
func (n *namespace) table(v goja.Value) (*dataset.Table, error) {
	if obj, ok := v.(*goja.Object); ok {
		if t, ok := n.tables[obj]; ok {
			return t, nil
		}
	}
	return nil, errors.New("expected a table")
}

// format renders a value for print.
func (n *namespace) format(v goja.Value) string {
	if v == nil || goja.IsUndefined(v) {
		return "undefined"
	}
	if goja.IsNull(v) {
		return "null"
	}
	obj, ok := v.(*goja.Object)
	if !ok {
		return v.String()
	}
	if t, ok := n.tables[obj]; ok {
		return t.String()
	}
	switch obj.ClassName() {
	case "Array", "Object":
		if s, ok := n.stringify(obj); ok {
			return s
		}
	}
	return v.String()
}

// stringify calls JSON.stringify on v.
func (n *namespace) stringify(v goja.Value) (string, bool) {
	json := n.vm.Get("JSON")
	if json == nil {
		return "", false
	}
	fn, ok := goja.AssertFunction(json.ToObject(n.vm).Get("stringify"))
	if !ok {
		return "", false
	}
	out, err := fn(json, v)
	if err != nil || goja.IsUndefined(out) {
		return "", false
	}
	return out.String(), true
}

// floats converts an array argument into its numeric values.
func (n *namespace) floats(v goja.Value) []float64 {
	vs, err := n.list(v)
	if err != nil {
		n.throw(err)
	}
	return dataset.Floats(vs)
}

// number converts a float result, mapping NaN to the script's NaN.
func (n *namespace) number(f float64) goja.Value {
	if math.IsNaN(f) {
		return goja.NaN()
	}
	return n.vm.ToValue(f)
}

// throw raises err inside the script. Script exceptions are rethrown as
// they are; interrupts keep unwinding.
func (n *namespace) throw(err error) {
	var exc *goja.Exception
	if errors.As(err, &exc) {
		panic(exc.Value())
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		panic(interrupted)
	}
	panic(n.vm.NewGoError(err))
}

// typeError raises a TypeError inside the script.
func (n *namespace) typeError(msg string) {
	panic(n.vm.NewTypeError(msg))
}

// intArg returns argument i as an integer, or def when absent.
func intArg(call goja.FunctionCall, i, def int) int {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return def
	}
	return int(v.ToInteger())
}

// stringArg returns argument i as a string, or def when absent.
func stringArg(call goja.FunctionCall, i int, def string) string {
	v := call.Argument(i)
	if goja.IsUndefined(v) || goja.IsNull(v) {
		return def
	}
	return v.String()
}
