package script

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/dop251/goja"
)

// resolvePath converts path to an absolute path. Relative paths resolve
// against dir, or the process working directory when dir is empty.
func resolvePath(dir, path string) (string, error) {
	if filepath.IsAbs(path) {
		return filepath.Clean(path), nil
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}
	return filepath.Abs(filepath.Join(dir, path))
}

// fsLibrary builds the fs object: path helpers and directory access rooted
// at the configured working directory.
func (n *namespace) fsLibrary() (*goja.Object, error) {
	fs := n.vm.NewObject()
	resolve := func(path string) string {
		resolved, err := resolvePath(n.config.WorkDir, path)
		if err != nil {
			n.throw(err)
		}
		return resolved
	}

	funcs := map[string]func(goja.FunctionCall) goja.Value{
		// fs.join(a, b, ...) -> path
		"join": func(call goja.FunctionCall) goja.Value {
			return n.vm.ToValue(filepath.Join(n.strings(call.Arguments)...))
		},
		// fs.abs(path) -> absolute path
		"abs": func(call goja.FunctionCall) goja.Value {
			return n.vm.ToValue(resolve(stringArg(call, 0, ".")))
		},
		"base": func(call goja.FunctionCall) goja.Value {
			return n.vm.ToValue(filepath.Base(stringArg(call, 0, "")))
		},
		"dir": func(call goja.FunctionCall) goja.Value {
			return n.vm.ToValue(filepath.Dir(stringArg(call, 0, "")))
		},
		"ext": func(call goja.FunctionCall) goja.Value {
			return n.vm.ToValue(filepath.Ext(stringArg(call, 0, "")))
		},
		// fs.exists(path) -> boolean
		"exists": func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				n.typeError("fs.exists requires 1 argument: path")
			}
			_, err := os.Stat(resolve(call.Argument(0).String()))
			return n.vm.ToValue(err == nil)
		},
		// fs.list(path) -> array of {name, isDir, size}
		"list": func(call goja.FunctionCall) goja.Value {
			entries, err := os.ReadDir(resolve(stringArg(call, 0, ".")))
			if err != nil {
				n.throw(err)
			}
			items := make([]any, 0, len(entries))
			for _, entry := range entries {
				info, err := entry.Info()
				if err != nil {
					continue
				}
				item := n.vm.NewObject()
				_ = item.Set("name", entry.Name())
				_ = item.Set("isDir", entry.IsDir())
				_ = item.Set("size", info.Size())
				items = append(items, item)
			}
			return n.vm.NewArray(items...)
		},
		// fs.mkdir(path) -> absolute path, creating parents
		"mkdir": func(call goja.FunctionCall) goja.Value {
			if len(call.Arguments) < 1 {
				n.typeError("fs.mkdir requires 1 argument: path")
			}
			path := resolve(call.Argument(0).String())
			if err := os.MkdirAll(path, 0755); err != nil {
				n.throw(err)
			}
			return n.vm.ToValue(path)
		},
		"cwd": func(goja.FunctionCall) goja.Value {
			return n.vm.ToValue(resolve("."))
		},
	}
	for name, fn := range funcs {
		if err := fs.Set(name, fn); err != nil {
			return nil, err
		}
	}
	return fs, nil
}
