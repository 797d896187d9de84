// Package evaluator runs generated module code in a Go interpreter.
//
// Generated code is a single Go file in package module that declares
//
//	func New(surface *modkit.Surface) (*modkit.Hooks, error)
//
// Every build gets its own interpreter, so modules never share state other
// than through their surfaces.
package evaluator

import (
	"context"
	"fmt"
	"reflect"
	"strings"

	"emperror.dev/errors"
	"github.com/traefik/yaegi/interp"
	"github.com/traefik/yaegi/stdlib"

	"github.com/priyxstudio/pub/modkit"
	"github.com/priyxstudio/pub/modules"
)

const constructorName = "module.New"

// constructorFunc is the signature generated code must give New.
type constructorFunc = func(*modkit.Surface) (*modkit.Hooks, error)

// Packages that generated code may not import.
var denied = []string{
	"os/exec/",
	"os/signal/",
	"net/",
	"syscall/",
	"plugin/",
	"runtime/debug/",
}

// Evaluator builds constructors out of generated code.
type Evaluator struct {
	symbols interp.Exports
}

var _ modules.Evaluator = (*Evaluator)(nil)

// New returns an evaluator exposing the standard library, minus process and
// network access, and the module kit.
func New() *Evaluator {
	symbols := make(interp.Exports, len(stdlib.Symbols))
	for path, exports := range stdlib.Symbols {
		if isDenied(path) {
			continue
		}
		symbols[path] = exports
	}
	return &Evaluator{symbols: symbols}
}

func isDenied(path string) bool {
	for _, prefix := range denied {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// BuildConstructor interprets code and returns its New function. Anything
// that keeps New from being found with the right signature is an error.
func (e *Evaluator) BuildConstructor(code string) (modules.Constructor, error) {
	if strings.TrimSpace(code) == "" {
		return nil, errors.New("no code to evaluate")
	}
	i := interp.New(interp.Options{})
	if err := i.Use(e.symbols); err != nil {
		return nil, errors.Wrap(err, "evaluator: failed to load standard library")
	}
	if err := i.Use(modkit.Symbols); err != nil {
		return nil, errors.Wrap(err, "evaluator: failed to load module kit")
	}

	var value reflect.Value
	err := protect(func() error {
		if _, err := i.Eval(code); err != nil {
			return err
		}
		v, err := i.Eval(constructorName)
		if err != nil {
			return errors.Wrap(err, "code must declare New in package module")
		}
		value = v
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !value.IsValid() || value.Kind() != reflect.Func {
		return nil, errors.New("New is not a function")
	}
	fn, ok := value.Interface().(constructorFunc)
	if !ok {
		return nil, errors.Errorf("New must be func(*modkit.Surface) (*modkit.Hooks, error), got %s", value.Type())
	}
	return &constructor{fn: fn}, nil
}

type constructor struct {
	fn constructorFunc
}

// Instantiate resets the surface and calls New on it.
func (c *constructor) Instantiate(surface *modkit.Surface) (modules.Implementation, error) {
	surface.Reset()
	var hooks *modkit.Hooks
	err := protect(func() (err error) {
		hooks, err = c.fn(surface)
		return err
	})
	if err != nil {
		return nil, err
	}
	if hooks == nil {
		return nil, errors.New("New returned no hooks")
	}
	return &implementation{hooks: *hooks}, nil
}

type implementation struct {
	hooks modkit.Hooks
}

func (im *implementation) Init() error {
	if im.hooks.Init == nil {
		return nil
	}
	return protect(im.hooks.Init)
}

// Run calls the module's run hook. A module without one has nothing to run.
func (im *implementation) Run(ctx context.Context, peers modkit.Peers) error {
	if im.hooks.Run == nil {
		return nil
	}
	return protect(func() error {
		return im.hooks.Run(ctx, peers)
	})
}

// protect calls fn, turning a panic into an error.
func protect(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = errors.Errorf("panic: %s", fmt.Sprint(p))
		}
	}()
	return fn()
}
