package modules

import (
	"fmt"

	"emperror.dev/errors"

	"github.com/priyxstudio/pub/modkit"
)

const constructErrorMarker = "Failed to construct."

// ToModule materializes the data into a module living behind surface. Valid
// data has its code built and instantiated; if either step fails the data is
// invalidated and the result is an InvalidModule carrying the failure. The
// surface is cleared first so nothing exposed by a previous implementation
// survives.
func (d ModuleData) ToModule(r *Registry, surface *modkit.Surface) Module {
	surface.Reset()
	b := base{registry: r, data: d, surface: surface}
	switch resp := d.Response.(type) {
	case ValidResponse:
		ctor, err := r.evaluator.BuildConstructor(resp.Code)
		if err != nil {
			return d.Invalidate([]string{err.Error()}).ToModule(r, surface)
		}
		var impl Implementation
		err = guard(func() (err error) {
			impl, err = ctor.Instantiate(surface)
			return err
		})
		if err == nil && impl == nil {
			err = errors.New("constructor returned no implementation")
		}
		if err != nil {
			return d.Invalidate([]string{constructErrorMarker, err.Error()}).ToModule(r, surface)
		}
		return &ValidModule{base: b, impl: impl}
	case InvalidResponse:
		return &InvalidModule{base: b}
	case PendingResponse:
		return &PendingModule{base: b}
	}
	panic(fmt.Sprintf("modules: unexpected generation response %T", d.Response))
}
