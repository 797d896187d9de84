package modules

import (
	"context"

	"emperror.dev/errors"
	"github.com/apex/log"
	"golang.org/x/sync/errgroup"
)

// recreateOtherModulesAndActivate regenerates every module except name and
// then activates the registry.
func (r *Registry) recreateOtherModulesAndActivate(ctx context.Context, name string) {
	r.recreateAndActivate(ctx, r.OtherModules(name))
}

// recreateOtherBrokenModulesAndActivate regenerates the modules other than
// name that are not valid and then activates the registry. Adding a module
// can only help broken modules; valid ones are left alone.
func (r *Registry) recreateOtherBrokenModulesAndActivate(ctx context.Context, name string) {
	var broken []Module
	for _, m := range r.OtherModules(name) {
		if m.State() != StateValid {
			broken = append(broken, m)
		}
	}
	r.recreateAndActivate(ctx, broken)
}

// recreateAndActivate regenerates all targets concurrently, waits for every
// one of them, and activates the registry once. A regeneration that fails
// doesn't stop the others.
func (r *Registry) recreateAndActivate(ctx context.Context, targets []Module) {
	g, gctx := errgroup.WithContext(ctx)
	if r.cascadeLimit > 0 {
		g.SetLimit(r.cascadeLimit)
	}
	for _, m := range targets {
		g.Go(func() error {
			if _, err := r.recreate(gctx, m.Name(), m.Definition()); err != nil && !errors.Is(err, errRegistryClosed) {
				log.WithField("module", m.Name()).WithError(err).Warn("failed to recreate module")
			}
			return nil
		})
	}
	_ = g.Wait()

	if ctx.Err() != nil {
		return
	}
	if len(targets) > 0 {
		log.WithField("modules", len(targets)).Debug("recreated modules")
	}
	r.Activate()
}

// recreate regenerates the module registered under name from definition,
// against the current context of the other modules, and replaces it without
// a cascade.
func (r *Registry) recreate(ctx context.Context, name string, definition ModuleDefinition) (Module, error) {
	data := r.generate(ctx, definition)
	if r.ctx.Err() != nil {
		return nil, errRegistryClosed
	}
	return r.UpdateModule(name, data, WithCascade(false))
}
