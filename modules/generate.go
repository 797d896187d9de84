package modules

import (
	"context"

	"emperror.dev/errors"
)

const generationFailedMarker = "Generation request failed."

// generate asks the generator for a module and classifies the answer. The
// generator is given the interfaces of every registered module except the one
// being generated and any names in exclude.
func (r *Registry) generate(ctx context.Context, definition ModuleDefinition, exclude ...string) ModuleData {
	others := r.otherInterfaces(append(exclude, definition.Name())...)
	raw, err := r.callGenerator(ctx, func(ctx context.Context) (string, error) {
		return r.generator.Generate(ctx, definition.Name(), definition.Description, others)
	})
	return NewModuleData(definition, classifyResult(raw, err))
}

// callGenerator runs fn with the registry's generation timeout applied.
func (r *Registry) callGenerator(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	raw, err := fn(ctx)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	return raw, err
}

// classifyResult classifies a generator answer. A failed request is an
// invalid response so that it can be fixed like any other.
func classifyResult(raw string, err error) GenerationResponse {
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = errors.WrapIf(err, "generation timed out")
		}
		return InvalidResponse{Response: raw, Errors: []string{generationFailedMarker, err.Error()}}
	}
	return Classify(raw)
}
