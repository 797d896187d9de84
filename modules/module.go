package modules

import (
	"context"
	"fmt"
	"sync"

	"emperror.dev/errors"
	"github.com/apex/log"

	"github.com/priyxstudio/pub/modkit"
)

const (
	initErrorMarker = "Run-time error in the init method."
	runErrorMarker  = "Run-time error in the run method."
)

// Module is a registered module. It is one of *ValidModule, *InvalidModule
// or *PendingModule. Modules are never changed in place: every change
// produces a new Module that replaces the old one in the Registry.
type Module interface {
	Name() string
	Data() ModuleData
	Definition() ModuleDefinition
	State() State
	Surface() *modkit.Surface

	// Delete removes the module and regenerates the remaining ones.
	Delete() error
	// Rename moves the module to a new name and regenerates the others.
	Rename(name string) (Module, error)
	// Change regenerates the module from a new definition and then
	// regenerates the others.
	Change(ctx context.Context, definition ModuleDefinition) (Module, error)
	// Recreate regenerates the module from its current definition without
	// touching the other modules.
	Recreate(ctx context.Context) (Module, error)

	attach(surface *modkit.Surface)
	sealed()
}

type base struct {
	registry *Registry
	data     ModuleData
	surface  *modkit.Surface
}

func (b *base) Name() string                 { return b.data.Name() }
func (b *base) Data() ModuleData             { return b.data }
func (b *base) Definition() ModuleDefinition { return b.data.Definition }
func (b *base) Surface() *modkit.Surface     { return b.surface }
func (b *base) sealed()                      {}

// attach moves a module that isn't registered yet behind surface.
func (b *base) attach(surface *modkit.Surface) {
	b.surface = surface
}

func (b *base) Delete() error {
	return b.registry.delete(b.Name(), defaultUpdateOptions())
}

func (b *base) Rename(name string) (Module, error) {
	return b.registry.UpdateModule(b.Name(), b.data.Renamed(name))
}

func (b *base) Change(ctx context.Context, definition ModuleDefinition) (Module, error) {
	data := b.registry.generate(ctx, definition, b.Name())
	return b.registry.UpdateModule(b.Name(), data)
}

func (b *base) Recreate(ctx context.Context) (Module, error) {
	return b.registry.recreate(ctx, b.Name(), b.data.Definition)
}

func (b *base) logger() *log.Entry {
	return log.WithField("module", b.Name())
}

// InvalidModule is a module whose response was malformed or whose code
// failed. It can be fixed without any input from the user.
type InvalidModule struct {
	base
}

func (m *InvalidModule) State() State { return StateInvalid }

// Response returns the invalid response the module carries.
func (m *InvalidModule) Response() InvalidResponse {
	return m.data.Response.(InvalidResponse)
}

// Errors returns the reasons the module is invalid.
func (m *InvalidModule) Errors() []string {
	return cloneStrings(m.Response().Errors)
}

// Fix asks the generator to repair the module using its errors, then
// regenerates the other modules unless told otherwise.
func (m *InvalidModule) Fix(ctx context.Context, opts ...UpdateOption) (Module, error) {
	r := m.registry
	response := m.Response()
	raw, err := r.callGenerator(ctx, func(ctx context.Context) (string, error) {
		return r.generator.Fix(ctx, m.Name(), m.data.Definition.Description, response.Response, response.Errors, r.OtherModuleInterfaces(m.Name()))
	})
	data := NewModuleData(m.data.Definition, classifyResult(raw, err))
	m.logger().WithField("state", data.State()).Info("fixed module")
	return r.UpdateModule(m.Name(), data, opts...)
}

// PendingModule is a module the generator refused to generate. The comments
// explain why; it takes a new definition from the user to go forward.
type PendingModule struct {
	base
}

func (m *PendingModule) State() State { return StatePending }

// Response returns the pending response the module carries.
func (m *PendingModule) Response() PendingResponse {
	return m.data.Response.(PendingResponse)
}

// Comments returns the generator's explanation.
func (m *PendingModule) Comments() []string {
	return cloneStrings(m.Response().Comments)
}

// Fix regenerates the module from a replacement definition supplied by the
// user. It behaves exactly like Change.
func (m *PendingModule) Fix(ctx context.Context, definition ModuleDefinition) (Module, error) {
	return m.Change(ctx, definition)
}

// ValidModule is a module with a constructed implementation that can be
// initialized and run.
type ValidModule struct {
	base
	impl Implementation

	mu          sync.Mutex
	initialized bool
	running     bool
	stopped     bool
	cancel      context.CancelFunc
}

func (m *ValidModule) State() State { return StateValid }

// Response returns the valid response the module carries.
func (m *ValidModule) Response() ValidResponse {
	return m.data.Response.(ValidResponse)
}

// Running reports whether the module's run method is currently executing.
func (m *ValidModule) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Init runs the implementation's one-time setup. It does nothing if the
// module was already initialized. A failure demotes the module.
func (m *ValidModule) Init() {
	m.mu.Lock()
	if m.initialized || m.stopped || m.registry.ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	m.initialized = true
	m.mu.Unlock()

	if err := guard(m.impl.Init); err != nil {
		m.demote(initErrorMarker, err)
	}
}

// Run starts the implementation's run method in the background. It does
// nothing if the module is already running, has been replaced, or the
// registry was closed. A failure demotes the module; returning nil just ends
// the run.
func (m *ValidModule) Run() {
	m.mu.Lock()
	if m.running || m.stopped || m.registry.ctx.Err() != nil {
		m.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(m.registry.ctx)
	m.running = true
	m.cancel = cancel
	m.mu.Unlock()

	peers := m.registry.peers(m.Name())
	go func() {
		defer cancel()
		err := guard(func() error { return m.impl.Run(ctx, peers) })

		m.mu.Lock()
		m.running = false
		stopped := m.stopped
		m.mu.Unlock()

		// A run that ends because it was told to stop hasn't failed, whatever
		// it returns.
		if err != nil && !stopped && ctx.Err() == nil {
			m.demote(runErrorMarker, err)
		}
	}()
}

// Activate initializes and runs the module.
func (m *ValidModule) Activate() {
	m.Init()
	m.Run()
}

// Adjust asks the generator to change the existing code according to the
// instructions, then regenerates the other modules. If the generator rewrote
// the description to match, the definition takes the new description.
func (m *ValidModule) Adjust(ctx context.Context, instructions string) (Module, error) {
	r := m.registry
	raw, err := r.callGenerator(ctx, func(ctx context.Context) (string, error) {
		return r.generator.Adjust(ctx, m.Name(), m.data.Definition.Description, instructions, OriginalResponse(m.data.Response), r.OtherModuleInterfaces(m.Name()))
	})
	response := classifyResult(raw, err)
	definition := m.data.Definition
	if v, ok := response.(ValidResponse); ok && v.Description != "" {
		definition = definition.WithDescription(v.Description)
	}
	return r.UpdateModule(m.Name(), NewModuleData(definition, response))
}

// stop cancels the run method and prevents any later init or run. A module
// is stopped when it is replaced or deleted.
func (m *ValidModule) stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	if m.cancel != nil {
		m.cancel()
	}
}

func (m *ValidModule) demote(marker string, err error) {
	m.logger().WithError(err).Warn(marker)
	data := m.data.Invalidate([]string{marker, err.Error()})
	if _, uerr := m.registry.demote(m, data); uerr != nil {
		m.logger().WithError(uerr).Error("failed to demote module")
	}
}

// guard calls fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if p := recover(); p != nil {
			if e, ok := p.(error); ok {
				err = errors.WithStack(e)
				return
			}
			err = errors.New(fmt.Sprint(p))
		}
	}()
	return fn()
}
