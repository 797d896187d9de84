package modules

import (
	"context"
	"sort"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/gammazero/workerpool"

	"github.com/priyxstudio/pub/modkit"
)

var (
	// errStaleModule is returned by internal updates that expected a specific
	// module instance to still be registered under its name.
	errStaleModule = errors.New("module was replaced")

	// errRegistryClosed is returned by updates made after Close.
	errRegistryClosed = errors.New("registry is closed")
)

// Registry owns every module, keyed by its current name. All changes to the
// set of modules go through it: they are persisted, the affected modules are
// rebuilt, and the other modules are regenerated against the new context.
type Registry struct {
	mu      sync.RWMutex
	modules map[string]Module

	store     Store
	generator Generator
	evaluator Evaluator
	surfaces  *modkit.Container

	timeout      time.Duration
	cascadeLimit int
	loadWorkers  int
	outputLines  int

	ctx    context.Context
	cancel context.CancelFunc
	tasks  sync.WaitGroup
	closed bool
}

// Option configures a Registry.
type Option func(r *Registry)

// WithGenerationTimeout bounds every request made to the generator. A request
// that runs out of time turns into an invalid module. Zero means no bound.
func WithGenerationTimeout(d time.Duration) Option {
	return func(r *Registry) {
		r.timeout = d
	}
}

// WithCascadeLimit limits how many modules are regenerated at once during a
// cascade. Zero means no limit.
func WithCascadeLimit(n int) Option {
	return func(r *Registry) {
		r.cascadeLimit = n
	}
}

// WithLoadWorkers sets the number of workers used to build modules on Load.
func WithLoadWorkers(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.loadWorkers = n
		}
	}
}

// WithOutputLines sets the number of output lines kept per module.
func WithOutputLines(n int) Option {
	return func(r *Registry) {
		r.outputLines = n
	}
}

// UpdateOption configures a single change to the registry.
type UpdateOption func(o *updateOptions)

type updateOptions struct {
	cascade bool
}

func defaultUpdateOptions() updateOptions {
	return updateOptions{cascade: true}
}

func newUpdateOptions(opts []UpdateOption) updateOptions {
	o := defaultUpdateOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithCascade controls whether a change regenerates the other modules. It is
// on by default. Without a cascade a changed module that is valid is activated
// right away.
func WithCascade(cascade bool) UpdateOption {
	return func(o *updateOptions) {
		o.cascade = cascade
	}
}

// NewRegistry returns an empty registry. Call Load to populate it from the
// store.
func NewRegistry(store Store, generator Generator, evaluator Evaluator, opts ...Option) *Registry {
	ctx, cancel := context.WithCancel(context.Background())
	r := &Registry{
		modules:     make(map[string]Module),
		store:       store,
		generator:   generator,
		evaluator:   evaluator,
		loadWorkers: 4,
		outputLines: modkit.DefaultOutputLines,
		ctx:         ctx,
		cancel:      cancel,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.surfaces = modkit.NewContainer(r.outputLines)
	return r
}

// Load replaces the registered modules with the ones in the store. The
// modules are built before the registry is touched; the running ones are
// stopped once the new set is in place. If any persisted record is malformed
// an error is returned and the registry is left empty.
func (r *Registry) Load(ctx context.Context) error {
	all, err := r.store.GetAll()
	if err != nil {
		r.replace(nil)
		return errors.WrapIf(err, "modules: failed to load modules from store")
	}

	built := make([]Module, len(all))
	pool := workerpool.New(r.loadWorkers)
	for i, data := range all {
		pool.Submit(func() {
			built[i] = r.build(data)
		})
	}
	pool.StopWait()

	if err := ctx.Err(); err != nil {
		r.replace(nil)
		return errors.WithStack(err)
	}
	for _, m := range built {
		install(m, r.surfaces.Create())
	}
	r.replace(built)
	log.WithField("modules", len(built)).Info("loaded modules from store")
	return nil
}

// replace swaps the registered modules for built, then stops the previous
// ones and releases their surfaces.
func (r *Registry) replace(built []Module) {
	next := make(map[string]Module, len(built))
	for _, m := range built {
		next[m.Name()] = m
	}

	r.mu.Lock()
	previous := r.modules
	r.modules = next
	r.mu.Unlock()

	for _, m := range previous {
		stopModule(m)
		r.surfaces.Release(m.Surface())
	}
}

// Get returns the module registered under name.
func (r *Registry) Get(name string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.modules[name]
	return m, ok
}

// Modules returns every registered module ordered by name.
func (r *Registry) Modules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(Module) bool { return true })
}

// ValidModules returns the registered modules that are valid, ordered by name.
func (r *Registry) ValidModules() []*ValidModule {
	r.mu.RLock()
	all := r.sortedLocked(func(m Module) bool { return m.State() == StateValid })
	r.mu.RUnlock()

	out := make([]*ValidModule, 0, len(all))
	for _, m := range all {
		out = append(out, m.(*ValidModule))
	}
	return out
}

// OtherModules returns every registered module except the one named name.
func (r *Registry) OtherModules(name string) []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sortedLocked(func(m Module) bool { return m.Name() != name })
}

// OtherModuleInterfaces returns the interfaces of every registered module
// except the one named name. This is the context handed to the generator.
func (r *Registry) OtherModuleInterfaces(name string) []ModuleInterface {
	return r.otherInterfaces(name)
}

func (r *Registry) otherInterfaces(exclude ...string) []ModuleInterface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.sortedLocked(func(m Module) bool {
		for _, name := range exclude {
			if m.Name() == name {
				return false
			}
		}
		return true
	})
	out := make([]ModuleInterface, 0, len(all))
	for _, m := range all {
		out = append(out, m.Definition().Interface)
	}
	return out
}

// ModuleExists reports whether a module is registered under name.
func (r *Registry) ModuleExists(name string) bool {
	_, ok := r.Get(name)
	return ok
}

// AddModule generates a new module from definition, persists it and registers
// it. It fails with ErrModuleExists if the name is taken, in which case
// nothing is generated. With a cascade the other modules that are not valid
// are regenerated in the background and then everything is activated.
func (r *Registry) AddModule(ctx context.Context, definition ModuleDefinition, opts ...UpdateOption) (Module, error) {
	name := definition.Name()
	if r.ModuleExists(name) {
		return nil, moduleExists(name)
	}

	m := r.build(r.generate(ctx, definition))

	r.mu.Lock()
	if _, ok := r.modules[name]; ok {
		r.mu.Unlock()
		return nil, moduleExists(name)
	}
	if err := r.store.Add(m.Data()); err != nil {
		r.mu.Unlock()
		return nil, errors.WrapIfWithDetails(err, "modules: failed to persist module", "module", name)
	}
	install(m, r.surfaces.Create())
	r.modules[name] = m
	r.mu.Unlock()

	log.WithField("module", name).WithField("state", m.State()).Info("added module")

	r.settle(m, newUpdateOptions(opts), func(ctx context.Context) {
		r.recreateOtherBrokenModulesAndActivate(ctx, name)
	})
	return m, nil
}

// UpdateModule replaces the module registered under name with one built from
// data, persisting it first. If data carries a different name the module is
// moved to it; moving onto another registered module fails with
// ErrModuleExists. The surface of the module is kept. With a cascade every
// other module is regenerated in the background and then everything is
// activated.
func (r *Registry) UpdateModule(name string, data ModuleData, opts ...UpdateOption) (Module, error) {
	return r.update(name, data, nil, newUpdateOptions(opts))
}

// update does the work of UpdateModule. If expect is set, the update only
// goes through while expect is still the registered module. The new module
// is built outside the lock; once it is persisted the old module is stopped
// and the new one is installed behind the old surface. Nothing about the old
// module changes when the update fails.
func (r *Registry) update(name string, data ModuleData, expect Module, o updateOptions) (Module, error) {
	target := data.Name()

	r.mu.RLock()
	_, err := r.updatableLocked(name, target, expect)
	r.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	m := r.build(data)

	r.mu.Lock()
	old, err := r.updatableLocked(name, target, expect)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if err := r.store.Update(name, m.Data()); err != nil {
		r.mu.Unlock()
		return nil, errors.WrapIfWithDetails(err, "modules: failed to persist module", "module", name)
	}
	stopModule(old)
	install(m, old.Surface())
	delete(r.modules, name)
	r.modules[target] = m
	r.mu.Unlock()

	entry := log.WithField("module", target).WithField("state", m.State())
	if target != name {
		entry = entry.WithField("previous", name)
	}
	entry.Info("updated module")

	r.settle(m, o, func(ctx context.Context) {
		r.recreateOtherModulesAndActivate(ctx, target)
	})
	return m, nil
}

// build materializes data on a surface of its own. The generated code runs
// here, so it must not be called with the lock held.
func (r *Registry) build(data ModuleData) Module {
	return data.ToModule(r, modkit.NewSurface(r.outputLines))
}

// install puts a built module behind surface, the handle the other modules
// see. The implementation keeps writing to its own handle, which surface now
// shares; anything a replaced implementation does afterwards stays on the
// handle it was built on.
func install(m Module, surface *modkit.Surface) {
	surface.Adopt(m.Surface())
	m.attach(surface)
}

// updatableLocked returns the module registered under name if it may be
// replaced by one registered under target.
func (r *Registry) updatableLocked(name, target string, expect Module) (Module, error) {
	if r.closed {
		return nil, errRegistryClosed
	}
	old, ok := r.modules[name]
	if !ok {
		return nil, moduleNotFound(name)
	}
	if expect != nil && old != expect {
		return nil, errStaleModule
	}
	if target != name {
		if _, taken := r.modules[target]; taken {
			return nil, moduleExists(target)
		}
	}
	return old, nil
}

// DeleteModule removes a module, its surface and its persisted data. With a
// cascade the remaining modules are regenerated in the background and then
// activated.
func (r *Registry) DeleteModule(module Module, opts ...UpdateOption) error {
	return r.delete(module.Name(), newUpdateOptions(opts))
}

func (r *Registry) delete(name string, o updateOptions) error {
	r.mu.Lock()
	m, ok := r.modules[name]
	if !ok {
		r.mu.Unlock()
		return moduleNotFound(name)
	}
	if err := r.store.Delete(name); err != nil {
		r.mu.Unlock()
		return errors.WrapIfWithDetails(err, "modules: failed to delete module", "module", name)
	}
	stopModule(m)
	delete(r.modules, name)
	r.surfaces.Release(m.Surface())
	r.mu.Unlock()

	log.WithField("module", name).Info("deleted module")

	if o.cascade {
		r.background(func(ctx context.Context) {
			r.recreateOtherModulesAndActivate(ctx, name)
		})
	}
	return nil
}

// demote replaces a valid module whose code failed at run time. Demotions of
// modules that were already replaced or deleted, or that come in after Close,
// are dropped.
func (r *Registry) demote(m *ValidModule, data ModuleData) (Module, error) {
	next, err := r.update(m.Name(), data, m, updateOptions{cascade: false})
	if errors.Is(err, errStaleModule) || errors.Is(err, errRegistryClosed) || IsNotFound(err) {
		log.WithField("module", m.Name()).Debug("ignoring failure of a module that is no longer registered")
		return nil, nil
	}
	return next, err
}

// settle finishes a change: it either starts the cascade in the background or
// activates the changed module straight away.
func (r *Registry) settle(m Module, o updateOptions, cascade func(ctx context.Context)) {
	if o.cascade {
		r.background(cascade)
		return
	}
	if v, ok := m.(*ValidModule); ok {
		v.Activate()
	}
}

// background runs fn on its own goroutine, tracked so that Wait and Close can
// block on it. Nothing is started once the registry is closed.
func (r *Registry) background(fn func(ctx context.Context)) {
	r.mu.RLock()
	closed := r.closed
	if !closed {
		r.tasks.Add(1)
	}
	r.mu.RUnlock()
	if closed {
		return
	}
	go func() {
		defer r.tasks.Done()
		fn(r.ctx)
	}()
}

// Wait blocks until every background cascade has finished.
func (r *Registry) Wait() {
	r.tasks.Wait()
}

// Close stops every module, cancels background work and waits for it.
// Modules can't be updated once the registry is closed, so nothing that
// happens while shutting down reaches the store.
func (r *Registry) Close() {
	r.mu.Lock()
	r.closed = true
	for _, m := range r.modules {
		stopModule(m)
	}
	r.mu.Unlock()

	r.cancel()
	r.tasks.Wait()
}

func (r *Registry) sortedLocked(keep func(Module) bool) []Module {
	out := make([]Module, 0, len(r.modules))
	for _, m := range r.modules {
		if keep(m) {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Name() < out[j].Name()
	})
	return out
}
