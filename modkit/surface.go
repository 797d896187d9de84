// Package modkit is the contract between the host and generated module code.
//
// Every module gets a Surface. Module code uses it to expose values and
// events to the other modules and to write output, and it reads the surfaces
// of the other modules (its Peers) to consume what they expose.
package modkit

import (
	"context"
	"fmt"
	"sync"

	"emperror.dev/errors"
)

// DefaultOutputLines is the number of output lines a surface keeps.
const DefaultOutputLines = 200

// Getter returns the current value of an exposed value.
type Getter func() any

// Handler is called when an event is dispatched.
type Handler func()

// Hooks is what module code hands back to the host when it is constructed.
// Init runs once, before any module is run. Run may block until ctx is done.
type Hooks struct {
	Init func() error
	Run  func(ctx context.Context, peers Peers) error
}

// Peers maps the names of the other running modules to their surfaces.
type Peers map[string]*Surface

// Surface is the handle a module lives behind. Several handles can share
// what is exposed on them, see Adopt.
type Surface struct {
	mu       sync.RWMutex
	st       *state
	released bool
}

type state struct {
	mu       sync.RWMutex
	getters  map[string]Getter
	handlers map[string][]Handler
	output   []string
	limit    int
}

func newState(limit int) *state {
	return &state{
		getters:  make(map[string]Getter),
		handlers: make(map[string][]Handler),
		limit:    limit,
	}
}

// NewSurface returns an empty surface keeping up to limit lines of output. A
// limit below one means DefaultOutputLines.
func NewSurface(limit int) *Surface {
	if limit < 1 {
		limit = DefaultOutputLines
	}
	return &Surface{st: newState(limit)}
}

func (s *Surface) state() *state {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.st
}

// Adopt makes s show everything exposed on from. Both handles share it from
// then on, while whatever s exposed before is left to the handles still
// holding it.
func (s *Surface) Adopt(from *Surface) {
	if s == from {
		return
	}
	st := from.state()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st = st
}

// Expose publishes a value under name. Other modules read it with Get.
func (s *Surface) Expose(name string, getter Getter) {
	st := s.state()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.getters[name] = getter
}

// Get returns the current value exposed under name, or nil when nothing is
// exposed under it.
func (s *Surface) Get(name string) any {
	st := s.state()
	st.mu.RLock()
	getter := st.getters[name]
	st.mu.RUnlock()
	if getter == nil {
		return nil
	}
	return getter()
}

// RegisterEvent declares an event so that other modules can listen to it. It
// should be called from Init.
func (s *Surface) RegisterEvent(event string) {
	st := s.state()
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.handlers[event]; !ok {
		st.handlers[event] = nil
	}
}

// On adds a handler for an event exposed by this surface.
func (s *Surface) On(event string, handler Handler) error {
	st := s.state()
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.handlers[event]; !ok {
		return errors.Errorf("event %s is not exposed by this module", event)
	}
	st.handlers[event] = append(st.handlers[event], handler)
	return nil
}

// Dispatch calls every handler registered for event.
func (s *Surface) Dispatch(event string) error {
	st := s.state()
	st.mu.RLock()
	handlers, ok := st.handlers[event]
	handlers = append([]Handler(nil), handlers...)
	st.mu.RUnlock()
	if !ok {
		return errors.Errorf("event %s is not exposed by this module", event)
	}
	for _, h := range handlers {
		h()
	}
	return nil
}

// Values returns the names of the exposed values.
func (s *Surface) Values() []string {
	st := s.state()
	st.mu.RLock()
	defer st.mu.RUnlock()
	out := make([]string, 0, len(st.getters))
	for name := range st.getters {
		out = append(out, name)
	}
	return out
}

// Printf appends a line to the surface output. Old lines are dropped once the
// limit is reached.
func (s *Surface) Printf(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	st := s.state()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.output = append(st.output, line)
	if over := len(st.output) - st.limit; over > 0 {
		st.output = append([]string(nil), st.output[over:]...)
	}
}

// Output returns a copy of the current output lines.
func (s *Surface) Output() []string {
	st := s.state()
	st.mu.RLock()
	defer st.mu.RUnlock()
	return append([]string(nil), st.output...)
}

// Reset drops everything exposed on the surface and its output. The host
// calls it before a new implementation is constructed on the surface.
func (s *Surface) Reset() {
	st := s.state()
	st.mu.Lock()
	defer st.mu.Unlock()
	st.getters = make(map[string]Getter)
	st.handlers = make(map[string][]Handler)
	st.output = nil
}

// Released reports whether the surface was released by its container.
func (s *Surface) Released() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.released
}

// Container creates and tracks the surfaces of all modules.
type Container struct {
	mu       sync.Mutex
	limit    int
	surfaces map[*Surface]struct{}
}

// NewContainer returns a container whose surfaces keep limit output lines.
func NewContainer(limit int) *Container {
	return &Container{limit: limit, surfaces: make(map[*Surface]struct{})}
}

// Create returns a new surface owned by the container.
func (c *Container) Create() *Surface {
	s := NewSurface(c.limit)
	c.mu.Lock()
	c.surfaces[s] = struct{}{}
	c.mu.Unlock()
	return s
}

// Release removes a surface from the container and clears it.
func (c *Container) Release(s *Surface) {
	if s == nil {
		return
	}
	c.mu.Lock()
	delete(c.surfaces, s)
	c.mu.Unlock()
	s.Reset()
	s.mu.Lock()
	s.released = true
	s.mu.Unlock()
}

// Clear releases every surface.
func (c *Container) Clear() {
	c.mu.Lock()
	all := make([]*Surface, 0, len(c.surfaces))
	for s := range c.surfaces {
		all = append(all, s)
	}
	c.mu.Unlock()
	for _, s := range all {
		c.Release(s)
	}
}

// Len returns the number of live surfaces.
func (c *Container) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.surfaces)
}
