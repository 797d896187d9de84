package modules

import (
	"github.com/priyxstudio/pub/modkit"
)

// Init initializes every valid module. A module whose init fails is demoted
// and the others are still initialized.
func (r *Registry) Init() {
	for _, m := range r.ValidModules() {
		m.Init()
	}
}

// Run starts every valid module that isn't running yet.
func (r *Registry) Run() {
	for _, m := range r.ValidModules() {
		m.Run()
	}
}

// Activate initializes every valid module and then runs the ones that are
// still valid.
func (r *Registry) Activate() {
	r.Init()
	r.Run()
}

// peers returns the surfaces of the valid modules other than name.
func (r *Registry) peers(name string) modkit.Peers {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(modkit.Peers, len(r.modules))
	for n, m := range r.modules {
		if n != name && m.State() == StateValid {
			out[n] = m.Surface()
		}
	}
	return out
}

func stopModule(m Module) {
	if v, ok := m.(*ValidModule); ok {
		v.stop()
	}
}
