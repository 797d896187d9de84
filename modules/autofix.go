package modules

import (
	"context"
	"sync"
	"time"

	"emperror.dev/errors"
	"github.com/apex/log"
	"github.com/go-co-op/gocron/v2"
)

// AutoFixer periodically asks the generator to fix invalid modules. Each
// module gets a limited number of consecutive attempts; the count starts over
// once the module stops being invalid.
type AutoFixer struct {
	registry    *Registry
	interval    time.Duration
	maxAttempts int

	mu        sync.Mutex
	attempts  map[string]int
	scheduler gocron.Scheduler
}

// NewAutoFixer returns a fixer for the modules of r.
func NewAutoFixer(r *Registry, interval time.Duration, maxAttempts int) *AutoFixer {
	return &AutoFixer{
		registry:    r,
		interval:    interval,
		maxAttempts: maxAttempts,
		attempts:    make(map[string]int),
	}
}

// Start schedules the fixer. Runs never overlap: a run that is still going
// when the next one is due pushes it back.
func (f *AutoFixer) Start() error {
	if f.interval <= 0 {
		return errors.New("modules: auto-fix interval must be positive")
	}
	s, err := gocron.NewScheduler()
	if err != nil {
		return errors.WithStack(err)
	}
	_, err = s.NewJob(
		gocron.DurationJob(f.interval),
		gocron.NewTask(func() {
			f.FixOnce(f.registry.ctx)
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return errors.WithStack(err)
	}
	f.scheduler = s
	s.Start()
	log.WithField("interval", f.interval).WithField("max_attempts", f.maxAttempts).Info("started module auto-fixer")
	return nil
}

// Stop unschedules the fixer and waits for a running pass to end.
func (f *AutoFixer) Stop() error {
	if f.scheduler == nil {
		return nil
	}
	return errors.WithStack(f.scheduler.Shutdown())
}

// FixOnce makes one pass over the invalid modules, fixing every one that has
// attempts left. Fixes don't cascade; each fixed module that turns valid is
// activated on its own. It returns the number of fixes attempted.
func (f *AutoFixer) FixOnce(ctx context.Context) int {
	var targets []*InvalidModule
	seen := make(map[string]bool)

	f.mu.Lock()
	for _, m := range f.registry.Modules() {
		inv, ok := m.(*InvalidModule)
		if !ok {
			continue
		}
		seen[m.Name()] = true
		if f.attempts[m.Name()] >= f.maxAttempts {
			continue
		}
		f.attempts[m.Name()]++
		targets = append(targets, inv)
	}
	for name := range f.attempts {
		if !seen[name] {
			delete(f.attempts, name)
		}
	}
	f.mu.Unlock()

	for _, m := range targets {
		if ctx.Err() != nil {
			break
		}
		if _, err := m.Fix(ctx, WithCascade(false)); err != nil {
			log.WithField("module", m.Name()).WithError(err).Warn("failed to fix module")
		}
	}
	return len(targets)
}

// Attempts returns the number of consecutive fix attempts made on a module.
func (f *AutoFixer) Attempts(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.attempts[name]
}
