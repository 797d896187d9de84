package modules

import (
	"context"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitFailureDemotes(t *testing.T) {
	for _, code := range []string{"init-error", "init-panic"} {
		t.Run(code, func(t *testing.T) {
			h := newHarness(t)
			h.add(t, "counter", code)

			inv, ok := h.get(t, "counter").(*InvalidModule)
			require.True(t, ok, "expected module to be demoted")
			require.Len(t, inv.Errors(), 2)
			assert.Equal(t, initErrorMarker, inv.Errors()[0])

			stored, err := h.store.Get("counter")
			require.NoError(t, err)
			assert.Equal(t, StateInvalid, stored.State())
		})
	}
}

func TestRunFailureDemotes(t *testing.T) {
	h := newHarness(t)
	h.add(t, "counter", "run-error")

	require.Eventually(t, func() bool {
		m, ok := h.registry.Get("counter")
		return ok && m.State() == StateInvalid
	}, time.Second, 10*time.Millisecond)

	inv := h.get(t, "counter").(*InvalidModule)
	assert.Equal(t, []string{runErrorMarker, "crashed"}, inv.Errors())
	assert.Contains(t, inv.Response().Response, `"code":"run-error"`)
}

func TestRunReturningNilEndsRun(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "counter", "run-done").(*ValidModule)

	require.Eventually(t, func() bool { return !m.Running() }, time.Second, 10*time.Millisecond)
	assert.Same(t, m, h.get(t, "counter"))
}

func TestInitRunsOnce(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", "ok")
	h.add(t, "b", "ok")
	require.Equal(t, 2, h.evaluator.initCount())

	h.registry.Activate()
	h.registry.Activate()
	assert.Equal(t, 2, h.evaluator.initCount())
}

func TestRunReceivesOtherValidModules(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", "ok")
	h.add(t, "broken", "build-error")
	h.add(t, "watcher", "peers")

	require.Eventually(t, func() bool {
		return len(h.evaluator.peersOf("peers")) > 0
	}, time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"a"}, h.evaluator.peersOf("peers"))
}

func TestStaleDemotionIsIgnored(t *testing.T) {
	h := newHarness(t)
	old := h.add(t, "counter", "ok").(*ValidModule)

	h.generator.setCode("counter", "expose")
	next, err := old.Recreate(context.Background())
	require.NoError(t, err)

	old.demote(runErrorMarker, errors.New("late failure"))
	assert.Same(t, next, h.get(t, "counter"))

	stored, err := h.store.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, StateValid, stored.State())
}

func TestDemotionOfDeletedModuleIsIgnored(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "counter", "ok").(*ValidModule)
	require.NoError(t, h.registry.DeleteModule(m, WithCascade(false)))

	m.demote(runErrorMarker, errors.New("late failure"))
	assert.False(t, h.registry.ModuleExists("counter"))
	assert.Empty(t, h.store.names())
}

func TestStoppedModuleDoesNotStart(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "counter", "ok").(*ValidModule)
	require.Eventually(t, m.Running, time.Second, 10*time.Millisecond)

	_, err := m.Recreate(context.Background())
	require.NoError(t, err)
	require.Eventually(t, func() bool { return !m.Running() }, time.Second, 10*time.Millisecond)

	m.Run()
	assert.False(t, m.Running())
}

func TestGuard(t *testing.T) {
	err := guard(func() error { panic("boom") })
	require.Error(t, err)
	assert.Equal(t, "boom", err.Error())

	err = guard(func() error { panic(errors.New("wrapped")) })
	require.Error(t, err)
	assert.Equal(t, "wrapped", err.Error())

	assert.NoError(t, guard(func() error { return nil }))
}
