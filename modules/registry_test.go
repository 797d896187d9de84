package modules

import (
	"context"
	"testing"
	"time"

	"emperror.dev/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddModule(t *testing.T) {
	h := newHarness(t)

	m := h.add(t, "counter", "ok")
	assert.Equal(t, StateValid, m.State())
	assert.Equal(t, []string{"counter"}, h.store.names())

	stored, err := h.store.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, m.Data(), stored)

	require.Eventually(t, func() bool {
		return m.(*ValidModule).Running()
	}, time.Second, 10*time.Millisecond)
}

func TestAddModuleExists(t *testing.T) {
	h := newHarness(t)
	h.add(t, "counter", "ok")
	h.generator.reset()

	_, err := h.registry.AddModule(context.Background(), definition("counter"))
	require.Error(t, err)
	assert.True(t, IsExists(err))
	assert.Empty(t, h.generator.generated("generate"), "nothing should be generated for a taken name")
}

func TestAddModuleContextExcludesItself(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", "ok")
	h.add(t, "b", "ok")

	assert.Equal(t, []string{"a"}, h.generator.lastCall().others)
}

func TestAddModuleRecreatesBrokenModulesOnly(t *testing.T) {
	h := newHarness(t)
	h.add(t, "valid", "ok")
	h.add(t, "invalid", "build-error")
	h.generator.pending["pending"] = true
	h.add(t, "pending", "")
	h.generator.reset()

	_, err := h.registry.AddModule(context.Background(), definition("new"))
	require.NoError(t, err)
	h.registry.Wait()

	assert.Equal(t, []string{"invalid", "new", "pending"}, h.generator.generated("generate"))
}

func TestAddModulePersistFailureKeepsNothing(t *testing.T) {
	h := newHarness(t)
	h.add(t, "counter", "ok")
	h.store.data["other"] = NewModuleData(definition("other"), PendingResponse{})

	_, err := h.registry.AddModule(context.Background(), definition("other"), WithCascade(false))
	require.Error(t, err)
	assert.True(t, IsExists(err))
	assert.False(t, h.registry.ModuleExists("other"))
}

func TestUpdateModuleRecreatesEveryOtherModule(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", "ok")
	h.add(t, "b", "build-error")
	h.add(t, "c", "ok")
	h.generator.reset()

	m := h.get(t, "a")
	_, err := h.registry.UpdateModule("a", m.Data())
	require.NoError(t, err)
	h.registry.Wait()

	assert.Equal(t, []string{"b", "c"}, h.generator.generated("generate"))
}

func TestUpdateModuleNotFound(t *testing.T) {
	h := newHarness(t)

	_, err := h.registry.UpdateModule("missing", NewModuleData(definition("missing"), PendingResponse{}))
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestUpdateModuleKeepsSurface(t *testing.T) {
	h := newHarness(t)
	old := h.add(t, "counter", "expose")
	assert.Equal(t, []string{"count"}, old.Surface().Values())

	h.generator.setCode("counter", "ok")
	next, err := old.Recreate(context.Background())
	require.NoError(t, err)

	assert.Same(t, old.Surface(), next.Surface())
	assert.Empty(t, next.Surface().Values(), "values of the old implementation must not survive")
	assert.Empty(t, next.Surface().Output())
}

func TestUpdateModulePersistFailure(t *testing.T) {
	h := newHarness(t)
	old := h.add(t, "counter", "ok")
	h.store.updateErr = errors.New("disk full")

	_, err := h.registry.UpdateModule("counter", NewModuleData(definition("counter"), PendingResponse{}))
	require.Error(t, err)
	assert.Same(t, old, h.get(t, "counter"))
}

func TestUpdateModulePersistFailureKeepsSurface(t *testing.T) {
	h := newHarness(t)
	old := h.add(t, "counter", "expose").(*ValidModule)
	require.Eventually(t, old.Running, time.Second, 10*time.Millisecond)
	h.store.updateErr = errors.New("disk full")

	h.generator.setCode("counter", "ok")
	_, err := old.Recreate(context.Background())
	require.Error(t, err)

	current := h.get(t, "counter")
	assert.Same(t, old, current)
	assert.Equal(t, 42, current.Surface().Get("count"))
	assert.Equal(t, []string{"constructed"}, current.Surface().Output())
	assert.True(t, old.Running(), "a failed update must not stop the module")
}

func TestUpdateModuleBuildsOutsideTheLock(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "counter", "ok")
	h.evaluator.entered = make(chan struct{})
	h.evaluator.gate = make(chan struct{})
	h.generator.setCode("counter", "build-wait")

	done := make(chan error, 1)
	go func() {
		_, err := m.Recreate(context.Background())
		done <- err
	}()
	<-h.evaluator.entered

	read := make(chan int, 1)
	go func() {
		read <- len(h.registry.Modules())
	}()
	select {
	case n := <-read:
		assert.Equal(t, 1, n)
	case <-time.After(time.Second):
		t.Fatal("reading the registry blocked while code was being built")
	}

	close(h.evaluator.gate)
	require.NoError(t, <-done)
	assert.NotSame(t, m, h.get(t, "counter"))
	assert.Equal(t, StateValid, h.get(t, "counter").State())
}

func TestRename(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok")
	h.add(t, "b", "ok")

	_, err := m.Rename("b")
	require.Error(t, err)
	assert.True(t, IsExists(err))
	assert.Equal(t, []string{"a", "b"}, h.store.names())

	renamed, err := m.Rename("c")
	require.NoError(t, err)
	h.registry.Wait()

	assert.Equal(t, "c", renamed.Name())
	assert.Equal(t, "c", renamed.Definition().Interface.Name)
	assert.False(t, h.registry.ModuleExists("a"))
	assert.True(t, h.registry.ModuleExists("c"))
	assert.Equal(t, []string{"b", "c"}, h.store.names())
}

func TestChangeExcludesOldAndNewName(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok")
	h.add(t, "b", "ok")
	h.add(t, "z", "ok")
	h.generator.reset()

	next, err := m.Change(context.Background(), definition("z2"))
	require.NoError(t, err)
	h.registry.Wait()

	assert.Equal(t, "z2", next.Name())
	first := h.generator.calls[0]
	assert.Equal(t, "z2", first.name)
	assert.Equal(t, []string{"b", "z"}, first.others)
}

func TestChangeOntoTakenName(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok")
	h.add(t, "b", "ok")

	_, err := m.Change(context.Background(), definition("b"))
	require.Error(t, err)
	assert.True(t, IsExists(err))
	assert.Same(t, m, h.get(t, "a"))
}

func TestDeleteModule(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok")
	h.add(t, "b", "ok")
	h.add(t, "c", "ok")
	h.generator.reset()

	surface := m.Surface()
	require.NoError(t, m.Delete())
	h.registry.Wait()

	assert.False(t, h.registry.ModuleExists("a"))
	assert.Equal(t, []string{"b", "c"}, h.store.names())
	assert.True(t, surface.Released())
	assert.Equal(t, []string{"b", "c"}, h.generator.generated("generate"))

	err := h.registry.DeleteModule(m)
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestGenerationFailure(t *testing.T) {
	h := newHarness(t)
	h.generator.err = errors.New("connection refused")

	m, err := h.registry.AddModule(context.Background(), definition("counter"), WithCascade(false))
	require.NoError(t, err)

	inv, ok := m.(*InvalidModule)
	require.True(t, ok)
	require.Len(t, inv.Errors(), 2)
	assert.Equal(t, generationFailedMarker, inv.Errors()[0])
	assert.Contains(t, inv.Errors()[1], "connection refused")
}

func TestGenerationTimeout(t *testing.T) {
	h := newHarness(t, WithGenerationTimeout(20*time.Millisecond))
	h.generator.block = true

	m, err := h.registry.AddModule(context.Background(), definition("counter"), WithCascade(false))
	require.NoError(t, err)

	inv, ok := m.(*InvalidModule)
	require.True(t, ok)
	assert.Equal(t, generationFailedMarker, inv.Errors()[0])
	assert.Contains(t, inv.Errors()[1], "generation timed out")
}

func TestInvalidModuleFix(t *testing.T) {
	h := newHarness(t)
	h.generator.garbage["counter"] = true
	m := h.add(t, "counter", "")
	inv, ok := m.(*InvalidModule)
	require.True(t, ok)

	h.generator.garbage["counter"] = false
	fixed, err := inv.Fix(context.Background(), WithCascade(false))
	require.NoError(t, err)
	assert.Equal(t, StateValid, fixed.State())

	call := h.generator.lastCall()
	assert.Equal(t, "fix", call.kind)
	assert.Equal(t, "I can't answer in JSON today", call.prior)
	assert.Equal(t, inv.Errors(), call.errs)
}

func TestPendingModuleFix(t *testing.T) {
	h := newHarness(t)
	h.generator.pending["counter"] = true
	m := h.add(t, "counter", "")
	p, ok := m.(*PendingModule)
	require.True(t, ok)
	assert.Equal(t, []string{"Please say what the module should count."}, p.Comments())

	fixed, err := p.Fix(context.Background(), definition("tally"))
	require.NoError(t, err)
	h.registry.Wait()
	assert.Equal(t, StateValid, fixed.State())
	assert.Equal(t, "tally", fixed.Name())
}

func TestAdjust(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "counter", "ok")

	next, err := m.(*ValidModule).Adjust(context.Background(), "count twice as fast")
	require.NoError(t, err)
	h.registry.Wait()

	assert.Equal(t, "count twice as fast", next.Definition().Description)
	assert.Equal(t, Serialize(m.Data().Response), h.generator.calls[1].prior)
}

func TestLoad(t *testing.T) {
	h := newHarness(t)
	h.store.data["a"] = NewModuleData(definition("a"), ValidResponse{Status: StatusSuccess, Code: "ok"})
	h.store.data["b"] = NewModuleData(definition("b"), ValidResponse{Status: StatusWarning, Code: "build-error"})
	h.store.data["c"] = NewModuleData(definition("c"), PendingResponse{Comments: []string{"why"}})

	require.NoError(t, h.registry.Load(context.Background()))

	all := h.registry.Modules()
	require.Len(t, all, 3)
	assert.Equal(t, StateValid, all[0].State())
	assert.Equal(t, StateInvalid, all[1].State())
	assert.Equal(t, StatePending, all[2].State())
	assert.Equal(t, []string{"syntax error"}, all[1].(*InvalidModule).Errors())
	assert.Equal(t, 3, h.registry.surfaces.Len())
}

func TestLoadMalformedLeavesRegistryEmpty(t *testing.T) {
	h := newHarness(t)
	h.add(t, "a", "ok")
	h.store.getAllErr = errors.WithStack(malformed("invalid module definition"))

	err := h.registry.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedRecord))
	assert.Empty(t, h.registry.Modules())
	assert.Zero(t, h.registry.surfaces.Len())
}

func TestOtherModules(t *testing.T) {
	h := newHarness(t)
	h.add(t, "b", "ok")
	h.add(t, "a", "build-error")
	h.add(t, "c", "ok")

	var names []string
	for _, m := range h.registry.OtherModules("b") {
		names = append(names, m.Name())
	}
	assert.Equal(t, []string{"a", "c"}, names)

	ifaces := h.registry.OtherModuleInterfaces("c")
	require.Len(t, ifaces, 2)
	assert.Equal(t, "a", ifaces[0].Name)
	assert.Equal(t, []string{"value"}, ifaces[0].Values)

	assert.Len(t, h.registry.ValidModules(), 2)
}

func TestCloseStopsModules(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok").(*ValidModule)
	require.Eventually(t, m.Running, time.Second, 10*time.Millisecond)

	h.registry.Close()
	require.Eventually(t, func() bool { return !m.Running() }, time.Second, 10*time.Millisecond)
	assert.Equal(t, StateValid, h.get(t, "a").State(), "stopping must not demote the module")

	stored, err := h.store.Get("a")
	require.NoError(t, err)
	assert.Equal(t, StateValid, stored.State())
}

func TestCloseDuringCascadeKeepsModulesValid(t *testing.T) {
	h := newHarness(t)
	a := h.add(t, "a", "ok").(*ValidModule)
	b := h.add(t, "b", "ok").(*ValidModule)
	require.Eventually(t, func() bool { return a.Running() && b.Running() }, time.Second, 10*time.Millisecond)

	h.generator.mu.Lock()
	h.generator.block = true
	h.generator.mu.Unlock()
	h.generator.reset()

	_, err := a.Rename("c")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return len(h.generator.generated("generate")) == 1
	}, time.Second, 10*time.Millisecond, "the cascade should be regenerating b")

	h.registry.Close()

	for _, name := range []string{"b", "c"} {
		stored, err := h.store.Get(name)
		require.NoError(t, err)
		assert.Equal(t, StateValid, stored.State(), "module %s", name)
		assert.Equal(t, StateValid, h.get(t, name).State(), "module %s", name)
	}
	require.Eventually(t, func() bool { return !b.Running() }, time.Second, 10*time.Millisecond)
}

func TestUpdateAfterCloseIsRefused(t *testing.T) {
	h := newHarness(t)
	m := h.add(t, "a", "ok").(*ValidModule)
	h.registry.Close()

	m.demote(runErrorMarker, errors.New("late failure"))
	assert.Same(t, m, h.get(t, "a"))

	_, err := h.registry.UpdateModule("a", m.Data().Renamed("b"))
	require.Error(t, err)
	assert.Equal(t, []string{"a"}, h.store.names())
}
