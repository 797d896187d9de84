package modules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/priyxstudio/pub/internal/database"
	"github.com/priyxstudio/pub/internal/models"
)

func newDatabaseStore(t *testing.T) *DatabaseStore {
	t.Helper()
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		if sql, err := db.DB(); err == nil {
			_ = sql.Close()
		}
	})
	return NewDatabaseStore(db)
}

func TestDatabaseStoreAddGet(t *testing.T) {
	s := newDatabaseStore(t)
	data := NewModuleData(definition("counter"), ValidResponse{Status: StatusSuccess, Comments: []string{}, Code: "x"})

	require.NoError(t, s.Add(data))
	got, err := s.Get("counter")
	require.NoError(t, err)
	assert.Equal(t, data, got)

	ok, err := s.Exists("counter")
	require.NoError(t, err)
	assert.True(t, ok)

	err = s.Add(data)
	require.Error(t, err)
	assert.True(t, IsExists(err))

	_, err = s.Get("missing")
	assert.True(t, IsNotFound(err))
}

func TestDatabaseStoreGetAllOrdered(t *testing.T) {
	s := newDatabaseStore(t)
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, s.Add(NewModuleData(definition(name), PendingResponse{})))
	}

	all, err := s.GetAll()
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "a", all[0].Name())
	assert.Equal(t, "b", all[1].Name())
	assert.Equal(t, "c", all[2].Name())
}

func TestDatabaseStoreUpdateMovesRecord(t *testing.T) {
	s := newDatabaseStore(t)
	require.NoError(t, s.Add(NewModuleData(definition("a"), PendingResponse{})))
	require.NoError(t, s.Add(NewModuleData(definition("b"), PendingResponse{})))

	err := s.Update("a", NewModuleData(definition("b"), PendingResponse{}))
	require.Error(t, err)
	assert.True(t, IsExists(err))

	moved := NewModuleData(definition("c"), InvalidResponse{Response: "r", Errors: []string{"e"}})
	require.NoError(t, s.Update("a", moved))

	ok, err := s.Exists("a")
	require.NoError(t, err)
	assert.False(t, ok)
	got, err := s.Get("c")
	require.NoError(t, err)
	assert.Equal(t, moved, got)

	err = s.Update("missing", moved)
	assert.True(t, IsNotFound(err))
}

func TestDatabaseStoreDelete(t *testing.T) {
	s := newDatabaseStore(t)
	require.NoError(t, s.Add(NewModuleData(definition("a"), PendingResponse{})))
	require.NoError(t, s.Add(NewModuleData(definition("b"), PendingResponse{})))

	require.NoError(t, s.Delete("a"))
	assert.True(t, IsNotFound(s.Delete("a")))

	require.NoError(t, s.DeleteAll())
	all, err := s.GetAll()
	require.NoError(t, err)
	assert.Empty(t, all)

	// Deleted names can be used again.
	require.NoError(t, s.Add(NewModuleData(definition("a"), PendingResponse{})))
}

func TestDatabaseStoreMalformedRecord(t *testing.T) {
	s := newDatabaseStore(t)
	require.NoError(t, s.Add(NewModuleData(definition("a"), PendingResponse{})))
	require.NoError(t, s.db.Create(&models.Module{Name: "broken", Data: `{"moduleDefinition":{}}`}).Error)

	_, err := s.GetAll()
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestDatabaseStoreNameMismatch(t *testing.T) {
	s := newDatabaseStore(t)
	b, err := NewModuleData(definition("other"), PendingResponse{}).Encode()
	require.NoError(t, err)
	require.NoError(t, s.db.Create(&models.Module{Name: "a", Data: string(b)}).Error)

	_, err = s.Get("a")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMalformedRecord)
}

func TestRegistryWithDatabaseStore(t *testing.T) {
	s := newDatabaseStore(t)
	r := NewRegistry(s, newFakeGenerator(), newFakeEvaluator())
	t.Cleanup(r.Close)

	_, err := r.AddModule(t.Context(), definition("a"), WithCascade(false))
	require.NoError(t, err)
	_, err = r.AddModule(t.Context(), definition("b"), WithCascade(false))
	require.NoError(t, err)

	require.NoError(t, r.Load(t.Context()))
	require.Len(t, r.Modules(), 2)
	assert.Equal(t, StateValid, r.Modules()[0].State())
}
