package store

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID       string  `gorm:"primaryKey"`
	OwnerID  string  `gorm:"index"`
	ParentID *string
	Count    int
}

func (widget) TableName() string { return "widgets" }

func seed(t *testing.T, m *MemoryStore, rows ...widget) {
	t.Helper()
	for i := range rows {
		require.NoError(t, m.Insert(context.Background(), &rows[i]))
	}
}

func TestMemoryStoreFetchKeepsInsertionOrder(t *testing.T) {
	m := NewMemoryStore()
	seed(t, m,
		widget{ID: "c", OwnerID: "u1"},
		widget{ID: "a", OwnerID: "u2"},
		widget{ID: "b", OwnerID: "u1"},
	)

	got, err := All[widget](context.Background(), m, Filter{"owner_id": "u1"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].ID)
	assert.Equal(t, "b", got[1].ID)

	all, err := All[widget](context.Background(), m, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryStoreNilAndPointerFilters(t *testing.T) {
	m := NewMemoryStore()
	parent := "a"
	seed(t, m, widget{ID: "a"}, widget{ID: "b", ParentID: &parent})

	roots, err := All[widget](context.Background(), m, Filter{"parent_id": nil})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, "a", roots[0].ID)

	kids, err := All[widget](context.Background(), m, Filter{"parent_id": "a"})
	require.NoError(t, err)
	require.Len(t, kids, 1)
	assert.Equal(t, "b", kids[0].ID)
}

func TestMemoryStoreOneUpdateDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seed(t, m, widget{ID: "a", Count: 1})

	_, err := One[widget](ctx, m, Filter{"id": "zzz"})
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, m.Update(ctx, &widget{}, "a", Filter{"count": 5}))
	w, err := One[widget](ctx, m, Filter{"id": "a"})
	require.NoError(t, err)
	assert.Equal(t, 5, w.Count)

	assert.ErrorIs(t, m.Update(ctx, &widget{}, "missing", Filter{"count": 1}), ErrNotFound)
	assert.Error(t, m.Update(ctx, &widget{}, "a", Filter{"nope": 1}))

	require.NoError(t, m.Delete(ctx, &widget{}, "a"))
	assert.ErrorIs(t, m.Delete(ctx, &widget{}, "a"), ErrNotFound)
}

func TestMemoryStoreRejectsDuplicateKeys(t *testing.T) {
	m := NewMemoryStore()
	seed(t, m, widget{ID: "a"})
	assert.Error(t, m.Insert(context.Background(), &widget{ID: "a"}))
}

func TestMemoryStoreFaultInjection(t *testing.T) {
	m := NewMemoryStore()
	seed(t, m, widget{ID: "a"})
	boom := errors.New("boom")

	m.FailOn("widgets", boom)
	_, err := All[widget](context.Background(), m, nil)
	assert.ErrorIs(t, err, boom)
	m.FailOn("widgets", nil)

	m.Delay("widgets", time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = All[widget](ctx, m, nil)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestMemoryStoreExclusiveSerialisesSameKey(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryStore()
	seed(t, m, widget{ID: "a"})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := m.Exclusive(ctx, "widget:a", func(tx Store) error {
				w, err := One[widget](ctx, tx, Filter{"id": "a"})
				if err != nil {
					return err
				}
				return tx.Update(ctx, &widget{}, "a", Filter{"count": w.Count + 1})
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	w, err := One[widget](ctx, m, Filter{"id": "a"})
	require.NoError(t, err)
	assert.Equal(t, 50, w.Count)
	assert.Empty(t, m.locks.locks, "released locks are reclaimed")
}
