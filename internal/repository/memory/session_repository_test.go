package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"inspection-be/pkg/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepository_MergeCreatesAndMerges(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	has, err := repo.Has(ctx, "6591234567")
	require.NoError(t, err)
	assert.False(t, has)

	s, err := repo.Merge(ctx, "6591234567", store.SessionUpdate{
		InspectorID: store.Ptr("insp-1"),
		Step:        store.Ptr(store.StepNeedLocation),
	})
	require.NoError(t, err)
	assert.Equal(t, "insp-1", s.InspectorID)

	_, err = repo.Merge(ctx, "6591234567", store.SessionUpdate{WorkOrderID: store.Ptr("wo-1")})
	require.NoError(t, err)

	got, ok, err := repo.Get(ctx, "6591234567")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "insp-1", got.InspectorID, "untouched fields survive")
	assert.Equal(t, "wo-1", got.WorkOrderID)
	assert.Equal(t, store.StepNeedLocation, got.Step)
	assert.False(t, got.UpdatedAt.IsZero())
}

func TestSessionRepository_ClearUnsetsFields(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	_, err := repo.Merge(ctx, "k", store.SessionUpdate{
		CurrentLocation: store.Ptr("Kitchen"),
		CurrentTaskID:   store.Ptr("t-1"),
	})
	require.NoError(t, err)

	s, err := repo.Merge(ctx, "k", store.SessionUpdate{
		Clear: []string{store.FieldCurrentTaskID},
	})
	require.NoError(t, err)
	assert.Empty(t, s.CurrentTaskID)
	assert.Equal(t, "Kitchen", s.CurrentLocation)
}

func TestSessionRepository_ReturnedSessionsAreCopies(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	s, err := repo.Merge(ctx, "k", store.SessionUpdate{Metadata: map[string]string{"lang": "en"}})
	require.NoError(t, err)
	s.Metadata["lang"] = "id"
	s.InspectorID = "mutated"

	got, _, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "en", got.Metadata["lang"])
	assert.Empty(t, got.InspectorID)
}

func TestSessionRepository_ConcurrentMergesKeepEveryField(t *testing.T) {
	repo := NewSessionRepository(0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Merge(ctx, "k", store.SessionUpdate{
				Metadata: map[string]string{string(rune('a' + i)): "x"},
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	got, _, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, got.Metadata, 20)
}

func TestSessionRepository_DeleteAndTTL(t *testing.T) {
	repo := NewSessionRepository(20 * time.Millisecond)
	ctx := context.Background()

	_, err := repo.Merge(ctx, "k", store.SessionUpdate{InspectorID: store.Ptr("i")})
	require.NoError(t, err)
	require.NoError(t, repo.Delete(ctx, "k"))

	_, ok, err := repo.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = repo.Merge(ctx, "k2", store.SessionUpdate{InspectorID: store.Ptr("i")})
	require.NoError(t, err)
	time.Sleep(40 * time.Millisecond)
	has, err := repo.Has(ctx, "k2")
	require.NoError(t, err)
	assert.False(t, has)
}

func TestDedupRepository_MarkProcessed(t *testing.T) {
	repo := NewDedupRepository(time.Hour)
	ctx := context.Background()

	first, err := repo.MarkProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := repo.MarkProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.False(t, again)

	require.NoError(t, repo.Forget(ctx, "wamid.1"))
	retried, err := repo.MarkProcessed(ctx, "wamid.1")
	require.NoError(t, err)
	assert.True(t, retried)
}
