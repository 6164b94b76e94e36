package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/streamtrack/internal/core/domain"
)

var (
	key1 = domain.NewStreamKey("", "test-stream-1")
	key2 = domain.NewStreamKey("test-namespace-1", "test-stream-2")
	key3 = domain.NewStreamKey("", "test-stream-3")
	key4 = domain.NewStreamKey("test-namespace-2", "test-stream-4")
)

func idPtr(v int64) *int64 { return &v }

func valueWith(runState domain.RunState) domain.StreamStatusValue {
	return domain.StreamStatusValue{RunState: runState, LatestStateID: idPtr(0), StreamEmpty: true}
}

func runningValue() domain.StreamStatusValue {
	return valueWith(domain.RunStateRunning)
}

func completeValue() domain.StreamStatusValue {
	return domain.StreamStatusValue{RunState: domain.RunStateComplete, LatestStateID: idPtr(124), SourceComplete: true}
}

func incompleteValue() domain.StreamStatusValue {
	return domain.StreamStatusValue{RunState: domain.RunStateIncomplete, LatestStateID: idPtr(246)}
}

func stateIDValue(id int64) domain.StreamStatusValue {
	return domain.StreamStatusValue{RunState: domain.RunStateRunning, LatestStateID: idPtr(id)}
}

func TestNewStreamStatusStore(t *testing.T) {
	store := NewStreamStatusStore()
	require.NotNil(t, store)
	assert.Empty(t, store.Entries())

	_, ok := store.LatestGlobalStateID()
	assert.False(t, ok)
}

func TestStreamStatusStore_GetSet(t *testing.T) {
	store := NewStreamStatusStore()

	_, ok := store.Get(key1)
	assert.False(t, ok)

	for _, v := range []domain.StreamStatusValue{runningValue(), completeValue(), incompleteValue()} {
		store.Set(key1, v)
		got, ok := store.Get(key1)
		require.True(t, ok)
		assert.Equal(t, v, got)
	}
}

func TestStreamStatusStore_GetReturnsCopy(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, stateIDValue(10))

	got, _ := store.Get(key1)
	*got.LatestStateID = 99

	again, _ := store.Get(key1)
	assert.Equal(t, int64(10), *again.LatestStateID)
}

func TestStreamStatusStore_EntriesAreIsolatedPerStore(t *testing.T) {
	store1 := NewStreamStatusStore()
	store2 := NewStreamStatusStore()

	store1.Set(key1, runningValue())
	store1.Set(key2, runningValue())
	store1.Set(key3, runningValue())
	store1.Set(key4, runningValue())
	store2.Set(key2, completeValue())
	store2.Set(key4, completeValue())

	entries1 := store1.Entries()
	entries2 := store2.Entries()

	require.Len(t, entries1, 4)
	require.Len(t, entries2, 2)
	assert.Equal(t, []domain.StreamStatusEntry{
		{Key: key2, Value: completeValue()},
		{Key: key4, Value: completeValue()},
	}, entries2)
	for _, e := range entries1 {
		assert.Equal(t, runningValue(), e.Value)
	}
}

func TestStreamStatusStore_SetRunState_NoValue(t *testing.T) {
	store := NewStreamStatusStore()

	result, changed := store.SetRunState(key1, domain.RunStateRunning)

	assert.True(t, changed)
	assert.Equal(t, domain.RunStateRunning, result.RunState)
	assert.True(t, result.StreamEmpty, "first access creates default value")
	got, _ := store.Get(key1)
	assert.Equal(t, domain.RunStateRunning, got.RunState)
}

func TestStreamStatusStore_SetRunState_NoRunState(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, domain.StreamStatusValue{LatestStateID: idPtr(0)})

	result, changed := store.SetRunState(key1, domain.RunStateRunning)

	assert.True(t, changed)
	assert.Equal(t, domain.RunStateRunning, result.RunState)
}

func TestStreamStatusStore_SetRunState_ValidTransitions(t *testing.T) {
	tests := []struct {
		current  domain.RunState
		incoming domain.RunState
	}{
		{domain.RunStateUnset, domain.RunStateRunning},
		{domain.RunStateUnset, domain.RunStateRateLimited},
		{domain.RunStateUnset, domain.RunStateComplete},
		{domain.RunStateUnset, domain.RunStateIncomplete},
		{domain.RunStateRateLimited, domain.RunStateRunning},
		{domain.RunStateRateLimited, domain.RunStateComplete},
		{domain.RunStateRateLimited, domain.RunStateIncomplete},
		{domain.RunStateRunning, domain.RunStateRateLimited},
		{domain.RunStateRunning, domain.RunStateComplete},
		{domain.RunStateRunning, domain.RunStateIncomplete},
	}

	for _, tt := range tests {
		t.Run(tt.current.String()+"->"+tt.incoming.String(), func(t *testing.T) {
			store := NewStreamStatusStore()
			store.Set(key1, valueWith(tt.current))

			result, changed := store.SetRunState(key1, tt.incoming)

			assert.True(t, changed)
			assert.Equal(t, tt.incoming, result.RunState)
			got, _ := store.Get(key1)
			assert.Equal(t, tt.incoming, got.RunState)
		})
	}
}

func TestStreamStatusStore_SetRunState_IgnoresInvalidTransitions(t *testing.T) {
	tests := []struct {
		current  domain.RunState
		incoming domain.RunState
	}{
		{domain.RunStateComplete, domain.RunStateRunning},
		{domain.RunStateIncomplete, domain.RunStateRunning},
		{domain.RunStateComplete, domain.RunStateRateLimited},
		{domain.RunStateIncomplete, domain.RunStateRateLimited},
		{domain.RunStateComplete, domain.RunStateIncomplete},
		{domain.RunStateRunning, domain.RunStateRunning},
		{domain.RunStateRateLimited, domain.RunStateRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.current.String()+"->"+tt.incoming.String(), func(t *testing.T) {
			store := NewStreamStatusStore()
			store.Set(key1, valueWith(tt.current))

			result, changed := store.SetRunState(key1, tt.incoming)

			assert.False(t, changed)
			assert.Equal(t, tt.current, result.RunState)
			got, _ := store.Get(key1)
			assert.Equal(t, tt.current, got.RunState)
		})
	}
}

func TestStreamStatusStore_SetLatestStateID_NoValue(t *testing.T) {
	store := NewStreamStatusStore()

	result := store.SetLatestStateID(key1, 0)

	require.NotNil(t, result.LatestStateID)
	assert.Equal(t, int64(0), *result.LatestStateID)
}

func TestStreamStatusStore_SetLatestStateID_MonotonicUpdates(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, stateIDValue(0))
	store.Set(key2, stateIDValue(0))
	store.Set(key3, stateIDValue(10))
	store.Set(key4, stateIDValue(10))

	assert.Equal(t, int64(1), *store.SetLatestStateID(key1, 1).LatestStateID)
	assert.Equal(t, int64(20), *store.SetLatestStateID(key2, 20).LatestStateID)
	assert.Equal(t, int64(11), *store.SetLatestStateID(key3, 11).LatestStateID)
	assert.Equal(t, int64(124124), *store.SetLatestStateID(key4, 124124).LatestStateID)

	got, _ := store.Get(key4)
	assert.Equal(t, int64(124124), *got.LatestStateID)
}

func TestStreamStatusStore_SetLatestStateID_IgnoresNonMonotonicUpdates(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, stateIDValue(10))

	for _, id := range []int64{0, 9, 8, 10} {
		result := store.SetLatestStateID(key1, id)
		assert.Equal(t, int64(10), *result.LatestStateID, "id %d", id)
	}

	got, _ := store.Get(key1)
	assert.Equal(t, int64(10), *got.LatestStateID)
}

func TestStreamStatusStore_SetLatestGlobalStateID_Monotonic(t *testing.T) {
	store := NewStreamStatusStore()

	steps := []struct {
		in   int64
		want int64
	}{
		{0, 0},
		{1, 1},
		{20, 20},
		{11, 20},
		{124124, 124124},
		{124123, 124124},
		{0, 124124},
	}

	for _, step := range steps {
		assert.Equal(t, step.want, store.SetLatestGlobalStateID(step.in))
		got, ok := store.LatestGlobalStateID()
		require.True(t, ok)
		assert.Equal(t, step.want, got)
	}
}

func TestStreamStatusStore_SetMetadata(t *testing.T) {
	store := NewStreamStatusStore()
	md1 := &domain.RateLimitedMetadata{QuotaReset: idPtr(123)}
	md2 := &domain.RateLimitedMetadata{QuotaReset: idPtr(456)}

	result := store.SetMetadata(key1, md1)
	assert.Equal(t, md1, result.Metadata)

	result = store.SetMetadata(key1, md2)
	assert.Equal(t, md2, result.Metadata)

	result = store.SetMetadata(key1, nil)
	assert.Nil(t, result.Metadata)
}

func TestStreamStatusStore_MarkSourceComplete_IdempotentAndIsolated(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, runningValue())
	store.Set(key2, runningValue())

	assert.True(t, store.MarkSourceComplete(key1).SourceComplete)
	assert.True(t, store.MarkSourceComplete(key1).SourceComplete)

	v2, _ := store.Get(key2)
	assert.False(t, v2.SourceComplete)

	// no value yet
	assert.True(t, store.MarkSourceComplete(key3).SourceComplete)
}

func TestStreamStatusStore_MarkStreamNotEmpty_IdempotentAndIsolated(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, runningValue())
	store.Set(key2, runningValue())

	assert.False(t, store.MarkStreamNotEmpty(key1).StreamEmpty)
	assert.False(t, store.MarkStreamNotEmpty(key1).StreamEmpty)

	v2, _ := store.Get(key2)
	assert.True(t, v2.StreamEmpty)

	assert.False(t, store.MarkStreamNotEmpty(key3).StreamEmpty)
}

func TestStreamStatusStore_IsStreamComplete_NoValue(t *testing.T) {
	store := NewStreamStatusStore()
	assert.False(t, store.IsStreamComplete(key1, 0))

	_, ok := store.Get(key1)
	assert.False(t, ok, "query must not create a value")
}

func TestStreamStatusStore_IsStreamComplete_MatchesStateIDs(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, stateIDValue(10))

	assert.False(t, store.IsStreamComplete(key1, 8))
	assert.False(t, store.IsStreamComplete(key1, 11))
	assert.False(t, store.IsStreamComplete(key1, 10))

	store.MarkSourceComplete(key1)

	assert.False(t, store.IsStreamComplete(key1, 8))
	assert.False(t, store.IsStreamComplete(key1, 11))
	assert.True(t, store.IsStreamComplete(key1, 10))
}

func TestStreamStatusStore_IsStreamComplete_NoStateID(t *testing.T) {
	store := NewStreamStatusStore()
	store.MarkSourceComplete(key1)

	assert.False(t, store.IsStreamComplete(key1, 0))
}

func TestStreamStatusStore_IsGlobalComplete_ChecksAllStreamsSourceComplete(t *testing.T) {
	store := NewStreamStatusStore()
	store.SetLatestGlobalStateID(1)

	store.Set(key1, completeValue())
	store.Set(key2, completeValue())
	store.Set(key3, runningValue())
	assert.False(t, store.IsGlobalComplete(1))

	store.MarkSourceComplete(key3)
	store.Set(key4, runningValue())
	assert.False(t, store.IsGlobalComplete(1))

	store.MarkSourceComplete(key4)
	assert.True(t, store.IsGlobalComplete(1))
}

func TestStreamStatusStore_IsGlobalComplete_MatchesLatestGlobalStateID(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, completeValue())
	store.Set(key2, completeValue())
	store.Set(key3, completeValue())

	for _, id := range []int64{121, 122, 123, 124} {
		store.SetLatestGlobalStateID(id)
	}

	assert.False(t, store.IsGlobalComplete(121))
	assert.False(t, store.IsGlobalComplete(122))
	assert.False(t, store.IsGlobalComplete(123))
	assert.True(t, store.IsGlobalComplete(124))
}

func TestStreamStatusStore_IsGlobalComplete_NoGlobalStateID(t *testing.T) {
	store := NewStreamStatusStore()
	store.Set(key1, completeValue())

	assert.False(t, store.IsGlobalComplete(0))
}

// A completes and checkpoint 5 arrives before B completes.
func TestStreamStatusStore_IsGlobalComplete_WaitsForLateStream(t *testing.T) {
	store := NewStreamStatusStore()
	a := domain.NewStreamKey("", "a")
	b := domain.NewStreamKey("", "b")

	store.SetRunState(a, domain.RunStateRunning)
	store.SetRunState(b, domain.RunStateRunning)
	store.MarkSourceComplete(a)
	store.SetLatestGlobalStateID(5)
	assert.False(t, store.IsGlobalComplete(5))

	store.MarkSourceComplete(b)
	store.SetLatestGlobalStateID(6)
	assert.False(t, store.IsGlobalComplete(5))
	assert.True(t, store.IsGlobalComplete(6))
}

func TestStreamStatusStore_IsRateLimited(t *testing.T) {
	store := NewStreamStatusStore()
	assert.False(t, store.IsRateLimited(key1))

	store.SetRunState(key1, domain.RunStateRateLimited)
	assert.True(t, store.IsRateLimited(key1))

	store.SetRunState(key1, domain.RunStateRunning)
	assert.False(t, store.IsRateLimited(key1))
}

func TestStreamStatusStore_EntriesSorted(t *testing.T) {
	store := NewStreamStatusStore()
	store.MarkStreamNotEmpty(key4)
	store.MarkStreamNotEmpty(key1)
	store.MarkStreamNotEmpty(key2)
	store.MarkStreamNotEmpty(key3)

	var keys []domain.StreamKey
	for _, e := range store.Entries() {
		keys = append(keys, e.Key)
	}

	assert.Equal(t, []domain.StreamKey{key1, key3, key2, key4}, keys)
}

func TestStreamStatusStore_ConcurrentCheckpointsAreMonotonic(t *testing.T) {
	store := NewStreamStatusStore()

	var wg sync.WaitGroup
	for worker := 0; worker < 8; worker++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := int64(0); i < 500; i++ {
				store.SetLatestStateID(key1, i*8+int64(worker))
				store.MarkStreamNotEmpty(key1)
				store.SetLatestGlobalStateID(i)
			}
		}(worker)
	}
	wg.Wait()

	got, ok := store.Get(key1)
	require.True(t, ok)
	assert.Equal(t, int64(499*8+7), *got.LatestStateID)
	assert.False(t, got.StreamEmpty)

	global, _ := store.LatestGlobalStateID()
	assert.Equal(t, int64(499), global)
}

func TestStreamStatusStore_ConcurrentMixedUpdatesAreNotLost(t *testing.T) {
	store := NewStreamStatusStore()

	var wg sync.WaitGroup
	wg.Add(3)
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.SetLatestStateID(key1, int64(i))
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 1000; i++ {
			store.MarkStreamNotEmpty(key1)
		}
	}()
	go func() {
		defer wg.Done()
		store.SetRunState(key1, domain.RunStateRunning)
		store.MarkSourceComplete(key1)
	}()
	wg.Wait()

	got, _ := store.Get(key1)
	assert.Equal(t, int64(999), *got.LatestStateID)
	assert.False(t, got.StreamEmpty)
	assert.True(t, got.SourceComplete)
	assert.Equal(t, domain.RunStateRunning, got.RunState)
}
