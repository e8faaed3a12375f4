package worker

import (
	"context"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain closes the pool and collects every remaining result.
func drain(pool *Pool) []*JobResult {
	pool.Close()
	var out []*JobResult
	for r := range pool.Results() {
		out = append(out, r)
	}
	return out
}

func TestPool_DefaultWorkers(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 0)
	defer drain(pool)

	assert.Positive(t, pool.workers)
}

func TestPool_SubmitAndReceive(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 2)
	defer drain(pool)

	rec := records(30)[0]
	require.True(t, pool.Submit(Job{ID: "test-1", Record: rec}))

	select {
	case result := <-pool.Results():
		assert.Equal(t, "test-1", result.ID)
		require.NotNil(t, result.Result)
		assert.True(t, result.Result.Valid)
		assert.Equal(t, "test-1", result.Result.JobID)
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for result")
	}
}

func TestPool_AssignsJobID(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 1)
	require.True(t, pool.Submit(Job{Record: records(1)[0]}))

	results := drain(pool)
	require.Len(t, results, 1)
	assert.NotEmpty(t, results[0].ID)
}

func TestPool_CloseDeliversQueuedJobs(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 3)

	// Fits in the queue, so every Submit returns without a reader.
	recs := records(10, 200, 30, 40, 500)
	for i, r := range recs {
		require.True(t, pool.Submit(Job{Index: i, Record: r}))
	}

	results := drain(pool)
	require.Len(t, results, len(recs))

	invalid := 0
	indices := make([]int, 0, len(results))
	for _, r := range results {
		indices = append(indices, r.Index)
		if !r.Result.Valid {
			invalid++
		}
		r.Result.Release()
	}
	sort.Ints(indices)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, indices)
	assert.Equal(t, 2, invalid)
}

func TestPool_SubmitToClosedPool(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 2)
	drain(pool)

	assert.False(t, pool.Submit(Job{ID: "after-close"}))
}

func TestPool_DoubleClose(t *testing.T) {
	pool := NewPool(context.Background(), ValidateFunc(fakeValidate), 2)

	pool.Close()
	assert.NotPanics(t, pool.Close)
	drain(pool)
}

func TestPool_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, ValidateFunc(fakeValidate), 2)
	cancel()

	// Either refused or dropped by the worker.
	pool.Submit(Job{ID: "late"})
	assert.Empty(t, drain(pool))
}

func TestPool_NilValidator(t *testing.T) {
	pool := NewPool(context.Background(), nil, 1)
	require.True(t, pool.Submit(Job{ID: "nil-validator"}))

	results := drain(pool)
	require.Len(t, results, 1)
	assert.ErrorIs(t, results[0].Error, ErrNoValidator)
	assert.Nil(t, results[0].Result)
}
