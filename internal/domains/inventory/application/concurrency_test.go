package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConcurrentReduceStock_NeverOverdraws(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const (
		initialStock = 20
		workers      = 75
	)
	added, err := env.svc.AddOrMergeItem(ctx, milk(initialStock))
	require.NoError(t, err)

	var success, insufficient, other atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.svc.ReduceStock(ctx, added.Item.ID, 1)
			switch {
			case err == nil:
				success.Add(1)
			case errors.Is(err, ErrInsufficientStock):
				insufficient.Add(1)
			default:
				other.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(initialStock), success.Load())
	assert.Equal(t, int64(workers-initialStock), insufficient.Load())
	assert.Zero(t, other.Load())

	final, err := env.svc.GetByID(ctx, added.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(0), final.StockLevel)
}

func TestConcurrentAddOrMerge_SingleRecordWithSummedStock(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()

	const workers = 40
	var created atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := env.svc.AddOrMergeItem(ctx, milk(2))
			if !assert.NoError(t, err) {
				return
			}
			if result.Created {
				created.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), created.Load())
	items, err := env.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, float64(2*workers), items[0].StockLevel)
}

func TestConcurrentAddAndReduce_Linearizable(t *testing.T) {
	env := newTestEnv()
	ctx := context.Background()
	added, err := env.svc.AddOrMergeItem(ctx, milk(50))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 25; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := env.svc.AddOrMergeItem(ctx, milk(1))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := env.svc.ReduceStock(ctx, added.Item.ID, 2)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	final, err := env.svc.GetByID(ctx, added.Item.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(50+25-50), final.StockLevel)
}
