package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	invmemory "github.com/Abka012/Odin-AI/internal/domains/inventory/adapters/memory"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

// hookRepository runs afterLookup once, right after the first GetByName hit for name.
type hookRepository struct {
	*invmemory.Repository
	name        string
	once        sync.Once
	afterLookup func(found *domain.Item)
}

func (r *hookRepository) GetByName(ctx context.Context, productName string) (*domain.Item, error) {
	item, err := r.Repository.GetByName(ctx, productName)
	if err == nil && productName == r.name && r.afterLookup != nil {
		r.once.Do(func() { r.afterLookup(item) })
	}
	return item, err
}

func newHookedService(repo *hookRepository, forecast ports.ForecastClient) *Service {
	return NewService(repo, forecast,
		WithClock(func() time.Time { return fixedNow }),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

func stockByName(t *testing.T, repo ports.Repository) map[string]float64 {
	t.Helper()
	items, err := repo.List(context.Background())
	require.NoError(t, err)
	out := map[string]float64{}
	for _, item := range items {
		out[item.ProductName] = item.StockLevel
	}
	return out
}

func renamed(item *domain.Item, name string) *domain.Item {
	next := item.Clone()
	next.ProductName = name
	return next
}

func TestAddOrMergeItem_ConcurrentRenameStaysLinearizable(t *testing.T) {
	repo := &hookRepository{Repository: invmemory.NewRepository(), name: "Milk"}
	svc := newHookedService(repo, &fakeForecast{demand: map[string]float64{}})
	ctx := context.Background()

	seeded, err := repo.Save(ctx, milk(10))
	require.NoError(t, err)

	var wg sync.WaitGroup
	var renameErr error
	repo.afterLookup = func(found *domain.Item) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, renameErr = svc.UpdateItem(ctx, seeded.ID, renamed(found, "Oat Milk"))
		}()
		// Give the rename a chance to run inside the add's lookup window.
		time.Sleep(20 * time.Millisecond)
	}

	result, err := svc.AddOrMergeItem(ctx, milk(3))
	require.NoError(t, err)
	wg.Wait()
	require.NoError(t, renameErr)

	assert.Equal(t, "Milk", result.Item.ProductName)
	if result.Created {
		assert.Equal(t, map[string]float64{"Milk": 3, "Oat Milk": 10}, stockByName(t, repo))
	} else {
		assert.Equal(t, float64(13), result.Item.StockLevel)
		assert.Equal(t, map[string]float64{"Oat Milk": 13}, stockByName(t, repo))
	}
}

func TestAddOrMergeItem_RenamedUnderneathInsertsNewRecord(t *testing.T) {
	repo := &hookRepository{Repository: invmemory.NewRepository(), name: "Milk"}
	svc := newHookedService(repo, &fakeForecast{demand: map[string]float64{}})
	ctx := context.Background()

	_, err := repo.Save(ctx, milk(10))
	require.NoError(t, err)
	// Another writer of the same store renames without going through this service.
	repo.afterLookup = func(found *domain.Item) {
		_, err := repo.Repository.Save(ctx, renamed(found, "Oat Milk"))
		require.NoError(t, err)
	}

	result, err := svc.AddOrMergeItem(ctx, milk(3))
	require.NoError(t, err)
	assert.True(t, result.Created)
	assert.Equal(t, map[string]float64{"Milk": 3, "Oat Milk": 10}, stockByName(t, repo))
}

func TestOptimizeStock_RenamedUnderneathIsProductNotFound(t *testing.T) {
	repo := &hookRepository{Repository: invmemory.NewRepository(), name: "Milk"}
	svc := newHookedService(repo, &fakeForecast{demand: map[string]float64{"Milk": 40}})
	ctx := context.Background()

	_, err := repo.Save(ctx, milk(10))
	require.NoError(t, err)
	repo.afterLookup = func(found *domain.Item) {
		_, err := repo.Repository.Save(ctx, renamed(found, "Oat Milk"))
		require.NoError(t, err)
	}

	result, err := svc.OptimizeStock(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, domain.OutcomeProductNotFound, result.Outcome)
	assert.Equal(t, map[string]float64{"Oat Milk": 10}, stockByName(t, repo))
}

func TestUpdateItem_SuccessiveRenamesReleaseOldNames(t *testing.T) {
	repo := &hookRepository{Repository: invmemory.NewRepository()}
	svc := newHookedService(repo, &fakeForecast{demand: map[string]float64{}})
	ctx := context.Background()

	seeded, err := repo.Save(ctx, milk(10))
	require.NoError(t, err)
	_, err = svc.UpdateItem(ctx, seeded.ID, renamed(seeded, "Oat Milk"))
	require.NoError(t, err)
	updated, err := svc.UpdateItem(ctx, seeded.ID, renamed(seeded, "Whole Milk"))
	require.NoError(t, err)
	assert.Equal(t, "Whole Milk", updated.ProductName)
	assert.Equal(t, map[string]float64{"Whole Milk": 10}, stockByName(t, repo))

	result, err := svc.AddOrMergeItem(ctx, milk(2))
	require.NoError(t, err)
	assert.True(t, result.Created)
}
