package redis

import (
	"context"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Abka012/Odin-AI/internal/domains/inventory/domain"
	"github.com/Abka012/Odin-AI/internal/domains/inventory/ports"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		_ = client.Close()
		t.Skipf("Redis not available: %v", err)
	}
	prefix := "inventory-test:" + uuid.NewString() + ":"
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, prefix+"*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		_ = client.Close()
	})
	return NewRepository(client, WithKeyPrefix(prefix))
}

func sampleItem(name string) *domain.Item {
	expiry := time.Now().Add(48 * time.Hour).UTC()
	return &domain.Item{
		ProductName:      name,
		ProductType:      "Dairy",
		StockLevel:       10,
		ReorderThreshold: 5,
		Price:            2.5,
		DateAdded:        time.Now().UTC(),
		LifeExpectancy:   &expiry,
		SupplierName:     "Farm Co",
		Category:         "Grocery",
		IsActive:         true,
	}
}

func TestRepository_InsertAndLookup(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleItem("Milk"))
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, int64(1), saved.Version)

	byName, err := repo.GetByName(ctx, "Milk")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)
	require.NotNil(t, byName.LifeExpectancy)

	_, err = repo.Save(ctx, sampleItem("Milk"))
	assert.ErrorIs(t, err, ports.ErrDuplicateName)
}

func TestRepository_ConditionalUpdate(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleItem("Milk"))
	require.NoError(t, err)

	next := saved.Clone()
	next.StockLevel = 3
	updated, err := repo.Save(ctx, next)
	require.NoError(t, err)
	assert.Equal(t, int64(2), updated.Version)

	stale := saved.Clone()
	stale.StockLevel = 100
	_, err = repo.Save(ctx, stale)
	assert.ErrorIs(t, err, ports.ErrVersionConflict)

	current, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, float64(3), current.StockLevel)
}

func TestRepository_ConcurrentWritersOneWins(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	saved, err := repo.Save(ctx, sampleItem("Milk"))
	require.NoError(t, err)

	const writers = 10
	errs := make([]error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			item := saved.Clone()
			item.StockLevel = float64(i)
			_, errs[i] = repo.Save(ctx, item)
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range errs {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ports.ErrVersionConflict)
	}
	assert.Equal(t, 1, wins)
}

func TestRepository_RenameMovesNameIndex(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	saved, err := repo.Save(ctx, sampleItem("Milk"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, sampleItem("Bread"))
	require.NoError(t, err)

	clash := saved.Clone()
	clash.ProductName = "Bread"
	_, err = repo.Save(ctx, clash)
	assert.ErrorIs(t, err, ports.ErrDuplicateName)

	renamed := saved.Clone()
	renamed.ProductName = "Oat Milk"
	_, err = repo.Save(ctx, renamed)
	require.NoError(t, err)

	_, err = repo.GetByName(ctx, "Milk")
	assert.ErrorIs(t, err, ports.ErrNotFound)
	byName, err := repo.GetByName(ctx, "Oat Milk")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)
}

func TestRepository_ListAndDelete(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	milk, err := repo.Save(ctx, sampleItem("Milk"))
	require.NoError(t, err)
	_, err = repo.Save(ctx, sampleItem("Bread"))
	require.NoError(t, err)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Bread", list[0].ProductName)

	require.NoError(t, repo.Delete(ctx, milk.ID))
	assert.ErrorIs(t, repo.Delete(ctx, milk.ID), ports.ErrNotFound)
	_, err = repo.GetByName(ctx, "Milk")
	assert.ErrorIs(t, err, ports.ErrNotFound)

	list, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
