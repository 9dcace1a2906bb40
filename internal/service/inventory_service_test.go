package service

import (
	"context"
	"sync"
	"testing"

	"github.com/RoyceAzure/lab/barcheckout/internal/apperr"
	"github.com/RoyceAzure/lab/barcheckout/internal/infra/repository"
	"github.com/stretchr/testify/require"
)

func TestInventoryDecrement(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(env.store)
	ctx := context.Background()
	p := env.addProduct(t, "Cerveja", "2.50", 3)

	require.NoError(t, svc.Decrement(ctx, p.ProductID, 2))
	stock, err := svc.GetStock(ctx, p.ProductID)
	require.NoError(t, err)
	require.Equal(t, 1, stock)

	err = svc.Decrement(ctx, p.ProductID, 2)
	require.ErrorIs(t, err, repository.ErrStockNotEnough)
	require.Contains(t, apperr.PublicMessage(err), "Cerveja")
	require.Equal(t, 1, env.stockOf(t, p.ProductID))

	require.Equal(t, apperr.KindValidation, apperr.KindOf(svc.Decrement(ctx, p.ProductID, 0)))

	_, err = svc.GetStock(ctx, 999)
	require.ErrorIs(t, err, ErrProductNotExist)
}

func TestInventoryConcurrentDecrementNeverNegative(t *testing.T) {
	env := newTestEnv(t)
	svc := NewInventoryService(env.store)
	p := env.addProduct(t, "Cerveja", "2.50", 10)

	var wg sync.WaitGroup
	var mu sync.Mutex
	ok := 0
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if svc.Decrement(context.Background(), p.ProductID, 1) == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Equal(t, 10, ok)
	require.Zero(t, env.stockOf(t, p.ProductID))
}
