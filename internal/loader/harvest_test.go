// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/market"
	"github.com/veeakker/lfw-import/internal/vocab"
)

func harvestFixture() *fakeMarket {
	cheese := cheesePayload()

	butter := cheesePayload()
	butter.Id = 204
	butter.Name = "Farm butter"

	return &fakeMarket{
		pages: []market.CatalogPage{
			{Content: []market.ListedProduct{cheese.ListedProduct}, Last: false},
			{Content: []market.ListedProduct{butter.ListedProduct}, Last: true},
		},
		details: map[int64]market.ProductDetail{
			cheese.Id: cheese,
			butter.Id: butter,
		},
		roster: []market.RosterSupplier{
			{Id: 12, Name: "Hoeve Ter Linde"},
		},
	}
}

func TestRunHarvestWalksAllPages(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, harvestFixture())

	require.NoError(t, loader.RunHarvest(context.Background()))

	// both products were converged and tagged with the same job
	require.NotEmpty(t, store.UpdatesContaining("Farmhouse cheese"))
	require.NotEmpty(t, store.UpdatesContaining("Farm butter"))
	require.Len(t, store.UpdatesContaining(vocab.GeneratedBy), 2)

	// the roster ran before the catalog
	require.NotEmpty(t, store.UpdatesContaining("Hoeve Ter Linde"))

	require.NotEmpty(t, store.UpdatesContaining(vocab.JobStatusFinished))
	require.Empty(t, store.UpdatesContaining(vocab.JobStatusError))
}

func TestRunHarvestMarksJobErroredOnFailure(t *testing.T) {
	store := &graph.MockStore{}
	fixture := harvestFixture()
	broken := fixture.details[204]
	broken.Unit = "bunch"
	fixture.details[204] = broken
	loader := newTestLoader(store, fixture)

	err := loader.RunHarvest(context.Background())
	require.ErrorIs(t, err, ErrUnknownUnit)

	// the first product went through before the failure stopped the run
	require.NotEmpty(t, store.UpdatesContaining("Farmhouse cheese"))

	require.NotEmpty(t, store.UpdatesContaining(vocab.JobStatusError))
	require.Empty(t, store.UpdatesContaining(vocab.JobStatusFinished))
}

func TestRunHarvestRejectsConcurrentRun(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, harvestFixture())

	require.True(t, loader.harvestLock.TryAcquire(1))
	err := loader.RunHarvest(context.Background())
	require.ErrorIs(t, err, ErrHarvestInProgress)
	require.Empty(t, store.Updates, "a rejected run must not touch the store")

	loader.harvestLock.Release(1)
	require.NoError(t, loader.RunHarvest(context.Background()))
}
