// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/storage"
	"github.com/veeakker/lfw-import/internal/vocab"
)

const testGraph = "http://mu.semte.ch/application"

func newTestLoader(store graph.Store, marketAPI *fakeMarket) *Loader {
	return New(store, marketAPI, storage.DiscardFileStorage{}, testGraph)
}

func TestEnsureResourceReturnsExisting(t *testing.T) {
	existing := vocab.PriceSpecBase + "already-there"
	store := &graph.MockStore{
		SelectResponses: []graph.MockSelect{
			{Contains: vocab.SingleUnitPrice, Bindings: []graph.Binding{{"resource": existing}}},
		},
	}
	loader := newTestLoader(store, &fakeMarket{})

	resolved, err := loader.ensureResource(context.Background(), vocab.ProductBase+"p1",
		vocab.SingleUnitPrice, vocab.UnitPriceSpecification, vocab.PriceSpecBase)
	require.NoError(t, err)
	require.Equal(t, existing, resolved)
	require.Empty(t, store.Updates, "an existing resource must not be written again")
}

func TestEnsureResourceCreatesWhenAbsent(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, &fakeMarket{})
	owner := vocab.ProductBase + "p1"

	resolved, err := loader.ensureResource(context.Background(), owner,
		vocab.SingleUnitPrice, vocab.UnitPriceSpecification, vocab.PriceSpecBase)
	require.NoError(t, err)
	require.Contains(t, resolved, vocab.PriceSpecBase)

	require.Len(t, store.Updates, 1)
	inserted := store.Updates[0][0]
	require.Contains(t, inserted, "INSERT DATA")
	require.Contains(t, inserted, owner)
	require.Contains(t, inserted, resolved)
	require.Contains(t, inserted, vocab.UnitPriceSpecification)
	require.Contains(t, inserted, vocab.MuUUID)
}

func TestEnsureEntityResolvesByIdentifier(t *testing.T) {
	existing := vocab.ProductBase + "stable-uri"
	store := &graph.MockStore{
		SelectResponses: []graph.MockSelect{
			{Contains: `"181"`, Bindings: []graph.Binding{{"entity": existing}}},
		},
	}
	loader := newTestLoader(store, &fakeMarket{})

	first, err := loader.ensureEntity(context.Background(), vocab.ProductType, vocab.ProductBase, 181)
	require.NoError(t, err)
	second, err := loader.ensureEntity(context.Background(), vocab.ProductType, vocab.ProductBase, 181)
	require.NoError(t, err)

	require.Equal(t, existing, first)
	require.Equal(t, first, second, "the same external id must map onto the same uri")
	require.Empty(t, store.Updates)
}

func TestEnsureEntityMintsIdentifierOnFirstSighting(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, &fakeMarket{})

	entityURI, err := loader.ensureEntity(context.Background(), vocab.ProductType, vocab.ProductBase, 181)
	require.NoError(t, err)
	require.Contains(t, entityURI, vocab.ProductBase)

	// the lookup mentions both the notation and the source marker
	require.Len(t, store.Queries, 1)
	require.Contains(t, store.Queries[0], `"181"`)
	require.Contains(t, store.Queries[0], vocab.SourceSystem)

	require.Len(t, store.Updates, 1)
	inserted := store.Updates[0][0]
	require.Contains(t, inserted, vocab.IdentifierType)
	require.Contains(t, inserted, `"181"`)
	require.Contains(t, inserted, vocab.SourceSystem)
}
