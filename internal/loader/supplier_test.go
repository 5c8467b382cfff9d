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

func TestLoadSuppliersCreatesUnseenSuppliers(t *testing.T) {
	store := &graph.MockStore{}
	marketAPI := &fakeMarket{roster: []market.RosterSupplier{
		{Id: 12, Name: "Hoeve Ter Linde"},
		{Id: 31, Name: "Bakkerij Roels"},
	}}
	loader := newTestLoader(store, marketAPI)

	require.NoError(t, loader.LoadSuppliers(context.Background()))

	// one entity insert per unseen supplier
	created := store.UpdatesContaining(vocab.BusinessEntityType)
	require.NotEmpty(t, created)
	require.NotEmpty(t, store.UpdatesContaining(`"12"`))
	require.NotEmpty(t, store.UpdatesContaining(`"31"`))
}

func TestLoadSuppliersSkipsExistingIdentity(t *testing.T) {
	store := &graph.MockStore{
		AskResponses: []graph.MockAsk{
			{Contains: `"12"`, Result: true},
		},
	}
	marketAPI := &fakeMarket{roster: []market.RosterSupplier{{Id: 12, Name: "Hoeve Ter Linde"}}}
	loader := newTestLoader(store, marketAPI)

	require.NoError(t, loader.LoadSuppliers(context.Background()))

	// no entity minted, but the name refresh still runs
	require.Empty(t, store.UpdatesContaining(vocab.IdentifierType))
	refreshed := store.UpdatesContaining("Hoeve Ter Linde")
	require.Len(t, refreshed, 1)
	require.Contains(t, refreshed[0], "VALUES (?notation ?newName)")
}

func TestLoadSuppliersRefreshesNamesInOneUpdate(t *testing.T) {
	store := &graph.MockStore{}
	marketAPI := &fakeMarket{roster: []market.RosterSupplier{
		{Id: 12, Name: "Hoeve Ter Linde"},
		{Id: 31, Name: "Bakkerij Roels"},
	}}
	loader := newTestLoader(store, marketAPI)

	require.NoError(t, loader.LoadSuppliers(context.Background()))

	refreshed := store.UpdatesContaining("VALUES (?notation ?newName)")
	require.Len(t, refreshed, 1)
	require.Contains(t, refreshed[0], "Hoeve Ter Linde")
	require.Contains(t, refreshed[0], "Bakkerij Roels")
	require.Contains(t, refreshed[0], "OPTIONAL")
}

func TestLoadSuppliersEmptyRosterIsANoop(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, &fakeMarket{})

	require.NoError(t, loader.LoadSuppliers(context.Background()))
	require.Empty(t, store.Updates)
}

func TestLoadProductSupplierReplacesContactInfo(t *testing.T) {
	supplierURI := vocab.SupplierBase + "hoeve"
	store := &graph.MockStore{
		SelectResponses: []graph.MockSelect{
			{Contains: vocab.LegalName, Bindings: []graph.Binding{{"supplier": supplierURI}}},
		},
	}
	loader := newTestLoader(store, &fakeMarket{})
	offeringURI := vocab.OfferingBase + "off-1"

	err := loader.LoadProductSupplier(context.Background(), offeringURI, &market.SupplierDetail{
		Id:          12,
		Name:        "Hoeve Ter Linde",
		Email:       "info@hoeveterlinde.be",
		Description: "Family farm.\nSince 1953.",
	})
	require.NoError(t, err)

	statements := store.AllUpdateStatements()
	require.NotEmpty(t, statements)

	// contact info is replaced, the offering link is purely additive
	require.NotEmpty(t, store.UpdatesContaining(vocab.Email))
	require.NotEmpty(t, store.UpdatesContaining("info@hoeveterlinde.be"))
	require.NotEmpty(t, store.UpdatesContaining("Family farm.<br>Since 1953."))
	require.NotEmpty(t, store.UpdatesContaining(offeringURI))
	for _, statement := range store.UpdatesContaining(offeringURI) {
		require.NotContains(t, statement, "DELETE")
	}
}

func TestLoadProductSupplierUnknownNameIsSkipped(t *testing.T) {
	store := &graph.MockStore{}
	loader := newTestLoader(store, &fakeMarket{})

	err := loader.LoadProductSupplier(context.Background(), vocab.OfferingBase+"off-1",
		&market.SupplierDetail{Id: 99, Name: "Unknown Farm"})
	require.NoError(t, err)
	require.Empty(t, store.Updates)
}
