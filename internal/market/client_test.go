// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package market

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/veeakker/lfw-import/internal/common"
	"github.com/veeakker/lfw-import/internal/config"
)

var testConf = config.MarketConfig{
	BaseUrl:       "http://market.test",
	StoreId:       "veeakker",
	PickupPointId: "oostende",
}

func newMockedMarketClient(t *testing.T, mocks map[string]common.MockResponse) (*Client, *common.MockTransport) {
	t.Helper()
	httpClient, transport := common.NewMockedClient(true, mocks)
	return NewClientWithHTTP(testConf, httpClient), transport
}

func TestFetchCatalogPage(t *testing.T) {
	body := `{
		"content": [
			{"id": 181, "name": "Walnoten", "bio": true, "unit": "kg",
			 "amount": 0.5, "price": 6.5, "unitPrice": 13.0, "unitRatio": 0.5,
			 "image": "http://cdn.market.test/images/walnut.jpg",
			 "supplierName": "Notenbar"}
		],
		"last": false
	}`
	client, _ := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://market.test/api/stores/veeakker/pickup-points/oostende/products?page=0": {
			Body: body, StatusCode: 200, ContentType: "application/json",
		},
	})

	page, err := client.FetchCatalogPage(context.Background(), 0)
	require.NoError(t, err)
	require.False(t, page.Last)
	require.Len(t, page.Content, 1)
	require.Equal(t, int64(181), page.Content[0].Id)
	require.Equal(t, "Walnoten", page.Content[0].Name)
	require.True(t, page.Content[0].Bio)
}

func TestFetchProductDetailParsesNestedPayloads(t *testing.T) {
	body := `{
		"id": 181, "name": "Walnoten", "unit": "kg", "amount": 0.5, "price": 6.5,
		"ingredients": [
			{"name": "walnoot", "position": 2},
			{"name": "zout", "position": 1}
		],
		"allergens": [
			{"allergen": {"id": 7, "name": "noten"}}
		],
		"supplier": {"id": 12, "name": "Notenbar", "email": "info@notenbar.be", "description": "Al 30 jaar noten"}
	}`
	client, _ := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://market.test/api/stores/veeakker/products/181": {
			Body: body, StatusCode: 200, ContentType: "application/json",
		},
	})

	detail, err := client.FetchProductDetail(context.Background(), 181)
	require.NoError(t, err)
	require.Len(t, detail.Ingredients, 2)
	require.Equal(t, "zout", detail.Ingredients[1].Name)
	require.Len(t, detail.Allergens, 1)
	require.Equal(t, int64(7), detail.Allergens[0].Allergen.Id)
	require.NotNil(t, detail.Supplier)
	require.Equal(t, "info@notenbar.be", detail.Supplier.Email)
}

func TestFetchProductDetailWithoutIngredientsYieldsNil(t *testing.T) {
	client, _ := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://market.test/api/stores/veeakker/products/9": {
			Body: `{"id": 9, "name": "Eieren"}`, StatusCode: 200, ContentType: "application/json",
		},
	})

	detail, err := client.FetchProductDetail(context.Background(), 9)
	require.NoError(t, err)
	require.Nil(t, detail.Ingredients)
	require.Nil(t, detail.Allergens)
	require.Nil(t, detail.Supplier)
}

func TestFetchSupplierRoster(t *testing.T) {
	client, _ := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://market.test/api/stores/veeakker/suppliers": {
			Body: `[{"id": 12, "name": "Notenbar"}, {"id": 13, "name": "Hoeve Ter Linde"}]`,
			StatusCode: 200, ContentType: "application/json",
		},
	})

	roster, err := client.FetchSupplierRoster(context.Background())
	require.NoError(t, err)
	require.Len(t, roster, 2)
	require.Equal(t, "Hoeve Ter Linde", roster[1].Name)
}

func TestErrorStatusSurfaces(t *testing.T) {
	client, _ := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://market.test/api/stores/veeakker/suppliers": {
			Body: "gateway exploded", StatusCode: 502, ContentType: "text/plain",
		},
	})

	_, err := client.FetchSupplierRoster(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "gateway exploded")
}

func TestDownloadBytes(t *testing.T) {
	client, transport := newMockedMarketClient(t, map[string]common.MockResponse{
		"http://cdn.market.test/images/walnut.jpg": {
			Body: "jpegbytes", StatusCode: 200, ContentType: "image/jpeg",
		},
	})

	content, err := client.DownloadBytes(context.Background(), "http://cdn.market.test/images/walnut.jpg")
	require.NoError(t, err)
	require.Equal(t, "jpegbytes", string(content))
	require.Equal(t, 1, transport.Hits["http://cdn.market.test/images/walnut.jpg"])
}

func TestDownloadsUseDedicatedClient(t *testing.T) {
	client := NewClient(testConf)
	require.NotNil(t, client.downloadClient)
	require.NotSame(t, client.httpClient, client.downloadClient)
}
