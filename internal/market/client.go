// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package market

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/common"
	"github.com/veeakker/lfw-import/internal/config"
	"github.com/veeakker/lfw-import/internal/storage"
)

// Client talks to the marketplace REST API for one store and one pickup
// point. When a cache storage is attached, every fetched payload is also
// written there under an id-addressed path.
type Client struct {
	conf       config.MarketConfig
	httpClient *http.Client
	// image downloads run over a separate long-lived connection pool so
	// slow CDN fetches don't tie up the API client
	downloadClient *http.Client
	// nil unless page caching is enabled
	cache storage.FileStorage
}

var _ API = &Client{}

func NewClient(conf config.MarketConfig) *Client {
	return &Client{
		conf:           conf,
		httpClient:     common.NewRetryableHTTPClient(),
		downloadClient: common.NewHarvestClient(),
	}
}

// NewClientWithHTTP swaps in a custom http client for both API calls
// and downloads; used by tests
func NewClientWithHTTP(conf config.MarketConfig, httpClient *http.Client) *Client {
	return &Client{
		conf:           conf,
		httpClient:     httpClient,
		downloadClient: httpClient,
	}
}

// WithCache attaches a storage destination for raw payloads
func (client *Client) WithCache(cache storage.FileStorage) *Client {
	client.cache = cache
	return client
}

func (client *Client) getJSON(ctx context.Context, url string, cachePath string, target interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", common.HarvestAgent)

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode != 200 {
		return fmt.Errorf("marketplace returned %s for %s: %s", resp.Status, url, string(body))
	}

	if client.cache != nil && cachePath != "" {
		if err := client.cache.Store(cachePath, bytes.NewReader(body)); err != nil {
			// caching is best effort; the harvest itself does not depend on it
			log.Warnf("failed to cache %s: %v", cachePath, err)
		}
	}

	return json.Unmarshal(body, target)
}

// FetchCatalogPage returns one page of the store assortment
func (client *Client) FetchCatalogPage(ctx context.Context, pageIndex int) (CatalogPage, error) {
	url := fmt.Sprintf("%s/api/stores/%s/pickup-points/%s/products?page=%d",
		client.conf.BaseUrl, client.conf.StoreId, client.conf.PickupPointId, pageIndex)

	var page CatalogPage
	cachePath := fmt.Sprintf("cache/pages/%d.json", pageIndex)
	if err := client.getJSON(ctx, url, cachePath, &page); err != nil {
		return CatalogPage{}, fmt.Errorf("failed to fetch catalog page %d: %w", pageIndex, err)
	}
	return page, nil
}

// FetchProductDetail returns the full payload for one product
func (client *Client) FetchProductDetail(ctx context.Context, productId int64) (ProductDetail, error) {
	url := fmt.Sprintf("%s/api/stores/%s/products/%d", client.conf.BaseUrl, client.conf.StoreId, productId)

	var detail ProductDetail
	cachePath := fmt.Sprintf("cache/products/%d.json", productId)
	if err := client.getJSON(ctx, url, cachePath, &detail); err != nil {
		return ProductDetail{}, fmt.Errorf("failed to fetch product %d: %w", productId, err)
	}
	return detail, nil
}

// FetchSupplierRoster returns every supplier delivering to the store
func (client *Client) FetchSupplierRoster(ctx context.Context) ([]RosterSupplier, error) {
	url := fmt.Sprintf("%s/api/stores/%s/suppliers", client.conf.BaseUrl, client.conf.StoreId)

	var roster []RosterSupplier
	if err := client.getJSON(ctx, url, "cache/suppliers.json", &roster); err != nil {
		return nil, fmt.Errorf("failed to fetch supplier roster: %w", err)
	}
	return roster, nil
}

// DownloadBytes fetches an arbitrary url, typically a product image
func (client *Client) DownloadBytes(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", common.HarvestAgent)

	resp, err := client.downloadClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("download of %s returned %s", url, resp.Status)
	}
	return io.ReadAll(resp.Body)
}
