// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"io"

	"github.com/veeakker/lfw-import/internal/market"
)

// fakeMarket scripts marketplace payloads for the loader tests and
// records every image download
type fakeMarket struct {
	pages     []market.CatalogPage
	details   map[int64]market.ProductDetail
	roster    []market.RosterSupplier
	images    map[string][]byte
	downloads []string
}

var _ market.API = &fakeMarket{}

func (f *fakeMarket) FetchCatalogPage(_ context.Context, pageIndex int) (market.CatalogPage, error) {
	if pageIndex >= len(f.pages) {
		return market.CatalogPage{}, fmt.Errorf("no page %d", pageIndex)
	}
	return f.pages[pageIndex], nil
}

func (f *fakeMarket) FetchProductDetail(_ context.Context, productId int64) (market.ProductDetail, error) {
	detail, found := f.details[productId]
	if !found {
		return market.ProductDetail{}, fmt.Errorf("no product %d", productId)
	}
	return detail, nil
}

func (f *fakeMarket) FetchSupplierRoster(_ context.Context) ([]market.RosterSupplier, error) {
	return f.roster, nil
}

func (f *fakeMarket) DownloadBytes(_ context.Context, url string) ([]byte, error) {
	f.downloads = append(f.downloads, url)
	content, found := f.images[url]
	if !found {
		return nil, fmt.Errorf("no image at %s", url)
	}
	return content, nil
}

// recordingStorage remembers which object paths were written
type recordingStorage struct {
	stored []string
}

func (r *recordingStorage) Store(objectPath string, _ io.Reader) error {
	r.stored = append(r.stored, objectPath)
	return nil
}

func (r *recordingStorage) Get(objectPath string) (io.ReadCloser, error) {
	return nil, fmt.Errorf("no object at %s", objectPath)
}

func (r *recordingStorage) Exists(objectPath string) (bool, error) {
	for _, stored := range r.stored {
		if stored == objectPath {
			return true, nil
		}
	}
	return false, nil
}

func (r *recordingStorage) Remove(objectPath string) error {
	return nil
}
