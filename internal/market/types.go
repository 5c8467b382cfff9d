// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package market fetches catalog data from the upstream grocery
// marketplace API. The rest of the application only depends on the API
// interface so tests can script payloads without a network.
package market

import "context"

// One product as it appears in a catalog listing page.
// The listing is a trimmed view; the detail endpoint returns
// the same fields plus structured supplier and food info.
type ListedProduct struct {
	Id           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Bio          bool    `json:"bio"`
	Fractionable bool    `json:"fractionable"`
	Unit         string  `json:"unit"`
	Amount       float64 `json:"amount"`
	Price        float64 `json:"price"`
	UnitPrice    float64 `json:"unitPrice"`
	UnitRatio    float64 `json:"unitRatio"`
	Image        string  `json:"image"`
	SupplierName string  `json:"supplierName"`
}

type Ingredient struct {
	Name     string `json:"name"`
	Position int    `json:"position"`
}

type Allergen struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

type ProductAllergen struct {
	Allergen Allergen `json:"allergen"`
}

type SupplierDetail struct {
	Id          int64  `json:"id"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Description string `json:"description"`
}

// The full product payload. A nil Ingredients or Allergens slice means
// the marketplace no longer reports them, not that they are unchanged.
type ProductDetail struct {
	ListedProduct
	Ingredients []Ingredient      `json:"ingredients"`
	Allergens   []ProductAllergen `json:"allergens"`
	Supplier    *SupplierDetail   `json:"supplier"`
}

// One fixed-size page of the catalog listing, ascending by name
type CatalogPage struct {
	Content []ListedProduct `json:"content"`
	Last    bool            `json:"last"`
}

type RosterSupplier struct {
	Id   int64  `json:"id"`
	Name string `json:"name"`
}

// API is the upstream marketplace surface the harvest consumes
type API interface {
	FetchCatalogPage(ctx context.Context, pageIndex int) (CatalogPage, error)
	FetchProductDetail(ctx context.Context, productId int64) (ProductDetail, error)
	FetchSupplierRoster(ctx context.Context) ([]RosterSupplier, error)
	// DownloadBytes fetches an arbitrary url, used for product images
	DownloadBytes(ctx context.Context, url string) ([]byte, error)
}
