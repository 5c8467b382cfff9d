// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/market"
	"github.com/veeakker/lfw-import/internal/opentelemetry"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// Catalog listings sort products by a derived index well above any
// hand-assigned value so curated products stay on top.
const pluOffset = 1_000_000

type LoadProductOptions struct {
	// re-fetch the full detail payload before reconciling
	External bool
	// when set, tag the product as generated by this harvest job
	JobURI string
}

// LoadProduct converges the graph state of one product to the payload.
// The property groups run in a fixed order but are independent: an error
// aborts the remaining groups while earlier replacements stay committed,
// and the next harvest converges the rest.
func (l *Loader) LoadProduct(ctx context.Context, payload market.ProductDetail, opts LoadProductOptions) error {
	span, ctx := opentelemetry.SubSpanFromCtxWithName(ctx, fmt.Sprintf("load_product_%d", payload.Id))
	defer span.End()

	if opts.External {
		detail, err := l.market.FetchProductDetail(ctx, payload.Id)
		if err != nil {
			return err
		}
		payload = detail
	}

	productURI, err := l.ensureEntity(ctx, vocab.ProductType, vocab.ProductBase, payload.Id)
	if err != nil {
		return err
	}

	if ignoredSuppliers[supplierNameOf(payload)] {
		log.Infof("skipping product %d, supplier %q is managed by hand", payload.Id, supplierNameOf(payload))
		return nil
	}

	if opts.JobURI != "" {
		if err := l.tagWithJob(ctx, productURI, opts.JobURI); err != nil {
			return err
		}
	}

	if err := l.replaceBaseInfo(ctx, productURI, payload); err != nil {
		return fmt.Errorf("failed to replace base info of product %d: %w", payload.Id, err)
	}
	if err := l.replaceDefaultPricing(ctx, productURI, payload); err != nil {
		return fmt.Errorf("failed to replace default pricing of product %d: %w", payload.Id, err)
	}
	offeringURI, err := l.replaceOffering(ctx, productURI, payload)
	if err != nil {
		return fmt.Errorf("failed to replace offering of product %d: %w", payload.Id, err)
	}
	if err := l.replaceIngredients(ctx, productURI, payload.Ingredients); err != nil {
		return fmt.Errorf("failed to replace ingredients of product %d: %w", payload.Id, err)
	}
	if err := l.replaceAllergens(ctx, productURI, payload.Allergens); err != nil {
		return fmt.Errorf("failed to replace allergens of product %d: %w", payload.Id, err)
	}
	if err := l.ensurePicture(ctx, productURI, payload.Image); err != nil {
		return fmt.Errorf("failed to reconcile thumbnail of product %d: %w", payload.Id, err)
	}

	if payload.Supplier != nil {
		if err := l.LoadProductSupplier(ctx, offeringURI, payload.Supplier); err != nil {
			return fmt.Errorf("failed to link supplier of product %d: %w", payload.Id, err)
		}
	}

	return nil
}

// listedAsDetail wraps a listing entry so it can seed an external load
func listedAsDetail(listed market.ListedProduct) market.ProductDetail {
	return market.ProductDetail{ListedProduct: listed}
}

// supplierNameOf prefers the structured supplier over the listing name
func supplierNameOf(payload market.ProductDetail) string {
	if payload.Supplier != nil {
		return payload.Supplier.Name
	}
	return payload.SupplierName
}

// the predicate allowlist of the base info group
var baseInfoPredicates = []string{
	vocab.Title,
	vocab.Description,
	vocab.Plu,
	vocab.SortIndex,
	vocab.AllowsFractionalOrder,
	vocab.Label,
}

func (l *Loader) replaceBaseInfo(ctx context.Context, productURI string, payload market.ProductDetail) error {
	plu := pluOffset + payload.Id

	builder := newTripleBuilder()
	builder.literal(productURI, vocab.Title, payload.Name)
	if payload.Description != "" {
		builder.literal(productURI, vocab.Description, sanitizeRichText(payload.Description))
	}
	builder.literal(productURI, vocab.Plu, plu)
	builder.literal(productURI, vocab.SortIndex, plu)
	builder.literal(productURI, vocab.AllowsFractionalOrder, payload.Fractionable)
	builder.iri(productURI, vocab.Label, vocab.SourceLabel)
	if payload.Bio {
		builder.iri(productURI, vocab.Label, vocab.BioLabel)
	}
	inserts, err := builder.build()
	if err != nil {
		return err
	}

	statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
		Subject:    productURI,
		Predicates: baseInfoPredicates,
		Inserts:    inserts,
	})
	return l.store.Update(ctx, statements...)
}

// replaceDefaultPricing maintains the product-level price basis: the
// price per measurement unit and the ratio between the measurement unit
// and the order unit. The unit is converted before any resource is
// touched so an unknown code writes nothing.
func (l *Loader) replaceDefaultPricing(ctx context.Context, productURI string, payload market.ProductDetail) error {
	unit, err := ConvertUnit(payload.Unit)
	if err != nil {
		return err
	}

	priceSpecURI, err := l.ensureResource(ctx, productURI, vocab.SingleUnitPrice, vocab.UnitPriceSpecification, vocab.PriceSpecBase)
	if err != nil {
		return err
	}
	targetUnitURI, err := l.ensureResource(ctx, productURI, vocab.TargetUnit, vocab.QuantitativeValueType, vocab.QuantitativeBase)
	if err != nil {
		return err
	}

	priceBuilder := newTripleBuilder()
	priceBuilder.literal(priceSpecURI, vocab.HasCurrencyValue, payload.UnitPrice)
	priceBuilder.literal(priceSpecURI, vocab.HasCurrency, Currency)
	priceBuilder.literal(priceSpecURI, vocab.HasUnitOfMeasurement, unit)
	priceInserts, err := priceBuilder.build()
	if err != nil {
		return err
	}

	unitBuilder := newTripleBuilder()
	unitBuilder.literal(targetUnitURI, vocab.HasValue, payload.UnitRatio)
	unitBuilder.literal(targetUnitURI, vocab.HasUnitOfMeasurement, unit)
	unitInserts, err := unitBuilder.build()
	if err != nil {
		return err
	}

	statements := graph.ReplacementStatements(l.graphURI,
		graph.PropertyGroup{
			Subject:    priceSpecURI,
			Predicates: []string{vocab.HasCurrencyValue, vocab.HasCurrency, vocab.HasUnitOfMeasurement},
			Inserts:    priceInserts,
		},
		graph.PropertyGroup{
			Subject:    targetUnitURI,
			Predicates: []string{vocab.HasValue, vocab.HasUnitOfMeasurement},
			Inserts:    unitInserts,
		},
	)
	return l.store.Update(ctx, statements...)
}

// replaceOffering maintains the single offering of a product and its two
// sub-resources. Each product has exactly one offering; the resolver
// re-finds it on every run.
func (l *Loader) replaceOffering(ctx context.Context, productURI string, payload market.ProductDetail) (string, error) {
	unit, err := ConvertUnit(payload.Unit)
	if err != nil {
		return "", err
	}

	offeringURI, err := l.ensureResource(ctx, productURI, vocab.Offerings, vocab.OfferingType, vocab.OfferingBase)
	if err != nil {
		return "", err
	}
	quantityURI, err := l.ensureResource(ctx, offeringURI, vocab.IncludesObject, vocab.TypeAndQuantityType, vocab.TypeAndQuantityBase)
	if err != nil {
		return "", err
	}
	priceSpecURI, err := l.ensureResource(ctx, offeringURI, vocab.HasPriceSpecification, vocab.UnitPriceSpecification, vocab.PriceSpecBase)
	if err != nil {
		return "", err
	}

	quantityBuilder := newTripleBuilder()
	quantityBuilder.literal(quantityURI, vocab.AmountOfThisGood, payload.Amount)
	quantityBuilder.literal(quantityURI, vocab.HasUnitOfMeasurement, unit)
	quantityBuilder.iri(quantityURI, vocab.TypeOfGood, productURI)
	quantityInserts, err := quantityBuilder.build()
	if err != nil {
		return "", err
	}

	priceBuilder := newTripleBuilder()
	priceBuilder.literal(priceSpecURI, vocab.HasCurrencyValue, payload.Price)
	priceBuilder.literal(priceSpecURI, vocab.HasCurrency, Currency)
	priceBuilder.literal(priceSpecURI, vocab.HasUnitOfMeasurement, PieceUnit)
	priceInserts, err := priceBuilder.build()
	if err != nil {
		return "", err
	}

	statements := graph.ReplacementStatements(l.graphURI,
		graph.PropertyGroup{
			Subject:    quantityURI,
			Predicates: []string{vocab.AmountOfThisGood, vocab.HasUnitOfMeasurement, vocab.TypeOfGood},
			Inserts:    quantityInserts,
		},
		graph.PropertyGroup{
			Subject:    priceSpecURI,
			Predicates: []string{vocab.HasCurrencyValue, vocab.HasCurrency, vocab.HasUnitOfMeasurement},
			Inserts:    priceInserts,
		},
	)
	if err := l.store.Update(ctx, statements...); err != nil {
		return "", err
	}
	return offeringURI, nil
}

// replaceIngredients rewrites the ingredient list as sanitized html.
// An absent list means the marketplace no longer reports ingredients,
// so any stored text is deleted rather than kept.
func (l *Loader) replaceIngredients(ctx context.Context, productURI string, ingredients []market.Ingredient) error {
	if len(ingredients) == 0 {
		statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
			Subject:    productURI,
			Predicates: []string{vocab.IngredientsText},
		})
		return l.store.Update(ctx, statements...)
	}

	sorted := make([]market.Ingredient, len(ingredients))
	copy(sorted, ingredients)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Position < sorted[j].Position })

	names := make([]string, 0, len(sorted))
	for _, ingredient := range sorted {
		names = append(names, ingredient.Name)
	}

	return l.replaceHTMLList(ctx, productURI, vocab.IngredientsText, names)
}

// replaceAllergens mirrors replaceIngredients, ordered by allergen id
func (l *Loader) replaceAllergens(ctx context.Context, productURI string, allergens []market.ProductAllergen) error {
	if len(allergens) == 0 {
		statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
			Subject:    productURI,
			Predicates: []string{vocab.AllergensText},
		})
		return l.store.Update(ctx, statements...)
	}

	sorted := make([]market.ProductAllergen, len(allergens))
	copy(sorted, allergens)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Allergen.Id < sorted[j].Allergen.Id })

	names := make([]string, 0, len(sorted))
	for _, allergen := range sorted {
		names = append(names, allergen.Allergen.Name)
	}

	return l.replaceHTMLList(ctx, productURI, vocab.AllergensText, names)
}

func (l *Loader) replaceHTMLList(ctx context.Context, productURI, predicate string, names []string) error {
	var html strings.Builder
	html.WriteString("<ul>")
	for _, name := range names {
		html.WriteString("<li>" + sanitizeName(name) + "</li>")
	}
	html.WriteString("</ul>")

	text, err := graph.LiteralTriple(productURI, predicate, html.String())
	if err != nil {
		return err
	}

	statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
		Subject:    productURI,
		Predicates: []string{predicate},
		Inserts:    []string{text},
	})
	return l.store.Update(ctx, statements...)
}
