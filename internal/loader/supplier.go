// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/market"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// Suppliers whose assortment is managed by hand in the shop; their
// marketplace data is ignored past identity resolution.
var ignoredSuppliers = map[string]bool{
	"Veeakker":       true,
	"De Winkelwagen": true,
}

// LoadSuppliers reconciles the full supplier roster. Runs before any
// product so per-product supplier linking can assume the suppliers exist.
//
// Two phases: first create the suppliers we have never seen, then refresh
// every name in one batched update instead of one round-trip per supplier.
func (l *Loader) LoadSuppliers(ctx context.Context) error {
	roster, err := l.market.FetchSupplierRoster(ctx)
	if err != nil {
		return err
	}
	log.Infof("reconciling %d suppliers", len(roster))

	for _, supplier := range roster {
		if err := l.ensureSupplier(ctx, supplier); err != nil {
			return err
		}
	}

	return l.refreshSupplierNames(ctx, roster)
}

func (l *Loader) ensureSupplier(ctx context.Context, supplier market.RosterSupplier) error {
	notationTerm, err := graph.LiteralTerm(fmt.Sprintf("%d", supplier.Id))
	if err != nil {
		return err
	}
	sourceTerm, err := graph.LiteralTerm(vocab.SourceSystem)
	if err != nil {
		return err
	}

	exists, err := l.store.Ask(ctx, fmt.Sprintf(`ASK WHERE { GRAPH <%s> {
  ?supplier <%s> <%s> .
  ?supplier <%s> ?identifier .
  ?identifier <%s> %s .
  ?identifier <%s> %s .
} }`,
		l.graphURI,
		vocab.RdfType, vocab.BusinessEntityType,
		vocab.IdentifierRel,
		vocab.Notation, notationTerm,
		vocab.Creator, sourceTerm))
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	_, err = l.ensureEntity(ctx, vocab.BusinessEntityType, vocab.SupplierBase, supplier.Id)
	return err
}

// refreshSupplierNames overwrites every supplier name in a single update,
// joining roster entries onto their graph nodes by identifier notation
func (l *Loader) refreshSupplierNames(ctx context.Context, roster []market.RosterSupplier) error {
	if len(roster) == 0 {
		return nil
	}

	var values strings.Builder
	for _, supplier := range roster {
		notationTerm, err := graph.LiteralTerm(fmt.Sprintf("%d", supplier.Id))
		if err != nil {
			return err
		}
		nameTerm, err := graph.LiteralTerm(supplier.Name)
		if err != nil {
			return err
		}
		values.WriteString(fmt.Sprintf("    (%s %s)\n", notationTerm, nameTerm))
	}

	sourceTerm, err := graph.LiteralTerm(vocab.SourceSystem)
	if err != nil {
		return err
	}

	statement := fmt.Sprintf(`DELETE { GRAPH <%s> { ?supplier <%s> ?oldName } }
INSERT { GRAPH <%s> { ?supplier <%s> ?newName } }
WHERE { GRAPH <%s> {
  VALUES (?notation ?newName) {
%s  }
  ?supplier <%s> <%s> .
  ?supplier <%s> ?identifier .
  ?identifier <%s> ?notation .
  ?identifier <%s> %s .
  OPTIONAL { ?supplier <%s> ?oldName }
} }`,
		l.graphURI, vocab.LegalName,
		l.graphURI, vocab.LegalName,
		l.graphURI,
		values.String(),
		vocab.RdfType, vocab.BusinessEntityType,
		vocab.IdentifierRel,
		vocab.Notation,
		vocab.Creator, sourceTerm,
		vocab.LegalName)

	return l.store.Update(ctx, statement)
}

// LoadProductSupplier links a structured supplier payload to the offering
// and refreshes the supplier's contact info. Resolution is by exact name;
// a supplier the roster never delivered stays unlinked without error.
func (l *Loader) LoadProductSupplier(ctx context.Context, offeringURI string, detail *market.SupplierDetail) error {
	nameTerm, err := graph.LiteralTerm(detail.Name)
	if err != nil {
		return err
	}

	query := fmt.Sprintf(`SELECT ?supplier WHERE { GRAPH <%s> {
  ?supplier <%s> <%s> .
  ?supplier <%s> %s .
} } LIMIT 1`,
		l.graphURI,
		vocab.RdfType, vocab.BusinessEntityType,
		vocab.LegalName, nameTerm)

	bindings, err := l.store.Select(ctx, query)
	if err != nil {
		return err
	}
	if len(bindings) == 0 {
		log.Warnf("no supplier found with name %q, skipping link", detail.Name)
		return nil
	}
	supplierURI := bindings[0]["supplier"]

	description := sanitizeRichText(newlinesToBreaks(detail.Description))

	builder := newTripleBuilder()
	if detail.Email != "" {
		builder.literal(supplierURI, vocab.Email, detail.Email)
	}
	if description != "" {
		builder.literal(supplierURI, vocab.Description, description)
	}
	builder.iri(supplierURI, vocab.Offers, offeringURI)
	inserts, err := builder.build()
	if err != nil {
		return err
	}

	statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
		Subject:    supplierURI,
		Predicates: []string{vocab.Email, vocab.Description},
		Inserts:    inserts,
	})
	return l.store.Update(ctx, statements...)
}
