// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// ensureResource returns the resource linked from owner through the given
// predicate, creating it when absent. Looking up before minting keeps the
// operation idempotent across harvests: a sub-resource is created exactly
// once and then updated in place forever.
func (l *Loader) ensureResource(ctx context.Context, owner, predicate, resourceType, uriBase string) (string, error) {
	query := fmt.Sprintf(
		"SELECT ?resource WHERE { GRAPH <%s> { <%s> <%s> ?resource } } LIMIT 1",
		l.graphURI, owner, predicate)
	bindings, err := l.store.Select(ctx, query)
	if err != nil {
		return "", err
	}
	if len(bindings) > 0 {
		return bindings[0]["resource"], nil
	}

	id := uuid.NewString()
	resourceURI := uriBase + id

	link, err := graph.IRITriple(owner, predicate, resourceURI)
	if err != nil {
		return "", err
	}
	typeTriple, err := graph.IRITriple(resourceURI, vocab.RdfType, resourceType)
	if err != nil {
		return "", err
	}
	uuidTriple, err := graph.LiteralTriple(resourceURI, vocab.MuUUID, id)
	if err != nil {
		return "", err
	}

	err = l.store.Update(ctx, graph.InsertDataStatement(l.graphURI, []string{link, typeTriple, uuidTriple}))
	if err != nil {
		return "", fmt.Errorf("failed to create %s for %s: %w", resourceType, owner, err)
	}
	return resourceURI, nil
}

// ensureEntity resolves a product or supplier by its external id and
// source marker, creating the entity plus its Identifier on first
// sighting. The notation is the only join key: later payloads with the
// same external id always map onto the same internal URI.
func (l *Loader) ensureEntity(ctx context.Context, entityType, uriBase string, externalId int64) (string, error) {
	notation := fmt.Sprintf("%d", externalId)
	notationTerm, err := graph.LiteralTerm(notation)
	if err != nil {
		return "", err
	}
	sourceTerm, err := graph.LiteralTerm(vocab.SourceSystem)
	if err != nil {
		return "", err
	}

	query := fmt.Sprintf(`SELECT ?entity WHERE { GRAPH <%s> {
  ?entity <%s> <%s> .
  ?entity <%s> ?identifier .
  ?identifier <%s> %s .
  ?identifier <%s> %s .
} } LIMIT 1`,
		l.graphURI,
		vocab.RdfType, entityType,
		vocab.IdentifierRel,
		vocab.Notation, notationTerm,
		vocab.Creator, sourceTerm)

	bindings, err := l.store.Select(ctx, query)
	if err != nil {
		return "", err
	}
	if len(bindings) > 0 {
		return bindings[0]["entity"], nil
	}

	entityId := uuid.NewString()
	entityURI := uriBase + entityId
	identifierId := uuid.NewString()
	identifierURI := vocab.IdentifierBase + identifierId

	builder := newTripleBuilder()
	builder.iri(entityURI, vocab.RdfType, entityType)
	builder.literal(entityURI, vocab.MuUUID, entityId)
	builder.iri(entityURI, vocab.IdentifierRel, identifierURI)
	builder.iri(identifierURI, vocab.RdfType, vocab.IdentifierType)
	builder.literal(identifierURI, vocab.MuUUID, identifierId)
	builder.literal(identifierURI, vocab.Notation, notation)
	builder.literal(identifierURI, vocab.Creator, vocab.SourceSystem)
	triples, err := builder.build()
	if err != nil {
		return "", err
	}

	err = l.store.Update(ctx, graph.InsertDataStatement(l.graphURI, triples))
	if err != nil {
		return "", fmt.Errorf("failed to create %s with external id %d: %w", entityType, externalId, err)
	}
	return entityURI, nil
}
