// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package loader reconciles marketplace payloads into the triplestore.
// Every entity is re-found across runs through its Identifier (external
// id notation plus source marker) so internal URIs stay stable; state is
// converged with delete-then-insert replacements per property group.
package loader

import (
	"golang.org/x/sync/semaphore"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/market"
	"github.com/veeakker/lfw-import/internal/storage"
)

// Loader wires the marketplace API, the triplestore and file storage
// together for one store / one pickup point.
type Loader struct {
	store    graph.Store
	market   market.API
	files    storage.FileStorage
	graphURI string

	// serializes harvests; two concurrent runs would race the
	// find-or-create paths and mint duplicate sub-resources
	harvestLock *semaphore.Weighted
}

func New(store graph.Store, marketAPI market.API, files storage.FileStorage, graphURI string) *Loader {
	return &Loader{
		store:       store,
		market:      marketAPI,
		files:       files,
		graphURI:    graphURI,
		harvestLock: semaphore.NewWeighted(1),
	}
}

// tripleBuilder accumulates serialized triples and remembers the first
// serialization error so call sites don't check every append
type tripleBuilder struct {
	triples []string
	err     error
}

func newTripleBuilder() *tripleBuilder {
	return &tripleBuilder{}
}

func (b *tripleBuilder) iri(subject, predicate, object string) {
	if b.err != nil {
		return
	}
	triple, err := graph.IRITriple(subject, predicate, object)
	if err != nil {
		b.err = err
		return
	}
	b.triples = append(b.triples, triple)
}

func (b *tripleBuilder) literal(subject, predicate string, value interface{}) {
	if b.err != nil {
		return
	}
	triple, err := graph.LiteralTriple(subject, predicate, value)
	if err != nil {
		b.err = err
		return
	}
	b.triples = append(b.triples, triple)
}

func (b *tripleBuilder) build() ([]string, error) {
	return b.triples, b.err
}
