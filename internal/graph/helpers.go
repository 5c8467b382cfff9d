// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"fmt"
	"strings"

	"github.com/knakk/rdf"
)

/*
The reconciliation code converges the store to the latest payload with a
delete-then-insert protocol per property group:

	DELETE WHERE { GRAPH <g> { <subject> <p1> ?v } };
	DELETE WHERE { GRAPH <g> { <subject> <p2> ?v } };
	INSERT DATA {
		GRAPH <g> {
			<subject> <p1> "new value" .
			...
		}
	}

Only the listed predicates are ever deleted, so curated triples outside
the group survive a harvest.
*/

// A PropertyGroup is the unit of replacement: a subject, the predicate
// allowlist to clear, and the freshly serialized triples to insert.
// Inserts may mention other subjects (e.g. a linked sub-resource).
type PropertyGroup struct {
	Subject    string
	Predicates []string
	Inserts    []string
}

// IRITriple serializes `<s> <p> <o> .` with IRI validation
func IRITriple(s, p, o string) (string, error) {
	subj, err := rdf.NewIRI(s)
	if err != nil {
		return "", fmt.Errorf("invalid subject iri %s: %w", s, err)
	}
	pred, err := rdf.NewIRI(p)
	if err != nil {
		return "", fmt.Errorf("invalid predicate iri %s: %w", p, err)
	}
	obj, err := rdf.NewIRI(o)
	if err != nil {
		return "", fmt.Errorf("invalid object iri %s: %w", o, err)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}.Serialize(rdf.NTriples), nil
}

// LiteralTriple serializes a triple whose object is a literal. The value
// may be a string, bool, number or time.Time; the datatype is inferred.
func LiteralTriple(s, p string, value interface{}) (string, error) {
	subj, err := rdf.NewIRI(s)
	if err != nil {
		return "", fmt.Errorf("invalid subject iri %s: %w", s, err)
	}
	pred, err := rdf.NewIRI(p)
	if err != nil {
		return "", fmt.Errorf("invalid predicate iri %s: %w", p, err)
	}
	obj, err := rdf.NewLiteral(value)
	if err != nil {
		return "", fmt.Errorf("invalid literal %v: %w", value, err)
	}
	return rdf.Triple{Subj: subj, Pred: pred, Obj: obj}.Serialize(rdf.NTriples), nil
}

// LiteralTerm serializes a single literal value for use inside a query
// pattern, with proper escaping
func LiteralTerm(value interface{}) (string, error) {
	literal, err := rdf.NewLiteral(value)
	if err != nil {
		return "", fmt.Errorf("invalid literal %v: %w", value, err)
	}
	return literal.Serialize(rdf.NTriples), nil
}

// ReplacementStatements renders the delete-then-insert batch for a set of
// property groups. All deletes come first, then a single INSERT DATA,
// so the batch reads as one logical replacement.
func ReplacementStatements(graphURI string, groups ...PropertyGroup) []string {
	var statements []string
	var inserts []string

	for _, group := range groups {
		for _, predicate := range group.Predicates {
			statements = append(statements,
				fmt.Sprintf("DELETE WHERE { GRAPH <%s> { <%s> <%s> ?v } }", graphURI, group.Subject, predicate))
		}
		inserts = append(inserts, group.Inserts...)
	}

	if len(inserts) > 0 {
		statements = append(statements, InsertDataStatement(graphURI, inserts))
	}

	return statements
}

// InsertDataStatement renders a plain INSERT DATA for pre-serialized triples
func InsertDataStatement(graphURI string, triples []string) string {
	var queryBuilder strings.Builder
	queryBuilder.WriteString("INSERT DATA {\n")
	queryBuilder.WriteString(fmt.Sprintf("  GRAPH <%s> {\n", graphURI))
	for _, triple := range triples {
		queryBuilder.WriteString("    " + strings.TrimRight(triple, "\n") + "\n")
	}
	queryBuilder.WriteString("  }\n}")
	return queryBuilder.String()
}
