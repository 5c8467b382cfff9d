// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"context"
	"fmt"
	"strings"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/veeakker/lfw-import/internal/config"
)

// A canned SELECT response, matched by substring of the query
type MockSelect struct {
	Contains string
	Bindings []Binding
}

// A canned ASK response, matched by substring of the query
type MockAsk struct {
	Contains string
	Result   bool
}

// MockStore is a scripted Store for unit tests. Reads are answered from
// the canned responses; writes are recorded for assertions. Queries with
// no matching response return no rows / false, the same as an empty store.
type MockStore struct {
	SelectResponses []MockSelect
	AskResponses    []MockAsk

	// every query/update that was issued, in order
	Queries []string
	Asks    []string
	Updates [][]string
}

var _ Store = &MockStore{}

func (m *MockStore) Select(_ context.Context, query string) ([]Binding, error) {
	m.Queries = append(m.Queries, query)
	for _, response := range m.SelectResponses {
		if strings.Contains(query, response.Contains) {
			return response.Bindings, nil
		}
	}
	return nil, nil
}

func (m *MockStore) Ask(_ context.Context, query string) (bool, error) {
	m.Asks = append(m.Asks, query)
	for _, response := range m.AskResponses {
		if strings.Contains(query, response.Contains) {
			return response.Result, nil
		}
	}
	return false, nil
}

func (m *MockStore) Update(_ context.Context, statements ...string) error {
	m.Updates = append(m.Updates, statements)
	return nil
}

// AllUpdateStatements flattens every recorded batch into one slice
func (m *MockStore) AllUpdateStatements() []string {
	var all []string
	for _, batch := range m.Updates {
		all = append(all, batch...)
	}
	return all
}

// UpdatesContaining returns the recorded statements mentioning the fragment
func (m *MockStore) UpdatesContaining(fragment string) []string {
	var matched []string
	for _, statement := range m.AllUpdateStatements() {
		if strings.Contains(statement, fragment) {
			matched = append(matched, statement)
		}
	}
	return matched
}

type FusekiContainer struct {
	Container testcontainers.Container
	Client    *Client
}

// fusekiContainerRequest describes the shared fuseki container.
// Reused containers must carry a fixed name so testcontainers can find
// a previous instance instead of rejecting the request.
func fusekiContainerRequest() testcontainers.GenericContainerRequest {
	return testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Name:         "lfw-import-fuseki",
			Image:        "secoresearch/fuseki",
			ExposedPorts: []string{"3030/tcp"},
			Env:          map[string]string{"ENABLE_UPDATE": "true"},
			WaitingFor:   wait.ForListeningPort("3030/tcp"),
		},
		Started: true,
		Reuse:   true,
	}
}

// Spin up a local fuseki container and the associated client
func NewFusekiContainer() (FusekiContainer, error) {
	ctx := context.Background()
	fusekiC, err := testcontainers.GenericContainer(ctx, fusekiContainerRequest())
	if err != nil {
		return FusekiContainer{}, err
	}

	port, err := fusekiC.MappedPort(ctx, "3030/tcp")
	if err != nil {
		return FusekiContainer{}, err
	}
	host, err := fusekiC.Host(ctx)
	if err != nil {
		return FusekiContainer{}, err
	}

	client := NewClient(config.SparqlConfig{
		Endpoint: fmt.Sprintf("http://%s:%s/ds", host, port.Port()),
		Graph:    "http://mu.semte.ch/application",
	})

	return FusekiContainer{Container: fusekiC, Client: client}, nil
}
