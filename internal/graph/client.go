// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package graph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/veeakker/lfw-import/internal/config"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

// Client talks to a SPARQL 1.1 endpoint over HTTP. Queries go out as GET
// requests with a query parameter, updates as POST bodies with the
// application/sparql-update content type.
type Client struct {
	SparqlConf config.SparqlConfig
	httpClient *http.Client
}

var _ Store = &Client{}

// Create a new client struct to connect to the triplestore
func NewClient(conf config.SparqlConfig) *Client {
	return &Client{
		SparqlConf: conf,
		httpClient: &http.Client{},
	}
}

// NewClientWithHTTP swaps in a custom http client; used by tests
// to mock the endpoint at the transport level
func NewClientWithHTTP(conf config.SparqlConfig, httpClient *http.Client) *Client {
	return &Client{
		SparqlConf: conf,
		httpClient: httpClient,
	}
}

func (client *Client) runQuery(ctx context.Context, query string) ([]byte, error) {
	params := url.Values{}
	params.Add("query", query)
	req, err := http.NewRequestWithContext(ctx, "GET", fmt.Sprintf("%s?%s", client.SparqlConf.Endpoint, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/sparql-results+json")

	if client.SparqlConf.Authenticate {
		req.SetBasicAuth(client.SparqlConf.Username, client.SparqlConf.Password)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("response Status: %s with error %s", resp.Status, string(body))
	}
	return body, nil
}

// Run a SELECT query and return one map per result row
func (client *Client) Select(ctx context.Context, query string) ([]Binding, error) {
	log.Tracef("SPARQL: %s", query)

	body, err := client.runQuery(ctx, query)
	if err != nil {
		return nil, err
	}

	var bindings []Binding
	rows := gjson.GetBytes(body, "results.bindings")
	rows.ForEach(func(_, row gjson.Result) bool {
		binding := Binding{}
		row.ForEach(func(variable, cell gjson.Result) bool {
			binding[variable.String()] = cell.Get("value").String()
			return true
		})
		bindings = append(bindings, binding)
		return true
	})

	return bindings, nil
}

// holds results from the sparql ASK query
type ask struct {
	Head    map[string]interface{} `json:"head"`    // Map for flexible JSON object
	Boolean bool                   `json:"boolean"` // Boolean value
}

// Run an ASK query against the store
func (client *Client) Ask(ctx context.Context, query string) (bool, error) {
	log.Tracef("SPARQL: %s", query)

	body, err := client.runQuery(ctx, query)
	if err != nil {
		return false, err
	}

	ask := ask{}
	if err := json.Unmarshal(body, &ask); err != nil {
		return false, err
	}

	return ask.Boolean, nil
}

// Send update statements to the store as one ;-joined batch
func (client *Client) Update(ctx context.Context, statements ...string) error {
	if len(statements) == 0 {
		return nil
	}

	fullReq := strings.Join(statements, ";\n")
	log.Tracef("SPARQL UPDATE: %s", fullReq)

	req, err := http.NewRequestWithContext(ctx, "POST", client.SparqlConf.Endpoint, bytes.NewBufferString(fullReq))
	if err != nil {
		return err
	}

	req.Header.Set("Content-Type", "application/sparql-update")

	if client.SparqlConf.Authenticate {
		req.SetBasicAuth(client.SparqlConf.Username, client.SparqlConf.Password)
	}

	resp, err := client.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != 200 && resp.StatusCode != 204 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("response Status: %s with error %s", resp.Status, err)
		}
		return fmt.Errorf("response Status: %s with error %s", resp.Status, string(body))
	}

	return nil
}
