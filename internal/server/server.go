// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the harvest trigger over http. The service sits
// behind a mu dispatcher which forwards the caller's session uri in a
// header; only sessions of administrators may start a harvest.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/loader"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// SessionHeader carries the session uri set by the mu identifier proxy
const SessionHeader = "mu-session-id"

// Harvester runs one full catalog harvest
type Harvester interface {
	RunHarvest(ctx context.Context) error
}

// Authorizer decides whether a session may trigger a harvest
type Authorizer interface {
	MayHarvest(ctx context.Context, sessionURI string) (bool, error)
}

// GraphAuthorizer resolves the session to its account in the triplestore
// and requires the administrator role
type GraphAuthorizer struct {
	Store    graph.Store
	GraphURI string
}

func (g GraphAuthorizer) MayHarvest(ctx context.Context, sessionURI string) (bool, error) {
	if sessionURI == "" {
		return false, nil
	}
	roleTerm, err := graph.LiteralTerm(vocab.AdministratorRole)
	if err != nil {
		return false, err
	}
	return g.Store.Ask(ctx, fmt.Sprintf(
		"ASK WHERE { GRAPH <%s> { <%s> <%s> ?account . ?account <%s> %s } }",
		g.GraphURI, sessionURI, vocab.SessionAccount, vocab.AccountRole, roleTerm))
}

// AllowAll skips authorization, for deployments without a login stack
type AllowAll struct{}

func (AllowAll) MayHarvest(context.Context, string) (bool, error) {
	return true, nil
}

type Server struct {
	harvester  Harvester
	authorizer Authorizer
	port       int
}

func New(harvester Harvester, authorizer Authorizer, port int) *Server {
	return &Server{
		harvester:  harvester,
		authorizer: authorizer,
		port:       port,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("POST /harvest", s.handleHarvest)
	return mux
}

// ListenAndServe blocks until the listener fails or ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.port),
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		if err := httpServer.Shutdown(context.Background()); err != nil {
			log.Errorf("error shutting down http server: %v", err)
		}
	}()

	log.Infof("listening on %s", httpServer.Addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "lfw-import is up")
}

// handleHarvest runs a harvest synchronously so the caller sees the
// outcome in the response status
func (s *Server) handleHarvest(w http.ResponseWriter, r *http.Request) {
	allowed, err := s.authorizer.MayHarvest(r.Context(), r.Header.Get(SessionHeader))
	if err != nil {
		log.Errorf("could not authorize session: %v", err)
		http.Error(w, "could not authorize session", http.StatusInternalServerError)
		return
	}
	if !allowed {
		http.Error(w, "only administrators may start a harvest", http.StatusForbidden)
		return
	}

	err = s.harvester.RunHarvest(r.Context())
	switch {
	case errors.Is(err, loader.ErrHarvestInProgress):
		http.Error(w, err.Error(), http.StatusConflict)
	case err != nil:
		log.Errorf("harvest failed: %v", err)
		http.Error(w, "harvest failed, see service logs", http.StatusInternalServerError)
	default:
		fmt.Fprintln(w, "harvest finished")
	}
}
