// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/graph"
	"github.com/veeakker/lfw-import/internal/vocab"
)

// CreateLoadJob mints the graph record for one harvest run. The job has
// no status until StartJob; every product touched during the run gets a
// provenance edge back to it.
func (l *Loader) CreateLoadJob(ctx context.Context) (string, error) {
	jobId := uuid.NewString()
	jobURI := vocab.HarvestJobBase + jobId

	builder := newTripleBuilder()
	builder.iri(jobURI, vocab.RdfType, vocab.HarvestJobType)
	builder.literal(jobURI, vocab.MuUUID, jobId)
	builder.literal(jobURI, vocab.Created, time.Now())
	triples, err := builder.build()
	if err != nil {
		return "", err
	}

	if err := l.store.Update(ctx, graph.InsertDataStatement(l.graphURI, triples)); err != nil {
		return "", fmt.Errorf("failed to create harvest job: %w", err)
	}
	log.Debugf("created harvest job %s", jobURI)
	return jobURI, nil
}

func (l *Loader) StartJob(ctx context.Context, jobURI string) error {
	return l.setJobStatus(ctx, jobURI, vocab.JobStatusRunning)
}

func (l *Loader) FinishJob(ctx context.Context, jobURI string) error {
	return l.setJobStatus(ctx, jobURI, vocab.JobStatusFinished)
}

func (l *Loader) ErrorJob(ctx context.Context, jobURI string) error {
	return l.setJobStatus(ctx, jobURI, vocab.JobStatusError)
}

// setJobStatus replaces whatever status edge exists with the new one.
// The orchestrator only ever moves forward (running, then one terminal
// state), so no transition table is enforced here.
func (l *Loader) setJobStatus(ctx context.Context, jobURI, status string) error {
	statusTriple, err := graph.IRITriple(jobURI, vocab.JobStatus, status)
	if err != nil {
		return err
	}

	statements := graph.ReplacementStatements(l.graphURI, graph.PropertyGroup{
		Subject:    jobURI,
		Predicates: []string{vocab.JobStatus},
		Inserts:    []string{statusTriple},
	})
	if err := l.store.Update(ctx, statements...); err != nil {
		return fmt.Errorf("failed to set job %s to %s: %w", jobURI, status, err)
	}
	return nil
}

// tagWithJob records that the product was produced by the given run.
// Edges from earlier runs are left in place as provenance history.
func (l *Loader) tagWithJob(ctx context.Context, productURI, jobURI string) error {
	edge, err := graph.IRITriple(productURI, vocab.GeneratedBy, jobURI)
	if err != nil {
		return err
	}
	return l.store.Update(ctx, graph.InsertDataStatement(l.graphURI, []string{edge}))
}
