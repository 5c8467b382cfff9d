// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/veeakker/lfw-import/internal/opentelemetry"
)

// ErrHarvestInProgress signals that another harvest holds the lock.
// Callers report it and back off instead of queueing behind the run.
var ErrHarvestInProgress = errors.New("a harvest is already in progress")

// RunHarvest walks the full marketplace catalog and converges the graph.
// Only one harvest runs at a time; a concurrent call fails fast with
// ErrHarvestInProgress. Any failure marks the job as errored and stops
// the run, leaving already converged products in place.
func (l *Loader) RunHarvest(ctx context.Context) error {
	if !l.harvestLock.TryAcquire(1) {
		return ErrHarvestInProgress
	}
	defer l.harvestLock.Release(1)

	span, ctx := opentelemetry.SubSpanFromCtxWithName(ctx, "harvest")
	defer span.End()

	started := time.Now()

	jobURI, err := l.CreateLoadJob(ctx)
	if err != nil {
		return fmt.Errorf("failed to create harvest job: %w", err)
	}
	if err := l.StartJob(ctx, jobURI); err != nil {
		return fmt.Errorf("failed to start harvest job: %w", err)
	}

	log.Infof("started harvest job %s", jobURI)

	if err := l.runHarvestBody(ctx, jobURI); err != nil {
		log.Errorf("harvest job %s failed: %v", jobURI, err)
		if statusErr := l.ErrorJob(ctx, jobURI); statusErr != nil {
			log.Errorf("could not mark harvest job %s as errored: %v", jobURI, statusErr)
		}
		return err
	}

	if err := l.FinishJob(ctx, jobURI); err != nil {
		return fmt.Errorf("failed to finish harvest job: %w", err)
	}

	opentelemetry.RecordHarvestDuration(jobURI, time.Since(started).Seconds())
	log.Infof("finished harvest job %s in %s", jobURI, time.Since(started))
	return nil
}

func (l *Loader) runHarvestBody(ctx context.Context, jobURI string) error {
	if err := l.LoadSuppliers(ctx); err != nil {
		return fmt.Errorf("failed to load suppliers: %w", err)
	}
	return l.loadPages(ctx, jobURI)
}

// loadPages walks the paged catalog listing until the marketplace
// reports the last page. Each listed product triggers a detail fetch
// so the reconciler sees ingredients, allergens and the structured
// supplier rather than the listing summary.
func (l *Loader) loadPages(ctx context.Context, jobURI string) error {
	for pageIndex := 0; ; pageIndex++ {
		page, err := l.market.FetchCatalogPage(ctx, pageIndex)
		if err != nil {
			return fmt.Errorf("failed to fetch catalog page %d: %w", pageIndex, err)
		}

		log.Debugf("loading catalog page %d with %d products", pageIndex, len(page.Content))

		for _, listed := range page.Content {
			err := l.LoadProduct(ctx, listedAsDetail(listed), LoadProductOptions{
				External: true,
				JobURI:   jobURI,
			})
			if err != nil {
				opentelemetry.CountProductFailure(listed.Id)
				return err
			}
		}

		if page.Last {
			return nil
		}
	}
}
