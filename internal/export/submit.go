package export

import (
	"context"
	"errors"
	"fmt"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
)

// ErrNoRecords is returned by Submit when the new job has nothing to export.
var ErrNoRecords = errors.New("no records found")

// Submit creates an export job and polls it to the end.
//
// started is called once with the created job, before any polling. A job created with
// zero records is returned together with ErrNoRecords and never polled.
func Submit(ctx context.Context, p *Poller, spec models.ExportCreate, started func(*models.Export)) (*models.Export, error) {
	if err := p.ensureToken(ctx); err != nil {
		return nil, err
	}

	job, err := p.API.CreateExport(ctx, spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create export: %w", err)
	}

	if job.RecordsCount == 0 {
		return job, ErrNoRecords
	}

	if started != nil {
		started(job.Clone())
	}
	return p.Run(ctx, job)
}
