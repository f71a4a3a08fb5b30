// Package export drives export jobs: submitting, polling to a terminal status, and listing.
package export

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/auth"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/models"
	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/ratelimit"
)

// JobAPI is the part of the API client the poller needs.
type JobAPI interface {
	CreateExport(ctx context.Context, spec models.ExportCreate) (*models.Export, error)
	RetrieveExport(ctx context.Context, id string) (*models.Export, error)
	SetAccessToken(token string)
}

// TokenEnsurer returns a token that is safe to use for the next call.
type TokenEnsurer interface {
	EnsureValid(ctx context.Context, tok auth.Token) (auth.Token, error)
}

// FailedError is returned when a job ends interrupted.
type FailedError struct {
	ID  string
	Job *models.Export
}

func (e *FailedError) Error() string {
	return fmt.Sprintf("export %s ended with errors", e.ID)
}

// Poller owns one job and one access token for the length of a polling session.
type Poller struct {
	API     JobAPI
	Tokens  TokenEnsurer
	Budgets ratelimit.Budgets

	// OnStatus is called after every retrieve with the job as it now stands.
	OnStatus func(job *models.Export)

	token auth.Token
	sleep func(ctx context.Context, d time.Duration) error
}

// NewPoller returns a poller that starts with token and paces itself with budgets.
func NewPoller(api JobAPI, tokens TokenEnsurer, token auth.Token, budgets ratelimit.Budgets) *Poller {
	return &Poller{
		API:     api,
		Tokens:  tokens,
		Budgets: budgets,
		token:   token,
		sleep:   auth.Sleep,
	}
}

// WithSleep replaces the wait between polls.
func (p *Poller) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Poller {
	p.sleep = sleep
	return p
}

// Token returns the token the poller currently holds.
func (p *Poller) Token() auth.Token {
	return p.token
}

// ensureToken refreshes the held token if needed and hands a new one to the API client.
func (p *Poller) ensureToken(ctx context.Context) error {
	tok, err := p.Tokens.EnsureValid(ctx, p.token)
	if err != nil {
		return err
	}
	if tok.Raw != p.token.Raw {
		p.token = tok
		p.API.SetAccessToken(tok.Raw)
	}
	return nil
}

// Run polls job until it is completed or interrupted.
//
// Each iteration makes sure the token is valid, retrieves the job once, and then waits
// Budgets.ComputeDelay() unless the job reached a terminal status. A job that is already
// terminal is returned without any call. An interrupted job yields *FailedError.
// Cancelling ctx stops the loop at the next call or wait.
func (p *Poller) Run(ctx context.Context, job *models.Export) (*models.Export, error) {
	if job == nil || job.ID == "" {
		return nil, errors.New("export job has no id")
	}

	current := job.Clone()
	delay := p.Budgets.ComputeDelay()
	logger := log.With().Str("export_id", current.ID).Logger()

	for !current.IsTerminal() {
		if err := p.ensureToken(ctx); err != nil {
			return current, err
		}

		latest, err := p.API.RetrieveExport(ctx, current.ID)
		if err != nil {
			return current, fmt.Errorf("failed to retrieve export %s: %w", current.ID, err)
		}

		if models.StatusRank(latest.Status) < models.StatusRank(current.Status) {
			logger.Warn().
				Str("status", current.Status).
				Str("reported", latest.Status).
				Msg("Ignoring status regression")
			latest.Status = current.Status
		} else if latest.Status != current.Status {
			logger.Debug().Str("from", current.Status).Str("to", latest.Status).Msg("Export status changed")
		}
		current = latest

		if p.OnStatus != nil {
			p.OnStatus(current.Clone())
		}
		if current.IsTerminal() {
			break
		}

		if err := p.sleep(ctx, delay); err != nil {
			return current, err
		}
	}

	if current.Status == constants.StatusInterrupted {
		return current, &FailedError{ID: current.ID, Job: current}
	}
	return current, nil
}
