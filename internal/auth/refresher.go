package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/commercelayer/commercelayer-cli-plugin-exporter/internal/constants"
)

// RefreshError reports a failed token refresh. It ends the command that needed the token.
type RefreshError struct {
	Err error
}

func (e *RefreshError) Error() string {
	return fmt.Sprintf("access token refresh failed: %v", e.Err)
}

func (e *RefreshError) Unwrap() error {
	return e.Err
}

// ErrNoCredentials is the cause of a RefreshError when only a bearer token was supplied.
var ErrNoCredentials = errors.New("access token expired and no client credentials are configured")

// Refresher replaces access tokens that are about to expire.
//
// A token is about to expire once now reaches exp - Margin. Before asking for a new one the
// refresher waits Margin + Settle so the issuer's clock is past the old expiry.
type Refresher struct {
	Source      TokenSource
	Credentials Credentials
	Margin      time.Duration
	Settle      time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewRefresher returns a refresher with the default 2s margin and 1s settle delay.
func NewRefresher(src TokenSource, creds Credentials) *Refresher {
	return &Refresher{
		Source:      src,
		Credentials: creds,
		Margin:      constants.TokenSecurityMargin,
		Settle:      constants.TokenSettleDelay,
		now:         time.Now,
		sleep:       Sleep,
	}
}

// WithClock replaces the time source and the wait used before refreshing.
func (r *Refresher) WithClock(now func() time.Time, sleep func(ctx context.Context, d time.Duration) error) *Refresher {
	r.now = now
	r.sleep = sleep
	return r
}

// NeedsRefresh reports whether tok expires within the margin.
func (r *Refresher) NeedsRefresh(tok Token) bool {
	return !r.now().Before(tok.Claims.Expiry().Add(-r.Margin))
}

// EnsureValid returns tok unchanged when it is not about to expire. Otherwise it waits,
// requests a new token, and returns it decoded. Any failure is a *RefreshError.
func (r *Refresher) EnsureValid(ctx context.Context, tok Token) (Token, error) {
	if !r.NeedsRefresh(tok) {
		return tok, nil
	}

	wait := r.Margin + r.Settle
	log.Debug().
		Time("expires_at", tok.Claims.Expiry()).
		Dur("wait", wait).
		Msg("Access token about to expire, refreshing")

	if r.Source == nil {
		return tok, &RefreshError{Err: ErrNoCredentials}
	}
	if err := r.sleep(ctx, wait); err != nil {
		return tok, err
	}

	raw, err := r.Source.GetAccessToken(ctx, r.Credentials)
	if err != nil {
		return tok, &RefreshError{Err: err}
	}

	fresh, err := ParseToken(raw)
	if err != nil {
		return tok, &RefreshError{Err: err}
	}

	log.Debug().Time("expires_at", fresh.Claims.Expiry()).Msg("Access token refreshed")
	return fresh, nil
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
