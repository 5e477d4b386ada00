package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"tellweb/internal/models"
)

// ProfileFetcher is the slice of the platform client the watcher needs.
type ProfileFetcher interface {
	Me(ctx context.Context, accessToken string) (*models.Profile, error)
}

// LicenseWatcher reconciles the race between checkout redirect-back and
// webhook-driven license issuance. The two are causally related but share no
// transaction: the browser can land on the account page before the webhook
// has been processed. The watcher polls the profile on a fixed interval with
// a bounded attempt budget until a usable license appears.
//
// Checks never overlap: the loop is sequential, so a slow platform response
// delays the next tick instead of piling up requests.
type LicenseWatcher struct {
	Fetcher     ProfileFetcher
	Interval    time.Duration
	MaxAttempts int
	Logger      *slog.Logger
}

// Wait polls until a non-revoked license with a populated key appears, the
// attempt budget runs out (models.ErrLicensePending), the session turns out
// to be expired (models.ErrUnauthorized), or ctx is cancelled. Transient
// fetch failures are logged and retried on the next tick.
func (w *LicenseWatcher) Wait(ctx context.Context, accessToken string) (*models.License, error) {
	logger := w.Logger
	if logger == nil {
		logger = slog.Default()
	}
	attempts := w.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		profile, err := w.Fetcher.Me(ctx, accessToken)
		switch {
		case err == nil:
			if lic := profile.ReadyLicense(); lic != nil {
				return lic, nil
			}
		case errors.Is(err, models.ErrUnauthorized):
			return nil, err
		case ctx.Err() != nil:
			return nil, ctx.Err()
		default:
			logger.Warn("license watch: profile fetch failed", "attempt", attempt, "err", err)
		}

		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(w.Interval):
		}
	}
	return nil, models.ErrLicensePending
}
