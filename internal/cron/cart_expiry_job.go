package cron

import (
	"context"
	"fmt"
	"time"

	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

const defaultGuestCartTTL = 720 * time.Hour

type guestCartPurger interface {
	DeleteGuestLinesBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// CartExpiryJobParams configure the guest cart cleanup job.
type CartExpiryJobParams struct {
	Logger  *logger.Logger
	Carts   guestCartPurger
	TTL     time.Duration
	Metrics *metrics.JobMetrics
}

// NewCartExpiryJob builds the job that deletes guest cart lines older than
// the configured TTL. User-owned lines are never touched.
func NewCartExpiryJob(params CartExpiryJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	ttl := params.TTL
	if ttl <= 0 {
		ttl = defaultGuestCartTTL
	}
	return &cartExpiryJob{
		logg:    params.Logger,
		carts:   params.Carts,
		ttl:     ttl,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type cartExpiryJob struct {
	logg    *logger.Logger
	carts   guestCartPurger
	ttl     time.Duration
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func (j *cartExpiryJob) Name() string { return "cart-expiry" }

func (j *cartExpiryJob) Run(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.ttl)
	purged, err := j.carts.DeleteGuestLinesBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("purge stale guest cart lines: %w", err)
	}
	j.metrics.AddPurged(j.Name(), purged)
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": purged, "cutoff": cutoff})
	j.logg.Info(logCtx, "guest cart purge complete")
	return nil
}
