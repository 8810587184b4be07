package cron

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/multierr"

	"storefront-backend/pkg/logger"
	"storefront-backend/pkg/metrics"
)

type couponSweeper interface {
	DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
	DeactivateExhausted(ctx context.Context) (int64, error)
}

// CouponSweepJobParams configure the coupon retirement job.
type CouponSweepJobParams struct {
	Logger  *logger.Logger
	Coupons couponSweeper
	Metrics *metrics.JobMetrics
}

// NewCouponSweepJob builds the job that retires coupons which can no longer
// be redeemed, either because their window closed or their limit was consumed.
func NewCouponSweepJob(params CouponSweepJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Coupons == nil {
		return nil, fmt.Errorf("coupon repository required")
	}
	return &couponSweepJob{
		logg:    params.Logger,
		coupons: params.Coupons,
		metrics: params.Metrics,
		now:     time.Now,
	}, nil
}

type couponSweepJob struct {
	logg    *logger.Logger
	coupons couponSweeper
	metrics *metrics.JobMetrics
	now     func() time.Time
}

func (j *couponSweepJob) Name() string { return "coupon-sweep" }

func (j *couponSweepJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.retireExpired(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.retireExhausted(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *couponSweepJob) retireExpired(ctx context.Context) error {
	retired, err := j.coupons.DeactivateExpiredBefore(ctx, j.now().UTC())
	if err != nil {
		return fmt.Errorf("retire expired coupons: %w", err)
	}
	j.metrics.AddPurged(j.Name(), retired)
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": retired})
	j.logg.Info(logCtx, "expired coupon sweep complete")
	return nil
}

func (j *couponSweepJob) retireExhausted(ctx context.Context) error {
	retired, err := j.coupons.DeactivateExhausted(ctx)
	if err != nil {
		return fmt.Errorf("retire exhausted coupons: %w", err)
	}
	j.metrics.AddPurged(j.Name(), retired)
	logCtx := j.logg.WithFields(ctx, map[string]any{"count": retired})
	j.logg.Info(logCtx, "exhausted coupon sweep complete")
	return nil
}
