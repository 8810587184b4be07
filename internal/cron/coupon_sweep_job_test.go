package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-backend/pkg/logger"
)

type fakeCouponSweeper struct {
	expiredCutoff   time.Time
	expiredErr      error
	exhaustedErr    error
	expiredCalls    int
	exhaustedCalls  int
	expiredRetired  int64
	exhaustedKilled int64
}

func (f *fakeCouponSweeper) DeactivateExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.expiredCalls++
	f.expiredCutoff = cutoff
	if f.expiredErr != nil {
		return 0, f.expiredErr
	}
	return f.expiredRetired, nil
}

func (f *fakeCouponSweeper) DeactivateExhausted(ctx context.Context) (int64, error) {
	f.exhaustedCalls++
	if f.exhaustedErr != nil {
		return 0, f.exhaustedErr
	}
	return f.exhaustedKilled, nil
}

func TestCouponSweepJobRunsBothSweeps(t *testing.T) {
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	repo := &fakeCouponSweeper{expiredRetired: 3, exhaustedKilled: 2}
	job := newCouponSweepJob(t, repo)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !repo.expiredCutoff.Equal(now) {
		t.Fatalf("expected cutoff %s, got %s", now, repo.expiredCutoff)
	}
	if repo.expiredCalls != 1 || repo.exhaustedCalls != 1 {
		t.Fatalf("expected one call per sweep, got %d and %d", repo.expiredCalls, repo.exhaustedCalls)
	}
}

func TestCouponSweepJobContinuesPastFirstFailure(t *testing.T) {
	repo := &fakeCouponSweeper{expiredErr: errors.New("boom")}
	job := newCouponSweepJob(t, repo)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if repo.exhaustedCalls != 1 {
		t.Fatalf("expected exhausted sweep to run despite earlier failure, got %d calls", repo.exhaustedCalls)
	}
}

func newCouponSweepJob(t *testing.T, repo *fakeCouponSweeper) *couponSweepJob {
	t.Helper()
	jobIface, err := NewCouponSweepJob(CouponSweepJobParams{
		Logger:  logger.New(logger.Options{ServiceName: "test"}),
		Coupons: repo,
	})
	if err != nil {
		t.Fatalf("NewCouponSweepJob: %v", err)
	}
	job, ok := jobIface.(*couponSweepJob)
	if !ok {
		t.Fatalf("expected couponSweepJob, got %T", jobIface)
	}
	return job
}
