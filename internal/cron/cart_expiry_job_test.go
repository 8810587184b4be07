package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"storefront-backend/pkg/logger"
)

type fakeCartPurger struct {
	lastCutoff time.Time
	purged     int64
	err        error
	called     int
}

func (f *fakeCartPurger) DeleteGuestLinesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	f.called++
	f.lastCutoff = cutoff
	if f.err != nil {
		return 0, f.err
	}
	return f.purged, nil
}

func TestCartExpiryJobPurgesLinesOlderThanTTL(t *testing.T) {
	now := time.Date(2026, 2, 14, 9, 0, 0, 0, time.UTC)
	repo := &fakeCartPurger{purged: 17}
	job := newCartExpiryJob(t, repo, 72*time.Hour)
	job.now = func() time.Time { return now }

	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}

	expectedCutoff := now.Add(-72 * time.Hour)
	if !repo.lastCutoff.Equal(expectedCutoff) {
		t.Fatalf("expected cutoff %s, got %s", expectedCutoff, repo.lastCutoff)
	}
	if repo.called != 1 {
		t.Fatalf("expected purger called once, got %d", repo.called)
	}
}

func TestCartExpiryJobDefaultsTTL(t *testing.T) {
	job := newCartExpiryJob(t, &fakeCartPurger{}, 0)
	if job.ttl != defaultGuestCartTTL {
		t.Fatalf("expected default ttl %s, got %s", defaultGuestCartTTL, job.ttl)
	}
}

func TestCartExpiryJobPropagatesErrors(t *testing.T) {
	repo := &fakeCartPurger{err: errors.New("boom")}
	job := newCartExpiryJob(t, repo, time.Hour)

	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

func newCartExpiryJob(t *testing.T, repo *fakeCartPurger, ttl time.Duration) *cartExpiryJob {
	t.Helper()
	jobIface, err := NewCartExpiryJob(CartExpiryJobParams{
		Logger: logger.New(logger.Options{ServiceName: "test"}),
		Carts:  repo,
		TTL:    ttl,
	})
	if err != nil {
		t.Fatalf("NewCartExpiryJob: %v", err)
	}
	job, ok := jobIface.(*cartExpiryJob)
	if !ok {
		t.Fatalf("expected cartExpiryJob, got %T", jobIface)
	}
	return job
}
