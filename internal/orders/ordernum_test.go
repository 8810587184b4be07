package orders

import (
	"regexp"
	"testing"
	"time"
)

func TestNewOrderNumberFormat(t *testing.T) {
	t.Parallel()

	pattern := regexp.MustCompile(`^ORD-20250115-[A-HJ-NP-Z2-9]{6}$`)
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)

	seen := map[string]bool{}
	for i := 0; i < 100; i++ {
		number, err := newOrderNumber(now)
		if err != nil {
			t.Fatalf("generate order number: %v", err)
		}
		if !pattern.MatchString(number) {
			t.Fatalf("unexpected format %q", number)
		}
		seen[number] = true
	}
	if len(seen) < 95 {
		t.Fatalf("expected mostly unique numbers, got %d distinct of 100", len(seen))
	}
}
