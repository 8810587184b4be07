package orders

import (
	"crypto/rand"
	"fmt"
	"time"
)

const orderNumberCharset = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newOrderNumber returns an identifier of the form ORD-YYYYMMDD-XXXXXX. The
// suffix comes from crypto/rand, so no counter row is needed and collisions
// are caught by the unique index on order_number.
func newOrderNumber(now time.Time) (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generating order number: %w", err)
	}
	for i, b := range suffix {
		suffix[i] = orderNumberCharset[int(b)%len(orderNumberCharset)]
	}
	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}
