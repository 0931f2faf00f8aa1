package booking

import (
	"fmt"
	"math/rand"
	"time"
)

const referencePrefix = "HTL"

const referenceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// generateBookingReference produces a human-readable reference: a 3-letter
// prefix, the last six digits of the current unix-millisecond clock, and four
// random uppercase alphanumerics. Collisions are accepted as negligible; the
// bookings table still carries a unique constraint as a backstop.
func generateBookingReference() string {
	suffix := make([]byte, 4)
	for i := range suffix {
		suffix[i] = referenceAlphabet[rand.Intn(len(referenceAlphabet))]
	}
	return fmt.Sprintf("%s%06d%s", referencePrefix, time.Now().UnixMilli()%1_000_000, suffix)
}
