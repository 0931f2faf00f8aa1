package booking

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateBookingReferenceFormat(t *testing.T) {
	pattern := regexp.MustCompile(`^HTL\d{6}[A-Z0-9]{4}$`)

	for i := 0; i < 200; i++ {
		ref := generateBookingReference()
		assert.Regexp(t, pattern, ref)
		assert.Len(t, ref, 13)
	}
}
