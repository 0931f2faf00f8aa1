package booking

import (
	"math"
	"time"
)

const (
	taxRate    = 0.12
	bookingFee = 25.0

	weekendMultiplier    = 1.20
	advanceMultiplier    = 0.90
	lastMinuteMultiplier = 1.10
	longStayMultiplier   = 0.95

	advanceThresholdDays    = 30
	lastMinuteThresholdDays = 7
	longStayNights          = 7
)

// PricingEngine computes the nightly rate and the full price breakdown for a
// stay. It is pure: the only ambient input is Now, which is injectable so the
// advance/last-minute rules are testable against a fixed clock.
//
// The same engine instance serves booking creation and search enhancement so a
// quoted price can never drift from the charged price.
type PricingEngine struct {
	Currency string
	Now      func() time.Time
}

// NewPricingEngine creates an engine quoting in the given currency.
func NewPricingEngine(currency string) *PricingEngine {
	return &PricingEngine{
		Currency: currency,
		Now:      time.Now,
	}
}

// Quote prices a stay of [checkIn, checkOut) for the given number of rooms.
// Adjustments apply multiplicatively to basePrice, in order:
//
//	check-in on Friday/Saturday  ×1.20
//	check-in more than 30 days out  ×0.90
//	check-in fewer than 7 days out  ×1.10
//	stay of 7 nights or longer  ×0.95
//
// The advance and last-minute rules are mutually exclusive by construction.
func (e *PricingEngine) Quote(basePrice float64, checkIn, checkOut time.Time, rooms int) (Pricing, error) {
	if rooms <= 0 {
		return Pricing{}, ErrInvalidRoomCount
	}
	if !checkOut.After(checkIn) {
		return Pricing{}, ErrInvalidDateRange
	}

	rate := basePrice

	if wd := checkIn.Weekday(); wd == time.Friday || wd == time.Saturday {
		rate *= weekendMultiplier
	}

	daysUntil := int(math.Floor(checkIn.Sub(e.Now()).Hours() / 24))
	if daysUntil > advanceThresholdDays {
		rate *= advanceMultiplier
	} else if daysUntil < lastMinuteThresholdDays {
		rate *= lastMinuteMultiplier
	}

	nights := totalNights(checkIn, checkOut)
	if nights >= longStayNights {
		rate *= longStayMultiplier
	}

	rate = round2(rate)

	subtotal := round2(rate * float64(nights) * float64(rooms))
	taxes := round2(subtotal * taxRate)
	total := round2(subtotal + taxes + bookingFee)

	return Pricing{
		RoomRate:    rate,
		TotalNights: nights,
		Subtotal:    subtotal,
		Taxes:       taxes,
		Fees:        bookingFee,
		Total:       total,
		Currency:    e.Currency,
	}, nil
}

// totalNights is the ceiling of the stay length in days, with a minimum of one
// night so a sub-day range still bills a full night.
func totalNights(checkIn, checkOut time.Time) int {
	nights := int(math.Ceil(checkOut.Sub(checkIn).Hours() / 24))
	if nights < 1 {
		nights = 1
	}
	return nights
}

// round2 rounds half-up to two decimal places.
func round2(v float64) float64 {
	return math.Floor(v*100+0.5) / 100
}
