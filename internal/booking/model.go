package booking

import (
	"net/http"
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound               = apperror.New(http.StatusNotFound, "booking not found")
	ErrRoomTypeNotFound       = apperror.New(http.StatusNotFound, "room type not found")
	ErrInvalidDateRange       = apperror.New(http.StatusBadRequest, "check-out date must be after check-in date")
	ErrInvalidRoomCount       = apperror.New(http.StatusBadRequest, "at least one room must be booked")
	ErrGuestInfoRequired      = apperror.New(http.StatusBadRequest, "at least one guest is required")
	ErrUnavailable            = apperror.New(http.StatusConflict, "requested rooms are not available for the selected dates")
	ErrBookingImmutable       = apperror.New(http.StatusConflict, "booking can no longer be modified")
	ErrInvalidTransition      = apperror.New(http.StatusConflict, "illegal booking status transition")
	ErrInvalidPaymentChange   = apperror.New(http.StatusConflict, "illegal payment status transition")
	ErrConcurrentUpdate       = apperror.New(http.StatusConflict, "booking was modified concurrently, retry the update")
	ErrInvalidStatus          = apperror.New(http.StatusBadRequest, "invalid booking status")
	ErrInvalidPaymentStatus   = apperror.New(http.StatusBadRequest, "invalid payment status")
	ErrInventoryMisconfigured = apperror.New(http.StatusInternalServerError, "room type inventory is misconfigured")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
	StatusNoShow    Status = "no_show"
)

// statusTransitions encodes the legal edges of the booking state machine.
// Terminal states (completed, cancelled, no_show) have no outgoing edges.
var statusTransitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled, StatusNoShow},
}

// Valid reports whether s is a known booking status.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted, StatusNoShow:
		return true
	}
	return false
}

// Terminal reports whether no further status transitions are accepted.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted || s == StatusNoShow
}

// CanTransitionTo reports whether moving from s to next is a legal edge.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range statusTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

type PaymentStatus string

const (
	PaymentPending           PaymentStatus = "pending"
	PaymentPaid              PaymentStatus = "paid"
	PaymentFailed            PaymentStatus = "failed"
	PaymentRefunded          PaymentStatus = "refunded"
	PaymentPartiallyRefunded PaymentStatus = "partially_refunded"
)

// paymentTransitions is the independent payment axis; it does not gate the
// booking status machine.
var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:           {PaymentPaid, PaymentFailed},
	PaymentPaid:              {PaymentRefunded, PaymentPartiallyRefunded},
	PaymentFailed:            {PaymentPending},
	PaymentPartiallyRefunded: {PaymentRefunded},
}

// Valid reports whether p is a known payment status.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPaid, PaymentFailed, PaymentRefunded, PaymentPartiallyRefunded:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from p to next is a legal edge.
func (p PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Guest holds the roster entry for one guest on a booking.
type Guest struct {
	FirstName       string     `json:"first_name"`
	LastName        string     `json:"last_name"`
	Email           string     `json:"email"`
	PhoneNumber     string     `json:"phone_number"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
}

// Occupants is the requested party size for a booking.
type Occupants struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Pricing is the snapshot computed at creation time. It is immutable for the
// lifetime of the booking; the quoted price is the charged price.
type Pricing struct {
	RoomRate    float64 `json:"room_rate"`
	TotalNights int     `json:"total_nights"`
	Subtotal    float64 `json:"subtotal"`
	Taxes       float64 `json:"taxes"`
	Fees        float64 `json:"fees"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

// Booking is a reservation of N rooms of one room type for a half-open date
// range [CheckInDate, CheckOutDate).
type Booking struct {
	ID                   string
	UserID               string
	HotelID              string
	RoomTypeID           string
	BookingReference     string
	Status               Status
	PaymentStatus        PaymentStatus
	CheckInDate          time.Time
	CheckOutDate         time.Time
	Guests               Occupants
	GuestInfo            []Guest
	RoomsBooked          int
	Pricing              Pricing
	PaymentMethod        string
	PaymentTransactionID *string
	BookingDate          time.Time
	CancellationDate     *time.Time
	CancellationReason   *string
	SpecialRequests      *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Filter defines parameters for listing a user's bookings.
type Filter struct {
	Statuses        []Status
	CheckInFrom     *time.Time
	CheckInTo       *time.Time
	BookingDateFrom *time.Time
	BookingDateTo   *time.Time
	SortBy          string // check_in_date (default), booking_date, total
	SortOrder       string // asc (default), desc
	Page            int
	PageSize        int
}
