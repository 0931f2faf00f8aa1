package event

import (
	"context"
	"time"
)

const (
	BookingCreated   = "booking.created"
	BookingCancelled = "booking.cancelled"
)

// BookingEvent is the payload published on booking lifecycle changes.
type BookingEvent struct {
	Type             string    `json:"type"`
	BookingID        string    `json:"booking_id"`
	BookingReference string    `json:"booking_reference"`
	UserID           string    `json:"user_id"`
	HotelID          string    `json:"hotel_id"`
	RoomTypeID       string    `json:"room_type_id"`
	Status           string    `json:"status"`
	Total            float64   `json:"total"`
	Currency         string    `json:"currency"`
	OccurredAt       time.Time `json:"occurred_at"`
}

// Publisher delivers booking events to downstream consumers (notifications,
// analytics). Delivery is best effort: failures must never fail the booking.
type Publisher interface {
	PublishBookingEvent(ctx context.Context, e BookingEvent) error
}

// Nop is a Publisher for deployments without a message broker configured.
type Nop struct{}

func (Nop) PublishBookingEvent(ctx context.Context, e BookingEvent) error { return nil }
