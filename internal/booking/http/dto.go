package http

import (
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/booking"
)

type CheckAvailabilityRequest struct {
	HotelID    string `form:"hotel_id" binding:"omitempty,uuid"`
	RoomTypeID string `form:"room_type_id" binding:"required,uuid"`
	CheckIn    string `form:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut   string `form:"check_out" binding:"required,datetime=2006-01-02"`
	Rooms      int    `form:"rooms" binding:"omitempty,min=1"`
}

type GuestDTO struct {
	FirstName       string     `json:"first_name" binding:"required"`
	LastName        string     `json:"last_name" binding:"required"`
	Email           string     `json:"email" binding:"omitempty,email"`
	PhoneNumber     string     `json:"phone_number"`
	DateOfBirth     *time.Time `json:"date_of_birth,omitempty"`
	SpecialRequests string     `json:"special_requests,omitempty"`
}

type OccupantsDTO struct {
	Adults   int `json:"adults" binding:"required,min=1"`
	Children int `json:"children" binding:"omitempty,min=0"`
}

type CreateBookingRequest struct {
	HotelID         string       `json:"hotel_id" binding:"required,uuid"`
	RoomTypeID      string       `json:"room_type_id" binding:"required,uuid"`
	CheckIn         string       `json:"check_in" binding:"required,datetime=2006-01-02"`
	CheckOut        string       `json:"check_out" binding:"required,datetime=2006-01-02"`
	Guests          OccupantsDTO `json:"guests" binding:"required"`
	GuestInfo       []GuestDTO   `json:"guest_info" binding:"required,min=1,dive"`
	RoomsBooked     int          `json:"rooms_booked" binding:"omitempty,min=1"`
	PaymentMethod   string       `json:"payment_method" binding:"required"`
	SpecialRequests *string      `json:"special_requests"`
}

type UpdateBookingRequest struct {
	Status               *string    `json:"status"`
	PaymentStatus        *string    `json:"payment_status"`
	GuestInfo            []GuestDTO `json:"guest_info"`
	SpecialRequests      *string    `json:"special_requests"`
	PaymentTransactionID *string    `json:"payment_transaction_id"`
	CancellationReason   *string    `json:"cancellation_reason"`
}

type CancelBookingRequest struct {
	Reason string `json:"reason"`
}

type ListBookingsRequest struct {
	Status          []string `form:"status" binding:"omitempty,dive,oneof=pending confirmed cancelled completed no_show"`
	CheckInFrom     string   `form:"check_in_from" binding:"omitempty,datetime=2006-01-02"`
	CheckInTo       string   `form:"check_in_to" binding:"omitempty,datetime=2006-01-02"`
	BookingDateFrom string   `form:"booking_date_from" binding:"omitempty,datetime=2006-01-02"`
	BookingDateTo   string   `form:"booking_date_to" binding:"omitempty,datetime=2006-01-02"`
	SortBy          string   `form:"sort_by" binding:"omitempty,oneof=check_in_date booking_date total"`
	SortOrder       string   `form:"sort_order" binding:"omitempty,oneof=asc desc"`
	Page            int      `form:"page" binding:"omitempty,min=1"`
	PageSize        int      `form:"page_size" binding:"omitempty,min=1,max=100"`
}

type AvailabilityResponse struct {
	IsAvailable    bool     `json:"is_available"`
	AvailableRooms int      `json:"available_rooms"`
	Rate           float64  `json:"rate"`
	Total          float64  `json:"total"`
	Restrictions   []string `json:"restrictions"`
}

type PricingResponse struct {
	RoomRate    float64 `json:"room_rate"`
	TotalNights int     `json:"total_nights"`
	Subtotal    float64 `json:"subtotal"`
	Taxes       float64 `json:"taxes"`
	Fees        float64 `json:"fees"`
	Total       float64 `json:"total"`
	Currency    string  `json:"currency"`
}

type BookingResponse struct {
	ID                   string          `json:"id"`
	HotelID              string          `json:"hotel_id"`
	RoomTypeID           string          `json:"room_type_id"`
	BookingReference     string          `json:"booking_reference"`
	Status               string          `json:"status"`
	PaymentStatus        string          `json:"payment_status"`
	CheckInDate          string          `json:"check_in_date"`
	CheckOutDate         string          `json:"check_out_date"`
	Guests               OccupantsDTO    `json:"guests"`
	GuestInfo            []GuestDTO      `json:"guest_info"`
	RoomsBooked          int             `json:"rooms_booked"`
	Pricing              PricingResponse `json:"pricing"`
	PaymentMethod        string          `json:"payment_method"`
	PaymentTransactionID *string         `json:"payment_transaction_id,omitempty"`
	BookingDate          time.Time       `json:"booking_date"`
	CancellationDate     *time.Time      `json:"cancellation_date,omitempty"`
	CancellationReason   *string         `json:"cancellation_reason,omitempty"`
	SpecialRequests      *string         `json:"special_requests,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

func NewAvailabilityResponse(r *booking.AvailabilityResult) AvailabilityResponse {
	return AvailabilityResponse{
		IsAvailable:    r.IsAvailable,
		AvailableRooms: r.AvailableRooms,
		Rate:           r.Rate,
		Total:          r.Total,
		Restrictions:   r.Restrictions,
	}
}

func NewBookingResponse(b *booking.Booking) BookingResponse {
	guestInfo := make([]GuestDTO, 0, len(b.GuestInfo))
	for _, g := range b.GuestInfo {
		guestInfo = append(guestInfo, GuestDTO(g))
	}
	return BookingResponse{
		ID:                   b.ID,
		HotelID:              b.HotelID,
		RoomTypeID:           b.RoomTypeID,
		BookingReference:     b.BookingReference,
		Status:               string(b.Status),
		PaymentStatus:        string(b.PaymentStatus),
		CheckInDate:          b.CheckInDate.Format(time.DateOnly),
		CheckOutDate:         b.CheckOutDate.Format(time.DateOnly),
		Guests:               OccupantsDTO(b.Guests),
		GuestInfo:            guestInfo,
		RoomsBooked:          b.RoomsBooked,
		Pricing:              PricingResponse(b.Pricing),
		PaymentMethod:        b.PaymentMethod,
		PaymentTransactionID: b.PaymentTransactionID,
		BookingDate:          b.BookingDate,
		CancellationDate:     b.CancellationDate,
		CancellationReason:   b.CancellationReason,
		SpecialRequests:      b.SpecialRequests,
		CreatedAt:            b.CreatedAt,
		UpdatedAt:            b.UpdatedAt,
	}
}

func toGuests(dtos []GuestDTO) []booking.Guest {
	if dtos == nil {
		return nil
	}
	guests := make([]booking.Guest, 0, len(dtos))
	for _, g := range dtos {
		guests = append(guests, booking.Guest(g))
	}
	return guests
}
