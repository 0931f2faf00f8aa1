package booking

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/event"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

// AvailabilityRequest asks whether roomsRequested rooms of a room type are
// free for the half-open range [CheckIn, CheckOut).
type AvailabilityRequest struct {
	HotelID        string // optional; when set it must match the room type's hotel
	RoomTypeID     string
	CheckIn        time.Time
	CheckOut       time.Time
	RoomsRequested int
}

// AvailabilityResult is always a valid answer: "no rooms" is a result with
// IsAvailable=false and a restriction message, never an error.
type AvailabilityResult struct {
	IsAvailable    bool
	AvailableRooms int
	Rate           float64
	Total          float64
	Restrictions   []string
}

type CreateRequest struct {
	HotelID         string
	RoomTypeID      string
	CheckIn         time.Time
	CheckOut        time.Time
	Guests          Occupants
	GuestInfo       []Guest
	RoomsBooked     int
	PaymentMethod   string
	SpecialRequests *string
}

type UpdateRequest struct {
	Status               *string
	PaymentStatus        *string
	GuestInfo            []Guest
	SpecialRequests      *string
	PaymentTransactionID *string
	CancellationReason   *string
}

type Service interface {
	CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*Booking, error)
	Update(ctx context.Context, id, userID string, req UpdateRequest) (*Booking, error)
	Cancel(ctx context.Context, id, userID string, reason string) (*Booking, error)
	GetByID(ctx context.Context, id, userID string) (*Booking, error)
	ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error)
}

type service struct {
	repo    Repository
	rooms   room.Service
	pricing *PricingEngine
	events  event.Publisher
}

func NewService(repo Repository, rooms room.Service, pricing *PricingEngine, events event.Publisher) Service {
	if events == nil {
		events = event.Nop{}
	}
	return &service{
		repo:    repo,
		rooms:   rooms,
		pricing: pricing,
		events:  events,
	}
}

func (s *service) CheckAvailability(ctx context.Context, req AvailabilityRequest) (*AvailabilityResult, error) {
	if req.RoomsRequested < 1 {
		return nil, ErrInvalidRoomCount
	}
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrInvalidDateRange
	}

	rt, err := s.loadRoomType(ctx, req.HotelID, req.RoomTypeID)
	if err != nil {
		return nil, err
	}

	return s.availability(ctx, s.repo, rt, req)
}

// availability runs the overlap query through the given repository so the
// same computation serves both the plain read path and the locked
// create path.
func (s *service) availability(ctx context.Context, repo Repository, rt *room.RoomType, req AvailabilityRequest) (*AvailabilityResult, error) {
	committed, err := repo.SumOverlappingRooms(ctx, rt.ID, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, fmt.Errorf("availability check for room type %s failed: %w", rt.ID, err)
	}

	available := rt.TotalInventory - committed
	if available < 0 {
		available = 0
	}

	pricing, err := s.pricing.Quote(rt.BasePrice, req.CheckIn, req.CheckOut, req.RoomsRequested)
	if err != nil {
		return nil, err
	}

	result := &AvailabilityResult{
		IsAvailable:    available >= req.RoomsRequested,
		AvailableRooms: available,
		Rate:           pricing.RoomRate,
		Total:          pricing.Total,
		Restrictions:   []string{},
	}
	if !result.IsAvailable {
		result.Restrictions = append(result.Restrictions, "No rooms available for selected dates")
	}
	return result, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (*Booking, error) {
	// All input validation happens before any store access.
	if !req.CheckOut.After(req.CheckIn) {
		return nil, ErrInvalidDateRange
	}
	if req.RoomsBooked < 1 {
		return nil, ErrInvalidRoomCount
	}
	if len(req.GuestInfo) == 0 {
		return nil, ErrGuestInfoRequired
	}

	rt, err := s.loadRoomType(ctx, req.HotelID, req.RoomTypeID)
	if err != nil {
		return nil, err
	}
	if req.RoomsBooked > rt.TotalInventory {
		return nil, ErrUnavailable
	}

	// Pricing snapshot is locked in at creation time.
	pricing, err := s.pricing.Quote(rt.BasePrice, req.CheckIn, req.CheckOut, req.RoomsBooked)
	if err != nil {
		return nil, err
	}

	availReq := AvailabilityRequest{
		RoomTypeID:     rt.ID,
		CheckIn:        req.CheckIn,
		CheckOut:       req.CheckOut,
		RoomsRequested: req.RoomsBooked,
	}

	var created *Booking

	attempt := func() error {
		return s.repo.WithRoomTypeLock(ctx, rt.ID, func(repo Repository) error {
			result, err := s.availability(ctx, repo, rt, availReq)
			if err != nil {
				return err
			}
			if !result.IsAvailable {
				return ErrUnavailable
			}

			b := &Booking{
				UserID:           userID,
				HotelID:          rt.HotelID,
				RoomTypeID:       rt.ID,
				BookingReference: generateBookingReference(),
				Status:           StatusPending,
				PaymentStatus:    PaymentPending,
				CheckInDate:      req.CheckIn,
				CheckOutDate:     req.CheckOut,
				Guests:           req.Guests,
				GuestInfo:        req.GuestInfo,
				RoomsBooked:      req.RoomsBooked,
				Pricing:          pricing,
				PaymentMethod:    req.PaymentMethod,
				BookingDate:      time.Now().UTC(),
				SpecialRequests:  req.SpecialRequests,
			}

			if err := repo.Create(ctx, b); err != nil {
				return err
			}
			created = b
			return nil
		})
	}

	err = attempt()
	if errors.Is(err, ErrConcurrentUpdate) {
		// Single application-level retry on a transaction abort or a
		// reference collision; the availability check runs again.
		err = attempt()
	}
	if err != nil {
		return nil, err
	}

	log.Printf("booking created: id=%s reference=%s room_type=%s rooms=%d",
		created.ID, created.BookingReference, created.RoomTypeID, created.RoomsBooked)

	s.publish(ctx, event.BookingCreated, created)

	return created, nil
}

func (s *service) Update(ctx context.Context, id, userID string, req UpdateRequest) (*Booking, error) {
	b, err := s.repo.GetByIDForUser(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	// Cancelled and completed bookings accept no further changes at all.
	if b.Status == StatusCancelled || b.Status == StatusCompleted {
		return nil, ErrBookingImmutable
	}

	cancelled := false

	if req.Status != nil {
		next := Status(*req.Status)
		if !next.Valid() {
			return nil, ErrInvalidStatus
		}
		if next != b.Status {
			if !b.Status.CanTransitionTo(next) {
				return nil, ErrInvalidTransition
			}
			b.Status = next
			if next == StatusCancelled {
				now := time.Now().UTC()
				b.CancellationDate = &now
				cancelled = true
			}
		}
	}

	if req.PaymentStatus != nil {
		next := PaymentStatus(*req.PaymentStatus)
		if !next.Valid() {
			return nil, ErrInvalidPaymentStatus
		}
		if next != b.PaymentStatus {
			if !b.PaymentStatus.CanTransitionTo(next) {
				return nil, ErrInvalidPaymentChange
			}
			b.PaymentStatus = next
		}
	}

	if req.GuestInfo != nil {
		if len(req.GuestInfo) == 0 {
			return nil, ErrGuestInfoRequired
		}
		b.GuestInfo = req.GuestInfo
	}
	if req.SpecialRequests != nil {
		b.SpecialRequests = req.SpecialRequests
	}
	if req.PaymentTransactionID != nil {
		b.PaymentTransactionID = req.PaymentTransactionID
	}
	if req.CancellationReason != nil {
		b.CancellationReason = req.CancellationReason
	}

	if err := s.repo.Update(ctx, b, b.UpdatedAt); err != nil {
		return nil, err
	}

	if cancelled {
		log.Printf("booking cancelled: id=%s reference=%s", b.ID, b.BookingReference)
		s.publish(ctx, event.BookingCancelled, b)
	}

	return b, nil
}

func (s *service) Cancel(ctx context.Context, id, userID string, reason string) (*Booking, error) {
	status := string(StatusCancelled)
	req := UpdateRequest{Status: &status}
	if reason != "" {
		req.CancellationReason = &reason
	}
	return s.Update(ctx, id, userID, req)
}

func (s *service) GetByID(ctx context.Context, id, userID string) (*Booking, error) {
	return s.repo.GetByIDForUser(ctx, id, userID)
}

func (s *service) ListForUser(ctx context.Context, userID string, filter Filter) ([]*Booking, int, error) {
	return s.repo.ListForUser(ctx, userID, filter)
}

// loadRoomType fetches the room type, hides cross-hotel mismatches as
// not-found, and rejects misconfigured inventory instead of assuming a
// default count.
func (s *service) loadRoomType(ctx context.Context, hotelID, roomTypeID string) (*room.RoomType, error) {
	rt, err := s.rooms.GetByID(ctx, roomTypeID)
	if err != nil {
		if errors.Is(err, room.ErrNotFound) {
			return nil, ErrRoomTypeNotFound
		}
		return nil, err
	}
	if hotelID != "" && rt.HotelID != hotelID {
		return nil, ErrRoomTypeNotFound
	}
	if rt.TotalInventory <= 0 {
		log.Printf("room type %s has non-positive inventory %d", rt.ID, rt.TotalInventory)
		return nil, ErrInventoryMisconfigured
	}
	return rt, nil
}

func (s *service) publish(ctx context.Context, eventType string, b *Booking) {
	e := event.BookingEvent{
		Type:             eventType,
		BookingID:        b.ID,
		BookingReference: b.BookingReference,
		UserID:           b.UserID,
		HotelID:          b.HotelID,
		RoomTypeID:       b.RoomTypeID,
		Status:           string(b.Status),
		Total:            b.Pricing.Total,
		Currency:         b.Pricing.Currency,
		OccurredAt:       time.Now().UTC(),
	}
	// Event delivery is best effort; the publisher logs its own failures.
	_ = s.events.PublishBookingEvent(ctx, e)
}
