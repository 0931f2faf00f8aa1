package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hotelhive/hotel-booking-backend/internal/auth"
	"github.com/hotelhive/hotel-booking-backend/internal/booking"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/request"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) CheckAvailability(c *gin.Context) {
	var query CheckAvailabilityRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	checkIn, checkOut, err := parseStay(query.CheckIn, query.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rooms := query.Rooms
	if rooms < 1 {
		rooms = 1
	}

	result, err := h.service.CheckAvailability(c.Request.Context(), booking.AvailabilityRequest{
		HotelID:        query.HotelID,
		RoomTypeID:     query.RoomTypeID,
		CheckIn:        checkIn,
		CheckOut:       checkOut,
		RoomsRequested: rooms,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewAvailabilityResponse(result))
}

func (h *Handler) Create(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var body CreateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	checkIn, checkOut, err := parseStay(body.CheckIn, body.CheckOut)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rooms := body.RoomsBooked
	if rooms < 1 {
		rooms = 1
	}

	created, err := h.service.Create(c.Request.Context(), userID, booking.CreateRequest{
		HotelID:         body.HotelID,
		RoomTypeID:      body.RoomTypeID,
		CheckIn:         checkIn,
		CheckOut:        checkOut,
		Guests:          booking.Occupants(body.Guests),
		GuestInfo:       toGuests(body.GuestInfo),
		RoomsBooked:     rooms,
		PaymentMethod:   body.PaymentMethod,
		SpecialRequests: body.SpecialRequests,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewBookingResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var query ListBookingsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	filter, err := listFilter(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	bookings, total, err := h.service.ListForUser(c.Request.Context(), userID, filter)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		items = append(items, NewBookingResponse(b))
	}

	page, pageSize := filter.Page, filter.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 10
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, page, pageSize, total))
}

func (h *Handler) Update(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	var body UpdateBookingRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	updated, err := h.service.Update(c.Request.Context(), uri.ID, userID, booking.UpdateRequest{
		Status:               body.Status,
		PaymentStatus:        body.PaymentStatus,
		GuestInfo:            toGuests(body.GuestInfo),
		SpecialRequests:      body.SpecialRequests,
		PaymentTransactionID: body.PaymentTransactionID,
		CancellationReason:   body.CancellationReason,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(updated))
}

func (h *Handler) Cancel(c *gin.Context) {
	userID := auth.GetUserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid booking id"})
		return
	}

	// The body is optional; cancelling without a reason is allowed.
	var body CancelBookingRequest
	_ = c.ShouldBindJSON(&body)

	cancelled, err := h.service.Cancel(c.Request.Context(), uri.ID, userID, body.Reason)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewBookingResponse(cancelled))
}

func parseStay(checkIn, checkOut string) (time.Time, time.Time, error) {
	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return time.Time{}, time.Time{}, booking.ErrInvalidDateRange
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return time.Time{}, time.Time{}, booking.ErrInvalidDateRange
	}
	return in, out, nil
}

func listFilter(query ListBookingsRequest) (booking.Filter, error) {
	filter := booking.Filter{
		SortBy:    query.SortBy,
		SortOrder: query.SortOrder,
		Page:      query.Page,
		PageSize:  query.PageSize,
	}

	for _, s := range query.Status {
		filter.Statuses = append(filter.Statuses, booking.Status(s))
	}

	dates := []struct {
		raw string
		dst **time.Time
	}{
		{query.CheckInFrom, &filter.CheckInFrom},
		{query.CheckInTo, &filter.CheckInTo},
		{query.BookingDateFrom, &filter.BookingDateFrom},
		{query.BookingDateTo, &filter.BookingDateTo},
	}
	for _, d := range dates {
		if d.raw == "" {
			continue
		}
		t, err := time.Parse(time.DateOnly, d.raw)
		if err != nil {
			return booking.Filter{}, booking.ErrInvalidDateRange
		}
		*d.dst = &t
	}

	return filter, nil
}
