package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/request"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/response"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

const maxImageUploadBytes = 10 << 20

var errInvalidStay = errors.New("check_in and check_out must be provided together, with check_out after check_in")

type Handler struct {
	hotels hotel.Service
	rooms  room.Service
}

func NewHandler(hotels hotel.Service, rooms room.Service) *Handler {
	return &Handler{
		hotels: hotels,
		rooms:  rooms,
	}
}

func (h *Handler) Search(c *gin.Context) {
	var query SearchHotelsRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	criteria, err := searchCriteria(query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, total, err := h.hotels.Search(c.Request.Context(), criteria)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]HotelWithAvailabilityResponse, 0, len(results))
	for _, r := range results {
		items = append(items, NewHotelWithAvailabilityResponse(r))
	}

	c.JSON(http.StatusOK, response.NewPageResponse(items, criteria.Page, criteria.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	var query HotelDatesRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query parameters", "details": err.Error()})
		return
	}

	criteria := hotel.SearchCriteria{
		Adults:   query.Adults,
		Children: query.Children,
		Rooms:    query.Rooms,
	}
	if err := parseStayDates(query.CheckIn, query.CheckOut, &criteria); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	details, err := h.hotels.Details(c.Request.Context(), uri.ID, criteria)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewHotelWithAvailabilityResponse(details))
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateHotelRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	created, err := h.hotels.Create(c.Request.Context(), hotel.CreateRequest{
		Name:         body.Name,
		Description:  body.Description,
		StarRating:   body.StarRating,
		Location:     hotel.Location(body.Location),
		Amenities:    body.Amenities,
		CheckInTime:  body.CheckInTime,
		CheckOutTime: body.CheckOutTime,
		ContactInfo:  hotel.ContactInfo(body.ContactInfo),
		Policies:     hotel.Policies(body.Policies),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewHotelResponse(created))
}

func (h *Handler) UploadImage(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if file.Size > maxImageUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "image exceeds the 10MB limit"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer func() { _ = src.Close() }()

	url, err := h.hotels.UploadImage(c.Request.Context(), uri.ID, file.Filename, src)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, UploadImageResponse{URL: url})
}

func (h *Handler) ListRoomTypes(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	if _, err := h.hotels.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	roomTypes, err := h.rooms.ListByHotel(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomTypeResponse, 0, len(roomTypes))
	for _, rt := range roomTypes {
		items = append(items, NewRoomTypeResponse(rt))
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) CreateRoomType(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid hotel id"})
		return
	}

	var body CreateRoomTypeRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	if _, err := h.hotels.GetByID(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}

	created, err := h.rooms.Create(c.Request.Context(), room.CreateRequest{
		HotelID:          uri.ID,
		Name:             body.Name,
		Type:             body.Type,
		Description:      body.Description,
		MaxOccupancy:     room.Occupancy(body.MaxOccupancy),
		BedConfiguration: room.BedConfiguration(body.BedConfiguration),
		SizeSqm:          body.SizeSqm,
		Amenities:        body.Amenities,
		BasePrice:        body.BasePrice,
		TotalInventory:   body.TotalInventory,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewRoomTypeResponse(created))
}

func searchCriteria(query SearchHotelsRequest) (hotel.SearchCriteria, error) {
	criteria := hotel.SearchCriteria{
		City:        query.City,
		StarRatings: query.StarRating,
		Amenities:   query.Amenities,
		Adults:      query.Adults,
		Children:    query.Children,
		Rooms:       query.Rooms,
		MinPrice:    query.MinPrice,
		MaxPrice:    query.MaxPrice,
		SortBy:      query.SortBy,
		SortOrder:   query.SortOrder,
		Page:        query.Page,
		PageSize:    query.PageSize,
	}
	if err := parseStayDates(query.CheckIn, query.CheckOut, &criteria); err != nil {
		return hotel.SearchCriteria{}, err
	}
	return criteria, nil
}

// parseStayDates fills CheckIn/CheckOut on the criteria. Dates must come
// as a pair and the range must be at least one night.
func parseStayDates(checkIn, checkOut string, criteria *hotel.SearchCriteria) error {
	if checkIn == "" && checkOut == "" {
		return nil
	}
	if checkIn == "" || checkOut == "" {
		return errInvalidStay
	}

	in, err := time.Parse(time.DateOnly, checkIn)
	if err != nil {
		return errInvalidStay
	}
	out, err := time.Parse(time.DateOnly, checkOut)
	if err != nil {
		return errInvalidStay
	}
	if !out.After(in) {
		return errInvalidStay
	}

	criteria.CheckIn = &in
	criteria.CheckOut = &out
	return nil
}
