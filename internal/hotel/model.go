package hotel

import (
	"net/http"
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "hotel not found")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, "hotel name is required")
	ErrMalformedRecord = apperror.New(http.StatusBadRequest, "malformed hotel record")
)

// Location is the hotel's structured address and coordinates.
type Location struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	City       string  `json:"city"`
	State      string  `json:"state"`
	Country    string  `json:"country"`
	PostalCode string  `json:"postal_code"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
}

type Policies struct {
	CancellationPolicy string `json:"cancellation_policy"`
	PetPolicy          string `json:"pet_policy,omitempty"`
	SmokingPolicy      string `json:"smoking_policy"`
}

type Hotel struct {
	ID           string
	Name         string
	Description  string
	StarRating   int
	Location     Location
	Amenities    []string
	Images       []string
	CheckInTime  string // "15:00"
	CheckOutTime string // "11:00"
	ContactInfo  ContactInfo
	Policies     Policies
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// SearchCriteria drives both the cheap SQL candidate filter and the
// availability enhancement pass.
type SearchCriteria struct {
	City        string
	StarRatings []int
	Amenities   []string

	CheckIn  *time.Time
	CheckOut *time.Time
	Adults   int
	Children int
	Rooms    int

	MinPrice *float64
	MaxPrice *float64

	SortBy    string // price, rating, name
	SortOrder string // asc (default), desc

	Page     int
	PageSize int
}

// Normalize applies occupancy and pagination defaults.
func (c *SearchCriteria) Normalize() {
	if c.Adults < 1 {
		c.Adults = 1
	}
	if c.Children < 0 {
		c.Children = 0
	}
	if c.Rooms < 1 {
		c.Rooms = 1
	}
	if c.Page < 1 {
		c.Page = 1
	}
	if c.PageSize < 1 {
		c.PageSize = 10
	}
}

// HasDates reports whether the criteria carries a concrete stay range.
func (c *SearchCriteria) HasDates() bool {
	return c.CheckIn != nil && c.CheckOut != nil
}

// RoomAvailability is a room type annotated with live availability and the
// price quoted for the requested dates.
type RoomAvailability struct {
	RoomType           *room.RoomType
	IsAvailable        bool
	AvailableCount     int
	CurrentPrice       float64
	DiscountPercentage int // 0 when the current price is not below base
}

// HotelWithAvailability is a search candidate annotated by the enhancement
// pass. Hotels with an empty AvailableRooms list are dropped from results.
type HotelWithAvailability struct {
	Hotel          *Hotel
	AvailableRooms []RoomAvailability
	MinPrice       float64
	MaxPrice       float64
}
