package room

import (
	"net/http"
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

var (
	ErrNotFound        = apperror.New(http.StatusNotFound, "room type not found")
	ErrHotelNotFound   = apperror.New(http.StatusNotFound, "hotel not found")
	ErrMalformedRecord = apperror.New(http.StatusBadRequest, "malformed room type record")
	ErrNameRequired    = apperror.New(http.StatusBadRequest, "room type name is required")
	ErrInvalidPrice    = apperror.New(http.StatusBadRequest, "base price must be positive")
)

// Occupancy is the maximum number of guests a room type accommodates.
type Occupancy struct {
	Adults   int `json:"adults"`
	Children int `json:"children"`
}

// Total returns the combined adult and child capacity.
func (o Occupancy) Total() int {
	return o.Adults + o.Children
}

// BedConfiguration describes the beds in a room type.
type BedConfiguration struct {
	KingBeds  int `json:"king_beds,omitempty"`
	QueenBeds int `json:"queen_beds,omitempty"`
	TwinBeds  int `json:"twin_beds,omitempty"`
	SofaBeds  int `json:"sofa_beds,omitempty"`
}

// RoomType is a bookable category of room within a hotel. TotalInventory is the
// authoritative count of physical rooms of this type; availability is always
// derived from it, never from a fallback constant.
type RoomType struct {
	ID               string
	HotelID          string
	Name             string
	Type             string // standard, deluxe, suite, presidential, family, accessible
	Description      string
	MaxOccupancy     Occupancy
	BedConfiguration BedConfiguration
	SizeSqm          float64
	Amenities        []string
	Images           []string
	BasePrice        float64
	TotalInventory   int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
