package http

import (
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

type SearchHotelsRequest struct {
	City       string   `form:"city"`
	StarRating []int    `form:"star_rating" binding:"omitempty,dive,min=1,max=5"`
	Amenities  []string `form:"amenities"`

	CheckIn  string `form:"check_in" binding:"omitempty,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"omitempty,datetime=2006-01-02"`
	Adults   int    `form:"adults" binding:"omitempty,min=1"`
	Children int    `form:"children" binding:"omitempty,min=0"`
	Rooms    int    `form:"rooms" binding:"omitempty,min=1"`

	MinPrice *float64 `form:"min_price" binding:"omitempty,min=0"`
	MaxPrice *float64 `form:"max_price" binding:"omitempty,min=0"`

	SortBy    string `form:"sort_by" binding:"omitempty,oneof=price rating name"`
	SortOrder string `form:"sort_order" binding:"omitempty,oneof=asc desc"`

	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=50"`
}

type HotelDatesRequest struct {
	CheckIn  string `form:"check_in" binding:"omitempty,datetime=2006-01-02"`
	CheckOut string `form:"check_out" binding:"omitempty,datetime=2006-01-02"`
	Adults   int    `form:"adults" binding:"omitempty,min=1"`
	Children int    `form:"children" binding:"omitempty,min=0"`
	Rooms    int    `form:"rooms" binding:"omitempty,min=1"`
}

type CreateHotelRequest struct {
	Name         string         `json:"name" binding:"required"`
	Description  string         `json:"description"`
	StarRating   int            `json:"star_rating" binding:"required,min=1,max=5"`
	Location     LocationDTO    `json:"location" binding:"required"`
	Amenities    []string       `json:"amenities"`
	CheckInTime  string         `json:"check_in_time" binding:"required"`
	CheckOutTime string         `json:"check_out_time" binding:"required"`
	ContactInfo  ContactInfoDTO `json:"contact_info" binding:"required"`
	Policies     PoliciesDTO    `json:"policies"`
}

type CreateRoomTypeRequest struct {
	Name             string              `json:"name" binding:"required"`
	Type             string              `json:"type" binding:"required"`
	Description      string              `json:"description"`
	MaxOccupancy     OccupancyDTO        `json:"max_occupancy" binding:"required"`
	BedConfiguration BedConfigurationDTO `json:"bed_configuration"`
	SizeSqm          float64             `json:"size_sqm"`
	Amenities        []string            `json:"amenities"`
	BasePrice        float64             `json:"base_price" binding:"required,gt=0"`
	TotalInventory   int                 `json:"total_inventory" binding:"required,gt=0"`
}

type LocationDTO struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	Address    string  `json:"address"`
	City       string  `json:"city" binding:"required"`
	State      string  `json:"state"`
	Country    string  `json:"country" binding:"required"`
	PostalCode string  `json:"postal_code"`
}

type ContactInfoDTO struct {
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website,omitempty"`
}

type PoliciesDTO struct {
	CancellationPolicy string `json:"cancellation_policy"`
	PetPolicy          string `json:"pet_policy,omitempty"`
	SmokingPolicy      string `json:"smoking_policy"`
}

type OccupancyDTO struct {
	Adults   int `json:"adults" binding:"required,min=1"`
	Children int `json:"children" binding:"omitempty,min=0"`
}

type BedConfigurationDTO struct {
	KingBeds  int `json:"king_beds,omitempty"`
	QueenBeds int `json:"queen_beds,omitempty"`
	TwinBeds  int `json:"twin_beds,omitempty"`
	SofaBeds  int `json:"sofa_beds,omitempty"`
}

type HotelResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Description  string         `json:"description"`
	StarRating   int            `json:"star_rating"`
	Location     LocationDTO    `json:"location"`
	Amenities    []string       `json:"amenities"`
	Images       []string       `json:"images"`
	CheckInTime  string         `json:"check_in_time"`
	CheckOutTime string         `json:"check_out_time"`
	ContactInfo  ContactInfoDTO `json:"contact_info"`
	Policies     PoliciesDTO    `json:"policies"`
	CreatedAt    time.Time      `json:"created_at"`
}

type RoomTypeResponse struct {
	ID               string              `json:"id"`
	HotelID          string              `json:"hotel_id"`
	Name             string              `json:"name"`
	Type             string              `json:"type"`
	Description      string              `json:"description"`
	MaxOccupancy     OccupancyDTO        `json:"max_occupancy"`
	BedConfiguration BedConfigurationDTO `json:"bed_configuration"`
	SizeSqm          float64             `json:"size_sqm"`
	Amenities        []string            `json:"amenities"`
	Images           []string            `json:"images"`
	BasePrice        float64             `json:"base_price"`
	TotalInventory   int                 `json:"total_inventory"`
}

type RoomAvailabilityResponse struct {
	RoomType           RoomTypeResponse `json:"room_type"`
	IsAvailable        bool             `json:"is_available"`
	AvailableCount     int              `json:"available_count"`
	CurrentPrice       float64          `json:"current_price"`
	DiscountPercentage int              `json:"discount_percentage,omitempty"`
}

type HotelWithAvailabilityResponse struct {
	HotelResponse
	AvailableRooms []RoomAvailabilityResponse `json:"available_rooms"`
	MinPrice       float64                    `json:"min_price"`
	MaxPrice       float64                    `json:"max_price"`
}

type UploadImageResponse struct {
	URL string `json:"url"`
}

func NewHotelResponse(h *hotel.Hotel) HotelResponse {
	amenities := h.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := h.Images
	if images == nil {
		images = []string{}
	}
	return HotelResponse{
		ID:           h.ID,
		Name:         h.Name,
		Description:  h.Description,
		StarRating:   h.StarRating,
		Location:     LocationDTO(h.Location),
		Amenities:    amenities,
		Images:       images,
		CheckInTime:  h.CheckInTime,
		CheckOutTime: h.CheckOutTime,
		ContactInfo:  ContactInfoDTO(h.ContactInfo),
		Policies:     PoliciesDTO(h.Policies),
		CreatedAt:    h.CreatedAt,
	}
}

func NewRoomTypeResponse(rt *room.RoomType) RoomTypeResponse {
	amenities := rt.Amenities
	if amenities == nil {
		amenities = []string{}
	}
	images := rt.Images
	if images == nil {
		images = []string{}
	}
	return RoomTypeResponse{
		ID:               rt.ID,
		HotelID:          rt.HotelID,
		Name:             rt.Name,
		Type:             rt.Type,
		Description:      rt.Description,
		MaxOccupancy:     OccupancyDTO(rt.MaxOccupancy),
		BedConfiguration: BedConfigurationDTO(rt.BedConfiguration),
		SizeSqm:          rt.SizeSqm,
		Amenities:        amenities,
		Images:           images,
		BasePrice:        rt.BasePrice,
		TotalInventory:   rt.TotalInventory,
	}
}

func NewHotelWithAvailabilityResponse(h *hotel.HotelWithAvailability) HotelWithAvailabilityResponse {
	rooms := make([]RoomAvailabilityResponse, 0, len(h.AvailableRooms))
	for _, ra := range h.AvailableRooms {
		rooms = append(rooms, RoomAvailabilityResponse{
			RoomType:           NewRoomTypeResponse(ra.RoomType),
			IsAvailable:        ra.IsAvailable,
			AvailableCount:     ra.AvailableCount,
			CurrentPrice:       ra.CurrentPrice,
			DiscountPercentage: ra.DiscountPercentage,
		})
	}
	return HotelWithAvailabilityResponse{
		HotelResponse:  NewHotelResponse(h.Hotel),
		AvailableRooms: rooms,
		MinPrice:       h.MinPrice,
		MaxPrice:       h.MaxPrice,
	}
}
