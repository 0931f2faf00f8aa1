package http

import (
	hotelhttp "github.com/hotelhive/hotel-booking-backend/internal/hotel/http"
	"github.com/hotelhive/hotel-booking-backend/internal/search"
)

type SemanticSearchRequest struct {
	Query string `json:"query" binding:"required"`

	CheckIn  string `json:"check_in" binding:"omitempty,datetime=2006-01-02"`
	CheckOut string `json:"check_out" binding:"omitempty,datetime=2006-01-02"`
	Adults   int    `json:"adults" binding:"omitempty,min=1"`
	Children int    `json:"children" binding:"omitempty,min=0"`
	Rooms    int    `json:"rooms" binding:"omitempty,min=1"`

	MaxPrice   *float64 `json:"max_price" binding:"omitempty,min=0"`
	StarRating []int    `json:"star_rating" binding:"omitempty,dive,min=1,max=5"`
	Amenities  []string `json:"amenities"`
}

type SemanticMatchResponse struct {
	hotelhttp.HotelWithAvailabilityResponse
	Similarity float64 `json:"similarity"`
}

type SemanticSearchResponse struct {
	Query            string                  `json:"query"`
	Results          []SemanticMatchResponse `json:"results"`
	Count            int                     `json:"count"`
	ProcessingTimeMS int64                   `json:"processing_time_ms"`
}

type GenerateEmbeddingsResponse struct {
	Processed int `json:"processed"`
}

func NewSemanticSearchResponse(result *search.SemanticResult) SemanticSearchResponse {
	results := make([]SemanticMatchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		results = append(results, SemanticMatchResponse{
			HotelWithAvailabilityResponse: hotelhttp.NewHotelWithAvailabilityResponse(m.Hotel),
			Similarity:                    m.Similarity,
		})
	}
	return SemanticSearchResponse{
		Query:            result.Query,
		Results:          results,
		Count:            result.Count,
		ProcessingTimeMS: result.ProcessingTimeMS,
	}
}
