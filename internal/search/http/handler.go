package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hotelhive/hotel-booking-backend/internal/pkg/response"
	"github.com/hotelhive/hotel-booking-backend/internal/search"
)

type Handler struct {
	service search.Service
}

func NewHandler(service search.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) SemanticSearch(c *gin.Context) {
	var body SemanticSearchRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	req := search.SemanticRequest{
		Query:       body.Query,
		Adults:      body.Adults,
		Children:    body.Children,
		Rooms:       body.Rooms,
		MaxPrice:    body.MaxPrice,
		StarRatings: body.StarRating,
		Amenities:   body.Amenities,
	}

	if body.CheckIn != "" && body.CheckOut != "" {
		in, err := time.Parse(time.DateOnly, body.CheckIn)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_in date"})
			return
		}
		out, err := time.Parse(time.DateOnly, body.CheckOut)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check_out date"})
			return
		}
		if !out.After(in) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "check_out must be after check_in"})
			return
		}
		req.CheckIn = &in
		req.CheckOut = &out
	}

	result, err := h.service.SemanticSearch(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, NewSemanticSearchResponse(result))
}

func (h *Handler) GenerateEmbeddings(c *gin.Context) {
	processed, err := h.service.GenerateHotelEmbeddings(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusOK, GenerateEmbeddingsResponse{Processed: processed})
}
