package search

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

const (
	// Candidates below this cosine similarity are considered unrelated to
	// the query and never returned.
	similarityThreshold = 0.7

	candidateLimit = 50
	resultLimit    = 10

	embeddingBatchSize = 100
)

var (
	ErrQueryRequired        = apperror.New(http.StatusBadRequest, "search query is required")
	ErrEmbeddingUnavailable = apperror.New(http.StatusServiceUnavailable, "semantic search is temporarily unavailable")
)

// SemanticRequest is a natural language hotel search plus optional
// structured filters applied on top of the vector match.
type SemanticRequest struct {
	Query string

	CheckIn  *time.Time
	CheckOut *time.Time
	Adults   int
	Children int
	Rooms    int

	MaxPrice    *float64
	StarRatings []int
	Amenities   []string
}

// SemanticMatch pairs an availability-enhanced hotel with its similarity
// to the query.
type SemanticMatch struct {
	Hotel      *hotel.HotelWithAvailability `json:"hotel"`
	Similarity float64                      `json:"similarity"`
}

type SemanticResult struct {
	Query            string          `json:"query"`
	Matches          []SemanticMatch `json:"matches"`
	Count            int             `json:"count"`
	ProcessingTimeMS int64           `json:"processing_time_ms"`
}

type Service interface {
	SemanticSearch(ctx context.Context, req SemanticRequest) (*SemanticResult, error)
	GenerateHotelEmbeddings(ctx context.Context) (int, error)
}

type service struct {
	repo     hotel.Repository
	hotels   hotel.Service
	embedder Embedder
}

func NewService(repo hotel.Repository, hotels hotel.Service, embedder Embedder) Service {
	return &service{
		repo:     repo,
		hotels:   hotels,
		embedder: embedder,
	}
}

func (s *service) SemanticSearch(ctx context.Context, req SemanticRequest) (*SemanticResult, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrQueryRequired
	}

	start := time.Now()

	vector, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		log.Printf("query embedding failed: %v", err)
		return nil, apperror.Wrap(err, ErrEmbeddingUnavailable.Code, ErrEmbeddingUnavailable.Message)
	}

	candidates, similarities, err := s.repo.SearchByEmbedding(ctx, vector, similarityThreshold, candidateLimit)
	if err != nil {
		return nil, err
	}

	similarityByID := make(map[string]float64, len(candidates))
	for i, h := range candidates {
		similarityByID[h.ID] = similarities[i]
	}

	criteria := hotel.SearchCriteria{
		CheckIn:  req.CheckIn,
		CheckOut: req.CheckOut,
		Adults:   req.Adults,
		Children: req.Children,
		Rooms:    req.Rooms,
	}
	criteria.Normalize()

	enhanced := s.hotels.Enhance(ctx, candidates, criteria)

	matches := make([]SemanticMatch, 0, len(enhanced))
	for _, h := range enhanced {
		if !matchesFilters(h, req) {
			continue
		}
		matches = append(matches, SemanticMatch{
			Hotel:      h,
			Similarity: similarityByID[h.Hotel.ID],
		})
		if len(matches) == resultLimit {
			break
		}
	}

	return &SemanticResult{
		Query:            query,
		Matches:          matches,
		Count:            len(matches),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
	}, nil
}

// GenerateHotelEmbeddings backfills vectors for hotels that have none and
// returns how many were processed. A single failed hotel aborts the run so
// a broken upstream does not burn the whole batch.
func (s *service) GenerateHotelEmbeddings(ctx context.Context) (int, error) {
	hotels, err := s.repo.ListMissingEmbedding(ctx, embeddingBatchSize)
	if err != nil {
		return 0, err
	}

	for i, h := range hotels {
		vector, err := s.embedder.EmbedText(ctx, hotelText(h))
		if err != nil {
			return i, fmt.Errorf("embed hotel %s failed: %w", h.ID, err)
		}
		if err := s.repo.UpdateEmbedding(ctx, h.ID, vector); err != nil {
			return i, err
		}
		log.Printf("hotel embedding stored: hotel=%s dims=%d", h.ID, len(vector))
	}

	return len(hotels), nil
}

// hotelText flattens the searchable hotel attributes into the text that
// gets embedded.
func hotelText(h *hotel.Hotel) string {
	parts := []string{
		h.Name,
		h.Description,
		fmt.Sprintf("%d star hotel", h.StarRating),
	}
	if len(h.Amenities) > 0 {
		parts = append(parts, "Amenities: "+strings.Join(h.Amenities, ", "))
	}
	location := strings.TrimSpace(strings.Join([]string{h.Location.City, h.Location.State, h.Location.Country}, " "))
	if location != "" {
		parts = append(parts, "Located in "+location)
	}
	return strings.Join(parts, ". ")
}

func matchesFilters(h *hotel.HotelWithAvailability, req SemanticRequest) bool {
	if req.MaxPrice != nil && h.MinPrice > *req.MaxPrice {
		return false
	}
	if len(req.StarRatings) > 0 && !slices.Contains(req.StarRatings, h.Hotel.StarRating) {
		return false
	}
	for _, want := range req.Amenities {
		found := false
		for _, have := range h.Hotel.Amenities {
			if strings.EqualFold(have, want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}
