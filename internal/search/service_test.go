package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
)

type fakeEmbedder struct {
	vector []float32
	err    error
	calls  []string
}

func (f *fakeEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.vector, nil
}

type fakeHotelRepo struct {
	candidates   []*hotel.Hotel
	similarities []float64
	missing      []*hotel.Hotel
	embedded     map[string][]float32
}

func (f *fakeHotelRepo) Create(ctx context.Context, h *hotel.Hotel) error { panic("not used") }

func (f *fakeHotelRepo) GetByID(ctx context.Context, id string) (*hotel.Hotel, error) {
	panic("not used")
}

func (f *fakeHotelRepo) Search(ctx context.Context, criteria hotel.SearchCriteria) ([]*hotel.Hotel, int, error) {
	panic("not used")
}

func (f *fakeHotelRepo) SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*hotel.Hotel, []float64, error) {
	return f.candidates, f.similarities, nil
}

func (f *fakeHotelRepo) ListMissingEmbedding(ctx context.Context, limit int) ([]*hotel.Hotel, error) {
	return f.missing, nil
}

func (f *fakeHotelRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	if f.embedded == nil {
		f.embedded = make(map[string][]float32)
	}
	f.embedded[id] = embedding
	return nil
}

func (f *fakeHotelRepo) AppendImage(ctx context.Context, id, url string) error { panic("not used") }

// fakeHotelService passes every candidate through as available at its
// configured price.
type fakeHotelService struct {
	priceByID map[string]float64
}

func (f *fakeHotelService) Enhance(ctx context.Context, hotels []*hotel.Hotel, criteria hotel.SearchCriteria) []*hotel.HotelWithAvailability {
	out := make([]*hotel.HotelWithAvailability, 0, len(hotels))
	for _, h := range hotels {
		price := f.priceByID[h.ID]
		out = append(out, &hotel.HotelWithAvailability{
			Hotel:    h,
			MinPrice: price,
			MaxPrice: price,
			AvailableRooms: []hotel.RoomAvailability{
				{IsAvailable: true, AvailableCount: 1, CurrentPrice: price},
			},
		})
	}
	return out
}

func (f *fakeHotelService) Create(ctx context.Context, req hotel.CreateRequest) (*hotel.Hotel, error) {
	panic("not used")
}

func (f *fakeHotelService) GetByID(ctx context.Context, id string) (*hotel.Hotel, error) {
	panic("not used")
}

func (f *fakeHotelService) Details(ctx context.Context, id string, criteria hotel.SearchCriteria) (*hotel.HotelWithAvailability, error) {
	panic("not used")
}

func (f *fakeHotelService) Search(ctx context.Context, criteria hotel.SearchCriteria) ([]*hotel.HotelWithAvailability, int, error) {
	panic("not used")
}

func (f *fakeHotelService) UploadImage(ctx context.Context, hotelID, filename string, content io.Reader) (string, error) {
	panic("not used")
}

func beachHotel(id string, stars int, amenities ...string) *hotel.Hotel {
	return &hotel.Hotel{
		ID:          id,
		Name:        "Hotel " + id,
		Description: "beachfront resort",
		StarRating:  stars,
		Amenities:   amenities,
		Location:    hotel.Location{City: "Faro", Country: "PT"},
	}
}

func TestSemanticSearchRequiresQuery(t *testing.T) {
	svc := NewService(&fakeHotelRepo{}, &fakeHotelService{}, &fakeEmbedder{})

	_, err := svc.SemanticSearch(context.Background(), SemanticRequest{Query: "   "})
	assert.ErrorIs(t, err, ErrQueryRequired)
}

func TestSemanticSearchEmbedderFailureIs503(t *testing.T) {
	embedder := &fakeEmbedder{err: errors.New("upstream down")}
	svc := NewService(&fakeHotelRepo{}, &fakeHotelService{}, embedder)

	_, err := svc.SemanticSearch(context.Background(), SemanticRequest{Query: "quiet beach resort"})
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusServiceUnavailable, appErr.Code)
}

func TestSemanticSearchAnnotatesSimilarity(t *testing.T) {
	repo := &fakeHotelRepo{
		candidates:   []*hotel.Hotel{beachHotel("h1", 4), beachHotel("h2", 3)},
		similarities: []float64{0.91, 0.74},
	}
	hotels := &fakeHotelService{priceByID: map[string]float64{"h1": 120, "h2": 80}}
	svc := NewService(repo, hotels, &fakeEmbedder{vector: []float32{0.1, 0.2}})

	result, err := svc.SemanticSearch(context.Background(), SemanticRequest{Query: "beach resort"})
	require.NoError(t, err)

	assert.Equal(t, "beach resort", result.Query)
	assert.Equal(t, 2, result.Count)
	require.Len(t, result.Matches, 2)
	assert.Equal(t, 0.91, result.Matches[0].Similarity)
	assert.Equal(t, "h1", result.Matches[0].Hotel.Hotel.ID)
	assert.GreaterOrEqual(t, result.ProcessingTimeMS, int64(0))
}

func TestSemanticSearchAppliesStructuredFilters(t *testing.T) {
	repo := &fakeHotelRepo{
		candidates: []*hotel.Hotel{
			beachHotel("h1", 5, "pool", "spa"),
			beachHotel("h2", 3, "pool"),
			beachHotel("h3", 5, "parking"),
		},
		similarities: []float64{0.9, 0.85, 0.8},
	}
	hotels := &fakeHotelService{priceByID: map[string]float64{"h1": 400, "h2": 90, "h3": 150}}
	svc := NewService(repo, hotels, &fakeEmbedder{vector: []float32{0.1}})

	maxPrice := 200.0
	result, err := svc.SemanticSearch(context.Background(), SemanticRequest{
		Query:       "beach resort",
		MaxPrice:    &maxPrice,
		StarRatings: []int{5},
	})
	require.NoError(t, err)

	// h1 is too expensive, h2 has too few stars.
	require.Len(t, result.Matches, 1)
	assert.Equal(t, "h3", result.Matches[0].Hotel.Hotel.ID)
}

func TestSemanticSearchAmenityFilterIsCaseInsensitive(t *testing.T) {
	repo := &fakeHotelRepo{
		candidates:   []*hotel.Hotel{beachHotel("h1", 4, "Pool", "Free WiFi")},
		similarities: []float64{0.8},
	}
	hotels := &fakeHotelService{priceByID: map[string]float64{"h1": 100}}
	svc := NewService(repo, hotels, &fakeEmbedder{vector: []float32{0.1}})

	result, err := svc.SemanticSearch(context.Background(), SemanticRequest{
		Query:     "city break",
		Amenities: []string{"pool", "free wifi"},
	})
	require.NoError(t, err)
	assert.Len(t, result.Matches, 1)

	result, err = svc.SemanticSearch(context.Background(), SemanticRequest{
		Query:     "city break",
		Amenities: []string{"sauna"},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Matches)
}

func TestSemanticSearchCapsResults(t *testing.T) {
	var candidates []*hotel.Hotel
	var sims []float64
	prices := map[string]float64{}
	for i := 0; i < 15; i++ {
		id := fmt.Sprintf("h%d", i)
		candidates = append(candidates, beachHotel(id, 4))
		sims = append(sims, 0.9)
		prices[id] = 100
	}

	repo := &fakeHotelRepo{candidates: candidates, similarities: sims}
	svc := NewService(repo, &fakeHotelService{priceByID: prices}, &fakeEmbedder{vector: []float32{0.1}})

	result, err := svc.SemanticSearch(context.Background(), SemanticRequest{Query: "anywhere"})
	require.NoError(t, err)
	assert.Len(t, result.Matches, resultLimit)
	assert.Equal(t, resultLimit, result.Count)
}

func TestGenerateHotelEmbeddings(t *testing.T) {
	repo := &fakeHotelRepo{
		missing: []*hotel.Hotel{beachHotel("h1", 4, "pool"), beachHotel("h2", 3)},
	}
	embedder := &fakeEmbedder{vector: []float32{0.5, 0.25}}
	svc := NewService(repo, &fakeHotelService{}, embedder)

	processed, err := svc.GenerateHotelEmbeddings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, processed)
	assert.Len(t, repo.embedded, 2)

	// The embedded text carries the searchable attributes.
	require.Len(t, embedder.calls, 2)
	assert.Contains(t, embedder.calls[0], "Hotel h1")
	assert.Contains(t, embedder.calls[0], "4 star hotel")
	assert.Contains(t, embedder.calls[0], "Amenities: pool")
	assert.Contains(t, embedder.calls[0], "Faro")
}
