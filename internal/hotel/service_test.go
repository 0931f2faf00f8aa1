package hotel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hotelhive/hotel-booking-backend/internal/booking"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/storage"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

type fakeHotelRepo struct {
	hotels      map[string]*Hotel
	searchTotal int
	getCalls    int
	appended    []string
}

func (f *fakeHotelRepo) Create(ctx context.Context, h *Hotel) error {
	h.ID = "hotel-new"
	f.hotels[h.ID] = h
	return nil
}

func (f *fakeHotelRepo) GetByID(ctx context.Context, id string) (*Hotel, error) {
	f.getCalls++
	h, ok := f.hotels[id]
	if !ok {
		return nil, ErrNotFound
	}
	return h, nil
}

func (f *fakeHotelRepo) Search(ctx context.Context, criteria SearchCriteria) ([]*Hotel, int, error) {
	var out []*Hotel
	for _, h := range f.hotels {
		out = append(out, h)
	}
	return out, f.searchTotal, nil
}

func (f *fakeHotelRepo) SearchByEmbedding(ctx context.Context, embedding []float32, threshold float64, limit int) ([]*Hotel, []float64, error) {
	return nil, nil, nil
}

func (f *fakeHotelRepo) ListMissingEmbedding(ctx context.Context, limit int) ([]*Hotel, error) {
	return nil, nil
}

func (f *fakeHotelRepo) UpdateEmbedding(ctx context.Context, id string, embedding []float32) error {
	return nil
}

func (f *fakeHotelRepo) AppendImage(ctx context.Context, id, url string) error {
	f.appended = append(f.appended, url)
	return nil
}

// fakeCache is an in-memory Cache that records invalidations.
type fakeCache struct {
	data    map[string][]byte
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	raw, ok := f.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (f *fakeCache) Set(ctx context.Context, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f.data[key] = raw
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	delete(f.data, key)
	f.deleted = append(f.deleted, key)
	return nil
}

type fakeStorage struct {
	saved map[string][]byte
	err   error
}

func (f *fakeStorage) Save(ctx context.Context, path string, content io.Reader) error {
	if f.err != nil {
		return f.err
	}
	raw, err := io.ReadAll(content)
	if err != nil {
		return err
	}
	if f.saved == nil {
		f.saved = make(map[string][]byte)
	}
	f.saved[path] = raw
	return nil
}

func (f *fakeStorage) Get(ctx context.Context, path string) (io.ReadCloser, error) {
	panic("not used")
}

func (f *fakeStorage) Delete(ctx context.Context, path string) error {
	panic("not used")
}

type fakeRooms struct {
	byHotel map[string][]*room.RoomType
}

func (f *fakeRooms) ListByHotel(ctx context.Context, hotelID string) ([]*room.RoomType, error) {
	return f.byHotel[hotelID], nil
}

func (f *fakeRooms) GetByID(ctx context.Context, id string) (*room.RoomType, error) {
	panic("not used")
}

func (f *fakeRooms) Create(ctx context.Context, req room.CreateRequest) (*room.RoomType, error) {
	panic("not used")
}

func (f *fakeRooms) Update(ctx context.Context, id string, req room.UpdateRequest) (*room.RoomType, error) {
	panic("not used")
}

func (f *fakeRooms) Delete(ctx context.Context, id string) error {
	panic("not used")
}

// fakeChecker returns canned availability per room type.
type fakeChecker struct {
	results map[string]*booking.AvailabilityResult
}

func (f *fakeChecker) CheckAvailability(ctx context.Context, req booking.AvailabilityRequest) (*booking.AvailabilityResult, error) {
	r, ok := f.results[req.RoomTypeID]
	if !ok {
		return nil, booking.ErrRoomTypeNotFound
	}
	return r, nil
}

func testHotel(id, name string, stars int) *Hotel {
	return &Hotel{
		ID:         id,
		Name:       name,
		StarRating: stars,
		Location:   Location{City: "Lisbon", Country: "PT"},
	}
}

func datedCriteria() SearchCriteria {
	in := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	out := time.Date(2026, time.March, 19, 0, 0, 0, 0, time.UTC)
	c := SearchCriteria{CheckIn: &in, CheckOut: &out, Adults: 2}
	c.Normalize()
	return c
}

func TestEnhanceDropsRoomsExceedingOccupancy(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {
			{ID: "small", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 1}, BasePrice: 50, TotalInventory: 5},
			{ID: "big", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2, Children: 2}, BasePrice: 120, TotalInventory: 5},
		},
	}}
	checker := &fakeChecker{results: map[string]*booking.AvailabilityResult{
		"small": {IsAvailable: true, AvailableRooms: 5, Rate: 50},
		"big":   {IsAvailable: true, AvailableRooms: 5, Rate: 120},
	}}
	svc := NewService(repo, rooms, checker, nil, nil, nil)

	criteria := datedCriteria()
	criteria.Adults = 3

	results := svc.Enhance(context.Background(), []*Hotel{repo.hotels["h1"]}, criteria)
	require.Len(t, results, 1)
	require.Len(t, results[0].AvailableRooms, 1)
	assert.Equal(t, "big", results[0].AvailableRooms[0].RoomType.ID)
}

func TestEnhanceDropsHotelsWithNothingBookable(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{
		"h1": testHotel("h1", "Alfa", 4),
		"h2": testHotel("h2", "Bravo", 3),
	}}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {{ID: "r1", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 80, TotalInventory: 3}},
		"h2": {{ID: "r2", HotelID: "h2", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 60, TotalInventory: 3}},
	}}
	checker := &fakeChecker{results: map[string]*booking.AvailabilityResult{
		"r1": {IsAvailable: true, AvailableRooms: 2, Rate: 88},
		"r2": {IsAvailable: false, AvailableRooms: 0, Rate: 60},
	}}
	svc := NewService(repo, rooms, checker, nil, nil, nil)

	results := svc.Enhance(context.Background(),
		[]*Hotel{repo.hotels["h1"], repo.hotels["h2"]}, datedCriteria())

	require.Len(t, results, 1)
	assert.Equal(t, "h1", results[0].Hotel.ID)
}

func TestEnhanceWithoutDatesUsesInventoryAndBasePrice(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {
			{ID: "r1", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 80, TotalInventory: 3},
			{ID: "empty", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 40, TotalInventory: 0},
		},
	}}
	// The checker must never be called on the dateless path.
	checker := &fakeChecker{results: map[string]*booking.AvailabilityResult{}}
	svc := NewService(repo, rooms, checker, nil, nil, nil)

	criteria := SearchCriteria{Adults: 2}
	criteria.Normalize()

	results := svc.Enhance(context.Background(), []*Hotel{repo.hotels["h1"]}, criteria)
	require.Len(t, results, 1)
	require.Len(t, results[0].AvailableRooms, 1)

	ra := results[0].AvailableRooms[0]
	assert.Equal(t, "r1", ra.RoomType.ID)
	assert.Equal(t, 3, ra.AvailableCount)
	assert.Equal(t, 80.0, ra.CurrentPrice)
	assert.Zero(t, ra.DiscountPercentage)
}

func TestEnhanceComputesDiscountAndPriceBand(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {
			{ID: "cheap", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 100, TotalInventory: 3},
			{ID: "plush", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 200, TotalInventory: 3},
		},
	}}
	checker := &fakeChecker{results: map[string]*booking.AvailabilityResult{
		"cheap": {IsAvailable: true, AvailableRooms: 3, Rate: 90}, // 10% below base
		"plush": {IsAvailable: true, AvailableRooms: 3, Rate: 220},
	}}
	svc := NewService(repo, rooms, checker, nil, nil, nil)

	results := svc.Enhance(context.Background(), []*Hotel{repo.hotels["h1"]}, datedCriteria())
	require.Len(t, results, 1)

	h := results[0]
	assert.Equal(t, 90.0, h.MinPrice)
	assert.Equal(t, 220.0, h.MaxPrice)

	byID := map[string]RoomAvailability{}
	for _, ra := range h.AvailableRooms {
		byID[ra.RoomType.ID] = ra
	}
	assert.Equal(t, 10, byID["cheap"].DiscountPercentage)
	assert.Zero(t, byID["plush"].DiscountPercentage)
}

func TestSearchSortsByPrice(t *testing.T) {
	repo := &fakeHotelRepo{
		hotels: map[string]*Hotel{
			"h1": testHotel("h1", "Alfa", 4),
			"h2": testHotel("h2", "Bravo", 3),
			"h3": testHotel("h3", "Charlie", 5),
		},
		searchTotal: 3,
	}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {{ID: "r1", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 150, TotalInventory: 2}},
		"h2": {{ID: "r2", HotelID: "h2", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 70, TotalInventory: 2}},
		"h3": {{ID: "r3", HotelID: "h3", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 300, TotalInventory: 2}},
	}}
	svc := NewService(repo, rooms, &fakeChecker{}, nil, nil, nil)

	criteria := SearchCriteria{SortBy: "price"}
	results, total, err := svc.Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, results, 3)
	assert.Equal(t, "h2", results[0].Hotel.ID)
	assert.Equal(t, "h1", results[1].Hotel.ID)
	assert.Equal(t, "h3", results[2].Hotel.ID)

	criteria.SortOrder = "desc"
	results, _, err = svc.Search(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, "h3", results[0].Hotel.ID)
	assert.Equal(t, "h2", results[2].Hotel.ID)
}

func TestSearchAppliesPriceBandFilter(t *testing.T) {
	repo := &fakeHotelRepo{
		hotels: map[string]*Hotel{
			"h1": testHotel("h1", "Alfa", 4),
			"h2": testHotel("h2", "Bravo", 3),
		},
		searchTotal: 2,
	}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {{ID: "r1", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 150, TotalInventory: 2}},
		"h2": {{ID: "r2", HotelID: "h2", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 70, TotalInventory: 2}},
	}}
	svc := NewService(repo, rooms, &fakeChecker{}, nil, nil, nil)

	maxPrice := 100.0
	results, _, err := svc.Search(context.Background(), SearchCriteria{MaxPrice: &maxPrice})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "h2", results[0].Hotel.ID)
}

func TestDetailsKeepsSoldOutHotel(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	rooms := &fakeRooms{byHotel: map[string][]*room.RoomType{
		"h1": {{ID: "r1", HotelID: "h1", MaxOccupancy: room.Occupancy{Adults: 2}, BasePrice: 80, TotalInventory: 2}},
	}}
	checker := &fakeChecker{results: map[string]*booking.AvailabilityResult{
		"r1": {IsAvailable: false, AvailableRooms: 0, Rate: 80},
	}}
	svc := NewService(repo, rooms, checker, nil, nil, nil)

	details, err := svc.Details(context.Background(), "h1", datedCriteria())
	require.NoError(t, err)
	assert.Equal(t, "h1", details.Hotel.ID)
	assert.Empty(t, details.AvailableRooms)
}

func TestDetailsUnknownHotel(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{}}
	svc := NewService(repo, &fakeRooms{}, &fakeChecker{}, nil, nil, nil)

	_, err := svc.Details(context.Background(), "missing", SearchCriteria{})
	assert.ErrorIs(t, err, ErrNotFound)
}

// pngUpload encodes a small image the way a client upload would arrive.
func pngUpload(t *testing.T) io.Reader {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, image.NewRGBA(image.Rect(0, 0, 8, 8))))
	return buf
}

func TestGetByIDServesFromCache(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	cached := newFakeCache()
	svc := NewService(repo, &fakeRooms{}, &fakeChecker{}, cached, nil, nil)

	first, err := svc.GetByID(context.Background(), "h1")
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	second, err := svc.GetByID(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls, "second read must come from the cache")
	assert.Equal(t, first.Name, second.Name)
}

func TestUploadImageStoresGalleryImageAndThumbnail(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	store := &fakeStorage{}
	svc := NewService(repo, &fakeRooms{}, &fakeChecker{}, newFakeCache(), store, storage.NewImageProcessor())

	url, err := svc.UploadImage(context.Background(), "h1", "lobby.png", pngUpload(t))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "/hotels/h1/"), "url %q", url)
	assert.Equal(t, []string{url}, repo.appended)

	require.Len(t, store.saved, 2)
	var thumbs int
	for p := range store.saved {
		if strings.HasPrefix(p, "hotels/h1/thumbs/") {
			thumbs++
		}
	}
	assert.Equal(t, 1, thumbs)
}

func TestUploadImageInvalidatesCachedHotel(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	cached := newFakeCache()
	svc := NewService(repo, &fakeRooms{}, &fakeChecker{}, cached, &fakeStorage{}, storage.NewImageProcessor())

	_, err := svc.GetByID(context.Background(), "h1")
	require.NoError(t, err)

	_, err = svc.UploadImage(context.Background(), "h1", "lobby.png", pngUpload(t))
	require.NoError(t, err)
	assert.Contains(t, cached.deleted, "hotel:h1")

	// The next read goes back to the repository.
	before := repo.getCalls
	_, err = svc.GetByID(context.Background(), "h1")
	require.NoError(t, err)
	assert.Equal(t, before+1, repo.getCalls)
}

func TestUploadImageStorageFailure(t *testing.T) {
	repo := &fakeHotelRepo{hotels: map[string]*Hotel{"h1": testHotel("h1", "Alfa", 4)}}
	store := &fakeStorage{err: errors.New("disk full")}
	svc := NewService(repo, &fakeRooms{}, &fakeChecker{}, newFakeCache(), store, storage.NewImageProcessor())

	_, err := svc.UploadImage(context.Background(), "h1", "lobby.png", pngUpload(t))
	require.Error(t, err)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusInternalServerError, appErr.Code)
	assert.Empty(t, repo.appended, "a failed upload must not be recorded on the hotel")
}
