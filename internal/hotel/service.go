package hotel

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hotelhive/hotel-booking-backend/internal/booking"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/apperror"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/cache"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/storage"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
)

const (
	searchCacheTTL = 2 * time.Minute
	hotelCacheTTL  = 2 * time.Minute

	thumbnailWidth  = 320
	thumbnailHeight = 240
)

// AvailabilityChecker answers dated availability questions for a room type.
// The booking service implements it.
type AvailabilityChecker interface {
	CheckAvailability(ctx context.Context, req booking.AvailabilityRequest) (*booking.AvailabilityResult, error)
}

type CreateRequest struct {
	Name         string
	Description  string
	StarRating   int
	Location     Location
	Amenities    []string
	CheckInTime  string
	CheckOutTime string
	ContactInfo  ContactInfo
	Policies     Policies
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Hotel, error)
	GetByID(ctx context.Context, id string) (*Hotel, error)
	Details(ctx context.Context, id string, criteria SearchCriteria) (*HotelWithAvailability, error)
	Search(ctx context.Context, criteria SearchCriteria) ([]*HotelWithAvailability, int, error)
	Enhance(ctx context.Context, hotels []*Hotel, criteria SearchCriteria) []*HotelWithAvailability
	UploadImage(ctx context.Context, hotelID, filename string, content io.Reader) (string, error)
}

type service struct {
	repo         Repository
	rooms        room.Service
	availability AvailabilityChecker
	cache        cache.Cache
	storage      storage.Storage
	images       *storage.ImageProcessor
}

func NewService(
	repo Repository,
	rooms room.Service,
	availability AvailabilityChecker,
	searchCache cache.Cache,
	store storage.Storage,
	images *storage.ImageProcessor,
) Service {
	if searchCache == nil {
		searchCache = cache.Nop{}
	}
	return &service{
		repo:         repo,
		rooms:        rooms,
		availability: availability,
		cache:        searchCache,
		storage:      store,
		images:       images,
	}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*Hotel, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, ErrNameRequired
	}

	h := &Hotel{
		Name:         req.Name,
		Description:  req.Description,
		StarRating:   req.StarRating,
		Location:     req.Location,
		Amenities:    req.Amenities,
		Images:       []string{},
		CheckInTime:  req.CheckInTime,
		CheckOutTime: req.CheckOutTime,
		ContactInfo:  req.ContactInfo,
		Policies:     req.Policies,
	}

	if err := s.repo.Create(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *service) GetByID(ctx context.Context, id string) (*Hotel, error) {
	key := hotelCacheKey(id)
	var cached Hotel
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Printf("hotel cache read failed: %v", err)
	} else if hit {
		return &cached, nil
	}

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, key, h, hotelCacheTTL); err != nil {
		log.Printf("hotel cache write failed: %v", err)
	}
	return h, nil
}

// Details returns one hotel with its room types annotated for the given
// stay. Unlike Search it keeps the hotel even when nothing is bookable,
// so the detail page can show a sold-out state.
func (s *service) Details(ctx context.Context, id string, criteria SearchCriteria) (*HotelWithAvailability, error) {
	criteria.Normalize()

	h, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	enhanced, err := s.enhanceHotel(ctx, h, criteria)
	if err != nil {
		return nil, err
	}
	return enhanced, nil
}

type cachedSearch struct {
	Hotels []*HotelWithAvailability `json:"hotels"`
	Total  int                      `json:"total"`
}

func (s *service) Search(ctx context.Context, criteria SearchCriteria) ([]*HotelWithAvailability, int, error) {
	criteria.Normalize()

	key := searchCacheKey(criteria)
	var cached cachedSearch
	if hit, err := s.cache.Get(ctx, key, &cached); err != nil {
		log.Printf("search cache read failed: %v", err)
	} else if hit {
		return cached.Hotels, cached.Total, nil
	}

	candidates, total, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, 0, err
	}

	results := s.Enhance(ctx, candidates, criteria)
	results = filterByPriceBand(results, criteria)
	sortResults(results, criteria)

	if err := s.cache.Set(ctx, key, cachedSearch{Hotels: results, Total: total}, searchCacheTTL); err != nil {
		log.Printf("search cache write failed: %v", err)
	}

	return results, total, nil
}

// Enhance annotates candidate hotels with live room availability and
// quoted prices, dropping hotels where nothing fits the stay. A hotel
// whose rooms cannot be loaded is dropped rather than shown with stale
// or guessed data.
func (s *service) Enhance(ctx context.Context, hotels []*Hotel, criteria SearchCriteria) []*HotelWithAvailability {
	results := make([]*HotelWithAvailability, 0, len(hotels))
	for _, h := range hotels {
		enhanced, err := s.enhanceHotel(ctx, h, criteria)
		if err != nil {
			log.Printf("hotel %s: enhancement failed: %v", h.ID, err)
			continue
		}
		if len(enhanced.AvailableRooms) == 0 {
			continue
		}
		results = append(results, enhanced)
	}
	return results
}

func (s *service) enhanceHotel(ctx context.Context, h *Hotel, criteria SearchCriteria) (*HotelWithAvailability, error) {
	roomTypes, err := s.rooms.ListByHotel(ctx, h.ID)
	if err != nil {
		return nil, fmt.Errorf("list room types for hotel %s failed: %w", h.ID, err)
	}

	guests := criteria.Adults + criteria.Children

	result := &HotelWithAvailability{
		Hotel:          h,
		AvailableRooms: []RoomAvailability{},
	}

	for _, rt := range roomTypes {
		// Occupancy is a hard filter applied before any availability work.
		if guests > rt.MaxOccupancy.Total() {
			continue
		}

		ra, ok := s.roomAvailability(ctx, rt, criteria)
		if !ok {
			continue
		}
		result.AvailableRooms = append(result.AvailableRooms, ra)

		if result.MinPrice == 0 || ra.CurrentPrice < result.MinPrice {
			result.MinPrice = ra.CurrentPrice
		}
		if ra.CurrentPrice > result.MaxPrice {
			result.MaxPrice = ra.CurrentPrice
		}
	}

	return result, nil
}

func (s *service) roomAvailability(ctx context.Context, rt *room.RoomType, criteria SearchCriteria) (RoomAvailability, bool) {
	if !criteria.HasDates() {
		// Without dates availability means positive inventory at base price.
		if rt.TotalInventory <= 0 {
			return RoomAvailability{}, false
		}
		return RoomAvailability{
			RoomType:       rt,
			IsAvailable:    true,
			AvailableCount: rt.TotalInventory,
			CurrentPrice:   rt.BasePrice,
		}, true
	}

	res, err := s.availability.CheckAvailability(ctx, booking.AvailabilityRequest{
		RoomTypeID:     rt.ID,
		CheckIn:        *criteria.CheckIn,
		CheckOut:       *criteria.CheckOut,
		RoomsRequested: criteria.Rooms,
	})
	if err != nil {
		log.Printf("room type %s: availability check failed: %v", rt.ID, err)
		return RoomAvailability{}, false
	}
	if !res.IsAvailable {
		return RoomAvailability{}, false
	}

	return RoomAvailability{
		RoomType:           rt,
		IsAvailable:        true,
		AvailableCount:     res.AvailableRooms,
		CurrentPrice:       res.Rate,
		DiscountPercentage: discountPercentage(rt.BasePrice, res.Rate),
	}, true
}

func (s *service) UploadImage(ctx context.Context, hotelID, filename string, content io.Reader) (string, error) {
	if _, err := s.repo.GetByID(ctx, hotelID); err != nil {
		return "", err
	}

	// The upload is decoded twice, once for the gallery image and once
	// for its thumbnail, so buffer it first.
	raw, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read uploaded image failed: %w", err)
	}

	processed, err := s.images.Process(bytes.NewReader(raw))
	if err != nil {
		return "", err
	}
	thumb, err := s.images.Thumbnail(bytes.NewReader(raw), thumbnailWidth, thumbnailHeight)
	if err != nil {
		return "", err
	}

	name := uuid.New().String() + ".jpg"
	storedPath := path.Join("hotels", hotelID, name)
	if err := s.storage.Save(ctx, storedPath, processed); err != nil {
		return "", apperror.Internal(fmt.Errorf("save hotel image %s failed: %w", storedPath, err),
			"failed to store image")
	}
	if err := s.storage.Save(ctx, path.Join("hotels", hotelID, "thumbs", name), thumb); err != nil {
		return "", apperror.Internal(fmt.Errorf("save hotel thumbnail %s failed: %w", name, err),
			"failed to store image")
	}

	url := "/" + storedPath
	if err := s.repo.AppendImage(ctx, hotelID, url); err != nil {
		return "", err
	}

	// The cached record no longer lists every image.
	if err := s.cache.Del(ctx, hotelCacheKey(hotelID)); err != nil {
		log.Printf("hotel cache invalidation failed: %v", err)
	}

	log.Printf("hotel image uploaded: hotel=%s file=%s stored=%s", hotelID, filename, storedPath)
	return url, nil
}

func discountPercentage(base, rate float64) int {
	if base <= 0 || rate >= base {
		return 0
	}
	return int(math.Round((base - rate) / base * 100))
}

func filterByPriceBand(results []*HotelWithAvailability, criteria SearchCriteria) []*HotelWithAvailability {
	if criteria.MinPrice == nil && criteria.MaxPrice == nil {
		return results
	}
	filtered := results[:0]
	for _, r := range results {
		if criteria.MinPrice != nil && r.MinPrice < *criteria.MinPrice {
			continue
		}
		if criteria.MaxPrice != nil && r.MaxPrice > *criteria.MaxPrice {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered
}

// sortResults orders enhanced results in memory. The sort is stable so
// hotels that compare equal keep their candidate order.
func sortResults(results []*HotelWithAvailability, criteria SearchCriteria) {
	desc := strings.EqualFold(criteria.SortOrder, "desc")

	var less func(a, b *HotelWithAvailability) bool
	switch criteria.SortBy {
	case "price":
		less = func(a, b *HotelWithAvailability) bool { return a.MinPrice < b.MinPrice }
	case "rating":
		less = func(a, b *HotelWithAvailability) bool { return a.Hotel.StarRating < b.Hotel.StarRating }
	case "name":
		less = func(a, b *HotelWithAvailability) bool { return a.Hotel.Name < b.Hotel.Name }
	default:
		return
	}

	sort.SliceStable(results, func(i, j int) bool {
		if desc {
			return less(results[j], results[i])
		}
		return less(results[i], results[j])
	})
}

func searchCacheKey(criteria SearchCriteria) string {
	raw, _ := json.Marshal(criteria)
	sum := sha256.Sum256(raw)
	return "search:hotels:" + hex.EncodeToString(sum[:])
}

func hotelCacheKey(id string) string {
	return "hotel:" + id
}
