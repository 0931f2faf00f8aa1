package app

import (
	"context"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hotelhive/hotel-booking-backend/internal/api"
	"github.com/hotelhive/hotel-booking-backend/internal/auth"
	"github.com/hotelhive/hotel-booking-backend/internal/booking"
	"github.com/hotelhive/hotel-booking-backend/internal/event"
	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/cache"
	"github.com/hotelhive/hotel-booking-backend/internal/pkg/storage"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
	"github.com/hotelhive/hotel-booking-backend/internal/search"
	"github.com/hotelhive/hotel-booking-backend/internal/user"
)

// Config holds the dependencies and settings required to start the application.
type Config struct {
	IsProduction bool
	ProdOrigins  string
	DBPool       *pgxpool.Pool
	JWTSecret    string
	JWTTTL       time.Duration
	BcryptCost   int

	GeminiAPIKey   string
	EmbeddingModel string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	AMQPURL       string

	UploadDir string
	Currency  string
}

// Container holds the initialized components that are needed externally.
type Container struct {
	Router     *gin.Engine
	JWTManager *auth.JWTManager
}

// NewContainer initializes all modules and returns the container. Optional
// infrastructure (Redis, RabbitMQ, Gemini) degrades to no-op implementations
// when unconfigured.
func NewContainer(ctx context.Context, cfg Config) (*Container, error) {
	// Init Components
	passwordHasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	var searchCache cache.Cache = cache.Nop{}
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			// A broken cache should not block startup.
			log.Printf("redis unavailable, search caching disabled: %v", err)
		} else {
			searchCache = redisCache
		}
	}

	var events event.Publisher = event.Nop{}
	if cfg.AMQPURL != "" {
		events = event.NewAMQPPublisher(cfg.AMQPURL)
	}

	store, err := storage.NewLocalStorage(cfg.UploadDir)
	if err != nil {
		return nil, err
	}
	imageProcessor := storage.NewImageProcessor()

	// User Module
	userRepo := user.NewPgxRepository(cfg.DBPool)
	userService := user.NewService(userRepo, passwordHasher)

	// Room Module
	roomRepo := room.NewPgxRepository(cfg.DBPool)
	roomService := room.NewService(roomRepo)

	// Booking Module
	pricingEngine := booking.NewPricingEngine(cfg.Currency)
	bookingRepo := booking.NewPgxRepository(cfg.DBPool)
	bookingService := booking.NewService(bookingRepo, roomService, pricingEngine, events)

	// Hotel Module
	hotelRepo := hotel.NewPgxRepository(cfg.DBPool)
	hotelService := hotel.NewService(hotelRepo, roomService, bookingService, searchCache, store, imageProcessor)

	// Search Module
	var embedder search.Embedder = search.Disabled{}
	if cfg.GeminiAPIKey != "" {
		embedder = search.NewGeminiEmbedder(cfg.GeminiAPIKey, cfg.EmbeddingModel)
	}
	searchService := search.NewService(hotelRepo, hotelService, embedder)

	// Router
	router := api.NewRouter(api.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		UserService:    userService,
		HotelService:   hotelService,
		RoomService:    roomService,
		BookingService: bookingService,
		SearchService:  searchService,
		JWTManager:     jwtManager,
	})

	return &Container{
		Router:     router,
		JWTManager: jwtManager,
	}, nil
}
