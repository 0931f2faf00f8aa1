package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hotelhive/hotel-booking-backend/internal/auth"
	"github.com/hotelhive/hotel-booking-backend/internal/booking"
	bookingHttp "github.com/hotelhive/hotel-booking-backend/internal/booking/http"
	"github.com/hotelhive/hotel-booking-backend/internal/hotel"
	hotelHttp "github.com/hotelhive/hotel-booking-backend/internal/hotel/http"
	"github.com/hotelhive/hotel-booking-backend/internal/room"
	"github.com/hotelhive/hotel-booking-backend/internal/search"
	searchHttp "github.com/hotelhive/hotel-booking-backend/internal/search/http"
	"github.com/hotelhive/hotel-booking-backend/internal/user"
	userHttp "github.com/hotelhive/hotel-booking-backend/internal/user/http"
)

// Config holds the services and settings the router needs.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService    user.Service
	HotelService   hotel.Service
	RoomService    room.Service
	BookingService booking.Service
	SearchService  search.Service

	JWTManager *auth.JWTManager
}

// NewRouter assembles middleware (CORS, Logger, Auth) and registers the
// routes of every module under /v1.
func NewRouter(cfg Config) *gin.Engine {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction {
		corsConfig.AllowOrigins = splitOrigins(cfg.ProdOrigins)
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	authMiddleware := auth.AuthRequired(cfg.JWTManager)

	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	hotelHandler := hotelHttp.NewHandler(cfg.HotelService, cfg.RoomService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)
	searchHandler := searchHttp.NewHandler(cfg.SearchService)

	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		hotelHttp.RegisterRoutes(v1, hotelHandler, authMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware)
		searchHttp.RegisterRoutes(v1, searchHandler, authMiddleware)
	}

	return r
}

func splitOrigins(origins string) []string {
	var out []string
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}
