package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/hotels")

	// === Public Routes ===
	group.GET("", h.Search)
	group.GET("/:id", h.Get)
	group.GET("/:id/rooms", h.ListRoomTypes)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("", h.Create)
		authed.POST("/:id/images", h.UploadImage)
		authed.POST("/:id/rooms", h.CreateRoomType)
	}
}
