package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc) {
	group := g.Group("/search")

	// === Public Routes ===
	group.POST("/semantic", h.SemanticSearch)

	// === Authenticated Routes ===
	authed := group.Group("")
	authed.Use(authMiddleware)
	{
		authed.POST("/embeddings/generate", h.GenerateEmbeddings)
	}
}
