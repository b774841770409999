package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the room catalog routes. DELETE /rooms/:id belongs to the booking module.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/rooms")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
	}
}
