package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the member catalog routes. Deactivation, balances and
// invoice generation hang off /members/:id but are registered by their owning modules.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/members")
	{
		group.GET("", h.List)
		group.POST("", h.Register)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Update)
	}
}
