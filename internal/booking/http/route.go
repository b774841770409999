package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the booking routes together with the member and room
// operations the booking engine owns.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/bookings")
	{
		group.GET("", h.List)
		group.POST("", h.Create)
		group.GET("/:id", h.Get)
		group.PATCH("/:id", h.Reschedule)
		group.POST("/:id/cancel", h.Cancel)
	}

	g.POST("/members/:id/deactivate", h.DeactivateMember)
	g.DELETE("/rooms/:id", h.DeleteRoom)
}
