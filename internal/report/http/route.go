package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/reports")
	{
		group.GET("/summary", h.Summary)
		group.GET("/revenue-by-day", h.RevenueByDay)
		group.GET("/top-dues", h.TopDues)
		group.GET("/bookings-per-room", h.BookingsPerRoom)
		group.GET("/member-balances", h.MemberBalances)
	}
}
