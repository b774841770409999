package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers invoice routes. Balances and payments under
// /invoices/:id are registered by the ledger module.
func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	group := g.Group("/invoices")
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("/:id/close", h.Close)
	}

	g.POST("/members/:id/invoices", h.Generate)
}
