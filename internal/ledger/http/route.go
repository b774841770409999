package http

import (
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(g *gin.RouterGroup, h *Handler) {
	g.GET("/payments", h.ListPayments)
	g.POST("/invoices/:id/payments", h.RecordPayment)
	g.GET("/invoices/:id/balance", h.InvoiceBalance)
	g.GET("/members/:id/balance", h.MemberBalance)
}
