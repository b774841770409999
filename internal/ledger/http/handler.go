package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
)

type Handler struct {
	service ledger.Service
}

func NewHandler(service ledger.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RecordPayment(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body RecordPaymentBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	p, err := h.service.RecordPayment(c.Request.Context(), ledger.RecordPaymentRequest{
		InvoiceID: uri.ID,
		Amount:    *body.Amount,
		Method:    ledger.Method(body.Method),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewPaymentResponse(p))
}

func (h *Handler) InvoiceBalance(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.InvoiceBalance(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBalanceResponse(b))
}

func (h *Handler) MemberBalance(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.MemberBalance(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBalanceResponse(b))
}

func (h *Handler) ListPayments(c *gin.Context) {
	var req ListPaymentsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	payments, total, err := h.service.ListPayments(c.Request.Context(), ledger.PaymentFilter{
		InvoiceID: req.InvoiceID,
		MemberID:  req.MemberID,
		Page:      req.Page,
		PageSize:  req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		items[i] = NewPaymentResponse(p)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}
