package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/invoice"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
)

type Handler struct {
	service invoice.Service
}

func NewHandler(service invoice.Service) *Handler {
	return &Handler{service: service}
}

// Generate runs billing for the member in the path. The body is optional.
func (h *Handler) Generate(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body GenerateInvoiceBody
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(c, err)
		return
	}

	var asOf time.Time
	if body.AsOf != nil {
		asOf = *body.AsOf
	}

	inv, err := h.service.Generate(c.Request.Context(), uri.ID, asOf)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewInvoiceResponse(inv))
}

func (h *Handler) List(c *gin.Context) {
	var req ListInvoicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	invoices, total, err := h.service.List(c.Request.Context(), invoice.Filter{
		MemberID: req.MemberID,
		Status:   invoice.Status(req.Status),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]InvoiceResponse, len(invoices))
	for i, inv := range invoices {
		items[i] = NewInvoiceResponse(inv)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	inv, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInvoiceResponse(inv))
}

func (h *Handler) Close(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	inv, err := h.service.Close(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewInvoiceResponse(inv))
}
