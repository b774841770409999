package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
)

type Handler struct {
	service booking.Service
}

func NewHandler(service booking.Service) *Handler {
	return &Handler{service: service}
}

// writeError renders booking conflicts with the colliding booking attached.
func writeError(c *gin.Context, err error) {
	var conflict *booking.ConflictError
	if errors.As(err, &conflict) {
		c.JSON(http.StatusConflict, NewConflictResponse(conflict))
		return
	}
	response.Error(c, err)
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := body.Validate(); err != nil {
		response.Error(c, err)
		return
	}

	b, err := h.service.Create(c.Request.Context(), booking.CreateRequest{
		MemberID: body.MemberID,
		RoomID:   body.RoomID,
		Interval: booking.Interval{Start: body.StartTime, End: body.EndTime},
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewBookingResponse(b))
}

func (h *Handler) List(c *gin.Context) {
	var req ListBookingsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	if err := req.Validate(); err != nil {
		response.Error(c, err)
		return
	}
	req.Normalize()

	bookings, total, err := h.service.List(c.Request.Context(), booking.Filter{
		MemberID:  req.MemberID,
		RoomID:    req.RoomID,
		Status:    booking.Status(req.Status),
		From:      req.From,
		To:        req.To,
		Page:      req.Page,
		PageSize:  req.PageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]BookingResponse, len(bookings))
	for i, b := range bookings {
		items[i] = NewBookingResponse(b)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Reschedule(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body RescheduleBookingBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.Reschedule(c.Request.Context(), uri.ID, booking.Interval{Start: body.StartTime, End: body.EndTime})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) Cancel(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	b, err := h.service.Cancel(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewBookingResponse(b))
}

func (h *Handler) DeactivateMember(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.service.DeactivateMember(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) DeleteRoom(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	if err := h.service.DeleteRoom(c.Request.Context(), uri.ID); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
