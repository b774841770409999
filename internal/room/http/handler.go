package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
	"github.com/nekogravitycat/coworking-ledger/internal/room"
)

type Handler struct {
	service room.Service
}

func NewHandler(service room.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Create(c *gin.Context) {
	var body CreateRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	r, err := h.service.Create(c.Request.Context(), room.CreateRequest{
		Name:       body.Name,
		Kind:       room.Kind(body.Kind),
		Capacity:   body.Capacity,
		HourlyRate: body.HourlyRate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusCreated, NewRoomResponse(r))
}

func (h *Handler) List(c *gin.Context) {
	var req ListRoomsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	rooms, total, err := h.service.List(c.Request.Context(), room.Filter{
		Kind:     room.Kind(req.Kind),
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomResponse, len(rooms))
	for i, r := range rooms {
		items[i] = NewRoomResponse(r)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	r, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(r))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body UpdateRoomBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	req := room.UpdateRequest{
		Name:       body.Name,
		Capacity:   body.Capacity,
		HourlyRate: body.HourlyRate,
	}
	if body.Kind != nil {
		k := room.Kind(*body.Kind)
		req.Kind = &k
	}

	r, err := h.service.Update(c.Request.Context(), uri.ID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewRoomResponse(r))
}
