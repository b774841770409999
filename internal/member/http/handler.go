package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/member"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/request"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
)

type Handler struct {
	service member.Service
}

func NewHandler(service member.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) Register(c *gin.Context) {
	var body RegisterMemberBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	m, err := h.service.Register(c.Request.Context(), member.RegisterRequest{
		FullName:  body.FullName,
		Email:     body.Email,
		Phone:     body.Phone,
		CompanyID: body.CompanyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, NewMemberResponse(m))
}

func (h *Handler) List(c *gin.Context) {
	var req ListMembersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	req.Normalize()

	members, total, err := h.service.List(c.Request.Context(), member.Filter{
		Status:   member.Status(req.Status),
		Query:    req.Query,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberResponse, len(members))
	for i, m := range members {
		items[i] = NewMemberResponse(m)
	}
	c.JSON(http.StatusOK, response.NewPageResponse(items, req.Page, req.PageSize, total))
}

func (h *Handler) Get(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	m, err := h.service.GetByID(c.Request.Context(), uri.ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}

func (h *Handler) Update(c *gin.Context) {
	var uri request.ByIDRequest
	if err := c.ShouldBindUri(&uri); err != nil {
		response.BadRequest(c, err)
		return
	}

	var body UpdateMemberBody
	if err := c.ShouldBindJSON(&body); err != nil {
		response.BadRequest(c, err)
		return
	}

	m, err := h.service.Update(c.Request.Context(), uri.ID, member.UpdateRequest{
		FullName:  body.FullName,
		Email:     body.Email,
		Phone:     body.Phone,
		CompanyID: body.CompanyID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewMemberResponse(m))
}
