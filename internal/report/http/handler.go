package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nekogravitycat/coworking-ledger/internal/ledger"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
	"github.com/nekogravitycat/coworking-ledger/internal/report"
)

// Defaults apply when a report request leaves its window or limit unset.
type Defaults struct {
	RevenueDays  int
	TopDuesLimit int
}

type Handler struct {
	reports  report.Service
	ledger   ledger.Service
	defaults Defaults
}

func NewHandler(reports report.Service, ledgerService ledger.Service, defaults Defaults) *Handler {
	return &Handler{reports: reports, ledger: ledgerService, defaults: defaults}
}

func (h *Handler) Summary(c *gin.Context) {
	s, err := h.reports.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.JSON(http.StatusOK, NewSummaryResponse(s))
}

func (h *Handler) BookingsPerRoom(c *gin.Context) {
	rows, err := h.reports.BookingsPerRoom(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]RoomBookingsResponse, len(rows))
	for i, r := range rows {
		items[i] = RoomBookingsResponse{RoomID: r.RoomID, RoomName: r.RoomName, Bookings: r.Bookings}
	}
	c.JSON(http.StatusOK, newListResponse(items))
}

// RevenueByDay serves ?days=N; days=0 returns every day.
func (h *Handler) RevenueByDay(c *gin.Context) {
	var req RevenueByDayRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	days := h.defaults.RevenueDays
	if req.Days != nil {
		days = *req.Days
	}

	rows, err := h.ledger.RevenueByDay(c.Request.Context(), days)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]DailyRevenueResponse, len(rows))
	for i, d := range rows {
		items[i] = NewDailyRevenueResponse(d)
	}
	c.JSON(http.StatusOK, newListResponse(items))
}

func (h *Handler) TopDues(c *gin.Context) {
	var req TopDuesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	limit := h.defaults.TopDuesLimit
	if req.Limit != nil {
		limit = *req.Limit
	}

	rows, err := h.ledger.TopDues(c.Request.Context(), limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberDueResponse, len(rows))
	for i, d := range rows {
		items[i] = MemberDueResponse{MemberID: d.MemberID, MemberName: d.MemberName, Due: d.Due}
	}
	c.JSON(http.StatusOK, newListResponse(items))
}

func (h *Handler) MemberBalances(c *gin.Context) {
	rows, err := h.ledger.MemberBalances(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	items := make([]MemberBalanceResponse, len(rows))
	for i, b := range rows {
		items[i] = MemberBalanceResponse{
			MemberID:   b.MemberID,
			MemberName: b.MemberName,
			Total:      b.Total,
			Paid:       b.Paid,
			Due:        b.Due,
		}
	}
	c.JSON(http.StatusOK, newListResponse(items))
}
