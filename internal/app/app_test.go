package app_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nekogravitycat/coworking-ledger/internal/app"
	bookingHttp "github.com/nekogravitycat/coworking-ledger/internal/booking/http"
	invoiceHttp "github.com/nekogravitycat/coworking-ledger/internal/invoice/http"
	ledgerHttp "github.com/nekogravitycat/coworking-ledger/internal/ledger/http"
	memberHttp "github.com/nekogravitycat/coworking-ledger/internal/member/http"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/clock"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/money"
	reportHttp "github.com/nekogravitycat/coworking-ledger/internal/report/http"
	roomHttp "github.com/nekogravitycat/coworking-ledger/internal/room/http"
)

var now = time.Date(2025, 3, 10, 18, 0, 0, 0, time.UTC)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	c, err := app.NewContainer(app.Config{
		Logger: zaptest.NewLogger(t),
		Clock:  clock.NewFixed(now),
	})
	require.NoError(t, err)
	return c.Router
}

// executeRequest sends a JSON request to the router and returns the recorder.
func executeRequest(r *gin.Engine, method, url string, body any) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, url, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealthz(t *testing.T) {
	w := executeRequest(newRouter(t), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestBookingToPaymentFlow(t *testing.T) {
	r := newRouter(t)

	w := executeRequest(r, http.MethodPost, "/v1/members", gin.H{"full_name": "Ada Lovelace", "email": "ada@example.com"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	ada := decode[memberHttp.MemberResponse](t, w)

	w = executeRequest(r, http.MethodPost, "/v1/members", gin.H{"full_name": "Bob", "email": "bob@example.com"})
	require.Equal(t, http.StatusCreated, w.Code)
	bob := decode[memberHttp.MemberResponse](t, w)

	w = executeRequest(r, http.MethodPost, "/v1/rooms", gin.H{"name": "Meeting A", "kind": "MEETING", "capacity": 6, "hourly_rate": "50.00"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	meeting := decode[roomHttp.RoomResponse](t, w)

	w = executeRequest(r, http.MethodPost, "/v1/rooms", gin.H{"name": "Desk 1", "kind": "DESK", "hourly_rate": "30.00"})
	require.Equal(t, http.StatusCreated, w.Code)
	desk := decode[roomHttp.RoomResponse](t, w)

	morning := now.Add(-8 * time.Hour) // 10:00
	book := func(memberID, roomID string, start time.Time, d time.Duration) *httptest.ResponseRecorder {
		return executeRequest(r, http.MethodPost, "/v1/bookings", gin.H{
			"member_id":  memberID,
			"room_id":    roomID,
			"start_time": start,
			"end_time":   start.Add(d),
		})
	}

	w = book(ada.ID, meeting.ID, morning, time.Hour)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	first := decode[bookingHttp.BookingResponse](t, w)

	// Same room, overlapping by 30 minutes.
	w = book(bob.ID, meeting.ID, morning.Add(30*time.Minute), time.Hour)
	require.Equal(t, http.StatusConflict, w.Code)
	conflict := decode[bookingHttp.ConflictResponse](t, w)
	assert.Equal(t, first.ID, conflict.BookingID)

	// Back to back is fine.
	w = book(bob.ID, meeting.ID, morning.Add(time.Hour), time.Hour)
	require.Equal(t, http.StatusCreated, w.Code)

	w = book(ada.ID, desk.ID, morning, time.Hour)
	require.Equal(t, http.StatusCreated, w.Code)

	// A future booking blocks deactivation.
	w = book(bob.ID, desk.ID, now.Add(24*time.Hour), time.Hour)
	require.Equal(t, http.StatusCreated, w.Code)
	future := decode[bookingHttp.BookingResponse](t, w)
	assert.Equal(t, http.StatusConflict, executeRequest(r, http.MethodPost, "/v1/members/"+bob.ID+"/deactivate", nil).Code)
	assert.Equal(t, http.StatusOK, executeRequest(r, http.MethodPost, "/v1/bookings/"+future.ID+"/cancel", nil).Code)
	assert.Equal(t, http.StatusNoContent, executeRequest(r, http.MethodPost, "/v1/members/"+bob.ID+"/deactivate", nil).Code)
	assert.Equal(t, http.StatusBadRequest, book(bob.ID, desk.ID, now.Add(48*time.Hour), time.Hour).Code)

	// Rooms with bookings cannot be deleted.
	assert.Equal(t, http.StatusConflict, executeRequest(r, http.MethodDelete, "/v1/rooms/"+desk.ID, nil).Code)

	// Invoice Ada: 1h at 50.00 plus 1h at 30.00.
	w = executeRequest(r, http.MethodPost, "/v1/members/"+ada.ID+"/invoices", nil)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	inv := decode[invoiceHttp.InvoiceResponse](t, w)
	require.Len(t, inv.Lines, 2)
	assert.True(t, money.MustParse("80").Equal(inv.Total))
	assert.Equal(t, "2025-03-10", inv.IssueDate)

	w = executeRequest(r, http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", gin.H{"amount": "40.00", "method": "CARD"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	payment := decode[ledgerHttp.PaymentResponse](t, w)
	assert.Equal(t, "CARD", payment.Method)

	assert.Equal(t, http.StatusBadRequest,
		executeRequest(r, http.MethodPost, "/v1/invoices/"+inv.ID+"/payments", gin.H{"amount": "1.001"}).Code)

	w = executeRequest(r, http.MethodGet, "/v1/invoices/"+inv.ID+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	bal := decode[ledgerHttp.BalanceResponse](t, w)
	assert.True(t, money.MustParse("80").Equal(bal.Total))
	assert.True(t, money.MustParse("40").Equal(bal.Paid))
	assert.True(t, money.MustParse("40").Equal(bal.Due))

	w = executeRequest(r, http.MethodGet, "/v1/members/"+ada.ID+"/balance", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, money.MustParse("40").Equal(decode[ledgerHttp.BalanceResponse](t, w).Due))

	// Billed bookings cannot move.
	w = executeRequest(r, http.MethodPatch, "/v1/bookings/"+first.ID, gin.H{
		"start_time": morning.Add(2 * time.Hour),
		"end_time":   morning.Add(3 * time.Hour),
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	// Dashboard.
	w = executeRequest(r, http.MethodGet, "/v1/reports/summary", nil)
	require.Equal(t, http.StatusOK, w.Code)
	summary := decode[reportHttp.SummaryResponse](t, w)
	assert.Equal(t, 2, summary.Members)
	assert.Equal(t, 1, summary.ActiveMembers)
	assert.Equal(t, 4, summary.Bookings)
	assert.True(t, money.MustParse("40").Equal(summary.TotalRevenue))

	w = executeRequest(r, http.MethodGet, "/v1/reports/top-dues", nil)
	require.Equal(t, http.StatusOK, w.Code)
	dues := decode[reportHttp.ListResponse[reportHttp.MemberDueResponse]](t, w)
	require.Len(t, dues.Items, 1)
	assert.Equal(t, ada.ID, dues.Items[0].MemberID)

	w = executeRequest(r, http.MethodGet, "/v1/reports/revenue-by-day?days=7", nil)
	require.Equal(t, http.StatusOK, w.Code)
	revenue := decode[reportHttp.ListResponse[reportHttp.DailyRevenueResponse]](t, w)
	require.Len(t, revenue.Items, 1)
	assert.Equal(t, "2025-03-10", revenue.Items[0].Day)

	w = executeRequest(r, http.MethodGet, "/v1/reports/bookings-per-room", nil)
	require.Equal(t, http.StatusOK, w.Code)
	perRoom := decode[reportHttp.ListResponse[reportHttp.RoomBookingsResponse]](t, w)
	require.Len(t, perRoom.Items, 2)
	assert.Equal(t, "Desk 1", perRoom.Items[0].RoomName)
	assert.Equal(t, 2, perRoom.Items[0].Bookings)
}

func TestRateLimit(t *testing.T) {
	c, err := app.NewContainer(app.Config{RateLimit: "2-M", Clock: clock.NewFixed(now)})
	require.NoError(t, err)

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		codes = append(codes, executeRequest(c.Router, http.MethodGet, "/v1/rooms", nil).Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Health checks sit outside the limited group.
	assert.Equal(t, http.StatusOK, executeRequest(c.Router, http.MethodGet, "/healthz", nil).Code)

	_, err = app.NewContainer(app.Config{RateLimit: "lots"})
	assert.Error(t, err)
}
