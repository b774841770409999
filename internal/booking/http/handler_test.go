package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/nekogravitycat/coworking-ledger/internal/booking"
	bookingHttp "github.com/nekogravitycat/coworking-ledger/internal/booking/http"
	"github.com/nekogravitycat/coworking-ledger/internal/pkg/response"
)

// --- Mock booking.Service ---
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) Create(ctx context.Context, req booking.CreateRequest) (*booking.Booking, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) List(ctx context.Context, filter booking.Filter) ([]*booking.Booking, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]*booking.Booking), args.Int(1), args.Error(2)
}

func (m *MockBookingService) Cancel(ctx context.Context, id string) (*booking.Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) Reschedule(ctx context.Context, id string, interval booking.Interval) (*booking.Booking, error) {
	args := m.Called(ctx, id, interval)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*booking.Booking), args.Error(1)
}

func (m *MockBookingService) DeactivateMember(ctx context.Context, memberID string) error {
	return m.Called(ctx, memberID).Error(0)
}

func (m *MockBookingService) DeleteRoom(ctx context.Context, roomID string) error {
	return m.Called(ctx, roomID).Error(0)
}

var start = time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC)

func setupRouter(svc booking.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	bookingHttp.RegisterRoutes(r.Group("/v1"), bookingHttp.NewHandler(svc))
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req := httptest.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingHandler(t *testing.T) {
	memberID, roomID := uuid.NewString(), uuid.NewString()
	body := bookingHttp.CreateBookingBody{
		MemberID:  memberID,
		RoomID:    roomID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
	}
	req := booking.CreateRequest{
		MemberID: memberID,
		RoomID:   roomID,
		Interval: booking.Interval{Start: start, End: start.Add(time.Hour)},
	}

	t.Run("created", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("Create", mock.Anything, req).Return(&booking.Booking{
			ID:       uuid.NewString(),
			RoomID:   roomID,
			RoomName: "Room A",
			MemberID: memberID,
			Interval: req.Interval,
			Status:   booking.StatusConfirmed,
		}, nil)

		w := do(setupRouter(svc), http.MethodPost, "/v1/bookings", body)
		require.Equal(t, http.StatusCreated, w.Code)

		var resp bookingHttp.BookingResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "Room A", resp.Room.Name)
		assert.Equal(t, "CONFIRMED", resp.Status)
		svc.AssertExpectations(t)
	})

	t.Run("conflict carries the colliding booking", func(t *testing.T) {
		existingID := uuid.NewString()
		svc := new(MockBookingService)
		svc.On("Create", mock.Anything, req).Return(nil, &booking.ConflictError{
			BookingID: existingID,
			RoomID:    roomID,
			Existing:  booking.Interval{Start: start.Add(-30 * time.Minute), End: start.Add(30 * time.Minute)},
		})

		w := do(setupRouter(svc), http.MethodPost, "/v1/bookings", body)
		require.Equal(t, http.StatusConflict, w.Code)

		var resp bookingHttp.ConflictResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, existingID, resp.BookingID)
		require.NotNil(t, resp.ExistingStart)
		assert.True(t, start.Add(-30*time.Minute).Equal(*resp.ExistingStart))
	})

	t.Run("bad input never reaches the service", func(t *testing.T) {
		svc := new(MockBookingService)
		r := setupRouter(svc)

		bad := body
		bad.RoomID = "not-a-uuid"
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/v1/bookings", bad).Code)

		reversed := body
		reversed.EndTime = start.Add(-time.Hour)
		assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPost, "/v1/bookings", reversed).Code)

		svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("inactive member", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("Create", mock.Anything, req).Return(nil, booking.ErrMemberInactive)

		w := do(setupRouter(svc), http.MethodPost, "/v1/bookings", body)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp response.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, booking.ErrMemberInactive.Message, resp.Error)
	})
}

func TestBookingLifecycleHandlers(t *testing.T) {
	id := uuid.NewString()

	t.Run("cancel", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("Cancel", mock.Anything, id).Return(&booking.Booking{ID: id, Status: booking.StatusCancelled}, nil)

		w := do(setupRouter(svc), http.MethodPost, "/v1/bookings/"+id+"/cancel", nil)
		assert.Equal(t, http.StatusOK, w.Code)
		svc.AssertExpectations(t)
	})

	t.Run("reschedule into a conflict", func(t *testing.T) {
		interval := booking.Interval{Start: start, End: start.Add(2 * time.Hour)}
		svc := new(MockBookingService)
		svc.On("Reschedule", mock.Anything, id, interval).Return(nil, &booking.ConflictError{RoomID: "r"})

		w := do(setupRouter(svc), http.MethodPatch, "/v1/bookings/"+id, bookingHttp.RescheduleBookingBody{
			StartTime: interval.Start,
			EndTime:   interval.End,
		})
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("deactivate member", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("DeactivateMember", mock.Anything, id).Return(nil).Once()
		svc.On("DeactivateMember", mock.Anything, id).Return(booking.ErrHasFutureBookings).Once()

		r := setupRouter(svc)
		assert.Equal(t, http.StatusNoContent, do(r, http.MethodPost, "/v1/members/"+id+"/deactivate", nil).Code)
		assert.Equal(t, http.StatusConflict, do(r, http.MethodPost, "/v1/members/"+id+"/deactivate", nil).Code)
	})

	t.Run("delete room", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("DeleteRoom", mock.Anything, id).Return(booking.ErrHasBookings)

		w := do(setupRouter(svc), http.MethodDelete, "/v1/rooms/"+id, nil)
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("unknown booking", func(t *testing.T) {
		svc := new(MockBookingService)
		svc.On("GetByID", mock.Anything, id).Return(nil, booking.ErrNotFound)

		w := do(setupRouter(svc), http.MethodGet, "/v1/bookings/"+id, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
