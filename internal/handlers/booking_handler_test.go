package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/farrasdika/eventa/internal/booking"
	"github.com/farrasdika/eventa/internal/helpers"
	"github.com/farrasdika/eventa/internal/models"
)

const testSecret = "test-secret"

// MockBookingService mocks the booking engine boundary.
type MockBookingService struct {
	mock.Mock
}

func (m *MockBookingService) PlaceBooking(ctx context.Context, userID, eventID, ticketID uuid.UUID, qty int) (*models.Booking, error) {
	args := m.Called(userID, ticketID, qty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) Booking(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Booking), args.Error(1)
}

func (m *MockBookingService) UserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Booking), args.Error(1)
}

func setupBookingRouter(svc BookingService, userID uuid.UUID) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", userID)
		c.Set("role", models.RoleUser)
	})
	h := NewBookingHandler(svc, testSecret)
	r.POST("/api/bookings", h.CreateBooking)
	r.GET("/api/bookings", h.ListBookings)
	r.GET("/api/bookings/:id/qr", h.GenerateBookingQR)
	r.POST("/api/bookings/validate", h.ValidateBookingQR)
	return r
}

func postJSON(r *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	payload, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateBookingSuccess(t *testing.T) {
	userID := uuid.New()
	ticketID := uuid.New()
	svc := new(MockBookingService)
	expected := &models.Booking{
		ID:         uuid.New(),
		UserID:     userID,
		TicketID:   ticketID,
		Quantity:   2,
		TotalCents: 10000,
		Status:     models.BookingStatusConfirmed,
	}
	svc.On("PlaceBooking", userID, ticketID, 2).Return(expected, nil)

	r := setupBookingRouter(svc, userID)
	w := postJSON(r, "/api/bookings", gin.H{"ticketId": ticketID, "quantity": 2})

	assert.Equal(t, http.StatusCreated, w.Code)

	var got models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, expected.ID, got.ID)
	assert.Equal(t, 10000, got.TotalCents)
	assert.Equal(t, models.BookingStatusConfirmed, got.Status)
	svc.AssertExpectations(t)
}

func TestCreateBookingDefaultsQuantityToOne(t *testing.T) {
	userID := uuid.New()
	ticketID := uuid.New()
	svc := new(MockBookingService)
	svc.On("PlaceBooking", userID, ticketID, 1).
		Return(&models.Booking{ID: uuid.New(), Quantity: 1}, nil)

	r := setupBookingRouter(svc, userID)
	w := postJSON(r, "/api/bookings", gin.H{"ticketId": ticketID})

	assert.Equal(t, http.StatusCreated, w.Code)
	svc.AssertExpectations(t)
}

func TestCreateBookingMissingTicketID(t *testing.T) {
	svc := new(MockBookingService)
	r := setupBookingRouter(svc, uuid.New())

	w := postJSON(r, "/api/bookings", gin.H{"quantity": 1})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	svc.AssertNotCalled(t, "PlaceBooking")
}

func TestCreateBookingErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid quantity", booking.ErrInvalidQuantity, http.StatusBadRequest},
		{"ticket not found", booking.ErrTicketNotFound, http.StatusNotFound},
		{"insufficient inventory", booking.ErrInsufficientInventory, http.StatusConflict},
		{"storage failure", errors.New("db down"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			userID := uuid.New()
			ticketID := uuid.New()
			svc := new(MockBookingService)
			svc.On("PlaceBooking", userID, ticketID, 1).Return(nil, tc.err)

			r := setupBookingRouter(svc, userID)
			w := postJSON(r, "/api/bookings", gin.H{"ticketId": ticketID, "quantity": 1})

			assert.Equal(t, tc.code, w.Code)
		})
	}
}

func TestListBookings(t *testing.T) {
	userID := uuid.New()
	svc := new(MockBookingService)
	svc.On("UserBookings", userID).Return([]models.Booking{
		{ID: uuid.New(), UserID: userID, Quantity: 2},
	}, nil)

	r := setupBookingRouter(svc, userID)
	req := httptest.NewRequest(http.MethodGet, "/api/bookings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var got []models.Booking
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Len(t, got, 1)
}

func TestGenerateBookingQROwnerOnly(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	b := &models.Booking{
		ID:       uuid.New(),
		UserID:   owner,
		TicketID: uuid.New(),
		EventID:  uuid.New(),
	}

	svc := new(MockBookingService)
	svc.On("Booking", b.ID).Return(b, nil)

	r := setupBookingRouter(svc, stranger)
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+b.ID.String()+"/qr", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestGenerateBookingQRReturnsPNG(t *testing.T) {
	owner := uuid.New()
	b := &models.Booking{
		ID:       uuid.New(),
		UserID:   owner,
		TicketID: uuid.New(),
		EventID:  uuid.New(),
	}

	svc := new(MockBookingService)
	svc.On("Booking", b.ID).Return(b, nil)

	r := setupBookingRouter(svc, owner)
	req := httptest.NewRequest(http.MethodGet, "/api/bookings/"+b.ID.String()+"/qr", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Body.Bytes())
}

func TestValidateBookingQR(t *testing.T) {
	organizer := uuid.New()
	b := &models.Booking{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TicketID: uuid.New(),
		EventID:  uuid.New(),
		Quantity: 2,
		Status:   models.BookingStatusConfirmed,
		Event:    &models.Event{Title: "Gophercon", OrganizerID: organizer},
		Ticket:   &models.Ticket{TierName: "VIP"},
	}

	svc := new(MockBookingService)
	svc.On("Booking", b.ID).Return(b, nil)

	qrData := helpers.SignBookingQR(b.ID, b.TicketID, b.EventID, b.UserID, testSecret)

	r := setupBookingRouter(svc, organizer)
	w := postJSON(r, "/api/bookings/validate", gin.H{"qrData": qrData})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, true, resp["valid"])
	assert.Equal(t, "VIP", resp["tierName"])
}

func TestValidateBookingQRTamperedSignature(t *testing.T) {
	organizer := uuid.New()
	b := &models.Booking{
		ID:       uuid.New(),
		UserID:   uuid.New(),
		TicketID: uuid.New(),
		EventID:  uuid.New(),
		Event:    &models.Event{OrganizerID: organizer},
	}

	svc := new(MockBookingService)
	svc.On("Booking", b.ID).Return(b, nil)

	qrData := helpers.SignBookingQR(b.ID, b.TicketID, b.EventID, b.UserID, "wrong-secret")

	r := setupBookingRouter(svc, organizer)
	w := postJSON(r, "/api/bookings/validate", gin.H{"qrData": qrData})

	assert.Equal(t, http.StatusForbidden, w.Code)
}
