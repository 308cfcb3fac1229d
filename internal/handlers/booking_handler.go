package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/skip2/go-qrcode"

	"github.com/farrasdika/eventa/internal/booking"
	"github.com/farrasdika/eventa/internal/helpers"
	"github.com/farrasdika/eventa/internal/middleware"
	"github.com/farrasdika/eventa/internal/models"
)

// BookingService is what the HTTP boundary needs from the booking
// engine.
type BookingService interface {
	PlaceBooking(ctx context.Context, userID, eventID, ticketID uuid.UUID, qty int) (*models.Booking, error)
	Booking(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	UserBookings(ctx context.Context, userID uuid.UUID) ([]models.Booking, error)
}

type BookingHandler struct {
	svc    BookingService
	secret string
}

func NewBookingHandler(svc BookingService, secret string) *BookingHandler {
	return &BookingHandler{svc: svc, secret: secret}
}

type BookingRequest struct {
	EventID  uuid.UUID `json:"eventId"`
	TicketID uuid.UUID `json:"ticketId" binding:"required"`
	Quantity *int      `json:"quantity"`
}

func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request.")
		return
	}

	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	b, err := h.svc.PlaceBooking(c.Request.Context(), userID, req.EventID, req.TicketID, qty)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrInvalidQuantity):
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request.")
		case errors.Is(err, booking.ErrTicketNotFound):
			helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		case errors.Is(err, booking.ErrInsufficientInventory):
			helpers.RespondWithError(c, http.StatusConflict, "Not enough tickets available.")
		default:
			helpers.RespondWithError(c, http.StatusInternalServerError, "Server error.")
		}
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	bookings, err := h.svc.UserBookings(c.Request.Context(), userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving bookings.")
		return
	}

	c.JSON(http.StatusOK, bookings)
}

// GenerateBookingQR renders a signed QR code for a booking, for the
// booking's owner only.
func (h *BookingHandler) GenerateBookingQR(c *gin.Context) {
	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid booking ID.")
		return
	}

	b, err := h.svc.Booking(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving booking.")
		return
	}

	if b.UserID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to generate a QR code for this booking.")
		return
	}

	qrData := helpers.SignBookingQR(b.ID, b.TicketID, b.EventID, b.UserID, h.secret)
	qrImage, err := qrcode.Encode(qrData, qrcode.Medium, 256)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to generate QR code.")
		return
	}

	c.Data(http.StatusOK, "image/png", qrImage)
}

// ValidateBookingQR lets the event's organizer verify a scanned QR
// payload against the stored booking.
func (h *BookingHandler) ValidateBookingQR(c *gin.Context) {
	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	var req struct {
		QRData string `json:"qrData" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid request payload.")
		return
	}

	bookingID, err := helpers.BookingIDFromQR(req.QRData)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid QR code format.")
		return
	}

	b, err := h.svc.Booking(c.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, booking.ErrBookingNotFound) {
			helpers.RespondWithError(c, http.StatusNotFound, "Booking not found.")
			return
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving booking.")
		return
	}

	if !helpers.VerifyBookingQR(req.QRData, b.ID, b.TicketID, b.UserID, h.secret) {
		helpers.RespondWithError(c, http.StatusForbidden, "Invalid QR code signature.")
		return
	}

	if b.Event == nil || b.Event.OrganizerID != userID {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to validate this booking.")
		return
	}

	resp := gin.H{
		"valid":    true,
		"quantity": b.Quantity,
		"status":   b.Status,
	}
	if b.Ticket != nil {
		resp["tierName"] = b.Ticket.TierName
	}
	if b.Event != nil {
		resp["eventTitle"] = b.Event.Title
	}
	c.JSON(http.StatusOK, resp)
}
