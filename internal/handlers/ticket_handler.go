package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farrasdika/eventa/internal/helpers"
	"github.com/farrasdika/eventa/internal/middleware"
	"github.com/farrasdika/eventa/internal/models"
)

type TicketHandler struct {
	store TicketStore
}

func NewTicketHandler(store TicketStore) *TicketHandler {
	return &TicketHandler{store: store}
}

type TicketRequest struct {
	TierName   string    `json:"tierName" binding:"required"`
	PriceCents int       `json:"priceCents" binding:"min=0"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
	EventID    uuid.UUID `json:"eventId" binding:"required"`
}

func (h *TicketHandler) CreateTicket(c *gin.Context) {
	var req TicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	event, err := h.store.OwnedEvent(c.Request.Context(), req.EventID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event ownership.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to modify it.")
		return
	}

	ticket := models.Ticket{
		ID:         uuid.New(),
		EventID:    req.EventID,
		TierName:   req.TierName,
		PriceCents: req.PriceCents,
		Quantity:   req.Quantity,
	}

	if err := h.store.CreateTicket(c.Request.Context(), &ticket); err != nil {
		helpers.RespondWithError(c, http.StatusConflict, "A tier with that name already exists for this event.")
		return
	}

	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) GetTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	ticket, err := h.store.TicketByID(c.Request.Context(), ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}
	if ticket == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) UpdateTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	var req struct {
		TierName   string `json:"tierName" binding:"required"`
		PriceCents int    `json:"priceCents" binding:"min=0"`
		Quantity   int    `json:"quantity" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid input. Please check your fields.")
		return
	}

	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	ticket, err := h.store.TicketByID(c.Request.Context(), ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}
	if ticket == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	event, err := h.store.OwnedEvent(c.Request.Context(), ticket.EventID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event ownership.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to modify this ticket.")
		return
	}

	// Capacity can never drop below seats already committed.
	if req.Quantity < ticket.Sold {
		helpers.RespondWithError(c, http.StatusBadRequest, "Quantity cannot be lower than tickets already sold.")
		return
	}

	ticket.TierName = req.TierName
	ticket.PriceCents = req.PriceCents
	ticket.Quantity = req.Quantity

	if err := h.store.SaveTicket(c.Request.Context(), ticket); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update ticket.")
		return
	}

	c.JSON(http.StatusOK, ticket)
}

func (h *TicketHandler) DeleteTicket(c *gin.Context) {
	ticketID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid ticket ID.")
		return
	}

	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	ticket, err := h.store.TicketByID(c.Request.Context(), ticketID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving ticket.")
		return
	}
	if ticket == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Ticket not found.")
		return
	}

	event, err := h.store.OwnedEvent(c.Request.Context(), ticket.EventID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error verifying event ownership.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this ticket.")
		return
	}

	if err := h.store.DeleteTicketWithBookings(c.Request.Context(), ticket); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete ticket.")
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
