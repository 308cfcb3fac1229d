package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/farrasdika/eventa/internal/helpers"
	"github.com/farrasdika/eventa/internal/middleware"
	"github.com/farrasdika/eventa/internal/models"
)

type EventHandler struct {
	store EventStore
}

func NewEventHandler(store EventStore) *EventHandler {
	return &EventHandler{store: store}
}

// TierRequest is one ticket tier in the event-creation payload. A
// malformed tier fails the whole request; nothing is dropped silently.
type TierRequest struct {
	TierName   string `json:"tierName"`
	PriceCents int    `json:"priceCents"`
	Quantity   int    `json:"quantity"`
}

func validateTiers(tiers []TierRequest) error {
	seen := make(map[string]bool, len(tiers))
	for i, t := range tiers {
		if t.TierName == "" {
			return fmt.Errorf("tier %d: tierName is required", i)
		}
		if t.PriceCents < 0 {
			return fmt.Errorf("tier %q: priceCents must not be negative", t.TierName)
		}
		if t.Quantity < 1 {
			return fmt.Errorf("tier %q: quantity must be a positive integer", t.TierName)
		}
		if seen[t.TierName] {
			return fmt.Errorf("tier %q: duplicate tierName", t.TierName)
		}
		seen[t.TierName] = true
	}
	return nil
}

func (h *EventHandler) CreateEvent(c *gin.Context) {
	title := c.PostForm("title")
	startDateStr := c.PostForm("startDate")
	if title == "" || startDateStr == "" {
		helpers.RespondWithError(c, http.StatusBadRequest, "Missing required fields: title and startDate.")
		return
	}

	startDate, err := time.Parse(time.RFC3339, startDateStr)
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid startDate format.")
		return
	}

	var endDate *time.Time
	if endDateStr := c.PostForm("endDate"); endDateStr != "" {
		parsed, err := time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid endDate format.")
			return
		}
		endDate = &parsed
	}

	var capacity *int
	if capacityStr := c.PostForm("capacity"); capacityStr != "" {
		parsed, err := helpers.StringToInt(capacityStr)
		if err != nil || parsed < 1 {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid capacity.")
			return
		}
		capacity = &parsed
	}

	var tierReqs []TierRequest
	if ticketsJSON := c.PostForm("tickets"); ticketsJSON != "" {
		if err := json.Unmarshal([]byte(ticketsJSON), &tierReqs); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid tickets payload.")
			return
		}
		if err := validateTiers(tierReqs); err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
	}

	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	event := models.Event{
		ID:          uuid.New(),
		Title:       title,
		Description: helpers.SanitizeDescription(c.PostForm("description")),
		Location:    c.PostForm("location"),
		Category:    c.PostForm("category"),
		StartDate:   startDate,
		EndDate:     endDate,
		Capacity:    capacity,
		OrganizerID: userID,
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "event_images")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		event.ImagePath = imagePath
	}

	tiers := make([]models.Ticket, len(tierReqs))
	for i, t := range tierReqs {
		tiers[i] = models.Ticket{
			ID:         uuid.New(),
			TierName:   t.TierName,
			PriceCents: t.PriceCents,
			Quantity:   t.Quantity,
		}
	}

	if err := h.store.CreateEventWithTiers(c.Request.Context(), &event, tiers); err != nil {
		if event.ImagePath != "" {
			// the event row never landed, so the upload is an orphan
			_ = helpers.DeleteFile(event.ImagePath)
		}
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to create event.")
		return
	}

	event.ImageURL = helpers.FileURL(c, event.ImagePath)
	c.JSON(http.StatusCreated, event)
}

func (h *EventHandler) GetEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}

	event, err := h.store.EventByID(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving event.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	event.ImageURL = helpers.FileURL(c, event.ImagePath)
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) ListEvents(c *gin.Context) {
	page, limit := helpers.Pagination(c)
	offset := (page - 1) * limit

	events, total, err := h.store.ListEvents(c.Request.Context(), c.Query("q"), offset, limit)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error retrieving events.")
		return
	}

	for i := range events {
		events[i].ImageURL = helpers.FileURL(c, events[i].ImagePath)
	}

	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"page":   page,
		"limit":  limit,
		"total":  total,
	})
}

func (h *EventHandler) UpdateEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}
	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}

	event, err := h.store.OwnedEvent(c.Request.Context(), eventID, userID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusForbidden, "Event not found or you don't have permission to update.")
		return
	}

	if title := c.PostForm("title"); title != "" {
		event.Title = title
	}
	if description := c.PostForm("description"); description != "" {
		event.Description = helpers.SanitizeDescription(description)
	}
	if location := c.PostForm("location"); location != "" {
		event.Location = location
	}
	if category := c.PostForm("category"); category != "" {
		event.Category = category
	}
	if startDateStr := c.PostForm("startDate"); startDateStr != "" {
		startDate, err := time.Parse(time.RFC3339, startDateStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid startDate format.")
			return
		}
		event.StartDate = startDate
	}
	if endDateStr := c.PostForm("endDate"); endDateStr != "" {
		endDate, err := time.Parse(time.RFC3339, endDateStr)
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, "Invalid endDate format.")
			return
		}
		event.EndDate = &endDate
	}

	imageFile, err := c.FormFile("image")
	if err == nil {
		imagePath, err := helpers.UploadFile(c, imageFile, "event_images")
		if err != nil {
			helpers.RespondWithError(c, http.StatusBadRequest, err.Error())
			return
		}
		if event.ImagePath != "" {
			// a stale file on disk is not worth failing the update
			_ = helpers.DeleteFile(event.ImagePath)
		}
		event.ImagePath = imagePath
	}

	if err := h.store.SaveEvent(c.Request.Context(), event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to update event.")
		return
	}

	event.ImageURL = helpers.FileURL(c, event.ImagePath)
	c.JSON(http.StatusOK, event)
}

// DeleteEvent removes an event with its tickets and bookings. Allowed
// for the owning organizer or an admin.
func (h *EventHandler) DeleteEvent(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		helpers.RespondWithError(c, http.StatusBadRequest, "Invalid event ID.")
		return
	}
	userID, exists := middleware.UserID(c)
	if !exists {
		helpers.RespondWithError(c, http.StatusUnauthorized, "User ID not found in token.")
		return
	}
	role, _ := c.Get("role")

	event, err := h.store.EventByID(c.Request.Context(), eventID)
	if err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Error finding event.")
		return
	}
	if event == nil {
		helpers.RespondWithError(c, http.StatusNotFound, "Event not found.")
		return
	}

	if event.OrganizerID != userID && role != models.RoleAdmin {
		helpers.RespondWithError(c, http.StatusForbidden, "You don't have permission to delete this event.")
		return
	}

	if err := h.store.DeleteEventCascade(c.Request.Context(), event); err != nil {
		helpers.RespondWithError(c, http.StatusInternalServerError, "Failed to delete event.")
		return
	}

	if event.ImagePath != "" {
		_ = helpers.DeleteFile(event.ImagePath)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
