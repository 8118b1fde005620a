package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"slotwise/models"
	"slotwise/services/availability"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const availabilityCacheTTL = 30 * time.Second

// AvailabilityHandler exposes the availability engine to the calling layer.
type AvailabilityHandler struct {
	Engine *availability.Engine
	Cache  *redis.Client
	Logger *zap.Logger
}

func NewAvailabilityHandler(engine *availability.Engine, cache *redis.Client, logger *zap.Logger) *AvailabilityHandler {
	return &AvailabilityHandler{Engine: engine, Cache: cache, Logger: logger}
}

// GenerateSlotsHandler materializes a provider's slots from their weekly
// template for a rolling window of days.
func (h *AvailabilityHandler) GenerateSlotsHandler(c *gin.Context) {
	providerID := c.Param("id")
	var input struct {
		StaffID  string                       `json:"staffId"`
		Template models.BusinessHoursTemplate `json:"template" binding:"required"`
		From     string                       `json:"from" binding:"required"` // "YYYY-MM-DD"
		Days     int                          `json:"days"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	from, err := time.Parse("2006-01-02", input.From)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date", "details": err.Error()})
		return
	}
	if input.Days <= 0 {
		input.Days = 14
	}

	slots, err := h.Engine.GenerateSlots(c.Request.Context(), providerID, input.StaffID, input.Template, from, from.AddDate(0, 0, input.Days))
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"created": len(slots), "slots": slots})
}

// ListDayAvailabilityHandler returns a provider's open slots for one date.
// Responses are cached briefly; writers re-verify against the store, so a
// slightly stale listing can never double-book.
func (h *AvailabilityHandler) ListDayAvailabilityHandler(c *gin.Context) {
	providerID := c.Param("id")
	date := c.Query("date")
	if date == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date query parameter is required"})
		return
	}

	ctx := c.Request.Context()
	cacheKey := fmt.Sprintf("availability:%s:%s", providerID, date)
	if cached, err := h.Cache.Get(ctx, cacheKey).Result(); err == nil {
		var slots []models.Slot
		if err := json.Unmarshal([]byte(cached), &slots); err == nil {
			c.JSON(http.StatusOK, gin.H{"date": date, "slots": slots, "cached": true})
			return
		}
	}

	all, err := h.Engine.Slots.ListByDate(ctx, providerID, date)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	open := make([]models.Slot, 0, len(all))
	for _, s := range all {
		if s.Status == models.SlotAvailable {
			open = append(open, s)
		}
	}

	if data, err := json.Marshal(open); err == nil {
		if err := h.Cache.Set(context.Background(), cacheKey, data, availabilityCacheTTL).Err(); err != nil {
			h.Logger.Warn("failed to cache availability", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, gin.H{"date": date, "slots": open})
}

// PlaceHoldHandler gives the caller a time-boxed exclusive claim on an
// interval while the customer completes checkout.
func (h *AvailabilityHandler) PlaceHoldHandler(c *gin.Context) {
	providerID := c.Param("id")
	var input struct {
		StaffID string `json:"staffId"`
		Date    string `json:"date" binding:"required"`
		Start   int    `json:"start"` // minutes from midnight; 0 is a valid midnight start
		End     int    `json:"end"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Start < 0 || input.End > 24*60 || input.Start >= input.End {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end must form a half-open interval within the day"})
		return
	}

	slot, err := h.Engine.PlaceTentativeHold(c.Request.Context(), providerID, input.StaffID, input.Date, input.Start, input.End)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"slot": slot, "holdExpiresAt": slot.HoldExpiresAt})
}

// ReleaseSlotHandler returns a claimed slot to circulation.
func (h *AvailabilityHandler) ReleaseSlotHandler(c *gin.Context) {
	slotID := c.Param("slotId")
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	if input.Reason == "" {
		input.Reason = availability.ReleaseCancelled
	}

	if err := h.Engine.ReleaseSlot(c.Request.Context(), slotID, input.Reason); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"released": slotID})
}

// BlockSlotHandler takes an open slot out of circulation with a reason.
func (h *AvailabilityHandler) BlockSlotHandler(c *gin.Context) {
	slotID := c.Param("slotId")
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	if err := h.Engine.BlockSlot(c.Request.Context(), slotID, input.Reason); err != nil {
		writeDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"blocked": slotID})
}
