package handler

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	locationapp "github.com/menusync/backend/internal/application/location"
	"github.com/menusync/backend/internal/interfaces/http/dto"
)

// PickupQuoter checks a requested pickup time against location hours
type PickupQuoter interface {
	QuotePickup(ctx context.Context, merchantID, locationID uuid.UUID, requested *time.Time) (*locationapp.PickupQuote, error)
}

// PickupHandler handles pickup time validation
type PickupHandler struct {
	BaseHandler
	pickups PickupQuoter
}

// NewPickupHandler creates a new PickupHandler
func NewPickupHandler(pickups PickupQuoter) *PickupHandler {
	return &PickupHandler{pickups: pickups}
}

// ValidatePickupRequest carries the requested pickup time. A missing
// pickup_at asks for the earliest possible time.
type ValidatePickupRequest struct {
	PickupAt *time.Time `json:"pickup_at"`
}

// PickupQuoteResponse is the answer to a pickup validation
type PickupQuoteResponse struct {
	LocationID    uuid.UUID  `json:"location_id"`
	Timezone      string     `json:"timezone"`
	Accepted      bool       `json:"accepted"`
	PickupAt      *time.Time `json:"pickup_at,omitempty"`
	NextAvailable *time.Time `json:"next_available,omitempty"`
	Reason        string     `json:"reason,omitempty"`
}

// ValidatePickup validates a pickup time. A rejected time is still a 200 with
// accepted=false and, when one exists, the next available time.
func (h *PickupHandler) ValidatePickup(c *gin.Context) {
	var uri dto.LocationRequest
	if !h.BindURI(c, &uri) {
		return
	}
	var req ValidatePickupRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	quote, err := h.pickups.QuotePickup(c.Request.Context(), parseUUID(uri.ID), parseUUID(uri.LocationID), req.PickupAt)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, PickupQuoteResponse{
		LocationID:    quote.LocationID,
		Timezone:      quote.Timezone,
		Accepted:      quote.Accepted,
		PickupAt:      quote.PickupAt,
		NextAvailable: quote.NextAvailable,
		Reason:        quote.Reason,
	})
}
