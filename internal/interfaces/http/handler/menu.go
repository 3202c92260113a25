package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	catalogapp "github.com/menusync/backend/internal/application/catalog"
	"github.com/menusync/backend/internal/interfaces/http/dto"
)

// MenuReader serves the location view of a merchant's catalog
type MenuReader interface {
	ListMenu(ctx context.Context, merchantID, locationID uuid.UUID) (*catalogapp.MenuResponse, error)
	GetItem(ctx context.Context, merchantID, locationID, itemID uuid.UUID) (*catalogapp.ItemResponse, error)
}

// MenuHandler handles storefront menu reads
type MenuHandler struct {
	BaseHandler
	menus MenuReader
}

// NewMenuHandler creates a new MenuHandler
func NewMenuHandler(menus MenuReader) *MenuHandler {
	return &MenuHandler{menus: menus}
}

// ListMenu returns the categorized menu of a location with location prices
func (h *MenuHandler) ListMenu(c *gin.Context) {
	var req dto.LocationRequest
	if !h.BindURI(c, &req) {
		return
	}

	menu, err := h.menus.ListMenu(c.Request.Context(), parseUUID(req.ID), parseUUID(req.LocationID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, menu)
}

// GetItem returns one item as it is sold at a location
func (h *MenuHandler) GetItem(c *gin.Context) {
	var req dto.ItemRequest
	if !h.BindURI(c, &req) {
		return
	}

	item, err := h.menus.GetItem(c.Request.Context(), parseUUID(req.ID), parseUUID(req.LocationID), parseUUID(req.ItemID))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, item)
}
