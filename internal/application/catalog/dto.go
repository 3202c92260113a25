package catalog

import (
	"github.com/google/uuid"
	"github.com/menusync/backend/internal/domain/catalog"
	"github.com/menusync/backend/internal/domain/shared/valueobject"
)

// MenuResponse is the orderable catalog of one location
type MenuResponse struct {
	MerchantID    uuid.UUID          `json:"merchant_id"`
	LocationID    uuid.UUID          `json:"location_id"`
	Generation    int64              `json:"generation"`
	Categories    []CategoryResponse `json:"categories"`
	Uncategorized []ItemResponse     `json:"uncategorized"`
}

// CategoryResponse is a category with its visible items in display order
type CategoryResponse struct {
	ID      uuid.UUID      `json:"id"`
	Name    string         `json:"name"`
	Ordinal int            `json:"ordinal"`
	Items   []ItemResponse `json:"items"`
}

// ItemResponse is an item with prices resolved for the requested location
type ItemResponse struct {
	ID            uuid.UUID              `json:"id"`
	CategoryID    *uuid.UUID             `json:"category_id,omitempty"`
	Name          string                 `json:"name"`
	Description   string                 `json:"description,omitempty"`
	Ordinal       int                    `json:"ordinal"`
	Variations    []VariationResponse    `json:"variations"`
	ModifierLists []ModifierListResponse `json:"modifier_lists"`
	Images        []ImageResponse        `json:"images,omitempty"`
}

// VariationResponse is a variation priced at the requested location
type VariationResponse struct {
	ID      uuid.UUID         `json:"id"`
	Name    string            `json:"name"`
	Ordinal int               `json:"ordinal"`
	Price   valueobject.Money `json:"price"`
}

// ModifierListResponse is a modifier list as attached to one item
type ModifierListResponse struct {
	ID            uuid.UUID          `json:"id"`
	Name          string             `json:"name"`
	SelectionType string             `json:"selection_type"`
	MinSelected   int                `json:"min_selected"`
	MaxSelected   int                `json:"max_selected"`
	Modifiers     []ModifierResponse `json:"modifiers"`
}

// ModifierResponse is a modifier priced at the requested location
type ModifierResponse struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Ordinal   int               `json:"ordinal"`
	Price     valueobject.Money `json:"price"`
	IsDefault bool              `json:"is_default"`
}

// ImageResponse is an image reference
type ImageResponse struct {
	ID      uuid.UUID `json:"id"`
	URL     string    `json:"url"`
	Caption string    `json:"caption,omitempty"`
}

// toItemResponse renders a sorted item graph with prices resolved through idx
func toItemResponse(g catalog.ItemGraph, idx catalog.PriceOverrideIndex, locationID uuid.UUID) ItemResponse {
	resp := ItemResponse{
		ID:            g.Item.ID,
		CategoryID:    g.Item.CategoryID,
		Name:          g.Item.Name,
		Description:   g.Item.Description,
		Ordinal:       g.Item.Ordinal,
		Variations:    make([]VariationResponse, 0, len(g.Variations)),
		ModifierLists: make([]ModifierListResponse, 0, len(g.ModifierLists)),
	}
	for _, v := range g.Variations {
		resp.Variations = append(resp.Variations, VariationResponse{
			ID:      v.ID,
			Name:    v.Name,
			Ordinal: v.Ordinal,
			Price:   idx.ResolvePrice(v.Price, v.ID, locationID),
		})
	}
	for _, ml := range g.ModifierLists {
		list := ModifierListResponse{
			ID:            ml.List.ID,
			Name:          ml.List.Name,
			SelectionType: string(ml.List.SelectionType),
			MinSelected:   ml.Link.MinSelected,
			MaxSelected:   ml.Link.MaxSelected,
			Modifiers:     make([]ModifierResponse, 0, len(ml.Modifiers)),
		}
		for _, m := range ml.Modifiers {
			list.Modifiers = append(list.Modifiers, ModifierResponse{
				ID:        m.ID,
				Name:      m.Name,
				Ordinal:   m.Ordinal,
				Price:     idx.ResolvePrice(m.Price, m.ID, locationID),
				IsDefault: ml.Link.IsDefault(m.ID),
			})
		}
		resp.ModifierLists = append(resp.ModifierLists, list)
	}
	for _, img := range g.Images {
		resp.Images = append(resp.Images, ImageResponse{ID: img.ID, URL: img.URL, Caption: img.Caption})
	}
	return resp
}
