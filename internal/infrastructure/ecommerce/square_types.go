package ecommerce

import (
	"strings"
	"time"

	"github.com/menusync/backend/internal/domain/integration"
)

// ---------------------------------------------------------------------------
// Common Square API Response Types
// ---------------------------------------------------------------------------

// SquareError is one entry of the errors array returned on failure
type SquareError struct {
	Category string `json:"category"`
	Code     string `json:"code"`
	Detail   string `json:"detail,omitempty"`
	Field    string `json:"field,omitempty"`
}

// SquareErrorResponse is the body of a failed request
type SquareErrorResponse struct {
	Errors []SquareError `json:"errors"`
}

// Summary joins the error codes and details for logging
func (r *SquareErrorResponse) Summary() string {
	parts := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		if e.Detail != "" {
			parts = append(parts, e.Code+": "+e.Detail)
		} else {
			parts = append(parts, e.Code)
		}
	}
	return strings.Join(parts, "; ")
}

// SquareMoney is an amount in the smallest currency unit
type SquareMoney struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

func (m *SquareMoney) toDomain() *integration.UpstreamMoney {
	if m == nil {
		return nil
	}
	return &integration.UpstreamMoney{Amount: m.Amount, Currency: m.Currency}
}

// ---------------------------------------------------------------------------
// Catalog Types
// ---------------------------------------------------------------------------

// SquareListCatalogResponse is the response of GET /v2/catalog/list
type SquareListCatalogResponse struct {
	Objects []SquareCatalogObject `json:"objects"`
	Cursor  string                `json:"cursor,omitempty"`
}

// SquareCatalogObject is a catalog object; exactly one *_data field is set
type SquareCatalogObject struct {
	Type                  string   `json:"type"`
	ID                    string   `json:"id"`
	Version               int64    `json:"version"`
	IsDeleted             bool     `json:"is_deleted"`
	PresentAtAllLocations *bool    `json:"present_at_all_locations,omitempty"`
	PresentAtLocationIDs  []string `json:"present_at_location_ids,omitempty"`
	AbsentAtLocationIDs   []string `json:"absent_at_location_ids,omitempty"`

	CategoryData      *SquareCategoryData      `json:"category_data,omitempty"`
	ItemData          *SquareItemData          `json:"item_data,omitempty"`
	ItemVariationData *SquareItemVariationData `json:"item_variation_data,omitempty"`
	ModifierListData  *SquareModifierListData  `json:"modifier_list_data,omitempty"`
	ModifierData      *SquareModifierData      `json:"modifier_data,omitempty"`
	ImageData         *SquareImageData         `json:"image_data,omitempty"`
}

// SquareCategoryData is the payload of a CATEGORY
type SquareCategoryData struct {
	Name     string   `json:"name"`
	ImageIDs []string `json:"image_ids,omitempty"`
}

// SquareCategoryRef references a category from an item
type SquareCategoryRef struct {
	ID string `json:"id"`
}

// SquareModifierOverride marks a modifier as pre-selected for an item
type SquareModifierOverride struct {
	ModifierID  string `json:"modifier_id"`
	OnByDefault bool   `json:"on_by_default"`
}

// SquareModifierListInfo attaches a modifier list to an item
type SquareModifierListInfo struct {
	ModifierListID       string                   `json:"modifier_list_id"`
	MinSelectedModifiers *int                     `json:"min_selected_modifiers,omitempty"`
	MaxSelectedModifiers *int                     `json:"max_selected_modifiers,omitempty"`
	Enabled              *bool                    `json:"enabled,omitempty"`
	ModifierOverrides    []SquareModifierOverride `json:"modifier_overrides,omitempty"`
}

// SquareItemData is the payload of an ITEM
type SquareItemData struct {
	Name             string                   `json:"name"`
	Description      string                   `json:"description,omitempty"`
	CategoryID       string                   `json:"category_id,omitempty"`
	Categories       []SquareCategoryRef      `json:"categories,omitempty"`
	ImageIDs         []string                 `json:"image_ids,omitempty"`
	Variations       []SquareCatalogObject    `json:"variations,omitempty"`
	ModifierListInfo []SquareModifierListInfo `json:"modifier_list_info,omitempty"`
}

// SquareLocationOverride is a per-location price
type SquareLocationOverride struct {
	LocationID string       `json:"location_id"`
	PriceMoney *SquareMoney `json:"price_money,omitempty"`
}

// SquareItemVariationData is the payload of an ITEM_VARIATION
type SquareItemVariationData struct {
	ItemID            string                   `json:"item_id"`
	Name              string                   `json:"name"`
	Ordinal           int                      `json:"ordinal"`
	PricingType       string                   `json:"pricing_type,omitempty"`
	PriceMoney        *SquareMoney             `json:"price_money,omitempty"`
	LocationOverrides []SquareLocationOverride `json:"location_overrides,omitempty"`
	ImageIDs          []string                 `json:"image_ids,omitempty"`
}

// SquareModifierListData is the payload of a MODIFIER_LIST
type SquareModifierListData struct {
	Name          string                `json:"name"`
	Ordinal       int                   `json:"ordinal"`
	SelectionType string                `json:"selection_type,omitempty"`
	Modifiers     []SquareCatalogObject `json:"modifiers,omitempty"`
	ImageIDs      []string              `json:"image_ids,omitempty"`
}

// SquareModifierData is the payload of a MODIFIER
type SquareModifierData struct {
	Name              string                   `json:"name"`
	PriceMoney        *SquareMoney             `json:"price_money,omitempty"`
	Ordinal           int                      `json:"ordinal"`
	ModifierListID    string                   `json:"modifier_list_id"`
	LocationOverrides []SquareLocationOverride `json:"location_overrides,omitempty"`
	ImageID           string                   `json:"image_id,omitempty"`
}

// SquareImageData is the payload of an IMAGE
type SquareImageData struct {
	Name    string `json:"name,omitempty"`
	URL     string `json:"url"`
	Caption string `json:"caption,omitempty"`
}

// ---------------------------------------------------------------------------
// Location Types
// ---------------------------------------------------------------------------

// SquareAddress is a postal address
type SquareAddress struct {
	AddressLine1                 string `json:"address_line_1,omitempty"`
	AddressLine2                 string `json:"address_line_2,omitempty"`
	Locality                     string `json:"locality,omitempty"`
	AdministrativeDistrictLevel1 string `json:"administrative_district_level_1,omitempty"`
	PostalCode                   string `json:"postal_code,omitempty"`
	Country                      string `json:"country,omitempty"`
}

// SquarePeriod is one weekly opening period
type SquarePeriod struct {
	DayOfWeek      string `json:"day_of_week"`
	StartLocalTime string `json:"start_local_time"`
	EndLocalTime   string `json:"end_local_time"`
}

// SquareBusinessHours wraps the weekly periods
type SquareBusinessHours struct {
	Periods []SquarePeriod `json:"periods"`
}

// SquareLocation is a selling location
type SquareLocation struct {
	ID            string               `json:"id"`
	MerchantID    string               `json:"merchant_id"`
	Name          string               `json:"name"`
	Timezone      string               `json:"timezone"`
	Status        string               `json:"status"`
	Address       *SquareAddress       `json:"address,omitempty"`
	BusinessHours *SquareBusinessHours `json:"business_hours,omitempty"`
}

// SquareListLocationsResponse is the response of GET /v2/locations
type SquareListLocationsResponse struct {
	Locations []SquareLocation `json:"locations"`
}

// SquareRetrieveLocationResponse is the response of GET /v2/locations/{id}
type SquareRetrieveLocationResponse struct {
	Location *SquareLocation `json:"location"`
}

// ---------------------------------------------------------------------------
// OAuth Types
// ---------------------------------------------------------------------------

// SquareTokenRequest is the body of POST /oauth2/token
type SquareTokenRequest struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
	GrantType    string `json:"grant_type"`
	Code         string `json:"code,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

// SquareTokenResponse is the response of POST /oauth2/token
type SquareTokenResponse struct {
	AccessToken  string    `json:"access_token"`
	TokenType    string    `json:"token_type"`
	ExpiresAt    time.Time `json:"expires_at"`
	MerchantID   string    `json:"merchant_id"`
	RefreshToken string    `json:"refresh_token"`
}

// ---------------------------------------------------------------------------
// Conversion
// ---------------------------------------------------------------------------

func convertOverrides(in []SquareLocationOverride) []integration.LocationOverride {
	if len(in) == 0 {
		return nil
	}
	out := make([]integration.LocationOverride, 0, len(in))
	for _, o := range in {
		out = append(out, integration.LocationOverride{LocationID: o.LocationID, Price: o.PriceMoney.toDomain()})
	}
	return out
}

func convertPresence(obj *SquareCatalogObject) integration.UpstreamPresence {
	all := true
	if obj.PresentAtAllLocations != nil {
		all = *obj.PresentAtAllLocations
	}
	return integration.UpstreamPresence{
		AllLocations: all,
		PresentAt:    obj.PresentAtLocationIDs,
		AbsentAt:     obj.AbsentAtLocationIDs,
	}
}

func intOr(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}

// flattenCatalogObject converts an upstream object to domain objects. Variations nested
// in items and modifiers nested in lists are returned as top-level objects after their parent.
func flattenCatalogObject(obj SquareCatalogObject) []integration.CatalogObject {
	base := integration.CatalogObject{
		Type:     integration.ObjectType(obj.Type),
		ID:       obj.ID,
		Version:  obj.Version,
		Deleted:  obj.IsDeleted,
		Presence: convertPresence(&obj),
	}

	var nested []integration.CatalogObject
	switch {
	case obj.CategoryData != nil:
		base.Category = &integration.CategoryData{Name: obj.CategoryData.Name}
		base.ImageIDs = obj.CategoryData.ImageIDs
	case obj.ItemData != nil:
		d := obj.ItemData
		categoryID := d.CategoryID
		if categoryID == "" && len(d.Categories) > 0 {
			categoryID = d.Categories[0].ID
		}
		item := &integration.ItemData{Name: d.Name, Description: d.Description, CategoryID: categoryID}
		for _, info := range d.ModifierListInfo {
			var defaults []string
			for _, o := range info.ModifierOverrides {
				if o.OnByDefault {
					defaults = append(defaults, o.ModifierID)
				}
			}
			item.ModifierLists = append(item.ModifierLists, integration.ModifierListInfo{
				ModifierListID:     info.ModifierListID,
				MinSelected:        intOr(info.MinSelectedModifiers, -1),
				MaxSelected:        intOr(info.MaxSelectedModifiers, -1),
				DefaultModifierIDs: defaults,
				Enabled:            info.Enabled == nil || *info.Enabled,
			})
		}
		base.Item = item
		base.ImageIDs = d.ImageIDs
		for _, v := range d.Variations {
			if v.ItemVariationData != nil && v.ItemVariationData.ItemID == "" {
				v.ItemVariationData.ItemID = obj.ID
			}
			nested = append(nested, flattenCatalogObject(v)...)
		}
	case obj.ItemVariationData != nil:
		d := obj.ItemVariationData
		base.Variation = &integration.VariationData{
			ItemID:            d.ItemID,
			Name:              d.Name,
			Ordinal:           d.Ordinal,
			Price:             d.PriceMoney.toDomain(),
			LocationOverrides: convertOverrides(d.LocationOverrides),
		}
		base.ImageIDs = d.ImageIDs
	case obj.ModifierListData != nil:
		d := obj.ModifierListData
		base.ModifierList = &integration.ModifierListData{Name: d.Name, Ordinal: d.Ordinal, SelectionType: d.SelectionType}
		base.ImageIDs = d.ImageIDs
		for _, m := range d.Modifiers {
			if m.ModifierData != nil && m.ModifierData.ModifierListID == "" {
				m.ModifierData.ModifierListID = obj.ID
			}
			nested = append(nested, flattenCatalogObject(m)...)
		}
	case obj.ModifierData != nil:
		d := obj.ModifierData
		base.Modifier = &integration.ModifierData{
			ModifierListID:    d.ModifierListID,
			Name:              d.Name,
			Ordinal:           d.Ordinal,
			Price:             d.PriceMoney.toDomain(),
			LocationOverrides: convertOverrides(d.LocationOverrides),
		}
		if d.ImageID != "" {
			base.ImageIDs = []string{d.ImageID}
		}
	case obj.ImageData != nil:
		base.Image = &integration.ImageData{Name: obj.ImageData.Name, URL: obj.ImageData.URL, Caption: obj.ImageData.Caption}
	}

	return append([]integration.CatalogObject{base}, nested...)
}

func convertLocation(loc *SquareLocation) integration.UpstreamLocation {
	out := integration.UpstreamLocation{
		ID:         loc.ID,
		MerchantID: loc.MerchantID,
		Name:       loc.Name,
		Timezone:   loc.Timezone,
		Status:     loc.Status,
	}
	if loc.Address != nil {
		out.Address = integration.UpstreamAddress{
			Line1:      loc.Address.AddressLine1,
			Line2:      loc.Address.AddressLine2,
			Locality:   loc.Address.Locality,
			Region:     loc.Address.AdministrativeDistrictLevel1,
			PostalCode: loc.Address.PostalCode,
			Country:    loc.Address.Country,
		}
	}
	if loc.BusinessHours != nil {
		for _, p := range loc.BusinessHours.Periods {
			out.BusinessHours = append(out.BusinessHours, integration.UpstreamBusinessHours{
				DayOfWeek:      p.DayOfWeek,
				StartLocalTime: p.StartLocalTime,
				EndLocalTime:   p.EndLocalTime,
			})
		}
	}
	return out
}
