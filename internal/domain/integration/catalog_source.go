package integration

import (
	"context"
	"errors"
	"time"
)

// ---------------------------------------------------------------------------
// Upstream Errors
// ---------------------------------------------------------------------------

var (
	ErrUpstreamUnavailable     = errors.New("integration: upstream temporarily unavailable")
	ErrUpstreamRateLimited     = errors.New("integration: upstream rate limited")
	ErrUpstreamRequestFailed   = errors.New("integration: upstream request failed")
	ErrUpstreamUnauthorized    = errors.New("integration: upstream rejected credentials")
	ErrUpstreamInvalidResponse = errors.New("integration: invalid upstream response")
	ErrRetryBudgetExhausted    = errors.New("integration: retry budget exhausted")
	ErrInvalidSignature        = errors.New("integration: invalid webhook signature")
	ErrPaginationLoop          = errors.New("integration: upstream pagination did not terminate")
)

// IsRetryable reports whether an upstream error is worth another attempt
func IsRetryable(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable) || errors.Is(err, ErrUpstreamRateLimited)
}

// ---------------------------------------------------------------------------
// Catalog objects
// ---------------------------------------------------------------------------

// ObjectType is the upstream catalog object type
type ObjectType string

const (
	ObjectTypeCategory      ObjectType = "CATEGORY"
	ObjectTypeItem          ObjectType = "ITEM"
	ObjectTypeItemVariation ObjectType = "ITEM_VARIATION"
	ObjectTypeModifierList  ObjectType = "MODIFIER_LIST"
	ObjectTypeModifier      ObjectType = "MODIFIER"
	ObjectTypeImage         ObjectType = "IMAGE"
)

// SyncedObjectTypes are the types requested from ListCatalog. Variations and modifiers
// arrive nested in their items and lists and are flattened by the adapter.
var SyncedObjectTypes = []ObjectType{
	ObjectTypeCategory,
	ObjectTypeItem,
	ObjectTypeModifierList,
	ObjectTypeImage,
}

// UpstreamMoney is an amount in minor units
type UpstreamMoney struct {
	Amount   int64
	Currency string
}

// LocationOverride is a per-location price as sent upstream
type LocationOverride struct {
	LocationID string
	Price      *UpstreamMoney
}

// UpstreamPresence is the location availability of an object, keyed by upstream location IDs
type UpstreamPresence struct {
	AllLocations bool
	PresentAt    []string
	AbsentAt     []string
}

// CatalogObject is one upstream catalog object. Exactly one typed data field is set.
type CatalogObject struct {
	Type     ObjectType
	ID       string
	Version  int64
	Deleted  bool
	Presence UpstreamPresence
	ImageIDs []string

	Category     *CategoryData
	Item         *ItemData
	Variation    *VariationData
	ModifierList *ModifierListData
	Modifier     *ModifierData
	Image        *ImageData
}

// CategoryData is the typed payload of a CATEGORY
type CategoryData struct {
	Name string
}

// ModifierListInfo attaches a modifier list to an item
type ModifierListInfo struct {
	ModifierListID     string
	MinSelected        int
	MaxSelected        int
	DefaultModifierIDs []string
	Enabled            bool
}

// ItemData is the typed payload of an ITEM
type ItemData struct {
	Name          string
	Description   string
	CategoryID    string
	ModifierLists []ModifierListInfo
}

// VariationData is the typed payload of an ITEM_VARIATION
type VariationData struct {
	ItemID            string
	Name              string
	Ordinal           int
	Price             *UpstreamMoney
	LocationOverrides []LocationOverride
}

// ModifierListData is the typed payload of a MODIFIER_LIST
type ModifierListData struct {
	Name          string
	Ordinal       int
	SelectionType string
}

// ModifierData is the typed payload of a MODIFIER
type ModifierData struct {
	ModifierListID    string
	Name              string
	Ordinal           int
	Price             *UpstreamMoney
	LocationOverrides []LocationOverride
}

// ImageData is the typed payload of an IMAGE
type ImageData struct {
	Name    string
	URL     string
	Caption string
}

// CatalogPage is one page of ListCatalog. An empty Cursor means the listing is complete.
type CatalogPage struct {
	Objects []CatalogObject
	Cursor  string
}

// ---------------------------------------------------------------------------
// Locations
// ---------------------------------------------------------------------------

// UpstreamBusinessHours is one weekly opening period
type UpstreamBusinessHours struct {
	DayOfWeek      string
	StartLocalTime string
	EndLocalTime   string
}

// UpstreamAddress is a location address as sent upstream
type UpstreamAddress struct {
	Line1      string
	Line2      string
	Locality   string
	Region     string
	PostalCode string
	Country    string
}

// UpstreamLocation is a selling location as sent upstream
type UpstreamLocation struct {
	ID            string
	MerchantID    string
	Name          string
	Timezone      string
	Status        string
	Address       UpstreamAddress
	BusinessHours []UpstreamBusinessHours
}

// MainLocationID is the alias RetrieveLocation accepts for the merchant's main location
const MainLocationID = "main"

// ---------------------------------------------------------------------------
// OAuth
// ---------------------------------------------------------------------------

// TokenGrant is the result of a token exchange or refresh
type TokenGrant struct {
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
	MerchantID   string
}

// ---------------------------------------------------------------------------
// CatalogSource port
// ---------------------------------------------------------------------------

// CatalogSource is the outbound port to the upstream commerce platform.
// Implementations retry 5xx and 429 responses within a bounded budget and fail
// immediately on any other 4xx.
type CatalogSource interface {
	// ListCatalog returns one page of catalog objects of the given types
	ListCatalog(ctx context.Context, accessToken, cursor string, types []ObjectType) (*CatalogPage, error)

	// ListLocations returns every location of the merchant
	ListLocations(ctx context.Context, accessToken string) ([]UpstreamLocation, error)

	// RetrieveLocation returns one location; MainLocationID selects the main location
	RetrieveLocation(ctx context.Context, accessToken, locationID string) (*UpstreamLocation, error)

	// ExchangeCode trades an OAuth authorization code for a token grant
	ExchangeCode(ctx context.Context, code string) (*TokenGrant, error)

	// RefreshToken renews a grant from its refresh token
	RefreshToken(ctx context.Context, refreshToken string) (*TokenGrant, error)
}
