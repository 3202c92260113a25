package router

import (
	"github.com/gin-gonic/gin"
	"github.com/menusync/backend/internal/interfaces/http/handler"
)

// Handlers are the HTTP handlers served by the application
type Handlers struct {
	Health   *handler.HealthHandler
	Webhook  *handler.WebhookHandler
	Merchant *handler.MerchantHandler
	Menu     *handler.MenuHandler
	Pickup   *handler.PickupHandler
}

// Guards are per-route middleware. Nil guards are skipped.
type Guards struct {
	// Admin authenticates merchant admin calls
	Admin gin.HandlerFunc
	// Webhook throttles webhook deliveries
	Webhook gin.HandlerFunc
	// OAuth throttles the OAuth callback
	OAuth gin.HandlerFunc
}

// Mount registers every route on engine:
//
//	GET  /health
//	POST /webhooks/upstream
//	POST /api/v1/oauth/callback
//	POST /api/v1/merchants/:id/sync                                  (admin)
//	POST /api/v1/merchants/:id/token/refresh                         (admin)
//	GET  /api/v1/merchants/:id/locations/:locationId/menu
//	GET  /api/v1/merchants/:id/locations/:locationId/items/:itemId
//	POST /api/v1/merchants/:id/locations/:locationId/pickup/validate
func Mount(engine *gin.Engine, h Handlers, g Guards) *Router {
	engine.GET("/health", h.Health.Health)

	webhooks := engine.Group("/webhooks")
	if g.Webhook != nil {
		webhooks.Use(g.Webhook)
	}
	webhooks.POST("/upstream", h.Webhook.HandleWebhook)

	oauth := NewDomainGroup("oauth", "/oauth").Use(g.OAuth)
	oauth.POST("/callback", h.Merchant.Connect)

	admin := NewDomainGroup("merchant-admin", "/merchants/:id").Use(g.Admin)
	admin.POST("/sync", h.Merchant.Sync)
	admin.POST("/token/refresh", h.Merchant.RefreshToken)

	storefront := NewDomainGroup("storefront", "/merchants/:id/locations/:locationId")
	storefront.GET("/menu", h.Menu.ListMenu)
	storefront.GET("/items/:itemId", h.Menu.GetItem)
	storefront.POST("/pickup/validate", h.Pickup.ValidatePickup)

	r := NewRouter(engine).
		Register(oauth).
		Register(admin).
		Register(storefront)
	r.Setup()
	return r
}
