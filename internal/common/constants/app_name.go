package constants

const (
	AppStorefront          = "storefront"
	AppStorefrontService   = "storefront-service"
	AppStorefrontCli       = "storefront-cli"
	AppCartService         = "cart-service"
	AppWishlistService     = "wishlist-service"
	AppProductService      = "product-service"
	AppOrderService        = "order-service"
	AppUserService         = "user-service"
	AppNotificationService = "notification-service"
	AppApiClient           = "storefront-api-client"
)
