package log

const (
	KeyAppName            = "app"
	KeyRequestID          = "requestId"
	KeySessionID          = "sessionId"
	KeyProcess            = "process"
	KeyToken              = "token"
	KeyEmail              = "email"
	KeyTag                = "tag"
	KeyRequestBody        = "requestBody"
	KeyRequestHeader      = "requestHeader"
	KeyRequestHost        = "host"
	KeyRequestIp          = "requesterIP"
	KeyRequestMethod      = "requestMethod"
	KeyRequestURI         = "requestURI"
	KeyRequestURL         = "requestURL"
	KeyResponseStatus     = "responseStatus"
	KeyConfig             = "config"
	KeyTraceID            = "traceId"
	KeySpanID             = "spanId"
	KeyCacheKey           = "cacheKey"
	KeyProduct            = "product"
	KeyProductID          = "productId"
	KeyProductSlug        = "productSlug"
	KeyProducts           = "products"
	KeyCart               = "cart"
	KeyCartLineID         = "cartLineId"
	KeyCartLines          = "cartLines"
	KeyCartTotal          = "cartTotal"
	KeyQuantity           = "quantity"
	KeyAttributes         = "attributes"
	KeyStoreState         = "storeState"
	KeyWishlist           = "wishlist"
	KeyOrderID            = "orderId"
	KeyCouponCode         = "couponCode"
	KeyAddressID          = "addressId"
	KeyDeviceID           = "deviceId"
	KeyUserID             = "userId"
	KeyPathValues         = "pathValues"
	KeyBreakdown          = "breakdown"
	KeyRequestProcessedAt = "requestProcessedAt"
)
