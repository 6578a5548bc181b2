package response

import (
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

type Wishlist struct {
	Items []Item `json:"items"`
}

type Item struct {
	ProductID int64                    `json:"product_id"`
	Product   *productResponse.Product `json:"product,omitempty"`
}

// Toggled is the payload of POST /api/wishlist/toggle. Wishlist is nil
// when the API only echoes the new membership.
type Toggled struct {
	ProductID int64     `json:"product_id"`
	InList    bool      `json:"in_wishlist"`
	Wishlist  *Wishlist `json:"wishlist,omitempty"`
}

type View struct {
	ProductIDs []int64 `json:"product_ids"`
	Count      int     `json:"count"`
	Status     string  `json:"status"`
}
