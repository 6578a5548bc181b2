package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	wishlistResponse "github.com/Alturino/storefront/wishlist/pkg/response"
)

func (cl *Client) GetCart(c context.Context) (response.Cart, error) {
	cart := response.Cart{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/cart"}, &cart)
	return cart, err
}

// AddCartItem returns nil when the API answered without the cart. A payload
// with no items key, such as the echoed line, counts as no cart.
func (cl *Client) AddCartItem(c context.Context, param request.AddCartItem) (*response.Cart, error) {
	return cl.mutateCart(c, call{method: http.MethodPost, path: "/api/cart/items", body: param})
}

func (cl *Client) UpdateCartItem(c context.Context, lineID int64, quantity int) (*response.Cart, error) {
	return cl.mutateCart(c, call{
		method: http.MethodPut,
		path:   "/api/cart/items/" + strconv.FormatInt(lineID, 10),
		body:   request.UpdateCartItem{Quantity: quantity},
	})
}

func (cl *Client) RemoveCartItem(c context.Context, lineID int64) (*response.Cart, error) {
	return cl.mutateCart(c, call{method: http.MethodDelete, path: "/api/cart/items/" + strconv.FormatInt(lineID, 10)})
}

func (cl *Client) mutateCart(c context.Context, req call) (*response.Cart, error) {
	cart := response.Cart{}
	ok, err := cl.do(c, req, &cart)
	if err != nil || !ok || cart.Items == nil {
		return nil, err
	}
	return &cart, nil
}

func (cl *Client) GetWishlist(c context.Context) (wishlistResponse.Wishlist, error) {
	wishlist := wishlistResponse.Wishlist{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/wishlist"}, &wishlist)
	return wishlist, err
}

func (cl *Client) ToggleWishlist(c context.Context, productID int64) (wishlistResponse.Toggled, error) {
	toggled := wishlistResponse.Toggled{ProductID: productID}
	_, err := cl.do(c, call{
		method: http.MethodPost,
		path:   "/api/wishlist/toggle",
		body:   map[string]int64{"product_id": productID},
	}, &toggled)
	return toggled, err
}
