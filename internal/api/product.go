package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/Alturino/storefront/product/pkg/request"
	"github.com/Alturino/storefront/product/pkg/response"
)

func (cl *Client) ListProducts(c context.Context, param request.ListProducts) (response.ProductPage, error) {
	page := response.ProductPage{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/products", query: param.Query()}, &page)
	return page, err
}

func (cl *Client) GetProduct(c context.Context, slug string) (response.Product, error) {
	product := response.Product{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/products/" + url.PathEscape(slug)}, &product)
	return product, err
}

func (cl *Client) ListReviews(c context.Context, slug string) ([]response.Review, error) {
	reviews := []response.Review{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/products/" + url.PathEscape(slug) + "/reviews"}, &reviews)
	return reviews, err
}

func (cl *Client) CreateReview(c context.Context, slug string, param request.CreateReview) (response.Review, error) {
	review := response.Review{}
	_, err := cl.do(c, call{method: http.MethodPost, path: "/api/products/" + url.PathEscape(slug) + "/reviews", body: param}, &review)
	return review, err
}

func (cl *Client) Filters(c context.Context) ([]response.Filter, error) {
	filters := []response.Filter{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/filters"}, &filters)
	return filters, err
}

// ModuleData returns the raw data of a page module; its shape depends on the module.
func (cl *Client) ModuleData(c context.Context, moduleID string) (json.RawMessage, error) {
	data := json.RawMessage{}
	_, err := cl.do(c, call{method: http.MethodGet, path: "/api/modules/" + url.PathEscape(moduleID) + "/data"}, &data)
	return data, err
}
