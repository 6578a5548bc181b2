// Package apitest provides an in-memory fake of the external storefront API
// for tests. It keeps just enough state (products, one cart, one wishlist,
// addresses and orders) to answer the calls the client makes, and counts
// every call per route.
package apitest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	cartRequest "github.com/Alturino/storefront/cart/pkg/request"
	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	commonHttp "github.com/Alturino/storefront/internal/common/http"
	notificationResponse "github.com/Alturino/storefront/notification/pkg/response"
	orderRequest "github.com/Alturino/storefront/order/pkg/request"
	orderResponse "github.com/Alturino/storefront/order/pkg/response"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
	userRequest "github.com/Alturino/storefront/user/pkg/request"
	userResponse "github.com/Alturino/storefront/user/pkg/response"
	wishlistResponse "github.com/Alturino/storefront/wishlist/pkg/response"
)

const (
	Password = "password"
	Token    = "test-token"
)

// Failure is returned once for the next call on a route.
type Failure struct {
	StatusCode int
	Message    string
	Fields     map[string][]string
}

type Server struct {
	*httptest.Server

	mu                   sync.Mutex
	calls                map[string]int
	headers              map[string]http.Header
	failures             map[string]Failure
	omitData             map[string]bool
	replaceData          map[string]any
	products             map[string]productResponse.Product
	lines                []cartResponse.CartLine
	nextLineID           int64
	wishlist             map[int64]bool
	addresses            []userResponse.ShippingAddress
	nextAddressID        int64
	orders               map[int64]orderResponse.Order
	nextOrderID          int64
	devices              []notificationResponse.Device
	coupons              map[string]decimal.Decimal
	user                 userResponse.User
	notificationDelay    time.Duration
	notificationSettings notificationResponse.NotificationSettings
}

func NewServer(products ...productResponse.Product) *Server {
	s := &Server{
		calls:       map[string]int{},
		headers:     map[string]http.Header{},
		failures:    map[string]Failure{},
		omitData:    map[string]bool{},
		replaceData: map[string]any{},
		products:    map[string]productResponse.Product{},
		nextLineID:  100,
		wishlist:    map[int64]bool{},
		orders:      map[int64]orderResponse.Order{},
		nextOrderID: 1,
		coupons:     map[string]decimal.Decimal{"SAVE10": decimal.NewFromInt(10)},
		user:        userResponse.User{ID: 1, Name: "Ada Lovelace", Email: "ada@example.com"},
		notificationSettings: notificationResponse.NotificationSettings{
			Enabled:      true,
			OrderUpdates: true,
		},
	}
	for _, p := range products {
		s.products[p.Slug] = p
	}

	router := mux.NewRouter()
	router.Use(s.count)
	api := router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/products", s.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}", s.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}/reviews", s.listReviews).Methods(http.MethodGet)
	api.HandleFunc("/products/{slug}/reviews", s.createReview).Methods(http.MethodPost)
	api.HandleFunc("/filters", s.filters).Methods(http.MethodGet)
	api.HandleFunc("/modules/{id}/data", s.moduleData).Methods(http.MethodGet)
	api.HandleFunc("/cart", s.getCart).Methods(http.MethodGet)
	api.HandleFunc("/cart/items", s.addCartItem).Methods(http.MethodPost)
	api.HandleFunc("/cart/items/{id}", s.updateCartItem).Methods(http.MethodPut)
	api.HandleFunc("/cart/items/{id}", s.removeCartItem).Methods(http.MethodDelete)
	api.HandleFunc("/wishlist", s.getWishlist).Methods(http.MethodGet)
	api.HandleFunc("/wishlist/toggle", s.toggleWishlist).Methods(http.MethodPost)
	api.HandleFunc("/shipping-addresses", s.listAddresses).Methods(http.MethodGet)
	api.HandleFunc("/shipping-addresses", s.createAddress).Methods(http.MethodPost)
	api.HandleFunc("/shipping-addresses/{id}", s.updateAddress).Methods(http.MethodPut)
	api.HandleFunc("/shipping-addresses/{id}", s.deleteAddress).Methods(http.MethodDelete)
	api.HandleFunc("/payment-settings", s.paymentSettings).Methods(http.MethodGet)
	api.HandleFunc("/cart-settings", s.cartSettings).Methods(http.MethodGet)
	api.HandleFunc("/coupons/validate", s.validateCoupon).Methods(http.MethodPost)
	api.HandleFunc("/orders", s.createOrder).Methods(http.MethodPost)
	api.HandleFunc("/orders/{id}", s.getOrder).Methods(http.MethodGet)
	api.HandleFunc("/user-devices", s.listDevices).Methods(http.MethodGet)
	api.HandleFunc("/user-devices", s.registerDevice).Methods(http.MethodPost)
	api.HandleFunc("/user-devices/{id}", s.deleteDevice).Methods(http.MethodDelete)
	api.HandleFunc("/fcm-token", s.fcmToken).Methods(http.MethodPost)
	api.HandleFunc("/notification-settings", s.getNotificationSettings).Methods(http.MethodGet)
	api.HandleFunc("/auth/login", s.login).Methods(http.MethodPost)
	api.HandleFunc("/auth/register", s.register).Methods(http.MethodPost)
	api.HandleFunc("/auth/me", s.me).Methods(http.MethodGet)
	api.HandleFunc("/auth/profile", s.updateProfile).Methods(http.MethodPut)
	api.HandleFunc("/auth/avatar", s.uploadAvatar).Methods(http.MethodPost)

	s.Server = httptest.NewServer(router)
	return s
}

// Calls returns how often a route was hit, e.g. Calls("POST /api/cart/items").
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TotalCalls counts every call made to the server.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// LastHeader returns the headers of the last call on a route.
func (s *Server) LastHeader(route string) http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.headers[route].Clone()
}

func (s *Server) FailNext(route string, f Failure) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = f
}

// OmitData makes a route answer success without a data field.
func (s *Server) OmitData(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.omitData[route] = true
}

// ReplaceData makes a route answer success with data instead of its own
// payload. The route still applies its change.
func (s *Server) ReplaceData(route string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replaceData[route] = data
}

func (s *Server) SetNotificationDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notificationDelay = d
}

func (s *Server) SetProduct(p productResponse.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.Slug] = p
}

// SeedLine puts a line straight into the server cart, as another device would.
func (s *Server) SeedLine(line cartResponse.CartLine) cartResponse.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if line.ID == 0 {
		s.nextLineID++
		line.ID = s.nextLineID
	}
	line = price(line)
	s.lines = append(s.lines, line)
	return line
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.Method + " " + r.URL.Path
		if tpl, err := mux.CurrentRoute(r).GetPathTemplate(); err == nil {
			route = r.Method + " " + tpl
		}

		s.mu.Lock()
		s.calls[route]++
		s.headers[route] = r.Header.Clone()
		failure, failing := s.failures[route]
		delete(s.failures, route)
		s.mu.Unlock()

		if failing {
			writeError(w, failure.StatusCode, failure.Message, failure.Fields)
			return
		}
		if auth := r.Header.Get(commonHttp.HeaderAuthorization); auth != "" && auth != commonHttp.BearerPrefix+Token {
			writeError(w, http.StatusUnauthorized, "Unauthenticated.", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(withRoute(r.Context(), route)))
	})
}

func (s *Server) write(w http.ResponseWriter, r *http.Request, statusCode int, message string, data any) {
	body := map[string]any{"success": true, "message": message}
	s.mu.Lock()
	route := routeFromContext(r.Context())
	omit := s.omitData[route]
	if replaced, ok := s.replaceData[route]; ok {
		data = replaced
	}
	s.mu.Unlock()
	if !omit {
		body["data"] = data
	}
	w.Header().Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, statusCode int, message string, fields map[string][]string) {
	body := map[string]any{"success": false, "message": message}
	if len(fields) > 0 {
		body["errors"] = fields
	}
	w.Header().Set(commonHttp.HeaderContentType, commonHttp.HeaderValueJson)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(body)
}

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	return id, err == nil
}

func (s *Server) productByID(id int64) (productResponse.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return productResponse.Product{}, false
}

func price(line cartResponse.CartLine) cartResponse.CartLine {
	b := line.Breakdown()
	line.ProductID = line.Product.ID
	line.UnitPrice = b.DiscountedUnitPrice
	line.PriceWithAttributes = b.FinalUnitPrice
	line.FinalPrice = b.LineTotal
	line.DiscountPercentage = b.DiscountPercentage
	return line
}

func (s *Server) cart() cartResponse.Cart {
	lines := make([]cartResponse.CartLine, len(s.lines))
	copy(lines, s.lines)
	return cartResponse.Cart{Items: lines, Currency: "USD"}
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	search := strings.ToLower(r.URL.Query().Get("search"))
	products := []productResponse.Product{}
	for _, p := range s.products {
		if search == "" || strings.Contains(strings.ToLower(p.Name), search) {
			products = append(products, p)
		}
	}
	s.mu.Unlock()
	sort.Slice(products, func(i, j int) bool { return products[i].ID < products[j].ID })
	s.write(w, r, http.StatusOK, "", productResponse.ProductPage{
		Products:    products,
		CurrentPage: 1,
		LastPage:    1,
		Total:       len(products),
	})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	p, ok := s.products[mux.Vars(r)["slug"]]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Product not found.", nil)
		return
	}
	s.write(w, r, http.StatusOK, "", p)
}

func (s *Server) listReviews(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "", []productResponse.Review{
		{ID: 1, Rating: 5, Comment: "Great fit", Author: "Grace"},
	})
}

func (s *Server) createReview(w http.ResponseWriter, r *http.Request) {
	review := productResponse.Review{}
	if err := json.NewDecoder(r.Body).Decode(&review); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid review.", nil)
		return
	}
	s.mu.Lock()
	review.ID = 2
	review.Author = s.user.Name
	s.mu.Unlock()
	s.write(w, r, http.StatusCreated, "Review submitted.", review)
}

func (s *Server) filters(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "", []productResponse.Filter{
		{Key: "category", Label: "Category", Type: "select", Options: []productResponse.FilterOption{{Value: "men", Label: "Men", Count: 3}}},
	})
}

func (s *Server) moduleData(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "", map[string]any{"id": mux.Vars(r)["id"], "title": "Featured"})
}

func (s *Server) getCart(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	cart := s.cart()
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "", cart)
}

func (s *Server) addCartItem(w http.ResponseWriter, r *http.Request) {
	req := cartRequest.AddCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid cart item.", nil)
		return
	}

	s.mu.Lock()
	p, ok := s.productByID(req.ProductID)
	if !ok {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Product not found.", nil)
		return
	}
	if req.Quantity > p.Available() {
		s.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "Not enough stock.", map[string][]string{
			"quantity": {fmt.Sprintf("Only %d left in stock.", p.Available())},
		})
		return
	}
	s.nextLineID++
	s.lines = append(s.lines, price(cartResponse.CartLine{
		ID:         s.nextLineID,
		Product:    p,
		Quantity:   req.Quantity,
		Attributes: req.Attributes,
	}))
	cart := s.cart()
	s.mu.Unlock()

	s.write(w, r, http.StatusCreated, "Added to cart.", cart)
}

func (s *Server) updateCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	req := cartRequest.UpdateCartItem{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Quantity < 1 {
		writeError(w, http.StatusUnprocessableEntity, "Invalid quantity.", map[string][]string{
			"quantity": {"The quantity must be at least 1."},
		})
		return
	}

	s.mu.Lock()
	idx := s.lineIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Cart item not found.", nil)
		return
	}
	line := s.lines[idx]
	if req.Quantity > line.Product.Available() {
		s.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "Not enough stock.", nil)
		return
	}
	line.Quantity = req.Quantity
	s.lines[idx] = price(line)
	cart := s.cart()
	s.mu.Unlock()

	s.write(w, r, http.StatusOK, "Cart updated.", cart)
}

func (s *Server) removeCartItem(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)

	s.mu.Lock()
	idx := s.lineIndex(id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "Cart item not found.", nil)
		return
	}
	s.lines = append(s.lines[:idx], s.lines[idx+1:]...)
	cart := s.cart()
	s.mu.Unlock()

	s.write(w, r, http.StatusOK, "Removed from cart.", cart)
}

func (s *Server) lineIndex(id int64) int {
	for i, l := range s.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

func (s *Server) wishlistItems() wishlistResponse.Wishlist {
	ids := make([]int64, 0, len(s.wishlist))
	for id := range s.wishlist {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	items := make([]wishlistResponse.Item, 0, len(ids))
	for _, id := range ids {
		items = append(items, wishlistResponse.Item{ProductID: id})
	}
	return wishlistResponse.Wishlist{Items: items}
}

func (s *Server) getWishlist(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	wishlist := s.wishlistItems()
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "", wishlist)
}

func (s *Server) toggleWishlist(w http.ResponseWriter, r *http.Request) {
	req := map[string]int64{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req["product_id"] == 0 {
		writeError(w, http.StatusUnprocessableEntity, "Invalid product.", nil)
		return
	}
	id := req["product_id"]

	s.mu.Lock()
	if s.wishlist[id] {
		delete(s.wishlist, id)
	} else {
		s.wishlist[id] = true
	}
	wishlist := s.wishlistItems()
	toggled := wishlistResponse.Toggled{ProductID: id, InList: s.wishlist[id], Wishlist: &wishlist}
	s.mu.Unlock()

	s.write(w, r, http.StatusOK, "Wishlist updated.", toggled)
}

func (s *Server) listAddresses(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	addresses := append([]userResponse.ShippingAddress{}, s.addresses...)
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "", addresses)
}

func toAddress(id int64, req userRequest.ShippingAddress) userResponse.ShippingAddress {
	return userResponse.ShippingAddress{
		ID:         id,
		FullName:   req.FullName,
		Phone:      req.Phone,
		Line1:      req.Line1,
		Line2:      req.Line2,
		City:       req.City,
		State:      req.State,
		PostalCode: req.PostalCode,
		Country:    req.Country,
		IsDefault:  req.IsDefault,
	}
}

func (s *Server) createAddress(w http.ResponseWriter, r *http.Request) {
	req := userRequest.ShippingAddress{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.FullName == "" {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			"full_name": {"The full name field is required."},
		})
		return
	}
	s.mu.Lock()
	s.nextAddressID++
	address := toAddress(s.nextAddressID, req)
	s.addresses = append(s.addresses, address)
	s.mu.Unlock()
	s.write(w, r, http.StatusCreated, "Address saved.", address)
}

func (s *Server) updateAddress(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	req := userRequest.ShippingAddress{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", nil)
		return
	}
	s.mu.Lock()
	idx := -1
	for i, a := range s.addresses {
		if a.ID == id {
			idx = i
			s.addresses[i] = toAddress(id, req)
		}
	}
	s.mu.Unlock()
	if idx < 0 {
		writeError(w, http.StatusNotFound, "Address not found.", nil)
		return
	}
	s.write(w, r, http.StatusOK, "Address updated.", toAddress(id, req))
}

func (s *Server) deleteAddress(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	found := false
	for i, a := range s.addresses {
		if a.ID == id {
			s.addresses = append(s.addresses[:i], s.addresses[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Address not found.", nil)
		return
	}
	s.write(w, r, http.StatusOK, "Address deleted.", nil)
}

func (s *Server) paymentSettings(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "", orderResponse.PaymentSettings{
		Currency: "USD",
		Methods:  []orderResponse.PaymentMethod{{Key: "cod", Name: "Cash on delivery", Enabled: true}},
	})
}

func (s *Server) cartSettings(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "", orderResponse.CartSettings{
		Currency:          "USD",
		ShippingCost:      decimal.NewFromInt(5),
		FreeShippingAbove: decimal.NewFromInt(100),
		GuestCheckout:     true,
	})
}

func (s *Server) validateCoupon(w http.ResponseWriter, r *http.Request) {
	req := orderRequest.ValidateCoupon{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid coupon.", nil)
		return
	}
	s.mu.Lock()
	percent, ok := s.coupons[strings.ToUpper(req.Code)]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusUnprocessableEntity, "Invalid coupon code.", map[string][]string{
			"code": {"This coupon does not exist or has expired."},
		})
		return
	}
	subtotal, err := decimal.NewFromString(req.Subtotal)
	if err != nil {
		subtotal = decimal.Zero
	}
	s.write(w, r, http.StatusOK, "Coupon applied.", orderResponse.Coupon{
		Code:           req.Code,
		Valid:          true,
		DiscountType:   "percentage",
		DiscountValue:  percent,
		DiscountAmount: subtotal.Mul(percent).Div(decimal.NewFromInt(100)),
	})
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	req := orderRequest.CreateOrder{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ShippingAddressID == 0 {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			"shipping_address_id": {"Please select a shipping address."},
		})
		return
	}

	s.mu.Lock()
	if len(s.lines) == 0 {
		s.mu.Unlock()
		writeError(w, http.StatusUnprocessableEntity, "Your cart is empty.", nil)
		return
	}
	order := orderResponse.Order{
		ID:            s.nextOrderID,
		OrderNumber:   fmt.Sprintf("ORD-%05d", s.nextOrderID),
		Status:        "pending",
		PaymentStatus: "unpaid",
		PaymentMethod: req.PaymentMethod,
		CouponCode:    req.CouponCode,
		Currency:      "USD",
		CreatedAt:     time.Now().UTC(),
		UpdatedAt:     time.Now().UTC(),
	}
	subtotal := decimal.Zero
	for _, l := range s.lines {
		subtotal = subtotal.Add(l.FinalPrice)
		order.Items = append(order.Items, orderResponse.OrderItem{
			ID:          l.ID,
			ProductID:   l.Product.ID,
			ProductName: l.Product.Name,
			Quantity:    l.Quantity,
			UnitPrice:   l.PriceWithAttributes,
			Total:       l.FinalPrice,
		})
	}
	order.Subtotal = subtotal
	if percent, ok := s.coupons[strings.ToUpper(req.CouponCode)]; ok {
		order.DiscountAmount = subtotal.Mul(percent).Div(decimal.NewFromInt(100))
	}
	order.Total = subtotal.Sub(order.DiscountAmount)
	s.orders[order.ID] = order
	s.nextOrderID++
	s.lines = nil
	s.mu.Unlock()

	s.write(w, r, http.StatusCreated, "Order placed.", order)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	order, ok := s.orders[id]
	s.mu.Unlock()
	if !ok {
		writeError(w, http.StatusNotFound, "Order not found.", nil)
		return
	}
	s.write(w, r, http.StatusOK, "", order)
}

func (s *Server) listDevices(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	devices := append([]notificationResponse.Device{}, s.devices...)
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "", devices)
}

func (s *Server) registerDevice(w http.ResponseWriter, r *http.Request) {
	device := notificationResponse.Device{}
	if err := json.NewDecoder(r.Body).Decode(&device); err != nil || device.DeviceToken == "" {
		writeError(w, http.StatusUnprocessableEntity, "Invalid device.", nil)
		return
	}
	s.mu.Lock()
	device.ID = int64(len(s.devices) + 1)
	device.LastUsedAt = time.Now().UTC()
	s.devices = append(s.devices, device)
	s.mu.Unlock()
	s.write(w, r, http.StatusCreated, "Device registered.", device)
}

func (s *Server) deleteDevice(w http.ResponseWriter, r *http.Request) {
	id, _ := pathID(r)
	s.mu.Lock()
	found := false
	for i, d := range s.devices {
		if d.ID == id {
			s.devices = append(s.devices[:i], s.devices[i+1:]...)
			found = true
			break
		}
	}
	s.mu.Unlock()
	if !found {
		writeError(w, http.StatusNotFound, "Device not found.", nil)
		return
	}
	s.write(w, r, http.StatusOK, "Device removed.", nil)
}

func (s *Server) fcmToken(w http.ResponseWriter, r *http.Request) {
	s.write(w, r, http.StatusOK, "Token saved.", nil)
}

func (s *Server) getNotificationSettings(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	delay := s.notificationDelay
	settings := s.notificationSettings
	s.mu.Unlock()
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-r.Context().Done():
			return
		}
	}
	s.write(w, r, http.StatusOK, "", settings)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	req := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid credentials.", nil)
		return
	}
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if req["email"] != user.Email || req["password"] != Password {
		writeError(w, http.StatusUnprocessableEntity, "These credentials do not match our records.", map[string][]string{
			"email": {"These credentials do not match our records."},
		})
		return
	}
	s.write(w, r, http.StatusOK, "Logged in.", userResponse.Auth{Token: Token, User: user})
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	req := map[string]string{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid registration.", nil)
		return
	}
	if req["password"] != req["password_confirmation"] {
		writeError(w, http.StatusUnprocessableEntity, "The given data was invalid.", map[string][]string{
			"password": {"The password confirmation does not match."},
		})
		return
	}
	s.mu.Lock()
	s.user = userResponse.User{ID: s.user.ID + 1, Name: req["name"], Email: req["email"]}
	user := s.user
	s.mu.Unlock()
	s.write(w, r, http.StatusCreated, "Registered.", userResponse.Auth{Token: Token, User: user})
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get(commonHttp.HeaderAuthorization) == "" {
		writeError(w, http.StatusUnauthorized, "Unauthenticated.", nil)
		return
	}
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "", user)
}

func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	req := userRequest.UpdateProfile{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "Invalid profile.", nil)
		return
	}
	s.mu.Lock()
	s.user.Name = req.Name
	if req.Email != "" {
		s.user.Email = req.Email
	}
	s.user.Phone = req.Phone
	user := s.user
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "Profile updated.", user)
}

func (s *Server) uploadAvatar(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("avatar")
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "The avatar field is required.", map[string][]string{
			"avatar": {"The avatar field is required."},
		})
		return
	}
	defer file.Close()
	s.mu.Lock()
	s.user.Avatar = "/storage/avatars/" + header.Filename
	user := s.user
	s.mu.Unlock()
	s.write(w, r, http.StatusOK, "Avatar updated.", user)
}
