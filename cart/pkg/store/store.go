// Package store keeps the client-side copy of the cart. The server stays
// authoritative: the cache is only replaced by a server payload (or a
// re-fetch) and is left untouched when a call fails.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/storefront/cart/pkg/request"
	"github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/state"
	productAttribute "github.com/Alturino/storefront/product/pkg/attribute"
	productResponse "github.com/Alturino/storefront/product/pkg/response"
)

const Name = "cart"

const (
	OperationLoad   = "load"
	OperationAdd    = "add"
	OperationUpdate = "update"
	OperationRemove = "remove"
)

type Client interface {
	GetCart(c context.Context) (response.Cart, error)
	AddCartItem(c context.Context, param request.AddCartItem) (*response.Cart, error)
	UpdateCartItem(c context.Context, lineID int64, quantity int) (*response.Cart, error)
	RemoveCartItem(c context.Context, lineID int64) (*response.Cart, error)
}

// Recorder counts mutation outcomes.
type Recorder interface {
	Mutation(store, operation, result string)
}

type nopRecorder struct{}

func (nopRecorder) Mutation(string, string, string) {}

type Option func(*Store)

func WithRecorder(r Recorder) Option {
	return func(s *Store) {
		if r != nil {
			s.recorder = r
		}
	}
}

// Snapshot is a consistent copy of the store. Lines must not be modified.
// Version grows with every transition.
type Snapshot struct {
	Version  uint64
	Lines    []response.CartLine
	Total    decimal.Decimal
	Count    int
	Currency string
	Status   state.Status
	Err      error
}

type Store struct {
	mu          sync.RWMutex
	client      Client
	recorder    Recorder
	cart        response.Cart
	version     uint64
	machine     state.Machine
	broadcaster state.Broadcaster[Snapshot]
}

func New(client Client, opts ...Option) *Store {
	s := &Store{client: client, recorder: nopRecorder{}, machine: state.NewMachine()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.broadcaster.Subscribe(fn)
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	lines := make([]response.CartLine, len(s.cart.Items))
	copy(lines, s.cart.Items)
	return Snapshot{
		Version:  s.version,
		Lines:    lines,
		Total:    total(lines),
		Count:    count(lines),
		Currency: currencyOf(s.cart),
		Status:   s.machine.Status(),
		Err:      s.machine.Err(),
	}
}

func (s *Store) Lines() []response.CartLine { return s.Snapshot().Lines }

// Total is the sum of the server reported line totals.
func (s *Store) Total() decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return total(s.cart.Items)
}

// Count is the number of units across every line.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return count(s.cart.Items)
}

func (s *Store) Status() state.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Status()
}

// Synced reports whether the cache has ever been filled by the server.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.HasSynced()
}

// FindLine returns the line holding productID with an equal selection.
func (s *Store) FindLine(productID int64, selection productAttribute.Selection) (response.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return findLine(s.cart.Items, productID, selection)
}

func (s *Store) QuantityInCart(productID int64, selection productAttribute.Selection) int {
	line, ok := s.FindLine(productID, selection)
	if !ok {
		return 0
	}
	return line.Quantity
}

func (s *Store) Line(lineID int64) (response.CartLine, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, l := range s.cart.Items {
		if l.ID == lineID {
			return l, true
		}
	}
	return response.CartLine{}, false
}

func (s *Store) Load(c context.Context) error {
	c, span := otel.Tracer.Start(c, "CartStore Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore Load").
		Str(log.KeyProcess, "loading cart").
		Logger()

	logger.Debug().Msg("loading cart")
	s.begin()
	cart, err := s.client.GetCart(c)
	if err != nil {
		err = fmt.Errorf("failed loading cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.fail(OperationLoad, err)
		return err
	}
	if c.Err() != nil {
		s.abandon(OperationLoad)
		return c.Err()
	}
	s.apply(OperationLoad, cart)
	logger.Debug().Int(log.KeyCartLines, len(cart.Items)).Msg("loaded cart")

	return nil
}

// AddToCart merges into the line with an equal selection, or requests a new
// line. Every rejection happens before any network call.
func (s *Store) AddToCart(
	c context.Context,
	product productResponse.Product,
	quantity int,
	selection productAttribute.Selection,
) (response.Result, error) {
	c, span := otel.Tracer.Start(
		c,
		"CartStore AddToCart",
		trace.WithAttributes(
			attribute.Int64(log.KeyProductID, product.ID),
			attribute.Int(log.KeyQuantity, quantity),
		),
	)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore AddToCart").
		Int64(log.KeyProductID, product.ID).
		Int(log.KeyQuantity, quantity).
		Str(log.KeyAttributes, productAttribute.Key(selection)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "checking cart item").Logger()
	logger.Trace().Msg("checking cart item")
	existing, merge := s.FindLine(product.ID, selection)
	if err := checkAdd(product, quantity, selection, existing.Quantity); err != nil {
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg("rejected cart item")
		s.recorder.Mutation(Name, OperationAdd, state.ResultRejected)
		return response.Result{Success: false, Message: rejectionMessage(err)}, err
	}
	logger.Trace().Msg("checked cart item")

	if merge {
		combined := existing.Quantity + quantity
		logger = logger.With().
			Str(log.KeyProcess, "merging cart item").
			Int64(log.KeyCartLineID, existing.ID).
			Logger()
		logger.Debug().Msgf("merging into line with quantity=%d", combined)
		c = logger.WithContext(c)
		return s.mutate(c, OperationAdd, "Cart updated.", func(c context.Context) (*response.Cart, error) {
			return s.client.UpdateCartItem(c, existing.ID, combined)
		})
	}

	logger = logger.With().Str(log.KeyProcess, "adding cart item").Logger()
	logger.Debug().Msg("adding cart item")
	c = logger.WithContext(c)
	return s.mutate(c, OperationAdd, "Added to cart.", func(c context.Context) (*response.Cart, error) {
		return s.client.AddCartItem(c, request.AddCartItem{
			ProductID:  product.ID,
			Quantity:   quantity,
			Attributes: selection,
		})
	})
}

func (s *Store) UpdateQuantity(c context.Context, lineID int64, quantity int) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartStore UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore UpdateQuantity").
		Int64(log.KeyCartLineID, lineID).
		Int(log.KeyQuantity, quantity).
		Logger()

	if quantity < 1 {
		err := fmt.Errorf("failed updating quantity=%d with error=%w", quantity, commonErrors.ErrInvalidQuantity)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationUpdate, state.ResultRejected)
		return response.Result{Success: false, Message: rejectionMessage(err)}, err
	}
	line, ok := s.Line(lineID)
	if !ok {
		err := fmt.Errorf("failed updating lineId=%d with error=%w", lineID, commonErrors.ErrLineNotFound)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationUpdate, state.ResultRejected)
		return response.Result{Success: false, Message: rejectionMessage(err)}, err
	}
	if line.Product.StockQuantity > 0 && quantity > line.Product.Available() {
		err := fmt.Errorf(
			"failed updating quantity=%d above stock=%d with error=%w",
			quantity,
			line.Product.Available(),
			commonErrors.ErrInsufficientStock,
		)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationUpdate, state.ResultRejected)
		return response.Result{
			Success: false,
			Message: fmt.Sprintf("Only %d of %s available.", line.Product.Available(), productName(line.Product)),
		}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Debug().Msg("updating cart item")
	c = logger.WithContext(c)
	return s.mutate(c, OperationUpdate, "Cart updated.", func(c context.Context) (*response.Cart, error) {
		return s.client.UpdateCartItem(c, lineID, quantity)
	})
}

func (s *Store) RemoveFromCart(c context.Context, lineID int64) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartStore RemoveFromCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartStore RemoveFromCart").
		Int64(log.KeyCartLineID, lineID).
		Logger()

	if _, ok := s.Line(lineID); !ok {
		err := fmt.Errorf("failed removing lineId=%d with error=%w", lineID, commonErrors.ErrLineNotFound)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationRemove, state.ResultRejected)
		return response.Result{Success: false, Message: rejectionMessage(err)}, err
	}

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Debug().Msg("removing cart item")
	c = logger.WithContext(c)
	return s.mutate(c, OperationRemove, "Removed from cart.", func(c context.Context) (*response.Cart, error) {
		return s.client.RemoveCartItem(c, lineID)
	})
}

// mutate runs one API call without holding the lock. A nil payload means
// the API did not echo the cart, so it is re-fetched.
func (s *Store) mutate(
	c context.Context,
	operation string,
	successMessage string,
	call func(c context.Context) (*response.Cart, error),
) (response.Result, error) {
	c, span := otel.Tracer.Start(c, "CartStore mutate")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartStore mutate").Logger()

	s.begin()
	payload, err := call(c)
	if err == nil && payload == nil && c.Err() == nil {
		logger.Debug().Msg("mutation answered without cart, refetching")
		var cart response.Cart
		cart, err = s.client.GetCart(c)
		payload = &cart
	}
	if err != nil {
		if c.Err() != nil {
			s.abandon(operation)
			return response.Result{Success: false, Message: api.UserMessage(err)}, err
		}
		err = fmt.Errorf("failed %s cart item with error=%w", operation, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.fail(operation, err)
		return response.Result{Success: false, Message: api.UserMessage(err)}, err
	}
	if c.Err() != nil {
		err = fmt.Errorf("discarded %s cart response with error=%w", operation, c.Err())
		logger.Warn().Err(err).Msg(err.Error())
		s.abandon(operation)
		return response.Result{Success: false, Message: api.UserMessage(err)}, err
	}

	s.apply(operation, *payload)
	logger.Debug().Int(log.KeyCartLines, len(payload.Items)).Msg("applied cart")

	return response.Result{Success: true, Message: successMessage}, nil
}

func (s *Store) begin() {
	s.transition(func() { s.machine.Begin() })
}

func (s *Store) apply(operation string, cart response.Cart) {
	s.recorder.Mutation(Name, operation, state.ResultSuccess)
	s.transition(func() {
		s.cart = cart
		s.machine.Succeed()
	})
}

func (s *Store) fail(operation string, err error) {
	s.recorder.Mutation(Name, operation, state.ResultFailure)
	s.transition(func() { s.machine.Fail(err) })
}

func (s *Store) abandon(operation string) {
	s.recorder.Mutation(Name, operation, state.ResultAbandoned)
	s.transition(func() { s.machine.Abandon() })
}

// transition runs fn under the lock and publishes the resulting snapshot.
// Subscribers never see an older snapshot after a newer one.
func (s *Store) transition(fn func()) {
	s.mu.Lock()
	fn()
	s.version++
	snapshot := s.snapshot()
	s.mu.Unlock()
	s.broadcaster.PublishVersion(snapshot.Version, snapshot)
}

func checkAdd(product productResponse.Product, quantity int, selection productAttribute.Selection, inCart int) error {
	if quantity < 1 {
		return fmt.Errorf("failed adding quantity=%d with error=%w", quantity, commonErrors.ErrInvalidQuantity)
	}
	if missing := productAttribute.Missing(product.Attributes, selection); len(missing) > 0 {
		names := make([]string, 0, len(missing))
		for _, a := range missing {
			names = append(names, a.Name)
		}
		return &rejection{
			err:     fmt.Errorf("failed adding attributes=%s with error=%w", strings.Join(names, ","), commonErrors.ErrMissingAttribute),
			message: fmt.Sprintf("Please select %s.", strings.Join(names, ", ")),
		}
	}
	available := product.Available()
	if available == 0 {
		return &rejection{
			err:     fmt.Errorf("failed adding productId=%d with error=%w", product.ID, commonErrors.ErrOutOfStock),
			message: fmt.Sprintf("%s is out of stock.", productName(product)),
		}
	}
	if inCart+quantity > available {
		message := fmt.Sprintf("Only %d of %s available.", available, productName(product))
		if inCart > 0 {
			message = fmt.Sprintf("Only %d of %s available and %d already in your cart.", available, productName(product), inCart)
		}
		return &rejection{
			err: fmt.Errorf(
				"failed adding quantity=%d with inCart=%d above stock=%d with error=%w",
				quantity,
				inCart,
				available,
				commonErrors.ErrInsufficientStock,
			),
			message: message,
		}
	}
	return nil
}

// rejection pairs a pre-flight error with the message shown to the shopper.
type rejection struct {
	err     error
	message string
}

func (r *rejection) Error() string { return r.err.Error() }

func (r *rejection) Unwrap() error { return r.err }

func rejectionMessage(err error) string {
	var r *rejection
	if errors.As(err, &r) {
		return r.message
	}
	switch {
	case errors.Is(err, commonErrors.ErrInvalidQuantity):
		return "Quantity must be at least 1."
	case errors.Is(err, commonErrors.ErrLineNotFound):
		return "This item is no longer in your cart."
	}
	return api.UserMessage(err)
}

func findLine(lines []response.CartLine, productID int64, selection productAttribute.Selection) (response.CartLine, bool) {
	for _, l := range lines {
		if l.Matches(productID, selection) {
			return l, true
		}
	}
	return response.CartLine{}, false
}

func total(lines []response.CartLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.FinalPrice)
	}
	return sum
}

func count(lines []response.CartLine) int {
	n := 0
	for _, l := range lines {
		n += l.Quantity
	}
	return n
}

func currencyOf(cart response.Cart) string {
	if cart.Currency != "" {
		return cart.Currency
	}
	for _, l := range cart.Items {
		if l.Product.Currency != "" {
			return l.Product.Currency
		}
	}
	return ""
}

func productName(p productResponse.Product) string {
	if p.Name != "" {
		return p.Name
	}
	return "this product"
}
