// Package store keeps the client-side wishlist membership set.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"

	cartResponse "github.com/Alturino/storefront/cart/pkg/response"
	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/state"
	"github.com/Alturino/storefront/wishlist/pkg/response"
)

const Name = "wishlist"

const (
	OperationLoad   = "load"
	OperationToggle = "toggle"
)

type Client interface {
	GetWishlist(c context.Context) (response.Wishlist, error)
	ToggleWishlist(c context.Context, productID int64) (response.Toggled, error)
}

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

// Snapshot is a consistent copy of the store. Version grows with every
// transition.
type Snapshot struct {
	Version uint64
	IDs     []int64
	Status  state.Status
	Err     error
}

func (s Snapshot) View() response.View {
	return response.View{ProductIDs: s.IDs, Count: len(s.IDs), Status: string(s.Status)}
}

type Store struct {
	mu          sync.RWMutex
	client      Client
	recorder    Recorder
	ids         map[int64]struct{}
	version     uint64
	machine     state.Machine
	broadcaster state.Broadcaster[Snapshot]
}

func New(client Client, opts ...Option) *Store {
	s := &Store{
		client:   client,
		recorder: nopRecorder{},
		ids:      map[int64]struct{}{},
		machine:  state.NewMachine(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	return s.broadcaster.Subscribe(fn)
}

func (s *Store) Has(productID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[productID]
	return ok
}

// IDs returns the members in ascending order.
func (s *Store) IDs() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted()
}

func (s *Store) Status() state.Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Status()
}

// Synced reports whether the set has ever been filled by the server.
func (s *Store) Synced() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.HasSynced()
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Store) snapshot() Snapshot {
	return Snapshot{Version: s.version, IDs: s.sorted(), Status: s.machine.Status(), Err: s.machine.Err()}
}

func (s *Store) sorted() []int64 {
	ids := make([]int64, 0, len(s.ids))
	for id := range s.ids {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func (s *Store) Load(c context.Context) error {
	c, span := otel.Tracer.Start(c, "WishlistStore Load")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistStore Load").
		Str(log.KeyProcess, "loading wishlist").
		Logger()

	logger.Debug().Msg("loading wishlist")
	s.transition(func(m *state.Machine) { m.Begin() })
	wishlist, err := s.client.GetWishlist(c)
	if err != nil {
		err = fmt.Errorf("failed loading wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationLoad, state.ResultFailure)
		s.transition(func(m *state.Machine) { m.Fail(err) })
		return err
	}
	if c.Err() != nil {
		s.recorder.Mutation(Name, OperationLoad, state.ResultAbandoned)
		s.transition(func(m *state.Machine) { m.Abandon() })
		return c.Err()
	}
	s.apply(OperationLoad, wishlist)
	logger.Debug().Int(log.KeyWishlist, len(wishlist.Items)).Msg("loaded wishlist")

	return nil
}

// Toggle flips membership with one API call. The set is replaced by the
// wishlist the API returns, or re-fetched when it returns none.
func (s *Store) Toggle(c context.Context, productID int64) (cartResponse.Result, error) {
	c, span := otel.Tracer.Start(c, "WishlistStore Toggle")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "WishlistStore Toggle").
		Str(log.KeyProcess, "toggling wishlist").
		Int64(log.KeyProductID, productID).
		Logger()

	if productID <= 0 {
		err := fmt.Errorf("failed toggling productId=%d with error=%w", productID, commonErrors.ErrNotFound)
		commonErrors.HandleError(err, span)
		logger.Warn().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationToggle, state.ResultRejected)
		return cartResponse.Result{Success: false, Message: "Unknown product."}, err
	}

	logger.Debug().Msg("toggling wishlist")
	s.transition(func(m *state.Machine) { m.Begin() })
	toggled, err := s.client.ToggleWishlist(c, productID)
	if err == nil && toggled.Wishlist == nil && c.Err() == nil {
		logger.Debug().Msg("toggle answered without wishlist, refetching")
		var wishlist response.Wishlist
		wishlist, err = s.client.GetWishlist(c)
		toggled.Wishlist = &wishlist
	}
	if err == nil && c.Err() != nil {
		err = fmt.Errorf("discarded wishlist response with error=%w", c.Err())
	}
	if err != nil {
		if c.Err() != nil {
			logger.Warn().Err(err).Msg(err.Error())
			s.recorder.Mutation(Name, OperationToggle, state.ResultAbandoned)
			s.transition(func(m *state.Machine) { m.Abandon() })
			return cartResponse.Result{Success: false, Message: api.UserMessage(err)}, err
		}
		err = fmt.Errorf("failed toggling wishlist with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.recorder.Mutation(Name, OperationToggle, state.ResultFailure)
		s.transition(func(m *state.Machine) { m.Fail(err) })
		return cartResponse.Result{Success: false, Message: api.UserMessage(err)}, err
	}

	s.apply(OperationToggle, *toggled.Wishlist)
	if s.Has(productID) {
		logger.Debug().Msg("added to wishlist")
		return cartResponse.Result{Success: true, Message: "Added to wishlist."}, nil
	}
	logger.Debug().Msg("removed from wishlist")
	return cartResponse.Result{Success: true, Message: "Removed from wishlist."}, nil
}

func (s *Store) apply(operation string, wishlist response.Wishlist) {
	ids := make(map[int64]struct{}, len(wishlist.Items))
	for _, item := range wishlist.Items {
		id := item.ProductID
		if id == 0 && item.Product != nil {
			id = item.Product.ID
		}
		if id != 0 {
			ids[id] = struct{}{}
		}
	}
	s.recorder.Mutation(Name, operation, state.ResultSuccess)
	s.transition(func(m *state.Machine) {
		s.ids = ids
		m.Succeed()
	})
}

// transition runs fn under the lock and publishes the resulting snapshot.
// Subscribers never see an older snapshot after a newer one.
func (s *Store) transition(fn func(m *state.Machine)) {
	s.mu.Lock()
	fn(&s.machine)
	s.version++
	snapshot := s.snapshot()
	s.mu.Unlock()
	s.broadcaster.PublishVersion(snapshot.Version, snapshot)
}
