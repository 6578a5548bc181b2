// Package shopper binds one session to its API client and stores. The
// storefront service keeps one Shopper per session id, the CLI has exactly one.
package shopper

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog"

	cartStore "github.com/Alturino/storefront/cart/pkg/store"
	"github.com/Alturino/storefront/internal/api"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/session"
	wishlistStore "github.com/Alturino/storefront/wishlist/pkg/store"
)

// Recorder is satisfied by metrics.Recorder.
type Recorder interface {
	Mutation(store, operation, result string)
}

type Shopper struct {
	Session  *session.Manager
	Client   *api.Client
	Cart     *cartStore.Store
	Wishlist *wishlistStore.Store

	unsubscribe func()
}

// Provide returns the shopper for the current invocation.
type Provide func(c context.Context) (*Shopper, error)

func New(c context.Context, storage session.Storage, base *api.Client, recorder Recorder) (*Shopper, error) {
	c, span := otel.Tracer.Start(c, "shopper New")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "shopper New").
		Str(log.KeyProcess, "initializing shopper").
		Logger()

	manager, err := session.NewManager(c, storage)
	if err != nil {
		err = fmt.Errorf("failed initializing session with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	client := base.WithCredentials(manager)
	s := &Shopper{
		Session:  manager,
		Client:   client,
		Cart:     cartStore.New(client, cartStore.WithRecorder(recorder)),
		Wishlist: wishlistStore.New(client, wishlistStore.WithRecorder(recorder)),
	}
	s.unsubscribe = manager.Subscribe(func(change session.Change) {
		if change.Event == session.EventExpired {
			logger.Warn().Str(log.KeySessionID, change.State.SessionID).Msg("session expired")
		}
	})
	logger.Debug().Str(log.KeySessionID, manager.SessionID()).Msg("initialized shopper")

	return s, nil
}

// Ready loads the cart and the wishlist until each has synced once. A failed
// load is retried on the next call.
func (s *Shopper) Ready(c context.Context) error {
	if !s.Cart.Synced() {
		if err := s.Cart.Load(c); err != nil {
			return err
		}
	}
	if !s.Wishlist.Synced() {
		if err := s.Wishlist.Load(c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Shopper) Close() {
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
}

// StorageFactory returns the storage of one session.
type StorageFactory func(sessionID string) session.Storage

const (
	DefaultCapacity = 10000
	DefaultIdleTTL  = 30 * time.Minute
)

// Registry keeps one Shopper per session id. Shoppers idle for longer than
// the idle TTL, or pushed out once capacity is reached, are closed and
// dropped. A returning session id gets a fresh shopper that reloads from the
// API and its session storage.
type Registry struct {
	mu       sync.Mutex
	base     *api.Client
	storage  StorageFactory
	recorder Recorder
	capacity int
	idleTTL  time.Duration
	shoppers *expirable.LRU[string, *Shopper]
}

type RegistryOption func(*Registry)

func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

func WithIdleTTL(d time.Duration) RegistryOption {
	return func(r *Registry) {
		if d > 0 {
			r.idleTTL = d
		}
	}
}

func NewRegistry(base *api.Client, storage StorageFactory, recorder Recorder, opts ...RegistryOption) *Registry {
	if storage == nil {
		storage = func(string) session.Storage { return session.NewMemoryStorage() }
	}
	r := &Registry{
		base:     base,
		storage:  storage,
		recorder: recorder,
		capacity: DefaultCapacity,
		idleTTL:  DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(r)
	}
	r.shoppers = expirable.NewLRU[string, *Shopper](r.capacity, func(_ string, s *Shopper) { s.Close() }, r.idleTTL)
	return r
}

// Resolve returns the shopper of sessionID, creating the session when the id
// is empty or unknown. A presented bearer token is adopted by the session.
func (r *Registry) Resolve(c context.Context, sessionID, token string) (*Shopper, error) {
	c, span := otel.Tracer.Start(c, "shopper Registry Resolve")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "shopper Registry Resolve").
		Str(log.KeySessionID, sessionID).
		Logger()

	if _, err := uuid.Parse(sessionID); err != nil {
		sessionID = uuid.NewString()
		logger = logger.With().Str(log.KeySessionID, sessionID).Logger()
		logger.Debug().Msg("issued session id")
	}

	r.mu.Lock()
	s, ok := r.shoppers.Get(sessionID)
	if ok {
		r.shoppers.Add(sessionID, s)
	}
	r.mu.Unlock()
	if !ok {
		logger = logger.With().Str(log.KeyProcess, "creating shopper").Logger()
		logger.Debug().Msg("creating shopper")
		storage := r.storage(sessionID)
		if err := storage.Set(c, session.KeySessionID, sessionID); err != nil {
			err = fmt.Errorf("failed persisting session id with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		created, err := New(logger.WithContext(c), storage, r.base, r.recorder)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		if existing, raced := r.shoppers.Get(sessionID); raced {
			created.Close()
			s = existing
		} else {
			r.shoppers.Add(sessionID, created)
			s = created
		}
		r.mu.Unlock()
		logger.Debug().Msg("created shopper")
	}

	if token != "" {
		if err := s.Session.UseToken(c, token); err != nil {
			err = fmt.Errorf("failed adopting token with error=%w", err)
			commonErrors.HandleError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
	}
	return s, nil
}

func (r *Registry) Len() int {
	return r.shoppers.Len()
}

type shopperKey struct{}

func AttachToContext(c context.Context, s *Shopper) context.Context {
	return context.WithValue(c, shopperKey{}, s)
}

func FromContext(c context.Context) (*Shopper, bool) {
	s, ok := c.Value(shopperKey{}).(*Shopper)
	return s, ok && s != nil
}
