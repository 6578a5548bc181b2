// Package session is the explicit auth/session context shared by every
// store and API call: the bearer token, the signed-in user and the anonymous
// session id, with change notifications for subscribers.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/Alturino/storefront/internal/common/otel"
	"github.com/Alturino/storefront/internal/log"
	"github.com/Alturino/storefront/internal/state"
)

type Identity struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Avatar string `json:"avatar,omitempty"`
}

type State struct {
	SessionID string    `json:"session_id"`
	Token     string    `json:"-"`
	User      *Identity `json:"user,omitempty"`
}

func (s State) Authenticated() bool { return s.Token != "" }

type Event string

const (
	EventSignedIn  Event = "signed_in"
	EventSignedOut Event = "signed_out"
	EventExpired   Event = "expired"
	EventUpdated   Event = "updated"
)

type Change struct {
	Event Event
	State State
}

type Manager struct {
	mu          sync.RWMutex
	storage     Storage
	state       State
	broadcaster state.Broadcaster[Change]
}

// NewManager restores the persisted session and creates a session id when
// none exists yet.
func NewManager(c context.Context, storage Storage) (*Manager, error) {
	c, span := otel.Tracer.Start(c, "session NewManager")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session NewManager").
		Str(log.KeyProcess, "restoring session").
		Logger()

	logger.Debug().Msg("restoring session")
	m := &Manager{storage: storage}

	sessionID, ok, err := storage.Get(c, KeySessionID)
	if err != nil {
		return nil, fmt.Errorf("failed restoring session id with error=%w", err)
	}
	if !ok || sessionID == "" {
		sessionID = uuid.NewString()
		if err := storage.Set(c, KeySessionID, sessionID); err != nil {
			return nil, fmt.Errorf("failed persisting session id with error=%w", err)
		}
		logger.Debug().Str(log.KeySessionID, sessionID).Msg("created session id")
	}
	m.state.SessionID = sessionID

	token, _, err := storage.Get(c, KeyAuthToken)
	if err != nil {
		return nil, fmt.Errorf("failed restoring auth token with error=%w", err)
	}
	m.state.Token = token

	rawUser, ok, err := storage.Get(c, KeyAuthUser)
	if err != nil {
		return nil, fmt.Errorf("failed restoring auth user with error=%w", err)
	}
	if ok && rawUser != "" {
		user := Identity{}
		if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
			logger.Warn().Err(err).Msg("dropping unreadable auth user")
		} else {
			m.state.User = &user
		}
	}
	logger.Debug().
		Str(log.KeySessionID, sessionID).
		Bool("authenticated", m.state.Authenticated()).
		Msg("restored session")

	return m, nil
}

func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s := m.state
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

func (m *Manager) Token() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.Token
}

func (m *Manager) SessionID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state.SessionID
}

func (m *Manager) Subscribe(fn func(Change)) (unsubscribe func()) {
	return m.broadcaster.Subscribe(fn)
}

func (m *Manager) SignIn(c context.Context, token string, user *Identity) error {
	if err := m.storage.Set(c, KeyAuthToken, token); err != nil {
		return err
	}
	if err := m.persistUser(c, user); err != nil {
		return err
	}
	m.mu.Lock()
	m.state.Token = token
	m.state.User = user
	m.mu.Unlock()
	m.broadcaster.Publish(Change{Event: EventSignedIn, State: m.State()})
	return nil
}

// UpdateUser replaces the cached identity after a profile change.
func (m *Manager) UpdateUser(c context.Context, user *Identity) error {
	if err := m.persistUser(c, user); err != nil {
		return err
	}
	m.mu.Lock()
	m.state.User = user
	m.mu.Unlock()
	m.broadcaster.Publish(Change{Event: EventUpdated, State: m.State()})
	return nil
}

// UseToken adopts a token presented by a caller without touching the user.
func (m *Manager) UseToken(c context.Context, token string) error {
	if m.Token() == token {
		return nil
	}
	if err := m.storage.Set(c, KeyAuthToken, token); err != nil {
		return err
	}
	m.mu.Lock()
	m.state.Token = token
	m.mu.Unlock()
	m.broadcaster.Publish(Change{Event: EventUpdated, State: m.State()})
	return nil
}

func (m *Manager) SignOut(c context.Context) error {
	return m.clear(c, EventSignedOut)
}

// Expire clears the credentials after the API rejected them. The session id
// survives so the anonymous cart stays reachable.
func (m *Manager) Expire(c context.Context) error {
	return m.clear(c, EventExpired)
}

func (m *Manager) clear(c context.Context, event Event) error {
	if err := m.storage.Delete(c, KeyAuthToken, KeyAuthUser); err != nil {
		return err
	}
	m.mu.Lock()
	m.state.Token = ""
	m.state.User = nil
	m.mu.Unlock()
	m.broadcaster.Publish(Change{Event: event, State: m.State()})
	return nil
}

// Expired reports whether the stored token's exp claim is in the past.
func (m *Manager) Expired(now time.Time) bool {
	token := m.Token()
	if token == "" {
		return false
	}
	return TokenExpired(token, now)
}

func (m *Manager) persistUser(c context.Context, user *Identity) error {
	if user == nil {
		return m.storage.Delete(c, KeyAuthUser)
	}
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return m.storage.Set(c, KeyAuthUser, string(b))
}
