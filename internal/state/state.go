// Package state holds the small state machine shared by the client-side
// stores: idle until the first sync, mutating while any request is in
// flight, then synced or error depending on the last response.
package state

import (
	"fmt"
	"sync"
)

type Status string

const (
	StatusIdle     Status = "idle"
	StatusMutating Status = "mutating"
	StatusSynced   Status = "synced"
	StatusError    Status = "error"
)

// Mutation outcomes reported to a store's recorder.
const (
	ResultSuccess   = "success"
	ResultFailure   = "failure"
	ResultRejected  = "rejected"
	ResultAbandoned = "abandoned"
)

// Machine is not safe for concurrent use; owners guard it with their own lock.
type Machine struct {
	status  Status
	settled Status
	pending int
	err     error
	synced  bool
}

func NewMachine() Machine { return Machine{status: StatusIdle} }

func (m *Machine) Status() Status {
	if m.status == "" {
		return StatusIdle
	}
	return m.status
}

func (m *Machine) Err() error { return m.err }

func (m *Machine) Pending() int { return m.pending }

// HasSynced reports whether any request has ever succeeded. A failed first
// load leaves it false even though the status is no longer idle.
func (m *Machine) HasSynced() bool { return m.synced }

func (m *Machine) Begin() {
	m.pending++
	m.status = StatusMutating
}

// Succeed settles one request. The store stays mutating until every
// in-flight request has answered.
func (m *Machine) Succeed() {
	m.settle()
	m.err = nil
	m.synced = true
	m.settled = StatusSynced
	if m.pending == 0 {
		m.status = StatusSynced
	}
}

func (m *Machine) Fail(err error) {
	m.settle()
	m.err = err
	m.settled = StatusError
	if m.pending == 0 {
		m.status = StatusError
	}
}

// Abandon settles a request whose result was discarded, keeping the previous outcome.
func (m *Machine) Abandon() {
	m.settle()
	if m.pending > 0 {
		return
	}
	m.status = m.settled
	if m.status == "" {
		m.status = StatusIdle
	}
}

func (m *Machine) settle() {
	if m.pending == 0 {
		panic(fmt.Sprintf("state: settle called on %s machine without pending request", m.Status()))
	}
	m.pending--
}

// Broadcaster fans snapshots out to subscribers. Subscribers are called
// synchronously, in subscription order, outside of the owner's lock.
type Broadcaster[T any] struct {
	mu   sync.Mutex
	next int
	subs map[int]*subscriber[T]
	ids  []int
}

type subscriber[T any] struct {
	mu   sync.Mutex
	fn   func(T)
	last uint64
}

func (b *Broadcaster[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = map[int]*subscriber[T]{}
	}
	id := b.next
	b.next++
	b.subs[id] = &subscriber[T]{fn: fn}
	b.ids = append(b.ids, id)

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs, id)
			for i, v := range b.ids {
				if v == id {
					b.ids = append(b.ids[:i], b.ids[i+1:]...)
					break
				}
			}
		})
	}
}

// Publish delivers v to every subscriber with no ordering guarantee
// between concurrent publishers.
func (b *Broadcaster[T]) Publish(v T) {
	for _, sub := range b.subscribers() {
		sub.fn(v)
	}
}

// PublishVersion delivers v unless a subscriber has already received a
// later version, so every subscriber ends on the highest version published.
// Deliveries to one subscriber are serialized: fn must not publish to the
// same broadcaster.
func (b *Broadcaster[T]) PublishVersion(version uint64, v T) {
	for _, sub := range b.subscribers() {
		sub.deliver(version, v)
	}
}

func (b *Broadcaster[T]) subscribers() []*subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := make([]*subscriber[T], 0, len(b.ids))
	for _, id := range b.ids {
		subs = append(subs, b.subs[id])
	}
	return subs
}

func (s *subscriber[T]) deliver(version uint64, v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if version <= s.last {
		return
	}
	s.last = version
	s.fn(v)
}

func (b *Broadcaster[T]) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.ids)
}
