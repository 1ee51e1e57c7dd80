package docstore

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/lista-app/lista"
)

// Subscription registry errors.
var (
	ErrEmptySubscriptionName = errors.New("subscription name cannot be empty")
	ErrSubscriptionConflict  = errors.New("subscription name already in use")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

// SubscriptionState is the lifecycle of a query subscription.
type SubscriptionState int

const (
	// SubscriptionError means a sync message failed to apply while the
	// subscription was waiting. Err on the subscription holds the cause.
	SubscriptionError SubscriptionState = -1
	// SubscriptionPending means the subscription is registered and waiting
	// for a sync exchange to confirm the local document is current.
	SubscriptionPending SubscriptionState = 0
	// SubscriptionComplete means a sync exchange confirmed that every head
	// the remote advertised is known locally.
	SubscriptionComplete SubscriptionState = 1
	// SubscriptionCreating is the initial state while Subscribe registers
	// the subscription.
	SubscriptionCreating SubscriptionState = 2
	// SubscriptionInvalidated means the subscription was removed.
	SubscriptionInvalidated SubscriptionState = 3
)

func (s SubscriptionState) String() string {
	switch s {
	case SubscriptionError:
		return "error"
	case SubscriptionPending:
		return "pending"
	case SubscriptionComplete:
		return "complete"
	case SubscriptionCreating:
		return "creating"
	case SubscriptionInvalidated:
		return "invalidated"
	default:
		return fmt.Sprintf("SubscriptionState(%d)", int(s))
	}
}

// Subscription is a named item query registered with the store. Its state
// advances as sync messages are consumed; read it with State.
type Subscription struct {
	name  string
	query lista.ItemQuery

	mu    sync.Mutex
	state SubscriptionState
	err   error
}

// Name returns the name the subscription was registered under.
func (s *Subscription) Name() string { return s.name }

// Query returns the item query the subscription tracks.
func (s *Subscription) Query() lista.ItemQuery { return s.query }

// State returns the current lifecycle state.
func (s *Subscription) State() SubscriptionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Err returns the failure that moved the subscription to SubscriptionError,
// or nil.
func (s *Subscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *Subscription) setState(state SubscriptionState, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.err = err
}

// Subscriptions registers named item queries against the store and advances
// their state as sync messages are consumed. The registry is in-memory;
// callers re-register after reopening a store.
type Subscriptions struct {
	mu   sync.Mutex
	subs map[string]*Subscription
}

func newSubscriptions() *Subscriptions {
	return &Subscriptions{subs: make(map[string]*Subscription)}
}

// Subscribe registers the query under name and returns the subscription in
// the pending state. Re-subscribing with the same name and query returns the
// existing subscription unchanged; the same name with a different query
// fails with ErrSubscriptionConflict.
func (r *Subscriptions) Subscribe(name string, q lista.ItemQuery) (*Subscription, error) {
	if name == "" {
		return nil, ErrEmptySubscriptionName
	}
	if err := q.Validate(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.subs[name]; ok {
		if existing.query == q {
			return existing, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrSubscriptionConflict, name)
	}

	sub := &Subscription{name: name, query: q, state: SubscriptionCreating}
	r.subs[name] = sub
	sub.setState(SubscriptionPending, nil)
	return sub, nil
}

// Unsubscribe removes the named subscription and marks it invalidated.
func (r *Subscriptions) Unsubscribe(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	sub, ok := r.subs[name]
	if !ok {
		return fmt.Errorf("%w: %s", ErrSubscriptionNotFound, name)
	}
	delete(r.subs, name)
	sub.setState(SubscriptionInvalidated, nil)
	return nil
}

// Get returns the named subscription.
func (r *Subscriptions) Get(name string) (*Subscription, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[name]
	return sub, ok
}

// All returns every registered subscription, sorted by name.
func (r *Subscriptions) All() []*Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Subscription, 0, len(r.subs))
	for _, sub := range r.subs {
		out = append(out, sub)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].name < out[j].name
	})
	return out
}

// complete moves every pending subscription to SubscriptionComplete.
func (r *Subscriptions) complete() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.State() == SubscriptionPending {
			sub.setState(SubscriptionComplete, nil)
		}
	}
}

// fail moves every pending subscription to SubscriptionError.
func (r *Subscriptions) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sub := range r.subs {
		if sub.State() == SubscriptionPending {
			sub.setState(SubscriptionError, err)
		}
	}
}

// invalidateAll marks every subscription invalidated and clears the
// registry. The store calls it on Close.
func (r *Subscriptions) invalidateAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for name, sub := range r.subs {
		sub.setState(SubscriptionInvalidated, nil)
		delete(r.subs, name)
	}
}
