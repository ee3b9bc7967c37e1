package auth

import (
	"sync"

	"casahogar-storefront-api/internal/model"
)

// Provider is the external auth collaborator: it resolves the current
// identity and feeds identity-change notifications. The session subscribes
// exactly once at startup.
type Provider interface {
	// Current returns the currently resolved identity (guest when signed
	// out).
	Current() model.Identity

	// Subscribe registers a callback fired on every identity change. The
	// returned cancel function removes the subscription.
	Subscribe(fn func(model.Identity)) (cancel func())
}

// StaticProvider is an in-process Provider driven by SignIn/SignOut calls.
// It stands in for the hosted auth backend in development and tests.
type StaticProvider struct {
	mu      sync.Mutex
	current model.Identity
	subs    map[int]func(model.Identity)
	nextSub int
}

// NewStaticProvider creates a provider resolved to the guest identity.
func NewStaticProvider() *StaticProvider {
	return &StaticProvider{
		current: model.Guest,
		subs:    make(map[int]func(model.Identity)),
	}
}

// Current returns the currently resolved identity.
func (p *StaticProvider) Current() model.Identity {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.current
}

// Subscribe registers an identity-change callback.
func (p *StaticProvider) Subscribe(fn func(model.Identity)) func() {
	p.mu.Lock()
	id := p.nextSub
	p.nextSub++
	p.subs[id] = fn
	p.mu.Unlock()

	return func() {
		p.mu.Lock()
		delete(p.subs, id)
		p.mu.Unlock()
	}
}

// SignIn switches the current identity to the given user id.
func (p *StaticProvider) SignIn(uid model.Identity) {
	p.transition(uid)
}

// SignOut switches the current identity back to guest.
func (p *StaticProvider) SignOut() {
	p.transition(model.Guest)
}

func (p *StaticProvider) transition(to model.Identity) {
	p.mu.Lock()
	if p.current == to {
		p.mu.Unlock()
		return
	}
	p.current = to
	subs := make([]func(model.Identity), 0, len(p.subs))
	for _, fn := range p.subs {
		subs = append(subs, fn)
	}
	p.mu.Unlock()

	for _, fn := range subs {
		fn(to)
	}
}
