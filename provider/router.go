package provider

import "sync"

// Router is the wallet router exposed to pages. It tracks every provider
// announced on the page and which one currently answers as the default.
type Router struct {
	mu           sync.RWMutex
	rainbow      EthereumProvider
	providers    []EthereumProvider
	current      EthereumProvider
	lastInjected EthereumProvider
}

func NewRouter(rainbow EthereumProvider) *Router {
	return &Router{
		rainbow:   rainbow,
		providers: []EthereumProvider{rainbow},
		current:   rainbow,
	}
}

func (r *Router) Providers() []EthereumProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]EthereumProvider(nil), r.providers...)
}

func (r *Router) CurrentProvider() EthereumProvider {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// AddProvider records a provider injected by another wallet. Adding the same
// provider twice is a no-op.
func (r *Router) AddProvider(p EthereumProvider) {
	if p == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.providers {
		if existing == p {
			return
		}
	}
	r.providers = append(r.providers, p)
	r.lastInjected = p
}

// SetDefaultProvider switches between rainbow and the most recently added
// foreign provider. Without a foreign provider rainbow stays current.
func (r *Router) SetDefaultProvider(rainbowAsDefault bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rainbowAsDefault || r.lastInjected == nil {
		r.current = r.rainbow
		return
	}
	r.current = r.lastInjected
}
