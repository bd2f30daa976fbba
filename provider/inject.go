package provider

import (
	"context"
	"encoding/json"
	"fmt"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/dapp"
)

type (
	Messenger interface {
		bridge.Sender
		bridge.Replier
	}

	// Page describes the document the provider is injected into.
	Page struct {
		URL      string
		Document dapp.Document
	}

	// Injection holds everything a page sees after the provider has been
	// injected. It replaces the window.ethereum / window.walletRouter globals.
	Injection struct {
		Rainbow      *Provider
		WalletRouter *Router
		Host         string

		reload      func()
		unsubscribe []func()
	}

	InjectOptionsFunc func(*Injection)
)

// OnReload sets the function run when the wallet asks the page to reload.
func OnReload(f func()) InjectOptionsFunc {
	return func(i *Injection) {
		i.reload = f
	}
}

// Inject builds the page side provider on top of m. It returns false when the
// document is not eligible for injection. Host scoped events are only wired
// for pages with a valid URL.
func Inject(m Messenger, page Page, options ...InjectOptionsFunc) (*Injection, bool) {
	if !dapp.ShouldInjectProvider(page.Document) {
		return nil, false
	}

	rainbow := NewProvider(m)
	i := &Injection{
		Rainbow:      rainbow,
		WalletRouter: NewRouter(rainbow),
	}
	for _, setter := range options {
		setter(i)
	}

	if dapp.IsValidURL(page.URL) {
		i.Host = dapp.GetDappHost(page.URL)
		for _, event := range HostEvents {
			i.unsubscribe = append(i.unsubscribe, m.Reply(Topic(event, i.Host), i.emitter(event)))
		}
	}

	i.unsubscribe = append(i.unsubscribe,
		m.Reply(TopicChainEvent, i.onChainEvent),
		m.Reply(TopicReload, i.onReload),
		m.Reply(TopicSetDefaultProvider, i.onSetDefaultProvider),
	)
	return i, true
}

// Ethereum returns the provider currently answering for the page.
func (i *Injection) Ethereum() EthereumProvider {
	return i.WalletRouter.CurrentProvider()
}

func (i *Injection) Close() {
	for _, f := range i.unsubscribe {
		f()
	}
	i.unsubscribe = nil
}

func (i *Injection) emitter(event Event) bridge.HandlerFunc {
	return func(_ context.Context, payload json.RawMessage, _ bridge.CallbackOptions) (interface{}, error) {
		i.Rainbow.Emit(event, payload)
		return nil, nil
	}
}

func (i *Injection) onChainEvent(_ context.Context, payload json.RawMessage, _ bridge.CallbackOptions) (interface{}, error) {
	var ev ChainEvent
	if err := json.Unmarshal(payload, &ev); err != nil {
		return nil, fmt.Errorf("decode chain event: %w", err)
	}
	if i.Host == "" || ev.Host != i.Host {
		return nil, nil
	}
	i.Rainbow.Emit(EventEthereumChain, payload)
	return nil, nil
}

func (i *Injection) onReload(context.Context, json.RawMessage, bridge.CallbackOptions) (interface{}, error) {
	if i.reload != nil {
		i.reload()
	}
	return nil, nil
}

func (i *Injection) onSetDefaultProvider(_ context.Context, payload json.RawMessage, _ bridge.CallbackOptions) (interface{}, error) {
	var p DefaultProvider
	if err := json.Unmarshal(payload, &p); err != nil {
		return nil, fmt.Errorf("decode default provider: %w", err)
	}
	i.WalletRouter.SetDefaultProvider(p.RainbowAsDefault)
	return nil, nil
}
