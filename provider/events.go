package provider

import (
	"context"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/transport"
	"github.com/google/uuid"
)

type Event string

const (
	EventAccountsChanged Event = "accountsChanged"
	EventChainChanged    Event = "chainChanged"
	EventDisconnect      Event = "disconnect"
	EventConnect         Event = "connect"
	EventEthereumChain   Event = "ethereumChainEvent"
)

// HostEvents are delivered on per-host topics, see Topic.
var HostEvents = []Event{
	EventAccountsChanged,
	EventChainChanged,
	EventDisconnect,
	EventConnect,
}

// Control topics sent from the wallet to every injected page.
const (
	TopicChainEvent         = "rainbow_ethereumChainEvent"
	TopicReload             = "rainbow_reload"
	TopicSetDefaultProvider = "rainbow_setDefaultProvider"
)

type (
	ChainEvent struct {
		ChainID   string `json:"chainId"`
		ChainName string `json:"chainName,omitempty"`
		Status    string `json:"status,omitempty"`
		Host      string `json:"host"`
	}

	ConnectInfo struct {
		ChainID string `json:"chainId"`
	}

	DefaultProvider struct {
		RainbowAsDefault bool `json:"rainbowAsDefault"`
	}

	// Notifier pushes wallet state changes to injected pages.
	Notifier struct {
		sender bridge.Sender
	}
)

// Topic scopes event to the dapp host, e.g. "chainChanged:example.com".
func Topic(event Event, host string) string {
	return string(event) + ":" + host
}

func NewNotifier(sender bridge.Sender) *Notifier {
	return &Notifier{sender: sender}
}

func (n *Notifier) Notify(ctx context.Context, event Event, host string, payload interface{}) error {
	return n.send(ctx, Topic(event, host), payload)
}

func (n *Notifier) AccountsChanged(ctx context.Context, host string, accounts []string) error {
	if accounts == nil {
		accounts = []string{}
	}
	return n.Notify(ctx, EventAccountsChanged, host, accounts)
}

func (n *Notifier) ChainChanged(ctx context.Context, host, chainID string) error {
	return n.Notify(ctx, EventChainChanged, host, chainID)
}

func (n *Notifier) Connect(ctx context.Context, host, chainID string) error {
	return n.Notify(ctx, EventConnect, host, ConnectInfo{ChainID: chainID})
}

func (n *Notifier) Disconnect(ctx context.Context, host string) error {
	return n.Notify(ctx, EventDisconnect, host, NewError(CodeDisconnected, "the provider is disconnected from all chains"))
}

func (n *Notifier) ChainEvent(ctx context.Context, ev ChainEvent) error {
	return n.send(ctx, TopicChainEvent, ev)
}

func (n *Notifier) Reload(ctx context.Context) error {
	return n.send(ctx, TopicReload, nil)
}

func (n *Notifier) SetDefaultProvider(ctx context.Context, rainbowAsDefault bool) error {
	return n.send(ctx, TopicSetDefaultProvider, DefaultProvider{RainbowAsDefault: rainbowAsDefault})
}

func (n *Notifier) send(ctx context.Context, topic string, payload interface{}) error {
	_, err := n.sender.Send(ctx, topic, payload, transport.StringID(uuid.New().String()))
	return err
}
