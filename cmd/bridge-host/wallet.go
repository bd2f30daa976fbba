package main

import (
	"context"
	"strconv"
	"strings"
	"sync"

	"github.com/RidgeA/dapp-bridge/config"
	"github.com/RidgeA/dapp-bridge/dapp"
	"github.com/RidgeA/dapp-bridge/provider"
	"go.uber.org/zap"
)

// wallet is a read-only demo wallet: static accounts, a switchable chain and
// no signer.
type wallet struct {
	mu       sync.RWMutex
	chain    string
	accounts []string
}

type switchChainParams struct {
	ChainID string `json:"chainId"`
}

func newWallet(cfg config.WalletConfig) *wallet {
	return &wallet{
		chain:    strings.ToLower(cfg.ChainID),
		accounts: append([]string{}, cfg.Accounts...),
	}
}

func (w *wallet) chainID() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.chain
}

func (w *wallet) dispatcher(notifier *provider.Notifier, logger *zap.Logger) *provider.Dispatcher {
	d := provider.NewDispatcher()

	d.Handle(provider.MethodChainID, func(context.Context, provider.Request) (interface{}, error) {
		return w.chainID(), nil
	})

	d.Handle(provider.MethodNetVersion, func(context.Context, provider.Request) (interface{}, error) {
		n, err := strconv.ParseInt(strings.TrimPrefix(w.chainID(), "0x"), 16, 64)
		if err != nil {
			return nil, err
		}
		return strconv.FormatInt(n, 10), nil
	})

	d.Handle(provider.MethodAccounts, func(context.Context, provider.Request) (interface{}, error) {
		return w.accounts, nil
	})

	d.Handle(provider.MethodRequestAccounts, func(context.Context, provider.Request) (interface{}, error) {
		if len(w.accounts) == 0 {
			return nil, provider.NewError(provider.CodeUserRejected, "no accounts available")
		}
		return w.accounts, nil
	})

	d.Handle(provider.MethodSwitchEthereumChain, func(ctx context.Context, req provider.Request) (interface{}, error) {
		var params switchChainParams
		if err := req.Param(0, &params); err != nil {
			return nil, err
		}
		if !strings.HasPrefix(params.ChainID, "0x") {
			return nil, provider.NewError(provider.CodeInvalidParams, "chainId must be a hex string")
		}

		w.mu.Lock()
		w.chain = strings.ToLower(params.ChainID)
		w.mu.Unlock()

		if req.Meta != nil {
			if host := dapp.GetDappHost(req.Meta.Sender.URL); host != "" {
				chain := w.chainID()
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
					defer cancel()
					if err := notifier.ChainChanged(ctx, host, chain); err != nil {
						logger.Debug("chainChanged not delivered", zap.String("host", host), zap.Error(err))
					}
				}()
			}
		}
		return nil, nil
	})

	unsigned := func(context.Context, provider.Request) (interface{}, error) {
		return nil, provider.NewError(provider.CodeUnauthorized, "this host has no signer")
	}
	for _, method := range []provider.RPCMethod{
		provider.MethodSendTransaction,
		provider.MethodSign,
		provider.MethodPersonalSign,
		provider.MethodSignTypedData,
		provider.MethodSignTypedDataV3,
		provider.MethodSignTypedDataV4,
	} {
		d.Handle(method, unsigned)
	}

	return d
}
