package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/provider"
	"github.com/RidgeA/dapp-bridge/transport/inmemory"
)

func main() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	page, wallet := inmemory.Pipe("page", "wallet", inmemory.SetURL("page", "https://www.uniswap.org/swap"))

	pageSide := bridge.New("page", bridge.SetTransport(page))
	walletSide := bridge.New("wallet", bridge.SetTransport(wallet))

	dispatcher := provider.NewDispatcher()
	dispatcher.Handle(provider.MethodChainID, func(context.Context, provider.Request) (interface{}, error) {
		return "0x1", nil
	})
	dispatcher.Handle(provider.MethodAccounts, func(context.Context, provider.Request) (interface{}, error) {
		return []string{"0x7a3d05c70581bd345fe117c06e45f9669205384f"}, nil
	})
	defer dispatcher.Serve(walletSide)()

	if err := walletSide.Start(); err != nil {
		log.Fatal(err.Error())
	}
	defer walletSide.Shutdown()

	if err := pageSide.Start(); err != nil {
		log.Fatal(err.Error())
	}
	defer pageSide.Shutdown()

	injection, ok := provider.Inject(pageSide, provider.Page{URL: "https://www.uniswap.org/swap"})
	if !ok {
		log.Fatal("page is not eligible for injection")
	}
	defer injection.Close()

	injection.Rainbow.On(provider.EventChainChanged, func(payload json.RawMessage) {
		fmt.Printf("chainChanged: %s\n", payload)
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	chainID, err := injection.Ethereum().Request(ctx, provider.MethodChainID)
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Printf("eth_chainId: %s\n", chainID)

	accounts, err := injection.Ethereum().Request(ctx, provider.MethodAccounts)
	if err != nil {
		log.Fatal(err.Error())
	}
	fmt.Printf("eth_accounts: %s\n", accounts)

	if _, err := injection.Ethereum().Request(ctx, provider.MethodSendTransaction); err != nil {
		fmt.Printf("eth_sendTransaction: %s\n", err)
	}

	notifier := provider.NewNotifier(walletSide)
	if err := notifier.ChainChanged(ctx, injection.Host, "0xa"); err != nil {
		log.Fatal(err.Error())
	}
}
