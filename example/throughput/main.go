package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	bridge "github.com/RidgeA/dapp-bridge"
	"github.com/RidgeA/dapp-bridge/transport"
	"github.com/RidgeA/dapp-bridge/transport/inmemory"
)

func main() {
	log.SetFlags(log.Lshortfile | log.LstdFlags)

	a, b := inmemory.Pipe("client", "server")
	client := bridge.New("client", bridge.SetTransport(a))
	server := bridge.New("server", bridge.SetTransport(b))

	server.Reply("write", func(_ context.Context, payload json.RawMessage, meta bridge.CallbackOptions) (interface{}, error) {
		time.Sleep(500 * time.Millisecond)
		fmt.Printf("%s: server log: %s (id %s)\n", time.Now().Format("15:04:05.999999"), payload, meta.ID)
		return nil, nil
	}, bridge.SetHandlerThroughput(2))

	if err := client.Start(); err != nil {
		log.Fatal(err.Error())
	}
	defer client.Shutdown()

	if err := server.Start(); err != nil {
		log.Fatal(err.Error())
	}
	defer server.Shutdown()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := client.Send(context.Background(), "write", fmt.Sprintf("%d:hello!", i), transport.NumberID(int64(i)))
			if err != nil {
				log.Print(err.Error())
			}
		}(i)
	}
	wg.Wait()
}
