// Command simapp runs the execution engine in-process with a simulated
// provider and drives one scripted application through the full round trip:
// login, market order, execution, position, logout.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"main/internal/codec"
	"main/internal/mq/inproc"
	"main/internal/obs"
	"main/internal/provider/sim"
	"main/internal/schema"
	"main/internal/server"

	"github.com/shopspring/decimal"
	"github.com/yanun0323/logs"
)

const (
	appID        = "SIMAPP"
	providerName = "Sim"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("simapp: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	symbol := flag.String("symbol", "AAPL", "Symbol to trade")
	size := flag.Int64("size", 100, "Order size")
	wait := flag.Duration("wait", 2*time.Second, "How long to collect responses")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	broker := inproc.New()
	defer func() {
		_ = broker.Close()
	}()

	srv, err := server.New(broker, server.Config{}, server.Option{Metrics: obs.NewMetrics()})
	if err != nil {
		return err
	}
	srv.RegisterProvider(providerName, sim.Factory(sim.Config{
		ConnectOnStart: true,
		AutoAck:        true,
		AutoFill:       true,
		FillPrice:      decimal.NewFromInt(100),
	}))
	go func() {
		if err := srv.Run(ctx); err != nil {
			logs.Errorf("simapp: server: %+v", err)
		}
	}()

	q := server.DefaultQueues()
	replyQueue := q.ReplyPrefix + appID
	responses := make(chan server.Frame, 64)
	if err := broker.Consume(ctx, replyQueue, func(f server.Frame) {
		responses <- f
	}); err != nil {
		return err
	}

	send := func(queue string, body string) error {
		return broker.Publish(ctx, queue, server.Frame{
			Body:    []byte(body),
			AppID:   appID,
			ReplyTo: replyQueue,
		})
	}

	if err := send(q.AppInfo, "simapp,DEMO"); err != nil {
		return err
	}
	if err := send(q.Login, providerName); err != nil {
		return err
	}

	order := schema.Order{
		OrderID:  "X1",
		Side:     schema.OrderSideBuy,
		Size:     *size,
		TIF:      schema.TimeInForceDAY,
		Symbol:   *symbol,
		DateTime: time.Now(),
		Provider: providerName,
	}
	if err := send(q.OrderRequest, string(codec.EncodeMarketOrderRequest(appID, order))); err != nil {
		return err
	}

	deadline := time.After(*wait)
	for {
		select {
		case f := <-responses:
			fmt.Printf("<- %s\n", f.Body)
		case <-deadline:
			if err := send(q.Logout, providerName); err != nil {
				return err
			}
			drainUntil(responses, 500*time.Millisecond)
			return nil
		}
	}
}

func drainUntil(responses <-chan server.Frame, d time.Duration) {
	deadline := time.After(d)
	for {
		select {
		case f := <-responses:
			fmt.Printf("<- %s\n", f.Body)
		case <-deadline:
			return
		}
	}
}
