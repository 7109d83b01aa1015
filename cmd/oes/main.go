package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"main/internal/journal"
	"main/internal/mq/kafka"
	"main/internal/obs"
	"main/internal/ops"
	"main/internal/provider"
	"main/internal/provider/sim"
	"main/internal/server"

	pyroscope "github.com/grafana/pyroscope-go"
	"github.com/yanun0323/logs"
)

func main() {
	if err := run(); err != nil {
		logs.Errorf("oes: %+v", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "Path to JSON config")
	brokersFlag := flag.String("brokers", "", "Comma-separated Kafka brokers (overrides config)")
	profileAddr := flag.String("profile-addr", "", "Pyroscope server address (empty=disabled)")
	flag.Parse()

	if *configPath == "" {
		return fmt.Errorf("missing config; use -config")
	}
	loaded, err := ops.Load(*configPath)
	if err != nil {
		return err
	}
	if *brokersFlag != "" {
		loaded.Kafka.Brokers = strings.Split(*brokersFlag, ",")
	}

	if *profileAddr != "" {
		profiler, err := pyroscope.Start(pyroscope.Config{
			ApplicationName: "oes",
			ServerAddress:   *profileAddr,
			Logger:          emptyLogger{},
			ProfileTypes: []pyroscope.ProfileType{
				pyroscope.ProfileCPU,
				pyroscope.ProfileAllocObjects,
				pyroscope.ProfileAllocSpace,
				pyroscope.ProfileInuseObjects,
				pyroscope.ProfileInuseSpace,
			},
		})
		if err != nil {
			return err
		}
		defer func() {
			_ = profiler.Stop()
		}()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := obs.NewMetrics()

	var recorder journal.Recorder
	if loaded.Journaled {
		store, err := journal.Open(loaded.Journal, metrics)
		if err != nil {
			return err
		}
		go store.Run(ctx)
		defer func() {
			_ = store.Close()
		}()
		recorder = store
	}

	broker, err := kafka.New(kafka.Config{
		Brokers: loaded.Kafka.Brokers,
		GroupID: loaded.Kafka.GroupID,
	})
	if err != nil {
		return err
	}
	defer func() {
		_ = broker.Close()
	}()

	srv, err := server.New(broker, loaded.Server, server.Option{
		Metrics: metrics,
		Journal: recorder,
	})
	if err != nil {
		return err
	}
	for _, p := range loaded.Providers {
		factory, err := buildFactory(p)
		if err != nil {
			return err
		}
		srv.RegisterProvider(p.Name, factory)
	}

	logs.Infof("oes: starting, %d providers, brokers=%v", len(loaded.Providers), loaded.Kafka.Brokers)
	return srv.Run(ctx)
}

func buildFactory(p ops.ProviderConfig) (provider.Factory, error) {
	switch p.Driver {
	case "sim":
		var cfg sim.Config
		if len(p.Settings) > 0 {
			if err := json.Unmarshal(p.Settings, &cfg); err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.Name, err)
			}
		}
		return sim.Factory(cfg), nil
	default:
		return nil, fmt.Errorf("provider %s: unknown driver %q", p.Name, p.Driver)
	}
}

type emptyLogger struct{}

func (emptyLogger) Infof(_ string, _ ...interface{})  {}
func (emptyLogger) Debugf(_ string, _ ...interface{}) {}
func (emptyLogger) Errorf(_ string, _ ...interface{}) {}
