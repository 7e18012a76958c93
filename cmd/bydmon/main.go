package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"codeberg.org/mutker/bydmon/internal/battery"
	"codeberg.org/mutker/bydmon/internal/config"
	"codeberg.org/mutker/bydmon/internal/device"
	"codeberg.org/mutker/bydmon/internal/exporter"
	"codeberg.org/mutker/bydmon/internal/history"
	"codeberg.org/mutker/bydmon/internal/logger"
	"codeberg.org/mutker/bydmon/internal/sensor"
	"github.com/prometheus/client_golang/prometheus"
)

var cfg *config.Config

func init() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Printf("failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(cfg.Debug, cfg.Verbose, logger.IsService())
	logger.Debug().Msg("Config loaded")
}

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleSignals(cancel)

	client, err := newClient()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize device client")
	}
	defer client.Close()

	repo := newHistory()
	defer repo.Close()

	cache := battery.NewCache()

	poller, err := battery.NewPoller(client, cache,
		time.Duration(cfg.ScanInterval)*time.Second,
		time.Duration(cfg.Timeout)*time.Second,
	)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize poller")
	}

	poller.OnCommit(func(snapshot *battery.Snapshot) {
		if err := repo.Store(ctx, snapshot); err != nil {
			logger.Error().Err(err).Msg("failed to store snapshot")
		}
	})

	registry := prometheus.NewRegistry()
	registry.MustRegister(exporter.New(cache, sensorOptions()))
	registry.MustRegister(battery.Collectors()...)

	server, err := exporter.NewServer(cfg.Listen, registry)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize metrics endpoint")
	}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		poller.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			logger.Error().Err(err).Msg("metrics endpoint failed")
			cancel()
		}
	}()

	wg.Wait()
	logger.Info().Msg("Exiting...")
}

func newClient() (device.Client, error) {
	if cfg.Simulate {
		logger.Info().Msg("Simulation mode activated. No device will be contacted.")
		return device.NewSimulator(time.Now().UnixNano()), nil
	}

	profile := device.DefaultProfile()
	if cfg.Profile != "" {
		var err error
		profile, err = device.LoadProfile(cfg.Profile)
		if err != nil {
			return nil, err
		}
		logger.Debug().Str("profile", cfg.Profile).Msg("Register profile loaded")
	}

	return device.NewModbusClient(cfg.Address, byte(cfg.SlaveID),
		time.Duration(cfg.Timeout)*time.Second, profile)
}

func newHistory() history.Repository {
	if !cfg.History {
		return history.Noop{}
	}

	repo, err := history.NewRepository(cfg.Database)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize history")
	}

	return repo
}

func sensorOptions() sensor.Options {
	return sensor.Options{
		ShowCellVoltage:     cfg.ShowCellVoltage,
		ShowCellTemperature: cfg.ShowCellTemperature,
		ShowTowers:          cfg.ShowTowers,
		ShowModules:         cfg.ShowModules,
		ShowResetCounter:    cfg.ShowResetCounter,
		AggregateModules:    cfg.AggregateModules,
	}
}

func handleSignals(cancel context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	logger.Info().Msg("Received termination signal.")
	cancel()
}
