package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/leandrodaf/midibridge/internal/config"
	"github.com/leandrodaf/midibridge/internal/logger"
	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/leandrodaf/midibridge/sdk/midi"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "YAML configuration file")
	list := flag.Bool("list", false, "Print the valid device roster as JSON and exit")
	flag.Parse()

	log := logger.NewZapLogger()

	opts := []contracts.Option{
		contracts.WithLogger(log),
		contracts.WithEventSink(midi.NewJSONSink(os.Stdout)),
	}
	if *configPath != "" {
		cfg, err := config.Load(*configPath)
		if err != nil {
			log.Error("Failed to load configuration", log.Field().Error("error", err))
			return 2
		}
		opts = append(opts, cfg.Options()...)
	}

	bridge, err := midi.NewBridge(opts...)
	if err != nil {
		log.Error("Failed to initialize MIDI bridge", log.Field().Error("error", err))
		return 1
	}
	defer func() {
		if err := bridge.Stop(); err != nil {
			log.Error("Failed to stop MIDI bridge", log.Field().Error("error", err))
		}
	}()

	roster, err := bridge.ListDevices()
	if err != nil {
		log.Error("Failed to list MIDI devices", log.Field().Error("error", err))
		if *list {
			return 1
		}
	}
	if *list {
		_ = json.NewEncoder(os.Stdout).Encode(roster)
		return 0
	}

	if err := bridge.Start(); err != nil {
		log.Error("Failed to start MIDI bridge", log.Field().Error("error", err))
		return 1
	}

	fmt.Fprintln(os.Stderr, "Forwarding MIDI events as JSON lines... Press Ctrl+C to exit.")
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	return 0
}
