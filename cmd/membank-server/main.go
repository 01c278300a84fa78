package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/kodegraph/membank/internal/config"
	"github.com/kodegraph/membank/internal/dispatch"
	"github.com/kodegraph/membank/internal/facade"
	"github.com/kodegraph/membank/internal/logging"
	"github.com/kodegraph/membank/internal/registry"
	"github.com/kodegraph/membank/internal/transport/httpsse"
	"github.com/kodegraph/membank/internal/transport/stdio"
)

func main() {
	var (
		cfgFile     string
		mode        string
		debug       bool
	)
	flag.StringVar(&cfgFile, "config", "", "config file (default: ./membank.yaml or ~/.membank/membank.yaml)")
	flag.StringVar(&mode, "transport", "stdio", "stdio or http")
	flag.BoolVar(&debug, "debug", false, "enable verbose logging")
	flag.Parse()

	if err := logging.Initialize(logging.DefaultConfig(debug)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: failed to initialize logging: %v\n", err)
	}

	cfg, err := config.Load(cfgFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logging.Info("shutting down")
		cancel()
	}()

	reg := registry.New(cfg)
	defer reg.CloseAll(context.Background())

	f := facade.New(reg)
	d := dispatch.New(f)

	switch mode {
	case "stdio":
		logging.Info("membank server started", "transport", "stdio")
		t := stdio.New(os.Stdin, os.Stdout, d)
		if err := t.Run(ctx); err != nil {
			log.Fatalf("transport error: %v", err)
		}
	case "http":
		addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.HTTPStreamPort)
		logging.Info("membank server started", "transport", "http", "addr", addr)
		t := httpsse.New(d)
		if err := t.ListenAndServe(ctx, addr); err != nil {
			log.Fatalf("transport error: %v", err)
		}
	default:
		log.Fatalf("unknown transport %q, want stdio or http", mode)
	}
}
