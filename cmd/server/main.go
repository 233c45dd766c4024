package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/thisisjab/myn/api"
	"github.com/thisisjab/myn/config"
	"github.com/thisisjab/myn/engine"
	"gopkg.in/yaml.v3"
)

func main() {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfgPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "address to listen on (overrides the config file)")
	keywordsDir := flag.String("keywords-dir", "", "directory holding the default keywords file")
	flag.Parse()

	cfg := config.Default()
	if *cfgPath != "" {
		fileContent, err := os.ReadFile(*cfgPath)
		if err != nil {
			panic(fmt.Errorf("cannot read config file content: %w", err))
		}

		if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
			panic(fmt.Errorf("cannot parse config file: %w", err))
		}
	}

	if *addr != "" {
		cfg.Server.Addr = *addr
	}

	// Text and json reports are dropped, results are answered over HTTP. A clickhouse report
	// still archives every check.
	engineCfg, logger, err := cfg.Parse(ctx, *keywordsDir, io.Discard)
	if err != nil {
		if logger != nil {
			logger.Error("cannot parse config file", "error", err)
			os.Exit(1)
		}
		panic(fmt.Errorf("cannot parse config file: %w", err))
	}

	// Panic recovery
	defer func() {
		if r := recover(); r != nil {
			logger.Error("server panic", "error", r)
		}
	}()

	// Setup signal handling to catch Ctrl+C (SIGINT) or Terminate (SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Run the server in a separate goroutine so we can wait for signals
	go func() {
		sig := <-sigChan
		logger.Info("received signal. shutting down.", "signal", sig)
		cancel()
	}()

	eng, err := engine.New(*engineCfg, logger)
	if err != nil {
		logger.Error("engine error.", "error", err)
		os.Exit(1)
	}

	defer func() {
		if c, ok := engineCfg.Sink.(io.Closer); ok {
			c.Close() //nolint:errcheck
		}
	}()

	server, err := api.NewServer(cfg.Server, eng, logger)
	if err != nil {
		logger.Error("server error.", "error", err)
		os.Exit(1)
	}

	if err := server.Serve(ctx); err != nil {
		logger.Error("server error.", "error", err)
		cancel()
		os.Exit(1)
	}

	logger.Info("server stopped.")
}
