package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/thisisjab/myn/config"
	"github.com/thisisjab/myn/engine"
	"github.com/thisisjab/myn/source"
	"gopkg.in/yaml.v3"
)

const defaultConfigPath = "./.myn.yaml"

func main() {
	os.Exit(run())
}

func run() int {
	// Create a context that can be cancelled
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: myn [flags] file.myn...\n")
		flag.PrintDefaults()
	}

	cfgPath := flag.String("config", defaultConfigPath, "path to config file")
	strict := flag.Bool("strict", false, "validate function parameter lists and call arguments")
	format := flag.String("format", "", "report format: text or json (overrides the config file)")
	watch := flag.Bool("watch", false, "check files again every time they are written")
	flag.Parse()

	cfg, err := readConfig(*cfgPath, *cfgPath != defaultConfigPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	if *strict {
		cfg.Strict = true
	}

	if *format != "" {
		cfg.Report = config.ReportConfig{Type: *format}
	}

	var paths, rejected []string
	for _, arg := range flag.Args() {
		if source.HasValidExtension(arg) {
			paths = append(paths, arg)
		} else {
			rejected = append(rejected, arg)
		}
	}

	// The default keywords file is looked up next to the first source file.
	sourceDir := ""
	if len(paths) > 0 {
		sourceDir = filepath.Dir(paths[0])
	}

	engineCfg, logger, err := cfg.Parse(ctx, sourceDir, os.Stdout)
	if err != nil {
		if logger != nil {
			logger.Error("cannot parse config file", "error", err)
			return 1
		}
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer closeSink(engineCfg.Sink)

	for _, arg := range rejected {
		logger.Error("skipping file with unrecognized extension, expected .myn or .MYN", "file", arg)
	}

	if len(paths) == 0 {
		logger.Error("no source files to check")
		return 1
	}

	files, err := source.NewFileSource(logger, source.FileSourceConfig{Paths: paths, Watch: *watch})
	if err != nil {
		logger.Error("cannot create file source", "error", err)
		return 1
	}
	engineCfg.Sources = []engine.Source{files}

	// Setup signal handling to catch Ctrl+C (SIGINT) or Terminate (SIGTERM)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logger.Info("received signal. shutting down.", "signal", sig)
		cancel()
	}()

	eng, err := engine.New(*engineCfg, logger)
	if err != nil {
		logger.Error("engine error.", "error", err)
		return 1
	}

	report, err := eng.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("engine error.", "error", err)
		return 1
	}

	logger.Debug("check finished", "checked", report.Checked, "sources", report.Sources, "failed", report.Failed, "rejected", len(rejected))

	if report.Failed > 0 || len(rejected) > 0 || report.Sources < len(paths) {
		return 1
	}

	return 0
}

// readConfig reads the YAML config file over the defaults. A missing file is only an error when
// it was asked for explicitly.
func readConfig(path string, required bool) (config.Config, error) {
	cfg := config.Default()

	fileContent, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("cannot read config file content: %w", err)
	}

	if err := yaml.Unmarshal(fileContent, &cfg); err != nil {
		return cfg, fmt.Errorf("cannot parse config file: %w", err)
	}

	return cfg, nil
}

func closeSink(sink engine.Sink) {
	if c, ok := sink.(io.Closer); ok {
		c.Close() //nolint:errcheck
	}
}
