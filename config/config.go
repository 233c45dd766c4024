package config

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/thisisjab/myn/api"
	"github.com/thisisjab/myn/engine"
	"github.com/thisisjab/myn/report"
	"github.com/thisisjab/myn/rules"
	"github.com/thisisjab/myn/storage"
	"go.yaml.in/yaml/v3"
)

type Config struct {
	Logger       LoggerConfig      `yaml:"logger"`
	KeywordsFile string            `yaml:"keywords_file"`
	Keywords     map[string]string `yaml:"keywords"`
	Strict       bool              `yaml:"strict"`
	Workers      uint              `yaml:"workers"`
	Rules        []RuleConfig      `yaml:"rules"`
	Report       ReportConfig      `yaml:"report"`
	Server       api.Config        `yaml:"server"`
}

type LoggerConfig struct {
	Level  string `yaml:"level"`
	Type   string `yaml:"type"`
	Output string `yaml:"output"`
}

type RuleConfig struct {
	Name   string `yaml:"name"`
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

type ReportConfig struct {
	Type   string `yaml:"type"`
	Config any    `yaml:"config"`
}

// Default is the configuration used when no config file is given.
func Default() Config {
	return Config{
		Logger:  LoggerConfig{Level: "info", Type: "colored-text", Output: "stderr"},
		Workers: 4,
		Report:  ReportConfig{Type: "text"},
		Server:  api.Config{Addr: "localhost:8000"},
	}
}

// Parse builds the engine configuration. sourceDir is where the default keywords file is looked
// up; out is where text and json reports go. The engine sources are left to the caller.
func (cfg Config) Parse(ctx context.Context, sourceDir string, out io.Writer) (*engine.Config, *slog.Logger, error) {
	logger, err := parseLoggerConfig(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot create logger: %w", err)
	}

	table, err := BuildTable(cfg.KeywordsFile, sourceDir, cfg.Keywords)
	if err != nil {
		return nil, logger, fmt.Errorf("cannot load keywords: %w", err)
	}

	rs := make([]engine.Rule, len(cfg.Rules))
	for i, rc := range cfg.Rules {
		r, err := parseRuleConfig(rc)
		if err != nil {
			return nil, logger, fmt.Errorf("cannot create rule `%s`: %w", rc.Name, err)
		}
		rs[i] = r
	}

	sink, err := parseReportConfig(ctx, cfg.Report, out)
	if err != nil {
		return nil, logger, fmt.Errorf("cannot create report: %w", err)
	}

	workers := cfg.Workers
	if workers == 0 {
		workers = 1
	}

	return &engine.Config{
		Table:   table,
		Rules:   rs,
		Sink:    sink,
		Strict:  cfg.Strict,
		Workers: workers,
	}, logger, nil
}

func parseLoggerConfig(cfg LoggerConfig) (*slog.Logger, error) {
	var handler slog.Handler

	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "info", "":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, fmt.Errorf("invalid log level: %s", cfg.Level)
	}

	var w io.Writer
	switch cfg.Output {
	case "stderr", "":
		w = os.Stderr
	case "stdout":
		w = os.Stdout
	default:
		return nil, fmt.Errorf("invalid log output: %s", cfg.Output)
	}

	switch cfg.Type {
	case "json":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	case "text":
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	case "colored-text", "":
		handler = tint.NewHandler(w, &tint.Options{Level: level, TimeFormat: time.Kitchen})
	default:
		return nil, fmt.Errorf("invalid log type: %s", cfg.Type)
	}

	return slog.New(handler), nil
}

func parseRuleConfig(cfg RuleConfig) (engine.Rule, error) {
	switch cfg.Type {
	case "lua":
		var luaConfig rules.LuaRuleConfig
		if err := remarshal(cfg.Config, &luaConfig); err != nil {
			return nil, fmt.Errorf("cannot parse lua rule config: %w", err)
		}

		luaConfig.Name = cfg.Name

		r, err := rules.NewLuaRule(luaConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create lua rule: %w", err)
		}

		return r, nil
	default:
		return nil, fmt.Errorf("invalid rule type: %s", cfg.Type)
	}
}

func parseReportConfig(ctx context.Context, cfg ReportConfig, out io.Writer) (engine.Sink, error) {
	switch cfg.Type {
	case "text", "":
		return report.NewTextSink(out), nil
	case "json":
		return report.NewJSONSink(out), nil
	case "clickhouse":
		var clickHouseConfig storage.ClickHouseStorageConfig

		if err := remarshal(cfg.Config, &clickHouseConfig); err != nil {
			return nil, fmt.Errorf("cannot parse clickhouse storage config: %w", err)
		}

		s, err := storage.NewClickHouseStorage(clickHouseConfig)
		if err != nil {
			return nil, fmt.Errorf("cannot create clickhouse storage: %w", err)
		}

		if err := s.Connect(ctx); err != nil {
			return nil, fmt.Errorf("cannot connect clickhouse storage: %w", err)
		}

		return s, nil
	default:
		return nil, fmt.Errorf("invalid report type: %s", cfg.Type)
	}
}

// remarshal takes an input value, marshals it to YAML, and then unmarshals it into a new value of the same type.
// This is useful for converting generic interfaces (like map[string]any) into concrete struct types.
// The output parameter must be a pointer to the target type.
func remarshal(input any, output any) error {
	// Marshal the input to YAML
	yamlBytes, err := yaml.Marshal(input)
	if err != nil {
		return fmt.Errorf("failed to marshal to YAML: %w", err)
	}

	// Unmarshal the YAML into the output
	if err := yaml.Unmarshal(yamlBytes, output); err != nil {
		return fmt.Errorf("failed to unmarshal from YAML: %w", err)
	}

	return nil
}
