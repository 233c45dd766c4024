package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/thisisjab/myn/entity"
	"github.com/thisisjab/myn/lang/token"
)

type Config struct {
	Sources []Source
	Rules   []Rule
	Sink    Sink
	Strict  bool
	Workers uint

	// Table is the keyword table every check starts from. It is cloned per check and never
	// rebuilt by the engine.
	Table *token.Table
}

// Report summarizes a Run. A source checked more than once (watch mode) counts once in Sources
// and Failed, by its latest result.
type Report struct {
	Checked int
	Sources int
	Failed  int
}

// Engine orchestrates sources, the check pipeline and the result sink.
type Engine struct {
	cfg    Config
	logger *slog.Logger
}

func New(cfg Config, logger *slog.Logger) (*Engine, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Engine{
		cfg:    cfg,
		logger: logger,
	}, nil
}

func (c Config) validate() error {
	if c.Table == nil {
		return errors.New("no keyword table is configured")
	}

	if c.Workers == 0 {
		return errors.New("workers cannot be zero")
	}

	return nil
}

// Table returns the engine's keyword table. Callers must clone it before rebuilding.
func (e *Engine) Table() *token.Table {
	return e.cfg.Table
}

// Run checks every unit the sources provide and stores the results in the sink. It returns when
// all sources are exhausted or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) (Report, error) {
	var report Report

	if len(e.cfg.Sources) == 0 {
		return report, errors.New("no sources are configured")
	}

	if e.cfg.Sink == nil {
		return report, errors.New("no sink is configured")
	}

	units := e.consumeUnits(ctx)
	results := make(chan entity.CheckResult, e.cfg.Workers)

	var wg sync.WaitGroup
	for i := uint(0); i < e.cfg.Workers; i++ {
		wg.Go(func() { e.work(ctx, int(i), units, results) })
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	latest := make(map[string]bool)

	for res := range results {
		report.Checked++
		latest[res.Source] = res.Valid

		if err := e.cfg.Sink.Store(ctx, res); err != nil {
			e.logger.Error("failed to store check result", "source", res.Source, "error", err)
		}
	}

	report.Sources = len(latest)
	for _, valid := range latest {
		if !valid {
			report.Failed++
		}
	}

	return report, ctx.Err()
}

// Store hands results checked outside of Run to the sink, if one is configured.
func (e *Engine) Store(ctx context.Context, results ...entity.CheckResult) error {
	if e.cfg.Sink == nil {
		return nil
	}
	return e.cfg.Sink.Store(ctx, results...)
}

func (e *Engine) work(ctx context.Context, workerID int, units <-chan entity.SourceUnit, results chan<- entity.CheckResult) {
	for {
		select {
		case <-ctx.Done():
			return
		case u, ok := <-units:
			if !ok {
				// The units channel is closed and empty. No more work.
				return
			}

			res := e.Check(u)
			e.logger.Debug("worker checked unit", "worker_id", workerID, "source", u.Name)

			select {
			case results <- res:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (e *Engine) consumeUnits(ctx context.Context) <-chan entity.SourceUnit {
	units := make(chan entity.SourceUnit, e.cfg.Workers)

	var sourceWg sync.WaitGroup

	for _, s := range e.cfg.Sources {
		sourceWg.Add(1)
		go func(src Source) {
			defer sourceWg.Done()

			if err := src.Provide(ctx, units); err != nil && !errors.Is(err, context.Canceled) {
				e.logger.Error("source failed", "name", src.Name(), "error", err)
			}
		}(s)
	}

	go func() {
		sourceWg.Wait()
		close(units)
	}()

	return units
}
