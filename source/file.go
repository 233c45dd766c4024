package source

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/thisisjab/myn/entity"
)

type FileSourceConfig struct {
	Name  string   `yaml:"-"`
	Paths []string `yaml:"paths"`
	Watch bool     `yaml:"watch"`
}

// FileSource reads myn source files. In watch mode it keeps running and provides a file again
// every time it is written.
type FileSource struct {
	cfg    FileSourceConfig
	logger *slog.Logger
}

// HasValidExtension reports whether path names a myn source file.
func HasValidExtension(path string) bool {
	ext := filepath.Ext(path)
	return ext == ".myn" || ext == ".MYN"
}

// ReadFile reads a whole source file into a unit.
func ReadFile(path string) (entity.SourceUnit, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return entity.SourceUnit{}, fmt.Errorf("cannot read source file: %w", err)
	}

	return entity.SourceUnit{Name: path, Content: string(content)}, nil
}

// NewFileSource creates a new FileSource instance.
func NewFileSource(logger *slog.Logger, cfg FileSourceConfig) (*FileSource, error) {
	if len(cfg.Paths) == 0 {
		return nil, errors.New("no source files given")
	}

	for _, p := range cfg.Paths {
		if !HasValidExtension(p) {
			return nil, fmt.Errorf("%s has an unrecognized file extension, expected .myn or .MYN", p)
		}
	}

	if cfg.Name == "" {
		cfg.Name = "files"
	}

	return &FileSource{cfg: cfg, logger: logger}, nil
}

func (f *FileSource) Name() string {
	return f.cfg.Name
}

// Provide sends every readable file once. Unreadable files do not stop the others from being
// sent; their errors are returned together at the end.
func (f *FileSource) Provide(ctx context.Context, units chan<- entity.SourceUnit) error {
	last := make(map[string]string, len(f.cfg.Paths))

	var errs []error
	for _, p := range f.cfg.Paths {
		unit, err := ReadFile(p)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", p, err))
			continue
		}
		last[p] = unit.Content

		if err := send(ctx, units, unit); err != nil {
			return err
		}
	}

	if err := errors.Join(errs...); err != nil || !f.cfg.Watch {
		return err
	}

	return f.watch(ctx, units, last)
}

// watch follows the parent directories, not the files: editors that save through a rename
// replace the inode and a watch on the file itself stops firing.
func (f *FileSource) watch(ctx context.Context, units chan<- entity.SourceUnit, last map[string]string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cannot create watcher: %w", err)
	}
	defer watcher.Close()

	tracked := make(map[string]string, len(f.cfg.Paths))

	for _, p := range f.cfg.Paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("cannot resolve %s: %w", p, err)
		}
		tracked[abs] = p

		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("cannot add directory to watcher: %w", err)
		}
	}

	f.logger.Info("watching source files", "count", len(tracked))

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				f.logger.Debug("fsnotify watcher channel is closed.")
				return nil
			}

			name, isTracked := tracked[event.Name]
			if !isTracked {
				if abs, err := filepath.Abs(event.Name); err == nil {
					name, isTracked = tracked[abs]
				}
			}
			if !isTracked || !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			unit, err := ReadFile(name)
			if err != nil {
				// The file may be gone for a moment while an editor swaps it in.
				f.logger.Debug("cannot read changed file", "file", name, "error", err)
				continue
			}

			// Editors often emit several write events for one save.
			if last[name] == unit.Content {
				continue
			}
			last[name] = unit.Content

			f.logger.Debug("source file changed", "file", name, "event", event.Op.String())

			if err := send(ctx, units, unit); err != nil {
				return err
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		}
	}
}

func send(ctx context.Context, units chan<- entity.SourceUnit, unit entity.SourceUnit) error {
	select {
	case units <- unit:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
