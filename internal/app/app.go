// Package app wires configuration, logging, metrics, the annotation engine
// and the renderers into the typographic command.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.uber.org/atomic"
	"go.uber.org/zap"
	"golang.org/x/term"
	"golang.org/x/time/rate"

	"github.com/dshills/typographic/internal/config"
	"github.com/dshills/typographic/internal/engine"
	"github.com/dshills/typographic/internal/engine/document"
	"github.com/dshills/typographic/internal/logger"
	"github.com/dshills/typographic/internal/metrics"
	"github.com/dshills/typographic/internal/render"
	"github.com/dshills/typographic/internal/watch"
)

// ReloadInterval is the minimum time between two document reloads in watch
// mode.
const ReloadInterval = 50 * time.Millisecond

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options configures the application.
type Options struct {
	// ConfigPath is the path to the configuration file. Empty uses the
	// built-in defaults.
	ConfigPath string

	// Files are the documents to annotate. StdinName reads standard input.
	// No files also reads standard input.
	Files []string

	// Format is one of Formats. Empty means FormatText.
	Format string

	// Color is ColorAuto, ColorAlways or ColorNever. Empty means ColorAuto.
	Color string

	// LogLevel overrides the configured default log level.
	LogLevel string

	// Watch re-annotates the files whenever they change.
	Watch bool

	// Metrics enables the prometheus collectors regardless of the config.
	Metrics bool

	// Stdin, Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer

	// Lookup reads environment overrides. Nil means os.LookupEnv.
	Lookup func(string) (string, bool)

	// NewScreen creates the screen of FormatScreen. Nil means tcell.NewScreen.
	NewScreen func() (tcell.Screen, error)
}

// Application owns every component of a typographic run.
type Application struct {
	opts Options

	cfg       *config.Config
	logs      *logger.Registry
	log       *zap.Logger
	registry  *prometheus.Registry
	metrics   *metrics.Metrics
	engine    *engine.Engine
	theme     *render.Theme
	documents *DocumentManager
	writer    Writer

	running atomic.Bool
	closed  atomic.Bool
}

// New loads the configuration, starts every component and opens the
// documents named in opts.
func New(opts Options) (*Application, error) {
	if opts.Format == "" {
		opts.Format = FormatText
	}
	if opts.Color == "" {
		opts.Color = ColorAuto
	}
	if opts.Stdin == nil {
		opts.Stdin = os.Stdin
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Lookup == nil {
		opts.Lookup = os.LookupEnv
	}
	if opts.NewScreen == nil {
		opts.NewScreen = tcell.NewScreen
	}
	if !slices.Contains(Formats, opts.Format) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
	switch opts.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return nil, fmt.Errorf("unknown color mode %q", opts.Color)
	}

	app := &Application{opts: opts}
	if err := app.bootstrap(); err != nil {
		app.Shutdown()
		return nil, err
	}
	return app, nil
}

// bootstrap initializes all components in dependency order.
func (app *Application) bootstrap() error {
	// 1. Config
	cfg, err := config.NewLoader().Load(app.opts.ConfigPath)
	if err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if err := cfg.ApplyEnv(app.opts.Lookup); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	if app.opts.LogLevel != "" {
		cfg.Log.DefaultLevel = app.opts.LogLevel
	}
	if app.opts.Metrics {
		cfg.Metrics.Enabled = true
	}
	if err := cfg.Validate(); err != nil {
		return &InitError{Component: "config", Err: err}
	}
	app.cfg = cfg

	// 2. Logging. The screen owns the terminal, so it only logs to
	// explicitly configured outputs.
	if app.opts.Format == FormatScreen && len(cfg.Log.OutputPaths) == 0 {
		app.logs = logger.Nop()
	} else if app.logs, err = logger.New(cfg.Log); err != nil {
		return &InitError{Component: "logger", Err: err}
	}
	app.log = app.logs.Named("app")

	// 3. Metrics
	if cfg.Metrics.Enabled {
		app.registry = prometheus.NewRegistry()
		if app.metrics, err = metrics.New(app.registry, cfg.Metrics.Namespace); err != nil {
			return &InitError{Component: "metrics", Err: err}
		}
	}

	// 4. Engine
	scanCfg, err := cfg.ScanConfig()
	if err != nil {
		return &InitError{Component: "engine", Err: err}
	}
	engineOpts := []engine.Option{
		engine.WithConfig(scanCfg),
		engine.WithWindow(cfg.Window),
		engine.WithLogger(app.logs.Named("engine")),
	}
	if app.metrics != nil {
		engineOpts = append(engineOpts, engine.WithMetrics(app.metrics))
	}
	app.engine = engine.New(engineOpts...)

	// 5. Renderer
	if app.theme, err = render.NewTheme(cfg.Render.Styles); err != nil {
		return &InitError{Component: "renderer", Err: err}
	}
	app.writer = app.newWriter()

	// 6. Documents
	app.documents = NewDocumentManager(app.engine,
		document.ParseOptions{Atoms: cfg.Atoms},
		app.logs.Named("session"))
	files := app.opts.Files
	if len(files) == 0 {
		files = []string{StdinName}
	}
	for _, f := range files {
		if f == StdinName {
			_, err = app.documents.OpenReader(app.opts.Stdin)
		} else {
			_, err = app.documents.Open(f)
		}
		if err != nil {
			return &InitError{Component: "document", Err: err}
		}
	}

	app.log.Debug("application started",
		zap.String("format", app.opts.Format),
		zap.Int("documents", app.documents.Count()),
		zap.Bool("metrics", cfg.Metrics.Enabled))
	return nil
}

func (app *Application) newWriter() Writer {
	switch app.opts.Format {
	case FormatJSON:
		return JSONWriter{}
	case FormatHTML:
		return HTMLWriter{ClassPrefix: app.cfg.Render.ClassPrefix}
	case FormatTree:
		return TreeWriter{}
	default:
		return TextWriter{
			Theme:  app.theme,
			Color:  app.useColor(),
			Header: len(app.opts.Files) > 1,
		}
	}
}

func (app *Application) useColor() bool {
	switch app.opts.Color {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	f, ok := app.opts.Stdout.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Config returns the effective configuration.
func (app *Application) Config() *config.Config {
	return app.cfg
}

// Documents returns the document manager.
func (app *Application) Documents() *DocumentManager {
	return app.documents
}

// IsRunning returns true while Run is executing.
func (app *Application) IsRunning() bool {
	return app.running.Load()
}

// Run renders every document. In watch mode it keeps re-rendering changed
// files until ctx is done; with FormatScreen it runs the viewer.
func (app *Application) Run(ctx context.Context) error {
	if !app.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer app.running.Store(false)

	var w *watch.Watcher
	if app.opts.Watch {
		var err error
		if w, err = app.startWatcher(); err != nil {
			return err
		}
		defer w.Close()
	}

	if app.opts.Format == FormatScreen {
		return app.runScreen(ctx, w)
	}

	for _, doc := range app.documents.All() {
		if err := app.writer.Write(app.opts.Stdout, doc, doc.Snapshot()); err != nil {
			return &FileError{Op: "render", Path: doc.Path, Err: err}
		}
	}
	if w == nil {
		return nil
	}
	return app.watchLoop(ctx, w, func(doc *Document) error {
		return app.writer.Write(app.opts.Stdout, doc, doc.Snapshot())
	})
}

func (app *Application) startWatcher() (*watch.Watcher, error) {
	w, err := watch.New(watch.WithLogger(app.logs.Named("watch")))
	if err != nil {
		return nil, &InitError{Component: "watcher", Err: err}
	}
	watched := 0
	for _, doc := range app.documents.All() {
		if !doc.Watchable() {
			app.log.Warn("not watching", zap.String("path", doc.Path))
			continue
		}
		if err := w.Add(doc.Path); err != nil {
			w.Close()
			return nil, &InitError{Component: "watcher", Err: err}
		}
		watched++
	}
	if watched == 0 {
		w.Close()
		return nil, &InitError{Component: "watcher", Err: ErrNotWatchable}
	}
	return w, nil
}

// watchLoop reloads changed documents and calls changed after each
// successful reload. Reload failures are logged and the old version stays.
func (app *Application) watchLoop(ctx context.Context, w *watch.Watcher, changed func(*Document) error) error {
	limiter := rate.NewLimiter(rate.Every(ReloadInterval), 1)
	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-w.Errors():
			if !ok {
				return nil
			}
			app.log.Warn("watch error", zap.Error(err))
		case ev, ok := <-w.Events():
			if !ok {
				return nil
			}
			if ev.Op.Has(watch.OpRemove) || ev.Op.Has(watch.OpRename) {
				app.log.Warn("document file went away", zap.String("path", ev.Path), zap.Stringer("op", ev.Op))
				continue
			}
			doc, ok := app.documents.Get(ev.Path)
			if !ok {
				continue
			}
			if err := limiter.Wait(ctx); err != nil {
				return nil
			}
			snap, err := app.documents.Reload(doc.Path)
			if err != nil {
				app.log.Error("reload failed", zap.String("path", doc.Path), zap.Error(err))
				continue
			}
			app.log.Info("document reloaded",
				zap.String("path", doc.Path),
				zap.Uint64("version", snap.Version),
				zap.Int("annotations", snap.Set.Len()))
			if changed != nil {
				if err := changed(doc); err != nil {
					return &FileError{Op: "render", Path: doc.Path, Err: err}
				}
			}
		}
	}
}

func (app *Application) runScreen(ctx context.Context, w *watch.Watcher) error {
	screen, err := app.opts.NewScreen()
	if err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	if err := screen.Init(); err != nil {
		return &InitError{Component: "screen", Err: err}
	}
	defer screen.Fini()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	if w != nil {
		go func() {
			if err := app.watchLoop(ctx, w, nil); err != nil {
				app.log.Error("watch loop stopped", zap.Error(err))
			}
		}()
	}
	return NewViewer(screen, app.theme, app.documents.All(), app.logs.Named("viewer")).Run(ctx)
}

// WriteMetrics writes the collected metrics in the prometheus text format.
// It writes nothing when metrics are disabled.
func (app *Application) WriteMetrics(w io.Writer) error {
	if app.registry == nil {
		return nil
	}
	families, err := app.registry.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown closes every session and flushes the logs. It is safe to call
// more than once.
func (app *Application) Shutdown() {
	if !app.closed.CompareAndSwap(false, true) {
		return
	}
	if app.documents != nil {
		if err := app.documents.CloseAll(); err != nil && app.log != nil {
			app.log.Warn("closing documents", zap.Error(err))
		}
	}
	if app.logs != nil {
		// Sync returns EINVAL for terminal outputs.
		_ = app.logs.Sync()
	}
}

// IsInitError reports whether err came from starting a component.
func IsInitError(err error) bool {
	var ie *InitError
	return errors.As(err, &ie)
}
