package logger

import (
	"fmt"
	"strings"
	"sync"

	"github.com/gobwas/glob"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats.
const (
	FormatConsole = "console"
	FormatPlain   = "plain"
	FormatJSON    = "json"
)

// NamedLevel sets the level of the loggers whose name matches Name. Name may
// be a glob pattern such as "engine*".
type NamedLevel struct {
	Name  string `toml:"name" yaml:"name"`
	Level string `toml:"level" yaml:"level"`
}

// Config configures logging.
type Config struct {
	Production   bool         `toml:"production" yaml:"production"`
	DefaultLevel string       `toml:"default_level" yaml:"defaultLevel"`
	Levels       []NamedLevel `toml:"levels" yaml:"levels"` // first match wins
	Format       string       `toml:"format" yaml:"format"`
	OutputPaths  []string     `toml:"output_paths" yaml:"outputPaths"`
}

// DefaultConfig returns the default configuration: warnings and above in
// colored console format on stderr.
func DefaultConfig() Config {
	return Config{
		DefaultLevel: "warn",
		Format:       FormatConsole,
	}
}

// Validate checks levels and format.
func (c Config) Validate() error {
	if c.DefaultLevel != "" {
		if _, err := zapcore.ParseLevel(c.DefaultLevel); err != nil {
			return fmt.Errorf("default level: %w", err)
		}
	}
	for _, nl := range c.Levels {
		if _, err := zapcore.ParseLevel(nl.Level); err != nil {
			return fmt.Errorf("level for %q: %w", nl.Name, err)
		}
		if _, err := glob.Compile(nl.Name); err != nil {
			return fmt.Errorf("level pattern %q: %w", nl.Name, err)
		}
	}
	switch c.Format {
	case "", FormatConsole, FormatPlain, FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Format)
	}
	return nil
}

type namedLevel struct {
	name  string
	glob  glob.Glob
	level zapcore.Level
}

// Registry hands out named loggers that share one core.
type Registry struct {
	mu           sync.Mutex
	base         *zap.Logger
	defaultLevel zapcore.Level
	levels       []namedLevel
	loggers      map[string]*zap.Logger
}

// New builds a registry from a configuration.
func New(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var conf zap.Config
	if cfg.Production {
		conf = zap.NewProductionConfig()
	} else {
		conf = zap.NewDevelopmentConfig()
	}
	enc := conf.EncoderConfig
	switch cfg.Format {
	case FormatPlain:
		enc.EncodeLevel = zapcore.CapitalLevelEncoder
		conf.Encoding = "console"
	case FormatJSON:
		enc.MessageKey = "msg"
		enc.TimeKey = "ts"
		enc.LevelKey = "level"
		enc.NameKey = "logger"
		enc.CallerKey = "caller"
		enc.EncodeTime = zapcore.ISO8601TimeEncoder
		conf.Encoding = "json"
	default:
		enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
		conf.Encoding = "console"
	}
	conf.EncoderConfig = enc
	if len(cfg.OutputPaths) > 0 {
		conf.OutputPaths = cfg.OutputPaths
	}

	def := zapcore.InfoLevel
	if cfg.DefaultLevel != "" {
		def, _ = zapcore.ParseLevel(cfg.DefaultLevel)
	}
	levels := compileLevels(cfg.Levels)

	// The core must admit the most verbose named level.
	floor := def
	for _, nl := range levels {
		if nl.level < floor {
			floor = nl.level
		}
	}
	conf.Level = zap.NewAtomicLevelAt(floor)

	base, err := conf.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return newRegistry(base, def, levels), nil
}

// NewWithCore creates a registry on an existing core. It is mostly useful in
// tests together with zap's observer.
func NewWithCore(core zapcore.Core, defaultLevel zapcore.Level, levels []NamedLevel) *Registry {
	return newRegistry(zap.New(core), defaultLevel, compileLevels(levels))
}

// Nop returns a registry whose loggers discard everything.
func Nop() *Registry {
	return newRegistry(zap.NewNop(), zapcore.InfoLevel, nil)
}

func newRegistry(base *zap.Logger, def zapcore.Level, levels []namedLevel) *Registry {
	return &Registry{
		base:         base,
		defaultLevel: def,
		levels:       levels,
		loggers:      make(map[string]*zap.Logger),
	}
}

func compileLevels(nls []NamedLevel) []namedLevel {
	out := make([]namedLevel, 0, len(nls))
	for _, nl := range nls {
		lvl, err := zapcore.ParseLevel(nl.Level)
		if err != nil {
			continue
		}
		g, err := glob.Compile(nl.Name)
		if err != nil {
			continue
		}
		out = append(out, namedLevel{name: nl.Name, glob: g, level: lvl})
	}
	return out
}

// Level returns the level for a logger name: the first exact or glob match,
// otherwise the default level.
func (r *Registry) Level(name string) zapcore.Level {
	for _, nl := range r.levels {
		if nl.name == name || nl.glob.Match(name) {
			return nl.level
		}
	}
	return r.defaultLevel
}

// Named returns the logger for name, creating it on first use.
func (r *Registry) Named(name string) *zap.Logger {
	r.mu.Lock()
	defer r.mu.Unlock()

	if l, ok := r.loggers[name]; ok {
		return l
	}
	l := r.base.Named(name).WithOptions(zap.IncreaseLevel(r.Level(name)))
	r.loggers[name] = l
	return l
}

// Sync flushes buffered log entries.
func (r *Registry) Sync() error {
	return r.base.Sync()
}

// LevelsFromString parses "name1=debug;prefix*=warn;error" into named levels.
// An entry without a name applies to every logger.
func LevelsFromString(s string) ([]NamedLevel, error) {
	var levels []NamedLevel
	for _, kv := range strings.Split(s, ";") {
		kv = strings.TrimSpace(kv)
		if kv == "" {
			continue
		}
		name, level, ok := strings.Cut(kv, "=")
		if !ok {
			name, level = "*", kv
		}
		name, level = strings.TrimSpace(name), strings.TrimSpace(level)
		if _, err := zapcore.ParseLevel(level); err != nil {
			return nil, fmt.Errorf("level %q: %w", kv, err)
		}
		levels = append(levels, NamedLevel{Name: name, Level: level})
	}
	return levels, nil
}
