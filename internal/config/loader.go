package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables read by ApplyEnv.
const EnvPrefix = "TYPOGRAPHIC_"

// FileSystem is an abstraction for file system operations.
// This allows for easy testing with in-memory file systems.
type FileSystem interface {
	// ReadFile reads the entire file at path.
	ReadFile(path string) ([]byte, error)
}

// OSFS implements FileSystem using the real OS file system.
type OSFS struct{}

// ReadFile reads the entire file at path.
func (OSFS) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Loader reads configuration files.
type Loader struct {
	fs FileSystem
}

// NewLoader creates a loader reading from the OS file system.
func NewLoader() *Loader {
	return &Loader{fs: OSFS{}}
}

// NewLoaderWithFS creates a loader with a custom file system.
func NewLoaderWithFS(fsys FileSystem) *Loader {
	return &Loader{fs: fsys}
}

// Load reads the file at path on top of the defaults and validates the
// result. The format is chosen by extension: .toml, .yaml or .yml.
// An empty path returns the defaults.
func (l *Loader) Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := l.fs.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(path, format, data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Format is a configuration file format.
type Format string

// Supported formats.
const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatOf returns the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownFormat, path)
	}
}

// Parse decodes data in the given format. Sections missing from data keep
// their default values. Parse does not validate the result.
func Parse(source string, format Format, data []byte) (*Config, error) {
	var file Config
	var err error
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		err = dec.Decode(&file)
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err = dec.Decode(&file); errors.Is(err, io.EOF) {
			err = nil
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
	if err != nil {
		return nil, newParseError(source, err)
	}
	return merge(Default(), &file), nil
}

// merge overlays the sections set in file onto base.
func merge(base, file *Config) *Config {
	if file.Characters != nil {
		base.Characters = file.Characters
	}
	if file.Nodes != nil {
		base.Nodes = file.Nodes
	}
	if file.Window != 0 {
		base.Window = file.Window
	}
	if file.Atoms != nil {
		base.Atoms = file.Atoms
	}

	if file.Log.DefaultLevel != "" {
		base.Log.DefaultLevel = file.Log.DefaultLevel
	}
	if file.Log.Format != "" {
		base.Log.Format = file.Log.Format
	}
	if file.Log.Levels != nil {
		base.Log.Levels = file.Log.Levels
	}
	if file.Log.OutputPaths != nil {
		base.Log.OutputPaths = file.Log.OutputPaths
	}
	base.Log.Production = base.Log.Production || file.Log.Production

	if file.Render.ClassPrefix != "" {
		base.Render.ClassPrefix = file.Render.ClassPrefix
	}
	if file.Render.Styles != nil {
		base.Render.Styles = file.Render.Styles
	}

	base.Metrics.Enabled = base.Metrics.Enabled || file.Metrics.Enabled
	if file.Metrics.Namespace != "" {
		base.Metrics.Namespace = file.Metrics.Namespace
	}
	return base
}

// ApplyEnv overrides settings from environment variables:
// TYPOGRAPHIC_WINDOW, TYPOGRAPHIC_LOG_LEVEL, TYPOGRAPHIC_LOG_FORMAT and
// TYPOGRAPHIC_METRICS. lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvPrefix + "WINDOW"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sWINDOW: %w", EnvPrefix, err)
		}
		c.Window = n
	}
	if v, ok := lookup(EnvPrefix + "LOG_LEVEL"); ok {
		c.Log.DefaultLevel = v
	}
	if v, ok := lookup(EnvPrefix + "LOG_FORMAT"); ok {
		c.Log.Format = v
	}
	if v, ok := lookup(EnvPrefix + "METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%sMETRICS: %w", EnvPrefix, err)
		}
		c.Metrics.Enabled = b
	}
	return nil
}
