package confloader

import (
	"errors"
	"fmt"
	"strings"

	"github.com/knadh/koanf/maps"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the environment variable prefix. A variable like
// SYNCBOARD_SERVER__HTTP__ADDR maps to the key "server.http.addr".
const DefaultEnvPrefix = "SYNCBOARD_"

// Loader merges configuration from a file, the environment, and
// explicit overrides into one koanf tree.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
}

// Option configures a Loader.
type Option func(*Loader)

// WithEnvPrefix overrides the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) { l.envPrefix = prefix }
}

// WithConfigFile sets the YAML configuration file path. An empty path
// skips the file source entirely.
func WithConfigFile(path string) Option {
	return func(l *Loader) { l.filePath = path }
}

// NewLoader creates a configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads the file and environment sources and unmarshals the
// merged tree into target. The caller seeds target with defaults, so
// keys absent from every source keep their default values.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.loadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}
	if err := l.loadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}
	if err := l.k.Unmarshal("", target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// Reload re-reads every source into a fresh tree and unmarshals into
// target. Used by the file watcher so a partially written file never
// corrupts the live tree.
func (l *Loader) Reload(target any) error {
	fresh := koanf.New(".")
	old := l.k
	l.k = fresh
	if err := l.Load(target); err != nil {
		l.k = old
		return err
	}
	return nil
}

func (l *Loader) loadFile(path string) error {
	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}

func (l *Loader) loadEnv() error {
	// Double underscore separates sections, single underscore stays
	// part of the key: SYNCBOARD_BOARD__MAX_FILE_SIZE maps to
	// board.max_file_size.
	transform := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, "__", ".")
	}
	return l.k.Load(env.Provider(l.envPrefix, ".", transform), nil)
}

// LoadMap merges explicit key/value overrides, typically from CLI
// flags. It has the highest priority, so call it after Load and
// before Unmarshal-consuming code reads the result.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load overrides: %w", err)
	}
	return nil
}

// Unmarshal decodes the current merged tree into target.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns one string value by dotted key.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// All returns the merged tree as a flat map, mainly for debug logging.
func (l *Loader) All() map[string]any {
	return l.k.All()
}

// ErrReadBytesNotSupported is returned if koanf asks a map provider
// for raw bytes; map providers only implement Read.
var ErrReadBytesNotSupported = errors.New("confloader: map provider has no byte form")

// mapProvider adapts a plain map to the koanf provider interface.
// Keys may be dotted paths ("server.http.addr"); Read expands them
// into the nested form koanf merges by.
type mapProvider map[string]any

func (m mapProvider) ReadBytes() ([]byte, error) {
	return nil, ErrReadBytesNotSupported
}

func (m mapProvider) Read() (map[string]any, error) {
	return maps.Unflatten(m, "."), nil
}
