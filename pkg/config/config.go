// Package config loads platekit configuration from a TOML file.
//
// A missing file is not an error: [Load] returns [Default] in that case, so
// the CLI works out of the box with a 96-well plate, the sample layout and
// the file-backed annotation store.
//
//	[plate]
//	rows = 8
//	columns = 12
//	strategy = "sample"
//	group = 3
//
//	[store]
//	backend = "file"
//	path = "/var/lib/platekit"
//
//	[server]
//	addr = ":8080"
package config

import (
	"io"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	perrors "github.com/matzehuels/platekit/pkg/errors"
	"github.com/matzehuels/platekit/pkg/plate"
	"github.com/matzehuels/platekit/pkg/plate/layout"
)

// appName is used for XDG directories.
const appName = "platekit"

// EnvConfig overrides the default config file location.
const EnvConfig = "PLATEKIT_CONFIG"

// Config is the full platekit configuration.
type Config struct {
	Plate  Plate  `toml:"plate"`
	Store  Store  `toml:"store"`
	Server Server `toml:"server"`
}

// Plate holds the default plate geometry and layout.
type Plate struct {
	Rows     int             `toml:"rows"`
	Columns  int             `toml:"columns"`
	Strategy layout.Strategy `toml:"strategy"`
	Group    int             `toml:"group"`
}

// Dimensions returns the configured plate size.
func (p Plate) Dimensions() plate.Dimensions {
	return plate.Dimensions{Rows: p.Rows, Columns: p.Columns}
}

// Store selects and configures the annotation store backend.
type Store struct {
	Backend  string `toml:"backend"`            // memory | file | sqlite | redis | mongo
	Path     string `toml:"path,omitempty"`     // file directory or sqlite database path
	Addr     string `toml:"addr,omitempty"`     // redis address
	Password string `toml:"password,omitempty"` // redis password
	DB       int    `toml:"db,omitempty"`       // redis database number
	URI      string `toml:"uri,omitempty"`      // mongo connection string
	Database string `toml:"database,omitempty"` // mongo database
	Prefix   string `toml:"prefix,omitempty"`   // redis key prefix
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Plate: Plate{
			Rows:     plate.Plate96.Rows,
			Columns:  plate.Plate96.Columns,
			Strategy: layout.DefaultStrategy,
			Group:    1,
		},
		Store: Store{
			Backend: "file",
		},
		Server: Server{
			Addr: ":8080",
		},
	}
}

// Load reads the config file at path on top of the defaults. An empty path
// uses DefaultPath. A missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, perrors.New(perrors.ErrCodeInvalidConfig, "unknown config key %q in %s", undecoded[0].String(), path)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c Config) Validate() error {
	if err := c.Plate.Dimensions().Validate(); err != nil {
		return perrors.Wrap(perrors.ErrCodeInvalidConfig, err, "plate")
	}
	if !c.Plate.Strategy.Valid() {
		return perrors.New(perrors.ErrCodeInvalidConfig, "plate: unknown strategy %d", int(c.Plate.Strategy))
	}
	if c.Plate.Group < 1 {
		return perrors.New(perrors.ErrCodeInvalidConfig, "plate: group must be at least 1, got %d", c.Plate.Group)
	}

	switch c.Store.Backend {
	case "memory", "file", "sqlite":
	case "redis":
		if c.Store.Addr == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "store: redis backend needs addr")
		}
	case "mongo":
		if c.Store.URI == "" {
			return perrors.New(perrors.ErrCodeInvalidConfig, "store: mongo backend needs uri")
		}
	default:
		return perrors.New(perrors.ErrCodeInvalidConfig, "store: unknown backend %q", c.Store.Backend)
	}
	return nil
}

// Encode writes c as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// DefaultPath returns the config file location: $PLATEKIT_CONFIG, else
// $XDG_CONFIG_HOME/platekit/config.toml, else ~/.config/platekit/config.toml.
func DefaultPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// DataDir returns the directory for locally stored annotations:
// $XDG_DATA_HOME/platekit or ~/.local/share/platekit.
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}
