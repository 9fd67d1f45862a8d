package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	defaultAppEnv       = "local"
	defaultLogLevel     = "debug"
	defaultDBPath       = "inventory.db"
	defaultBusyTimeout  = 5 * time.Second
	defaultMaxOpenConns = 4
	defaultAuthority    = "com.example.inventory.productprovider"

	envPrefix = "INVENTORY_"
)

// Config is the full runtime configuration.
type Config struct {
	App   AppConfig      `koanf:"app"`
	Log   LogConfig      `koanf:"log"`
	DB    DatabaseConfig `koanf:"db"`
	Store StoreConfig    `koanf:"store"`
}

type AppConfig struct {
	Env string `koanf:"env"`
}

type LogConfig struct {
	Level string `koanf:"level"`
}

// DatabaseConfig describes the sqlite file backing the product store.
type DatabaseConfig struct {
	Path         string        `koanf:"path"`
	BusyTimeout  time.Duration `koanf:"busy_timeout"`
	MaxOpenConns int           `koanf:"max_open_conns"`
}

type StoreConfig struct {
	Authority string `koanf:"authority"`
}

// Validate rejects configurations the store cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DB.Path) == "" {
		return fmt.Errorf("db.path is not configured")
	}
	if c.DB.BusyTimeout <= 0 {
		return fmt.Errorf("db.busy_timeout must be > 0, got %s", c.DB.BusyTimeout)
	}
	if c.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("db.max_open_conns must be > 0, got %d", c.DB.MaxOpenConns)
	}
	if strings.TrimSpace(c.Store.Authority) == "" {
		return fmt.Errorf("store.authority is not configured")
	}
	return nil
}

// IsProduction reports whether the app runs with production defaults.
func (c Config) IsProduction() bool {
	switch strings.ToLower(c.App.Env) {
	case "production", "prod":
		return true
	}
	return false
}

var (
	loadOnce sync.Once
	loadErr  error

	mu      sync.RWMutex
	current = defaults()
)

func defaults() Config {
	return Config{
		App: AppConfig{Env: defaultAppEnv},
		Log: LogConfig{Level: defaultLogLevel},
		DB: DatabaseConfig{
			Path:         defaultDBPath,
			BusyTimeout:  defaultBusyTimeout,
			MaxOpenConns: defaultMaxOpenConns,
		},
		Store: StoreConfig{Authority: defaultAuthority},
	}
}

// Load reads config/app.yaml, .env and INVENTORY_* environment variables, in
// that order of increasing priority. Only the first call does any work.
func Load() error {
	loadOnce.Do(func() {
		cfg, err := LoadFrom("config/app.yaml", ".env")
		if err != nil {
			loadErr = err
			return
		}
		mu.Lock()
		current = cfg
		mu.Unlock()
	})
	return loadErr
}

// Get returns the loaded configuration, loading it first if needed. On a load
// error the defaults are returned.
func Get() Config {
	_ = Load()
	mu.RLock()
	defer mu.RUnlock()
	return current
}

// LoadFrom builds a Config from the given yaml and dotenv files. Missing files
// are skipped.
func LoadFrom(configPath, envPath string) (Config, error) {
	k := koanf.New(".")

	d := defaults()
	if err := k.Load(confmap.Provider(map[string]any{
		"app.env":           d.App.Env,
		"log.level":         d.Log.Level,
		"db.path":           d.DB.Path,
		"db.busy_timeout":   d.DB.BusyTimeout.String(),
		"db.max_open_conns": d.DB.MaxOpenConns,
		"store.authority":   d.Store.Authority,
	}, "."), nil); err != nil {
		return Config{}, fmt.Errorf("config: load defaults: %w", err)
	}

	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("config: read %s: %w", configPath, err)
		}
	}

	if envPath != "" {
		dotenv, err := godotenv.Read(envPath)
		switch {
		case err == nil:
			m := make(map[string]any, len(dotenv))
			for key, value := range dotenv {
				if !strings.HasPrefix(strings.ToUpper(key), envPrefix) {
					continue
				}
				m[envKey(key)] = value
			}
			if err := k.Load(confmap.Provider(m, "."), nil); err != nil {
				return Config{}, fmt.Errorf("config: load %s: %w", envPath, err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("config: read %s: %w", envPath, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("config: load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// envKey maps INVENTORY_DB_BUSY_TIMEOUT to db.busy_timeout. The first
// underscore after the prefix separates the section from the key.
func envKey(key string) string {
	key = strings.ToLower(strings.TrimPrefix(strings.ToUpper(key), envPrefix))
	section, rest, ok := strings.Cut(key, "_")
	if !ok {
		return key
	}
	return section + "." + rest
}
