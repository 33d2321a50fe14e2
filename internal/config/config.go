package config

import (
	"fmt"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Game        GameConfig        `mapstructure:"game"`
	Robot       RobotConfig       `mapstructure:"robot"`
	Server      ServerConfig      `mapstructure:"server"`
	Store       StoreConfig       `mapstructure:"store"`
	Development DevelopmentConfig `mapstructure:"development"`
}

// GameConfig holds the settings of a new game
type GameConfig struct {
	Players  int   `mapstructure:"players"`
	Seed     int64 `mapstructure:"seed"`
	Revision int   `mapstructure:"revision"`
	// Seats names the robot variant per seat. Empty seats use robot.variant.
	Seats []string `mapstructure:"seats"`
}

// RobotConfig holds robot player settings
type RobotConfig struct {
	Variant string `mapstructure:"variant"`
	// MoveDelay is the pause between robot moves in milliseconds.
	MoveDelay int `mapstructure:"move_delay"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	GRPCServer GRPCServerConfig `mapstructure:"grpc_server"`
	Web        WebConfig        `mapstructure:"web"`
}

// GRPCServerConfig holds gRPC server configuration
type GRPCServerConfig struct {
	Host                  string `mapstructure:"host"`
	Port                  int    `mapstructure:"port"`
	LogLevel              string `mapstructure:"log_level"`
	MaxGames              int    `mapstructure:"max_games"`
	EnableReflection      bool   `mapstructure:"enable_reflection"`
	GracefulShutdownDelay int    `mapstructure:"graceful_shutdown_delay"`
	// IdleTimeout is how long in seconds a game may sit untouched.
	IdleTimeout int `mapstructure:"idle_timeout"`
}

// WebConfig holds the spectator feed settings
type WebConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Addr         string `mapstructure:"addr"`
	WriteTimeout int    `mapstructure:"write_timeout"`
}

// StoreConfig holds game record persistence settings
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// DevelopmentConfig holds development/debug settings
type DevelopmentConfig struct {
	VerboseLogging bool `mapstructure:"verbose_logging"`
	DumpBoard      bool `mapstructure:"dump_board"`
}

var (
	// Global config instance
	cfg *Config
	v   *viper.Viper
)

// setViperDefaults sets all default values using Viper's SetDefault
func setViperDefaults(v *viper.Viper) {
	// Game defaults
	v.SetDefault("game.players", 2)
	v.SetDefault("game.seed", 0)
	v.SetDefault("game.revision", 0)
	v.SetDefault("game.seats", []string{})

	// Robot defaults
	v.SetDefault("robot.variant", "standard")
	v.SetDefault("robot.move_delay", 0)

	// gRPC server defaults
	v.SetDefault("server.grpc_server.host", "0.0.0.0")
	v.SetDefault("server.grpc_server.port", 50051)
	v.SetDefault("server.grpc_server.log_level", "info")
	v.SetDefault("server.grpc_server.max_games", 100)
	v.SetDefault("server.grpc_server.enable_reflection", true)
	v.SetDefault("server.grpc_server.graceful_shutdown_delay", 5)
	v.SetDefault("server.grpc_server.idle_timeout", 3600)

	// Spectator defaults
	v.SetDefault("server.web.enabled", false)
	v.SetDefault("server.web.addr", ":8080")
	v.SetDefault("server.web.write_timeout", 10)

	// Store defaults
	v.SetDefault("store.enabled", false)
	v.SetDefault("store.path", "yspahan.db")

	// Development defaults
	v.SetDefault("development.verbose_logging", false)
	v.SetDefault("development.dump_board", false)
}

// Init initializes the configuration
func Init(configPath string) error {
	v = viper.New()

	setViperDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/yspahan")
	}

	v.SetEnvPrefix("YSP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// a named file that is missing falls back to the defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configPath == "" {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	next := &Config{}
	if err := v.Unmarshal(next); err != nil {
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}
	if err := Validate(next); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	cfg = next
	return nil
}

// Get returns the global config instance
func Get() *Config {
	if cfg == nil {
		if err := Init(""); err != nil {
			panic("failed to initialize config with defaults: " + err.Error())
		}
	}
	return cfg
}

// GetViper returns the viper instance for advanced usage
func GetViper() *viper.Viper {
	if v == nil {
		panic("config not initialized - call Init() first")
	}
	return v
}

// LoadEnvironmentConfig merges config.<env>.yaml over the loaded config
func LoadEnvironmentConfig(env string) error {
	if env == "" {
		return nil
	}

	envFile := fmt.Sprintf("config.%s.yaml", env)
	v.SetConfigFile(envFile)
	if err := v.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error merging environment config %s: %w", envFile, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("unable to decode merged config into struct: %w", err)
	}
	return nil
}

// Set allows runtime config updates
func Set(key string, value interface{}) {
	v.Set(key, value)
	_ = v.Unmarshal(cfg)
}

func GetString(key string) string { return v.GetString(key) }

func GetInt(key string) int { return v.GetInt(key) }

func GetBool(key string) bool { return v.GetBool(key) }

// ConfigFilePath returns the path of the loaded config file
func ConfigFilePath() string {
	return v.ConfigFileUsed()
}

// WatchConfig enables hot-reloading of config file. A changed file that
// fails validation is ignored.
func WatchConfig(onChange func()) {
	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		next := &Config{}
		if err := v.Unmarshal(next); err != nil || Validate(next) != nil {
			return
		}
		*cfg = *next
		if onChange != nil {
			onChange()
		}
	})
}

// SeatVariant is the robot variant for seat p.
func (c *Config) SeatVariant(p int) string {
	if p < len(c.Game.Seats) && c.Game.Seats[p] != "" {
		return c.Game.Seats[p]
	}
	return c.Robot.Variant
}

// InitToken is the game initialization token for the configured game.
func (c *Config) InitToken(seed int64) string {
	if c.Game.Revision > 0 {
		return fmt.Sprintf("Yspahan %d %d %d", seed, c.Game.Players, c.Game.Revision)
	}
	return fmt.Sprintf("Yspahan %d %d", seed, c.Game.Players)
}

// Validate validates the configuration values
func Validate(c *Config) error {
	if c.Game.Players < 2 || c.Game.Players > 4 {
		return fmt.Errorf("game.players must be between 2 and 4")
	}
	if len(c.Game.Seats) > c.Game.Players {
		return fmt.Errorf("game.seats lists %d seats for %d players", len(c.Game.Seats), c.Game.Players)
	}
	if c.Game.Revision < 0 {
		return fmt.Errorf("game.revision must be non-negative")
	}
	if c.Robot.Variant == "" {
		return fmt.Errorf("robot.variant must be set")
	}
	if c.Robot.MoveDelay < 0 {
		return fmt.Errorf("robot.move_delay must be non-negative")
	}

	if c.Server.GRPCServer.Port <= 0 || c.Server.GRPCServer.Port > 65535 {
		return fmt.Errorf("server.grpc_server.port must be between 1 and 65535")
	}
	if c.Server.GRPCServer.MaxGames <= 0 {
		return fmt.Errorf("server.grpc_server.max_games must be positive")
	}
	if c.Server.GRPCServer.GracefulShutdownDelay < 0 {
		return fmt.Errorf("server.grpc_server.graceful_shutdown_delay must be non-negative")
	}
	if c.Server.GRPCServer.IdleTimeout < 0 {
		return fmt.Errorf("server.grpc_server.idle_timeout must be non-negative")
	}
	if c.Server.Web.Enabled && c.Server.Web.Addr == "" {
		return fmt.Errorf("server.web.addr must be set when the spectator feed is enabled")
	}
	if c.Server.Web.WriteTimeout <= 0 {
		return fmt.Errorf("server.web.write_timeout must be positive")
	}

	if c.Store.Enabled && c.Store.Path == "" {
		return fmt.Errorf("store.path must be set when the store is enabled")
	}
	return nil
}
