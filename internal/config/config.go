// Package config loads application configuration from file and env.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Board    BoardConfig
	Log      LogConfig
}

// DatabaseConfig holds sqlite settings for the local store and treeboardd.
type DatabaseConfig struct {
	Path string
}

// ServerConfig wires the sync relay: URL is what clients dial (empty means
// work against the local store), Listen is what treeboardd binds.
type ServerConfig struct {
	URL    string
	Listen string
}

// BoardConfig sets the board coordinate space and the note footprint used
// for clamping.
type BoardConfig struct {
	Width      float64
	Height     float64
	ItemWidth  float64
	ItemHeight float64
}

// LogConfig holds the client log file path. The TUI owns the terminal, so
// logs go to a file.
type LogConfig struct {
	Path string
}

// Load reads configuration from file and env. Env var overrides use prefix
// TREEBOARD_.
func Load() (Config, error) {
	v := viper.New()

	dataDir := filepath.Join(os.Getenv("HOME"), ".local", "share", "treeboard")

	v.SetDefault("database.path", filepath.Join(dataDir, "treeboard.db"))
	v.SetDefault("server.url", "")
	v.SetDefault("server.listen", ":7357")
	v.SetDefault("board.width", 120.0)
	v.SetDefault("board.height", 36.0)
	v.SetDefault("board.item_width", 18.0)
	v.SetDefault("board.item_height", 4.0)
	v.SetDefault("log.path", filepath.Join(dataDir, "treeboard.log"))

	v.SetConfigType("toml")

	cfgPath := os.Getenv("TREEBOARD_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "treeboard"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("TREEBOARD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && cfgPath != "" {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := Config{
		Database: DatabaseConfig{Path: v.GetString("database.path")},
		Server: ServerConfig{
			URL:    v.GetString("server.url"),
			Listen: v.GetString("server.listen"),
		},
		Board: BoardConfig{
			Width:      v.GetFloat64("board.width"),
			Height:     v.GetFloat64("board.height"),
			ItemWidth:  v.GetFloat64("board.item_width"),
			ItemHeight: v.GetFloat64("board.item_height"),
		},
		Log: LogConfig{Path: v.GetString("log.path")},
	}
	return cfg, nil
}
