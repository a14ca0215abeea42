package config

import (
	"errors"
	"os"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultAPIAddress = "127.0.0.1:4000"
	defaultPageSize   = 50
)

var defaultTransports = []string{"websocket", "polling"}

type Config struct {
	API      APIConfig      `toml:"api"`
	Realtime RealtimeConfig `toml:"realtime"`
	Chat     ChatConfig     `toml:"chat"`
	Logging  LoggingConfig  `toml:"logging"`
	Debug    DebugConfig    `toml:"debug"`
}

type APIConfig struct {
	Address   string `toml:"address"`
	TokenPath string `toml:"token_path"`
}

type RealtimeConfig struct {
	// Transports in order of preference. The first one that connects wins;
	// all of them carry the same event contract.
	Transports []string `toml:"transports"`
}

type ChatConfig struct {
	PageSize int `toml:"page_size"`
}

type LoggingConfig struct {
	Level string `toml:"level"`
}

type DebugConfig struct {
	StreamDebug bool `toml:"stream_debug"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			Address: defaultAPIAddress,
		},
		Realtime: RealtimeConfig{
			Transports: append([]string{}, defaultTransports...),
		},
		Chat: ChatConfig{
			PageSize: defaultPageSize,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

func Load() (Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Config{}, err
	}
	return loadFromPath(path)
}

func loadFromPath(path string) (Config, error) {
	cfg := DefaultConfig()
	if err := readTOML(path, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func readTOML(path string, out any) error {
	path = strings.TrimSpace(path)
	if path == "" {
		return errors.New("path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	return toml.Unmarshal(data, out)
}

func (c Config) APIAddress() string {
	addr := strings.TrimSpace(c.API.Address)
	if addr == "" {
		return defaultAPIAddress
	}
	addr = strings.TrimPrefix(addr, "http://")
	addr = strings.TrimPrefix(addr, "https://")
	addr = strings.TrimRight(addr, "/")
	if addr == "" {
		return defaultAPIAddress
	}
	return addr
}

func (c Config) APIBaseURL() string {
	if strings.HasPrefix(strings.TrimSpace(c.API.Address), "https://") {
		return "https://" + c.APIAddress()
	}
	return "http://" + c.APIAddress()
}

// APITokenPath falls back to the default token file under the app dir.
func (c Config) APITokenPath() (string, error) {
	path := strings.TrimSpace(c.API.TokenPath)
	if path != "" {
		return path, nil
	}
	return TokenPath()
}

func (c Config) Transports() []string {
	known := map[string]bool{"websocket": true, "polling": true}
	var transports []string
	for _, name := range c.Realtime.Transports {
		name = strings.ToLower(strings.TrimSpace(name))
		if known[name] {
			transports = append(transports, name)
		}
	}
	if len(transports) == 0 {
		return append([]string{}, defaultTransports...)
	}
	return transports
}

func (c Config) PageSize() int {
	if c.Chat.PageSize <= 0 {
		return defaultPageSize
	}
	return c.Chat.PageSize
}

func (c Config) LogLevel() string {
	level := strings.TrimSpace(c.Logging.Level)
	if level == "" {
		return "info"
	}
	return level
}

func (c Config) StreamDebugEnabled() bool {
	return c.Debug.StreamDebug
}
