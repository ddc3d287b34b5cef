package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds the client settings.
type Config struct {
	APIURL           string        `env:"VINTED_API_URL" env-description:"Marketplace API root"`
	ConversationPoll time.Duration `env:"VINTED_CONVERSATION_POLL" env-description:"Conversation list refresh interval"`
	MessagePoll      time.Duration `env:"VINTED_MESSAGE_POLL" env-description:"Open thread refresh interval"`
	RequestTimeout   time.Duration `env:"VINTED_REQUEST_TIMEOUT" env-description:"Per-request HTTP timeout"`
	MutationTimeout  time.Duration `env:"VINTED_MUTATION_TIMEOUT" env-description:"Deadline before an optimistic change is reconciled"`
	LogLevel         string        `env:"VINTED_LOG_LEVEL" env-description:"debug, info, warn or error"`
	LogFile          string        `env:"VINTED_LOG_FILE" env-description:"Client log file"`
	SessionFile      string        `env:"VINTED_SESSION_FILE" env-description:"Where the session token is kept"`
}

const (
	defaultConfigPath       = "~/.config/vinted/config.toml"
	defaultAPIURL           = "http://localhost:5000/api"
	defaultConversationPoll = 30 * time.Second
	defaultMessagePoll      = 10 * time.Second
	defaultRequestTimeout   = 10 * time.Second
	defaultMutationTimeout  = 15 * time.Second
	defaultLogLevel         = "info"
	defaultLogFile          = "~/.local/state/vinted/vinted.log"
	defaultSessionFile      = "~/.config/vinted/session.toml"
)

// Default returns the built-in settings.
func Default() Config {
	return Config{
		APIURL:           defaultAPIURL,
		ConversationPoll: defaultConversationPoll,
		MessagePoll:      defaultMessagePoll,
		RequestTimeout:   defaultRequestTimeout,
		MutationTimeout:  defaultMutationTimeout,
		LogLevel:         defaultLogLevel,
		LogFile:          mustExpand(defaultLogFile),
		SessionFile:      mustExpand(defaultSessionFile),
	}
}

// Load reads the config file, then applies VINTED_* environment overrides
// (including any found in a .env file in the working directory). A missing
// file is not an error.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()
	if err := readFile(resolved, &cfg); err != nil {
		return Config{}, err
	}

	_ = godotenv.Load()
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if err := cfg.normalize(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// EnvHelp describes the environment variables Load honours.
func EnvHelp() string {
	header := "Environment variables:"
	text, err := cleanenv.GetDescription(&Config{}, &header)
	if err != nil {
		return ""
	}
	return text
}

func readFile(path string, cfg *Config) error {
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		APIURL           string `toml:"api_url"`
		ConversationPoll string `toml:"conversation_poll"`
		MessagePoll      string `toml:"message_poll"`
		RequestTimeout   string `toml:"request_timeout"`
		MutationTimeout  string `toml:"mutation_timeout"`
		LogLevel         string `toml:"log_level"`
		LogFile          string `toml:"log_file"`
		SessionFile      string `toml:"session_file"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}

	if v := strings.TrimSpace(raw.APIURL); v != "" {
		cfg.APIURL = v
	}
	if v := strings.TrimSpace(raw.LogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := strings.TrimSpace(raw.LogFile); v != "" {
		cfg.LogFile = v
	}
	if v := strings.TrimSpace(raw.SessionFile); v != "" {
		cfg.SessionFile = v
	}

	durations := []struct {
		key   string
		value string
		dest  *time.Duration
	}{
		{"conversation_poll", raw.ConversationPoll, &cfg.ConversationPoll},
		{"message_poll", raw.MessagePoll, &cfg.MessagePoll},
		{"request_timeout", raw.RequestTimeout, &cfg.RequestTimeout},
		{"mutation_timeout", raw.MutationTimeout, &cfg.MutationTimeout},
	}
	for _, d := range durations {
		v := strings.TrimSpace(d.value)
		if v == "" {
			continue
		}
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse config: %s: %w", d.key, err)
		}
		*d.dest = parsed
	}
	return nil
}

func (c *Config) normalize() error {
	c.APIURL = strings.TrimSpace(c.APIURL)
	if c.APIURL == "" {
		c.APIURL = defaultAPIURL
	}

	positive := []struct {
		key   string
		value *time.Duration
	}{
		{"conversation_poll", &c.ConversationPoll},
		{"message_poll", &c.MessagePoll},
		{"request_timeout", &c.RequestTimeout},
		{"mutation_timeout", &c.MutationTimeout},
	}
	for _, p := range positive {
		if *p.value <= 0 {
			return fmt.Errorf("%s must be positive, got %s", p.key, *p.value)
		}
	}

	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))
	switch c.LogLevel {
	case "":
		c.LogLevel = defaultLogLevel
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if strings.TrimSpace(c.LogFile) == "" {
		c.LogFile = defaultLogFile
	}
	c.LogFile = mustExpand(c.LogFile)
	if strings.TrimSpace(c.SessionFile) == "" {
		c.SessionFile = defaultSessionFile
	}
	c.SessionFile = mustExpand(c.SessionFile)
	return nil
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
