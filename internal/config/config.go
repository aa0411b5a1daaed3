package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/calvinwijaya/lucky-money-be/internal/game"
)

// Config holds all server configuration.
type Config struct {
	Server      ServerConfig  `yaml:"server"`
	Game        GameConfig    `yaml:"game"`
	Celebration game.Confetti `yaml:"celebration"`
	Music       MusicConfig   `yaml:"music"`
	Wish        WishConfig    `yaml:"wish"`
	Tables      TablesConfig  `yaml:"tables"`
	Logging     LoggingConfig `yaml:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Port         string `yaml:"port"`
	FrontendURL  string `yaml:"frontend_url"` // Allowed CORS origin
	ReadTimeout  string `yaml:"read_timeout"`
	WriteTimeout string `yaml:"write_timeout"`
	IdleTimeout  string `yaml:"idle_timeout"`
}

// GameConfig configures decks and sessions.
type GameConfig struct {
	DeckSize           int                 `yaml:"deck_size"`
	TurnLimit          int                 `yaml:"turn_limit"` // 0 = deck size
	HighValueThreshold int                 `yaml:"high_value_threshold"`
	LuckyKeywords      []string            `yaml:"lucky_keywords"`
	Denominations      []game.Denomination `yaml:"denominations"`
	Notes              []string            `yaml:"notes"`
	WelcomeMessage     string              `yaml:"welcome_message"`
	ResetMessage       string              `yaml:"reset_message"`
}

// MusicConfig is handed to the browser's audio player.
type MusicConfig struct {
	URL        string  `yaml:"url" json:"url"`
	Volume     float64 `yaml:"volume" json:"volume"`
	Loop       bool    `yaml:"loop" json:"loop"`
	StartMuted bool    `yaml:"start_muted" json:"startMuted"`
}

// WishConfig configures the wish generator.
type WishConfig struct {
	Provider    string  `yaml:"provider"` // gemini, openrouter, static
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     string  `yaml:"timeout"`
	Temperature float32 `yaml:"temperature"`
	Fallback    string  `yaml:"fallback"`
}

// TablesConfig controls eviction of idle tables.
type TablesConfig struct {
	IdleTTL       string `yaml:"idle_ttl"`
	SweepInterval string `yaml:"sweep_interval"`
}

// LoggingConfig configures zap.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, console
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			FrontendURL:  "http://localhost:5173",
			ReadTimeout:  "15s",
			WriteTimeout: "15s",
			IdleTimeout:  "60s",
		},

		Game: GameConfig{
			DeckSize:           35,
			TurnLimit:          0,
			HighValueThreshold: 500000,
			LuckyKeywords:      []string{"Lộc"},
			Denominations:      game.DefaultDenominations(),
			Notes: []string{
				"Chúc mừng năm mới Bính Ngọ 2026!",
				"Lật mỗi bao lì xì để nhận lộc đầu năm.",
				"Tìm bao lì xì 500.000đ để nhận pháo hoa rực rỡ!",
				"Vận may đang chờ đón bạn.",
			},
			WelcomeMessage: "Chúc bạn một năm mới Mã Đáo Thành Công!",
			ResetMessage:   "Sẵn sàng đón lộc mới!",
		},

		Celebration: game.DefaultConfetti(),

		Music: MusicConfig{
			URL:        "./music-lunar-new-year.mp3",
			Volume:     0.4,
			Loop:       true,
			StartMuted: true,
		},

		Wish: WishConfig{
			Provider:    "static",
			Model:       "gemini-3-flash-preview",
			BaseURL:     "https://openrouter.ai/api/v1",
			Timeout:     "10s",
			Temperature: 0.8,
			Fallback:    "Chúc mừng năm mới, lộc xuân tràn đầy!",
		},

		Tables: TablesConfig{
			IdleTTL:       "2h",
			SweepInterval: "5m",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		c.Wish.APIKey = key
		c.Wish.Provider = "openrouter"
	}
	// Gemini wins when both are set
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		c.Wish.APIKey = key
		c.Wish.Provider = "gemini"
	}

	if port := os.Getenv("LUCKY_PORT"); port != "" {
		c.Server.Port = port
	}
	if url := os.Getenv("LUCKY_FRONTEND_URL"); url != "" {
		c.Server.FrontendURL = url
	}
	if level := os.Getenv("LUCKY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("LUCKY_TURN_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Game.TurnLimit = n
		}
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// GetWishTimeout returns the wish request timeout as a duration.
func (c *Config) GetWishTimeout() time.Duration {
	return parseDuration(c.Wish.Timeout, 10*time.Second)
}

// GetIdleTTL returns how long an untouched table is kept.
func (c *Config) GetIdleTTL() time.Duration {
	return parseDuration(c.Tables.IdleTTL, 2*time.Hour)
}

// GetSweepInterval returns how often idle tables are evicted.
func (c *Config) GetSweepInterval() time.Duration {
	return parseDuration(c.Tables.SweepInterval, 5*time.Minute)
}

func (c *Config) GetReadTimeout() time.Duration {
	return parseDuration(c.Server.ReadTimeout, 15*time.Second)
}

func (c *Config) GetWriteTimeout() time.Duration {
	return parseDuration(c.Server.WriteTimeout, 15*time.Second)
}

func (c *Config) GetIdleTimeout() time.Duration {
	return parseDuration(c.Server.IdleTimeout, 60*time.Second)
}

// Settings returns the per-table game settings.
func (c *Config) Settings() game.Settings {
	return game.Settings{
		DeckSize:       c.Game.DeckSize,
		TurnLimit:      c.Game.TurnLimit,
		WelcomeMessage: c.Game.WelcomeMessage,
		ResetMessage:   c.Game.ResetMessage,
	}
}

// CelebrationPolicy returns the confetti policy.
func (c *Config) CelebrationPolicy() game.Celebration {
	return game.Celebration{
		Threshold: c.Game.HighValueThreshold,
		Keywords:  c.Game.LuckyKeywords,
		Confetti:  c.Celebration,
	}
}

// ValidProviders lists all supported wish providers.
var ValidProviders = []string{"gemini", "openrouter", "static"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Game.DeckSize < 1 {
		return fmt.Errorf("game.deck_size must be at least 1, got %d", c.Game.DeckSize)
	}
	if c.Game.TurnLimit < 0 {
		return fmt.Errorf("game.turn_limit must not be negative, got %d", c.Game.TurnLimit)
	}
	if len(c.Game.Denominations) == 0 {
		return fmt.Errorf("game.denominations must not be empty")
	}

	validProvider := false
	for _, p := range ValidProviders {
		if c.Wish.Provider == p {
			validProvider = true
			break
		}
	}
	if !validProvider {
		return fmt.Errorf("invalid wish provider: %s (valid: %v)", c.Wish.Provider, ValidProviders)
	}

	if c.Wish.Provider != "static" && c.Wish.APIKey == "" {
		return fmt.Errorf("wish provider %s needs an API key (set GEMINI_API_KEY or OPENROUTER_API_KEY)", c.Wish.Provider)
	}

	return nil
}
