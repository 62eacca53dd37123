package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	DB        DBConfig        `yaml:"db"`
	Log       LogConfig       `yaml:"log"`
	Admin     AdminConfig     `yaml:"admin"`
	Mail      MailConfig      `yaml:"mail"`
	Chat      ChatConfig      `yaml:"chat"`
	Weather   WeatherConfig   `yaml:"weather"`
	News      NewsConfig      `yaml:"news"`
	GitHub    GitHubConfig    `yaml:"github"`
	Desktop   DesktopConfig   `yaml:"desktop"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Mode       string `yaml:"mode"`
	StaticDir  string `yaml:"static_dir"`
	CORSOrigin string `yaml:"cors_origin"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

type AdminConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

type MailConfig struct {
	Provider  string `yaml:"provider"`
	BrevoKey  string `yaml:"brevo_key"`
	SMTPHost  string `yaml:"smtp_host"`
	SMTPPort  int    `yaml:"smtp_port"`
	SMTPUser  string `yaml:"smtp_user"`
	SMTPPass  string `yaml:"smtp_pass"`
	From      string `yaml:"from"`
	To        string `yaml:"to"`
	OwnerName string `yaml:"owner_name"`
}

type ChatConfig struct {
	Provider   string `yaml:"provider"`
	GeminiKey  string `yaml:"gemini_key"`
	OpenAIKey  string `yaml:"openai_key"`
	Model      string `yaml:"model"`
	MaxHistory int    `yaml:"max_history"`
}

type WeatherConfig struct {
	APIKey      string        `yaml:"api_key"`
	DefaultCity string        `yaml:"default_city"`
	TTL         time.Duration `yaml:"ttl"`
}

type NewsConfig struct {
	APIKey         string        `yaml:"api_key"`
	DefaultCountry string        `yaml:"default_country"`
	PageSize       int           `yaml:"page_size"`
	TTL            time.Duration `yaml:"ttl"`
}

type GitHubConfig struct {
	Token string   `yaml:"token"`
	Owner string   `yaml:"owner"`
	Repos []string `yaml:"repos"`
}

type DesktopConfig struct {
	ViewportWidth  int           `yaml:"viewport_width"`
	ViewportHeight int           `yaml:"viewport_height"`
	SessionTTL     time.Duration `yaml:"session_ttl"`
	MaxSessions    int           `yaml:"max_sessions"`
	ManifestPath   string        `yaml:"manifest_path"`
}

type RateLimitConfig struct {
	Window     time.Duration `yaml:"window"`
	APIMax     int           `yaml:"api_max"`
	ContactMax int           `yaml:"contact_max"`
}

// Configured reports which optional integrations have credentials.
type Configured struct {
	Chat     bool `json:"apiKeyConfigured"`
	Weather  bool `json:"weatherApiConfigured"`
	News     bool `json:"newsApiConfigured"`
	Email    bool `json:"emailConfigured"`
	GitHub   bool `json:"githubConfigured"`
	Database bool `json:"databaseAvailable"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       8080,
			Mode:       "debug",
			CORSOrigin: "*",
		},
		DB: DBConfig{
			Path: "deskfolio.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Admin: AdminConfig{
			Username: "admin",
			Password: "admin123",
		},
		Mail: MailConfig{
			Provider:  "brevo",
			SMTPHost:  "smtp.gmail.com",
			SMTPPort:  587,
			OwnerName: "Portfolio Owner",
		},
		Chat: ChatConfig{
			Provider:   "gemini",
			Model:      "gemini-1.5-flash",
			MaxHistory: 20,
		},
		Weather: WeatherConfig{
			DefaultCity: "Johannesburg",
			TTL:         30 * time.Minute,
		},
		News: NewsConfig{
			DefaultCountry: "za",
			PageSize:       7,
			TTL:            30 * time.Minute,
		},
		Desktop: DesktopConfig{
			ViewportWidth:  1920,
			ViewportHeight: 1080,
			SessionTTL:     2 * time.Hour,
			MaxSessions:    1000,
		},
		RateLimit: RateLimitConfig{
			Window:     15 * time.Minute,
			APIMax:     100,
			ContactMax: 3,
		},
	}
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	return load(os.Getenv)
}

func load(getenv func(string) string) (Config, error) {
	cfg := Default()

	if path := getenv("DESKFOLIO_CONFIG"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	env := envReader{getenv: getenv}
	env.str("HOST", &cfg.Server.Host)
	env.int("PORT", &cfg.Server.Port)
	env.str("GIN_MODE", &cfg.Server.Mode)
	env.str("STATIC_DIR", &cfg.Server.StaticDir)
	env.str("CORS_ORIGINS", &cfg.Server.CORSOrigin)
	env.str("DATABASE_PATH", &cfg.DB.Path)
	env.str("LOG_LEVEL", &cfg.Log.Level)
	env.str("ADMIN_USERNAME", &cfg.Admin.Username)
	env.str("ADMIN_PASSWORD", &cfg.Admin.Password)

	env.str("MAIL_PROVIDER", &cfg.Mail.Provider)
	env.str("BREVO_API_KEY", &cfg.Mail.BrevoKey)
	env.str("SMTP_HOST", &cfg.Mail.SMTPHost)
	env.int("SMTP_PORT", &cfg.Mail.SMTPPort)
	env.str("SMTP_USER", &cfg.Mail.SMTPUser)
	env.str("SMTP_PASS", &cfg.Mail.SMTPPass)
	env.str("EMAIL_FROM", &cfg.Mail.From)
	env.str("EMAIL_TO", &cfg.Mail.To)
	env.str("OWNER_NAME", &cfg.Mail.OwnerName)

	env.str("CHAT_PROVIDER", &cfg.Chat.Provider)
	env.str("GEMINI_API_KEY", &cfg.Chat.GeminiKey)
	env.str("OPENAI_API_KEY", &cfg.Chat.OpenAIKey)
	env.str("CHAT_MODEL", &cfg.Chat.Model)

	env.str("WEATHER_API_KEY", &cfg.Weather.APIKey)
	env.str("WEATHER_DEFAULT_CITY", &cfg.Weather.DefaultCity)
	env.duration("WEATHER_CACHE_TTL", &cfg.Weather.TTL)
	env.str("NEWSDATA_API_KEY", &cfg.News.APIKey)
	env.str("NEWS_DEFAULT_COUNTRY", &cfg.News.DefaultCountry)
	env.duration("NEWS_CACHE_TTL", &cfg.News.TTL)

	env.str("GITHUB_TOKEN", &cfg.GitHub.Token)
	env.str("GITHUB_OWNER", &cfg.GitHub.Owner)
	env.list("GITHUB_REPOS", &cfg.GitHub.Repos)

	env.duration("DESKTOP_SESSION_TTL", &cfg.Desktop.SessionTTL)
	env.int("DESKTOP_MAX_SESSIONS", &cfg.Desktop.MaxSessions)
	env.str("DESKTOP_MANIFEST", &cfg.Desktop.ManifestPath)

	env.int("RATE_LIMIT_API_MAX", &cfg.RateLimit.APIMax)
	env.int("RATE_LIMIT_CONTACT_MAX", &cfg.RateLimit.ContactMax)

	if env.err != nil {
		return Config{}, env.err
	}

	// Release builds tighten the public API unless a limit was set explicitly.
	if cfg.Server.Mode == "release" && getenv("RATE_LIMIT_API_MAX") == "" && cfg.RateLimit.APIMax == 100 {
		cfg.RateLimit.APIMax = 50
	}

	return cfg, nil
}

// Configured reports which third-party keys are present.
func (c Config) Configured() Configured {
	email := c.Mail.BrevoKey != ""
	if c.Mail.Provider == "smtp" {
		email = c.Mail.SMTPUser != "" && c.Mail.SMTPPass != ""
	}
	chat := c.Chat.GeminiKey != ""
	if c.Chat.Provider == "openai" {
		chat = c.Chat.OpenAIKey != ""
	}
	return Configured{
		Chat:    chat,
		Weather: c.Weather.APIKey != "",
		News:    c.News.APIKey != "",
		Email:   email,
		GitHub:  c.GitHub.Token != "" && c.GitHub.Owner != "" && len(c.GitHub.Repos) > 0,
	}
}

// Addr returns the listen address.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// envReader overlays environment variables, keeping the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) int(key string, dst *int) {
	v := e.getenv(key)
	if v == "" || e.err != nil {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = n
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v := e.getenv(key)
	if v == "" || e.err != nil {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
		return
	}
	*dst = d
}

func (e *envReader) list(key string, dst *[]string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*dst = out
}
