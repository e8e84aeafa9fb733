package configs

import (
	"fmt"
	"time"

	"github.com/arvidfm/codeshare/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	HTTP        HTTPConfig        `koanf:"http"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	RoomStore   RoomStoreConfig   `koanf:"room_store"`
	Mail        MailConfig        `koanf:"mail"`
	Sign        SignConfig        `koanf:"sign"`
	Tracing     TracingConfig     `koanf:"tracing"`
}

type HTTPConfig struct {
	Host         string        `koanf:"host"`
	Port         uint16        `koanf:"port"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int           `koanf:"requestsPerTimeFrame"`
	TimeFrame            time.Duration `koanf:"timeFrame"`
}

type RoomStoreConfig struct {
	Capacity uint          `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`
}

type MailConfig struct {
	Host        string `koanf:"host"`
	Port        int    `koanf:"port"`
	Username    string `koanf:"username"`
	Password    string `koanf:"password"`
	From        string `koanf:"from"`
	FrontendURL string `koanf:"frontend_url"`
}

type SignConfig struct {
	Secret  string        `koanf:"secret"`
	LinkTTL time.Duration `koanf:"link_ttl"`
}

type TracingConfig struct {
	Enabled     bool   `koanf:"enabled"`
	Endpoint    string `koanf:"endpoint"`
	ServiceName string `koanf:"service_name"`
	Environment string `koanf:"environment"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)

	setDefault(k, "rateLimiter.requestsPerTimeFrame", 20)
	setDefault(k, "rateLimiter.timeFrame", 5*time.Second)

	setDefault(k, "room_store.capacity", 100)
	setDefault(k, "room_store.ttl", time.Hour)

	setDefault(k, "mail.host", "localhost")
	setDefault(k, "mail.port", 587)
	setDefault(k, "mail.from", "no-reply@codeshare.local")
	setDefault(k, "mail.frontend_url", "http://localhost:5173")

	setDefault(k, "sign.link_ttl", time.Hour)

	setDefault(k, "tracing.enabled", false)
	setDefault(k, "tracing.endpoint", "http://localhost:4318")
	setDefault(k, "tracing.service_name", "codeshare")
	setDefault(k, "tracing.environment", "development")
}

func applyEnvOverrides(k *koanf.Koanf) {
	if host := env.GetString("HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}

	if ttl := env.GetInt("ROOM_TTL_MINUTES", 0); ttl > 0 {
		k.Set("room_store.ttl", time.Duration(ttl)*time.Minute)
	}
	if capacity := env.GetInt("ROOM_STORE_CAPACITY", 0); capacity > 0 {
		k.Set("room_store.capacity", uint(capacity))
	}

	if host := env.GetString("SMTP_HOST", ""); host != "" {
		k.Set("mail.host", host)
	}
	if port := env.GetInt("SMTP_PORT", 0); port > 0 {
		k.Set("mail.port", port)
	}
	if user := env.GetString("SMTP_USERNAME", ""); user != "" {
		k.Set("mail.username", user)
	}
	if pass := env.GetString("SMTP_PASSWORD", ""); pass != "" {
		k.Set("mail.password", pass)
	}
	if from := env.GetString("MAIL_FROM", ""); from != "" {
		k.Set("mail.from", from)
	}
	if frontend := env.GetString("FRONTEND_URL", ""); frontend != "" {
		k.Set("mail.frontend_url", frontend)
	}

	if secret := env.GetString("SIGN_SECRET", ""); secret != "" {
		k.Set("sign.secret", secret)
	}

	if env.GetBool("TRACING_ENABLED", false) {
		k.Set("tracing.enabled", true)
	}
	if endpoint := env.GetString("OTLP_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value interface{}) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
