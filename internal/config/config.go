package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// Config reúne todo lo que la API y el seeder leen del entorno.
// Backend de storage: MONGO_URI > DB_DSN > memoria.
type Config struct {
	Port    int    `env:"PORT,default=8080"`
	AppName string `env:"APP_NAME,default=pet-adoption"`

	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`

	DBDSN          string `env:"DB_DSN"`
	DBMaxOpenConns int    `env:"DB_MAX_OPEN_CONNS,default=10"`
	DBMigrate      bool   `env:"DB_MIGRATE,default=true"`

	MongoURI      string `env:"MONGO_URI"`
	MongoDatabase string `env:"MONGO_DATABASE,default=pet_adoption"`

	// Si JWT_SECRET está vacío y no hay Odin, la API corre en modo dev
	// (headers X-Debug-User-ID / X-Debug-User-Role).
	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL,default=720h"`

	OdinBaseURL string `env:"ODIN_BASE_URL"`
	OdinAPIKey  string `env:"ODIN_API_KEY"`

	AllowAllCapabilities bool `env:"ALLOW_ALL_CAPABILITIES,default=false"`

	RateLimitRPS   float64 `env:"RATE_LIMIT_RPS,default=20"`
	RateLimitBurst int     `env:"RATE_LIMIT_BURST,default=40"`

	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,default=5s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,default=10s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT,default=10s"`
}

// Load lee un .env opcional (files, o ".env" si no se pasa ninguno) y decodifica
// el entorno en Config. Un .env ausente no es error.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return Config{}, fmt.Errorf("config: decode env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: invalid PORT %d", c.Port)
	}
	if c.RateLimitRPS < 0 || c.RateLimitBurst < 0 {
		return errors.New("config: rate limit values must be >= 0")
	}
	if (c.OdinBaseURL == "") != (c.OdinAPIKey == "") {
		return errors.New("config: ODIN_BASE_URL and ODIN_API_KEY must be set together")
	}
	return nil
}

func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Backend devuelve "mongo", "postgres" o "memory".
func (c Config) Backend() string {
	switch {
	case strings.TrimSpace(c.MongoURI) != "":
		return "mongo"
	case strings.TrimSpace(c.DBDSN) != "":
		return "postgres"
	default:
		return "memory"
	}
}

// DevAuth es true cuando no hay ningún verificador de tokens configurado.
func (c Config) DevAuth() bool {
	return strings.TrimSpace(c.JWTSecret) == "" && strings.TrimSpace(c.OdinBaseURL) == ""
}
