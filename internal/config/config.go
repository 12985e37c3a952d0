package config

import "github.com/caarlos0/env/v10"

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort          string `env:"HTTP_PORT" envDefault:"8080"`
	DatabaseURL       string `env:"DATABASE_URL"`
	DBMaxConns        int    `env:"DB_MAX_CONNS" envDefault:"4"`
	CandidatesFile    string `env:"CANDIDATES_FILE"`
	RedisAddr         string `env:"REDIS_ADDR"`
	RedisPassword     string `env:"REDIS_PASSWORD"`
	RedisDB           int    `env:"REDIS_DB" envDefault:"0"`
	SessionTTLMinutes int    `env:"SESSION_TTL_MINUTES" envDefault:"60"`
	SessionRateLimit  int    `env:"SESSION_RATE_LIMIT" envDefault:"30"`
	RateWindowSeconds int    `env:"SESSION_RATE_WINDOW_SECONDS" envDefault:"60"`
	LogJSON           bool   `env:"LOG_JSON" envDefault:"false"`
	LogDebug          bool   `env:"LOG_DEBUG" envDefault:"false"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
