package config

import (
	"os"

	pkgconfig "github.com/altera-edu/school-platform/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int

	DatabaseURL string

	JWTSecret []byte

	ESURL      string
	ESUser     string
	ESPassword string

	KafkaBrokers []string
}

func Load() Config {
	cfg := Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "student"),
		ServerPort:  pkgconfig.EnvIntDefault("SERVER_PORT", 8082),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		ESURL:      os.Getenv("ES_URL"),
		ESUser:     os.Getenv("ES_USER"),
		ESPassword: os.Getenv("ES_PASSWORD"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}
