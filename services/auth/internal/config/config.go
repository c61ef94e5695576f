package config

import (
	"os"
	"time"

	pkgconfig "github.com/altera-edu/school-platform/pkg/config"
)

type Config struct {
	ServiceName string
	ServerPort  int

	DatabaseURL string

	JWTSecret  []byte
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	FrontendURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	KafkaBrokers []string
}

func Load() Config {
	cfg := Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "auth"),
		ServerPort:  pkgconfig.EnvIntDefault("SERVER_PORT", 8081),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret:  []byte(os.Getenv("JWT_SECRET")),
		AccessTTL:  pkgconfig.EnvMillisDefault("JWT_ACCESS_TTL_MS", 15*time.Minute),
		RefreshTTL: pkgconfig.EnvMillisDefault("JWT_REFRESH_TTL_MS", 7*24*time.Hour),

		FrontendURL: pkgconfig.EnvDefault("FRONTEND_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     pkgconfig.EnvIntDefault("SMTP_PORT", 465),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     pkgconfig.EnvDefault("MAIL_FROM", "no-reply@altera.school"),

		KafkaBrokers: pkgconfig.CSV(os.Getenv("KAFKA_BROKERS")),
	}

	pkgconfig.MustNonEmpty(cfg.DatabaseURL, "DATABASE_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}
