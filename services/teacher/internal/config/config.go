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

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	MailFrom     string

	KafkaBrokers []string
}

func Load() Config {
	cfg := Config{
		ServiceName: pkgconfig.EnvDefault("SERVICE_NAME", "teacher"),
		ServerPort:  pkgconfig.EnvIntDefault("SERVER_PORT", 8083),

		DatabaseURL: os.Getenv("DATABASE_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

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
