package config

import (
	"os"

	pkgconfig "github.com/altera-edu/school-platform/pkg/config"
)

type Config struct {
	ListenAddr string

	AuthURL    string
	StudentURL string
	TeacherURL string

	JWTSecret []byte

	AllowOrigins []string
}

func Load() *Config {
	cfg := &Config{
		ListenAddr: pkgconfig.EnvDefault("GATEWAY_ADDR", ":8080"),

		AuthURL:    os.Getenv("AUTH_URL"),
		StudentURL: os.Getenv("STUDENT_URL"),
		TeacherURL: os.Getenv("TEACHER_URL"),

		JWTSecret: []byte(os.Getenv("JWT_SECRET")),

		AllowOrigins: pkgconfig.CSV(pkgconfig.EnvDefault("CORS_ALLOW_ORIGINS", "http://localhost:3000")),
	}

	pkgconfig.MustNonEmpty(cfg.AuthURL, "AUTH_URL")
	pkgconfig.MustNonEmpty(cfg.StudentURL, "STUDENT_URL")
	pkgconfig.MustNonEmpty(cfg.TeacherURL, "TEACHER_URL")
	pkgconfig.MustNonEmptyBytes(cfg.JWTSecret, "JWT_SECRET")

	return cfg
}
