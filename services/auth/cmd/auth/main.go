package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	pkgdb "github.com/altera-edu/school-platform/pkg/db"
	"github.com/altera-edu/school-platform/pkg/events"
	"github.com/altera-edu/school-platform/pkg/logging"
	pkgmail "github.com/altera-edu/school-platform/pkg/mail"
	loggingmw "github.com/altera-edu/school-platform/pkg/middleware/logging"
	"github.com/altera-edu/school-platform/pkg/tokens"
	authcfg "github.com/altera-edu/school-platform/services/auth/internal/config"
	"github.com/altera-edu/school-platform/services/auth/internal/httpserver"
	"github.com/altera-edu/school-platform/services/auth/internal/models"
	"github.com/altera-edu/school-platform/services/auth/internal/repo"
	"github.com/altera-edu/school-platform/services/auth/internal/service"
)

const purgeInterval = time.Hour

func main() {
	if err := godotenv.Load("services/auth/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := authcfg.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.PasswordResetToken{}, &models.BlacklistedToken{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	issuer := &tokens.Issuer{
		Secret:     cfg.JWTSecret,
		AccessTTL:  cfg.AccessTTL,
		RefreshTTL: cfg.RefreshTTL,
	}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, events.TopicSchoolEvents)
		defer kp.Close()
		publisher = kp
	}

	var mailer pkgmail.Mailer = pkgmail.Noop{}
	if cfg.SMTPHost != "" {
		mailer = &pkgmail.SMTPMailer{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUsername,
			Password: cfg.SMTPPassword,
			From:     cfg.MailFrom,
		}
	}
	dispatch := &pkgmail.Async{Mailer: mailer, Logger: logger}

	gormRepo := &repo.GormRepo{DB: db}
	authSvc := &service.AuthService{Repo: gormRepo, Issuer: issuer, Events: publisher}
	resetSvc := &service.ResetService{
		Repo:        gormRepo,
		Mailer:      dispatch,
		Events:      publisher,
		FrontendURL: cfg.FrontendURL,
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		AuthHandler: &httpserver.AuthHTTP{Svc: authSvc, Reset: resetSvc},
		Issuer:      issuer,
		Repo:        gormRepo,
	})

	purgeCtx, purgeCancel := context.WithCancel(logging.IntoContext(context.Background(), logger))
	defer purgeCancel()
	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				authSvc.PurgeExpired(purgeCtx)
			case <-purgeCtx.Done():
				return
			}
		}
	}()

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("auth listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}

	log.Println("auth stopped")
}
