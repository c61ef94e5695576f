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
	teachercfg "github.com/altera-edu/school-platform/services/teacher/internal/config"
	"github.com/altera-edu/school-platform/services/teacher/internal/httpserver"
	"github.com/altera-edu/school-platform/services/teacher/internal/models"
	"github.com/altera-edu/school-platform/services/teacher/internal/repo"
	"github.com/altera-edu/school-platform/services/teacher/internal/service"
)

func main() {
	if err := godotenv.Load("services/teacher/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := teachercfg.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Teacher{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	issuer := &tokens.Issuer{Secret: cfg.JWTSecret}

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

	teacherSvc := &service.TeacherService{
		Repo:   &repo.GormRepo{DB: db},
		Mailer: &pkgmail.Async{Mailer: mailer, Logger: logger},
		Events: publisher,
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		TeacherHandler: &httpserver.TeacherHTTP{Svc: teacherSvc},
		Issuer:         issuer,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		log.Printf("teacher listening on %s", srv.Addr)
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

	log.Println("teacher stopped")
}
