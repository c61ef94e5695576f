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
	loggingmw "github.com/altera-edu/school-platform/pkg/middleware/logging"
	"github.com/altera-edu/school-platform/pkg/tokens"
	studentcfg "github.com/altera-edu/school-platform/services/student/internal/config"
	"github.com/altera-edu/school-platform/services/student/internal/httpserver"
	"github.com/altera-edu/school-platform/services/student/internal/models"
	"github.com/altera-edu/school-platform/services/student/internal/repo"
	"github.com/altera-edu/school-platform/services/student/internal/search"
	"github.com/altera-edu/school-platform/services/student/internal/service"
)

func main() {
	if err := godotenv.Load("services/student/.env"); err != nil {
		log.Printf("warning: could not load .env: %v", err)
	}

	cfg := studentcfg.Load()

	logger := logging.New(os.Getenv("LOG_LEVEL")).With("service", cfg.ServiceName)
	slog.SetDefault(logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(ctx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db open: %v", err)
	}
	if err := db.AutoMigrate(&models.Student{}, &models.StudentGuardian{}); err != nil {
		log.Fatalf("db migrate: %v", err)
	}

	issuer := &tokens.Issuer{Secret: cfg.JWTSecret}

	var publisher events.Publisher = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		kp := events.NewKafkaPublisher(cfg.KafkaBrokers, events.TopicSchoolEvents)
		defer kp.Close()
		publisher = kp
	}

	// Search stays optional: without an ES_URL the service falls back to SQL
	// matching instead of refusing to start.
	indexer := &search.Indexer{}
	if cfg.ESURL != "" {
		es, err := search.NewClient(cfg.ESURL, cfg.ESUser, cfg.ESPassword)
		if err != nil {
			log.Fatalf("elasticsearch: %v", err)
		}
		indexer.ES = es
	}

	studentSvc := &service.StudentService{
		Repo:    &repo.GormRepo{DB: db},
		Indexer: indexer,
		Events:  publisher,
	}

	e := echo.New()
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e, &httpserver.Deps{
		StudentHandler: &httpserver.StudentHTTP{Svc: studentSvc},
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
		log.Printf("student listening on %s", srv.Addr)
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

	log.Println("student stopped")
}
