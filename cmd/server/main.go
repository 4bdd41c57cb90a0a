package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmehra2102/prod-golang-projects/medassist/internal/config"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/diagnosis"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/domain/patient"
	v1 "github.com/dmehra2102/prod-golang-projects/medassist/internal/handler/v1"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/llm"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/repository/memory"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/repository/postgres"
	"github.com/dmehra2102/prod-golang-projects/medassist/internal/service"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/database"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/logger"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/metrics"
	"github.com/dmehra2102/prod-golang-projects/medassist/pkg/tracer"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "medassist: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.App, cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx := context.Background()
	tp, err := tracer.Init(ctx, cfg.Tracing, cfg.App.Version)
	if err != nil {
		return fmt.Errorf("initializing tracing: %w", err)
	}

	m := metrics.NewCollector(cfg.App.Name)

	var (
		patientRepo patient.Repository
		historyRepo diagnosis.Repository
		db          *gorm.DB
		health      v1.HealthChecker
	)
	if cfg.Database.Enabled {
		db, err = database.Connect(cfg.Database)
		if err != nil {
			return err
		}
		if err := database.Migrate(db, log); err != nil {
			return err
		}
		patientRepo = postgres.NewPatientRepository(db, m)
		historyRepo = postgres.NewDiagnosisRepository(db, m)
		health = database.Pinger{DB: db}
	} else {
		log.Warn("database disabled; patients and history are kept in memory")
		patientRepo = memory.NewPatientRepository()
		historyRepo = memory.NewDiagnosisRepository()
	}

	jwtManager := auth.NewJWTManager(cfg.JWT)
	model := llm.NewClient(cfg.Model, log)
	if !model.Enabled() {
		log.Info("GEMINI_API_KEY not set; diagnoses come from the rule engine")
	}

	recorder := service.NewHistoryRecorder(historyRepo, cfg.History.BufferSize, m, log)
	pharmacySvc := service.NewPharmacyService(m)

	router := v1.NewRouter(v1.Dependencies{
		Config:    cfg,
		Diagnosis: service.NewDiagnosisService(model, cfg.Model.Timeout, pharmacySvc, recorder, m, log),
		Patients:  service.NewPatientService(patientRepo, historyRepo, jwtManager, cfg.History.PageSize, m, log),
		Pharmacy:  pharmacySvc,
		Auth:      service.NewAuthService(cfg.Clinician, jwtManager, log),
		JWT:       jwtManager,
		Metrics:   m,
		DB:        health,
		Log:       log,
	})

	server := &http.Server{
		Addr:              cfg.Server.Address(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("server listening",
			zap.String("addr", server.Addr),
			zap.Bool("model", model.Enabled()),
			zap.Bool("database", cfg.Database.Enabled),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case sig := <-stop:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
	// Pending history writes need the database, so drain before closing it.
	_ = recorder.Shutdown(shutdownCtx)
	if err := tp.Shutdown(shutdownCtx); err != nil {
		log.Warn("tracer shutdown failed", zap.Error(err))
	}
	if db != nil {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}

	log.Info("server stopped")
	return nil
}
