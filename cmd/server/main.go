package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"allure/config"
	"allure/internal/database"
	"allure/internal/router"
	"allure/internal/scheduler"

	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.Load()
	if cfg.Server.Env == "production" {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		logrus.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		logrus.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db, &cfg.Admin)
	if err := database.SeedSettings(db); err != nil {
		logrus.Fatalf("seed settings: %v", err)
	}

	sweeper := scheduler.NewSweeper(&cfg.Escrow, db)
	if err := sweeper.Start(); err != nil {
		logrus.Fatalf("sweeper: %v", err)
	}

	engine := router.Setup(cfg, db)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logrus.Infof("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("shutting down...")
	sweeper.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatalf("server shutdown: %v", err)
	}
	logrus.Info("server stopped")
}
