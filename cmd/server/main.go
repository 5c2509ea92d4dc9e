package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/smmonirhasan92/man2man-sub004/config"
	"github.com/smmonirhasan92/man2man-sub004/internal/cache"
	"github.com/smmonirhasan92/man2man-sub004/internal/database"
	"github.com/smmonirhasan92/man2man-sub004/internal/domain"
	"github.com/smmonirhasan92/man2man-sub004/internal/repository"
	"github.com/smmonirhasan92/man2man-sub004/internal/router"
	"github.com/smmonirhasan92/man2man-sub004/internal/scheduler"
	"github.com/smmonirhasan92/man2man-sub004/internal/service"
	"github.com/smmonirhasan92/man2man-sub004/internal/ws"
	"github.com/smmonirhasan92/man2man-sub004/pkg/cloudstore"
)

func main() {
	cfg := config.Load()

	db, err := database.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}
	database.SeedAdmin(db)
	database.SeedPlans(db)

	settingRepo := repository.NewSettingRepository(db)
	if err := settingRepo.SeedDefaults(map[string][2]string{
		domain.SettingTaskCooldownSeconds: {"10", "task"},
		domain.SettingWithdrawMinCents:    {"10000", "wallet"},
		domain.SettingDepositMinCents:     {"5000", "wallet"},
	}); err != nil {
		log.Printf("[seed] settings: %v", err)
	}

	// Redis is the primary cooldown/counter guard; the service falls back
	// to DB timestamps when it is unavailable.
	var c *cache.Cache
	if c, err = cache.New(&cfg.Redis); err != nil {
		log.Printf("[redis] unavailable, task guards fall back to db: %v", err)
		c = nil
	}

	cloud := cloudstore.Noop()
	if cfg.Cloudinary.CloudName != "" {
		cloud, err = cloudstore.NewClientFromParams(cfg.Cloudinary.CloudName, cfg.Cloudinary.APIKey, cfg.Cloudinary.APISecret)
		if err != nil {
			log.Fatalf("cloudstore: %v", err)
		}
	}

	hub := ws.NewHub()
	audit := service.NewAuditService(repository.NewAuditLogRepository(db))
	defer audit.Close()

	cron := scheduler.New(repository.NewPlanRepository(db))
	cron.Start()
	defer cron.Stop()

	engine := router.Setup(router.Deps{
		Cfg:   cfg,
		DB:    db,
		Cache: c,
		Cloud: cloud,
		Hub:   hub,
		Audit: audit,
	})
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		log.Printf("server listening on :%s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("server shutdown:", err)
	}
	if c != nil {
		_ = c.Close()
	}
	log.Println("server stopped")
}
