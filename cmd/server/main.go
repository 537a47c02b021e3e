package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/xtding233/recruit-engine/internal/banner"
	"github.com/xtding233/recruit-engine/internal/catalog"
	"github.com/xtding233/recruit-engine/internal/config"
	"github.com/xtding233/recruit-engine/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	var log *zap.Logger
	if cfg.Environment == "production" {
		log, err = zap.NewProduction()
	} else {
		log, err = zap.NewDevelopment()
	}
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	cat, err := catalog.LoadFile(cfg.Content.CatalogPath)
	if err != nil {
		log.Fatal("load catalog", zap.Error(err))
	}

	loader := banner.NewLoader(cfg.Content.BannerDir)
	registry := banner.NewRegistry()
	if err := loadBanners(loader, registry, cat); err != nil {
		log.Fatal("load banners", zap.Error(err))
	}

	if cfg.Content.ReloadInterval > 0 {
		watcher := banner.NewWatcher(loader, cfg.Content.ReloadInterval, func(path string) {
			log.Info("banner config changed, reloading", zap.String("path", path))
			if err := reloadBanners(loader, registry, cat, log); err != nil {
				log.Error("banner reload failed, keeping previous definitions", zap.Error(err))
			}
		})
		watcher.Start()
		defer watcher.Stop()
	}

	var store storage.Store
	if cfg.Engine.SQLitePath != "" {
		store, err = storage.NewSQLiteStore(cfg.Engine.SQLitePath)
		if err != nil {
			log.Fatal("open state store", zap.Error(err))
		}
	} else {
		log.Warn("no ENGINE_SQLITE_PATH configured, using in-memory state")
		store = storage.NewMemoryStore()
	}
	defer store.Close()

	srv := newServer(cfg, log, registry, cat, store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(requestLogger(log))
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout
	srv.routes(e)

	go func() {
		addr := listenAddr(cfg.Server.Port)
		log.Info("listening", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			log.Info("server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown", zap.Error(err))
	}
}

func loadBanners(loader *banner.Loader, registry *banner.Registry, cat catalog.Catalog) error {
	banners, err := loader.Load()
	if err != nil {
		return err
	}
	for _, b := range banners {
		if err := banner.CheckCatalog(b, cat); err != nil {
			return err
		}
		if err := registry.Upsert(b); err != nil {
			return err
		}
	}
	return nil
}

func reloadBanners(loader *banner.Loader, registry *banner.Registry, cat catalog.Catalog, log *zap.Logger) error {
	banners, err := loader.Load()
	if err != nil {
		return err
	}
	for _, b := range banners {
		if err := banner.CheckCatalog(b, cat); err != nil {
			return err
		}
	}
	skipped, err := registry.ReplaceAll(banners)
	if err != nil {
		return err
	}
	for _, id := range skipped {
		log.Info("banner already pulled against, only active flag applied", zap.String("banner_id", id))
	}
	return nil
}

// requestLogger logs one line per request through zap.
func requestLogger(log *zap.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogMethod:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			log.Info("request",
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			)
			return nil
		},
	})
}

func listenAddr(port int) string {
	return fmt.Sprintf(":%d", port)
}
