package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/meridian-social/palisade/cachestore"
	"github.com/meridian-social/palisade/dispatch"
	"github.com/meridian-social/palisade/engine"
	"github.com/meridian-social/palisade/flagstore"
	"github.com/meridian-social/palisade/rules"
	"github.com/meridian-social/palisade/social"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogGorm "github.com/orandin/slog-gorm"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	slogecho "github.com/samber/slog-echo"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type Server struct {
	logger     *slog.Logger
	engine     *engine.Engine
	rulesStore *rules.Store
	echo       *echo.Echo
	localQueue *dispatch.ChanQueue
}

type Config struct {
	RedisURL          string
	DatabaseURL       string
	RulesFile         string
	TwitterHost       string
	TwitterAPIKey     string
	TwitterRateLimit  int
	DispatchQueueSize int
	Logger            *slog.Logger
}

func NewServer(config Config) (*Server, error) {
	logger := config.Logger
	if logger == nil {
		logger = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
	}

	var cache cachestore.CacheStore
	var queue dispatch.Queue
	var localQueue *dispatch.ChanQueue
	if config.RedisURL != "" {
		csh, err := cachestore.NewRedisCacheStore(config.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("initializing redis cachestore: %w", err)
		}
		cache = csh

		q, err := dispatch.NewRedisQueue(config.RedisURL, "palisade:deep-analysis")
		if err != nil {
			return nil, fmt.Errorf("initializing redis dispatch queue: %w", err)
		}
		queue = q
		logger.Info("using redis for shared cache and dispatch queue")
	} else {
		cache = cachestore.NewMemCacheStore(5_000, time.Hour)
		localQueue = dispatch.NewChanQueue(config.DispatchQueueSize, logger)
		queue = localQueue
		logger.Info("redis not configured, using in-process cache and dispatch queue")
	}

	var source rules.Source
	if config.RulesFile != "" {
		source = rules.FileSource{Path: config.RulesFile}
		logger.Info("loading ruleset from file", "path", config.RulesFile)
	} else {
		source = rules.StaticSource{}
		logger.Info("using embedded default ruleset")
	}
	rulesStore := rules.NewStore(cache, source, logger)

	db, err := setupDatabase(config.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("initializing database: %w", err)
	}
	flags, err := flagstore.NewGormFlagStore(db)
	if err != nil {
		return nil, fmt.Errorf("initializing flagstore: %w", err)
	}

	twitter := social.NewTwitterClient(social.TwitterClientConfig{
		Host:      config.TwitterHost,
		APIKey:    config.TwitterAPIKey,
		RateLimit: config.TwitterRateLimit,
	}, cache, logger)

	eng := &engine.Engine{
		Logger: logger,
		Rules:  rulesStore,
		Flags:  flags,
		Queue:  queue,
		Clients: map[social.Platform]social.Client{
			social.PlatformTwitter: twitter,
		},
	}

	s := &Server{
		logger:     logger,
		engine:     eng,
		rulesStore: rulesStore,
		localQueue: localQueue,
	}

	s.echo = s.buildEcho()

	return s, nil
}

func (s *Server) buildEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(slogecho.New(s.logger))
	e.Use(middleware.Recover())
	e.POST("/api/analyze", s.handleAnalyze)
	e.GET("/health", s.handleHealth)
	e.POST("/admin/rules/invalidate", s.handleInvalidateRules)
	e.GET("/admin/flags/recent", s.handleRecentFlags)
	return e
}

func setupDatabase(dburl string) (*gorm.DB, error) {
	var dial gorm.Dialector
	switch {
	case strings.HasPrefix(dburl, "sqlite://"):
		path := dburl[len("sqlite://"):]
		if !strings.Contains(path, ":?") {
			os.MkdirAll(filepath.Dir(path), os.ModePerm)
		}
		dial = sqlite.Open(path)
	case strings.HasPrefix(dburl, "postgresql://"), strings.HasPrefix(dburl, "postgres://"):
		dial = postgres.Open(dburl)
	default:
		return nil, fmt.Errorf("unsupported or unrecognized DATABASE_URL value")
	}
	return gorm.Open(dial, &gorm.Config{
		Logger: slogGorm.New(),
	})
}

// Serves the analysis API until the context is canceled, then shuts down
// gracefully. If the in-process dispatch queue is in use, a consumer
// goroutine drains it for the lifetime of the server.
func (s *Server) RunAPI(ctx context.Context, listen string) error {
	if s.localQueue != nil {
		go s.runLocalConsumer(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.echo.Start(listen)
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	case <-ctx.Done():
		s.logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}

// Placeholder consumer for deployments without redis: deep analysis tasks
// have nowhere to go, so they are logged and counted only.
func (s *Server) runLocalConsumer(ctx context.Context) {
	for {
		select {
		case task := <-s.localQueue.Tasks():
			s.logger.Info("deep analysis task received (no external worker configured)",
				"requestId", task.RequestID,
				"user", task.UserID,
				"score", task.Score,
			)
		case <-ctx.Done():
			return
		}
	}
}

func (s *Server) RunMetrics(listen string) error {
	http.Handle("/metrics", promhttp.Handler())
	return http.ListenAndServe(listen, nil)
}
