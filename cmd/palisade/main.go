package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "palisade",
		Usage:   "spam detection daemon (keeps the riffraff out)",
		Version: versioninfo.Short(),
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the analysis API",
			Value:   ":8700",
			EnvVars: []string{"PALISADE_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics",
			Value:   ":8701",
			EnvVars: []string{"PALISADE_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the shared cache and dispatch queue; in-process fallbacks are used when empty",
			EnvVars: []string{"PALISADE_REDIS_URL", "REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "database-url",
			Usage:   "database for flagged-post persistence",
			Value:   "sqlite://data/palisade/palisade.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.StringFlag{
			Name:    "rules-file",
			Usage:   "path to a ruleset JSON file; the embedded default ruleset is used when empty",
			EnvVars: []string{"PALISADE_RULES_FILE"},
		},
		&cli.StringFlag{
			Name:    "twitter-host",
			Usage:   "base URL of the twitter data API",
			Value:   "https://twitter241.p.rapidapi.com",
			EnvVars: []string{"TWITTER_BASE_URL"},
		},
		&cli.StringFlag{
			Name:    "twitter-api-key",
			Usage:   "API key for the twitter data API",
			EnvVars: []string{"TWITTER_BEARER_TOKEN"},
		},
		&cli.IntFlag{
			Name:    "twitter-rate-limit",
			Usage:   "max requests per second to the twitter data API",
			Value:   5,
			EnvVars: []string{"PALISADE_TWITTER_RATE_LIMIT"},
		},
		&cli.IntFlag{
			Name:    "dispatch-queue-size",
			Usage:   "buffer size of the in-process deep analysis queue",
			Value:   256,
			EnvVars: []string{"PALISADE_DISPATCH_QUEUE_SIZE"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		// Enable OTLP HTTP exporter
		// For relevant environment variables:
		// https://pkg.go.dev/go.opentelemetry.io/otel/exporters/otlp/otlptrace#readme-environment-variables
		// At a minimum, you need to set
		// OTEL_EXPORTER_OTLP_ENDPOINT=http://localhost:4318
		if ep := os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"); ep != "" {
			logger.Info("setting up trace exporter", "endpoint", ep)
			exp, err := otlptracehttp.New(ctx)
			if err != nil {
				return fmt.Errorf("failed to create trace exporter: %w", err)
			}
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				if err := exp.Shutdown(ctx); err != nil {
					logger.Error("failed to shutdown trace exporter", "err", err)
				}
			}()

			tp := tracesdk.NewTracerProvider(
				tracesdk.WithBatcher(exp),
				tracesdk.WithResource(resource.NewWithAttributes(
					semconv.SchemaURL,
					semconv.ServiceNameKey.String("palisade"),
					attribute.String("env", os.Getenv("ENVIRONMENT")),
					attribute.String("environment", os.Getenv("ENVIRONMENT")),
					attribute.Int64("ID", 1),
				)),
			)
			otel.SetTracerProvider(tp)
		}

		srv, err := NewServer(Config{
			RedisURL:          cctx.String("redis-url"),
			DatabaseURL:       cctx.String("database-url"),
			RulesFile:         cctx.String("rules-file"),
			TwitterHost:       cctx.String("twitter-host"),
			TwitterAPIKey:     cctx.String("twitter-api-key"),
			TwitterRateLimit:  cctx.Int("twitter-rate-limit"),
			DispatchQueueSize: cctx.Int("dispatch-queue-size"),
			Logger:            logger,
		})
		if err != nil {
			return err
		}

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				logger.Error("failed to start metrics endpoint", "err", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		return srv.RunAPI(ctx, cctx.String("bind"))
	},
}
