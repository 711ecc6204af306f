package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/zatekoja/facilities-collector/internal/bootstrap"
	"github.com/zatekoja/facilities-collector/internal/domain/entities"
	"github.com/zatekoja/facilities-collector/internal/infrastructure/observability"
	"github.com/zatekoja/facilities-collector/pkg/config"
)

func main() {
	var domainsFlag, outFlag, intervalFlag string
	flag.StringVar(&domainsFlag, "domains", "", "comma separated domains to collect (default: every domain)")
	flag.StringVar(&outFlag, "out", "-", "file to write the collection result to, - for stdout")
	flag.StringVar(&intervalFlag, "interval", "", "repeat interval (e.g. 24h); runs once when empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	observability.InitLogger(cfg.OTEL.ServiceName+"-batch", cfg.Environment, cfg.LogLevel)

	if domains := splitList(domainsFlag); len(domains) > 0 {
		cfg.Collector.Domains = domains
	}

	interval := cfg.Collector.Interval
	if value := strings.TrimSpace(intervalFlag); value != "" {
		interval, err = time.ParseDuration(value)
		if err != nil || interval <= 0 {
			log.Fatal().Str("interval", value).Msg("interval must be a positive duration")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize metrics")
	}

	components, err := bootstrap.New(ctx, cfg, metrics)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize collector")
	}
	defer components.Close()

	for {
		result, err := components.Collection.CollectAll(ctx)
		if err != nil {
			log.Error().Err(err).Msg("collection failed")
		} else if err := writeResult(outFlag, result); err != nil {
			log.Error().Err(err).Str("out", outFlag).Msg("failed to write collection result")
		}

		if interval <= 0 {
			if err != nil || result == nil || len(result.Failed()) > 0 {
				components.Close()
				os.Exit(1)
			}
			return
		}

		log.Info().Dur("interval", interval).Msg("collection complete, waiting for next run")
		select {
		case <-ctx.Done():
			log.Info().Msg("collector shutting down")
			return
		case <-time.After(interval):
		}
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// writeResult writes the result as JSON to stdout or replaces path
// atomically, so a reader never sees a partial file
func writeResult(path string, result *entities.CollectionResult) error {
	if path == "" || path == "-" {
		return encodeResult(os.Stdout, result)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := encodeResult(tmp, result); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func encodeResult(w io.Writer, result *entities.CollectionResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}
