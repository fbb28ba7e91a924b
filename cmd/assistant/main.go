// cmd/assistant/main.go
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"weather-assistant/internal/answer"
	"weather-assistant/internal/common/cache"
	"weather-assistant/internal/common/config"
	commonerrors "weather-assistant/internal/common/errors"
	"weather-assistant/internal/common/logger"
	"weather-assistant/internal/llm"
	"weather-assistant/internal/query"
	"weather-assistant/internal/weather"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	log.Info("Starting weather assistant...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Init Redis cache (optional) ---
	var store *cache.RedisClient
	if cfg.Cache.Enabled {
		store, err = cache.NewRedis(cfg.Cache)
		if err == nil {
			err = store.Ping(ctx)
		}
		if err != nil {
			log.Warn("redis unavailable, continuing without response cache", zap.Error(err))
			store = nil
		} else {
			defer store.Close()
			log.Info("Redis connected successfully")
		}
	}

	// --- Health & Metrics Server ---
	if cfg.Metrics.Enabled {
		go func() {
			mux := http.NewServeMux()
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusOK)
				json.NewEncoder(w).Encode(map[string]string{
					"status": "healthy",
					"time":   time.Now().Format(time.RFC3339),
				})
			})
			mux.Handle("/metrics", promhttp.Handler())
			log.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.Address))
			if err := http.ListenAndServe(cfg.Metrics.Address, mux); err != nil {
				log.Error("Health/Metrics server failed", zap.Error(err))
			}
		}()
	}

	// --- Wire the query pipeline ---
	schema, err := query.NewSchema()
	if err != nil {
		log.Fatal("schema compilation failed", zap.Error(err))
	}

	extractor := llm.NewClient(&llm.Config{
		BaseURL: cfg.LLM.BaseURL,
		Model:   cfg.LLM.Model,
		Timeout: config.GetDuration(cfg.LLM.Timeout),
	}, log)

	interpreter := query.NewInterpreter(schema, extractor, cfg.Interpreter.MaxRepairAttempts, log)

	weatherClient := weather.NewClient(&weather.Config{
		BaseURL:  cfg.Weather.BaseURL,
		Timeout:  config.GetDuration(cfg.Weather.Timeout),
		CacheTTL: config.GetDuration(cfg.Weather.CacheTTL),
	}, store, log)

	log.Info("All components initialized")

	runREPL(ctx, interpreter, weatherClient, cfg.Weather.ForecastDays, log)

	log.Info("Weather assistant stopped gracefully")
}

// runREPL reads questions from stdin until EOF or a shutdown signal.
func runREPL(ctx context.Context, interpreter *query.Interpreter, weatherClient *weather.Client, forecastDays int, log *zap.Logger) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Println("Ask me about the weather (Ctrl+D to quit).")
	fmt.Print("> ")

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if text := strings.TrimSpace(line); text != "" {
				fmt.Println(handleQuestion(ctx, interpreter, weatherClient, forecastDays, text, log))
			}
			fmt.Print("> ")
		}
	}
}

// handleQuestion runs a single question through interpret, fetch, normalize
// and format, mapping each failure class to its user-facing reply.
func handleQuestion(ctx context.Context, interpreter *query.Interpreter, weatherClient *weather.Client, forecastDays int, text string, log *zap.Logger) string {
	parsed, err := interpreter.Interpret(ctx, text)
	if err != nil {
		log.Error("interpretation failed", zap.Error(err))
		if commonerrors.CodeOf(err) == commonerrors.ErrCodeExtractionFailed {
			return "Sorry, I couldn't understand your question. Try asking about a specific place and time."
		}
		return "Sorry, I couldn't reach the language model. Please try again later."
	}

	payload, err := weatherClient.Fetch(ctx, parsed.Location())
	if err != nil {
		log.Error("weather fetch failed", zap.Error(err), zap.String("location", parsed.Location()))
		return "Sorry, I couldn't reach the weather service. Please try again later."
	}

	snapshot, err := weather.Normalize(payload, forecastDays)
	if err != nil {
		log.Error("weather payload unusable", zap.Error(err), zap.String("location", parsed.Location()))
		return "Sorry, the weather service returned something I couldn't read. Please try again later."
	}

	return answer.Format(parsed, snapshot)
}
