package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"weather-assistant/internal/common/cache"
	commonerrors "weather-assistant/internal/common/errors"
	"weather-assistant/internal/common/metrics"

	"go.uber.org/zap"
)

type Config struct {
	BaseURL  string
	Timeout  time.Duration
	CacheTTL time.Duration
}

// Client is the weather provider transport. It owns the response cache;
// cache failures degrade to a direct fetch rather than failing the query.
type Client struct {
	config *Config
	client *http.Client
	store  *cache.RedisClient
	logger *zap.Logger
}

// NewClient builds a provider client. store may be nil, which disables
// caching entirely.
func NewClient(config *Config, store *cache.RedisClient, log *zap.Logger) *Client {
	return &Client{
		config: config,
		client: &http.Client{
			Timeout: config.Timeout,
		},
		store:  store,
		logger: log.With(zap.String("component", "weather")),
	}
}

// Fetch retrieves the raw provider payload for a location, consulting the
// response cache first when one is configured. Network and decode failures
// are transport failures.
func (c *Client) Fetch(ctx context.Context, location string) (map[string]interface{}, error) {
	key := cacheKey(location)
	if c.store != nil {
		if payload, ok := c.lookupCache(ctx, key); ok {
			return payload, nil
		}
	}

	endpoint := fmt.Sprintf("%s/%s?format=j1", strings.TrimRight(c.config.BaseURL, "/"), url.PathEscape(location))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, commonerrors.NewTransportError("weather", fmt.Errorf("build request: %w", err))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return nil, commonerrors.NewTransportError("weather", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return nil, commonerrors.NewTransportError("weather", fmt.Errorf("status %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return nil, commonerrors.NewTransportError("weather", fmt.Errorf("read response: %w", err))
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(body, &payload); err != nil {
		metrics.WeatherFetches.WithLabelValues("error").Inc()
		return nil, commonerrors.NewTransportError("weather", fmt.Errorf("decode response: %w", err))
	}
	metrics.WeatherFetches.WithLabelValues("ok").Inc()

	if c.store != nil {
		if err := c.store.Set(ctx, key, body, c.config.CacheTTL); err != nil {
			c.logger.Warn("cache store failed", zap.Error(err))
		}
	}

	return payload, nil
}

func (c *Client) lookupCache(ctx context.Context, key string) (map[string]interface{}, bool) {
	cached, err := c.store.Get(ctx, key)
	if err != nil {
		if !cache.IsMiss(err) {
			c.logger.Warn("cache lookup failed, fetching directly", zap.Error(err))
		}
		metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var payload map[string]interface{}
	if err := json.Unmarshal([]byte(cached), &payload); err != nil {
		metrics.WeatherCacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.WeatherCacheLookups.WithLabelValues("hit").Inc()
	return payload, true
}

func cacheKey(location string) string {
	return "weather:" + strings.ToLower(strings.TrimSpace(location))
}
