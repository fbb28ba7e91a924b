// internal/common/config/config.go
package config

// Config is the main application configuration struct.
type Config struct {
	App         AppConfig         `mapstructure:"app"`
	LLM         LLMConfig         `mapstructure:"llm"`
	Weather     WeatherConfig     `mapstructure:"weather"`
	Interpreter InterpreterConfig `mapstructure:"interpreter"`
	Cache       CacheConfig       `mapstructure:"cache"`
	Metrics     MetricsConfig     `mapstructure:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// LLMConfig holds settings for the structured-extraction chat endpoint.
type LLMConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // milliseconds
}

// WeatherConfig holds settings for the weather provider transport.
type WeatherConfig struct {
	BaseURL      string `mapstructure:"base_url"`
	Timeout      int    `mapstructure:"timeout"` // milliseconds
	ForecastDays int    `mapstructure:"forecast_days"`
	CacheTTL     int    `mapstructure:"cache_ttl"` // milliseconds
}

// InterpreterConfig bounds the extraction repair loop.
type InterpreterConfig struct {
	MaxRepairAttempts int `mapstructure:"max_repair_attempts"`
}

// CacheConfig holds Redis settings for the weather response cache.
type CacheConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}
