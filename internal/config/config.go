package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config reúne as configurações do serviço de inventário
type Config struct {
	Port            string
	ServiceName     string
	ServiceVersion  string
	LogLevel        string
	OTelEnabled     bool
	OTLPEndpoint    string
	HistoryLimit    int
	RecentDefault   int
	ShutdownTimeout time.Duration
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("SERVICE_NAME", "inventory-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_ENABLED", false)
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4318")
	v.SetDefault("HISTORY_LIMIT", 0)
	v.SetDefault("RECENT_OPERATIONS_DEFAULT", 10)
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
}

// Load lê a configuração das variáveis de ambiente e, se informado, de um arquivo.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("PORT"),
		ServiceName:     v.GetString("SERVICE_NAME"),
		ServiceVersion:  v.GetString("SERVICE_VERSION"),
		LogLevel:        v.GetString("LOG_LEVEL"),
		OTelEnabled:     v.GetBool("OTEL_ENABLED"),
		OTLPEndpoint:    v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		HistoryLimit:    v.GetInt("HISTORY_LIMIT"),
		RecentDefault:   v.GetInt("RECENT_OPERATIONS_DEFAULT"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit)
	}
	if c.RecentDefault < 0 {
		return fmt.Errorf("RECENT_OPERATIONS_DEFAULT must not be negative, got %d", c.RecentDefault)
	}
	return nil
}
