package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	apiconfig "landscape_underwriting/pkg/api/config"
	"landscape_underwriting/pkg/api/underwriting"
	"landscape_underwriting/pkg/core/engine"
	"landscape_underwriting/pkg/core/sensitivity"
	"landscape_underwriting/pkg/core/store"
)

// AppConfig is the server configuration loaded from config/engine.yaml.
type AppConfig struct {
	Listen string        `yaml:"listen"`
	Engine engine.Config `yaml:"engine"`
}

func loadConfig(path string, logger *zap.Logger) AppConfig {
	cfg := AppConfig{Listen: ":8080"}
	data, err := os.ReadFile(path)
	if err != nil {
		logger.Warn("config file not found, using defaults", zap.String("path", path))
		return cfg
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		logger.Warn("config file unparseable, using defaults", zap.String("path", path), zap.Error(err))
	}
	if cfg.Listen == "" {
		cfg.Listen = ":8080"
	}
	return cfg
}

func main() {
	// Load environment variables
	godotenv.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		os.Exit(1)
	}
	defer logger.Sync()

	cfg := loadConfig("config/engine.yaml", logger)

	ctx := context.Background()
	var properties underwriting.PropertyLoader = store.NewPropertyRepo()
	var results underwriting.ResultSaver = store.NewUnderwritingRepo()
	if err := store.InitDB(ctx); err != nil {
		// The engine itself needs no database; requests that require a
		// property fetch will fail individually until one is configured.
		logger.Warn("database unavailable, property lookup and persistence disabled", zap.Error(err))
		results = nil
	}
	defer store.Close()

	provider := engine.Select(cfg.Engine, logger)
	sensEngine := sensitivity.NewEngine(logger)
	handler := underwriting.NewHandler(provider, sensEngine, properties, results, logger)

	configHandler := apiconfig.NewHandler(provider)

	http.HandleFunc("/api/underwriting/metrics", handler.HandleMetrics)
	http.HandleFunc("/api/underwriting/sensitivity", handler.HandleSensitivity)
	http.HandleFunc("/api/config", configHandler.HandleConfig)
	http.HandleFunc("/api/config/drivers", configHandler.HandleDrivers)
	http.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	logger.Info("underwriting API starting",
		zap.String("listen", cfg.Listen),
		zap.String("backend", provider.Name()))

	if err := http.ListenAndServe(cfg.Listen, nil); err != nil {
		logger.Fatal("server failed to start", zap.Error(err))
	}
}
