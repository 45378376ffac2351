package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"claimcharge/claims"
	"claimcharge/config"
	qhttp "claimcharge/http"
	"claimcharge/logging"
	"claimcharge/ml"
	"claimcharge/predictor"
)

func main() {
	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}

	// 1. Load config
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 2. Initialize logging
	logger, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 3. Load the model. A missing or corrupt artifact is fatal.
	model, err := ml.LoadModel(cfg.Model.Type, cfg.Model.Path)
	if err != nil {
		logger.Fatal("model load failed", zap.String("path", cfg.Model.Path), zap.Error(err))
	}
	if !equalSchemas(model.FeatureNames(), claims.FeatureNames()) {
		logger.Fatal("model schema does not match the claim encoding",
			zap.Strings("model", model.FeatureNames()),
			zap.Strings("expected", claims.FeatureNames()),
		)
	}
	logger.Info("model loaded",
		zap.String("type", cfg.Model.Type),
		zap.String("path", cfg.Model.Path),
		zap.Strings("features", model.FeatureNames()),
	)

	// 4. Wire the inference adapter and the assessor
	assessor := claims.NewAssessor(claims.Thresholds{
		High:   cfg.Assessment.HighThreshold,
		Medium: cfg.Assessment.MediumThreshold,
	})
	pred, err := predictor.New(model, cfg.Cache.Size, logger.Named("predictor"))
	if err != nil {
		logger.Fatal("predictor setup failed", zap.Error(err))
	}

	// 5. Watch the config for threshold changes
	watcher, err := config.Watch(configPath, logger.Named("config"), func(next *config.Config) {
		assessor.UpdateThresholds(claims.Thresholds{
			High:   next.Assessment.HighThreshold,
			Medium: next.Assessment.MediumThreshold,
		})
	})
	if err != nil {
		logger.Warn("config watcher unavailable", zap.Error(err))
	} else {
		defer watcher.Close()
	}

	// 6. Start HTTP server
	info := qhttp.ModelInfo{Type: cfg.Model.Type, Features: model.FeatureNames()}
	if forest, ok := model.(*ml.RandomForest); ok {
		info.Trees = forest.TreeCount()
	}

	api := qhttp.NewAPI(pred, assessor, info, logger.Named("api"))
	ui, err := qhttp.NewUI(cfg.UI.TemplateDir, pred, assessor, logger.Named("ui"))
	if err != nil {
		logger.Fatal("template load failed", zap.String("dir", cfg.UI.TemplateDir), zap.Error(err))
	}

	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = cfg.Http.Port
	serverConfig.Timeout = cfg.Http.Timeout
	server := qhttp.NewServer(serverConfig, api, ui, logger.Named("http"))

	go func() {
		if err := server.Start(); err != nil {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// 7. Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func equalSchemas(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
