package main

import (
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"gopkg.in/yaml.v2"

	qhttp "diapredict/http"
	"diapredict/logging"
	"diapredict/ml"
)

// Config holds the serving defaults; config.yaml overrides them.
type Config struct {
	Model struct {
		Path string `yaml:"path"`
	} `yaml:"model"`
	Http struct {
		Port      int `yaml:"port"`
		CacheSize int `yaml:"cache_size"`
	} `yaml:"http"`
	Log logging.Config `yaml:"log"`
}

func defaultConfig() *Config {
	var config Config
	config.Model.Path = "./models/diabetes.model"
	config.Http.Port = 8080
	config.Http.CacheSize = 1024
	config.Log.Level = "info"
	return &config
}

func main() {
	configPath := flag.String("config", "config.yaml", "config file path")
	flag.Parse()

	config, err := loadConfig(*configPath)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger, level := logging.New(config.Log)
	defer logger.Sync()

	// The artifact is read exactly once; a failed load is fatal and
	// the process never starts accepting requests.
	model, err := ml.LoadArtifact(config.Model.Path)
	if err != nil {
		logger.Fatal("failed to load model artifact",
			zap.String("path", config.Model.Path),
			zap.Error(err),
		)
	}
	logger.Info("model artifact loaded", zap.String("path", config.Model.Path))

	handler, err := qhttp.NewPredictHandler(model, logger, config.Http.CacheSize)
	if err != nil {
		logger.Fatal("failed to build predict handler", zap.Error(err))
	}

	serverConfig := qhttp.DefaultServerConfig()
	serverConfig.Port = config.Http.Port
	server := qhttp.NewServer(serverConfig, handler, logger)

	// The model stays fixed for the process lifetime; only the log
	// level follows config edits.
	stopWatch, err := logging.WatchConfig(*configPath, func() {
		updated, err := loadConfig(*configPath)
		if err != nil {
			logger.Warn("config reload failed", zap.Error(err))
			return
		}
		level.SetLevel(logging.ParseLevel(updated.Log.Level))
		logger.Info("log level updated", zap.String("level", updated.Log.Level))
	})
	if err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	} else {
		defer stopWatch()
	}

	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down")

	if err := server.Stop(); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}
	defer file.Close()

	if err := yaml.NewDecoder(file).Decode(config); err != nil {
		return nil, err
	}
	return config, nil
}
