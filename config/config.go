// Package config loads and watches the service configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Http struct {
		Port    int           `yaml:"port"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"http"`
	Model struct {
		Type string `yaml:"type"`
		Path string `yaml:"path"`
	} `yaml:"model"`
	UI struct {
		TemplateDir string `yaml:"template_dir"`
	} `yaml:"ui"`
	Assessment struct {
		HighThreshold   float64 `yaml:"high_threshold"`
		MediumThreshold float64 `yaml:"medium_threshold"`
	} `yaml:"assessment"`
	Cache struct {
		Size int `yaml:"size"`
	} `yaml:"cache"`
	Log struct {
		Level      string `yaml:"level"`
		File       string `yaml:"file"`
		MaxSizeMB  int    `yaml:"max_size_mb"`
		MaxBackups int    `yaml:"max_backups"`
	} `yaml:"log"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var config Config
	if err := yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	config.applyDefaults()
	if err := config.validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Http.Port == 0 {
		c.Http.Port = 8080
	}
	if c.Http.Timeout == 0 {
		c.Http.Timeout = 30 * time.Second
	}
	if c.Model.Type == "" {
		c.Model.Type = "random_forest"
	}
	if c.UI.TemplateDir == "" {
		c.UI.TemplateDir = "http/templates"
	}
	if c.Assessment.HighThreshold == 0 {
		c.Assessment.HighThreshold = 200000
	}
	if c.Assessment.MediumThreshold == 0 {
		c.Assessment.MediumThreshold = 80000
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 256
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.MaxSizeMB == 0 {
		c.Log.MaxSizeMB = 50
	}
	if c.Log.MaxBackups == 0 {
		c.Log.MaxBackups = 5
	}
}

func (c *Config) validate() error {
	if c.Http.Port < 1 || c.Http.Port > 65535 {
		return fmt.Errorf("invalid http port %d", c.Http.Port)
	}
	if c.Model.Path == "" {
		return fmt.Errorf("model path is required")
	}
	if c.Assessment.MediumThreshold >= c.Assessment.HighThreshold {
		return fmt.Errorf("medium threshold %.0f must be below high threshold %.0f",
			c.Assessment.MediumThreshold, c.Assessment.HighThreshold)
	}
	return nil
}

// Watcher re-reads the config file when it changes and hands every valid
// new version to onChange. Invalid versions are logged and skipped; the
// running config stays untouched.
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
}

func Watch(path string, logger *zap.Logger, onChange func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	// Watch the directory: editors replace the file on save, which drops
	// a watch held on the file itself.
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, err
	}

	w := &Watcher{watcher: watcher, done: make(chan struct{})}
	target := filepath.Clean(path)

	go func() {
		defer close(w.done)
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != target {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				config, err := Load(path)
				if err != nil {
					logger.Warn("config reload skipped", zap.Error(err))
					continue
				}
				logger.Info("config reloaded", zap.String("path", path))
				onChange(config)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("config watcher error", zap.Error(err))
			}
		}
	}()

	return w, nil
}

func (w *Watcher) Close() error {
	err := w.watcher.Close()
	<-w.done
	return err
}
