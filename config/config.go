package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/segment"
)

// Движки разбиения
const (
	EngineNative = "native"
	EngineGoCV   = "gocv"
)

type Config struct {
	HTTPAddr       string
	TelegramToken  string
	Engine         string
	DefaultPolicy  entity.Policy
	Padding        int
	ThresholdMode  segment.ThresholdMode
	MergeOverlaps  bool
	MaxConcurrent  int
	AcquireTimeout time.Duration
	MaxUploadBytes int64
	JPEGQuality    int
	LogLevel       slog.Level
	LogFormat      string
}

func Load() (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()
	return FromEnv(os.Getenv)
}

// FromEnv собирает конфигурацию из переменных окружения через getenv
func FromEnv(getenv func(string) string) (*Config, error) {
	p := parser{getenv: getenv}

	cfg := &Config{
		HTTPAddr:       p.getString("HTTP_ADDR", ":8000"),
		TelegramToken:  getenv("TELEGRAM_TOKEN"),
		Engine:         strings.ToLower(p.getString("ENGINE", EngineNative)),
		Padding:        p.getInt("PADDING", segment.DefaultConfig().Padding),
		ThresholdMode:  segment.ThresholdMode(strings.ToLower(p.getString("THRESHOLD_MODE", string(segment.ThresholdAdaptive)))),
		MergeOverlaps:  p.getBool("MERGE_OVERLAPS", false),
		MaxConcurrent:  p.getInt("MAX_CONCURRENT", 4),
		AcquireTimeout: p.getDuration("ACQUIRE_TIMEOUT", 5*time.Second),
		MaxUploadBytes: int64(p.getInt("MAX_UPLOAD_MB", 20)) << 20,
		JPEGQuality:    p.getInt("JPEG_QUALITY", 90),
		LogFormat:      strings.ToLower(p.getString("LOG_FORMAT", "text")),
	}
	if p.err != nil {
		return nil, p.err
	}

	policy, err := entity.ParsePolicy(getenv("DEFAULT_POLICY"))
	if err != nil {
		return nil, fmt.Errorf("DEFAULT_POLICY: %w", err)
	}
	cfg.DefaultPolicy = policy

	if err := cfg.LogLevel.UnmarshalText([]byte(p.getString("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("LOG_LEVEL: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Segment возвращает параметры конвейера с учётом окружения
func (c *Config) Segment() segment.Config {
	sc := segment.DefaultConfig()
	sc.Padding = c.Padding
	sc.ThresholdMode = c.ThresholdMode
	sc.MergeOverlaps = c.MergeOverlaps
	return sc
}

func (c *Config) validate() error {
	switch {
	case c.Engine != EngineNative && c.Engine != EngineGoCV:
		return fmt.Errorf("ENGINE: unknown engine %q", c.Engine)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("LOG_FORMAT: unknown format %q", c.LogFormat)
	case c.MaxConcurrent <= 0:
		return fmt.Errorf("MAX_CONCURRENT: must be positive, got %d", c.MaxConcurrent)
	case c.MaxUploadBytes <= 0:
		return fmt.Errorf("MAX_UPLOAD_MB: must be positive")
	case c.JPEGQuality < 1 || c.JPEGQuality > 100:
		return fmt.Errorf("JPEG_QUALITY: must be within [1,100], got %d", c.JPEGQuality)
	}
	if err := c.Segment().Validate(); err != nil {
		return err
	}
	return nil
}

// parser запоминает первую ошибку разбора
type parser struct {
	getenv func(string) string
	err    error
}

func (p *parser) getString(key, def string) string {
	if v := strings.TrimSpace(p.getenv(key)); v != "" {
		return v
	}
	return def
}

func (p *parser) getInt(key string, def int) int {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return n
}

func (p *parser) getBool(key string, def bool) bool {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return b
}

func (p *parser) getDuration(key string, def time.Duration) time.Duration {
	v := strings.TrimSpace(p.getenv(key))
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil && p.err == nil {
		p.err = fmt.Errorf("%s: %w", key, err)
	}
	return d
}
