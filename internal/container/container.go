package container

import (
	"fmt"
	"log/slog"
	"net/http"

	"scan-splitter/config"
	"scan-splitter/internal/api/rest"
	app "scan-splitter/internal/application"
	"scan-splitter/internal/domain/port"
	"scan-splitter/internal/infrastructure/storage"
	"scan-splitter/internal/infrastructure/vision"
	"scan-splitter/internal/segment"
)

type Container struct {
	ChatService  *app.ChatService
	SplitService *app.SplitService
	Pool         *rest.SlotPool
	Handler      http.Handler
}

func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	segmenter, err := NewSegmenter(cfg.Engine, cfg.Segment(), logger)
	if err != nil {
		return nil, err
	}

	chatService := app.NewChatService(storage.NewMemoryChatRepository(cfg.DefaultPolicy))
	splitService := app.NewSplitService(chatService, segmenter, logger)

	pool := rest.NewSlotPool(cfg.MaxConcurrent, cfg.AcquireTimeout)
	handler := rest.NewHandler(splitService, pool, logger, rest.Options{
		MaxUpload: cfg.MaxUploadBytes,
		Quality:   cfg.JPEGQuality,
	})

	return &Container{
		ChatService:  chatService,
		SplitService: splitService,
		Pool:         pool,
		Handler:      handler.Router(),
	}, nil
}

// NewSegmenter выбирает движок разбиения по имени
func NewSegmenter(engine string, cfg segment.Config, logger *slog.Logger) (port.Segmenter, error) {
	var (
		segmenter port.Segmenter
		err       error
	)
	switch engine {
	case "", config.EngineNative:
		segmenter, err = vision.NewNativeSegmenter(cfg, logger)
	case config.EngineGoCV:
		segmenter, err = vision.NewGoCVSegmenter(cfg, logger)
	default:
		return nil, fmt.Errorf("unknown engine %q", engine)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s segmenter: %w", engine, err)
	}
	return segmenter, nil
}
