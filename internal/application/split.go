package app

import (
	"context"
	"errors"
	"log/slog"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

// ErrNoSegmenter движок разбиения не настроен
var ErrNoSegmenter = errors.New("segmenter is not configured")

// SplitRequest параметры одного разбиения
type SplitRequest struct {
	Policy  entity.Policy // пустая строка означает политику по умолчанию
	Padding *int          // переопределение отступа
	Source  string        // имя исходного файла, проставляется в области
}

type SplitService struct {
	chats     *ChatService
	segmenter port.Segmenter
	logger    *slog.Logger
}

// NewSplitService создаёт сервис, который разбивает сканы выбранным движком.
func NewSplitService(chats *ChatService, segmenter port.Segmenter, logger *slog.Logger) *SplitService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SplitService{
		chats:     chats,
		segmenter: segmenter,
		logger:    logger,
	}
}

// Split разбивает скан и проставляет имя источника в найденные области.
func (s *SplitService) Split(ctx context.Context, imageData []byte, req SplitRequest) (*entity.ProcessingResult, error) {
	if s.segmenter == nil {
		return nil, ErrNoSegmenter
	}

	result, err := s.segmenter.Segment(ctx, imageData, port.SegmentOptions{
		Policy:  req.Policy,
		Padding: req.Padding,
	})
	if err != nil {
		s.logger.Warn("split failed", "source", req.Source, "error", err)
		return nil, err
	}

	for i := range result.Regions {
		result.Regions[i].Source = req.Source
	}
	s.logger.Info("scan split",
		"source", req.Source,
		"policy", result.Policy,
		"width", result.Width,
		"height", result.Height,
		"regions", len(result.Regions),
	)
	return result, nil
}

// SplitForChat разбивает скан с политикой, выбранной в чате. На время
// обработки чат переводится в StateProcessing, затем возвращается в StateIdle.
func (s *SplitService) SplitForChat(ctx context.Context, chatID int64, imageData []byte, source string) (*entity.ProcessingResult, error) {
	chat, err := s.chats.SetState(ctx, chatID, entity.StateProcessing)
	if err != nil {
		return nil, err
	}
	defer func() {
		if _, err := s.chats.SetState(ctx, chatID, entity.StateIdle); err != nil {
			s.logger.Error("reset chat state", "chat_id", chatID, "error", err)
		}
	}()

	return s.Split(ctx, imageData, SplitRequest{Policy: chat.Policy, Source: source})
}
