package app

import (
	"context"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

type ChatService struct {
	repo port.ChatRepository
}

func NewChatService(repo port.ChatRepository) *ChatService {
	return &ChatService{repo: repo}
}

func (s *ChatService) Get(ctx context.Context, chatID int64) (*entity.Chat, error) {
	return s.repo.Get(ctx, chatID)
}

func (s *ChatService) SetState(ctx context.Context, chatID int64, state entity.ChatState) (*entity.Chat, error) {
	chat, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	chat.SetState(state)
	if err := s.repo.Save(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

// SetPolicy разбирает имя политики и сохраняет её для чата
func (s *ChatService) SetPolicy(ctx context.Context, chatID int64, name string) (*entity.Chat, error) {
	policy, err := entity.ParsePolicy(name)
	if err != nil {
		return nil, err
	}

	chat, err := s.repo.Get(ctx, chatID)
	if err != nil {
		return nil, err
	}

	chat.SetPolicy(policy)
	if err := s.repo.Save(ctx, chat); err != nil {
		return nil, err
	}

	return chat, nil
}

func (s *ChatService) BeginSplit(ctx context.Context, chatID int64) (*entity.Chat, error) {
	return s.SetState(ctx, chatID, entity.StateAwaitingPhoto)
}

func (s *ChatService) Cancel(ctx context.Context, chatID int64) (*entity.Chat, error) {
	return s.SetState(ctx, chatID, entity.StateIdle)
}
