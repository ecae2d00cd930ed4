package storage

import (
	"context"
	"sync"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/domain/port"
)

// MemoryChatRepository in-memory хранилище чатов
type MemoryChatRepository struct {
	mu    sync.RWMutex
	chats map[int64]*entity.Chat
	// политика для новых чатов
	defaultPolicy entity.Policy
}

// NewMemoryChatRepository создаёт новое in-memory хранилище
func NewMemoryChatRepository(defaultPolicy entity.Policy) *MemoryChatRepository {
	if defaultPolicy == "" {
		defaultPolicy = entity.PolicyAreaSize
	}
	return &MemoryChatRepository{
		chats:         make(map[int64]*entity.Chat),
		defaultPolicy: defaultPolicy,
	}
}

// Get возвращает копию чата по ID, создаёт новый если не найден
func (r *MemoryChatRepository) Get(ctx context.Context, chatID int64) (*entity.Chat, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chat, exists := r.chats[chatID]
	if !exists {
		chat = entity.NewChat(chatID)
		chat.SetPolicy(r.defaultPolicy)
		r.chats[chatID] = chat
	}

	c := *chat
	return &c, nil
}

// Save сохраняет состояние чата
func (r *MemoryChatRepository) Save(ctx context.Context, chat *entity.Chat) error {
	c := *chat

	r.mu.Lock()
	r.chats[chat.ID] = &c
	r.mu.Unlock()

	return nil
}

// UpdateState обновляет состояние чата
func (r *MemoryChatRepository) UpdateState(ctx context.Context, chatID int64, state entity.ChatState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if chat, exists := r.chats[chatID]; exists {
		chat.SetState(state)
	}

	return nil
}

// Проверка реализации интерфейса
var _ port.ChatRepository = (*MemoryChatRepository)(nil)
