package port

import (
	"context"

	"scan-splitter/internal/domain/entity"
)

// RemoteSplitter клиент удалённого сервиса разбиения
type RemoteSplitter interface {
	// Split отправляет файл на сервис и возвращает декодированный результат
	Split(ctx context.Context, filename string, imageData []byte, policy entity.Policy) (*entity.ProcessingResult, error)
}
