package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/storage"
)

func TestChatService_BeginSplitAndCancel(t *testing.T) {
	svc := NewChatService(storage.NewMemoryChatRepository(""))
	ctx := context.Background()

	chat, err := svc.BeginSplit(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateAwaitingPhoto, chat.State)

	chat, err = svc.Cancel(ctx, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, chat.State)
}

func TestChatService_SetPolicy(t *testing.T) {
	svc := NewChatService(storage.NewMemoryChatRepository(entity.PolicyAreaSize))
	ctx := context.Background()

	chat, err := svc.SetPolicy(ctx, 20, "B")
	require.NoError(t, err)
	require.Equal(t, entity.PolicyAspectRatio, chat.Policy)

	chat, err = svc.Get(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, entity.PolicyAspectRatio, chat.Policy)

	_, err = svc.SetPolicy(ctx, 20, "largest")
	require.True(t, entity.IsConfigError(err))

	chat, err = svc.Get(ctx, 20)
	require.NoError(t, err)
	require.Equal(t, entity.PolicyAspectRatio, chat.Policy)
}
