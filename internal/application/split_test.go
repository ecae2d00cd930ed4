package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/storage"
)

func TestSplitService_Split(t *testing.T) {
	seg := &fakeSegmenter{}
	svc := NewSplitService(NewChatService(storage.NewMemoryChatRepository("")), seg, nil)

	padding := 4
	result, err := svc.Split(context.Background(), []byte("abc"), SplitRequest{
		Policy:  entity.PolicyAspectRatio,
		Padding: &padding,
		Source:  "scan.jpg",
	})
	require.NoError(t, err)
	require.Len(t, result.Regions, 3)
	for _, r := range result.Regions {
		require.Equal(t, "scan.jpg", r.Source)
	}

	require.Len(t, seg.calls, 1)
	require.Equal(t, entity.PolicyAspectRatio, seg.calls[0].Policy)
	require.Equal(t, 4, *seg.calls[0].Padding)
}

func TestSplitService_SplitErrors(t *testing.T) {
	svc := NewSplitService(nil, &fakeSegmenter{}, nil)
	_, err := svc.Split(context.Background(), []byte("bad"), SplitRequest{})
	require.True(t, entity.IsDecodeError(err))

	_, err = NewSplitService(nil, nil, nil).Split(context.Background(), []byte("x"), SplitRequest{})
	require.ErrorIs(t, err, ErrNoSegmenter)
}

func TestSplitService_SplitForChat(t *testing.T) {
	chats := NewChatService(storage.NewMemoryChatRepository(""))
	seg := &fakeSegmenter{}
	svc := NewSplitService(chats, seg, nil)
	ctx := context.Background()

	_, err := chats.SetPolicy(ctx, 5, "aspect-ratio")
	require.NoError(t, err)

	result, err := svc.SplitForChat(ctx, 5, []byte("ab"), "photo.jpg")
	require.NoError(t, err)
	require.Len(t, result.Regions, 2)
	require.Equal(t, entity.PolicyAspectRatio, seg.calls[0].Policy)

	chat, err := chats.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, chat.State)

	// состояние сбрасывается и после ошибки
	_, err = svc.SplitForChat(ctx, 5, []byte("bad"), "photo.jpg")
	require.Error(t, err)
	chat, err = chats.Get(ctx, 5)
	require.NoError(t, err)
	require.Equal(t, entity.StateIdle, chat.State)
}
