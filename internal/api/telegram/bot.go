package telegram

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	app "scan-splitter/internal/application"
	"scan-splitter/internal/domain/entity"
	"scan-splitter/internal/infrastructure/codec"
)

const (
	msgStart = `👋 Привет! Я бот для разбиения сканов.

📸 Отправьте мне скан, на котором лежит несколько фотографий, и я пришлю каждую отдельно.

📋 Команды:
/split — разбить скан
/policy — выбрать способ отбора фотографий
/help — справка
/cancel — отменить текущую операцию`

	msgHelp = `ℹ️ Как пользоваться ботом:

1️⃣ Отправьте скан фото или файлом (файлом качество выше)
2️⃣ Бот найдёт на нём прямоугольные фотографии
3️⃣ Вы получите каждую фотографию отдельным сообщением

💡 Рекомендации:
• Раскладывайте фотографии с промежутками
• Сканируйте на светлом однотонном фоне

⚙️ Способы отбора (/policy):
• area-size — по площади и размеру, с небольшим отступом
• aspect-ratio — по пропорциям и доле площади, без отступа`

	msgAwaitingPhoto   = "📸 Отправьте скан для разбиения."
	msgCancelled       = "❌ Операция отменена. Отправьте /split для нового скана."
	msgSendPhoto       = "📸 Пожалуйста, отправьте скан фото или файлом-изображением."
	msgUnknownCommand  = "❓ Неизвестная команда. Используйте /help для справки."
	msgProcessing      = "⏳ Обрабатываю скан..."
	msgNoRegions       = "🤷 Фотографии на скане не найдены."
	msgInvalidImage    = "⚠️ Не удалось прочитать изображение. Отправьте JPEG, PNG, TIFF или BMP."
	msgProcessingError = "⚠️ Не удалось обработать скан. Попробуйте ещё раз."
	msgPolicyUnknown   = "❓ Неизвестный способ отбора. Доступны: area-size, aspect-ratio."
)

// botAPI часть tgbotapi.BotAPI, которой пользуется бот
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFile(config tgbotapi.FileConfig) (tgbotapi.File, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

// Bot представляет Telegram-бота
type Bot struct {
	api      botAPI
	chats    *app.ChatService
	splitter *app.SplitService
	logger   *slog.Logger
	quality  int
	// fileURL строит ссылку на скачивание файла
	fileURL func(tgbotapi.File) string
	client  *http.Client
}

// NewBot создаёт нового бота
func NewBot(token string, chats *app.ChatService, splitter *app.SplitService, quality int, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	bot := newBot(api, chats, splitter, quality, logger)
	bot.fileURL = func(f tgbotapi.File) string { return f.Link(api.Token) }
	bot.logger.Info("authorized on telegram", "account", api.Self.UserName)
	return bot, nil
}

func newBot(api botAPI, chats *app.ChatService, splitter *app.SplitService, quality int, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Bot{
		api:      api,
		chats:    chats,
		splitter: splitter,
		logger:   logger,
		quality:  quality,
		client:   http.DefaultClient,
	}
}

// Run запускает основной цикл обработки сообщений до отмены ctx
func (b *Bot) Run(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	defer b.api.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

// handleMessage обрабатывает входящее сообщение
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chat, err := b.chats.Get(ctx, msg.Chat.ID)
	if err != nil {
		b.logger.Error("get chat", "chat_id", msg.Chat.ID, "error", err)
		return
	}

	// Обработка команд
	if msg.IsCommand() {
		b.handleCommand(ctx, msg, chat)
		return
	}

	if fileID, name, ok := imageFile(msg); ok {
		b.handleScan(ctx, msg.Chat.ID, fileID, name)
		return
	}

	// Текстовое сообщение (не команда)
	b.sendMessage(msg.Chat.ID, msgSendPhoto)
}

// handleCommand обрабатывает команды бота
func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message, chat *entity.Chat) {
	var err error
	switch msg.Command() {
	case "start":
		_, err = b.chats.Cancel(ctx, chat.ID)
		b.sendMessage(chat.ID, msgStart)

	case "help":
		b.sendMessage(chat.ID, msgHelp)

	case "split":
		_, err = b.chats.BeginSplit(ctx, chat.ID)
		b.sendMessage(chat.ID, msgAwaitingPhoto)

	case "policy":
		b.handlePolicy(ctx, chat, msg.CommandArguments())

	case "cancel":
		_, err = b.chats.Cancel(ctx, chat.ID)
		b.sendMessage(chat.ID, msgCancelled)

	default:
		b.sendMessage(chat.ID, msgUnknownCommand)
	}
	if err != nil {
		b.logger.Error("update chat", "chat_id", chat.ID, "command", msg.Command(), "error", err)
	}
}

// handlePolicy показывает или меняет политику отбора чата
func (b *Bot) handlePolicy(ctx context.Context, chat *entity.Chat, arg string) {
	if strings.TrimSpace(arg) == "" {
		b.sendMessage(chat.ID, fmt.Sprintf("⚙️ Текущий способ отбора: %s\nИзменить: /policy area-size или /policy aspect-ratio", chat.Policy))
		return
	}

	updated, err := b.chats.SetPolicy(ctx, chat.ID, arg)
	if err != nil {
		if entity.IsConfigError(err) {
			b.sendMessage(chat.ID, msgPolicyUnknown)
			return
		}
		b.logger.Error("set policy", "chat_id", chat.ID, "error", err)
		b.sendMessage(chat.ID, msgProcessingError)
		return
	}
	b.sendMessage(chat.ID, fmt.Sprintf("✅ Способ отбора: %s", updated.Policy))
}

// handleScan скачивает скан, разбивает его и отправляет найденные фотографии
func (b *Bot) handleScan(ctx context.Context, chatID int64, fileID, name string) {
	b.sendMessage(chatID, msgProcessing)

	imageData, err := b.downloadFile(ctx, fileID)
	if err != nil {
		b.logger.Error("download scan", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	result, err := b.splitter.SplitForChat(ctx, chatID, imageData, name)
	if err != nil {
		if entity.IsDecodeError(err) {
			b.sendMessage(chatID, msgInvalidImage)
			return
		}
		b.logger.Error("split scan", "chat_id", chatID, "error", err)
		b.sendMessage(chatID, msgProcessingError)
		return
	}

	if !result.HasRegions() {
		b.sendMessage(chatID, msgNoRegions)
		return
	}

	total := len(result.Regions)
	for i, r := range result.Regions {
		data, err := codec.EncodeJPEG(r.Image, b.quality)
		if err != nil {
			b.logger.Error("encode crop", "chat_id", chatID, "index", i, "error", err)
			continue
		}
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{
			Name:  fmt.Sprintf("crop_%d.jpg", i+1),
			Bytes: data,
		})
		photo.Caption = fmt.Sprintf("🖼 %d из %d (%d×%d)", i+1, total, r.Box.Width, r.Box.Height)
		if _, err := b.api.Send(photo); err != nil {
			b.logger.Error("send crop", "chat_id", chatID, "index", i, "error", err)
		}
	}
}

// imageFile возвращает файл изображения из сообщения: фото максимального
// разрешения или документ с MIME image/*.
func imageFile(msg *tgbotapi.Message) (fileID, name string, ok bool) {
	if len(msg.Photo) > 0 {
		photo := msg.Photo[len(msg.Photo)-1]
		return photo.FileID, "photo.jpg", true
	}
	if msg.Document != nil && strings.HasPrefix(msg.Document.MimeType, "image/") {
		return msg.Document.FileID, msg.Document.FileName, true
	}
	return "", "", false
}

// downloadFile скачивает файл из Telegram
func (b *Bot) downloadFile(ctx context.Context, fileID string) ([]byte, error) {
	file, err := b.api.GetFile(tgbotapi.FileConfig{FileID: fileID})
	if err != nil {
		return nil, fmt.Errorf("get file: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.fileURL(file), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download file: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	return data, nil
}

// sendMessage отправляет текстовое сообщение
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Error("send message", "chat_id", chatID, "error", err)
	}
}
