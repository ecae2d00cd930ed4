package entity

// ChatState состояние чата в диалоге с ботом
type ChatState string

const (
	StateIdle          ChatState = "idle"           // Ожидание скана
	StateAwaitingPhoto ChatState = "awaiting_photo" // Ожидание фото после /split
	StateProcessing    ChatState = "processing"     // Обработка скана
)

// Chat представляет чат бота и его настройки
type Chat struct {
	ID     int64     // Telegram Chat ID
	Policy Policy    // Выбранная политика отбора
	State  ChatState // Текущее состояние чата
}

// NewChat создаёт чат с настройками по умолчанию
func NewChat(chatID int64) *Chat {
	return &Chat{
		ID:     chatID,
		Policy: PolicyAreaSize,
		State:  StateIdle,
	}
}

// SetState обновляет состояние чата
func (c *Chat) SetState(state ChatState) {
	c.State = state
}

// SetPolicy обновляет политику отбора
func (c *Chat) SetPolicy(policy Policy) {
	c.Policy = policy
}
