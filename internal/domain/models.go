package domain

// Chat представляет собранную переписку: участников и сообщения всех страниц архива.
type Chat struct {
	// ID чата из архива. Для бесед и сообществ отрицательный.
	ID int64 `json:"id"`
	// Users - различные from_id всех сообщений, по возрастанию.
	Users    []int64   `json:"users"`
	Messages []Message `json:"messages"`
}

// Page представляет одну разобранную страницу архива.
// Живет только между разбором файла и сборкой чата.
type Page struct {
	PageNumber uint64
	Messages   []Message
}

// Message представляет одно сообщение переписки.
type Message struct {
	// ID сообщения внутри чата.
	ID uint64 `json:"id"`
	// FromID положителен для пользователей и отрицателен для сообществ (club, public).
	FromID int64 `json:"from_id"`
	// Date - Unix-время в секундах с учетом поправки часового пояса.
	Date int64  `json:"date"`
	Text string `json:"message_text"`
	// Attachments равен nil, если у сообщения нет вложений.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// HasAttachments сообщает, были ли у сообщения элементы вложений.
func (m Message) HasAttachments() bool {
	return m.Attachments != nil
}

// Attachment представляет вложение сообщения: описание и необязательную ссылку.
type Attachment struct {
	Description string  `json:"description"`
	Link        *string `json:"link,omitempty"`
}
