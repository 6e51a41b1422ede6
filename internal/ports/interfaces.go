package ports

import (
	"io"

	"vk-archive-parser/internal/domain"
)

// DataSource определяет интерфейс для получения файлов одной папки архива.
type DataSource interface {
	// Files возвращает имена файлов страниц архива.
	Files() ([]string, error)
	// Open открывает файл для чтения. Закрыть его должен вызывающий.
	Open(name string) (io.ReadCloser, error)
}

// Decoder определяет интерфейс для перевода байтов файла архива в текст.
type Decoder interface {
	Decode(r io.Reader) (string, error)
}

// PageParser определяет интерфейс для разбора одной HTML-страницы архива.
type PageParser interface {
	ParsePage(text string) (*domain.Page, error)
}

// Aggregator определяет интерфейс для сборки страниц в один чат.
type Aggregator interface {
	Aggregate(pages []domain.Page, chatID int64) *domain.Chat
}

// Exporter определяет интерфейс для вывода результата.
type Exporter interface {
	// Export сохраняет собранный чат.
	Export(chat *domain.Chat) error
}

// ProgressReporter отображает ход разбора файлов.
// Advance может вызываться из нескольких горутин одновременно.
type ProgressReporter interface {
	Start(total int, description string)
	Advance()
	Done()
}
