package exporter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// JSONFileExporter реализует интерфейс Exporter: пишет чат в файл <dir>/<chat_id>.json.
type JSONFileExporter struct {
	dir    string
	pretty bool
}

// NewJSONFileExporter создает новый экземпляр JSONFileExporter.
func NewJSONFileExporter(dir string, pretty bool) ports.Exporter {
	return &JSONFileExporter{dir: dir, pretty: pretty}
}

// FileName возвращает имя файла результата для чата.
func FileName(chatID int64) string {
	return strconv.FormatInt(chatID, 10) + ".json"
}

// Export записывает чат во временный файл и затем переименовывает его,
// поэтому при ошибке на месте результата не остается обрезанного документа.
func (e *JSONFileExporter) Export(chat *domain.Chat) error {
	if err := os.MkdirAll(e.dir, 0755); err != nil {
		return fmt.Errorf("не удалось создать папку %s: %w", e.dir, err)
	}

	tmp, err := os.CreateTemp(e.dir, "."+FileName(chat.ID)+".*.tmp")
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл: %w", err)
	}
	// После успешного переименования удалять уже нечего
	defer os.Remove(tmp.Name())

	if err := encode(tmp, chat, e.pretty); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("не удалось закрыть временный файл: %w", err)
	}

	target := filepath.Join(e.dir, FileName(chat.ID))
	if err := os.Rename(tmp.Name(), target); err != nil {
		return fmt.Errorf("не удалось сохранить %s: %w", target, err)
	}
	return nil
}

// StreamExporter реализует интерфейс Exporter для вывода JSON в поток (например, stdout).
type StreamExporter struct {
	w      io.Writer
	pretty bool
}

// NewStreamExporter создает новый экземпляр StreamExporter.
func NewStreamExporter(w io.Writer, pretty bool) ports.Exporter {
	return &StreamExporter{w: w, pretty: pretty}
}

// Export пишет чат одним JSON-документом с переводом строки в конце.
func (e *StreamExporter) Export(chat *domain.Chat) error {
	return encode(e.w, chat, e.pretty)
}

func encode(w io.Writer, chat *domain.Chat, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(chat); err != nil {
		return fmt.Errorf("failed to encode chat %d: %w", chat.ID, err)
	}
	return nil
}
