package log

import (
	"context"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"
)

// FragmentTruncatorHandler - обертка для slog.Handler, которая обрезает длинные
// строковые атрибуты. В ошибки разбора попадают фрагменты HTML, которые могут быть большими.
type FragmentTruncatorHandler struct {
	handler slog.Handler
	limit   int
}

// NewFragmentTruncatorHandler создает новый обработчик, обрезающий строки длиннее limit символов
func NewFragmentTruncatorHandler(handler slog.Handler, limit int) *FragmentTruncatorHandler {
	return &FragmentTruncatorHandler{
		handler: handler,
		limit:   limit,
	}
}

const truncationMarker = "…"

// truncate обрезает строку до limit символов и добавляет маркер с числом отброшенных символов
func truncate(text string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(text) <= limit {
		return text
	}
	var sb strings.Builder
	n := 0
	for _, r := range text {
		if n == limit {
			break
		}
		sb.WriteRune(r)
		n++
	}
	sb.WriteString(truncationMarker)
	return sb.String()
}

// Enabled реализует интерфейс slog.Handler
func (h *FragmentTruncatorHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle реализует интерфейс slog.Handler
func (h *FragmentTruncatorHandler) Handle(ctx context.Context, record slog.Record) error {
	// Собираем новую запись: атрибуты оригинальной записи нельзя изменить на месте.
	r := slog.NewRecord(record.Time, record.Level, record.Message, record.PC)

	record.Attrs(func(a slog.Attr) bool {
		r.AddAttrs(slog.Attr{
			Key:   a.Key,
			Value: h.truncateValue(a.Value),
		})
		return true
	})

	return h.handler.Handle(ctx, r)
}

// WithAttrs реализует интерфейс slog.Handler
func (h *FragmentTruncatorHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	truncated := make([]slog.Attr, len(attrs))
	for i, attr := range attrs {
		truncated[i] = slog.Attr{
			Key:   attr.Key,
			Value: h.truncateValue(attr.Value),
		}
	}
	return &FragmentTruncatorHandler{
		handler: h.handler.WithAttrs(truncated),
		limit:   h.limit,
	}
}

// WithGroup реализует интерфейс slog.Handler
func (h *FragmentTruncatorHandler) WithGroup(name string) slog.Handler {
	return &FragmentTruncatorHandler{
		handler: h.handler.WithGroup(name),
		limit:   h.limit,
	}
}

// truncateValue рекурсивно обрезает строковые значения атрибутов
func (h *FragmentTruncatorHandler) truncateValue(value slog.Value) slog.Value {
	switch value.Kind() {
	case slog.KindString:
		return slog.StringValue(truncate(value.String(), h.limit))
	case slog.KindAny:
		// Ошибки разбора содержат фрагмент входных данных в тексте
		if err, ok := value.Any().(error); ok {
			return slog.StringValue(truncate(err.Error(), h.limit))
		}
		return value
	case slog.KindGroup:
		group := value.Group()
		truncated := make([]slog.Attr, len(group))
		for i, attr := range group {
			truncated[i] = slog.Attr{
				Key:   attr.Key,
				Value: h.truncateValue(attr.Value),
			}
		}
		return slog.GroupValue(truncated...)
	default:
		return value
	}
}

// ParseLevel переводит уровень из конфигурации в slog.Level
func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewLogger создает slog.Logger с обрезкой длинных фрагментов.
// format - "text" или "json".
func NewLogger(w io.Writer, level, format string, maxFragment int) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(NewFragmentTruncatorHandler(handler, maxFragment))
}
