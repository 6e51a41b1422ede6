package domain

import (
	"errors"
	"fmt"
)

// Виды ошибок разбора архива. Любая из них прерывает обработку всего чата.
var (
	ErrMalformedDocument            = errors.New("не удалось разобрать HTML-документ")
	ErrMalformedPageNumber          = errors.New("некорректный номер страницы")
	ErrMissingMessageID             = errors.New("у сообщения нет корректного data-id")
	ErrMissingHeader                = errors.New("у сообщения нет заголовка")
	ErrMalformedHeaderText          = errors.New("некорректный текст заголовка")
	ErrUnrecognizedSlug             = errors.New("нераспознанный адрес профиля")
	ErrUnparseableDateTime          = errors.New("не удалось разобрать дату и время")
	ErrMissingAttachmentDescription = errors.New("у вложения нет описания")
	ErrDecodeFailure                = errors.New("не удалось декодировать файл")
	ErrInvalidChatID                = errors.New("некорректный ID чата")
)

// ParseError описывает ошибку разбора вместе с фрагментом входных данных,
// на котором она произошла.
type ParseError struct {
	// Kind - одна из ошибок Err* этого пакета.
	Kind error
	// Input - фрагмент, который не удалось разобрать (слаг, текст даты, data-id).
	Input string
	// Err - исходная причина, если есть.
	Err error
}

// NewParseError создает ParseError указанного вида.
func NewParseError(kind error, input string, cause error) *ParseError {
	return &ParseError{Kind: kind, Input: input, Err: cause}
}

func (e *ParseError) Error() string {
	msg := e.Kind.Error()
	if e.Input != "" {
		msg = fmt.Sprintf("%s: %q", msg, e.Input)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap позволяет проверять и вид ошибки, и ее причину через errors.Is/errors.As.
func (e *ParseError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}
