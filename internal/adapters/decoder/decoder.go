package decoder

import (
	"io"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
	"golang.org/x/xerrors"

	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// Названия поддерживаемых кодировок в конфигурации.
const (
	EncodingWindows1251 = "windows-1251"
	EncodingUTF8        = "utf-8"
)

// Windows1251Decoder реализует интерфейс Decoder для файлов архива в кодировке cp1251.
// Байты, которым нет символа в кодировке, заменяются на U+FFFD.
type Windows1251Decoder struct{}

// NewWindows1251Decoder создает новый экземпляр Windows1251Decoder.
func NewWindows1251Decoder() ports.Decoder {
	return &Windows1251Decoder{}
}

// Decode читает поток целиком и возвращает его в UTF-8.
func (d *Windows1251Decoder) Decode(r io.Reader) (string, error) {
	return readAll(transform.NewReader(r, charmap.Windows1251.NewDecoder()))
}

// UTF8Decoder реализует интерфейс Decoder для архивов, пересохраненных в UTF-8.
type UTF8Decoder struct{}

// NewUTF8Decoder создает новый экземпляр UTF8Decoder.
func NewUTF8Decoder() ports.Decoder {
	return &UTF8Decoder{}
}

// Decode читает поток целиком. Некорректные последовательности заменяются на U+FFFD.
func (d *UTF8Decoder) Decode(r io.Reader) (string, error) {
	text, err := readAll(r)
	if err != nil {
		return "", err
	}
	return strings.ToValidUTF8(text, "�"), nil
}

// New возвращает декодер по названию кодировки.
func New(encoding string) (ports.Decoder, error) {
	switch strings.ToLower(encoding) {
	case "", EncodingWindows1251, "cp1251":
		return NewWindows1251Decoder(), nil
	case EncodingUTF8, "utf8":
		return NewUTF8Decoder(), nil
	default:
		return nil, xerrors.Errorf("неподдерживаемая кодировка %q", encoding)
	}
}

func readAll(r io.Reader) (string, error) {
	var sb strings.Builder
	if _, err := io.Copy(&sb, r); err != nil {
		return "", domain.NewParseError(domain.ErrDecodeFailure, "", xerrors.Errorf("failed to read stream: %w", err))
	}
	return sb.String(), nil
}
