package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// Option определяет функциональную опцию для конфигурации парсера.
type Option func(*HTMLParser)

// WithSelfID - опция для установки ID владельца архива.
// Он подставляется в сообщения, у заголовка которых нет ссылки на автора.
func WithSelfID(id int64) Option {
	return func(p *HTMLParser) {
		p.selfID = id
	}
}

// WithProfileURLPrefix - опция для установки префикса ссылок на профиль.
func WithProfileURLPrefix(prefix string) Option {
	return func(p *HTMLParser) {
		if prefix != "" {
			p.profilePrefix = prefix
		}
	}
}

// WithTimezoneCorrection - опция для установки поправки часового пояса.
func WithTimezoneCorrection(d time.Duration) Option {
	return func(p *HTMLParser) {
		p.tzCorrection = d
	}
}

// WithDateNormalizer - опция для передачи своего DateNormalizer вместо общего.
func WithDateNormalizer(n *DateNormalizer) Option {
	return func(p *HTMLParser) {
		if n != nil {
			p.dates = n
		}
	}
}

// HTMLParser реализует интерфейс PageParser для HTML-страниц архива ВКонтакте.
// Не хранит изменяемого состояния и может разбирать страницы параллельно.
type HTMLParser struct {
	selfID        int64
	profilePrefix string
	tzCorrection  time.Duration
	dates         *DateNormalizer
	headers       *HeaderResolver
}

// NewHTMLParser создает новый экземпляр HTMLParser.
func NewHTMLParser(opts ...Option) ports.PageParser {
	return newHTMLParser(opts...)
}

func newHTMLParser(opts ...Option) *HTMLParser {
	p := &HTMLParser{
		profilePrefix: DefaultProfileURLPrefix,
		tzCorrection:  DefaultTimezoneCorrection,
		dates:         DefaultDateNormalizer(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.headers = NewHeaderResolver(p.selfID, p.profilePrefix, p.tzCorrection, p.dates)
	return p
}

// ParsePage разбирает страницу архива. Сообщения идут в порядке документа.
// Первая же ошибка разбора сообщения прерывает разбор всей страницы.
func (p *HTMLParser) ParsePage(text string) (*domain.Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return nil, domain.NewParseError(domain.ErrMalformedDocument, "", err)
	}

	items := doc.Find(".message")
	messages := make([]domain.Message, 0, items.Length())
	for i := range items.Nodes {
		msg, err := p.parseMessage(items.Eq(i))
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}

	pageNumber, err := parsePageNumber(doc.Selection)
	if err != nil {
		return nil, err
	}

	return &domain.Page{PageNumber: pageNumber, Messages: messages}, nil
}

// parsePageNumber возвращает номер текущей страницы из блока пагинации.
// На страницах без пагинации номер равен 1.
func parsePageNumber(doc *goquery.Selection) (uint64, error) {
	link := doc.Find(".pg_lnk_sel").First()
	if link.Length() == 0 {
		return 1, nil
	}

	raw := strings.TrimSpace(link.Text())
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, domain.NewParseError(domain.ErrMalformedPageNumber, raw, err)
	}
	if n == 0 {
		return 0, domain.NewParseError(domain.ErrMalformedPageNumber, raw, nil)
	}
	return n, nil
}
