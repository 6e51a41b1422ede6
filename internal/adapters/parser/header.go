package parser

import (
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"vk-archive-parser/internal/domain"
)

const (
	// DefaultProfileURLPrefix - начало ссылки на профиль перед слагом.
	DefaultProfileURLPrefix = "https://vk.com/"
	// DefaultTimezoneCorrection - архив показывает время на 5 часов раньше ожидаемого.
	DefaultTimezoneCorrection = 5 * time.Hour

	headerDateSeparator = ", "
)

// Префиксы слагов сообществ. Их ID хранятся со знаком минус.
var communitySlugTags = map[string]bool{
	"club":   true,
	"public": true,
}

// HeaderResolver извлекает автора и время сообщения из его заголовка.
type HeaderResolver struct {
	profilePrefix string
	selfURL       string
	tzCorrection  int64
	dates         *DateNormalizer
}

// NewHeaderResolver создает HeaderResolver. selfID подставляется для сообщений
// владельца архива, у которых в заголовке нет ссылки.
func NewHeaderResolver(selfID int64, profilePrefix string, tzCorrection time.Duration, dates *DateNormalizer) *HeaderResolver {
	if profilePrefix == "" {
		profilePrefix = DefaultProfileURLPrefix
	}
	if dates == nil {
		dates = DefaultDateNormalizer()
	}
	return &HeaderResolver{
		profilePrefix: profilePrefix,
		selfURL:       profilePrefix + "id" + strconv.FormatInt(selfID, 10),
		tzCorrection:  int64(tzCorrection / time.Second),
		dates:         dates,
	}
}

// Resolve возвращает ID автора и время сообщения с учетом поправки часового пояса.
func (r *HeaderResolver) Resolve(header *goquery.Selection) (int64, int64, error) {
	href := r.selfURL
	if link := header.Find("a").First(); link.Length() > 0 {
		if v, ok := link.Attr("href"); ok {
			href = v
		}
	}

	fromID, err := ParseSlug(r.slug(href))
	if err != nil {
		return 0, 0, err
	}

	text := header.Text()
	idx := strings.LastIndex(text, headerDateSeparator)
	if idx < 0 {
		return 0, 0, domain.NewParseError(domain.ErrMalformedHeaderText, strings.TrimSpace(text), nil)
	}
	// Имя до разделителя не используется: автора определяет ссылка
	date, err := r.dates.Normalize(strings.TrimSpace(text[idx+len(headerDateSeparator):]))
	if err != nil {
		return 0, 0, err
	}

	return fromID, date + r.tzCorrection, nil
}

// slug отрезает от ссылки префикс профиля. Ссылки с другим хостом
// (m.vk.com, http://) сводятся к последнему сегменту пути.
func (r *HeaderResolver) slug(href string) string {
	href = strings.TrimSpace(href)
	if s, ok := strings.CutPrefix(href, r.profilePrefix); ok {
		return s
	}
	return href[strings.LastIndex(href, "/")+1:]
}

// ParseSlug переводит слаг профиля (id1, club1, public1) в ID аккаунта.
// Сообщества получают отрицательный ID, пользователи - положительный.
func ParseSlug(slug string) (int64, error) {
	i := strings.IndexAny(slug, "0123456789")
	if i < 0 {
		return 0, domain.NewParseError(domain.ErrUnrecognizedSlug, slug, nil)
	}
	tag, digits := slug[:i], slug[i:]

	id, err := strconv.ParseInt(digits, 10, 64)
	if err != nil {
		return 0, domain.NewParseError(domain.ErrUnrecognizedSlug, slug, err)
	}
	if communitySlugTags[tag] {
		return -id, nil
	}
	return id, nil
}
