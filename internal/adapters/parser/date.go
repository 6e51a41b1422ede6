package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"vk-archive-parser/internal/domain"
)

// monthAbbreviations - сокращения месяцев в том виде, в каком их пишет архив.
var monthAbbreviations = [12]string{
	"янв", "фев", "мар", "апр", "мая", "июн", "июл", "авг", "сен", "окт", "ноя", "дек",
}

// Дата после замены месяца: "20 06 2023 в 8:34:00". Хвост вроде "(ред.)" игнорируется.
var numericDateRegex = regexp.MustCompile(`^\s*(\d{1,2})\s+(\d{2})\s+(\d{4})\s+в\s+(\d{1,2}):(\d{2}):(\d{2})`)

// DateNormalizer переводит дату архива в Unix-время.
// После создания не изменяется и безопасен для использования из нескольких горутин.
type DateNormalizer struct {
	months *strings.Replacer
}

// NewDateNormalizer создает новый экземпляр DateNormalizer.
func NewDateNormalizer() *DateNormalizer {
	pairs := make([]string, 0, 2*len(monthAbbreviations))
	for i, abbr := range monthAbbreviations {
		pairs = append(pairs, abbr, fmt.Sprintf("%02d", i+1))
	}
	// strings.Replacer заменяет все образцы за один проход по строке
	return &DateNormalizer{months: strings.NewReplacer(pairs...)}
}

var defaultDateNormalizer = sync.OnceValue(NewDateNormalizer)

// DefaultDateNormalizer возвращает общий для процесса DateNormalizer,
// создаваемый при первом обращении.
func DefaultDateNormalizer() *DateNormalizer {
	return defaultDateNormalizer()
}

// Normalize разбирает текст вида "D MMM YYYY в H:MM:SS" и возвращает Unix-время в UTC
// без поправки часового пояса. Все, что идет после секунд, игнорируется.
func (n *DateNormalizer) Normalize(text string) (int64, error) {
	numeric := n.months.Replace(text)

	m := numericDateRegex.FindStringSubmatch(numeric)
	if m == nil {
		return 0, domain.NewParseError(domain.ErrUnparseableDateTime, numeric, nil)
	}

	// regexp гарантирует, что все поля - короткие последовательности цифр
	fields := make([]int, 6)
	for i := range fields {
		fields[i], _ = strconv.Atoi(m[i+1])
	}
	day, month, year, hour, minute, second := fields[0], fields[1], fields[2], fields[3], fields[4], fields[5]

	if month < 1 || month > 12 || day < 1 || day > daysIn(time.Month(month), year) ||
		hour > 23 || minute > 59 || second > 59 {
		return 0, domain.NewParseError(domain.ErrUnparseableDateTime, numeric, fmt.Errorf("значение вне допустимого диапазона"))
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC).Unix(), nil
}

// FormatDate записывает Unix-время в том же виде, в каком дату показывает архив.
// Normalize(FormatDate(ts)) == ts для любого ts с четырехзначным годом.
func FormatDate(ts int64) string {
	t := time.Unix(ts, 0).UTC()
	return fmt.Sprintf("%d %s %d в %d:%02d:%02d",
		t.Day(), monthAbbreviations[t.Month()-1], t.Year(), t.Hour(), t.Minute(), t.Second())
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
