package services

import (
	"sort"

	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// AggregationService реализует интерфейс Aggregator.
type AggregationService struct{}

// NewAggregationService создает новый экземпляр AggregationService.
func NewAggregationService() ports.Aggregator {
	return &AggregationService{}
}

// Aggregate собирает страницы в один чат. Страницы упорядочиваются по номеру
// (при равных номерах сохраняется исходный порядок), сообщения каждой страницы
// идут в порядке документа. Переданный срез не изменяется.
func (s *AggregationService) Aggregate(pages []domain.Page, chatID int64) *domain.Chat {
	ordered := make([]domain.Page, len(pages))
	copy(ordered, pages)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PageNumber < ordered[j].PageNumber
	})

	total := 0
	for _, page := range ordered {
		total += len(page.Messages)
	}

	messages := make([]domain.Message, 0, total)
	for _, page := range ordered {
		messages = append(messages, page.Messages...)
	}

	return &domain.Chat{
		ID:       chatID,
		Users:    distinctSenders(messages),
		Messages: messages,
	}
}

// distinctSenders возвращает различные from_id по возрастанию.
func distinctSenders(messages []domain.Message) []int64 {
	// Мапа для отслеживания уникальных отправителей
	seen := make(map[int64]bool)
	users := make([]int64, 0)
	for _, msg := range messages {
		if !seen[msg.FromID] {
			seen[msg.FromID] = true
			users = append(users, msg.FromID)
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i] < users[j] })
	return users
}
