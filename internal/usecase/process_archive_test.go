package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"vk-archive-parser/internal/adapters/decoder"
	"vk-archive-parser/internal/adapters/source"
	"vk-archive-parser/internal/core/services"
	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// Mocks for dependencies
type mockParser struct{ mock.Mock }

func (m *mockParser) ParsePage(text string) (*domain.Page, error) {
	args := m.Called(text)
	if res := args.Get(0); res != nil {
		return res.(*domain.Page), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockExporter struct{ mock.Mock }

func (m *mockExporter) Export(chat *domain.Chat) error {
	args := m.Called(chat)
	return args.Error(0)
}

type mockDecoder struct{ mock.Mock }

func (m *mockDecoder) Decode(r io.Reader) (string, error) {
	args := m.Called(r)
	return args.String(0), args.Error(1)
}

// countingProgress запоминает вызовы ProgressReporter.
type countingProgress struct {
	mu       sync.Mutex
	total    int
	advanced int
	done     bool
}

func (p *countingProgress) Start(total int, _ string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.total = total
}

func (p *countingProgress) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.advanced++
}

func (p *countingProgress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.done = true
}

// concurrencyParser считает, сколько страниц разбирается одновременно.
type concurrencyParser struct {
	current atomic.Int32
	max     atomic.Int32
}

func (p *concurrencyParser) ParsePage(text string) (*domain.Page, error) {
	n := p.current.Add(1)
	defer p.current.Add(-1)
	for {
		old := p.max.Load()
		if n <= old || p.max.CompareAndSwap(old, n) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	return &domain.Page{PageNumber: 1}, nil
}

func onePage(number uint64, id uint64, fromID int64) *domain.Page {
	return &domain.Page{
		PageNumber: number,
		Messages:   []domain.Message{{ID: id, FromID: fromID}},
	}
}

func memorySource(pages map[string]string) ports.DataSource {
	files := make(map[string][]byte, len(pages))
	for name, text := range pages {
		files[name] = []byte(text)
	}
	return source.NewMemorySource(files)
}

func TestChatIDFromDir(t *testing.T) {
	testCases := []struct {
		dir      string
		expected int64
	}{
		{dir: "/archive/messages/2000000001", expected: 2000000001},
		{dir: "archive/messages/-15/", expected: -15},
		{dir: "334240417", expected: 334240417},
	}
	for _, tc := range testCases {
		t.Run(tc.dir, func(t *testing.T) {
			id, err := ChatIDFromDir(tc.dir)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}

	t.Run("имя папки не число", func(t *testing.T) {
		_, err := ChatIDFromDir("/archive/messages/chat")

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrInvalidChatID))
		assert.Contains(t, err.Error(), "chat")
	})
}

func TestProcessArchiveUseCase_ProcessSource(t *testing.T) {
	ctx := context.Background()

	t.Run("страницы собираются по номерам", func(t *testing.T) {
		parser := new(mockParser)
		parser.On("ParsePage", "page-a").Return(onePage(2, 20, 1), nil).Once()
		parser.On("ParsePage", "page-b").Return(onePage(1, 10, -1), nil).Once()
		parser.On("ParsePage", "page-c").Return(onePage(3, 30, 1), nil).Once()
		progress := &countingProgress{}

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), parser, services.NewAggregationService(),
			WithWorkers(2), WithProgress(progress))

		chat, err := uc.ProcessSource(ctx, 77, memorySource(map[string]string{
			"a.html": "page-a",
			"b.html": "page-b",
			"c.html": "page-c",
		}))

		require.NoError(t, err)
		assert.Equal(t, int64(77), chat.ID)
		require.Len(t, chat.Messages, 3)
		assert.Equal(t, uint64(10), chat.Messages[0].ID)
		assert.Equal(t, uint64(20), chat.Messages[1].ID)
		assert.Equal(t, uint64(30), chat.Messages[2].ID)
		assert.Equal(t, []int64{-1, 1}, chat.Users)

		assert.Equal(t, 3, progress.total)
		assert.Equal(t, 3, progress.advanced)
		assert.True(t, progress.done)
		parser.AssertExpectations(t)
	})

	t.Run("пустая папка дает пустой чат", func(t *testing.T) {
		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), new(mockParser), services.NewAggregationService())

		chat, err := uc.ProcessSource(ctx, 1, memorySource(map[string]string{}))

		require.NoError(t, err)
		assert.Empty(t, chat.Messages)
		assert.Empty(t, chat.Users)
	})

	t.Run("ошибка разбора одного файла прерывает обработку", func(t *testing.T) {
		parser := new(mockParser)
		parseErr := domain.NewParseError(domain.ErrUnrecognizedSlug, "durov", nil)
		parser.On("ParsePage", "good").Return(onePage(1, 1, 1), nil).Maybe()
		parser.On("ParsePage", "bad").Return(nil, parseErr)

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), parser, services.NewAggregationService(), WithWorkers(1))

		chat, err := uc.ProcessSource(ctx, 1, memorySource(map[string]string{
			"messages0.html":  "good",
			"messages50.html": "bad",
		}))

		assert.Nil(t, chat)
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrUnrecognizedSlug))
		assert.Contains(t, err.Error(), "messages50.html")
		assert.Contains(t, err.Error(), "durov")
	})

	t.Run("ошибка декодирования прерывает обработку", func(t *testing.T) {
		dec := new(mockDecoder)
		dec.On("Decode", mock.Anything).Return("", domain.NewParseError(domain.ErrDecodeFailure, "", errors.New("boom")))

		uc := NewProcessArchiveUseCase(dec, new(mockParser), services.NewAggregationService())

		_, err := uc.ProcessSource(ctx, 1, memorySource(map[string]string{"a.html": "x"}))

		assert.True(t, errors.Is(err, domain.ErrDecodeFailure))
		assert.Contains(t, err.Error(), "a.html")
	})

	t.Run("число одновременных разборов ограничено", func(t *testing.T) {
		parser := &concurrencyParser{}
		pages := make(map[string]string)
		for i := 0; i < 24; i++ {
			pages[fmt.Sprintf("messages%d.html", i*50)] = "page"
		}

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), parser, services.NewAggregationService(), WithWorkers(3))

		_, err := uc.ProcessSource(ctx, 1, memorySource(pages))

		require.NoError(t, err)
		assert.LessOrEqual(t, parser.max.Load(), int32(3))
		assert.GreaterOrEqual(t, parser.max.Load(), int32(1))
	})

	t.Run("отмененный контекст", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), new(mockParser), services.NewAggregationService())

		_, err := uc.ProcessSource(cancelled, 1, memorySource(map[string]string{"a.html": "x"}))

		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestProcessArchiveUseCase_Run(t *testing.T) {
	ctx := context.Background()
	sources := map[string]ports.DataSource{
		"/archive/100":  memorySource(map[string]string{"a.html": "chat-100"}),
		"/archive/-200": memorySource(map[string]string{"a.html": "chat-200"}),
	}
	factory := func(dir string) ports.DataSource { return sources[dir] }

	t.Run("каждый чат передается в exporter", func(t *testing.T) {
		parser := new(mockParser)
		parser.On("ParsePage", "chat-100").Return(onePage(1, 1, 5), nil)
		parser.On("ParsePage", "chat-200").Return(onePage(1, 2, 6), nil)
		exporter := new(mockExporter)
		exporter.On("Export", mock.MatchedBy(func(c *domain.Chat) bool { return c.ID == 100 })).Return(nil).Once()
		exporter.On("Export", mock.MatchedBy(func(c *domain.Chat) bool { return c.ID == -200 })).Return(nil).Once()

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), parser, services.NewAggregationService(),
			WithSourceFactory(factory))

		err := uc.Run(ctx, exporter, "/archive/100", "/archive/-200")

		require.NoError(t, err)
		exporter.AssertExpectations(t)
	})

	t.Run("ошибка exporter останавливает обработку", func(t *testing.T) {
		parser := new(mockParser)
		parser.On("ParsePage", "chat-100").Return(onePage(1, 1, 5), nil)
		exporter := new(mockExporter)
		exporter.On("Export", mock.Anything).Return(errors.New("disk full")).Once()

		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), parser, services.NewAggregationService(),
			WithSourceFactory(factory))

		err := uc.Run(ctx, exporter, "/archive/100", "/archive/-200")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		parser.AssertNotCalled(t, "ParsePage", "chat-200")
		exporter.AssertExpectations(t)
	})

	t.Run("некорректное имя папки", func(t *testing.T) {
		uc := NewProcessArchiveUseCase(decoder.NewUTF8Decoder(), new(mockParser), services.NewAggregationService(),
			WithSourceFactory(factory))

		err := uc.Run(ctx, new(mockExporter), "/archive/not-a-chat")

		assert.True(t, errors.Is(err, domain.ErrInvalidChatID))
	})
}
