package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"

	"vk-archive-parser/internal/adapters/source"
	"vk-archive-parser/internal/domain"
	"vk-archive-parser/internal/ports"
)

// Option определяет функциональную опцию для конфигурации ProcessArchiveUseCase.
type Option func(*ProcessArchiveUseCase)

// WithWorkers - опция для ограничения числа файлов, разбираемых одновременно.
// При n <= 0 используется runtime.GOMAXPROCS(0).
func WithWorkers(n int) Option {
	return func(uc *ProcessArchiveUseCase) {
		if n > 0 {
			uc.workers = n
		}
	}
}

// WithProgress - опция для отображения хода разбора.
func WithProgress(p ports.ProgressReporter) Option {
	return func(uc *ProcessArchiveUseCase) {
		if p != nil {
			uc.progress = p
		}
	}
}

// WithLogger - опция для установки логгера.
func WithLogger(l *slog.Logger) Option {
	return func(uc *ProcessArchiveUseCase) {
		if l != nil {
			uc.log = l
		}
	}
}

// WithSourceFactory - опция для замены источника файлов папки чата.
func WithSourceFactory(f func(dir string) ports.DataSource) Option {
	return func(uc *ProcessArchiveUseCase) {
		if f != nil {
			uc.newSource = f
		}
	}
}

type nopProgress struct{}

func (nopProgress) Start(int, string) {}
func (nopProgress) Advance()          {}
func (nopProgress) Done()             {}

// ProcessArchiveUseCase инкапсулирует разбор папки архива в один чат.
type ProcessArchiveUseCase struct {
	decoder    ports.Decoder
	parser     ports.PageParser
	aggregator ports.Aggregator
	newSource  func(dir string) ports.DataSource
	progress   ports.ProgressReporter
	workers    int
	log        *slog.Logger
}

// NewProcessArchiveUseCase создает новый экземпляр ProcessArchiveUseCase.
func NewProcessArchiveUseCase(
	decoder ports.Decoder,
	parser ports.PageParser,
	aggregator ports.Aggregator,
	opts ...Option,
) *ProcessArchiveUseCase {
	uc := &ProcessArchiveUseCase{
		decoder:    decoder,
		parser:     parser,
		aggregator: aggregator,
		newSource:  source.NewDirSource,
		progress:   nopProgress{},
		workers:    runtime.GOMAXPROCS(0),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// ChatIDFromDir возвращает ID чата из имени папки архива.
func ChatIDFromDir(dir string) (int64, error) {
	name := filepath.Base(filepath.Clean(dir))
	id, err := strconv.ParseInt(name, 10, 64)
	if err != nil {
		return 0, domain.NewParseError(domain.ErrInvalidChatID, name, err)
	}
	return id, nil
}

// ProcessArchive разбирает все файлы папки чата и собирает из них один чат.
func (uc *ProcessArchiveUseCase) ProcessArchive(ctx context.Context, dir string) (*domain.Chat, error) {
	chatID, err := ChatIDFromDir(dir)
	if err != nil {
		return nil, fmt.Errorf("папка %s: %w", dir, err)
	}
	return uc.ProcessSource(ctx, chatID, uc.newSource(dir))
}

// ProcessSource разбирает страницы источника параллельно и собирает их в чат.
// Первая ошибка прерывает обработку: частичного результата не бывает.
func (uc *ProcessArchiveUseCase) ProcessSource(ctx context.Context, chatID int64, src ports.DataSource) (*domain.Chat, error) {
	files, err := src.Files()
	if err != nil {
		return nil, fmt.Errorf("не удалось получить список файлов чата %d: %w", chatID, err)
	}
	uc.log.Info("Обработка чата", "chat_id", chatID, "files", len(files), "workers", uc.workers)

	uc.progress.Start(len(files), strconv.FormatInt(chatID, 10))
	defer uc.progress.Done()

	// Каждая горутина пишет только в свой элемент среза
	pages := make([]domain.Page, len(files))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.workers)
	for i, name := range files {
		i, name := i, name
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			page, err := uc.parseFile(src, name)
			if err != nil {
				return fmt.Errorf("файл %s: %w", name, err)
			}
			pages[i] = *page
			uc.progress.Advance()
			uc.log.Debug("Разобрана страница", "path", name, "page", page.PageNumber, "message_count", len(page.Messages))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	chat := uc.aggregator.Aggregate(pages, chatID)
	uc.log.Info("Чат собран", "chat_id", chatID, "message_count", len(chat.Messages), "user_count", len(chat.Users))
	return chat, nil
}

func (uc *ProcessArchiveUseCase) parseFile(src ports.DataSource, name string) (*domain.Page, error) {
	rc, err := src.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	text, err := uc.decoder.Decode(rc)
	if err != nil {
		return nil, err
	}
	return uc.parser.ParsePage(text)
}

// Run обрабатывает папки чатов по очереди и передает каждый чат в exporter.
// Ошибка в любой папке останавливает обработку остальных.
func (uc *ProcessArchiveUseCase) Run(ctx context.Context, exporter ports.Exporter, dirs ...string) error {
	for _, dir := range dirs {
		chat, err := uc.ProcessArchive(ctx, dir)
		if err != nil {
			return err
		}
		if err := exporter.Export(chat); err != nil {
			return fmt.Errorf("не удалось сохранить чат %d: %w", chat.ID, err)
		}
		uc.log.Info("Чат сохранен", "chat_id", chat.ID, "dir", dir)
	}
	return nil
}
