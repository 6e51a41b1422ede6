package term

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/schollz/progressbar/v3"
	"golang.org/x/term"

	"vk-archive-parser/internal/ports"
)

// IsTerminal сообщает, подключен ли файл к терминалу.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// Progress реализует интерфейс ProgressReporter в виде полосы прогресса.
type Progress struct {
	out io.Writer
	mu  sync.Mutex
	bar *progressbar.ProgressBar
}

var _ ports.ProgressReporter = (*Progress)(nil)

// NewProgress создает полосу прогресса, которая пишет в out.
func NewProgress(out io.Writer) *Progress {
	return &Progress{out: out}
}

// NewTerminalProgress возвращает полосу прогресса в f, если f - терминал и показ
// прогресса включен. Иначе возвращается репортер, который ничего не выводит.
func NewTerminalProgress(f *os.File, enabled bool) ports.ProgressReporter {
	if !enabled || !IsTerminal(f) {
		return NopProgress{}
	}
	return NewProgress(f)
}

// Start начинает новую полосу на total шагов.
func (p *Progress) Start(total int, description string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(p.out),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("files"),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

// Advance отмечает один обработанный файл.
func (p *Progress) Advance() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Add(1)
	}
}

// Done завершает полосу.
func (p *Progress) Done() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.bar != nil {
		_ = p.bar.Finish()
		p.bar = nil
	}
}

// NopProgress реализует ProgressReporter без вывода.
type NopProgress struct{}

func (NopProgress) Start(int, string) {}
func (NopProgress) Advance()          {}
func (NopProgress) Done()             {}
